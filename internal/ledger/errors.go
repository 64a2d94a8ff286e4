// internal/ledger/errors.go
package ledger

import "errors"

// Domain errors surfaced to the API layer as-is. None of these are
// retried internally except ErrConcurrentModification, which the Guard
// retries by re-running the whole check-then-append sequence.
var (
	// ErrNotMinted is returned for a transfer of an item with no chain.
	ErrNotMinted = errors.New("item has not been minted")

	// ErrAlreadyMinted is returned when a mint targets an existing item id.
	ErrAlreadyMinted = errors.New("item is already minted")

	// ErrNotOwner is returned when the actor is neither the current owner
	// nor an admin.
	ErrNotOwner = errors.New("actor does not own this item")

	// ErrUnverifiedManufacturer is returned when the minting actor is not
	// a verified manufacturer account.
	ErrUnverifiedManufacturer = errors.New("actor is not a verified manufacturer")

	// ErrUnknownTargetAccount is returned when the transfer target does
	// not resolve to a known account.
	ErrUnknownTargetAccount = errors.New("target account is unknown")

	// ErrSelfTransfer is returned when source and target owner are the
	// same account.
	ErrSelfTransfer = errors.New("cannot transfer item to its current owner")

	// ErrDuplicateTransaction is the defensive backstop for a transaction
	// id collision. With 16 random bytes of entropy per id this should
	// never fire under correct generation.
	ErrDuplicateTransaction = errors.New("transaction id already recorded")

	// ErrItemNotFound is returned by history queries for items that were
	// never minted.
	ErrItemNotFound = errors.New("item not found")

	// ErrConcurrentModification is returned when a conditional append
	// loses the race for an item's chain head. Callers must redo the
	// check-then-append sequence, not just the append.
	ErrConcurrentModification = errors.New("item chain was modified concurrently")
)
