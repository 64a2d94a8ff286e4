// internal/ledger/guard.go
package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/authentrace/provenance-backend/internal/models"
	"github.com/authentrace/provenance-backend/internal/utils"
)

// transferAttempts bounds how often a transfer redoes its
// check-then-append after losing a chain-head race. Re-reading usually
// resolves the conflict into a definitive answer (the actor either still
// owns the item or no longer does).
const transferAttempts = 3

// Guard enforces the ownership rules in front of the ledger and is the
// only component that appends to it. Every rule is evaluated against a
// single read of the item's chain head; the conditional append rejects
// the write if that head went stale, so a stale check can never corrupt
// a chain.
type Guard struct {
	ledger   Ledger
	items    ItemStore
	accounts AccountDirectory
}

func NewGuard(l Ledger, items ItemStore, accounts AccountDirectory) *Guard {
	return &Guard{
		ledger:   l,
		items:    items,
		accounts: accounts,
	}
}

// Mint registers a new item under a generated item id and opens its
// ownership chain with the manufacturer as first owner.
func (g *Guard) Mint(ctx context.Context, actor *models.User, productID string) (*models.Item, *models.TransactionRecord, error) {
	itemID, err := utils.GenerateItemID()
	if err != nil {
		return nil, nil, fmt.Errorf("generate item id: %w", err)
	}
	return g.MintItem(ctx, actor, itemID, productID)
}

// MintItem mints under a caller-supplied item id, used when a physical
// identifier (a pre-printed QR serial) is bound at registration time.
func (g *Guard) MintItem(ctx context.Context, actor *models.User, itemID, productID string) (*models.Item, *models.TransactionRecord, error) {
	if !actor.CanMint() {
		return nil, nil, ErrUnverifiedManufacturer
	}
	if actor.Status != models.UserStatusActive {
		return nil, nil, ErrUnverifiedManufacturer
	}

	latest, err := g.ledger.LatestFor(ctx, itemID)
	if err != nil {
		return nil, nil, err
	}
	if latest != nil {
		return nil, nil, ErrAlreadyMinted
	}

	// The item insert is the mint-time mutual exclusion: of two
	// concurrent mints for one id, only one row can land.
	item := &models.Item{
		ItemID:    itemID,
		ProductID: productID,
	}
	if err := g.items.CreateItem(ctx, item); err != nil {
		return nil, nil, err
	}

	record, err := g.newRecord(itemID, actor.ID, nil)
	if err != nil {
		return nil, nil, err
	}
	if err := g.ledger.Append(ctx, record, nil); err != nil {
		if errors.Is(err, ErrConcurrentModification) {
			return nil, nil, ErrAlreadyMinted
		}
		return nil, nil, err
	}

	return item, record, nil
}

// Transfer moves the item to newOwnerID. The actor must be the current
// owner unless it is an admin account, which may force a transfer.
func (g *Guard) Transfer(ctx context.Context, actor *models.User, itemID string, newOwnerID uuid.UUID) (*models.TransactionRecord, error) {
	var lastErr error
	for attempt := 0; attempt < transferAttempts; attempt++ {
		record, err := g.tryTransfer(ctx, actor, itemID, newOwnerID)
		if errors.Is(err, ErrConcurrentModification) {
			lastErr = err
			continue
		}
		return record, err
	}
	return nil, lastErr
}

func (g *Guard) tryTransfer(ctx context.Context, actor *models.User, itemID string, newOwnerID uuid.UUID) (*models.TransactionRecord, error) {
	latest, err := g.ledger.LatestFor(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return nil, ErrNotMinted
	}

	currentOwner := latest.OwnerID
	if actor.ID != currentOwner && !actor.IsAdmin() {
		return nil, ErrNotOwner
	}
	if newOwnerID == currentOwner {
		return nil, ErrSelfTransfer
	}

	target, err := g.accounts.AccountByID(ctx, newOwnerID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, ErrUnknownTargetAccount
	}

	record, err := g.newRecord(itemID, newOwnerID, &currentOwner)
	if err != nil {
		return nil, err
	}
	if err := g.ledger.Append(ctx, record, latest); err != nil {
		return nil, err
	}
	return record, nil
}

func (g *Guard) newRecord(itemID string, ownerID uuid.UUID, previousOwnerID *uuid.UUID) (*models.TransactionRecord, error) {
	transactionID, err := utils.GenerateTransactionID()
	if err != nil {
		return nil, fmt.Errorf("generate transaction id: %w", err)
	}
	return &models.TransactionRecord{
		TransactionID:   transactionID,
		ItemID:          itemID,
		OwnerID:         ownerID,
		PreviousOwnerID: previousOwnerID,
	}, nil
}
