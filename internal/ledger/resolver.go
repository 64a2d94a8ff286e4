// internal/ledger/resolver.go
package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/authentrace/provenance-backend/internal/models"
)

// Resolver answers ownership queries from the ledger without exposing
// how the chain is stored.
type Resolver struct {
	ledger Ledger
}

func NewResolver(l Ledger) *Resolver {
	return &Resolver{ledger: l}
}

// CurrentOwner returns the owner of the item's latest record, or nil if
// the item was never minted.
func (r *Resolver) CurrentOwner(ctx context.Context, itemID string) (*uuid.UUID, error) {
	latest, err := r.ledger.LatestFor(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("resolve current owner: %w", err)
	}
	if latest == nil {
		return nil, nil
	}
	owner := latest.OwnerID
	return &owner, nil
}

// History returns the item's full chain in timestamp order. An empty
// chain means the item never existed: minting itself writes the first
// record, so there is no such thing as an item with zero transactions.
func (r *Resolver) History(ctx context.Context, itemID string) ([]models.TransactionRecord, error) {
	records, err := r.ledger.RecordsFor(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("resolve history: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrItemNotFound
	}
	return records, nil
}

// OwnedBy returns the latest record of every item currently owned by the
// account. The underlying Heads read is a point-in-time snapshot; it is
// not serialized against in-flight transfers.
func (r *Resolver) OwnedBy(ctx context.Context, accountID uuid.UUID) ([]models.TransactionRecord, error) {
	heads, err := r.ledger.Heads(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve owned items: %w", err)
	}

	owned := make([]models.TransactionRecord, 0)
	for _, head := range heads {
		if head.OwnerID == accountID {
			owned = append(owned, head)
		}
	}
	return owned, nil
}
