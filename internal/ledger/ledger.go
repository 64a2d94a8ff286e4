// internal/ledger/ledger.go
package ledger

import (
	"context"

	"github.com/google/uuid"

	"github.com/authentrace/provenance-backend/internal/models"
)

// Ledger is the append-only store of ownership transactions. It is the
// single source of truth for provenance; nothing updates or deletes a
// record once appended.
//
// Append is conditional: expectedPrev is the chain head the caller
// observed when it validated the operation (nil when opening a new
// chain). If the head moved in the meantime the append fails with
// ErrConcurrentModification and no record is written. This is the
// compare-and-swap that keeps every item's chain fork-free without a
// global lock; appends on different items never contend.
//
// Records for an item are ordered by timestamp ascending. When two
// records share a timestamp (clock-resolution collision between
// independently written rows) the one with the lexicographically greater
// transaction id sorts later. Within one chain the tie cannot occur:
// Append assigns timestamps monotonically past the predecessor.
type Ledger interface {
	Append(ctx context.Context, record *models.TransactionRecord, expectedPrev *models.TransactionRecord) error
	RecordsFor(ctx context.Context, itemID string) ([]models.TransactionRecord, error)
	LatestFor(ctx context.Context, itemID string) (*models.TransactionRecord, error)

	// Heads returns the latest record of every item as a point-in-time
	// snapshot. It must never observe a partially written record.
	Heads(ctx context.Context) ([]models.TransactionRecord, error)
}

// ItemStore owns Item rows. CreateItem fails with ErrAlreadyMinted when
// the item id is taken, which doubles as the mint-time mutual exclusion:
// of two concurrent mints for one id, only one insert can succeed.
// SetItemCertificate is the single permitted post-mint update; item id
// and product id stay immutable.
type ItemStore interface {
	CreateItem(ctx context.Context, item *models.Item) error
	ItemByID(ctx context.Context, itemID string) (*models.Item, error)
	SetItemCertificate(ctx context.Context, itemID, certificateURL string) error
}

// AccountDirectory resolves account references for the Guard. The ledger
// itself never embeds account data, only ids.
type AccountDirectory interface {
	AccountByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// laterThan applies the chain ordering rule: timestamp ascending,
// transaction id as the deterministic tie-break.
func laterThan(a, b *models.TransactionRecord) bool {
	if !a.Timestamp.Equal(b.Timestamp) {
		return a.Timestamp.After(b.Timestamp)
	}
	return a.TransactionID > b.TransactionID
}
