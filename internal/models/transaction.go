// internal/models/transaction.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// TransactionRecord is one immutable event in an item's ownership chain.
// Rows are append-only: no update or delete path exists anywhere in the
// codebase, and the model deliberately omits soft-delete support.
//
// Seq is the item-local chain position starting at 1 for the mint record.
// The unique (item_id, seq) index is what makes a conditional append
// atomic: two writers racing for the same chain head collide on the index
// and exactly one of them wins.
type TransactionRecord struct {
	ID              uuid.UUID  `json:"-" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TransactionID   string     `json:"transaction_id" gorm:"uniqueIndex;size:70;not null"`
	ItemID          string     `json:"item_id" gorm:"size:70;not null;uniqueIndex:idx_tx_item_seq,priority:1"`
	Seq             int        `json:"-" gorm:"not null;uniqueIndex:idx_tx_item_seq,priority:2"`
	OwnerID         uuid.UUID  `json:"owner_id" gorm:"type:uuid;not null;index"`
	PreviousOwnerID *uuid.UUID `json:"previous_owner_id" gorm:"type:uuid"`
	Timestamp       time.Time  `json:"timestamp" gorm:"not null;index"`
	CreatedAt       time.Time  `json:"-"`
}

// IsMint reports whether the record opened the item's chain.
func (r *TransactionRecord) IsMint() bool {
	return r.PreviousOwnerID == nil
}
