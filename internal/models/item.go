// internal/models/item.go
package models

import "time"

// Item is a single physical product instance. The row is written at mint
// time and never deleted; item id and product id are immutable, and the
// only later update is attaching a certificate document. Ownership lives
// entirely in the transaction chain keyed by ItemID.
type Item struct {
	ItemID         string    `json:"item_id" gorm:"primaryKey;size:70"`
	ProductID      string    `json:"product_id" gorm:"size:255;not null;index"`
	CertificateURL string    `json:"certificate_url,omitempty" gorm:"size:512"`
	CreatedAt      time.Time `json:"created_at"`
}
