// internal/ledger/gorm.go
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/authentrace/provenance-backend/internal/models"
)

// GormStore is the PostgreSQL-backed ledger used in production. It relies
// on two unique indexes for correctness: (item_id, seq) makes conditional
// appends atomic, and transaction_id backs the duplicate-id check.
//
// The connection must be opened with gorm's TranslateError option so
// constraint violations surface as gorm.ErrDuplicatedKey.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

var (
	_ Ledger           = (*GormStore)(nil)
	_ ItemStore        = (*GormStore)(nil)
	_ AccountDirectory = (*GormStore)(nil)
)

func (s *GormStore) Append(ctx context.Context, record *models.TransactionRecord, expectedPrev *models.TransactionRecord) error {
	record.Seq = 1
	record.Timestamp = time.Now().UTC()
	if expectedPrev != nil {
		record.Seq = expectedPrev.Seq + 1
		// Postgres stores microseconds; bump past the predecessor so the
		// chain stays strictly ordered even when the clock stalls.
		if !record.Timestamp.After(expectedPrev.Timestamp) {
			record.Timestamp = expectedPrev.Timestamp.Add(time.Microsecond)
		}
	}

	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return s.classifyDuplicate(ctx, record)
		}
		return fmt.Errorf("append transaction record: %w", err)
	}

	return nil
}

// classifyDuplicate tells a transaction-id collision apart from a lost
// chain-head race; both trip the same gorm error.
func (s *GormStore) classifyDuplicate(ctx context.Context, record *models.TransactionRecord) error {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.TransactionRecord{}).
		Where("transaction_id = ?", record.TransactionID).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("classify duplicate append: %w", err)
	}
	if count > 0 {
		return ErrDuplicateTransaction
	}
	return ErrConcurrentModification
}

func (s *GormStore) RecordsFor(ctx context.Context, itemID string) ([]models.TransactionRecord, error) {
	var records []models.TransactionRecord
	err := s.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Order("timestamp ASC, transaction_id ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("fetch records for item %s: %w", itemID, err)
	}
	return records, nil
}

func (s *GormStore) LatestFor(ctx context.Context, itemID string) (*models.TransactionRecord, error) {
	var record models.TransactionRecord
	err := s.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Order("timestamp DESC, transaction_id DESC").
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch latest record for item %s: %w", itemID, err)
	}
	return &record, nil
}

func (s *GormStore) Heads(ctx context.Context) ([]models.TransactionRecord, error) {
	// A single DISTINCT ON statement reads one MVCC snapshot, so an
	// in-flight append is either wholly visible or not at all.
	var records []models.TransactionRecord
	err := s.db.WithContext(ctx).Raw(`
		SELECT DISTINCT ON (item_id) *
		FROM transaction_records
		ORDER BY item_id, timestamp DESC, transaction_id DESC
	`).Scan(&records).Error
	if err != nil {
		return nil, fmt.Errorf("fetch chain heads: %w", err)
	}
	return records, nil
}

func (s *GormStore) CreateItem(ctx context.Context, item *models.Item) error {
	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAlreadyMinted
		}
		return fmt.Errorf("create item: %w", err)
	}
	return nil
}

func (s *GormStore) ItemByID(ctx context.Context, itemID string) (*models.Item, error) {
	var item models.Item
	err := s.db.WithContext(ctx).Where("item_id = ?", itemID).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch item %s: %w", itemID, err)
	}
	return &item, nil
}

func (s *GormStore) SetItemCertificate(ctx context.Context, itemID, certificateURL string) error {
	result := s.db.WithContext(ctx).Model(&models.Item{}).
		Where("item_id = ?", itemID).
		Update("certificate_url", certificateURL)
	if result.Error != nil {
		return fmt.Errorf("set item certificate: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (s *GormStore) AccountByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch account %s: %w", id, err)
	}
	return &user, nil
}
