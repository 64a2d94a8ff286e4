// internal/ledger/memory.go
package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/authentrace/provenance-backend/internal/models"
)

// MemoryStore is an in-process implementation of the ledger contract,
// used by the test suite and for running the server without PostgreSQL.
// The whole store is guarded by one mutex; the critical section is a few
// map operations, so the conditional-append semantics are identical to
// the SQL store while appends on different items only contend for the
// duration of a map write.
type MemoryStore struct {
	mu       sync.RWMutex
	chains   map[string][]models.TransactionRecord
	txnIDs   map[string]struct{}
	items    map[string]models.Item
	accounts map[uuid.UUID]models.User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		chains:   make(map[string][]models.TransactionRecord),
		txnIDs:   make(map[string]struct{}),
		items:    make(map[string]models.Item),
		accounts: make(map[uuid.UUID]models.User),
	}
}

var (
	_ Ledger           = (*MemoryStore)(nil)
	_ ItemStore        = (*MemoryStore)(nil)
	_ AccountDirectory = (*MemoryStore)(nil)
)

func (s *MemoryStore) Append(ctx context.Context, record *models.TransactionRecord, expectedPrev *models.TransactionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.txnIDs[record.TransactionID]; exists {
		return ErrDuplicateTransaction
	}

	chain := s.chains[record.ItemID]
	if expectedPrev == nil {
		if len(chain) > 0 {
			return ErrConcurrentModification
		}
	} else {
		if len(chain) == 0 || chain[len(chain)-1].TransactionID != expectedPrev.TransactionID {
			return ErrConcurrentModification
		}
	}

	record.Seq = len(chain) + 1
	record.Timestamp = time.Now().UTC()
	if len(chain) > 0 {
		if prev := chain[len(chain)-1]; !record.Timestamp.After(prev.Timestamp) {
			record.Timestamp = prev.Timestamp.Add(time.Microsecond)
		}
	}
	record.CreatedAt = record.Timestamp

	s.chains[record.ItemID] = append(chain, *record)
	s.txnIDs[record.TransactionID] = struct{}{}
	return nil
}

func (s *MemoryStore) RecordsFor(ctx context.Context, itemID string) ([]models.TransactionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chain := s.chains[itemID]
	records := make([]models.TransactionRecord, len(chain))
	copy(records, chain)
	return records, nil
}

func (s *MemoryStore) LatestFor(ctx context.Context, itemID string) (*models.TransactionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.latestLocked(itemID), nil
}

func (s *MemoryStore) latestLocked(itemID string) *models.TransactionRecord {
	chain := s.chains[itemID]
	if len(chain) == 0 {
		return nil
	}
	latest := chain[len(chain)-1]
	return &latest
}

func (s *MemoryStore) Heads(ctx context.Context) ([]models.TransactionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	heads := make([]models.TransactionRecord, 0, len(s.chains))
	for itemID := range s.chains {
		if head := s.latestLocked(itemID); head != nil {
			heads = append(heads, *head)
		}
	}
	return heads, nil
}

func (s *MemoryStore) CreateItem(ctx context.Context, item *models.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[item.ItemID]; exists {
		return ErrAlreadyMinted
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	s.items[item.ItemID] = *item
	return nil
}

func (s *MemoryStore) ItemByID(ctx context.Context, itemID string) (*models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.items[itemID]
	if !exists {
		return nil, nil
	}
	return &item, nil
}

func (s *MemoryStore) SetItemCertificate(ctx context.Context, itemID, certificateURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, exists := s.items[itemID]
	if !exists {
		return ErrItemNotFound
	}
	item.CertificateURL = certificateURL
	s.items[itemID] = item
	return nil
}

func (s *MemoryStore) AccountByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, exists := s.accounts[id]
	if !exists {
		return nil, nil
	}
	return &account, nil
}

// AddAccount registers an account with the in-memory directory.
func (s *MemoryStore) AddAccount(user *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts[user.ID] = *user
}
