// internal/ledger/ledger_test.go
package ledger

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authentrace/provenance-backend/internal/models"
)

func record(txnID, itemID string, owner uuid.UUID, prev *uuid.UUID) *models.TransactionRecord {
	return &models.TransactionRecord{
		TransactionID:   txnID,
		ItemID:          itemID,
		OwnerID:         owner,
		PreviousOwnerID: prev,
	}
}

func TestAppendConditional(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	owner := uuid.New()

	first := record("txn_1", "item_a", owner, nil)
	require.NoError(t, store.Append(ctx, first, nil))

	// A second chain-opening append on the same item must lose.
	err := store.Append(ctx, record("txn_2", "item_a", owner, nil), nil)
	assert.ErrorIs(t, err, ErrConcurrentModification)

	// Appending against a stale head must lose too.
	second := record("txn_3", "item_a", uuid.New(), &owner)
	require.NoError(t, store.Append(ctx, second, first))

	err = store.Append(ctx, record("txn_4", "item_a", uuid.New(), &owner), first)
	assert.ErrorIs(t, err, ErrConcurrentModification)

	// Against the real head it succeeds.
	require.NoError(t, store.Append(ctx, record("txn_5", "item_a", uuid.New(), &second.OwnerID), second))
}

func TestAppendDuplicateTransactionID(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	owner := uuid.New()

	first := record("txn_dup", "item_a", owner, nil)
	require.NoError(t, store.Append(ctx, first, nil))

	err := store.Append(ctx, record("txn_dup", "item_b", owner, nil), nil)
	assert.ErrorIs(t, err, ErrDuplicateTransaction)
}

func TestAppendAssignsMonotonicOrder(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	owner := uuid.New()

	prev := record("txn_0", "item_a", owner, nil)
	require.NoError(t, store.Append(ctx, prev, nil))

	for i := 1; i < 50; i++ {
		next := record("txn_"+string(rune('a'+i%26))+uuid.NewString(), "item_a", uuid.New(), &prev.OwnerID)
		require.NoError(t, store.Append(ctx, next, prev))
		assert.Equal(t, prev.Seq+1, next.Seq)
		assert.True(t, next.Timestamp.After(prev.Timestamp),
			"timestamps must be strictly increasing within a chain")
		prev = next
	}

	records, err := store.RecordsFor(ctx, "item_a")
	require.NoError(t, err)
	assert.Len(t, records, 50)
	for i := 1; i < len(records); i++ {
		assert.True(t, records[i].Timestamp.After(records[i-1].Timestamp))
	}
}

func TestLatestForAndHeads(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	ownerA := uuid.New()
	ownerB := uuid.New()

	latest, err := store.LatestFor(ctx, "item_missing")
	require.NoError(t, err)
	assert.Nil(t, latest)

	firstA := record("txn_a1", "item_a", ownerA, nil)
	require.NoError(t, store.Append(ctx, firstA, nil))
	secondA := record("txn_a2", "item_a", ownerB, &ownerA)
	require.NoError(t, store.Append(ctx, secondA, firstA))
	firstB := record("txn_b1", "item_b", ownerA, nil)
	require.NoError(t, store.Append(ctx, firstB, nil))

	latest, err = store.LatestFor(ctx, "item_a")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "txn_a2", latest.TransactionID)

	heads, err := store.Heads(ctx)
	require.NoError(t, err)
	assert.Len(t, heads, 2)

	byItem := make(map[string]models.TransactionRecord)
	for _, head := range heads {
		byItem[head.ItemID] = head
	}
	assert.Equal(t, ownerB, byItem["item_a"].OwnerID)
	assert.Equal(t, ownerA, byItem["item_b"].OwnerID)
}

func TestLaterThanTieBreak(t *testing.T) {
	a := &models.TransactionRecord{TransactionID: "txn_aaa"}
	b := &models.TransactionRecord{TransactionID: "txn_bbb"}
	a.Timestamp = b.Timestamp

	assert.True(t, laterThan(b, a))
	assert.False(t, laterThan(a, b))

	a.Timestamp = b.Timestamp.Add(1)
	assert.True(t, laterThan(a, b))
}

func TestItemStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	item, err := store.ItemByID(ctx, "item_a")
	require.NoError(t, err)
	assert.Nil(t, item)

	require.NoError(t, store.CreateItem(ctx, &models.Item{ItemID: "item_a", ProductID: "sku-1"}))
	err = store.CreateItem(ctx, &models.Item{ItemID: "item_a", ProductID: "sku-2"})
	assert.ErrorIs(t, err, ErrAlreadyMinted)

	require.NoError(t, store.SetItemCertificate(ctx, "item_a", "https://example.com/cert.pdf"))
	item, err = store.ItemByID(ctx, "item_a")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, "https://example.com/cert.pdf", item.CertificateURL)

	err = store.SetItemCertificate(ctx, "item_missing", "x")
	assert.ErrorIs(t, err, ErrItemNotFound)
}
