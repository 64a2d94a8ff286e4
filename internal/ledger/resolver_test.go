// internal/ledger/resolver_test.go
package ledger

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolverCurrentOwnerUnminted(t *testing.T) {
	resolver := NewResolver(NewMemoryStore())

	owner, err := resolver.CurrentOwner(context.Background(), "item_missing")
	require.NoError(t, err)
	assert.Nil(t, owner)
}

func TestResolverHistoryUnknownItem(t *testing.T) {
	resolver := NewResolver(NewMemoryStore())

	_, err := resolver.History(context.Background(), "item_missing")
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestResolverOwnedBy(t *testing.T) {
	ctx := context.Background()
	env := newGuardEnv()

	itemA, _, err := env.guard.Mint(ctx, env.manufacturer, "sku-1")
	require.NoError(t, err)
	itemB, _, err := env.guard.Mint(ctx, env.manufacturer, "sku-2")
	require.NoError(t, err)
	itemC, _, err := env.guard.Mint(ctx, env.manufacturer, "sku-3")
	require.NoError(t, err)

	_, err = env.guard.Transfer(ctx, env.manufacturer, itemA.ItemID, env.alice.ID)
	require.NoError(t, err)
	_, err = env.guard.Transfer(ctx, env.manufacturer, itemB.ItemID, env.alice.ID)
	require.NoError(t, err)

	owned, err := env.resolver.OwnedBy(ctx, env.alice.ID)
	require.NoError(t, err)
	require.Len(t, owned, 2)

	itemIDs := map[string]bool{}
	for _, head := range owned {
		assert.Equal(t, env.alice.ID, head.OwnerID)
		itemIDs[head.ItemID] = true
	}
	assert.True(t, itemIDs[itemA.ItemID])
	assert.True(t, itemIDs[itemB.ItemID])

	// The manufacturer keeps only the item it never transferred.
	owned, err = env.resolver.OwnedBy(ctx, env.manufacturer.ID)
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, itemC.ItemID, owned[0].ItemID)

	// An account with no items gets an empty list, not an error.
	owned, err = env.resolver.OwnedBy(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, owned)
}
