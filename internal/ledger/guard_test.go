// internal/ledger/guard_test.go
package ledger

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authentrace/provenance-backend/internal/models"
)

type guardEnv struct {
	store    *MemoryStore
	guard    *Guard
	resolver *Resolver

	admin        *models.User
	manufacturer *models.User
	unverified   *models.User
	alice        *models.User
	bob          *models.User
}

func newGuardEnv() *guardEnv {
	store := NewMemoryStore()
	env := &guardEnv{
		store:        store,
		guard:        NewGuard(store, store, store),
		resolver:     NewResolver(store),
		admin:        newAccount(models.RoleAdmin, true),
		manufacturer: newAccount(models.RoleManufacturer, true),
		unverified:   newAccount(models.RoleManufacturer, false),
		alice:        newAccount(models.RoleUser, false),
		bob:          newAccount(models.RoleUser, false),
	}
	for _, u := range []*models.User{env.admin, env.manufacturer, env.unverified, env.alice, env.bob} {
		store.AddAccount(u)
	}
	return env
}

func newAccount(role models.AccountRole, verified bool) *models.User {
	u := &models.User{
		Role:     role,
		Verified: verified,
		Status:   models.UserStatusActive,
	}
	u.ID = uuid.New()
	return u
}

func TestMintOpensChain(t *testing.T) {
	ctx := context.Background()
	env := newGuardEnv()

	item, rec, err := env.guard.Mint(ctx, env.manufacturer, "sku-100")
	require.NoError(t, err)
	require.NotNil(t, item)
	require.NotNil(t, rec)

	assert.Equal(t, "sku-100", item.ProductID)
	assert.Equal(t, item.ItemID, rec.ItemID)
	assert.Equal(t, env.manufacturer.ID, rec.OwnerID)
	assert.Nil(t, rec.PreviousOwnerID)
	assert.True(t, rec.IsMint())
	assert.Equal(t, 1, rec.Seq)

	owner, err := env.resolver.CurrentOwner(ctx, item.ItemID)
	require.NoError(t, err)
	require.NotNil(t, owner)
	assert.Equal(t, env.manufacturer.ID, *owner)
}

func TestMintRequiresVerifiedManufacturer(t *testing.T) {
	ctx := context.Background()
	env := newGuardEnv()

	_, _, err := env.guard.Mint(ctx, env.unverified, "sku-100")
	assert.ErrorIs(t, err, ErrUnverifiedManufacturer)

	_, _, err = env.guard.Mint(ctx, env.alice, "sku-100")
	assert.ErrorIs(t, err, ErrUnverifiedManufacturer)

	suspended := newAccount(models.RoleManufacturer, true)
	suspended.Status = models.UserStatusSuspended
	env.store.AddAccount(suspended)
	_, _, err = env.guard.Mint(ctx, suspended, "sku-100")
	assert.ErrorIs(t, err, ErrUnverifiedManufacturer)
}

func TestMintItemDuplicateID(t *testing.T) {
	ctx := context.Background()
	env := newGuardEnv()

	_, _, err := env.guard.MintItem(ctx, env.manufacturer, "item_fixed", "sku-100")
	require.NoError(t, err)

	_, _, err = env.guard.MintItem(ctx, env.manufacturer, "item_fixed", "sku-200")
	assert.ErrorIs(t, err, ErrAlreadyMinted)
}

func TestTransferChain(t *testing.T) {
	ctx := context.Background()
	env := newGuardEnv()

	item, _, err := env.guard.Mint(ctx, env.manufacturer, "sku-100")
	require.NoError(t, err)

	rec1, err := env.guard.Transfer(ctx, env.manufacturer, item.ItemID, env.alice.ID)
	require.NoError(t, err)
	assert.Equal(t, env.alice.ID, rec1.OwnerID)
	require.NotNil(t, rec1.PreviousOwnerID)
	assert.Equal(t, env.manufacturer.ID, *rec1.PreviousOwnerID)

	rec2, err := env.guard.Transfer(ctx, env.alice, item.ItemID, env.bob.ID)
	require.NoError(t, err)
	assert.Equal(t, env.bob.ID, rec2.OwnerID)

	history, err := env.resolver.History(ctx, item.ItemID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.True(t, history[0].IsMint())
	assert.Equal(t, env.alice.ID, history[1].OwnerID)
	assert.Equal(t, env.bob.ID, history[2].OwnerID)
	for i := 1; i < len(history); i++ {
		assert.True(t, history[i].Timestamp.After(history[i-1].Timestamp))
		require.NotNil(t, history[i].PreviousOwnerID)
		assert.Equal(t, history[i-1].OwnerID, *history[i].PreviousOwnerID)
	}
}

func TestTransferRejections(t *testing.T) {
	ctx := context.Background()
	env := newGuardEnv()

	_, err := env.guard.Transfer(ctx, env.alice, "item_missing", env.bob.ID)
	assert.ErrorIs(t, err, ErrNotMinted)

	item, _, err := env.guard.Mint(ctx, env.manufacturer, "sku-100")
	require.NoError(t, err)

	// Only the current owner may transfer.
	_, err = env.guard.Transfer(ctx, env.alice, item.ItemID, env.bob.ID)
	assert.ErrorIs(t, err, ErrNotOwner)

	// Transfers to the current owner are no-ops and rejected.
	_, err = env.guard.Transfer(ctx, env.manufacturer, item.ItemID, env.manufacturer.ID)
	assert.ErrorIs(t, err, ErrSelfTransfer)

	// The receiving account must exist.
	_, err = env.guard.Transfer(ctx, env.manufacturer, item.ItemID, uuid.New())
	assert.ErrorIs(t, err, ErrUnknownTargetAccount)

	// None of the rejections may have touched the chain.
	history, err := env.resolver.History(ctx, item.ItemID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestAdminForceTransfer(t *testing.T) {
	ctx := context.Background()
	env := newGuardEnv()

	item, _, err := env.guard.Mint(ctx, env.manufacturer, "sku-100")
	require.NoError(t, err)

	rec, err := env.guard.Transfer(ctx, env.admin, item.ItemID, env.bob.ID)
	require.NoError(t, err)
	assert.Equal(t, env.bob.ID, rec.OwnerID)
	require.NotNil(t, rec.PreviousOwnerID)
	assert.Equal(t, env.manufacturer.ID, *rec.PreviousOwnerID,
		"the recorded previous owner is the dispossessed party, not the admin")
}

func TestOwnershipRecovery(t *testing.T) {
	ctx := context.Background()
	env := newGuardEnv()

	item, _, err := env.guard.Mint(ctx, env.manufacturer, "sku-100")
	require.NoError(t, err)

	_, err = env.guard.Transfer(ctx, env.manufacturer, item.ItemID, env.alice.ID)
	require.NoError(t, err)

	// The manufacturer no longer owns the item.
	_, err = env.guard.Transfer(ctx, env.manufacturer, item.ItemID, env.bob.ID)
	assert.ErrorIs(t, err, ErrNotOwner)

	// An admin resolves the dispute by reassigning to bob.
	_, err = env.guard.Transfer(ctx, env.admin, item.ItemID, env.bob.ID)
	require.NoError(t, err)

	owner, err := env.resolver.CurrentOwner(ctx, item.ItemID)
	require.NoError(t, err)
	assert.Equal(t, env.bob.ID, *owner)

	history, err := env.resolver.History(ctx, item.ItemID)
	require.NoError(t, err)
	assert.Len(t, history, 3)
}

func TestConcurrentTransfersSingleWinner(t *testing.T) {
	ctx := context.Background()
	env := newGuardEnv()

	item, _, err := env.guard.Mint(ctx, env.manufacturer, "sku-100")
	require.NoError(t, err)

	targets := []uuid.UUID{env.alice.ID, env.bob.ID}
	errs := make([]error, len(targets))

	var wg sync.WaitGroup
	for i, target := range targets {
		wg.Add(1)
		go func(i int, target uuid.UUID) {
			defer wg.Done()
			_, errs[i] = env.guard.Transfer(ctx, env.manufacturer, item.ItemID, target)
		}(i, target)
	}
	wg.Wait()

	var successes int
	for _, err := range errs {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, ErrNotOwner)
		}
	}
	assert.Equal(t, 1, successes, "exactly one concurrent transfer may win")

	history, err := env.resolver.History(ctx, item.ItemID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestConcurrentMintsSingleWinner(t *testing.T) {
	ctx := context.Background()
	env := newGuardEnv()

	const attempts = 8
	errs := make([]error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = env.guard.MintItem(ctx, env.manufacturer, "item_contested", "sku-100")
		}(i)
	}
	wg.Wait()

	var successes int
	for _, err := range errs {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, ErrAlreadyMinted)
		}
	}
	assert.Equal(t, 1, successes)
}
