// internal/utils/crypto_test.go
package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateItemID(t *testing.T) {
	id, err := GenerateItemID()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(id, "item_"))
	assert.Len(t, id, len("item_")+idEntropyBytes*2)
}

func TestGenerateTransactionID(t *testing.T) {
	id, err := GenerateTransactionID()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(id, "txn_"))
	assert.Len(t, id, len("txn_")+idEntropyBytes*2)
}

func TestGeneratedIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id, err := GenerateTransactionID()
		require.NoError(t, err)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestHashString(t *testing.T) {
	h := HashString("hello")
	assert.Len(t, h, 64)
	assert.Equal(t, h, HashString("hello"))
	assert.NotEqual(t, h, HashString("world"))
}
