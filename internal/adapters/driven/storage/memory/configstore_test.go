package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_Seeded(t *testing.T) {
	store := NewConfigStore(map[string]any{"llm.provider": "ollama"})

	assert.Equal(t, "ollama", store.GetString("llm.provider"))
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("query.top_k", int64(5)))
	require.NoError(t, store.Set("gateway.requests_per_second", 2.5))
	require.NoError(t, store.Set("ingest.watch", true))
	require.NoError(t, store.Set("tags", []any{"a", 1, "b"}))

	assert.Equal(t, 5, store.GetInt("query.top_k"))
	assert.InDelta(t, 5.0, store.GetFloat("query.top_k"), 0)
	assert.InDelta(t, 2.5, store.GetFloat("gateway.requests_per_second"), 0)
	assert.Equal(t, 2, store.GetInt("gateway.requests_per_second"))
	assert.True(t, store.GetBool("ingest.watch"))
	assert.Equal(t, []string{"a", "b"}, store.GetStringSlice("tags"))
}

func TestConfigStore_WrongTypesReturnZero(t *testing.T) {
	store := NewConfigStore(map[string]any{"k": "text"})

	assert.Zero(t, store.GetInt("k"))
	assert.Zero(t, store.GetFloat("k"))
	assert.False(t, store.GetBool("k"))
	assert.Nil(t, store.GetStringSlice("k"))
	assert.Empty(t, store.GetString("missing"))
}

func TestConfigStore_SaveCounts(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Save())
	require.NoError(t, store.Save())
	require.NoError(t, store.Load())

	assert.Equal(t, 2, store.Saves())
}

func TestConfigStore_ConcurrentAccess(t *testing.T) {
	store := NewConfigStore()
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("key", n)
			_ = store.GetInt("key")
		}(i)
	}
	wg.Wait()

	_, ok := store.Get("key")
	assert.True(t, ok)
}
