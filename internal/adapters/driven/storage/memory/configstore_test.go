package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore(t *testing.T) {
	store := NewConfigStore()
	require.NotNil(t, store)
	assert.NotNil(t, store.values)
	assert.Equal(t, ":memory:", store.Path())
}

func TestNewConfigStoreWith(t *testing.T) {
	store := NewConfigStoreWith(map[string]any{
		"generation.provider": "groq",
		"pipeline.top_k":      int64(4),
	})

	assert.Equal(t, "groq", store.GetString("generation.provider"))
	assert.Equal(t, 4, store.GetInt("pipeline.top_k"))
}

func TestConfigStore_SetAndGet(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("embedding.model", "nomic-embed-text"))
	require.NoError(t, store.Set("embedding.model", "all-minilm"))

	val, ok := store.Get("embedding.model")
	assert.True(t, ok)
	assert.Equal(t, "all-minilm", val)

	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_GetString(t *testing.T) {
	store := NewConfigStoreWith(map[string]any{"s": "value", "n": 3})

	assert.Equal(t, "value", store.GetString("s"))
	assert.Equal(t, "", store.GetString("n"))
	assert.Equal(t, "", store.GetString("missing"))
}

func TestConfigStore_GetInt(t *testing.T) {
	store := NewConfigStoreWith(map[string]any{
		"int":    5,
		"int64":  int64(6),
		"float":  7.0,
		"string": "8",
	})

	assert.Equal(t, 5, store.GetInt("int"))
	assert.Equal(t, 6, store.GetInt("int64"))
	assert.Equal(t, 7, store.GetInt("float"))
	assert.Equal(t, 0, store.GetInt("string"))
	assert.Equal(t, 0, store.GetInt("missing"))
}

func TestConfigStore_GetFloat(t *testing.T) {
	store := NewConfigStoreWith(map[string]any{
		"float64": 0.7,
		"float32": float32(0.5),
		"int":     1,
		"int64":   int64(2),
		"string":  "0.3",
	})

	assert.InDelta(t, 0.7, store.GetFloat("float64"), 1e-9)
	assert.InDelta(t, 0.5, store.GetFloat("float32"), 1e-9)
	assert.Equal(t, 1.0, store.GetFloat("int"))
	assert.Equal(t, 2.0, store.GetFloat("int64"))
	assert.Equal(t, 0.0, store.GetFloat("string"))
	assert.Equal(t, 0.0, store.GetFloat("missing"))
}

func TestConfigStore_SaveLoadNoop(t *testing.T) {
	store := NewConfigStore()
	assert.NoError(t, store.Save())
	assert.NoError(t, store.Load())
}

func TestConfigStore_ConcurrentAccess(t *testing.T) {
	store := NewConfigStore()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			key := "key-" + string(rune('0'+id%10))
			_ = store.Set(key, id)
			_ = store.GetInt(key)
			_ = store.GetFloat(key)
			_ = store.GetString(key)
		}(i)
	}

	wg.Wait()
}
