package ids

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerator_NextRequestID(t *testing.T) {
	t.Run("Identifiers are unique under concurrency", func(t *testing.T) {
		generator := NewGenerator()
		var mu sync.Mutex
		seen := make(map[string]bool)

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 500; j++ {
					id := generator.NextRequestID()
					mu.Lock()
					assert.False(t, seen[id], "duplicate id %s", id)
					seen[id] = true
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 4000, len(seen))
	})

	t.Run("Identifiers carry the req prefix", func(t *testing.T) {
		generator := NewGenerator()
		assert.True(t, strings.HasPrefix(generator.NextRequestID(), "req-"))
	})
}
