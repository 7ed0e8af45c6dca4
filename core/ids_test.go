package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewID(t *testing.T) {
	t.Run("GeneratesWithPrefix", func(t *testing.T) {
		id := NewID("run")
		assert.True(t, strings.HasPrefix(id, "run_"))

		parts := strings.Split(id, "_")
		assert.Len(t, parts, 2)
		assert.Len(t, parts[1], 26)
	})

	t.Run("NormalizesPrefix", func(t *testing.T) {
		id := NewID(" IDX ")
		assert.True(t, strings.HasPrefix(id, "idx_"))
	})

	t.Run("Unique", func(t *testing.T) {
		seen := make(map[string]bool)
		for i := 0; i < 100; i++ {
			id := NewID("run")
			assert.False(t, seen[id], "duplicate id generated: %s", id)
			seen[id] = true
		}
	})

	t.Run("PanicsOnEmptyPrefix", func(t *testing.T) {
		assert.Panics(t, func() { NewID("") })
	})
}
