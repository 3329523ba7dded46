package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	t.Run("drops oldest beyond capacity", func(t *testing.T) {
		m := NewMemory[int](3)
		for i := 1; i <= 5; i++ {
			require.NoError(t, m.Store(i))
		}
		assert.Equal(t, 3, m.Len())
		assert.Equal(t, []int{3, 4, 5}, m.GetAll())
	})

	t.Run("get all is a copy", func(t *testing.T) {
		m := NewMemory[string](2)
		require.NoError(t, m.Store("forward"))
		all := m.GetAll()
		all[0] = "shoot"
		assert.Equal(t, []string{"forward"}, m.GetAll())
	})

	t.Run("last", func(t *testing.T) {
		m := NewMemory[int](10)
		assert.Empty(t, m.Last(2))
		for i := 0; i < 4; i++ {
			require.NoError(t, m.Store(i))
		}
		assert.Equal(t, []int{2, 3}, m.Last(2))
		assert.Equal(t, []int{0, 1, 2, 3}, m.Last(10))
		assert.Nil(t, m.Last(0))
	})

	t.Run("capacity is at least one", func(t *testing.T) {
		m := NewMemory[int](0)
		require.NoError(t, m.Store(1))
		require.NoError(t, m.Store(2))
		assert.Equal(t, []int{2}, m.GetAll())
		assert.Equal(t, 1, m.Capacity())
	})
}
