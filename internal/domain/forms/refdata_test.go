package forms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeKey(t *testing.T) {
	t.Run("trims and collapses whitespace", func(t *testing.T) {
		assert.Equal(t, "jane doe", NormalizeKey("  Jane   Doe "))
	})

	t.Run("case-folds", func(t *testing.T) {
		assert.Equal(t, NormalizeKey("JANE DOE"), NormalizeKey("jane doe"))
	})

	t.Run("empty input stays empty", func(t *testing.T) {
		assert.Equal(t, "", NormalizeKey("   "))
	})
}

func TestAllowList(t *testing.T) {
	t.Run("matches case and whitespace variants", func(t *testing.T) {
		list := NewAllowList("Jane Doe")

		for _, input := range []string{"jane doe", " Jane   Doe ", "JANE DOE"} {
			assert.True(t, list.Contains(input), "input %q", input)
		}
	})

	t.Run("rejects values not on the list", func(t *testing.T) {
		list := NewAllowList("Jane Doe")
		assert.False(t, list.Contains("John Doe"))
		assert.False(t, list.Contains(""))
	})

	t.Run("match returns the canonical stored form", func(t *testing.T) {
		list := NewAllowList(" Jane Doe ")

		canonical, ok := list.Match("JANE   DOE")
		require.True(t, ok)
		assert.Equal(t, "Jane Doe", canonical)
	})

	t.Run("skips blanks and duplicates", func(t *testing.T) {
		list := NewAllowList("Jane Doe", "  ", "jane doe", "John Roe")
		assert.Equal(t, 2, list.Len())
		assert.Equal(t, []string{"Jane Doe", "John Roe"}, list.Values())
	})
}

func TestStoreAllowList(t *testing.T) {
	stores := []Store{
		{Name: "Store A", Location: "Jakarta"},
		{Name: "Store B"},
	}
	list := StoreAllowList(stores)

	t.Run("accepts bare name and combined form", func(t *testing.T) {
		assert.True(t, list.Contains("Store A"))
		assert.True(t, list.Contains("Store A - Jakarta"))
		assert.True(t, list.Contains("store a - jakarta"))
		assert.True(t, list.Contains("Store B"))
	})

	t.Run("no combined form without a location", func(t *testing.T) {
		assert.False(t, list.Contains("Store B - "))
	})

	t.Run("rejects unknown stores", func(t *testing.T) {
		assert.False(t, list.Contains("Store C"))
		assert.False(t, list.Contains("Store A - Bandung"))
	})
}

func TestEmployeeAllowList(t *testing.T) {
	list := EmployeeAllowList([]Employee{{Name: "Jane Doe"}, {Name: "John Roe"}})
	assert.True(t, list.Contains("jane doe"))
	assert.True(t, list.Contains("John Roe"))
	assert.False(t, list.Contains("Janet Doe"))
}
