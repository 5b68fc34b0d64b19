package id

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsSortable(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	g := NewGenerator(func() time.Time { return fixed })

	ids := make([]string, 100)
	for i := range ids {
		ids[i] = g.New()
	}
	assert.True(t, sort.StringsAreSorted(ids))

	seen := map[string]bool{}
	for _, s := range ids {
		assert.Len(t, s, 26)
		assert.False(t, seen[s])
		seen[s] = true
	}

	at, err := Time(ids[0])
	require.NoError(t, err)
	assert.True(t, at.Equal(fixed))
}

func TestPackageNew(t *testing.T) {
	t.Parallel()

	a, b := New(), New()
	assert.NotEqual(t, a, b)

	_, err := Time("not-a-ulid")
	assert.Error(t, err)
}
