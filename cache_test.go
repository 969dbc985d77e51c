package scim_test

import (
	"fmt"
	"testing"

	scim "github.com/nlstn/go-scim"
	"github.com/nlstn/go-scim/filter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachedParseFilter(t *testing.T) {
	input := `userName eq "bjensen"`

	direct, err := scim.ParseFilter(input)
	require.NoError(t, err)

	first, err := scim.CachedParseFilter(input)
	require.NoError(t, err)
	assert.Equal(t, direct, first)

	second, err := scim.CachedParseFilter(input)
	require.NoError(t, err)
	assert.Equal(t, direct, second)
}

func TestCachedParseFilter_EmptyInput(t *testing.T) {
	node, err := scim.CachedParseFilter("")
	require.NoError(t, err)
	assert.Nil(t, node)
}

func TestCachedParseFilter_Error(t *testing.T) {
	node, err := scim.CachedParseFilter("userName eq")
	require.Error(t, err)
	assert.Nil(t, node)
	assert.True(t, scim.IsInvalidFilterError(err))

	// Errors are not cached; the same input fails the same way again.
	_, err = scim.CachedParseFilter("userName eq")
	require.Error(t, err)
}

func TestCachedParseFilter_ReturnsOwnedCopies(t *testing.T) {
	input := "title pr and active eq true"

	first, err := scim.CachedParseFilter(input)
	require.NoError(t, err)

	// Mutate the returned tree.
	conj, ok := first.(*filter.Conjunction)
	require.True(t, ok)
	cmp, ok := conj.Children[0].(*filter.Comparison)
	require.True(t, ok)
	cmp.Path.Names[0] = "mutated"

	// A later lookup is unaffected by the caller's mutation.
	second, err := scim.CachedParseFilter(input)
	require.NoError(t, err)

	secondConj, ok := second.(*filter.Conjunction)
	require.True(t, ok)
	secondCmp, ok := secondConj.Children[0].(*filter.Comparison)
	require.True(t, ok)
	assert.Equal(t, "title", secondCmp.Path.Names[0])

	// And the two results are distinct trees.
	assert.NotSame(t, first, second)
}

func TestSetFilterCacheCapacity(t *testing.T) {
	defer scim.SetFilterCacheCapacity(256)

	// A tiny cache still parses correctly once entries are evicted.
	scim.SetFilterCacheCapacity(2)
	for i := 0; i < 10; i++ {
		input := fmt.Sprintf(`userName eq "user%d"`, i)
		node, err := scim.CachedParseFilter(input)
		require.NoError(t, err)

		cmp, ok := node.(*filter.Comparison)
		require.True(t, ok)
		assert.Equal(t, fmt.Sprintf("user%d", i), cmp.Value)
	}

	// Capacity below one disables caching entirely.
	scim.SetFilterCacheCapacity(0)
	node, err := scim.CachedParseFilter("title pr")
	require.NoError(t, err)
	require.NotNil(t, node)

	node, err = scim.CachedParseFilter("title pr")
	require.NoError(t, err)
	require.NotNil(t, node)
}

func BenchmarkCachedParseFilter(b *testing.B) {
	input := `userType eq "Employee" and emails[type eq "work" and value co "@example.com"]`

	if _, err := scim.CachedParseFilter(input); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := scim.CachedParseFilter(input); err != nil {
			b.Fatal(err)
		}
	}
}
