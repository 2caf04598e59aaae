package stdlib_test

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/moxy-lang/moxy/internal/stdlib"
)

func TestLookupFindsEmbeddedEntries(t *testing.T) {
	for _, path := range []string{"std/io.mxy", "std/math.mxy", "std/str.mxy"} {
		src, ok := stdlib.Lookup(path)
		assert.True(t, ok, "%s should be registered", path)
		assert.NotEmpty(t, src)
	}
}

func TestLookupMissingPath(t *testing.T) {
	_, ok := stdlib.Lookup("std/does-not-exist.mxy")
	assert.False(t, ok)
}

func TestPathsListsEveryEntryOnce(t *testing.T) {
	paths := stdlib.Paths()
	sort.Strings(paths)
	assert.Equal(t, []string{"std/io.mxy", "std/math.mxy", "std/str.mxy"}, paths)
}
