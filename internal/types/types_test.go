package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAndCanonical(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"atomic", "int", "int"},
		{"string atomic", "string", "string"},
		{"raw c pointer", "const char*", "const char*"},
		{"list", "int[]", "int[]"},
		{"nested list", "int[][]", "int[][]"},
		{"result", "Result<int>", "Result<int>"},
		{"future void", "Future<void>", "Future<void>"},
		{"map", "map[string,int]", "map[string,int]"},
		{"map of list", "map[string,int[]]", "map[string,int[]]"},
		{"map of map", "map[int,map[int,string]]", "map[int,map[int,string]]"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Parse(tc.in).Canonical())
		})
	}
}

func TestMangle(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"list int", "int[]", "list_int"},
		{"list string", "string[]", "list_string"},
		{"map string int", "map[string,int]", "map_string_int"},
		{"result int", "Result<int>", "Result_int"},
		{"future void", "Future<void>", "Future_void"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Parse(tc.in).Mangle())
		})
	}
}

func TestCType(t *testing.T) {
	assert.Equal(t, "const char*", Parse("string").CType())
	assert.Equal(t, "int", Parse("int").CType())
	assert.Equal(t, "list_int", Parse("int[]").CType())
	assert.Equal(t, "Result_int", Parse("Result<int>").CType())
}

func TestIsARCEligible(t *testing.T) {
	assert.True(t, Parse("int[]").IsARCEligible())
	assert.True(t, Parse("map[string,int]").IsARCEligible())
	assert.False(t, Parse("Result<int>").IsARCEligible())
	assert.False(t, Parse("Future<int>").IsARCEligible())
	assert.False(t, Parse("int").IsARCEligible())
}

func TestParseNeverFails(t *testing.T) {
	// Anything unrecognized survives as a verbatim Atomic, per spec.md §3.
	weird := Parse("struct Foo*")
	assert.Equal(t, Atomic, weird.Kind)
	assert.Equal(t, "struct Foo*", weird.Canonical())
}
