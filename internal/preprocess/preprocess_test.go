package preprocess_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moxy-lang/moxy/internal/preprocess"
)

func writeFile(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestProcessSplicesLocalInclude(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "point.mxy", "typedef struct { int x; int y; } Point;\n")
	main := writeFile(t, dir, "main.mxy", `#include "point.mxy"
	int main() { return 0; }
	`)

	res, err := preprocess.Process(main)
	require.NoError(t, err)
	assert.Contains(t, res.Source, "typedef struct { int x; int y; } Point;")
	assert.Contains(t, res.Source, "int main() { return 0; }")
	assert.NotContains(t, res.Source, "#include \"point.mxy\"")
}

func TestProcessResolvesStdlibIncludeWhenNoLocalFileExists(t *testing.T) {
	dir := t.TempDir()
	main := writeFile(t, dir, "main.mxy", `#include "std/str.mxy"
	int main() { return 0; }
	`)

	res, err := preprocess.Process(main)
	require.NoError(t, err)
	assert.NotContains(t, res.Source, "#include \"std/str.mxy\"")
	assert.Contains(t, res.Source, "int main() { return 0; }")
}

func TestProcessLocalFileShadowsStdlibOfSameName(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "std"), 0o755))
	writeFile(t, dir, "std/str.mxy", "// local override\nint local_marker() { return 1; }\n")
	main := writeFile(t, dir, "main.mxy", `#include "std/str.mxy"
	int main() { return 0; }
	`)

	res, err := preprocess.Process(main)
	require.NoError(t, err)
	assert.Contains(t, res.Source, "local_marker")
}

func TestProcessCollectsNonMxyIncludesAndDedups(t *testing.T) {
	main := writeFile(t, t.TempDir(), "main.mxy", `#include <stdio.h>
	#include <stdio.h>
	#include "extra.h"
	int main() { return 0; }
	`)

	res, err := preprocess.Process(main)
	require.NoError(t, err)
	assert.Equal(t, []string{"#include <stdio.h>", "#include \"extra.h\""}, res.UserIncludes)
}

func TestProcessRegistersTypePragma(t *testing.T) {
	main := writeFile(t, t.TempDir(), "main.mxy", `#@type Color, Shape;
	int main() { return 0; }
	`)

	res, err := preprocess.Process(main)
	require.NoError(t, err)
	assert.True(t, res.KnownTypes["Color"])
	assert.True(t, res.KnownTypes["Shape"])
	assert.False(t, res.KnownTypes["Other"])
}

func TestProcessCollectsOtherDirectivesVerbatim(t *testing.T) {
	main := writeFile(t, t.TempDir(), "main.mxy", `#pragma once
	int main() { return 0; }
	`)

	res, err := preprocess.Process(main)
	require.NoError(t, err)
	assert.Equal(t, []string{"#pragma once"}, res.UserDirectives)
}

func TestProcessMissingIncludeReportsResolutionError(t *testing.T) {
	main := writeFile(t, t.TempDir(), "main.mxy", `#include "missing.mxy"
	int main() { return 0; }
	`)

	_, err := preprocess.Process(main)
	assert.Error(t, err)
}

func TestProcessMissingEntryFile(t *testing.T) {
	_, err := preprocess.Process(filepath.Join(t.TempDir(), "nope.mxy"))
	assert.Error(t, err)
}

func TestProcessNestedIncludesRecurse(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "inner.mxy", "int inner_marker() { return 1; }\n")
	writeFile(t, dir, "mid.mxy", "#include \"inner.mxy\"\nint mid_marker() { return 2; }\n")
	main := writeFile(t, dir, "main.mxy", `#include "mid.mxy"
	int main() { return 0; }
	`)

	res, err := preprocess.Process(main)
	require.NoError(t, err)
	assert.Contains(t, res.Source, "inner_marker")
	assert.Contains(t, res.Source, "mid_marker")
}
