package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSource(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestRunWritesOutputFileNextToSource(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "hello.mxy", `int main() {
		return 0;
	}`)

	code := run([]string{src})
	assert.Equal(t, 0, code)

	out, err := os.ReadFile(filepath.Join(dir, "hello.c"))
	require.NoError(t, err)
	assert.Contains(t, string(out), "int main(void) {")
}

func TestRunStdoutFlagSkipsFileWrite(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "hello.mxy", `int main() {
		return 0;
	}`)

	code := run([]string{"-stdout", src})
	assert.Equal(t, 0, code)

	_, err := os.Stat(filepath.Join(dir, "hello.c"))
	assert.True(t, os.IsNotExist(err), "stdout mode must not also write hello.c")
}

func TestRunAsyncFeatureRequiresFlag(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "fut.mxy", `Future<int> compute() {
		return 1;
	}`)

	assert.Equal(t, 1, run([]string{src}))
	assert.Equal(t, 0, run([]string{"-async", "-stdout", src}))
}

func TestRunMissingFileReturnsNonZero(t *testing.T) {
	code := run([]string{filepath.Join(t.TempDir(), "nope.mxy")})
	assert.Equal(t, 1, code)
}

func TestRunRejectsBadFlags(t *testing.T) {
	assert.Equal(t, 2, run([]string{"--not-a-real-flag"}))
}

func TestRunRequiresExactlyOneArgument(t *testing.T) {
	assert.Equal(t, 2, run(nil))
}

func TestRunRecordsHistory(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "hello.mxy", `int main() {
		return 0;
	}`)
	histPath := filepath.Join(dir, "log.db")

	code := run([]string{"-stdout", "-history", histPath, src})
	assert.Equal(t, 0, code)

	_, err := os.Stat(histPath)
	require.NoError(t, err, "a history log file must exist once -history is passed")
}
