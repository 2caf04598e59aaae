package translate_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moxy-lang/moxy/internal/config"
	"github.com/moxy-lang/moxy/pkg/translate"
)

func writeSource(t *testing.T, name, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestTranslateSimpleProgram(t *testing.T) {
	path := writeSource(t, "hello.mxy", `int main() {
		print(1 + 2);
		return 0;
	}`)
	out, err := translate.Translate(path)
	require.NoError(t, err)
	assert.Contains(t, out, "#include <stdio.h>")
	assert.Contains(t, out, "int main(void) {")
	assert.Contains(t, out, "printf(\"%d\\n\", (1 + 2));")
}

func TestTranslateAsyncWithoutFlagFails(t *testing.T) {
	path := writeSource(t, "async.mxy", `Future<int> compute() {
		return 1;
	}`)
	_, err := translate.Translate(path)
	assert.Error(t, err, "Future<T> requires WithAsync")
}

func TestTranslateAsyncWithFlag(t *testing.T) {
	path := writeSource(t, "async_ok.mxy", `Future<int> compute() {
		return 1;
	}
	void run() {
		int v = await compute();
		print(v);
	}`)
	out, err := translate.Translate(path, translate.WithAsync())
	require.NoError(t, err)
	assert.Contains(t, out, "pthread_create(")
	assert.Contains(t, out, "#include <pthread.h>")
}

func TestTranslateWithARC(t *testing.T) {
	path := writeSource(t, "arc.mxy", `void run() {
		int[] xs = [1, 2, 3];
		print(xs[0]);
	}`)
	out, err := translate.Translate(path, translate.WithARC())
	require.NoError(t, err)
	assert.Contains(t, out, "list_int *xs = list_int_make(")
	assert.Contains(t, out, "list_int_release(xs);")
}

func TestTranslateWithFlagsOption(t *testing.T) {
	path := writeSource(t, "flags.mxy", `void run() {
		int[] xs = [1];
	}`)
	out, err := translate.Translate(path, translate.WithFlags(config.Flags{}))
	require.NoError(t, err)
	assert.NotContains(t, out, "_release(")
}

func TestTranslateReportsParseError(t *testing.T) {
	path := writeSource(t, "bad.mxy", `int main() { return 0 }`)
	_, err := translate.Translate(path)
	assert.Error(t, err)
}

func TestTranslateMissingFile(t *testing.T) {
	_, err := translate.Translate(filepath.Join(t.TempDir(), "nope.mxy"))
	assert.Error(t, err)
}

func TestTranslateRawPassthroughOfUnrecognizedC(t *testing.T) {
	path := writeSource(t, "raw.mxy", `typedef struct { int x; int y; } Point;
	int main() { return 0; }`)
	out, err := translate.Translate(path)
	require.NoError(t, err)
	assert.Contains(t, out, "typedef struct {int x; int y;} Point;")
}
