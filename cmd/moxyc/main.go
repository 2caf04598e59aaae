// Command moxyc is the reference CLI collaborator around pkg/translate:
// read one `.mxy` file, write its C11 translation next to it (or to
// stdout), and report fatal diagnostics in the colorized format
// internal/diag defines.
//
// Reduced from funvibe-funxy/cmd/funxy/main.go's flag-handling and exit-
// code conventions to moxy's much smaller surface: no backend selection,
// no module graph, no REPL (DESIGN.md, "cmd/moxyc").
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/moxy-lang/moxy/internal/config"
	"github.com/moxy-lang/moxy/internal/diag"
	"github.com/moxy-lang/moxy/internal/history"
	"github.com/moxy-lang/moxy/pkg/translate"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("moxyc", flag.ContinueOnError)
	outPath := fs.String("o", "", "output path (default: <input without .mxy>.c)")
	toStdout := fs.Bool("stdout", false, "write the generated C to stdout instead of a file")
	async := fs.Bool("async", false, "enable the Future<T>/await feature")
	arc := fs.Bool("arc", false, "enable ARC container lifetime management")
	projectPath := fs.String("project", "moxy.yaml", "project config file (optional)")
	historyPath := fs.String("history", "", "record this run in a sqlite translation log at this path")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: moxyc [flags] <file.mxy>")
		return 2
	}
	inputPath := fs.Arg(0)

	proj, err := config.LoadProject(*projectPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "moxyc: %s\n", err)
		return 1
	}
	flags := proj.Flags()
	if *async {
		flags.Async = true
	}
	if *arc {
		flags.ARC = true
	}

	output, translateErr := translate.Translate(inputPath, translate.WithFlags(flags))

	if *historyPath != "" {
		recordHistory(*historyPath, inputPath, translateErr, len(output))
	}

	if translateErr != nil {
		reportError(inputPath, translateErr)
		return 1
	}

	if *toStdout {
		fmt.Print(output)
		return 0
	}

	dest := *outPath
	if dest == "" {
		dest = config.TrimSourceExt(inputPath) + ".c"
	}
	if err := atomicWrite(dest, output); err != nil {
		fmt.Fprintf(os.Stderr, "moxyc: cannot write '%s': %s\n", dest, err)
		return 1
	}
	return 0
}

// reportError renders a *diag.Error through the full colorized sink when
// possible, falling back to its plain Error() string for anything else.
func reportError(path string, err error) {
	if de, ok := err.(*diag.Error); ok {
		source := ""
		if data, readErr := os.ReadFile(path); readErr == nil {
			source = string(data)
		}
		diag.NewSink(os.Stderr, source).Report(de)
		return
	}
	fmt.Fprintf(os.Stderr, "moxyc: %s\n", err)
}

// atomicWrite writes data to a uuid-suffixed temp file in dest's
// directory, then renames it into place, so a crashed or killed run never
// leaves a half-written .c file at dest.
func atomicWrite(dest, data string) error {
	dir := filepath.Dir(dest)
	tmp := filepath.Join(dir, "."+filepath.Base(dest)+"."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, []byte(data), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, dest)
}

func recordHistory(path, inputPath string, translateErr error, outBytes int) {
	log, err := history.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "moxyc: cannot open history log '%s': %s\n", path, err)
		return
	}
	defer log.Close()
	if err := log.Record(inputPath, translateErr, outBytes); err != nil {
		fmt.Fprintf(os.Stderr, "moxyc: cannot record history: %s\n", err)
	}
}
