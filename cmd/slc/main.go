// Command slc is the SL bootstrap compiler: it reads one .sl source
// file and emits a matching <base>.decl.h, <base>.type.h and
// <base>.impl.c trio of portable C.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pborman/getopt"

	spl "github.com/swetland/spl"
)

func main() {
	var (
		outBase    string
		scanOnly   bool
		abortOnErr bool
		dumpScope  bool
		help       bool
	)
	getopt.StringVarLong(&outBase, "output", 'o', "base name for the .decl.h/.type.h/.impl.c output files", "BASE")
	getopt.BoolVarLong(&scanOnly, "scan", 's', "scan the input and print its token stream instead of compiling")
	getopt.BoolVarLong(&abortOnErr, "abort", 'A', "panic (with a Go stack trace) on the first error instead of exit(1)")
	getopt.BoolVarLong(&dumpScope, "dump-scope", 'd', "dump the global scope table to stderr after a successful compile")
	getopt.BoolVarLong(&help, "help", 'h', "display this help")
	getopt.SetParameters("FILE")

	getopt.Parse()
	args := getopt.Args()
	if help || len(args) != 1 {
		getopt.PrintUsage(os.Stderr)
		os.Exit(2)
	}
	sourceFile := args[0]

	if outBase == "" {
		outBase = strings.TrimSuffix(sourceFile, filepath.Ext(sourceFile))
	}

	cfg, err := spl.LoadConfig(filepath.Dir(sourceFile))
	if err != nil {
		fmt.Fprintf(os.Stderr, "slc: %s\n", err)
		os.Exit(1)
	}
	if cfg != nil {
		if outBase == strings.TrimSuffix(sourceFile, filepath.Ext(sourceFile)) && cfg.OutputDir != "" {
			outBase = filepath.Join(cfg.OutputDir, filepath.Base(outBase))
		}
		abortOnErr = abortOnErr || cfg.AbortOnError
	}

	if scanOnly {
		runScanOnly(sourceFile)
		return
	}

	ctx := spl.NewCtx(sourceFile, outBase, abortOnErr)
	cursor, err := spl.OpenCursor(sourceFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "slc: %s\n", err)
		os.Exit(1)
	}
	defer cursor.Close()
	ctx.Lexer.SetCursor(cursor)

	if err := ctx.OpenOutputs(); err != nil {
		fmt.Fprintf(os.Stderr, "slc: %s\n", err)
		os.Exit(1)
	}

	spl.NewParser(ctx).Parse()

	if dumpScope {
		fmt.Fprint(os.Stderr, ctx.DumpScopes())
	}

	if err := ctx.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "slc: %s\n", err)
		os.Exit(1)
	}
}

// runScanOnly implements -s: it prints the raw token stream (spellings
// separated by spaces, with a line break wherever the source has one)
// and never touches the
// scope/type tables or the emitter. Useful for debugging the lexer in
// isolation from the rest of the pipeline.
func runScanOnly(sourceFile string) {
	strtab := spl.NewStringTable()
	reporter := spl.NewReporter(sourceFile, false)
	lexer := spl.NewLexer(strtab, reporter)
	lexer.SetVisibleEOL(true)

	cursor, err := spl.OpenCursor(sourceFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "slc: %s\n", err)
		os.Exit(1)
	}
	defer cursor.Close()
	lexer.SetCursor(cursor)

	for {
		tok := lexer.Next()
		if tok.Kind == spl.TEOF {
			return
		}
		fmt.Print(spl.TokenText(tok))
		if tok.Kind != spl.TEol {
			fmt.Print(" ")
		}
	}
}
