package spl

import (
	"fmt"
	"os"
)

// Reporter is the compiler's single error sink. Every diagnostic it
// emits is fatal: there is no recovery path, so any call to Fatalf
// terminates the process, either by exit(1)-equivalent (the default)
// or by panicking, which under -A surfaces as an unhandled panic with
// a Go stack trace (the nearest idiomatic analogue to the original's
// abort()-induced core dump).
type Reporter struct {
	fileName string
	abort    bool
	out      *os.File
}

func NewReporter(fileName string, abort bool) *Reporter {
	return &Reporter{fileName: fileName, abort: abort, out: os.Stderr}
}

// Fatalf formats and writes a diagnostic in the spec'd
// "\n<file>:<line>: <message>\n" shape, then terminates the process.
// It never returns.
func (r *Reporter) Fatalf(line uint32, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(r.out, "\n%s:%d: %s\n", r.fileName, line, msg)
	if r.abort {
		panic(msg)
	}
	os.Exit(1)
}
