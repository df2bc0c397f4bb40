package spl

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

const indentWidth = 4

// plainSink is used for the decl and type headers: no automatic
// indentation, no deferred parenthesisation, just buffered writes.
type plainSink struct {
	w *bufio.Writer
}

func newPlainSink(w io.Writer) *plainSink {
	return &plainSink{w: bufio.NewWriter(w)}
}

func (s *plainSink) Write(str string)                       { s.w.WriteString(str) }
func (s *plainSink) Writef(format string, args ...interface{}) { fmt.Fprintf(s.w, format, args...) }
func (s *plainSink) Flush() error                            { return s.w.Flush() }

// parenGroup tracks one deferred-parenthesisation frame: the position
// in the pending line buffer where its opening '(' was speculatively
// written, and whether an infix operator has since been emitted at
// this nesting level.
type parenGroup struct {
	pos         int
	hasOperator bool
}

// implSink is the impl.c sink: a line-buffered writer that derives
// indentation from brace counts and elides parentheses around bare
// operands. Everything written to it is C text the parser itself
// produced, so the brace-counting heuristic (unsound for arbitrary C)
// never sees a stray '{' or '}' inside a string or comment.
type implSink struct {
	w      *bufio.Writer
	buf    []byte
	indent int
	groups []parenGroup
}

func newImplSink(w io.Writer) *implSink {
	return &implSink{w: bufio.NewWriter(w)}
}

// Write appends str to the pending line, flushing one fully-formed
// line at a time whenever str carries a newline (possibly several).
func (s *implSink) Write(str string) {
	for {
		idx := strings.IndexByte(str, '\n')
		if idx < 0 {
			s.buf = append(s.buf, str...)
			return
		}
		s.buf = append(s.buf, str[:idx]...)
		s.flushLine()
		str = str[idx+1:]
	}
}

func (s *implSink) Writef(format string, args ...interface{}) {
	s.Write(fmt.Sprintf(format, args...))
}

// WriteLine is shorthand for Write(str + "\n"), the common case of
// emitting one complete statement.
func (s *implSink) WriteLine(str string) { s.Write(str + "\n") }

func countByte(b []byte, c byte) int {
	n := 0
	for _, x := range b {
		if x == c {
			n++
		}
	}
	return n
}

func (s *implSink) flushLine() {
	closes := countByte(s.buf, '}')
	s.indent -= closes
	if s.indent < 0 {
		s.indent = 0
	}
	s.w.WriteString(strings.Repeat(" ", s.indent*indentWidth))
	s.w.Write(s.buf)
	s.w.WriteByte('\n')
	s.indent += countByte(s.buf, '{')
	s.buf = s.buf[:0]
}

// OpenGroup speculatively writes '(' and returns a handle to close it
// with CloseGroup. Call MarkOperator before CloseGroup if an infix
// operator was emitted directly within this group (not within a
// nested group of its own).
func (s *implSink) OpenGroup() int {
	s.buf = append(s.buf, '(')
	idx := len(s.groups)
	s.groups = append(s.groups, parenGroup{pos: len(s.buf) - 1})
	return idx
}

// MarkOperator sets the sticky "keep parens" flag on the innermost
// open group.
func (s *implSink) MarkOperator() {
	if len(s.groups) == 0 {
		return
	}
	s.groups[len(s.groups)-1].hasOperator = true
}

// CloseGroup closes the group opened by g. If no operator was marked
// at this level, the speculative '(' is deleted in place and no ')'
// is written, since the sub-expression was a single operand.
// Otherwise both parens are kept.
func (s *implSink) CloseGroup(g int) {
	grp := s.groups[g]
	s.groups = s.groups[:g]
	if grp.hasOperator {
		s.buf = append(s.buf, ')')
		return
	}
	copy(s.buf[grp.pos:], s.buf[grp.pos+1:])
	s.buf = s.buf[:len(s.buf)-1]
}

func (s *implSink) Flush() error {
	if len(s.buf) > 0 {
		s.flushLine()
	}
	return s.w.Flush()
}

// escapeCString renders raw bytes as a C string body: bytes outside
// printable ASCII (or '"'/'\\') become \xHH escapes, everything else
// passes through verbatim.
func escapeCString(raw string) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c < 0x20 || c > 0x7E || c == '"' || c == '\\' {
			fmt.Fprintf(&sb, `\x%02x`, c)
			continue
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

// WriteStringLiteral emits raw as a cast C string literal, the shape
// every SL string constant takes in generated code: `(void*)"..."`.
func (s *implSink) WriteStringLiteral(raw string) {
	s.Write(`(void*)"`)
	s.Write(escapeCString(raw))
	s.Write(`"`)
}

// Emitter bundles the three output sinks the parser writes into as
// the parse proceeds: decl (prototypes and struct layouts), typ
// (typedefs), and impl (function bodies and top-level statements).
type Emitter struct {
	Decl *plainSink
	Typ  *plainSink
	Impl *implSink
}

func NewEmitter(declW, typW, implW io.Writer) *Emitter {
	return &Emitter{
		Decl: newPlainSink(declW),
		Typ:  newPlainSink(typW),
		Impl: newImplSink(implW),
	}
}

// Flush flushes all three sinks; callers must call this (or rely on
// Ctx.Close doing so) before relying on the output files being
// complete.
func (e *Emitter) Flush() error {
	if err := e.Decl.Flush(); err != nil {
		return err
	}
	if err := e.Typ.Flush(); err != nil {
		return err
	}
	return e.Impl.Flush()
}
