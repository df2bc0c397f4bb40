package spl

import (
	"bytes"
	"testing"

	"github.com/kylelemons/godebug/pretty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImplSinkElidesParensAroundBareOperand(t *testing.T) {
	var buf bytes.Buffer
	s := newImplSink(&buf)

	g := s.OpenGroup()
	s.Write("0x1")
	s.CloseGroup(g)
	s.WriteLine(";")
	require.NoError(t, s.Flush())

	assert.Equal(t, "0x1;\n", buf.String())
}

func TestImplSinkKeepsParensWhenOperatorSeen(t *testing.T) {
	var buf bytes.Buffer
	s := newImplSink(&buf)

	g := s.OpenGroup()
	s.Write("0x1")
	s.MarkOperator()
	s.Write(" + 0x2")
	s.CloseGroup(g)
	s.WriteLine(";")
	require.NoError(t, s.Flush())

	assert.Equal(t, "(0x1 + 0x2);\n", buf.String())
}

func TestImplSinkNestedGroupsIndependentlyElided(t *testing.T) {
	var buf bytes.Buffer
	s := newImplSink(&buf)

	// (1 + 2) * 3: the outer (mul) group has an operator, the inner
	// (add) group does too, but a nested bare operand stays bare.
	outer := s.OpenGroup()
	inner := s.OpenGroup()
	s.Write("0x1")
	s.MarkOperator()
	s.Write(" + 0x2")
	s.CloseGroup(inner)
	s.MarkOperator()
	s.Write(" * ")
	bare := s.OpenGroup()
	s.Write("0x3")
	s.CloseGroup(bare)
	s.CloseGroup(outer)
	s.WriteLine(";")
	require.NoError(t, s.Flush())

	assert.Equal(t, "((0x1 + 0x2) * 0x3);\n", buf.String())
}

func TestImplSinkBraceDrivenIndentation(t *testing.T) {
	var buf bytes.Buffer
	s := newImplSink(&buf)

	s.Write("t$u32 fn_f() {\n")
	s.WriteLine("return 0x0;")
	s.Write("}\n")
	require.NoError(t, s.Flush())

	assert.Equal(t, "t$u32 fn_f() {\n    return 0x0;\n}\n", buf.String())
}

func TestImplSinkStringLiteralEscaping(t *testing.T) {
	var buf bytes.Buffer
	s := newImplSink(&buf)
	s.WriteStringLiteral("a\"b\n")
	require.NoError(t, s.Flush())
	assert.Equal(t, `(void*)"a\x22b\x0a"`+"\n", buf.String())
}

// A function body is the one place multiple WriteLine calls land in
// the same sink, so a line-by-line godebug diff is a better failure
// message than assert.Equal's single blob when a regression shifts
// only one line's indentation.
func TestImplSinkFunctionBodyMultiLine(t *testing.T) {
	var buf bytes.Buffer
	s := newImplSink(&buf)

	s.Write("t$u32 fn_f() {\n")
	s.WriteLine("var $x t$u32 = 0x0;")
	s.Write("while (1) {\n")
	s.WriteLine("$x = $x + 0x1;")
	s.Write("}\n")
	s.WriteLine("return $x;")
	s.Write("}\n")
	require.NoError(t, s.Flush())

	want := "t$u32 fn_f() {\n" +
		"    var $x t$u32 = 0x0;\n" +
		"    while (1) {\n" +
		"        $x = $x + 0x1;\n" +
		"    }\n" +
		"    return $x;\n" +
		"}\n"
	if diff := pretty.Compare(want, buf.String()); diff != "" {
		t.Errorf("impl sink output diff (-want +got):\n%s", diff)
	}
}
