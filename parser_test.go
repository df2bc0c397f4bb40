package spl

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testCompile drives a full Parse() over src, writing decl/type/impl
// output into in-memory buffers instead of real files, and returns
// their flushed contents.
func testCompile(t *testing.T, src string) (decl, typ, impl string) {
	t.Helper()
	path := writeTempSource(t, src)
	cursor, err := OpenCursor(path)
	require.NoError(t, err)
	t.Cleanup(func() { cursor.Close() })

	ctx := NewCtx(path, "out", false)
	ctx.Lexer.SetCursor(cursor)

	var declBuf, typBuf, implBuf bytes.Buffer
	ctx.Emit = NewEmitter(&declBuf, &typBuf, &implBuf)

	NewParser(ctx).Parse()
	require.NoError(t, ctx.Emit.Flush())
	return declBuf.String(), typBuf.String(), implBuf.String()
}

func TestEndToEndS1EmptyProgram(t *testing.T) {
	decl, _, impl := testCompile(t, "fn start() i32 { return 0; }")
	assert.Contains(t, decl, "t$i32 fn_start();")
	assert.Contains(t, impl, "return 0x0;")
}

// testCompileExpectFatal drives Parse() with abort-on-error set, so
// the Reporter's Fatalf panics instead of calling os.Exit. That is the
// only way to observe a "must be fatal" contract from inside a test
// process without actually terminating it.
func testCompileExpectFatal(t *testing.T, src string) (panicMsg string) {
	t.Helper()
	path := writeTempSource(t, src)
	cursor, err := OpenCursor(path)
	require.NoError(t, err)
	t.Cleanup(func() { cursor.Close() })

	ctx := NewCtx(path, "out", true)
	ctx.Lexer.SetCursor(cursor)
	var declBuf, typBuf, implBuf bytes.Buffer
	ctx.Emit = NewEmitter(&declBuf, &typBuf, &implBuf)

	defer func() {
		r := recover()
		require.NotNil(t, r, "expected Parse to panic via Reporter.Fatalf under abort-on-error")
		panicMsg = fmt.Sprint(r)
	}()
	NewParser(ctx).Parse()
	return ""
}

func TestEndToEndS5BreakOutsideLoop(t *testing.T) {
	msg := testCompileExpectFatal(t, "fn f() { break; }")
	assert.Contains(t, msg, "break must be used from inside a looping construct")
}

func TestContinueOutsideLoopIsFatal(t *testing.T) {
	msg := testCompileExpectFatal(t, "fn f() { continue; }")
	assert.Contains(t, msg, "continue must be used from inside a looping construct")
}

func TestEndToEndS2EnumAutoNumbering(t *testing.T) {
	_, _, impl := testCompile(t, "enum { A, B = 5, C, };")
	assert.Contains(t, impl, "#define c$A 0x0")
	assert.Contains(t, impl, "#define c$B 5")
	assert.Contains(t, impl, "#define c$C 0x1")
}

func TestEndToEndS3StructForwardReference(t *testing.T) {
	decl, typ, impl := testCompile(t, "struct Node { next *Node, value u32, };\nfn f() { var n Node; n.value = 1; }")
	assert.Contains(t, typ, "typedef struct t$Node t$Node;")
	assert.Contains(t, decl, "t$Node *next;")
	assert.Contains(t, decl, "t$u32 value;")
	assert.Contains(t, impl, "$n->value = 0x1;")
}

func TestEndToEndS4PrecedenceAndParenElision(t *testing.T) {
	_, _, impl := testCompile(t, "fn f() i32 { return 1 + 2 * 3 == 7; }")
	assert.Contains(t, impl, "((0x1 + (0x2 * 0x3)) == 0x7)")
}

func TestEndToEndS6ScanOnlyTokenStream(t *testing.T) {
	path := writeTempSource(t, "var x u32 = 42;\n")
	strtab := NewStringTable()
	reporter := NewReporter(path, true)
	lex := NewLexer(strtab, reporter)
	lex.SetVisibleEOL(true)
	cursor, err := OpenCursor(path)
	require.NoError(t, err)
	defer cursor.Close()
	lex.SetCursor(cursor)

	var sb bytes.Buffer
	for {
		tok := lex.Next()
		if tok.Kind == TEOF {
			break
		}
		sb.WriteString(TokenText(tok))
		if tok.Kind != TEol {
			sb.WriteString(" ")
		}
	}
	assert.Equal(t, "var @x @u32 = #42 ; \n", sb.String())
}

func TestEndToEndArrayAndZeroInit(t *testing.T) {
	_, typ, impl := testCompile(t, "fn f() { var xs [4]u8; var n u32; }")
	assert.Contains(t, typ, "typedef t$u8 t$u8$4[4];")
	assert.Contains(t, impl, "{ 0, }")
	assert.Contains(t, impl, "$n = 0;")
}

func TestEndToEndOpenArrayType(t *testing.T) {
	_, typ, _ := testCompile(t, "fn f(xs []u8) { }")
	assert.Contains(t, typ, "typedef t$u8 t$u8$0[];")
}

func TestStructLiteralInitialiserEmitsBackingAndPointer(t *testing.T) {
	_, _, impl := testCompile(t, "struct P { x u32, y u32, };\nfn f() { var p P = { 1, 2 }; }")
	assert.Contains(t, impl, "$$p = { 0x1, 0x2 };")
	assert.Contains(t, impl, "*$p = &$$p;")
}

func TestWhileAndIfEmitControlFlow(t *testing.T) {
	_, _, impl := testCompile(t, "fn f() { var i u32; while i < 10 { i += 1; if i == 5 { break; } } }")
	assert.Contains(t, impl, "while (")
	assert.Contains(t, impl, "if (")
	assert.Contains(t, impl, "break;")
	assert.Contains(t, impl, "$i += 0x1;")
}

func TestErrorCallLoweredToStatementExpression(t *testing.T) {
	_, _, impl := testCompile(t, `fn f() { error("bad value", 42); }`)
	assert.Contains(t, impl, "fn_error_begin();")
	assert.Contains(t, impl, "fn_writes(2,")
	assert.Contains(t, impl, "fn_writex(2, 0x2a)")
	assert.Contains(t, impl, "fn_error_end();")
}

func TestNewAllocatesStructBySize(t *testing.T) {
	_, _, impl := testCompile(t, "struct P { x u32, };\nfn f() { var p P = nil; p = new(P); }")
	assert.Contains(t, impl, "calloc(1, sizeof(t$P))")
}
