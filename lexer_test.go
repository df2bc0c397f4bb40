package spl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLexer(t *testing.T, body string) *Lexer {
	t.Helper()
	path := writeTempSource(t, body)
	cursor, err := OpenCursor(path)
	require.NoError(t, err)
	t.Cleanup(func() { cursor.Close() })

	strtab := NewStringTable()
	reporter := NewReporter(path, true)
	lex := NewLexer(strtab, reporter)
	lex.SetCursor(cursor)
	return lex
}

func allTokens(lex *Lexer) []Token {
	var out []Token
	for {
		tok := lex.Next()
		out = append(out, tok)
		if tok.Kind == TEOF {
			return out
		}
	}
}

func TestLexerKeywordsAndIdents(t *testing.T) {
	lex := newTestLexer(t, "fn counter")
	toks := allTokens(lex)
	require.Len(t, toks, 3)
	assert.Equal(t, TFn, toks[0].Kind)
	assert.Equal(t, TIdent, toks[1].Kind)
	assert.Equal(t, "counter", toks[1].Ident.Text)
	assert.Equal(t, TEOF, toks[2].Kind)
}

func TestLexerNumberLiterals(t *testing.T) {
	cases := []struct {
		src  string
		want uint32
	}{
		{"0", 0},
		{"42", 42},
		{"0x2a", 0x2a},
		{"0b101", 0b101},
	}
	for _, c := range cases {
		lex := newTestLexer(t, c.src)
		tok := lex.Next()
		require.Equal(t, TNum, tok.Kind)
		assert.Equal(t, c.want, tok.Num)
	}
}

func TestLexerStringAndEscapes(t *testing.T) {
	lex := newTestLexer(t, `"a\nb\"c"`)
	tok := lex.Next()
	require.Equal(t, TStr, tok.Kind)
	assert.Equal(t, "a\nb\"c", tok.Raw)
}

func TestLexerCharLiteral(t *testing.T) {
	lex := newTestLexer(t, `'\n'`)
	tok := lex.Next()
	require.Equal(t, TNum, tok.Kind)
	assert.Equal(t, uint32('\n'), tok.Num)
}

func TestLexerSkipsLineComments(t *testing.T) {
	lex := newTestLexer(t, "1 // trailing comment\n2")
	toks := allTokens(lex)
	require.Len(t, toks, 3)
	assert.Equal(t, uint32(1), toks[0].Num)
	assert.Equal(t, uint32(2), toks[1].Num)
}

// TestTokenClassAndCompoundOffset is the class-mask property: every
// compound-assign token equals its base operator plus the fixed
// classOffset, and tokenClass puts it in the family one classOffset
// above its base operator's family.
func TestTokenClassAndCompoundOffset(t *testing.T) {
	pairs := []struct {
		base, compound TokenKind
	}{
		{TPlus, TPlusAssign},
		{TMinus, TMinusAssign},
		{TPipe, TPipeAssign},
		{TCaret, TCaretAssign},
		{TStar, TStarAssign},
		{TSlash, TSlashAssign},
		{TPercent, TPercentAssign},
		{TAmp, TAmpAssign},
		{TShl, TShlAssign},
		{TShr, TShrAssign},
	}
	for _, p := range pairs {
		assert.Equal(t, p.base+classOffset, p.compound)
		assert.Equal(t, tokenClass(p.base)+classOffset, tokenClass(p.compound))
	}
}

func TestLexerCompoundAssignOperators(t *testing.T) {
	lex := newTestLexer(t, "+= -= <<= >>=")
	toks := allTokens(lex)
	require.Len(t, toks, 5)
	assert.Equal(t, TPlusAssign, toks[0].Kind)
	assert.Equal(t, TMinusAssign, toks[1].Kind)
	assert.Equal(t, TShlAssign, toks[2].Kind)
	assert.Equal(t, TShrAssign, toks[3].Kind)
}

// TestLexerDecimalOverflowIsFatal covers testable property 7: a
// decimal literal whose accumulated value would not strictly increase
// on the next digit (i.e. it no longer fits in uint32) is rejected.
// 4294967296 is 2^32, one past the largest representable value.
func TestLexerDecimalOverflowIsFatal(t *testing.T) {
	lex := newTestLexer(t, "4294967296")

	var panicked bool
	func() {
		defer func() {
			if recover() != nil {
				panicked = true
			}
		}()
		lex.Next()
	}()
	assert.True(t, panicked, "a decimal literal overflowing uint32 must be fatal")
}

func TestLexerVisibleEOL(t *testing.T) {
	lex := newTestLexer(t, "1\n2")
	lex.SetVisibleEOL(true)
	toks := allTokens(lex)
	require.Len(t, toks, 4)
	assert.Equal(t, TEol, toks[1].Kind)
}
