package spl

import (
	"fmt"
	"strconv"
	"strings"
)

// Parser is the recursive-descent, syntax-directed front end. There
// is no retained syntax tree: every ParseX method both consumes
// tokens and writes C text into Ctx.Emit's three sinks as it goes.
// Scope and type tables are consulted and mutated inline, exactly
// where the grammar needs them (variable declarations, struct
// initialisers, function signatures), never as a separate pass.
type Parser struct {
	ctx *Ctx

	// numberFormat renders a numeric literal's value. It is hexLiteral
	// everywhere except while parsing an explicit enum tag value,
	// where it is switched to decimalLiteral so the emitted #define
	// preserves the source's decimal spelling for the common case of
	// a bare integer constant (see parseEnum).
	numberFormat func(uint32) string
}

func NewParser(ctx *Ctx) *Parser {
	return &Parser{ctx: ctx, numberFormat: hexLiteral}
}

func hexLiteral(n uint32) string     { return "0x" + strconv.FormatUint(uint64(n), 16) }
func decimalLiteral(n uint32) string { return strconv.FormatUint(uint64(n), 10) }

// ---- token-stream helpers ----

func (p *Parser) cur() Token  { return p.ctx.tok }
func (p *Parser) at(k TokenKind) bool { return p.ctx.tok.Kind == k }

func (p *Parser) advance() Token {
	t := p.ctx.tok
	p.ctx.tok = p.ctx.Lexer.Next()
	return t
}

func (p *Parser) accept(k TokenKind) bool {
	if p.at(k) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(k TokenKind, what string) Token {
	if !p.at(k) {
		p.fatalf("expected %s", what)
	}
	return p.advance()
}

func (p *Parser) fatalf(format string, args ...interface{}) {
	p.ctx.Reporter.Fatalf(p.ctx.tok.Line, format, args...)
}

func (p *Parser) matchesAny(ops []TokenKind) bool {
	for _, k := range ops {
		if p.ctx.tok.Kind == k {
			return true
		}
	}
	return false
}

func isCompoundAssign(k TokenKind) bool {
	switch k {
	case TPlusAssign, TMinusAssign, TPipeAssign, TCaretAssign,
		TStarAssign, TSlashAssign, TPercentAssign, TAmpAssign, TShlAssign, TShrAssign:
		return true
	}
	return false
}

// ---- Program ----

// GR: Program <- TopDecl* EOF
func (p *Parser) Parse() {
	p.ctx.tok = p.ctx.Lexer.Next()
	for {
		switch p.cur().Kind {
		case TEnum:
			p.parseEnum()
		case TStruct:
			p.parseStruct()
		case TFn:
			p.parseFn()
		case TVar:
			p.parseVarDecl(true)
		case TEOF:
			return
		default:
			p.fatalf("expected 'enum', 'struct', 'fn' or 'var'")
		}
	}
}

// ---- Enum ----

// GR: Enum <- "enum" Identifier? "{" EnumTag ("," EnumTag)* ","? "}" ";"
// GR: EnumTag <- Identifier ("=" Expr)?
func (p *Parser) parseEnum() {
	p.advance() // 'enum'
	if p.at(TIdent) {
		p.advance() // optional enum name; SL enum tags live in the
		// global scope regardless, so the name itself carries no
		// further meaning to the emitter.
	}
	p.expect(TLbrace, "'{'")

	var next uint32
	for !p.at(TRbrace) {
		tagTok := p.expect(TIdent, "enum tag")
		if findIn(p.ctx.Scopes.Global(), tagTok.Ident) != nil {
			p.fatalf("enum tag '%s' redefined", tagTok.Ident.Text)
		}
		sym := p.ctx.Scopes.InsertGlobal(tagTok.Ident, p.ctx.typeU32)
		sym.Kind = SymbolEnumValue

		if p.accept(TAssign) {
			// The explicit value is emitted as a parsed expression,
			// verbatim in the sense that numeric literals keep their
			// decimal spelling instead of the hex format every other
			// expression position uses (see numberFormat). The
			// counter itself does not advance for this tag: the next
			// auto-numbered tag resumes from where the counter stood
			// before this explicit one, not from the explicit value.
			prevFormat := p.numberFormat
			p.numberFormat = decimalLiteral
			p.ctx.Emit.Impl.Write(fmt.Sprintf("#define %s ", mangleEnumConst(tagTok.Ident.Text)))
			p.parseExpr()
			p.ctx.Emit.Impl.WriteLine("")
			p.numberFormat = prevFormat
		} else {
			p.ctx.Emit.Impl.WriteLine(fmt.Sprintf("#define %s %s", mangleEnumConst(tagTok.Ident.Text), hexLiteral(next)))
			next++
		}

		if !p.accept(TComma) {
			break
		}
	}
	p.expect(TRbrace, "'}'")
	p.expect(TSemi, "';'")
}

// ---- Struct ----

// GR: Struct <- "struct" Identifier "{" Field ("," Field)* ","? "}" ";"
// GR: Field  <- Identifier "*"? Type
func (p *Parser) parseStruct() {
	p.advance() // 'struct'
	nameTok := p.expect(TIdent, "struct name")
	name := nameTok.Ident

	existing := p.ctx.Types.Find(name)
	if existing != nil && existing.Kind != TypeUndefined {
		p.fatalf("struct '%s' redefined", name.Text)
	}

	p.expect(TLbrace, "'{'")
	p.ctx.Scopes.Push(ScopeStruct)
	for !p.at(TRbrace) {
		fieldTok := p.expect(TIdent, "field name")
		isPtr := p.accept(TStar)
		fieldType := p.parseType(true)
		if findIn(p.ctx.Scopes.Current(), fieldTok.Ident) != nil {
			p.fatalf("field '%s' redefined", fieldTok.Ident.Text)
		}
		sym := p.ctx.Scopes.Insert(fieldTok.Ident, fieldType)
		if isPtr {
			sym.Kind = SymbolPtrField
		} else {
			sym.Kind = SymbolField
		}
		if !p.accept(TComma) {
			break
		}
	}
	p.expect(TRbrace, "'}'")
	p.expect(TSemi, "';'")
	fieldScope := p.ctx.Scopes.Pop()

	// A field referencing this same struct name (directly, or through
	// a pointer field parsed above) mints the Undefined placeholder
	// during field parsing itself, so it must be looked up again here
	// rather than trusting the snapshot taken before the fields were
	// read.
	existing = p.ctx.Types.Find(name)
	var typ *Type
	if existing != nil {
		p.ctx.Types.ResolveStruct(existing, fieldScope.first)
		typ = existing
	} else {
		typ = p.ctx.Types.Make(name, TypeStruct, nil, fieldScope.first, 0)
	}

	p.ctx.Emit.Typ.Writef("typedef struct t$%s t$%s;\n", name.Text, name.Text)
	p.ctx.Emit.Decl.Writef("struct t$%s {\n", name.Text)
	for sym := typ.Fields; sym != nil; sym = sym.next {
		ctype := cFieldType(sym.Type, sym.Kind == SymbolPtrField)
		if strings.HasSuffix(ctype, "*") {
			p.ctx.Emit.Decl.Writef("\t%s%s;\n", ctype, sym.Name.Text)
		} else {
			p.ctx.Emit.Decl.Writef("\t%s %s;\n", ctype, sym.Name.Text)
		}
	}
	p.ctx.Emit.Decl.Write("};\n")
}

// ---- Function ----

// GR: Function <- "fn" Identifier "(" Params? ")" Type? "{" Statement* "}"
// GR: Params    <- Param ("," Param)*
// GR: Param     <- Identifier Type
func (p *Parser) parseFn() {
	p.advance() // 'fn'
	nameTok := p.expect(TIdent, "function name")

	fnSym := p.ctx.Scopes.InsertGlobal(nameTok.Ident, nil)
	fnSym.Kind = SymbolFunction

	p.expect(TLparen, "'('")
	p.ctx.Scopes.Push(ScopeFunction)
	var params []*Symbol
	for !p.at(TRparen) {
		pnameTok := p.expect(TIdent, "parameter name")
		if findIn(p.ctx.Scopes.Current(), pnameTok.Ident) != nil {
			p.fatalf("duplicate parameter '%s'", pnameTok.Ident.Text)
		}
		ptype := p.parseType(false)
		sym := p.ctx.Scopes.Insert(pnameTok.Ident, ptype)
		params = append(params, sym)
		if !p.accept(TComma) {
			break
		}
	}
	p.expect(TRparen, "')'")

	retType := p.ctx.typeVoid
	if !p.at(TLbrace) {
		retType = p.parseType(false)
	}
	fnSym.Type = retType

	prevReturn := p.ctx.fnReturnType
	p.ctx.fnReturnType = retType

	proto := p.functionSignature(nameTok.Ident.Text, retType, params)
	p.ctx.Emit.Decl.Write(proto + ";\n")
	p.ctx.Emit.Impl.Write(proto + " ")
	p.parseBracedBlock(ScopeBlock)

	p.ctx.fnReturnType = prevReturn
	p.ctx.Scopes.Pop() // the function/param scope pushed above
}

func (p *Parser) functionSignature(name string, ret *Type, params []*Symbol) string {
	var sb strings.Builder
	sb.WriteString(cValueType(ret))
	sb.WriteString(" ")
	sb.WriteString(mangleFunc(name))
	sb.WriteString("(")
	for i, s := range params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(cValueType(s.Type))
		sb.WriteString(" ")
		sb.WriteString(mangleVar(s.Name.Text))
	}
	sb.WriteString(")")
	return sb.String()
}

// parseBracedBlock consumes a "{ Statement* }", pushing kind as the
// scope for its body and emitting matching C braces into the impl
// sink (whose indentation then tracks these braces automatically).
func (p *Parser) parseBracedBlock(kind ScopeKind) {
	p.expect(TLbrace, "'{'")
	p.ctx.Emit.Impl.Write("{\n")
	p.ctx.Scopes.Push(kind)
	for !p.at(TRbrace) {
		p.parseStatement()
	}
	p.ctx.Scopes.Pop()
	p.expect(TRbrace, "'}'")
	p.ctx.Emit.Impl.Write("}\n")
}

// ---- Variable ----

// GR: VarDecl <- "var" Identifier Type ("=" Initialiser)? ";"
// GR: Initialiser <- BraceInit | Expr
// GR: BraceInit <- "{" Expr ("," Expr)* ","? "}"
func (p *Parser) parseVarDecl(global bool) {
	p.advance() // 'var'
	nameTok := p.expect(TIdent, "variable name")
	typ := p.parseType(false)

	if global {
		p.ctx.Scopes.InsertGlobal(nameTok.Ident, typ)
	} else {
		if findIn(p.ctx.Scopes.Current(), nameTok.Ident) != nil {
			p.fatalf("'%s' redefined", nameTok.Ident.Text)
		}
		p.ctx.Scopes.Insert(nameTok.Ident, typ)
	}

	name := nameTok.Ident.Text
	hasInit := p.accept(TAssign)

	switch {
	case typ.Kind == TypeStruct && hasInit && p.at(TLbrace):
		p.ctx.Emit.Impl.Write(mangleType(typ) + " " + mangleStructBacking(name) + " = ")
		p.parseBraceInitialiser()
		p.ctx.Emit.Impl.WriteLine(";")
		p.ctx.Emit.Impl.WriteLine(mangleType(typ) + " *" + mangleVar(name) + " = &" + mangleStructBacking(name) + ";")
	case typ.Kind == TypeArray && hasInit && p.at(TLbrace):
		p.ctx.Emit.Impl.Write(cValueType(typ) + " " + mangleVar(name) + " = ")
		p.parseBraceInitialiser()
		p.ctx.Emit.Impl.WriteLine(";")
	case hasInit:
		p.ctx.Emit.Impl.Write(cValueType(typ) + " " + mangleVar(name) + " = ")
		p.parseExpr()
		p.ctx.Emit.Impl.WriteLine(";")
	default:
		p.ctx.Emit.Impl.Write(cValueType(typ) + " " + mangleVar(name) + " = ")
		p.emitZeroValue(typ)
		p.ctx.Emit.Impl.WriteLine(";")
	}
	p.expect(TSemi, "';'")
}

func (p *Parser) emitZeroValue(typ *Type) {
	if typ.Kind == TypeArray {
		p.ctx.Emit.Impl.Write("{ 0, }")
		return
	}
	p.ctx.Emit.Impl.Write("0")
}

func (p *Parser) parseBraceInitialiser() {
	p.expect(TLbrace, "'{'")
	p.ctx.Emit.Impl.Write("{ ")
	first := true
	for !p.at(TRbrace) {
		if !first {
			p.ctx.Emit.Impl.Write(", ")
		}
		first = false
		p.parseExpr()
		if !p.accept(TComma) {
			break
		}
	}
	p.expect(TRbrace, "'}'")
	p.ctx.Emit.Impl.Write(" }")
}

// ---- Statements ----

// GR: Statement <- Return | Break | Continue | While | If | VarDecl | ";" | ExprStmt
func (p *Parser) parseStatement() {
	switch p.cur().Kind {
	case TReturn:
		p.parseReturnStmt()
	case TBreak:
		p.advance()
		if p.ctx.Scopes.FindKind(ScopeLoop) == nil {
			p.fatalf("break must be used from inside a looping construct")
		}
		p.expect(TSemi, "';'")
		p.ctx.Emit.Impl.WriteLine("break;")
	case TContinue:
		p.advance()
		if p.ctx.Scopes.FindKind(ScopeLoop) == nil {
			p.fatalf("continue must be used from inside a looping construct")
		}
		p.expect(TSemi, "';'")
		p.ctx.Emit.Impl.WriteLine("continue;")
	case TWhile:
		p.parseWhileStmt()
	case TIf:
		p.parseIfStmt()
	case TVar:
		p.parseVarDecl(false)
	case TSemi:
		p.advance()
	default:
		p.parseExprStmt()
	}
}

// GR: Return <- "return" Expr? ";"
func (p *Parser) parseReturnStmt() {
	p.advance() // 'return'
	p.ctx.Emit.Impl.Write("return")
	if !p.at(TSemi) {
		p.ctx.Emit.Impl.Write(" ")
		p.parseExpr()
	}
	p.ctx.Emit.Impl.WriteLine(";")
	p.expect(TSemi, "';'")
}

// GR: While <- "while" Expr "{" Statement* "}"
func (p *Parser) parseWhileStmt() {
	p.advance() // 'while'
	p.ctx.Emit.Impl.Write("while (")
	p.parseExpr()
	p.ctx.Emit.Impl.Write(") ")
	p.parseBracedBlock(ScopeLoop)
}

// GR: If <- "if" Expr "{" Statement* "}" (("else" If) | ("else" "{" Statement* "}"))?
func (p *Parser) parseIfStmt() {
	p.advance() // 'if'
	p.ctx.Emit.Impl.Write("if (")
	p.parseExpr()
	p.ctx.Emit.Impl.Write(") ")
	p.parseBracedBlock(ScopeBlock)

	for p.accept(TElse) {
		if p.accept(TIf) {
			p.ctx.Emit.Impl.Write("else if (")
			p.parseExpr()
			p.ctx.Emit.Impl.Write(") ")
			p.parseBracedBlock(ScopeBlock)
			continue
		}
		p.ctx.Emit.Impl.Write("else ")
		p.parseBracedBlock(ScopeBlock)
		break
	}
}

// GR: ExprStmt <- Expr (("=" | CompoundAssign) Expr | "++" | "--")? ";"
func (p *Parser) parseExprStmt() {
	p.parseExpr()
	switch {
	case p.accept(TAssign):
		p.ctx.Emit.Impl.Write(" = ")
		p.parseExpr()
	case p.at(TInc):
		p.advance()
		p.ctx.Emit.Impl.Write("++")
	case p.at(TDec):
		p.advance()
		p.ctx.Emit.Impl.Write("--")
	case isCompoundAssign(p.cur().Kind):
		op := p.advance().Kind
		p.ctx.Emit.Impl.Write(" " + tokenSpellings[op] + " ")
		p.parseExpr()
	}
	p.ctx.Emit.Impl.WriteLine(";")
	p.expect(TSemi, "';'")
}

// ---- Expressions ----
//
// Each binary-precedence level wraps its own chain in a deferred
// parenthesis group: OpenGroup eagerly writes '(', and the group is
// only kept (CloseGroup writes the matching ')') if an operator at
// this level was actually emitted. A bare operand falls through every
// level with its parens elided, so `1`, `(1)` and `((1))` all emit
// plain `0x1`.

// GR: Expr <- OrExpr
func (p *Parser) parseExpr() { p.parseOrExpr() }

// GR: OrExpr <- AndExpr ("||" AndExpr)*
func (p *Parser) parseOrExpr() { p.parseBinary([]TokenKind{TOrOr}, p.parseAndExpr) }

// GR: AndExpr <- RelExpr ("&&" RelExpr)*
func (p *Parser) parseAndExpr() { p.parseBinary([]TokenKind{TAndAnd}, p.parseRelExpr) }

// GR: RelExpr <- AddExpr (("==" | "!=" | "<" | "<=" | ">" | ">=") AddExpr)*
func (p *Parser) parseRelExpr() {
	p.parseBinary([]TokenKind{TEq, TNe, TLt, TLe, TGt, TGe}, p.parseAddExpr)
}

// GR: AddExpr <- MulExpr (("+" | "-" | "|" | "^") MulExpr)*
func (p *Parser) parseAddExpr() {
	p.parseBinary([]TokenKind{TPlus, TMinus, TPipe, TCaret}, p.parseMulExpr)
}

// GR: MulExpr <- Unary (("*" | "/" | "%" | "&" | "<<" | ">>") Unary)*
func (p *Parser) parseMulExpr() {
	p.parseBinary([]TokenKind{TStar, TSlash, TPercent, TAmp, TShl, TShr}, p.parseUnary)
}

func (p *Parser) parseBinary(ops []TokenKind, next func()) {
	g := p.ctx.Emit.Impl.OpenGroup()
	next()
	for p.matchesAny(ops) {
		p.ctx.Emit.Impl.MarkOperator()
		spelling := tokenSpellings[p.cur().Kind]
		p.advance()
		p.ctx.Emit.Impl.Write(" " + spelling + " ")
		next()
	}
	p.ctx.Emit.Impl.CloseGroup(g)
}

// GR: Unary <- ("+" | "-" | "!" | "~")* Primary
func (p *Parser) parseUnary() {
	switch p.cur().Kind {
	case TPlus, TMinus, TNot, TTilde:
		spelling := tokenSpellings[p.cur().Kind]
		p.advance()
		p.ctx.Emit.Impl.Write(spelling)
		p.parseUnary()
	case TAmp:
		p.fatalf("unary '&' is not supported")
	default:
		p.parsePrimary()
	}
}

// GR: Primary <- Number | String | "true" | "false" | "nil"
// GR:          | "(" Expr ")" | "new" "(" Identifier ")" | IdentExpr
func (p *Parser) parsePrimary() {
	switch p.cur().Kind {
	case TNum:
		n := p.advance().Num
		p.ctx.Emit.Impl.Write(p.numberFormat(n))
	case TStr:
		s := p.advance().Raw
		p.ctx.Emit.Impl.WriteStringLiteral(s)
	case TTrue:
		p.advance()
		p.ctx.Emit.Impl.Write("1")
	case TFalse:
		p.advance()
		p.ctx.Emit.Impl.Write("0")
	case TNil:
		p.advance()
		p.ctx.Emit.Impl.Write("0")
	case TLparen:
		p.advance()
		g := p.ctx.Emit.Impl.OpenGroup()
		p.parseExpr()
		p.expect(TRparen, "')'")
		p.ctx.Emit.Impl.CloseGroup(g)
	case TNew:
		p.advance()
		p.expect(TLparen, "'('")
		nameTok := p.expect(TIdent, "type name")
		typ := p.ctx.Types.Find(nameTok.Ident)
		if typ == nil {
			p.fatalf("undefined type '%s'", nameTok.Ident.Text)
		}
		p.expect(TRparen, "')'")
		p.ctx.Emit.Impl.Write(fmt.Sprintf("calloc(1, sizeof(%s))", mangleType(typ)))
	case TIdent:
		p.parseIdentifierExpr()
	default:
		p.fatalf("expected an expression")
	}
}

// GR: IdentExpr <- Identifier (CallArgs | ("." Identifier | "[" Expr "]")*)
func (p *Parser) parseIdentifierExpr() {
	nameTok := p.advance()
	name := nameTok.Ident

	if p.at(TLparen) {
		p.parseCallExpr(name)
		return
	}

	sym := p.ctx.Scopes.Find(name)
	if sym == nil {
		p.fatalf("undefined identifier '%s'", name.Text)
	}
	if sym.Kind == SymbolEnumValue {
		p.ctx.Emit.Impl.Write(mangleEnumConst(name.Text))
	} else {
		p.ctx.Emit.Impl.Write(mangleVar(name.Text))
	}

	curType := sym.Type
	for {
		switch p.cur().Kind {
		case TDot:
			p.advance()
			fieldTok := p.expect(TIdent, "field name")
			fieldSym := p.ctx.Types.FindField(curType, fieldTok.Ident, nameTok.Line)
			p.ctx.Emit.Impl.Write("->" + fieldTok.Ident.Text)
			curType = fieldSym.Type
		case TLbracket:
			p.advance()
			p.ctx.Emit.Impl.Write("[")
			p.parseExpr()
			p.expect(TRbracket, "']'")
			p.ctx.Emit.Impl.Write("]")
			if curType != nil {
				curType = curType.Of
			}
		default:
			return
		}
	}
}

// GR: CallArgs <- "(" (Expr ("," Expr)*)? ")"
func (p *Parser) parseCallExpr(name *Str) {
	p.advance() // '('
	if name.Text == "error" {
		p.parseErrorCall()
		return
	}
	p.ctx.Emit.Impl.Write(mangleFunc(name.Text) + "(")
	first := true
	for !p.at(TRparen) {
		if !first {
			p.ctx.Emit.Impl.Write(", ")
		}
		first = false
		p.parseExpr()
		if !p.accept(TComma) {
			break
		}
	}
	p.expect(TRparen, "')'")
	p.ctx.Emit.Impl.Write(")")
}

// errorFd is the file descriptor the error(...) builtin writes its
// formatted message to; stderr, like any other diagnostic.
const errorFd = "2"

// parseErrorCall lowers `error(arg, ...)` to a GCC statement
// expression bracketing fn_error_begin()/fn_error_end() around one
// fn_writes/fn_writex call per argument, selected by each argument's
// static type (string literals and str-typed identifiers go through
// fn_writes; everything else through fn_writex).
func (p *Parser) parseErrorCall() {
	p.ctx.Emit.Impl.Write("({ fn_error_begin(); ")
	for !p.at(TRparen) {
		p.emitErrorArg()
		p.ctx.Emit.Impl.Write("; ")
		if !p.accept(TComma) {
			break
		}
	}
	p.expect(TRparen, "')'")
	p.ctx.Emit.Impl.Write("fn_error_end(); })")
}

func (p *Parser) emitErrorArg() {
	switch p.cur().Kind {
	case TStr:
		s := p.advance().Raw
		p.ctx.Emit.Impl.Write("fn_writes(" + errorFd + ", ")
		p.ctx.Emit.Impl.WriteStringLiteral(s)
		p.ctx.Emit.Impl.Write(")")
	case TNum:
		n := p.advance().Num
		p.ctx.Emit.Impl.Write("fn_writex(" + errorFd + ", " + p.numberFormat(n) + ")")
	case TIdent:
		nameTok := p.advance()
		sym := p.ctx.Scopes.Find(nameTok.Ident)
		if sym == nil {
			p.fatalf("undefined identifier '%s'", nameTok.Ident.Text)
		}
		ref := mangleVar(nameTok.Ident.Text)
		if sym.Kind == SymbolEnumValue {
			ref = mangleEnumConst(nameTok.Ident.Text)
		}
		fn := "fn_writex"
		if sym.Type == p.ctx.typeStr {
			fn = "fn_writes"
		}
		p.ctx.Emit.Impl.Write(fn + "(" + errorFd + ", " + ref + ")")
	default:
		p.fatalf("unsupported error() argument")
	}
}

// ---- Types ----

// GR: Type <- Identifier | "[" Number? "]" Type
func (p *Parser) parseType(forwardOK bool) *Type {
	if p.at(TLbracket) {
		p.advance()
		var count uint32
		if p.at(TNum) {
			count = p.advance().Num
		}
		p.expect(TRbracket, "']'")
		elem := p.parseType(false) // no forward refs inside arrays (invariant 2)
		return p.makeArrayType(elem, count)
	}
	if p.at(TStar) {
		p.fatalf("pointer types are not supported")
	}
	if p.at(TFn) {
		p.fatalf("function types are not supported")
	}
	if p.at(TStruct) {
		p.fatalf("anonymous struct types are not supported")
	}
	nameTok := p.expect(TIdent, "type name")
	if t := p.ctx.Types.Find(nameTok.Ident); t != nil {
		return t
	}
	if forwardOK {
		return p.ctx.Types.MakeUndefined(nameTok.Ident)
	}
	p.fatalf("undefined type '%s'", nameTok.Ident.Text)
	return nil
}

// makeArrayType resolves (or mints) the array type and, the first
// time a given element/count pair is seen, emits its typedef into the
// type header. A zero count is the "array of open size" form; its
// emission is the flexible-array idiom a C typedef of the shape
// "typedef T name[];" implies, kept as-is rather than special-cased
// further.
func (p *Parser) makeArrayType(elem *Type, count uint32) *Type {
	typ, isNew := p.ctx.Types.LookupOrMakeArray(elem, count)
	if isNew {
		if count == 0 {
			p.ctx.Emit.Typ.Writef("typedef %s %s[];\n", mangleType(elem), mangleType(typ))
		} else {
			p.ctx.Emit.Typ.Writef("typedef %s %s[%d];\n", mangleType(elem), mangleType(typ), count)
		}
	}
	return typ
}
