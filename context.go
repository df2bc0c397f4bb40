package spl

import (
	"fmt"
	"os"
)

// Ctx is the single process-global aggregate described in §5: the
// sole owner of the string table, type registry, scope stack, lexer
// state and the three emit sinks. It is mutated only by the Parser;
// nothing in this package holds a second reference to any of its
// parts that would let two goroutines race on it, which is the whole
// of the concurrency contract a single-threaded batch compiler needs.
type Ctx struct {
	Strtab   *StringTable
	Scopes   *ScopeTable
	Types    *TypeRegistry
	Emit     *Emitter
	Lexer    *Lexer
	Reporter *Reporter

	sourceFile string
	outBase    string

	declFile *os.File
	typFile  *os.File
	implFile *os.File

	tok Token // one token of lookahead, primed by Prime

	// Base types, pre-registered at startup. i32 and u32 are distinct
	// named types sharing Kind U32 (the data model has no separate
	// signed-32 kind, only a width, so signedness is carried purely
	// by which name the programmer wrote; see DESIGN.md).
	typeVoid, typeBool, typeU8, typeU32, typeI32, typeStr *Type

	fnReturnType *Type // return type of the function currently being parsed
}

// NewCtx builds a Ctx wired to sourceFile, ready to have its output
// files opened with OpenOutputs and then be driven by a Parser.
func NewCtx(sourceFile, outBase string, abortOnError bool) *Ctx {
	strtab := NewStringTable()
	reporter := NewReporter(sourceFile, abortOnError)
	ctx := &Ctx{
		Strtab:     strtab,
		Scopes:     NewScopeTable(),
		Types:      NewTypeRegistry(strtab, reporter),
		Lexer:      NewLexer(strtab, reporter),
		Reporter:   reporter,
		sourceFile: sourceFile,
		outBase:    outBase,
	}
	ctx.initBaseTypes()
	return ctx
}

func (c *Ctx) initBaseTypes() {
	c.typeVoid = c.Types.Make(c.Strtab.Intern("void"), TypeVoid, nil, nil, 0)
	c.typeBool = c.Types.Make(c.Strtab.Intern("bool"), TypeBool, nil, nil, 0)
	c.typeU8 = c.Types.Make(c.Strtab.Intern("u8"), TypeU8, nil, nil, 0)
	c.typeU32 = c.Types.Make(c.Strtab.Intern("u32"), TypeU32, nil, nil, 0)
	c.typeI32 = c.Types.Make(c.Strtab.Intern("i32"), TypeU32, nil, nil, 0)
	c.typeStr = c.Types.Make(c.Strtab.Intern("str"), TypeStr, nil, nil, 0)
}

// OpenOutputs opens the three output files (<base>.decl.h, .type.h,
// .impl.c) and writes the impl preamble required by §6.
func (c *Ctx) OpenOutputs() error {
	var err error
	if c.declFile, err = os.Create(c.outBase + ".decl.h"); err != nil {
		return err
	}
	if c.typFile, err = os.Create(c.outBase + ".type.h"); err != nil {
		return err
	}
	if c.implFile, err = os.Create(c.outBase + ".impl.c"); err != nil {
		return err
	}
	c.Emit = NewEmitter(c.declFile, c.typFile, c.implFile)
	c.Emit.Impl.WriteLine("#include <builtin.type.h>")
	c.Emit.Impl.WriteLine(fmt.Sprintf("#include \"%s.type.h\"", c.outBase))
	c.Emit.Impl.WriteLine(fmt.Sprintf("#include \"%s.decl.h\"", c.outBase))
	c.Emit.Impl.WriteLine("#include <library.impl.h>")
	return nil
}

// Close writes the trailing runtime include, flushes and closes all
// three output files. On a failed compile, the caller must not call
// Close: a non-zero exit must leave no output claiming success, and
// Reporter.Fatalf already terminates the process before Close would
// run.
func (c *Ctx) Close() error {
	c.Emit.Impl.WriteLine("#include <library.impl.c>")
	if err := c.Emit.Flush(); err != nil {
		return err
	}
	for _, f := range []*os.File{c.declFile, c.typFile, c.implFile} {
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}

// DumpScopes renders the current scope chain via ScopeTable.Dump, for
// the CLI's -d debug flag. It has no effect on compilation; it exists
// purely so a developer chasing a scoping bug can see what the parser
// sees without attaching a debugger.
func (c *Ctx) DumpScopes() string { return c.Scopes.Dump() }

// ---- C name mangling (§6) ----

func mangleType(t *Type) string  { return "t$" + t.Name.Text }
func mangleVar(name string) string  { return "$" + name }
func mangleEnumConst(name string) string { return "c$" + name }
func mangleFunc(name string) string { return "fn_" + name }
func mangleStructBacking(name string) string { return "$$" + name }

// cFieldType spells the C type of a struct field: a trailing pointer
// when the field was declared with a leading '*' (PtrField) or when
// its type is still an unresolved forward reference (Undefined types
// can only ever be referenced through a pointer, since their size
// isn't known yet), otherwise the bare named type.
func cFieldType(t *Type, isPtr bool) string {
	base := mangleType(t)
	if isPtr || t.Kind == TypeUndefined {
		return base + " *"
	}
	return base
}

// cValueType spells the C type of a variable, parameter or return
// value. Struct-typed values are always implicitly reference-passed
// in SL: a function parameter, return value or local variable typed
// as a struct gets a C pointer, regardless of any '*' in source
// (there is none to write at these positions).
func cValueType(t *Type) string {
	base := mangleType(t)
	if t.Kind == TypeStruct {
		return base + " *"
	}
	return base
}
