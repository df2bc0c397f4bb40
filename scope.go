package spl

import "github.com/davecgh/go-spew/spew"

// SymbolKind classifies what a Symbol denotes.
type SymbolKind int

const (
	SymbolVar SymbolKind = iota
	SymbolField
	SymbolPtrField
	SymbolEnumValue
	SymbolFunction
)

// Symbol is one entry in a scope's insertion-ordered chain: a
// variable, a struct field (plain or pointer), an enum tag, or a
// function name. Order matters: it is the C struct layout for fields
// and the left-to-right parameter emission order for functions.
type Symbol struct {
	Name *Str
	Type *Type
	Kind SymbolKind
	next *Symbol
}

// ScopeKind classifies the lexical construct a Scope was pushed for.
type ScopeKind int

const (
	ScopeGlobal ScopeKind = iota
	ScopeFunction
	ScopeBlock
	ScopeLoop
	ScopeStruct
)

// Scope is one frame of the lexical-scope stack: a parent link plus
// an insertion-ordered symbol chain.
type Scope struct {
	parent *Scope
	first  *Symbol
	last   *Symbol
	Kind   ScopeKind
}

// Symbols returns the scope's symbol chain as a slice, in insertion
// order. Used to harvest a Struct scope's fields or a Function
// scope's parameters once the construct closes.
func (s *Scope) Symbols() []*Symbol {
	var out []*Symbol
	for sym := s.first; sym != nil; sym = sym.next {
		out = append(out, sym)
	}
	return out
}

// ScopeTable is the lexical-scope stack. The global scope is the
// root and is never popped.
type ScopeTable struct {
	global  Scope
	current *Scope
}

func NewScopeTable() *ScopeTable {
	t := &ScopeTable{global: Scope{Kind: ScopeGlobal}}
	t.current = &t.global
	return t
}

// Global returns the root scope, regardless of current nesting.
func (t *ScopeTable) Global() *Scope { return &t.global }

// Current returns the innermost open scope.
func (t *ScopeTable) Current() *Scope { return t.current }

// Push opens a new scope of the given kind as a child of the current
// scope.
func (t *ScopeTable) Push(kind ScopeKind) *Scope {
	s := &Scope{parent: t.current, Kind: kind}
	t.current = s
	return s
}

// Pop closes the current scope and returns it, so the caller can
// harvest its symbol chain (e.g. attach it as a struct's fields).
// Push/Pop are statically paired by the parser's recursive structure,
// so Pop never underflows in a correctly driven parse.
func (t *ScopeTable) Pop() *Scope {
	s := t.current
	t.current = s.parent
	return s
}

// FindKind walks parent-ward from the current scope looking for a
// scope of the given kind; used to validate break/continue.
func (t *ScopeTable) FindKind(kind ScopeKind) *Scope {
	for s := t.current; s != nil; s = s.parent {
		if s.Kind == kind {
			return s
		}
	}
	return nil
}

// findIn looks up name within exactly one scope's own chain.
func findIn(scope *Scope, name *Str) *Symbol {
	for sym := scope.first; sym != nil; sym = sym.next {
		if sym.Name == name {
			return sym
		}
	}
	return nil
}

// Find walks parent-ward from the current scope and returns the
// first symbol named name, or nil.
func (t *ScopeTable) Find(name *Str) *Symbol {
	for s := t.current; s != nil; s = s.parent {
		if sym := findIn(s, name); sym != nil {
			return sym
		}
	}
	return nil
}

// Insert appends a new Var symbol to the current scope's chain and
// returns it; the caller may overwrite Kind afterwards (e.g. to mark
// a struct field or enum tag).
func (t *ScopeTable) Insert(name *Str, typ *Type) *Symbol {
	return insertInto(t.current, name, typ)
}

// InsertGlobal appends a new Var symbol directly to the global scope,
// bypassing whatever scope is currently open. Used for function names
// and enum tags, which are always visible program-wide.
func (t *ScopeTable) InsertGlobal(name *Str, typ *Type) *Symbol {
	return insertInto(&t.global, name, typ)
}

// Dump renders the current scope, innermost first, as a structural
// dump for -d debugging. spew follows every pointer, so the parent
// scopes up to the global one are dumped in full as well.
func (t *ScopeTable) Dump() string {
	var cfg spew.ConfigState
	cfg.DisableMethods = true
	cfg.Indent = "  "
	return cfg.Sdump(t.current)
}

func insertInto(scope *Scope, name *Str, typ *Type) *Symbol {
	sym := &Symbol{Name: name, Type: typ, Kind: SymbolVar}
	if scope.first == nil {
		scope.first = sym
	} else {
		scope.last.next = sym
	}
	scope.last = sym
	return sym
}
