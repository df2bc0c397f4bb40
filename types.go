package spl

import "strconv"

// TypeKind is the kind tag of a Type record, exactly as enumerated in
// the data model: Void, Bool, U8, U32, Array, Slice, Str, Struct,
// Enum, and Undefined (a forward-referenced struct awaiting its
// body).
type TypeKind int

const (
	TypeVoid TypeKind = iota
	TypeBool
	TypeU8
	TypeU32
	TypeArray
	TypeSlice
	TypeStr
	TypeStruct
	TypeEnum
	TypeUndefined
)

// Type is a named or anonymous type record. Named types (Name != nil)
// are registered in the TypeRegistry they were built with; array
// types without an explicit name get a synthetic one so the emitter
// can still reference them through the decl/type headers.
type Type struct {
	Name   *Str
	Kind   TypeKind
	Of     *Type   // element type, for Array/Slice
	Fields *Symbol // field chain, for Struct
	Count  uint32  // element count, for Array (0 for Slice/open array)
}

// IsPointerCapable reports whether fields of this struct-or-undefined
// type, when referenced via a *Name field declaration, should mangle
// to a C pointer. Struct and Undefined types (the only legal targets
// of a forward reference) both answer yes.
func (t *Type) IsPointerCapable() bool {
	return t.Kind == TypeStruct || t.Kind == TypeUndefined
}

// TypeRegistry holds every named type reachable by lookup, plus the
// synthetic names minted for array types. Anonymous types (unnamed
// array element types that never get looked up again) are still
// constructed via Make, just never registered.
type TypeRegistry struct {
	strtab  *StringTable
	byName  map[*Str]*Type
	reporter *Reporter
}

func NewTypeRegistry(strtab *StringTable, reporter *Reporter) *TypeRegistry {
	return &TypeRegistry{
		strtab:   strtab,
		reporter: reporter,
		byName:   make(map[*Str]*Type),
	}
}

// Make constructs a type. If name is non-nil, the type is linked into
// the registry under that name; constructing a second type under the
// same name is only legal when the existing entry is Undefined (a
// forward reference being resolved). Anything else is a struct
// redefinition error, caught by the caller before Make is reached.
func (r *TypeRegistry) Make(name *Str, kind TypeKind, of *Type, fields *Symbol, count uint32) *Type {
	t := &Type{Name: name, Kind: kind, Of: of, Fields: fields, Count: count}
	if name != nil {
		r.byName[name] = t
	}
	return t
}

// Find returns the registered type for name, or nil.
func (r *TypeRegistry) Find(name *Str) *Type {
	return r.byName[name]
}

// MakeUndefined registers a forward-referenced struct name, returning
// the existing Undefined (or already-Struct) entry if one is already
// on file, or minting a fresh Undefined placeholder otherwise.
func (r *TypeRegistry) MakeUndefined(name *Str) *Type {
	if t := r.Find(name); t != nil {
		return t
	}
	return r.Make(name, TypeUndefined, nil, nil, 0)
}

// ResolveStruct promotes an Undefined placeholder to Struct in place,
// attaching its field chain. It is the only mutation a Type
// undergoes after construction, matching invariant 3 (a defined
// Struct never mutates again).
func (r *TypeRegistry) ResolveStruct(t *Type, fields *Symbol) {
	t.Kind = TypeStruct
	t.Fields = fields
}

// arrayTypeName builds the synthetic "<elem>$<count>" name the
// emitter uses to reference an array type through the decl/type
// headers, interning it so repeated array-of-T-N declarations share
// one Type record.
func (r *TypeRegistry) arrayTypeName(of *Type, count uint32) *Str {
	elemName := "?"
	if of.Name != nil {
		elemName = of.Name.Text
	}
	return r.strtab.Intern(elemName + "$" + strconv.FormatUint(uint64(count), 10))
}

// LookupOrMakeArray returns the registered array-of-of/count type,
// creating it (under its synthetic name) on first use. The second
// return value reports whether this call minted a new Type, so the
// caller can emit its typedef exactly once.
func (r *TypeRegistry) LookupOrMakeArray(of *Type, count uint32) (*Type, bool) {
	name := r.arrayTypeName(of, count)
	if t := r.Find(name); t != nil {
		return t, false
	}
	return r.Make(name, TypeArray, of, nil, count), true
}

// FindField looks up name among typ's fields, fatally erroring if typ
// isn't a struct or has no such field.
func (r *TypeRegistry) FindField(typ *Type, name *Str, line uint32) *Symbol {
	if typ.Kind != TypeStruct {
		r.reporter.Fatalf(line, "not a struct")
	}
	for s := typ.Fields; s != nil; s = s.next {
		if s.Name == name {
			return s
		}
	}
	r.reporter.Fatalf(line, "struct has no such field '%s'", name.Text)
	return nil
}
