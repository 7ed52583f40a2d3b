// Package ast defines the crate-level abstract syntax tree consumed by the
// semantic-analysis core. The parser (out of scope for this module) is
// responsible for producing a tree in this shape, with every node already
// carrying a stable NodeID and a source Span.
package ast

import "fmt"

// NodeID uniquely identifies an AST node within a crate. Stable across all
// passes: the parser assigns it once and no later pass may renumber nodes.
type NodeID uint32

// CrateIndex identifies a crate; LocalCrate is always the crate currently
// being compiled.
type CrateIndex uint32

// LocalCrate is the crate index of the crate under compilation.
const LocalCrate CrateIndex = 0

// DefID is the global identifier of a definition: a crate index plus a node
// index local to that crate.
type DefID struct {
	Crate CrateIndex
	Index uint32
}

func (d DefID) String() string {
	if d.Crate == LocalCrate {
		return fmt.Sprintf("local#%d", d.Index)
	}
	return fmt.Sprintf("crate%d#%d", d.Crate, d.Index)
}

// IsLocal reports whether this definition lives in the crate under compilation.
func (d DefID) IsLocal() bool { return d.Crate == LocalCrate }

// Pos is a single point in a source file.
type Pos struct {
	File   string
	Line   int
	Column int
	Offset int
}

func (p Pos) String() string {
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Span is a byte range in a source file, as required by spec §6's external
// parser interface: {filename, byte-lo, byte-hi}.
type Span struct {
	File string
	Lo   int
	Hi   int
}

// Node is the common interface implemented by every AST node.
type Node interface {
	ID() NodeID
	Span() Span
}

// base is embedded by every concrete node to provide ID()/Span() for free.
type base struct {
	NodeID   NodeID
	NodeSpan Span
}

func (b base) ID() NodeID   { return b.NodeID }
func (b base) Span() Span   { return b.NodeSpan }

// Ident is a bare identifier occurrence, the unit the resolver maps to a Def.
type Ident struct {
	base
	Name string
}

// Path is a (possibly multi-segment) reference such as `a::b::c`.
type Path struct {
	base
	Segments []string
}

func (p *Path) String() string {
	s := ""
	for i, seg := range p.Segments {
		if i > 0 {
			s += "::"
		}
		s += seg
	}
	return s
}

// Crate is the root of the whole-crate AST handed to the resolver.
type Crate struct {
	base
	Name    string
	Root    *Mod
}

// Mod is a module: a named collection of items, imports, and nested modules.
type Mod struct {
	base
	Name     string
	Items    []Item
	Imports  []*Import
	Children []*Mod
}

// ImportKind distinguishes the three import shapes spec §1/§4.C calls out.
type ImportKind int

const (
	ImportNamed ImportKind = iota // use a::b::c;
	ImportList                    // use a::b::{c, d};
	ImportGlob                    // use a::b::*;
)

// Import is a single `use` view-item.
type Import struct {
	base
	Kind   ImportKind
	Path   *Path     // prefix for List/Glob; full path for Named
	Names  []string  // List: the named items; Named: single-element convenience
	Alias  string    // Named only: `use a::b as c;`
}

// Item is the common interface for top-level/module-level declarations.
type Item interface {
	Node
	itemNode()
	ItemName() string
	IsExported() bool
}

type itemBase struct {
	base
	Name     string
	Exported bool
}

func (i itemBase) itemNode()          {}
func (i itemBase) ItemName() string   { return i.Name }
func (i itemBase) IsExported() bool   { return i.Exported }

// FnItem is a function declaration (top-level or inherent/trait method body).
type FnItem struct {
	itemBase
	TypeParams []*TypeParam
	Params     []*Param
	RetType    TypeExpr
	Variadic   bool
	Pure       bool // purity flag, spec §3 "Definition ... function (with purity flag)"
	Body       *Block
}

// Param is a single formal argument.
type Param struct {
	base
	Name string
	Type TypeExpr
}

// TypeParam is a generic type parameter, referenced elsewhere by Ordinal.
type TypeParam struct {
	base
	Name    string
	Ordinal int
	Bounds  []*Path // trait bounds
}

// StructItem declares a nominal record type ("class" in spec's terminology).
type StructItem struct {
	itemBase
	TypeParams []*TypeParam
	Fields     []*FieldDef
}

// FieldDef is one field of a StructItem.
type FieldDef struct {
	base
	Name     string
	Type     TypeExpr
	Exported bool
}

// EnumItem declares a sum type with zero or more variants.
type EnumItem struct {
	itemBase
	TypeParams []*TypeParam
	Variants   []*VariantDef
}

// VariantDef is one arm of an EnumItem, with an ordinal index used for
// tag assignment by the layout component (spec §4.G).
type VariantDef struct {
	base
	Name   string
	Index  int
	Fields []TypeExpr // positional payload types; empty means nullary
}

// TraitItem declares a trait (method signatures only).
type TraitItem struct {
	itemBase
	Methods []*FnItem // bodies may be absent (interface methods)
}

// ImplItem implements either an inherent impl (Trait == nil) or a trait impl.
type ImplItem struct {
	itemBase
	TypeParams []*TypeParam
	Trait      *Path // nil for inherent impls
	SelfType   TypeExpr
	Methods    []*FnItem
}

// ConstItem declares a compile-time constant.
type ConstItem struct {
	itemBase
	Type  TypeExpr
	Value Expr
}

// TypeAliasItem declares `type Foo = Bar;`.
type TypeAliasItem struct {
	itemBase
	TypeParams []*TypeParam
	Aliased    TypeExpr
}

// ModItem nests a Mod as an item so Mod.Items can contain submodules uniformly.
type ModItem struct {
	itemBase
	Mod *Mod
}
