package ast

// DefKind tags the variant carried by a Def, matching spec §3's "Definition
// is a tagged variant" enumeration exactly.
type DefKind int

const (
	DefMod DefKind = iota
	DefEnumVariant
	DefFn
	DefConst
	DefTypeAlias
	DefTrait
	DefImplItem
	DefStruct     // "class" in spec's terminology
	DefStructField
	DefMethod
	DefTypeParam
	DefPrimitiveType
	DefLocal
	DefArg
	DefUpvar
	DefSelf
)

func (k DefKind) String() string {
	switch k {
	case DefMod:
		return "mod"
	case DefEnumVariant:
		return "enum-variant"
	case DefFn:
		return "fn"
	case DefConst:
		return "const"
	case DefTypeAlias:
		return "type-alias"
	case DefTrait:
		return "trait"
	case DefImplItem:
		return "impl-item"
	case DefStruct:
		return "struct"
	case DefStructField:
		return "struct-field"
	case DefMethod:
		return "method"
	case DefTypeParam:
		return "type-param"
	case DefPrimitiveType:
		return "primitive"
	case DefLocal:
		return "local"
	case DefArg:
		return "arg"
	case DefUpvar:
		return "upvar"
	case DefSelf:
		return "self"
	default:
		return "unknown-def"
	}
}

// UpvarChain records, innermost first, the closures crossed to reach the
// originating local/arg definition (spec §4.C "Closure semantics").
type UpvarChain struct {
	Inner *Def     // the local/arg as seen from the defining function
	Path  []NodeID // closure node-ids crossed, innermost first
}

// Def is a single resolved definition: spec's tagged variant, rendered as a
// Go struct with a kind tag and kind-specific fields left as zero unless
// relevant, matching the teacher's pattern of generous structs over a small
// closed number of AST node variants (internal/ast `ast.go` in the teacher
// favors one struct per concept; here one tag covers many small leaf kinds
// to avoid an explosion of near-identical wrapper types for what are, in
// every pass after resolution, opaque identifiers).
type Def struct {
	ID   DefID
	Kind DefKind
	Name string

	// Populated only for the kinds that need it.
	Purity     bool        // DefFn/DefMethod: true if declared pure
	Ordinal    int         // DefTypeParam: parameter position
	FieldIndex int         // DefStructField: position in declaration order
	VariantIdx int         // DefEnumVariant: tag value
	Owner      DefID       // DefStructField/DefMethod/DefEnumVariant: owning nominal def
	Upvar      *UpvarChain // DefUpvar only
}

// IsValueNamespace reports whether this definition lives in the value
// namespace (spec §4.C "Namespaces").
func (d *Def) IsValueNamespace() bool {
	switch d.Kind {
	case DefFn, DefConst, DefLocal, DefArg, DefUpvar, DefSelf, DefMethod, DefEnumVariant:
		return true
	default:
		return false
	}
}

// IsTypeNamespace reports whether this definition lives in the type namespace.
func (d *Def) IsTypeNamespace() bool {
	switch d.Kind {
	case DefStruct, DefEnumVariant, DefTypeAlias, DefTrait, DefTypeParam, DefPrimitiveType:
		return true
	default:
		return false
	}
}

// IsModuleNamespace reports whether this definition lives in the module namespace.
func (d *Def) IsModuleNamespace() bool {
	return d.Kind == DefMod
}

// IsDefiniteEnumVariant reports whether this def may be used as a
// definite-enum-namespace value, i.e. it is a nullary enum variant pattern
// target (spec §4.C "A variant of value distinguishes definite-enum ...").
func (d *Def) IsDefiniteEnumVariant() bool {
	return d.Kind == DefEnumVariant
}
