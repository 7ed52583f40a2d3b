package layout

import "github.com/rustsem/corec/internal/types"

// GlueKind enumerates the per-type helper functions a Tydesc's glue slots
// point to (spec Glossary "Glue").
type GlueKind int

const (
	GlueCopy GlueKind = iota
	GlueDrop
	GlueFree
	GlueSever
	GlueMark
	GlueObjDrop
	GlueCmp
)

// GlueRef names the concrete glue function IR lowering should emit a call
// to, or reports that none is needed (e.g. copy-glue for a scalar is a
// plain `store`, recorded by an empty Symbol).
type GlueRef struct {
	Kind   GlueKind
	Symbol string // mangled glue-function name; "" means "no-op, inline store/memmove suffices"
}

// Tydesc is the fixed eleven-field runtime type-descriptor record spec §4.G
// requires: "{first-tydesc-param-ptr, size, align, copy-glue, drop-glue,
// free-glue, sever-glue, mark-glue, obj-drop-glue, is-stateful-flag,
// cmp-glue}". FirstParam is nil for a non-generic (monomorphic) tydesc.
type Tydesc struct {
	FirstParam *Tydesc // first-tydesc-param-ptr; nil when Ty has no type arguments
	Size       Size
	Align      Align
	Copy       GlueRef
	Drop       GlueRef
	Free       GlueRef
	Sever      GlueRef
	Mark       GlueRef
	ObjDrop    GlueRef
	Stateful   bool // is-stateful-flag: true iff Ty.NeedsDrop
	Cmp        GlueRef
}

// TydescPlan is an IR-construction recipe (spec §4.G: "not raw bytes") for
// materializing a Tydesc at either compile time (Static) or runtime
// (Derived, for dynamically-sized/generic types).
type TydescPlan struct {
	Ty     types.TypeID
	Static *Tydesc // set when Ty has a static layout
	// Derived is set instead when Ty.HasDynamicSize or ContainsParameters:
	// a root static descriptor combined with one descriptor per type
	// argument (spec §4.G "combining a root static descriptor with one
	// descriptor per type parameter"), to be assembled on the stack (or
	// promoted to the heap if it escapes the current frame — a decision
	// left to internal/lower's escape analysis of the enclosing function).
	Derived *DerivedPlan
}

// DerivedPlan names the root descriptor symbol and the ordered list of
// type-argument tydesc plans lowering must thread through to build the
// derived descriptor at the call site.
type DerivedPlan struct {
	RootSymbol string
	Args       []*TydescPlan
}

func glueSymbol(kind GlueKind, name string) GlueRef {
	suffix := map[GlueKind]string{
		GlueCopy: "copy", GlueDrop: "drop", GlueFree: "free", GlueSever: "sever",
		GlueMark: "mark", GlueObjDrop: "objdrop", GlueCmp: "cmp",
	}[kind]
	return GlueRef{Kind: kind, Symbol: "glue_" + suffix + "_" + name}
}

// BuildTydesc constructs the static Tydesc for a concrete (possibly nominal,
// but not parametric) type. It takes the layout from computeStatic and
// reports no diagnostic of its own, even if id is dynamically sized.
func (p *Planner) BuildTydesc(id types.TypeID, symbolName string) *Tydesc {
	layout := p.computeStatic(id) // BuildTydesc callers have already checked HasDynamicSize
	needsDrop := p.store.NeedsDrop(id)
	owns := p.store.OwnsHeapMemory(id)

	td := &Tydesc{Size: layout.Size, Align: layout.Align, Stateful: needsDrop}
	if owns {
		td.Copy = glueSymbol(GlueCopy, symbolName) // bumps refcounts of boxed fields
	}
	if needsDrop {
		td.Drop = glueSymbol(GlueDrop, symbolName)
		td.Free = glueSymbol(GlueFree, symbolName)
	}
	if p.store.KindOf(id) == types.KBox || p.store.KindOf(id) == types.KUnique {
		td.Sever = glueSymbol(GlueSever, symbolName) // breaks a cycle for cycle-collected boxes
		td.Mark = glueSymbol(GlueMark, symbolName)
	}
	if p.store.KindOf(id) == types.KTraitObject {
		td.ObjDrop = glueSymbol(GlueObjDrop, symbolName)
	}
	td.Cmp = glueSymbol(GlueCmp, symbolName)
	return td
}

// PlanTydesc decides between a static Tydesc and a derived-at-runtime plan,
// the entry point internal/lower calls for every type it needs a descriptor
// for (spec §4.G "Sizes come in two flavors: static ... and dynamic ...").
func (p *Planner) PlanTydesc(id types.TypeID, symbolName string) *TydescPlan {
	if !p.store.HasDynamicSize(id) && !p.store.ContainsParameters(id) {
		return &TydescPlan{Ty: id, Static: p.BuildTydesc(id, symbolName)}
	}
	def, args, ok := p.store.NominalDef(id)
	argPlans := make([]*TydescPlan, len(args))
	for i, a := range args {
		argPlans[i] = p.PlanTydesc(a, symbolName)
	}
	root := symbolName
	if ok {
		root = "tydesc_root_" + def.String()
	}
	return &TydescPlan{Ty: id, Derived: &DerivedPlan{RootSymbol: root, Args: argPlans}}
}
