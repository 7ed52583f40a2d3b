package types

// Substitution maps a (DefRef, ordinal) type-parameter key to a
// replacement type, plus an optional region substitution. Generalized from
// the teacher's string-keyed Substitution (internal/types/unification.go)
// into a positional key because Rust-style generics are ordinal, not
// named-row, parameters (see SPEC_FULL.md §4.A).
type Substitution struct {
	Types   map[TypeParamKey]TypeID
	Regions map[int]Region // keyed by a RegionInferVar's VarID
}

// TypeParamKey identifies one generic parameter slot.
type TypeParamKey struct {
	Def     DefRef
	Ordinal int
}

// NewSubstitution creates an empty substitution.
func NewSubstitution() *Substitution {
	return &Substitution{Types: make(map[TypeParamKey]TypeID), Regions: make(map[int]Region)}
}

// Identity returns a substitution that maps every one of the given
// parameters to itself, used by the "subst(τ, id_substitution) == τ"
// round-trip property (spec §8).
func (s *Store) Identity(params []*sty) *Substitution {
	sub := NewSubstitution()
	for _, p := range params {
		if p.kind == KTypeParam {
			sub.Types[TypeParamKey{p.def, p.ordinal}] = s.intern(p)
		}
	}
	return sub
}

// Subst replaces type-parameter and region references per sub, producing a
// possibly-new interned type. An operation is required here (rather than
// exposing mutation) because traits and generic functions instantiate
// parameters at every use site (spec §4.A).
func (s *Store) Subst(id TypeID, sub *Substitution) TypeID {
	t := s.lookup(id)
	if t == nil {
		return id
	}
	switch t.kind {
	case KTypeParam:
		if rep, ok := sub.Types[TypeParamKey{t.def, t.ordinal}]; ok {
			return rep
		}
		return id
	case KBox:
		return s.Box(s.Subst(t.elem, sub))
	case KUnique:
		return s.Unique(s.Subst(t.elem, sub))
	case KRef:
		r := t.region
		if r.Kind == RegionInferVar {
			if rep, ok := sub.Regions[r.VarID]; ok {
				r = rep
			}
		}
		return s.Ref(r, s.Subst(t.elem, sub))
	case KRawPtr:
		return s.RawPtr(s.Subst(t.elem, sub))
	case KVec:
		return s.Vec(s.Subst(t.elem, sub))
	case KArray:
		return s.Array(s.Subst(t.elem, sub), t.arrayLen)
	case KTuple:
		out := make([]TypeID, len(t.elems))
		for i, e := range t.elems {
			out[i] = s.Subst(e, sub)
		}
		return s.Tuple(out...)
	case KRecord:
		out := make([]TypeID, len(t.fieldTypes))
		for i, e := range t.fieldTypes {
			out[i] = s.Subst(e, sub)
		}
		return s.Record(t.fieldNames, out)
	case KStruct, KEnum:
		out := make([]TypeID, len(t.args))
		for i, a := range t.args {
			out[i] = s.Subst(a, sub)
		}
		if t.kind == KStruct {
			return s.Struct(t.def, out...)
		}
		return s.Enum(t.def, out...)
	case KFn:
		params := make([]TypeID, len(t.params))
		for i, p := range t.params {
			params[i] = s.Subst(p, sub)
		}
		return s.Fn(t.proto, params, t.modes, s.Subst(t.ret, sub), t.pure, t.variadic)
	default:
		return id
	}
}

// Folder rewrites a type bottom-up; Fold guarantees termination for acyclic
// type shapes because nominal types close through definition-ids rather
// than structurally embedding their fields (spec §4.A).
type Folder interface {
	Fold(s *Store, id TypeID, rebuilt TypeID) TypeID
}

// FolderFunc adapts a plain function to the Folder interface.
type FolderFunc func(s *Store, id TypeID, rebuilt TypeID) TypeID

func (f FolderFunc) Fold(s *Store, id TypeID, rebuilt TypeID) TypeID { return f(s, id, rebuilt) }

// Fold produces a possibly-rewritten type by first recursing into children
// (using Subst's traversal shape) and then invoking f on the rebuilt node.
// Nominal types are not traversed structurally: Fold stops at the
// struct/enum boundary and hands the folder the type as-is, matching spec's
// "cycles only exist across nominal-type boundaries and are traversed by
// definition-id, not structurally".
func (s *Store) Fold(id TypeID, f Folder) TypeID {
	t := s.lookup(id)
	if t == nil {
		return f.Fold(s, id, id)
	}
	var rebuilt TypeID
	switch t.kind {
	case KBox:
		rebuilt = s.Box(s.Fold(t.elem, f))
	case KUnique:
		rebuilt = s.Unique(s.Fold(t.elem, f))
	case KRef:
		rebuilt = s.Ref(t.region, s.Fold(t.elem, f))
	case KRawPtr:
		rebuilt = s.RawPtr(s.Fold(t.elem, f))
	case KVec:
		rebuilt = s.Vec(s.Fold(t.elem, f))
	case KArray:
		rebuilt = s.Array(s.Fold(t.elem, f), t.arrayLen)
	case KTuple:
		elems := make([]TypeID, len(t.elems))
		for i, e := range t.elems {
			elems[i] = s.Fold(e, f)
		}
		rebuilt = s.Tuple(elems...)
	case KFn:
		params := make([]TypeID, len(t.params))
		for i, p := range t.params {
			params[i] = s.Fold(p, f)
		}
		rebuilt = s.Fn(t.proto, params, t.modes, s.Fold(t.ret, f), t.pure, t.variadic)
	default:
		// Struct/Enum/TraitObject/Resource/scalars/TypeParam/infer-vars: do
		// not recurse past the nominal boundary or below a leaf.
		rebuilt = id
	}
	return f.Fold(s, id, rebuilt)
}
