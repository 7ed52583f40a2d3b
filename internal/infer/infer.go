// Package infer implements the Inference Engine (spec §4.D): unification
// over type, integer, float, and region variables, with error tracking and
// coercion.
//
// Grounded on the teacher's Unifier.Unify (internal/types/unification.go),
// generalized from a single substitution-map unifier into three disjoint
// union-find tables (one per variable kind) with rank and path compression,
// and on the teacher's defaulting pass (internal/types/defaulting.go) for
// the "defer resolution, solve once at end of body" shape this engine's
// region solver reuses for region constraints.
package infer

import (
	"fmt"

	"github.com/rustsem/corec/internal/ast"
	"github.com/rustsem/corec/internal/types"
)

// VarKind is one of the three disjoint inference-variable kinds spec §4.D
// names.
type VarKind int

const (
	KindGeneral VarKind = iota
	KindInt
	KindFloat
)

// ufNode is one slot of a union-find table.
type ufNode struct {
	parent int
	rank   int
	ty     types.TypeID // InvalidType until resolved to a concrete type
}

// unionFind is a rank/path-compressed disjoint-set forest keyed by variable
// id, one per VarKind.
type unionFind struct {
	nodes map[int]*ufNode
}

func newUnionFind() *unionFind { return &unionFind{nodes: make(map[int]*ufNode)} }

func (u *unionFind) ensure(id int) *ufNode {
	n, ok := u.nodes[id]
	if !ok {
		n = &ufNode{parent: id, ty: types.InvalidType}
		u.nodes[id] = n
	}
	return n
}

func (u *unionFind) find(id int) int {
	n := u.ensure(id)
	if n.parent != id {
		n.parent = u.find(n.parent) // path compression
	}
	return n.parent
}

func (u *unionFind) union(a, b int) int {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return ra
	}
	na, nb := u.nodes[ra], u.nodes[rb]
	if na.rank < nb.rank {
		ra, rb = rb, ra
		na, nb = nb, na
	}
	nb.parent = ra
	if na.rank == nb.rank {
		na.rank++
	}
	// Prefer a concrete binding if one side already has one.
	if na.ty == types.InvalidType && nb.ty != types.InvalidType {
		na.ty = nb.ty
	}
	return ra
}

// TypeErr is the typed diagnostic spec §4.D requires: "carrying the two
// compared types and a span".
type TypeErr struct {
	Expected, Found types.TypeID
	Span            ast.Span
}

func (e *TypeErr) Error() string {
	return fmt.Sprintf("type mismatch at %s:%d-%d: expected %v, found %v", e.Span.File, e.Span.Lo, e.Span.Hi, e.Expected, e.Found)
}

// Adjustment records an implicit coercion on an expression (spec's Glossary
// "Adjustment"): auto-deref count, optional auto-borrow, and/or a cast kind.
type Adjustment struct {
	Derefs     int
	AutoBorrow bool
	CastKind   string // "" if no explicit coercion cast was needed
}

// RegionConstraint records one sub-typing obligation between two regions,
// accumulated during checking and solved lazily at the end of a function
// body (spec §4.D "region sub-typing is recorded in a region-constraint
// graph solved lazily").
type RegionConstraint struct {
	Shorter, Longer types.Region
	Span            ast.Span
}

// Engine is one Inference Engine instance, scoped to a single function body
// (spec §3 "Inference variables are created during E, resolved at the end
// of each function body").
type Engine struct {
	store *types.Store

	general *unionFind
	ints    *unionFind
	floats  *unionFind

	regionConstraints []RegionConstraint
	adjustments       map[ast.NodeID]Adjustment

	Errors []*TypeErr
}

// NewEngine creates an inference engine bound to a type store.
func NewEngine(store *types.Store) *Engine {
	return &Engine{
		store:       store,
		general:     newUnionFind(),
		ints:        newUnionFind(),
		floats:      newUnionFind(),
		adjustments: make(map[ast.NodeID]Adjustment),
	}
}

func (e *Engine) tableFor(kind VarKind) *unionFind {
	switch kind {
	case KindInt:
		return e.ints
	case KindFloat:
		return e.floats
	default:
		return e.general
	}
}

func kindOfStoreKind(k types.Kind) (VarKind, bool) {
	switch k {
	case types.KInferGeneral:
		return KindGeneral, true
	case types.KInferInt:
		return KindInt, true
	case types.KInferFloat:
		return KindFloat, true
	default:
		return 0, false
	}
}

// Eq unifies two types, recording an error (and returning it) on failure
// rather than aborting — callers decide whether to tag the error sentinel.
func (e *Engine) Eq(t1, t2 types.TypeID, span ast.Span) error {
	if t1 == t2 {
		return nil
	}
	if vk, ok := kindOfStoreKind(e.store.KindOf(t1)); ok {
		id, _ := e.store.VarID(t1)
		return e.bind(vk, id, t2, span)
	}
	if vk, ok := kindOfStoreKind(e.store.KindOf(t2)); ok {
		id, _ := e.store.VarID(t2)
		return e.bind(vk, id, t1, span)
	}
	if e.store.KindOf(t1) == types.KBottom || e.store.KindOf(t2) == types.KBottom {
		return nil // bottom coerces to anything (spec §4.E coercion rules)
	}
	if e.store.KindOf(t1) == types.KErrorSentinel || e.store.KindOf(t2) == types.KErrorSentinel {
		return nil // error sentinel suppresses further diagnostics in its subtree
	}
	if !e.structurallyUnify(t1, t2, span) {
		err := &TypeErr{Expected: t1, Found: t2, Span: span}
		e.Errors = append(e.Errors, err)
		return err
	}
	return nil
}

func (e *Engine) bind(kind VarKind, id int, target types.TypeID, span ast.Span) error {
	tbl := e.tableFor(kind)
	root := tbl.find(id)
	node := tbl.nodes[root]
	if node.ty != types.InvalidType {
		return e.Eq(node.ty, target, span)
	}
	if kind == KindInt && !isIntegralOrVar(e.store, target) {
		err := &TypeErr{Expected: target, Found: target, Span: span}
		e.Errors = append(e.Errors, err)
		return err
	}
	if kind == KindFloat && !isFloatOrVar(e.store, target) {
		err := &TypeErr{Expected: target, Found: target, Span: span}
		e.Errors = append(e.Errors, err)
		return err
	}
	node.ty = target
	return nil
}

func isIntegralOrVar(s *types.Store, t types.TypeID) bool {
	switch s.KindOf(t) {
	case types.KInt, types.KUInt, types.KInferInt:
		return true
	default:
		return false
	}
}

func isFloatOrVar(s *types.Store, t types.TypeID) bool {
	switch s.KindOf(t) {
	case types.KF32, types.KF64, types.KInferFloat:
		return true
	default:
		return false
	}
}

// structurallyUnify handles the recursive cases (tuples, fn types, refs,
// ...) that neither side is a bare inference variable for.
func (e *Engine) structurallyUnify(t1, t2 types.TypeID, span ast.Span) bool {
	k1, k2 := e.store.KindOf(t1), e.store.KindOf(t2)
	if k1 != k2 {
		return false
	}
	switch k1 {
	case types.KTuple:
		e1, _ := e.store.TupleElems(t1)
		e2, _ := e.store.TupleElems(t2)
		if len(e1) != len(e2) {
			return false
		}
		ok := true
		for i := range e1 {
			if e.Eq(e1[i], e2[i], span) != nil {
				ok = false
			}
		}
		return ok
	case types.KBox, types.KUnique, types.KRawPtr, types.KVec, types.KArray:
		el1, _ := e.store.Elem(t1)
		el2, _ := e.store.Elem(t2)
		return e.Eq(el1, el2, span) == nil
	case types.KRef:
		el1, _ := e.store.Elem(t1)
		el2, _ := e.store.Elem(t2)
		r1, _ := e.store.RegionOf(t1)
		r2, _ := e.store.RegionOf(t2)
		e.Sub(r1, r2, span)
		return e.Eq(el1, el2, span) == nil
	case types.KFn:
		p1, ret1, _, _, _ := e.store.FnParts(t1)
		p2, ret2, _, _, _ := e.store.FnParts(t2)
		if len(p1) != len(p2) {
			return false
		}
		ok := true
		for i := range p1 {
			if e.Eq(p1[i], p2[i], span) != nil {
				ok = false
			}
		}
		return ok && e.Eq(ret1, ret2, span) == nil
	case types.KStruct, types.KEnum:
		d1, a1, _ := e.store.NominalDef(t1)
		d2, a2, _ := e.store.NominalDef(t2)
		if d1 != d2 || len(a1) != len(a2) {
			return false
		}
		ok := true
		for i := range a1 {
			if e.Eq(a1[i], a2[i], span) != nil {
				ok = false
			}
		}
		return ok
	default:
		return false // scalars of the same kind already compared equal by t1 == t2
	}
}

// Sub adds a region sub-typing constraint: shorter must outlive no longer
// than longer. Solved lazily by SolveRegions (spec §4.D).
func (e *Engine) Sub(shorter, longer types.Region, span ast.Span) {
	e.regionConstraints = append(e.regionConstraints, RegionConstraint{Shorter: shorter, Longer: longer, Span: span})
}

// ResolveMode selects how aggressively Resolve collapses a variable.
type ResolveMode int

const (
	ModeForceVar ResolveMode = iota // collapse, erroring if still unresolved
	ModeShallow                     // one step, may return another variable
	ModeDeep                        // fully recursive
)

// Resolve collapses a possibly-variable type to its representative,
// per spec §4.D's three modes.
func (e *Engine) Resolve(t types.TypeID, mode ResolveMode) (types.TypeID, error) {
	vk, ok := kindOfStoreKind(e.store.KindOf(t))
	if !ok {
		if mode == ModeDeep {
			return e.resolveDeep(t)
		}
		return t, nil
	}
	id, _ := e.store.VarID(t)
	tbl := e.tableFor(vk)
	root := tbl.find(id)
	node := tbl.nodes[root]
	if node.ty == types.InvalidType {
		if mode == ModeForceVar || mode == ModeDeep {
			return types.InvalidType, fmt.Errorf("TYK009: type annotations needed")
		}
		return t, nil
	}
	if mode == ModeDeep {
		return e.resolveDeep(node.ty)
	}
	return node.ty, nil
}

func (e *Engine) resolveDeep(t types.TypeID) (types.TypeID, error) {
	var firstErr error
	result := e.store.Fold(t, types.FolderFunc(func(s *types.Store, id, rebuilt types.TypeID) types.TypeID {
		r, err := e.Resolve(rebuilt, ModeShallow)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		return r
	}))
	return result, firstErr
}

// RecordAdjustment attaches an implicit-transformation record to an
// expression node, consumed later by internal/lower.
func (e *Engine) RecordAdjustment(id ast.NodeID, adj Adjustment) {
	e.adjustments[id] = adj
}

// Adjustments returns the full node-id -> adjustment map built this body.
func (e *Engine) Adjustments() map[ast.NodeID]Adjustment { return e.adjustments }

// Coerce attempts the allowed implicit conversions of spec §4.E ("owned
// pointer to reference", "&[T; N] to &[T]", "bottom coerces to any type",
// etc). On success it returns nil, recording an Adjustment on node only
// when a conversion was applied; identical types and types that simply
// unify record none.
func (e *Engine) Coerce(node ast.NodeID, from, to types.TypeID, span ast.Span) error {
	if from == to {
		return nil
	}
	if e.store.KindOf(from) == types.KBottom {
		e.RecordAdjustment(node, Adjustment{})
		return nil
	}
	// owned pointer (box/unique) -> reference
	if (e.store.KindOf(from) == types.KBox || e.store.KindOf(from) == types.KUnique) && e.store.KindOf(to) == types.KRef {
		inner, _ := e.store.Elem(from)
		target, _ := e.store.Elem(to)
		if e.Eq(inner, target, span) == nil {
			e.RecordAdjustment(node, Adjustment{Derefs: 1, AutoBorrow: true})
			return nil
		}
	}
	// reference to reference of shorter lifetime
	if e.store.KindOf(from) == types.KRef && e.store.KindOf(to) == types.KRef {
		innerFrom, _ := e.store.Elem(from)
		innerTo, _ := e.store.Elem(to)
		rf, _ := e.store.RegionOf(from)
		rt, _ := e.store.RegionOf(to)
		if e.Eq(innerFrom, innerTo, span) == nil {
			e.Sub(rt, rf, span)
			e.RecordAdjustment(node, Adjustment{})
			return nil
		}
	}
	// &[T; N] to &[T]
	if e.store.KindOf(from) == types.KRef && e.store.KindOf(to) == types.KRef {
		innerFrom, _ := e.store.Elem(from)
		innerTo, _ := e.store.Elem(to)
		if e.store.KindOf(innerFrom) == types.KArray && e.store.KindOf(innerTo) == types.KVec {
			elemFrom, _ := e.store.Elem(innerFrom)
			elemTo, _ := e.store.Elem(innerTo)
			if e.Eq(elemFrom, elemTo, span) == nil {
				e.RecordAdjustment(node, Adjustment{})
				return nil
			}
		}
	}
	if err := e.Eq(from, to, span); err != nil {
		return err
	}
	return nil
}
