// Package vtable implements the Trait-obligation Solver (spec §4.F):
// resolving each method-call obligation to a concrete implementation in two
// phases, early (during checking, best-effort) and final (after the whole
// crate has been checked, authoritative).
//
// Grounded on the teacher's InstanceEnv (internal/types/instances.go): the
// same coherence-checked registration-by-key map and "direct lookup, then
// superclass/blanket fallback" resolution order, generalized from type
// classes keyed by (class, monomorphic type head) to this spec's trait
// obligations keyed by (trait, DefRef) with impl overlap detected at
// registration time instead of only at lookup time.
package vtable

import (
	"fmt"

	"github.com/rustsem/corec/internal/ast"
	"github.com/rustsem/corec/internal/errors"
	"github.com/rustsem/corec/internal/session"
	"github.com/rustsem/corec/internal/types"
)

// Impl is one known trait implementation: `impl Trait for SelfType { ... }`
// (an inherent impl has Trait == nil).
type Impl struct {
	Def     ast.DefID
	Trait   *types.DefRef // nil => inherent impl
	Self    types.TypeID
	Methods map[string]ast.DefID
}

// Obligation is one "SelfType must implement Trait" requirement, typically
// arising from a generic bound (spec §4.F). Node is the call-site (method
// call or operator dispatch) the obligation was raised for, letting a
// Resolution be looked back up by call-site once solved (spec §6 "vtable-map
// ... keyed by call-site node-id").
type Obligation struct {
	Self  types.TypeID
	Trait types.DefRef
	Span  ast.Span
	Node  ast.NodeID
}

// ScopeBound is a trait bound visible in the current generic scope (spec
// §4.F "or an outer-scope trait bound"), e.g. a function's `where T: Trait`.
type ScopeBound struct {
	Param types.DefRef // the type parameter the bound applies to
	Trait types.DefRef
}

// Resolution is the outcome of solving one Obligation.
type Resolution struct {
	Obligation Obligation
	Impl       *Impl // set when satisfied by a concrete impl
	ScopeProof bool  // set when satisfied by an outer-scope bound instead
	ObjectProof bool // set when satisfied by an already-erased trait object
}

// Map associates a call-site node-id with the Resolution the solver reached
// for the obligation raised there (spec §6 "vtable-map ... keyed by
// call-site node-id"), one of the two side tables External Interfaces lists
// alongside check.MethodMap.
type Map map[ast.NodeID]Resolution

// Solver accumulates impls and obligations for one crate and resolves them
// in the spec's required two phases.
type Solver struct {
	sess *session.Session

	// impls is keyed "trait-def/self-key" -> Impl, enforcing coherence at
	// registration time the way the teacher's InstanceEnv.Add does.
	impls map[string]*Impl

	bounds []ScopeBound

	earlyObligations []Obligation
	pending          []Obligation
}

// NewSolver creates an empty solver.
func NewSolver(sess *session.Session) *Solver {
	return &Solver{sess: sess, impls: make(map[string]*Impl)}
}

func implKey(trait *types.DefRef, selfKey string) string {
	if trait == nil {
		return "inherent:" + selfKey
	}
	return fmt.Sprintf("%s:%s", trait.String(), selfKey)
}

// selfKeyOf is a coarse structural key for an impl's Self type, sufficient
// for coherence checking at the nominal granularity this core's types
// support (struct/enum defs, or a scalar kind for builtin impls).
func selfKeyOf(store *types.Store, self types.TypeID) string {
	if d, args, ok := store.NominalDef(self); ok {
		return fmt.Sprintf("%s<%d>", d.String(), len(args))
	}
	return store.String(self)
}

// RegisterImpl adds impl to the solver, reporting VTB002 on overlap (two
// impls of the same trait for structurally identical Self types) — the
// generalization of the teacher's InstanceEnv.Add coherence check.
func (s *Solver) RegisterImpl(store *types.Store, impl *Impl, span ast.Span) {
	key := implKey(impl.Trait, selfKeyOf(store, impl.Self))
	if _, exists := s.impls[key]; exists {
		s.sess.SpanErr(span, errors.VTB002, "conflicting trait implementations for the same type", nil)
		return
	}
	s.impls[key] = impl
}

// AddScopeBound records a generic bound visible to the obligations
// currently being solved (spec §4.F "an outer-scope trait bound").
func (s *Solver) AddScopeBound(b ScopeBound) { s.bounds = append(s.bounds, b) }

// BoundsFor returns every trait a type parameter is bound to in the current
// scope, letting method lookup find a trait's declared method when a
// receiver is an abstract type parameter rather than a type with a
// registered concrete impl (spec §4.F "an outer-scope trait bound").
func (s *Solver) BoundsFor(param types.DefRef) []types.DefRef {
	var out []types.DefRef
	for _, b := range s.bounds {
		if b.Param == param {
			out = append(out, b.Trait)
		}
	}
	return out
}

// Require registers one obligation to be solved. early selects which phase
// queue it joins.
func (s *Solver) Require(o Obligation, early bool) {
	if early {
		s.earlyObligations = append(s.earlyObligations, o)
	} else {
		s.pending = append(s.pending, o)
	}
}

// SolveEarly attempts best-effort resolution during checking (spec §4.F
// "two-phase: early (best-effort, during checking)"). Unsatisfied
// obligations are carried forward to the final phase rather than erroring
// immediately, since a later impl registration (from another module) may
// still satisfy them.
func (s *Solver) SolveEarly(store *types.Store) []Resolution {
	var resolved []Resolution
	var unresolved []Obligation
	for _, o := range s.earlyObligations {
		if res, ok := s.trySolve(store, o); ok {
			resolved = append(resolved, res)
		} else {
			unresolved = append(unresolved, o)
		}
	}
	s.pending = append(s.pending, unresolved...)
	s.earlyObligations = nil
	return resolved
}

// SolveFinal is the authoritative phase run once the whole crate (plus
// imported crate metadata) is known (spec §4.F "final (authoritative, after
// the whole crate)"). Any obligation still unsatisfied here is VTB001.
func (s *Solver) SolveFinal(store *types.Store) []Resolution {
	var out []Resolution
	for _, o := range s.pending {
		if res, ok := s.trySolve(store, o); ok {
			out = append(out, res)
			continue
		}
		s.sess.SpanErr(o.Span, errors.VTB001, "the trait bound is not satisfied for this type", map[string]any{
			"self":  store.String(o.Self),
			"trait": o.Trait.String(),
		})
	}
	s.pending = nil
	return out
}

// trySolve tries, in order: a concrete impl, an outer-scope bound, and (for
// already-erased receivers) the trait object's own vtable — spec §4.F
// "satisfied by an inherent impl, an outer-scope trait bound, or the
// object-type's own method".
func (s *Solver) trySolve(store *types.Store, o Obligation) (Resolution, bool) {
	key := implKey(&o.Trait, selfKeyOf(store, o.Self))
	if impl, ok := s.impls[key]; ok {
		return Resolution{Obligation: o, Impl: impl}, true
	}
	if tp, _, ok := store.TypeParamOf(o.Self); ok {
		for _, b := range s.bounds {
			if b.Param == tp && b.Trait == o.Trait {
				return Resolution{Obligation: o, ScopeProof: true}, true
			}
		}
	}
	if d, _, ok := store.NominalDef(o.Self); ok && store.KindOf(o.Self) == types.KTraitObject && d == o.Trait {
		return Resolution{Obligation: o, ObjectProof: true}, true
	}
	return Resolution{}, false
}

// Candidates exposes registered impls as check.MethodResolver-compatible
// candidates, letting component E query the solver's impl registry without
// importing it directly (the driver wires this through).
func (s *Solver) Candidates(store *types.Store, self types.TypeID, method string) []Impl {
	var out []Impl
	for _, impl := range s.impls {
		if _, ok := impl.Methods[method]; !ok {
			continue
		}
		if impl.Self == self {
			out = append(out, *impl)
		}
	}
	return out
}
