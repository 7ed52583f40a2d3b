package vtable

import (
	"testing"

	"github.com/rustsem/corec/internal/ast"
	"github.com/rustsem/corec/internal/errors"
	"github.com/rustsem/corec/internal/session"
	"github.com/rustsem/corec/internal/types"
)

func newSolver() (*Solver, *types.Store) {
	store := types.NewStore(func(def types.DefRef) ([]types.TypeID, bool, [][]types.TypeID) {
		return nil, false, nil
	})
	sess := session.New(session.DefaultTarget, session.Options{})
	return NewSolver(sess), store
}

func TestRegisterImplThenSatisfyObligation(t *testing.T) {
	s, store := newSolver()
	sess := s.sess
	trait := types.DefRef{Crate: 0, Index: 7}
	selfTy := store.Struct(types.DefRef{Crate: 0, Index: 1})

	s.RegisterImpl(store, &Impl{Trait: &trait, Self: selfTy, Methods: map[string]ast.DefID{"eq": {}}}, ast.Span{})
	s.Require(Obligation{Self: selfTy, Trait: trait}, false)

	resolved := s.SolveFinal(store)
	if len(resolved) != 1 {
		t.Fatalf("expected one resolved obligation, got %d", len(resolved))
	}
	if sess.ErrorCount() != 0 {
		t.Fatalf("expected no errors, got %d", sess.ErrorCount())
	}
}

func TestOverlappingImplsRejected(t *testing.T) {
	s, store := newSolver()
	trait := types.DefRef{Crate: 0, Index: 7}
	selfTy := store.Struct(types.DefRef{Crate: 0, Index: 1})

	s.RegisterImpl(store, &Impl{Trait: &trait, Self: selfTy}, ast.Span{})
	s.RegisterImpl(store, &Impl{Trait: &trait, Self: selfTy}, ast.Span{})

	if s.sess.ErrorCount() == 0 {
		t.Fatalf("expected VTB002 on overlapping impls")
	}
	if s.sess.Reports()[0].Code != errors.VTB002 {
		t.Fatalf("expected VTB002, got %s", s.sess.Reports()[0].Code)
	}
}

func TestUnsatisfiedObligationReportsVTB001(t *testing.T) {
	s, store := newSolver()
	trait := types.DefRef{Crate: 0, Index: 7}
	selfTy := store.Struct(types.DefRef{Crate: 0, Index: 2})

	s.Require(Obligation{Self: selfTy, Trait: trait}, false)
	resolved := s.SolveFinal(store)

	if len(resolved) != 0 {
		t.Fatalf("expected no resolutions, got %d", len(resolved))
	}
	if s.sess.ErrorCount() == 0 {
		t.Fatalf("expected an unsatisfiable-obligation error")
	}
	if s.sess.Reports()[0].Code != errors.VTB001 {
		t.Fatalf("expected VTB001, got %s", s.sess.Reports()[0].Code)
	}
}

func TestScopeBoundSatisfiesObligation(t *testing.T) {
	s, store := newSolver()
	trait := types.DefRef{Crate: 0, Index: 9}
	paramDef := types.DefRef{Crate: 0, Index: 3}
	paramTy := store.TypeParam(paramDef, 0)

	s.AddScopeBound(ScopeBound{Param: paramDef, Trait: trait})
	s.Require(Obligation{Self: paramTy, Trait: trait}, false)

	resolved := s.SolveFinal(store)
	if len(resolved) != 1 || !resolved[0].ScopeProof {
		t.Fatalf("expected the scope bound to satisfy the obligation, got %+v", resolved)
	}
}

func TestEarlyPhaseCarriesUnsolvedForwardToFinal(t *testing.T) {
	s, store := newSolver()
	trait := types.DefRef{Crate: 0, Index: 7}
	selfTy := store.Struct(types.DefRef{Crate: 0, Index: 1})

	s.Require(Obligation{Self: selfTy, Trait: trait}, true)
	early := s.SolveEarly(store)
	if len(early) != 0 {
		t.Fatalf("expected nothing resolved before the impl exists, got %d", len(early))
	}

	// The impl is registered only after the early phase ran, as if a later
	// module supplied it.
	s.RegisterImpl(store, &Impl{Trait: &trait, Self: selfTy}, ast.Span{})
	finalRes := s.SolveFinal(store)
	if len(finalRes) != 1 {
		t.Fatalf("expected the obligation carried into the final phase to resolve, got %d", len(finalRes))
	}
}
