package infer

import (
	"testing"

	"github.com/rustsem/corec/internal/ast"
	"github.com/rustsem/corec/internal/types"
)

func newStore() *types.Store {
	return types.NewStore(func(def types.DefRef) ([]types.TypeID, bool, [][]types.TypeID) {
		return nil, false, nil
	})
}

func TestEqBindsInferVar(t *testing.T) {
	s := newStore()
	e := NewEngine(s)
	v := s.NewInferVar(types.KInferGeneral)
	i32 := s.Int(types.W32)

	if err := e.Eq(v, i32, ast.Span{}); err != nil {
		t.Fatalf("Eq: %v", err)
	}
	got, err := e.Resolve(v, ModeDeep)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != i32 {
		t.Fatalf("expected var to resolve to i32, got %v", got)
	}
}

func TestEqRejectsNonIntegralBindingOnIntVar(t *testing.T) {
	s := newStore()
	e := NewEngine(s)
	v := s.NewInferVar(types.KInferInt)
	str := s.Str()

	if err := e.Eq(v, str, ast.Span{}); err == nil {
		t.Fatalf("expected error binding an integer variable to str")
	}
}

func TestEqUnifiesTuplesStructurally(t *testing.T) {
	s := newStore()
	e := NewEngine(s)
	v := s.NewInferVar(types.KInferGeneral)
	i32 := s.Int(types.W32)
	b := s.Bool()

	t1 := s.Tuple(v, b)
	t2 := s.Tuple(i32, b)

	if err := e.Eq(t1, t2, ast.Span{}); err != nil {
		t.Fatalf("Eq on tuples: %v", err)
	}
	got, _ := e.Resolve(v, ModeDeep)
	if got != i32 {
		t.Fatalf("expected tuple unification to bind inner var to i32, got %v", got)
	}
}

func TestEqMismatchRecordsTypeErr(t *testing.T) {
	s := newStore()
	e := NewEngine(s)
	i32 := s.Int(types.W32)
	b := s.Bool()

	if err := e.Eq(i32, b, ast.Span{}); err == nil {
		t.Fatalf("expected type mismatch error")
	}
	if len(e.Errors) != 1 {
		t.Fatalf("expected one recorded TypeErr, got %d", len(e.Errors))
	}
}

func TestBottomCoercesToAnything(t *testing.T) {
	s := newStore()
	e := NewEngine(s)
	bot := s.Bottom()
	i32 := s.Int(types.W32)

	if err := e.Eq(bot, i32, ast.Span{}); err != nil {
		t.Fatalf("bottom should unify with anything: %v", err)
	}
}

func TestCoerceBoxToRef(t *testing.T) {
	s := newStore()
	e := NewEngine(s)
	i32 := s.Int(types.W32)
	boxed := s.Box(i32)
	ref := s.Ref(types.Static, i32)

	if err := e.Coerce(1, boxed, ref, ast.Span{}); err != nil {
		t.Fatalf("Coerce box->ref: %v", err)
	}
	adj, ok := e.Adjustments()[1]
	if !ok || !adj.AutoBorrow {
		t.Fatalf("expected an auto-borrow adjustment recorded, got %+v", adj)
	}
}

func TestResolveForceVarErrorsWhenUnbound(t *testing.T) {
	s := newStore()
	e := NewEngine(s)
	v := s.NewInferVar(types.KInferGeneral)

	if _, err := e.Resolve(v, ModeForceVar); err == nil {
		t.Fatalf("expected force_var resolution of an unbound variable to error")
	}
}

func TestRegionConstraintsAccumulate(t *testing.T) {
	s := newStore()
	e := NewEngine(s)
	short := types.NewScopeRegion(1)
	long := types.Static

	e.Sub(short, long, ast.Span{})
	if len(e.regionConstraints) != 1 {
		t.Fatalf("expected one region constraint recorded, got %d", len(e.regionConstraints))
	}
}
