package layout

import (
	"testing"

	"github.com/rustsem/corec/internal/ast"
	"github.com/rustsem/corec/internal/session"
	"github.com/rustsem/corec/internal/types"
)

func newPlanner(fieldFn types.FieldLookup) (*Planner, *types.Store, *session.Session) {
	store := types.NewStore(fieldFn)
	sess := session.New(session.DefaultTarget, session.Options{})
	return NewPlanner(sess, store, session.DefaultTarget, fieldFn), store, sess
}

func TestScalarSizesMatchNaturalWidths(t *testing.T) {
	p, store, _ := newPlanner(nil)
	cases := []struct {
		ty   types.TypeID
		size Size
	}{
		{store.Bool(), 1},
		{store.Int(types.W8), 1},
		{store.Int(types.W16), 2},
		{store.Int(types.W32), 4},
		{store.Int(types.W64), 8},
		{store.F32(), 4},
		{store.F64(), 8},
		{store.Char(), 4},
		{store.Nil(), 0},
	}
	for _, c := range cases {
		l := p.SizeOf(c.ty, ast.Span{})
		if l.Size != c.size {
			t.Fatalf("%s: expected size %d, got %d", store.String(c.ty), c.size, l.Size)
		}
	}
}

func TestSizeAlignInvariant(t *testing.T) {
	p, store, _ := newPlanner(nil)
	tup := store.Tuple(store.Int(types.W8), store.Int(types.W64))
	l := p.SizeOf(tup, ast.Span{})
	if l.Size%l.Align != 0 {
		t.Fatalf("size_of mod align_of must be zero: size=%d align=%d", l.Size, l.Align)
	}
	if l.Align != 8 {
		t.Fatalf("tuple alignment should be the max field alignment, got %d", l.Align)
	}
}

func TestDynamicSizeReportsLAY001(t *testing.T) {
	p, store, sess := newPlanner(nil)
	vec := store.Vec(store.Int(types.W32))
	p.SizeOf(vec, ast.Span{})
	if sess.ErrorCount() != 1 {
		t.Fatalf("expected LAY001 when asking for the static size of a vec, got %d errors", sess.ErrorCount())
	}
}

func TestSingleVariantEnumOmitsTag(t *testing.T) {
	def := types.DefRef{Crate: 0, Index: 1}
	fieldFn := func(d types.DefRef) ([]types.TypeID, bool, [][]types.TypeID) {
		return nil, true, [][]types.TypeID{{}}
	}
	p, store, _ := newPlanner(fieldFn)
	en := store.Enum(def)
	l := p.SizeOf(en, ast.Span{})
	if l.Size != 0 {
		t.Fatalf("single-variant enum with no payload should have size 0, got %d", l.Size)
	}
}

func TestTwoVariantEnumGetsOneByteTag(t *testing.T) {
	def := types.DefRef{Crate: 0, Index: 2}
	var p *Planner
	var store *types.Store
	fieldFn := func(d types.DefRef) ([]types.TypeID, bool, [][]types.TypeID) {
		i32 := store.Int(types.W32)
		return nil, true, [][]types.TypeID{{}, {i32}}
	}
	p, store, _ = newPlanner(fieldFn)
	en := store.Enum(def)
	l := p.SizeOf(en, ast.Span{})
	// tag (1 byte) aligned up to the payload's 4-byte alignment, plus the
	// 4-byte payload itself, rounded to the overall alignment of 4.
	if l.Size != 8 || l.Align != 4 {
		t.Fatalf("expected size=8 align=4 for a 2-variant enum with an int32 payload, got size=%d align=%d", l.Size, l.Align)
	}
}

func TestGenericStructPlansDerivedTydesc(t *testing.T) {
	def := types.DefRef{Crate: 0, Index: 3}
	p, store, _ := newPlanner(func(d types.DefRef) ([]types.TypeID, bool, [][]types.TypeID) { return nil, false, nil })
	tp := store.TypeParam(def, 0)
	generic := store.Struct(def, tp)

	plan := p.PlanTydesc(generic, "box_t")
	if plan.Static != nil {
		t.Fatalf("a type containing a type parameter must get a derived tydesc plan, not a static one")
	}
	if plan.Derived == nil || len(plan.Derived.Args) != 1 {
		t.Fatalf("derived plan should carry one tydesc per type argument")
	}
}

func TestConcreteStructGetsStaticTydesc(t *testing.T) {
	def := types.DefRef{Crate: 0, Index: 4}
	var store *types.Store
	p, store, _ := newPlanner(func(d types.DefRef) ([]types.TypeID, bool, [][]types.TypeID) {
		return []types.TypeID{store.Int(types.W32)}, false, nil
	})
	st := store.Struct(def)
	plan := p.PlanTydesc(st, "point")
	if plan.Static == nil {
		t.Fatalf("a fully-concrete struct should get a static tydesc")
	}
	if plan.Static.Size != 4 || plan.Static.Align != 4 {
		t.Fatalf("expected size=4 align=4, got size=%d align=%d", plan.Static.Size, plan.Static.Align)
	}
}
