package types

import "testing"

func TestInterningDedupes(t *testing.T) {
	s := NewStore(nil)
	a := s.Int(W32)
	b := s.Int(W32)
	if a != b {
		t.Fatalf("interning two equal ints should yield the same handle: %v != %v", a, b)
	}
	c := s.Int(W64)
	if a == c {
		t.Fatalf("distinct widths should not collide")
	}
}

func TestSubstRoundTrip(t *testing.T) {
	s := NewStore(nil)
	def := DefRef{Crate: 0, Index: 1}
	tp := s.TypeParam(def, 0)
	tup := s.Tuple(tp, s.Bool())

	sub := NewSubstitution()
	sub.Types[TypeParamKey{def, 0}] = tp // identity substitution
	got := s.Subst(tup, sub)
	if got != tup {
		t.Fatalf("subst(tau, id_substitution) should equal tau; got %v want %v", got, tup)
	}

	sub2 := NewSubstitution()
	sub2.Types[TypeParamKey{def, 0}] = s.Int(W32)
	instantiated := s.Subst(tup, sub2)
	elems, ok := s.TupleElems(instantiated)
	if !ok || s.KindOf(elems[0]) != KInt {
		t.Fatalf("substitution should replace the type parameter with int32")
	}
}

func TestPredicatesOnScalars(t *testing.T) {
	s := NewStore(nil)
	i := s.Int(W32)
	if !s.IsScalar(i) || !s.IsCopyable(i) || s.NeedsDrop(i) || s.HasDynamicSize(i) {
		t.Fatalf("int32 should be scalar+copyable, not droppable, statically sized")
	}
	v := s.Vec(i)
	if !s.HasDynamicSize(v) || !s.IsSequence(v) {
		t.Fatalf("vec<int32> should be dynamically sized and a sequence")
	}
	if s.IsCopyable(v) {
		t.Fatalf("vec should not be copyable (owns heap memory)")
	}
}

func TestFoldTerminatesOnNominalBoundary(t *testing.T) {
	s := NewStore(func(def DefRef) ([]TypeID, bool, [][]TypeID) {
		// A self-referential struct: field refers back to the same struct
		// by definition-id, not structurally, so Fold must not recurse here.
		return []TypeID{s2Placeholder}, false, nil
	})
	def := DefRef{Crate: 0, Index: 7}
	st := s.Struct(def)

	visited := 0
	result := s.Fold(st, FolderFunc(func(store *Store, id TypeID, rebuilt TypeID) TypeID {
		visited++
		return rebuilt
	}))
	if result != st {
		t.Fatalf("folding a nominal type with an identity folder should return it unchanged")
	}
	if visited != 1 {
		t.Fatalf("Fold must stop at the nominal boundary: expected 1 visit, got %d", visited)
	}
}

var s2Placeholder TypeID // set indirectly; the closure above only needs a stable zero value
