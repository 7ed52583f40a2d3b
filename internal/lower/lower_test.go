package lower

import (
	"testing"

	"github.com/rustsem/corec/internal/ast"
	"github.com/rustsem/corec/internal/layout"
	"github.com/rustsem/corec/internal/session"
	"github.com/rustsem/corec/internal/types"
)

func newLowerer(fieldFn types.FieldLookup, info Info) (*Lowerer, *types.Store, *session.Session) {
	store := types.NewStore(fieldFn)
	sess := session.New(session.DefaultTarget, session.Options{})
	planner := layout.NewPlanner(sess, store, session.DefaultTarget, fieldFn)
	if info.TypeOf == nil {
		info.TypeOf = make(map[ast.NodeID]types.TypeID)
	}
	if info.Refs == nil {
		info.Refs = make(map[ast.NodeID]ast.DefID)
	}
	if info.Calls == nil {
		info.Calls = make(map[ast.NodeID]CallTarget)
	}
	return NewLowerer(sess, store, planner, info), store, sess
}

func findBlock(fn *Function, name string) *Block {
	for _, b := range fn.Blocks {
		if b.Name == name {
			return b
		}
	}
	return nil
}

// TestLowerFnArithmeticAndReturn checks that `a + b` dispatches through the
// checker-resolved operator CallTarget and that the function ends in a Ret
// carrying the binary expression's value.
func TestLowerFnArithmeticAndReturn(t *testing.T) {
	info := Info{}
	l, store, _ := newLowerer(nil, info)
	i32 := store.Int(types.W32)

	a := &ast.Param{Name: "a"}
	a.NodeID = 1
	b := &ast.Param{Name: "b"}
	b.NodeID = 2

	aRef := &ast.PathExpr{Path: &ast.Path{Segments: []string{"a"}}}
	aRef.NodeID = 1
	bRef := &ast.PathExpr{Path: &ast.Path{Segments: []string{"b"}}}
	bRef.NodeID = 2

	bin := &ast.BinaryExpr{Op: "+", Left: aRef, Right: bRef}
	bin.NodeID = 3

	body := &ast.Block{Tail: bin}

	l.info.TypeOf[1] = i32
	l.info.TypeOf[2] = i32
	l.info.TypeOf[3] = i32
	l.info.Refs[1] = ast.DefID{Crate: ast.LocalCrate, Index: 1}
	l.info.Refs[2] = ast.DefID{Crate: ast.LocalCrate, Index: 2}
	l.info.Calls[3] = CallTarget{Symbol: "int_add"}

	fn := &ast.FnItem{Params: []*ast.Param{a, b}, Body: body}
	out := l.LowerFn(fn, "add", []types.TypeID{i32, i32}, i32)

	entry := out.Blocks[0]
	if entry.Name != "entry" {
		t.Fatalf("expected first block to be entry, got %s", entry.Name)
	}
	ret, ok := entry.Term.(*Ret)
	if !ok || !ret.Has {
		t.Fatalf("expected entry block to end in a value-carrying Ret, got %#v", entry.Term)
	}

	var sawCall bool
	for _, inst := range entry.Insts {
		if c, ok := inst.(*Call); ok && len(c.Args) == 2 {
			sawCall = true
		}
	}
	if !sawCall {
		t.Fatalf("expected the '+' operator to lower to a two-arg Call")
	}
}

// TestLowerFnIfExpression checks the three-block if/join shape and that the
// join block reloads the stored branch result.
func TestLowerFnIfExpression(t *testing.T) {
	info := Info{}
	l, store, _ := newLowerer(nil, info)
	i32 := store.Int(types.W32)
	boolTy := store.Bool()

	cond := &ast.Lit{Kind: ast.LitBool, Value: true}
	cond.NodeID = 1
	thenLit := &ast.Lit{Kind: ast.LitInt, Value: int64(1)}
	thenLit.NodeID = 2
	elseLit := &ast.Lit{Kind: ast.LitInt, Value: int64(2)}
	elseLit.NodeID = 3

	ifExpr := &ast.IfExpr{Cond: cond, Then: &ast.Block{Tail: thenLit}, Else: &ast.Block{Tail: elseLit}}
	ifExpr.NodeID = 4

	l.info.TypeOf[1] = boolTy
	l.info.TypeOf[2] = i32
	l.info.TypeOf[3] = i32
	l.info.TypeOf[4] = i32

	fn := &ast.FnItem{Body: &ast.Block{Tail: ifExpr}}
	out := l.LowerFn(fn, "pick", nil, i32)

	for _, name := range []string{"if.then", "if.else", "if.join"} {
		if findBlock(out, name) == nil {
			t.Fatalf("expected a %s block in the lowered function", name)
		}
	}
	if _, ok := out.Blocks[0].Term.(*CondBr); !ok {
		t.Fatalf("expected entry block to end in a CondBr, got %#v", out.Blocks[0].Term)
	}
}

// TestLowerEnumMatchTwoVariants checks that a match over an enum scrutinee
// compiles to a Switch with one case per tagged arm.
func TestLowerEnumMatchTwoVariants(t *testing.T) {
	enumDef := types.DefRef{Crate: 0, Index: 7}
	fieldFn := func(d types.DefRef) ([]types.TypeID, bool, [][]types.TypeID) {
		return nil, true, [][]types.TypeID{{}, {}}
	}

	info := Info{
		VariantIdx: func(def types.DefRef, name string) int {
			if name == "B" {
				return 1
			}
			return 0
		},
	}
	l, store, _ := newLowerer(fieldFn, info)
	i32 := store.Int(types.W32)
	enumTy := store.Enum(enumDef)

	recv := &ast.Param{Name: "e"}
	recv.NodeID = 1
	scrut := &ast.PathExpr{Path: &ast.Path{Segments: []string{"e"}}}
	scrut.NodeID = 1

	armA := &ast.TupleStructPattern{Path: &ast.Path{Segments: []string{"A"}}}
	litA := &ast.Lit{Kind: ast.LitInt, Value: int64(0)}
	litA.NodeID = 10
	armB := &ast.TupleStructPattern{Path: &ast.Path{Segments: []string{"B"}}}
	litB := &ast.Lit{Kind: ast.LitInt, Value: int64(1)}
	litB.NodeID = 11

	match := &ast.MatchExpr{
		Scrutinee: scrut,
		Arms: []*ast.MatchArm{
			{Pattern: armA, Body: litA},
			{Pattern: armB, Body: litB},
		},
	}
	match.NodeID = 20

	l.info.TypeOf[1] = enumTy
	l.info.TypeOf[10] = i32
	l.info.TypeOf[11] = i32
	l.info.TypeOf[20] = i32
	l.info.Refs[1] = ast.DefID{Crate: ast.LocalCrate, Index: 1}

	fn := &ast.FnItem{Params: []*ast.Param{recv}, Body: &ast.Block{Tail: match}}
	out := l.LowerFn(fn, "pick_variant", []types.TypeID{enumTy}, i32)

	var sw *Switch
	for _, blk := range out.Blocks {
		if s, ok := blk.Term.(*Switch); ok {
			sw = s
		}
	}
	if sw == nil {
		t.Fatalf("expected a Switch terminator lowering the two-variant match")
	}
	if len(sw.Cases) != 2 {
		t.Fatalf("expected one Switch case per variant, got %d", len(sw.Cases))
	}
}

// TestBreakOutsideLoopReportsLWR003 checks the lowerer reports LWR003 instead
// of panicking when break/continue escape every enclosing loop.
func TestBreakOutsideLoopReportsLWR003(t *testing.T) {
	info := Info{}
	l, store, sess := newLowerer(nil, info)

	brk := &ast.BreakExpr{}
	brk.NodeID = 1
	fn := &ast.FnItem{Body: &ast.Block{Tail: brk}}

	l.LowerFn(fn, "bad_break", nil, store.Nil())
	if sess.ErrorCount() != 1 {
		t.Fatalf("expected exactly one LWR003 report, got %d errors", sess.ErrorCount())
	}
}

// TestLowerClosureEmitsBind checks ClosureExpr lowers to a Bind instruction
// carrying the driver-supplied capture list.
func TestLowerClosureEmitsBind(t *testing.T) {
	info := Info{Closures: map[ast.NodeID]ClosureInfo{}}
	l, store, _ := newLowerer(nil, info)
	fnTy := store.Fn(types.ProtoRust, nil, nil, store.Nil(), true, false)

	closure := &ast.ClosureExpr{Body: &ast.Block{}}
	closure.NodeID = 1
	l.info.TypeOf[1] = fnTy
	l.info.Closures[1] = ClosureInfo{Plan: ClosurePlan{ThunkSymbol: "thunk0", TargetFn: "closure_body"}, EnvTy: fnTy}

	fn := &ast.FnItem{Body: &ast.Block{Tail: closure}}
	out := l.LowerFn(fn, "make_closure", nil, fnTy)

	var sawBind bool
	for _, inst := range out.Blocks[0].Insts {
		if bind, ok := inst.(*Bind); ok && bind.TargetFn == "closure_body" {
			sawBind = true
		}
	}
	if !sawBind {
		t.Fatalf("expected the closure expression to lower to a Bind instruction")
	}
}
