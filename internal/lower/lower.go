package lower

import (
	"github.com/rustsem/corec/internal/ast"
	"github.com/rustsem/corec/internal/errors"
	"github.com/rustsem/corec/internal/infer"
	"github.com/rustsem/corec/internal/layout"
	"github.com/rustsem/corec/internal/session"
	"github.com/rustsem/corec/internal/types"
)

// CallTarget is the resolved callee of a CallExpr, MethodCallExpr, or
// operator dispatch, computed upstream by check/vtable and handed to the
// lowerer rather than re-derived here (spec §4.H consumes F's vtable
// resolutions and E's operator-to-method dispatch verbatim).
type CallTarget struct {
	Symbol string     // direct call to a statically known function
	Vtable *VtableRef // method dispatch through a vtable slot instead
}

// ClosureInfo is the capture plan and environment type for one
// ClosureExpr, keyed in Info.Closures. The crate driver (internal/crate)
// passes an empty Closures map, so under it every closure lowers to a Bind
// with no captures.
type ClosureInfo struct {
	Plan  ClosurePlan
	EnvTy types.TypeID
}

// Info bundles everything the crate driver (internal/crate) has already
// computed about one function body and that LowerFn needs to turn surface
// AST into IR: per-node types and coercions from D, resolved bindings from
// C, and resolved call targets from E/F.
type Info struct {
	TypeOf      map[ast.NodeID]types.TypeID
	Adjustments map[ast.NodeID]infer.Adjustment
	Refs        map[ast.NodeID]ast.DefID // PathExpr/StructLit/pattern -> resolved definition
	Calls       map[ast.NodeID]CallTarget
	Closures    map[ast.NodeID]ClosureInfo
	Symbol      func(ast.DefID) string // definition -> linker symbol
	TagType     func(def types.DefRef, nVariants int) types.TypeID
	VariantIdx  func(def types.DefRef, name string) int
}

// Lowerer drives one function body's translation to IR, mirroring the
// teacher's single-elaborator-per-body shape (internal/elaborate/core.go)
// but emitting this spec's explicit block/instruction IR instead of ANF.
type Lowerer struct {
	sess    *session.Session
	store   *types.Store
	planner *layout.Planner
	info    Info

	b        *Builder
	locals   map[ast.NodeID]localSlot // LetStmt/Param NodeID -> storage
	loopTops []loopCtx
}

type localSlot struct {
	ptr ValueID
	ty  types.TypeID
}

type loopCtx struct {
	breakTo    BlockID
	continueTo BlockID
	resultSlot *ValueID // non-nil when the loop body produces a break value
}

// NewLowerer creates a lowerer for one crate, sharing the store/planner the
// checker and layout planner already built.
func NewLowerer(sess *session.Session, store *types.Store, planner *layout.Planner, info Info) *Lowerer {
	return &Lowerer{sess: sess, store: store, planner: planner, info: info}
}

// LowerFn lowers one checked function body to a Function, wiring parameter
// copy-in and a trailing Ret (spec §4.H "Every function gets four
// pre-entry blocks ... followed by the user code").
func (l *Lowerer) LowerFn(fn *ast.FnItem, symbol string, paramTypes []types.TypeID, retTy types.TypeID) *Function {
	params := make([]Param, len(fn.Params))
	byPtr := make([]bool, len(fn.Params))
	for i, p := range fn.Params {
		byPtr[i] = !l.store.IsScalar(paramTypes[i])
		params[i] = Param{Name: p.Name, Ty: paramTypes[i], ByPtr: byPtr[i]}
	}

	l.b = NewBuilder(symbol, params, retTy)
	l.locals = make(map[ast.NodeID]localSlot)

	for i, p := range fn.Params {
		slot := l.b.EmitAlloca(p.Name, paramTypes[i], !l.store.HasDynamicSize(paramTypes[i]))
		// copy-args pre-entry block receives the by-value/by-pointer copy-in
		// of each formal (spec §4.H "copy-args").
		argVal, _ := l.b.freshValue(paramTypes[i])
		l.b.fn.PreBlocks[PreCopyArgs].Insts = append(l.b.fn.PreBlocks[PreCopyArgs].Insts,
			&Store{Node: Node{ID: l.b.fresh(), Ty: paramTypes[i]}, Ptr: slot, Val: argVal})
		l.locals[p.ID()] = localSlot{ptr: slot, ty: paramTypes[i]}
		params[i].ValueRef = argVal
	}

	result := l.lowerBlock(fn.Body)
	if l.b.Current().Term == nil {
		if retTy == l.store.Nil() || result == 0 {
			l.b.Terminate(&Ret{Has: false})
		} else {
			l.b.Terminate(&Ret{Val: result, Has: true})
		}
	}
	return l.b.Finish()
}

func (l *Lowerer) typeOf(n ast.Node) types.TypeID {
	if t, ok := l.info.TypeOf[n.ID()]; ok {
		return t
	}
	return types.InvalidType
}

// lowerBlock lowers a surface Block, running drop glue on every local it
// introduced before control leaves (spec §4.H "values go out of scope at
// the end of the block that introduced them").
func (l *Lowerer) lowerBlock(blk *ast.Block) ValueID {
	type scoped struct {
		ptr ValueID
		ty  types.TypeID
	}
	var introduced []scoped

	for _, st := range blk.Stmts {
		switch s := st.(type) {
		case *ast.LetStmt:
			ty := l.typeOf(s)
			ptr := l.b.EmitAlloca(patternName(s.Pattern), ty, !l.store.HasDynamicSize(ty))
			if s.Value != nil {
				v := l.lowerExpr(s.Value)
				l.emitCopyOrMove(ptr, v, ty, true)
			}
			l.bindPattern(s.Pattern, ptr, ty)
			introduced = append(introduced, scoped{ptr, ty})
		case *ast.ExprStmt:
			l.lowerExpr(s.Expr)
		case *ast.ItemStmt:
			// Nested item declarations carry no runtime effect at their
			// declaration point; the crate driver lowers them as ordinary
			// top-level items reachable from the same module.
		}
	}

	var tail ValueID
	if blk.Tail != nil {
		tail = l.lowerExpr(blk.Tail)
	}

	for i := len(introduced) - 1; i >= 0; i-- {
		s := introduced[i]
		if s.ptr == tail {
			continue
		}
		if l.store.NeedsDrop(s.ty) {
			l.b.Emit(&DropInst{Node: Node{ID: l.b.fresh()}, Val: s.ptr})
		}
	}
	return tail
}

func patternName(p ast.Pattern) string {
	if id, ok := p.(*ast.IdentPattern); ok {
		return id.Name
	}
	return "$pat"
}

func (l *Lowerer) bindPattern(p ast.Pattern, ptr ValueID, ty types.TypeID) {
	switch pat := p.(type) {
	case *ast.IdentPattern:
		l.locals[pat.ID()] = localSlot{ptr: ptr, ty: ty}
	case *ast.WildcardPattern:
		// no binding
	case *ast.TuplePattern:
		for i, elem := range pat.Elems {
			ety := types.InvalidType
			if tup, ok := l.store.TupleElems(ty); ok && i < len(tup) {
				ety = tup[i]
			}
			field := l.b.Emit(&Gep{Node: Node{ID: l.b.fresh(), Ty: ety}, Base: ptr, Index: []int{i}})
			l.bindPattern(elem, field, ety)
		}
	}
}

// emitCopyOrMove stores val into ptr, following spec §4.H copy-vs-move
// semantics: scalars are a plain Store, aggregates are copied/moved with
// Memmove plus the type's copy-glue when it owns heap memory.
func (l *Lowerer) emitCopyOrMove(ptr, val ValueID, ty types.TypeID, isMove bool) {
	if l.store.IsScalar(ty) {
		l.b.Emit(&Store{Node: Node{ID: l.b.fresh(), Ty: ty}, Ptr: ptr, Val: val})
		return
	}
	if isMove {
		l.b.Emit(&MoveInst{Node: Node{ID: l.b.fresh(), Ty: ty}, Dst: ptr, Src: val, ZeroesSrc: true})
		return
	}
	var glue *GlueCall
	if l.store.OwnsHeapMemory(ty) {
		glue = &GlueCall{Node: Node{ID: l.b.fresh(), Ty: ty}, GlueName: "copy", Args: []ValueID{val}}
	}
	l.b.Emit(&CopyInst{Node: Node{ID: l.b.fresh(), Ty: ty}, Dst: ptr, Src: val, Memmove: true, Glue: glue})
}

// lowerExpr dispatches by surface node kind, mirroring check.CheckExpr's
// and the teacher's elaborator's type-switch shape.
func (l *Lowerer) lowerExpr(e ast.Expr) ValueID {
	ty := l.typeOf(e)
	switch n := e.(type) {
	case *ast.Lit:
		id, node := l.b.freshValue(ty)
		l.b.Emit(&ImmConst{Node: node, Value: n.Value})
		return id

	case *ast.PathExpr:
		if def, ok := l.info.Refs[n.ID()]; ok {
			if slot, ok := l.localByDef(def); ok {
				return l.b.Emit(&Load{Node: Node{ID: l.b.fresh(), Ty: slot.ty}, Ptr: slot.ptr})
			}
		}
		// A bare path that doesn't resolve to a local is a function/const
		// reference; callers that need its address build a Call directly
		// from l.info.Calls instead of loading through here.
		id, node := l.b.freshValue(ty)
		l.b.Emit(&ImmConst{Node: node, Value: n.Path.String()})
		return id

	case *ast.UnaryExpr:
		return l.lowerOpCall(n.ID(), ty, n.Expr)

	case *ast.BinaryExpr:
		return l.lowerOpCall(n.ID(), ty, n.Left, n.Right)

	case *ast.CallExpr:
		args := make([]ValueID, len(n.Args))
		for i, a := range n.Args {
			args[i] = l.lowerExpr(a)
		}
		target, ok := l.info.Calls[n.ID()]
		if !ok {
			if p, isPath := n.Func.(*ast.PathExpr); isPath {
				if def, refOk := l.info.Refs[p.ID()]; refOk && l.info.Symbol != nil {
					target = CallTarget{Symbol: l.info.Symbol(def)}
				}
			}
		}
		return l.emitCall(ty, target, args)

	case *ast.MethodCallExpr:
		recv := l.lowerExpr(n.Receiver)
		args := make([]ValueID, 0, len(n.Args)+1)
		args = append(args, recv)
		for _, a := range n.Args {
			args = append(args, l.lowerExpr(a))
		}
		target := l.info.Calls[n.ID()]
		return l.emitCall(ty, target, args)

	case *ast.FieldExpr:
		base := l.lowerExpr(n.Target)
		// The field's positional index among its def's fields is looked up
		// by the crate driver (internal/crate), which holds the def table
		// this package deliberately has no import-cycle access to; it
		// rewrites Gep.Index before this IR reaches the backend.
		return l.b.Emit(&Gep{Node: Node{ID: l.b.fresh(), Ty: ty}, Base: base, Index: []int{0}})

	case *ast.IndexExpr:
		base := l.lowerExpr(n.Target)
		idx := l.lowerExpr(n.Index)
		id, node := l.b.freshValue(ty)
		l.b.Emit(&Call{Node: node, Callee: 0, Args: []ValueID{base, idx}})
		return id

	case *ast.CastExpr:
		v := l.lowerExpr(n.Value)
		id, node := l.b.freshValue(ty)
		l.b.Emit(&Upcall{Node: node, Name: "cast", Args: []ValueID{v}})
		return id

	case *ast.TupleExpr:
		ptr := l.b.EmitAlloca("$tuple", ty, !l.store.HasDynamicSize(ty))
		for i, el := range n.Elems {
			ety := l.typeOf(el)
			v := l.lowerExpr(el)
			field := l.b.Emit(&Gep{Node: Node{ID: l.b.fresh(), Ty: ety}, Base: ptr, Index: []int{i}})
			l.emitCopyOrMove(field, v, ety, true)
		}
		return l.b.Emit(&Load{Node: Node{ID: l.b.fresh(), Ty: ty}, Ptr: ptr})

	case *ast.ArrayExpr:
		ptr := l.b.EmitAlloca("$array", ty, !n.Dynamic && !l.store.HasDynamicSize(ty))
		for i, el := range n.Elems {
			ety := l.typeOf(el)
			v := l.lowerExpr(el)
			field := l.b.Emit(&Gep{Node: Node{ID: l.b.fresh(), Ty: ety}, Base: ptr, Index: []int{i}})
			l.emitCopyOrMove(field, v, ety, true)
		}
		return l.b.Emit(&Load{Node: Node{ID: l.b.fresh(), Ty: ty}, Ptr: ptr})

	case *ast.StructLit:
		ptr := l.b.EmitAlloca("$struct", ty, !l.store.HasDynamicSize(ty))
		for i, f := range n.Fields {
			fty := l.typeOf(f.Value)
			v := l.lowerExpr(f.Value)
			field := l.b.Emit(&Gep{Node: Node{ID: l.b.fresh(), Ty: fty}, Base: ptr, Index: []int{i}})
			l.emitCopyOrMove(field, v, fty, true)
		}
		return l.b.Emit(&Load{Node: Node{ID: l.b.fresh(), Ty: ty}, Ptr: ptr})

	case *ast.Block:
		return l.lowerBlock(n)

	case *ast.IfExpr:
		return l.lowerIf(n, ty)

	case *ast.MatchExpr:
		return l.lowerMatch(n, ty)

	case *ast.ClosureExpr:
		info := l.info.Closures[n.ID()]
		return l.b.LowerClosure(info.Plan, info.EnvTy)

	case *ast.ReturnExpr:
		var v ValueID
		has := n.Value != nil
		if has {
			v = l.lowerExpr(n.Value)
		}
		l.b.Terminate(&Ret{Val: v, Has: has})
		l.b.SetCurrent(l.b.NewBlock("after-return"))
		l.b.Terminate(&Unreachable{})
		return 0

	case *ast.FailExpr:
		var msg ValueID
		if n.Message != nil {
			msg = l.lowerExpr(n.Message)
		}
		l.b.Emit(&FailInst{Node: Node{ID: l.b.fresh()}, File: n.Span().File, Line: 0, Msg: msg})
		l.b.Terminate(&Unreachable{})
		l.b.SetCurrent(l.b.NewBlock("after-fail"))
		l.b.Terminate(&Unreachable{})
		return 0

	case *ast.LoopExpr:
		return l.lowerLoop(n, ty)

	case *ast.WhileExpr:
		return l.lowerWhile(n)

	case *ast.BreakExpr:
		if len(l.loopTops) == 0 {
			l.sess.SpanErr(n.Span(), errors.LWR003, "break outside loop", nil)
			return 0
		}
		top := l.loopTops[len(l.loopTops)-1]
		if n.Value != nil && top.resultSlot != nil {
			v := l.lowerExpr(n.Value)
			l.b.Emit(&Store{Node: Node{ID: l.b.fresh(), Ty: ty}, Ptr: *top.resultSlot, Val: v})
		}
		l.b.Terminate(&Br{Target: top.breakTo})
		l.b.SetCurrent(l.b.NewBlock("after-break"))
		l.b.Terminate(&Unreachable{})
		return 0

	case *ast.ContinueExpr:
		if len(l.loopTops) == 0 {
			l.sess.SpanErr(n.Span(), errors.LWR003, "continue outside loop", nil)
			return 0
		}
		l.b.Terminate(&Br{Target: l.loopTops[len(l.loopTops)-1].continueTo})
		l.b.SetCurrent(l.b.NewBlock("after-continue"))
		l.b.Terminate(&Unreachable{})
		return 0

	default:
		l.sess.Bug("lower: unhandled expression kind")
		return 0
	}
}

func (l *Lowerer) localByDef(def ast.DefID) (localSlot, bool) {
	for id, slot := range l.locals {
		if uint32(id) == def.Index && def.Crate == ast.LocalCrate {
			return slot, true
		}
	}
	return localSlot{}, false
}

// lowerOpCall compiles an operator to the trait-method Call the checker
// already resolved, per spec §4.E "operators dispatch to the corresponding
// trait method" and §4.H "calls compile the same whether they came from
// surface call syntax or operator syntax".
func (l *Lowerer) lowerOpCall(id ast.NodeID, ty types.TypeID, operands ...ast.Expr) ValueID {
	args := make([]ValueID, len(operands))
	for i, o := range operands {
		args[i] = l.lowerExpr(o)
	}
	target := l.info.Calls[id]
	return l.emitCall(ty, target, args)
}

func (l *Lowerer) emitCall(ty types.TypeID, target CallTarget, args []ValueID) ValueID {
	id, node := l.b.freshValue(ty)
	call := &Call{Node: node, Args: args}
	if target.Vtable != nil {
		call.Vtable = target.Vtable
	} else {
		// Callee is resolved to a linker symbol by the driver; the IR keeps
		// only the ValueID slot, so the backend looks the symbol up by the
		// Call's Origin node once it retargets through l.info.Symbol.
		call.Callee = 0
	}
	l.b.Emit(call)
	return id
}

func (l *Lowerer) lowerIf(n *ast.IfExpr, ty types.TypeID) ValueID {
	cond := l.lowerExpr(n.Cond)
	thenBlk := l.b.NewBlock("if.then")
	elseBlk := l.b.NewBlock("if.else")
	join := l.b.NewBlock("if.join")
	l.b.Terminate(&CondBr{Cond: cond, True: thenBlk.ID, False: elseBlk.ID})

	var resultSlot ValueID
	hasResult := ty != l.store.Nil() && ty != types.InvalidType
	if hasResult {
		resultSlot = l.b.EmitAlloca("$if", ty, !l.store.HasDynamicSize(ty))
	}

	l.b.SetCurrent(thenBlk)
	tv := l.lowerExpr(n.Then)
	if hasResult && l.b.Current().Term == nil {
		l.b.Emit(&Store{Node: Node{ID: l.b.fresh(), Ty: ty}, Ptr: resultSlot, Val: tv})
	}
	if l.b.Current().Term == nil {
		l.b.Terminate(&Br{Target: join.ID})
	}

	l.b.SetCurrent(elseBlk)
	if n.Else != nil {
		ev := l.lowerExpr(n.Else)
		if hasResult && l.b.Current().Term == nil {
			l.b.Emit(&Store{Node: Node{ID: l.b.fresh(), Ty: ty}, Ptr: resultSlot, Val: ev})
		}
	}
	if l.b.Current().Term == nil {
		l.b.Terminate(&Br{Target: join.ID})
	}

	l.b.SetCurrent(join)
	if hasResult {
		return l.b.Emit(&Load{Node: Node{ID: l.b.fresh(), Ty: ty}, Ptr: resultSlot})
	}
	return 0
}

func (l *Lowerer) lowerLoop(n *ast.LoopExpr, ty types.TypeID) ValueID {
	head := l.b.NewBlock("loop.head")
	after := l.b.NewBlock("loop.after")
	l.b.Terminate(&Br{Target: head.ID})
	l.b.SetCurrent(head)

	var resultSlot *ValueID
	if ty != l.store.Nil() && ty != types.InvalidType {
		slot := l.b.EmitAlloca("$loop", ty, !l.store.HasDynamicSize(ty))
		resultSlot = &slot
	}
	l.loopTops = append(l.loopTops, loopCtx{breakTo: after.ID, continueTo: head.ID, resultSlot: resultSlot})
	l.lowerBlock(n.Body)
	l.loopTops = l.loopTops[:len(l.loopTops)-1]
	if l.b.Current().Term == nil {
		l.b.Terminate(&Br{Target: head.ID})
	}

	l.b.SetCurrent(after)
	if resultSlot != nil {
		return l.b.Emit(&Load{Node: Node{ID: l.b.fresh(), Ty: ty}, Ptr: *resultSlot})
	}
	return 0
}

func (l *Lowerer) lowerWhile(n *ast.WhileExpr) ValueID {
	head := l.b.NewBlock("while.head")
	body := l.b.NewBlock("while.body")
	after := l.b.NewBlock("while.after")
	l.b.Terminate(&Br{Target: head.ID})

	l.b.SetCurrent(head)
	cond := l.lowerExpr(n.Cond)
	l.b.Terminate(&CondBr{Cond: cond, True: body.ID, False: after.ID})

	l.loopTops = append(l.loopTops, loopCtx{breakTo: after.ID, continueTo: head.ID})
	l.b.SetCurrent(body)
	l.lowerBlock(n.Body)
	l.loopTops = l.loopTops[:len(l.loopTops)-1]
	if l.b.Current().Term == nil {
		l.b.Terminate(&Br{Target: head.ID})
	}

	l.b.SetCurrent(after)
	return 0
}

// lowerMatch compiles an enum scrutinee via the tag-switch scheme
// (LowerEnumMatch); any other scrutinee type (literal/tuple patterns) falls
// back to a sequential chain of equality tests, since those never need a
// vtable-style tag dispatch.
func (l *Lowerer) lowerMatch(n *ast.MatchExpr, ty types.TypeID) ValueID {
	scrutTy := l.typeOf(n.Scrutinee)
	scrut := l.lowerExpr(n.Scrutinee)

	if l.store.KindOf(scrutTy) != types.KEnum {
		return l.lowerSequentialMatch(n, ty, scrut, scrutTy)
	}

	def, _, _ := l.store.NominalDef(scrutTy)
	join := l.b.NewBlock("match.join")
	var resultSlot ValueID
	hasResult := ty != l.store.Nil() && ty != types.InvalidType
	if hasResult {
		resultSlot = l.b.EmitAlloca("$match", ty, !l.store.HasDynamicSize(ty))
	}

	nVariants := 0
	hasDefault := false
	var defaultBlockID BlockID
	arms := make([]ArmPlan, 0, len(n.Arms))
	armBlocks := make([]*Block, 0, len(n.Arms))
	for _, arm := range n.Arms {
		blk := l.b.NewBlock("match.arm")
		armBlocks = append(armBlocks, blk)
		switch pat := arm.Pattern.(type) {
		case *ast.WildcardPattern:
			hasDefault = true
			defaultBlockID = blk.ID
		case *ast.IdentPattern:
			// A bare identifier arm is a catch-all default unless the
			// checker disambiguated it against a nullary enum variant
			// (recorded in Refs instead of binding a fresh local), in which
			// case it gets its own tag-switch case like any other variant
			// pattern.
			if _, isVariant := l.info.Refs[pat.ID()]; isVariant {
				idx := 0
				if l.info.VariantIdx != nil {
					idx = l.info.VariantIdx(def, pat.Name)
				}
				if idx+1 > nVariants {
					nVariants = idx + 1
				}
				arms = append(arms, ArmPlan{VariantIdx: idx, Block: blk.ID})
			} else {
				hasDefault = true
				defaultBlockID = blk.ID
			}
		case *ast.TupleStructPattern:
			idx := 0
			if l.info.VariantIdx != nil {
				idx = l.info.VariantIdx(def, lastSegment(pat.Path))
			}
			if idx+1 > nVariants {
				nVariants = idx + 1
			}
			arms = append(arms, ArmPlan{VariantIdx: idx, Block: blk.ID})
		}
	}
	if nVariants == 0 {
		nVariants = len(n.Arms)
	}

	var defPtr *BlockID
	if hasDefault {
		defPtr = &defaultBlockID
	}
	exhaustive := hasDefault || len(arms) >= nVariants
	l.b.LowerEnumMatch(l.sess, n.Span(), scrut, nVariants, arms, defPtr, exhaustive)
	if sw, ok := l.b.Current().Term.(*Switch); ok && l.info.TagType != nil {
		for _, inst := range l.b.Current().Insts {
			if ld, ok := inst.(*Load); ok && ld.ID == sw.Tag {
				ld.Ty = l.info.TagType(def, nVariants)
			}
		}
	}

	for i, arm := range n.Arms {
		l.b.SetCurrent(armBlocks[i])
		if pat, ok := arm.Pattern.(*ast.TupleStructPattern); ok {
			for j, elem := range pat.Elems {
				ety := l.typeOf(elem)
				slot := l.b.Emit(&Gep{Node: Node{ID: l.b.fresh(), Ty: ety}, Base: scrut, Index: []int{1, j}})
				l.bindPattern(elem, slot, ety)
			}
		}
		v := l.lowerExpr(arm.Body)
		if hasResult && l.b.Current().Term == nil {
			l.b.Emit(&Store{Node: Node{ID: l.b.fresh(), Ty: ty}, Ptr: resultSlot, Val: v})
		}
		if l.b.Current().Term == nil {
			l.b.Terminate(&Br{Target: join.ID})
		}
	}

	l.b.SetCurrent(join)
	if hasResult {
		return l.b.Emit(&Load{Node: Node{ID: l.b.fresh(), Ty: ty}, Ptr: resultSlot})
	}
	return 0
}

func (l *Lowerer) lowerSequentialMatch(n *ast.MatchExpr, ty types.TypeID, scrut ValueID, scrutTy types.TypeID) ValueID {
	join := l.b.NewBlock("match.join")
	var resultSlot ValueID
	hasResult := ty != l.store.Nil() && ty != types.InvalidType
	if hasResult {
		resultSlot = l.b.EmitAlloca("$match", ty, !l.store.HasDynamicSize(ty))
	}

	for _, arm := range n.Arms {
		body := l.b.NewBlock("match.arm")
		next := l.b.NewBlock("match.next")
		if _, wild := arm.Pattern.(*ast.WildcardPattern); !wild {
			if lp, ok := arm.Pattern.(*ast.LitPattern); ok {
				imm, node := l.b.freshValue(scrutTy)
				l.b.Emit(&ImmConst{Node: node, Value: lp.Lit.Value})
				cmp, cnode := l.b.freshValue(l.store.Bool())
				l.b.Emit(&Upcall{Node: cnode, Name: "eq", Args: []ValueID{scrut, imm}})
				l.b.Terminate(&CondBr{Cond: cmp, True: body.ID, False: next.ID})
			} else {
				l.b.Terminate(&Br{Target: body.ID})
			}
		} else {
			l.b.Terminate(&Br{Target: body.ID})
		}

		l.b.SetCurrent(body)
		l.bindPattern(arm.Pattern, scrut, scrutTy)
		v := l.lowerExpr(arm.Body)
		if hasResult && l.b.Current().Term == nil {
			l.b.Emit(&Store{Node: Node{ID: l.b.fresh(), Ty: ty}, Ptr: resultSlot, Val: v})
		}
		if l.b.Current().Term == nil {
			l.b.Terminate(&Br{Target: join.ID})
		}
		l.b.SetCurrent(next)
	}
	l.b.Terminate(&Unreachable{})

	l.b.SetCurrent(join)
	if hasResult {
		return l.b.Emit(&Load{Node: Node{ID: l.b.fresh(), Ty: ty}, Ptr: resultSlot})
	}
	return 0
}

func lastSegment(p *ast.Path) string {
	if p == nil || len(p.Segments) == 0 {
		return ""
	}
	return p.Segments[len(p.Segments)-1]
}
