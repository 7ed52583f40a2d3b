package check

import (
	"github.com/rustsem/corec/internal/ast"
	"github.com/rustsem/corec/internal/errors"
	"github.com/rustsem/corec/internal/types"
)

// CheckExpr is the dispatch-by-node-kind entry point, mirroring the
// teacher's CoreTypeChecker.inferCore switch but driven by this spec's
// expected-type propagation instead of a bare Hindley-Milner Infer.
func (c *Checker) CheckExpr(e ast.Expr, exp Expected) types.TypeID {
	var actual types.TypeID
	switch n := e.(type) {
	case *ast.Lit:
		actual = c.checkLit(n, exp)
	case *ast.PathExpr:
		actual = c.checkPath(n)
	case *ast.UnaryExpr:
		actual = c.checkUnary(n)
	case *ast.BinaryExpr:
		actual = c.checkBinary(n)
	case *ast.CallExpr:
		actual = c.checkCall(n)
	case *ast.MethodCallExpr:
		actual = c.checkMethodCall(n)
	case *ast.FieldExpr:
		actual = c.checkField(n)
	case *ast.IndexExpr:
		actual = c.checkIndex(n)
	case *ast.CastExpr:
		actual = c.checkCast(n)
	case *ast.TupleExpr:
		actual = c.checkTuple(n)
	case *ast.ArrayExpr:
		actual = c.checkArray(n)
	case *ast.StructLit:
		actual = c.checkStructLit(n)
	case *ast.Block:
		actual = c.checkBlock(n, exp)
		c.recordType(e.ID(), actual)
		return actual // block already applied exp to its tail; don't double-apply
	case *ast.IfExpr:
		actual = c.checkIf(n, exp)
	case *ast.MatchExpr:
		actual = c.checkMatch(n, exp)
	case *ast.ClosureExpr:
		actual = c.checkClosure(n)
	case *ast.ReturnExpr:
		actual = c.checkReturn(n)
	case *ast.LoopExpr:
		actual = c.checkLoop(n)
	case *ast.WhileExpr:
		actual = c.checkWhile(n)
	case *ast.BreakExpr, *ast.ContinueExpr:
		actual = c.store.Bottom()
	case *ast.FailExpr:
		actual = c.checkFail(n)
	default:
		c.sess.Bug("unhandled expression node in type checker")
		return c.store.ErrorSentinel()
	}
	final := c.applyExpectation(e.ID(), e.Span(), actual, exp)
	c.recordType(e.ID(), final)
	return final
}

func (c *Checker) checkLit(n *ast.Lit, exp Expected) types.TypeID {
	switch n.Kind {
	case ast.LitBool:
		return c.store.Bool()
	case ast.LitChar:
		return c.store.Char()
	case ast.LitString:
		return c.store.Str()
	case ast.LitUnit:
		return c.store.Nil()
	case ast.LitInt:
		if n.Suffix != "" {
			return suffixedIntType(c.store, n.Suffix)
		}
		if exp.Mode != ExpectNone && isIntegralExpected(c.store, exp.Ty) {
			return exp.Ty
		}
		return c.store.NewInferVar(types.KInferInt)
	case ast.LitFloat:
		if n.Suffix != "" {
			return suffixedFloatType(c.store, n.Suffix)
		}
		if exp.Mode != ExpectNone && isFloatExpected(c.store, exp.Ty) {
			return exp.Ty
		}
		return c.store.NewInferVar(types.KInferFloat)
	default:
		return c.store.ErrorSentinel()
	}
}

func suffixedIntType(s *types.Store, suffix string) types.TypeID {
	switch suffix {
	case "u8":
		return s.UInt(types.W8)
	case "u16":
		return s.UInt(types.W16)
	case "u32":
		return s.UInt(types.W32)
	case "u64":
		return s.UInt(types.W64)
	case "usize":
		return s.UInt(types.WPointer)
	case "i8":
		return s.Int(types.W8)
	case "i16":
		return s.Int(types.W16)
	case "i64":
		return s.Int(types.W64)
	case "isize":
		return s.Int(types.WPointer)
	default:
		return s.Int(types.W32)
	}
}

func suffixedFloatType(s *types.Store, suffix string) types.TypeID {
	if suffix == "f32" {
		return s.F32()
	}
	return s.F64()
}

func isIntegralExpected(s *types.Store, t types.TypeID) bool {
	switch s.KindOf(t) {
	case types.KInt, types.KUInt:
		return true
	default:
		return false
	}
}

func isFloatExpected(s *types.Store, t types.TypeID) bool {
	switch s.KindOf(t) {
	case types.KF32, types.KF64:
		return true
	default:
		return false
	}
}

func (c *Checker) checkPath(n *ast.PathExpr) types.TypeID {
	if len(n.Path.Segments) == 1 {
		if ty, ok := c.localType(n.ID()); ok {
			return ty
		}
	}
	// Non-local paths (functions, consts) are resolved by component C
	// before type checking runs; the driver wires a value-namespace lookup
	// in (spec §4.C "Non-local paths ... resolved by C before type checking
	// runs") so a bare function/const name still gets a real type and a
	// Refs entry the lowerer can turn into a direct call/load.
	if len(n.Path.Segments) > 0 && c.valuePath != nil {
		name := n.Path.Segments[len(n.Path.Segments)-1]
		if def, ty, ok := c.valuePath(name); ok {
			c.refs[n.ID()] = def
			return ty
		}
	}
	// Absent that wiring in a standalone checker test, fall back to a fresh
	// inference variable so unit tests can still exercise downstream code.
	return c.store.NewInferVar(types.KInferGeneral)
}

func (c *Checker) checkUnary(n *ast.UnaryExpr) types.TypeID {
	switch n.Op {
	case "!":
		c.CheckExpr(n.Expr, Expected{Mode: ExpectHas, Ty: c.store.Bool()})
		return c.store.Bool()
	case "-":
		operand := c.CheckExpr(n.Expr, NoExpectation)
		return c.dispatchOperator(n.ID(), n.Span(), "neg", true, operand, types.InvalidType)
	case "*":
		operand := c.CheckExpr(n.Expr, NoExpectation)
		if elem, ok := c.store.Elem(operand); ok {
			return elem
		}
		c.sess.SpanErr(n.Span(), errors.TYK002, "type cannot be dereferenced", nil)
		return c.store.ErrorSentinel()
	case "&", "&mut":
		operand := c.CheckExpr(n.Expr, NoExpectation)
		return c.store.Ref(types.NewScopeRegion(uint32(n.ID())), operand)
	default:
		c.sess.Bug("unknown unary operator " + n.Op)
		return c.store.ErrorSentinel()
	}
}

func (c *Checker) checkBinary(n *ast.BinaryExpr) types.TypeID {
	left := c.CheckExpr(n.Left, NoExpectation)
	right := c.CheckExpr(n.Right, NoExpectation)
	switch n.Op {
	case "&&", "||":
		c.CheckExpr(n.Left, Expected{Mode: ExpectHas, Ty: c.store.Bool()})
		c.CheckExpr(n.Right, Expected{Mode: ExpectHas, Ty: c.store.Bool()})
		return c.store.Bool()
	case "==", "!=", "<", "<=", ">", ">=":
		if err := c.engine.Eq(left, right, n.Span()); err != nil {
			c.reportMismatch(n.Span(), left, right)
		}
		return c.store.Bool()
	default:
		return c.dispatchOperator(n.ID(), n.Span(), operatorMethod(n.Op), false, left, right)
	}
}

// operatorMethod maps a binary/unary operator spelling to the trait method
// it desugars to, mirroring the teacher's OperatorMethod but over this
// spec's trait names instead of AILANG's type-class names.
func operatorMethod(op string) string {
	switch op {
	case "+":
		return "add"
	case "-":
		return "sub"
	case "*":
		return "mul"
	case "/":
		return "div"
	case "%":
		return "rem"
	default:
		return ""
	}
}

// dispatchOperator resolves an overloaded operator to a trait method
// (spec §4.E "Operator overloading dispatches through the same method
// lookup used for explicit method calls"), falling back to the builtin
// scalar arithmetic rule when both operands are already-concrete numeric
// types sharing a kind.
func (c *Checker) dispatchOperator(node ast.NodeID, span ast.Span, method string, unary bool, lhs, rhs types.TypeID) types.TypeID {
	if c.isBuiltinNumeric(lhs) && (unary || c.engine.Eq(lhs, rhs, span) == nil) {
		return lhs
	}
	if c.methods == nil {
		c.sess.SpanErr(span, errors.TYK002, "no method named '"+method+"' found for this type", nil)
		return c.store.ErrorSentinel()
	}
	cands := c.methods.Candidates(lhs, method)
	return c.resolveMethodCandidates(node, span, cands, method)
}

func (c *Checker) isBuiltinNumeric(t types.TypeID) bool {
	switch c.store.KindOf(t) {
	case types.KInt, types.KUInt, types.KF32, types.KF64, types.KInferInt, types.KInferFloat:
		return true
	default:
		return false
	}
}

func (c *Checker) checkCall(n *ast.CallExpr) types.TypeID {
	fnTy := c.CheckExpr(n.Func, NoExpectation)
	if len(n.TypeArgs) > 0 {
		args := make([]types.TypeID, len(n.TypeArgs))
		for i, a := range n.TypeArgs {
			args[i] = c.resolveTypeExpr(a)
		}
		c.callTypeArgs[n.ID()] = args
	}
	params, ret, _, variadic, ok := c.store.FnParts(fnTy)
	if !ok {
		c.sess.SpanErr(n.Span(), errors.TYK002, "called expression is not a function", nil)
		for _, a := range n.Args {
			c.CheckExpr(a, NoExpectation)
		}
		return c.store.ErrorSentinel()
	}
	if !variadic && len(n.Args) != len(params) {
		c.sess.SpanErr(n.Span(), errors.TYK004, "wrong number of arguments", nil)
	}
	for i, a := range n.Args {
		if i < len(params) {
			c.CheckExpr(a, Expected{Mode: ExpectCoerce, Ty: params[i]})
		} else {
			// Extra args to a variadic C fn: spec §4.E "variadic C-call
			// safety rules" forbid passing non-Copy types across the
			// variadic boundary.
			argTy := c.CheckExpr(a, NoExpectation)
			if !c.store.IsCopyable(argTy) {
				c.sess.SpanErr(a.Span(), errors.TYK005, "only Copy types may be passed through a variadic argument", nil)
			}
		}
	}
	return ret
}

func (c *Checker) checkMethodCall(n *ast.MethodCallExpr) types.TypeID {
	recv := c.CheckExpr(n.Receiver, NoExpectation)
	argTys := make([]types.TypeID, len(n.Args))
	for i, a := range n.Args {
		argTys[i] = c.CheckExpr(a, NoExpectation)
	}
	if c.methods == nil {
		c.sess.SpanErr(n.Span(), errors.TYK002, "no method named '"+n.Name+"' found for this type", nil)
		return c.store.ErrorSentinel()
	}
	cands := c.autoderefCandidates(recv, n.Name)
	ret := c.resolveMethodCandidates(n.ID(), n.Span(), cands, n.Name)
	_ = argTys // argument types are checked against the signature by the driver once bound
	return ret
}

// autoderefCandidates walks the deref chain (spec §4.E "method lookup
// performs autoderef"), collecting candidates at each step; the first step
// with any candidate wins, matching Rust's shallowest-match-wins rule.
func (c *Checker) autoderefCandidates(recv types.TypeID, name string) []MethodCandidate {
	seen := recv
	for derefs := 0; derefs < 32; derefs++ {
		cands := c.methods.Candidates(seen, name)
		if len(cands) > 0 {
			for i := range cands {
				cands[i].Derefs = derefs
			}
			return cands
		}
		elem, ok := c.store.Elem(seen)
		if !ok {
			break
		}
		seen = elem
	}
	return nil
}

func (c *Checker) resolveMethodCandidates(node ast.NodeID, span ast.Span, cands []MethodCandidate, name string) types.TypeID {
	if len(cands) == 0 {
		c.sess.SpanErr(span, errors.TYK002, "no method named '"+name+"' found for this type", nil)
		return c.store.ErrorSentinel()
	}
	// Inherent impls shadow trait impls (spec §4.E method resolution order).
	var inherent []MethodCandidate
	for _, cd := range cands {
		if cd.FromImpl {
			inherent = append(inherent, cd)
		}
	}
	pool := cands
	if len(inherent) > 0 {
		pool = inherent
	}
	if len(pool) > 1 {
		c.sess.SpanErr(span, errors.TYK003, "multiple applicable methods named '"+name+"' found", nil)
		return c.store.ErrorSentinel()
	}
	winner := pool[0]
	c.methodMap[node] = winner.Def
	if winner.Trait != nil && c.obligations != nil {
		c.obligations.Require(node, winner.Self, *winner.Trait, span)
	}
	return c.defReturnType(winner)
}

// defReturnType returns the candidate method's return type, threaded in by
// the driver when it built the MethodCandidate; absent that wiring (a
// standalone test of this package), returns a fresh variable instead.
func (c *Checker) defReturnType(cand MethodCandidate) types.TypeID {
	if cand.RetType != types.InvalidType {
		return cand.RetType
	}
	return c.store.NewInferVar(types.KInferGeneral)
}

func (c *Checker) checkField(n *ast.FieldExpr) types.TypeID {
	target := c.CheckExpr(n.Target, NoExpectation)
	seen := target
	for derefs := 0; derefs < 32; derefs++ {
		if d, args, ok := c.store.NominalDef(seen); ok {
			if ty, ok := c.fieldType(d, args, n.Name); ok {
				return ty
			}
		}
		elem, ok := c.store.Elem(seen)
		if !ok {
			break
		}
		seen = elem
	}
	c.sess.SpanErr(n.Span(), errors.TYK002, "no field named '"+n.Name+"' found", nil)
	return c.store.ErrorSentinel()
}

// fieldType delegates to the driver's name-keyed field lookup; a bare
// Checker with no crate metadata wired (a standalone test) always misses.
func (c *Checker) fieldType(def types.DefRef, args []types.TypeID, name string) (types.TypeID, bool) {
	if c.fieldLookup == nil {
		return types.InvalidType, false
	}
	return c.fieldLookup(def, name)
}

func (c *Checker) checkIndex(n *ast.IndexExpr) types.TypeID {
	target := c.CheckExpr(n.Target, NoExpectation)
	c.CheckExpr(n.Index, Expected{Mode: ExpectHas, Ty: c.store.UInt(types.WPointer)})
	if elem, ok := c.store.Elem(target); ok {
		return elem
	}
	c.sess.SpanErr(n.Span(), errors.TYK002, "type cannot be indexed", nil)
	return c.store.ErrorSentinel()
}

func (c *Checker) checkCast(n *ast.CastExpr) types.TypeID {
	from := c.CheckExpr(n.Value, NoExpectation)
	to := c.resolveTypeExpr(n.Type)
	if !validCastShape(c.store, from, to) {
		c.sess.SpanErr(n.Span(), errors.TYK010, "invalid cast", nil)
		return c.store.ErrorSentinel()
	}
	return to
}

// validCastShape enumerates the `as`-cast shapes this checker accepts:
// between numeric kinds (integers, floats, char and bool, including
// unresolved integer/float literals), enum to integer (discriminant), raw
// pointer to integer, integer to raw pointer, and raw pointer or reference
// to raw pointer. Every other shape is rejected.
func validCastShape(s *types.Store, from, to types.TypeID) bool {
	numeric := func(t types.TypeID) bool {
		switch s.KindOf(t) {
		case types.KInt, types.KUInt, types.KF32, types.KF64, types.KChar, types.KBool, types.KInferInt, types.KInferFloat:
			return true
		default:
			return false
		}
	}
	if numeric(from) && numeric(to) {
		return true
	}
	if s.KindOf(from) == types.KEnum && (s.KindOf(to) == types.KInt || s.KindOf(to) == types.KUInt) {
		return true
	}
	isInt := func(t types.TypeID) bool {
		k := s.KindOf(t)
		return k == types.KInt || k == types.KUInt || k == types.KInferInt
	}
	toPtr := s.KindOf(to) == types.KRawPtr
	if s.KindOf(from) == types.KRawPtr && (isInt(to) || toPtr) {
		return true
	}
	if toPtr && (isInt(from) || s.KindOf(from) == types.KRef) {
		return true
	}
	return false
}

func (c *Checker) checkTuple(n *ast.TupleExpr) types.TypeID {
	elems := make([]types.TypeID, len(n.Elems))
	for i, el := range n.Elems {
		elems[i] = c.CheckExpr(el, NoExpectation)
	}
	return c.store.Tuple(elems...)
}

func (c *Checker) checkArray(n *ast.ArrayExpr) types.TypeID {
	if len(n.Elems) == 0 {
		return c.store.Vec(c.store.NewInferVar(types.KInferGeneral))
	}
	elemTy := c.CheckExpr(n.Elems[0], NoExpectation)
	for _, el := range n.Elems[1:] {
		c.CheckExpr(el, Expected{Mode: ExpectHas, Ty: elemTy})
	}
	if n.Dynamic {
		return c.store.Vec(elemTy)
	}
	return c.store.Array(elemTy, len(n.Elems))
}

func (c *Checker) checkStructLit(n *ast.StructLit) types.TypeID {
	for _, f := range n.Fields {
		c.CheckExpr(f.Value, NoExpectation)
	}
	// Resolving n.Path to a concrete struct def is the driver's job (it owns
	// the crate's def table); standalone, report a fresh general var scoped
	// to the literal's node so adjustments still have somewhere to land.
	return c.store.NewInferVar(types.KInferGeneral)
}

func (c *Checker) checkBlock(n *ast.Block, exp Expected) types.TypeID {
	saved := make(Locals, len(c.locals))
	for k, v := range c.locals {
		saved[k] = v
	}
	defer func() { c.locals = saved }()

	for _, st := range n.Stmts {
		c.checkStmt(st)
	}
	if n.Tail == nil {
		if exp.Mode == ExpectHas {
			if c.engine.Eq(c.store.Nil(), exp.Ty, n.Span()) != nil {
				c.reportMismatch(n.Span(), exp.Ty, c.store.Nil())
			}
		}
		return c.store.Nil()
	}
	return c.CheckExpr(n.Tail, exp)
}

func (c *Checker) checkStmt(s ast.Stmt) {
	switch st := s.(type) {
	case *ast.LetStmt:
		c.checkLet(st)
	case *ast.ExprStmt:
		// A nil-returning function call used as a statement coerces away
		// its result silently (spec §4.E coercion rules).
		c.CheckExpr(st.Expr, Expected{Mode: ExpectCoerce, Ty: c.store.Nil()})
	case *ast.ItemStmt:
		// Local item declarations are hoisted by the resolver; nothing to
		// type check directly here.
	default:
		c.sess.Bug("unhandled statement node in type checker")
	}
}

func (c *Checker) checkLet(n *ast.LetStmt) {
	var declared types.TypeID
	hasDeclared := false
	if n.Type != nil {
		declared = c.resolveTypeExpr(n.Type)
		hasDeclared = true
	}
	var valueTy types.TypeID
	if n.Value != nil {
		exp := NoExpectation
		if hasDeclared {
			exp = Expected{Mode: ExpectCoerce, Ty: declared}
		}
		valueTy = c.CheckExpr(n.Value, exp)
	} else if hasDeclared {
		valueTy = declared
	} else {
		valueTy = c.store.NewInferVar(types.KInferGeneral)
	}
	c.checkPattern(n.Pattern, valueTy)
	c.recordType(n.ID(), valueTy)
}

// checkPattern binds names introduced by pattern against scrutinee (spec
// §4.E "pattern checking"), recursing structurally.
func (c *Checker) checkPattern(p ast.Pattern, scrutinee types.TypeID) {
	switch pt := p.(type) {
	case *ast.WildcardPattern:
		return
	case *ast.IdentPattern:
		// A bare identifier pattern binds a fresh local unless it names a
		// nullary enum variant in the definite-enum namespace (spec §4.E,
		// §4.C "definite-enum namespace"), in which case it refines the
		// scrutinee's tag instead of shadowing it.
		if d, _, ok := c.store.NominalDef(scrutinee); ok && c.store.KindOf(scrutinee) == types.KEnum && c.variantIndex != nil {
			if _, ok := c.variantIndex(d, pt.Name); ok {
				c.refs[pt.ID()] = ast.DefID{Crate: ast.CrateIndex(d.Crate), Index: d.Index}
				return
			}
		}
		c.bindLocal(pt.ID(), scrutinee)
	case *ast.LitPattern:
		c.CheckExpr(pt.Lit, Expected{Mode: ExpectHas, Ty: scrutinee})
	case *ast.RangePattern:
		c.CheckExpr(pt.Lo, Expected{Mode: ExpectHas, Ty: scrutinee})
		c.CheckExpr(pt.Hi, Expected{Mode: ExpectHas, Ty: scrutinee})
	case *ast.TuplePattern:
		elems, ok := c.store.TupleElems(scrutinee)
		if !ok || len(elems) != len(pt.Elems) {
			c.sess.SpanErr(pt.Span(), errors.TYK004, "tuple pattern arity mismatch", nil)
			return
		}
		for i, sub := range pt.Elems {
			c.checkPattern(sub, elems[i])
		}
	case *ast.RefPattern:
		if elem, ok := c.store.Elem(scrutinee); ok {
			c.checkPattern(pt.Elem, elem)
		}
	case *ast.StructPattern:
		for _, f := range pt.Fields {
			fieldTy, ok := c.resolveStructPatternField(scrutinee, f.Name)
			if !ok {
				fieldTy = c.store.NewInferVar(types.KInferGeneral)
			}
			c.checkPattern(f.Pattern, fieldTy)
		}
	case *ast.TupleStructPattern:
		for _, sub := range pt.Elems {
			c.checkPattern(sub, c.store.NewInferVar(types.KInferGeneral))
		}
	default:
		c.sess.Bug("unhandled pattern node in type checker")
	}
}

func (c *Checker) resolveStructPatternField(scrutinee types.TypeID, name string) (types.TypeID, bool) {
	d, args, ok := c.store.NominalDef(scrutinee)
	if !ok {
		return types.InvalidType, false
	}
	return c.fieldType(d, args, name)
}

func (c *Checker) checkIf(n *ast.IfExpr, exp Expected) types.TypeID {
	c.CheckExpr(n.Cond, Expected{Mode: ExpectHas, Ty: c.store.Bool()})
	thenTy := c.CheckExpr(n.Then, exp)
	if n.Else == nil {
		if err := c.engine.Eq(thenTy, c.store.Nil(), n.Span()); err != nil {
			c.reportMismatch(n.Span(), c.store.Nil(), thenTy)
		}
		return c.store.Nil()
	}
	elseTy := c.CheckExpr(n.Else, exp)
	return c.unifyArms(n.Span(), thenTy, elseTy)
}

// unifyArms merges the types of two branches that must agree (if/else,
// match arms), letting `!` (bottom) freely unify with anything per spec
// §4.E's bottom-propagation rule.
func (c *Checker) unifyArms(span ast.Span, a, b types.TypeID) types.TypeID {
	if c.store.KindOf(a) == types.KBottom {
		return b
	}
	if c.store.KindOf(b) == types.KBottom {
		return a
	}
	if err := c.engine.Eq(a, b, span); err != nil {
		c.reportMismatch(span, a, b)
	}
	return a
}

func (c *Checker) checkMatch(n *ast.MatchExpr, exp Expected) types.TypeID {
	scrutTy := c.CheckExpr(n.Scrutinee, NoExpectation)
	var result types.TypeID
	haveResult := false
	for _, arm := range n.Arms {
		c.checkPattern(arm.Pattern, scrutTy)
		if arm.Guard != nil {
			c.CheckExpr(arm.Guard, Expected{Mode: ExpectHas, Ty: c.store.Bool()})
		}
		bodyTy := c.CheckExpr(arm.Body, exp)
		if !haveResult {
			result = bodyTy
			haveResult = true
		} else {
			result = c.unifyArms(arm.Span(), result, bodyTy)
		}
	}
	if !haveResult {
		return c.store.Nil()
	}
	return result
}

func (c *Checker) checkClosure(n *ast.ClosureExpr) types.TypeID {
	paramTys := make([]types.TypeID, len(n.Params))
	modes := make([]types.ArgMode, len(n.Params))
	for i, p := range n.Params {
		var pt types.TypeID
		if p.Type != nil {
			pt = c.resolveTypeExpr(p.Type)
		} else {
			pt = c.store.NewInferVar(types.KInferGeneral)
		}
		paramTys[i] = pt
		modes[i] = types.ModeByValue
		c.bindLocal(p.ID(), pt)
	}
	bodyTy := c.CheckExpr(n.Body, NoExpectation)
	return c.store.Fn(types.ProtoRust, paramTys, modes, bodyTy, true, false)
}

// checkReturn checks the returned value (or the unit type, for a bare
// `return;`) against the enclosing function's declared return type, then
// yields bottom since control never reaches the expression's use site
// (spec §8 scenario 5: "fn f() -> int { return; }" must report a mismatch
// between unit and int, not silently coerce through bottom).
func (c *Checker) checkReturn(n *ast.ReturnExpr) types.TypeID {
	retTy, hasRet := c.currentRetType()
	if n.Value != nil {
		exp := NoExpectation
		if hasRet {
			exp = Expected{Mode: ExpectCoerce, Ty: retTy}
		}
		c.CheckExpr(n.Value, exp)
	} else if hasRet {
		if err := c.engine.Eq(c.store.Nil(), retTy, n.Span()); err != nil {
			c.reportMismatch(n.Span(), retTy, c.store.Nil())
		}
	}
	return c.store.Bottom()
}

func (c *Checker) checkLoop(n *ast.LoopExpr) types.TypeID {
	c.CheckExpr(n.Body, Expected{Mode: ExpectHas, Ty: c.store.Nil()})
	return c.store.Bottom()
}

func (c *Checker) checkWhile(n *ast.WhileExpr) types.TypeID {
	c.CheckExpr(n.Cond, Expected{Mode: ExpectHas, Ty: c.store.Bool()})
	c.CheckExpr(n.Body, Expected{Mode: ExpectHas, Ty: c.store.Nil()})
	return c.store.Nil()
}

func (c *Checker) checkFail(n *ast.FailExpr) types.TypeID {
	if n.Message != nil {
		c.CheckExpr(n.Message, Expected{Mode: ExpectHas, Ty: c.store.Str()})
	}
	return c.store.Bottom()
}

// resolveTypeExpr translates surface syntax into the interned type
// representation. A full implementation defers to the driver's name
// resolution of NamedType paths; only the shapes this core can resolve
// without external context are handled directly.
func (c *Checker) resolveTypeExpr(t ast.TypeExpr) types.TypeID {
	switch te := t.(type) {
	case *ast.RefType:
		return c.store.Ref(types.NewScopeRegion(uint32(te.ID())), c.resolveTypeExpr(te.Elem))
	case *ast.RawPtrType:
		return c.store.RawPtr(c.resolveTypeExpr(te.Elem))
	case *ast.TupleType:
		elems := make([]types.TypeID, len(te.Elems))
		for i, el := range te.Elems {
			elems[i] = c.resolveTypeExpr(el)
		}
		return c.store.Tuple(elems...)
	case *ast.VecType:
		return c.store.Vec(c.resolveTypeExpr(te.Elem))
	case *ast.ArrayType:
		return c.store.Array(c.resolveTypeExpr(te.Elem), te.Len)
	case *ast.FnType:
		params := make([]types.TypeID, len(te.Params))
		modes := make([]types.ArgMode, len(te.Params))
		for i, p := range te.Params {
			params[i] = c.resolveTypeExpr(p)
			modes[i] = types.ModeByValue
		}
		ret := c.store.Nil()
		if te.Ret != nil {
			ret = c.resolveTypeExpr(te.Ret)
		}
		return c.store.Fn(types.ProtoRust, params, modes, ret, true, te.Variadic)
	case *ast.NamedType:
		return c.resolveNamedType(te)
	default:
		return c.store.ErrorSentinel()
	}
}

// resolveNamedType handles the small set of built-in names this core can
// resolve on its own; everything else (structs, enums, type params, trait
// objects) is bound by the driver, which has the resolver's DefMap.
func (c *Checker) resolveNamedType(te *ast.NamedType) types.TypeID {
	if len(te.Path.Segments) != 1 {
		return c.store.NewInferVar(types.KInferGeneral)
	}
	switch te.Path.Segments[0] {
	case "bool":
		return c.store.Bool()
	case "char":
		return c.store.Char()
	case "str":
		return c.store.Str()
	case "i8":
		return c.store.Int(types.W8)
	case "i16":
		return c.store.Int(types.W16)
	case "i32":
		return c.store.Int(types.W32)
	case "i64":
		return c.store.Int(types.W64)
	case "isize":
		return c.store.Int(types.WPointer)
	case "u8":
		return c.store.UInt(types.W8)
	case "u16":
		return c.store.UInt(types.W16)
	case "u32":
		return c.store.UInt(types.W32)
	case "u64":
		return c.store.UInt(types.W64)
	case "usize":
		return c.store.UInt(types.WPointer)
	case "f32":
		return c.store.F32()
	case "f64":
		return c.store.F64()
	case "()":
		return c.store.Nil()
	default:
		if c.typeParams != nil {
			if t, ok := c.typeParams[te.Path.Segments[0]]; ok {
				return t
			}
		}
		if c.nominals != nil {
			if t, ok := c.nominals[te.Path.Segments[0]]; ok {
				if len(te.Args) == 0 {
					return t
				}
				args := make([]types.TypeID, len(te.Args))
				for i, a := range te.Args {
					args[i] = c.resolveTypeExpr(a)
				}
				if def, _, ok := c.store.NominalDef(t); ok {
					switch c.store.KindOf(t) {
					case types.KEnum:
						return c.store.Enum(def, args...)
					default:
						return c.store.Struct(def, args...)
					}
				}
			}
		}
		return c.store.NewInferVar(types.KInferGeneral)
	}
}
