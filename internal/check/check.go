// Package check implements the Type Checker (spec §4.E): expected-type
// propagation, inference-variable creation, coercion, method lookup with
// autoderef, operator-overload dispatch, and pattern checking.
//
// Grounded on the teacher's CoreTypeChecker family
// (internal/types/typechecker*.go): the same "Infer" dispatch-by-node-kind
// shape, generalized from the teacher's Hindley-Milner-with-type-classes
// engine to this spec's expected-type-propagation style (expect_has /
// expect_coerce / expect_none) and to this spec's nominal-struct/enum/trait
// object type system instead of algebraic-effect type classes.
package check

import (
	"github.com/rustsem/corec/internal/ast"
	"github.com/rustsem/corec/internal/errors"
	"github.com/rustsem/corec/internal/infer"
	"github.com/rustsem/corec/internal/session"
	"github.com/rustsem/corec/internal/types"
)

// Expectation is the mode under which an expression is checked, per
// spec §4.E's three propagation modes.
type Expectation int

const (
	ExpectNone Expectation = iota
	ExpectHas              // expression's type must equal exactly
	ExpectCoerce           // expression's type may be implicitly coerced
)

// Expected bundles an Expectation with the target type it applies to (ignored
// when Mode is ExpectNone).
type Expected struct {
	Mode Expectation
	Ty   types.TypeID
}

// NoExpectation is the zero value: no propagated type.
var NoExpectation = Expected{Mode: ExpectNone}

// MethodCandidate is one entry considered during method lookup.
type MethodCandidate struct {
	Def      *ast.Def
	Self     types.TypeID // receiver type after the autoderef step that found it
	Derefs   int
	FromImpl bool // inherent impl (true) vs trait impl (false)

	// Trait is set when this candidate was found through a trait impl (or a
	// scope-bound trait method) rather than an inherent one, naming the
	// trait a bound-driving Obligation should be raised against (spec §4.F).
	Trait *types.DefRef

	// RetType is the candidate method's declared return type, threaded in by
	// the resolver so defReturnType need not re-derive it from a bare Def,
	// which carries no type information of its own.
	RetType types.TypeID
}

// MethodMap records, for each call-site node-id, the method definition the
// call resolved to (spec §6 "method-map ... keyed by call-site node-id").
type MethodMap map[ast.NodeID]*ast.Def

// ObligationSink registers a trait-bound obligation raised while resolving a
// method call or operator dispatch to a trait impl, driving the Vtable
// Solver's early/final phases from real call sites instead of leaving their
// queues permanently empty (spec §4.F). Implemented by the crate driver's
// solver adapter; kept as an interface here so check has no import-cycle on
// the vtable package, mirroring MethodResolver's one-way dependency.
type ObligationSink interface {
	Require(node ast.NodeID, self types.TypeID, trait types.DefRef, span ast.Span)
}

// Locals maps a block's local bindings to their types; check.Checker owns
// one per function body, pushed/popped per nested Block.
type Locals map[ast.NodeID]types.TypeID

// MethodResolver looks up candidate methods for a receiver type and method
// name. Implemented by the crate driver's combined local+external method
// table; kept as an interface here so check has no import-cycle on the
// concrete wiring package (spec §4.E "method lookup consults both the local
// impl table and the Crate Store's imported impls").
type MethodResolver interface {
	Candidates(self types.TypeID, method string) []MethodCandidate
}

// Checker is one Type Checker instance, scoped like infer.Engine to a
// single function body.
type Checker struct {
	sess        *session.Session
	store       *types.Store
	engine      *infer.Engine
	methods     MethodResolver
	obligations ObligationSink
	locals      Locals

	// nodeTypes records the final type of every checked expression/let
	// statement, the side-table spec §3 requires to be total before
	// lowering begins ("every ... expression has exactly one type recorded
	// before lowering begins").
	nodeTypes map[ast.NodeID]types.TypeID

	// nominals resolves a single-segment NamedType path to the interned
	// type it names when that name is a struct/enum/trait/type-param rather
	// than a primitive. Populated by the crate driver (internal/crate) from
	// the resolver's DefMap, since resolveNamedType otherwise only knows
	// the closed set of built-in names (spec §4.E "driver has the
	// resolver's DefMap").
	nominals map[string]types.TypeID

	// typeParams resolves a single-segment NamedType path to the interned
	// KTypeParam type it names, scoped to the function body currently being
	// checked (spec §4.E generic instantiation needs a concrete TypeID for
	// every declared `<T>` before `T` can appear as a receiver/operand type).
	typeParams map[string]types.TypeID

	// fieldLookup resolves a nominal definition's field types by name,
	// shadowing the positional types.FieldLookup the Type Store uses for
	// layout with the name-keyed variant field/struct-field access needs
	// (spec §4.E "field access resolves by name").
	fieldLookup func(def types.DefRef, name string) (types.TypeID, bool)

	// variantIndex reports a definite-enum-namespace identifier's declared
	// tag index, letting checkPattern disambiguate a bare identifier pattern
	// against a nullary enum variant (spec §4.E, §4.C "definite-enum
	// namespace").
	variantIndex func(def types.DefRef, name string) (int, bool)

	// valuePath resolves a single-segment path naming a function or const
	// rather than a local, mirroring nominals but for the value namespace
	// (spec §4.C "Non-local paths ... resolved by C before type checking").
	valuePath func(name string) (ast.DefID, types.TypeID, bool)

	// refs records every non-local definition a PathExpr or pattern
	// resolved to during this check pass (function/const references, and
	// enum-variant identifier patterns), the counterpart to Locals() for
	// the occurrences refsFromLocals cannot reconstruct on its own.
	refs map[ast.NodeID]ast.DefID

	// methodMap records, for each method-call/operator-dispatch node, the
	// resolved method def (spec §6 "method-map ... keyed by call-site
	// node-id").
	methodMap MethodMap

	// callTypeArgs records a call expression's explicit turbofish type
	// arguments, resolved to interned types (spec §8 scenario 1: "call-site
	// has ty-arg recorded").
	callTypeArgs map[ast.NodeID][]types.TypeID

	// selfTypeStack backs pushSelf/currentSelf. Nothing pushes onto it, so
	// a method's self-type bound implication is not checked.
	selfTypeStack []types.TypeID

	// retTypeStack lets a `return` expression anywhere in the body check
	// its value (or the unit type, for a bare `return;`) against the
	// enclosing function's declared return type (spec §8 scenario 5:
	// "fn f() -> int { return; }" must report a mismatch against unit).
	retTypeStack []types.TypeID
}

// NewChecker creates a type checker over a shared inference engine.
func NewChecker(sess *session.Session, store *types.Store, engine *infer.Engine, methods MethodResolver) *Checker {
	return &Checker{
		sess:         sess,
		store:        store,
		engine:       engine,
		methods:      methods,
		locals:       make(Locals),
		nodeTypes:    make(map[ast.NodeID]types.TypeID),
		refs:         make(map[ast.NodeID]ast.DefID),
		methodMap:    make(MethodMap),
		callTypeArgs: make(map[ast.NodeID][]types.TypeID),
	}
}

// SetNominals installs the driver-computed name-to-type table consulted by
// resolveNamedType for non-builtin single-segment paths.
func (c *Checker) SetNominals(nominals map[string]types.TypeID) { c.nominals = nominals }

// SetTypeParams installs the current function's own `<T, ...>` declarations,
// scoped per-CheckFn call since each function's type parameters are distinct
// defs even when they share a spelling like `T`.
func (c *Checker) SetTypeParams(tp map[string]types.TypeID) { c.typeParams = tp }

// SetFieldLookup installs the driver's name-keyed field-type resolver.
func (c *Checker) SetFieldLookup(fn func(def types.DefRef, name string) (types.TypeID, bool)) {
	c.fieldLookup = fn
}

// SetVariantIndex installs the driver's definite-enum-namespace lookup.
func (c *Checker) SetVariantIndex(fn func(def types.DefRef, name string) (int, bool)) {
	c.variantIndex = fn
}

// SetValuePath installs the driver's value-namespace path resolver (finds a
// single-segment path naming a function or const).
func (c *Checker) SetValuePath(fn func(name string) (ast.DefID, types.TypeID, bool)) {
	c.valuePath = fn
}

// SetObligations installs the driver's Vtable Solver adapter so generic
// method calls actually register an Obligation instead of resolving purely
// locally.
func (c *Checker) SetObligations(sink ObligationSink) { c.obligations = sink }

// Refs returns every non-local definition reference this Checker recorded
// (function/const paths, enum-variant identifier patterns), for the driver
// to merge into lower.Info.Refs alongside refsFromLocals.
func (c *Checker) Refs() map[ast.NodeID]ast.DefID {
	out := make(map[ast.NodeID]ast.DefID, len(c.refs))
	for k, v := range c.refs {
		out[k] = v
	}
	return out
}

// MethodMap returns the call-site -> resolved-method table this Checker
// accumulated.
func (c *Checker) MethodMap() MethodMap {
	out := make(MethodMap, len(c.methodMap))
	for k, v := range c.methodMap {
		out[k] = v
	}
	return out
}

// CallTypeArgs returns the call-site -> explicit-type-argument table this
// Checker accumulated.
func (c *Checker) CallTypeArgs() map[ast.NodeID][]types.TypeID {
	out := make(map[ast.NodeID][]types.TypeID, len(c.callTypeArgs))
	for k, v := range c.callTypeArgs {
		out[k] = v
	}
	return out
}

// NodeTypes returns the total node-id -> type table accumulated across every
// CheckExpr/checkLet call this Checker has made, for the lowerer to consume.
func (c *Checker) NodeTypes() map[ast.NodeID]types.TypeID { return c.nodeTypes }

// Locals returns the bindings still in scope at the point this is called
// (ordinarily right after CheckFn returns, so just the function's
// parameters — any let-bound local went out of scope when its enclosing
// block's defer restored the saved snapshot). checkPath resolves a
// single-segment read by the exact NodeID it was bound under, so the driver
// can turn this straight into lower.Info.Refs entries without a full
// def-id chase.
func (c *Checker) Locals() Locals {
	out := make(Locals, len(c.locals))
	for k, v := range c.locals {
		out[k] = v
	}
	return out
}

// recordType fills in the node-types side-table for id.
func (c *Checker) recordType(id ast.NodeID, t types.TypeID) { c.nodeTypes[id] = t }

func (c *Checker) pushRetType(t types.TypeID) { c.retTypeStack = append(c.retTypeStack, t) }
func (c *Checker) popRetType() {
	c.retTypeStack = c.retTypeStack[:len(c.retTypeStack)-1]
}
func (c *Checker) currentRetType() (types.TypeID, bool) {
	if len(c.retTypeStack) == 0 {
		return types.InvalidType, false
	}
	return c.retTypeStack[len(c.retTypeStack)-1], true
}

func (c *Checker) pushSelf(t types.TypeID) { c.selfTypeStack = append(c.selfTypeStack, t) }
func (c *Checker) popSelf()                { c.selfTypeStack = c.selfTypeStack[:len(c.selfTypeStack)-1] }
func (c *Checker) currentSelf() (types.TypeID, bool) {
	if len(c.selfTypeStack) == 0 {
		return types.InvalidType, false
	}
	return c.selfTypeStack[len(c.selfTypeStack)-1], true
}

// bindLocal records the inferred/declared type of a let-bound or
// parameter name.
func (c *Checker) bindLocal(id ast.NodeID, ty types.TypeID) { c.locals[id] = ty }

func (c *Checker) localType(id ast.NodeID) (types.TypeID, bool) {
	t, ok := c.locals[id]
	return t, ok
}

// CheckFn type-checks one function item's body against its declared
// signature, creating a fresh inference engine scope per spec §3
// ("Inference variables are created during E, resolved at the end of
// each function body").
func (c *Checker) CheckFn(fn *ast.FnItem, paramTypes []types.TypeID, retType types.TypeID) types.TypeID {
	for i, p := range fn.Params {
		c.bindLocal(p.ID(), paramTypes[i])
	}
	c.pushRetType(retType)
	defer c.popRetType()
	bodyTy := c.CheckExpr(fn.Body, Expected{Mode: ExpectCoerce, Ty: retType})
	return bodyTy
}

// reportMismatch is the common path for a failed Eq/Coerce: emits TYK001.
func (c *Checker) reportMismatch(span ast.Span, expected, found types.TypeID) {
	c.sess.SpanErr(span, errors.TYK001, "mismatched types: expected "+c.store.String(expected)+", found "+c.store.String(found), map[string]any{
		"expected": c.store.String(expected),
		"found":    c.store.String(found),
	})
}

// applyExpectation enforces an Expected against an expression's inferred
// type, returning the type the expression should be treated as having
// afterward (spec §4.E expect_has/expect_coerce/expect_none semantics).
func (c *Checker) applyExpectation(node ast.NodeID, span ast.Span, actual types.TypeID, exp Expected) types.TypeID {
	switch exp.Mode {
	case ExpectNone:
		return actual
	case ExpectHas:
		if err := c.engine.Eq(actual, exp.Ty, span); err != nil {
			c.reportMismatch(span, exp.Ty, actual)
		}
		return exp.Ty
	case ExpectCoerce:
		if err := c.engine.Coerce(node, actual, exp.Ty, span); err != nil {
			c.reportMismatch(span, exp.Ty, actual)
			return exp.Ty
		}
		return exp.Ty
	default:
		return actual
	}
}
