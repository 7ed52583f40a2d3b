// Package crate is the whole-crate driver tying the Resolver, Type Checker,
// Inference Engine, Vtable Solver, Layout planner, and IR Lowerer together
// (spec §2 "Data flow: AST -> C -> def-annotated AST -> E (driving A, B, D,
// F) -> typed-and-resolved AST -> H (using G) -> IR").
//
// Grounded on the teacher's internal/pipeline (the package that sequences
// lexer -> parser -> elaborator -> evaluator into one Compile/Run call) and
// its phase-gating convention of checking the session error count between
// stages rather than threading a single monolithic error value through
// every call.
package crate

import (
	"fmt"

	"github.com/rustsem/corec/internal/ast"
	"github.com/rustsem/corec/internal/check"
	"github.com/rustsem/corec/internal/cratestore"
	"github.com/rustsem/corec/internal/infer"
	"github.com/rustsem/corec/internal/layout"
	"github.com/rustsem/corec/internal/lower"
	"github.com/rustsem/corec/internal/resolve"
	"github.com/rustsem/corec/internal/session"
	"github.com/rustsem/corec/internal/types"
	"github.com/rustsem/corec/internal/vtable"
)

// Result bundles everything a successful Compile call produced: the typed
// IR, the vtable/method maps, and the resolver's def, export and impl maps.
// Per-node adjustments are not part of Result; they stay per function, in
// the lower.Info each function is lowered with.
type Result struct {
	DefMap    resolve.DefMap
	ExportMap resolve.ExportMap
	ImplMap   resolve.ImplMap

	Store *types.Store

	Module *lower.Module

	VtableResolutions []vtable.Resolution

	// MethodMap and VtableMap are the two call-site-keyed side tables spec §6
	// names explicitly ("vtable-map and method-map ... keyed by call-site
	// node-id"), merged across every function body this crate checked.
	MethodMap check.MethodMap
	VtableMap vtable.Map

	// CallTypeArgs records each call-site's explicit turbofish type
	// arguments (spec §8 scenario 1: "call-site has ty-arg recorded").
	CallTypeArgs map[ast.NodeID][]types.TypeID
}

// CheckResult is what TypeCheck produces: a crate that passed name
// resolution, per-function type checking, and final trait-obligation
// solving, but was never handed to the layout planner or the lowerer.
// Backs `cmd/corecheck`'s narrow "typecheck only" entry point (mirrors the
// teacher's cmd/typecheck, which never touches a backend either).
type CheckResult struct {
	DefMap    resolve.DefMap
	ExportMap resolve.ExportMap
	ImplMap   resolve.ImplMap

	Store *types.Store

	VtableResolutions []vtable.Resolution

	MethodMap    check.MethodMap
	VtableMap    vtable.Map
	CallTypeArgs map[ast.NodeID][]types.TypeID
}

// analyzed bundles everything name resolution and type checking produce,
// shared by both Compile (which lowers afterward) and TypeCheck (which
// stops here).
type analyzed struct {
	res    *resolve.Resolver
	reg    *registry
	store  *types.Store
	solver *vtable.Solver
	fns    map[ast.NodeID]fnCheckResult

	// methodMap and callTypeArgs are merged across every function body's own
	// Checker instance, since each gets a fresh scope (spec §3 "Inference
	// variables ... resolved at the end of each function body") but the two
	// side tables spec §6 names are crate-wide.
	methodMap    check.MethodMap
	callTypeArgs map[ast.NodeID][]types.TypeID

	// earlyVtable accumulates every function's SolveEarly resolutions, merged
	// with SolveFinal's into one vtable.Map keyed by call-site node-id.
	earlyVtable []vtable.Resolution
}

// analyze runs resolution through per-function type checking and early
// vtable solving, gated on session.ErrorCount() exactly as spec §5 requires:
// "each pass must check the count at its end and refuse to run subsequent
// passes if it increased".
func analyze(sess *session.Session, crateAST *ast.Crate) (*analyzed, error) {
	res := resolve.New(sess)
	if err := res.ResolveCrate(crateAST); err != nil {
		return nil, err
	}
	if sess.ErrorCount() > 0 {
		return nil, fmt.Errorf("crate: name resolution reported errors, not type checking")
	}

	reg := newRegistry(crateAST, res.DefMap)
	store := types.NewStore(reg.fieldLookup)
	reg.store = store
	reg.internNominals(store)

	solver := vtable.NewSolver(sess)
	reg.registerImpls(store, solver)

	before := sess.ErrorCount()
	fnResults := make(map[ast.NodeID]fnCheckResult, len(reg.fns))
	methodMap := make(check.MethodMap)
	callTypeArgs := make(map[ast.NodeID][]types.TypeID)
	var earlyVtable []vtable.Resolution
	for _, fn := range reg.fns {
		engine := infer.NewEngine(store)
		methods := methodTable{store: store, solver: solver, reg: reg}
		checker := check.NewChecker(sess, store, engine, methods)
		checker.SetNominals(reg.nominals)
		checker.SetFieldLookup(reg.fieldTypeByName)
		checker.SetVariantIndex(func(def types.DefRef, name string) (int, bool) {
			idx := reg.variantIndex(def, name)
			return idx, idx >= 0
		})
		checker.SetValuePath(func(name string) (ast.DefID, types.TypeID, bool) {
			return reg.valuePath(store, name)
		})
		checker.SetObligations(methods)

		// A function's own `<T, ...>` declarations get a concrete KTypeParam
		// TypeID scoped to this check pass, identified by this fn's node-id
		// plus ordinal (spec §4.E generic instantiation needs a real TypeID
		// for every declared type parameter before it can appear as a
		// receiver/operand type).
		fnParamDef := types.DefRef{Crate: uint32(ast.LocalCrate), Index: uint32(fn.ID())}
		var typeParamTys map[string]types.TypeID
		if len(fn.TypeParams) > 0 {
			typeParamTys = make(map[string]types.TypeID, len(fn.TypeParams))
			for _, tp := range fn.TypeParams {
				ty := store.TypeParam(fnParamDef, tp.Ordinal)
				typeParamTys[tp.Name] = ty
				for _, bound := range tp.Bounds {
					if traitDef, ok := reg.defByPath(bound); ok {
						traitRef := types.DefRef{Crate: uint32(traitDef.Crate), Index: traitDef.Index}
						solver.AddScopeBound(vtable.ScopeBound{Param: fnParamDef, Trait: traitRef})
					}
				}
			}
			checker.SetTypeParams(typeParamTys)
		}

		// resolveStatic resolves a fn's own param/return types before the
		// checker exists, so the driver (not the checker) must expose this
		// fn's type-param names to the registry's shared static resolver -
		// otherwise a bare `T` in a signature resolves to an unrelated
		// inference var instead of the same KTypeParam bound below.
		reg.activeTypeParams = typeParamTys
		paramTypes := make([]types.TypeID, len(fn.Params))
		for i, p := range fn.Params {
			paramTypes[i] = reg.resolveStatic(store, p.Type)
		}
		retTy := store.Nil()
		if fn.RetType != nil {
			retTy = reg.resolveStatic(store, fn.RetType)
		}
		reg.activeTypeParams = nil

		checker.CheckFn(fn, paramTypes, retTy)
		earlyVtable = append(earlyVtable, solver.SolveEarly(store)...)

		for node, def := range checker.MethodMap() {
			methodMap[node] = def
		}
		for node, args := range checker.CallTypeArgs() {
			callTypeArgs[node] = args
		}

		fnResults[fn.ID()] = fnCheckResult{
			paramTypes: paramTypes,
			retTy:      retTy,
			typeOf:     checker.NodeTypes(),
			adjustOf:   engine.Adjustments(),
			locals:     checker.Locals(),
			refs:       checker.Refs(),
		}
	}
	if sess.ErrorCount() > before {
		return nil, fmt.Errorf("crate: type checking reported errors, not lowering")
	}
	return &analyzed{
		res: res, reg: reg, store: store, solver: solver, fns: fnResults,
		methodMap: methodMap, callTypeArgs: callTypeArgs, earlyVtable: earlyVtable,
	}, nil
}

// TypeCheck runs name resolution, type checking, and final trait-obligation
// solving, and nothing past that — `cmd/corecheck`'s whole job (spec §0
// "a narrow 'typecheck only' CLI").
func TypeCheck(sess *session.Session, crateAST *ast.Crate) (*CheckResult, error) {
	a, err := analyze(sess, crateAST)
	if err != nil {
		return nil, err
	}
	before := sess.ErrorCount()
	finalRes := a.solver.SolveFinal(a.store)
	if sess.ErrorCount() > before {
		return nil, fmt.Errorf("crate: unsatisfied trait obligations")
	}
	return &CheckResult{
		DefMap:            a.res.DefMap,
		ExportMap:         a.res.ExportMap,
		ImplMap:           a.res.ImplMap,
		Store:             a.store,
		VtableResolutions: finalRes,
		MethodMap:         a.methodMap,
		VtableMap:         buildVtableMap(a.earlyVtable, finalRes),
		CallTypeArgs:      a.callTypeArgs,
	}, nil
}

// buildVtableMap merges a crate's early (best-effort) and final
// (authoritative) Resolutions into the call-site-keyed table spec §6 names
// ("vtable-map ... keyed by call-site node-id"); a final resolution for the
// same node wins over an early one reached before the whole crate was known.
func buildVtableMap(early, final []vtable.Resolution) vtable.Map {
	m := make(vtable.Map, len(early)+len(final))
	for _, r := range early {
		m[r.Obligation.Node] = r
	}
	for _, r := range final {
		m[r.Obligation.Node] = r
	}
	return m
}

// Compile runs the full pipeline over one already-parsed crate: everything
// TypeCheck does, then layout planning and IR lowering. Lowering is only
// reached on an error-free session (spec §7 "Backend lowering is only
// invoked on an error-free session").
func Compile(sess *session.Session, cs *cratestore.Store, crateAST *ast.Crate) (*Result, error) {
	a, err := analyze(sess, crateAST)
	if err != nil {
		return nil, err
	}
	reg, store, solver, fnResults := a.reg, a.store, a.solver, a.fns

	before := sess.ErrorCount()
	finalRes := solver.SolveFinal(store)
	if sess.ErrorCount() > before {
		return nil, fmt.Errorf("crate: unsatisfied trait obligations, not lowering")
	}

	vtableMap := buildVtableMap(a.earlyVtable, finalRes)
	calls := callTargetsFromMethods(reg, a.methodMap, vtableMap)

	planner := layout.NewPlanner(sess, store, sess.Target, reg.fieldLookup)
	tydescs := make(map[string]*layout.Tydesc, len(reg.nominals))
	for name, id := range reg.nominals {
		tydescs[name] = planner.BuildTydesc(id, name)
	}

	var functions []*lower.Function
	for _, fn := range reg.fns {
		fr := fnResults[fn.ID()]
		refs := refsFromLocals(fr.locals)
		for node, def := range fr.refs {
			refs[node] = def
		}
		info := lower.Info{
			TypeOf:      fr.typeOf,
			Adjustments: fr.adjustOf,
			Refs:        refs,
			Calls:       calls,
			Closures:    map[ast.NodeID]lower.ClosureInfo{},
			Symbol:      reg.symbolOf,
			TagType: func(def types.DefRef, n int) types.TypeID {
				return tagTypeForVariantCount(store, n)
			},
			VariantIdx: reg.variantIndex,
		}
		lowerer := lower.NewLowerer(sess, store, planner, info)
		functions = append(functions, lowerer.LowerFn(fn, reg.symbolOfFn(fn), fr.paramTypes, fr.retTy))
	}

	return &Result{
		DefMap:            a.res.DefMap,
		ExportMap:         a.res.ExportMap,
		ImplMap:           a.res.ImplMap,
		Store:             store,
		Module:            &lower.Module{Functions: functions, Tydescs: tydescs},
		VtableResolutions: finalRes,
		MethodMap:         a.methodMap,
		VtableMap:         vtableMap,
		CallTypeArgs:      a.callTypeArgs,
	}, nil
}

// callTargetsFromMethods turns the crate-wide method-map and vtable-map into
// the lowerer's own call-site -> symbol table (spec §4.H closure/call
// dispatch). A call site resolved to a concrete impl (directly, or through a
// solved obligation) targets that impl's method symbol; a call site resolved
// only through a scope bound or an already-erased trait object has no single
// concrete symbol to target without true generic monomorphization or
// runtime trait-object vtables (both out of scope for this core) and is
// left out of the map, matching lowerExpr's existing unresolved-call
// fallback.
func callTargetsFromMethods(reg *registry, methodMap check.MethodMap, vtableMap vtable.Map) map[ast.NodeID]lower.CallTarget {
	calls := make(map[ast.NodeID]lower.CallTarget, len(methodMap))
	for node, def := range methodMap {
		if res, ok := vtableMap[node]; ok {
			if res.Impl != nil {
				if methodDef, ok := res.Impl.Methods[def.Name]; ok {
					calls[node] = lower.CallTarget{Symbol: reg.symbolOf(methodDef)}
				}
			}
			continue
		}
		// Inherent method, resolved directly without raising an obligation.
		calls[node] = lower.CallTarget{Symbol: reg.symbolOf(def.ID)}
	}
	return calls
}

// fnCheckResult carries what one function body's check pass produced
// forward to the lowering pass, since each function gets its own inference
// engine scope (spec §3 "Inference variables ... resolved at the end of
// each function body").
type fnCheckResult struct {
	paramTypes []types.TypeID
	retTy      types.TypeID
	typeOf     map[ast.NodeID]types.TypeID
	adjustOf   map[ast.NodeID]infer.Adjustment
	locals     check.Locals

	// refs carries this function's own Checker.Refs() snapshot (non-local
	// path/pattern references recorded during checking), merged into
	// lower.Info.Refs alongside refsFromLocals.
	refs map[ast.NodeID]ast.DefID
}

// refsFromLocals turns a checker's final locals snapshot into the
// occurrence-id -> definition-id table the lowerer consults to find a
// PathExpr's local slot. checkPath and localByDef both key a local by the
// same NodeID (the binding site's), so this is a direct identity map rather
// than a real def-id chase — good enough for the single-segment local reads
// this core resolves (spec §4.E path-to-local simplification), not for
// paths that resolve to a function, const, or imported item.
func refsFromLocals(locals check.Locals) map[ast.NodeID]ast.DefID {
	refs := make(map[ast.NodeID]ast.DefID, len(locals))
	for id := range locals {
		refs[id] = ast.DefID{Crate: ast.LocalCrate, Index: uint32(id)}
	}
	return refs
}

// methodTable adapts vtable.Solver to check.MethodResolver, converting
// vtable.Impl candidates into check.MethodCandidate so the checker need not
// import the solver package directly (keeps E's dependency on F one-way,
// matching the teacher's layering of typechecker -> instances, never back).
type methodTable struct {
	store  *types.Store
	solver *vtable.Solver
	reg    *registry
}

func (m methodTable) Candidates(self types.TypeID, method string) []check.MethodCandidate {
	impls := m.solver.Candidates(m.store, self, method)
	if len(impls) > 0 {
		out := make([]check.MethodCandidate, 0, len(impls))
		for _, impl := range impls {
			methodDef := impl.Methods[method]
			retTy, ok := m.reg.implMethodRetTypes[methodDef]
			if !ok {
				retTy = types.InvalidType
			}
			out = append(out, check.MethodCandidate{
				Def:      &ast.Def{ID: methodDef, Kind: ast.DefMethod, Name: method},
				Self:     self,
				FromImpl: impl.Trait == nil,
				Trait:    impl.Trait,
				RetType:  retTy,
			})
		}
		return out
	}
	// self.Candidates only matches a concrete impl's exact Self type, so an
	// abstract type parameter receiver (e.g. `fn g<T: Eq>`) never matches
	// directly; fall back to the trait the parameter is bound to in this
	// scope and resolve the method against the trait's own declared
	// signature instead (spec §4.F "an outer-scope trait bound").
	tp, _, ok := m.store.TypeParamOf(self)
	if !ok {
		return nil
	}
	for _, trait := range m.solver.BoundsFor(tp) {
		retTy, methodDef, ok := m.reg.traitMethodSignature(m.store, trait, method)
		if !ok {
			continue
		}
		traitCopy := trait
		return []check.MethodCandidate{{
			Def:      &ast.Def{ID: methodDef, Kind: ast.DefMethod, Name: method},
			Self:     self,
			FromImpl: false,
			Trait:    &traitCopy,
			RetType:  retTy,
		}}
	}
	return nil
}

// Require implements check.ObligationSink, registering a trait-bound
// obligation raised at a real call site so the solver's early/final phases
// have actual work to do instead of permanently empty queues (spec §4.F).
func (m methodTable) Require(node ast.NodeID, self types.TypeID, trait types.DefRef, span ast.Span) {
	m.solver.Require(vtable.Obligation{Self: self, Trait: trait, Span: span, Node: node}, true)
}

// tagTypeForVariantCount picks the smallest unsigned integer width that can
// hold an enum's tag, in the same 8/16/32-bit steps as internal/layout's
// tag sizing: any enum of up to 256 variants gets an 8-bit tag (spec §8
// scenario 2 allows 8-bit for two variants).
func tagTypeForVariantCount(store *types.Store, n int) types.TypeID {
	switch {
	case n <= 256:
		return store.UInt(types.W8)
	case n <= 65536:
		return store.UInt(types.W16)
	default:
		return store.UInt(types.W32)
	}
}
