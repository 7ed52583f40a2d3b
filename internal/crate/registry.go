package crate

import (
	"fmt"
	"strings"

	"github.com/rustsem/corec/internal/ast"
	"github.com/rustsem/corec/internal/resolve"
	"github.com/rustsem/corec/internal/types"
	"github.com/rustsem/corec/internal/vtable"
)

// registry is the driver's own index over one crate's items, built directly
// from the AST plus the resolver's DefMap (so def-ids line up with what
// component C already assigned). It supplies the Type Store's FieldLookup,
// resolves surface TypeExpr syntax to interned types for item signatures,
// and feeds the Vtable Solver's impl table — the glue spec §2's data-flow
// table assigns to no single lettered component because it is purely
// wiring between them.
type registry struct {
	defMap resolve.DefMap
	store  *types.Store // set once the Type Store exists; needed by fieldLookup

	structs map[ast.DefID]*ast.StructItem
	enums   map[ast.DefID]*ast.EnumItem
	traits  map[ast.DefID]*ast.TraitItem
	impls   []*ast.ImplItem
	fns     []*ast.FnItem

	defByName map[string]ast.DefID
	nominals  map[string]types.TypeID // struct/enum name -> interned root type

	// fnByDef indexes top-level function items by def-id, backing valuePath's
	// by-name-then-by-def lookup (spec §4.C "Non-local paths ... resolved by
	// C before type checking runs").
	fnByDef map[ast.DefID]*ast.FnItem

	// implMethodRetTypes records an impl method's declared return type by
	// def-id, so a resolved MethodCandidate can carry its RetType without the
	// checker needing to re-derive it from a bare *ast.Def (which carries no
	// type information of its own).
	implMethodRetTypes map[ast.DefID]types.TypeID

	// activeTypeParams resolves a bare `<T, ...>` name to its interned
	// KTypeParam TypeID while the driver is resolving the signature of the
	// one function or impl currently being processed (set/cleared per
	// iteration by the crate driver, consulted by resolveNamed so a
	// generic's own parameter types aren't left as unrelated inference
	// variables, spec §4.E generic instantiation).
	activeTypeParams map[string]types.TypeID

	path map[ast.NodeID][]string // module path a fn item was declared under
}

func newRegistry(crateAST *ast.Crate, defMap resolve.DefMap) *registry {
	r := &registry{
		defMap:              defMap,
		structs:             make(map[ast.DefID]*ast.StructItem),
		enums:               make(map[ast.DefID]*ast.EnumItem),
		traits:              make(map[ast.DefID]*ast.TraitItem),
		defByName:           make(map[string]ast.DefID),
		nominals:            make(map[string]types.TypeID),
		fnByDef:             make(map[ast.DefID]*ast.FnItem),
		implMethodRetTypes:  make(map[ast.DefID]types.TypeID),
		path:                make(map[ast.NodeID][]string),
	}
	r.walkMod(crateAST.Root, nil)
	return r
}

func (r *registry) walkMod(m *ast.Mod, path []string) {
	cur := append(append([]string(nil), path...), m.Name)
	for _, item := range m.Items {
		if def, ok := r.defOf(item); ok {
			r.defByName[item.ItemName()] = def
		}
		switch it := item.(type) {
		case *ast.StructItem:
			if def, ok := r.defOf(it); ok {
				r.structs[def] = it
			}
		case *ast.EnumItem:
			if def, ok := r.defOf(it); ok {
				r.enums[def] = it
			}
		case *ast.TraitItem:
			if def, ok := r.defOf(it); ok {
				r.traits[def] = it
			}
		case *ast.FnItem:
			r.fns = append(r.fns, it)
			r.path[it.ID()] = cur
			if def, ok := r.defOf(it); ok {
				r.fnByDef[def] = it
			}
		case *ast.ImplItem:
			r.impls = append(r.impls, it)
		}
	}
	for _, child := range m.Children {
		r.walkMod(child, cur)
	}
}

func (r *registry) defOf(item ast.Item) (ast.DefID, bool) {
	def, ok := r.defMap[item.ID()]
	if !ok {
		return ast.DefID{}, false
	}
	return def.ID, true
}

// internNominals interns every struct/enum definition as a bare (no type
// argument) root type, so field/impl/Self-type resolution can reference
// recursive and mutually recursive nominal types before any of their
// bodies have been visited (spec §3 "recursive nominal types close through
// definition-ids, not through structural type references").
func (r *registry) internNominals(store *types.Store) {
	for name, def := range r.defByName {
		ref := types.DefRef{Crate: uint32(def.Crate), Index: def.Index}
		if _, ok := r.structs[def]; ok {
			r.nominals[name] = store.Struct(ref)
		} else if _, ok := r.enums[def]; ok {
			r.nominals[name] = store.Enum(ref)
		}
	}
}

// fieldLookup implements types.FieldLookup (spec §4.A "Layout requires
// looking the definition up").
func (r *registry) fieldLookup(def types.DefRef) ([]types.TypeID, bool, [][]types.TypeID) {
	if r.store == nil {
		return nil, false, nil
	}
	did := ast.DefID{Crate: ast.CrateIndex(def.Crate), Index: def.Index}
	if st, ok := r.structs[did]; ok {
		fields := make([]types.TypeID, len(st.Fields))
		for i, f := range st.Fields {
			fields[i] = r.resolveStatic(r.store, f.Type)
		}
		return fields, false, nil
	}
	if en, ok := r.enums[did]; ok {
		variants := make([][]types.TypeID, len(en.Variants))
		for i, v := range en.Variants {
			payload := make([]types.TypeID, len(v.Fields))
			for j, ft := range v.Fields {
				payload[j] = r.resolveStatic(r.store, ft)
			}
			variants[i] = payload
		}
		return nil, true, variants
	}
	return nil, false, nil
}

// fieldTypeByName resolves a struct's field type by name, the name-keyed
// counterpart to fieldLookup (positional, feeds layout only) the checker
// needs for FieldExpr/struct-pattern field access (spec §4.E "field access
// resolves by name").
func (r *registry) fieldTypeByName(def types.DefRef, name string) (types.TypeID, bool) {
	if r.store == nil {
		return types.InvalidType, false
	}
	did := ast.DefID{Crate: ast.CrateIndex(def.Crate), Index: def.Index}
	st, ok := r.structs[did]
	if !ok {
		return types.InvalidType, false
	}
	for _, f := range st.Fields {
		if f.Name == name {
			return r.resolveStatic(r.store, f.Type), true
		}
	}
	return types.InvalidType, false
}

// traitMethodSignature looks up a trait's own declared method signature,
// letting method lookup resolve a call through a generic receiver bound by
// that trait (e.g. `fn g<T: Eq>(a: T, b: T) -> bool { a.eq(&b) }`) even
// though no concrete impl's Self type matches the abstract type parameter
// directly (spec §4.F "an outer-scope trait bound").
func (r *registry) traitMethodSignature(store *types.Store, trait types.DefRef, method string) (types.TypeID, ast.DefID, bool) {
	did := ast.DefID{Crate: ast.CrateIndex(trait.Crate), Index: trait.Index}
	tr, ok := r.traits[did]
	if !ok {
		return types.InvalidType, ast.DefID{}, false
	}
	for _, fn := range tr.Methods {
		if fn.Name != method {
			continue
		}
		ret := store.Nil()
		if fn.RetType != nil {
			ret = r.resolveStatic(store, fn.RetType)
		}
		return ret, ast.DefID{Crate: ast.LocalCrate, Index: uint32(fn.ID())}, true
	}
	return types.InvalidType, ast.DefID{}, false
}

// valuePath resolves a single-segment path naming a top-level function
// (the value namespace's counterpart to resolveNamed's type namespace),
// backing check.Checker.valuePath so a bare function name used as a value
// gets a real Fn type and a Refs entry instead of falling back to an
// unrelated inference variable (spec §4.C "Non-local paths ... resolved by
// C before type checking runs").
func (r *registry) valuePath(store *types.Store, name string) (ast.DefID, types.TypeID, bool) {
	did, ok := r.defByName[name]
	if !ok {
		return ast.DefID{}, types.InvalidType, false
	}
	fn, ok := r.fnByDef[did]
	if !ok {
		return ast.DefID{}, types.InvalidType, false
	}
	params := make([]types.TypeID, len(fn.Params))
	modes := make([]types.ArgMode, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = r.resolveStatic(store, p.Type)
		modes[i] = types.ModeByValue
	}
	ret := store.Nil()
	if fn.RetType != nil {
		ret = r.resolveStatic(store, fn.RetType)
	}
	fnTy := store.Fn(types.ProtoRust, params, modes, ret, fn.Pure, fn.Variadic)
	return did, fnTy, true
}

// resolveStatic translates a surface TypeExpr into an interned type without
// needing a live Checker/inference scope, used for item signatures (fn
// params/return, struct fields, enum payloads, impl Self types) which are
// always resolved before any function body is checked.
func (r *registry) resolveStatic(store *types.Store, te ast.TypeExpr) types.TypeID {
	switch t := te.(type) {
	case *ast.RefType:
		return store.Ref(types.NewScopeRegion(uint32(t.ID())), r.resolveStatic(store, t.Elem))
	case *ast.RawPtrType:
		return store.RawPtr(r.resolveStatic(store, t.Elem))
	case *ast.TupleType:
		elems := make([]types.TypeID, len(t.Elems))
		for i, e := range t.Elems {
			elems[i] = r.resolveStatic(store, e)
		}
		return store.Tuple(elems...)
	case *ast.VecType:
		return store.Vec(r.resolveStatic(store, t.Elem))
	case *ast.ArrayType:
		return store.Array(r.resolveStatic(store, t.Elem), t.Len)
	case *ast.FnType:
		params := make([]types.TypeID, len(t.Params))
		modes := make([]types.ArgMode, len(t.Params))
		for i, p := range t.Params {
			params[i] = r.resolveStatic(store, p)
			modes[i] = types.ModeByValue
		}
		ret := store.Nil()
		if t.Ret != nil {
			ret = r.resolveStatic(store, t.Ret)
		}
		return store.Fn(types.ProtoRust, params, modes, ret, true, t.Variadic)
	case *ast.NamedType:
		return r.resolveNamed(store, t)
	default:
		return store.ErrorSentinel()
	}
}

func (r *registry) resolveNamed(store *types.Store, t *ast.NamedType) types.TypeID {
	if len(t.Path.Segments) == 1 {
		name := t.Path.Segments[0]
		if id, ok := builtinType(store, name); ok {
			return id
		}
		if r.activeTypeParams != nil {
			if id, ok := r.activeTypeParams[name]; ok {
				return id
			}
		}
		if root, ok := r.nominals[name]; ok {
			if len(t.Args) == 0 {
				return root
			}
			args := make([]types.TypeID, len(t.Args))
			for i, a := range t.Args {
				args[i] = r.resolveStatic(store, a)
			}
			if def, _, ok := store.NominalDef(root); ok {
				if store.KindOf(root) == types.KEnum {
					return store.Enum(def, args...)
				}
				return store.Struct(def, args...)
			}
		}
	}
	return store.NewInferVar(types.KInferGeneral)
}

func builtinType(store *types.Store, name string) (types.TypeID, bool) {
	switch name {
	case "bool":
		return store.Bool(), true
	case "char":
		return store.Char(), true
	case "str":
		return store.Str(), true
	case "i8":
		return store.Int(types.W8), true
	case "i16":
		return store.Int(types.W16), true
	case "i32":
		return store.Int(types.W32), true
	case "i64":
		return store.Int(types.W64), true
	case "isize":
		return store.Int(types.WPointer), true
	case "u8":
		return store.UInt(types.W8), true
	case "u16":
		return store.UInt(types.W16), true
	case "u32":
		return store.UInt(types.W32), true
	case "u64":
		return store.UInt(types.W64), true
	case "usize":
		return store.UInt(types.WPointer), true
	case "f32":
		return store.F32(), true
	case "f64":
		return store.F64(), true
	case "()":
		return store.Nil(), true
	default:
		return types.InvalidType, false
	}
}

// registerImpls feeds every impl item into the Vtable Solver (component F)
// and folds its method bodies into the set of function bodies the checker
// and lowerer iterate (spec §4.F "an impl item" is itself a kind of Def;
// its methods are ordinary function bodies checked and lowered like any
// other, just dispatched to through a vtable instead of a direct symbol).
func (r *registry) registerImpls(store *types.Store, solver *vtable.Solver) {
	for _, impl := range r.impls {
		self := r.resolveStatic(store, impl.SelfType)
		var traitRef *types.DefRef
		if impl.Trait != nil {
			if def, ok := r.defByPath(impl.Trait); ok {
				ref := types.DefRef{Crate: uint32(def.Crate), Index: def.Index}
				traitRef = &ref
			}
		}
		methods := make(map[string]ast.DefID, len(impl.Methods))
		for _, m := range impl.Methods {
			methodDef := ast.DefID{Crate: ast.LocalCrate, Index: uint32(m.ID())}
			methods[m.Name] = methodDef
			r.fns = append(r.fns, m)
			r.path[m.ID()] = []string{"impl", selfTypeName(impl.SelfType)}
			retTy := store.Nil()
			if m.RetType != nil {
				retTy = r.resolveStatic(store, m.RetType)
			}
			r.implMethodRetTypes[methodDef] = retTy
		}
		solver.RegisterImpl(store, &vtable.Impl{
			Def:     ast.DefID{Crate: ast.LocalCrate, Index: uint32(impl.ID())},
			Trait:   traitRef,
			Self:    self,
			Methods: methods,
		}, impl.Span())
	}
}

func selfTypeName(te ast.TypeExpr) string {
	if nt, ok := te.(*ast.NamedType); ok && len(nt.Path.Segments) > 0 {
		return nt.Path.Segments[len(nt.Path.Segments)-1]
	}
	return "self"
}

func (r *registry) defByPath(p *ast.Path) (ast.DefID, bool) {
	if len(p.Segments) == 0 {
		return ast.DefID{}, false
	}
	id, ok := r.defByName[p.Segments[len(p.Segments)-1]]
	return id, ok
}

// variantIndex looks up an enum variant's declared tag by name, feeding
// lower.Info.VariantIdx (spec §4.H "Enum discrimination: match compiles to
// a switch on the tag field").
func (r *registry) variantIndex(def types.DefRef, name string) int {
	did := ast.DefID{Crate: ast.CrateIndex(def.Crate), Index: def.Index}
	if en, ok := r.enums[did]; ok {
		for _, v := range en.Variants {
			if v.Name == name {
				return v.Index
			}
		}
	}
	return -1
}

// symbolOf mangles a definition into a linker symbol, feeding
// lower.Info.Symbol (spec §6 "get_symbol(def-id) -> linker-name").
func (r *registry) symbolOf(def ast.DefID) string {
	for name, id := range r.defByName {
		if id == def {
			return "corec$" + name
		}
	}
	return fmt.Sprintf("corec$def%d", def.Index)
}

// symbolOfFn mangles a function's full module path plus name into a
// symbol, used directly by the lowerer as the function's linkage name.
func (r *registry) symbolOfFn(fn *ast.FnItem) string {
	segs := append(append([]string(nil), r.path[fn.ID()]...), fn.Name)
	return "corec$" + strings.Join(segs, "$")
}
