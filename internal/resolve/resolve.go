// Package resolve implements the Resolver (spec §4.C): a two-pass name
// resolver producing a def map (AST-id -> definition) and an export map
// (path -> def list). Its impl map (expression-id -> visible impls) is left
// empty.
//
// Grounded primarily on original_source/src/comp/middle/resolve.rs (the
// historical two-pass indexing/import-resolution algorithm this spec
// distills — scope enum, import_state enum, mod_index, ext_map shapes), and
// on the teacher's internal/link/resolver.go + internal/module/resolver.go
// for the idiomatic-Go rendering: a small state machine over a memoized
// table instead of a mutable interior-pointer hashmap.
package resolve

import (
	"fmt"

	"github.com/rustsem/corec/internal/ast"
	"github.com/rustsem/corec/internal/session"
)

// Namespace is one of the three namespaces spec §4.C names.
type Namespace int

const (
	NSValue Namespace = iota
	NSType
	NSModule
)

func (n Namespace) String() string {
	switch n {
	case NSValue:
		return "value"
	case NSType:
		return "type"
	default:
		return "module"
	}
}

// ValueSubkind disambiguates a value-namespace lookup: pattern position
// requires a DefiniteEnum variant; general lookups accept ValueOrEnum.
type ValueSubkind int

const (
	ValueOrEnum ValueSubkind = iota
	DefiniteEnum
)

// ScopeKind tags one entry of a Resolver's scope list (spec §4.C "Scope
// list"), named directly after original_source resolve.rs's `scope` enum.
type ScopeKind int

const (
	ScopeTopLevel ScopeKind = iota // primitive types
	ScopeCrate                      // root module
	ScopeItem                       // any item introducing scope + its ty-params
	ScopeBareFn                     // formal args + ty-params
	ScopeFnExpr                     // closure; distinguishes captured bindings
	ScopeMethod                      // outer self + ty-params
	ScopeLoop
	ScopeBlock // index position forbids forward refs to later let-bindings
	ScopeArm   // match-arm pattern bindings
)

// Scope is one entry of the scope list walked inner-to-outer during lookup.
type Scope struct {
	Kind ScopeKind

	// ScopeItem/ScopeBareFn/ScopeFnExpr/ScopeMethod
	TypeParams map[string]*ast.Def // name -> type-param def

	// ScopeBareFn/ScopeFnExpr/ScopeMethod
	Locals map[string]*ast.Def // formal args

	// ScopeMethod
	SelfDef *ast.Def

	// ScopeFnExpr: the node-id of the enclosing closure, used to build
	// upvar chains when a lookup escapes into an outer function.
	ClosureID ast.NodeID

	// ScopeLoop/ScopeBlock/ScopeArm
	Bindings map[string]*ast.Def

	// ScopeBlock: position of the current statement in the block, so a
	// `let` appearing later in the same block cannot be forward-referenced.
	BlockPos *int

	// ScopeItem/ScopeCrate: the explicit module index a lookup falls
	// through to.
	Module *ModuleIndex
}

// ModIndexEntryKind mirrors original_source's mod_index_entry variants.
type ModIndexEntryKind int

const (
	MIEViewItem ModIndexEntryKind = iota
	MIEImportIdent
	MIEItem
	MIEClassItem
	MIENativeItem
	MIEEnumVariant
)

// ModIndexEntry is one candidate binding for a name within a module index.
type ModIndexEntry struct {
	Kind       ModIndexEntryKind
	Def        *ast.Def
	NS         Namespace
	ValueKind  ValueSubkind
	NodeID     ast.NodeID
	VariantIdx int
}

// ModuleIndex is the per-module `index: identifier -> list of local
// entries` table built during Pass 1 (spec §4.C "Indexing").
type ModuleIndex struct {
	Mod          *ast.Mod
	Path         []string
	Entries      map[string][]ModIndexEntry
	GlobImports  []*Import // glob imports registered in this module; once resolved, their bindings are folded into Entries
	Parent       *ModuleIndex
	Exported     map[string]bool // names this module actually exports (after visibility filtering)
	ReexportedAt map[string][]string // name -> dotted path it was re-exported from, for "a::b::c resolves like m::c"
}

// ImportState is the cycle-detection sentinel table spec §4.C describes.
type ImportState int

const (
	ImportTodo ImportState = iota
	ImportResolving
	ImportResolved
	ImportFailed
)

// Import tracks one `use` view-item through resolution.
type Import struct {
	Node  *ast.Import
	State ImportState
	Scope []*Scope // the scope list surrounding the import, inner to outer
	Owner *ModuleIndex

	// filled in once Resolved
	Value, Type, Module *ast.Def
	Impls               []*ast.Def // carried through for glob imports that also pull impls into scope

	Used bool // for the "unused import" warning sweep
}

// DefMap is `node-id -> def`, required total over the typed AST (spec §3).
type DefMap map[ast.NodeID]*ast.Def

// ExportMap is `dotted path string -> list of def`, spec's cross-crate
// consumer interface (spec §6).
type ExportMap map[string][]*ast.Def

// ImplMap is `expression-id -> visible impls`. New creates it empty and
// nothing in this package fills it; impls reach the Vtable/Trait-obligation
// Solver (component F) through the crate driver's registry instead.
type ImplMap map[ast.NodeID][]*ast.ImplItem

// Resolver holds all resolver-owned tables for one crate compilation.
type Resolver struct {
	sess *session.Session

	modules map[string]*ModuleIndex // dotted path -> module index
	root    *ModuleIndex

	imports map[ast.NodeID]*Import

	DefMap    DefMap
	ExportMap ExportMap
	ImplMap   ImplMap

	nextNodeID ast.NodeID
}

// New creates a resolver bound to sess for diagnostics.
func New(sess *session.Session) *Resolver {
	return &Resolver{
		sess:    sess,
		modules: make(map[string]*ModuleIndex),
		imports: make(map[ast.NodeID]*Import),

		DefMap:    make(DefMap),
		ExportMap: make(ExportMap),
		ImplMap:   make(ImplMap),
	}
}

// ResolveCrate runs both passes over crate, filling the resolver's DefMap
// and ExportMap fields (ImplMap stays empty), and returns an error if a pass
// reported errors (spec §4.C). Pass 2 only runs if Pass 1 produced no hard
// errors. Matches
// spec §5's "non-fatal errors accumulate; each pass checks the error count
// at its end and refuses to run subsequent passes if it increased".
func (r *Resolver) ResolveCrate(crate *ast.Crate) error {
	before := r.sess.ErrorCount()
	r.indexModule(crate.Root, nil, nil)
	if r.sess.ErrorCount() > before {
		return fmt.Errorf("resolve: indexing pass reported errors, skipping import resolution")
	}

	before = r.sess.ErrorCount()
	for _, imp := range r.imports {
		if imp.State == ImportTodo {
			r.resolveImport(imp)
		}
	}
	if r.sess.ErrorCount() > before {
		return fmt.Errorf("resolve: import resolution reported errors")
	}

	r.chaseReexports()
	return nil
}
