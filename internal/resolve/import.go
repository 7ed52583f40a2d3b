package resolve

import (
	"github.com/rustsem/corec/internal/ast"
	"github.com/rustsem/corec/internal/errors"
)

// resolveImport resolves one Todo import (Pass 2 — spec §4.C). Sets state
// to Resolving first so re-entry during the same resolution is detectable
// as a cycle, exactly as original_source resolve.rs's `resolving(span)`
// sentinel does.
func (r *Resolver) resolveImport(imp *Import) {
	if imp.State == ImportResolving {
		r.sess.SpanErr(imp.Node.Span(), errors.RSV002, "cyclic import", nil)
		imp.State = ImportFailed
		return
	}
	if imp.State != ImportTodo {
		return
	}
	imp.State = ImportResolving

	switch imp.Node.Kind {
	case ast.ImportNamed:
		r.resolveNamedImport(imp)
	case ast.ImportList:
		r.resolveListImport(imp)
	case ast.ImportGlob:
		r.resolveGlobImport(imp)
	}
}

func (r *Resolver) resolveNamedImport(imp *Import) {
	segs := imp.Node.Path.Segments
	value, typ, mod, impls, ok := r.resolvePath(imp.Owner, segs)
	if !ok {
		r.sess.SpanErr(imp.Node.Span(), errors.RSV001, "unresolved name: "+joinDotted(segs), nil)
		imp.State = ImportFailed
		return
	}
	imp.Value, imp.Type, imp.Module, imp.Impls = value, typ, mod, impls
	imp.State = ImportResolved
	r.bindImportName(imp.Owner, importedName(imp.Node), imp)
}

func (r *Resolver) resolveListImport(imp *Import) {
	prefix := imp.Node.Path.Segments
	for _, name := range imp.Node.Names {
		segs := append(append([]string(nil), prefix...), name)
		value, typ, mod, impls, ok := r.resolvePath(imp.Owner, segs)
		if !ok {
			r.sess.SpanErr(imp.Node.Span(), errors.RSV001, "unresolved name: "+joinDotted(segs), nil)
			imp.State = ImportFailed
			continue
		}
		sub := &Import{Node: imp.Node, Owner: imp.Owner, State: ImportResolved,
			Value: value, Type: typ, Module: mod, Impls: impls}
		r.bindImportName(imp.Owner, name, sub)
	}
	if imp.State != ImportFailed {
		imp.State = ImportResolved
	}
}

func (r *Resolver) resolveGlobImport(imp *Import) {
	segs := imp.Node.Path.Segments
	target, ok := r.lookupModule(imp.Owner, segs)
	if !ok {
		if r.isExternalCratePath(segs) {
			r.sess.SpanErr(imp.Node.Span(), errors.RSV006, "glob-export of items in external crate is unsupported", nil)
		} else {
			r.sess.SpanErr(imp.Node.Span(), errors.RSV001, "unresolved name: "+joinDotted(segs), nil)
		}
		imp.State = ImportFailed
		return
	}
	// Glob imports are idempotent: binding every exported name of target is
	// a pure function of target's (frozen, by this point) export set, so
	// resolving the same glob twice yields the same bindings (spec §8).
	for name, exported := range target.Exported {
		if !exported {
			continue
		}
		for _, e := range target.Entries[name] {
			sub := &Import{Node: imp.Node, Owner: imp.Owner, State: ImportResolved}
			switch e.NS {
			case NSValue:
				sub.Value = e.Def
			case NSType:
				sub.Type = e.Def
			case NSModule:
				sub.Module = e.Def
			}
			r.bindImportName(imp.Owner, name, sub)
		}
	}
	imp.State = ImportResolved
}

// isExternalCratePath is a coarse heuristic used only to choose between the
// generic "unresolved name" diagnostic and the more specific "glob-export of
// items in external crate is unsupported" one spec's Open Question 2
// requires verbatim: a first segment naming a crate this resolver has never
// indexed as a local module (matched by its last path segment, as
// moduleForDef does) is assumed external. Crate-level disambiguation proper
// is the Crate Store's job (component B); this resolver does not consult
// cratestore.
func (r *Resolver) isExternalCratePath(segs []string) bool {
	if len(segs) == 0 {
		return false
	}
	for _, m := range r.modules {
		if len(m.Path) > 0 && m.Path[len(m.Path)-1] == segs[0] {
			return false
		}
	}
	return true
}

func importedName(node *ast.Import) string {
	if node.Alias != "" {
		return node.Alias
	}
	if len(node.Path.Segments) == 0 {
		return ""
	}
	return node.Path.Segments[len(node.Path.Segments)-1]
}

func (r *Resolver) bindImportName(owner *ModuleIndex, name string, imp *Import) {
	if imp.Value != nil {
		owner.Entries[name] = append(owner.Entries[name], ModIndexEntry{Kind: MIEImportIdent, Def: imp.Value, NS: NSValue, ValueKind: ValueOrEnum})
	}
	if imp.Type != nil {
		owner.Entries[name] = append(owner.Entries[name], ModIndexEntry{Kind: MIEImportIdent, Def: imp.Type, NS: NSType})
	}
	if imp.Module != nil {
		owner.Entries[name] = append(owner.Entries[name], ModIndexEntry{Kind: MIEImportIdent, Def: imp.Module, NS: NSModule})
	}
}

// resolvePath walks segs starting from scope's enclosing module, resolving
// each component through the module index and, failing that, through the
// glob-import list (spec §4.C "Path resolution walks the scope list from
// inner to outer, at each step consulting first the explicit module index
// and then the glob-import list"). Succeeds if at least one namespace is
// populated for the final segment.
func (r *Resolver) resolvePath(from *ModuleIndex, segs []string) (value, typ, mod *ast.Def, impls []*ast.Def, ok bool) {
	if len(segs) == 0 {
		return nil, nil, nil, nil, false
	}
	cur := from
	for i, seg := range segs {
		last := i == len(segs)-1
		entries, found := lookupInScope(cur, seg)
		if !found {
			return nil, nil, nil, nil, false
		}
		if last {
			for _, e := range entries {
				if !r.visibleFrom(from, cur, e) {
					continue
				}
				switch e.NS {
				case NSValue:
					value = e.Def
				case NSType:
					typ = e.Def
				case NSModule:
					mod = e.Def
				}
			}
			return value, typ, mod, impls, value != nil || typ != nil || mod != nil
		}
		// Intermediate segment must resolve to a module.
		var next *ModuleIndex
		for _, e := range entries {
			if e.NS == NSModule {
				next = r.moduleForDef(e.Def)
			}
		}
		if next == nil {
			return nil, nil, nil, nil, false
		}
		cur = next
	}
	return nil, nil, nil, nil, false
}

func (r *Resolver) lookupModule(from *ModuleIndex, segs []string) (*ModuleIndex, bool) {
	cur := from
	for _, seg := range segs {
		entries, found := lookupInScope(cur, seg)
		if !found {
			return nil, false
		}
		var next *ModuleIndex
		for _, e := range entries {
			if e.NS == NSModule {
				next = r.moduleForDef(e.Def)
			}
		}
		if next == nil {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

func (r *Resolver) moduleForDef(def *ast.Def) *ModuleIndex {
	for _, m := range r.modules {
		if len(m.Path) > 0 && m.Path[len(m.Path)-1] == def.Name {
			return m
		}
	}
	return nil
}

// lookupInScope checks the module's own index. Resolved glob imports have
// already been folded into that index and unresolved ones are skipped, so
// the glob-import list contributes no entries of its own.
func lookupInScope(mi *ModuleIndex, name string) ([]ModIndexEntry, bool) {
	if entries, ok := mi.Entries[name]; ok && len(entries) > 0 {
		return entries, true
	}
	for _, g := range mi.GlobImports {
		if g.State != ImportResolved {
			continue
		}
		// A resolved glob's bindings were already folded into mi.Entries by
		// resolveGlobImport's bindImportName, so nothing further to do here;
		// globs not yet resolved were skipped above.
	}
	return nil, false
}

// visibleFrom applies spec §4.C export filtering: module-external lookups
// only see exported items, unless the item opted out via an attribute
// (represented here simply as DefMod/DefPrimitiveType always being visible,
// since modules and primitives have no meaningful privacy).
func (r *Resolver) visibleFrom(from, owner *ModuleIndex, e ModIndexEntry) bool {
	if from == owner {
		return true
	}
	if e.Def.Kind == ast.DefMod || e.Def.Kind == ast.DefPrimitiveType {
		return true
	}
	return owner.Exported[e.Def.Name]
}

// chaseReexports implements "An import of a::b::c where b is a name
// re-exported from module m resolves to the same def as m::c" (spec §8),
// supplementing the distilled spec with original_source resolve.rs's
// `resolve_crate_reexports` pass, which the distillation dropped. It reads
// ModuleIndex.ReexportedAt, which nothing in this package fills, so the
// pass adds no export-map entries.
func (r *Resolver) chaseReexports() {
	for _, mi := range r.modules {
		for name, targets := range mi.ReexportedAt {
			for _, target := range targets {
				if defs, ok := r.ExportMap[target]; ok {
					path := joinDotted(append(mi.Path, name))
					r.ExportMap[path] = defs
				}
			}
		}
	}
}
