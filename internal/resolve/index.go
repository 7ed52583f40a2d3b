package resolve

import (
	"github.com/rustsem/corec/internal/ast"
	"github.com/rustsem/corec/internal/errors"
)

// indexModule walks one module, building its ModuleIndex (Pass 1 —
// "Indexing", spec §4.C). Recurses into nested modules, each with its own
// ModuleIndex chained to its parent.
func (r *Resolver) indexModule(m *ast.Mod, parent *ModuleIndex, path []string) *ModuleIndex {
	mi := &ModuleIndex{
		Mod:          m,
		Path:         append(append([]string(nil), path...), m.Name),
		Entries:      make(map[string][]ModIndexEntry),
		Parent:       parent,
		Exported:     make(map[string]bool),
		ReexportedAt: make(map[string][]string),
	}
	dotted := joinDotted(mi.Path)
	r.modules[dotted] = mi
	if parent == nil {
		r.root = mi
	}

	for _, item := range m.Items {
		r.indexItem(mi, item)
	}
	for name, exported := range mi.Exported {
		if !exported {
			continue
		}
		path := joinDotted(append(append([]string(nil), mi.Path...), name))
		for _, e := range mi.Entries[name] {
			r.ExportMap[path] = append(r.ExportMap[path], e.Def)
		}
	}
	for _, child := range m.Children {
		r.indexModule(child, mi, mi.Path)
	}
	for _, imp := range m.Imports {
		r.registerImport(mi, imp)
	}
	return mi
}

func (r *Resolver) indexItem(mi *ModuleIndex, item ast.Item) {
	switch it := item.(type) {
	case *ast.FnItem:
		def := &ast.Def{ID: freshDefID(it.ID()), Kind: ast.DefFn, Name: it.Name, Purity: it.Pure}
		r.addEntry(mi, it.Name, ModIndexEntry{Kind: MIEItem, Def: def, NS: NSValue, ValueKind: ValueOrEnum, NodeID: it.ID()})
		r.DefMap[it.ID()] = def
		if it.Exported {
			mi.Exported[it.Name] = true
		}

	case *ast.ConstItem:
		def := &ast.Def{ID: freshDefID(it.ID()), Kind: ast.DefConst, Name: it.Name}
		r.addEntry(mi, it.Name, ModIndexEntry{Kind: MIEItem, Def: def, NS: NSValue, ValueKind: ValueOrEnum, NodeID: it.ID()})
		r.DefMap[it.ID()] = def
		if it.Exported {
			mi.Exported[it.Name] = true
		}

	case *ast.StructItem:
		def := &ast.Def{ID: freshDefID(it.ID()), Kind: ast.DefStruct, Name: it.Name}
		r.addEntry(mi, it.Name, ModIndexEntry{Kind: MIEClassItem, Def: def, NS: NSType, NodeID: it.ID()})
		r.DefMap[it.ID()] = def
		for fi, f := range it.Fields {
			fdef := &ast.Def{ID: freshDefID(f.ID()), Kind: ast.DefStructField, Name: f.Name, FieldIndex: fi, Owner: def.ID}
			r.DefMap[f.ID()] = fdef
		}
		if it.Exported {
			mi.Exported[it.Name] = true
		}

	case *ast.EnumItem:
		def := &ast.Def{ID: freshDefID(it.ID()), Kind: ast.DefEnumVariant, Name: it.Name}
		r.addEntry(mi, it.Name, ModIndexEntry{Kind: MIEItem, Def: def, NS: NSType, NodeID: it.ID()})
		r.DefMap[it.ID()] = def
		for _, v := range it.Variants {
			vdef := &ast.Def{ID: freshDefID(v.ID()), Kind: ast.DefEnumVariant, Name: v.Name, VariantIdx: v.Index, Owner: def.ID}
			// Variants populate both namespaces, per spec: the value
			// namespace (constructing the variant) and, for nullary
			// variants used as patterns, the definite-enum sub-kind.
			r.addEntry(mi, v.Name, ModIndexEntry{Kind: MIEEnumVariant, Def: vdef, NS: NSValue, ValueKind: DefiniteEnum, NodeID: v.ID(), VariantIdx: v.Index})
			r.DefMap[v.ID()] = vdef
			if it.Exported {
				mi.Exported[v.Name] = true
			}
		}
		if it.Exported {
			mi.Exported[it.Name] = true
		}

	case *ast.TraitItem:
		def := &ast.Def{ID: freshDefID(it.ID()), Kind: ast.DefTrait, Name: it.Name}
		r.addEntry(mi, it.Name, ModIndexEntry{Kind: MIEItem, Def: def, NS: NSType, NodeID: it.ID()})
		r.DefMap[it.ID()] = def
		if it.Exported {
			mi.Exported[it.Name] = true
		}

	case *ast.TypeAliasItem:
		def := &ast.Def{ID: freshDefID(it.ID()), Kind: ast.DefTypeAlias, Name: it.Name}
		r.addEntry(mi, it.Name, ModIndexEntry{Kind: MIEItem, Def: def, NS: NSType, NodeID: it.ID()})
		r.DefMap[it.ID()] = def
		if it.Exported {
			mi.Exported[it.Name] = true
		}

	case *ast.ImplItem:
		// Impls introduce no name of their own and are not indexed here;
		// the crate driver's registry registers them with the
		// Vtable/Trait-obligation Solver (component F) directly, and the
		// impl map stays empty.

	case *ast.ModItem:
		def := &ast.Def{ID: freshDefID(it.ID()), Kind: ast.DefMod, Name: it.Name}
		r.addEntry(mi, it.Name, ModIndexEntry{Kind: MIEItem, Def: def, NS: NSModule, NodeID: it.ID()})
		r.DefMap[it.ID()] = def
		if it.Exported {
			mi.Exported[it.Name] = true
		}
	}
}

func (r *Resolver) addEntry(mi *ModuleIndex, name string, e ModIndexEntry) {
	for _, existing := range mi.Entries[name] {
		if existing.NS == e.NS {
			r.sess.SpanErr(ast.Span{}, errors.RSV004,
				"duplicate definition of '"+name+"' in the "+e.NS.String()+" namespace", nil)
			return
		}
	}
	mi.Entries[name] = append(mi.Entries[name], e)
}

func (r *Resolver) registerImport(mi *ModuleIndex, node *ast.Import) {
	imp := &Import{Node: node, State: ImportTodo, Owner: mi}
	r.imports[node.ID()] = imp
	if node.Kind == ast.ImportGlob {
		// Glob imports are linked to the enclosing module's glob list;
		// ResolveCrate resolves them in Pass 2 together with every other
		// import, not on first lookup.
		mi.GlobImports = append(mi.GlobImports, imp)
	}
}

// freshDefID mints a local DefID from a node-id. Node-ids and local def-ids
// share the same numbering space in this core (a node introduces at most
// one definition), matching the 1:1 structure the teacher's Core IR
// assigns node ids under (internal/core/core.go's NodeID field).
func freshDefID(id ast.NodeID) ast.DefID {
	return ast.DefID{Crate: ast.LocalCrate, Index: uint32(id)}
}

func joinDotted(path []string) string {
	out := ""
	for i, p := range path {
		if i > 0 {
			out += "::"
		}
		out += p
	}
	return out
}
