package resolve

import "github.com/rustsem/corec/internal/errors"

// MarkImportUsed marks the import that introduced name into mi's scope as
// used, if any.
func (r *Resolver) MarkImportUsed(mi *ModuleIndex, name string) {
	for _, imp := range r.imports {
		if imp.Owner == mi && importedName(imp.Node) == name {
			imp.Used = true
		}
	}
}

// WarnUnusedImports runs the unused-import sweep emitted after resolution
// completes (spec §7 "unused import: warning only, emitted after
// resolution"), supplementing the distilled spec.md with the second sweep
// original_source resolve.rs performs but the distillation omitted.
func (r *Resolver) WarnUnusedImports() {
	if !r.sess.Options.WarnUnusedImports {
		return
	}
	for _, imp := range r.imports {
		if imp.State == ImportResolved && !imp.Used {
			r.sess.SpanWarn(imp.Node.Span(), errors.RSV003, "unused import: "+joinDotted(imp.Node.Path.Segments), nil)
		}
	}
}
