package resolve

import (
	"github.com/rustsem/corec/internal/ast"
	"github.com/rustsem/corec/internal/errors"
)

// ScopeList is the list of lexical scopes surrounding one identifier use,
// inner to outer (spec §4.C "Scope list").
type ScopeList []*Scope

// LookupValue resolves name in the value namespace by walking scopes
// innermost-first. When the lookup crosses one or more ScopeFnExpr
// boundaries before finding a local/arg binding, the result is rewritten to
// an upvar chain (spec §4.C "Closure semantics").
func (r *Resolver) LookupValue(scopes ScopeList, mi *ModuleIndex, name string, sub ValueSubkind) (*ast.Def, error) {
	var crossed []ast.NodeID
	for _, sc := range scopes {
		switch sc.Kind {
		case ScopeFnExpr:
			crossed = append(crossed, sc.ClosureID)
		case ScopeMethod:
			if name == "self" && sc.SelfDef != nil {
				return sc.SelfDef, nil
			}
		case ScopeBareFn, ScopeLoop, ScopeBlock, ScopeArm:
			if def, ok := sc.bindingFor(name); ok {
				return r.maybeWrapUpvar(def, crossed), nil
			}
		}
		if def, ok := sc.bindingFor(name); ok {
			return r.maybeWrapUpvar(def, crossed), nil
		}
	}
	// Fall through to module-level lookup.
	value, _, _, _, ok := r.resolvePath(mi, []string{name})
	if !ok || value == nil {
		return nil, errUnresolved(name)
	}
	if sub == DefiniteEnum && !value.IsDefiniteEnumVariant() {
		return nil, errUnresolved(name)
	}
	return value, nil
}

func (sc *Scope) bindingFor(name string) (*ast.Def, bool) {
	if sc.Locals != nil {
		if d, ok := sc.Locals[name]; ok {
			return d, true
		}
	}
	if sc.Bindings != nil {
		if d, ok := sc.Bindings[name]; ok {
			return d, true
		}
	}
	return nil, false
}

// maybeWrapUpvar rewrites def into an upvar chain if one or more closure
// boundaries were crossed to reach it (spec §4.C).
func (r *Resolver) maybeWrapUpvar(def *ast.Def, crossed []ast.NodeID) *ast.Def {
	if len(crossed) == 0 {
		return def
	}
	return &ast.Def{
		ID:   def.ID,
		Kind: ast.DefUpvar,
		Name: def.Name,
		Upvar: &ast.UpvarChain{
			Inner: def,
			Path:  crossed,
		},
	}
}

// LookupType resolves name in the type namespace, checking type-parameter
// scopes first (spec §4.C: ScopeItem/ScopeBareFn/ScopeFnExpr/ScopeMethod
// "carrying its type parameters").
func (r *Resolver) LookupType(scopes ScopeList, mi *ModuleIndex, name string) (*ast.Def, error) {
	for _, sc := range scopes {
		if sc.TypeParams != nil {
			if d, ok := sc.TypeParams[name]; ok {
				return d, nil
			}
		}
	}
	_, typ, _, _, ok := r.resolvePath(mi, []string{name})
	if !ok || typ == nil {
		return nil, errUnresolved(name)
	}
	return typ, nil
}

// CheckClosureCapturesTypeParam reports the spec-mandated hard error when a
// closure attempts to capture a type parameter rather than a value.
func (r *Resolver) CheckClosureCapturesTypeParam(span ast.Span, name string, scopes ScopeList) {
	for _, sc := range scopes {
		if sc.Kind == ScopeFnExpr {
			continue
		}
		if sc.TypeParams != nil {
			if _, ok := sc.TypeParams[name]; ok {
				r.sess.SpanErr(span, errors.RSV005, "closures cannot capture type parameter '"+name+"'", nil)
				return
			}
		}
	}
}

type unresolvedErr struct{ name string }

func (e unresolvedErr) Error() string { return "unresolved name: " + e.name }

func errUnresolved(name string) error { return unresolvedErr{name} }
