package lower

import "github.com/rustsem/corec/internal/types"

// Capture is one upvar reached through a closure's environment record,
// carrying the chain recorded by the resolver (ast.UpvarChain) collapsed to
// a flat list of (source value, type) pairs by the time lowering runs.
type Capture struct {
	Name string
	Val  ValueID
	Ty   types.TypeID
}

// ClosurePlan is the lowering recipe for one `bind` expression: allocate a
// heap record {tydesc, target-fn-ptr, bindings-tuple,
// captured-type-descriptors} and a thunk that reassembles the full argument
// list at call time (spec §4.H "Closure construction").
type ClosurePlan struct {
	ThunkSymbol string // the generated thunk's linker symbol
	TargetFn    string // the original closure body's symbol
	Captures    []Capture
}

// LowerClosure emits the Bind instruction constructing the environment
// record and returns the ValueID of the resulting closure value (a boxed,
// ref-counted pointer per spec §4.H's "Reference counting": "box/vec/string/
// closure values are ref-counted").
func (b *Builder) LowerClosure(plan ClosurePlan, envTy types.TypeID) ValueID {
	caps := make([]ValueID, len(plan.Captures))
	for i, c := range plan.Captures {
		caps[i] = c.Val
	}
	id, node := b.freshValue(envTy)
	bind := &Bind{Node: node, TargetFn: plan.TargetFn, Captures: caps}
	b.cur.Insts = append(b.cur.Insts, bind)
	return id
}

// ThunkArgOrder reassembles the full argument list a generated thunk must
// pass to TargetFn at call time: captured bindings first (in declaration
// order, matching the environment record's bindings-tuple layout), then the
// caller-supplied arguments.
func ThunkArgOrder(plan ClosurePlan, callArgs []ValueID) []ValueID {
	out := make([]ValueID, 0, len(plan.Captures)+len(callArgs))
	for _, c := range plan.Captures {
		out = append(out, c.Val)
	}
	return append(out, callArgs...)
}
