package lower

import (
	"github.com/rustsem/corec/internal/ast"
	"github.com/rustsem/corec/internal/errors"
	"github.com/rustsem/corec/internal/session"
	"github.com/rustsem/corec/internal/types"
)

// ArmPlan names the block an enum-match arm's body lowers into, plus the
// payload bindings that block must destructure from the scrutinee's tagged
// union (spec §4.H "Enum discrimination: match compiles to a switch on the
// tag field").
type ArmPlan struct {
	VariantIdx int
	Block      BlockID
	Bindings   []PayloadBinding
}

// PayloadBinding says which pattern-bound local receives which positional
// field of a variant's payload tuple.
type PayloadBinding struct {
	Name        string
	PayloadSlot int
	Ty          types.TypeID
}

// LowerEnumMatch compiles a match over an enum scrutinee to the tag-switch
// scheme spec §4.H describes: a single-variant enum skips the switch
// entirely (the sole arm is unconditionally taken); otherwise a Switch
// dispatches to one block per covered variant plus an unreachable default
// unless a wildcard arm supplies one.
func (b *Builder) LowerEnumMatch(sess *session.Session, span ast.Span, tagPtr ValueID, nVariants int, arms []ArmPlan, defaultBlock *BlockID, exhaustive bool) {
	if nVariants <= 1 {
		// Single-variant enums omit the tag field; the lone arm is
		// unconditionally reachable (spec §4.H "single-variant enums skip
		// the switch").
		if len(arms) == 1 {
			b.Terminate(&Br{Target: arms[0].Block})
		}
		return
	}
	tag := b.Emit(&Load{Node: Node{ID: b.fresh(), Ty: tagTypeOf(nVariants)}, Ptr: tagPtr})
	cases := make([]SwitchCase, len(arms))
	for i, a := range arms {
		cases[i] = SwitchCase{Value: int64(a.VariantIdx), Target: a.Block}
	}
	sw := &Switch{Tag: tag, Cases: cases}
	if defaultBlock != nil {
		sw.Default = *defaultBlock
	} else if !exhaustive {
		sess.SpanErr(span, errors.LWR002, "non-exhaustive match reached lowering", nil)
	}
	b.Terminate(sw)
}

func tagTypeOf(nVariants int) types.TypeID {
	// The tag's interned type lives in the caller's store; LowerEnumMatch
	// only needs its own fresh ValueID here, so it emits a zero TypeID
	// placeholder, and lowerMatch replaces it with Info.TagType's uint
	// width when Info.TagType is set (the crate driver (internal/crate)
	// sets it to tagTypeForVariantCount).
	return types.InvalidType
}
