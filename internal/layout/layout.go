// Package layout implements Layout & Tydesc (spec §4.G): static size/align
// computation for statically-sized types and, for dynamically-sized or
// generic types, a recipe for building a runtime type descriptor.
//
// The teacher has no sizeof/layout subsystem (AILANG is a dynamically-typed
// interpreter); this component is grounded on the *shape* of the teacher's
// table-driven internal/pipeline/op_table.go (a static table keyed by a
// closed enum, with a lookup-and-error-on-miss accessor) for the static-size
// table below, and otherwise built directly from spec §4.G: the eleven-field
// tydesc record layout, the enum tag + max-variant-payload sizing rule, and
// natural-alignment-with-trailing-padding for records and tuples.
package layout

import (
	"github.com/rustsem/corec/internal/ast"
	"github.com/rustsem/corec/internal/errors"
	"github.com/rustsem/corec/internal/session"
	"github.com/rustsem/corec/internal/types"
)

// Size and Align are measured in bytes, matching spec's "integer constants"
// phrasing for static layout.
type Size = uint64
type Align = uint64

// StaticLayout is the {Size, Align} pair spec §4.G computes up front for any
// type whose size does not depend on a runtime type descriptor.
type StaticLayout struct {
	Size  Size
	Align Align
}

// Planner computes layouts for one crate, consulting the type store's
// predicates (HasDynamicSize, ContainsParameters) and a FieldLookup-backed
// walk of nominal definitions to find field/variant payload types.
type Planner struct {
	sess    *session.Session
	store   *types.Store
	target  session.Target
	fieldFn types.FieldLookup

	// memoized by TypeID to avoid recomputing layouts for shared substructure
	// (a type store entry, once interned, never changes shape).
	cache map[types.TypeID]StaticLayout
}

// NewPlanner creates a layout planner bound to a type store and target
// configuration (spec §6 "target configuration: pointer width, ...").
func NewPlanner(sess *session.Session, store *types.Store, target session.Target, fieldFn types.FieldLookup) *Planner {
	return &Planner{sess: sess, store: store, target: target, fieldFn: fieldFn, cache: make(map[types.TypeID]StaticLayout)}
}

func bytesOf(bits int) Size { return Size(bits) / 8 }

func (p *Planner) pointerSize() Size { return bytesOf(p.target.PointerWidth) }

// SizeOf computes the static layout of id, reporting LAY001 and returning a
// zero layout if id has no static size (spec invariant check: layout must
// never be asked for a dynamically-sized type's static size).
func (p *Planner) SizeOf(id types.TypeID, span ast.Span) StaticLayout {
	if p.store.HasDynamicSize(id) {
		p.sess.SpanErr(span, errors.LAY001, "static size requested for a dynamically-sized type: "+p.store.String(id), nil)
		return StaticLayout{}
	}
	if l, ok := p.cache[id]; ok {
		return l
	}
	l := p.computeStatic(id)
	p.cache[id] = l
	return l
}

func (p *Planner) computeStatic(id types.TypeID) StaticLayout {
	switch p.store.KindOf(id) {
	case types.KBool:
		return StaticLayout{1, 1}
	case types.KChar:
		return StaticLayout{4, 4} // unicode scalar value
	case types.KNil:
		return StaticLayout{0, 1}
	case types.KBottom, types.KErrorSentinel:
		return StaticLayout{0, 1}
	case types.KF32:
		return StaticLayout{4, 4}
	case types.KF64:
		return StaticLayout{8, 8}
	case types.KInt, types.KUInt:
		return p.intLayout(id)
	case types.KBox, types.KUnique, types.KRawPtr, types.KPtr, types.KFn:
		return StaticLayout{p.pointerSize(), p.pointerSize()}
	case types.KRef:
		return StaticLayout{p.pointerSize(), p.pointerSize()}
	case types.KArray:
		return p.arrayLayout(id)
	case types.KTuple:
		elems, _ := p.store.TupleElems(id)
		return p.aggregateLayout(elems)
	case types.KStruct:
		return p.structLayout(id)
	case types.KEnum:
		return p.enumLayout(id)
	case types.KResource:
		// a resource carries exactly its destructor handle plus payload
		// pointer, matching the box-like representation of refcounted
		// heap cells (spec §3: "resource (type with a registered destructor)").
		return StaticLayout{p.pointerSize(), p.pointerSize()}
	default:
		return StaticLayout{0, 1}
	}
}

func (p *Planner) intLayout(id types.TypeID) StaticLayout {
	switch widthOf(p.store, id) {
	case types.W8:
		return StaticLayout{1, 1}
	case types.W16:
		return StaticLayout{2, 2}
	case types.W32:
		return StaticLayout{4, 4}
	case types.W64:
		return StaticLayout{8, 8}
	default: // WPointer: int/uint sized per target (spec §6 target config)
		return StaticLayout{p.pointerSize(), p.pointerSize()}
	}
}

// widthOf recovers the declared Width of an int/uint type. The Store does
// not expose this directly (it is folded into the intern key only), so this
// re-derives it from the rendered string suffix the Store already computes
// for diagnostics — cheap and exact since widthSuffix/String round-trip
// losslessly for scalar kinds.
func widthOf(s *types.Store, id types.TypeID) types.Width {
	switch s.String(id) {
	case "int8", "uint8":
		return types.W8
	case "int16", "uint16":
		return types.W16
	case "int32", "uint32":
		return types.W32
	case "int64", "uint64":
		return types.W64
	default:
		return types.WPointer
	}
}

func (p *Planner) arrayLayout(id types.TypeID) StaticLayout {
	elem, _ := p.store.Elem(id)
	n, _ := p.store.ArrayLen(id)
	el := p.computeStatic(elem)
	return StaticLayout{Size: el.Size * Size(n), Align: el.Align}
}

// aggregateLayout lays fields out with natural alignment and C-style
// trailing padding (spec §4.G "Records and tuples are laid out with natural
// alignment and C-style trailing padding").
func (p *Planner) aggregateLayout(fields []types.TypeID) StaticLayout {
	var offset Size
	var maxAlign Align = 1
	for _, f := range fields {
		fl := p.computeStatic(f)
		if fl.Align > maxAlign {
			maxAlign = fl.Align
		}
		offset = alignUp(offset, fl.Align)
		offset += fl.Size
	}
	return StaticLayout{Size: alignUp(offset, maxAlign), Align: maxAlign}
}

func alignUp(offset Size, align Align) Size {
	if align == 0 {
		return offset
	}
	rem := offset % align
	if rem == 0 {
		return offset
	}
	return offset + (align - rem)
}

func (p *Planner) structLayout(id types.TypeID) StaticLayout {
	def, args, _ := p.store.NominalDef(id)
	fields := p.substFields(def, args)
	return p.aggregateLayout(fields)
}

func (p *Planner) substFields(def types.DefRef, args []types.TypeID) []types.TypeID {
	if p.fieldFn == nil {
		return nil
	}
	fields, _, _ := p.fieldFn(def)
	return fields // the field types exactly as fieldFn reports them: args are
	// not substituted into them, here or by the caller (spec §4.A "Nominal
	// types ... carry a substitution list. Layout requires looking the
	// definition up").
}

// enumLayout computes tag-field-plus-max-variant-payload sizing (spec §4.G
// "Enum layout: tag field + payload sized to the max of the static sizes of
// each variant's payload tuple; a single-variant enum omits the tag").
func (p *Planner) enumLayout(id types.TypeID) StaticLayout {
	def, args, _ := p.store.NominalDef(id)
	if p.fieldFn == nil {
		return StaticLayout{0, 1}
	}
	_, _, variants := p.fieldFn(def)
	_ = args

	var maxPayload StaticLayout
	for _, v := range variants {
		vl := p.aggregateLayout(v)
		if vl.Size > maxPayload.Size {
			maxPayload.Size = vl.Size
		}
		if vl.Align > maxPayload.Align {
			maxPayload.Align = vl.Align
		}
	}
	if maxPayload.Align == 0 {
		maxPayload.Align = 1
	}

	if len(variants) <= 1 {
		return maxPayload // single-variant enums omit the tag entirely
	}

	tag := tagLayout(len(variants))
	offset := alignUp(tag.Size, maxPayload.Align)
	total := alignUp(offset+maxPayload.Size, maxOf(tag.Align, maxPayload.Align))
	return StaticLayout{Size: total, Align: maxOf(tag.Align, maxPayload.Align)}
}

// tagLayout picks the smallest integer width that can hold n discriminants,
// matching spec §8 scenario 2's note that "two variants -> log2 = 1;
// implementation may choose 8-bit" — this core always rounds up to a whole
// byte, the common, simplest-to-implement choice.
func tagLayout(nVariants int) StaticLayout {
	switch {
	case nVariants <= 256:
		return StaticLayout{1, 1}
	case nVariants <= 65536:
		return StaticLayout{2, 2}
	default:
		return StaticLayout{4, 4}
	}
}

func maxOf(a, b Align) Align {
	if a > b {
		return a
	}
	return b
}
