// Package types implements the Type Store (spec §4.A): an interned
// representation of every type in a crate, with structural equality decided
// once at construction (spec §3 "Interning" invariant).
//
// Grounded on the teacher's Type interface and TVar/TCon/TFunc/TList/TTuple
// family (internal/types/types.go in sunholo-data-ailang), generalized from
// a small closed set of language types into the open nominal + primitive
// set this core requires, and from structural `Equals`/`Substitute` methods
// into an interned-handle store so `Equals` degenerates to comparing two
// integers (spec's "two types are eq iff their interned handles compare
// equal").
package types

import "fmt"

// TypeID is an interned handle into a Store. Two TypeIDs compare equal iff
// the types they denote are structurally identical.
type TypeID int32

// InvalidType is returned by lookups that fail; never a valid interned handle.
const InvalidType TypeID = -1

// Width is a scalar bit width.
type Width int

const (
	W8 Width = iota
	W16
	W32
	W64
	WPointer
)

// Kind tags the variant of an interned type.
type Kind int

const (
	KBool Kind = iota
	KInt
	KUInt
	KF32
	KF64
	KChar
	KNil // unit
	KBottom
	KErrorSentinel

	KBox    // reference-counted heap cell
	KUnique // unique (linear) pointer
	KRef    // &'region T
	KRawPtr // *T
	KTuple
	KRecord // named fields
	KVec    // dynamically-sized [T]
	KArray  // statically-known [T; N]
	KString
	KPtr // opaque generic pointer

	KStruct
	KEnum
	KTraitObject
	KResource // type with a registered destructor

	KFn

	KTypeParam // reference to a type-parameter definition, by ordinal

	KInferGeneral
	KInferInt
	KInferFloat
)

// DefRef is the minimal handle into the def-id space that a nominal type
// needs; kept local to this package (rather than importing internal/ast) so
// the type store has no dependency on the AST, matching the teacher's
// layering where internal/types never imports internal/ast's item types.
type DefRef struct {
	Crate uint32
	Index uint32
}

func (d DefRef) String() string { return fmt.Sprintf("%d#%d", d.Crate, d.Index) }

// CallProtocol enumerates ABI/calling conventions a function type may carry
// (spec §3 "function types parameterized by {calling-protocol, ...}").
type CallProtocol int

const (
	ProtoRust CallProtocol = iota
	ProtoC
)

// ArgMode enumerates how a formal argument is passed.
type ArgMode int

const (
	ModeByValue ArgMode = iota
	ModeByRef
)

// sty is the structural payload of one interned type. Only the fields
// relevant to Kind are populated; this mirrors the teacher's one-struct-per-
// variant style but collapses the (much larger, open) variant set of this
// spec into a single tagged struct to keep the interner's dedup key simple
// and total.
type sty struct {
	kind Kind

	width    Width  // scalar widths
	region   Region // KRef
	elem     TypeID // KBox/KUnique/KRef/KRawPtr/KVec/KArray/KPtr
	arrayLen int    // KArray

	elems      []TypeID // KTuple
	fieldNames []string // KRecord
	fieldTypes []TypeID // KRecord

	def  DefRef   // KStruct/KEnum/KTraitObject/KResource/KTypeParam
	args []TypeID // KStruct/KEnum: type-argument list

	ordinal int // KTypeParam

	// KFn
	proto    CallProtocol
	params   []TypeID
	modes    []ArgMode
	ret      TypeID
	pure     bool
	variadic bool

	// inference variables
	varID int
}

func (s *sty) key() string {
	switch s.kind {
	case KBool, KF32, KF64, KChar, KNil, KBottom, KErrorSentinel, KString, KPtr:
		return fmt.Sprintf("%d", s.kind)
	case KInt, KUInt:
		return fmt.Sprintf("%d:%d", s.kind, s.width)
	case KBox, KUnique, KRawPtr:
		return fmt.Sprintf("%d:%d", s.kind, s.elem)
	case KRef:
		return fmt.Sprintf("%d:%d:%s", s.kind, s.elem, s.region.Key())
	case KVec:
		return fmt.Sprintf("%d:%d", s.kind, s.elem)
	case KArray:
		return fmt.Sprintf("%d:%d:%d", s.kind, s.elem, s.arrayLen)
	case KTuple:
		return fmt.Sprintf("%d:%v", s.kind, s.elems)
	case KRecord:
		return fmt.Sprintf("%d:%v:%v", s.kind, s.fieldNames, s.fieldTypes)
	case KStruct, KEnum, KTraitObject, KResource:
		return fmt.Sprintf("%d:%d:%d:%v", s.kind, s.def.Crate, s.def.Index, s.args)
	case KTypeParam:
		return fmt.Sprintf("%d:%d:%d:%d", s.kind, s.def.Crate, s.def.Index, s.ordinal)
	case KFn:
		return fmt.Sprintf("%d:%d:%v:%v:%d:%v:%v", s.kind, s.proto, s.params, s.modes, s.ret, s.pure, s.variadic)
	case KInferGeneral, KInferInt, KInferFloat:
		return fmt.Sprintf("%d:%d", s.kind, s.varID)
	default:
		return fmt.Sprintf("%d", s.kind)
	}
}

func (k Kind) String() string {
	names := map[Kind]string{
		KBool: "bool", KInt: "int", KUInt: "uint", KF32: "f32", KF64: "f64",
		KChar: "char", KNil: "()", KBottom: "!", KErrorSentinel: "<error>",
		KBox: "box", KUnique: "unique", KRef: "&", KRawPtr: "*",
		KTuple: "tuple", KRecord: "record", KVec: "vec", KArray: "array",
		KString: "str", KPtr: "ptr", KStruct: "struct", KEnum: "enum",
		KTraitObject: "dyn", KResource: "resource", KFn: "fn",
		KTypeParam: "typaram", KInferGeneral: "?", KInferInt: "?int", KInferFloat: "?float",
	}
	if n, ok := names[k]; ok {
		return n
	}
	return "?unknown"
}
