package types

import "sync"

// Store is the interned representation of all types in a crate (spec §4.A
// Type Store). Entries are created on first request and live for the whole
// compilation (spec §3 "Lifecycles").
//
// Grounded on the teacher's single-process, no-GC type representation; the
// dedup-by-structural-key map below is the idiomatic-Go rendering of
// "intern" that the teacher's original `Equals`-based comparison approach
// only approximated (the teacher never actually interned — this store adds
// the real hash-consing spec §3 requires).
type Store struct {
	mu      sync.Mutex
	byKey   map[string]TypeID
	types   []*sty
	fieldFn FieldLookup // supplied by the crate store / resolver wiring
}

// FieldLookup resolves the field types of a nominal definition, used by
// predicates that must recurse into struct/enum payloads. Layout requires
// looking the definition up rather than a nominal type carrying its field
// types directly (spec §4.A "Nominal types do not contain their field types
// directly").
type FieldLookup func(def DefRef) (fields []TypeID, isEnum bool, variantFields [][]TypeID)

// NewStore creates an empty, ready-to-use type store.
func NewStore(fieldFn FieldLookup) *Store {
	return &Store{
		byKey:   make(map[string]TypeID),
		fieldFn: fieldFn,
	}
}

func (s *Store) intern(v *sty) TypeID {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := v.key()
	if id, ok := s.byKey[k]; ok {
		return id
	}
	id := TypeID(len(s.types))
	s.types = append(s.types, v)
	s.byKey[k] = id
	return id
}

// lookup returns the interned sty behind id, or nil when id is not a handle
// this store issued.
func (s *Store) lookup(id TypeID) *sty {
	s.mu.Lock()
	defer s.mu.Unlock()
	if int(id) < 0 || int(id) >= len(s.types) {
		return nil
	}
	return s.types[id]
}

// KindOf returns the Kind tag of an interned type.
func (s *Store) KindOf(id TypeID) Kind {
	t := s.lookup(id)
	if t == nil {
		return KErrorSentinel
	}
	return t.kind
}

// String renders an interned type back to a human-readable form, used for
// diagnostics (spec §7 "type mismatch: carries the expected and found types").
func (s *Store) String(id TypeID) string {
	t := s.lookup(id)
	if t == nil {
		return "<invalid>"
	}
	switch t.kind {
	case KBool, KF32, KF64, KChar, KNil, KBottom, KErrorSentinel, KString, KPtr:
		return t.kind.String()
	case KInt, KUInt:
		return t.kind.String() + widthSuffix(t.width)
	case KBox:
		return "@" + s.String(t.elem)
	case KUnique:
		return "~" + s.String(t.elem)
	case KRef:
		return "&" + t.region.Key() + " " + s.String(t.elem)
	case KRawPtr:
		return "*" + s.String(t.elem)
	case KVec:
		return "[" + s.String(t.elem) + "]"
	case KArray:
		return "[" + s.String(t.elem) + "; N]"
	case KTuple:
		out := "("
		for i, e := range t.elems {
			if i > 0 {
				out += ", "
			}
			out += s.String(e)
		}
		return out + ")"
	case KStruct, KEnum, KTraitObject, KResource:
		return defName(t.def)
	case KTypeParam:
		return defName(t.def)
	case KFn:
		return "fn(...)"
	case KInferGeneral:
		return "?"
	case KInferInt:
		return "?int"
	case KInferFloat:
		return "?float"
	default:
		return "record"
	}
}

func widthSuffix(w Width) string {
	switch w {
	case W8:
		return "8"
	case W16:
		return "16"
	case W32:
		return "32"
	case W64:
		return "64"
	default:
		return "ptr"
	}
}

// defName is intentionally indirection-free: this package has no dependency
// on a name table for DefRef, so diagnostics reference the def by id; the
// checker (internal/check) upgrades this to a source name when printing.
func defName(d DefRef) string {
	return "def#" + itoa(int(d.Index))
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
