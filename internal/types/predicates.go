package types

// Predicates required by spec §4.A. Nominal types do not carry their field
// types directly, so any predicate that must look inside a struct/enum asks
// the Store's FieldLookup (wired to the Crate Store / local def table by
// the crate driver).

// HasDynamicSize reports whether a type's size can only be known at
// runtime: vectors, strings, trait objects, and any generic (parametric)
// nominal type.
func (s *Store) HasDynamicSize(id TypeID) bool {
	t := s.lookup(id)
	if t == nil {
		return false
	}
	switch t.kind {
	case KVec, KString, KTraitObject:
		return true
	case KStruct, KEnum, KResource:
		if s.ContainsParameters(id) {
			return true
		}
		return s.nominalHasDynamicField(t)
	default:
		return false
	}
}

func (s *Store) nominalHasDynamicField(t *sty) bool {
	if s.fieldFn == nil {
		return false
	}
	fields, isEnum, variants := s.fieldFn(t.def)
	if isEnum {
		for _, v := range variants {
			for _, f := range v {
				if s.HasDynamicSize(f) {
					return true
				}
			}
		}
		return false
	}
	for _, f := range fields {
		if s.HasDynamicSize(f) {
			return true
		}
	}
	return false
}

// ContainsParameters reports whether a type mentions any generic type
// parameter, directly or transitively through its arguments.
func (s *Store) ContainsParameters(id TypeID) bool {
	t := s.lookup(id)
	if t == nil {
		return false
	}
	switch t.kind {
	case KTypeParam:
		return true
	case KBox, KUnique, KRef, KRawPtr, KVec, KArray:
		return s.ContainsParameters(t.elem)
	case KTuple:
		for _, e := range t.elems {
			if s.ContainsParameters(e) {
				return true
			}
		}
		return false
	case KRecord:
		for _, e := range t.fieldTypes {
			if s.ContainsParameters(e) {
				return true
			}
		}
		return false
	case KStruct, KEnum:
		for _, a := range t.args {
			if s.ContainsParameters(a) {
				return true
			}
		}
		return false
	case KFn:
		for _, p := range t.params {
			if s.ContainsParameters(p) {
				return true
			}
		}
		return s.ContainsParameters(t.ret)
	default:
		return false
	}
}

// IsScalar reports whether a type is a machine-primitive scalar.
func (s *Store) IsScalar(id TypeID) bool {
	switch s.KindOf(id) {
	case KBool, KInt, KUInt, KF32, KF64, KChar, KNil:
		return true
	default:
		return false
	}
}

// IsSequence reports whether a type is a vector, array or string (the two
// sequence aggregates spec §3 names, plus strings).
func (s *Store) IsSequence(id TypeID) bool {
	switch s.KindOf(id) {
	case KVec, KArray, KString:
		return true
	default:
		return false
	}
}

// OwnsHeapMemory reports whether a value of this type directly owns a heap
// allocation (box, unique pointer, vector, string) — used by the layout
// component to decide whether copy-glue must bump a refcount.
func (s *Store) OwnsHeapMemory(id TypeID) bool {
	t := s.lookup(id)
	if t == nil {
		return false
	}
	switch t.kind {
	case KBox, KUnique, KVec, KString:
		return true
	case KStruct, KEnum:
		return s.nominalOwnsHeap(t)
	case KTuple:
		for _, e := range t.elems {
			if s.OwnsHeapMemory(e) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func (s *Store) nominalOwnsHeap(t *sty) bool {
	if s.fieldFn == nil {
		return false
	}
	fields, isEnum, variants := s.fieldFn(t.def)
	if isEnum {
		for _, v := range variants {
			for _, f := range v {
				if s.OwnsHeapMemory(f) {
					return true
				}
			}
		}
		return false
	}
	for _, f := range fields {
		if s.OwnsHeapMemory(f) {
			return true
		}
	}
	return false
}

// NeedsDrop reports whether a value of this type requires running drop glue
// on scope exit: it owns heap memory, is a Resource (registered destructor),
// or transitively contains such a field.
func (s *Store) NeedsDrop(id TypeID) bool {
	if s.KindOf(id) == KResource {
		return true
	}
	if s.OwnsHeapMemory(id) {
		return true
	}
	t := s.lookup(id)
	if t == nil {
		return false
	}
	if t.kind == KStruct || t.kind == KEnum {
		if s.fieldFn == nil {
			return false
		}
		fields, isEnum, variants := s.fieldFn(t.def)
		if isEnum {
			for _, v := range variants {
				for _, f := range v {
					if s.NeedsDrop(f) {
						return true
					}
				}
			}
			return false
		}
		for _, f := range fields {
			if s.NeedsDrop(f) {
				return true
			}
		}
	}
	return false
}

// IsCopyable reports whether a value of this type may be duplicated by a
// plain bitwise copy (scalars, raw pointers, tuples/structs of copyable
// fields) as opposed to requiring move semantics. Anything that NeedsDrop
// is never Copy (spec §7 "not copyable" error).
func (s *Store) IsCopyable(id TypeID) bool {
	if s.NeedsDrop(id) {
		return false
	}
	t := s.lookup(id)
	if t == nil {
		return false
	}
	switch t.kind {
	case KBool, KInt, KUInt, KF32, KF64, KChar, KNil, KRawPtr, KRef, KFn, KTypeParam:
		return true
	case KTuple:
		for _, e := range t.elems {
			if !s.IsCopyable(e) {
				return false
			}
		}
		return true
	case KStruct:
		if s.fieldFn == nil {
			return true
		}
		fields, _, _ := s.fieldFn(t.def)
		for _, f := range fields {
			if !s.IsCopyable(f) {
				return false
			}
		}
		return true
	case KEnum:
		if s.fieldFn == nil {
			return true
		}
		_, _, variants := s.fieldFn(t.def)
		for _, v := range variants {
			for _, f := range v {
				if !s.IsCopyable(f) {
					return false
				}
			}
		}
		return true
	default:
		return false
	}
}
