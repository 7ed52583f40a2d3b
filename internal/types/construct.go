package types

// Constructor helpers. These are the only supported way to obtain a TypeID:
// every call goes through Store.intern so structural equality is decided
// once, at construction (spec §3 "Interning" invariant).

func (s *Store) Bool() TypeID           { return s.intern(&sty{kind: KBool}) }
func (s *Store) Int(w Width) TypeID     { return s.intern(&sty{kind: KInt, width: w}) }
func (s *Store) UInt(w Width) TypeID    { return s.intern(&sty{kind: KUInt, width: w}) }
func (s *Store) F32() TypeID            { return s.intern(&sty{kind: KF32}) }
func (s *Store) F64() TypeID            { return s.intern(&sty{kind: KF64}) }
func (s *Store) Char() TypeID           { return s.intern(&sty{kind: KChar}) }
func (s *Store) Nil() TypeID            { return s.intern(&sty{kind: KNil}) }
func (s *Store) Bottom() TypeID         { return s.intern(&sty{kind: KBottom}) }
func (s *Store) ErrorSentinel() TypeID  { return s.intern(&sty{kind: KErrorSentinel}) }
func (s *Store) Str() TypeID            { return s.intern(&sty{kind: KString}) }

func (s *Store) Box(elem TypeID) TypeID    { return s.intern(&sty{kind: KBox, elem: elem}) }
func (s *Store) Unique(elem TypeID) TypeID { return s.intern(&sty{kind: KUnique, elem: elem}) }
func (s *Store) Ref(r Region, elem TypeID) TypeID {
	return s.intern(&sty{kind: KRef, region: r, elem: elem})
}
func (s *Store) RawPtr(elem TypeID) TypeID { return s.intern(&sty{kind: KRawPtr, elem: elem}) }
func (s *Store) Vec(elem TypeID) TypeID    { return s.intern(&sty{kind: KVec, elem: elem}) }
func (s *Store) Array(elem TypeID, n int) TypeID {
	return s.intern(&sty{kind: KArray, elem: elem, arrayLen: n})
}
func (s *Store) Tuple(elems ...TypeID) TypeID {
	cp := append([]TypeID(nil), elems...)
	return s.intern(&sty{kind: KTuple, elems: cp})
}
func (s *Store) Record(names []string, fields []TypeID) TypeID {
	return s.intern(&sty{kind: KRecord, fieldNames: append([]string(nil), names...), fieldTypes: append([]TypeID(nil), fields...)})
}

func (s *Store) Struct(def DefRef, args ...TypeID) TypeID {
	return s.intern(&sty{kind: KStruct, def: def, args: append([]TypeID(nil), args...)})
}
func (s *Store) Enum(def DefRef, args ...TypeID) TypeID {
	return s.intern(&sty{kind: KEnum, def: def, args: append([]TypeID(nil), args...)})
}
func (s *Store) TraitObject(def DefRef) TypeID { return s.intern(&sty{kind: KTraitObject, def: def}) }
func (s *Store) Resource(def DefRef) TypeID    { return s.intern(&sty{kind: KResource, def: def}) }

func (s *Store) TypeParam(def DefRef, ordinal int) TypeID {
	return s.intern(&sty{kind: KTypeParam, def: def, ordinal: ordinal})
}

func (s *Store) Fn(proto CallProtocol, params []TypeID, modes []ArgMode, ret TypeID, pure, variadic bool) TypeID {
	return s.intern(&sty{
		kind: KFn, proto: proto,
		params: append([]TypeID(nil), params...), modes: append([]ArgMode(nil), modes...),
		ret: ret, pure: pure, variadic: variadic,
	})
}

var inferCounter int

// NewInferVar mints a fresh inference variable of the given kind. The three
// kinds (general/integer/float) each get their own counter space in the
// Inference Engine (internal/infer), which keys its three union-find tables
// by (kind, varID).
func (s *Store) NewInferVar(kind Kind) TypeID {
	inferCounter++
	return s.intern(&sty{kind: kind, varID: inferCounter})
}

// VarID returns the inference-variable id of id, or (0, false) if id is not
// an inference variable.
func (s *Store) VarID(id TypeID) (int, bool) {
	t := s.lookup(id)
	if t == nil {
		return 0, false
	}
	switch t.kind {
	case KInferGeneral, KInferInt, KInferFloat:
		return t.varID, true
	default:
		return 0, false
	}
}

// Elem returns the element type of a box/unique/ref/raw-ptr/vec/array type.
func (s *Store) Elem(id TypeID) (TypeID, bool) {
	t := s.lookup(id)
	if t == nil {
		return InvalidType, false
	}
	switch t.kind {
	case KBox, KUnique, KRef, KRawPtr, KVec, KArray:
		return t.elem, true
	default:
		return InvalidType, false
	}
}

// RegionOf returns the region of a KRef type.
func (s *Store) RegionOf(id TypeID) (Region, bool) {
	t := s.lookup(id)
	if t == nil || t.kind != KRef {
		return Region{}, false
	}
	return t.region, true
}

// TupleElems returns the element types of a KTuple type.
func (s *Store) TupleElems(id TypeID) ([]TypeID, bool) {
	t := s.lookup(id)
	if t == nil || t.kind != KTuple {
		return nil, false
	}
	return t.elems, true
}

// NominalDef returns the definition and type-argument list of a
// struct/enum/trait-object/resource type.
func (s *Store) NominalDef(id TypeID) (DefRef, []TypeID, bool) {
	t := s.lookup(id)
	if t == nil {
		return DefRef{}, nil, false
	}
	switch t.kind {
	case KStruct, KEnum, KTraitObject, KResource:
		return t.def, t.args, true
	default:
		return DefRef{}, nil, false
	}
}

// FnParts decomposes a KFn type into its signature pieces.
func (s *Store) FnParts(id TypeID) (params []TypeID, ret TypeID, pure, variadic bool, ok bool) {
	t := s.lookup(id)
	if t == nil || t.kind != KFn {
		return nil, InvalidType, false, false, false
	}
	return t.params, t.ret, t.pure, t.variadic, true
}

// TypeParamOf returns the owning def and ordinal of a KTypeParam type.
func (s *Store) TypeParamOf(id TypeID) (DefRef, int, bool) {
	t := s.lookup(id)
	if t == nil || t.kind != KTypeParam {
		return DefRef{}, 0, false
	}
	return t.def, t.ordinal, true
}

// ArrayLen returns the declared length of a KArray type.
func (s *Store) ArrayLen(id TypeID) (int, bool) {
	t := s.lookup(id)
	if t == nil || t.kind != KArray {
		return 0, false
	}
	return t.arrayLen, true
}
