// Package errors provides the centralized error-code taxonomy for the
// semantic-analysis core. Every diagnostic raised by resolve, infer, check,
// vtable, layout, or lower carries one of these codes so tooling can group,
// filter, and document them without parsing message text.
package errors

// Error code constants, organized by phase. Each constant is the exact
// string surfaced to the session diagnostic sink.
const (
	// ============================================================================
	// Resolver errors (RSV###) — internal/resolve
	// ============================================================================

	// RSV001 indicates a path could not be resolved in any namespace.
	RSV001 = "RSV001"
	// RSV002 indicates an import cycle was detected (Resolving re-entered).
	RSV002 = "RSV002"
	// RSV003 indicates an import was never used (warning only).
	RSV003 = "RSV003"
	// RSV004 indicates two items in the same namespace/scope share a name.
	RSV004 = "RSV004"
	// RSV005 indicates a closure attempted to capture a type parameter.
	RSV005 = "RSV005"
	// RSV006 indicates a glob-export of items from an external crate, which
	// this core leaves unsupported per spec Open Question 2.
	RSV006 = "RSV006"

	// ============================================================================
	// Type-checking errors (TYK###) — internal/check, internal/infer
	// ============================================================================

	// TYK001 indicates a required sub-typing or equality constraint failed.
	TYK001 = "TYK001"
	// TYK002 indicates a receiver has no method of the given name after autoderef.
	TYK002 = "TYK002"
	// TYK003 indicates more than one method candidate remained after filtering.
	TYK003 = "TYK003"
	// TYK004 indicates a call or generic instantiation had the wrong arity.
	TYK004 = "TYK004"
	// TYK005 indicates a type that must be Copy is used where Copy is required.
	TYK005 = "TYK005"
	// TYK006 indicates a type that must be droppable lacks drop glue where required.
	TYK006 = "TYK006"
	// TYK007 indicates a dynamically-sized type is used where a sized type is required.
	TYK007 = "TYK007"
	// TYK008 indicates a generic argument does not satisfy a declared trait bound.
	TYK008 = "TYK008"
	// TYK009 indicates an inference variable could not be resolved by the end
	// of its enclosing function body ("type annotations needed").
	TYK009 = "TYK009"
	// TYK010 indicates an invalid explicit `as` cast shape.
	TYK010 = "TYK010"
	// TYK011 indicates a variadic argument of an unsafe-to-pass type.
	TYK011 = "TYK011"

	// ============================================================================
	// Region-solver errors (REG###) — internal/infer
	// ============================================================================

	// REG001 indicates a value is used past the end of its region.
	REG001 = "REG001"

	// ============================================================================
	// Vtable / trait-obligation errors (VTB###) — internal/vtable
	// ============================================================================

	// VTB001 indicates a trait obligation could not be satisfied by any impl.
	VTB001 = "VTB001"
	// VTB002 indicates two impls both satisfy an obligation (coherence violation).
	VTB002 = "VTB002"

	// ============================================================================
	// Layout errors (LAY###) — internal/layout
	// ============================================================================

	// LAY001 indicates a static size was requested for a dynamically-sized type.
	LAY001 = "LAY001"

	// ============================================================================
	// IR-lowering errors (LWR###) — internal/lower
	// ============================================================================

	// LWR001 indicates the lowering pass found a node with no recorded type,
	// violating the "every node has exactly one type" invariant.
	LWR001 = "LWR001"
	// LWR002 indicates a non-exhaustive match reached lowering.
	LWR002 = "LWR002"
	// LWR003 indicates a break or continue reached lowering outside any
	// enclosing loop.
	LWR003 = "LWR003"

	// ============================================================================
	// Internal errors (BUG###) — any phase, always fatal
	// ============================================================================

	// BUG001 indicates an internal invariant failed; always fatal.
	BUG001 = "BUG001"
)

// ErrorInfo provides structured information about an error code.
type ErrorInfo struct {
	Code        string
	Phase       string
	Category    string
	Description string
}

// ErrorRegistry maps error codes to their information.
var ErrorRegistry = map[string]ErrorInfo{
	RSV001: {RSV001, "resolve", "name", "Unresolved name"},
	RSV002: {RSV002, "resolve", "import", "Cyclic import"},
	RSV003: {RSV003, "resolve", "import", "Unused import"},
	RSV004: {RSV004, "resolve", "namespace", "Duplicate definition"},
	RSV005: {RSV005, "resolve", "closure", "Type parameter captured by closure"},
	RSV006: {RSV006, "resolve", "export", "Glob-export of items in external crate is unsupported"},

	TYK001: {TYK001, "typecheck", "type", "Type mismatch"},
	TYK002: {TYK002, "typecheck", "method", "No method found"},
	TYK003: {TYK003, "typecheck", "method", "Ambiguous method"},
	TYK004: {TYK004, "typecheck", "arity", "Arity mismatch"},
	TYK005: {TYK005, "typecheck", "predicate", "Type is not Copy"},
	TYK006: {TYK006, "typecheck", "predicate", "Type is not droppable"},
	TYK007: {TYK007, "typecheck", "predicate", "Type is not statically sized"},
	TYK008: {TYK008, "typecheck", "bounds", "Trait bound not satisfied"},
	TYK009: {TYK009, "typecheck", "inference", "Type annotations needed"},
	TYK010: {TYK010, "typecheck", "cast", "Invalid cast"},
	TYK011: {TYK011, "typecheck", "variadic", "Type unsafe to pass as variadic argument"},

	REG001: {REG001, "infer", "region", "Value used past end of region"},

	VTB001: {VTB001, "vtable", "obligation", "Unsatisfiable trait obligation"},
	VTB002: {VTB002, "vtable", "obligation", "Overlapping trait implementations"},

	LAY001: {LAY001, "layout", "size", "Static size requested for dynamically-sized type"},

	LWR001: {LWR001, "lower", "invariant", "Expression missing a recorded type"},
	LWR002: {LWR002, "lower", "match", "Non-exhaustive match reached lowering"},
	LWR003: {LWR003, "lower", "control-flow", "Break or continue outside loop"},

	BUG001: {BUG001, "bug", "internal", "Internal compiler invariant violated"},
}

// GetErrorInfo returns information about an error code.
func GetErrorInfo(code string) (ErrorInfo, bool) {
	info, exists := ErrorRegistry[code]
	return info, exists
}

// IsResolveError reports whether code belongs to the resolver phase.
func IsResolveError(code string) bool {
	info, exists := GetErrorInfo(code)
	return exists && info.Phase == "resolve"
}

// IsTypeCheckError reports whether code belongs to the type-checking phase
// (includes inference-engine codes, which share the user-facing "typecheck" category).
func IsTypeCheckError(code string) bool {
	info, exists := GetErrorInfo(code)
	return exists && (info.Phase == "typecheck" || info.Phase == "infer")
}

// IsVtableError reports whether code belongs to the trait-obligation solver.
func IsVtableError(code string) bool {
	info, exists := GetErrorInfo(code)
	return exists && info.Phase == "vtable"
}

// IsLayoutError reports whether code belongs to the layout/tydesc phase.
func IsLayoutError(code string) bool {
	info, exists := GetErrorInfo(code)
	return exists && info.Phase == "layout"
}

// IsLowerError reports whether code belongs to the IR-lowering phase.
func IsLowerError(code string) bool {
	info, exists := GetErrorInfo(code)
	return exists && info.Phase == "lower"
}

// IsFatal reports whether code is an internal-bug code, which always aborts
// compilation rather than being recorded and continued past.
func IsFatal(code string) bool {
	return code == BUG001
}
