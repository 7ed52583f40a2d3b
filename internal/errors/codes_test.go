package errors

import "testing"

func TestErrorCodeTaxonomy(t *testing.T) {
	tests := []struct {
		name  string
		code  string
		phase string
	}{
		{"RSV001", RSV001, "resolve"},
		{"RSV002", RSV002, "resolve"},
		{"TYK001", TYK001, "typecheck"},
		{"TYK009", TYK009, "typecheck"},
		{"REG001", REG001, "infer"},
		{"VTB001", VTB001, "vtable"},
		{"LAY001", LAY001, "layout"},
		{"LWR001", LWR001, "lower"},
		{"BUG001", BUG001, "bug"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, ok := GetErrorInfo(tt.code)
			if !ok {
				t.Fatalf("code %s not registered", tt.code)
			}
			if info.Phase != tt.phase {
				t.Errorf("code %s: phase = %q, want %q", tt.code, info.Phase, tt.phase)
			}
		})
	}
}

func TestIsFatal(t *testing.T) {
	if !IsFatal(BUG001) {
		t.Errorf("BUG001 should be fatal")
	}
	if IsFatal(TYK001) {
		t.Errorf("TYK001 should not be fatal")
	}
}

func TestPhasePredicates(t *testing.T) {
	if !IsResolveError(RSV001) {
		t.Errorf("RSV001 should be a resolve error")
	}
	if !IsTypeCheckError(TYK001) {
		t.Errorf("TYK001 should be a typecheck error")
	}
	if !IsTypeCheckError(REG001) {
		t.Errorf("REG001 should count as typecheck-phase for user reporting")
	}
	if !IsVtableError(VTB001) {
		t.Errorf("VTB001 should be a vtable error")
	}
	if !IsLayoutError(LAY001) {
		t.Errorf("LAY001 should be a layout error")
	}
	if !IsLowerError(LWR001) {
		t.Errorf("LWR001 should be a lower error")
	}
}
