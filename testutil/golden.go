// Package testutil provides golden-file helpers for regression tests over
// the core's diagnostics and lowered IR.
//
// Adapted from the teacher's testutil/golden.go: the same
// marshal-deterministically / compare-or-update-under-env-var shape, pared
// down to one entry point (CompareWithGolden), which no test in this module
// calls — the teacher's AssertGoldenJSON/CreateGoldenTest/
// LoadGoldenFile/DiffJSON helpers existed for AILANG's broader value/effect
// golden suite and have no caller here.
package testutil

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// UpdateGoldens controls whether CompareWithGolden overwrites the golden
// file instead of comparing against it. Set via UPDATE_GOLDENS=true.
var UpdateGoldens = os.Getenv("UPDATE_GOLDENS") == "true"

// GoldenMeta captures platform information for reproducibility.
type GoldenMeta struct {
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GoldenFile is the on-disk envelope around one golden test's data.
type GoldenFile struct {
	Meta GoldenMeta  `json:"meta"`
	Data interface{} `json:"data"`
}

// GetGoldenPath returns the path to a golden file for a feature/name pair,
// e.g. GetGoldenPath("lower", "enum-tag-switch").
func GetGoldenPath(feature, name string) string {
	return filepath.Join("testdata", feature, name+".golden.json")
}

// CompareWithGolden compares actual (typically a []*errors.Report or a
// summarized lower.Module) against the recorded golden file, updating it in
// place when UPDATE_GOLDENS=true.
func CompareWithGolden(t *testing.T, feature, name string, actual interface{}) {
	t.Helper()

	goldenPath := GetGoldenPath(feature, name)
	goldenData := GoldenFile{
		Meta: GoldenMeta{GoVersion: runtime.Version(), OS: runtime.GOOS, Arch: runtime.GOARCH},
		Data: actual,
	}

	actualJSON, err := marshalDeterministic(goldenData)
	if err != nil {
		t.Fatalf("failed to marshal actual data: %v", err)
	}

	if UpdateGoldens {
		if err := os.MkdirAll(filepath.Dir(goldenPath), 0755); err != nil {
			t.Fatalf("failed to create golden directory: %v", err)
		}
		if err := os.WriteFile(goldenPath, actualJSON, 0644); err != nil {
			t.Fatalf("failed to write golden file: %v", err)
		}
		t.Logf("updated golden file: %s", goldenPath)
		return
	}

	expectedJSON, err := os.ReadFile(goldenPath)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("golden file does not exist: %s\nrun with UPDATE_GOLDENS=true to create", goldenPath)
		}
		t.Fatalf("failed to read golden file: %v", err)
	}

	if !jsonEqual(actualJSON, expectedJSON) {
		t.Errorf("golden file mismatch for %s/%s\nexpected:\n%s\nactual:\n%s", feature, name, expectedJSON, actualJSON)
	}
}

func marshalDeterministic(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return json.MarshalIndent(m, "", "  ")
}

func jsonEqual(a, b []byte) bool {
	var aData, bData interface{}
	if err := json.Unmarshal(a, &aData); err != nil {
		return false
	}
	if err := json.Unmarshal(b, &bData); err != nil {
		return false
	}
	aJSON, _ := json.Marshal(aData)
	bJSON, _ := json.Marshal(bData)
	return bytes.Equal(aJSON, bJSON)
}
