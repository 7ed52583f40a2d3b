package cratestore

import (
	"testing"

	"github.com/rustsem/corec/internal/ast"
	"github.com/rustsem/corec/internal/types"
)

func TestRegisterRequiresFrozenCrate(t *testing.T) {
	data := NewCrateData(1, "std")
	store := NewStore()
	if err := store.Register(data); err == nil {
		t.Fatalf("registering an unfrozen crate should fail")
	}
	data.Freeze()
	if err := store.Register(data); err != nil {
		t.Fatalf("registering a frozen crate should succeed: %v", err)
	}
}

func TestSixOperations(t *testing.T) {
	data := NewCrateData(1, "std")
	def := ast.Def{ID: ast.DefID{Crate: 1, Index: 5}, Kind: ast.DefFn, Name: "len"}
	ts := types.NewStore(nil)
	sig := ts.Fn(types.ProtoRust, nil, nil, ts.UInt(types.WPointer), true, false)

	if err := data.AddDef("vec::len", def, "_ZN3std3vec3len", sig, []string{"vec", "len"}); err != nil {
		t.Fatal(err)
	}
	data.SetTypeParamCount(def.ID, 1)
	data.Freeze()

	store := NewStore()
	if err := store.Register(data); err != nil {
		t.Fatal(err)
	}

	defs, err := store.LookupDefs(1, []string{"vec", "len"})
	if err != nil || len(defs) != 1 {
		t.Fatalf("LookupDefs: %v, %v", defs, err)
	}
	if sym, err := store.GetSymbol(def.ID); err != nil || sym != "_ZN3std3vec3len" {
		t.Fatalf("GetSymbol: %v, %v", sym, err)
	}
	if got, err := store.GetType(def.ID); err != nil || got != sig {
		t.Fatalf("GetType: %v, %v", got, err)
	}
	if p, err := store.GetPath(def.ID); err != nil || p[0] != "vec" {
		t.Fatalf("GetPath: %v, %v", p, err)
	}
	if n, err := store.GetTypeParamCount(def.ID); err != nil || n != 1 {
		t.Fatalf("GetTypeParamCount: %v, %v", n, err)
	}
	if _, err := store.GetImplsForMod(def.ID, ""); err != nil {
		t.Fatalf("GetImplsForMod: %v", err)
	}
}

func TestAddDefAfterFreezeFails(t *testing.T) {
	data := NewCrateData(2, "core")
	data.Freeze()
	def := ast.Def{ID: ast.DefID{Crate: 2, Index: 1}, Kind: ast.DefConst, Name: "MAX"}
	if err := data.AddDef("MAX", def, "sym", types.InvalidType, []string{"MAX"}); err == nil {
		t.Fatalf("AddDef should fail once the crate is frozen")
	}
}
