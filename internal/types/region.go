package types

import "fmt"

// RegionKind enumerates the lifetime flavors spec §3 "Regions" requires.
type RegionKind int

const (
	RegionStatic RegionKind = iota
	RegionFree               // named, scoped to a block
	RegionScope               // matches a block-id
	RegionBound                // universally quantified within a fn signature
	RegionInferVar
)

// Region denotes a lifetime attached to a reference type. Region variables
// are created during checking and must be fully resolved by the region
// solver before the typed AST reaches IR lowering (spec §3 invariant:
// "Region variables never appear in the final typed AST exposed to H").
type Region struct {
	Kind    RegionKind
	Name    string // RegionFree
	BlockID uint32 // RegionScope
	VarID   int    // RegionInferVar
}

// Key returns a canonical string used by the type interner's dedup key.
func (r Region) Key() string {
	switch r.Kind {
	case RegionStatic:
		return "'static"
	case RegionFree:
		return "'" + r.Name
	case RegionScope:
		return fmt.Sprintf("'scope%d", r.BlockID)
	case RegionBound:
		return "'bound"
	case RegionInferVar:
		return fmt.Sprintf("'_%d", r.VarID)
	default:
		return "'?"
	}
}

func (r Region) String() string { return r.Key() }

// IsResolved reports whether this region is a concrete region, i.e. not an
// unresolved inference variable. Checked by the end-of-body region solver
// and by the invariant guarding entry into internal/lower.
func (r Region) IsResolved() bool { return r.Kind != RegionInferVar }

// Static is the 'static region.
var Static = Region{Kind: RegionStatic}

// NewFreeRegion names a lexically-scoped region.
func NewFreeRegion(name string) Region { return Region{Kind: RegionFree, Name: name} }

// NewScopeRegion ties a region to an enclosing block.
func NewScopeRegion(blockID uint32) Region { return Region{Kind: RegionScope, BlockID: blockID} }

// Bound is the region of a universally-quantified fn-signature lifetime.
var Bound = Region{Kind: RegionBound}
