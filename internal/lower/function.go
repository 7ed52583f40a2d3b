package lower

import (
	"github.com/rustsem/corec/internal/layout"
	"github.com/rustsem/corec/internal/types"
)

// PreEntry enumerates the four mandatory blocks every lowered function
// begins with, chained in this exact order before the user-level entry
// block (spec §4.H: "Every function gets four pre-entry blocks:
// static-allocas, copy-args, derived-tydescs, dynamic-allocas").
type PreEntry int

const (
	PreStaticAllocas PreEntry = iota
	PreCopyArgs
	PreDerivedTydescs
	PreDynamicAllocas
)

func (p PreEntry) String() string {
	switch p {
	case PreStaticAllocas:
		return "static-allocas"
	case PreCopyArgs:
		return "copy-args"
	case PreDerivedTydescs:
		return "derived-tydescs"
	case PreDynamicAllocas:
		return "dynamic-allocas"
	default:
		return "entry"
	}
}

// Param is one formal argument of a lowered function, carrying whether it
// is passed by pointer (structural/dynamically-sized) or by value
// (immediate), per spec §4.H.
type Param struct {
	Name     string
	Ty       types.TypeID
	ByPtr    bool
	ValueRef ValueID
}

// Function is one lowered function: the four chained pre-entry blocks
// followed by the user-level entry block and everything it branches to.
type Function struct {
	Symbol string
	Params []Param
	RetTy  types.TypeID

	// PreBlocks[PreStaticAllocas] is always block 0 and unconditionally
	// branches to PreBlocks[PreCopyArgs], and so on, terminating in
	// EntryBlock — the fixed chain spec §4.H mandates.
	PreBlocks [4]*Block
	Blocks    []*Block // EntryBlock is Blocks[0]; Blocks[i] has BlockID i+4, after the pre-entry blocks

	nextValue ValueID
}

// Builder accumulates a Function's blocks and instructions. One Builder
// lowers exactly one function body, mirroring the teacher's single-pass
// elaborator shape (internal/elaborate/core.go: one Elaborator per
// compilation unit, recursive-descent emission).
type Builder struct {
	fn      *Function
	cur     *Block
	blockOf map[BlockID]*Block
}

// NewBuilder creates a function skeleton with its four pre-entry blocks
// already wired in sequence, ready to receive the user-level entry block.
func NewBuilder(symbol string, params []Param, retTy types.TypeID) *Builder {
	fn := &Function{Symbol: symbol, Params: params, RetTy: retTy}
	b := &Builder{fn: fn, blockOf: make(map[BlockID]*Block)}

	for i, name := range [...]PreEntry{PreStaticAllocas, PreCopyArgs, PreDerivedTydescs, PreDynamicAllocas} {
		blk := &Block{ID: BlockID(i), Name: name.String()}
		fn.PreBlocks[i] = blk
		b.blockOf[blk.ID] = blk
	}
	for i := 0; i < 3; i++ {
		fn.PreBlocks[i].Term = &Br{Target: fn.PreBlocks[i+1].ID}
	}
	entry := b.NewBlock("entry")
	fn.PreBlocks[PreDynamicAllocas].Term = &Br{Target: entry.ID}
	b.cur = entry
	return b
}

// NewBlock allocates a fresh block, not yet wired to any predecessor; the
// caller is responsible for terminating whatever block preceded it with a
// Br/CondBr/Switch targeting it.
func (b *Builder) NewBlock(name string) *Block {
	id := BlockID(len(b.fn.PreBlocks) + len(b.fn.Blocks))
	blk := &Block{ID: id, Name: name}
	b.fn.Blocks = append(b.fn.Blocks, blk)
	b.blockOf[id] = blk
	return blk
}

// SetCurrent redirects subsequent Emit calls to blk.
func (b *Builder) SetCurrent(blk *Block) { b.cur = blk }

// Current returns the block Emit currently appends to.
func (b *Builder) Current() *Block { return b.cur }

func (b *Builder) fresh() ValueID {
	b.fn.nextValue++
	return b.fn.nextValue
}

// Emit appends inst to the current block and returns the ValueID inst
// already carries (inst.Defines()); it assigns no id itself, so callers
// stamp instructions with fresh() before emitting them.
func (b *Builder) Emit(inst Inst) ValueID {
	b.cur.Insts = append(b.cur.Insts, inst)
	return inst.Defines()
}

// EmitAlloca appends an Alloca to the static-allocas or dynamic-allocas
// pre-entry block depending on whether of has a static size (spec §4.H:
// "Locals of static size go into static-allocas; arrays whose size is known
// only dynamically go into dynamic-allocas").
func (b *Builder) EmitAlloca(name string, of types.TypeID, hasStaticSize bool) ValueID {
	id := b.fresh()
	a := &Alloca{Node: Node{ID: id, Ty: of}, Name: name, Of: of}
	target := b.fn.PreBlocks[PreStaticAllocas]
	if !hasStaticSize {
		target = b.fn.PreBlocks[PreDynamicAllocas]
	}
	target.Insts = append(target.Insts, a)
	return id
}

// EmitDerivedTydesc records a tydesc-construction instruction in the
// derived-tydescs pre-entry block for a generic local or call-site type
// argument (spec §4.H "tydescs for generic types go into derived-tydescs").
func (b *Builder) EmitDerivedTydesc(inst Inst) ValueID {
	id := b.fresh()
	b.fn.PreBlocks[PreDerivedTydescs].Insts = append(b.fn.PreBlocks[PreDerivedTydescs].Insts, inst)
	return id
}

// Terminate sets the current block's terminator. A block may be terminated
// only once; callers must SetCurrent a fresh block afterward.
func (b *Builder) Terminate(t Terminator) {
	b.cur.Term = t
}

// Finish returns the completed Function. Callers must ensure every block
// reachable from the pre-entry chain has a non-nil terminator.
func (b *Builder) Finish() *Function { return b.fn }

func (b *Builder) freshValue(ty types.TypeID) (ValueID, Node) {
	id := b.fresh()
	return id, Node{ID: id, Ty: ty}
}

// Module collects every lowered Function plus the side tables spec §6
// requires the backend to consume alongside the IR itself.
type Module struct {
	Functions []*Function
	Tydescs   map[string]*layout.Tydesc // symbol -> static tydesc for monomorphic types referenced
}
