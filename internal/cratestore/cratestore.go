// Package cratestore implements the Crate Store (spec §4.B): access to
// externally compiled crates' definitions, method tables, symbol names, and
// discriminants. Treated as a pure, instantaneous reader over memory-mapped
// metadata (spec §5) — this package does not perform any I/O itself; a
// MetadataEncoder supplies the bytes and this package only indexes them.
//
// Grounded on the teacher's internal/iface (an in-memory, frozen-after-build
// module interface: exports, constructor schemes, exported type names) and
// internal/loader (on-disk module loading driving iface construction),
// generalized from "one module's exported bindings" to "one crate's exported
// items across all three namespaces plus impl tables", and from the
// teacher's single flat Exports map into the six explicit operations spec §6
// names.
package cratestore

import (
	"fmt"
	"sync"

	"github.com/rustsem/corec/internal/ast"
	"github.com/rustsem/corec/internal/types"
)

// ImplRecord describes one impl block visible to a consumer crate.
type ImplRecord struct {
	Def      ast.DefID
	Trait    *ast.Path // nil for inherent impls
	SelfType types.TypeID
	Methods  map[string]ast.DefID
}

// CrateData is the frozen, in-memory representation of one compiled crate's
// metadata. Built once by a loader (out of scope here) and never mutated
// after Freeze, mirroring the teacher's builtin_freeze.go pattern of sealing
// an Iface once construction completes.
type CrateData struct {
	mu      sync.RWMutex
	index   ast.CrateIndex
	name    string
	frozen  bool
	defs    map[string][]ast.Def // path string -> candidate defs (namespaces mixed, filtered by caller)
	symbols map[ast.DefID]string
	types   map[ast.DefID]types.TypeID
	paths   map[ast.DefID][]string
	impls   map[ast.DefID][]ImplRecord // keyed by the nominal type's def (module-or-type)
	tparams map[ast.DefID]int
}

// NewCrateData creates an empty, writable crate-metadata record.
func NewCrateData(index ast.CrateIndex, name string) *CrateData {
	return &CrateData{
		index:   index,
		name:    name,
		defs:    make(map[string][]ast.Def),
		symbols: make(map[ast.DefID]string),
		types:   make(map[ast.DefID]types.TypeID),
		paths:   make(map[ast.DefID][]string),
		impls:   make(map[ast.DefID][]ImplRecord),
		tparams: make(map[ast.DefID]int),
	}
}

// AddDef registers one exported def under its dotted path. Must be called
// before Freeze.
func (c *CrateData) AddDef(path string, def ast.Def, symbol string, typ types.TypeID, segments []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.frozen {
		return fmt.Errorf("cratestore: cannot add def to frozen crate %q", c.name)
	}
	c.defs[path] = append(c.defs[path], def)
	c.symbols[def.ID] = symbol
	c.types[def.ID] = typ
	c.paths[def.ID] = segments
	return nil
}

// AddImpls registers the impls found on a nominal type or inherent module.
func (c *CrateData) AddImpls(owner ast.DefID, impls []ImplRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.frozen {
		return fmt.Errorf("cratestore: cannot add impls to frozen crate %q", c.name)
	}
	c.impls[owner] = append(c.impls[owner], impls...)
	return nil
}

// SetTypeParamCount records the generic arity of def.
func (c *CrateData) SetTypeParamCount(def ast.DefID, n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tparams[def] = n
}

// Freeze seals the crate record against further writes, matching the
// teacher's builtin-interface freeze discipline: once a crate is loaded, its
// metadata is immutable for the rest of the compilation (spec §5 "Crate
// Store ... is a pure reader").
func (c *CrateData) Freeze() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frozen = true
}

// Store indexes a set of CrateData records and implements the six Crate
// Store operations of spec §6.
type Store struct {
	mu     sync.RWMutex
	crates map[ast.CrateIndex]*CrateData
}

// NewStore creates an empty crate store.
func NewStore() *Store {
	return &Store{crates: make(map[ast.CrateIndex]*CrateData)}
}

// Register adds a frozen crate to the store. Registering an unfrozen crate
// is a programmer error (bug, spec §7) since nothing downstream may assume
// its metadata can still change.
func (s *Store) Register(data *CrateData) error {
	if !data.frozen {
		return fmt.Errorf("cratestore: BUG001: registering an unfrozen crate %q", data.name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.crates[data.index] = data
	return nil
}

func (s *Store) crate(idx ast.CrateIndex) (*CrateData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.crates[idx]
	if !ok {
		return nil, fmt.Errorf("cratestore: unknown crate index %d", idx)
	}
	return c, nil
}

// LookupDefs resolves a dotted path within an external crate to every
// candidate definition sharing that path (namespace disambiguation is the
// resolver's job, spec §4.C).
func (s *Store) LookupDefs(crate ast.CrateIndex, path []string) ([]ast.Def, error) {
	c, err := s.crate(crate)
	if err != nil {
		return nil, err
	}
	key := joinPath(path)
	c.mu.RLock()
	defer c.mu.RUnlock()
	defs, ok := c.defs[key]
	if !ok {
		return nil, fmt.Errorf("cratestore: no definitions at %q in crate %q", key, c.name)
	}
	return defs, nil
}

// GetSymbol returns the linker-name (mangled symbol) of a definition.
func (s *Store) GetSymbol(def ast.DefID) (string, error) {
	c, err := s.crate(def.Crate)
	if err != nil {
		return "", err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	sym, ok := c.symbols[def]
	if !ok {
		return "", fmt.Errorf("cratestore: no symbol recorded for %s", def)
	}
	return sym, nil
}

// GetType returns the interned type of a definition (its signature for
// fns/methods, its underlying type for aliases, etc).
func (s *Store) GetType(def ast.DefID) (types.TypeID, error) {
	c, err := s.crate(def.Crate)
	if err != nil {
		return types.InvalidType, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.types[def]
	if !ok {
		return types.InvalidType, fmt.Errorf("cratestore: no type recorded for %s", def)
	}
	return t, nil
}

// GetPath returns the full dotted path of a definition, used to print
// qualified names in diagnostics and in the export map.
func (s *Store) GetPath(def ast.DefID) ([]string, error) {
	c, err := s.crate(def.Crate)
	if err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.paths[def]
	if !ok {
		return nil, fmt.Errorf("cratestore: no path recorded for %s", def)
	}
	return p, nil
}

// GetImplsForMod returns the impl records attached to a module or nominal
// type, optionally filtered to impls exposing a method of the given name
// (empty name returns all).
func (s *Store) GetImplsForMod(def ast.DefID, name string) ([]ImplRecord, error) {
	c, err := s.crate(def.Crate)
	if err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	all := c.impls[def]
	if name == "" {
		return all, nil
	}
	var out []ImplRecord
	for _, impl := range all {
		if _, ok := impl.Methods[name]; ok {
			out = append(out, impl)
		}
	}
	return out, nil
}

// GetTypeParamCount returns the generic arity of a definition.
func (s *Store) GetTypeParamCount(def ast.DefID) (int, error) {
	c, err := s.crate(def.Crate)
	if err != nil {
		return 0, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	n, ok := c.tparams[def]
	if !ok {
		return 0, fmt.Errorf("cratestore: no type-parameter count recorded for %s", def)
	}
	return n, nil
}

func joinPath(path []string) string {
	out := ""
	for i, p := range path {
		if i > 0 {
			out += "::"
		}
		out += p
	}
	return out
}
