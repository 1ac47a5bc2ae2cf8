package parser

import (
	"fmt"
)

// SymbolKind represents what a symbol's address refers to, or whether it is
// an externally-declared name with no local address at all.
type SymbolKind int

const (
	SymCode SymbolKind = iota
	SymData
	SymExtern
)

// Symbol represents one name in the symbol table: a label defined in this
// file's code or data region, or a name declared .extern.
type Symbol struct {
	Name    string
	Kind    SymbolKind
	Address int
	Pos     Position
}

// SymbolTable manages symbols encountered during a single file's assembly.
// Entry names are tracked as an insertion-ordered slice rather than derived
// from map iteration, because Go's map iteration order is undefined and would
// silently scramble .ent output ordering. Extern names are kept as a set;
// .ext ordering comes from the second pass's use list, not from this table.
type SymbolTable struct {
	byName  map[string]*Symbol
	entries []string // names marked .entry, in declaration order
	externs map[string]bool
}

// NewSymbolTable creates an empty symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		byName:  make(map[string]*Symbol),
		externs: make(map[string]bool),
	}
}

// Define defines a new local (code or data) symbol. Redefining an existing
// name, or defining a name already declared .extern, is an error.
func (st *SymbolTable) Define(name string, kind SymbolKind, address int, pos Position) error {
	if st.externs[name] {
		return fmt.Errorf("symbol %q is declared extern and cannot also be defined locally", name)
	}
	if existing, exists := st.byName[name]; exists {
		return fmt.Errorf("symbol %q already defined at %s", name, existing.Pos)
	}
	st.byName[name] = &Symbol{Name: name, Kind: kind, Address: address, Pos: pos}
	return nil
}

// DefineExtern declares name as an externally-defined symbol. Declaring a
// name that is already defined locally is an error.
func (st *SymbolTable) DefineExtern(name string, pos Position) error {
	if existing, exists := st.byName[name]; exists && existing.Kind != SymExtern {
		return fmt.Errorf("symbol %q is already defined locally and cannot also be declared extern", name)
	}
	st.externs[name] = true
	st.byName[name] = &Symbol{Name: name, Kind: SymExtern, Pos: pos}
	return nil
}

// MarkEntry records name as an .entry-exported symbol, in declaration order.
// It does not require name to already be defined: the first pass resolves
// entry names against the completed symbol table only after the whole file
// has been scanned (see SymbolTable.ResolveEntries).
func (st *SymbolTable) MarkEntry(name string) {
	st.entries = append(st.entries, name)
}

// Lookup looks up a symbol by name.
func (st *SymbolTable) Lookup(name string) (*Symbol, bool) {
	sym, ok := st.byName[name]
	return sym, ok
}

// IsExtern reports whether name was declared .extern.
func (st *SymbolTable) IsExtern(name string) bool {
	return st.externs[name]
}

// Entries returns the .entry-marked names in declaration order.
func (st *SymbolTable) Entries() []string {
	return st.entries
}

// ResolveEntries checks that every .entry name resolves to a locally-defined
// symbol (code or data - an extern name cannot also be exported as an
// entry). Returns the first unresolved name's error.
func (st *SymbolTable) ResolveEntries() error {
	for _, name := range st.entries {
		sym, ok := st.byName[name]
		if !ok || sym.Kind == SymExtern {
			return fmt.Errorf("entry symbol %q has no local definition", name)
		}
	}
	return nil
}

// All returns every symbol in the table, keyed by name.
func (st *SymbolTable) All() map[string]*Symbol {
	return st.byName
}
