package tools

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/baselswaid/assembler/parser"
)

// UseKind classifies why a line refers to a symbol by name.
type UseKind int

const (
	UseBranch UseKind = iota // operand of a jmp/bne/jsr instruction
	UseData                  // operand of any other instruction
)

func (k UseKind) String() string {
	if k == UseBranch {
		return "branch"
	}
	return "data"
}

// Use is one reference to a symbol: where, and in what role.
type Use struct {
	Pos  parser.Position
	Kind UseKind
}

// XRefReport is a formatted cross-reference listing of a symbol table:
// every symbol's kind, address, entry/extern status, and use sites, sorted
// by name.
type XRefReport struct {
	symbols []*parser.Symbol
	entries map[string]bool
	uses    map[string][]Use
}

// NewXRefReport builds a report from a completed symbol table and the
// expanded line stream it was resolved against.
func NewXRefReport(st *parser.SymbolTable, expanded ...[]parser.ExpandedLine) *XRefReport {
	all := st.All()
	sorted := make([]*parser.Symbol, 0, len(all))
	for _, sym := range all {
		sorted = append(sorted, sym)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	entries := make(map[string]bool)
	for _, name := range st.Entries() {
		entries[name] = true
	}

	uses := make(map[string][]Use)
	if len(expanded) > 0 {
		collectUses(expanded[0], uses)
	}

	return &XRefReport{symbols: sorted, entries: entries, uses: uses}
}

func collectUses(expanded []parser.ExpandedLine, uses map[string][]Use) {
	for _, el := range expanded {
		line, err := parser.ParseLine(el.Text, el.Pos)
		if err != nil || line == nil || line.Instruction == nil {
			continue
		}

		kind := UseData
		switch line.Instruction.Op.Name {
		case "jmp", "bne", "jsr":
			kind = UseBranch
		}

		for _, operand := range []*parser.Operand{line.Instruction.Src, line.Instruction.Dest} {
			if operand != nil && operand.Mode == parser.ModeDirect {
				uses[operand.Text] = append(uses[operand.Text], Use{Pos: line.Pos, Kind: kind})
			}
		}
	}
}

// Symbols returns the report's symbols, sorted by name.
func (r *XRefReport) Symbols() []*parser.Symbol {
	return r.symbols
}

// IsEntry reports whether name was marked .entry.
func (r *XRefReport) IsEntry(name string) bool {
	return r.entries[name]
}

// Uses returns the recorded use sites for name, in encounter order.
func (r *XRefReport) Uses(name string) []Use {
	return r.uses[name]
}

// String renders the report as text.
func (r *XRefReport) String() string {
	var sb strings.Builder

	sb.WriteString("Symbol Cross-Reference\n")
	sb.WriteString("=======================\n\n")
	sb.WriteString(fmt.Sprintf("%-30s %-8s %-8s %s\n", "Name", "Kind", "Address", "Flags"))
	sb.WriteString(strings.Repeat("-", 60) + "\n")

	for _, sym := range r.symbols {
		var kind string
		switch sym.Kind {
		case parser.SymCode:
			kind = "code"
		case parser.SymData:
			kind = "data"
		case parser.SymExtern:
			kind = "extern"
		}

		addr := fmt.Sprintf("%04d", sym.Address)
		if sym.Kind == parser.SymExtern {
			addr = "  -  "
		}

		var flags string
		if r.entries[sym.Name] {
			flags = "entry"
		}

		sb.WriteString(fmt.Sprintf("%-30s %-8s %-8s %s\n", sym.Name, kind, addr, flags))

		for _, use := range r.uses[sym.Name] {
			sb.WriteString(fmt.Sprintf("    used (%s) at %s\n", use.Kind, use.Pos))
		}
	}

	sb.WriteString(fmt.Sprintf("\nTotal symbols: %d\n", len(r.symbols)))
	return sb.String()
}

// WriteXref renders symbols' cross-reference listing, including use sites
// drawn from expanded, to path.
func WriteXref(path string, symbols *parser.SymbolTable, expanded []parser.ExpandedLine) error {
	report := NewXRefReport(symbols, expanded)
	return os.WriteFile(path, []byte(report.String()), 0644) //nolint:gosec
}
