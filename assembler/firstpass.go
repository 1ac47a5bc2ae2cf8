package assembler

import (
	"fmt"

	"github.com/baselswaid/assembler/parser"
)

// FirstPass builds the symbol table and determines the size of every line
// of an expanded instruction stream, without emitting final machine words.
type FirstPass struct {
	Symbols *parser.SymbolTable

	ic int
	dc int

	// lineWords records, per expanded-line index, how many code words that
	// line occupies (0 for directives and blank lines).
	lineWords []int
}

// NewFirstPass creates a first pass with a fresh symbol table, IC seeded at
// parser.ICInit and DC at zero, matching the reference assembler.
func NewFirstPass() *FirstPass {
	return &FirstPass{
		Symbols: parser.NewSymbolTable(),
		ic:      parser.ICInit,
		dc:      0,
	}
}

// Run walks expanded, building the symbol table and per-line word counts.
// It returns the final IC/DC totals (DC still data-relative, i.e. starting
// at 0) on success.
func (fp *FirstPass) Run(expanded []parser.ExpandedLine) (icf, dcf int, err error) {
	for _, el := range expanded {
		if len(el.Text) > parser.MaxLineLength {
			return 0, 0, parser.NewErrorWithContext(el.Pos, parser.ErrorLineTooLong,
				fmt.Sprintf("line exceeds %d characters", parser.MaxLineLength), el.Text)
		}

		line, perr := parser.ParseLine(el.Text, el.Pos)
		if perr != nil {
			return 0, 0, perr
		}
		if line == nil {
			fp.lineWords = append(fp.lineWords, 0)
			continue
		}

		if line.Label != "" && parser.IsReservedName(line.Label) {
			return 0, 0, parser.NewErrorWithContext(el.Pos, parser.ErrorReservedName,
				fmt.Sprintf("label %q collides with a reserved opcode or register name", line.Label), el.Text)
		}
		if len(line.Label) > parser.MaxLabelLength {
			return 0, 0, parser.NewErrorWithContext(el.Pos, parser.ErrorSyntax,
				fmt.Sprintf("label %q exceeds %d characters", line.Label, parser.MaxLabelLength), el.Text)
		}

		switch {
		case line.Directive != nil:
			n, derr := fp.handleDirective(line)
			if derr != nil {
				return 0, 0, derr
			}
			fp.lineWords = append(fp.lineWords, n)

		case line.Instruction != nil:
			n := parser.WordCount(line.Instruction)
			if line.Label != "" {
				if err := fp.Symbols.Define(line.Label, parser.SymCode, fp.ic, el.Pos); err != nil {
					return 0, 0, parser.NewErrorWithContext(el.Pos, parser.ErrorDuplicateSymbol, err.Error(), el.Text)
				}
			}
			fp.ic += n
			fp.lineWords = append(fp.lineWords, n)

		default:
			fp.lineWords = append(fp.lineWords, 0)
		}

		if fp.ic-parser.ICInit+fp.dc > parser.RAMWords {
			return 0, 0, parser.NewErrorWithContext(el.Pos, parser.ErrorRAMOverflow,
				fmt.Sprintf("assembled image exceeds %d words", parser.RAMWords), el.Text)
		}
	}

	// Data symbols were defined at DC-relative addresses; now that DC's
	// final size is known, shift them past the code image (ICF).
	icf = fp.ic
	dcf = fp.dc
	for _, sym := range fp.Symbols.All() {
		if sym.Kind == parser.SymData {
			sym.Address += icf
		}
	}

	if err := fp.Symbols.ResolveEntries(); err != nil {
		return 0, 0, parser.NewError(parser.Position{}, parser.ErrorEntryNotDefined, err.Error())
	}

	return icf, dcf, nil
}

func (fp *FirstPass) handleDirective(line *parser.Line) (int, error) {
	d := line.Directive
	switch d.Kind {
	case parser.DirData:
		if line.Label != "" {
			if err := fp.Symbols.Define(line.Label, parser.SymData, fp.dc, line.Pos); err != nil {
				return 0, parser.NewErrorWithContext(line.Pos, parser.ErrorDuplicateSymbol, err.Error(), line.Raw)
			}
		}
		fp.dc += len(d.Values)
		return 0, nil

	case parser.DirString:
		if line.Label != "" {
			if err := fp.Symbols.Define(line.Label, parser.SymData, fp.dc, line.Pos); err != nil {
				return 0, parser.NewErrorWithContext(line.Pos, parser.ErrorDuplicateSymbol, err.Error(), line.Raw)
			}
		}
		fp.dc += len(d.Text) + 1 // +1 for the implicit terminator
		return 0, nil

	case parser.DirExtern:
		for _, name := range d.Names {
			if err := fp.Symbols.DefineExtern(name, line.Pos); err != nil {
				return 0, parser.NewErrorWithContext(line.Pos, parser.ErrorExternAlsoDefined, err.Error(), line.Raw)
			}
		}
		return 0, nil

	case parser.DirEntry:
		for _, name := range d.Names {
			fp.Symbols.MarkEntry(name)
		}
		return 0, nil

	default:
		return 0, parser.NewErrorWithContext(line.Pos, parser.ErrorInvalidDirective, "unrecognized directive", line.Raw)
	}
}
