package assembler

import (
	"fmt"

	"github.com/baselswaid/assembler/parser"
)

// SecondPass re-walks an expanded line stream with a completed symbol table
// and emits the final code and data images.
type SecondPass struct {
	Symbols *parser.SymbolTable
	icf     int // final IC from the first pass, for reporting only

	ic int
	dc int

	image Image
}

// NewSecondPass creates a second pass bound to symbols, the table completed
// by the first pass. icf is the first pass's final instruction counter.
func NewSecondPass(symbols *parser.SymbolTable, icf int) *SecondPass {
	return &SecondPass{Symbols: symbols, icf: icf, ic: parser.ICInit}
}

// Run encodes expanded into a complete Image.
func (sp *SecondPass) Run(expanded []parser.ExpandedLine) (*Image, error) {
	for _, el := range expanded {
		line, err := parser.ParseLine(el.Text, el.Pos)
		if err != nil {
			return nil, err
		}
		if line == nil {
			continue
		}

		switch {
		case line.Directive != nil:
			if err := sp.encodeDirective(line); err != nil {
				return nil, err
			}
		case line.Instruction != nil:
			if err := sp.encodeInstruction(line); err != nil {
				return nil, err
			}
		}
	}
	return &sp.image, nil
}

func (sp *SecondPass) encodeDirective(line *parser.Line) error {
	d := line.Directive
	switch d.Kind {
	case parser.DirData:
		for _, v := range d.Values {
			sp.image.Data = append(sp.image.Data, Word{Kind: WordData, Payload: v})
			sp.dc++
		}
	case parser.DirString:
		for _, c := range d.Text {
			sp.image.Data = append(sp.image.Data, Word{Kind: WordData, Payload: int(c)})
			sp.dc++
		}
		sp.image.Data = append(sp.image.Data, Word{Kind: WordData, Payload: 0})
		sp.dc++
	}
	return nil
}

// encodeInstruction mirrors process_code's exact emission order: the opcode
// word first, then operand extension words in the sequence the reference
// assembler uses so that a shared register word (when both operands are
// register-like) is never split, and so a register word is always emitted in
// the same source/destination slot position relative to any accompanying
// non-register word.
func (sp *SecondPass) encodeInstruction(line *parser.Line) error {
	inst := line.Instruction
	op := inst.Op

	sp.image.Code = append(sp.image.Code, Word{
		Kind:     WordCode,
		Opcode:   op.Code,
		SrcMode:  int(modeOf(inst.Src)),
		DestMode: int(modeOf(inst.Dest)),
		ARE:      AREAbsolute,
	})
	sp.ic++

	src, dest := inst.Src, inst.Dest
	srcReg := src != nil && src.Mode.IsRegisterLike()
	destReg := dest != nil && dest.Mode.IsRegisterLike()

	switch {
	case src != nil && dest != nil && srcReg && destReg:
		sp.emitRegisterWord(src, dest)

	case src == nil && dest != nil && destReg:
		// the dialect's one-operand opcodes only ever populate Dest.
		sp.emitRegisterWord(nil, dest)

	case src != nil && dest != nil && srcReg:
		sp.emitRegisterWord(src, nil)
		if err := sp.emitNonRegisterWord(dest); err != nil {
			return err
		}

	case src != nil && dest != nil && destReg:
		if err := sp.emitNonRegisterWord(src); err != nil {
			return err
		}
		sp.emitRegisterWord(nil, dest)

	default:
		if src != nil {
			if err := sp.emitNonRegisterWord(src); err != nil {
				return err
			}
		}
		if dest != nil {
			if err := sp.emitNonRegisterWord(dest); err != nil {
				return err
			}
		}
	}

	return nil
}

func modeOf(op *parser.Operand) parser.AddressingMode {
	if op == nil {
		return parser.ModeNone
	}
	return op.Mode
}

// emitRegisterWord encodes one shared extension word for a register and/or
// relative operand pair: source register value in bits 3-5, destination
// register value in bits 0-2, matching handle_register_address_word.
func (sp *SecondPass) emitRegisterWord(src, dest *parser.Operand) {
	payload := 0
	if src != nil {
		payload |= src.Value << 3
	}
	if dest != nil {
		payload |= dest.Value
	}
	sp.image.Code = append(sp.image.Code, Word{Kind: WordExtra, Payload: payload, ARE: AREAbsolute})
	sp.ic++
}

func (sp *SecondPass) emitNonRegisterWord(operand *parser.Operand) error {
	switch operand.Mode {
	case parser.ModeImmediate:
		sp.image.Code = append(sp.image.Code, Word{Kind: WordExtra, Payload: operand.Value, ARE: AREAbsolute})
		sp.ic++

	case parser.ModeDirect:
		sym, ok := sp.Symbols.Lookup(operand.Text)
		if !ok {
			return fmt.Errorf("label %q was not initialized", operand.Text)
		}
		are := ARERelocatable
		addr := sym.Address
		if sp.Symbols.IsExtern(operand.Text) {
			are = AREExternal
			addr = 0
			sp.image.ExternUses = append(sp.image.ExternUses, ExternUse{Name: operand.Text, Address: sp.ic})
		}
		sp.image.Code = append(sp.image.Code, Word{Kind: WordExtra, Payload: addr, ARE: are})
		sp.ic++

	default:
		return fmt.Errorf("operand %q has no non-register encoding", operand.Text)
	}
	return nil
}
