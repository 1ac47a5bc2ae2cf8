package tools

import (
	"fmt"
	"strings"

	"github.com/baselswaid/assembler/parser"
)

// FormatOptions controls column alignment for Format.
type FormatOptions struct {
	LabelColumn       int
	InstructionColumn int
	CommentColumn     int
}

// DefaultFormatOptions returns the standard column layout: label at column
// 0, mnemonic/directive at column 8, CommentColumn 40. Format reads only
// InstructionColumn: a label always starts the line, and trailing comments
// on instruction and directive lines are dropped, so CommentColumn has no
// effect on its output.
func DefaultFormatOptions() *FormatOptions {
	return &FormatOptions{
		LabelColumn:       0,
		InstructionColumn: 8,
		CommentColumn:     40,
	}
}

// Format re-renders an already macro-expanded line stream with consistent
// column alignment. Blank lines and comment-only lines pass through
// unchanged; a line that fails to parse is emitted verbatim rather than
// aborting the whole pass, since formatting is a best-effort convenience,
// not a validation step.
func Format(expanded []parser.ExpandedLine, opts *FormatOptions) string {
	if opts == nil {
		opts = DefaultFormatOptions()
	}

	var sb strings.Builder
	for _, el := range expanded {
		trimmed := strings.TrimSpace(el.Text)
		if trimmed == "" || strings.HasPrefix(trimmed, ";") {
			sb.WriteString(el.Text)
			sb.WriteByte('\n')
			continue
		}

		line, err := parser.ParseLine(el.Text, el.Pos)
		if err != nil || line == nil {
			sb.WriteString(el.Text)
			sb.WriteByte('\n')
			continue
		}

		sb.WriteString(formatLine(line, opts))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func formatLine(line *parser.Line, opts *FormatOptions) string {
	var body string
	switch {
	case line.Instruction != nil:
		body = formatInstruction(line.Instruction)
	case line.Directive != nil:
		body = formatDirective(line.Directive)
	}

	var sb strings.Builder
	if line.Label != "" {
		sb.WriteString(line.Label + ":")
	}
	pad(&sb, opts.InstructionColumn)
	sb.WriteString(body)
	return sb.String()
}

func pad(sb *strings.Builder, col int) {
	for sb.Len() < col {
		sb.WriteByte(' ')
	}
}

func formatInstruction(inst *parser.Instruction) string {
	operands := make([]string, 0, 2)
	if inst.Src != nil {
		operands = append(operands, operandText(inst.Src))
	}
	if inst.Dest != nil {
		operands = append(operands, operandText(inst.Dest))
	}
	if len(operands) == 0 {
		return inst.Op.Name
	}
	return inst.Op.Name + " " + strings.Join(operands, ", ")
}

func operandText(op *parser.Operand) string {
	switch op.Mode {
	case parser.ModeImmediate:
		return fmt.Sprintf("#%d", op.Value)
	case parser.ModeRelative:
		return fmt.Sprintf("*r%d", op.Value)
	case parser.ModeRegister:
		return fmt.Sprintf("r%d", op.Value)
	default:
		return op.Text
	}
}

func formatDirective(d *parser.Directive) string {
	switch d.Kind {
	case parser.DirData:
		parts := make([]string, len(d.Values))
		for i, v := range d.Values {
			parts[i] = fmt.Sprintf("%d", v)
		}
		return ".data " + strings.Join(parts, ", ")
	case parser.DirString:
		return fmt.Sprintf(".string %q", d.Text)
	case parser.DirEntry:
		return ".entry " + strings.Join(d.Names, ", ")
	case parser.DirExtern:
		return ".extern " + strings.Join(d.Names, ", ")
	default:
		return ""
	}
}
