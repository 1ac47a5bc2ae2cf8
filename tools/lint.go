package tools

import (
	"fmt"
	"sort"

	"github.com/baselswaid/assembler/parser"
)

// LintLevel represents the severity of a lint finding.
type LintLevel int

const (
	LintWarning LintLevel = iota
	LintInfo
)

func (l LintLevel) String() string {
	if l == LintInfo {
		return "info"
	}
	return "warning"
}

// LintIssue is a single lint finding, independent of the parser's fatal
// errors: lint issues never abort assembly, they are reported alongside a
// successful build.
type LintIssue struct {
	Level   LintLevel
	Pos     parser.Position
	Message string
}

func (i LintIssue) String() string {
	return fmt.Sprintf("%s: %s: %s", i.Pos, i.Level, i.Message)
}

// Lint scans an already macro-expanded line stream for style and
// best-practice issues that do not block assembly: labels defined but never
// referenced, .extern names never referenced locally, and .entry names that
// shadow a register or opcode mnemonic.
func Lint(expanded []parser.ExpandedLine) []LintIssue {
	var issues []LintIssue

	defined := make(map[string]parser.Position)
	externs := make(map[string]parser.Position)
	referenced := make(map[string]bool)

	for _, el := range expanded {
		line, err := parser.ParseLine(el.Text, el.Pos)
		if err != nil || line == nil {
			continue
		}

		if line.Label != "" {
			if _, seen := defined[line.Label]; !seen {
				defined[line.Label] = line.Pos
			}
		}

		switch {
		case line.Instruction != nil:
			for _, operand := range []*parser.Operand{line.Instruction.Src, line.Instruction.Dest} {
				if operand != nil && operand.Mode == parser.ModeDirect {
					referenced[operand.Text] = true
				}
			}
		case line.Directive != nil && line.Directive.Kind == parser.DirEntry:
			for _, name := range line.Directive.Names {
				referenced[name] = true
				if parser.IsReservedName(name) {
					issues = append(issues, LintIssue{Level: LintWarning, Pos: line.Pos, Message: fmt.Sprintf("entry name %q shadows a register or opcode mnemonic", name)})
				}
			}
		case line.Directive != nil && line.Directive.Kind == parser.DirExtern:
			for _, name := range line.Directive.Names {
				if _, seen := externs[name]; !seen {
					externs[name] = line.Pos
				}
			}
		}
	}

	var unused []string
	for name := range defined {
		if !referenced[name] {
			unused = append(unused, name)
		}
	}
	sort.Strings(unused)
	for _, name := range unused {
		issues = append(issues, LintIssue{Level: LintWarning, Pos: defined[name], Message: fmt.Sprintf("label %q is defined but never referenced", name)})
	}

	var unusedExterns []string
	for name := range externs {
		if !referenced[name] {
			unusedExterns = append(unusedExterns, name)
		}
	}
	sort.Strings(unusedExterns)
	for _, name := range unusedExterns {
		issues = append(issues, LintIssue{Level: LintWarning, Pos: externs[name], Message: fmt.Sprintf("extern %q is declared but never referenced", name)})
	}

	return issues
}
