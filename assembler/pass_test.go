package assembler

import (
	"testing"

	"github.com/baselswaid/assembler/parser"
)

func expand(t *testing.T, lines []string) []parser.ExpandedLine {
	t.Helper()
	pp := parser.NewPreprocessor()
	out, err := pp.Expand(lines, "t.as")
	if err != nil {
		t.Fatalf("preprocess failed: %v", err)
	}
	return out
}

func TestFirstPassBuildsSymbolTable(t *testing.T) {
	exp := expand(t, []string{
		"LOOP: inc r1",
		"      mov r1, r2",
		"DATA: .data 1, 2, 3",
	})
	fp := NewFirstPass()
	icf, dcf, err := fp.Run(exp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if icf != 100+2+2 {
		t.Errorf("expected icf 104, got %d", icf)
	}
	if dcf != 3 {
		t.Errorf("expected dcf 3, got %d", dcf)
	}
	sym, ok := fp.Symbols.Lookup("LOOP")
	if !ok || sym.Address != 100 {
		t.Fatalf("expected LOOP at 100, got %+v %v", sym, ok)
	}
	dataSym, ok := fp.Symbols.Lookup("DATA")
	if !ok || dataSym.Address != icf {
		t.Fatalf("expected DATA shifted to icf (%d), got %+v %v", icf, dataSym, ok)
	}
}

func TestFirstPassRejectsUndefinedEntry(t *testing.T) {
	exp := expand(t, []string{".entry MISSING", "stop"})
	fp := NewFirstPass()
	if _, _, err := fp.Run(exp); err == nil {
		t.Fatal("expected an unresolved .entry to error")
	}
}

func TestSecondPassEncodesSharedRegisterWord(t *testing.T) {
	exp := expand(t, []string{"mov r1, r2"})
	fp := NewFirstPass()
	icf, _, err := fp.Run(exp)
	if err != nil {
		t.Fatalf("first pass failed: %v", err)
	}
	sp := NewSecondPass(fp.Symbols, icf)
	img, err := sp.Run(exp)
	if err != nil {
		t.Fatalf("second pass failed: %v", err)
	}
	if len(img.Code) != 2 {
		t.Fatalf("expected 2 code words for a register-register mov, got %d", len(img.Code))
	}
	if img.Code[1].Kind != WordExtra {
		t.Fatalf("expected the second word to be a shared register extension word")
	}
	want := (1 << 3) | 2
	if img.Code[1].Payload != want {
		t.Errorf("expected register payload %d, got %d", want, img.Code[1].Payload)
	}
}

func TestSecondPassRecordsExternUse(t *testing.T) {
	exp := expand(t, []string{".extern FOO", "mov r1, FOO"})
	fp := NewFirstPass()
	icf, _, err := fp.Run(exp)
	if err != nil {
		t.Fatalf("first pass failed: %v", err)
	}
	sp := NewSecondPass(fp.Symbols, icf)
	img, err := sp.Run(exp)
	if err != nil {
		t.Fatalf("second pass failed: %v", err)
	}
	if len(img.ExternUses) != 1 || img.ExternUses[0].Name != "FOO" {
		t.Fatalf("expected one recorded extern use of FOO, got %v", img.ExternUses)
	}
}

func TestSecondPassDataImage(t *testing.T) {
	exp := expand(t, []string{`.string "hi"`})
	fp := NewFirstPass()
	icf, _, err := fp.Run(exp)
	if err != nil {
		t.Fatalf("first pass failed: %v", err)
	}
	sp := NewSecondPass(fp.Symbols, icf)
	img, err := sp.Run(exp)
	if err != nil {
		t.Fatalf("second pass failed: %v", err)
	}
	if len(img.Data) != 3 {
		t.Fatalf("expected 3 data words (h, i, terminator), got %d", len(img.Data))
	}
	if img.Data[2].Payload != 0 {
		t.Errorf("expected a terminating zero word, got %d", img.Data[2].Payload)
	}
}
