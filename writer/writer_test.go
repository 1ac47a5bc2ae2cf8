package writer

import (
	"strings"
	"testing"

	"github.com/baselswaid/assembler/assembler"
	"github.com/baselswaid/assembler/parser"
)

func TestWriteOBHeaderAndLines(t *testing.T) {
	img := &assembler.Image{
		Code: []assembler.Word{{Kind: assembler.WordCode, Opcode: 0, ARE: assembler.AREAbsolute}},
		Data: []assembler.Word{{Kind: assembler.WordData, Payload: 5}},
	}
	var sb strings.Builder
	if err := WriteOB(&sb, img); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimRight(sb.String(), "\n"), "\n")
	if lines[0] != "1 1" {
		t.Errorf("expected header \"1 1\", got %q", lines[0])
	}
	if lines[1] != "0100 00004" {
		t.Errorf("expected code line at address 100, got %q", lines[1])
	}
	if lines[2] != "0101 00005" {
		t.Errorf("expected data line at address 101, got %q", lines[2])
	}
}

func TestWriteEntReverseOrder(t *testing.T) {
	st := parser.NewSymbolTable()
	_ = st.Define("A", parser.SymCode, 100, parser.Position{})
	_ = st.Define("B", parser.SymCode, 101, parser.Position{})
	st.MarkEntry("A")
	st.MarkEntry("B")

	var sb strings.Builder
	if err := WriteEnt(&sb, st); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimRight(sb.String(), "\n"), "\n")
	if lines[0] != "B 0101" || lines[1] != "A 0100" {
		t.Fatalf("expected reverse declaration order, got %v", lines)
	}
}

func TestHasEntriesAndExterns(t *testing.T) {
	st := parser.NewSymbolTable()
	if HasEntries(st) {
		t.Fatal("expected no entries on an empty table")
	}
	st.MarkEntry("X")
	_ = st.Define("X", parser.SymCode, 100, parser.Position{})
	if !HasEntries(st) {
		t.Fatal("expected entries after MarkEntry")
	}

	img := &assembler.Image{}
	if HasExterns(img) {
		t.Fatal("expected no externs on an empty image")
	}
	img.ExternUses = append(img.ExternUses, assembler.ExternUse{Name: "Y", Address: 100})
	if !HasExterns(img) {
		t.Fatal("expected externs after appending a use")
	}
}
