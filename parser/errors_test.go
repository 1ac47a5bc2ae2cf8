package parser

import "testing"

func TestErrorFormatsWithContext(t *testing.T) {
	err := NewErrorWithContext(Position{Filename: "t.as", Line: 3}, ErrorSyntax, "bad thing", "   mov r1")
	msg := err.Error()
	if msg == "" {
		t.Fatal("expected non-empty error message")
	}
}

func TestErrorListAccumulates(t *testing.T) {
	var el ErrorList
	if el.HasErrors() {
		t.Fatal("expected empty list to report no errors")
	}
	el.AddError(NewError(Position{Line: 1}, ErrorSyntax, "bad"))
	if !el.HasErrors() {
		t.Fatal("expected HasErrors to report true after AddError")
	}
	el.AddWarning(&Warning{Pos: Position{Line: 2}, Message: "unused label"})
	if len(el.Warnings) != 1 {
		t.Fatalf("expected one warning, got %d", len(el.Warnings))
	}
}
