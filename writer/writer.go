// Package writer renders an assembled image to the three output file
// formats the dialect produces: the object file (.ob), the entry table
// (.ent), and the extern-use table (.ext).
package writer

import (
	"fmt"
	"io"

	"github.com/baselswaid/assembler/assembler"
	"github.com/baselswaid/assembler/parser"
)

// WriteOB writes the object file: a header line of (code word count, data
// word count) followed by one "address octal" line per word, code words
// first starting at parser.ICInit, then data words immediately following
// the code image.
func WriteOB(w io.Writer, img *assembler.Image) error {
	icf := len(img.Code)
	dcf := len(img.Data)
	if _, err := fmt.Fprintf(w, "%d %d\n", icf, dcf); err != nil {
		return err
	}

	addr := parser.ICInit
	for _, word := range img.Code {
		if _, err := fmt.Fprintf(w, "%04d %s\n", addr, word.Octal()); err != nil {
			return err
		}
		addr++
	}
	for _, word := range img.Data {
		if _, err := fmt.Fprintf(w, "%04d %s\n", addr, word.Octal()); err != nil {
			return err
		}
		addr++
	}
	return nil
}

// WriteEnt writes the entry table, one "name address" line per .entry
// symbol, in reverse declaration order - matching the reference assembler's
// output ordering. It writes nothing (not even an empty file) if there are
// no entries; callers should skip creating the file entirely in that case,
// which is why this takes an io.Writer rather than opening the file itself.
func WriteEnt(w io.Writer, symbols *parser.SymbolTable) error {
	entries := symbols.Entries()
	for i := len(entries) - 1; i >= 0; i-- {
		sym, ok := symbols.Lookup(entries[i])
		if !ok {
			return fmt.Errorf("entry %q has no resolved symbol", entries[i])
		}
		if _, err := fmt.Fprintf(w, "%s %04d\n", entries[i], sym.Address); err != nil {
			return err
		}
	}
	return nil
}

// WriteExt writes the extern-use table, one "name address" line per use
// site (not per declaration) in the order the second pass encountered them.
func WriteExt(w io.Writer, img *assembler.Image) error {
	for _, use := range img.ExternUses {
		if _, err := fmt.Fprintf(w, "%s %04d\n", use.Name, use.Address); err != nil {
			return err
		}
	}
	return nil
}

// HasEntries reports whether an .ent file should be produced at all.
func HasEntries(symbols *parser.SymbolTable) bool {
	return len(symbols.Entries()) > 0
}

// HasExterns reports whether an .ext file should be produced at all.
func HasExterns(img *assembler.Image) bool {
	return len(img.ExternUses) > 0
}
