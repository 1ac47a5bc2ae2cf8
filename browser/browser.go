// Package browser implements a read-only terminal viewer over an already
// assembled file: its symbol table and expanded source listing side by side.
// Unlike a debugger it drives nothing - there is no VM underneath - so the
// view model is just the symbol table and the formatted listing text.
package browser

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/baselswaid/assembler/parser"
	"github.com/baselswaid/assembler/tools"
)

// Browser is a read-only TUI over one file's assembled symbol table and
// formatted listing.
type Browser struct {
	App   *tview.Application
	Pages *tview.Pages

	SymbolTable *tview.Table
	ListingView *tview.TextView
	StatusView  *tview.TextView

	report *tools.XRefReport
}

// New builds a Browser over symbols and the rendered listing text.
func New(symbols *parser.SymbolTable, listing string) *Browser {
	b := &Browser{
		App:    tview.NewApplication(),
		report: tools.NewXRefReport(symbols),
	}
	b.initializeViews(listing)
	b.buildLayout()
	b.setupKeyBindings()
	return b
}

func (b *Browser) initializeViews(listing string) {
	b.SymbolTable = tview.NewTable().SetFixed(1, 0).SetSelectable(true, false)
	b.SymbolTable.SetBorder(true).SetTitle(" Symbols ")
	b.populateSymbolTable()

	b.ListingView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false).
		SetText(listing)
	b.ListingView.SetBorder(true).SetTitle(" Listing ")

	b.StatusView = tview.NewTextView().SetDynamicColors(true)
	b.StatusView.SetText("[yellow]Tab[white] switch panes   [yellow]Ctrl+C[white] quit")
}

func (b *Browser) populateSymbolTable() {
	headers := []string{"Name", "Kind", "Address", "Flags"}
	for col, h := range headers {
		b.SymbolTable.SetCell(0, col, tview.NewTableCell(h).
			SetSelectable(false).
			SetTextColor(tcell.ColorYellow))
	}

	for row, sym := range b.report.Symbols() {
		kind := "code"
		switch sym.Kind {
		case parser.SymData:
			kind = "data"
		case parser.SymExtern:
			kind = "extern"
		}
		addr := fmt.Sprintf("%04d", sym.Address)
		if sym.Kind == parser.SymExtern {
			addr = "-"
		}
		flags := ""
		if b.report.IsEntry(sym.Name) {
			flags = "entry"
		}

		r := row + 1
		b.SymbolTable.SetCell(r, 0, tview.NewTableCell(sym.Name))
		b.SymbolTable.SetCell(r, 1, tview.NewTableCell(kind))
		b.SymbolTable.SetCell(r, 2, tview.NewTableCell(addr))
		b.SymbolTable.SetCell(r, 3, tview.NewTableCell(flags))
	}
}

func (b *Browser) buildLayout() {
	top := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(b.SymbolTable, 0, 1, true).
		AddItem(b.ListingView, 0, 2, false)

	layout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(top, 0, 1, true).
		AddItem(b.StatusView, 1, 0, false)

	b.Pages = tview.NewPages().AddPage("main", layout, true, true)
}

func (b *Browser) setupKeyBindings() {
	b.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyCtrlC:
			b.App.Stop()
			return nil
		case tcell.KeyTab:
			if b.App.GetFocus() == b.SymbolTable {
				b.App.SetFocus(b.ListingView)
			} else {
				b.App.SetFocus(b.SymbolTable)
			}
			return nil
		}
		return event
	})
}

// Run starts the TUI event loop. It blocks until the user quits.
func (b *Browser) Run() error {
	return b.App.SetRoot(b.Pages, true).SetFocus(b.SymbolTable).Run()
}
