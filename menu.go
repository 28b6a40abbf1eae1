package keystone

import "fmt"

// MenuTitle heads the adjustment menu.
const MenuTitle = "KEYSTONE ADJUSTMENT"

// MenuRow is one actionable row of the adjustment menu. The concrete types
// are CornerRow, ResetRow and SaveExitRow.
type MenuRow interface {
	Label() string
	menuRow()
}

// CornerRow starts live adjustment of Corner.
type CornerRow struct {
	Corner Corner
}

// ResetRow restores the in-memory shape to identity without persisting.
type ResetRow struct{}

// SaveExitRow persists the shape and closes the menu.
type SaveExitRow struct{}

// Label implements MenuRow.
func (r CornerRow) Label() string {
	return fmt.Sprintf("Corner %d (%s)", int(r.Corner)+1, r.Corner)
}

// Label implements MenuRow.
func (ResetRow) Label() string { return "Reset to Default" }

// Label implements MenuRow.
func (SaveExitRow) Label() string { return "Save & Exit" }

func (CornerRow) menuRow()   {}
func (ResetRow) menuRow()    {}
func (SaveExitRow) menuRow() {}

// MenuRows is the fixed menu: four corners, reset, save & exit.
var MenuRows = [...]MenuRow{
	CornerRow{TopLeft},
	CornerRow{TopRight},
	CornerRow{BottomLeft},
	CornerRow{BottomRight},
	ResetRow{},
	SaveExitRow{},
}

// NumMenuRows is the number of menu rows.
const NumMenuRows = len(MenuRows)

// cornerRowIndex returns the menu index of the row editing c.
func cornerRowIndex(c Corner) int {
	for i, row := range MenuRows {
		if cr, ok := row.(CornerRow); ok && cr.Corner == c {
			return i
		}
	}
	return 0
}

// wrapIndex moves i by delta within [0, n).
func wrapIndex(i, delta, n int) int {
	return ((i+delta)%n + n) % n
}
