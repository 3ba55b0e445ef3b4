package ui

import "github.com/mattn/go-runewidth"

func cellWidth(s string) int {
	return runewidth.StringWidth(s)
}

// truncateCells clips s to at most w cells, marking the cut with an
// ellipsis.
func truncateCells(s string, w int) string {
	if w <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= w {
		return s
	}
	return runewidth.Truncate(s, w, "…")
}
