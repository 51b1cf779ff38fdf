// Package ui centralizes the terminal styling used by the patchbay CLI.
package ui

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Shared styles. Commands print through these so the CLI stays visually
// consistent; color is disabled automatically on non-TTY output.
var (
	Brand  = color.New(color.FgHiCyan, color.Bold)
	Subtle = color.New(color.FgHiBlack)
	Good   = color.New(color.FgGreen)
	Warn   = color.New(color.FgYellow)
	Bad    = color.New(color.FgRed)
)

// Banner prints the command banner with a subtitle.
func Banner(subtitle string) {
	fmt.Printf("%s %s\n\n", Brand.Sprint("patchbay"), Subtle.Sprint(subtitle))
}

// Table prints rows as aligned columns under a subtle header line.
func Table(headers []string, rows [][]string) {
	if len(rows) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var header, rule strings.Builder
	for i, h := range headers {
		fmt.Fprintf(&header, "%-*s  ", widths[i], h)
		rule.WriteString(strings.Repeat("─", widths[i]) + "  ")
	}
	Subtle.Println("  " + header.String())
	Subtle.Println("  " + rule.String())

	for _, row := range rows {
		var line strings.Builder
		for i, cell := range row {
			if i < len(widths) {
				fmt.Fprintf(&line, "%-*s  ", widths[i], cell)
			}
		}
		fmt.Println("  " + line.String())
	}
}
