package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/patchbay/patchbay/internal/ui"
	"github.com/patchbay/patchbay/pkg/patchbay"
)

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the node types in the default packs",
	Run: func(cmd *cobra.Command, args []string) {
		patch := patchbay.New()

		byName := make(map[string]*patchbay.NodeType)
		for _, t := range patch.Types() {
			byName[t.Name] = t
		}

		categories := patch.Categories()
		cats := make([]string, 0, len(categories))
		for cat := range categories {
			cats = append(cats, cat)
		}
		sort.Strings(cats)

		ui.Banner("node type catalog")
		for _, cat := range cats {
			ui.Brand.Printf("  %s\n", cat)
			for _, name := range categories[cat] {
				fmt.Printf("    %-10s %s\n", name, ui.Subtle.Sprint(signature(byName[name])))
			}
			fmt.Println()
		}
	},
}

func init() {
	rootCmd.AddCommand(typesCmd)
}

// signature renders a type as its ports, e.g. "(A, B) -> Result" for a
// binary operator or "[Value] -> Value" for a control-driven source.
func signature(t *patchbay.NodeType) string {
	var b strings.Builder
	if t.HasControl() {
		b.WriteString("[" + t.ControlName + "]")
	}
	if t.HasInputs() {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString("(" + strings.Join(t.Inputs, ", ") + ")")
	}
	b.WriteString(" -> ")
	b.WriteString(strings.Join(t.Outputs, ", "))
	return b.String()
}
