package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/patchbay/patchbay/internal/ui"
	"github.com/patchbay/patchbay/pkg/patchbay"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Build and evaluate a small example patch",
	Long: `Builds a patch from the default packs: two Number sources feeding an
Add node, plus a Negate attached through the drag protocol. A control
change then ripples through the patch and the refreshed port values
print below.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runDemo(); err != nil {
			ui.Bad.Fprintln(os.Stderr, "patchbay: demo failed:", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(demoCmd)
}

func runDemo() error {
	patch := patchbay.New()

	ui.Banner("demo patch")

	seven, err := patch.AddNode("Number", 40, 80)
	if err != nil {
		return err
	}
	five, err := patch.AddNode("Number", 40, 200)
	if err != nil {
		return err
	}
	add, err := patch.AddNode("Add", 260, 140)
	if err != nil {
		return err
	}

	if err := patch.SetControl(seven, 7.0); err != nil {
		return err
	}
	if err := patch.SetControl(five, 5.0); err != nil {
		return err
	}

	sevenOut, err := outputPort(patch, seven)
	if err != nil {
		return err
	}
	fiveOut, err := outputPort(patch, five)
	if err != nil {
		return err
	}
	addA, err := inputPort(patch, add, 0)
	if err != nil {
		return err
	}
	addB, err := inputPort(patch, add, 1)
	if err != nil {
		return err
	}

	if _, err := patch.Connect(sevenOut, addA); err != nil {
		return err
	}
	if _, err := patch.Connect(fiveOut, addB); err != nil {
		return err
	}

	// Attach a Negate the way the canvas does it: drag off Add's output,
	// drop on empty space, pick from the suggestions.
	addOut, err := outputPort(patch, add)
	if err != nil {
		return err
	}
	if err := patch.BeginDrag(addOut); err != nil {
		return err
	}
	suggestions, err := patch.DropOnCanvas(470, 140)
	if err != nil {
		return err
	}
	fmt.Printf("  canvas drop suggests: %s\n\n", ui.Subtle.Sprint(strings.Join(suggestions, ", ")))

	neg, err := patch.ChooseType("Negate")
	if err != nil {
		return err
	}

	printPatch(patch)

	fmt.Println()
	fmt.Printf("  turning the first knob to %s\n", ui.Brand.Sprint("12"))
	if err := patch.SetControl(seven, 12.0); err != nil {
		return err
	}

	addInfo, err := patch.Describe(add)
	if err != nil {
		return err
	}
	negInfo, err := patch.Describe(neg)
	if err != nil {
		return err
	}
	fmt.Printf("  Add.Result is now %s and Negate.Result %s\n",
		ui.Good.Sprint(formatValue(addInfo.Outputs[0].Value)),
		ui.Good.Sprint(formatValue(negInfo.Outputs[0].Value)))

	return nil
}

func printPatch(patch *patchbay.Patch) {
	nodes := patch.Nodes()
	rows := make([][]string, 0, len(nodes))
	for _, n := range nodes {
		rows = append(rows, []string{
			fmt.Sprintf("%d", n.ID),
			n.Type,
			fmt.Sprintf("(%.0f,%.0f)", n.X, n.Y),
			formatValue(n.Control),
			formatPorts(n.Outputs),
		})
	}
	ui.Table([]string{"NODE", "TYPE", "AT", "CONTROL", "OUTPUTS"}, rows)

	nodeCount, edgeCount := patch.Stats()
	fmt.Println()
	fmt.Printf("  %d nodes, %d edges\n", nodeCount, edgeCount)
}

func formatValue(v patchbay.Value) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%v", v)
}

func formatPorts(ports []patchbay.PortInfo) string {
	parts := make([]string, 0, len(ports))
	for _, p := range ports {
		parts = append(parts, fmt.Sprintf("%s=%s", p.Name, formatValue(p.Value)))
	}
	return strings.Join(parts, " ")
}

// outputPort returns the first output port of a node.
func outputPort(patch *patchbay.Patch, id patchbay.NodeID) (patchbay.PortID, error) {
	info, err := patch.Describe(id)
	if err != nil {
		return patchbay.None, err
	}
	return info.Outputs[0].ID, nil
}

// inputPort returns the i-th input port of a node.
func inputPort(patch *patchbay.Patch, id patchbay.NodeID, i int) (patchbay.PortID, error) {
	info, err := patch.Describe(id)
	if err != nil {
		return patchbay.None, err
	}
	return info.Inputs[i].ID, nil
}
