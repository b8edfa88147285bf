package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"gesher/internal/experiment"
	"gesher/internal/format"
)

var balanceCmd = &cobra.Command{
	Use:   "balance <experiment-log.json>",
	Short: "Validate allocation balance for an experiment log",
	Long: "Counts completed conversations per (stance group, intervention) cell and\n" +
		"reports whether the allocation is balanced within one conversation.",
	Args: cobra.ExactArgs(1),
	RunE: runBalance,
}

func runBalance(cmd *cobra.Command, args []string) error {
	result, err := experiment.LoadLog(args[0])
	if err != nil {
		return err
	}

	b := experiment.ValidateBalance(result)

	tbl := format.NewTable(format.ASCII)
	tbl.Header("Cell", "Conversations")
	tbl.Columns(
		format.Column{Number: 1, Align: format.AlignLeft},
		format.Column{Number: 2, Align: format.AlignRight},
	)
	cells := make([]string, 0, len(b.Counts))
	for cell := range b.Counts {
		cells = append(cells, cell)
	}
	sort.Strings(cells)
	for _, cell := range cells {
		tbl.Row(cell, b.Counts[cell])
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, tbl.String())
	if b.IsBalanced {
		fmt.Fprintln(out, "Allocation is balanced.")
		return nil
	}
	return fmt.Errorf("allocation is unbalanced: cell counts %v", b.Distinct)
}
