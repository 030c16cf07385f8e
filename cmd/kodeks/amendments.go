package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var amendmentsCmd = &cobra.Command{
	Use:   "amendments <code>",
	Short: "Show a code's amendment application log",
	Long: `List every amendment ever applied against a code in application order,
with its outcome and the articles it touched. Conflicted and failed runs
stay in the log; they are part of the provenance.

Example:
  kodeks amendments GK_RF`,
	Args: cobra.ExactArgs(1),
	RunE: runAmendments,
}

func init() {
	rootCmd.AddCommand(amendmentsCmd)
}

func runAmendments(_ *cobra.Command, args []string) error {
	ctx, cancel := queryContext()
	defer cancel()

	c := connect(ctx)
	defer c.pool.Close()

	apps, err := c.query.Amendments(ctx, args[0])
	if err != nil {
		return err
	}
	if len(apps) == 0 {
		fmt.Printf("no amendments applied to %s\n", args[0])
		return nil
	}

	fmt.Printf("%-16s %-9s %-11s %4s  %-14s %s\n",
		"AMENDMENT", "STATUS", "EFFECTIVE", "SEQ", "CLASS", "ARTICLES")
	for _, a := range apps {
		touched := len(a.AddedArticles) + len(a.ModifiedArticles) + len(a.RepealedArticles)
		note := fmt.Sprintf("%d applied", touched)
		if n := len(a.Conflicts); n > 0 {
			note = fmt.Sprintf("%d applied, %d conflicts", touched, n)
		}
		fmt.Printf("%-16s %-9s %-11s %4d  %-14s %s\n",
			a.AmendmentRef, a.Status, a.EffectiveDate.Format(time.DateOnly),
			a.SequenceNo, a.Classification, note)
	}
	return nil
}
