package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var chainCmd = &cobra.Command{
	Use:   "chain <code> <article>",
	Short: "Show an article's full amendment chain",
	Long: `List every version of an article oldest-first: the original text and
each amendment that superseded it, including repeal markers.

Example:
  kodeks chain GK_RF 93`,
	Args: cobra.ExactArgs(2),
	RunE: runChain,
}

func init() {
	rootCmd.AddCommand(chainCmd)
}

func runChain(_ *cobra.Command, args []string) error {
	ctx, cancel := queryContext()
	defer cancel()

	c := connect(ctx)
	defer c.pool.Close()

	chain, err := c.query.Chain(ctx, args[0], args[1])
	if err != nil {
		return err
	}

	fmt.Printf("article %s of %s: %d versions\n\n", args[1], args[0], len(chain))
	fmt.Printf("%3s  %-11s %-16s %4s  %s\n", "#", "EFFECTIVE", "AMENDMENT", "SEQ", "NOTE")
	for i, link := range chain {
		note := ""
		switch {
		case link.Version.IsRepealed:
			note = "repealed"
		case link.Version.IsCurrent:
			note = "current"
		}
		fmt.Printf("%3d  %-11s %-16s %4d  %s\n", i+1,
			link.Version.EffectiveDate.Format(time.DateOnly), link.AmendmentRef,
			link.SequenceNo, note)
	}
	return nil
}
