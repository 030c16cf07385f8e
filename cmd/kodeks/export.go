package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export <code>",
	Short: "Print a code's consolidated text",
	Long: `Print the full consolidated text of a code as committed by the last
consolidation run: every live article's current version, in article order.
Repealed articles are omitted.

Example:
  kodeks export GK_RF > gk_rf_consolidated.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
}

func runExport(_ *cobra.Command, args []string) error {
	ctx, cancel := queryContext()
	defer cancel()

	c := connect(ctx)
	defer c.pool.Close()

	snap, err := c.query.Snapshot(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("%s: %s\n", snap.Code.ID, snap.Code.Name)
	fmt.Printf("%d articles in force of %d total\n\n", len(snap.Articles), snap.TotalArticles)

	for _, v := range snap.Articles {
		fmt.Printf("Article %s", v.ArticleNumber)
		if v.Title != nil {
			fmt.Printf(". %s", *v.Title)
		}
		fmt.Printf("\n(effective %s, %s)\n\n%s\n\n",
			v.EffectiveDate.Format(time.DateOnly), v.Ref(), v.Text)
	}
	return nil
}
