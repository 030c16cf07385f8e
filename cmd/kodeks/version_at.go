package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kodekslab/kodeks-backend/internal/domain"
)

var versionAtCmd = &cobra.Command{
	Use:   "version-at <code> <article> <date>",
	Short: "Show the article version in force on a date",
	Long: `Answer a point-in-time lookup. The answer distinguishes a version in
force, an article not yet in force on that date, and an article repealed
by then.

Example:
  kodeks version-at GK_RF 93 2024-06-01`,
	Args: cobra.ExactArgs(3),
	RunE: runVersionAt,
}

func init() {
	rootCmd.AddCommand(versionAtCmd)
}

func runVersionAt(_ *cobra.Command, args []string) error {
	codeID, article := args[0], args[1]
	at, err := time.Parse(time.DateOnly, args[2])
	if err != nil {
		return fmt.Errorf("date %q: want YYYY-MM-DD", args[2])
	}

	ctx, cancel := queryContext()
	defer cancel()

	c := connect(ctx)
	defer c.pool.Close()

	lookup, err := c.query.VersionAt(ctx, codeID, article, at)
	if err != nil {
		return err
	}

	switch lookup.Outcome {
	case domain.LookupFound:
		v := lookup.Version
		fmt.Printf("article %s of %s, in force on %s\n", article, codeID, args[2])
		fmt.Printf("effective %s, amendment %s, sequence %d\n",
			v.EffectiveDate.Format(time.DateOnly), v.Ref(), v.SequenceNo)
		if v.Title != nil {
			fmt.Printf("title: %s\n", *v.Title)
		}
		fmt.Printf("\n%s\n", v.Text)

	case domain.LookupNotYetInForce:
		fmt.Printf("article %s of %s: no version in force on %s\n", article, codeID, args[2])

	case domain.LookupRepealed:
		v := lookup.Version
		date := args[2]
		if v.RepealDate != nil {
			date = v.RepealDate.Format(time.DateOnly)
		}
		fmt.Printf("article %s of %s: repealed as of %s by amendment %s\n",
			article, codeID, date, v.Ref())
	}
	return nil
}
