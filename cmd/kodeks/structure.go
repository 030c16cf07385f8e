package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var structureCmd = &cobra.Command{
	Use:   "structure <code>",
	Short: "Show a code's articles as of today",
	Long: `Show every article of a code with its current state: the version in
force today, a repeal note, or pending when no version is in force yet.

Example:
  kodeks structure GK_RF`,
	Args: cobra.ExactArgs(1),
	RunE: runStructure,
}

func init() {
	rootCmd.AddCommand(structureCmd)
}

func runStructure(_ *cobra.Command, args []string) error {
	ctx, cancel := queryContext()
	defer cancel()

	c := connect(ctx)
	defer c.pool.Close()

	st, err := c.query.Structure(ctx, args[0])
	if err != nil {
		return err
	}

	state := "fully consolidated"
	if !st.FullyConsolidated {
		state = "consolidation in progress"
	}
	fmt.Printf("%s: %s (%s)\n", st.Code.ID, st.Code.Name, st.Code.Status)
	fmt.Printf("%d articles: %d current, %d repealed; %d versions; %s\n",
		st.TotalArticles, st.CurrentArticles, st.RepealedArticles, st.TotalVersions, state)
	fmt.Printf("as of %s\n", st.AsOf.Format(time.DateOnly))

	if len(st.Articles) == 0 {
		return nil
	}

	fmt.Printf("\n%-10s %-9s %-11s %-16s %s\n", "ARTICLE", "STATE", "EFFECTIVE", "AMENDMENT", "TITLE")
	for _, a := range st.Articles {
		switch {
		case a.Current != nil:
			title := ""
			if a.Current.Title != nil {
				title = *a.Current.Title
			}
			fmt.Printf("%-10s %-9s %-11s %-16s %s\n", a.ArticleNumber, "current",
				a.Current.EffectiveDate.Format(time.DateOnly), a.Current.Ref(), title)
		case a.Repealed:
			date := ""
			if a.RepealDate != nil {
				date = a.RepealDate.Format(time.DateOnly)
			}
			fmt.Printf("%-10s %-9s %-11s\n", a.ArticleNumber, "repealed", date)
		default:
			fmt.Printf("%-10s %-9s (%d versions, none in force yet)\n",
				a.ArticleNumber, "pending", a.Versions)
		}
	}
	return nil
}
