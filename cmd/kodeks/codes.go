package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kodekslab/kodeks-backend/internal/domain"
)

var registerPublicationRef string

var codesCmd = &cobra.Command{
	Use:   "codes",
	Short: "List and register legal codes",
	RunE:  runCodesList,
}

var codesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered codes with their consolidation state",
	RunE:  runCodesList,
}

var codesRegisterCmd = &cobra.Command{
	Use:   "register <id> [name]",
	Short: "Register a legal code",
	Long: `Register a legal code so amendment batches can reference it.

Examples:
  kodeks codes register GK_RF "Civil Code"
  kodeks codes register NK_RF "Tax Code" --publication-ref "SZ-RF-1998-31"`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runCodesRegister,
}

func init() {
	codesRegisterCmd.Flags().StringVar(&registerPublicationRef, "publication-ref", "",
		"official publication reference")
	codesCmd.AddCommand(codesListCmd, codesRegisterCmd)
	rootCmd.AddCommand(codesCmd)
}

func runCodesList(_ *cobra.Command, _ []string) error {
	ctx, cancel := queryContext()
	defer cancel()

	c := connect(ctx)
	defer c.pool.Close()

	codes, err := c.query.Codes(ctx)
	if err != nil {
		return err
	}
	if len(codes) == 0 {
		fmt.Println("no codes registered")
		return nil
	}

	fmt.Printf("%-12s %-13s %10s  %-16s %s\n", "ID", "STATUS", "AMENDMENTS", "LAST RUN", "NAME")
	for _, code := range codes {
		last := "-"
		if code.LastConsolidatedAt != nil {
			last = code.LastConsolidatedAt.Format("2006-01-02 15:04")
		}
		fmt.Printf("%-12s %-13s %10d  %-16s %s\n",
			code.ID, code.Status, code.AmendmentsApplied, last, code.Name)
	}
	return nil
}

func runCodesRegister(_ *cobra.Command, args []string) error {
	ctx, cancel := queryContext()
	defer cancel()

	c := connect(ctx)
	defer c.pool.Close()

	name := args[0]
	if len(args) > 1 {
		name = args[1]
	}

	now := time.Now().UTC()
	code, err := c.codes.Create(ctx, domain.LegalCode{
		ID:             args[0],
		Name:           name,
		PublicationRef: registerPublicationRef,
		Status:         domain.ConsolidationNotStarted,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		return err
	}

	fmt.Printf("registered %s (%s)\n", code.ID, code.Name)
	return nil
}
