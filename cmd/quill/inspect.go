package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Show current period spend against the ceiling",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var status struct {
			Period    string `json:"period"`
			Ceiling   int64  `json:"ceiling_micros"`
			Committed int64  `json:"committed_micros"`
			Reserved  int64  `json:"reserved_micros"`
			Remaining int64  `json:"remaining_micros"`
		}
		if err := getJSON("/ledger/status", &status); err != nil {
			return err
		}

		fmt.Printf("period: %s\n", status.Period)
		fmt.Printf("committed: $%.4f  reserved: $%.4f  remaining: $%.4f  ceiling: $%.2f\n",
			dollars(status.Committed),
			dollars(status.Reserved),
			dollars(status.Remaining),
			dollars(status.Ceiling),
		)
		return nil
	},
}

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List the template catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var catalog []struct {
			ID         string `json:"id"`
			Hook       string `json:"hook"`
			Paragraphs int    `json:"paragraphs"`
		}
		if err := getJSON("/templates", &catalog); err != nil {
			return err
		}

		for _, t := range catalog {
			fmt.Printf("%-18s hook=%-13s paragraphs=%d\n", t.ID, t.Hook, t.Paragraphs)
		}
		return nil
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile <user>",
	Short: "Show a user's voice profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var p map[string]any
		if err := getJSON("/profiles/"+args[0], &p); err != nil {
			return err
		}
		return printJSON(p)
	},
}

func init() {
	rootCmd.AddCommand(ledgerCmd, templatesCmd, profileCmd)
}

func dollars(micros int64) float64 {
	return float64(micros) / 1_000_000
}
