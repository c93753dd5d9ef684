package main

import (
	"github.com/spf13/cobra"

	"github.com/ok-very/autoart/internal/interpret"
	"github.com/ok-very/autoart/internal/rules"
)

var interpretCmd = &cobra.Command{
	Use:   "interpret <csv-file>",
	Short: "Interpret a CSV export into an import plan",
	Long: `Parses a CSV export (use "-" for stdin), detects stage headers and a
column-label row, and interprets the rows into an import plan. Structural
oddities become validation issues on the plan rather than failures; only a
file with zero data rows aborts.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(args[0])
		if err != nil {
			return err
		}
		cfg, err := loadRoles()
		if err != nil {
			return err
		}

		it := interpret.New(rules.DefaultRuleSet())
		plan, err := it.InterpretCSV(cmd.Context(), string(data), cfg, sessionID)
		if err != nil {
			return err
		}
		return emitPlan(plan)
	},
}

func init() {
	rootCmd.AddCommand(interpretCmd)
}
