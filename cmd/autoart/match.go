package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ok-very/autoart/internal/schemamatch"
	"github.com/ok-very/autoart/internal/types"
)

var schemasFile string

// itemMatch pairs one plan item with its schema-match result.
type itemMatch struct {
	ItemTempID string             `json:"item_temp_id"`
	Title      string             `json:"title"`
	Result     schemamatch.Result `json:"result"`
}

var matchCmd = &cobra.Command{
	Use:   "match <plan.json>",
	Short: "Match a plan's field recordings against known record schemas",
	Long: `Reads an import plan (as produced by "interpret --json" or
"fetch --json") and a JSON array of record-type schemas, and reports for
each item with field recordings the best-matching schema, or a proposed new
one when nothing matches confidently.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		planData, err := readInput(args[0])
		if err != nil {
			return err
		}
		var plan types.ImportPlan
		if err := json.Unmarshal(planData, &plan); err != nil {
			return fmt.Errorf("parse plan: %w", err)
		}

		var defs []schemamatch.Definition
		if schemasFile != "" {
			defsData, err := readInput(schemasFile)
			if err != nil {
				return err
			}
			if err := json.Unmarshal(defsData, &defs); err != nil {
				return fmt.Errorf("parse schemas: %w", err)
			}
		}

		var matches []itemMatch
		for _, item := range plan.Items {
			if len(item.FieldRecordings) == 0 {
				continue
			}
			matches = append(matches, itemMatch{
				ItemTempID: item.TempID,
				Title:      item.Title,
				Result:     schemamatch.Match(item.FieldRecordings, defs),
			})
		}

		if jsonOutput {
			return emitJSON(matches)
		}
		for _, m := range matches {
			fmt.Println(renderMatch(m))
		}
		return nil
	},
}

func init() {
	matchCmd.Flags().StringVar(&schemasFile, "schemas", "", "JSON file with existing record schemas")
	rootCmd.AddCommand(matchCmd)
}
