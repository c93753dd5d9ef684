package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ok-very/autoart/internal/rules"
	"github.com/ok-very/autoart/internal/suggest"
)

var (
	suggestStatus string
	suggestStage  string
)

var suggestCmd = &cobra.Command{
	Use:   "suggest <text>",
	Short: "Suggest classifications for an ambiguous item title",
	Long: `Scores every classification rule against the text by keyword overlap
and prints up to three ranked suggestions. Advisory only: nothing is
persisted or applied.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := rules.Context{
			Status:    suggestStatus,
			StageName: suggestStage,
		}
		suggestions := suggest.Suggest(args[0], ctx, rules.DefaultRuleSet())
		if jsonOutput {
			return emitJSON(suggestions)
		}
		if len(suggestions) == 0 {
			fmt.Println("no suggestions")
			return nil
		}
		for _, s := range suggestions {
			fmt.Println(renderSuggestion(s))
		}
		return nil
	},
}

func init() {
	suggestCmd.Flags().StringVar(&suggestStatus, "status", "", "status cell value, if any")
	suggestCmd.Flags().StringVar(&suggestStage, "stage", "", "containing stage name, if any")
	rootCmd.AddCommand(suggestCmd)
}
