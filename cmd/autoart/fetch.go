package main

import (
	"github.com/spf13/cobra"

	"github.com/ok-very/autoart/internal/interpret"
	"github.com/ok-very/autoart/internal/roles"
	"github.com/ok-very/autoart/internal/rules"
	"github.com/ok-very/autoart/internal/types"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <board-id>...",
	Short: "Fetch monday.com boards and interpret them into an import plan",
	Long: `Discovers each board's schema, streams its items page by page, infers
semantic roles for anything the --roles file does not cover, and interprets
the whole workspace into one import plan. Boards are fetched concurrently;
pages within a board stay in cursor order.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		trees, err := newClient().FetchWorkspaceTrees(ctx, args)
		if err != nil {
			return err
		}

		schemas := make([]roles.BoardSchema, 0, len(trees))
		for _, tree := range trees {
			schemas = append(schemas, tree.Schema.RoleSchema())
		}
		explicit, err := loadRoles()
		if err != nil {
			return err
		}
		cfg, _ := roles.InferWorkspaceConfig(schemas, explicit)

		var nodes []types.RawNode
		for _, tree := range trees {
			nodes = append(nodes, tree.RawNodes()...)
		}

		plan, err := interpret.New(rules.DefaultRuleSet()).Interpret(ctx, nodes, cfg, sessionID)
		if err != nil {
			return err
		}
		return emitPlan(plan)
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}
