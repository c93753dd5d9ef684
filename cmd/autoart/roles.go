package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ok-very/autoart/internal/roles"
)

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "Work with workspace role configurations",
}

var rolesInferCmd = &cobra.Command{
	Use:   "infer <board-id>...",
	Short: "Infer a role configuration from board schemas",
	Long: `Discovers each board's schema and infers the most likely role for the
board, every group, and every column. Entries from an explicit --roles file
are kept untouched; inference only fills the gaps. The synthesized YAML goes
to stdout, the inference notes (role, confidence, reason) to stderr.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		client := newClient()

		schemas := make([]roles.BoardSchema, 0, len(args))
		for _, boardID := range args {
			schema, err := client.DiscoverBoardSchema(ctx, boardID)
			if err != nil {
				return err
			}
			schemas = append(schemas, schema.RoleSchema())
		}

		explicit, err := loadRoles()
		if err != nil {
			return err
		}
		cfg, notes := roles.InferWorkspaceConfig(schemas, explicit)

		if jsonOutput {
			return emitJSON(struct {
				Config *roles.WorkspaceConfig `json:"config"`
				Notes  []roles.InferenceNote  `json:"notes"`
			}{cfg, notes})
		}

		out, err := cfg.Marshal()
		if err != nil {
			return err
		}
		fmt.Print(string(out))
		for _, n := range notes {
			fmt.Fprintf(os.Stderr, "%s %s -> %s (%.0f%%, %s)\n",
				n.Unit, n.UnitID, n.Role, n.Confidence*100, n.Reason)
		}
		return nil
	},
}

func init() {
	rolesCmd.AddCommand(rolesInferCmd)
	rootCmd.AddCommand(rolesCmd)
}
