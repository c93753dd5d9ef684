package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ok-very/autoart/internal/monday"
	"github.com/ok-very/autoart/internal/roles"
	"github.com/ok-very/autoart/internal/types"
)

var (
	cfgFile    string
	rolesFile  string
	jsonOutput bool
	sessionID  string
)

var rootCmd = &cobra.Command{
	Use:   "autoart",
	Short: "Interpret CSV and board exports into normalized import plans",
	Long: `autoart converts semi-structured work-tracking exports (CSV files or
monday.com boards) into a normalized import plan: a typed tree of containers
and items with field recordings, classifications, and deferred links.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command with the given signal-aware context.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ./autoart.yaml)")
	pf.StringVar(&rolesFile, "roles", "", "workspace role configuration YAML")
	pf.BoolVar(&jsonOutput, "json", false, "emit JSON instead of a rendered summary")
	pf.StringVar(&sessionID, "session", "", "import session id (default: generated)")
	pf.String("token", "", "monday.com API token")
	pf.String("api-url", monday.DefaultAPIURL, "monday.com API endpoint")
	pf.Int("page-size", monday.DefaultPageSize, "items per fetch page")

	_ = viper.BindPFlag("token", pf.Lookup("token"))
	_ = viper.BindPFlag("api-url", pf.Lookup("api-url"))
	_ = viper.BindPFlag("page-size", pf.Lookup("page-size"))
}

// initConfig wires viper: flags beat environment beats config file.
// Environment variables use the AUTOART_ prefix (AUTOART_TOKEN, ...).
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("autoart")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.config/autoart")
	}
	viper.SetEnvPrefix("AUTOART")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()
}

func newClient() *monday.Client {
	c := monday.NewClient(viper.GetString("token"))
	if url := viper.GetString("api-url"); url != "" {
		c.APIURL = url
	}
	if n := viper.GetInt("page-size"); n > 0 {
		c.PageSize = n
	}
	return c
}

// loadRoles reads the --roles file, or returns nil when none was given.
func loadRoles() (*roles.WorkspaceConfig, error) {
	if rolesFile == "" {
		return nil, nil
	}
	return roles.LoadFile(rolesFile)
}

// readInput reads a file argument, with "-" meaning stdin.
func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func emitJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// emitPlan prints a plan as JSON or as a rendered summary. Blocking
// validation issues set a non-zero exit so scripts can gate on them.
func emitPlan(plan *types.ImportPlan) error {
	if jsonOutput {
		if err := emitJSON(plan); err != nil {
			return err
		}
	} else {
		fmt.Println(renderSummary(plan))
	}
	if plan.HasBlockingIssues() {
		return fmt.Errorf("plan has blocking validation issues")
	}
	return nil
}
