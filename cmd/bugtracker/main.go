package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/browser"
	"github.com/robby/bugtracker/internal/api"
	"github.com/robby/bugtracker/internal/config"
	"github.com/robby/bugtracker/internal/debug"
	"github.com/robby/bugtracker/internal/store"
	"github.com/robby/bugtracker/internal/tui"
	"github.com/spf13/cobra"
)

var (
	// CLI flags
	apiURLFlag    string
	webURLFlag    string
	configFlag    string
	debugFlag     bool
	bugFlag       int
	listWidthFlag int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bugtracker",
		Short: "Terminal UI for the bug tracker",
		Long: `bugtracker is a terminal user interface for the bug tracker REST API.

List, create, edit and delete bugs, and read or add comments, with keyboard navigation.

Configuration (lowest to highest precedence):
  1. ~/.bugtracker/config.yaml
  2. .bugtracker/config.yaml in the current directory or a parent
  3. BUGTRACKER_* environment variables (e.g. BUGTRACKER_API_URL)
  4. Command-line flags`,
		SilenceUsage: true,
		RunE:         run,
	}

	rootCmd.PersistentFlags().StringVar(&apiURLFlag, "api-url", "", "Bug tracker API base URL (default "+config.DefaultAPIURL+")")
	rootCmd.PersistentFlags().StringVar(&webURLFlag, "web-url", "", "Web UI base URL used to open bugs in a browser")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Path to a config file. Skips project config discovery.")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Write diagnostics to ~/.bugtracker/debug.log")
	rootCmd.Flags().IntVar(&bugFlag, "bug", 0, "Bug ID to open on start. Skips the list.")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Print all bugs and exit",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}
	listCmd.Flags().IntVar(&listWidthFlag, "width", 100, "Table width in columns")

	healthCmd := &cobra.Command{
		Use:   "health",
		Short: "Check that the API is reachable",
		Args:  cobra.NoArgs,
		RunE:  runHealth,
	}

	rootCmd.AddCommand(listCmd, healthCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if bugFlag < 0 {
		return fmt.Errorf("--bug must be a positive bug ID")
	}

	cfg, client, err := setup(cmd)
	if err != nil {
		return err
	}
	defer debug.Close()

	links := tui.Links{
		BugURL: cfg.BugWebURL,
		Open:   browser.OpenURL,
		Copy:   clipboard.WriteAll,
	}
	tui.SetMarkdownStyle(cfg.MarkdownStyle)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app := tui.NewAppModel(ctx, client, store.New(), links, bugFlag)

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("program error: %w", err)
	}

	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	_, client, err := setup(cmd)
	if err != nil {
		return err
	}
	defer debug.Close()

	bugs, err := client.ListBugs(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), tui.RenderBugTable(bugs, listWidthFlag))
	return nil
}

func runHealth(cmd *cobra.Command, args []string) error {
	cfg, client, err := setup(cmd)
	if err != nil {
		return err
	}
	defer debug.Close()

	status, err := client.Health(cmd.Context())
	if err != nil {
		return healthError(cfg.APIURL, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", cfg.APIURL, status)
	return nil
}

// setup loads configuration, starts the debug log and builds the API client.
func setup(cmd *cobra.Command) (*config.Config, *api.Client, error) {
	opts := []config.Option{config.WithOverrides(flagOverrides(cmd))}
	if configFlag != "" {
		opts = append(opts, config.WithConfigFile(configFlag))
	}

	cfg, err := config.Load(opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := debug.Init(cfg.Debug, cfg.DebugLogPath); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: debug logging disabled: %v\n", err)
	}
	reportDebugLog(os.Stderr)
	debug.Logf("config: api=%s web=%s timeout=%s", cfg.APIURL, cfg.WebURL, cfg.RequestTimeout)

	client := api.New(cfg.APIURL, api.WithTimeout(cfg.RequestTimeout))
	return cfg, client, nil
}

// healthError names the API that failed and, when it answered, its status.
func healthError(apiURL string, err error) error {
	if code := api.StatusCode(err); code != 0 {
		return fmt.Errorf("%s answered HTTP %d: %w", apiURL, code, err)
	}
	return fmt.Errorf("%s: %w", apiURL, err)
}

// reportDebugLog tells the user where diagnostics go before the TUI takes
// over the terminal.
func reportDebugLog(w io.Writer) {
	if debug.Enabled() {
		fmt.Fprintf(w, "Writing debug log to %s\n", debug.Path())
	}
}

// flagOverrides returns only flags the user set, so unset flags do not mask
// config files or the environment.
func flagOverrides(cmd *cobra.Command) map[string]any {
	overrides := map[string]any{}
	flags := cmd.Flags()
	if flags.Changed("api-url") {
		overrides[config.KeyAPIURL] = apiURLFlag
	}
	if flags.Changed("web-url") {
		overrides[config.KeyWebURL] = webURLFlag
	}
	if flags.Changed("debug") {
		overrides[config.KeyDebug] = debugFlag
	}
	return overrides
}
