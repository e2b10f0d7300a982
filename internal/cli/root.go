// Package cli wires the goalplan commands: the default interactive editor,
// the hosted web server, and the scriptable export/delete helpers.
package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"goalplan/internal/store"
	"goalplan/internal/tui"
)

type App struct {
	ServerURL string
	Code      string
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "goalplan",
		Short:        "Goal-plan drafting for orientation and daily-living teaching",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive editor (creates a workspace on first run)
  goalplan

  # Reopen a workspace by its six-digit code
  goalplan --code 123456

  # Run the hosted web server
  goalplan serve --addr :8080 --db goalplan.db
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive editor.
			if len(args) == 0 {
				return runEditor(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.ServerURL, "server", envOr("GOALPLAN_SERVER", ""), "Workspace server base URL (default: config, then http://localhost:8080)")
	cmd.PersistentFlags().StringVar(&app.Code, "code", "", "Workspace code (default: last-used code from config)")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newDeleteCmd(app))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func runEditor(app *App) error {
	return tui.Run(tui.Options{
		ServerURL: app.ServerURL,
		Code:      app.Code,
	})
}

// resolveCode picks the workspace code: --code flag first, then the last-used
// code remembered in config.
func resolveCode(app *App) string {
	if c := strings.TrimSpace(app.Code); c != "" {
		return c
	}
	if cfg, err := store.LoadConfig(); err == nil {
		return cfg.LastCode
	}
	return ""
}

// resolveServerURL picks the server: --server flag, then config, then the
// local default.
func resolveServerURL(app *App) string {
	if u := strings.TrimSpace(app.ServerURL); u != "" {
		return u
	}
	if cfg, err := store.LoadConfig(); err == nil && cfg.ServerURL != "" {
		return cfg.ServerURL
	}
	return "http://localhost:8080"
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
