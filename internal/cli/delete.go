package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"goalplan/internal/client"
	"goalplan/internal/store"
)

func newDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a workspace draft on the server",
		Long: strings.TrimSpace(`
Delete the workspace and everything in it on the server. There is no undo;
download the teaching record first if you want to keep it.
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := resolveCode(app)
			if code == "" {
				return errors.New("delete: no workspace code (pass --code)")
			}
			if !yes {
				return errors.New("delete: refusing without --yes (deletion cannot be undone)")
			}
			c := client.New(resolveServerURL(app))
			if err := c.DeleteWorkspace(cmd.Context(), code); err != nil {
				return err
			}
			// Forget the code so the next editor session starts fresh.
			if cfg, err := store.LoadConfig(); err == nil && cfg.LastCode == code {
				cfg.LastCode = ""
				_ = store.SaveConfig(cfg)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted workspace %s\n", code)
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the deletion")
	return cmd
}
