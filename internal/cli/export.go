package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"goalplan/internal/client"
)

func newExportCmd(app *App) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "export [code]",
		Short: "Download the workspace's teaching record as a text file",
		Args:  cobra.MaximumNArgs(1),
		Example: strings.TrimSpace(`
# Download the last-used workspace into the current directory
goalplan export

# A specific workspace, to a specific directory
goalplan export 123456 --out ~/Documents
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := resolveCode(app)
			if len(args) == 1 {
				code = strings.TrimSpace(args[0])
			}
			if code == "" {
				return errors.New("export: no workspace code (pass --code or open the editor once)")
			}
			dir := outDir
			if dir == "" {
				var err error
				dir, err = os.Getwd()
				if err != nil {
					return err
				}
			}
			c := client.New(resolveServerURL(app))
			path, err := c.Download(cmd.Context(), code, dir)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out", "", "Directory to save the file in (default: current directory)")
	return cmd
}
