package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"goalplan/internal/store"
	"goalplan/internal/web"
)

func newServeCmd() *cobra.Command {
	var addr string
	var dbPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the hosted goal-plan web server",
		Long: strings.TrimSpace(`
Run the HTTP server behind the hosted pages and the editor's JSON API.

State lives in a single SQLite file; it is created on first start.
`),
		Example: strings.TrimSpace(`
# Serve on localhost with a local database file
goalplan serve --addr 127.0.0.1:8080 --db goalplan.db
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := store.Open(context.Background(), dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			srv, err := web.NewServer(web.Config{Addr: addr, DB: db})
			if err != nil {
				return err
			}
			return srv.ListenAndServe()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")
	cmd.Flags().StringVar(&dbPath, "db", "goalplan.db", "Path to the SQLite database file")
	return cmd
}
