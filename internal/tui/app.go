// Package tui is the terminal workspace editor. It mirrors the hosted
// objectives page: one category shared by every goal group, a long-term
// selector per group, and free-text short-term rows.
package tui

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"goalplan/internal/client"
	"goalplan/internal/plan"
	"goalplan/internal/store"
)

// Options configures a TUI session.
type Options struct {
	// ServerURL is the goalplan server to talk to.
	ServerURL string
	// Code selects an existing workspace. Empty falls back to the last-used
	// code from config, then to creating a fresh workspace.
	Code string
	// DownloadDir is where exported records land. Empty means the current
	// directory.
	DownloadDir string
}

// Run starts the editor and blocks until the user quits.
func Run(opts Options) error {
	cfg, err := store.LoadConfig()
	if err != nil {
		return err
	}
	applyThemePreference(cfg)

	serverURL := opts.ServerURL
	if serverURL == "" {
		serverURL = cfg.ServerURL
	}
	if serverURL == "" {
		serverURL = "http://localhost:8080"
	}
	c := client.New(serverURL)

	ctx := context.Background()
	code := opts.Code
	if code == "" {
		code = cfg.LastCode
	}
	if code == "" {
		code, err = c.CreateWorkspace(ctx)
		if err != nil {
			return fmt.Errorf("create workspace: %w", err)
		}
	}

	header, seeds, err := c.FetchPlan(ctx, code)
	if err != nil {
		return fmt.Errorf("load workspace %s: %w", code, err)
	}
	ed := plan.NewEditor(seeds, header.Category)

	cfg.LastCode = code
	if err := store.SaveConfig(cfg); err != nil {
		return err
	}

	dir := opts.DownloadDir
	if dir == "" {
		dir, err = os.Getwd()
		if err != nil {
			return err
		}
	}

	m := newAppModel(c, cfg, code, header, ed, dir)
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
