package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/setlist/internal/shared"
	"github.com/desertthunder/setlist/internal/ui"
)

// TUI launches the interactive search client.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if r.api == nil || r.engine == nil {
		return fmt.Errorf("%w: API client not initialized", shared.ErrServiceUnavailable)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	if path := r.config.Client.LogFile; path != "" {
		fileLogger, closer, err := shared.NewFileLogger(path)
		if err != nil {
			return fmt.Errorf("failed to create file logger: %w", err)
		}
		defer closer.Close()
		if err := shared.ApplyLogLevel(fileLogger, r.config.Log.Level); err != nil {
			return err
		}
		r.SetLogger(fileLogger)
	}

	baseURL := r.config.Server.PublicURL
	if baseURL == "" {
		baseURL = r.config.Client.BaseURL
	}

	model := ui.NewModel(ctx, ui.Options{
		Service:  r.api,
		Engine:   r.engine,
		Debounce: r.config.Client.Debounce(),
		BaseURL:  baseURL,
		OpenURL:  r.browser,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
