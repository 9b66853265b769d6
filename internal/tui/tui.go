// Package tui is the interactive viewer: a query editor over a virtualized
// result grid, driven by the session controller. The bubbletea Update loop
// is the control thread; engine calls run inside tea.Cmd goroutines and
// come back as messages, matching the controller's Begin/Run/Apply phases.
package tui

import (
	"context"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/peekdb/peek/internal/cli/config"
	"github.com/peekdb/peek/internal/dropzone"
	"github.com/peekdb/peek/internal/grid"
	"github.com/peekdb/peek/internal/notify"
	"github.com/peekdb/peek/internal/session"
)

// Options wires the viewer to the rest of the application.
type Options struct {
	Controller  *session.Controller
	Grid        *grid.Model
	Hub         *notify.Hub
	Bridge      *dropzone.Bridge
	Config      *config.Config
	ConfigPath  string
	Logger      *slog.Logger
	InitialPath string
}

// Run starts the viewer and blocks until it exits.
func Run(ctx context.Context, opts Options) error {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	p := tea.NewProgram(newModel(ctx, opts),
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err := p.Run()
	return err
}
