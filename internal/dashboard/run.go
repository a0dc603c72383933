package dashboard

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/timvw/agent-studio/internal/studio"
)

// Run starts the interactive dashboard and blocks until the user quits.
// When catalogFile is set, edits to it are reloaded into the client while
// the dashboard runs.
func Run(ctx context.Context, opts Options, catalogFile string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := New(ctx, opts)
	defer m.Close()
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))

	if catalogFile != "" {
		w, err := studio.NewCatalogWatcher(opts.Loader.Client, catalogFile,
			studio.WithWatcherLogger(m.log),
			studio.OnReload(func(_ *studio.Catalog, err error) {
				p.Send(catalogReloadedMsg{err: err})
			}))
		if err != nil {
			return err
		}
		if err := w.Start(ctx); err != nil {
			return err
		}
		defer w.Stop()
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running dashboard: %w", err)
	}
	return nil
}

// Close releases every detail section.
func (m *Model) Close() {
	for _, s := range m.sections {
		s.Close()
	}
}
