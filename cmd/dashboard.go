package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/timvw/agent-studio/internal/dashboard"
	"github.com/timvw/agent-studio/internal/studio"
	"github.com/timvw/agent-studio/internal/tabs"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Interactive dashboard",
	Long: `Launch the interactive dashboard: categories and entities on the left,
the selected entity's tabbed detail on the right.

Keys: ↑/↓ move, [ and ] switch category, / searches, Enter focuses the
detail tabs (←/→ or 1-9 switch tabs), Esc goes back, r reloads, q quits.
The mouse works for categories, entities and tab labels.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDashboard(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel() // cancels in-flight loads when the dashboard exits

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	cfg := a.cfg
	theme := dashboard.ThemeByName(cfg.Theme)
	a.log.Info("dashboard starting")

	err = dashboard.Run(ctx, dashboard.Options{
		Loader:        &dashboard.Loader{Client: a.client},
		Theme:         theme,
		MarkdownStyle: markdownStyle(cfg.Theme),
		Timing: tabs.Timing{
			SlideDuration: cfg.Tabs.SlideDurationParsed,
			FadeDuration:  cfg.Tabs.FadeDurationParsed,
			FPS:           cfg.Tabs.FPS,
		},
		ReducedMotion: cfg.Tabs.ReducedMotion,
		DirectionBase: tabs.ParseDirectionBase(cfg.Tabs.DirectionBase),
		Seen:          studio.NewSeenSet(),
		Metrics:       a.tel.Metrics,
		Logger:        a.log,
	}, cfg.CatalogFile)
	if err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}

// markdownStyle picks the glamour style matching the color theme.
func markdownStyle(theme string) string {
	if theme == "light" {
		return "light"
	}
	return "dark"
}
