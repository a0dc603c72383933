package dashboard

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/timvw/agent-studio/internal/tabs"
)

// RenderDetail renders d's detail section once, without animation or
// height management, with tab as the active pane. An empty tab shows the
// first pane.
func RenderDetail(d *Detail, tab string, width int, theme Theme, markdownStyle string) (string, error) {
	kind := d.Entity.Summary().Kind
	if tab != "" && !slices.Contains(tabsFor(kind), tab) {
		return "", fmt.Errorf("unknown tab %q for %s (want one of %s)",
			tab, kind, strings.Join(tabsFor(kind), ", "))
	}
	env := paneEnv{
		st:       newStyles(theme),
		markdown: markdownStyle,
		width:    func() int { return width },
		now:      time.Now,
		spinner:  func() string { return "" },
	}
	s, err := tabs.New(detailPanes(d, env),
		tabs.WithDefaultValue(tab),
		tabs.WithMeasurer(tabs.NoMeasure),
		tabs.WithReducedMotion(true),
		tabs.WithWidth(width),
		tabs.WithTheme(theme.Tabs()),
	)
	if err != nil {
		return "", err
	}
	defer s.Close()
	return s.View(), nil
}
