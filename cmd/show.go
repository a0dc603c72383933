package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/timvw/agent-studio/internal/dashboard"
	"github.com/timvw/agent-studio/internal/studio"
)

var (
	flagShowTab   string
	flagShowWidth int
)

var showCmd = &cobra.Command{
	Use:   "show <kind> <id>",
	Short: "Print an entity's detail section",
	Long: `Render the detail section of one entity to stdout, the same panes the
dashboard shows, without animation.

Use --tab to pick the pane (e.g. overview, metrics, history).`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := studio.ParseKind(args[0])
		if err != nil {
			return err
		}
		id := args[1]

		ctx := cmd.Context()
		a, err := setup(ctx)
		if err != nil {
			return err
		}
		defer a.close(ctx)

		loader := &dashboard.Loader{Client: a.client}
		d, err := loader.Detail(ctx, id)
		if err != nil {
			return err
		}
		if got := d.Entity.Summary().Kind; got != kind {
			return fmt.Errorf("%s is one of the %s, not %s", id, got, kind)
		}

		out, err := dashboard.RenderDetail(d, strings.ToLower(flagShowTab), flagShowWidth,
			dashboard.ThemeByName(a.cfg.Theme), markdownStyle(a.cfg.Theme))
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, out)
		return nil
	},
}

func init() {
	showCmd.Flags().StringVar(&flagShowTab, "tab", "", "pane to show (default: the first)")
	showCmd.Flags().IntVar(&flagShowWidth, "width", 80, "render width in columns")
	rootCmd.AddCommand(showCmd)
}
