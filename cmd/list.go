package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/timvw/agent-studio/internal/studio"
)

var flagListJSON bool

var listCmd = &cobra.Command{
	Use:   "list <kind>",
	Short: "List entities of one kind",
	Long: `List the entities of one kind from the mock API.

Kinds: agents, prompts, llms, knowledge-bases (kb), features, guardrails.
Use --json for machine-readable output.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := studio.ParseKind(args[0])
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		a, err := setup(ctx)
		if err != nil {
			return err
		}
		defer a.close(ctx)

		items, err := a.client.List(ctx, kind)
		if err != nil {
			return fmt.Errorf("failed to list %s: %w", kind, err)
		}

		if flagListJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(items)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tSTATUS\tUPDATED")
		for _, it := range items {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", it.ID, it.Name, colorStatus(it.Status), it.UpdatedAt.Format(time.DateOnly))
		}
		return w.Flush()
	},
}

func init() {
	listCmd.Flags().BoolVar(&flagListJSON, "json", false, "print JSON instead of a table")
	rootCmd.AddCommand(listCmd)
}

// colorStatus colors a status word for terminals. fatih/color disables
// itself when stdout is not a terminal.
func colorStatus(s studio.Status) string {
	word := strings.ToUpper(string(s))
	switch s {
	case studio.StatusActive:
		return color.GreenString(word)
	case studio.StatusError:
		return color.RedString(word)
	case studio.StatusDraft, studio.StatusPaused:
		return color.YellowString(word)
	default:
		return color.HiBlackString(word)
	}
}
