package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/timvw/agent-studio/internal/playground"
)

var (
	flagPromptVars []string
	flagPromptRaw  bool
)

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Work with prompt templates",
}

var promptRunCmd = &cobra.Command{
	Use:   "run <prompt-id>",
	Short: "Render a prompt and run it through the playground",
	Long: `Render a prompt template with --var values and send it to the
configured playground provider (mock by default).

Example:
  agent-studio prompt run prm-support --var customer=Ada --var question="Where is my invoice?"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		vars, err := parseVars(flagPromptVars)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		a, err := setup(ctx)
		if err != nil {
			return err
		}
		defer a.close(ctx)

		prompt, err := a.client.GetPrompt(ctx, args[0])
		if err != nil {
			return err
		}
		runner, err := playground.NewRunner(a.cfg)
		if err != nil {
			return err
		}
		pg := playground.New(runner,
			playground.WithMetrics(a.tel.Metrics),
			playground.WithLogger(a.log))

		run, err := pg.Run(ctx, prompt, vars)
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stderr, "%s/%s in %s (%d in, %d out tokens)\n",
			run.Provider, run.Model, run.Duration.Round(time.Millisecond), run.Result.InputTokens, run.Result.OutputTokens)
		if flagPromptRaw {
			fmt.Fprintln(os.Stdout, run.Result.Text)
			return nil
		}
		out, err := playground.Preview(run.Result.Text, markdownStyle(a.cfg.Theme), 80)
		if err != nil {
			return err
		}
		fmt.Fprint(os.Stdout, out)
		return nil
	},
}

func init() {
	promptRunCmd.Flags().StringArrayVar(&flagPromptVars, "var", nil, "template variable as key=value (repeatable)")
	promptRunCmd.Flags().BoolVar(&flagPromptRaw, "raw", false, "print the reply without markdown rendering")
	promptCmd.AddCommand(promptRunCmd)
	rootCmd.AddCommand(promptCmd)
}

// parseVars turns key=value pairs into a map.
func parseVars(pairs []string) (map[string]string, error) {
	vars := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("invalid --var %q (want key=value)", p)
		}
		vars[strings.TrimSpace(k)] = v
	}
	return vars, nil
}
