package playground

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"github.com/charmbracelet/glamour"

	"github.com/timvw/agent-studio/internal/studio"
)

// ErrMissingVariables is returned when a declared template variable has no
// value.
var ErrMissingVariables = errors.New("missing template variables")

// MissingVariables lists the declared variables of p without a non-empty
// value in vars, sorted.
func MissingVariables(p studio.Prompt, vars map[string]string) []string {
	var missing []string
	for _, name := range p.Variables {
		if strings.TrimSpace(vars[name]) == "" {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}

// Render executes the prompt template with vars. Templates use Go template
// syntax, e.g. {{.customer}}.
func Render(p studio.Prompt, vars map[string]string) (string, error) {
	if missing := MissingVariables(p, vars); len(missing) > 0 {
		return "", fmt.Errorf("%s: %w: %s", p.ID, ErrMissingVariables, strings.Join(missing, ", "))
	}
	tmpl, err := template.New(p.ID).Option("missingkey=error").Parse(p.Template)
	if err != nil {
		return "", fmt.Errorf("parsing template %s: %w", p.ID, err)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, vars); err != nil {
		return "", fmt.Errorf("rendering template %s: %w", p.ID, err)
	}
	return strings.TrimSpace(b.String()), nil
}

// Preview renders markdown for the terminal. style is a glamour standard
// style name ("dark", "light", "notty"); width <= 0 disables wrapping.
func Preview(markdown, style string, width int) (string, error) {
	if style == "" {
		style = "dark"
	}
	opts := []glamour.TermRendererOption{glamour.WithStandardStyle(style)}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("creating markdown renderer: %w", err)
	}
	out, err := r.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return strings.Trim(out, "\n"), nil
}

// TemplateMarkdown describes a prompt for the detail view: system
// instruction, variables and the raw template in a code block.
func TemplateMarkdown(p studio.Prompt) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s (v%d)\n\n", p.Name, p.Version)
	if p.System != "" {
		fmt.Fprintf(&b, "> %s\n\n", p.System)
	}
	if len(p.Variables) > 0 {
		b.WriteString("**Variables:** ")
		for i, v := range p.Variables {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "`%s`", v)
		}
		b.WriteString("\n\n")
	}
	b.WriteString("```\n")
	b.WriteString(strings.TrimRight(p.Template, "\n"))
	b.WriteString("\n```\n")
	return b.String()
}
