package formatter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/alexanderramin/pblcoach/internal/session"
)

// SummaryMarkdown renders a session as a markdown unit plan, one section
// per stage.
func SummaryMarkdown(sum session.Summary) string {
	var b strings.Builder

	b.WriteString("# Unit plan\n\n")
	fmt.Fprintf(&b, "Session `%s`, %d of %d stages complete.\n", sum.SessionID, sum.CompletedCount(), len(sum.Stages))

	for _, st := range sum.Stages {
		fmt.Fprintf(&b, "\n## %s", st.Name)
		if !st.Required {
			b.WriteString(" (optional)")
		}
		b.WriteString("\n\n")

		if len(st.Values) == 0 {
			if st.Current {
				b.WriteString("_In progress._\n")
			} else {
				b.WriteString("_Not answered yet._\n")
			}
			continue
		}
		keys := make([]string, 0, len(st.Values))
		for k := range st.Values {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		if len(keys) == 1 {
			b.WriteString(st.Values[keys[0]])
			b.WriteString("\n")
			continue
		}
		for _, k := range keys {
			fmt.Fprintf(&b, "- **%s:** %s\n", k, st.Values[k])
		}
	}

	if sum.Pending != nil {
		fmt.Fprintf(&b, "\n> Waiting for confirmation: %s\n", sum.Pending.PendingValue)
	}
	return b.String()
}

// RenderMarkdown styles md for the terminal. style is a glamour standard
// style name such as "dark" or "notty"; empty picks one from the terminal.
func RenderMarkdown(md, style string, width int) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == "" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("creating markdown renderer: %w", err)
	}
	return r.Render(md)
}
