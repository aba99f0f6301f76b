package formatter

import (
	"strings"

	"github.com/alexanderramin/pblcoach/internal/domain"
	"github.com/alexanderramin/pblcoach/internal/session"
)

// FormatTurn renders one coach reply: badges, the message, any pending
// value and numbered suggestions.
func FormatTurn(turn session.Turn) string {
	var b strings.Builder

	var badges []string
	if turn.StageComplete {
		badges = append(badges, StyleGreen.Render("✔ stage complete"))
	} else if badge := LevelBadge(turn.Level); badge != "" {
		badges = append(badges, badge)
	}
	if badge := CodeBadge(turn.Code); badge != "" {
		badges = append(badges, badge)
	}
	if len(badges) > 0 {
		b.WriteString(strings.Join(badges, "  "))
		b.WriteString("\n\n")
	}

	b.WriteString(turn.Message)
	b.WriteString("\n")

	if pc := pending(turn); pc != nil {
		b.WriteString("\n")
		b.WriteString(Dim("Pending: "))
		b.WriteString(StyleYellow.Render(pc.PendingValue))
		b.WriteString("\n")
		b.WriteString(Dim("Run confirm to accept it or refine for alternatives."))
		b.WriteString("\n")
	}

	if len(turn.Suggestions) > 0 {
		b.WriteString("\n")
		b.WriteString(Bold("Suggestions"))
		b.WriteString("\n")
		b.WriteString(NumberedList(turn.Suggestions))
	}
	return b.String()
}

func pending(turn session.Turn) *domain.PendingConfirmation {
	if turn.State == nil {
		return nil
	}
	return turn.State.PendingConfirmation
}
