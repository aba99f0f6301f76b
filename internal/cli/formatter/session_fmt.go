package formatter

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/alexanderramin/pblcoach/internal/repository"
	"github.com/alexanderramin/pblcoach/internal/session"
	"github.com/alexanderramin/pblcoach/internal/stage"
)

// FormatSessionList renders stored sessions as a table.
func FormatSessionList(list []repository.SessionSummary, totalStages int, now time.Time) string {
	if len(list) == 0 {
		return Dim("No design sessions yet. Start one with: pblcoach design") + "\n"
	}

	rows := make([][]string, 0, len(list))
	for _, s := range list {
		status := StyleGreen.Render("● active")
		if s.Terminal {
			status = StyleDim.Render("✔ done")
		}
		rows = append(rows, []string{
			TruncID(s.ID),
			orDash(s.Subject),
			orDash(s.GradeLevel),
			string(s.CurrentStageID),
			fmt.Sprintf("%d/%d", s.CompletedCount, totalStages),
			status,
			HumanTimestampFrom(s.UpdatedAt, now),
		})
	}
	return RenderTable([]string{"ID", "SUBJECT", "GRADE", "STAGE", "DONE", "STATUS", "UPDATED"}, rows)
}

// FormatSummary renders one session stage by stage.
func FormatSummary(sum session.Summary) string {
	var b strings.Builder

	b.WriteString(Header("Design session " + sum.SessionID))
	b.WriteString("\n")
	b.WriteString(StageProgress(sum.CompletedCount(), len(sum.Stages), 20))
	b.WriteString("\n\n")

	for _, st := range sum.Stages {
		marker := StyleDim.Render("○")
		switch {
		case st.Completed:
			marker = StyleGreen.Render("✔")
		case st.Current:
			marker = StyleYellow.Render("▶")
		}
		name := st.Name
		if !st.Required {
			name += Dim(" (optional)")
		}
		fmt.Fprintf(&b, "%s %s\n", marker, name)

		keys := make([]string, 0, len(st.Values))
		for k := range st.Values {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "    %s %s\n", Dim(k+":"), st.Values[k])
		}
	}

	if sum.Pending != nil {
		fmt.Fprintf(&b, "\n%s %s\n", Dim("Pending:"), StyleYellow.Render(sum.Pending.PendingValue))
	}
	switch {
	case sum.Terminal:
		fmt.Fprintf(&b, "\n%s\n", StyleGreen.Render("Unit design complete."))
	case sum.RequiredComplete():
		fmt.Fprintf(&b, "\n%s\n", StyleBlue.Render("All required stages done; the rest are optional."))
	}
	return b.String()
}

// FormatStages renders the stage chain in order.
func FormatStages(stages []stage.Stage) string {
	rows := make([][]string, 0, len(stages))
	for i, st := range stages {
		req := StyleGreen.Render("required")
		if !st.Required {
			req = Dim("optional")
		}
		next := string(st.Next)
		if st.IsLast() {
			next = Dim("(end)")
		}
		rows = append(rows, []string{fmt.Sprintf("%d", i+1), string(st.ID), st.Name, req, next})
	}
	return RenderTable([]string{"#", "ID", "NAME", "", "NEXT"}, rows)
}

func orDash(s string) string {
	if s == "" {
		return Dim("--")
	}
	return Truncate(s, 24)
}
