package intelligence

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/pblcoach/internal/domain"
)

const coachSystemPrompt = `You are a warm, concise instructional coach helping a teacher design a project-based learning unit.
The conversation moves through fixed stages. A deterministic engine has already decided the outcome of the teacher's latest message; you only rephrase the reply.

Rules:
- Never change the decision: if the input was rejected, say so; if the stage is complete, say so.
- Keep the next question from the draft reply when there is one.
- At most 4 sentences. No lists, no markdown.
- Respond with a single JSON object: {"reply": "<text>"}`

func buildCoachUserPrompt(req CoachRequest) string {
	var b strings.Builder

	b.WriteString("## Stage\n")
	fmt.Fprintf(&b, "%s (%s)\n\n", req.StageName, req.StageID)

	b.WriteString("## Project so far\n")
	writeContextLine(&b, "Subject", req.Context.Subject)
	writeContextLine(&b, "Grade level", req.Context.GradeLevel)
	writeContextLine(&b, "Duration", req.Context.Duration)
	writeContextLine(&b, "Big idea", req.Context.BigIdea)
	writeContextLine(&b, "Essential question", req.Context.EssentialQuestion)
	writeContextLine(&b, "Challenge", req.Context.Challenge)

	b.WriteString("\n## Teacher said\n")
	b.WriteString(req.Input)

	b.WriteString("\n\n## Decision\n")
	fmt.Fprintf(&b, "%s\n", describeDecision(req))

	b.WriteString("\n## Draft reply\n")
	b.WriteString(req.Draft)
	return b.String()
}

func writeContextLine(b *strings.Builder, label, value string) {
	if value == "" {
		value = "(not set)"
	}
	fmt.Fprintf(b, "- %s: %s\n", label, value)
}

func describeDecision(req CoachRequest) string {
	switch {
	case !req.Accepted:
		return "rejected: the input does not meet the stage requirements"
	case req.StageComplete:
		return "accepted: the stage is complete"
	case req.Level == domain.LevelReview:
		return "held: ask the teacher to confirm the value"
	default:
		return "held: offer to refine the value"
	}
}
