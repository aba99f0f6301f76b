package narrative

import (
	"math/rand/v2"
	"strings"

	"github.com/alexanderramin/pblcoach/internal/domain"
)

// RandSource picks a uniform index in [0, n). *rand.Rand satisfies it.
type RandSource interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Generator selects and fills response templates. Its randomness only
// affects message text, never state or control flow.
type Generator struct {
	pack Pack
	rnd  RandSource
}

// NewGenerator returns a Generator over pack. A nil rnd uses the global
// math/rand source.
func NewGenerator(pack Pack, rnd RandSource) *Generator {
	if rnd == nil {
		rnd = globalRand{}
	}
	return &Generator{pack: pack, rnd: rnd}
}

// Prompt returns the question shown when stageID becomes active.
func (g *Generator) Prompt(stageID domain.StageID, ctx domain.ProjectContext) (string, error) {
	sp, ok := g.pack.Stages[stageID]
	if !ok {
		return "", &domain.UnknownStageError{StageID: stageID}
	}
	return fill(sp.Prompt, "", ctx), nil
}

// Acknowledge composes the message for an accepted input: a positive
// phrase, a build-on phrase and a transition. When last is true the
// completion message follows the transition.
func (g *Generator) Acknowledge(stageID domain.StageID, value string, ctx domain.ProjectContext, last bool) string {
	sp := g.pack.Stages[stageID]
	parts := []string{
		g.pick(sp.Positive),
		g.pick(sp.Build),
		g.pick(sp.Transition),
	}
	if last {
		parts = append(parts, g.pick(g.pack.Completion))
	}
	return fill(joinNonEmpty(parts), value, ctx)
}

// Review composes the message asking the teacher to confirm or refine a
// pending value.
func (g *Generator) Review(level domain.ConfirmationLevel, value string, ctx domain.ProjectContext) string {
	pool := g.pack.Review
	if level == domain.LevelRefine {
		pool = g.pack.Refine
	}
	return fill(g.pick(pool), value, ctx)
}

// Refinements returns the fixed alternative phrasings for a stage with
// placeholders filled. The order is stable.
func (g *Generator) Refinements(stageID domain.StageID, value string, ctx domain.ProjectContext) []string {
	sp := g.pack.Stages[stageID]
	out := make([]string, 0, len(sp.Refinements))
	for _, tmpl := range sp.Refinements {
		out = append(out, fill(tmpl, value, ctx))
	}
	return out
}

func (g *Generator) pick(pool []string) string {
	if len(pool) == 0 {
		return ""
	}
	return pool[g.rnd.IntN(len(pool))]
}

// fill substitutes {value}, {subject}, {gradeLevel} and {duration}.
// Missing context falls back to neutral wording.
func fill(tmpl, value string, ctx domain.ProjectContext) string {
	if value == "" {
		value = "your idea"
	}
	r := strings.NewReplacer(
		"{value}", strings.TrimSpace(value),
		"{subject}", orDefault(ctx.Subject, "your subject"),
		"{gradeLevel}", orDefault(ctx.GradeLevel, "your students"),
		"{duration}", orDefault(ctx.Duration, "the unit"),
	)
	return r.Replace(tmpl)
}

func orDefault(s, fallback string) string {
	if s = strings.TrimSpace(s); s == "" {
		return fallback
	}
	return s
}

func joinNonEmpty(parts []string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}
