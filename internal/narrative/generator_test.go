package narrative

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alexanderramin/pblcoach/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedRand always returns the same index, clamped to the pool.
type fixedRand struct{ i int }

func (f fixedRand) IntN(n int) int {
	if f.i >= n {
		return n - 1
	}
	return f.i
}

func TestDefaultPack_Valid(t *testing.T) {
	require.NoError(t, DefaultPack().Validate())
	for _, id := range []domain.StageID{
		domain.StageContext, domain.StageBigIdea, domain.StageEssentialQuestion,
		domain.StageChallenge, domain.StageJourney, domain.StageDeliverables,
	} {
		_, ok := DefaultPack().Stages[id]
		assert.True(t, ok, "missing stage %s", id)
	}
}

func TestGenerator_Prompt_FillsContext(t *testing.T) {
	g := NewGenerator(DefaultPack(), fixedRand{})
	ctx := domain.ProjectContext{Subject: "biology", GradeLevel: "8th graders"}

	got, err := g.Prompt(domain.StageBigIdea, ctx)
	require.NoError(t, err)
	assert.Contains(t, got, "biology project")
	assert.Contains(t, got, "8th graders can connect")
	assert.NotContains(t, got, "{")
}

func TestGenerator_Prompt_FallbackWording(t *testing.T) {
	g := NewGenerator(DefaultPack(), fixedRand{})

	got, err := g.Prompt(domain.StageBigIdea, domain.ProjectContext{})
	require.NoError(t, err)
	assert.Contains(t, got, "your subject project")
}

func TestGenerator_Prompt_UnknownStage(t *testing.T) {
	g := NewGenerator(DefaultPack(), fixedRand{})
	_, err := g.Prompt("showcase", domain.ProjectContext{})

	var unknown *domain.UnknownStageError
	assert.ErrorAs(t, err, &unknown)
}

func TestGenerator_Acknowledge_DeterministicWithFixedSource(t *testing.T) {
	g := NewGenerator(DefaultPack(), fixedRand{i: 0})

	got := g.Acknowledge(domain.StageBigIdea, "  Energy shapes communities  ", domain.ProjectContext{}, false)
	assert.Equal(t,
		`That's a powerful theme. "Energy shapes communities" gives students plenty of room to explore. Let's turn it into an Essential Question that drives inquiry.`,
		got)

	again := g.Acknowledge(domain.StageBigIdea, "  Energy shapes communities  ", domain.ProjectContext{}, false)
	assert.Equal(t, got, again)
}

func TestGenerator_Acknowledge_SelectsByIndex(t *testing.T) {
	g := NewGenerator(DefaultPack(), fixedRand{i: 1})

	got := g.Acknowledge(domain.StageBigIdea, "Energy", domain.ProjectContext{}, false)
	assert.Contains(t, got, "I love that Big Idea.")
	assert.Contains(t, got, "Next, what question")
}

func TestGenerator_Acknowledge_LastStageAddsCompletion(t *testing.T) {
	g := NewGenerator(DefaultPack(), fixedRand{})
	ctx := domain.ProjectContext{Subject: "physics", GradeLevel: "10th grade"}

	got := g.Acknowledge(domain.StageDeliverables, "A science fair", ctx, true)
	assert.Contains(t, got, "Your physics project for 10th grade is ready to launch.")
}

func TestGenerator_Review(t *testing.T) {
	g := NewGenerator(DefaultPack(), fixedRand{})

	review := g.Review(domain.LevelReview, "Energy", domain.ProjectContext{})
	assert.Equal(t, `Here's what I heard: "Energy". Does that capture it, or would you like to refine it?`, review)

	refine := g.Review(domain.LevelRefine, "Energy", domain.ProjectContext{})
	assert.Contains(t, refine, "sharpen it together")
}

func TestGenerator_Refinements(t *testing.T) {
	g := NewGenerator(DefaultPack(), fixedRand{})
	ctx := domain.ProjectContext{Subject: "history"}

	got := g.Refinements(domain.StageBigIdea, "migration", ctx)
	assert.Equal(t, []string{
		"migration shapes the world around us",
		"How history helps us understand migration",
		"The relationship between people and migration",
	}, got)
}

func TestParsePackYAML_OverridesOnlyGivenFields(t *testing.T) {
	data := []byte(`
stages:
  big_idea:
    positive:
      - "Nice one."
review:
  - "Confirm {value}?"
`)
	pack, err := ParsePackYAML(DefaultPack(), data)
	require.NoError(t, err)

	assert.Equal(t, []string{"Nice one."}, pack.Stages[domain.StageBigIdea].Positive)
	assert.Equal(t, DefaultPack().Stages[domain.StageBigIdea].Build, pack.Stages[domain.StageBigIdea].Build)
	assert.Equal(t, []string{"Confirm {value}?"}, pack.Review)
	assert.Equal(t, DefaultPack().Completion, pack.Completion)

	// Base is untouched.
	assert.NotEqual(t, []string{"Nice one."}, DefaultPack().Stages[domain.StageBigIdea].Positive)
}

func TestParsePackYAML_Errors(t *testing.T) {
	_, err := ParsePackYAML(DefaultPack(), []byte("   "))
	assert.Error(t, err)

	_, err = ParsePackYAML(DefaultPack(), []byte("stages: [not, a, map]"))
	assert.Error(t, err)

	_, err = ParsePackYAML(DefaultPack(), []byte(`
stages:
  challenge:
    refinements: ["only one"]
`))
	assert.ErrorContains(t, err, "exactly 3 refinements")

	_, err = ParsePackYAML(DefaultPack(), []byte(`
stages:
  showcase:
    positive: ["hi"]
`))
	assert.ErrorContains(t, err, "no prompt")
}

func TestLoadPackFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pack.yaml")
	require.NoError(t, os.WriteFile(path, []byte("completion: [\"All done for {subject}.\"]\n"), 0o644))

	pack, err := LoadPackFile(path)
	require.NoError(t, err)

	g := NewGenerator(pack, fixedRand{})
	got := g.Acknowledge(domain.StageDeliverables, "A fair", domain.ProjectContext{Subject: "art"}, true)
	assert.Contains(t, got, "All done for art.")

	_, err = LoadPackFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
