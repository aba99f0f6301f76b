package unitplan

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/pblcoach/internal/domain"
	"github.com/alexanderramin/pblcoach/internal/stage"
	"github.com/alexanderramin/pblcoach/internal/testutil"
)

func validMinimalDoc() *Document {
	return &Document{Version: Version, Stage: string(domain.StageContext)}
}

func TestValidate_ValidMinimal(t *testing.T) {
	assert.Empty(t, Validate(validMinimalDoc(), stage.Default()))
}

func TestValidate_ValidFull(t *testing.T) {
	doc := &Document{
		Version:   Version,
		Stage:     string(domain.StageChallenge),
		Completed: []string{"context", "big_idea", "essential_question"},
		Data: map[string]string{
			domain.KeyGradeLevel:        "7th grade",
			domain.KeyBigIdea:           "Energy shapes communities",
			domain.KeyEssentialQuestion: "How can energy transform rural communities?",
		},
		Attempts:  1,
		Pending:   &PendingDoc{Value: "Build something", Mode: "review", Attempts: 1},
		CreatedAt: "2026-03-01T09:00:00Z",
		UpdatedAt: "2026-03-01T09:30:00Z",
	}
	assert.Empty(t, Validate(doc, stage.Default()))
}

func TestValidate_CollectsEveryProblem(t *testing.T) {
	doc := &Document{
		Version:   2,
		Stage:     "nowhere",
		Completed: []string{"context", "context", "mystery"},
		Data:      map[string]string{"favouriteColour": "blue"},
		Attempts:  -1,
		Terminal:  true,
		Pending:   &PendingDoc{Mode: "maybe", Attempts: -2},
		CreatedAt: "yesterday",
	}

	errs := Validate(doc, stage.Default())

	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}
	for _, want := range []string{
		"version: unsupported 2",
		`current_stage: unknown stage "nowhere"`,
		`completed_stages[1]: "context" listed twice`,
		`completed_stages[2]: unknown stage "mystery"`,
		`data: unknown key "favouriteColour"`,
		"attempts: must be >= 0",
		"pending: a finished session cannot hold a pending answer",
		"pending.value is required",
		`pending.mode: invalid "maybe"`,
		"pending.attempts: must be >= 0",
		`created_at: invalid timestamp "yesterday"`,
	} {
		assert.True(t, containsPrefix(msgs, want), "missing error %q in %v", want, msgs)
	}
	assert.Len(t, errs, 11)
}

func TestValidate_CompletedStagesNeedAcceptedData(t *testing.T) {
	doc := &Document{
		Version:   Version,
		Stage:     string(domain.StageJourney),
		Completed: []string{"context", "big_idea", "essential_question", "deliverables"},
		Data: map[string]string{
			domain.KeyBigIdea:           "Energy shapes communities",
			domain.KeyEssentialQuestion: "no",
		},
	}

	errs := Validate(doc, stage.Default())

	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}
	require.Len(t, errs, 2, "%v", msgs)
	assert.True(t, containsPrefix(msgs, `completed_stages[2]: data.essentialQuestion "no" is not accepted by "essential_question"`), "%v", msgs)
	assert.True(t, containsPrefix(msgs, `completed_stages[3]: "deliverables" is complete but data.deliverables is missing`), "%v", msgs)
}

func TestValidate_MissingStage(t *testing.T) {
	doc := validMinimalDoc()
	doc.Stage = ""
	errs := Validate(doc, stage.Default())
	require.Len(t, errs, 1)
	assert.EqualError(t, errs[0], "current_stage is required")
}

func TestExportConvert_RoundTrip(t *testing.T) {
	state := testutil.NewTestConversation(
		testutil.AtStage(domain.StageChallenge),
		testutil.WithCompleted(domain.StageContext, domain.StageBigIdea, domain.StageEssentialQuestion),
		testutil.WithData(domain.KeyGradeLevel, "7th grade"),
		testutil.WithData(domain.KeyBigIdea, "Energy shapes communities"),
		testutil.WithData(domain.KeyEssentialQuestion, "How can energy transform rural communities?"),
		testutil.WithData(domain.KeyLearningJourney, "Research then build"),
		testutil.WithPending("Build a thing", domain.LevelRefine, 3),
	)

	doc := Export(state)
	require.Empty(t, Validate(doc, stage.Default()))

	got := Convert(doc, state.SessionID, time.Now())
	if diff := cmp.Diff(state, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("round trip mismatch (-exported +converted):\n%s", diff)
	}
}

func TestConvert_DefaultsTimestampsAndRebuildsContext(t *testing.T) {
	now := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)
	doc := validMinimalDoc()
	doc.Data = map[string]string{domain.KeySubject: "history", domain.KeyDeliverables: "A museum exhibit"}

	state := Convert(doc, "imported", now)

	assert.Equal(t, "imported", state.SessionID)
	assert.Equal(t, now, state.CreatedAt)
	assert.Equal(t, now, state.UpdatedAt)
	assert.Equal(t, "history", state.Context.Subject)
	assert.Equal(t, "A museum exhibit", state.ProjectData[domain.KeyDeliverables])
	assert.Nil(t, state.PendingConfirmation)
}

func TestWriteAndLoad(t *testing.T) {
	state := testutil.NewTestConversation(
		testutil.AtStage(domain.StageBigIdea),
		testutil.WithCompleted(domain.StageContext),
		testutil.WithData(domain.KeySubject, "science"),
	)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Export(state)))
	assert.Contains(t, buf.String(), `"current_stage": "big_idea"`)

	path := filepath.Join(t.TempDir(), "plan.json")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	doc, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Export(state), doc)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Parse([]byte("{not json"))
	assert.ErrorContains(t, err, "parsing unit plan")
}

func containsPrefix(msgs []string, prefix string) bool {
	for _, m := range msgs {
		if len(m) >= len(prefix) && m[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}
