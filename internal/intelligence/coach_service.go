package intelligence

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/pblcoach/internal/domain"
	"github.com/alexanderramin/pblcoach/internal/llm"
)

// Reply sources.
const (
	SourceLLM           = "llm"
	SourceDeterministic = "deterministic"
)

// CoachRequest describes one engine decision to be phrased for the teacher.
type CoachRequest struct {
	StageID       domain.StageID
	StageName     string
	Input         string
	Accepted      bool
	StageComplete bool
	Level         domain.ConfirmationLevel
	Context       domain.ProjectContext
	// Draft is the deterministic narrative message for the decision.
	Draft string
}

// CoachReply is the text shown to the teacher.
type CoachReply struct {
	Message string
	Source  string
}

// CoachService rephrases engine replies. It never changes the decision and
// never fails: any model error yields the draft.
type CoachService interface {
	Reply(ctx context.Context, req CoachRequest) CoachReply
}

type coachService struct {
	client llm.LLMClient
}

// NewCoachService creates a CoachService backed by an LLM client.
func NewCoachService(client llm.LLMClient) CoachService {
	return &coachService{client: client}
}

type coachLLMResponse struct {
	Reply string `json:"reply"`
}

func (s *coachService) Reply(ctx context.Context, req CoachRequest) CoachReply {
	text, err := s.generate(ctx, req)
	if err != nil {
		return CoachReply{Message: req.Draft, Source: SourceDeterministic}
	}
	return CoachReply{Message: text, Source: SourceLLM}
}

func (s *coachService) generate(ctx context.Context, req CoachRequest) (string, error) {
	resp, err := s.client.Generate(ctx, llm.GenerateRequest{
		Task:         llm.TaskCoach,
		SystemPrompt: coachSystemPrompt,
		UserPrompt:   buildCoachUserPrompt(req),
	})
	if err != nil {
		return "", fmt.Errorf("llm coach generation failed: %w", err)
	}

	parsed, err := llm.ExtractJSON[coachLLMResponse](resp.Text, validateCoachResponse)
	if err != nil {
		return "", fmt.Errorf("failed to extract coach reply: %w", err)
	}
	return strings.TrimSpace(parsed.Reply), nil
}

func validateCoachResponse(resp coachLLMResponse) error {
	if strings.TrimSpace(resp.Reply) == "" {
		return fmt.Errorf("reply field is required")
	}
	return nil
}

// DeterministicCoach returns drafts unchanged. It is used when the LLM is
// disabled.
type DeterministicCoach struct{}

func (DeterministicCoach) Reply(_ context.Context, req CoachRequest) CoachReply {
	return CoachReply{Message: req.Draft, Source: SourceDeterministic}
}
