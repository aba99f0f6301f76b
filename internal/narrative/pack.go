package narrative

import (
	"bytes"
	"fmt"
	"os"

	"github.com/alexanderramin/pblcoach/internal/domain"
	"gopkg.in/yaml.v3"
)

// RefinementCount is the fixed number of alternative phrasings offered
// when a teacher asks to refine a stage.
const RefinementCount = 3

// StagePack holds the phrase pools for one stage.
type StagePack struct {
	Prompt      string   `yaml:"prompt"`
	Positive    []string `yaml:"positive"`
	Build       []string `yaml:"build"`
	Transition  []string `yaml:"transition"`
	Refinements []string `yaml:"refinements"`
}

// Pack is the full set of templates the generator selects from.
type Pack struct {
	Stages     map[domain.StageID]StagePack `yaml:"stages"`
	Review     []string                     `yaml:"review"`
	Refine     []string                     `yaml:"refine"`
	Completion []string                     `yaml:"completion"`
}

// Validate checks that every stage has a prompt, non-empty pools and
// exactly RefinementCount refinements.
func (p Pack) Validate() error {
	if len(p.Review) == 0 || len(p.Refine) == 0 || len(p.Completion) == 0 {
		return fmt.Errorf("narrative pack: review, refine and completion pools must be non-empty")
	}
	for id, s := range p.Stages {
		if s.Prompt == "" {
			return fmt.Errorf("narrative pack: stage %q has no prompt", id)
		}
		if len(s.Positive) == 0 || len(s.Build) == 0 || len(s.Transition) == 0 {
			return fmt.Errorf("narrative pack: stage %q needs positive, build and transition phrases", id)
		}
		if len(s.Refinements) != RefinementCount {
			return fmt.Errorf("narrative pack: stage %q needs exactly %d refinements, got %d", id, RefinementCount, len(s.Refinements))
		}
	}
	return nil
}

// ParsePackYAML decodes an override pack and merges it over base. Only
// non-empty fields in the override replace base values.
func ParsePackYAML(base Pack, data []byte) (Pack, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Pack{}, fmt.Errorf("narrative pack: payload is empty")
	}
	var override Pack
	if err := yaml.Unmarshal(data, &override); err != nil {
		return Pack{}, fmt.Errorf("narrative pack: decode: %w", err)
	}

	merged := base.clone()
	for id, s := range override.Stages {
		cur := merged.Stages[id]
		if s.Prompt != "" {
			cur.Prompt = s.Prompt
		}
		if len(s.Positive) > 0 {
			cur.Positive = s.Positive
		}
		if len(s.Build) > 0 {
			cur.Build = s.Build
		}
		if len(s.Transition) > 0 {
			cur.Transition = s.Transition
		}
		if len(s.Refinements) > 0 {
			cur.Refinements = s.Refinements
		}
		merged.Stages[id] = cur
	}
	if len(override.Review) > 0 {
		merged.Review = override.Review
	}
	if len(override.Refine) > 0 {
		merged.Refine = override.Refine
	}
	if len(override.Completion) > 0 {
		merged.Completion = override.Completion
	}

	if err := merged.Validate(); err != nil {
		return Pack{}, err
	}
	return merged, nil
}

// LoadPackFile reads an override pack from path and merges it over the
// built-in pack.
func LoadPackFile(path string) (Pack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Pack{}, fmt.Errorf("narrative pack: read %s: %w", path, err)
	}
	pack, err := ParsePackYAML(DefaultPack(), data)
	if err != nil {
		return Pack{}, fmt.Errorf("%s: %w", path, err)
	}
	return pack, nil
}

func (p Pack) clone() Pack {
	out := Pack{
		Stages:     make(map[domain.StageID]StagePack, len(p.Stages)),
		Review:     p.Review,
		Refine:     p.Refine,
		Completion: p.Completion,
	}
	for id, s := range p.Stages {
		out.Stages[id] = s
	}
	return out
}
