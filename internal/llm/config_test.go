package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig_DisabledWithCoachTask(t *testing.T) {
	cfg := DefaultConfig()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, 8000, cfg.TaskTimeout(TaskCoach))
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("PBLCOACH_LLM_ENABLED", "true")
	t.Setenv("PBLCOACH_LLM_MODEL", "mistral")
	t.Setenv("PBLCOACH_LLM_ENDPOINT", "http://ollama:11434")
	t.Setenv("PBLCOACH_LLM_MAX_RETRIES", "0")
	t.Setenv("PBLCOACH_LLM_TIMEOUT_MS", "9000")
	t.Setenv("PBLCOACH_LLM_COACH_TIMEOUT_MS", "15000")

	cfg := LoadConfig()

	assert.True(t, cfg.Enabled)
	assert.Equal(t, "mistral", cfg.Model)
	assert.Equal(t, "http://ollama:11434", cfg.Endpoint)
	assert.Equal(t, 0, cfg.MaxRetries)
	assert.Equal(t, 9000, cfg.TimeoutMs)
	assert.Equal(t, 15000, cfg.TaskTimeout(TaskCoach))
}

func TestLoadConfig_InvalidValuesIgnored(t *testing.T) {
	t.Setenv("PBLCOACH_LLM_COACH_TIMEOUT_MS", "not-a-number")
	t.Setenv("PBLCOACH_LLM_MAX_RETRIES", "-2")

	cfg := LoadConfig()

	assert.Equal(t, 8000, cfg.TaskTimeout(TaskCoach))
	assert.Equal(t, 1, cfg.MaxRetries)
}

func TestTaskTimeout_FallsBackToGlobal(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TimeoutMs = 1234
	assert.Equal(t, 1234, cfg.TaskTimeout(TaskType("unknown")))
}
