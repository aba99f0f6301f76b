package session

import (
	"context"
	"io"
	"log/slog"
	"time"
)

// UseCaseEvent captures lightweight execution telemetry for one manager
// operation.
type UseCaseEvent struct {
	Name      string
	SessionID string
	Duration  time.Duration
	Success   bool
	Err       error
	Fields    map[string]any
	StartedAt time.Time
}

// UseCaseObserver receives use-case execution events.
type UseCaseObserver interface {
	ObserveUseCase(ctx context.Context, event UseCaseEvent)
}

// NoopUseCaseObserver ignores all events.
type NoopUseCaseObserver struct{}

func (NoopUseCaseObserver) ObserveUseCase(context.Context, UseCaseEvent) {}

type logUseCaseObserver struct {
	logger *slog.Logger
}

// NewLogUseCaseObserver writes manager use-case events to w.
func NewLogUseCaseObserver(w io.Writer) UseCaseObserver {
	if w == nil {
		return NoopUseCaseObserver{}
	}
	return &logUseCaseObserver{
		logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})),
	}
}

func (o *logUseCaseObserver) ObserveUseCase(ctx context.Context, event UseCaseEvent) {
	attrs := make([]any, 0, 10+len(event.Fields)*2)
	attrs = append(attrs,
		"use_case", event.Name,
		"session_id", event.SessionID,
		"duration_ms", event.Duration.Milliseconds(),
		"success", event.Success,
	)
	for k, v := range event.Fields {
		attrs = append(attrs, k, v)
	}
	if event.Err != nil {
		attrs = append(attrs, "error", event.Err.Error())
		o.logger.ErrorContext(ctx, "session_use_case", attrs...)
		return
	}
	o.logger.InfoContext(ctx, "session_use_case", attrs...)
}

// track starts a use-case timer. Call the returned func with the final
// error; fields may be filled in before that.
func (m *Manager) track(ctx context.Context, name, sessionID string) (fields map[string]any, done func(err error)) {
	start := time.Now()
	fields = map[string]any{}
	return fields, func(err error) {
		m.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      name,
			SessionID: sessionID,
			Duration:  time.Since(start),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
			StartedAt: start,
		})
	}
}
