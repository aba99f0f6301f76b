package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/pblcoach/internal/session"
)

// resolveSessionID accepts a full session id or a unique prefix of one,
// such as the 8 characters shown by "sessions list".
func resolveSessionID(ctx context.Context, app *App, input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("session id is required")
	}

	if _, err := app.Sessions.Get(ctx, input); err == nil {
		return input, nil
	} else if !errors.Is(err, session.ErrSessionNotFound) {
		return "", err
	}

	list, err := app.Sessions.List(ctx)
	if err != nil {
		return "", err
	}
	var matches []string
	for _, s := range list {
		if strings.HasPrefix(s.ID, input) {
			matches = append(matches, s.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s", session.ErrSessionNotFound, input)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("session prefix %q is ambiguous (%d matches)", input, len(matches))
	}
}
