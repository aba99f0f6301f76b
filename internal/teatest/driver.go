// Package teatest drives bubbletea models synchronously in tests.
//
// Update is called directly and every returned Cmd is executed and fed
// back until the model goes quiet. Cmds that block (cursor blink timers)
// are abandoned after a short timeout.
package teatest

import (
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// maxDepth bounds Cmd chains so a model that keeps rescheduling itself
// cannot hang a test.
const maxDepth = 100

// cmdTimeout separates message factories, which return at once, from
// timer Cmds that block for hundreds of milliseconds.
const cmdTimeout = 10 * time.Millisecond

// Driver runs a tea.Model without a tea.Program.
type Driver struct {
	T     testing.TB
	Model tea.Model

	// Quit is set once a Cmd produced tea.QuitMsg.
	Quit bool
}

// Option configures a Driver.
type Option func(*Driver)

// WithSize delivers a WindowSizeMsg before anything else.
func WithSize(w, h int) Option {
	return func(d *Driver) {
		d.Model, _ = d.Model.Update(tea.WindowSizeMsg{Width: w, Height: h})
	}
}

// New wraps model and runs its Init Cmd.
func New(t testing.TB, model tea.Model, opts ...Option) *Driver {
	t.Helper()
	d := &Driver{T: t, Model: model}
	for _, opt := range opts {
		opt(d)
	}
	d.drain(d.Model.Init(), 0)
	return d
}

// Send delivers msg and drains the resulting Cmds. It is a no-op after
// the model quit.
func (d *Driver) Send(msg tea.Msg) {
	d.T.Helper()
	if d.Quit {
		return
	}
	var cmd tea.Cmd
	d.Model, cmd = d.Model.Update(msg)
	d.drain(cmd, 0)
}

func (d *Driver) key(t tea.KeyType) {
	d.T.Helper()
	d.Send(tea.KeyMsg{Type: t})
}

// Type sends s one rune at a time.
func (d *Driver) Type(s string) {
	d.T.Helper()
	for _, r := range s {
		d.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

// Enter types line, if any, and presses Enter.
func (d *Driver) Enter(line string) {
	d.T.Helper()
	d.Type(line)
	d.key(tea.KeyEnter)
}

func (d *Driver) PressEnter() {
	d.T.Helper()
	d.key(tea.KeyEnter)
}

func (d *Driver) PressEsc() {
	d.T.Helper()
	d.key(tea.KeyEsc)
}

func (d *Driver) PressDown() {
	d.T.Helper()
	d.key(tea.KeyDown)
}

func (d *Driver) PressCtrlC() {
	d.T.Helper()
	d.key(tea.KeyCtrlC)
}

// View returns the model's current rendering.
func (d *Driver) View() string {
	return d.Model.View()
}

// RequireContains fails the test unless the view contains want.
func (d *Driver) RequireContains(want string) {
	d.T.Helper()
	if view := d.View(); !strings.Contains(view, want) {
		d.T.Fatalf("view does not contain %q:\n%s", want, view)
	}
}

func (d *Driver) drain(cmd tea.Cmd, depth int) {
	d.T.Helper()
	if cmd == nil {
		return
	}
	if depth >= maxDepth {
		d.T.Logf("teatest: Cmd chain deeper than %d, stopping", maxDepth)
		return
	}

	msg, ok := run(cmd)
	if !ok || msg == nil || isBlink(msg) {
		return
	}

	switch msg := msg.(type) {
	case tea.BatchMsg:
		for _, sub := range msg {
			d.drain(sub, depth+1)
		}
		return
	case tea.QuitMsg:
		d.Quit = true
		d.Model, _ = d.Model.Update(msg)
		return
	}

	var next tea.Cmd
	d.Model, next = d.Model.Update(msg)
	d.drain(next, depth+1)
}

// run executes cmd, giving up after cmdTimeout.
func run(cmd tea.Cmd) (tea.Msg, bool) {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		return msg, true
	case <-time.After(cmdTimeout):
		return nil, false
	}
}

// isBlink matches the unexported blink messages of bubbles/cursor.
func isBlink(msg tea.Msg) bool {
	return strings.Contains(strings.ToLower(fmt.Sprintf("%T", msg)), "blink")
}
