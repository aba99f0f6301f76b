package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/alexanderramin/pblcoach/internal/cli/formatter"
	"github.com/alexanderramin/pblcoach/internal/domain"
	"github.com/alexanderramin/pblcoach/internal/session"
)

const (
	choiceConfirm = "confirm"
	choiceRefine  = "refine"
	choiceOwn     = "own"
)

const designHelp = `Commands:
  /confirm        accept the pending answer
  /refine         get alternative phrasings for the pending answer
  /goto <stage>   jump to a stage
  /summary        show what has been captured so far
  /quit           leave; the session is saved`

// designModel is the interactive coach conversation. Session calls run
// synchronously in Update; everything shown is kept in transcript.
type designModel struct {
	ctx       context.Context
	app       *App
	sessionID string

	input textinput.Model
	width int

	// form is the active huh choice; onChoice runs when it completes.
	form     *huh.Form
	choice   *string
	onChoice func(m *designModel, choice string) tea.Cmd

	transcript []string
	quitting   bool

	// resumePending is offered for confirmation on Init.
	resumePending string
}

func startDesignModel(ctx context.Context, app *App) (*designModel, error) {
	turn, err := app.Sessions.Start(ctx)
	if err != nil {
		return nil, err
	}
	m := newDesignModel(ctx, app, turn.State.SessionID)
	m.appendTurn(turn)
	return m, nil
}

func resumeDesignModel(ctx context.Context, app *App, id string) (*designModel, error) {
	prompt, err := app.Sessions.StagePrompt(ctx, id)
	if err != nil {
		return nil, err
	}
	state, err := app.Sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	m := newDesignModel(ctx, app, id)
	m.transcript = append(m.transcript, prompt)
	if state.Terminal {
		m.showSummary()
	}
	if pc := state.PendingConfirmation; pc != nil {
		m.transcript = append(m.transcript, formatter.Dim("Pending: ")+formatter.StyleYellow.Render(pc.PendingValue))
		m.resumePending = pc.PendingValue
	}
	return m, nil
}

func newDesignModel(ctx context.Context, app *App, id string) *designModel {
	ti := textinput.New()
	ti.Focus()
	ti.Prompt = ""
	ti.CharLimit = 1000
	ti.Cursor.SetMode(cursor.CursorStatic)

	return &designModel{
		ctx:       ctx,
		app:       app,
		sessionID: id,
		input:     ti,
		transcript: []string{
			formatter.Header("Unit design") + "\n" +
				formatter.Dim("Session "+id+". Type /help for commands."),
		},
	}
}

// ── bubbletea interface ──────────────────────────────────────────────────────

func (m *designModel) Init() tea.Cmd {
	if m.resumePending != "" {
		return m.offerPending(m.resumePending)
	}
	return nil
}

func (m *designModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - 10
		if m.form != nil {
			m.form = m.form.WithWidth(msg.Width)
		}
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.quitting = true
			return m, tea.Quit
		}
	}

	if m.form != nil {
		return m.updateChoice(msg)
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEnter {
		line := strings.TrimSpace(m.input.Value())
		m.input.Reset()
		if line == "" {
			return m, nil
		}
		return m, m.handleLine(line)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *designModel) View() string {
	var b strings.Builder
	for _, entry := range m.transcript {
		b.WriteString(entry)
		b.WriteString("\n")
	}
	if m.quitting {
		b.WriteString(formatter.Dim("Session saved. Resume with: pblcoach design " + formatter.TruncID(m.sessionID)))
		b.WriteString("\n")
		return b.String()
	}
	b.WriteString("\n")
	if m.form != nil {
		b.WriteString(m.form.View())
		return b.String()
	}
	b.WriteString(formatter.StylePurple.Render("you") + formatter.Dim("> "))
	b.WriteString(m.input.View())
	return b.String()
}

// ── input handling ───────────────────────────────────────────────────────────

func (m *designModel) handleLine(line string) tea.Cmd {
	if !strings.HasPrefix(line, "/") {
		m.echo(line)
		return m.submit(line, domain.SourceTyped)
	}

	fields := strings.Fields(line)
	switch strings.ToLower(fields[0]) {
	case "/quit", "/q", "/exit":
		m.quitting = true
		return tea.Quit
	case "/help":
		m.transcript = append(m.transcript, formatter.Dim(designHelp))
	case "/summary":
		m.showSummary()
	case "/confirm":
		return m.confirm()
	case "/refine":
		return m.refine()
	case "/goto":
		if len(fields) != 2 {
			m.fail(fmt.Errorf("usage: /goto <stage>"))
			return nil
		}
		return m.run(func(ctx context.Context) (session.Turn, error) {
			return m.app.Sessions.Navigate(ctx, m.sessionID, domain.StageID(fields[1]))
		}, domain.SourceSuggestion)
	default:
		m.fail(fmt.Errorf("unknown command %s; type /help", fields[0]))
	}
	return nil
}

func (m *designModel) submit(text string, source domain.InputSource) tea.Cmd {
	return m.run(func(ctx context.Context) (session.Turn, error) {
		return m.app.Sessions.Submit(ctx, m.sessionID, text, source)
	}, domain.SourceSuggestion)
}

func (m *designModel) confirm() tea.Cmd {
	return m.run(func(ctx context.Context) (session.Turn, error) {
		return m.app.Sessions.Confirm(ctx, m.sessionID)
	}, domain.SourceSuggestion)
}

func (m *designModel) refine() tea.Cmd {
	return m.run(func(ctx context.Context) (session.Turn, error) {
		return m.app.Sessions.Refine(ctx, m.sessionID)
	}, domain.SourceRefinement)
}

// run performs one session call and decides what to offer next. Suggestions
// picked from the resulting turn are submitted with pickSource.
func (m *designModel) run(call func(ctx context.Context) (session.Turn, error), pickSource domain.InputSource) tea.Cmd {
	turn, err := call(m.ctx)
	if err != nil {
		m.fail(err)
		return nil
	}
	m.appendTurn(turn)

	if turn.State.Terminal {
		m.showSummary()
		m.quitting = true
		return tea.Quit
	}
	if turn.StageComplete {
		return nil
	}
	rejected := turn.Code == domain.CodeValidationFailed
	if pc := turn.State.PendingConfirmation; pc != nil && !rejected {
		return m.offerPending(pc.PendingValue)
	}
	if len(turn.Suggestions) > 0 {
		return m.offerSuggestions(turn.Suggestions, pickSource)
	}
	return nil
}

func (m *designModel) offerPending(value string) tea.Cmd {
	return m.startChoice("Keep \""+formatter.Truncate(value, 60)+"\"?", []huh.Option[string]{
		huh.NewOption("Yes, keep it", choiceConfirm),
		huh.NewOption("Show me alternatives", choiceRefine),
		huh.NewOption("I'll type another answer", choiceOwn),
	}, func(m *designModel, choice string) tea.Cmd {
		switch choice {
		case choiceConfirm:
			return m.confirm()
		case choiceRefine:
			return m.refine()
		}
		return nil
	})
}

func (m *designModel) offerSuggestions(suggestions []string, source domain.InputSource) tea.Cmd {
	opts := make([]huh.Option[string], 0, len(suggestions)+1)
	for _, s := range suggestions {
		opts = append(opts, huh.NewOption(formatter.Truncate(s, 90), s))
	}
	opts = append(opts, huh.NewOption("I'll type my own", choiceOwn))

	return m.startChoice("Use one of these?", opts, func(m *designModel, choice string) tea.Cmd {
		if choice == choiceOwn {
			return nil
		}
		m.echo(choice)
		return m.submit(choice, source)
	})
}

// ── choice forms ─────────────────────────────────────────────────────────────

func (m *designModel) startChoice(title string, opts []huh.Option[string], done func(m *designModel, choice string) tea.Cmd) tea.Cmd {
	value := opts[0].Value
	m.choice = &value
	m.onChoice = done
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(title).
				Options(opts...).
				Value(m.choice),
		),
	).WithShowHelp(false)
	if m.width > 0 {
		m.form = m.form.WithWidth(m.width)
	}
	m.input.Blur()
	return m.form.Init()
}

func (m *designModel) updateChoice(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.endChoice()
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		choice, done := *m.choice, m.onChoice
		m.endChoice()
		return m, done(m, choice)
	case huh.StateAborted:
		m.endChoice()
		return m, nil
	}
	return m, cmd
}

func (m *designModel) endChoice() {
	m.form = nil
	m.choice = nil
	m.onChoice = nil
	m.input.Focus()
}

// ── transcript ───────────────────────────────────────────────────────────────

func (m *designModel) echo(text string) {
	m.transcript = append(m.transcript, formatter.StylePurple.Render("you")+formatter.Dim("> ")+text)
}

func (m *designModel) appendTurn(turn session.Turn) {
	m.transcript = append(m.transcript, strings.TrimRight(formatter.FormatTurn(turn), "\n"))
}

func (m *designModel) showSummary() {
	sum, err := m.app.Sessions.Summary(m.ctx, m.sessionID)
	if err != nil {
		m.fail(err)
		return
	}
	m.transcript = append(m.transcript, strings.TrimRight(formatter.FormatSummary(sum), "\n"))
}

func (m *designModel) fail(err error) {
	m.transcript = append(m.transcript, formatter.StyleRed.Render("Error: "+err.Error()))
}
