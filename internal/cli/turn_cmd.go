package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/pblcoach/internal/cli/formatter"
	"github.com/alexanderramin/pblcoach/internal/domain"
	"github.com/alexanderramin/pblcoach/internal/session"
)

func newStartCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Create a design session and print its first question",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			turn, err := app.Sessions.Start(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n\n", formatter.Dim("Session"), turn.State.SessionID)
			printTurn(out, turn)
			return nil
		},
	}
}

func newSayCmd(app *App) *cobra.Command {
	var source sourceFlag

	cmd := &cobra.Command{
		Use:   "say <session> <text...>",
		Short: "Answer the current question of a session",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := source.value()
			if err != nil {
				return err
			}
			return runTurn(cmd, app, args[0], func(ctx context.Context, id string) (session.Turn, error) {
				return app.Sessions.Submit(ctx, id, strings.Join(args[1:], " "), src)
			})
		},
	}
	source.register(cmd.Flags())
	return cmd
}

func newConfirmCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "confirm <session>",
		Short: "Accept the answer waiting for confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTurn(cmd, app, args[0], app.Sessions.Confirm)
		},
	}
}

func newRefineCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "refine <session>",
		Short: "Drop the pending answer and get alternative phrasings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTurn(cmd, app, args[0], app.Sessions.Refine)
		},
	}
}

func newNavigateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "navigate <session> <stage>",
		Short: "Jump to a stage without validation",
		Long: "Jump to a stage without validation. Completed stages are kept, " +
			"the pending answer and attempt count are cleared.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := domain.StageID(args[1])
			return runTurn(cmd, app, args[0], func(ctx context.Context, id string) (session.Turn, error) {
				return app.Sessions.Navigate(ctx, id, target)
			})
		},
	}
}

func newPromptCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "prompt <session>",
		Short: "Show the current question of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveSessionID(ctx, app, args[0])
			if err != nil {
				return err
			}
			prompt, err := app.Sessions.StagePrompt(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), prompt)
			return nil
		},
	}
}

func runTurn(cmd *cobra.Command, app *App, rawID string, call func(ctx context.Context, id string) (session.Turn, error)) error {
	ctx := cmd.Context()
	id, err := resolveSessionID(ctx, app, rawID)
	if err != nil {
		return err
	}
	turn, err := call(ctx, id)
	if err != nil {
		return err
	}
	printTurn(cmd.OutOrStdout(), turn)
	return nil
}

func printTurn(w io.Writer, turn session.Turn) {
	fmt.Fprint(w, formatter.FormatTurn(turn))
}
