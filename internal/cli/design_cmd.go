package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newDesignCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "design [session]",
		Short: "Design a unit interactively with the coach",
		Long: "Design a unit interactively with the coach. Without a session id a new " +
			"session is started; with one the session is resumed where it stopped.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.interactive() {
				return fmt.Errorf("design needs an interactive terminal; use start, say, confirm and refine instead")
			}
			ctx := cmd.Context()

			var (
				m   *designModel
				err error
			)
			if len(args) == 0 {
				m, err = startDesignModel(ctx, app)
			} else {
				var id string
				if id, err = resolveSessionID(ctx, app, args[0]); err != nil {
					return err
				}
				m, err = resumeDesignModel(ctx, app, id)
			}
			if err != nil {
				return err
			}

			p := tea.NewProgram(m,
				tea.WithContext(ctx),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
			)
			_, err = p.Run()
			return err
		},
	}
}
