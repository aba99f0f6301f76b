package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the top-level "pblcoach" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "pblcoach",
		Short:         "Guided project-based learning unit design",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newDesignCmd(app),
		newStartCmd(app),
		newSayCmd(app),
		newConfirmCmd(app),
		newRefineCmd(app),
		newNavigateCmd(app),
		newPromptCmd(app),
		newSessionsCmd(app),
		newStagesCmd(app),
	)

	return root
}
