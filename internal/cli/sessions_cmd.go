package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/pblcoach/internal/cli/formatter"
	"github.com/alexanderramin/pblcoach/internal/unitplan"
)

func newSessionsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sessions",
		Aliases: []string{"session"},
		Short:   "Manage stored design sessions",
	}

	cmd.AddCommand(
		newSessionsListCmd(app),
		newSessionsShowCmd(app),
		newSessionsDeleteCmd(app),
		newSessionsExportCmd(app),
		newSessionsImportCmd(app),
	)
	return cmd
}

func newSessionsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List design sessions, most recent first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := app.Sessions.List(cmd.Context())
			if err != nil {
				return err
			}
			total := len(app.Sessions.Registry().All())
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSessionList(list, total, app.now()))
			return nil
		},
	}
}

func newSessionsShowCmd(app *App) *cobra.Command {
	var markdown bool

	cmd := &cobra.Command{
		Use:   "show <session>",
		Short: "Show a session stage by stage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveSessionID(ctx, app, args[0])
			if err != nil {
				return err
			}
			sum, err := app.Sessions.Summary(ctx, id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !markdown {
				fmt.Fprint(out, formatter.FormatSummary(sum))
				return nil
			}

			md := formatter.SummaryMarkdown(sum)
			if !app.interactive() {
				fmt.Fprint(out, md)
				return nil
			}
			rendered, err := formatter.RenderMarkdown(md, "", 80)
			if err != nil {
				return err
			}
			fmt.Fprint(out, rendered)
			return nil
		},
	}
	cmd.Flags().BoolVar(&markdown, "markdown", false, "Print the session as a markdown unit plan")
	return cmd
}

func newSessionsDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <session>",
		Aliases: []string{"rm"},
		Short:   "Delete a design session",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveSessionID(ctx, app, args[0])
			if err != nil {
				return err
			}
			if err := app.Sessions.Delete(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted session %s\n", id)
			return nil
		},
	}
}

func newSessionsExportCmd(app *App) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export <session>",
		Short: "Write a session as a JSON unit plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveSessionID(ctx, app, args[0])
			if err != nil {
				return err
			}
			doc, err := app.Sessions.Export(ctx, id)
			if err != nil {
				return err
			}
			if outPath == "" {
				return unitplan.Write(cmd.OutOrStdout(), doc)
			}

			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("creating %s: %w", outPath, err)
			}
			if err := unitplan.Write(f, doc); err != nil {
				f.Close()
				return fmt.Errorf("writing %s: %w", outPath, err)
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("writing %s: %w", outPath, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported session %s to %s\n", id, outPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "File to write instead of stdout")
	return cmd
}

func newSessionsImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Create a session from a JSON unit plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := unitplan.Load(args[0])
			if err != nil {
				return err
			}
			id, err := app.Sessions.Import(cmd.Context(), doc)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported session %s\n", id)
			return nil
		},
	}
}

func newStagesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stages",
		Short: "List the design stages in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatStages(app.Sessions.Registry().All()))
			return nil
		},
	}
}
