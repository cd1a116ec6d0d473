package cmd

import (
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"catalogo/internal/bootstrap"
	"catalogo/internal/bootstrap/logging"
	"catalogo/internal/errs"
	"catalogo/internal/usecase/moderationconsole"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Start the interactive moderation queue console",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		moderatorID, _ := cmd.Flags().GetString("moderator")
		status, _ := cmd.Flags().GetString("status")
		reason, _ := cmd.Flags().GetString("reason")
		refreshInterval, _ := cmd.Flags().GetDuration("refresh-interval")

		model := moderationconsole.NewModel(ctx, svc.Moderation, moderationconsole.Options{
			ModeratorID:     moderatorID,
			StatusFilter:    status,
			HideReason:      reason,
			RefreshInterval: refreshInterval,
		})

		program := tea.NewProgram(model, tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return errs.Wrap(err, "run moderation console")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(consoleCmd)
	consoleCmd.Flags().String("moderator", "", "Acting moderator user ID (required for actions)")
	consoleCmd.Flags().String("status", "OPEN", "Report status filter (OPEN|RESOLVED|DISMISSED)")
	consoleCmd.Flags().String("reason", "", "Hidden reason used by the hide action")
	consoleCmd.Flags().Duration("refresh-interval", 5*time.Second, "Auto refresh interval")
}
