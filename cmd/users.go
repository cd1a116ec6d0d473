package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"catalogo/internal/bootstrap"
	"catalogo/internal/bootstrap/logging"
	"catalogo/internal/errs"
	"catalogo/internal/ports"
	"catalogo/internal/usecase/notification"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Seed users and inspect their social state",
}

var usersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Insert a user row for local testing",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		id, _ := cmd.Flags().GetString("id")
		email, _ := cmd.Flags().GetString("email")
		private, _ := cmd.Flags().GetBool("private")
		user, err := svc.Users.CreateUser(ctx, ports.UserCreate{ID: id, Email: email, IsPrivate: private})
		if err != nil {
			return errs.Wrap(err, "create user")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "created user: %s private=%t\n", user.ID, user.IsPrivate); err != nil {
			return errs.Wrap(err, "write create output")
		}
		return nil
	}),
}

var usersPrivacyCmd = &cobra.Command{
	Use:   "set-private",
	Short: "Toggle whether new follows of the user need approval",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		id, _ := cmd.Flags().GetString("id")
		private, _ := cmd.Flags().GetBool("private")
		if err := svc.Users.SetPrivate(ctx, id, private); err != nil {
			return errs.Wrap(err, "set user privacy")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "user %s private=%t\n", id, private); err != nil {
			return errs.Wrap(err, "write privacy output")
		}
		return nil
	}),
}

var usersSocialCmd = &cobra.Command{
	Use:   "social",
	Short: "Show follow counters, pending requests and notifications",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		id, _ := cmd.Flags().GetString("id")
		counters, err := svc.Follows.FollowCounters(ctx, id)
		if err != nil {
			return errs.Wrap(err, "load follow counters")
		}
		requests, err := svc.Follows.ListFollowRequests(ctx, id, 0)
		if err != nil {
			return errs.Wrap(err, "list follow requests")
		}
		notes, err := svc.Notifications.List(ctx, notification.ListInput{RecipientID: id, UnreadOnly: true})
		if err != nil {
			return errs.Wrap(err, "list notifications")
		}

		out := cmd.OutOrStdout()
		if _, err := fmt.Fprintf(out, "%s followers=%d following=%d\n", id, counters.Followers, counters.Following); err != nil {
			return errs.Wrap(err, "write counters output")
		}

		requestRows := make([][]string, 0, len(requests))
		for _, request := range requests {
			requestRows = append(requestRows, []string{request.ID, request.FollowerID, request.CreatedAt.UTC().Format("2006-01-02 15:04")})
		}
		if err := renderTable(out, "Pending follow requests", []string{"ID", "FOLLOWER", "CREATED"}, requestRows); err != nil {
			return err
		}

		noteRows := make([][]string, 0, len(notes))
		for _, note := range notes {
			noteRows = append(noteRows, []string{note.ID, string(note.Type), note.ActorID, formatText(note.ReviewID), formatText(note.FollowID)})
		}
		return renderTable(out, "Unread notifications", []string{"ID", "TYPE", "ACTOR", "REVIEW", "FOLLOW"}, noteRows)
	}),
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersCreateCmd, usersPrivacyCmd, usersSocialCmd)

	usersCreateCmd.Flags().String("id", "", "User ID")
	usersCreateCmd.Flags().String("email", "", "User email")
	usersCreateCmd.Flags().Bool("private", false, "Require approval for new followers")
	_ = usersCreateCmd.MarkFlagRequired("id")
	_ = usersCreateCmd.MarkFlagRequired("email")

	usersPrivacyCmd.Flags().String("id", "", "User ID")
	usersPrivacyCmd.Flags().Bool("private", true, "Require approval for new followers")
	_ = usersPrivacyCmd.MarkFlagRequired("id")

	usersSocialCmd.Flags().String("id", "", "User ID")
	_ = usersSocialCmd.MarkFlagRequired("id")
}
