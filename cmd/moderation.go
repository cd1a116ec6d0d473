package cmd

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"catalogo/internal/bootstrap"
	"catalogo/internal/bootstrap/logging"
	domainmoderation "catalogo/internal/domain/moderation"
	"catalogo/internal/errs"
	"catalogo/internal/ports"
	"catalogo/internal/usecase/moderation"
)

var moderationCmd = &cobra.Command{
	Use:   "moderation",
	Short: "Operate the moderation queue from the terminal",
}

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List and transition review reports",
}

var reportsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List reports, newest first",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		status, _ := cmd.Flags().GetString("status")
		limit, _ := cmd.Flags().GetInt("limit")
		items, err := svc.Moderation.ListReports(ctx, moderation.ListReportsInput{Status: status, Limit: limit})
		if err != nil {
			return errs.Wrap(err, "list reports")
		}

		rows := make([][]string, 0, len(items))
		for _, item := range items {
			strikes := "-"
			if item.AuthorActiveStrikes != nil {
				strikes = strconv.FormatInt(*item.AuthorActiveStrikes, 10)
			}
			rows = append(rows, []string{
				item.ID,
				item.ReviewID,
				item.AuthorID,
				string(item.Reason),
				string(item.Status),
				string(item.ReviewVisibility),
				strikes,
				item.CreatedAt.UTC().Format("2006-01-02 15:04"),
			})
		}
		return renderTable(cmd.OutOrStdout(), "Reports", []string{"ID", "REVIEW", "AUTHOR", "REASON", "STATUS", "VISIBILITY", "STRIKES", "CREATED"}, rows)
	}),
}

func newReportTransitionCmd(use string, target domainmoderation.ReportStatus) *cobra.Command {
	c := &cobra.Command{
		Use:   use,
		Short: fmt.Sprintf("Move an OPEN report to %s", target),
		RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc services) error {
			ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

			reportID, _ := cmd.Flags().GetString("id")
			moderatorID, _ := cmd.Flags().GetString("moderator")
			report, err := svc.Moderation.TransitionReport(ctx, moderation.TransitionReportInput{
				ReportID:    reportID,
				Target:      string(target),
				ModeratorID: moderatorID,
			})
			if err != nil {
				logging.Error(ctx, "transition report failed", slog.Any("err", errs.Loggable(err)))
				return errs.Wrap(err, "transition report")
			}

			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "report %s is now %s\n", report.ID, report.Status); err != nil {
				return errs.Wrap(err, "write transition output")
			}
			return nil
		}),
	}
	c.Flags().String("id", "", "Report ID")
	c.Flags().String("moderator", "", "Acting moderator user ID")
	_ = c.MarkFlagRequired("id")
	_ = c.MarkFlagRequired("moderator")
	return c
}

var reviewsCmd = &cobra.Command{
	Use:   "reviews",
	Short: "Hide, unhide or seed reviews",
}

var reviewsHideCmd = &cobra.Command{
	Use:   "hide",
	Short: "Hide a review and issue a strike to its author",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		reviewID, _ := cmd.Flags().GetString("id")
		moderatorID, _ := cmd.Flags().GetString("moderator")
		reason, _ := cmd.Flags().GetString("reason")
		result, err := svc.Moderation.HideReview(ctx, moderation.HideReviewInput{
			ReviewID:    reviewID,
			ModeratorID: moderatorID,
			Reason:      reason,
		})
		if err != nil {
			logging.Error(ctx, "hide review failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "hide review")
		}
		return writeModerationResult(cmd, result)
	}),
}

var reviewsUnhideCmd = &cobra.Command{
	Use:   "unhide",
	Short: "Restore a review and revoke its strike",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		reviewID, _ := cmd.Flags().GetString("id")
		result, err := svc.Moderation.UnhideReview(ctx, reviewID)
		if err != nil {
			logging.Error(ctx, "unhide review failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "unhide review")
		}
		return writeModerationResult(cmd, result)
	}),
}

var reviewsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Insert a review row for local testing",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		authorID, _ := cmd.Flags().GetString("author")
		itemID, _ := cmd.Flags().GetString("item")
		body, _ := cmd.Flags().GetString("body")
		review, err := svc.Reviews.CreateReview(ctx, ports.ReviewCreate{AuthorID: authorID, ItemID: itemID, Body: body})
		if err != nil {
			return errs.Wrap(err, "create review")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "created review: %s\n", review.ID); err != nil {
			return errs.Wrap(err, "write create output")
		}
		return nil
	}),
}

func writeModerationResult(cmd *cobra.Command, result moderation.ModerationResult) error {
	_, err := fmt.Fprintf(
		cmd.OutOrStdout(),
		"review %s %s author=%s strikes=%d/%d suspended_until=%s suspension=%s\n",
		result.ReviewID,
		result.VisibilityStatus,
		result.AuthorID,
		result.ActiveStrikeCount,
		result.StrikeLimit,
		formatTime(result.SuspendedUntil),
		result.SuspensionAction,
	)
	return errs.Wrap(err, "write moderation output")
}

var appealsCmd = &cobra.Command{
	Use:   "appeals",
	Short: "List and transition suspension appeals",
}

var appealsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List appeals with the appellant's current suspension",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		status, _ := cmd.Flags().GetString("status")
		limit, _ := cmd.Flags().GetInt("limit")
		items, err := svc.Moderation.ListAppeals(ctx, moderation.ListAppealsInput{Status: status, Limit: limit})
		if err != nil {
			return errs.Wrap(err, "list appeals")
		}

		rows := make([][]string, 0, len(items))
		for _, item := range items {
			rows = append(rows, []string{
				item.ID,
				item.UserID,
				item.UserEmail,
				string(item.Status),
				formatTime(item.SuspendedUntil),
				formatText(item.Message),
			})
		}
		return renderTable(cmd.OutOrStdout(), "Appeals", []string{"ID", "USER", "EMAIL", "STATUS", "SUSPENDED_UNTIL", "MESSAGE"}, rows)
	}),
}

func newAppealTransitionCmd(use string, target domainmoderation.AppealStatus) *cobra.Command {
	c := &cobra.Command{
		Use:   use,
		Short: fmt.Sprintf("Move an OPEN appeal to %s", target),
		RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc services) error {
			ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

			appealID, _ := cmd.Flags().GetString("id")
			moderatorID, _ := cmd.Flags().GetString("moderator")
			appeal, err := svc.Moderation.TransitionAppeal(ctx, moderation.TransitionAppealInput{
				AppealID:    appealID,
				Target:      string(target),
				ModeratorID: moderatorID,
			})
			if err != nil {
				logging.Error(ctx, "transition appeal failed", slog.Any("err", errs.Loggable(err)))
				return errs.Wrap(err, "transition appeal")
			}

			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "appeal %s is now %s\n", appeal.ID, appeal.Status); err != nil {
				return errs.Wrap(err, "write transition output")
			}
			return nil
		}),
	}
	c.Flags().String("id", "", "Appeal ID")
	c.Flags().String("moderator", "", "Acting moderator user ID")
	_ = c.MarkFlagRequired("id")
	_ = c.MarkFlagRequired("moderator")
	return c
}

var strikesCmd = &cobra.Command{
	Use:   "strikes",
	Short: "Show a user's strike ledger and suspension",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		userID, _ := cmd.Flags().GetString("user")
		strikes, err := svc.Moderation.ListStrikes(ctx, userID)
		if err != nil {
			return errs.Wrap(err, "list strikes")
		}
		status, err := svc.Moderation.SuspensionStatus(ctx, userID)
		if err != nil {
			return errs.Wrap(err, "load suspension status")
		}

		rows := make([][]string, 0, len(strikes))
		for _, strike := range strikes {
			state := "ACTIVE"
			if strike.RevokedAt != nil {
				state = "REVOKED"
			}
			rows = append(rows, []string{strike.ID, strike.ReviewID, state, strike.IssuedBy, formatTime(strike.RevokedAt)})
		}
		title := fmt.Sprintf("Strikes for %s (active=%d suspended_until=%s)", userID, status.ActiveStrikeCount, formatTime(status.SuspendedUntil))
		return renderTable(cmd.OutOrStdout(), title, []string{"ID", "REVIEW", "STATE", "ISSUED_BY", "REVOKED_AT"}, rows)
	}),
}

func init() {
	rootCmd.AddCommand(moderationCmd)
	moderationCmd.AddCommand(reportsCmd, reviewsCmd, appealsCmd, strikesCmd)

	reportsCmd.AddCommand(
		reportsListCmd,
		newReportTransitionCmd("resolve", domainmoderation.ReportResolved),
		newReportTransitionCmd("dismiss", domainmoderation.ReportDismissed),
	)
	reportsListCmd.Flags().String("status", "OPEN", "Report status (OPEN, RESOLVED, DISMISSED)")
	reportsListCmd.Flags().Int("limit", domainmoderation.DefaultListLimit, "Maximum rows to return")

	reviewsCmd.AddCommand(reviewsHideCmd, reviewsUnhideCmd, reviewsCreateCmd)
	reviewsHideCmd.Flags().String("id", "", "Review ID")
	reviewsHideCmd.Flags().String("moderator", "", "Acting moderator user ID")
	reviewsHideCmd.Flags().String("reason", "", "Hidden reason")
	_ = reviewsHideCmd.MarkFlagRequired("id")
	_ = reviewsHideCmd.MarkFlagRequired("moderator")
	reviewsUnhideCmd.Flags().String("id", "", "Review ID")
	_ = reviewsUnhideCmd.MarkFlagRequired("id")
	reviewsCreateCmd.Flags().String("author", "", "Author user ID")
	reviewsCreateCmd.Flags().String("item", "", "Catalog item ID")
	reviewsCreateCmd.Flags().String("body", "", "Review text")
	_ = reviewsCreateCmd.MarkFlagRequired("author")
	_ = reviewsCreateCmd.MarkFlagRequired("item")

	appealsCmd.AddCommand(
		appealsListCmd,
		newAppealTransitionCmd("resolve", domainmoderation.AppealResolved),
		newAppealTransitionCmd("reject", domainmoderation.AppealRejected),
	)
	appealsListCmd.Flags().String("status", "OPEN", "Appeal status (OPEN, RESOLVED, REJECTED)")
	appealsListCmd.Flags().Int("limit", domainmoderation.DefaultListLimit, "Maximum rows to return")

	strikesCmd.Flags().String("user", "", "User ID")
	_ = strikesCmd.MarkFlagRequired("user")
}
