package moderationconsole

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"catalogo/internal/bootstrap/logging"
	domainmoderation "catalogo/internal/domain/moderation"
	"catalogo/internal/ports"
	"catalogo/internal/usecase/moderation"
)

const maxAuditLines = 8

// Service is the moderation surface the console drives.
type Service interface {
	ListReports(ctx context.Context, input moderation.ListReportsInput) ([]ports.ReportListItem, error)
	TransitionReport(ctx context.Context, input moderation.TransitionReportInput) (ports.Report, error)
	HideReview(ctx context.Context, input moderation.HideReviewInput) (moderation.ModerationResult, error)
	UnhideReview(ctx context.Context, reviewID string) (moderation.ModerationResult, error)
	SuspensionStatus(ctx context.Context, userID string) (moderation.SuspensionStatus, error)
}

type Options struct {
	ModeratorID     string
	StatusFilter    string
	HideReason      string
	RefreshInterval time.Duration
}

type consoleModel struct {
	ctx             context.Context
	service         Service
	moderatorID     string
	statusFilter    string
	hideReason      string
	refreshInterval time.Duration

	reports       []ports.ReportListItem
	selectedIndex int
	suspension    moderation.SuspensionStatus
	hasSuspension bool
	status        string
	auditLogs     []string
}

type reportsLoadedMsg struct {
	items []ports.ReportListItem
	err   error
}

type suspensionLoadedMsg struct {
	reportID string
	status   moderation.SuspensionStatus
	err      error
}

type tickMsg struct{}

type actionDoneMsg struct {
	action   string
	reportID string
	result   string
	err      error
}

func NewModel(ctx context.Context, service Service, options Options) tea.Model {
	interval := options.RefreshInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	statusFilter := strings.ToUpper(strings.TrimSpace(options.StatusFilter))
	if statusFilter == "" {
		statusFilter = string(domainmoderation.ReportOpen)
	}

	return &consoleModel{
		ctx:             ctx,
		service:         service,
		moderatorID:     strings.TrimSpace(options.ModeratorID),
		statusFilter:    statusFilter,
		hideReason:      strings.TrimSpace(options.HideReason),
		refreshInterval: interval,
		status:          "loading",
	}
}

func (m *consoleModel) Init() tea.Cmd {
	return tea.Batch(m.loadReportsCmd(), m.tickCmd())
}

func (m *consoleModel) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := message.(type) {
	case tickMsg:
		return m, tea.Batch(m.loadReportsCmd(), m.tickCmd())
	case reportsLoadedMsg:
		if msg.err != nil {
			m.status = "refresh failed: " + msg.err.Error()
			return m, nil
		}
		m.reports = msg.items
		if len(m.reports) == 0 {
			m.selectedIndex = 0
			m.hasSuspension = false
			m.status = "queue is empty"
			return m, nil
		}
		if m.selectedIndex < 0 {
			m.selectedIndex = 0
		}
		if m.selectedIndex >= len(m.reports) {
			m.selectedIndex = len(m.reports) - 1
		}
		m.status = fmt.Sprintf("refreshed, %d reports", len(m.reports))
		return m, m.loadSuspensionCmd()
	case suspensionLoadedMsg:
		selected, ok := m.selectedReport()
		if !ok || selected.ID != msg.reportID {
			return m, nil
		}
		if msg.err != nil {
			m.hasSuspension = false
			m.status = "suspension lookup failed: " + msg.err.Error()
			return m, nil
		}
		m.suspension = msg.status
		m.hasSuspension = true
		return m, nil
	case actionDoneMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("%s failed: %v", msg.action, msg.err)
		} else {
			m.status = fmt.Sprintf("%s done: %s", msg.action, msg.result)
		}
		m.appendAuditLog(msg.action, msg.reportID, msg.result, msg.err)
		return m, m.loadReportsCmd()
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "g":
			m.status = "refreshing"
			return m, m.loadReportsCmd()
		case "up", "k":
			if m.selectedIndex > 0 {
				m.selectedIndex--
				m.hasSuspension = false
				return m, m.loadSuspensionCmd()
			}
			return m, nil
		case "down", "j":
			if m.selectedIndex < len(m.reports)-1 {
				m.selectedIndex++
				m.hasSuspension = false
				return m, m.loadSuspensionCmd()
			}
			return m, nil
		case "r":
			return m, m.transitionCmd("resolve", domainmoderation.ReportResolved)
		case "d":
			return m, m.transitionCmd("dismiss", domainmoderation.ReportDismissed)
		case "h":
			return m, m.hideCmd()
		case "u":
			return m, m.unhideCmd()
		}
	}
	return m, nil
}

func (m *consoleModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true)
	sectionStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	selectedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("62"))
	hiddenStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("203"))

	var builder strings.Builder
	builder.WriteString(titleStyle.Render("Moderation Queue"))
	builder.WriteString("\n")
	builder.WriteString(dimStyle.Render(fmt.Sprintf(
		"moderator=%s status=%s refresh=%s",
		firstNonEmpty(m.moderatorID, "-"),
		m.statusFilter,
		m.refreshInterval,
	)))
	builder.WriteString("\n\n")

	builder.WriteString(sectionStyle.Render("Reports"))
	builder.WriteString("\n")
	if len(m.reports) == 0 {
		builder.WriteString(dimStyle.Render("- no reports"))
		builder.WriteString("\n\n")
	} else {
		for index, item := range m.reports {
			strikes := "-"
			if item.AuthorActiveStrikes != nil {
				strikes = fmt.Sprintf("%d", *item.AuthorActiveStrikes)
			}
			visibility := string(item.ReviewVisibility)
			if item.ReviewVisibility == domainmoderation.VisibilityHidden {
				visibility = hiddenStyle.Render(visibility)
			}
			line := fmt.Sprintf(
				"%s [%s] review=%s %s author=%s strikes=%s reason=%s",
				shortID(item.ID),
				item.Status,
				shortID(item.ReviewID),
				visibility,
				firstNonEmpty(item.AuthorID, "-"),
				strikes,
				item.Reason,
			)
			if index == m.selectedIndex {
				builder.WriteString(selectedStyle.Render("> " + line))
			} else {
				builder.WriteString("  " + line)
			}
			builder.WriteString("\n")
		}
		builder.WriteString("\n")
	}

	builder.WriteString(sectionStyle.Render("Detail"))
	builder.WriteString("\n")
	selected, ok := m.selectedReport()
	if !ok {
		builder.WriteString(dimStyle.Render("- no selection"))
		builder.WriteString("\n\n")
	} else {
		builder.WriteString(fmt.Sprintf("Report: %s\n", selected.ID))
		builder.WriteString(fmt.Sprintf("Review: %s (%s)\n", selected.ReviewID, selected.ReviewVisibility))
		builder.WriteString(fmt.Sprintf("Reporter: %s\n", selected.ReporterID))
		builder.WriteString(fmt.Sprintf("Reason: %s\n", selected.Reason))
		if selected.Details != nil && strings.TrimSpace(*selected.Details) != "" {
			builder.WriteString(fmt.Sprintf("Details: %s\n", firstLine(*selected.Details)))
		}
		if m.hasSuspension {
			until := "none"
			if m.suspension.Suspended && m.suspension.SuspendedUntil != nil {
				until = m.suspension.SuspendedUntil.UTC().Format(time.RFC3339)
			}
			builder.WriteString(fmt.Sprintf("Author: %s active_strikes=%d suspended_until=%s\n", m.suspension.UserID, m.suspension.ActiveStrikeCount, until))
		} else {
			builder.WriteString("Author: loading\n")
		}
		builder.WriteString("\n")
	}

	builder.WriteString(sectionStyle.Render("Status"))
	builder.WriteString("\n")
	builder.WriteString("- " + firstNonEmpty(m.status, "ready"))
	builder.WriteString("\n\n")

	builder.WriteString(sectionStyle.Render("Audit Log"))
	builder.WriteString("\n")
	if len(m.auditLogs) == 0 {
		builder.WriteString(dimStyle.Render("- no actions"))
		builder.WriteString("\n\n")
	} else {
		for _, line := range m.auditLogs {
			builder.WriteString("- " + line)
			builder.WriteString("\n")
		}
		builder.WriteString("\n")
	}

	builder.WriteString(dimStyle.Render("Keys: ↑/k ↓/j move  g refresh  r resolve  d dismiss  h hide  u unhide  q quit"))
	return builder.String()
}

func (m *consoleModel) tickCmd() tea.Cmd {
	return tea.Tick(m.refreshInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (m *consoleModel) loadReportsCmd() tea.Cmd {
	return func() tea.Msg {
		items, err := m.service.ListReports(m.ctx, moderation.ListReportsInput{
			Status: m.statusFilter,
			Limit:  domainmoderation.MaxListLimit,
		})
		return reportsLoadedMsg{items: items, err: err}
	}
}

func (m *consoleModel) loadSuspensionCmd() tea.Cmd {
	selected, ok := m.selectedReport()
	if !ok || selected.AuthorID == "" {
		return nil
	}
	return func() tea.Msg {
		status, err := m.service.SuspensionStatus(m.ctx, selected.AuthorID)
		return suspensionLoadedMsg{reportID: selected.ID, status: status, err: err}
	}
}

func (m *consoleModel) transitionCmd(action string, target domainmoderation.ReportStatus) tea.Cmd {
	selected, ok := m.selectedReport()
	if !ok {
		m.status = "no report selected"
		return nil
	}
	if err := m.requireModerator(); err != nil {
		m.status = err.Error()
		return nil
	}
	m.status = action + " in progress"
	return func() tea.Msg {
		report, err := m.service.TransitionReport(m.ctx, moderation.TransitionReportInput{
			ReportID:    selected.ID,
			Target:      string(target),
			ModeratorID: m.moderatorID,
		})
		if err != nil {
			return actionDoneMsg{action: action, reportID: selected.ID, err: err}
		}
		return actionDoneMsg{action: action, reportID: selected.ID, result: string(report.Status)}
	}
}

func (m *consoleModel) hideCmd() tea.Cmd {
	selected, ok := m.selectedReport()
	if !ok {
		m.status = "no report selected"
		return nil
	}
	if err := m.requireModerator(); err != nil {
		m.status = err.Error()
		return nil
	}
	reason := firstNonEmpty(m.hideReason, "reported: "+strings.ToLower(string(selected.Reason)))
	m.status = "hide in progress"
	return func() tea.Msg {
		result, err := m.service.HideReview(m.ctx, moderation.HideReviewInput{
			ReviewID:    selected.ReviewID,
			ModeratorID: m.moderatorID,
			Reason:      reason,
		})
		if err != nil {
			return actionDoneMsg{action: "hide", reportID: selected.ID, err: err}
		}
		return actionDoneMsg{action: "hide", reportID: selected.ID, result: describeResult(result)}
	}
}

func (m *consoleModel) unhideCmd() tea.Cmd {
	selected, ok := m.selectedReport()
	if !ok {
		m.status = "no report selected"
		return nil
	}
	if err := m.requireModerator(); err != nil {
		m.status = err.Error()
		return nil
	}
	m.status = "unhide in progress"
	return func() tea.Msg {
		result, err := m.service.UnhideReview(m.ctx, selected.ReviewID)
		if err != nil {
			return actionDoneMsg{action: "unhide", reportID: selected.ID, err: err}
		}
		return actionDoneMsg{action: "unhide", reportID: selected.ID, result: describeResult(result)}
	}
}

func (m *consoleModel) requireModerator() error {
	if m.moderatorID == "" {
		return errors.New("moderator id is required for actions")
	}
	return nil
}

func (m *consoleModel) selectedReport() (ports.ReportListItem, bool) {
	if m.selectedIndex < 0 || m.selectedIndex >= len(m.reports) {
		return ports.ReportListItem{}, false
	}
	return m.reports[m.selectedIndex], true
}

func (m *consoleModel) appendAuditLog(action string, reportID string, result string, opErr error) {
	outcome := strings.TrimSpace(result)
	if opErr != nil {
		outcome = "error: " + opErr.Error()
	}
	if outcome == "" {
		outcome = "ok"
	}

	timestamp := time.Now().UTC().Format(time.RFC3339)
	line := fmt.Sprintf("%s moderator=%s report=%s action=%s result=%s", timestamp, m.moderatorID, shortID(reportID), action, outcome)
	m.auditLogs = append([]string{line}, m.auditLogs...)
	if len(m.auditLogs) > maxAuditLines {
		m.auditLogs = m.auditLogs[:maxAuditLines]
	}

	logging.Info(m.ctx, "moderation console action",
		slog.String("moderator_id", m.moderatorID),
		slog.String("report_id", reportID),
		slog.String("action", action),
		slog.String("result", outcome),
	)
}

func describeResult(result moderation.ModerationResult) string {
	until := "none"
	if result.SuspendedUntil != nil {
		until = result.SuspendedUntil.UTC().Format(time.RFC3339)
	}
	return fmt.Sprintf("%s strikes=%d/%d suspended_until=%s", result.VisibilityStatus, result.ActiveStrikeCount, result.StrikeLimit, until)
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		normalized := strings.TrimSpace(value)
		if normalized != "" {
			return normalized
		}
	}
	return ""
}

func firstLine(body string) string {
	for _, line := range strings.Split(body, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
