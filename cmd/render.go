package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"

	"catalogo/internal/errs"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// renderTable prints a bold title, a header row and aligned rows.
func renderTable(w io.Writer, title string, header []string, rows [][]string) error {
	if _, err := fmt.Fprintln(w, headerStyle.Render(title)); err != nil {
		return errs.Wrap(err, "write table title")
	}
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, dimStyle.Render("- none"))
		return errs.Wrap(err, "write empty table")
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, strings.Join(header, "\t")); err != nil {
		return errs.Wrap(err, "write table header")
	}
	for _, row := range rows {
		if _, err := fmt.Fprintln(tw, strings.Join(row, "\t")); err != nil {
			return errs.Wrap(err, "write table row")
		}
	}
	return errs.Wrap(tw.Flush(), "flush table")
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}

func formatText(s *string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return "-"
	}
	return *s
}
