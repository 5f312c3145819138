package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/gradehoraria/gradewatch/internal/gradeapi"
	"github.com/gradehoraria/gradewatch/internal/poller"
)

const (
	nameWidth    = 28
	defaultWidth = 100
)

// View implements tea.Model.
func (m Model) View() string {
	styles := m.theme.Styles()
	width := m.width
	if width <= 0 {
		width = defaultWidth
	}

	sections := []string{
		m.renderHeader(styles, width),
		m.renderTable(styles, width),
	}
	if toasts := m.renderToasts(styles); toasts != "" {
		sections = append(sections, toasts)
	}
	sections = append(sections, styles.Footer.Render(m.help.View(m.keys)))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader(styles Styles, width int) string {
	sep := "  "
	parts := []string{styles.Logo.Render("gradewatch")}
	if m.escolaID != "" {
		parts = append(parts, "escola "+m.escolaID)
	}

	switch {
	case m.snapshot.IsOffline():
		parts = append(parts, styles.DangerText.Render("API indisponível")+" "+styles.WarningText.Render("tentando novamente…"))
	case !m.snapshot.HasGrades && m.snapshot.LastError == nil:
		parts = append(parts, styles.WarningText.Render("carregando grades…"))
	}

	if m.stats.InFlight > 0 {
		parts = append(parts, fmt.Sprintf("%s %d em geração", m.spinner.View(), m.stats.InFlight))
	}
	if m.checking {
		parts = append(parts, styles.AccentText.Render("verificando…"))
	} else if !m.stats.LastTick.IsZero() {
		parts = append(parts, styles.MutedText.Render("última verificação "+m.stats.LastTick.Format("15:04:05")))
	}
	return styles.Header.Width(width).Render(strings.Join(parts, sep))
}

func (m Model) renderTable(styles Styles, width int) string {
	if len(m.snapshot.Grades) == 0 {
		return styles.MutedText.Padding(1, 1).Render("Nenhuma grade horária encontrada.")
	}

	var b strings.Builder
	header := fmt.Sprintf("  %-*s %-13s %-17s %s", nameWidth, "GRADE", "STATUS", "ATUALIZADA", "DETALHE")
	b.WriteString(styles.FaintText.Render(header))
	for i, g := range m.snapshot.Grades {
		b.WriteString("\n")
		status := m.statusOf(g)
		badge := styles.StatusStyle(status).Render(status.Label())
		badge += strings.Repeat(" ", max(13-lipgloss.Width(badge), 0))

		updated := "—"
		if t := g.ParsedUpdatedAt(); !t.IsZero() {
			updated = t.Format("02/01 15:04")
		}
		detail := ""
		if status == gradeapi.StatusFailed && len(g.Errors) > 0 {
			detail = g.Errors[0]
		}

		marker := "  "
		if i == m.cursor {
			marker = "> "
		}
		row := fmt.Sprintf("%s%-*s %s %-17s %s", marker, nameWidth, truncate(displayName(g), nameWidth), badge, updated, detail)
		row = truncate(row, max(width, nameWidth+40))
		if i == m.cursor {
			row = styles.Selected.Render(row)
		}
		b.WriteString(row)
	}
	return b.String()
}

func (m Model) renderToasts(styles Styles) string {
	if len(m.toasts) == 0 {
		return ""
	}
	rendered := make([]string, 0, len(m.toasts))
	for _, t := range m.toasts {
		color := m.theme.Success
		title := styles.SuccessText.Render(t.note.Title)
		if t.note.Kind == poller.KindError {
			color = m.theme.Danger
			title = styles.DangerText.Render(t.note.Title)
		}
		body := title
		if t.note.Description != "" {
			body += "\n" + styles.Text.Render(t.note.Description)
		}
		rendered = append(rendered, styles.Toast.BorderForeground(lipgloss.Color(color)).Render(body))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rendered...)
}

func displayName(g gradeapi.Grade) string {
	if name := strings.TrimSpace(g.Name); name != "" {
		return name
	}
	return g.ID
}

func truncate(s string, limit int) string {
	if limit <= 0 || lipgloss.Width(s) <= limit {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > limit {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
