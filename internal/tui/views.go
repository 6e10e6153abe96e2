package tui

import (
	"fmt"
	"strings"

	"github.com/Veraticus/statement-flow/internal/cli"
	"github.com/Veraticus/statement-flow/internal/filter"
	"github.com/charmbracelet/lipgloss"
)

// View renders the browser.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	sections := []string{
		m.renderHeader(),
		m.renderTable(),
		cli.RenderMetrics(m.view.Metrics, m.view.Pagination),
		m.renderStatus(),
	}
	if m.state == StateSearch {
		sections = append(sections, m.search.View())
	}
	if m.config.ShowHelp {
		sections = append(sections, m.help.View(m.keymap))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	title := m.theme.Title.Render(cli.BankIcon + " " + m.config.Title)
	scope := "all accounts"
	if doc := m.view.Account.Document; doc != "" {
		scope = cli.FormatDocument(doc)
	}
	subtitle := lipgloss.NewStyle().Foreground(m.theme.Muted).Render(
		fmt.Sprintf("%s · %d loaded · %s", scope, m.view.Loaded, describeView(m.view.Criteria, m.view.SortBy, m.view.Order)),
	)
	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle)
}

func (m Model) renderTable() string {
	if len(m.view.Transactions) == 0 {
		msg := "No transactions match the current filters"
		if m.busy {
			msg = "Waiting for the provider…"
		}
		return m.theme.BorderedBox.
			Width(max(m.width-2, 20)).
			Foreground(m.theme.Muted).
			Render(msg)
	}
	return m.theme.RoundedBox.Padding(0).Render(m.table.View())
}

func (m Model) renderStatus() string {
	switch {
	case m.lastErr != nil:
		return m.theme.StatusError.Render(cli.ErrorIcon + " " + m.lastErr.Error())
	case m.busy:
		return m.spinner.View() + " " + m.theme.StatusPending.Render(m.status)
	case m.status != "":
		return m.theme.StatusSuccess.Render(cli.CheckIcon + " " + m.status)
	default:
		return ""
	}
}

// describeView summarizes sort and criteria in one line.
func describeView(c filter.Criteria, by filter.SortField, order filter.SortOrder) string {
	parts := []string{}
	if by == filter.SortNone || order == filter.OrderNone {
		parts = append(parts, "unsorted")
	} else {
		parts = append(parts, fmt.Sprintf("by %s %s", by, order))
	}
	if c.Type != filter.TypeAny {
		parts = append(parts, string(c.Type)+" only")
	}
	if c.Search != "" {
		parts = append(parts, fmt.Sprintf("search %q", c.Search))
	}
	if c.From != nil || c.To != nil {
		parts = append(parts, "date range")
	}
	if c.MinAmount != nil || c.MaxAmount != nil || c.ExactAmount != nil {
		parts = append(parts, "amount range")
	}
	return strings.Join(parts, " · ")
}
