package watchui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/docpilot-cli/docpilot/internal/api"
	"github.com/docpilot-cli/docpilot/internal/format"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))

	tabStyle       = lipgloss.NewStyle().Padding(0, 2).Foreground(lipgloss.Color("244"))
	activeTabStyle = lipgloss.NewStyle().Padding(0, 2).Bold(true).
			Foreground(lipgloss.Color("15")).Underline(true)

	headerRowStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("244"))
	helpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	noticeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 2).
			MarginRight(1)

	statusStyles = map[api.Status]lipgloss.Style{
		api.StatusPending:    lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		api.StatusProcessing: lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		api.StatusCompleted:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		api.StatusFailed:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	}
)

func (m Model) View() string {
	if m.expire {
		return errorStyle.Render("Session expired. Run 'docpilot login' to sign in again.") + "\n"
	}

	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	switch m.tab {
	case TabDashboard:
		b.WriteString(m.renderDashboard())
	default:
		b.WriteString(m.renderDocuments())
	}

	b.WriteString("\n")
	b.WriteString(m.renderNotice())
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderHeader() string {
	title := titleStyle.Render("docpilot")
	if m.profile != nil {
		title += helpStyle.Render("  " + m.profile.DisplayName())
	}

	documents, dashboard := tabStyle, tabStyle
	if m.tab == TabDocuments {
		documents = activeTabStyle
	} else {
		dashboard = activeTabStyle
	}
	tabs := documents.Render("Documents") + dashboard.Render("Dashboard")

	return title + "\n" + tabs
}

func (m Model) renderDocuments() string {
	var b strings.Builder

	filter := "all"
	if m.query.Status != "" {
		filter = string(m.query.Status)
	}
	b.WriteString(helpStyle.Render("filter: "+filter) + "\n\n")

	page := m.collection.PageView()
	if page == nil {
		if m.loadErr != nil {
			return b.String() + errorStyle.Render("load failed: "+m.loadErr.Error()) + "\n"
		}
		return b.String() + m.spin.View() + " loading...\n"
	}
	if m.collection.Loading() {
		b.WriteString(m.spin.View() + " refreshing\n")
	}

	if len(page.Documents) == 0 {
		b.WriteString(helpStyle.Render("no documents") + "\n")
		return b.String()
	}

	b.WriteString(headerRowStyle.Render(fmt.Sprintf("%-5s %-32s %-11s %-10s %s",
		"ID", "FILENAME", "STATUS", "SIZE", "UPLOADED")) + "\n")
	for _, doc := range page.Documents {
		status := statusStyles[doc.Status].Render(fmt.Sprintf("%-11s", doc.Status))
		b.WriteString(fmt.Sprintf("%-5d %-32s %s %-10s %s\n",
			doc.ID,
			format.Truncate(doc.OriginalFilename, 32),
			status,
			format.HumanSize(doc.FileSize),
			doc.CreatedAt.Format("2006-01-02 15:04"),
		))
		if doc.Status == api.StatusFailed && doc.ErrorMessage != "" {
			b.WriteString(errorStyle.Render("      "+format.Truncate(doc.ErrorMessage, 70)) + "\n")
		}
	}

	if page.TotalPages > 1 {
		b.WriteString(helpStyle.Render(fmt.Sprintf("\npage %d/%d  (%d total)", page.Query.Page, page.TotalPages, page.Total)) + "\n")
	}

	if m.entering {
		b.WriteString("\nUpload: " + m.input.View() + "\n")
	}
	return b.String()
}

func (m Model) renderDashboard() string {
	snapshot := m.collection.Stats()
	if snapshot == nil {
		return m.spin.View() + " loading...\n"
	}
	stats := snapshot.Stats

	cards := []string{
		renderCard("Total", stats.Total, lipgloss.Color("15")),
		renderCard("Pending", stats.Pending, lipgloss.Color("11")),
		renderCard("Processing", stats.Processing, lipgloss.Color("12")),
		renderCard("Completed", stats.Completed, lipgloss.Color("10")),
		renderCard("Failed", stats.Failed, lipgloss.Color("9")),
	}

	row := lipgloss.JoinHorizontal(lipgloss.Top, cards...)
	updated := helpStyle.Render("updated " + snapshot.FetchedAt.Format("15:04:05"))
	return row + "\n" + updated + "\n"
}

func renderCard(label string, count int, color lipgloss.Color) string {
	value := lipgloss.NewStyle().Bold(true).Foreground(color).Render(fmt.Sprintf("%d", count))
	return cardStyle.Render(value + "\n" + label)
}

func (m Model) renderNotice() string {
	notice, ok := m.uploader.Notice()
	if !ok {
		return ""
	}
	style := noticeStyle
	if notice.IsError {
		style = errorStyle
	}
	return style.Render(notice.Message) + helpStyle.Render("  (x to dismiss)") + "\n"
}

func (m Model) renderFooter() string {
	if m.uploader.Uploading() {
		return helpStyle.Render(m.spin.View() + " uploading...") + "\n"
	}
	return helpStyle.Render("tab: switch view  f: filter  ←/→: page  u: upload  x: dismiss  q: quit") + "\n"
}
