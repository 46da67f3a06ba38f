package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/dsprenkels/maruska/internal/media"
)

var (
	queueFactors  = []float64{1, 4, 4, 1}
	searchFactors = []float64{1, 1}
)

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Connecting..."
	}
	now := m.now()
	styles := m.theme.Styles()

	var body []string
	if strings.HasPrefix(m.input.Value(), "/") {
		body = m.renderResults(styles)
	} else {
		body = m.renderQueue(styles, now)
	}
	h := m.viewportHeight()
	for len(body) < h {
		body = append(body, "")
	}

	var b strings.Builder
	b.WriteString(m.renderHeader(styles))
	b.WriteString("\n")
	b.WriteString(strings.Join(body[:h], "\n"))
	b.WriteString("\n")
	b.WriteString(m.renderPrompt(styles, now))
	return b.String()
}

func (m Model) renderHeader(styles Styles) string {
	left := styles.Logo.Render(" maruska ")

	conn := styles.MutedText.Render("connecting")
	switch {
	case m.snapshot.IsOffline():
		conn = styles.DangerText.Render("offline")
	case m.snapshot.Connected():
		conn = styles.SuccessText.Render("online")
	}

	who := m.client.LoginState().String()
	if m.client.LoggedIn() {
		who = "logged in as " + m.username
	}

	right := strings.Join([]string{
		styles.MutedText.Render(m.host),
		conn,
		styles.AccentText.Render(who),
	}, styles.FaintText.Render(" │ "))

	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right)-1, 1)
	return styles.Header.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

// renderQueue lists the playing track and the requests with the time until
// each one ends.
func (m Model) renderQueue(styles Styles, now time.Time) []string {
	h := m.viewportHeight()
	var rows [][]string

	var total time.Duration
	if p := m.client.Playing(); p != nil {
		total += p.Remaining(now)
		rows = append(rows, []string{p.RequestedBy(), p.Media.Artist, p.Media.Title, media.FormatDuration(total)})
	} else {
		rows = append(rows, []string{"", "", "", ""})
	}
	for _, r := range m.client.Requests() {
		if len(rows) >= h {
			break
		}
		total += r.Media.Length
		rows = append(rows, []string{r.RequestedBy(), r.Media.Artist, r.Media.Title, media.FormatDuration(total)})
	}

	widths := fitColumns(rows, queueFactors, m.width)
	lines := make([]string, 0, len(rows))
	for i, row := range rows {
		line := renderRow(row, widths)
		if i == 0 {
			line = styles.AccentText.Render(line)
		} else {
			line = styles.Text.Render(line)
		}
		lines = append(lines, line)
	}
	return lines
}

// renderResults shows the visible slice of search results. Once the server
// has nothing more, the rest of the screen is filled with tildes.
func (m Model) renderResults(styles Styles) []string {
	h := m.viewportHeight()
	results, done := m.client.Results()

	start := min(m.offset, len(results))
	end := min(start+h, len(results))
	visible := results[start:end]

	rows := make([][]string, 0, len(visible))
	for _, r := range visible {
		rows = append(rows, []string{r.Artist, r.Title})
	}
	widths := fitColumns(rows, searchFactors, m.width)

	lines := make([]string, 0, h)
	for i, row := range rows {
		line := renderRow(row, widths)
		if start+i == m.focus {
			line = styles.Selected.Render(line)
		} else {
			line = styles.Text.Render(line)
		}
		lines = append(lines, line)
	}
	if done {
		for len(lines) < h {
			lines = append(lines, styles.Tilde.Render("~"))
		}
	}
	return lines
}

func (m Model) renderPrompt(styles Styles, now time.Time) string {
	statusWidth := m.status.width(now)
	promptWidth := max(m.width-statusWidth, 0)

	var prompt string
	value := m.input.Value()
	switch {
	case value == "":
		prompt = styles.FaintText.Render(fitCell(m.input.Placeholder+"  "+m.hintText(), promptWidth))
	case strings.HasPrefix(value, ":"+cmdPassword+" "):
		prompt = fitCell(maskPassword(value), promptWidth)
	default:
		m.input.Width = max(promptWidth-1, 1)
		prompt = m.input.View()
		if pad := promptWidth - lipgloss.Width(prompt); pad > 0 {
			prompt += strings.Repeat(" ", pad)
		}
	}

	if statusWidth == 0 {
		return prompt
	}
	return prompt + styles.StatusStyle(m.status.kind).Render(fitCell(m.status.text, statusWidth))
}

func (m Model) hintText() string {
	hints := m.keys.hints()
	parts := make([]string, 0, len(hints))
	for _, k := range hints {
		h := k.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " · ")
}
