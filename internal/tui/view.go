package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/siftail/dtop/internal/core"
)

// View renders the current frame. Exactly one of the four ViewKinds is
// active at a time (spec.md §4.8); ActionMenu and the help overlay are
// appended below the container table rather than replacing it.
func (m Model) View() string {
	if !m.ready {
		return "starting dtop...\n"
	}

	view := m.state.View()
	var body string
	switch view.Kind {
	case core.ViewLogView:
		body = m.renderLogView()
	default:
		body = m.renderTable()
	}

	if view.Kind == core.ViewActionMenu {
		body = m.overlayActionMenu(body)
	}
	if m.showHelp {
		body = m.overlayHelp(body)
	}

	return lipgloss.JoinVertical(lipgloss.Left, m.renderToolbar(), body, m.renderStatusLine())
}

func (m Model) renderToolbar() string {
	view := m.state.View().Kind
	var hints string
	switch view {
	case core.ViewSearchMode:
		hints = "esc/enter cancel"
	case core.ViewLogView:
		hints = "h/esc back  j/k scroll  ? help"
	case core.ViewActionMenu:
		hints = "j/k select  enter confirm  esc cancel"
	default:
		hints = "enter actions  l logs  / search  a all  s sort  y copy id  o dozzle  ? help  q quit"
	}
	sort := m.state.Sort()
	title := fmt.Sprintf("dtop  sort:%s", sort.Field)
	if sort.Direction == core.Desc {
		title += "↓"
	} else {
		title += "↑"
	}
	if m.state.ShowAll() {
		title += "  all"
	}
	return m.theme.ToolbarStyle.Render(title) + "  " + m.theme.HotkeyLabelStyle.Render(hints)
}

func (m Model) renderStatusLine() string {
	if m.banner != "" {
		return m.theme.StatusErrorStyle.Render(m.banner)
	}
	if m.state.View().Kind == core.ViewSearchMode {
		return m.theme.PromptStyle.Render("/" + m.state.Search())
	}
	return m.theme.StatusStyle.Render(fmt.Sprintf("%d containers", len(m.state.ViewModel())))
}

var tableCols = []string{"NAME", "STATE", "HEALTH", "CPU", "MEM", "NET", "HOST"}

func (m Model) renderTable() string {
	var b strings.Builder
	b.WriteString(m.theme.HeaderStyle.Render(fmt.Sprintf("%-24s %-11s %-10s %-16s %-18s %-14s %s", tableCols[0], tableCols[1], tableCols[2], tableCols[3], tableCols[4], tableCols[5], tableCols[6])))
	b.WriteByte('\n')

	rows := m.state.ViewModel()
	selected := m.state.SelectedIndex()
	for i, c := range rows {
		row := m.renderRow(c)
		if i == selected {
			row = m.theme.SelectedStyle.Render(row)
		}
		b.WriteString(row)
		b.WriteByte('\n')
		if c.StatusLine != "" {
			b.WriteString(m.theme.StatusStyle.Render("  -> " + c.StatusLine))
			b.WriteByte('\n')
		}
	}
	if len(rows) == 0 {
		b.WriteString(m.theme.StatusStyle.Render("no containers match the current filters"))
	}
	return b.String()
}

func (m Model) renderRow(c core.Container) string {
	state := m.theme.stateStyle(c.State).Render(pad(c.State.String(), 11))
	health := pad("-", 10)
	if c.HasHealth {
		style := m.theme.HealthStartingStyle
		switch c.Health {
		case core.HealthHealthy:
			style = m.theme.HealthHealthyStyle
		case core.HealthUnhealthy:
			style = m.theme.HealthUnhealthyStyle
		}
		health = style.Render(pad(c.Health.String(), 10))
	}
	cpu := fmt.Sprintf("%5.1f%% %s", c.Stats.CPUPercent, m.renderSparkline(c.Stats.CPUHistory))
	mem := fmt.Sprintf("%5.1f%% %s", c.Stats.MemoryPercent, m.renderSparkline(c.Stats.MemoryHistory))
	net := fmt.Sprintf("%s/s ↓ %s/s ↑", humanBytes(c.Stats.NetRxRate), humanBytes(c.Stats.NetTxRate))
	return fmt.Sprintf("%-24s %s %s %-16s %-18s %-14s %s", pad(c.Name, 24), state, health, cpu, mem, net, c.HostId)
}

var sparkChars = []rune(" ▁▂▃▄▅▆▇█")

func (m Model) renderSparkline(h *core.Sparkline) string {
	if h == nil || h.Len() == 0 {
		return strings.Repeat(" ", 8)
	}
	values := h.Values()
	max := 0.0
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	var b strings.Builder
	for _, v := range values {
		idx := 0
		if max > 0 {
			idx = int(v / max * float64(len(sparkChars)-1))
			if idx >= len(sparkChars) {
				idx = len(sparkChars) - 1
			}
		}
		b.WriteRune(sparkChars[idx])
	}
	return m.theme.SparklineHi.Render(b.String())
}

func humanBytes(bytesPerSec float64) string {
	const unit = 1024.0
	if bytesPerSec < unit {
		return fmt.Sprintf("%.0fB", bytesPerSec)
	}
	div, exp := unit, 0
	for n := bytesPerSec / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%ciB", bytesPerSec/div, "KMGTPE"[exp])
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	return s + strings.Repeat(" ", width-len(s))
}

func (m Model) renderLogView() string {
	c, ok := m.containerByKey(m.state.View().LogTarget)
	name := m.state.View().LogTarget.ContainerId
	if ok {
		name = c.Name
	}
	header := m.theme.HeaderStyle.Render(fmt.Sprintf("logs: %s", name))
	return header + "\n" + m.vp.View()
}

func (m Model) renderLogBuffer() string {
	buf := m.state.LogBuffer()
	var b strings.Builder
	for i, e := range buf {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(m.theme.TimestampStyle.Render(e.Time.Format(time.RFC3339)))
		b.WriteByte(' ')
		b.WriteString(renderStyledText(e.Styled))
	}
	return b.String()
}

func renderStyledText(t core.StyledText) string {
	var b strings.Builder
	for _, span := range t {
		b.WriteString(styleFromAttrs(span.Style).Render(span.Text))
	}
	return b.String()
}

func styleFromAttrs(a core.StyleAttrs) lipgloss.Style {
	st := lipgloss.NewStyle()
	if a.Bold {
		st = st.Bold(true)
	}
	if a.Faint {
		st = st.Faint(true)
	}
	if a.Italic {
		st = st.Italic(true)
	}
	if a.Underline {
		st = st.Underline(true)
	}
	if a.Reverse {
		st = st.Reverse(true)
	}
	if a.Fg != "" {
		st = st.Foreground(lipgloss.Color(a.Fg))
	}
	if a.Bg != "" {
		st = st.Background(lipgloss.Color(a.Bg))
	}
	return st
}

func (m Model) overlayActionMenu(body string) string {
	view := m.state.View()
	c, ok := m.containerByKey(view.ActionTarget)
	if !ok {
		return body
	}
	actions := core.AvailableActions(c.State)
	var b strings.Builder
	b.WriteString(m.theme.HeaderStyle.Render(fmt.Sprintf("actions: %s", c.Name)))
	b.WriteByte('\n')
	for i, a := range actions {
		line := "  " + a.String()
		if i == view.ActionIndex {
			line = m.theme.SelectedStyle.Render("> " + a.String())
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return body + "\n" + b.String()
}

func (m Model) overlayHelp(body string) string {
	help := strings.Join([]string{
		"up/k down/j   move selection",
		"enter         action menu",
		"right/l       view logs",
		"/             search",
		"a             toggle show-all",
		"s             cycle sort field",
		"u n c m       sort by uptime/name/cpu/memory",
		"o             open in dozzle",
		"y             copy container id",
		"q ctrl+c      quit",
	}, "\n")
	return body + "\n" + m.theme.ToolbarStyle.Render("help") + "\n" + help
}

func (m Model) containerByKey(key core.ContainerKey) (core.Container, bool) {
	for _, c := range m.state.ViewModel() {
		if c.Key == key {
			return c, true
		}
	}
	return core.Container{}, false
}
