package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"euromap/internal/regioninfo"
	"euromap/internal/viewport"
)

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	l := m.layout()

	// Header
	title := " euromap ─ political map of Europe "
	if m.page != nil {
		title = " euromap ─ " + m.page.Name + " "
	}
	header := lipgloss.NewStyle().Width(l.contentW).Render(titleStyle.Render(title))

	// Body
	var body string
	switch {
	case m.showHelp:
		doc := boxStyle.MaxHeight(l.contentH).Render(strings.TrimSpace(m.helpDoc))
		body = lipgloss.Place(l.contentW, l.contentH, lipgloss.Center, lipgloss.Center, doc)
	case m.route.Kind == RouteCountry:
		body = lipgloss.NewStyle().Width(l.contentW).Height(l.contentH).Render(m.pager.View())
	default:
		body = m.mapBody(l)
	}

	// Footer / help
	status := dimStyle.Render(" " + m.status + " ")
	var keys string
	if m.route.Kind == RouteCountry {
		keys = m.help.View(pageKeys{m.keys})
	} else {
		keys = m.help.View(mapKeys{m.keys})
	}
	right := dimStyle.Render(m.pointerInfo() + " ")
	spacerW := max(0, l.contentW-lipgloss.Width(status)-lipgloss.Width(right))
	line := status + strings.Repeat(" ", spacerW) + right
	footer := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().MaxWidth(l.contentW).Render(line),
		lipgloss.NewStyle().MaxWidth(l.contentW).Render(" "+keys),
	)

	ui := lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
	return appStyle.Width(l.contentW).Height(m.height).Render(ui)
}

func (m Model) mapBody(l layout) string {
	cv := m.renderMap(l.mapW, l.mapH)
	mapView := lipgloss.NewStyle().Width(l.mapW).Height(l.mapH).Render(cv.render(regioninfo.Background))

	cols := []string{}
	if m.showSidebar {
		sidebar := lipgloss.NewStyle().Width(sidebarWidth).Render(m.l.View())
		cols = append(cols, sidebar, " ")
	}
	cols = append(cols, mapView)
	if l.panelW > 0 {
		w := l.panelW - 1
		panels := []string{m.infoPanel(w)}
		if m.showLegend {
			panels = append(panels, m.legendPanel(w))
		}
		side := lipgloss.NewStyle().Width(w).Height(l.mapH).MaxHeight(l.mapH).
			Render(lipgloss.JoinVertical(lipgloss.Left, panels...))
		cols = append(cols, " ", side)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

// infoPanel describes the selected region, or invites a click.
func (m Model) infoPanel(w int) string {
	code, ok := m.ctrl.Selected()
	if !ok {
		lines := []string{boldStyle.Render("Europe"), dimStyle.Render("Click a country to focus it.")}
		if h := m.ctrl.Hovered(); h != "" {
			lines = append(lines, "", dimStyle.Render("pointer: ")+m.info.DisplayName(h))
		}
		return boxStyle.Width(w - 2).Render(strings.Join(lines, "\n"))
	}

	info, known := m.info.Lookup(code)
	name := m.info.DisplayName(code)
	if flag := regioninfo.Flag(code); flag != "" {
		name = flag + " " + name
	}
	lines := []string{titleStyle.Render(name)}
	if !known {
		lines = append(lines, dimStyle.Render("No political data"))
	}
	for _, a := range []struct {
		label string
		attr  regioninfo.Attribute
	}{
		{"President", info.President},
		{"Government", info.Government},
		{"AI alignment", info.AI},
	} {
		if !a.attr.Valid() {
			continue
		}
		lines = append(lines, "", dimStyle.Render(a.label+":"), attrStyle(a.attr.Color).Render(a.attr.Label))
	}
	if v, ok := m.info.Ideology(code); ok {
		lines = append(lines, "", dimStyle.Render("Ideology: ")+attrStyle(regioninfo.IdeologyColor(v, true)).Render(fmt.Sprintf("%+.2f", v)))
	}
	lines = append(lines, "", dimStyle.Render("enter: country page"))
	return boxStyle.Width(w - 2).Render(strings.Join(lines, "\n"))
}

func (m Model) legendPanel(w int) string {
	mode := m.ctrl.ColorMode()
	lines := []string{boldStyle.Render("Legend · " + mode.String())}
	for _, e := range regioninfo.Legend(mode) {
		lines = append(lines, swatch(e.Color, e.Label))
	}
	return boxStyle.Width(w - 2).Render(strings.Join(lines, "\n"))
}

// pointerInfo is the right-hand side of the status line.
func (m Model) pointerInfo() string {
	parts := []string{}
	if h := m.ctrl.Hovered(); h != "" {
		parts = append(parts, strings.ToUpper(h)+" "+m.info.DisplayName(h))
	}
	parts = append(parts,
		fmt.Sprintf("×%.2f", m.ctrl.Transform().Scale),
		m.ctrl.ColorMode().String())
	return strings.Join(parts, " · ")
}

func (m *Model) toggleHelp() {
	m.showHelp = !m.showHelp
	if m.showHelp && m.helpDoc == "" {
		m.helpDoc = m.renderHelpDoc(m.layout().contentW - 4)
	}
}

// helpMarkdown documents the controls.
func (m Model) helpMarkdown() string {
	var b strings.Builder
	b.WriteString("# euromap\n\nA political map of Europe. Click a country to focus it, ")
	b.WriteString("press enter to open its page.\n\n## Map\n\n| Key | Action |\n|---|---|\n")
	b.WriteString("| drag | pan |\n| wheel | zoom at the pointer |\n| click | focus a country |\n")
	for _, group := range (mapKeys{m.keys}).FullHelp() {
		for _, k := range group {
			if h := k.Help(); h.Key != "" {
				fmt.Fprintf(&b, "| `%s` | %s |\n", h.Key, h.Desc)
			}
		}
	}
	b.WriteString("\n## Country page\n\n| Key | Action |\n|---|---|\n")
	for _, k := range (pageKeys{m.keys}).ShortHelp() {
		h := k.Help()
		fmt.Fprintf(&b, "| `%s` | %s |\n", h.Key, h.Desc)
	}
	b.WriteString("\n## Colour modes\n\n")
	mode := viewport.ColorNeutral
	for {
		fmt.Fprintf(&b, "- %s\n", mode)
		if mode = mode.Next(); mode == viewport.ColorNeutral {
			break
		}
	}
	return b.String()
}

func (m Model) renderHelpDoc(width int) string {
	doc := m.helpMarkdown()
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(max(20, min(width, 80))),
	)
	if err != nil {
		return doc
	}
	out, err := r.Render(doc)
	if err != nil {
		return doc
	}
	return out
}
