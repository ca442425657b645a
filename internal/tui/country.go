package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"euromap/internal/detail"
)

type stockMsg detail.StockResult

type newsMsg detail.NewsResult

// openCountry navigates to the page of code. Requests of a previous page
// are cancelled and their results will be dropped.
func (m *Model) openCountry(code string) tea.Cmd {
	code = strings.ToLower(strings.TrimSpace(code))
	m.route = Route{Kind: RouteCountry, Code: code}
	m.page = detail.NewPage(m.info, code)
	m.pager.GotoTop()
	m.status = "country: " + m.page.Name
	m.log.Debug("open country page", zap.String("code", code))
	cmd := tea.Batch(m.fetchStock(), m.fetchNews(), m.spinner.Tick)
	m.syncPager()
	return cmd
}

// closeCountry returns to the map.
func (m *Model) closeCountry() {
	m.stockTrack.Cancel()
	m.newsTrack.Cancel()
	m.route = Route{Kind: RouteMap}
	m.page = nil
	m.status = "map"
}

func (m *Model) fetchStock() tea.Cmd {
	ctx, t := m.stockTrack.Begin(m.ctx, m.page.Code)
	m.page.ExpectStock(t)
	f := m.fetcher
	return func() tea.Msg {
		return stockMsg(f.FetchStock(ctx, t))
	}
}

// fetchNews also serves the refresh key: every call is a new request and
// supersedes the one in flight.
func (m *Model) fetchNews() tea.Cmd {
	ctx, t := m.newsTrack.Begin(m.ctx, m.page.Code)
	m.page.ExpectNews(t)
	f := m.fetcher
	return func() tea.Msg {
		return newsMsg(f.FetchNews(ctx, t))
	}
}

func (m *Model) applyStock(r detail.StockResult) {
	if m.page == nil || !m.page.ApplyStock(r) {
		m.log.Debug("stale stock result dropped", zap.String("code", r.Ticket.Code), zap.Uint64("seq", r.Ticket.Seq))
		return
	}
	m.syncPager()
}

func (m *Model) applyNews(r detail.NewsResult) {
	if m.page == nil || !m.page.ApplyNews(r) {
		m.log.Debug("stale news result dropped", zap.String("code", r.Ticket.Code), zap.Uint64("seq", r.Ticket.Seq))
		return
	}
	m.syncPager()
}

func (m Model) loading() bool {
	return m.page != nil && (m.page.StockState == detail.PanelLoading || m.page.NewsState == detail.PanelLoading)
}

func (m Model) updateCountry(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.Close()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.toggleHelp()
			return m, nil
		case m.showHelp && msg.String() == "esc":
			m.showHelp = false
			return m, nil
		case key.Matches(msg, m.keys.Back):
			m.closeCountry()
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			m.status = "refreshing news"
			cmd := m.fetchNews()
			m.syncPager()
			return m, tea.Batch(cmd, m.spinner.Tick)
		}
	case spinner.TickMsg:
		if !m.loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.syncPager()
		return m, cmd
	}
	var cmd tea.Cmd
	m.pager, cmd = m.pager.Update(msg)
	return m, cmd
}

// syncPager re-renders the page into the scrolling pager.
func (m *Model) syncPager() {
	if m.page == nil {
		return
	}
	m.pager.SetContent(m.renderPage(m.pager.Width))
}

// renderPage lays out the country page for a column of width w.
func (m Model) renderPage(w int) string {
	p := m.page
	if w < 20 {
		w = 20
	}
	inner := w - 4

	var sections []string
	head := []string{
		titleStyle.Render(p.Title()),
		dimStyle.Render(detail.Subtitle),
	}
	for _, a := range p.Attributes() {
		head = append(head, fmt.Sprintf("%s: %s", dimStyle.Render(a[0]), a[1]))
	}
	sections = append(sections, strings.Join(head, "\n"))

	// stock panel
	var stock []string
	stock = append(stock, boldStyle.Render("Stock market"))
	switch p.StockState {
	case detail.PanelLoading:
		stock = append(stock, m.spinner.View()+" "+p.StockMessage())
	case detail.PanelFailed:
		stock = append(stock, dimStyle.Render(p.StockMessage()))
	default:
		change := upStyle
		if p.Quote.ChangePercent < 0 {
			change = downStyle
		}
		stock = append(stock, fmt.Sprintf("%s  %s  %s",
			boldStyle.Render(p.Quote.Index), detail.FormatValue(p.Quote.Value), change.Render(p.Quote.Change())))
		if src := p.StockSourceLine(); src != "" {
			stock = append(stock, dimStyle.Render(src))
		}
	}
	sections = append(sections, boxStyle.Width(inner).Render(strings.Join(stock, "\n")))

	if sig := p.Signal(); sig != "" {
		sections = append(sections, signalStyle.Width(inner).Render("Market signal: "+sig))
	}

	// news panel
	var news []string
	news = append(news, boldStyle.Render("Recent news"))
	if msg := p.NewsMessage(); msg != "" {
		if p.NewsState == detail.PanelLoading {
			msg = m.spinner.View() + " " + msg
		}
		news = append(news, dimStyle.Render(msg))
	} else {
		for _, h := range p.Headlines() {
			news = append(news, "• "+h.Title, "  "+dimStyle.Render(h.Domain+" · "+h.When))
		}
	}
	news = append(news, dimStyle.Render(detail.NewsAttribution))
	sections = append(sections, boxStyle.Width(inner).Render(strings.Join(news, "\n")))

	predictions := boldStyle.Render("ML predictions") + "\n" + dimStyle.Render(detail.PredictionsLabel)
	sections = append(sections, boxStyle.Width(inner).Render(predictions))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
