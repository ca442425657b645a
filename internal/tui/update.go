package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"seehuhn.de/go/geom/vec"

	"euromap/internal/detail"
	"euromap/internal/scene"
	"euromap/internal/viewport"
)

// Layout
const (
	sidebarWidth = 28
	panelWidth   = 32
	headerHeight = 1
	footerHeight = 2

	panStep = 4 // micro-pixels per arrow key
)

type layout struct {
	contentW, contentH int
	mapX, mapY         int
	mapW, mapH         int
	panelW             int // includes the gap to the map
}

func (m Model) layout() layout {
	l := layout{
		contentW: max(10, m.width),
		contentH: max(4, m.height-headerHeight-footerHeight),
		mapY:     headerHeight,
	}
	if m.showSidebar {
		l.mapX = sidebarWidth + 1
	}
	if l.contentW-l.mapX >= 2*panelWidth {
		l.panelW = panelWidth
	}
	l.mapW = max(10, l.contentW-l.mapX-l.panelW)
	l.mapH = l.contentH
	return l
}

// cell converts a terminal position into map cell coordinates.
func (l layout) cell(x, y int) (cx, cy int, inside bool) {
	cx, cy = x-l.mapX, y-l.mapY
	return cx, cy, cx >= 0 && cx < l.mapW && cy >= 0 && cy < l.mapH
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil
	case stockMsg:
		m.applyStock(detail.StockResult(msg))
		return m, nil
	case newsMsg:
		m.applyNews(detail.NewsResult(msg))
		return m, nil
	case mapChangedMsg:
		m.reloadScene(msg.path)
		return m, m.watch()
	case watchErrMsg:
		m.status = "watch error: " + msg.err.Error()
		m.log.Warn("map watcher", zap.Error(msg.err))
		return m, m.watch()
	}
	if m.route.Kind == RouteCountry {
		return m.updateCountry(msg)
	}
	return m.updateMap(msg)
}

// resize lays the screen out again. The controller is positioned the
// first time a size is known; later sizes only update its container.
func (m *Model) resize() {
	l := m.layout()
	c := containerSize(l.mapW, l.mapH)
	if !m.ctrl.Initialized() {
		if !m.ctrl.Initialize(m.scene.BBox, c) {
			m.status = "map has nothing to show"
		}
	} else {
		m.ctrl.Resize(c)
	}
	m.l.SetSize(sidebarWidth-2, l.contentH-2)
	m.pager.Width = l.contentW
	m.pager.Height = l.contentH
	m.help.Width = l.contentW
	m.helpDoc = ""
	if m.showHelp {
		m.helpDoc = m.renderHelpDoc(l.contentW - 4)
	}
	m.syncPager()
}

func (m Model) updateMap(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// while filtering, the list owns the keyboard
		if m.showSidebar && m.l.FilterState() == list.Filtering {
			var cmd tea.Cmd
			m.l, cmd = m.l.Update(msg)
			return m, cmd
		}
		if m.showHelp && (key.Matches(msg, m.keys.Help) || msg.String() == "esc") {
			m.showHelp = false
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.Close()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.toggleHelp()
		case key.Matches(msg, m.keys.Sidebar):
			m.showSidebar = !m.showSidebar
			m.resize()
		case m.showSidebar && key.Matches(msg, m.keys.Open):
			if it, ok := m.l.SelectedItem().(countryItem); ok {
				m.showSidebar = false
				m.resize()
				m.activate(it.code)
			}
		case m.showSidebar && key.Matches(msg, m.keys.Up, m.keys.Down):
			var cmd tea.Cmd
			m.l, cmd = m.l.Update(msg)
			return m, cmd
		case key.Matches(msg, m.keys.Open):
			code, ok := m.ctrl.Selected()
			if !ok {
				m.status = "select a country first"
				return m, nil
			}
			return m, m.openCountry(code)
		case key.Matches(msg, m.keys.ZoomIn):
			m.ctrl.ZoomCenter(viewport.ZoomIn)
			m.status = fmt.Sprintf("zoom: %.2fx", m.ctrl.Transform().Scale)
		case key.Matches(msg, m.keys.ZoomOut):
			m.ctrl.ZoomCenter(viewport.ZoomOut)
			m.status = fmt.Sprintf("zoom: %.2fx", m.ctrl.Transform().Scale)
		case key.Matches(msg, m.keys.Reset):
			m.ctrl.ResetView()
			m.status = "view reset"
		case key.Matches(msg, m.keys.Dismiss):
			m.ctrl.Dismiss()
			m.status = "map"
		case key.Matches(msg, m.keys.ColorMode):
			m.ctrl.SetColorMode(m.ctrl.ColorMode().Next())
			m.status = "colour mode: " + m.ctrl.ColorMode().String()
		case key.Matches(msg, m.keys.Legend):
			m.showLegend = !m.showLegend
		case key.Matches(msg, m.keys.Up):
			m.pan(0, -panStep)
		case key.Matches(msg, m.keys.Down):
			m.pan(0, panStep)
		case key.Matches(msg, m.keys.Left):
			m.pan(-panStep, 0)
		case key.Matches(msg, m.keys.Right):
			m.pan(panStep, 0)
		}
		if !m.showSidebar {
			return m, nil
		}
	case tea.MouseMsg:
		if m.handleMouse(msg) {
			return m, nil
		}
	}
	// Pass remaining messages to list when visible
	if m.showSidebar {
		var cmd tea.Cmd
		m.l, cmd = m.l.Update(msg)
		return m, cmd
	}
	return m, nil
}

// pan shifts the map by a screen-space delta, as a one-step drag.
func (m *Model) pan(dx, dy float64) {
	if m.ctrl.Dragging() {
		return
	}
	c := m.ctrl.Container()
	x, y := c.Width/2, c.Height/2
	m.ctrl.BeginPan(x, y)
	m.ctrl.ContinuePan(x+dx, y+dy)
	m.ctrl.EndPan()
}

// handleMouse drives the controller from the pointer. It reports whether
// the event was consumed by the map.
func (m *Model) handleMouse(msg tea.MouseMsg) bool {
	l := m.layout()
	cx, cy, inside := l.cell(msg.X, msg.Y)
	px, py := pointerMicro(cx, cy)

	switch msg.Action {
	case tea.MouseActionPress:
		if !inside {
			return false
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.ctrl.Zoom(px, py, viewport.ZoomIn)
			m.status = fmt.Sprintf("zoom: %.2fx", m.ctrl.Transform().Scale)
		case tea.MouseButtonWheelDown:
			m.ctrl.Zoom(px, py, viewport.ZoomOut)
			m.status = fmt.Sprintf("zoom: %.2fx", m.ctrl.Transform().Scale)
		case tea.MouseButtonLeft:
			m.ctrl.BeginPan(px, py)
			m.pressed, m.moved = true, false
		default:
			return false
		}
		return true

	case tea.MouseActionMotion:
		if m.ctrl.Dragging() {
			if m.ctrl.ContinuePan(px, py) {
				m.moved = true
			}
			return true
		}
		m.hoverAt(px, py, inside)
		return inside

	case tea.MouseActionRelease:
		click := m.pressed && !m.moved
		m.ctrl.EndPan()
		m.pressed, m.moved = false, false
		if click && inside {
			m.clickAt(px, py)
		}
		return click
	}
	return false
}

func (m *Model) regionAt(px, py float64) (string, bool) {
	p := m.ctrl.Transform().ToScene(vec.Vec2{X: px, Y: py})
	return m.scene.HitTest(p)
}

func (m *Model) hoverAt(px, py float64, inside bool) {
	if !inside {
		m.ctrl.Hover("")
		return
	}
	code, _ := m.regionAt(px, py)
	m.ctrl.Hover(code)
}

func (m *Model) clickAt(px, py float64) {
	if code, ok := m.regionAt(px, py); ok {
		m.activate(code)
	}
}

// activate selects code and focuses the map on it. Codes missing from the
// scene are selected without moving the view.
func (m *Model) activate(code string) {
	var bbox viewport.Rect
	if r, ok := m.scene.Lookup(code); ok {
		bbox = r.BBox
	}
	m.ctrl.ActivateRegion(code, bbox)
	m.status = "selected: " + m.info.DisplayName(code)
}

// reloadScene replaces the map after the file changed on disk.
func (m *Model) reloadScene(path string) {
	s, err := scene.Load(path)
	if err != nil {
		m.status = "reload failed: " + err.Error()
		m.log.Warn("map reload failed", zap.String("path", path), zap.Error(err))
		return
	}
	m.scene = s
	m.refreshCountries()
	m.status = fmt.Sprintf("map reloaded: %d regions", s.Len())
	m.log.Info("map reloaded", zap.String("path", path), zap.Int("regions", s.Len()))
	if m.width == 0 {
		return
	}
	l := m.layout()
	if !m.ctrl.Initialize(s.BBox, containerSize(l.mapW, l.mapH)) {
		m.status = "map has nothing to show"
	}
}
