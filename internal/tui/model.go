// Package tui is the terminal front-end: a braille-rendered map of Europe
// driven by the viewport controller, and a page per country.
package tui

import (
	"context"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	pager "github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"euromap/internal/detail"
	"euromap/internal/regioninfo"
	"euromap/internal/scene"
	"euromap/internal/viewport"
)

// RouteKind selects the screen.
type RouteKind int

const (
	RouteMap RouteKind = iota
	RouteCountry
)

// Route is the current screen. Code is set for RouteCountry only.
type Route struct {
	Kind RouteKind
	Code string
}

// Options wires a Model.
type Options struct {
	Scene     *scene.Scene // nil selects the built-in map
	MapPath   string       // reloaded when Watcher reports a change
	Info      *regioninfo.Provider
	Fetcher   *detail.Fetcher
	Viewport  viewport.Options
	ColorMode viewport.ColorMode
	Country   string // start on this country's page
	Watcher   *MapWatcher
	Log       *zap.Logger
}

type Model struct {
	width  int
	height int

	showSidebar bool
	showLegend  bool
	showHelp    bool

	status string

	// map
	ctrl    *viewport.Controller
	scene   *scene.Scene
	mapPath string
	info    *regioninfo.Provider
	watcher *MapWatcher

	// pointer gesture
	pressed bool
	moved   bool

	// country list
	l list.Model

	// country page
	route      Route
	fetcher    *detail.Fetcher
	page       *detail.Page
	stockTrack *detail.Tracker
	newsTrack  *detail.Tracker
	ctx        context.Context
	cancel     context.CancelFunc
	spinner    spinner.Model
	pager      pager.Model

	keys    keyMap
	help    help.Model
	helpDoc string

	startup tea.Cmd
	log     *zap.Logger
}

func New(opts Options) Model {
	if opts.Scene == nil {
		opts.Scene = scene.Default()
	}
	if opts.Info == nil {
		opts.Info = regioninfo.Default()
	}
	if opts.Fetcher == nil {
		opts.Fetcher = &detail.Fetcher{}
	}
	if opts.Fetcher.Info == nil {
		opts.Fetcher.Info = opts.Info
	}
	if opts.Viewport == (viewport.Options{}) {
		opts.Viewport = viewport.DefaultOptions()
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := Model{
		status:     "euromap ready",
		ctrl:       viewport.New(opts.Viewport, opts.Log.Named("viewport")),
		scene:      opts.Scene,
		mapPath:    opts.MapPath,
		info:       opts.Info,
		watcher:    opts.Watcher,
		fetcher:    opts.Fetcher,
		stockTrack: &detail.Tracker{},
		newsTrack:  &detail.Tracker{},
		ctx:        ctx,
		cancel:     cancel,
		keys:       defaultKeys(),
		help:       help.New(),
		pager:      pager.New(0, 0),
		log:        opts.Log,
	}
	m.ctrl.SetColorMode(opts.ColorMode)

	// list setup
	d := list.NewDefaultDelegate()
	d.ShowDescription = false
	m.l = list.New(nil, d, 0, 0)
	m.l.Title = "Countries"
	m.l.SetShowHelp(false)
	m.l.SetShowStatusBar(false)
	m.l.SetFilteringEnabled(true)
	m.refreshCountries()

	m.spinner = spinner.New()
	m.spinner.Spinner = spinner.Dot
	m.spinner.Style = titleStyle

	if code := strings.TrimSpace(opts.Country); code != "" {
		m.startup = m.openCountry(code)
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.startup, m.watch())
}

// watch waits for the next map file change, if the map is watched.
func (m Model) watch() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	return m.watcher.wait()
}

// Route returns the current screen.
func (m Model) Route() Route { return m.route }

// Controller exposes the map's viewport controller.
func (m Model) Controller() *viewport.Controller { return m.ctrl }

// Page is the open country page, or nil on the map.
func (m Model) Page() *detail.Page { return m.page }

// Status is the footer status line.
func (m Model) Status() string { return m.status }

// countryItem is a region in the sidebar list.
type countryItem struct {
	code string
	name string
}

func (i countryItem) Title() string       { return strings.TrimSpace(regioninfo.Flag(i.code) + " " + i.name) }
func (i countryItem) Description() string { return strings.ToUpper(i.code) }
func (i countryItem) FilterValue() string { return i.name + " " + i.code }

// refreshCountries fills the sidebar with the scene's regions by name.
func (m *Model) refreshCountries() {
	items := make([]list.Item, 0, m.scene.Len())
	for _, code := range m.scene.Codes() {
		name := m.info.DisplayName(code)
		if _, known := m.info.Lookup(code); !known {
			if r, ok := m.scene.Lookup(code); ok && r.Name != "" {
				name = r.Name
			}
		}
		items = append(items, countryItem{code: code, name: name})
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].FilterValue() < items[j].FilterValue()
	})
	m.l.SetItems(items)
}

// Close releases the watcher and cancels in-flight requests.
func (m Model) Close() {
	m.stockTrack.Cancel()
	m.newsTrack.Cancel()
	m.cancel()
	if m.watcher != nil {
		if err := m.watcher.Close(); err != nil {
			m.log.Warn("close map watcher", zap.Error(err))
		}
	}
}
