package detail

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"euromap/internal/news"
	"euromap/internal/regioninfo"
	"euromap/internal/stock"
)

// Fixed page copy.
const (
	Subtitle         = "Live political & economic overview"
	StockLoading     = "Loading stock data…"
	StockMissing     = "No stock data available"
	NewsLoading      = "Loading news…"
	NewsFailed       = "News unavailable (rate-limit or network)"
	NewsEmpty        = "No recent headlines"
	UnknownDate      = "unknown date"
	PredictionsLabel = "Predictions chart (connect /api/pmb/2024)"
	NewsAttribution  = "Source: GDELT DOC 2.0"
)

// MaxHeadlines caps the news list.
const MaxHeadlines = 8

// PanelState is the lifecycle of one panel.
type PanelState int

const (
	PanelLoading PanelState = iota
	PanelReady
	PanelFailed
)

var numbers = message.NewPrinter(language.English)

// Page is the view-model of a country page. It is not safe for
// concurrent use; results are applied from a single goroutine.
type Page struct {
	Code  string
	Name  string
	Flag  string
	Info  regioninfo.Info
	Known bool

	StockState PanelState
	Quote      stock.Quote

	NewsState PanelState
	Articles  []news.Article

	stockTicket Ticket
	newsTicket  Ticket
}

// NewPage returns a page for code with both panels loading. Unknown codes
// render with the upper-cased code as their name.
func NewPage(info *regioninfo.Provider, code string) *Page {
	code = strings.ToLower(code)
	meta, known := info.Lookup(code)
	flag := regioninfo.Flag(code)
	if flag == "" {
		flag = "🏳️"
	}
	return &Page{
		Code:  code,
		Name:  info.DisplayName(code),
		Flag:  flag,
		Info:  meta,
		Known: known,
	}
}

// ExpectStock marks the stock panel loading for ticket t. Results for any
// other ticket are ignored from now on.
func (p *Page) ExpectStock(t Ticket) {
	p.stockTicket = t
	p.StockState = PanelLoading
}

// ExpectNews is ExpectStock for the news panel. The previous headlines
// are cleared.
func (p *Page) ExpectNews(t Ticket) {
	p.newsTicket = t
	p.NewsState = PanelLoading
	p.Articles = nil
}

// ApplyStock stores r if it answers the expected request. It reports
// whether the page changed.
func (p *Page) ApplyStock(r StockResult) bool {
	if p.stockTicket.Seq == 0 || r.Ticket != p.stockTicket || r.Canceled() {
		return false
	}
	p.stockTicket = Ticket{}
	if r.Err != nil || !r.Quote.OK() {
		p.StockState = PanelFailed
		p.Quote = stock.Quote{}
		return true
	}
	p.StockState = PanelReady
	p.Quote = r.Quote
	return true
}

// ApplyNews stores r if it answers the expected request.
func (p *Page) ApplyNews(r NewsResult) bool {
	if p.newsTicket.Seq == 0 || r.Ticket != p.newsTicket || r.Canceled() {
		return false
	}
	p.newsTicket = Ticket{}
	if r.Err != nil {
		p.NewsState = PanelFailed
		p.Articles = nil
		return true
	}
	p.NewsState = PanelReady
	p.Articles = r.Articles
	if len(p.Articles) > MaxHeadlines {
		p.Articles = p.Articles[:MaxHeadlines]
	}
	return true
}

// Title is the flag followed by the name.
func (p *Page) Title() string {
	return p.Flag + " " + p.Name
}

// StockMessage is the text shown instead of a quote, or "".
func (p *Page) StockMessage() string {
	switch p.StockState {
	case PanelLoading:
		return StockLoading
	case PanelFailed:
		return StockMissing
	}
	return ""
}

// NewsMessage is the text shown instead of headlines, or "".
func (p *Page) NewsMessage() string {
	switch {
	case p.NewsState == PanelLoading:
		return NewsLoading
	case p.NewsState == PanelFailed:
		return NewsFailed
	case len(p.Articles) == 0:
		return NewsEmpty
	}
	return ""
}

// Signal is the market signal banner, or "".
func (p *Page) Signal() string {
	if p.StockState != PanelReady {
		return ""
	}
	return p.Quote.Signal()
}

// FormatValue renders an index value with thousands separators.
func FormatValue(v float64) string {
	return numbers.Sprintf("%.2f", v)
}

// StockSourceLine is "Source: host · time" for a ready quote.
func (p *Page) StockSourceLine() string {
	parts := []string{}
	if h := p.Quote.SourceHost(); h != "" {
		parts = append(parts, h)
	}
	if !p.Quote.UpdatedAt.IsZero() {
		parts = append(parts, p.Quote.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	if len(parts) == 0 {
		return ""
	}
	return "Source: " + strings.Join(parts, " · ")
}

// Headline is one display row of the news panel.
type Headline struct {
	Title  string
	Domain string
	When   string
	URL    string
}

// Headlines returns the news rows, newest first as received.
func (p *Page) Headlines() []Headline {
	out := make([]Headline, 0, len(p.Articles))
	for _, a := range p.Articles {
		when := UnknownDate
		if t, ok := a.Published(); ok {
			when = t.Local().Format("2006-01-02 15:04")
		}
		out = append(out, Headline{
			Title:  a.DisplayTitle(),
			Domain: a.DisplayDomain(),
			When:   when,
			URL:    a.URL,
		})
	}
	return out
}

// Attributes lists the political attributes known for the region as
// label/value pairs, in display order.
func (p *Page) Attributes() [][2]string {
	var out [][2]string
	for _, a := range []struct {
		name string
		attr regioninfo.Attribute
	}{
		{"President", p.Info.President},
		{"Government", p.Info.Government},
		{"AI alignment", p.Info.AI},
	} {
		if a.attr.Valid() {
			out = append(out, [2]string{a.name, a.attr.Label})
		}
	}
	if p.Info.Ideology != nil {
		out = append(out, [2]string{"Ideology", fmt.Sprintf("%+.2f", *p.Info.Ideology)})
	}
	return out
}

// Markdown renders the page as a markdown document.
func (p *Page) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n_%s_\n\n", p.Title(), Subtitle)

	if attrs := p.Attributes(); len(attrs) > 0 {
		for _, a := range attrs {
			fmt.Fprintf(&b, "- **%s:** %s\n", a[0], a[1])
		}
		b.WriteString("\n")
	}

	b.WriteString("## Stock market\n\n")
	if msg := p.StockMessage(); msg != "" {
		b.WriteString(msg + "\n\n")
	} else {
		fmt.Fprintf(&b, "**%s** %s (%s)\n\n", p.Quote.Index, FormatValue(p.Quote.Value), p.Quote.Change())
		if src := p.StockSourceLine(); src != "" {
			b.WriteString(src + "\n\n")
		}
	}
	if sig := p.Signal(); sig != "" {
		fmt.Fprintf(&b, "> **Market signal:** %s\n\n", sig)
	}

	b.WriteString("## Recent news\n\n")
	if msg := p.NewsMessage(); msg != "" {
		b.WriteString(msg + "\n\n")
	} else {
		for _, h := range p.Headlines() {
			title := h.Title
			if h.URL != "" {
				title = fmt.Sprintf("[%s](%s)", h.Title, h.URL)
			}
			fmt.Fprintf(&b, "- %s  \n  %s · %s\n", title, h.Domain, h.When)
		}
		b.WriteString("\n")
	}
	b.WriteString(NewsAttribution + "\n\n")

	fmt.Fprintf(&b, "## ML predictions\n\n%s\n", PredictionsLabel)
	return b.String()
}
