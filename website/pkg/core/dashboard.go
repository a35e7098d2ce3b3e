package core

import (
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/viralscope/viralscope/pkg/covid"
	"github.com/viralscope/viralscope/pkg/notify"
	"github.com/viralscope/viralscope/pkg/selection"
)

const latestDaysShown = 7

// dashboardView is everything the dashboard page renders.
type dashboardView struct {
	Selection   selection.Selection
	Name        string
	Snapshot    covid.StatSnapshot
	Previous    *covid.StatSnapshot
	Country     *covid.CountryRecord
	Loaded      bool
	Loading     bool
	AutoRefresh bool
	UpdatedAt   time.Time

	Menu       selection.Dropdown
	Options    []covid.CountryRecord
	Suggestion *covid.CountryRecord

	Seed   int64
	Points []covid.DailyPoint
	Toasts []notify.Notification
	Return string
}

// inRegionMenu reports whether a click target id belongs to the region menu.
var inRegionMenu = selection.DetectorFunc(func(target string) bool {
	return strings.HasPrefix(target, "region-menu")
})

func (s *site) buildDashboard(r *http.Request) dashboardView {
	q := r.URL.Query()
	data, loaded := s.refresher.Current()
	catalog := data.Countries
	if !loaded {
		catalog = covid.MockCountries()
	}

	v := dashboardView{
		Selection:   selection.Parse(q, catalog),
		Name:        "Global Overview",
		Loaded:      loaded,
		Loading:     s.refresher.Loading(),
		AutoRefresh: s.refresher.AutoRefresh(),
		UpdatedAt:   data.UpdatedAt,
		Return:      r.URL.RequestURI(),
	}

	if q.Get("menu") == selection.Open.String() {
		v.Menu.Toggle()
		v.Menu.SetSearch(q.Get("search"))
		if click := q.Get("click"); click != "" {
			v.Menu.Interact(click, inRegionMenu)
		}
	}
	if v.Menu.State == selection.Open {
		v.Options = v.Menu.Options(catalog)
		if len(v.Options) == 0 && strings.TrimSpace(v.Menu.Search) != "" {
			if c, ok := covid.SuggestCountry(catalog, v.Menu.Search); ok {
				v.Suggestion = &c
			}
		}
	}

	if !v.Selection.Entity.IsGlobal() {
		if c, ok := covid.FindCountry(catalog, string(v.Selection.Entity)); ok {
			v.Country = &c
			v.Name = c.Name
		}
	}
	if snap, ok := data.Snapshot(v.Selection.Entity); ok && loaded {
		v.Snapshot = snap
		if prev, ok := s.refresher.Previous(); ok {
			if ps, ok := prev.Snapshot(v.Selection.Entity); ok {
				v.Previous = &ps
			}
		}
	}

	v.Seed = rand.Int63n(1<<31-1) + 1
	points, err := covid.GenerateSeries(rand.New(rand.NewSource(v.Seed)), s.now(), v.Selection.Entity, v.Selection.Window)
	if err != nil {
		s.log.WithField("region", v.Selection.Entity).Warnf("Could not generate series: %v", err)
	}
	v.Points = points

	if s.feed != nil {
		v.Toasts = s.feed.Since(s.now().Add(-toastWindow))
	}
	return v
}

// HTTP handler for the dashboard
func (s *site) homeHandler(w http.ResponseWriter, r *http.Request) {
	v := s.buildDashboard(r)
	title := siteName + " - COVID-19 Global Tracker"
	if v.Country != nil {
		title = v.Country.Name + " - " + title
	}
	s.render(w, r, http.StatusOK, title,
		"Real-time COVID-19 statistics with interactive filtering and visualization tools.",
		"/", DashboardContent(v), false)
}

func DashboardContent(v dashboardView) g.Node {
	var content []g.Node
	if len(v.Toasts) > 0 {
		content = append(content, toastStack(v.Toasts))
	}
	content = append(content, controlsCard(v))
	if !v.Loaded {
		content = append(content,
			Div(ID("loading-banner"), Class("bg-blue-50 dark:bg-blue-900/20 border border-blue-200 dark:border-blue-800/50 text-blue-700 dark:text-blue-300 px-4 py-3 rounded-lg"),
				g.Text("Loading data... refresh the page in a moment."),
			),
		)
	}
	content = append(content,
		summaryCards(v.Snapshot, v.Previous, v.Loading),
		trendSection(v),
	)
	if v.Country != nil {
		content = append(content, countryDetails(*v.Country))
	}
	return Main(Class("container mx-auto px-4 py-8 space-y-6"), g.Group(content))
}

func toastStack(toasts []notify.Notification) g.Node {
	var items []g.Node
	for _, t := range toasts {
		colors := "bg-emerald-500"
		if t.Kind == notify.KindError {
			colors = "bg-red-500"
		}
		items = append(items, Div(Class("toast px-4 py-3 rounded-lg shadow-lg text-white text-sm "+colors),
			g.Attr("role", "status"), g.Attr("data-kind", string(t.Kind)), g.Attr("data-id", t.ID),
			g.Text(t.Message),
		))
	}
	return Div(ID("toasts"), Class("fixed top-20 right-4 z-50 space-y-2"), g.Group(items))
}

func selectionURL(sel selection.Selection, extra url.Values) string {
	q := sel.Query()
	for k, vs := range extra {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	return "/?" + q.Encode()
}

// chooseURL is the link for picking e from the open menu. The menu state
// after the choice is carried into the query.
func chooseURL(v dashboardView, e covid.Entity) string {
	menu := v.Menu
	sel := v.Selection.With(menu.Choose(e))
	extra := url.Values{}
	if menu.State == selection.Open {
		extra.Set("menu", selection.Open.String())
	}
	if menu.Search != "" {
		extra.Set("search", menu.Search)
	}
	return selectionURL(sel, extra)
}

func regionMenu(v dashboardView) g.Node {
	open := v.Menu.State == selection.Open

	toggle := url.Values{}
	if !open {
		toggle.Set("menu", selection.Open.String())
	}

	nodes := []g.Node{
		Label(Class("block text-sm font-medium text-slate-600 dark:text-slate-300 mb-2"), g.Text("Select Region")),
		A(ID("region-menu-button"), Href(selectionURL(v.Selection, toggle)),
			Class("w-full flex items-center justify-between px-4 py-2.5 rounded-lg border border-slate-300 dark:border-slate-600 bg-white dark:bg-slate-800 hover:border-vs-primary"),
			g.Attr("aria-expanded", strconv.FormatBool(open)),
			Span(g.Text(v.Name)),
			Span(Class("text-slate-400"), g.If(open, g.Text("▲")), g.If(!open, g.Text("▼"))),
		),
	}

	if open {
		outside := url.Values{}
		outside.Set("menu", selection.Open.String())
		outside.Set("click", "page")

		hidden := []g.Node{
			Input(Type("hidden"), Name("menu"), Value(selection.Open.String())),
		}
		for k, vs := range v.Selection.Query() {
			hidden = append(hidden, Input(Type("hidden"), Name(k), Value(vs[0])))
		}

		var options []g.Node
		options = append(options, menuOption(chooseURL(v, covid.Global), "Global Overview", v.Selection.Entity.IsGlobal()))
		for _, c := range v.Options {
			options = append(options, menuOption(chooseURL(v, covid.Entity(c.Code)), c.Name, string(v.Selection.Entity) == c.Code))
		}
		if len(v.Options) == 0 {
			empty := []g.Node{g.Text("No countries match your search.")}
			if v.Suggestion != nil {
				empty = append(empty, g.Text(" Did you mean "),
					A(ID("region-menu-suggestion"), Href(chooseURL(v, covid.Entity(v.Suggestion.Code))),
						Class("text-vs-primary underline"), g.Text(v.Suggestion.Name)),
					g.Text("?"))
			}
			options = append(options, P(Class("px-4 py-3 text-sm text-slate-500"), g.Group(empty)))
		}

		nodes = append(nodes,
			A(ID("region-menu-close"), Href(selectionURL(v.Selection, outside)), Class("hidden"), g.Text("close")),
			Div(ID("region-menu-panel"), Class("absolute top-full left-0 right-0 mt-2 bg-white dark:bg-slate-800 border border-slate-300 dark:border-slate-600 rounded-xl shadow-lg z-30 overflow-hidden"),
				Form(Method("get"), Action("/"), Class("p-3 border-b border-slate-200 dark:border-slate-700"),
					g.Group(hidden),
					Input(ID("region-menu-search"), Type("text"), Name("search"), Value(v.Menu.Search), Placeholder("Search countries..."),
						g.Attr("autofocus", ""), g.Attr("autocomplete", "off"),
						Class("w-full px-3 py-2 text-sm bg-slate-50 dark:bg-slate-700 border border-slate-200 dark:border-slate-600 rounded-lg"),
					),
				),
				Div(ID("region-menu-options"), Class("max-h-60 overflow-y-auto"), g.Group(options)),
			),
		)
	}

	return Div(ID("region-menu"), Class("relative flex-1 max-w-md"), g.Attr("data-state", v.Menu.State.String()), g.Group(nodes))
}

func menuOption(href, label string, active bool) g.Node {
	classes := "block w-full px-4 py-3 text-left text-sm hover:bg-slate-50 dark:hover:bg-slate-700"
	if active {
		classes += " font-semibold text-vs-primary"
	}
	return A(Href(href), Class(classes+" region-option"), g.Text(label))
}

func selectField(label, name string, value string, options [][2]string) g.Node {
	var opts []g.Node
	for _, o := range options {
		opts = append(opts, Option(Value(o[0]), g.If(o[0] == value, Selected()), g.Text(o[1])))
	}
	return Div(
		Label(For(name), Class("block text-sm font-medium text-slate-600 dark:text-slate-300 mb-2"), g.Text(label)),
		Select(ID(name), Name(name), g.Attr("data-autosubmit", ""),
			Class("px-3 py-2 rounded-lg border border-slate-300 dark:border-slate-600 bg-white dark:bg-slate-800"),
			g.Group(opts),
		),
	)
}

func controlsCard(v dashboardView) g.Node {
	var windows [][2]string
	for _, d := range selection.Windows {
		windows = append(windows, [2]string{strconv.Itoa(d), fmt.Sprintf("%d days", d)})
	}
	styles := [][2]string{
		{string(selection.StyleLine), "Line Chart"},
		{string(selection.StyleArea), "Area Chart"},
		{string(selection.StyleBar), "Bar Chart"},
	}

	refreshLabel := "Refresh"
	if v.Loading {
		refreshLabel = "Updating..."
	}
	autoLabel := "Auto-refresh: Off"
	autoClass := "bg-slate-100 dark:bg-slate-700 text-slate-700 dark:text-slate-200"
	if v.AutoRefresh {
		autoLabel = "Auto-refresh: On"
		autoClass = "bg-vs-primary text-white"
	}

	updated := "Not loaded yet"
	if !v.UpdatedAt.IsZero() {
		updated = "Updated: " + v.UpdatedAt.Local().Format("15:04:05")
	}

	return Section(Class("bg-white/70 dark:bg-slate-800/50 border border-slate-200 dark:border-slate-700/50 rounded-2xl p-4 sm:p-6"),
		Div(Class("flex flex-col lg:flex-row lg:items-end lg:justify-between gap-4"),
			regionMenu(v),
			Form(ID("chart-controls"), Method("get"), Action("/"), Class("flex flex-col sm:flex-row gap-4"),
				Input(Type("hidden"), Name("region"), Value(string(v.Selection.Entity))),
				selectField("Time Range", "days", strconv.Itoa(v.Selection.Window), windows),
				selectField("Chart Type", "type", string(v.Selection.Style), styles),
				NoScript(Button(Type("submit"), Class("px-3 py-2 rounded-lg border"), g.Text("Apply"))),
			),
			Div(Class("flex items-end gap-3"),
				Form(Method("post"), Action("/refresh"),
					Input(Type("hidden"), Name("return"), Value(v.Return)),
					Button(ID("refresh-button"), Type("submit"), g.If(v.Loading, Disabled()),
						Class("px-4 py-2.5 rounded-lg bg-vs-primary text-white font-semibold hover:bg-blue-600 disabled:opacity-50"),
						g.Text(refreshLabel),
					),
				),
				Form(Method("post"), Action("/autorefresh"),
					Input(Type("hidden"), Name("return"), Value(v.Return)),
					Button(ID("autorefresh-button"), Type("submit"), Class("px-4 py-2.5 rounded-lg font-semibold "+autoClass), g.Text(autoLabel)),
				),
			),
		),
		P(ID("updated-at"), Class("mt-3 text-xs text-slate-500"), g.Text(updated)),
	)
}

// summaryCards renders the four headline counts. When prev is set each card
// also carries the value it replaced and the change since that refresh.
func summaryCards(snap covid.StatSnapshot, prev *covid.StatSnapshot, loading bool) g.Node {
	card := func(id, label string, value int64, before func(covid.StatSnapshot) int64, color string) g.Node {
		valueNodes := []g.Node{
			Class("stat-value text-2xl sm:text-3xl font-bold text-slate-800 dark:text-slate-100 tabular-nums transition-colors duration-700"),
		}
		var deltaNodes []g.Node
		if prev != nil {
			old := before(*prev)
			valueNodes = append(valueNodes, g.Attr("data-previous", covid.Comma(old)))
			deltaNodes = append(deltaNodes, P(Class("stat-delta text-xs text-slate-400 mt-1"), g.Text(deltaText(value-old))))
		}
		valueNodes = append(valueNodes, g.Text(covid.Comma(value)))

		return Div(ID(id), Class("stat-card bg-white/70 dark:bg-slate-800/50 border border-slate-200 dark:border-slate-700/50 rounded-xl p-4"),
			Div(Class("flex items-center justify-between mb-2"),
				Span(Class("inline-block w-3 h-3 rounded-full "+color)),
				g.If(loading, Span(Class("text-xs text-slate-400"), g.Text("updating"))),
			),
			P(valueNodes...),
			P(Class("stat-label text-sm text-slate-500"), g.Text(label)),
			g.Group(deltaNodes),
		)
	}
	return Div(ID("summary"), Class("grid grid-cols-2 lg:grid-cols-4 gap-4 sm:gap-6"),
		card("card-cases", "Total Cases", snap.TotalCases, func(p covid.StatSnapshot) int64 { return p.TotalCases }, "bg-vs-primary"),
		card("card-deaths", "Deaths", snap.TotalDeaths, func(p covid.StatSnapshot) int64 { return p.TotalDeaths }, "bg-vs-danger"),
		card("card-recovered", "Recovered", snap.TotalRecovered, func(p covid.StatSnapshot) int64 { return p.TotalRecovered }, "bg-vs-success"),
		card("card-active", "Active", snap.ActiveCases, func(p covid.StatSnapshot) int64 { return p.ActiveCases }, "bg-vs-warning"),
	)
}

func deltaText(d int64) string {
	switch {
	case d > 0:
		return "+" + covid.Comma(d) + " since last update"
	case d < 0:
		return covid.Comma(d) + " since last update"
	}
	return "No change since last update"
}

func trendSection(v dashboardView) g.Node {
	subtitle := "Global COVID-19 statistics over time"
	if v.Country != nil {
		subtitle = "COVID-19 statistics for " + v.Country.Name
	}

	chartQuery := v.Selection.Query()
	chartQuery.Set("seed", strconv.FormatInt(v.Seed, 10))

	var rows []g.Node
	for i := len(v.Points) - 1; i >= 0 && len(rows) < latestDaysShown; i-- {
		p := v.Points[i]
		rows = append(rows, Tr(Class("border-b border-slate-100 dark:border-slate-800"),
			Td(Class("px-3 py-2"), g.Text(covid.TooltipDate(p.Date))),
			Td(Class("px-3 py-2 text-right tabular-nums text-blue-500"), g.Text(covid.Comma(p.Cases))),
			Td(Class("px-3 py-2 text-right tabular-nums text-red-500"), g.Text(covid.Comma(p.Deaths))),
			Td(Class("px-3 py-2 text-right tabular-nums text-emerald-500"), g.Text(covid.Comma(p.Recovered))),
		))
	}

	return Section(ID("trend"), Class("bg-white/70 dark:bg-slate-800/50 border border-slate-200 dark:border-slate-700/50 rounded-2xl p-4 sm:p-6"),
		Div(Class("flex flex-col sm:flex-row sm:items-center sm:justify-between mb-6 gap-2"),
			Div(
				H3(Class("text-lg sm:text-xl font-semibold text-slate-800 dark:text-slate-100"), g.Text("Trend Analysis")),
				P(Class("text-sm text-slate-500"), g.Text(subtitle)),
			),
			Span(Class("text-sm text-slate-500"), g.Text(fmt.Sprintf("Last %d days", v.Selection.Window))),
		),
		Img(ID("trend-chart"), Src("/chart.png?"+chartQuery.Encode()), Alt(subtitle), Class("w-full h-auto rounded-lg")),
		g.If(len(rows) > 0,
			Div(Class("mt-6 overflow-x-auto"),
				Table(ID("latest-days"), Class("w-full text-sm"),
					THead(Tr(Class("text-xs uppercase tracking-wider text-slate-500"),
						Th(Class("px-3 py-2 text-left"), g.Text("Date")),
						Th(Class("px-3 py-2 text-right"), g.Text("Cases")),
						Th(Class("px-3 py-2 text-right"), g.Text("Deaths")),
						Th(Class("px-3 py-2 text-right"), g.Text("Recovered")),
					)),
					TBody(rows...),
				),
			),
		),
	)
}

func countryDetails(c covid.CountryRecord) g.Node {
	rates := covid.ComputeRates(covid.CountsFromCountry(c)).Strings()
	item := func(label, value, color string) g.Node {
		return Div(
			P(Class("text-sm text-slate-500"), g.Text(label)),
			P(Class("text-lg font-semibold "+color), g.Text(value)),
		)
	}
	population := covid.NotAvailable
	if c.Population > 0 {
		population = covid.Comma(c.Population)
	}
	return Section(ID("country-details"), Class("bg-white/70 dark:bg-slate-800/50 border border-slate-200 dark:border-slate-700/50 rounded-2xl p-4 sm:p-6"),
		Div(Class("flex items-center justify-between mb-4"),
			H3(Class("text-lg font-semibold text-slate-800 dark:text-slate-100"), g.Text("Country Details")),
			A(Href("/country/"+c.Code), Class("text-sm text-vs-primary hover:underline"), g.Text("Full profile")),
		),
		Div(Class("grid grid-cols-2 sm:grid-cols-4 gap-4"),
			item("Population", population, "text-slate-800 dark:text-slate-100"),
			item("Cases per 100K", rates.CasesPer100k, "text-slate-800 dark:text-slate-100"),
			item("Mortality Rate", rates.MortalityRate, "text-red-500"),
			item("Recovery Rate", rates.RecoveryRate, "text-emerald-500"),
		),
	)
}
