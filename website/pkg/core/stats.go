package core

import (
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/viralscope/viralscope/pkg/covid"
)

// countryRow is one line of the comparison table.
type countryRow struct {
	covid.CountryRecord
	Rates covid.Rates
}

var countrySortColumns = []struct{ Key, Label string }{
	{"name", "Country"},
	{"cases", "Cases"},
	{"deaths", "Deaths"},
	{"per100k", "Per 100K"},
	{"mortality", "Mortality"},
	{"recovery", "Recovery"},
}

func validSortColumn(key string) bool {
	for _, c := range countrySortColumns {
		if c.Key == key {
			return true
		}
	}
	return false
}

func metricLess(a, b covid.Metric) bool {
	if a.OK != b.OK {
		return !a.OK
	}
	return a.Value < b.Value
}

// sortCountryRows orders rows in place. Ties keep catalog order.
func sortCountryRows(rows []countryRow, sortBy, sortOrder string) {
	less := func(i, j int) bool {
		a, b := rows[i], rows[j]
		switch sortBy {
		case "cases":
			return a.Cases < b.Cases
		case "deaths":
			return a.Deaths < b.Deaths
		case "per100k":
			return metricLess(a.Rates.CasesPer100k, b.Rates.CasesPer100k)
		case "mortality":
			return metricLess(a.Rates.MortalityRate, b.Rates.MortalityRate)
		case "recovery":
			return metricLess(a.Rates.RecoveryRate, b.Rates.RecoveryRate)
		default:
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}
	}
	if sortOrder == "desc" {
		sort.SliceStable(rows, func(i, j int) bool { return less(j, i) })
		return
	}
	sort.SliceStable(rows, less)
}

// statsCard renders a summary stat card.
func statsCard(label, value, valueColor string) g.Node {
	return Div(Class("bg-white/70 dark:bg-slate-800/30 border border-slate-200 dark:border-slate-700/50 rounded-xl p-4 text-center"),
		Div(Class("text-2xl font-extrabold tabular-nums "+valueColor), g.Text(value)),
		Div(Class("text-xs uppercase tracking-wider text-slate-500 mt-1 font-medium"), g.Text(label)),
	)
}

func countriesURL(search, sortBy, sortOrder string) string {
	q := url.Values{}
	if search != "" {
		q.Set("search", search)
	}
	q.Set("sortBy", sortBy)
	q.Set("sortOrder", sortOrder)
	return "/countries?" + q.Encode()
}

// CountriesTableFragment is the part of /countries swapped by htmx.
func CountriesTableFragment(rows []countryRow, suggestion *covid.CountryRecord, search, sortBy, sortOrder string) g.Node {
	if len(rows) == 0 {
		msg := []g.Node{g.Text("No countries match your search.")}
		if suggestion != nil {
			msg = append(msg, g.Text(" Did you mean "),
				A(ID("countries-suggestion"), Href(countriesURL(suggestion.Name, sortBy, sortOrder)), Class("text-vs-primary underline"), g.Text(suggestion.Name)),
				g.Text("?"))
		}
		return Div(ID("countries-table-container"), P(Class("py-8 text-center text-slate-500"), g.Group(msg)))
	}

	var headers []g.Node
	for _, c := range countrySortColumns {
		order := "asc"
		arrow := ""
		if c.Key == sortBy {
			if sortOrder == "asc" {
				order, arrow = "desc", " ▲"
			} else {
				arrow = " ▼"
			}
		}
		href := countriesURL(search, c.Key, order)
		align := "text-right"
		if c.Key == "name" {
			align = "text-left"
		}
		headers = append(headers, Th(Class("px-4 py-3 text-xs font-semibold text-slate-500 uppercase tracking-wider "+align),
			A(Href(href), g.Attr("hx-get", href), g.Attr("hx-target", "#countries-table-container"), g.Attr("hx-push-url", "true"),
				Class("hover:text-vs-primary"), g.Text(c.Label+arrow)),
		))
	}

	var body []g.Node
	for _, row := range rows {
		rs := row.Rates.Strings()
		body = append(body, Tr(Class("country-row border-b border-slate-100 dark:border-slate-800/50"), g.Attr("data-code", row.Code),
			Td(Class("px-4 py-3 font-medium"), A(Href("/country/"+row.Code), Class("hover:text-vs-primary"), g.Text(row.Name))),
			Td(Class("px-4 py-3 text-right tabular-nums"), g.Text(covid.Comma(row.Cases))),
			Td(Class("px-4 py-3 text-right tabular-nums"), g.Text(covid.Comma(row.Deaths))),
			Td(Class("px-4 py-3 text-right tabular-nums"), g.Text(rs.CasesPer100k)),
			Td(Class("px-4 py-3 text-right tabular-nums text-red-500"), g.Text(rs.MortalityRate)),
			Td(Class("px-4 py-3 text-right tabular-nums text-emerald-500"), g.Text(rs.RecoveryRate)),
		))
	}

	return Div(ID("countries-table-container"), Class("overflow-x-auto"),
		Table(ID("countries-table"), Class("w-full"),
			THead(Tr(Class("border-b border-slate-200 dark:border-slate-700/50"), g.Group(headers))),
			TBody(body...),
		),
	)
}

// CountriesContent component for the /countries page
func CountriesContent(rows []countryRow, suggestion *covid.CountryRecord, loaded bool, search, sortBy, sortOrder string) g.Node {
	content := []g.Node{
		H1(Class("text-2xl md:text-3xl font-bold text-slate-800 dark:text-white mb-6"), g.Text("Country Comparison")),
	}

	if !loaded {
		content = append(content,
			Div(Class("bg-orange-50 dark:bg-orange-900/20 border border-orange-200 dark:border-orange-800/50 text-orange-600 dark:text-orange-400 px-4 py-3 rounded-lg mb-6"),
				Strong(g.Text("Data not loaded yet. ")),
				g.Text("The figures appear after the first refresh."),
			),
		)
	}

	if loaded && len(rows) > 0 {
		worst, highest := rows[0], rows[0]
		for _, r := range rows[1:] {
			if metricLess(worst.Rates.MortalityRate, r.Rates.MortalityRate) {
				worst = r
			}
			if metricLess(highest.Rates.CasesPer100k, r.Rates.CasesPer100k) {
				highest = r
			}
		}
		content = append(content,
			Div(Class("grid grid-cols-2 md:grid-cols-3 gap-4 mb-8"),
				statsCard("Countries shown", fmt.Sprintf("%d", len(rows)), "text-vs-primary"),
				statsCard("Highest mortality: "+worst.Name, worst.Rates.MortalityRate.Percent(), "text-red-500"),
				statsCard("Most cases per 100K: "+highest.Name, highest.Rates.CasesPer100k.Count(), "text-amber-500"),
			),
		)
	}

	content = append(content,
		Form(Method("GET"), Action("/countries"), Class("flex gap-2 mb-6"),
			g.Attr("hx-get", "/countries"),
			g.Attr("hx-target", "#countries-table-container"),
			g.Attr("hx-push-url", "true"),
			g.Attr("hx-trigger", "submit, keyup changed delay:300ms from:#countries-search"),
			Input(ID("countries-search"), Type("text"), Name("search"), Value(search), Placeholder("Search countries..."),
				Class("flex-1 px-4 py-2.5 border border-slate-300 dark:border-slate-700 rounded-lg bg-white dark:bg-slate-800/50"),
			),
			Input(Type("hidden"), Name("sortBy"), Value(sortBy)),
			Input(Type("hidden"), Name("sortOrder"), Value(sortOrder)),
			Button(Type("submit"), Class("px-6 py-2.5 bg-vs-primary text-white font-medium rounded-lg hover:bg-blue-600"), g.Text("Search")),
		),
		CountriesTableFragment(rows, suggestion, search, sortBy, sortOrder),
	)

	return Main(Class("container mx-auto mt-10 mb-20 px-4"),
		Section(Class("bg-white/70 dark:bg-slate-900/30 border border-slate-200 dark:border-slate-800/50 rounded-2xl p-6 md:p-8"),
			g.Group(content),
		),
	)
}

// countriesHandler handles requests for the /countries page.
func (s *site) countriesHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	search := strings.TrimSpace(q.Get("search"))
	sortBy := strings.ToLower(strings.TrimSpace(q.Get("sortBy")))
	sortOrder := strings.ToLower(strings.TrimSpace(q.Get("sortOrder")))
	if !validSortColumn(sortBy) {
		sortBy = "cases"
		if sortOrder == "" {
			sortOrder = "desc"
		}
	}
	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "asc"
	}

	data, loaded := s.refresher.Current()
	matches := covid.FilterCountries(data.Countries, search)
	rows := make([]countryRow, 0, len(matches))
	for _, c := range matches {
		rows = append(rows, countryRow{CountryRecord: c, Rates: covid.ComputeRates(covid.CountsFromCountry(c))})
	}
	sortCountryRows(rows, sortBy, sortOrder)

	var suggestion *covid.CountryRecord
	if len(rows) == 0 && search != "" {
		if c, ok := covid.SuggestCountry(data.Countries, search); ok {
			suggestion = &c
		}
	}

	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		CountriesTableFragment(rows, suggestion, search, sortBy, sortOrder).Render(w)
		return
	}

	s.render(w, r, http.StatusOK,
		"Country comparison - "+siteName,
		"Compare COVID-19 cases, deaths, incidence per 100,000 people, mortality and recovery rates by country.",
		"/countries",
		CountriesContent(rows, suggestion, loaded, search, sortBy, sortOrder),
		false,
	)
}
