package core

import (
	"net/http"
	"net/url"

	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/viralscope/viralscope/pkg/covid"
	"github.com/viralscope/viralscope/pkg/selection"
)

// countryHandler handles requests for /country/{code}
func (s *site) countryHandler(w http.ResponseWriter, r *http.Request) {
	data, loaded := s.refresher.Current()
	catalog := data.Countries
	if !loaded {
		catalog = covid.MockCountries()
	}

	c, ok := covid.FindCountry(catalog, r.PathValue("code"))
	if !ok {
		s.notFoundHandler(w, r)
		return
	}

	s.render(w, r, http.StatusOK,
		c.Name+" COVID-19 statistics - "+siteName,
		"COVID-19 cases, deaths, recoveries and derived rates for "+c.Name+".",
		"",
		CountryContent(c, loaded),
		false,
	)
}

func CountryContent(c covid.CountryRecord, loaded bool) g.Node {
	snap := c.Snapshot()
	rates := covid.ComputeRates(covid.CountsFromCountry(c)).Strings()

	sel := selection.Default().With(covid.Entity(c.Code))
	sel.Window = 90
	chartQuery := sel.Query()
	chartQuery.Set("type", string(selection.StyleArea))

	dashboard := url.Values{"region": {c.Code}}

	return Main(Class("container mx-auto mt-10 mb-20 px-4 max-w-5xl"),
		Div(Class("mb-8"),
			A(Href("/countries"), Class("text-sm text-slate-500 hover:text-vs-primary"), g.Text("← All countries")),
			H1(Class("text-2xl md:text-3xl font-bold text-slate-800 dark:text-white mt-2"), g.Text(c.Name)),
			P(Class("text-slate-500"), g.Text("Country code "+c.Code)),
			g.If(!loaded, P(Class("mt-2 text-sm text-orange-500"), g.Text("Showing reference figures until the first refresh completes."))),
		),
		Div(Class("grid grid-cols-2 md:grid-cols-4 gap-4 mb-6"),
			statsCard("Total Cases", covid.Comma(snap.TotalCases), "text-vs-primary"),
			statsCard("Deaths", covid.Comma(snap.TotalDeaths), "text-vs-danger"),
			statsCard("Recovered", covid.Comma(snap.TotalRecovered), "text-vs-success"),
			statsCard("Active", covid.Comma(snap.ActiveCases), "text-vs-warning"),
		),
		Div(Class("grid grid-cols-2 md:grid-cols-4 gap-4 mb-8"),
			statsCard("Population", covid.Comma(c.Population), "text-slate-700 dark:text-slate-200"),
			statsCard("Cases per 100K", rates.CasesPer100k, "text-slate-700 dark:text-slate-200"),
			statsCard("Mortality Rate", rates.MortalityRate, "text-red-500"),
			statsCard("Recovery Rate", rates.RecoveryRate, "text-emerald-500"),
		),
		Section(Class("bg-white/70 dark:bg-slate-800/50 border border-slate-200 dark:border-slate-700/50 rounded-2xl p-4 sm:p-6"),
			H2(Class("text-lg font-semibold text-slate-800 dark:text-slate-100 mb-4"), g.Text("Last 90 days")),
			Img(Src("/chart.png?"+chartQuery.Encode()), Alt("90 day trend for "+c.Name), Class("w-full h-auto rounded-lg")),
			A(Href("/?"+dashboard.Encode()), Class("inline-block mt-4 text-sm text-vs-primary hover:underline"), g.Text("Open in dashboard")),
		),
	)
}
