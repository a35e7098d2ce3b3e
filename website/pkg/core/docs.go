package core

import (
	"net/http"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

const aboutMarkdownContent = `
# About ViralScope

ViralScope provides real-time COVID-19 statistics with interactive filtering and visualization tools.

## Using the dashboard

1.  Pick a region from the **Region** menu. Type in the search box to narrow the list; close matches are suggested when nothing fits exactly.
2.  Choose a time range (7, 30 or 90 days) and a chart type (line, area or bar).
3.  Press **Refresh Data** to fetch the latest figures, or turn on **Auto-refresh** to update them every few minutes.

The [Countries](/countries) page compares every tracked country side by side and can be sorted by any column.

## Metrics

| Metric | Definition |
|---|---|
| Total Cases | Confirmed cases since the start of the pandemic |
| Deaths | Confirmed deaths |
| Recovered | Confirmed recoveries |
| Active | Cases minus deaths minus recovered, never below zero |
| Cases per 100K | Cases divided by population, times 100,000, rounded |
| Mortality Rate | Deaths as a percentage of cases |
| Recovery Rate | Recoveries as a percentage of cases |

Rates are shown as **N/A** when there are no cases to divide by. Cases per 100K is only available for countries, since the global figures carry no population.

## Data source

Figures come from a simulated source that mimics a public health data feed, including its latency and occasional failures. The daily trend is synthetic: it is generated around the current totals to show the shape of the charts and should not be read as reported history.

## API

Everything on the dashboard is also available as JSON. See the [API reference](/api).
`

func renderMarkdown(src string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags})
	return markdown.ToHTML([]byte(src), p, renderer)
}

// AboutContent component for the /about page
func AboutContent() g.Node {
	return Main(Class("container mx-auto mt-8 mb-16 p-4"),
		Section(ID("about"), Class("bg-white dark:bg-slate-800/60 border border-slate-200 dark:border-slate-700/50 rounded-2xl shadow-sm p-6 md:p-8 lg:p-12 prose dark:prose-invert max-w-4xl mx-auto"),
			g.Raw(string(renderMarkdown(aboutMarkdownContent))),
		),
	)
}

func (s *site) aboutHandler(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "About - "+siteName, "How ViralScope works and what its numbers mean", "/about", AboutContent(), false)
}
