package core

import (
	"net/http"

	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/viralscope/viralscope/pkg/covid"
)

const (
	apiSectionClass = "bg-white dark:bg-slate-800/60 border border-slate-200 dark:border-slate-700/50 rounded-2xl shadow-sm p-6 md:p-8 mb-6"
	apiSelectClass  = "w-full px-3 py-2 bg-slate-50 dark:bg-slate-900 border border-slate-300 dark:border-slate-700 rounded-lg text-sm focus:ring-2 focus:ring-blue-500"
)

func (s *site) apiPageHandler(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "API - "+siteName, "JSON API reference for ViralScope COVID-19 statistics.", "/api", APIPageContent(), false)
}

func APIPageContent() g.Node {
	regionOptions := []g.Node{Option(Value(string(covid.Global)), g.Text("Global"))}
	for _, c := range covid.MockCountries() {
		regionOptions = append(regionOptions, Option(Value(c.Code), g.Text(c.Name)))
	}

	return Main(Class("container mx-auto mt-10 mb-20 px-4 max-w-4xl"),
		Div(Class("mb-10"),
			H1(Class("text-2xl md:text-3xl font-bold text-slate-900 dark:text-white mb-3"), g.Text("API")),
			P(Class("text-slate-500 text-lg"), g.Text("Read the same numbers the dashboard shows as JSON. When the server runs with a username and password, every endpoint expects HTTP basic auth.")),
		),

		Section(Class(apiSectionClass),
			H2(Class("text-lg font-semibold mb-2"), g.Text("Try It")),
			P(Class("text-slate-500 mb-5 text-sm"), g.Text("Build a request and preview the response.")),
			Div(Class("grid grid-cols-1 sm:grid-cols-3 gap-4 mb-4"),
				Div(
					Label(Class("block text-sm font-medium text-slate-500 mb-1.5"), g.Text("Endpoint")),
					Select(ID("api-try-endpoint"), Class(apiSelectClass),
						Option(Value("stats"), g.Text("Stats")),
						Option(Value("series"), g.Text("Series")),
						Option(Value("countries"), g.Text("Countries")),
						Option(Value("status"), g.Text("Status")),
					),
				),
				Div(
					Label(Class("block text-sm font-medium text-slate-500 mb-1.5"), g.Text("Region")),
					Select(ID("api-try-region"), Class(apiSelectClass), g.Group(regionOptions)),
				),
				Div(
					Label(Class("block text-sm font-medium text-slate-500 mb-1.5"), g.Text("Days")),
					Select(ID("api-try-days"), Class(apiSelectClass),
						Option(Value("7"), g.Text("7")),
						Option(Value("30"), Selected(), g.Text("30")),
						Option(Value("90"), g.Text("90")),
					),
				),
			),
			Div(Class("bg-slate-100 dark:bg-slate-950 rounded-lg p-3 font-mono text-sm text-blue-600 dark:text-blue-400 mb-4 overflow-x-auto"),
				Span(ID("api-try-url"), g.Text("/api/v1/stats")),
			),
			Div(Class("flex flex-wrap gap-3"),
				Button(ID("api-try-preview"), Type("button"),
					Class("px-5 py-2.5 bg-vs-primary text-white font-medium rounded-lg hover:bg-blue-600 text-sm"),
					g.Text("Preview"),
				),
				Button(ID("api-try-copy"), Type("button"),
					Class("px-5 py-2.5 bg-slate-200 dark:bg-slate-700 font-medium rounded-lg hover:bg-slate-300 dark:hover:bg-slate-600 text-sm"),
					g.Text("Copy curl command"),
				),
			),
			Pre(ID("api-try-output"),
				Class("hidden mt-4 bg-slate-100 dark:bg-slate-950 rounded-lg p-4 font-mono text-xs overflow-x-auto max-h-96 overflow-y-auto"),
			),
		),

		Section(Class(apiSectionClass),
			H2(Class("text-lg font-semibold mb-4"), g.Text("Usage Examples")),
			Div(Class("bg-slate-100 dark:bg-slate-950 rounded-lg p-4 font-mono text-sm text-blue-600 dark:text-blue-400 overflow-x-auto"),
				g.Raw(`<span class="text-slate-500"># Global totals and rates</span><br>curl -s http://localhost:8080/api/v1/stats<br><br><span class="text-slate-500"># One country</span><br>curl -s "http://localhost:8080/api/v1/stats?region=DE"<br><br><span class="text-slate-500"># A reproducible 30-day trend</span><br>curl -s "http://localhost:8080/api/v1/series?region=US&amp;days=30&amp;seed=42"<br><br><span class="text-slate-500"># Trigger a refresh</span><br>curl -s -X POST -u user:pass http://localhost:8080/api/v1/refresh<br><br><span class="text-slate-500"># Switch to the dark theme</span><br>curl -s -X PUT -d '{"theme":"dark"}' http://localhost:8080/api/v1/theme`),
			),
		),

		Section(Class(apiSectionClass),
			H2(Class("text-lg font-semibold mb-5"), g.Text("Endpoint Reference")),
			P(Class("text-slate-500 mb-4 text-sm"), g.Text("GET responses carry an ETag; send it back in If-None-Match to get 304 Not Modified. Errors are JSON objects with an error field. Before the first load completes, data endpoints answer 503.")),

			H3(Class("text-sm font-semibold text-slate-600 dark:text-slate-300 uppercase tracking-wider mb-4"), g.Text("Statistics")),
			apiEndpointCard("GET", "/api/v1/stats",
				"Totals, rates and display strings for the world or one country.",
				[]apiParam{
					{"region", "string", "global (default) or a country code such as US"},
				},
			),
			apiEndpointCard("GET", "/api/v1/series",
				"A generated daily series ending today. The same seed returns the same points.",
				[]apiParam{
					{"region", "string", "global (default) or a country code"},
					{"days", "integer", "1 to 365 (default: 30)"},
					{"seed", "integer", "Random seed; omitted or 0 picks one and echoes it back"},
				},
			),

			H3(Class("text-sm font-semibold text-slate-600 dark:text-slate-300 uppercase tracking-wider mb-4 mt-6"), g.Text("Countries")),
			apiEndpointCard("GET", "/api/v1/countries",
				"Tracked countries with active cases and rates. An empty match carries the closest suggestion.",
				[]apiParam{
					{"search", "string", "Case-insensitive match on country name"},
				},
			),
			apiEndpointCard("GET", "/api/v1/countries/{code}",
				"One country. Unknown codes answer 404.",
				nil,
			),

			H3(Class("text-sm font-semibold text-slate-600 dark:text-slate-300 uppercase tracking-wider mb-4 mt-6"), g.Text("Control")),
			apiEndpointCard("POST", "/api/v1/refresh",
				"Fetch fresh data now. A failed fetch answers 502 and keeps the previous data.",
				nil,
			),
			apiEndpointCard("GET", "/api/v1/status",
				"Load state, auto-refresh setting, last attempt and recent notifications.",
				nil,
			),
			apiEndpointCard("GET", "/api/v1/theme",
				"The stored theme, light or dark.",
				nil,
			),
			apiEndpointCard("PUT", "/api/v1/theme",
				"Store a theme. Body: {\"theme\": \"dark\"}.",
				nil,
			),
		),
		Script(g.Raw(apiPageScript)),
	)
}

type apiParam struct {
	name, typ, desc string
}

func apiParamRow(name, typ, desc string) g.Node {
	return Div(Class("flex items-baseline gap-2 text-sm"),
		Code(Class("text-blue-600 dark:text-blue-400 bg-slate-100 dark:bg-slate-900 px-1.5 py-0.5 rounded text-xs font-mono"), g.Text(name)),
		Span(Class("text-slate-400 text-xs"), g.Text(typ)),
		Span(Class("text-slate-500"), g.Text(desc)),
	)
}

func apiEndpointCard(method, path, description string, params []apiParam) g.Node {
	badge := "bg-emerald-100 text-emerald-700 dark:bg-emerald-900/50 dark:text-emerald-400"
	if method != "GET" {
		badge = "bg-amber-100 text-amber-700 dark:bg-amber-900/50 dark:text-amber-400"
	}
	children := []g.Node{
		Div(Class("flex items-center gap-3 mb-2 min-w-0"),
			Span(Class("px-2 py-0.5 rounded text-xs font-semibold font-mono flex-shrink-0 "+badge), g.Text(method)),
			Code(Class("text-sm font-mono break-all"), g.Text(path)),
		),
		P(Class("text-sm text-slate-500 mb-3"), g.Text(description)),
	}
	if len(params) > 0 {
		var rows []g.Node
		for _, p := range params {
			rows = append(rows, apiParamRow(p.name, p.typ, p.desc))
		}
		children = append(children, Div(Class("space-y-1.5"), g.Group(rows)))
	}
	return Div(Class("api-endpoint border-b border-slate-100 dark:border-slate-700/50 pb-5 mb-5 last:border-0 last:pb-0 last:mb-0"),
		g.Group(children),
	)
}

const apiPageScript = `
(function() {
	const endpoint = document.getElementById('api-try-endpoint');
	const region = document.getElementById('api-try-region');
	const days = document.getElementById('api-try-days');
	const urlPreview = document.getElementById('api-try-url');
	const previewBtn = document.getElementById('api-try-preview');
	const copyBtn = document.getElementById('api-try-copy');
	const output = document.getElementById('api-try-output');

	function buildURL() {
		const params = [];
		switch (endpoint.value) {
		case 'stats':
			if (region.value !== 'global') params.push('region=' + region.value);
			break;
		case 'series':
			params.push('region=' + region.value, 'days=' + days.value);
			break;
		}
		let url = '/api/v1/' + endpoint.value;
		if (params.length > 0) url += '?' + params.join('&');
		return url;
	}

	[endpoint, region, days].forEach(function(el) {
		el.addEventListener('change', function() { urlPreview.textContent = buildURL(); });
	});

	previewBtn.addEventListener('click', function() {
		output.classList.remove('hidden');
		output.textContent = 'Loading...';
		fetch(buildURL())
			.then(function(r) { return r.json(); })
			.then(function(body) { output.textContent = JSON.stringify(body, null, 2); })
			.catch(function(err) { output.textContent = 'Error: ' + err.message; });
	});

	copyBtn.addEventListener('click', function() {
		const cmd = 'curl -s "' + window.location.origin + buildURL() + '"';
		navigator.clipboard.writeText(cmd).then(function() {
			const orig = copyBtn.textContent;
			copyBtn.textContent = 'Copied!';
			setTimeout(function() { copyBtn.textContent = orig; }, 1500);
		});
	});
})();
`
