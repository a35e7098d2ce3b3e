package core

import (
	"fmt"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/viralscope/viralscope/pkg/refresh"
)

const debugSectionClass = "bg-white dark:bg-slate-800/60 border border-slate-200 dark:border-slate-700/50 rounded-2xl shadow-sm p-6 md:p-8 mb-6"

func statusBadge(st refresh.Status) g.Node {
	if st.Success {
		return Span(Class("inline-flex items-center px-2.5 py-0.5 rounded-full text-xs font-medium bg-emerald-100 text-emerald-700 dark:bg-emerald-900/50 dark:text-emerald-400"), g.Text("Success"))
	}
	return Span(Class("inline-flex items-center px-2.5 py-0.5 rounded-full text-xs font-medium bg-red-100 text-red-700 dark:bg-red-900/50 dark:text-red-400"), g.Text("Error"))
}

func debugRow(label string, value g.Node) g.Node {
	return Div(Class("flex justify-between py-2 border-b border-slate-100 dark:border-slate-700/50 last:border-0 text-sm"),
		Span(Class("text-slate-500"), g.Text(label)),
		Span(Class("font-medium text-slate-800 dark:text-slate-100 tabular-nums"), value),
	)
}

func (s *site) debugContent() g.Node {
	now := s.now()
	r := s.refresher

	updated := "never"
	data, loaded := r.Current()
	if loaded {
		updated = fmt.Sprintf("%s (%s)", data.UpdatedAt.UTC().Format(time.RFC3339), humanize.RelTime(data.UpdatedAt, now, "ago", "from now"))
	}
	auto := "Off"
	if r.AutoRefresh() {
		auto = "On"
	}

	var rows []g.Node
	for _, st := range GetRefreshHistory() {
		trigger := "auto"
		if st.Manual {
			trigger = "manual"
		}
		detail := st.Err
		if detail == "" {
			detail = "-"
		}
		rows = append(rows, Tr(Class("border-b border-slate-100 dark:border-slate-700/50"),
			Td(Class("px-4 py-3"), statusBadge(st)),
			Td(Class("px-4 py-3 text-sm tabular-nums"), g.Text(st.StartedAt.UTC().Format(time.RFC3339))),
			Td(Class("px-4 py-3 text-sm tabular-nums"), g.Text(st.Duration.Round(time.Millisecond).String())),
			Td(Class("px-4 py-3 text-sm"), g.Text(trigger)),
			Td(Class("px-4 py-3 text-sm text-slate-500"), g.Text(detail)),
		))
	}
	if len(rows) == 0 {
		rows = append(rows, Tr(Td(ColSpan("5"), Class("px-4 py-6 text-center text-slate-500"), g.Text("No refresh attempts yet."))))
	}

	th := func(label string) g.Node {
		return Th(Class("px-4 py-3 text-left text-xs font-semibold text-slate-500 uppercase tracking-wider"), g.Text(label))
	}

	return Main(Class("container mx-auto mt-10 mb-20 px-4 max-w-4xl"),
		H1(Class("text-2xl md:text-3xl font-bold text-slate-900 dark:text-white mb-6"), g.Text("Debug")),

		Section(Class(debugSectionClass),
			H2(Class("text-lg font-semibold text-slate-900 dark:text-white mb-4"), g.Text("Server")),
			Div(ID("debug-server"),
				debugRow("Uptime", g.Text(formatDuration(now.Sub(s.started)))),
				debugRow("Data loaded", g.Text(fmt.Sprintf("%t", loaded))),
				debugRow("Last update", g.Text(updated)),
				debugRow("Refresh in progress", g.Text(fmt.Sprintf("%t", r.Loading()))),
				debugRow("Auto-refresh", g.Text(auto)),
				debugRow("Interval", g.Text(r.Interval().String())),
				debugRow("Buffered notifications", g.Text(fmt.Sprintf("%d", len(s.feed.Recent())))),
			),
		),

		Section(Class(debugSectionClass),
			H2(Class("text-lg font-semibold text-slate-900 dark:text-white mb-4"), g.Text("Refresh History")),
			Div(Class("overflow-x-auto"),
				Table(ID("refresh-history"), Class("w-full"),
					THead(
						Tr(Class("border-b border-slate-200 dark:border-slate-700/50"),
							th("Status"), th("Started (UTC)"), th("Duration"), th("Trigger"), th("Error"),
						),
					),
					TBody(rows...),
				),
			),
		),
	)
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

func (s *site) debugHandler(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "Debug - "+siteName, "Debug information", "/debug", s.debugContent(), true)
}
