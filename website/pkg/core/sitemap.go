package core

import (
	"fmt"
	"html"
	"net/http"
	"strings"

	"github.com/viralscope/viralscope/pkg/covid"
)

// baseURL derives the public origin from the request.
func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, r.Host)
}

func (s *site) sitemapHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	fmt.Fprint(w, `<?xml version="1.0" encoding="UTF-8"?>`)
	fmt.Fprint(w, `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)

	base := baseURL(r)
	addSitemapURLEntry := func(path string, changefreq string, priority float64) {
		fmt.Fprintf(w, "<url><loc>%s</loc><changefreq>%s</changefreq><priority>%.1f</priority></url>\n", html.EscapeString(base+path), changefreq, priority)
	}

	// Static pages
	addSitemapURLEntry("/", "hourly", 1.0)
	addSitemapURLEntry("/countries", "hourly", 0.9)
	addSitemapURLEntry("/api", "monthly", 0.6)
	addSitemapURLEntry("/about", "monthly", 0.6)

	countries := covid.MockCountries()
	if data, ok := s.refresher.Current(); ok {
		countries = data.Countries
	}
	for _, c := range countries {
		addSitemapURLEntry("/country/"+strings.ToLower(c.Code), "hourly", 0.8)
	}

	fmt.Fprint(w, `</urlset>`)
}
