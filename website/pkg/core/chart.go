package core

import (
	"bytes"
	"math/rand"
	"net/http"
	"strconv"

	"github.com/viralscope/viralscope/pkg/chart"
	"github.com/viralscope/viralscope/pkg/covid"
	"github.com/viralscope/viralscope/pkg/selection"
	"github.com/viralscope/viralscope/pkg/storage"
)

// chartHandler serves the trend chart for the selection in the query. The
// seed query parameter makes the image reproducible; without it every
// request draws a fresh series.
func (s *site) chartHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var catalog []covid.CountryRecord
	if data, ok := s.refresher.Current(); ok {
		catalog = data.Countries
	} else {
		catalog = covid.MockCountries()
	}
	sel := selection.Parse(q, catalog)

	seed, err := strconv.ParseInt(q.Get("seed"), 10, 64)
	if err != nil || seed == 0 {
		seed = rand.Int63()
	}

	points, err := covid.GenerateSeries(rand.New(rand.NewSource(seed)), s.now(), sel.Entity, sel.Window)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	title := "Global"
	if c, ok := covid.FindCountry(catalog, string(sel.Entity)); ok {
		title = c.Name
	}

	width, _ := strconv.Atoi(q.Get("w"))
	height, _ := strconv.Atoi(q.Get("h"))
	if width > 2000 || height > 2000 {
		width, height = 0, 0
	}

	var buf bytes.Buffer
	err = chart.Render(&buf, points, chart.Options{
		Title:  title,
		Style:  sel.Style,
		Window: sel.Window,
		Width:  width,
		Height: height,
		Dark:   s.theme(r.Context()) == storage.ThemeDark,
	})
	if err != nil {
		s.log.WithField("region", sel.Entity).Errorf("Chart render failed: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	if q.Get("seed") != "" {
		w.Header().Set("Cache-Control", "private, max-age=300")
	} else {
		w.Header().Set("Cache-Control", "no-store")
	}
	w.Write(buf.Bytes())
}
