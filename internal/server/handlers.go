package server

import (
	"errors"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/viralscope/viralscope/internal/utils"
	"github.com/viralscope/viralscope/pkg/covid"
	"github.com/viralscope/viralscope/pkg/notify"
	"github.com/viralscope/viralscope/pkg/refresh"
	"github.com/viralscope/viralscope/pkg/selection"
	"github.com/viralscope/viralscope/pkg/storage"
)

// MaxSeriesDays bounds the series endpoint.
const MaxSeriesDays = 365

type statsResponse struct {
	Region    string             `json:"region"`
	Name      string             `json:"name"`
	Stats     covid.StatSnapshot `json:"stats"`
	Rates     covid.Rates        `json:"rates"`
	Display   covid.RateStrings  `json:"display"`
	UpdatedAt time.Time          `json:"updated_at"`
	Loading   bool               `json:"loading"`
}

type countryResponse struct {
	covid.CountryRecord
	Active  int64             `json:"active"`
	Rates   covid.Rates       `json:"rates"`
	Display covid.RateStrings `json:"display"`
}

type countriesResponse struct {
	Count      int                `json:"count"`
	Countries  []countryResponse  `json:"countries"`
	Suggestion *countrySuggestion `json:"suggestion,omitempty"`
}

type countrySuggestion struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type seriesResponse struct {
	Region string             `json:"region"`
	Days   int                `json:"days"`
	Seed   int64              `json:"seed"`
	Points []covid.DailyPoint `json:"points"`
}

type refreshResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	UpdatedAt time.Time `json:"updated_at"`
}

type statusResponse struct {
	Loaded          bool                  `json:"loaded"`
	Loading         bool                  `json:"loading"`
	AutoRefresh     bool                  `json:"auto_refresh"`
	IntervalSeconds int64                 `json:"interval_seconds"`
	UpdatedAt       *time.Time            `json:"updated_at"`
	Last            *refresh.Status       `json:"last"`
	Notifications   []notify.Notification `json:"notifications"`
}

type themeRequest struct {
	Theme string `json:"theme"`
}

type themeResponse struct {
	Theme storage.Theme `json:"theme"`
}

func newCountryResponse(c covid.CountryRecord) countryResponse {
	rates := covid.ComputeRates(covid.CountsFromCountry(c))
	return countryResponse{
		CountryRecord: c,
		Active:        c.Snapshot().ActiveCases,
		Rates:         rates,
		Display:       rates.Strings(),
	}
}

// dataset returns the current dataset or writes 503 when nothing has been
// loaded yet.
func (s *Server) dataset(w http.ResponseWriter) (covid.Dataset, bool) {
	data, ok := s.Refresher.Current()
	if !ok {
		s.writeError(w, http.StatusServiceUnavailable, "data not loaded yet")
	}
	return data, ok
}

func (s *Server) notFoundCountry(w http.ResponseWriter, countries []covid.CountryRecord, code string) {
	detail := ""
	if c, ok := covid.SuggestCountry(countries, code); ok {
		detail = "did you mean " + c.Code + " (" + c.Name + ")?"
	}
	s.writeErrorDetail(w, http.StatusNotFound, "unknown region "+strconv.Quote(code), detail)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	data, ok := s.dataset(w)
	if !ok {
		return
	}

	entity := covid.Entity(strings.TrimSpace(r.URL.Query().Get("region")))
	resp := statsResponse{
		Region:    string(covid.Global),
		Name:      "Global",
		UpdatedAt: data.UpdatedAt,
		Loading:   s.Refresher.Loading(),
	}

	var counts covid.Counts
	if entity.IsGlobal() {
		resp.Stats = data.Global
		counts = covid.CountsFromSnapshot(data.Global)
	} else {
		c, found := covid.FindCountry(data.Countries, string(entity))
		if !found {
			s.notFoundCountry(w, data.Countries, string(entity))
			return
		}
		resp.Region, resp.Name = c.Code, c.Name
		resp.Stats = c.Snapshot()
		counts = covid.CountsFromCountry(c)
	}
	resp.Rates = covid.ComputeRates(counts)
	resp.Display = resp.Rates.Strings()

	s.writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handleCountries(w http.ResponseWriter, r *http.Request) {
	data, ok := s.dataset(w)
	if !ok {
		return
	}

	term := r.URL.Query().Get("search")
	matches := covid.FilterCountries(data.Countries, term)

	resp := countriesResponse{Count: len(matches), Countries: make([]countryResponse, 0, len(matches))}
	for _, c := range matches {
		resp.Countries = append(resp.Countries, newCountryResponse(c))
	}
	if len(matches) == 0 && strings.TrimSpace(term) != "" {
		if c, found := covid.SuggestCountry(data.Countries, term); found {
			resp.Suggestion = &countrySuggestion{Code: c.Code, Name: c.Name}
		}
	}

	s.writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handleCountry(w http.ResponseWriter, r *http.Request) {
	data, ok := s.dataset(w)
	if !ok {
		return
	}

	code := r.PathValue("code")
	c, found := covid.FindCountry(data.Countries, code)
	if !found {
		s.notFoundCountry(w, data.Countries, code)
		return
	}
	s.writeJSON(w, r, http.StatusOK, newCountryResponse(c))
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	days := selection.DefaultWindow
	if v := q.Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > MaxSeriesDays {
			s.writeError(w, http.StatusBadRequest, "days must be between 1 and "+strconv.Itoa(MaxSeriesDays))
			return
		}
		days = n
	}

	var seed int64
	if v := q.Get("seed"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "seed must be an integer")
			return
		}
		seed = n
	}
	if seed == 0 {
		seed = rand.Int63()
	}

	entity := covid.Entity(strings.TrimSpace(q.Get("region")))
	region := covid.Global
	if !entity.IsGlobal() {
		countries := covid.MockCountries()
		if data, ok := s.Refresher.Current(); ok {
			countries = data.Countries
		}
		c, found := covid.FindCountry(countries, string(entity))
		if !found {
			s.notFoundCountry(w, countries, string(entity))
			return
		}
		region = covid.Entity(c.Code)
	}

	gen := covid.NewGenerator(seed)
	if s.Now != nil {
		gen.Now = s.Now
	}
	points, err := gen.Series(region, days)
	if err != nil {
		if errors.Is(err, covid.ErrInvalidArgument) {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.Log.Errorf("API: Error generating series: %v", err)
		s.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.writeJSON(w, r, http.StatusOK, seriesResponse{Region: string(region), Days: days, Seed: seed, Points: points})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.Refresher.Refresh(r.Context(), true); err != nil {
		s.Log.WithField("remote", r.RemoteAddr).Warnf("API: Manual refresh failed: %v", err)
		s.writeErrorDetail(w, http.StatusBadGateway, refresh.FailureMessage, err.Error())
		return
	}
	data, _ := s.Refresher.Current()
	s.writeJSON(w, r, http.StatusOK, refreshResponse{Success: true, Message: refresh.SuccessMessage, UpdatedAt: data.UpdatedAt})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		Loading:         s.Refresher.Loading(),
		AutoRefresh:     s.Refresher.AutoRefresh(),
		IntervalSeconds: int64(s.Refresher.Interval() / time.Second),
		Last:            s.Refresher.Status(),
		Notifications:   []notify.Notification{},
	}
	if data, ok := s.Refresher.Current(); ok {
		resp.Loaded = true
		resp.UpdatedAt = &data.UpdatedAt
	}
	if s.Feed != nil {
		resp.Notifications = s.Feed.Recent()
	}
	s.writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handleGetTheme(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		s.writeError(w, http.StatusServiceUnavailable, "no preference store")
		return
	}
	theme, err := s.DB.GetTheme(r.Context())
	if err != nil {
		s.Log.Errorf("API: Error reading theme: %v", err)
		s.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	s.writeJSON(w, r, http.StatusOK, themeResponse{Theme: theme})
}

func (s *Server) handlePutTheme(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		s.writeError(w, http.StatusServiceUnavailable, "no preference store")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<10))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req themeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	theme, err := storage.ParseTheme(req.Theme)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	err = utils.WithDBLock(s.DB.Path(), func() error {
		return s.DB.SetTheme(r.Context(), theme)
	})
	if err != nil {
		s.Log.Errorf("API: Error saving theme: %v", err)
		s.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	s.Log.WithField("theme", theme).Debugf("API: Theme updated")
	s.writeJSON(w, r, http.StatusOK, themeResponse{Theme: theme})
}
