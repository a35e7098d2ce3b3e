package server

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"github.com/zeebo/xxh3"

	"github.com/viralscope/viralscope/internal/utils"
	"github.com/viralscope/viralscope/pkg/notify"
	"github.com/viralscope/viralscope/pkg/refresh"
	"github.com/viralscope/viralscope/pkg/storage"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Server is the JSON API. DB and Feed may be nil; the endpoints that need
// them answer 503.
type Server struct {
	Refresher *refresh.Refresher
	DB        *storage.DB
	Feed      *notify.Feed
	Username  string
	Password  string
	Log       logrus.FieldLogger

	// Now is the clock used for generated series.
	Now func() time.Time
}

func New(r *refresh.Refresher, db *storage.DB, feed *notify.Feed, user, pass string) *Server {
	return &Server{
		Refresher: r,
		DB:        db,
		Feed:      feed,
		Username:  user,
		Password:  pass,
		Log:       utils.Log,
		Now:       time.Now,
	}
}

// Register adds the API routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("OPTIONS /api/v1/", s.handlePreflight)

	mux.HandleFunc("GET /api/v1/stats", s.basicAuth(s.handleStats))
	mux.HandleFunc("GET /api/v1/countries", s.basicAuth(s.handleCountries))
	mux.HandleFunc("GET /api/v1/countries/{code}", s.basicAuth(s.handleCountry))
	mux.HandleFunc("GET /api/v1/series", s.basicAuth(s.handleSeries))
	mux.HandleFunc("GET /api/v1/status", s.basicAuth(s.handleStatus))
	mux.HandleFunc("POST /api/v1/refresh", s.basicAuth(s.handleRefresh))
	mux.HandleFunc("GET /api/v1/theme", s.basicAuth(s.handleGetTheme))
	mux.HandleFunc("PUT /api/v1/theme", s.basicAuth(s.handlePutTheme))
}

// Handler returns a mux serving only the API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.Register(mux)
	return mux
}

func (s *Server) basicAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.Username == "" && s.Password == "" {
			next(w, r)
			return
		}
		user, pass, ok := r.BasicAuth()
		if !ok ||
			subtle.ConstantTimeCompare([]byte(user), []byte(s.Username)) != 1 ||
			subtle.ConstantTimeCompare([]byte(pass), []byte(s.Password)) != 1 {
			w.Header().Set("WWW-Authenticate", `Basic realm="Restricted"`)
			s.writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r)
	}
}

func (s *Server) handlePreflight(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	w.WriteHeader(http.StatusNoContent)
}

func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, If-None-Match")
}

// ETag returns a strong validator for body.
func ETag(body []byte) string {
	return fmt.Sprintf(`"%016x"`, xxh3.Hash(body))
}

// writeJSON encodes v and writes it. Successful GET responses carry an ETag
// and answer 304 when the client already has the same body.
func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		s.Log.Errorf("API: Error marshaling response: %v", err)
		s.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if r.Method == http.MethodGet && status == http.StatusOK {
		tag := ETag(body)
		w.Header().Set("ETag", tag)
		w.Header().Set("Cache-Control", "no-cache")
		if match := r.Header.Get("If-None-Match"); match != "" && match == tag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}
	w.WriteHeader(status)
	w.Write(body)
}

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeErrorDetail(w, status, msg, "")
}

func (s *Server) writeErrorDetail(w http.ResponseWriter, status int, msg, detail string) {
	body, _ := json.Marshal(errorResponse{Error: msg, Detail: detail})
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(body)
}
