package core

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html" // Using . import for convenience with html tags

	"github.com/viralscope/viralscope/internal/server"
	"github.com/viralscope/viralscope/internal/utils"
	"github.com/viralscope/viralscope/pkg/notify"
	"github.com/viralscope/viralscope/pkg/refresh"
	"github.com/viralscope/viralscope/pkg/storage"
)

const siteName = "ViralScope"

// ServerConfig holds configuration for the web server.
type ServerConfig struct {
	DevMode    bool
	DBPath     string
	ListenAddr string

	// RefreshInterval is in minutes. Zero leaves auto-refresh off until it
	// is switched on from the dashboard.
	RefreshInterval int
	FetchDelay      time.Duration // negative = mock default
	FailRate        float64
	Jitter          float64

	APIUsername string
	APIPassword string
}

// site carries the state shared by the HTML handlers.
type site struct {
	// ctx outlives requests; the periodic refresh runs under it.
	ctx       context.Context
	refresher *refresh.Refresher
	db        *storage.DB
	feed      *notify.Feed
	log       logrus.FieldLogger
	started   time.Time
	now       func() time.Time
}

// toastWindow is how long a notification stays on the dashboard after it
// was emitted.
const toastWindow = 10 * time.Second

// theme reads the stored theme, falling back to light.
func (s *site) theme(ctx context.Context) storage.Theme {
	if s.db == nil {
		return storage.ThemeLight
	}
	t, err := s.db.GetTheme(ctx)
	if err != nil {
		s.log.Warnf("Could not read theme: %v", err)
	}
	return t
}

// Page layout component
func PageLayout(title, description string, theme storage.Theme, navbar g.Node, content g.Node, footer g.Node, shouldNoIndex bool) g.Node {
	dark := theme == storage.ThemeDark
	bodyClass := "bg-slate-50 text-slate-700"
	if dark {
		bodyClass = "bg-slate-950 text-slate-300"
	}
	return g.Group([]g.Node{
		g.Raw("<!DOCTYPE html>"),
		HTML(Lang("en"), g.If(dark, Class("dark")),
			Head(
				Meta(Charset("UTF-8")),
				Meta(Name("viewport"), Content("width=device-width, initial-scale=1.0")),
				Meta(Name("description"), Content(description)),
				TitleEl(g.Text(title)),
				Link(Rel("preconnect"), Href("https://fonts.googleapis.com")),
				Link(Rel("stylesheet"), Href("https://fonts.googleapis.com/css2?family=Inter:wght@400;500;600;700;800&display=swap")),
				Script(Src("https://cdn.tailwindcss.com")),
				Script(Src("https://unpkg.com/htmx.org@2.0.4")),
				Script(g.Raw(`tailwind.config={darkMode:'class',theme:{extend:{fontFamily:{sans:['Inter','ui-sans-serif','system-ui','sans-serif']},colors:{'vs-primary':'#3b82f6','vs-danger':'#ef4444','vs-success':'#10b981','vs-warning':'#f59e0b'}}}}`)),
				g.If(shouldNoIndex,
					Meta(Name("robots"), Content("noindex, follow")),
				),
				StyleEl(g.Raw(`
					* { scroll-behavior: smooth; }
					.toast { animation: toast-out 0.4s ease 5s forwards; }
					@keyframes toast-out { to { opacity: 0; transform: translateY(-8px); visibility: hidden; } }
					.table-fixed { table-layout: fixed; }
				`)),
			),
			Body(Class(bodyClass+" font-sans antialiased leading-normal tracking-tight flex flex-col min-h-screen"),
				navbar,
				Div(Class("flex-grow"), content),
				footer,
				Script(g.Raw(`
					// Close the region menu when clicking outside of it
					const regionMenu = document.getElementById('region-menu');
					if (regionMenu) {
						document.addEventListener('mousedown', (event) => {
							if (!regionMenu.contains(event.target)) {
								const closeLink = document.getElementById('region-menu-close');
								if (closeLink) { window.location.href = closeLink.href; }
							}
						});
					}
					// Submit selector forms on change
					document.querySelectorAll('select[data-autosubmit]').forEach((el) => {
						el.addEventListener('change', () => el.form.submit());
					});
				`)),
			),
		),
	})
}

// Navbar component
func Navbar(currentPath string, theme storage.Theme, returnTo string) g.Node {
	navLink := func(href, label string) g.Node {
		isActive := currentPath == href
		base := "block text-center md:inline-block transition-all duration-200 px-3 py-2 rounded-md text-sm font-medium "
		if isActive {
			base += "text-vs-primary bg-blue-500/10"
		} else {
			base += "text-slate-500 hover:text-slate-900 dark:text-slate-400 dark:hover:text-white hover:bg-slate-200/50 dark:hover:bg-slate-800/50"
		}
		return A(Href(href), Class(base), g.Text(label))
	}

	themeLabel := "Dark mode"
	if theme == storage.ThemeDark {
		themeLabel = "Light mode"
	}

	return Nav(Class("bg-white/80 dark:bg-slate-900/80 backdrop-blur-xl p-4 shadow-sm sticky top-0 z-40 border-b border-slate-200 dark:border-slate-700/50"),
		Div(Class("container mx-auto flex flex-wrap justify-between items-center gap-3"),
			A(Href("/"), Class("flex flex-col"),
				Span(Class("text-xl font-bold tracking-tight bg-gradient-to-r from-blue-500 to-red-500 bg-clip-text text-transparent"), g.Text(siteName)),
				Span(Class("text-xs text-slate-500 hidden sm:block"), g.Text("COVID-19 Global Tracker")),
			),
			Div(Class("flex flex-wrap items-center gap-1"),
				navLink("/", "Dashboard"),
				navLink("/countries", "Countries"),
				navLink("/api", "API"),
				navLink("/about", "About"),
				Form(Method("post"), Action("/theme"), Class("inline"),
					Input(Type("hidden"), Name("return"), Value(returnTo)),
					Button(Type("submit"), ID("theme-toggle"),
						Class("ml-2 px-3 py-2 rounded-md text-sm font-medium bg-slate-100 dark:bg-slate-700 text-slate-700 dark:text-slate-200 hover:bg-slate-200 dark:hover:bg-slate-600"),
						g.Text(themeLabel),
					),
				),
			),
		),
	)
}

// FooterEl component (using El suffix to avoid conflict with html.Footer)
func FooterEl() g.Node {
	currentYear := time.Now().Year()
	return Footer(Class("mt-12 border-t border-slate-200 dark:border-slate-800 bg-white/50 dark:bg-slate-900/50"),
		Div(Class("container mx-auto px-4 py-8 text-center"),
			P(Class("text-sm text-slate-500"), g.Text("Data sourced from reliable health organizations and updated regularly")),
			Div(Class("mt-4 flex justify-center items-center gap-4 text-xs text-slate-400"),
				Span(g.Text("Real-time Tracking")),
				Span(g.Text("Global Coverage")),
				Span(g.Text("Data Visualization")),
			),
			P(Class("mt-4 text-xs text-slate-400"), g.Text(fmt.Sprintf("© %d %s", currentYear, siteName))),
		),
	)
}

func (s *site) render(w http.ResponseWriter, r *http.Request, status int, title, description, path string, content g.Node, noIndex bool) {
	theme := s.theme(r.Context())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	err := PageLayout(
		title,
		description,
		theme,
		Navbar(path, theme, r.URL.RequestURI()),
		content,
		FooterEl(),
		noIndex,
	).Render(w)
	if err != nil {
		s.log.WithField("path", r.URL.Path).Errorf("Render failed: %v", err)
	}
}

func notFoundContent() g.Node {
	return Main(Class("container mx-auto mt-20 mb-20 px-4 text-center"),
		H1(Class("text-5xl font-bold text-slate-800 dark:text-slate-100"), g.Text("404")),
		H2(Class("text-xl font-semibold mt-2 text-slate-700 dark:text-slate-200"), g.Text("Page Not Found")),
		P(Class("mt-2 text-slate-500 max-w-md mx-auto"), g.Text("The page you're looking for doesn't exist or has been moved to a different location.")),
		A(Href("/"), Class("inline-block mt-6 px-5 py-2.5 rounded-lg bg-vs-primary text-white font-semibold hover:bg-blue-600"), g.Text("Back to Dashboard")),
	)
}

func (s *site) notFoundHandler(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusNotFound, "Page Not Found - "+siteName, "Page not found", "", notFoundContent(), true)
}

// HTTP handler for /robots.txt
func robotsTxtHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "User-agent: *")
	fmt.Fprintln(w, "Allow: /")
	fmt.Fprintln(w, "Disallow: /debug")
	fmt.Fprintln(w, "Sitemap: /sitemap.xml")
}

// safeReturn keeps redirects on this site.
func safeReturn(v string) string {
	if v == "" || !strings.HasPrefix(v, "/") || strings.HasPrefix(v, "//") {
		return "/"
	}
	if u, err := url.Parse(v); err != nil || u.Host != "" {
		return "/"
	}
	return v
}

// newMux registers every route of the dashboard and the JSON API.
func (s *site) newMux(api *server.Server) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.homeHandler)
	mux.HandleFunc("GET /countries", s.countriesHandler)
	mux.HandleFunc("GET /country/{code}", s.countryHandler)
	mux.HandleFunc("GET /chart.png", s.chartHandler)
	mux.HandleFunc("POST /refresh", s.refreshHandler)
	mux.HandleFunc("POST /autorefresh", s.autoRefreshHandler)
	mux.HandleFunc("POST /theme", s.themeHandler)
	mux.HandleFunc("GET /debug", s.debugHandler)
	mux.HandleFunc("GET /about", s.aboutHandler)
	mux.HandleFunc("GET /api", s.apiPageHandler)
	mux.HandleFunc("GET /robots.txt", robotsTxtHandler)
	mux.HandleFunc("GET /sitemap.xml", s.sitemapHandler)
	mux.HandleFunc("/", s.notFoundHandler)

	if api != nil {
		api.Register(mux)
	}
	return mux
}

func Run(cfg ServerConfig) error {
	log := utils.Log

	dbPath, err := utils.GetAbsDBPath(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to resolve database path: %w", err)
	}
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	feed := notify.NewFeed(notify.DefaultFeedSize)
	r, err := newRefresher(cfg, feed)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := &site{
		ctx:       ctx,
		refresher: r,
		db:        db,
		feed:      feed,
		log:       log,
		started:   time.Now(),
		now:       time.Now,
	}
	api := server.New(r, db, feed, cfg.APIUsername, cfg.APIPassword)

	go startBackgroundRefresh(ctx, r, cfg)
	defer r.Stop()

	listenAddr := cfg.ListenAddr
	if cfg.DevMode && listenAddr == ":8080" {
		listenAddr = "localhost:7000"
	}
	srv := &http.Server{
		Addr:              listenAddr,
		Handler:           s.newMux(api),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if cfg.DevMode {
		log.Infof("Starting server in development mode on http://%s", listenAddr)
	} else {
		log.Infof("Starting server on %s", listenAddr)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Infof("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
