package core

import (
	"net/http"

	"github.com/viralscope/viralscope/internal/utils"
	"github.com/viralscope/viralscope/pkg/storage"
)

func redirectBack(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, safeReturn(r.FormValue("return")), http.StatusSeeOther)
}

// refreshHandler runs a manual refresh. The outcome reaches the user as a
// toast on the page it redirects to.
func (s *site) refreshHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.refresher.Refresh(r.Context(), true); err != nil {
		s.log.WithField("remote", r.RemoteAddr).Debugf("Manual refresh failed: %v", err)
	}
	redirectBack(w, r)
}

func (s *site) autoRefreshHandler(w http.ResponseWriter, r *http.Request) {
	on := !s.refresher.AutoRefresh()
	s.refresher.SetAutoRefresh(s.ctx, on)
	s.log.WithField("enabled", on).Infof("Auto-refresh toggled")
	redirectBack(w, r)
}

func (s *site) themeHandler(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		http.Error(w, "Theme storage unavailable", http.StatusServiceUnavailable)
		return
	}
	var theme storage.Theme
	err := utils.WithDBLock(s.db.Path(), func() error {
		var err error
		theme, err = s.db.ToggleTheme(r.Context())
		return err
	})
	if err != nil {
		s.log.Errorf("Could not toggle theme: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	s.log.WithField("theme", theme).Debugf("Theme toggled")
	redirectBack(w, r)
}
