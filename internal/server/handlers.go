package server

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"net/http"
	"net/url"
	"time"

	"gainfully/internal/api"
	"gainfully/internal/auth"
	"gainfully/internal/feed"
	"gainfully/internal/rss"
)

// descriptionLimit caps rendered description length for feed cards.
const descriptionLimit = 300

// filterStateFromQuery maps request query parameters onto the engine's
// filter state. Absent kind flags default to on; "0" or "false" turns a
// kind off.
func filterStateFromQuery(values url.Values) feed.FilterState {
	state := feed.DefaultFilterState()
	state.Query = values.Get("q")
	state.Location = values.Get("location")
	state.Company = values.Get("company")
	state.Skill = values.Get("skill")
	state.IncludeJobs = kindFlag(values, "jobs")
	state.IncludeExperiences = kindFlag(values, "experiences")
	return state
}

// kindFlag reads a kind toggle. The form pairs each checkbox with a hidden
// "0" input so an unchecked box still submits; the last value wins.
func kindFlag(values url.Values, key string) bool {
	vs := values[key]
	if len(vs) == 0 {
		return true
	}
	v := vs[len(vs)-1]
	return v != "0" && v != "false"
}

// loadVisible produces the filtered item sequence for a request. Signed-in
// users get a fresh load; visitors get the warm anonymous snapshot.
func (s *Server) loadVisible(ctx context.Context, user *feed.User, state feed.FilterState) ([]feed.FeedItem, *feed.Snapshot, error) {
	var snap *feed.Snapshot
	if user != nil {
		loader := feed.NewLoader(s.backend, s.logger)
		loaded, err := loader.Load(ctx, user)
		if err != nil {
			return nil, nil, err
		}
		snap = loaded
	} else {
		snap = s.feedService.Snapshot()
		if snap == nil {
			status, loadErr := s.feedService.Status()
			if status == feed.StatusError {
				return nil, nil, loadErr
			}
			// Idle or still loading: distinct from both error and empty.
			return nil, nil, nil
		}
	}

	items := feed.Assemble(snap.Jobs, snap.Experiences, state)
	visible := feed.Apply(items, state, snap.Employers, snap.ConnectedUsers)
	if limit, err := s.db.GetSettingInt(ctx, "max_feed_items"); err == nil && limit > 0 && len(visible) > limit {
		visible = visible[:limit]
	}
	return visible, snap, nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	user := s.currentUser(r)
	state := filterStateFromQuery(r.URL.Query())

	data := IndexData{
		SiteTitle:       s.siteTitle(r.Context()),
		User:            user,
		Query:           state.Query,
		LocationFilter:  state.Location,
		CompanyFilter:   state.Company,
		SkillFilter:     state.Skill,
		ShowJobs:        state.IncludeJobs,
		ShowExperiences: state.IncludeExperiences,
		ActiveFilters:   feed.ActiveFilterCount(state),
		CSRFToken:       s.csrf.Token(w, r),
	}

	visible, snap, err := s.loadVisible(r.Context(), user, state)
	switch {
	case err != nil:
		// Primary fetch failure: message passthrough, no partial feed.
		data.LoadError = err.Error()
	case snap == nil:
		data.NoData = true
	default:
		data.Items = s.itemViews(visible, snap)
	}

	if err := s.renderTemplate(w, "index.html", data); err != nil {
		s.logger.Printf("Error rendering index template: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// itemViews converts engine items into template view models, stripping any
// HTML the backend let through and resolving related entities with an
// "unknown" placeholder when resolution failed.
func (s *Server) itemViews(items []feed.FeedItem, snap *feed.Snapshot) []ItemView {
	views := make([]ItemView, 0, len(items))
	for _, item := range items {
		view := ItemView{
			Kind: item.Kind.String(),
			Date: feed.FormatDate(item.Timestamp),
		}
		switch item.Kind {
		case feed.KindJob:
			job := item.Job
			employer, resolved := snap.Employers[job.EmployerID]
			jv := &JobView{
				Title:           job.Title,
				Description:     ProcessBodyText(job.Description, descriptionLimit),
				Location:        job.Location,
				Field:           job.Field,
				ExperienceLevel: job.ExperienceLevel,
				Salary:          feed.FormatSalary(job.SalaryMin, job.SalaryMax),
				EmployerName:    "Unknown Company",
			}
			if resolved {
				jv.EmployerName = employer.Name
				jv.EmployerLogoURL = employer.CompanyPictureURL
			}
			view.Job = jv
		case feed.KindExperience:
			exp := item.Experience
			author, resolved := snap.ConnectedUsers[exp.UserID]
			ev := &ExperienceView{
				Title:          exp.Title,
				Description:    ProcessBodyText(exp.Description, descriptionLimit),
				ExperienceType: exp.ExperienceType,
				IsCurrent:      exp.IsCurrent,
				Started:        feed.FormatMonthYear(exp.StartDate),
				Ended:          feed.FormatMonthYear(exp.EndDate),
				UserName:       "Unknown User",
			}
			if resolved {
				ev.UserName = author.Name
				ev.UserLocation = author.Location
				ev.UserAvatarURL = author.ProfilePictureURL
			}
			view.Experience = ev
		}
		views = append(views, view)
	}
	return views
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		data := LoginData{
			SiteTitle: s.siteTitle(r.Context()),
			CSRFToken: s.csrf.Token(w, r),
		}
		if err := s.renderTemplate(w, "login.html", data); err != nil {
			s.logger.Printf("Error rendering login template: %v", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
	case http.MethodPost:
		if !s.csrf.Validate(w, r) {
			return
		}
		email := r.FormValue("email")
		password := r.FormValue("password")

		user, err := s.apiClient.Login(r.Context(), email, password)
		if err != nil {
			s.logger.Printf("Login failed for %s: %v", email, err)
			s.renderLoginError(w, r, err)
			return
		}

		session, err := s.authService.CreateSession(r.Context(), user)
		if err != nil {
			s.logger.Printf("Error creating session: %v", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookieName,
			Value:    session.ID,
			Path:     "/",
			HttpOnly: true,
			Secure:   s.config.UseHTTPS,
			SameSite: http.SameSiteLaxMode,
			Expires:  session.ExpiresAt,
		})
		http.Redirect(w, r, "/", http.StatusSeeOther)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) renderLoginError(w http.ResponseWriter, r *http.Request, err error) {
	message := "Login failed"
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		message = apiErr.Message
	}
	w.WriteHeader(http.StatusUnauthorized)
	data := LoginData{
		SiteTitle: s.siteTitle(r.Context()),
		Error:     message,
		CSRFToken: s.csrf.Token(w, r),
	}
	if renderErr := s.renderTemplate(w, "login.html", data); renderErr != nil {
		s.logger.Printf("Error rendering login template: %v", renderErr)
	}
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.csrf.Validate(w, r) {
		return
	}

	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		if err := s.authService.InvalidateSession(r.Context(), cookie.Value); err != nil && err != auth.ErrSessionNotFound {
			s.logger.Printf("Error invalidating session: %v", err)
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleFeedRSS(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	user := s.currentUser(r)
	state := filterStateFromQuery(r.URL.Query())

	visible, snap, err := s.loadVisible(r.Context(), user, state)
	if err != nil {
		http.Error(w, "Feed unavailable", http.StatusBadGateway)
		return
	}
	if snap == nil {
		http.Error(w, "Feed not loaded yet", http.StatusServiceUnavailable)
		return
	}

	doc := rss.Build(s.siteTitle(r.Context()), s.config.SiteURL, visible, snap)

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.Write([]byte(xml.Header))
	if err := xml.NewEncoder(w).Encode(doc); err != nil {
		s.logger.Printf("Error encoding RSS feed: %v", err)
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok"}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	if err := s.apiClient.Ping(ctx); err != nil {
		status["status"] = "degraded"
		status["backend"] = err.Error()
	}

	w.Header().Set("Content-Type", "application/json")
	if status["status"] != "ok" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(status)
}

func (s *Server) handle404(w http.ResponseWriter, r *http.Request) {
	s.logger.Printf("404 for path: %s", r.URL.Path)
	w.WriteHeader(http.StatusNotFound)
	data := IndexData{SiteTitle: s.siteTitle(r.Context())}
	if err := s.renderTemplate(w, "404.html", data); err != nil {
		s.logger.Printf("Error rendering 404 template: %v", err)
		http.Error(w, "404 Page Not Found", http.StatusNotFound)
	}
}

// siteTitle reads the configurable site title, falling back to the default.
func (s *Server) siteTitle(ctx context.Context) string {
	title, err := s.db.GetSetting(ctx, "site_title")
	if err != nil || title == "" {
		return "Gainfully"
	}
	return title
}
