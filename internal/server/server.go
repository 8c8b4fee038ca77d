package server

import (
	"context"
	"html/template"
	"log"
	"net/http"

	"gainfully/internal/api"
	"gainfully/internal/auth"
	"gainfully/internal/database"
	"gainfully/internal/feed"
)

type Config struct {
	UseHTTPS bool
	SiteURL  string // external base URL used in RSS links
}

// Server renders the Gainfully home feed. Signed-out requests are served
// from the warm snapshot kept by the feed service; signed-in requests run a
// fresh load so connection updates are always current.
type Server struct {
	db          *database.DB
	logger      *log.Logger
	authService *auth.Service
	apiClient   *api.Client
	backend     feed.Backend
	feedService *feed.Service
	csrf        *CSRF
	config      Config
	templates   map[string]*template.Template
}

func NewServer(db *database.DB, logger *log.Logger, apiClient *api.Client, backend feed.Backend, feedService *feed.Service, authService *auth.Service, config Config) (*Server, error) {
	csrfConfig := DefaultCSRFConfig()
	csrfConfig.Secure = config.UseHTTPS

	s := &Server{
		db:          db,
		logger:      logger,
		authService: authService,
		apiClient:   apiClient,
		backend:     backend,
		feedService: feedService,
		csrf:        NewCSRF(csrfConfig),
		config:      config,
	}

	templates, err := loadTemplates(s.templateFuncs())
	if err != nil {
		return nil, err
	}
	s.templates = templates

	return s, nil
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticContent))))

	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/login", s.handleLogin)
	mux.HandleFunc("/logout", s.handleLogout)
	mux.HandleFunc("/feed.rss", s.handleFeedRSS)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			s.handle404(w, r)
			return
		}
		s.handleIndex(w, r)
	})

	return securityHeaders(gzipMiddleware(mux))
}

// currentUser resolves the session cookie to a user, or nil when signed out
// or the session is stale.
func (s *Server) currentUser(r *http.Request) *feed.User {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	session, err := s.authService.ValidateSession(r.Context(), cookie.Value)
	if err != nil {
		if err != auth.ErrSessionNotFound {
			s.logger.Printf("Error validating session: %v", err)
		}
		return nil
	}
	user := session.User
	return &user
}

func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.Routes(),
	}
	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()
	s.logger.Printf("Starting server on %s", addr)
	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
