package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"symptom-checker/internal/checker"
	"symptom-checker/internal/config"
	"symptom-checker/internal/form"
	"symptom-checker/internal/llm"
	"symptom-checker/internal/store"
	"symptom-checker/internal/types"
)

const (
	symptomsRequired = "Symptom text is required."
	diagnoseTimeout  = 60 * time.Second
	maxSessions      = 1000
	sweepInterval    = time.Minute
	maxBodyBytes     = 64 << 10
)

// formSession is one browser's symptom form.
type formSession struct {
	controller *form.Controller
	view       *htmlView
}

type Server struct {
	router    *chi.Mux
	cfg       config.Config
	logger    *zap.Logger
	diagnoser llm.Diagnoser
	checker   form.Checker
	sessions  *store.MemoryStore[*formSession]
	page      *template.Template
	formOpts  []form.Option
}

type Option func(*Server)

// WithChecker replaces the HTTP client the form posts symptom queries through.
func WithChecker(chk form.Checker) Option {
	return func(s *Server) { s.checker = chk }
}

// WithFormOptions passes options to every session's form controller.
func WithFormOptions(opts ...form.Option) Option {
	return func(s *Server) { s.formOpts = append(s.formOpts, opts...) }
}

func NewServer(cfg config.Config, diagnoser llm.Diagnoser, logger *zap.Logger, opts ...Option) (*Server, error) {
	if diagnoser == nil {
		return nil, errors.New("server: diagnoser is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	page, err := template.New("index").Parse(indexHTML)
	if err != nil {
		return nil, fmt.Errorf("parse page template: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		AllowCredentials: cfg.AllowedOrigin != "*",
		MaxAge:           300,
	}))

	s := &Server{
		router:    r,
		cfg:       cfg,
		logger:    logger,
		diagnoser: diagnoser,
		page:      page,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.checker == nil {
		s.checker = checker.New(cfg.CheckEndpoint, checker.WithTimeout(cfg.CheckTimeout))
	}
	s.sessions = store.NewMemoryStore(cfg.SessionTTL, maxSessions, func(sid string, fs *formSession) {
		fs.controller.Close()
		logger.Debug("form session evicted", zap.String("session", sid))
	})
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.router.Get("/api/health", s.handleHealth)
	s.router.Post("/check_symptoms", s.handleCheckSymptoms)
	// Server-rendered symptom form
	s.router.Get("/", s.handleIndex)
	s.router.Post("/form", s.handleFormSubmit)
	s.router.Post("/api/form/submit", s.handleFormSubmitJSON)
	s.router.Get("/api/form/state", s.handleFormState)
}

func (s *Server) Router() http.Handler { return s.router }

// SweepSessions evicts idle form sessions until ctx is cancelled.
func (s *Server) SweepSessions(ctx context.Context) error {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := s.sessions.Sweep(); n > 0 {
				s.logger.Info("swept idle form sessions", zap.Int("count", n))
			}
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleCheckSymptoms(w http.ResponseWriter, r *http.Request) {
	var req types.SymptomQuery
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if tooLarge(err) {
			s.writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		s.writeError(w, http.StatusBadRequest, symptomsRequired)
		return
	}
	symptoms := strings.TrimSpace(req.Symptoms)
	if symptoms == "" {
		s.writeError(w, http.StatusBadRequest, symptomsRequired)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), diagnoseTimeout)
	defer cancel()
	res, err := s.diagnoser.Diagnose(ctx, symptoms)
	if err != nil {
		s.logger.Error("diagnosis failed", zap.Error(err))
		s.writeError(w, http.StatusBadGateway, "diagnosis failed")
		return
	}
	if res.ProbableConditions == nil {
		res.ProbableConditions = []string{}
	}
	if res.RecommendedNextSteps == nil {
		res.RecommendedNextSteps = []string{}
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := s.page.Execute(w, s.currentState(r)); err != nil {
		s.logger.Error("render page", zap.Error(err))
	}
}

// handleFormSubmit is the page's form post; it always redirects back to the page.
func (s *Server) handleFormSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		if tooLarge(err) {
			s.writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		s.writeError(w, http.StatusBadRequest, "invalid form body")
		return
	}
	fs := s.session(w, r)
	s.submit(r.Context(), fs, r.PostFormValue("symptoms"))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleFormSubmitJSON(w http.ResponseWriter, r *http.Request) {
	var req types.SymptomQuery
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if tooLarge(err) {
			s.writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	fs := s.session(w, r)
	status := http.StatusOK
	if errors.Is(s.submit(r.Context(), fs, req.Symptoms), form.ErrBusy) {
		status = http.StatusConflict
	}
	s.writeJSON(w, status, fs.view.snapshot(fs.controller.State()))
}

func (s *Server) handleFormState(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.currentState(r))
}

// submit runs one form submission. Failures are already on the session's
// banner, so they are only logged here.
func (s *Server) submit(ctx context.Context, fs *formSession, symptoms string) error {
	err := fs.controller.Submit(ctx, symptoms)
	var verr *checker.ValidationError
	switch {
	case err == nil, errors.As(err, &verr):
	case errors.Is(err, form.ErrBusy):
		s.logger.Info("form submission rejected, check in progress")
	default:
		s.logger.Warn("form submission failed", zap.Error(err))
	}
	return err
}

// session returns the browser's form session, creating it if needed. Only
// submissions create sessions.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *formSession {
	sid := s.getOrCreateSessionID(w, r)
	return s.sessions.GetOrCreate(sid, func() *formSession {
		view := newHTMLView(form.DefaultDisplayFor)
		ctrl := form.NewController(s.checker, view, s.logger.With(zap.String("session", sid)), s.formOpts...)
		view.displayFor = ctrl.DisplayFor()
		return &formSession{controller: ctrl, view: view}
	})
}

// currentState is the browser's form as it stands; browsers without a live
// session see an idle form.
func (s *Server) currentState(r *http.Request) viewState {
	if sid, err := GetSessionCookie(r); err == nil {
		if fs, ok := s.sessions.Get(sid); ok {
			return fs.view.snapshot(fs.controller.State())
		}
	}
	return newHTMLView(0).snapshot(form.Idle)
}

func tooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	s.writeJSON(w, code, types.ErrorResponse{Error: msg})
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
