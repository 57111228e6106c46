// Package api serves the job tracker, accounts and upskill operations
// over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/khrees2412/jobseeker/internal/app"
	"github.com/khrees2412/jobseeker/internal/auth"
	"github.com/khrees2412/jobseeker/internal/gamification"
	"github.com/khrees2412/jobseeker/internal/metrics"
	"github.com/khrees2412/jobseeker/internal/tracker"
	"go.uber.org/zap"
)

// Router creates and configures the HTTP router
type Router struct {
	tracker *tracker.Service
	ledger  *gamification.Ledger
	auth    *auth.Service
	metrics *metrics.Collector
	logger  *zap.Logger

	requestTimeout time.Duration
	allowedOrigins []string
	now            func() time.Time
}

// NewRouter creates a router over the services held by a
func NewRouter(a *app.App) *Router {
	logger := a.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	rt := &Router{
		tracker: a.Tracker,
		ledger:  a.Ledger,
		auth:    a.Auth,
		metrics: a.Metrics,
		logger:  logger.Named("http"),
		now:     time.Now,
	}
	if a.Config != nil {
		rt.requestTimeout = a.Config.Server.RequestTimeout
		rt.allowedOrigins = a.Config.Server.AllowedOrigins
	}
	return rt
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(rt.recoverer)
	router.Use(requestLogger(rt.logger))
	router.Use(instrument(rt.metrics))
	if rt.requestTimeout > 0 {
		router.Use(chimiddleware.Timeout(rt.requestTimeout))
	}

	origins := rt.allowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, envelope{"success": false, "message": "Route not found"})
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, envelope{"success": false, "message": "Method not allowed"})
	})

	router.Get("/api/health", rt.health)
	router.Method(http.MethodGet, "/metrics", rt.metrics.Handler())

	router.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", rt.register)
		r.Post("/login", rt.login)

		r.Group(func(r chi.Router) {
			r.Use(rt.authenticate)
			r.Get("/me", rt.me)
			r.Put("/profile", rt.updateProfile)
		})
	})

	router.Route("/api/jobs", func(r chi.Router) {
		r.Use(rt.authenticate)

		// registered before /{id} so "stats" is never taken for an id
		r.Get("/stats", rt.jobStats)
		r.Post("/", rt.createJob)
		r.Get("/", rt.listJobs)
		r.Get("/{id}", rt.getJob)
		r.Put("/{id}", rt.updateJob)
		r.Delete("/{id}", rt.deleteJob)
	})

	router.Route("/api/user", func(r chi.Router) {
		r.Use(rt.authenticate)

		r.Get("/upskill-progress", rt.upskillProgress)
		r.Put("/upskill-progress", rt.updateUpskillProgress)
		r.Post("/complete-course", rt.completeCourse)
		r.Get("/daily-challenge", rt.dailyChallenge)
		r.Post("/complete-challenge", rt.completeChallenge)
		r.Post("/track-resource", rt.trackResource)
		r.Put("/career-interests", rt.careerInterests)
		r.Get("/learning-history", rt.learningHistory)
	})

	return router
}

func (rt *Router) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, envelope{
		"status":    "OK",
		"message":   "JobSeeker API is running",
		"timestamp": rt.now().UTC().Format(time.RFC3339),
	})
}
