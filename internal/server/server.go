// Package server exposes the advice pipeline over HTTP.
package server

import (
	"context"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sells-group/assessment-advisor/internal/model"
	"github.com/sells-group/assessment-advisor/internal/rules"
)

// DefaultMaxBodyBytes caps request bodies when Options.MaxBodyBytes is unset.
const DefaultMaxBodyBytes int64 = 1 << 20

// Advisor turns a validated assessment into a rendered report.
type Advisor interface {
	Run(ctx context.Context, a *model.Assessment, tbl rules.Table) (string, error)
}

// RulesLoader returns the current rule table. It is called once per
// advice request so edits to the rules file apply without a restart.
type RulesLoader func(ctx context.Context) (rules.Table, error)

// Options configures a Server.
type Options struct {
	// FrontendOrigin is the allowed CORS origin; "*" or empty allows any.
	FrontendOrigin string
	MaxBodyBytes   int64
	// Now is the clock used for response timestamps.
	Now func() time.Time
}

// Server holds the HTTP handlers and their collaborators.
type Server struct {
	advisor  Advisor
	rules    RulesLoader
	opts     Options
	validate *validator.Validate
}

// New creates a Server.
func New(advisor Advisor, loader RulesLoader, opts Options) *Server {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return &Server{advisor: advisor, rules: loader, opts: opts, validate: v}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(corsOptions(s.opts.FrontendOrigin)))

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/llm-advice", s.handleAdvice)
		r.Post("/save-user-report", s.handleSaveReport)
	})

	return r
}

func corsOptions(origin string) cors.Options {
	origins := []string{"*"}
	if origin != "" && origin != "*" {
		origins = []string{origin}
	}
	return cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		zap.L().Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
