package http

import (
	"encoding/json"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"
	"github.com/oneiro-lab/morpheus/frontend"
	"github.com/oneiro-lab/morpheus/pkg/usecase"
	"github.com/oneiro-lab/morpheus/pkg/utils/errutil"
	"github.com/oneiro-lab/morpheus/pkg/utils/logging"
	"github.com/oneiro-lab/morpheus/pkg/utils/safe"
)

type Server struct {
	router *chi.Mux
	uc     *usecase.UseCases

	botURL             string
	slackSigningSecret string
}

type Options func(*Server)

// WithBotURL exposes the chat bot's public URL at GET /api/bot.
func WithBotURL(botURL string) Options {
	return func(s *Server) {
		s.botURL = botURL
	}
}

// WithSlackWebhook mounts the signature-verified Slack events endpoint.
func WithSlackWebhook(signingSecret string) Options {
	return func(s *Server) {
		s.slackSigningSecret = signingSecret
	}
}

func New(uc *usecase.UseCases, opts ...Options) (*Server, error) {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
	}
	for _, opt := range opts {
		opt(s)
	}

	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/add", addMemoryHandler(uc.Memories))
		r.Get("/memory/{id}", getMemoryHandler(uc.Memories))
		r.Patch("/memory/{id}", updateMemoryHandler(uc.Memories))
		r.Delete("/delete/{id}", deleteMemoryHandler(uc.Memories))
		r.Get("/bot", botURLHandler(s.botURL))
	})

	if s.slackSigningSecret != "" && uc.Chat != nil {
		webhook := NewSlackEventHandler(uc.Chat)
		r.Route("/hooks/slack", func(r chi.Router) {
			r.Use(SlackSignatureMiddleware(s.slackSigningSecret))
			r.Post("/event", webhook.ServeHTTP)
		})
	}

	// Static shell pages; the JS in them talks to /api
	staticFS, err := fs.Sub(frontend.StaticFiles, "static")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to bind static dir")
	}
	r.Get("/", pageHandler("index.html"))
	r.Get("/memory/{id}", pageHandler("memory.html"))
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(staticFS)))

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Default().Error("failed to encode response", "error", err.Error())
	}
}

func pageHandler(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := frontend.StaticFiles.ReadFile(name)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "missing page", goerr.V("name", name)), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		safe.Write(r.Context(), w, data)
	}
}

func botURLHandler(botURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if botURL == "" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		safe.Write(r.Context(), w, []byte(botURL))
	}
}
