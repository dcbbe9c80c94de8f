package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type RouterOptions struct {
	UploadDir string
	// JWTSecret enables bearer auth on /api routes other than health.
	JWTSecret   string
	CORSOrigins []string
	Logger      *zap.Logger
}

func NewRouter(apiHandler *APIHandler, opts RouterOptions) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	// A registry per router keeps tests from colliding on global registration.
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := newHTTPMetrics(registry)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(metrics.middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	r.Handle("/uploads/*", uploadsHandler(opts.UploadDir))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", apiHandler.HealthHandler)

		r.Group(func(r chi.Router) {
			if opts.JWTSecret != "" {
				r.Use(JWTAuthMiddleware(opts.JWTSecret))
			}

			r.Route("/events", func(r chi.Router) {
				r.Get("/", apiHandler.ListEventsHandler)
				r.Post("/", apiHandler.CreateEventHandler)
				r.Get("/{id}", apiHandler.GetEventHandler)
				r.Put("/{id}", apiHandler.UpdateEventHandler)
				r.Delete("/{id}", apiHandler.DeleteEventHandler)
			})

			r.Route("/prompts", func(r chi.Router) {
				r.Get("/", apiHandler.ListPromptsHandler)
				r.Post("/", apiHandler.CreatePromptHandler)
				r.Get("/{id}", apiHandler.GetPromptHandler)
				r.Put("/{id}", apiHandler.UpdatePromptHandler)
				r.Delete("/{id}", apiHandler.DeletePromptHandler)
				r.Get("/{id}/versions", apiHandler.ListPromptVersionsHandler)
				r.Post("/{id}/versions", apiHandler.CreatePromptVersionHandler)
			})

			r.Route("/conversations", func(r chi.Router) {
				r.Get("/", apiHandler.ListConversationsHandler)
				r.Post("/", apiHandler.CreateConversationHandler)
				r.Get("/{id}", apiHandler.GetConversationHandler)
				r.Put("/{id}", apiHandler.UpdateConversationHandler)
				r.Delete("/{id}", apiHandler.DeleteConversationHandler)
				r.Get("/{id}/audio", apiHandler.ListAudioHandler)
				r.Post("/{id}/audio", apiHandler.UploadAudioHandler)
				r.Get("/{id}/transcriptions", apiHandler.ListTranscriptionsHandler)
				r.Get("/{id}/notes", apiHandler.ListNotesHandler)
				r.Post("/{id}/notes", apiHandler.CreateNoteHandler)
			})

			r.Delete("/notes/{noteID}", apiHandler.DeleteNoteHandler)
			r.Post("/audio/{audioID}/transcriptions", apiHandler.CreateTranscriptionHandler)
			r.Post("/audio/{audioID}/transcribe", apiHandler.TranscribeAudioHandler)
			r.Get("/openai/session", apiHandler.RealtimeSessionHandler)
		})
	})

	return r
}
