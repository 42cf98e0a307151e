package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/buddyboard/buddyboard/internal/events"
	"github.com/buddyboard/buddyboard/internal/handler"
	"github.com/buddyboard/buddyboard/internal/middleware"
	"github.com/buddyboard/buddyboard/internal/security"
	"github.com/buddyboard/buddyboard/internal/service"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

func (s *Server) setupRoutes(ctx context.Context) (http.Handler, error) {
	cfg := s.cfg

	// ─── Storage ────────────────────────────────────────────────────────────────
	var store service.JobStore
	var dbChecker handler.HealthChecker
	if cfg.DatabaseURL != "" {
		pg, err := service.NewPostgresStore(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns)
		if err != nil {
			return nil, err
		}
		s.onClose("postgres", func() error { pg.Close(); return nil })
		if cfg.AutoMigrate {
			if err := pg.CreateSchema(ctx, service.DefaultCategories); err != nil {
				return nil, err
			}
		}
		store = pg
		dbChecker = pg
	} else {
		log.Warn().Msg("DATABASE_URL not set - using in-memory store, data is lost on restart")
		store = service.NewMemoryStore(service.DefaultCategories)
	}

	// ─── Moderation index ───────────────────────────────────────────────────────
	var modIndex *service.ModerationIndex
	var modIndexErr error
	if cfg.ElasticsearchEnabled {
		idx, err := service.NewModerationIndex(service.ESConfig{
			Scheme:      cfg.ElasticsearchScheme,
			Host:        cfg.ElasticsearchHost,
			Port:        cfg.ElasticsearchPort,
			User:        cfg.ElasticsearchUser,
			Password:    cfg.ElasticsearchPassword,
			VerifyCerts: cfg.ElasticsearchVerifyCerts,
			MaxRetries:  cfg.ElasticsearchMaxRetries,
			Index:       cfg.ModerationIndex,
		})
		if err != nil {
			log.Warn().Err(err).Msg("moderation index unavailable")
			modIndexErr = err
		} else {
			ensureCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			if err := idx.EnsureIndex(ensureCtx); err != nil {
				log.Warn().Err(err).Str("index", idx.Index()).Msg("could not ensure moderation index")
			}
			cancel()
			modIndex = idx
		}
	}

	// ─── Rejection events ───────────────────────────────────────────────────────
	emitters := []events.Emitter{events.NewAuditEmitter(cfg.EnableAuditLogging)}
	if modIndex != nil {
		emitters = append(emitters, events.NewIndexEmitter(modIndex, 5*time.Second))
	}
	if cfg.PubSubProjectID != "" {
		var opts []option.ClientOption
		if cfg.GoogleApplicationCredentials != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.GoogleApplicationCredentials))
		}
		ps, err := events.NewPubSubEmitter(ctx, cfg.PubSubProjectID, cfg.PubSubTopicID, opts...)
		if err != nil {
			log.Warn().Err(err).Msg("pubsub emitter unavailable")
		} else {
			s.onClose("pubsub", ps.Close)
			emitters = append(emitters, ps)
		}
	}
	emitter := events.NewMultiEmitter(emitters...)

	masker := security.NewDataMasker(cfg.EnableContactMasking)
	jobs := service.NewJobService(store, emitter, masker)

	log.Info().
		Bool("postgres", dbChecker != nil).
		Bool("moderation_index", modIndex != nil).
		Int("event_sinks", emitter.Len()).
		Bool("auth_enabled", cfg.EnableAuth).
		Bool("contact_masking", masker.Enabled()).
		Bool("audit_logging", cfg.EnableAuditLogging).
		Msg("service configuration")

	if cfg.EnableAuth && len(cfg.APIKeys) == 0 {
		log.Warn().Msg("auth enabled but no API keys configured - every API request will be rejected")
	}

	// ─── Handlers ────────────────────────────────────────────────────────────────
	checks := map[string]handler.HealthChecker{"store": handler.PingFunc(jobs.Ping)}
	if cfg.ElasticsearchEnabled {
		switch {
		case modIndex != nil:
			checks["elasticsearch"] = handler.PingFunc(modIndex.TestConnection)
		case modIndexErr != nil:
			initErr := fmt.Errorf("client init: %w", modIndexErr)
			checks["elasticsearch"] = handler.PingFunc(func(context.Context) error { return initErr })
		}
	}
	healthH := handler.NewHealthHandler(checks)
	validateH := handler.NewValidateHandler()
	jobsH := handler.NewJobsHandler(jobs)
	appsH := handler.NewApplicationsHandler(jobs)

	var moderationH *handler.ModerationHandler
	if modIndex != nil {
		moderationH = handler.NewModerationHandler(modIndex)
	}

	// ─── Router ──────────────────────────────────────────────────────────────────
	r := chi.NewRouter()

	// RequestID first so panics are logged with it
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.CORSOrigins)))
	r.Use(chiMiddleware.RealIP)

	// Public routes
	r.Get("/health", healthH.Health)
	r.Get("/", healthH.Health)

	// Limiting runs after Auth so only validated API keys get their own window
	limiterKey := ""
	if cfg.EnableAuth {
		limiterKey = cfg.APIKeyHeader
	}
	s.limiter = middleware.NewRateLimiter(cfg.RateLimitPerMinute, limiterKey)

	r.Route(cfg.APIPrefix, func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if cfg.EnableAuth {
				r.Use(middleware.Auth(cfg.APIKeys, cfg.APIKeyHeader))
			}
			r.Use(s.limiter.Middleware)

			r.Post("/validate", validateH.Validate)
			r.Get("/users/my-applications", jobsH.MyApplications)

			r.Route("/jobs", func(r chi.Router) {
				r.Get("/", jobsH.ListJobs)
				r.Post("/", jobsH.CreateJob)
				r.Get("/categories", jobsH.ListCategories)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", jobsH.GetJob)
					r.Put("/", jobsH.UpdateJob)
					r.Delete("/", jobsH.DeleteJob)
					r.Post("/apply", jobsH.Apply)
					r.Get("/comments", jobsH.ListComments)
					r.Post("/comments", jobsH.CreateComment)
				})
			})
		})

		r.Group(func(r chi.Router) {
			if cfg.EnableAuth {
				if len(cfg.AdminAPIKeys) == 0 {
					log.Warn().Msg("no admin API keys configured - admin endpoints will reject every request")
				}
				r.Use(middleware.Auth(cfg.AdminAPIKeys, cfg.APIKeyHeader))
			}
			r.Use(s.limiter.Middleware)

			r.Put("/admin/applications/{id}/approve", appsH.Approve)
			r.Put("/admin/applications/{id}/reject", appsH.Reject)
			if moderationH != nil {
				r.Get("/admin/moderation", moderationH.Search)
			}
		})
	})

	return r, nil
}
