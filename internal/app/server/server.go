package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"depuente/internal/domain/absence"
	"depuente/internal/domain/audit"
	"depuente/internal/domain/auth"
	"depuente/internal/domain/core"
	"depuente/internal/domain/feedback"
	"depuente/internal/domain/notifications"
	"depuente/internal/platform/config"
	"depuente/internal/platform/db"
	"depuente/internal/platform/email"
	"depuente/internal/platform/jobs"
	"depuente/internal/platform/metrics"
	"depuente/internal/platform/requestctx"
	"depuente/internal/transport/http/api"
	absencehandler "depuente/internal/transport/http/handlers/absence"
	adminhandler "depuente/internal/transport/http/handlers/admin"
	authhandler "depuente/internal/transport/http/handlers/auth"
	corehandler "depuente/internal/transport/http/handlers/core"
	exporthandler "depuente/internal/transport/http/handlers/export"
	feedbackhandler "depuente/internal/transport/http/handlers/feedback"
	"depuente/internal/transport/http/middleware"
)

type App struct {
	Config  config.Config
	DB      *pgxpool.Pool
	Router  http.Handler
	Jobs    *jobs.Service
	Metrics *metrics.Collector
}

// New wires stores, services, and the router. It does not run migrations or
// start background jobs; Run does that for the real server, and journey
// tests call New against an already migrated database.
func New(cfg config.Config, pool *pgxpool.Pool) *App {
	collector := metrics.New()

	coreStore := core.NewStore(pool)
	authStore := auth.NewStore(pool)
	auditSvc := audit.New(pool)
	feedbackStore := feedback.NewStore(pool)
	absenceStore := absence.NewStore(pool)
	absenceSvc := absence.NewService(absenceStore, coreStore)
	mailer := email.New(cfg)
	digest := notifications.NewService(absenceSvc, coreStore, mailer, cfg.EmailFrom, cfg.AppURL)
	jobSvc := jobs.New(pool, cfg, digest)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Metrics(collector))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret, authStore))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth, middleware.RequireAdmin)
			r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
				api.Success(w, collector.Snapshot(), requestctx.GetRequestID(req.Context()))
			})
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		authHandler := authhandler.NewHandler(authStore, coreStore, cfg.JWTSecret)
		r.Group(func(r chi.Router) {
			// Login and reset run before authentication, so they are keyed
			// on the caller address.
			r.Use(middleware.RateLimit(10, time.Minute, middleware.WithKeyFunc(middleware.KeyByClientIP)))
			r.Post("/auth/login", authHandler.HandleLogin)
			r.Post("/auth/request-reset", authHandler.HandleRequestReset)
			r.Post("/auth/reset", authHandler.HandleResetPassword)
		})
		r.Post("/auth/logout", authHandler.HandleLogout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))

			corehandler.NewHandler(coreStore).RegisterRoutes(r)
			absencehandler.NewHandler(absenceSvc, coreStore, auditSvc).RegisterRoutes(r)
			exporthandler.NewHandler(absenceSvc, coreStore).RegisterRoutes(r)
			adminhandler.NewHandler(coreStore, absenceSvc, authStore, auditSvc, digest, jobSvc).RegisterRoutes(r)
			feedbackhandler.NewHandler(feedbackStore).RegisterRoutes(r)
		})
	})

	return &App{
		Config:  cfg,
		DB:      pool,
		Router:  router,
		Jobs:    jobSvc,
		Metrics: collector,
	}
}

func Run() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config invalid: %v", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, "migrations"); err != nil {
			log.Fatalf("migrations failed: %v", err)
		}
	}

	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
	}

	app := New(cfg, pool)
	app.Jobs.Start(ctx)

	log.Printf("de puente server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, app.Router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
