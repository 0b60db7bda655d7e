package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"hospital-portal/internal/apiclient"
	"hospital-portal/internal/config"
	"hospital-portal/internal/cron"
	"hospital-portal/internal/deptroute"
	"hospital-portal/internal/guard"
	"hospital-portal/internal/handlers"
	"hospital-portal/internal/logger"
	"hospital-portal/internal/middleware"
	"hospital-portal/internal/notify"
	"hospital-portal/internal/reportsync"
	"hospital-portal/internal/session"
	"hospital-portal/internal/storage"
)

func main() {
	// 1. Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.Log.Level, cfg.Log.Format, "hospital-portal")
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zl.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Session: restore whatever survived the last run
	sessionStorage, closeStorage, err := newSessionStorage(ctx, cfg)
	if err != nil {
		zl.Fatal("failed to initialize session storage", zap.Error(err))
	}
	defer closeStorage()

	store := session.NewStore(sessionStorage, zl.Named("session"))
	defer store.Close()
	store.Initialize(ctx)

	// 3. Backend client; any 401 ends the session
	api := apiclient.New(cfg.APIURL(), cfg.APITimeout, store, zl.Named("api"))
	api.OnUnauthorized(store.Logout)

	// 4. Export storage (local disk or R2)
	files, filesDir, err := newExportStore(ctx, cfg)
	if err != nil {
		zl.Fatal("failed to initialize export storage", zap.Error(err))
	}

	notes := notify.NewChannel()
	defer notes.Close()

	syncSvc := reportsync.NewService(api, notes, zl.Named("reportsync"))
	workspace := reportsync.NewWorkspace(syncSvc)

	if cfg.ReminderInterval > 0 {
		cron.NewReminder(cfg.Ward, "Ward1", syncSvc, store, notes, zl.Named("cron")).Start(ctx, cfg.ReminderInterval)
	}

	// 5. Handlers
	authHandler := handlers.NewAuthHandler(api, store, notes, zl.Named("auth"))
	dashboardHandler := handlers.NewDashboardHandler(store)
	reportHandler := handlers.NewReportHandler(cfg.Ward, workspace, syncSvc, files, zl.Named("reports"))
	adminHandler := handlers.NewAdminHandler(api, notes, zl.Named("admin"))
	notificationHandler := handlers.NewNotificationHandler(notes)
	fileHandler := handlers.NewFileHandler(files, filesDir)

	// 6. Router with global middleware
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLogger(zl.Named("http")))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		st := store.State()
		handlers.JSON(w, http.StatusOK, map[string]any{
			"status":        "ok",
			"workstation":   cfg.WorkstationID,
			"authenticated": st.IsAuthenticated,
			"loading":       st.Loading,
		})
	})
	r.Get("/session", authHandler.Session)
	r.Get(deptroute.LoginPath, authHandler.LoginPage)
	r.With(middleware.RateLimit(ctx, rate.Every(12*time.Second), 5)).Post(deptroute.LoginPath, authHandler.Login)
	r.Post("/logout", authHandler.Logout)

	// Smart redirect
	r.Get("/", dashboardHandler.Home)
	r.Get("/dashboard", dashboardHandler.Home)
	r.NotFound(dashboardHandler.Home)

	// 7. Signed-in routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticated(store))
		r.Get("/me", authHandler.Me)
		r.Get("/notifications", notificationHandler.List)
		r.Delete("/notifications/{id}", notificationHandler.Dismiss)
		r.Get("/files/*", fileHandler.ServeFile)
	})

	// Department dashboards
	for _, d := range deptroute.Dashboards() {
		req := guard.Requirement{Roles: d.Roles, Department: d.Department}
		r.With(middleware.RequireAccess(store, req)).Get(d.Path, dashboardHandler.View(d.Path))
	}

	// Ward monthly report workflow
	ward := guard.Requirement{Department: "Ward1"}
	r.Route(deptroute.Ward1DashboardPath+"/reports", func(r chi.Router) {
		r.Use(middleware.RequireAccess(store, ward))

		r.Get("/{year}", reportHandler.Year)
		r.Get("/{year}/export", reportHandler.ExportYear)
		r.Route("/{year}/{month}", func(r chi.Router) {
			r.Get("/", reportHandler.Get)
			r.Patch("/", reportHandler.Update)
			r.Delete("/", reportHandler.Delete)
			r.Post("/save", reportHandler.Save)
			r.Post("/submit", reportHandler.Submit)
			r.Post("/reload", reportHandler.Reload)
			r.Get("/export", reportHandler.ExportMonth)
		})
	})

	// Administrator console
	adminOnly := guard.Requirement{Roles: []string{session.RoleAdministrator}, Department: "Administration"}
	r.Route(deptroute.AdminDashboardPath+"/api", func(r chi.Router) {
		r.Use(middleware.RequireAccess(store, adminOnly))

		r.Get("/departments", adminHandler.ListDepartments)
		r.Get("/departments/active", adminHandler.ActiveDepartments)
		r.Post("/departments", adminHandler.CreateDepartment)
		r.Put("/departments/{id}", adminHandler.UpdateDepartment)
		r.Delete("/departments/{id}", adminHandler.DeleteDepartment)

		r.Get("/users", adminHandler.ListUsers)
		r.Post("/users", adminHandler.CreateUser)
		r.Get("/users/{id}", adminHandler.GetUser)
		r.Put("/users/{id}", adminHandler.UpdateUser)
		r.Put("/users/{id}/password", adminHandler.UpdatePassword)
		r.Delete("/users/{id}", adminHandler.DeleteUser)

		r.Get("/reports/{ward}/{year}", reportHandler.Year)
		r.Get("/reports/{ward}/{year}/export", reportHandler.ExportYear)
		r.Put("/reports/{ward}/{year}/{month}/approve", reportHandler.Approve)
	})

	// 8. Start server with graceful shutdown
	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zl.Info("portal started",
			zap.String("port", cfg.Port),
			zap.String("api", cfg.APIURL()),
			zap.String("workstation", cfg.WorkstationID),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server failed to start", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zl.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zl.Error("server forced to shutdown", zap.Error(err))
	}
	zl.Info("portal exited properly")
}

func newSessionStorage(ctx context.Context, cfg *config.Config) (session.Storage, func(), error) {
	if cfg.Session.Backend != "redis" {
		return session.NewFileStorage(cfg.Session.File, cfg.Session.Secret), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("connect to redis at %s: %w", cfg.Redis.Addr, err)
	}
	return session.NewRedisStorage(client, cfg.WorkstationID), func() { client.Close() }, nil
}

func newExportStore(ctx context.Context, cfg *config.Config) (storage.Store, string, error) {
	if cfg.Export.Backend == "r2" {
		s, err := storage.NewR2Store(ctx, storage.R2Options{
			AccountID: cfg.Export.R2AccountID,
			AccessKey: cfg.Export.R2AccessKey,
			SecretKey: cfg.Export.R2SecretKey,
			Bucket:    cfg.Export.R2Bucket,
			PublicURL: cfg.Export.R2PublicURL,
		})
		return s, "", err
	}

	s, err := storage.NewLocalStore(cfg.Export.Dir, cfg.Export.BaseURL)
	if err != nil {
		return nil, "", err
	}
	return s, s.Dir(), nil
}
