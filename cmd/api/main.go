//	@title			Mediafeed API
//	@version		1.0
//	@description	Upload photos and videos, browse the shared feed, delete your own posts.
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT Bearer token. Format: **Bearer {token}**

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	"github.com/mediafeed/service/internal/auth"
	"github.com/mediafeed/service/internal/config"
	"github.com/mediafeed/service/internal/db"
	"github.com/mediafeed/service/internal/logger"
	appMiddleware "github.com/mediafeed/service/internal/middleware"
	"github.com/mediafeed/service/internal/post"
	"github.com/mediafeed/service/internal/staging"
	"github.com/mediafeed/service/internal/storage"
	"github.com/mediafeed/service/internal/user"

	_ "github.com/mediafeed/service/docs/swagger"
)

func main() {
	cfg := config.Load()

	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg.DatabaseURL, zl)
	if err != nil {
		zl.Fatal("database connection failed", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL, zl); err != nil {
		zl.Fatal("database migration failed", zap.Error(err))
	}

	store, err := newStorage(ctx, cfg, zl)
	if err != nil {
		zl.Fatal("media store init failed", zap.Error(err))
	}

	buf := staging.NewBuffer(cfg.StagingDir)
	janitor, err := staging.NewJanitor(buf.Dir, cfg.StagingMaxAge, cfg.StagingSweepInterval, zl)
	if err != nil {
		zl.Fatal("staging janitor init failed", zap.Error(err))
	}
	janitor.Start()

	// Wire dependencies: repository → service → handler
	userRepo := user.NewRepository(pool)
	userSvc := user.NewService(userRepo)
	userHandler := user.NewHandler(userSvc, zl)

	authSvc := auth.NewService(userSvc, cfg)
	authHandler := auth.NewHandler(authSvc, zl)

	postRepo := post.NewRepository(pool)
	postSvc := post.NewService(postRepo, userSvc, store, buf, cfg.UploadTag, zl)
	postHandler := post.NewHandler(postSvc, cfg.UploadMaxBytes, zl)

	// Router
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger(zl))
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/jwt/login", authHandler.Login)
	})

	r.Group(func(r chi.Router) {
		r.Use(appMiddleware.RequireAuth(cfg.JWTSecret))
		r.Get("/users/me", userHandler.GetMe)
		postHandler.Routes(r)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		zl.Info("server listening",
			zap.String("port", cfg.Port),
			zap.String("env", cfg.AppEnv),
			zap.String("storage", cfg.StorageDriver),
			zap.String("staging_dir", buf.Dir))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server error", zap.Error(err))
		}
	}()

	<-quit
	zl.Info("shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("forced shutdown", zap.Error(err))
	}
	if err := janitor.Shutdown(); err != nil {
		zl.Warn("staging janitor shutdown", zap.Error(err))
	}

	zl.Info("server stopped")
}

func newStorage(ctx context.Context, cfg *config.Config, zl *zap.Logger) (storage.Storage, error) {
	switch cfg.StorageDriver {
	case "cloudinary":
		return storage.NewCloudinaryStorage(cfg.CloudinaryURL, cfg.CloudinaryFolder)
	case "minio", "":
		return storage.NewMinioStorage(ctx,
			cfg.StorageEndpoint,
			cfg.StorageAccessKey,
			cfg.StorageSecretKey,
			cfg.StorageBucket,
			cfg.StoragePublicBase,
			cfg.StorageUseSSL,
			zl,
		)
	default:
		return nil, errors.New("unknown STORAGE_DRIVER " + cfg.StorageDriver)
	}
}
