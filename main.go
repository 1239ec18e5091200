// Command entreflow runs the blogging backend: credential and Google
// signup/login, session tokens, the password-reset flow, and blog posting
// with comments.
//
// @title EntreFlow API
// @version 1.0
// @description Backend API for the EntreFlow blogging application.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/user/entreflow-go/auth"
	"github.com/user/entreflow-go/blog"
	"github.com/user/entreflow-go/config"
	"github.com/user/entreflow-go/db"
	"github.com/user/entreflow-go/logger"
	"github.com/user/entreflow-go/mail"
	"github.com/user/entreflow-go/metrics"
	"github.com/user/entreflow-go/ratelimit"
	"github.com/user/entreflow-go/storage"
)

func main() {
	logger.SetupDefault(nil)

	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, relying on environment")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := db.RunMigrations(cfg.DB, "migrations"); err != nil {
		slog.Error("failed to run migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	pool, err := db.NewPool(cfg.DB)
	if err != nil {
		slog.Error("failed to create connection pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	uploader, err := storage.NewS3Uploader(context.Background(), cfg.Storage)
	if err != nil {
		slog.Error("failed to create uploader", slog.String("error", err.Error()))
		os.Exit(1)
	}

	mailer := mail.NewSMTPMailer(cfg.Mail)
	oauth := auth.NewGoogleProvider(cfg.Google)

	resetCodes := auth.NewResetCodeStore(cfg.Auth.ResetCodeTTL)
	defer resetCodes.Stop()

	credentialLimiter := ratelimit.New(cfg.RateLimit.CredentialPerMinute, cfg.RateLimit.CredentialBurst)
	defer credentialLimiter.Stop()

	m := metrics.New(prometheus.NewRegistry())

	userStore := auth.NewUserStore(pool)
	authService := auth.NewAuthService(userStore, *cfg.Auth, resetCodes, mailer, uploader, oauth)
	authHandler := auth.NewHandler(authService, m)

	blogStore := blog.NewBlogStore(pool)
	blogService := blog.NewBlogService(blogStore, uploader)
	blogHandler := blog.NewHandler(blogService, m)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(m.Middleware)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Route("/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.Signup)
		r.Post("/reset", authHandler.Reset)
		r.Post("/verify-forgot", authHandler.VerifyForgot)
		r.Get("/google/login", authHandler.GoogleLogin)
		r.Post("/google/callback", authHandler.GoogleCallback)

		r.Group(func(r chi.Router) {
			r.Use(credentialLimiter.Middleware)
			r.Post("/login", authHandler.Login)
			r.Post("/forgot", authHandler.Forgot)
		})

		r.Group(func(r chi.Router) {
			r.Use(authService.Middleware)
			r.Get("/check", authHandler.Check)
			r.Put("/update-profile", authHandler.UpdateProfile)
		})
	})

	router.Route("/blog", func(r chi.Router) {
		r.Get("/get", blogHandler.List)
		// Deletion takes no session: any caller that knows the id may
		// delete the post.
		r.Delete("/{id}", blogHandler.Delete)

		r.Group(func(r chi.Router) {
			r.Use(authService.Middleware)
			r.Post("/create", blogHandler.Create)
			r.Put("/update", blogHandler.Update)
			r.Post("/{id}/comment", blogHandler.Comment)
		})
	})

	router.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		slog.Info("starting server", slog.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("forced shutdown", slog.String("error", err.Error()))
	}
	slog.Info("server stopped")
}
