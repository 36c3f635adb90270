package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cirvee/earnings-backend/internal/cache"
	"github.com/cirvee/earnings-backend/internal/config"
	"github.com/cirvee/earnings-backend/internal/database"
	"github.com/cirvee/earnings-backend/internal/handlers"
	"github.com/cirvee/earnings-backend/internal/logging"
	"github.com/cirvee/earnings-backend/internal/middleware"
	"github.com/cirvee/earnings-backend/internal/models"
	"github.com/cirvee/earnings-backend/internal/repository"
	"github.com/cirvee/earnings-backend/internal/scheduler"
	"github.com/cirvee/earnings-backend/internal/services"
	"github.com/cirvee/earnings-backend/internal/utils"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func main() {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logging.Initialize(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.Sync()

	// Migrations
	if cfg.Database.RunMigrations {
		if err := database.Migrate("file://migrations", cfg.Database.URL); err != nil {
			logging.Sugar.Fatalw("Failed to run migrations", "error", err)
		}
		logging.Sugar.Info("Migrations applied")
	}

	// Primary earnings store
	db, err := database.New(cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logging.Sugar.Fatalw("Failed to connect to database", "error", err)
	}
	defer db.Close()
	logging.Sugar.Info("Connected to database")

	// Optional read-only referral store; falls back to the primary pool when
	// identity data lives in the same database.
	referralDB := db
	if cfg.Database.ReferralURL != "" {
		referralDB, err = database.New(cfg.Database.ReferralURL, cfg.Database.MaxConns)
		if err != nil {
			logging.Sugar.Fatalw("Failed to connect to referral database", "error", err)
		}
		defer referralDB.Close()
		logging.Sugar.Info("Connected to referral database")
	}

	// Redis
	redisCache, err := cache.New(cfg.Redis.URL)
	if err != nil {
		logging.Sugar.Fatalw("Failed to connect to Redis", "error", err)
	}
	defer redisCache.Close()
	logging.Sugar.Info("Connected to Redis")

	// JWT manager
	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessExpiry)

	// Repositories
	userRepo := repository.NewUserRepository(referralDB)
	referralRepo := repository.NewReferralRepository(referralDB)
	withdrawalRepo := repository.NewWithdrawalRepository(db)
	adjustmentRepo := repository.NewAdjustmentRepository(db)
	winnerRepo := repository.NewWinnerRepository(db)

	// Services
	earningsService := services.NewEarningsService(referralRepo, withdrawalRepo, adjustmentRepo, cfg.RewardCents())
	withdrawalService := services.NewWithdrawalService(withdrawalRepo, earningsService)
	authService := services.NewAuthService(userRepo, jwtManager, &cfg.Admin)

	// Leaderboard snapshot + cron refresh
	leaderboard := scheduler.NewLeaderboardCache(referralRepo, redisCache, cfg.RewardCents())
	jobs := scheduler.New(leaderboard)
	if err := jobs.Start(); err != nil {
		logging.Sugar.Fatalw("Failed to start scheduler", "error", err)
	}
	defer jobs.Stop()

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	earningsHandler := handlers.NewEarningsHandler(earningsService, withdrawalService, withdrawalRepo, referralRepo, winnerRepo, leaderboard)
	adminHandler := handlers.NewAdminHandler(earningsService, withdrawalService, userRepo, referralRepo, withdrawalRepo, adjustmentRepo, winnerRepo)
	healthHandler := handlers.NewHealthHandler(db, redisCache)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtManager)
	rateLimiter := middleware.NewRateLimiter(redisCache, cfg.RateLimit.Requests, cfg.RateLimit.Window)
	loginRateLimiter := middleware.NewAuthRateLimiter(redisCache, 5, time.Minute) // 5 requests per minute for admin login

	// Router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(chiMiddleware.AllowContentType("application/json"))
	r.Use(func(next http.Handler) http.Handler {
		return http.MaxBytesHandler(next, 1<<20) // 1MB request body limit
	})
	r.Use(middleware.SecureHeaders)
	r.Use(rateLimiter.Limit)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.CORS.Origin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"success": false, "error": "Endpoint not found", "path": "` + req.URL.Path + `"}`))
	})

	// Health check
	r.Get("/health", healthHandler.Health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/test", healthHandler.Test)

		r.Route("/earnings", func(r chi.Router) {
			r.Post("/validate-token", authHandler.ValidateToken)
			r.Get("/winners-of-week", earningsHandler.GetWinnersOfWeek)
			r.Get("/leaderboard", earningsHandler.GetLeaderboard)

			// Owner routes
			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.Authenticate)
				r.Post("/request-withdrawal", earningsHandler.RequestWithdrawal)

				r.Group(func(r chi.Router) {
					r.Use(authMiddleware.RequireOwner("userId"))
					r.Get("/dashboard/{userId}", earningsHandler.GetDashboard)
					r.Get("/history/{userId}", earningsHandler.GetHistory)
					r.Get("/withdrawals/{userId}", earningsHandler.GetWithdrawals)
					r.Get("/referral-links/{userId}", earningsHandler.GetReferralLinks)
				})
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(loginRateLimiter.Limit)
				r.Post("/login", authHandler.AdminLogin)
			})

			r.Route("/earnings", func(r chi.Router) {
				r.Use(authMiddleware.Authenticate)
				r.Use(authMiddleware.RequireRole(models.RoleAdmin))

				r.Get("/all-users", adminHandler.GetAllUsers)
				r.Get("/user/{userId}", adminHandler.GetUserDetail)
				r.Put("/approve-withdrawal/{id}", adminHandler.ResolveWithdrawal)
				r.Post("/adjust-earnings", adminHandler.AdjustEarnings)
				r.Post("/set-winners", adminHandler.SetWinners)
				r.Get("/export", adminHandler.Export)
			})
		})
	})

	// Server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		logging.Sugar.Infow("Server starting", "port", cfg.Server.Port, "env", cfg.Server.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Sugar.Fatalw("Server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.Sugar.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logging.Sugar.Fatalw("Server forced to shutdown", "error", err)
	}

	logging.Sugar.Info("Server exited properly")
}
