package main

import (
	"encoding/json"
	stdlog "log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/AiProject2025/abdul-instant-price-poc-sub000/src/config"
	"github.com/AiProject2025/abdul-instant-price-poc-sub000/src/database"
	"github.com/AiProject2025/abdul-instant-price-poc-sub000/src/handlers"
	"github.com/AiProject2025/abdul-instant-price-poc-sub000/src/logger"
	"github.com/AiProject2025/abdul-instant-price-poc-sub000/src/processors"
	"github.com/AiProject2025/abdul-instant-price-poc-sub000/src/security"
	"github.com/AiProject2025/abdul-instant-price-poc-sub000/src/services"
)

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded",
				"method", r.Method,
				"path", r.URL.Path,
				"remoteAddr", r.RemoteAddr)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowedOrigins := map[string]bool{
			"http://localhost:3000": true,
		}

		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, PATCH")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, X-Requested-With, Cookie, If-None-Match")
			w.Header().Set("Access-Control-Expose-Headers", "X-CSRF-Token, ETag")
		} else if origin == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == "OPTIONS" {
			logger.L.Debug("Handling OPTIONS preflight request", "path", r.URL.Path, "origin", origin)
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("Loan pricing backend server starting...")

	if config.Cfg.JWTSecret == "" || len(config.Cfg.JWTSecret) < 32 {
		logger.L.Error("JWT_SECRET configuration invalid. Must be at least 32 bytes.")
		os.Exit(1)
	}
	if len(config.Cfg.CSRFAuthKey) < 32 {
		logger.L.Error("CSRF_AUTH_KEY must be at least 32 bytes long.")
		os.Exit(1)
	}

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	logger.L.Info("Database initialized successfully.")

	logger.L.Info("Initializing analysis cache...")
	reportCache := cache.New(services.DefaultCacheExpiration, services.CacheCleanupInterval)

	logger.L.Info("Initializing services and handlers...")
	authService := security.NewAuthService(config.Cfg.JWTSecret)
	emailService := services.NewEmailService()
	userHandler := handlers.NewUserHandler(authService, emailService)

	classifier := processors.NewPackageClassifier()
	aggregator := processors.NewPackageAggregator()
	mapper := processors.NewApplicationMapper()

	pricingService := services.NewPricingService(config.Cfg.PricingAPIURL, config.Cfg.PricingAPIKey)
	extractionService := services.NewExtractionService(config.Cfg.ExtractionWebhookURL)
	chatService := services.NewChatService(config.Cfg.ChatWebhookURL)

	portfolioService := services.NewPortfolioService(
		classifier, aggregator, mapper,
		pricingService, reportCache,
	)

	portfolioHandler := handlers.NewPortfolioHandler(portfolioService, extractionService)
	scenarioHandler := handlers.NewScenarioHandler(portfolioService)
	quoteHandler := handlers.NewQuoteHandler(pricingService)
	chatHandler := handlers.NewChatHandler(chatService)
	stateHandler := handlers.NewStateHandler()

	logger.L.Info("Configuring routes...")
	rootMux := http.NewServeMux()
	apiRouter := http.NewServeMux()

	// Public GET routes (no CSRF needed for these GETs)
	apiRouter.HandleFunc("GET /api/auth/csrf", handlers.GetCSRFToken)
	apiRouter.HandleFunc("GET /api/auth/verify-email", userHandler.VerifyEmailHandler) // Token in query param

	// Auth actions router - POST routes need CSRF
	authActionRouter := http.NewServeMux()
	authActionRouter.HandleFunc("POST /login", userHandler.LoginUserHandler)
	authActionRouter.HandleFunc("POST /register", userHandler.RegisterUserHandler)
	authActionRouter.HandleFunc("POST /refresh", userHandler.RefreshTokenHandler)
	authActionRouter.HandleFunc("POST /logout", userHandler.AuthMiddleware(userHandler.LogoutUserHandler))
	authActionRouter.HandleFunc("POST /request-password-reset", userHandler.RequestPasswordResetHandler)
	authActionRouter.HandleFunc("POST /reset-password", userHandler.ResetPasswordHandler)

	csrfProtection := handlers.CSRFMiddleware()
	apiRouter.Handle("/api/auth/", http.StripPrefix("/api/auth", csrfProtection(authActionRouter)))

	applyCsrfAndAuth := func(handler http.HandlerFunc) http.Handler {
		return csrfProtection(http.HandlerFunc(userHandler.AuthMiddleware(handler)))
	}

	apiRouter.Handle("POST /api/portfolio/import", applyCsrfAndAuth(portfolioHandler.HandleImport))
	apiRouter.Handle("POST /api/portfolio/extract", applyCsrfAndAuth(portfolioHandler.HandleExtract))
	apiRouter.Handle("POST /api/portfolio/analyze", applyCsrfAndAuth(portfolioHandler.HandleAnalyze))
	apiRouter.Handle("GET /api/portfolio/packages", applyCsrfAndAuth(portfolioHandler.HandleGetPackages))
	apiRouter.Handle("GET /api/portfolio/packages/export", applyCsrfAndAuth(portfolioHandler.HandleExportPackages))
	apiRouter.Handle("POST /api/portfolio/packages/select", applyCsrfAndAuth(portfolioHandler.HandleSelectPackages))
	apiRouter.Handle("DELETE /api/portfolio/packages/{id}", applyCsrfAndAuth(portfolioHandler.HandleDeletePackage))
	apiRouter.Handle("POST /api/portfolio/submit", applyCsrfAndAuth(portfolioHandler.HandleSubmit))

	apiRouter.Handle("POST /api/quote", applyCsrfAndAuth(quoteHandler.HandleQuote))
	apiRouter.Handle("POST /api/chat", applyCsrfAndAuth(chatHandler.HandleChatMessage))

	apiRouter.Handle("POST /api/scenarios", applyCsrfAndAuth(scenarioHandler.HandleCreateScenario))
	apiRouter.Handle("GET /api/scenarios", applyCsrfAndAuth(scenarioHandler.HandleListScenarios))
	apiRouter.Handle("GET /api/scenarios/{id}", applyCsrfAndAuth(scenarioHandler.HandleGetScenario))
	apiRouter.Handle("PUT /api/scenarios/{id}", applyCsrfAndAuth(scenarioHandler.HandleUpdateScenario))
	apiRouter.Handle("DELETE /api/scenarios/{id}", applyCsrfAndAuth(scenarioHandler.HandleDeleteScenario))
	apiRouter.Handle("POST /api/scenarios/{id}/restore", applyCsrfAndAuth(scenarioHandler.HandleRestoreScenario))
	apiRouter.Handle("GET /api/scenarios/{id}/results", applyCsrfAndAuth(scenarioHandler.HandleListScenarioResults))

	apiRouter.Handle("POST /api/clients", applyCsrfAndAuth(scenarioHandler.HandleCreateClient))
	apiRouter.Handle("GET /api/clients", applyCsrfAndAuth(scenarioHandler.HandleSearchClients))

	apiRouter.Handle("GET /api/state/{key}", applyCsrfAndAuth(stateHandler.HandleGetState))
	apiRouter.Handle("PUT /api/state/{key}", applyCsrfAndAuth(stateHandler.HandleSaveState))
	apiRouter.Handle("DELETE /api/state/{key}", applyCsrfAndAuth(stateHandler.HandleClearState))

	apiRouter.Handle("GET /api/user/has-data", applyCsrfAndAuth(userHandler.HandleCheckUserData))

	rootMux.Handle("/api/", apiRouter)

	rootMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" && r.Method == http.MethodGet {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"message": "Loan pricing backend is running"})
		} else {
			if !strings.HasPrefix(r.URL.Path, "/api/") {
				logger.L.Warn("Root level path not found", "method", r.Method, "path", r.URL.Path)
				http.NotFound(w, r)
			}
		}
	})

	logger.L.Info("Applying global middleware...")
	finalHandler := enableCORS(rateLimitMiddleware(rootMux))

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      finalHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.L.Error("Failed to start server", "error", err)
		stdlog.Fatalf("Failed to start server: %v", err)
	} else if err == http.ErrServerClosed {
		logger.L.Info("Server stopped gracefully.")
	}
}
