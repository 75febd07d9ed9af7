package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/caseforge/caseforge/internal/api/rest/handler"
	"github.com/caseforge/caseforge/internal/api/rest/middleware"
	"github.com/caseforge/caseforge/internal/auth"
	"github.com/caseforge/caseforge/internal/cache"
	"github.com/caseforge/caseforge/internal/config"
	"github.com/caseforge/caseforge/internal/designer"
	"github.com/caseforge/caseforge/internal/diag"
	"github.com/caseforge/caseforge/internal/imaging"
	"github.com/caseforge/caseforge/internal/orders"
	"github.com/caseforge/caseforge/internal/poller"
	repository "github.com/caseforge/caseforge/internal/repository/postgres"
	"github.com/caseforge/caseforge/internal/upload"
	"github.com/caseforge/caseforge/pkg/retry"
)

const shutdownTimeout = 10 * time.Second

func main() {
	warnings := diag.NewBuffer(diag.DefaultCapacity)
	logger := slog.New(diag.NewHandler(slog.NewJSONHandler(os.Stdout, nil), warnings))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("config_load_failed", "error", err)
		os.Exit(1)
	}
	logger.Info("api_starting", "environment", cfg.Environment)

	dbPool, err := initializeDatabase(cfg.DatabaseURL)
	if err != nil {
		logger.Error("db_init_failed", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()
	statusCache := cache.New(rdb)

	// Repositories
	userRepo := repository.NewUserRepository(dbPool)
	configRepo := repository.NewConfigurationRepository(dbPool)
	orderRepo := repository.NewOrderRepository(dbPool)

	// Sessions and route gating
	sessions, err := auth.NewSessionManager(auth.SessionConfig{
		Secret: []byte(cfg.SessionSecret),
		Issuer: cfg.SessionIssuer,
		TTL:    cfg.SessionTTL,
	})
	if err != nil {
		logger.Error("session_init_failed", "error", err)
		os.Exit(1)
	}

	sessionAuth := middleware.NewSessionAuth(middleware.SessionAuthConfig{
		Sessions:   sessions,
		Classifier: middleware.NewDefaultClassifier(),
		LoginPath:  cfg.LoginPath,
	}, logger)
	cors := middleware.NewCORSMiddleware(cfg.AllowedOrigins)

	// Imaging and storage
	loader := imaging.NewLoader(imaging.LoaderConfig{
		Policy: imaging.HostPolicy{
			ImageHosts:    cfg.ImageHosts,
			ProxyTemplate: cfg.ProxyTemplate,
		},
	}, logger)
	uploads := upload.NewClient(upload.ClientConfig{
		BaseURL: cfg.UploadBaseURL,
		APIKey:  cfg.UploadAPIKey,
	}, logger)

	// Services
	designService := designer.NewService(configRepo, loader, uploads, logger)
	orderService := orders.NewService(orders.ServiceConfig{
		Orders: orderRepo,
		Cache:  statusCache,
		TTL:    cache.DefaultStatusTTL,
	}, logger)
	statusWaiter := poller.NewWaiter(orderService, retry.DefaultPolicy(), logger)

	// REST handlers
	uploadHandler := handler.NewUploadHandler(uploads, configRepo, logger)
	configHandler := handler.NewConfigurationHandler(configRepo, designService, logger)
	orderHandler := handler.NewOrderHandler(statusWaiter, logger)
	webhookHandler := handler.NewWebhookHandler(orderRepo, cfg.WebhookSecret, logger)
	diagHandler := handler.NewDiagnosticsHandler(warnings, cfg.Environment, cfg.IsProduction(), logger)
	authHandler := handler.NewAuthHandler(handler.AuthHandlerConfig{
		Users:      userRepo,
		Sessions:   sessions,
		Handoffs:   statusCache,
		SecureOnly: cfg.IsProduction(),
	}, logger)

	router := buildRouter(routerHandlers{
		uploads:     uploadHandler,
		configs:     configHandler,
		orders:      orderHandler,
		webhooks:    webhookHandler,
		diagnostics: diagHandler,
		auth:        authHandler,
	}, sessionAuth, cors)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	if err := serve(server, logger); err != nil {
		logger.Error("api_serve_failed", "error", err)
		os.Exit(1)
	}
}

// serve runs the HTTP server until SIGINT/SIGTERM, then drains connections.
func serve(server *http.Server, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Info("api_listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-ctx.Done()
		logger.Info("api_shutting_down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return group.Wait()
}

// initializeDatabase creates a pool and verifies connectivity.
func initializeDatabase(connectionString string) (*pgxpool.Pool, error) {
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, connectionString)
	if err != nil {
		return nil, fmt.Errorf("create_pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping_db: %w", err)
	}

	return pool, nil
}

type routerHandlers struct {
	uploads     *handler.UploadHandler
	configs     *handler.ConfigurationHandler
	orders      *handler.OrderHandler
	webhooks    *handler.WebhookHandler
	diagnostics *handler.DiagnosticsHandler
	auth        *handler.AuthHandler
}

// buildRouter wires routes. The session middleware runs on every route and
// decides per path whether a session is required.
func buildRouter(h routerHandlers, sessionAuth *middleware.SessionAuth, cors *middleware.CORSMiddleware) *mux.Router {
	router := mux.NewRouter()
	router.Use(cors.Handler, sessionAuth.Handler)

	router.HandleFunc("/health", handleHealthCheck).Methods(http.MethodGet)

	router.HandleFunc("/api/auth/login", h.auth.LoginEntry).Methods(http.MethodGet)
	router.HandleFunc("/api/auth/login", h.auth.SignIn).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/logout", h.auth.SignOut).Methods(http.MethodGet)
	router.HandleFunc(handler.AuthCallbackPath, h.auth.Callback).Methods(http.MethodGet)

	router.HandleFunc("/api/uploads", h.uploads.Upload).Methods(http.MethodPost)
	router.HandleFunc("/api/configurations/{id}", h.configs.GetByID).Methods(http.MethodGet)
	router.HandleFunc("/api/configurations/{id}/design", h.configs.SaveDesign).Methods(http.MethodPost)
	router.HandleFunc("/api/orders/{id}/payment-status", h.orders.GetPaymentStatus).Methods(http.MethodGet)
	router.HandleFunc("/api/webhooks/payment", h.webhooks.HandlePayment).Methods(http.MethodPost)
	router.HandleFunc("/api/diagnostics", h.diagnostics.Status).Methods(http.MethodGet)

	return router
}

// handleHealthCheck returns a basic health status.
func handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"healthy"}`))
}
