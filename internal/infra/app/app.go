package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/walletmine/admin-gateway/internal/core/port"
	"github.com/walletmine/admin-gateway/internal/infra/config"
	kafkainfra "github.com/walletmine/admin-gateway/internal/infra/kafka"
	"github.com/walletmine/admin-gateway/internal/infra/logger"
	redisinfra "github.com/walletmine/admin-gateway/internal/infra/redis"
	"github.com/walletmine/admin-gateway/internal/infra/staffapi"
	"github.com/walletmine/admin-gateway/internal/repository/filestore"
	"github.com/walletmine/admin-gateway/internal/repository/redisstore"
	"github.com/walletmine/admin-gateway/internal/transport/http/middleware"
	"github.com/walletmine/admin-gateway/internal/transport/http/routes"
	"github.com/walletmine/admin-gateway/internal/usecase"
)

// Application wires configuration, the session manager, and the HTTP surface.
type Application struct {
	cfg      *config.AppConfig
	engine   *gin.Engine
	logger   *zap.Logger
	redis    *redisinfra.Client
	producer *kafkainfra.Producer
	sessions *usecase.SessionManager
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	var (
		store       port.SessionStore
		redisClient *redisinfra.Client
	)
	switch cfg.Store.Backend {
	case "redis":
		redisClient, err = redisinfra.NewClient(cfg.Redis, log)
		if err != nil {
			return nil, fmt.Errorf("init redis: %w", err)
		}
		store = redisstore.NewSessionStore(redisClient.Client(), cfg.Redis.KeyPrefix)
	case "file", "":
		store, err = filestore.NewSessionStore(cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("init file store: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	var audit port.AuditPublisher
	var producer *kafkainfra.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err = kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			audit = kafkainfra.NewStubPublisher(log)
		} else {
			audit = kafkainfra.NewAuditPublisher(producer, cfg.App)
			log.Info("kafka audit publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		audit = kafkainfra.NewStubPublisher(log)
	}

	// The rotation hook is bound after the manager exists; the client only
	// fires it on live requests, well past wiring.
	var sessions *usecase.SessionManager
	apiClient, err := staffapi.NewClient(cfg.StaffAPI, log, staffapi.WithTokenRotationHook(func(token string) {
		if sessions != nil {
			sessions.AdoptToken(context.Background(), token)
		}
	}))
	if err != nil {
		closeQuietly(redisClient, producer)
		return nil, fmt.Errorf("init staff api client: %w", err)
	}

	sessions, err = usecase.NewSessionManager(cfg, apiClient, store, audit, log)
	if err != nil {
		closeQuietly(redisClient, producer)
		return nil, fmt.Errorf("init session manager: %w", err)
	}

	// Restore before the HTTP surface exists so no permission-gated request
	// can observe a half-rehydrated session.
	if err := sessions.RestoreSession(ctx); err != nil {
		log.Warn("restore session", zap.Error(err))
	}

	metrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{})
	if err != nil {
		closeQuietly(redisClient, producer)
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	deps := routes.Dependencies{
		Config:   cfg,
		Logger:   log,
		Sessions: sessions,
		Metrics:  metrics,
	}
	if redisClient != nil {
		deps.Cache = redisClient
	}

	return &Application{
		cfg:      cfg,
		engine:   routes.Register(deps),
		logger:   log,
		redis:    redisClient,
		producer: producer,
		sessions: sessions,
	}, nil
}

func closeQuietly(redisClient *redisinfra.Client, producer *kafkainfra.Producer) {
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if producer != nil {
		_ = producer.Close()
	}
}

// Run starts the background sweeps and serves HTTP until the context is
// cancelled, then shuts everything down gracefully.
func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer closeQuietly(a.redis, a.producer)
	defer a.sessions.Close()

	a.sessions.Start(ctx)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting admin gateway",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}
