// Package container provides dependency injection using Uber FX
package container

import (
	"context"
	"math/rand"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/planea/aiserver/internal/application/ai"
	"github.com/planea/aiserver/internal/application/chat"
	"github.com/planea/aiserver/internal/application/mealprep"
	"github.com/planea/aiserver/internal/application/planner"
	"github.com/planea/aiserver/internal/infrastructure/ai/openai"
	"github.com/planea/aiserver/internal/infrastructure/config"
	"github.com/planea/aiserver/internal/infrastructure/flyers"
	"github.com/planea/aiserver/internal/infrastructure/http/handlers"
	"github.com/planea/aiserver/internal/infrastructure/http/middleware"
	"github.com/planea/aiserver/internal/infrastructure/http/server"
	"github.com/planea/aiserver/internal/ports/outbound"
	"github.com/planea/aiserver/pkg/logger"
)

// Module provides all dependency injection modules
var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	MetricsModule,
	AdapterModule,
	ServiceModule,
	HTTPModule,
	LifecycleModule,
)

// ConfigModule provides configuration
var ConfigModule = fx.Provide(
	func() (*config.Config, error) {
		return config.Load("")
	},
)

// LoggerModule provides logging
var LoggerModule = fx.Provide(
	func(cfg *config.Config) (*zap.Logger, error) {
		return logger.New(logger.Config{
			Level:       cfg.App.LogLevel,
			Format:      cfg.App.LogFormat,
			Development: cfg.App.Debug,
		})
	},
	func(log *zap.Logger) *zap.SugaredLogger {
		return log.Sugar()
	},
)

// MetricsModule provides the Prometheus registry and the metric sets
var MetricsModule = fx.Provide(
	prometheus.NewRegistry,
	func(reg *prometheus.Registry) prometheus.Registerer { return reg },
	func(reg *prometheus.Registry) prometheus.Gatherer { return reg },
	func(reg prometheus.Registerer) *middleware.Metrics {
		return middleware.NewMetrics(reg)
	},
	func(reg prometheus.Registerer) *ai.Metrics {
		return ai.NewMetrics(reg)
	},
)

// uuidGenerator mints v4 UUIDs.
type uuidGenerator struct{}

func (uuidGenerator) NewUUID() string { return uuid.NewString() }

// systemClock reads the wall clock.
type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// AdapterModule provides the outbound adapters: LLM client, deal source,
// ID generation and time.
var AdapterModule = fx.Provide(
	func() outbound.IDGenerator { return uuidGenerator{} },
	func() outbound.Clock { return systemClock{} },

	func(cfg *config.Config, log *zap.Logger) outbound.LLMClient {
		return openai.NewClient(cfg.AI, log)
	},

	// Deal source chain: HTTP client behind a TTL cache, optionally shared
	// through Redis. A disabled source stays nil; the planner treats that
	// as an empty deal set.
	func(cfg *config.Config, clock outbound.Clock, log *zap.Logger) outbound.DealSource {
		if !cfg.Flyers.Enabled {
			log.Info("weekly flyers disabled")
			return nil
		}
		client := flyers.NewClient(cfg.Flyers, log)
		if cfg.Flyers.UseRedisCache {
			rdb := redis.NewClient(&redis.Options{
				Addr:         cfg.RedisAddr(),
				Password:     cfg.Redis.Password,
				DB:           cfg.Redis.Database,
				DialTimeout:  cfg.Redis.DialTimeout,
				ReadTimeout:  cfg.Redis.ReadTimeout,
				WriteTimeout: cfg.Redis.WriteTimeout,
				PoolSize:     cfg.Redis.PoolSize,
			})
			return flyers.NewRedisCache(client, rdb, cfg.Flyers.CacheTTL, log)
		}
		return flyers.NewMemoryCache(client, cfg.Flyers.CacheTTL, clock)
	},
)

// ServiceModule provides application services
var ServiceModule = fx.Provide(
	func(llm outbound.LLMClient, ids outbound.IDGenerator, log *zap.Logger, metrics *ai.Metrics, cfg *config.Config) *ai.Service {
		return ai.NewService(llm, ids, log, metrics, ai.Config{
			Model:        cfg.AI.Model,
			VisionModel:  cfg.AI.VisionModel,
			Temperature:  cfg.AI.Temperature,
			MaxTokens:    cfg.AI.MaxTokens,
			MaxAttempts:  cfg.AI.MaxAttempts,
			RequestsPerS: cfg.AI.RequestsPerS,
			Burst:        cfg.AI.Burst,
		})
	},

	func(log *zap.Logger) *planner.Distributor {
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		return planner.NewDistributor(rng, log)
	},

	planner.NewService,
	mealprep.NewGrouper,
	mealprep.NewService,
	chat.NewService,
)

// HTTPModule provides HTTP server and handlers
var HTTPModule = fx.Provide(
	func(plans *planner.Service, kits *mealprep.Service, chats *chat.Service, cfg *config.Config, log *zap.Logger) *handlers.Handlers {
		return handlers.New(plans, kits, chats, log, cfg.App.Version)
	},
	server.NewServer,
)

// LifecycleModule provides lifecycle hooks
var LifecycleModule = fx.Invoke(
	RegisterLifecycleHooks,
)

// RegisterLifecycleHooks registers application lifecycle hooks
func RegisterLifecycleHooks(
	lc fx.Lifecycle,
	cfg *config.Config,
	log *zap.Logger,
	srv *server.Server,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting Planea AI server",
				zap.String("version", cfg.App.Version),
				zap.String("environment", cfg.App.Environment),
			)

			go func() {
				if err := srv.Start(); err != nil && err != http.ErrServerClosed {
					log.Fatal("Failed to start HTTP server", zap.Error(err))
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down Planea AI server")

			if err := srv.Shutdown(ctx); err != nil {
				log.Error("Failed to shutdown HTTP server", zap.Error(err))
			}

			_ = log.Sync()
			return nil
		},
	})
}
