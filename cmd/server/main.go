package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/dig"
	"go.uber.org/zap"

	rediscache "github.com/davidbz/transly/internal/cache/redis"
	"github.com/davidbz/transly/internal/config"
	"github.com/davidbz/transly/internal/domain"
	"github.com/davidbz/transly/internal/http"
	"github.com/davidbz/transly/internal/http/middleware"
	"github.com/davidbz/transly/internal/observability"
	"github.com/davidbz/transly/internal/provider/echo"
	"github.com/davidbz/transly/internal/provider/ollama"
	"github.com/davidbz/transly/internal/provider/openai"
	"github.com/davidbz/transly/internal/provider/registry"
	"github.com/davidbz/transly/internal/routing"
)

const (
	shutdownTimeout   = 10 * time.Second
	cachePingTimeout  = 2 * time.Second
	resultCachePrefix = "transly:translation:"
)

func main() {
	container := buildContainer()

	err := container.Invoke(func(server *http.Server, logger *zap.Logger) error {
		defer func() { _ = logger.Sync() }()

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.Start()
		}()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return err
		case sig := <-stop:
			logger.Info("received signal", zap.String("signal", sig.String()))
		}

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(ctx)
	})
	if err != nil {
		log.Fatalf("Server stopped with error: %v", err)
	}
}

func buildContainer() *dig.Container {
	container := dig.New()

	// Configuration
	if err := container.Provide(config.Load); err != nil {
		log.Fatalf("Failed to provide config: %v", err)
	}
	if err := container.Provide(config.ParseDependenciesConfig); err != nil {
		log.Fatalf("Failed to provide config dependencies: %v", err)
	}

	// Observability
	if err := container.Provide(observability.InitLogger); err != nil {
		log.Fatalf("Failed to provide logger: %v", err)
	}
	if err := container.Provide(observability.NewMetrics); err != nil {
		log.Fatalf("Failed to provide metrics: %v", err)
	}
	if err := container.Provide(func(logger *zap.Logger, metrics *observability.Metrics) domain.EventPublisher {
		return observability.NewEventBus(logger, metrics)
	}); err != nil {
		log.Fatalf("Failed to provide event bus: %v", err)
	}

	// Provider Registry
	if err := container.Provide(func(openaiCfg *openai.Config) (domain.ProviderRegistry, error) {
		reg := registry.NewRegistry()
		ctx := context.Background()

		providers := []domain.Provider{
			ollama.NewProvider(),
			openai.NewProvider(*openaiCfg),
			echo.NewProvider(),
		}
		for _, provider := range providers {
			if err := reg.Register(ctx, provider); err != nil {
				return nil, err
			}
		}

		return reg, nil
	}); err != nil {
		log.Fatalf("Failed to provide registry: %v", err)
	}

	// Routing
	if err := container.Provide(func(reg domain.ProviderRegistry, engine *config.EngineConfig) domain.Router {
		return routing.NewRouter(reg, engine.Provider)
	}); err != nil {
		log.Fatalf("Failed to provide router: %v", err)
	}

	// Result cache, optional
	if err := container.Provide(provideResultCache); err != nil {
		log.Fatalf("Failed to provide result cache: %v", err)
	}

	// Domain Services
	if err := container.Provide(func(engine *config.EngineConfig, redisCfg *rediscache.Config) domain.Settings {
		return engine.Settings(redisCfg.TTLDuration())
	}); err != nil {
		log.Fatalf("Failed to provide settings: %v", err)
	}
	if err := container.Provide(domain.NewTranslationService); err != nil {
		log.Fatalf("Failed to provide translation service: %v", err)
	}

	// HTTP Layer
	if err := container.Provide(func(service *domain.TranslationService, metrics *observability.Metrics) *http.Handler {
		return http.NewHandler(service, metrics)
	}); err != nil {
		log.Fatalf("Failed to provide HTTP handler: %v", err)
	}
	if err := container.Provide(middleware.BuildMiddlewareChain); err != nil {
		log.Fatalf("Failed to provide middleware chain: %v", err)
	}
	if err := container.Provide(http.NewServer); err != nil {
		log.Fatalf("Failed to provide HTTP server: %v", err)
	}

	return container
}

// provideResultCache returns a nil cache when Redis is not configured or not
// reachable; translation works without it.
func provideResultCache(cfg *rediscache.Config, logger *zap.Logger) domain.ResultCache {
	if !cfg.Enabled() {
		return nil
	}

	cache := rediscache.NewResultCache(rediscache.NewClient(*cfg), resultCachePrefix)

	ctx, cancel := context.WithTimeout(context.Background(), cachePingTimeout)
	defer cancel()

	if err := cache.Ping(ctx); err != nil {
		logger.Warn("result cache disabled", zap.String("addr", cfg.Addr), zap.Error(err))
		return nil
	}

	return cache
}
