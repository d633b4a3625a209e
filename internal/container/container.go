package container

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jaevor/go-nanoid"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/serroba/shortlink/internal/analytics"
	analyticsstore "github.com/serroba/shortlink/internal/analytics/store"
	"github.com/serroba/shortlink/internal/handlers"
	"github.com/serroba/shortlink/internal/health"
	"github.com/serroba/shortlink/internal/messaging"
	"github.com/serroba/shortlink/internal/middleware"
	"github.com/serroba/shortlink/internal/ratelimit"
	"github.com/serroba/shortlink/internal/shortener"
	"github.com/serroba/shortlink/internal/store"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ErrInvalidOption reports a configuration value outside its allowed set.
var ErrInvalidOption = errors.New("invalid option")

const (
	analyticsConsumerGroup = "shortlink-analytics"
	requestIDLength        = 21
)

// RedisConnection owns the shared redis client.
type RedisConnection struct {
	*redis.Client
}

func (c *RedisConnection) Shutdown() error {
	return c.Close()
}

// PostgresConnection owns the pgx pool.
type PostgresConnection struct {
	*pgxpool.Pool
}

func (c *PostgresConnection) Shutdown() error {
	c.Close()

	return nil
}

// Repository is the decorated link store handed to the registry.
type Repository struct {
	shortener.Repository
	local *store.LocalCacheRepository
}

func (r *Repository) Shutdown() error {
	if r.local != nil {
		return r.local.Shutdown()
	}

	return nil
}

// AnalyticsStore is both the event sink and the click counter source.
type AnalyticsStore interface {
	analytics.Store
	analytics.Stats
}

func LoggerPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*zap.Logger, error) {
		opts := do.MustInvoke[*Options](i)

		return NewLogger(opts.LogFormat, opts.LogLevel)
	})
}

// NewLogger builds a development console logger or a production json logger.
func NewLogger(format, level string) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if format == "json" {
		cfg = zap.NewProductionConfig()
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("%w: log level: %w", ErrInvalidOption, err)
	}

	cfg.Level = zap.NewAtomicLevelAt(lvl)

	return cfg.Build()
}

func RedisPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*RedisConnection, error) {
		opts := do.MustInvoke[*Options](i)

		return &RedisConnection{Client: redis.NewClient(&redis.Options{Addr: opts.RedisAddr})}, nil
	})
}

func PostgresPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*PostgresConnection, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		if err := store.Migrate(opts.DatabaseURL); err != nil {
			return nil, err
		}

		logger.Info("database migrated")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		pool, err := pgxpool.New(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}

		if err := pool.Ping(ctx); err != nil {
			pool.Close()

			return nil, fmt.Errorf("ping postgres: %w", err)
		}

		return &PostgresConnection{Pool: pool}, nil
	})
}

// RepositoryPackage provides the link Repository and the Registry on top of it.
func RepositoryPackage(i *do.Injector) {
	do.Provide(i, newRepository)

	do.Provide(i, func(i *do.Injector) (*shortener.Registry, error) {
		opts := do.MustInvoke[*Options](i)
		repo := do.MustInvoke[*Repository](i)
		logger := do.MustInvoke[*zap.Logger](i)

		return shortener.NewRegistry(repo, shortener.NewHashGenerator(opts.CodeLength), logger,
			shortener.WithMaxSuffixAttempts(opts.MaxSuffixAttempts),
			shortener.WithMaxConflictRetries(opts.MaxConflictRetries),
			shortener.WithReservedCodes(handlers.ReservedCodes...),
		), nil
	})
}

func newRepository(i *do.Injector) (*Repository, error) {
	opts := do.MustInvoke[*Options](i)

	var base shortener.Repository

	switch opts.Storage {
	case BackendMemory:
		return &Repository{Repository: store.NewMemoryStore()}, nil
	case BackendRedis:
		base = store.NewRedisStore(do.MustInvoke[*RedisConnection](i).Client)
	case BackendPostgres:
		base = store.NewPostgresStore(do.MustInvoke[*PostgresConnection](i).Pool)

		if opts.CacheTTLSeconds > 0 {
			client := do.MustInvoke[*RedisConnection](i).Client
			base = store.NewRedisCacheRepository(base, client, time.Duration(opts.CacheTTLSeconds)*time.Second)
		}
	default:
		return nil, fmt.Errorf("%w: storage %q", ErrInvalidOption, opts.Storage)
	}

	if opts.LocalCacheSize <= 0 {
		return &Repository{Repository: base}, nil
	}

	local, err := store.NewLocalCacheRepository(base, int64(opts.LocalCacheSize), time.Hour)
	if err != nil {
		return nil, fmt.Errorf("create local cache: %w", err)
	}

	return &Repository{Repository: local, local: local}, nil
}

func RateLimitPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*ratelimit.PolicyLimiter, error) {
		opts := do.MustInvoke[*Options](i)

		var counters ratelimit.Store = store.NewRateLimitMemoryStore()
		if opts.RateLimitStore == BackendRedis {
			counters = store.NewRateLimitRedisStore(do.MustInvoke[*RedisConnection](i).Client)
		}

		return ratelimit.NewPolicyLimiter(counters, opts.RateLimitPolicy()), nil
	})
}

// BrokerPackage provides the watermill publisher and subscriber. The memory
// broker is a single in-process channel serving both roles.
func BrokerPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*gochannel.GoChannel, error) {
		logger := do.MustInvoke[*zap.Logger](i)

		return gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 1024}, messaging.NewZapLogger(logger)), nil
	})

	do.Provide(i, func(i *do.Injector) (message.Publisher, error) {
		opts := do.MustInvoke[*Options](i)

		if opts.Broker == BackendMemory {
			return do.MustInvoke[*gochannel.GoChannel](i), nil
		}

		return redisstream.NewPublisher(redisstream.PublisherConfig{
			Client:     do.MustInvoke[*RedisConnection](i).Client,
			Marshaller: redisstream.DefaultMarshallerUnmarshaller{},
		}, messaging.NewZapLogger(do.MustInvoke[*zap.Logger](i)))
	})

	do.Provide(i, func(i *do.Injector) (message.Subscriber, error) {
		opts := do.MustInvoke[*Options](i)

		if opts.Broker == BackendMemory {
			return do.MustInvoke[*gochannel.GoChannel](i), nil
		}

		return redisstream.NewSubscriber(redisstream.SubscriberConfig{
			Client:        do.MustInvoke[*RedisConnection](i).Client,
			Unmarshaller:  redisstream.DefaultMarshallerUnmarshaller{},
			ConsumerGroup: analyticsConsumerGroup,
		}, messaging.NewZapLogger(do.MustInvoke[*zap.Logger](i)))
	})
}

// AnalyticsPackage provides the analytics store and the publish functions.
func AnalyticsPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (AnalyticsStore, error) {
		opts := do.MustInvoke[*Options](i)

		if opts.AnalyticsStore == BackendRedis {
			return analyticsstore.NewRedis(do.MustInvoke[*RedisConnection](i).Client), nil
		}

		return analyticsstore.NewNoop(do.MustInvoke[*zap.Logger](i)), nil
	})

	do.Provide(i, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		return messaging.NewPublisherGroup(do.MustInvoke[message.Publisher](i)), nil
	})

	do.Provide(i, func(i *do.Injector) (*analytics.Publishers, error) {
		return analytics.NewPublishers(do.MustInvoke[*messaging.PublisherGroup](i).Publisher()), nil
	})
}

func ConsumerGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		logger := do.MustInvoke[*zap.Logger](i)
		subscriber := do.MustInvoke[message.Subscriber](i)
		sink := do.MustInvoke[AnalyticsStore](i)

		group := messaging.NewConsumerGroup(subscriber, logger)
		group.Add(analytics.NewConsumers(subscriber, sink, logger)...)

		return group, nil
	})
}

// HTTPPackage provides the router and the huma API with every route registered.
func HTTPPackage(i *do.Injector) {
	do.Provide(i, func(_ *do.Injector) (*chi.Mux, error) {
		return chi.NewMux(), nil
	})

	do.Provide(i, func(i *do.Injector) (huma.API, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		router := do.MustInvoke[*chi.Mux](i)

		newRequestID, err := nanoid.Standard(requestIDLength)
		if err != nil {
			return nil, fmt.Errorf("create request id generator: %w", err)
		}

		api := humachi.New(router, huma.DefaultConfig("ShortLink API", "1.0.0"))
		api.UseMiddleware(
			middleware.RequestMeta(api, newRequestID),
			middleware.RateLimit(api, do.MustInvoke[*ratelimit.PolicyLimiter](i),
				ratelimit.NewOperationScopeResolver(), logger),
		)

		linkHandler := handlers.NewLinkHandler(
			do.MustInvoke[*shortener.Registry](i),
			do.MustInvoke[AnalyticsStore](i),
			opts.PublicBaseURL(),
			do.MustInvoke[*analytics.Publishers](i),
			logger,
		)

		health.RegisterRoutes(api, health.NewHandler(healthChecks(i, opts),
			time.Duration(opts.HealthCheckTimeout)*time.Second, logger))
		handlers.RegisterRoutes(api, linkHandler)

		return api, nil
	})
}

func healthChecks(i *do.Injector, opts *Options) map[string]health.Checker {
	checks := map[string]health.Checker{}

	if opts.UsesRedis() {
		checks["redis"] = health.NewRedisChecker(do.MustInvoke[*RedisConnection](i).Client)
	}

	if opts.Storage == BackendPostgres {
		checks["postgres"] = do.MustInvoke[*PostgresConnection](i).Pool
	}

	return checks
}

// NewServer wires the http.Server for the configured port.
func NewServer(i *do.Injector) *http.Server {
	opts := do.MustInvoke[*Options](i)
	router := do.MustInvoke[*chi.Mux](i)

	// Resolving the API registers its routes on the router.
	_ = do.MustInvoke[huma.API](i)

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
