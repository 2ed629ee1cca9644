package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"bits/internal/config"
	"bits/internal/domain"
	"bits/internal/handler"
	"bits/internal/redis"
	"bits/internal/service"
	"bits/internal/zone"
)

const shutdownFlush = 10 * time.Second

// Services holds the wired domain services.
type Services struct {
	Registry    *zone.Registry
	Conditions  *service.ConditionsService
	Incidents   *service.IncidentService
	Pricing     *service.PricingService
	Predictions *service.PredictionService
	Sessions    *service.SessionService
	Chat        *service.ChatService
	Dashboard   *service.DashboardService
}

// App owns every long-lived resource of a running process.
type App struct {
	Config      *config.Config
	Logger      *zap.Logger
	NewRelicApp *newrelic.Application
	Storage     *Storage
	RedisClient *goredis.Client
	Services    Services

	// Clock returns the current time in the configured city timezone.
	Clock func() time.Time
}

// New opens storage and Redis, loads the zone table and wires the services.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger}

	loc, err := cfg.Surge.Location()
	if err != nil {
		return nil, err
	}
	a.Clock = func() time.Time { return time.Now().In(loc) }

	if cfg.NewRelic.Enabled {
		nrApp, err := newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
		)
		if err != nil {
			return nil, eris.Wrap(err, "failed to start new relic")
		}
		a.NewRelicApp = nrApp
	}

	registry, err := zone.Load(cfg.Zones.Path)
	if err != nil {
		return nil, err
	}
	logger.Info("zone table loaded", zap.Int("zones", registry.Len()), zap.String("path", cfg.Zones.Path))

	storage, err := NewStorage(ctx, cfg.Database, a.NewRelicApp)
	if err != nil {
		return nil, err
	}
	a.Storage = storage

	redisClient, err := NewRedisClient(ctx, cfg.Redis, a.NewRelicApp)
	if err != nil {
		storage.Close()
		return nil, err
	}
	a.RedisClient = redisClient

	provider, err := weatherProvider(cfg.Surge)
	if err != nil {
		a.Close()
		return nil, err
	}

	var (
		weatherStore redis.WeatherStoreInterface
		sessionStore redis.SessionStoreInterface
		lockStore    redis.LockStoreInterface
		geoIndex     redis.LocationStoreInterface
		events       redis.EventPublisherInterface
	)
	if redisClient != nil {
		cache := redis.NewCacheStore(redisClient)
		weatherStore, sessionStore = cache, cache
		lockStore = redis.NewLockStore(redisClient)
		geoIndex = redis.NewLocationStore(redisClient)
		events = redis.NewEventBus(redisClient)
	} else {
		memory := service.NewMemoryStore()
		weatherStore, sessionStore = memory, memory
	}

	conditions := service.NewConditionsService(provider, weatherStore, cfg.Surge.WeatherTTL, logger)
	incidents := service.NewIncidentService(storage.Incidents, registry, lockStore, geoIndex, events, logger)
	predictions := service.NewPredictionService(nil)
	sessions := service.NewSessionService(sessionStore)

	a.Services = Services{
		Registry:    registry,
		Conditions:  conditions,
		Incidents:   incidents,
		Pricing:     service.NewPricingService(registry, incidents, conditions, storage.Pricing, logger),
		Predictions: predictions,
		Sessions:    sessions,
		Chat:        service.NewChatService(incidents, conditions, predictions, sessions),
		Dashboard:   service.NewDashboardService(incidents, conditions, nil),
	}

	return a, nil
}

// Migrate creates the schema and, when seed is set, records the sample
// incidents into an empty ledger. The incident geo index is then rebuilt
// from the ledger. It returns the number of seeded rows.
func (a *App) Migrate(ctx context.Context, seed bool) (int, error) {
	if err := a.Storage.Schema.Migrate(ctx); err != nil {
		return 0, err
	}
	seeded := 0
	if seed {
		n, err := a.Services.Incidents.SeedSamples(ctx)
		if err != nil {
			return n, err
		}
		seeded = n
	}
	if _, err := a.Services.Incidents.ReindexLocations(ctx); err != nil {
		a.Logger.Warn("incident geo index not rebuilt", zap.Error(err))
	}
	return seeded, nil
}

// Router builds the HTTP router over the wired services.
func (a *App) Router() http.Handler {
	s := a.Services
	deps := RouterDeps{
		ZoneHandler:       handler.NewZoneHandler(s.Registry),
		PricingHandler:    handler.NewPricingHandler(s.Pricing, s.Conditions, s.Sessions, a.Logger).WithClock(a.Clock),
		IncidentHandler:   handler.NewIncidentHandler(s.Incidents),
		PredictionHandler: handler.NewPredictionHandler(s.Predictions, s.Conditions).WithClock(a.Clock),
		DashboardHandler:  handler.NewDashboardHandler(s.Dashboard).WithClock(a.Clock),
		ChatHandler:       handler.NewChatHandler(s.Chat, s.Sessions).WithClock(a.Clock),
		RedisClient:       a.RedisClient,
		NewRelicApp:       a.NewRelicApp,
		Logger:            a.Logger,
		Server:            a.Config.Server,
		AdminPassword:     a.Config.Admin.Password,
	}
	if a.RedisClient != nil {
		deps.LiveHandler = handler.NewLiveHandler(redis.NewEventBus(a.RedisClient), a.Logger)
	}
	return NewRouter(deps)
}

// Close releases storage, Redis and the New Relic agent.
func (a *App) Close() error {
	var errs []error
	if a.RedisClient != nil {
		errs = append(errs, a.RedisClient.Close())
	}
	if a.Storage != nil {
		errs = append(errs, a.Storage.Close())
	}
	if a.NewRelicApp != nil {
		a.NewRelicApp.Shutdown(shutdownFlush)
	}
	return errors.Join(errs...)
}

// weatherProvider samples weather at random unless a label is pinned.
func weatherProvider(cfg config.SurgeConfig) (service.WeatherProvider, error) {
	if cfg.Weather == "" {
		return service.NewRandomWeather(nil), nil
	}
	w := domain.Weather(cfg.Weather)
	if !service.IsKnownWeather(w) {
		return nil, eris.Errorf("unknown weather label %q", cfg.Weather)
	}
	return service.NewSequenceWeather(w), nil
}
