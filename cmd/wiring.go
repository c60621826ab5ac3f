package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/gatherhall/address-engine/internal/cachestore"
	"github.com/gatherhall/address-engine/internal/config"
	"github.com/gatherhall/address-engine/internal/resilience"
	"github.com/gatherhall/address-engine/pkg/address"
	"github.com/gatherhall/address-engine/pkg/googlemaps"
)

// buildProvider assembles the configured provider stack: the Google Maps
// client behind its breaker, wrapped in the cache driver the config selects.
// The returned cleanup closes whatever backing store was opened.
func buildProvider(ctx context.Context) (address.Provider, func(), error) {
	client := googlemaps.NewClient(cfg.Google.Key,
		googlemaps.WithHTTPClient(&http.Client{
			Timeout: time.Duration(cfg.Google.TimeoutSecs) * time.Second,
		}),
		googlemaps.WithRateLimit(cfg.Google.RateLimit),
		googlemaps.WithRetry(retryFromConfig(cfg.Retry)),
		googlemaps.WithBreaker(resilience.NewBreaker(resilience.BreakerConfig{
			Threshold:     cfg.Google.BreakerThreshold,
			Cooldown:      time.Duration(cfg.Google.BreakerCooldownSecs) * time.Second,
			OnStateChange: logBreakerTransition,
		})),
		googlemaps.WithLanguage(cfg.Google.Language),
		googlemaps.WithRegion(cfg.Google.Region),
	)

	noop := func() {}
	ttl := time.Duration(cfg.Cache.TTLHours) * time.Hour

	switch cfg.Cache.Driver {
	case "off":
		return client, noop, nil

	case "memory":
		mem := address.NewMemoryCache(cfg.Cache.MaxEntries)
		return address.NewCachedProvider(client, mem, address.WithTTL(ttl)), noop, nil

	case "sqlite":
		store, err := cachestore.NewSQLite(cfg.Cache.Path)
		if err != nil {
			return nil, nil, eris.Wrap(err, "open sqlite cache")
		}
		if err := store.Migrate(ctx); err != nil {
			store.Close() //nolint:errcheck
			return nil, nil, err
		}
		cleanup := func() { store.Close() } //nolint:errcheck
		return address.NewCachedProvider(client, store, address.WithTTL(ttl)), cleanup, nil

	case "postgres":
		store, err := cachestore.NewPostgres(ctx, cfg.Cache.DatabaseURL, &cfg.Cache.Pool)
		if err != nil {
			return nil, nil, eris.Wrap(err, "open postgres cache")
		}
		if err := store.Migrate(ctx); err != nil {
			store.Close() //nolint:errcheck
			return nil, nil, err
		}
		cleanup := func() { store.Close() } //nolint:errcheck
		return address.NewCachedProvider(client, store, address.WithTTL(ttl)), cleanup, nil

	default:
		return nil, nil, eris.Errorf("unknown cache driver %q", cfg.Cache.Driver)
	}
}

func retryFromConfig(rc config.RetryConfig) resilience.RetryConfig {
	return resilience.RetryConfig{
		Attempts:  rc.MaxAttempts,
		BaseDelay: time.Duration(rc.InitialBackoffMs) * time.Millisecond,
		MaxDelay:  time.Duration(rc.MaxBackoffMs) * time.Millisecond,
	}
}

func logBreakerTransition(from, to resilience.BreakerState) {
	zap.L().Warn("provider breaker state changed",
		zap.Stringer("from", from),
		zap.Stringer("to", to),
	)
}
