package address

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// DefaultCacheTTL is how long provider responses are replayed before a
// refetch. Place data drifts slowly; a day keeps quota spend down without
// serving addresses that have since been renumbered.
const DefaultCacheTTL = 24 * time.Hour

// Cache is the storage port behind CachedProvider. Implementations live in
// internal/cachestore; MemoryCache covers tests and single-process use.
type Cache interface {
	// Get returns the value stored under key, or (nil, nil) on a miss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key for at least ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedProvider wraps a Provider with read-through caching and in-flight
// deduplication. Concurrent identical lookups share one provider call; cache
// failures degrade to a plain provider call and never surface to callers.
type CachedProvider struct {
	inner Provider
	cache Cache
	ttl   time.Duration
	group singleflight.Group
}

// CacheOption adjusts a CachedProvider.
type CacheOption func(*CachedProvider)

// WithTTL overrides DefaultCacheTTL for entries written by this provider.
func WithTTL(ttl time.Duration) CacheOption {
	return func(p *CachedProvider) { p.ttl = ttl }
}

// NewCachedProvider wraps inner with the given cache.
func NewCachedProvider(inner Provider, cache Cache, opts ...CacheOption) *CachedProvider {
	p := &CachedProvider{inner: inner, cache: cache, ttl: DefaultCacheTTL}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *CachedProvider) PlacePredictions(ctx context.Context, query string) ([]Prediction, error) {
	key := cacheKey("predictions", normalizeQueryText(query))
	return cachedCall(ctx, p, key, func(ctx context.Context) ([]Prediction, error) {
		return p.inner.PlacePredictions(ctx, query)
	})
}

func (p *CachedProvider) PlaceDetails(ctx context.Context, placeID string) (Candidate, error) {
	key := cacheKey("details", placeID)
	return cachedCall(ctx, p, key, func(ctx context.Context) (Candidate, error) {
		return p.inner.PlaceDetails(ctx, placeID)
	})
}

func (p *CachedProvider) ReverseGeocode(ctx context.Context, loc LatLng) ([]Candidate, error) {
	key := cacheKey("reverse", loc.String())
	return cachedCall(ctx, p, key, func(ctx context.Context) ([]Candidate, error) {
		return p.inner.ReverseGeocode(ctx, loc)
	})
}

func (p *CachedProvider) PostalCodeLookup(ctx context.Context, loc LatLng) (string, error) {
	key := cacheKey("postal", loc.String())
	return cachedCall(ctx, p, key, func(ctx context.Context) (string, error) {
		return p.inner.PostalCodeLookup(ctx, loc)
	})
}

// cachedCall is the read-through path shared by every operation: consult the
// cache, and on a miss collapse concurrent identical calls into one provider
// round trip whose result is written back best-effort. Provider errors are
// never cached.
func cachedCall[T any](ctx context.Context, p *CachedProvider, key string, miss func(context.Context) (T, error)) (T, error) {
	var zero T

	if raw, err := p.cache.Get(ctx, key); err != nil {
		zap.L().Debug("provider cache read failed",
			zap.String("key", shortKey(key)),
			zap.Error(err))
	} else if raw != nil {
		var out T
		if err := json.Unmarshal(raw, &out); err == nil {
			return out, nil
		}
		zap.L().Debug("provider cache entry corrupt, refetching",
			zap.String("key", shortKey(key)))
	}

	v, err, _ := p.group.Do(key, func() (any, error) {
		out, err := miss(ctx)
		if err != nil {
			return nil, err
		}
		if raw, marshalErr := json.Marshal(out); marshalErr == nil {
			if setErr := p.cache.Set(ctx, key, raw, p.ttl); setErr != nil {
				zap.L().Debug("provider cache write failed",
					zap.String("key", shortKey(key)),
					zap.Error(setErr))
			}
		}
		return out, nil
	})
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}

// cacheKey builds a stable key from the operation name and its payload. The
// payload is hashed so free-text queries cannot produce oversized or
// unprintable keys; the op prefix keeps keys greppable in the store.
func cacheKey(op, payload string) string {
	sum := sha256.Sum256([]byte(op + "\x00" + payload))
	return op + ":" + hex.EncodeToString(sum[:])
}

// normalizeQueryText canonicalizes a free-text query for cache keying: case
// folded, Unicode-normalized, interior whitespace collapsed. "Main  St" and
// "main st" share an entry. Fold casers are stateful, so one is built per
// call rather than shared.
func normalizeQueryText(query string) string {
	folded := cases.Fold().String(query)
	folded = norm.NFC.String(folded)
	return strings.Join(strings.Fields(folded), " ")
}

func shortKey(key string) string {
	if len(key) > 24 {
		return key[:24]
	}
	return key
}
