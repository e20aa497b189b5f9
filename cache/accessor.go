package cache

import (
	"context"
	"log/slog"
	"time"
)

// Payload markers. Every stored payload starts with one of them so that an
// explicit empty result can be told apart from a key that was never written.
const (
	markerEmpty byte = 'E'
	markerValue byte = 'V'
)

type accessor struct {
	store      Store
	codec      Codec
	defaultTTL time.Duration
	logger     *slog.Logger
}

// NewAccessor builds the cache-aside accessor on top of a long-lived store.
func NewAccessor(store Store, codec Codec, defaultTTL time.Duration, logger *slog.Logger) Accessor {
	if codec == nil {
		codec = NewJSONCodec()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &accessor{
		store:      store,
		codec:      codec,
		defaultTTL: defaultTTL,
		logger:     logger.With(slog.String("component", "cache")),
	}
}

func (a *accessor) Fetch(ctx context.Context, key string, dest any) State {
	payload, found, err := a.store.Get(ctx, key)
	if err != nil {
		a.logger.ErrorContext(ctx, "cache fetch failed", slog.String("key", key), slog.String("error", err.Error()))
		return Miss
	}
	if !found || len(payload) == 0 {
		a.logger.DebugContext(ctx, "cache miss", slog.String("key", key))
		return Miss
	}

	switch payload[0] {
	case markerEmpty:
		a.logger.DebugContext(ctx, "cache hit (empty)", slog.String("key", key))
		return Empty
	case markerValue:
		if err := a.codec.Unmarshal(payload[1:], dest); err != nil {
			a.logger.ErrorContext(ctx, "cache decode failed", slog.String("key", key), slog.String("error", err.Error()))
			return Miss
		}
		a.logger.DebugContext(ctx, "cache hit", slog.String("key", key))
		return Hit
	default:
		a.logger.WarnContext(ctx, "cache entry has unknown format", slog.String("key", key))
		return Miss
	}
}

func (a *accessor) Store(ctx context.Context, key string, value any) {
	a.StoreWithTTL(ctx, key, value, a.defaultTTL)
}

func (a *accessor) StoreWithTTL(ctx context.Context, key string, value any, ttl time.Duration) {
	data, err := a.codec.Marshal(value)
	if err != nil {
		a.logger.ErrorContext(ctx, "cache encode failed", slog.String("key", key), slog.String("error", err.Error()))
		return
	}

	payload := make([]byte, 0, len(data)+1)
	payload = append(payload, markerValue)
	payload = append(payload, data...)
	a.set(ctx, key, payload, ttl)
}

func (a *accessor) StoreEmpty(ctx context.Context, key string) {
	a.set(ctx, key, []byte{markerEmpty}, a.defaultTTL)
}

func (a *accessor) Invalidate(ctx context.Context, key string) {
	if err := a.store.Delete(ctx, key); err != nil {
		a.logger.ErrorContext(ctx, "cache invalidate failed", slog.String("key", key), slog.String("error", err.Error()))
		return
	}
	a.logger.DebugContext(ctx, "cache invalidated", slog.String("key", key))
}

func (a *accessor) set(ctx context.Context, key string, payload []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = a.defaultTTL
	}
	if err := a.store.Set(ctx, key, payload, ttl); err != nil {
		a.logger.ErrorContext(ctx, "cache store failed", slog.String("key", key), slog.String("error", err.Error()))
		return
	}
	a.logger.DebugContext(ctx, "cache stored", slog.String("key", key), slog.Duration("ttl", ttl))
}
