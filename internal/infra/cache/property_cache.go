// Package cache provides the read-through cache for property lookups by code.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"brokerage/config"
	"brokerage/internal/domain/entity"
	"brokerage/internal/domain/service"
	"brokerage/internal/domain/valueobject"
	"brokerage/internal/errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"golang.org/x/sync/singleflight"
)

const keyPrefix = "property:code:"

// RedisPropertyCache stores properties as JSON under property:code:<code>.
// Redis failures degrade to a direct load.
type RedisPropertyCache struct {
	client redis.Cmdable
	ttl    time.Duration
	group  singleflight.Group
	logger *slog.Logger
}

// NewRedisPropertyCache wraps client; ttl bounds every entry.
func NewRedisPropertyCache(client redis.Cmdable, ttl time.Duration, logger *slog.Logger) *RedisPropertyCache {
	return &RedisPropertyCache{client: client, ttl: ttl, logger: logger}
}

func (c *RedisPropertyCache) GetOrLoad(ctx context.Context, code string, load service.PropertyLoader) (*entity.Property, error) {
	key := keyPrefix + code

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		property, decodeErr := decodeProperty(data)
		if decodeErr == nil {
			return property, nil
		}
		c.logger.WarnContext(ctx, "Discarding undecodable cache entry",
			slog.String("key", key), slog.Any("error", decodeErr))
	case !errors.Is(err, redis.Nil):
		c.logger.WarnContext(ctx, "Property cache read failed",
			slog.String("key", key), slog.Any("error", err))
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		property, err := load(ctx)
		if err != nil {
			return nil, err
		}
		c.store(ctx, key, property)

		return property, nil
	})
	if err != nil {
		return nil, err //nolint:wrapcheck // loader errors are returned unchanged.
	}

	return cloneFromShared(v.(*entity.Property)), nil
}

func (c *RedisPropertyCache) Evict(ctx context.Context, code string) error {
	if err := c.client.Del(ctx, keyPrefix+code).Err(); err != nil {
		return errors.Wrapf(err, "failed to evict property %s", code)
	}

	return nil
}

func (c *RedisPropertyCache) store(ctx context.Context, key string, property *entity.Property) {
	payload, err := encodeProperty(property)
	if err != nil {
		c.logger.WarnContext(ctx, "Failed to encode property for cache", slog.Any("error", err))

		return
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "Property cache write failed",
			slog.String("key", key), slog.Any("error", err))
	}
}

// cloneFromShared gives each singleflight caller its own copy.
func cloneFromShared(p *entity.Property) *entity.Property {
	cp := *p

	return &cp
}

// cachedProperty is the JSON shape of a cached entity.Property.
type cachedProperty struct {
	ID                  uuid.UUID  `json:"id"`
	AddressID           uuid.UUID  `json:"address_id"`
	OwnerCI             string     `json:"owner_ci"`
	PublicCode          string     `json:"public_code"`
	Title               string     `json:"title"`
	Description         string     `json:"description"`
	PriceCents          int64      `json:"price_cents"`
	Currency            string     `json:"currency"`
	Surface             float64    `json:"surface"`
	OperationType       string     `json:"operation_type"`
	State               string     `json:"state"`
	CaptorID            uuid.UUID  `json:"captor_id"`
	PlacerID            *uuid.UUID `json:"placer_id,omitempty"`
	CaptureDate         time.Time  `json:"capture_date"`
	PublishDate         *time.Time `json:"publish_date,omitempty"`
	CloseDate           *time.Time `json:"close_date,omitempty"`
	CaptureCommission   float64    `json:"capture_commission"`
	PlacementCommission float64    `json:"placement_commission"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

func encodeProperty(p *entity.Property) ([]byte, error) {
	payload, err := json.Marshal(cachedProperty{
		ID:                  p.ID,
		AddressID:           p.AddressID,
		OwnerCI:             p.OwnerCI.String(),
		PublicCode:          p.PublicCode,
		Title:               p.Title,
		Description:         p.Description,
		PriceCents:          p.Price.Cents(),
		Currency:            string(p.Price.Currency()),
		Surface:             p.Surface,
		OperationType:       string(p.OperationType),
		State:               string(p.State),
		CaptorID:            p.CaptorID,
		PlacerID:            p.PlacerID,
		CaptureDate:         p.CaptureDate,
		PublishDate:         p.PublishDate,
		CloseDate:           p.CloseDate,
		CaptureCommission:   p.CaptureCommission.Value(),
		PlacementCommission: p.PlacementCommission.Value(),
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	})

	return payload, errors.WithStack(err)
}

func decodeProperty(data []byte) (*entity.Property, error) {
	var c cachedProperty
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrap(err, "failed to decode cached property")
	}

	price, err := valueobject.NewMoneyFromCents(c.PriceCents, c.Currency)
	if err != nil {
		return nil, err
	}
	capture, err := valueobject.NewPercentage(c.CaptureCommission)
	if err != nil {
		return nil, err
	}
	placement, err := valueobject.NewPercentage(c.PlacementCommission)
	if err != nil {
		return nil, err
	}
	var ownerCI valueobject.CI
	if c.OwnerCI != "" {
		if ownerCI, err = valueobject.NewCI(c.OwnerCI); err != nil {
			return nil, err
		}
	}

	return &entity.Property{
		ID:                  c.ID,
		AddressID:           c.AddressID,
		OwnerCI:             ownerCI,
		PublicCode:          c.PublicCode,
		Title:               c.Title,
		Description:         c.Description,
		Price:               price,
		Surface:             c.Surface,
		OperationType:       entity.OperationType(c.OperationType),
		State:               entity.PropertyState(c.State),
		CaptorID:            c.CaptorID,
		PlacerID:            c.PlacerID,
		CaptureDate:         c.CaptureDate,
		PublishDate:         c.PublishDate,
		CloseDate:           c.CloseDate,
		CaptureCommission:   capture,
		PlacementCommission: placement,
		CreatedAt:           c.CreatedAt,
		UpdatedAt:           c.UpdatedAt,
	}, nil
}

// noopCache always loads.
type noopCache struct{}

// NewNoopPropertyCache returns a cache that never stores anything.
func NewNoopPropertyCache() service.PropertyCache {
	return noopCache{}
}

func (noopCache) GetOrLoad(ctx context.Context, _ string, load service.PropertyLoader) (*entity.Property, error) {
	return load(ctx)
}

func (noopCache) Evict(context.Context, string) error { return nil }

// Params holds dependencies for the property cache, injected by Fx
type Params struct {
	fx.In

	Lc     fx.Lifecycle
	Config *config.Config
	Logger *slog.Logger
}

// New returns a Redis-backed cache when cache.enabled is set, otherwise a no-op cache.
func New(params Params) service.PropertyCache {
	cfg := params.Config.Cache
	if cfg == nil || !cfg.Enabled {
		params.Logger.Info("Property cache disabled")

		return NewNoopPropertyCache()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	params.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				// Reads fall back to storage; a cold Redis is not fatal.
				params.Logger.Warn("Redis ping failed", slog.String("addr", cfg.Addr), slog.Any("error", err))
			}

			return nil
		},
		OnStop: func(context.Context) error {
			return errors.WithStack(client.Close())
		},
	})

	return NewRedisPropertyCache(client, cfg.TTL, params.Logger)
}

// Module provides the property cache FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(New),
)
