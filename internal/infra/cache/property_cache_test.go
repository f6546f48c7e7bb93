package cache

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"brokerage/config"
	"brokerage/internal/domain/entity"
	"brokerage/internal/domain/repository"
	"brokerage/internal/domain/valueobject"
	"brokerage/internal/errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleProperty(t *testing.T) *entity.Property {
	t.Helper()
	ci, err := valueobject.NewCI("7654321")
	require.NoError(t, err)
	price, err := valueobject.NewMoney(98500.5, "USD")
	require.NoError(t, err)
	capture, err := valueobject.NewPercentage(3)
	require.NoError(t, err)
	placement, err := valueobject.NewPercentage(2.5)
	require.NoError(t, err)
	published := time.Date(2024, time.April, 2, 0, 0, 0, 0, time.UTC)
	placer := uuid.New()

	return &entity.Property{
		ID:                  uuid.New(),
		AddressID:           uuid.New(),
		OwnerCI:             ci,
		PublicCode:          "PROP-100",
		Title:               "Departamento Sopocachi",
		Description:         "Tres dormitorios",
		Price:               price,
		Surface:             120.5,
		OperationType:       entity.OperationRent,
		State:               entity.StateRented,
		CaptorID:            uuid.New(),
		PlacerID:            &placer,
		CaptureDate:         time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		PublishDate:         &published,
		CloseDate:           &published,
		CaptureCommission:   capture,
		PlacementCommission: placement,
		CreatedAt:           time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC),
		UpdatedAt:           time.Date(2024, time.April, 2, 9, 0, 0, 0, time.UTC),
	}
}

func TestEncodeDecodeProperty(t *testing.T) {
	original := sampleProperty(t)

	payload, err := encodeProperty(original)
	require.NoError(t, err)

	decoded, err := decodeProperty(payload)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestDecodeProperty_Invalid(t *testing.T) {
	_, err := decodeProperty([]byte("{"))
	require.Error(t, err)

	_, err = decodeProperty([]byte(`{"price_cents":-5,"currency":"BOB"}`))
	require.Error(t, err)
}

func unreachableClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestRedisPropertyCache_FallsBackToLoader(t *testing.T) {
	client := unreachableClient()
	defer client.Close()
	cache := NewRedisPropertyCache(client, time.Minute, testLogger())
	want := sampleProperty(t)

	calls := 0
	got, err := cache.GetOrLoad(context.Background(), want.PublicCode, func(context.Context) (*entity.Property, error) {
		calls++

		return want, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, want, got)
	assert.NotSame(t, want, got)

	assert.Error(t, cache.Evict(context.Background(), want.PublicCode))
}

func TestRedisPropertyCache_LoaderErrorUnchanged(t *testing.T) {
	client := unreachableClient()
	defer client.Close()
	cache := NewRedisPropertyCache(client, time.Minute, testLogger())

	_, err := cache.GetOrLoad(context.Background(), "NOPE", func(context.Context) (*entity.Property, error) {
		return nil, repository.ErrPropertyNotFound
	})
	assert.Same(t, repository.ErrPropertyNotFound, err)
	assert.True(t, errors.Is(err, repository.ErrPropertyNotFound))
}

func TestNoopCache(t *testing.T) {
	cache := NewNoopPropertyCache()
	want := sampleProperty(t)

	got, err := cache.GetOrLoad(context.Background(), "PROP-100", func(context.Context) (*entity.Property, error) {
		return want, nil
	})
	require.NoError(t, err)
	assert.Same(t, want, got)
	assert.NoError(t, cache.Evict(context.Background(), "PROP-100"))
}

func TestNew_SelectsImplementation(t *testing.T) {
	lc := fxtest.NewLifecycle(t)

	disabled := New(Params{Lc: lc, Config: &config.Config{}, Logger: testLogger()})
	assert.IsType(t, noopCache{}, disabled)

	enabled := New(Params{
		Lc:     lc,
		Config: &config.Config{Cache: &config.CacheConfig{Enabled: true, Addr: "127.0.0.1:1", TTL: time.Minute}},
		Logger: testLogger(),
	})
	assert.IsType(t, &RedisPropertyCache{}, enabled)

	lc.RequireStart()
	lc.RequireStop()
}
