package storage

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"brokerage/config"
	"brokerage/internal/domain/service"
	"brokerage/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
)

func TestBlobStore_MemBucket(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, "mem://")
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Get(ctx, "qr/PROP-001.png")
	assert.True(t, errors.Is(err, service.ErrAssetNotFound))

	require.NoError(t, store.Put(ctx, "qr/PROP-001.png", []byte("png"), "image/png"))

	data, err := store.Get(ctx, "qr/PROP-001.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), data)
}

func TestBlobStore_FileBucket(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, "file://"+t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Put(ctx, "qr/PROP-002.png", []byte{1, 2, 3}, "image/png"))
	data, err := store.Get(ctx, "qr/PROP-002.png")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, data)
}

func TestOpen_UnknownScheme(t *testing.T) {
	_, err := Open(context.Background(), "nope://bucket")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open bucket")
}

func TestNew_DefaultsToMemoryBucket(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	store, err := New(Params{
		Lc:     lc,
		Ctx:    context.Background(),
		Config: &config.Config{},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)

	require.NoError(t, store.Put(context.Background(), "k", []byte("v"), "text/plain"))
	lc.RequireStart()
	lc.RequireStop()
}
