// Package storage keeps generated assets in a gocloud.dev bucket.
package storage

import (
	"context"
	"log/slog"

	"brokerage/config"
	"brokerage/internal/domain/service"
	"brokerage/internal/errors"

	"go.uber.org/fx"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob" // file:// buckets
	_ "gocloud.dev/blob/gcsblob"  // gs:// buckets
	_ "gocloud.dev/blob/memblob"  // mem:// buckets
	"gocloud.dev/gcerrors"
)

const defaultBucketURL = "mem://"

// BlobStore is an AssetStore over a gocloud.dev bucket.
type BlobStore struct {
	bucket *blob.Bucket
}

// Params holds dependencies for the asset store, injected by Fx
type Params struct {
	fx.In

	Lc     fx.Lifecycle
	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

// New opens the configured bucket and closes it on shutdown.
func New(params Params) (service.AssetStore, error) {
	url := defaultBucketURL
	if params.Config.StorageBucket != nil && params.Config.StorageBucket.URL != "" {
		url = params.Config.StorageBucket.URL
	}

	store, err := Open(params.Ctx, url)
	if err != nil {
		return nil, err
	}
	params.Logger.Info("Asset bucket opened", slog.String("url", url))

	params.Lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return store.Close()
		},
	})

	return store, nil
}

// Open returns a store over the bucket at url.
func Open(ctx context.Context, url string) (*BlobStore, error) {
	bucket, err := blob.OpenBucket(ctx, url)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open bucket %s", url)
	}

	return &BlobStore{bucket: bucket}, nil
}

func (s *BlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.bucket.ReadAll(ctx, key)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, service.ErrAssetNotFound
		}

		return nil, errors.Wrapf(err, "failed to read asset %s", key)
	}

	return data, nil
}

func (s *BlobStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	err := s.bucket.WriteAll(ctx, key, data, &blob.WriterOptions{ContentType: contentType})

	return errors.Wrapf(err, "failed to write asset %s", key)
}

func (s *BlobStore) Close() error {
	return errors.WithStack(s.bucket.Close())
}

// Module provides the asset store FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(New),
)
