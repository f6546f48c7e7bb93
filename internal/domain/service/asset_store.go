package service

import (
	"context"

	"brokerage/internal/errors"
)

// ErrAssetNotFound is returned by AssetStore.Get for unknown keys.
var ErrAssetNotFound = errors.New("asset not found")

// AssetStore keeps generated binary assets such as listing QR images.
type AssetStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte, contentType string) error
}
