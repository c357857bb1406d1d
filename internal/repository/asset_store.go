package repository

import (
	"context"
	"io"
)

// AssetStore persists image files under generated unique names.
type AssetStore interface {
	// StoreUpload writes r under a fresh name keeping filename's extension.
	StoreUpload(ctx context.Context, filename string, r io.Reader) (string, error)
	// Path returns the filesystem location of a stored asset.
	Path(name string) (string, error)
}

// RemoteFetcher downloads a remote image into the asset store.
type RemoteFetcher interface {
	FetchRemote(ctx context.Context, rawURL string) (string, error)
}
