package assets

import "errors"

var (
	// ErrAssetStore indicates the asset directory could not be written.
	ErrAssetStore = errors.New("asset store failed")

	// ErrAssetFetch indicates a remote image could not be downloaded.
	ErrAssetFetch = errors.New("asset fetch failed")

	ErrAssetTooLarge = errors.New("asset too large")

	// ErrInvalidName indicates a lookup for a name that cannot be a stored asset.
	ErrInvalidName = errors.New("invalid asset name")
)
