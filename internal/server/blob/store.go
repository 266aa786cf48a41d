// Package blob defines the binary-object storage contract used for avatar
// uploads and its S3 implementation.
package blob

import "context"

// Store persists raw bytes and returns an opaque reference string that is
// later handed back to clients as-is.
type Store interface {
	Put(ctx context.Context, folder, extension string, data []byte) (string, error)
}
