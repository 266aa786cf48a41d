// Package devices declares the persistence contract for best-effort device
// bookkeeping.
package devices

import "context"

// Repository defines the single upsert operation on device records.
type Repository interface {
	// Upsert stamps last_active_at for the (user, ip, device class) row,
	// inserting it on first sight.
	Upsert(ctx context.Context, userID, ipAddress, deviceClass string) error
}
