package models

import "time"

// DeviceRecord is best-effort session bookkeeping, keyed by
// (user, ip, device class) and upserted on every token issuance.
type DeviceRecord struct {
	UserID       string
	IPAddress    string
	DeviceClass  string
	LastActiveAt time.Time
}
