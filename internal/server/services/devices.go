// This file implements DeviceService: best-effort bookkeeping of which
// devices a user logs in from. Failures here never fail the calling
// operation.
package services

import (
	"context"
	"database/sql"
	"strings"

	"github.com/isaidso/auth/internal/logging"
	"github.com/isaidso/auth/internal/server/repositories/repomanager"
)

// deviceClasses is the ordered substring lookup applied to the user agent;
// the first match wins.
var deviceClasses = []struct {
	needle string
	class  string
}{
	{"Windows", "Windows PC"},
	{"Macintosh", "Mac"},
	{"Linux", "Linux PC"},
	{"Android", "Android Device"},
	{"iPhone", "iPhone"},
}

// DeviceClassUnknown is recorded when no substring matches.
const DeviceClassUnknown = "Unknown Device"

// DeviceService records login/refresh events against the device table.
type DeviceService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewDeviceService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *DeviceService {
	return &DeviceService{db: db, repomanager: m, logger: logger.With("module", "devices")}
}

// ClassifyUserAgent maps a self-reported user agent to a coarse device class.
func ClassifyUserAgent(userAgent string) string {
	for _, dc := range deviceClasses {
		if strings.Contains(userAgent, dc.needle) {
			return dc.class
		}
	}
	return DeviceClassUnknown
}

// Record upserts the (user, ip, device class) row's last_active_at. Errors
// are logged and swallowed.
func (s *DeviceService) Record(ctx context.Context, userID, ip, userAgent string) {
	class := ClassifyUserAgent(userAgent)
	if err := s.repomanager.Devices(s.db).Upsert(ctx, userID, ip, class); err != nil {
		s.logger.Error(ctx, "device record failed", "user_id", userID, "error", err)
	}
}
