package devices

import (
	"context"
	"fmt"

	"github.com/isaidso/auth/internal/dbx"
)

// PostgresRepository implements Repository over dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, userID, ipAddress, deviceClass string) error {
	query := `
		INSERT INTO user_devices (user_id, ip_address, device_class, last_active_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (user_id, ip_address, device_class)
		DO UPDATE SET last_active_at = now()
	`
	if _, err := r.db.ExecContext(ctx, query, userID, ipAddress, deviceClass); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
