package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/jask/stickyscroll/internal/database"
)

// MaintenanceService clears the trace store from the command line.
type MaintenanceService struct {
	DB     *sql.DB
	Logger *slog.Logger
}

// Reset deletes every recorded trace and reports how many were removed.
// Events go with their trace through the foreign key cascade. The schema
// and migration version are left alone, so the next start seeds the sample
// trace again.
func (s *MaintenanceService) Reset(ctx context.Context) (int64, error) {
	if s.DB == nil {
		return 0, fmt.Errorf("reset traces: no trace store")
	}
	var removed int64
	err := database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM traces`)
		if err != nil {
			return fmt.Errorf("delete traces: %w", err)
		}
		removed, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, err
	}
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	// give the pages of long recordings back to the filesystem
	if _, err := s.DB.ExecContext(ctx, `VACUUM`); err != nil {
		logger.Warn("vacuum trace store", "err", err)
	}
	logger.Info("trace store reset", "removed", removed)
	return removed, nil
}
