package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/plantline/opsconsole/internal/application/port"
	"github.com/plantline/opsconsole/internal/domain/shift"
	"github.com/plantline/opsconsole/internal/domain/wizard"
	"github.com/plantline/opsconsole/internal/infrastructure/persistence/sqlite"
)

// ShiftRepository implements port.ShiftRepository
type ShiftRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewShiftRepository creates a new shift repository
func NewShiftRepository(db *sql.DB, logger *zap.Logger) port.ShiftRepository {
	return &ShiftRepository{
		db:     db,
		logger: logger,
	}
}

// SaveClosed persists a closed shift with its full accumulator
func (r *ShiftRepository) SaveClosed(ctx context.Context, record *shift.ClosedShift) error {
	accumulator, err := json.Marshal(record.Accumulator)
	if err != nil {
		return fmt.Errorf("failed to encode accumulator: %w", err)
	}

	query := `
		INSERT INTO closed_shifts (
			id, shift_number, supervisor, start_time, end_time,
			duration_seconds, accumulator, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.getExecutor(ctx).ExecContext(ctx, query,
		record.ID,
		record.ShiftNumber,
		record.Supervisor,
		record.StartTime,
		record.EndTime,
		int64(record.Duration.Seconds()),
		string(accumulator),
		time.Now(),
	)
	if err != nil {
		r.logger.Error("Failed to save closed shift", zap.String("shift_id", record.ID), zap.Error(err))
		return fmt.Errorf("failed to save closed shift: %w", err)
	}

	return nil
}

// ListClosed returns closed shifts newest first
func (r *ShiftRepository) ListClosed(ctx context.Context, limit, offset int) ([]*shift.ClosedShift, error) {
	query := `
		SELECT id, shift_number, supervisor, start_time, end_time,
			duration_seconds, accumulator
		FROM closed_shifts
		ORDER BY end_time DESC
		LIMIT ? OFFSET ?
	`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list closed shifts", zap.Error(err))
		return nil, fmt.Errorf("failed to list closed shifts: %w", err)
	}
	defer rows.Close()

	var records []*shift.ClosedShift
	for rows.Next() {
		var record shift.ClosedShift
		var durationSeconds int64
		var accumulator string

		err := rows.Scan(
			&record.ID,
			&record.ShiftNumber,
			&record.Supervisor,
			&record.StartTime,
			&record.EndTime,
			&durationSeconds,
			&accumulator,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan closed shift: %w", err)
		}

		record.Duration = time.Duration(durationSeconds) * time.Second
		record.Accumulator = wizard.Snapshot{}
		if err := json.Unmarshal([]byte(accumulator), &record.Accumulator); err != nil {
			return nil, fmt.Errorf("failed to decode accumulator: %w", err)
		}
		records = append(records, &record)
	}

	return records, rows.Err()
}

// getExecutor returns appropriate executor based on context
func (r *ShiftRepository) getExecutor(ctx context.Context) executor {
	if tx := sqlite.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

// Verify interface compliance
var _ port.ShiftRepository = (*ShiftRepository)(nil)
