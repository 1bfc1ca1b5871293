package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oakmere-data/enricher/internal/entity"
)

// ErrRunNotFound is returned when no run matches the lookup criteria.
var ErrRunNotFound = errors.New("run not found")

// RunsRepository describes persistence operations for enrichment runs.
type RunsRepository interface {
	Create(ctx context.Context, trigger string) (*entity.Run, error)
	Finish(ctx context.Context, id uuid.UUID, status string, selected, patched, failed int, runErr *string) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Run, error)
	ListRecent(ctx context.Context, limit int) ([]entity.Run, error)
}

const runColumns = `id, trigger, status, records_selected, records_patched, records_failed, started_at, finished_at, error`

// PGXRunsRepository implements RunsRepository using pgx.
type PGXRunsRepository struct {
	pool pgxPool
}

// NewPGXRunsRepository wires a pgx backed repository.
func NewPGXRunsRepository(pool *pgxpool.Pool) *PGXRunsRepository {
	return &PGXRunsRepository{pool: pool}
}

// Create inserts a running run row and returns it.
func (r *PGXRunsRepository) Create(ctx context.Context, trigger string) (*entity.Run, error) {
	row := r.pool.QueryRow(ctx, `
        INSERT INTO runs (trigger, status)
        VALUES ($1, $2)
        RETURNING `+runColumns+`
    `, trigger, entity.RunRunning)

	run, err := scanRun(row)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// Finish closes a run with its final status and counters.
func (r *PGXRunsRepository) Finish(ctx context.Context, id uuid.UUID, status string, selected, patched, failed int, runErr *string) error {
	cmd, err := r.pool.Exec(ctx, `
        UPDATE runs
        SET status = $2,
            records_selected = $3,
            records_patched = $4,
            records_failed = $5,
            error = $6,
            finished_at = NOW()
        WHERE id = $1
    `, id, status, selected, patched, failed, runErr)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrRunNotFound
	}
	return nil
}

// GetByID retrieves a run by identifier.
func (r *PGXRunsRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Run, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+runColumns+` FROM runs WHERE id = $1`, id)

	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("query run by id: %w", err)
	}
	return run, nil
}

// ListRecent returns the latest runs, newest first.
func (r *PGXRunsRepository) ListRecent(ctx context.Context, limit int) ([]entity.Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.pool.Query(ctx, `SELECT `+runColumns+` FROM runs ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []entity.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

func scanRun(row pgx.Row) (*entity.Run, error) {
	var (
		run      entity.Run
		finished sql.NullTime
		runErr   sql.NullString
	)

	err := row.Scan(
		&run.ID,
		&run.Trigger,
		&run.Status,
		&run.Selected,
		&run.Patched,
		&run.Failed,
		&run.StartedAt,
		&finished,
		&runErr,
	)
	if err != nil {
		return nil, err
	}

	if finished.Valid {
		ts := finished.Time
		run.FinishedAt = &ts
	}
	run.Error = nullStringToPtr(runErr)

	return &run, nil
}
