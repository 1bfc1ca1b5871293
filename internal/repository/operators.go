package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oakmere-data/enricher/internal/entity"
)

// ErrOperatorNotFound is returned when no operator matches the lookup criteria.
var (
	ErrOperatorNotFound = errors.New("operator not found")
	ErrEmailTaken       = errors.New("email already exists")
)

// OperatorsRepository declares persistence operations for operator accounts.
type OperatorsRepository interface {
	FindByEmail(ctx context.Context, email string) (*entity.Operator, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Operator, error)
	Create(ctx context.Context, email, name, passwordHash, role string) (*entity.Operator, error)
	List(ctx context.Context) ([]entity.Operator, error)
	Update(ctx context.Context, id uuid.UUID, email, name, passwordHash, role *string, active *bool) (*entity.Operator, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int, error)
}

const operatorColumns = `id, email, name, password_hash, role, active, created_at, updated_at`

// PGXOperatorsRepository implements OperatorsRepository with pgx.
type PGXOperatorsRepository struct {
	pool pgxPool
}

// NewPGXOperatorsRepository instantiates an operators repository.
func NewPGXOperatorsRepository(pool *pgxpool.Pool) *PGXOperatorsRepository {
	return &PGXOperatorsRepository{pool: pool}
}

// FindByEmail fetches an operator by email if present.
func (r *PGXOperatorsRepository) FindByEmail(ctx context.Context, email string) (*entity.Operator, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+operatorColumns+` FROM operators WHERE email = $1`, email)

	op, err := scanOperator(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOperatorNotFound
		}
		return nil, fmt.Errorf("query operator by email: %w", err)
	}
	return op, nil
}

// FindByID retrieves an operator by identifier.
func (r *PGXOperatorsRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Operator, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+operatorColumns+` FROM operators WHERE id = $1`, id)

	op, err := scanOperator(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOperatorNotFound
		}
		return nil, fmt.Errorf("query operator by id: %w", err)
	}
	return op, nil
}

// Create inserts a new operator row.
func (r *PGXOperatorsRepository) Create(ctx context.Context, email, name, passwordHash, role string) (*entity.Operator, error) {
	row := r.pool.QueryRow(ctx, `
        INSERT INTO operators (email, name, password_hash, role)
        VALUES ($1, $2, $3, $4)
        RETURNING `+operatorColumns+`
    `, email, name, passwordHash, role)

	op, err := scanOperator(row)
	if err != nil {
		if isUniqueViolation(err, "operators_email_key") {
			return nil, fmt.Errorf("%w: %v", ErrEmailTaken, err)
		}
		return nil, fmt.Errorf("insert operator: %w", err)
	}
	return op, nil
}

// List returns all operators ordered by creation date (desc).
func (r *PGXOperatorsRepository) List(ctx context.Context) ([]entity.Operator, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+operatorColumns+` FROM operators ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list operators: %w", err)
	}
	defer rows.Close()

	var ops []entity.Operator
	for rows.Next() {
		op, err := scanOperator(rows)
		if err != nil {
			return nil, fmt.Errorf("scan operator row: %w", err)
		}
		ops = append(ops, *op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate operators: %w", err)
	}
	return ops, nil
}

// Update patches operator attributes.
func (r *PGXOperatorsRepository) Update(ctx context.Context, id uuid.UUID, email, name, passwordHash, role *string, active *bool) (*entity.Operator, error) {
	setClauses := make([]string, 0)
	args := make([]any, 0)
	idx := 1

	if email != nil {
		setClauses = append(setClauses, fmt.Sprintf("email = $%d", idx))
		args = append(args, *email)
		idx++
	}
	if name != nil {
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", idx))
		args = append(args, *name)
		idx++
	}
	if passwordHash != nil {
		setClauses = append(setClauses, fmt.Sprintf("password_hash = $%d", idx))
		args = append(args, *passwordHash)
		idx++
	}
	if role != nil {
		setClauses = append(setClauses, fmt.Sprintf("role = $%d", idx))
		args = append(args, *role)
		idx++
	}
	if active != nil {
		setClauses = append(setClauses, fmt.Sprintf("active = $%d", idx))
		args = append(args, *active)
		idx++
	}

	if len(setClauses) == 0 {
		return r.FindByID(ctx, id)
	}

	setClauses = append(setClauses, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE operators SET %s WHERE id = $%d RETURNING `+operatorColumns, strings.Join(setClauses, ", "), idx)

	op, err := scanOperator(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOperatorNotFound
		}
		if isUniqueViolation(err, "operators_email_key") {
			return nil, fmt.Errorf("%w: %v", ErrEmailTaken, err)
		}
		return nil, fmt.Errorf("update operator: %w", err)
	}
	return op, nil
}

// Delete removes an operator by id.
func (r *PGXOperatorsRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM operators WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete operator: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrOperatorNotFound
	}
	return nil
}

// Count reports how many operator accounts exist.
func (r *PGXOperatorsRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM operators`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count operators: %w", err)
	}
	return count, nil
}

func scanOperator(row pgx.Row) (*entity.Operator, error) {
	var op entity.Operator
	err := row.Scan(
		&op.ID,
		&op.Email,
		&op.Name,
		&op.PasswordHash,
		&op.Role,
		&op.Active,
		&op.CreatedAt,
		&op.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &op, nil
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == constraint
}
