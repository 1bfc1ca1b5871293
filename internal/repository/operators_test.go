package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func scanAdminOperator(dest ...any) error {
	id := uuid.MustParse("aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa")
	created := time.Now()
	*dest[0].(*uuid.UUID) = id
	*dest[1].(*string) = "ops@example.com"
	*dest[2].(*string) = "Ops Admin"
	*dest[3].(*string) = "hashed"
	*dest[4].(*string) = "admin"
	*dest[5].(*bool) = true
	*dest[6].(*time.Time) = created
	*dest[7].(*time.Time) = created
	return nil
}

func TestPGXOperatorsRepository_FindByEmail(t *testing.T) {
	repo := &PGXOperatorsRepository{pool: &stubPool{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			return &stubRow{scan: scanAdminOperator}
		},
	}}

	op, err := repo.FindByEmail(context.Background(), "ops@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if op.Email != "ops@example.com" || op.Role != "admin" || !op.Active {
		t.Fatalf("unexpected operator: %+v", op)
	}

	repo.pool = &stubPool{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			return &stubRow{scan: func(dest ...any) error { return pgx.ErrNoRows }}
		},
	}
	if _, err := repo.FindByEmail(context.Background(), "missing@example.com"); !errors.Is(err, ErrOperatorNotFound) {
		t.Fatalf("expected ErrOperatorNotFound, got %v", err)
	}
}

func TestPGXOperatorsRepository_CreateDuplicateEmail(t *testing.T) {
	repo := &PGXOperatorsRepository{pool: &stubPool{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			return &stubRow{scan: func(dest ...any) error {
				return &pgconn.PgError{Code: "23505", ConstraintName: "operators_email_key"}
			}}
		},
	}}

	_, err := repo.Create(context.Background(), "ops@example.com", "Ops", "hashed", "viewer")
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestPGXOperatorsRepository_Create(t *testing.T) {
	repo := &PGXOperatorsRepository{pool: &stubPool{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			return &stubRow{scan: scanAdminOperator}
		},
	}}

	op, err := repo.Create(context.Background(), "ops@example.com", "Ops Admin", "hashed", "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if op.Name != "Ops Admin" {
		t.Fatalf("expected created operator, got %+v", op)
	}
}

func TestPGXOperatorsRepository_List(t *testing.T) {
	repo := &PGXOperatorsRepository{pool: &stubPool{
		queryFunc: func(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
			return &stubRows{scans: []func(dest ...any) error{scanAdminOperator}}, nil
		},
	}}

	ops, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ops) != 1 || ops[0].Email != "ops@example.com" {
		t.Fatalf("unexpected rows: %+v", ops)
	}
}

func TestPGXOperatorsRepository_Update(t *testing.T) {
	repo := &PGXOperatorsRepository{pool: &stubPool{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			return &stubRow{scan: scanAdminOperator}
		},
	}}

	role := "admin"
	op, err := repo.Update(context.Background(), uuid.New(), nil, nil, nil, &role, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if op.Role != "admin" {
		t.Fatalf("unexpected operator: %+v", op)
	}

	repo.pool = &stubPool{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			return &stubRow{scan: func(dest ...any) error { return pgx.ErrNoRows }}
		},
	}
	if _, err := repo.Update(context.Background(), uuid.New(), nil, nil, nil, &role, nil); !errors.Is(err, ErrOperatorNotFound) {
		t.Fatalf("expected ErrOperatorNotFound, got %v", err)
	}
}

func TestPGXOperatorsRepository_Delete(t *testing.T) {
	repo := &PGXOperatorsRepository{pool: &stubPool{
		execFunc: func(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
			return pgconn.NewCommandTag("DELETE 1"), nil
		},
	}}

	if err := repo.Delete(context.Background(), uuid.New()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	repo.pool = &stubPool{
		execFunc: func(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
			return pgconn.NewCommandTag("DELETE 0"), nil
		},
	}
	if err := repo.Delete(context.Background(), uuid.New()); !errors.Is(err, ErrOperatorNotFound) {
		t.Fatalf("expected ErrOperatorNotFound, got %v", err)
	}
}

func TestPGXOperatorsRepository_Count(t *testing.T) {
	repo := &PGXOperatorsRepository{pool: &stubPool{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			return &stubRow{scan: func(dest ...any) error {
				*dest[0].(*int) = 3
				return nil
			}}
		},
	}}

	count, err := repo.Count(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 operators, got %d", count)
	}
}
