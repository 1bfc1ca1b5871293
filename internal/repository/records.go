package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oakmere-data/enricher/internal/dto"
	"github.com/oakmere-data/enricher/internal/entity"
)

// ErrRecordNotFound is returned when no record matches the lookup criteria.
var ErrRecordNotFound = errors.New("record not found")

// RecordsRepository describes persistence operations for business records.
type RecordsRepository interface {
	SelectForEnrichment(ctx context.Context, limit, dayWindow int) ([]entity.Record, error)
	ApplyPatch(ctx context.Context, id uuid.UUID, patch entity.Patch) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Record, error)
	List(ctx context.Context, filter dto.RecordListFilter) ([]entity.Record, error)
	ImportRows(ctx context.Context, rows []ImportRowInput) (ImportSummary, error)
}

// ImportRowInput represents the fields accepted from one CSV row.
type ImportRowInput struct {
	CompanyName string
	Country     string
	SICCodes    *string
}

// ImportSummary counts how the store changed during an import.
type ImportSummary struct {
	Inserted int
	Updated  int
	Total    int
}

// incompleteClause matches records with at least one blank enrichable field.
// Fully populated rows never satisfy it, so repeated runs skip them.
const incompleteClause = `(website IS NULL OR website = '' OR email IS NULL OR email = '' OR phone IS NULL OR phone = '' OR industry IS NULL OR industry = '')`

const recordColumns = `id, company_name, country, sic_codes, website, email, phone, industry, enrichment_status, enriched_at, created_at, updated_at`

// PGXRecordsRepository implements RecordsRepository using pgx.
type PGXRecordsRepository struct {
	pool pgxPool
}

// NewPGXRecordsRepository wires a pgx backed repository.
func NewPGXRecordsRepository(pool *pgxpool.Pool) *PGXRecordsRepository {
	return &PGXRecordsRepository{pool: pool}
}

// SelectForEnrichment returns the oldest incomplete records, optionally
// restricted to rows touched within the last dayWindow days.
func (r *PGXRecordsRepository) SelectForEnrichment(ctx context.Context, limit, dayWindow int) ([]entity.Record, error) {
	query := strings.Builder{}
	query.WriteString(`SELECT ` + recordColumns + ` FROM records WHERE ` + incompleteClause)

	var (
		args []any
		idx  = 1
	)
	if dayWindow > 0 {
		query.WriteString(fmt.Sprintf(" AND updated_at >= NOW() - ($%d * INTERVAL '1 day')", idx))
		args = append(args, dayWindow)
		idx++
	}
	query.WriteString(" ORDER BY updated_at ASC")
	if limit > 0 {
		query.WriteString(fmt.Sprintf(" LIMIT $%d", idx))
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("select records for enrichment: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// ApplyPatch writes the outcome of one enrichment pass. Only resolved fields
// are touched; the status and timestamps are written unconditionally.
func (r *PGXRecordsRepository) ApplyPatch(ctx context.Context, id uuid.UUID, patch entity.Patch) error {
	setClauses := make([]string, 0, 7)
	args := make([]any, 0, 6)
	idx := 1

	if patch.Website != nil {
		setClauses = append(setClauses, fmt.Sprintf("website = $%d", idx))
		args = append(args, *patch.Website)
		idx++
	}
	if patch.Email != nil {
		setClauses = append(setClauses, fmt.Sprintf("email = $%d", idx))
		args = append(args, *patch.Email)
		idx++
	}
	if patch.Phone != nil {
		setClauses = append(setClauses, fmt.Sprintf("phone = $%d", idx))
		args = append(args, *patch.Phone)
		idx++
	}
	if patch.Industry != nil {
		setClauses = append(setClauses, fmt.Sprintf("industry = $%d", idx))
		args = append(args, *patch.Industry)
		idx++
	}

	setClauses = append(setClauses, fmt.Sprintf("enrichment_status = $%d", idx))
	args = append(args, patch.Status)
	idx++
	setClauses = append(setClauses, "enriched_at = NOW()", "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE records SET %s WHERE id = $%d`, strings.Join(setClauses, ", "), idx)

	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("patch record: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// GetByID retrieves a record by identifier.
func (r *PGXRecordsRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Record, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+recordColumns+` FROM records WHERE id = $1`, id)

	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("query record by id: %w", err)
	}
	return rec, nil
}

// List retrieves records matching the provided filter, most recently touched first.
func (r *PGXRecordsRepository) List(ctx context.Context, filter dto.RecordListFilter) ([]entity.Record, error) {
	baseQuery := strings.Builder{}
	baseQuery.WriteString(`SELECT ` + recordColumns + ` FROM records`)

	var (
		clauses []string
		args    []any
		idx     = 1
	)

	if filter.Q != "" {
		clauses = append(clauses, fmt.Sprintf("company_name ILIKE $%d", idx))
		args = append(args, fmt.Sprintf("%%%s%%", filter.Q))
		idx++
	}
	if filter.Country != "" {
		clauses = append(clauses, fmt.Sprintf("LOWER(country) = LOWER($%d)", idx))
		args = append(args, filter.Country)
		idx++
	}
	if filter.Status != "" {
		clauses = append(clauses, fmt.Sprintf("enrichment_status = $%d", idx))
		args = append(args, filter.Status)
		idx++
	}
	if filter.Incomplete {
		clauses = append(clauses, incompleteClause)
	}

	if len(clauses) > 0 {
		baseQuery.WriteString(" WHERE ")
		baseQuery.WriteString(strings.Join(clauses, " AND "))
	}

	baseQuery.WriteString(" ORDER BY updated_at DESC, company_name ASC")

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}
	offset := (page - 1) * perPage
	baseQuery.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", idx, idx+1))
	args = append(args, perPage, offset)

	rows, err := r.pool.Query(ctx, baseQuery.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

const importUpsertSQL = `
        INSERT INTO records (company_name, country, sic_codes, updated_at)
        VALUES ($1, $2, $3, NOW())
        ON CONFLICT (company_name, country) DO UPDATE SET
            sic_codes = COALESCE(EXCLUDED.sic_codes, records.sic_codes),
            updated_at = NOW()
        RETURNING xmax = 0;
    `

// ImportRows persists a batch of imported records with idempotent semantics.
// Existing rows keep their sic_codes unless the import provides a value.
func (r *PGXRecordsRepository) ImportRows(ctx context.Context, inputs []ImportRowInput) (ImportSummary, error) {
	var summary ImportSummary
	if len(inputs) == 0 {
		return summary, nil
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return summary, fmt.Errorf("start import tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, input := range inputs {
		rows, err := tx.Query(ctx, importUpsertSQL,
			input.CompanyName,
			input.Country,
			stringOrNil(input.SICCodes),
		)
		if err != nil {
			return summary, fmt.Errorf("import record %q: %w", input.CompanyName, err)
		}

		var inserted bool
		if rows.Next() {
			if scanErr := rows.Scan(&inserted); scanErr != nil {
				rows.Close()
				return summary, fmt.Errorf("scan import result: %w", scanErr)
			}
		} else {
			err := rows.Err()
			rows.Close()
			if err != nil {
				return summary, fmt.Errorf("import record %q: %w", input.CompanyName, err)
			}
			return summary, fmt.Errorf("import record %q: no result returned", input.CompanyName)
		}
		rows.Close()

		if inserted {
			summary.Inserted++
		} else {
			summary.Updated++
		}
		summary.Total++
	}

	if err := tx.Commit(ctx); err != nil {
		return summary, fmt.Errorf("commit import tx: %w", err)
	}

	return summary, nil
}

func scanRecord(row pgx.Row) (*entity.Record, error) {
	var (
		rec      entity.Record
		country  sql.NullString
		sicCodes sql.NullString
		website  sql.NullString
		email    sql.NullString
		phone    sql.NullString
		industry sql.NullString
		status   sql.NullString
		enriched sql.NullTime
	)

	err := row.Scan(
		&rec.ID,
		&rec.CompanyName,
		&country,
		&sicCodes,
		&website,
		&email,
		&phone,
		&industry,
		&status,
		&enriched,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.Country = nullStringToPtr(country)
	rec.SICCodes = nullStringToPtr(sicCodes)
	rec.Website = nullStringToPtr(website)
	rec.Email = nullStringToPtr(email)
	rec.Phone = nullStringToPtr(phone)
	rec.Industry = nullStringToPtr(industry)
	rec.EnrichmentStatus = nullStringToPtr(status)
	if enriched.Valid {
		ts := enriched.Time
		rec.EnrichedAt = &ts
	}

	return &rec, nil
}

func scanRecords(rows pgx.Rows) ([]entity.Record, error) {
	var records []entity.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

func nullStringToPtr(value sql.NullString) *string {
	if value.Valid {
		val := value.String
		return &val
	}
	return nil
}

func stringOrNil(value *string) any {
	if value == nil {
		return nil
	}
	if *value == "" {
		return nil
	}
	return *value
}
