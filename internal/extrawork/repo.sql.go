package extrawork

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sefer-erp/sefer-erp/internal/money"
	"github.com/sefer-erp/sefer-erp/internal/platform/httpx"
)

// Repository provides PostgreSQL backed persistence for the ledger.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, record *ExtraWork) error {
	query := `
		INSERT INTO extra_work (id, work_date, description, supplier_price_kurus, factory_price_kurus,
			supplier_id, vehicle_id, project_id, status, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		RETURNING created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		record.ID, record.WorkDate, record.Description,
		record.SupplierPrice.Kurus(), nullableKurus(record.FactoryPrice),
		record.SupplierID, record.VehicleID, record.ProjectID,
		string(record.Status), record.CreatedBy).
		Scan(&record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		return fmt.Errorf("extrawork: create: %w", err)
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*ExtraWork, error) {
	query := `
		SELECT id, work_date, description, supplier_price_kurus, factory_price_kurus,
			supplier_id, vehicle_id, project_id, status, created_by, approved_by, approved_at,
			created_at, updated_at
		FROM extra_work WHERE id = $1`

	record, err := scanExtraWork(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: extra work %s", httpx.ErrNotFound, id)
		}
		return nil, err
	}
	return record, nil
}

func (r *Repository) Update(ctx context.Context, record *ExtraWork) error {
	query := `
		UPDATE extra_work
		SET work_date = $2, description = $3, supplier_price_kurus = $4, factory_price_kurus = $5,
			supplier_id = $6, vehicle_id = $7, project_id = $8, status = $9,
			approved_by = $10, approved_at = $11, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	var approvedBy pgtype.Int8
	if record.ApprovedBy != nil {
		approvedBy = pgtype.Int8{Int64: *record.ApprovedBy, Valid: true}
	}
	err := r.pool.QueryRow(ctx, query,
		record.ID, record.WorkDate, record.Description,
		record.SupplierPrice.Kurus(), nullableKurus(record.FactoryPrice),
		record.SupplierID, record.VehicleID, record.ProjectID,
		string(record.Status), approvedBy, record.ApprovedAt).
		Scan(&record.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: extra work %s", httpx.ErrNotFound, record.ID)
		}
		return fmt.Errorf("extrawork: update: %w", err)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM extra_work WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("extrawork: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: extra work %s", httpx.ErrNotFound, id)
	}
	return nil
}

func (r *Repository) List(ctx context.Context, filters ListFilters) ([]ExtraWork, int64, error) {
	conds := []string{"1=1"}
	args := []any{}
	idx := 1
	add := func(cond string, value any) {
		conds = append(conds, fmt.Sprintf(cond, idx))
		args = append(args, value)
		idx++
	}
	if filters.SupplierID != 0 {
		add("supplier_id = $%d", filters.SupplierID)
	}
	if filters.ProjectID != 0 {
		add("project_id = $%d", filters.ProjectID)
	}
	if filters.Year != 0 {
		add("EXTRACT(YEAR FROM work_date) = $%d", filters.Year)
	}
	if filters.Month != 0 {
		add("EXTRACT(MONTH FROM work_date) = $%d", filters.Month)
	}
	where := strings.Join(conds, " AND ")

	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM extra_work WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	perPage := filters.PerPage
	if perPage <= 0 {
		perPage = 50
	}
	page := filters.Page
	if page <= 0 {
		page = 1
	}
	query := fmt.Sprintf(`
		SELECT id, work_date, description, supplier_price_kurus, factory_price_kurus,
			supplier_id, vehicle_id, project_id, status, created_by, approved_by, approved_at,
			created_at, updated_at
		FROM extra_work WHERE %s
		ORDER BY work_date ASC, created_at ASC
		LIMIT $%d OFFSET $%d`, where, idx, idx+1)
	args = append(args, perPage, (page-1)*perPage)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []ExtraWork
	for rows.Next() {
		record, err := scanExtraWork(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *record)
	}
	return out, total, rows.Err()
}

// ListForPeriod returns approved and pending charges for a scope and
// period without pagination, for the billing aggregator.
func (r *Repository) ListForPeriod(ctx context.Context, filters ListFilters) ([]ExtraWork, error) {
	records, _, err := r.List(ctx, ListFilters{
		SupplierID: filters.SupplierID,
		ProjectID:  filters.ProjectID,
		Year:       filters.Year,
		Month:      filters.Month,
		PerPage:    10000,
	})
	return records, err
}

func scanExtraWork(row pgx.Row) (*ExtraWork, error) {
	var record ExtraWork
	var supplierPrice int64
	var factoryPrice, approvedBy pgtype.Int8
	var approvedAt pgtype.Timestamptz
	var status string
	err := row.Scan(&record.ID, &record.WorkDate, &record.Description, &supplierPrice, &factoryPrice,
		&record.SupplierID, &record.VehicleID, &record.ProjectID, &status, &record.CreatedBy,
		&approvedBy, &approvedAt, &record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		return nil, err
	}
	record.SupplierPrice = money.Amount(supplierPrice)
	if factoryPrice.Valid {
		fp := money.Amount(factoryPrice.Int64)
		record.FactoryPrice = &fp
	}
	if approvedBy.Valid {
		record.ApprovedBy = &approvedBy.Int64
	}
	if approvedAt.Valid {
		t := approvedAt.Time
		record.ApprovedAt = &t
	}
	record.Status = Status(status)
	return &record, nil
}

func nullableKurus(a *money.Amount) pgtype.Int8 {
	if a == nil {
		return pgtype.Int8{}
	}
	return pgtype.Int8{Int64: a.Kurus(), Valid: true}
}
