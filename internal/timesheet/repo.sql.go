package timesheet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sefer-erp/sefer-erp/internal/money"
	"github.com/sefer-erp/sefer-erp/internal/platform/httpx"
	"github.com/sefer-erp/sefer-erp/internal/shared"
)

// Repository provides PostgreSQL backed persistence for the grid.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const uniqueViolation = "23505"

func (r *Repository) CreateTimesheet(ctx context.Context, projectID, vehicleID int64, period shared.Period) (*Timesheet, error) {
	query := `
		INSERT INTO timesheets (project_id, vehicle_id, year, month, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, created_at, updated_at`

	ts := Timesheet{ProjectID: projectID, VehicleID: vehicleID, Year: period.Year, Month: period.Month}
	err := r.pool.QueryRow(ctx, query, projectID, vehicleID, period.Year, int(period.Month)).
		Scan(&ts.ID, &ts.CreatedAt, &ts.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, fmt.Errorf("%w: timesheet exists for %s", httpx.ErrConflict, period)
		}
		return nil, fmt.Errorf("timesheet: create: %w", err)
	}
	return &ts, nil
}

func (r *Repository) FindTimesheet(ctx context.Context, projectID, vehicleID int64, period shared.Period) (*Timesheet, error) {
	query := `
		SELECT id, project_id, vehicle_id, year, month, created_at, updated_at
		FROM timesheets
		WHERE project_id = $1 AND vehicle_id = $2 AND year = $3 AND month = $4`

	return r.scanTimesheet(r.pool.QueryRow(ctx, query, projectID, vehicleID, period.Year, int(period.Month)))
}

func (r *Repository) GetTimesheet(ctx context.Context, id int64) (*Timesheet, error) {
	query := `
		SELECT id, project_id, vehicle_id, year, month, created_at, updated_at
		FROM timesheets WHERE id = $1`

	return r.scanTimesheet(r.pool.QueryRow(ctx, query, id))
}

func (r *Repository) scanTimesheet(row pgx.Row) (*Timesheet, error) {
	var ts Timesheet
	var month int
	err := row.Scan(&ts.ID, &ts.ProjectID, &ts.VehicleID, &ts.Year, &month, &ts.CreatedAt, &ts.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: timesheet", httpx.ErrNotFound)
		}
		return nil, err
	}
	ts.Month = time.Month(month)
	return &ts, nil
}

// UpsertEntry relies on the (timesheet_id, entry_date, route_id)
// unique index. Conflicting writes only replace the trip count, so
// the snapshot stays frozen at its first-write values.
func (r *Repository) UpsertEntry(ctx context.Context, input EntryUpsert, refreshSnapshot bool) (*Entry, error) {
	query := `
		INSERT INTO timesheet_entries (timesheet_id, entry_date, route_id, trip_count,
			supplier_price_kurus, factory_price_kurus, vat_rate_percent, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		ON CONFLICT (timesheet_id, entry_date, route_id)
		DO UPDATE SET trip_count = EXCLUDED.trip_count, updated_at = NOW()
		RETURNING id, supplier_price_kurus, factory_price_kurus, vat_rate_percent, created_at, updated_at`

	if refreshSnapshot {
		query = `
		INSERT INTO timesheet_entries (timesheet_id, entry_date, route_id, trip_count,
			supplier_price_kurus, factory_price_kurus, vat_rate_percent, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		ON CONFLICT (timesheet_id, entry_date, route_id)
		DO UPDATE SET trip_count = EXCLUDED.trip_count,
			supplier_price_kurus = EXCLUDED.supplier_price_kurus,
			factory_price_kurus = EXCLUDED.factory_price_kurus,
			vat_rate_percent = EXCLUDED.vat_rate_percent,
			updated_at = NOW()
		RETURNING id, supplier_price_kurus, factory_price_kurus, vat_rate_percent, created_at, updated_at`
	}

	entry := Entry{
		TimesheetID: input.TimesheetID,
		EntryDate:   input.EntryDate,
		RouteID:     input.RouteID,
		TripCount:   input.TripCount,
	}
	var supplierPrice int64
	var factoryPrice pgtype.Int8
	var vatRate int
	err := r.pool.QueryRow(ctx, query,
		input.TimesheetID, input.EntryDate, input.RouteID, input.TripCount,
		input.Snapshot.SupplierUnitPrice.Kurus(), nullableKurus(input.Snapshot.FactoryUnitPrice), input.Snapshot.VATRatePercent).
		Scan(&entry.ID, &supplierPrice, &factoryPrice, &vatRate, &entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("timesheet: upsert entry: %w", err)
	}
	entry.Snapshot = snapshotFromColumns(supplierPrice, factoryPrice, vatRate)
	return &entry, nil
}

func (r *Repository) DeleteEntry(ctx context.Context, timesheetID int64, date time.Time, routeID int64) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM timesheet_entries WHERE timesheet_id = $1 AND entry_date = $2 AND route_id = $3`,
		timesheetID, date, routeID)
	if err != nil {
		return fmt.Errorf("timesheet: delete entry: %w", err)
	}
	return nil
}

func (r *Repository) ListEntries(ctx context.Context, timesheetID int64) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, timesheet_id, entry_date, route_id, trip_count,
			supplier_price_kurus, factory_price_kurus, vat_rate_percent, created_at, updated_at
		FROM timesheet_entries
		WHERE timesheet_id = $1
		ORDER BY entry_date ASC, route_id ASC`, timesheetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var supplierPrice int64
		var factoryPrice pgtype.Int8
		var vatRate int
		if err := rows.Scan(&e.ID, &e.TimesheetID, &e.EntryDate, &e.RouteID, &e.TripCount,
			&supplierPrice, &factoryPrice, &vatRate, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		e.Snapshot = snapshotFromColumns(supplierPrice, factoryPrice, vatRate)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *Repository) GetRouteInfo(ctx context.Context, routeID int64) (*RouteInfo, error) {
	var info RouteInfo
	var supplierPrice int64
	var factoryPrice pgtype.Int8
	var vatRate int
	err := r.pool.QueryRow(ctx, `
		SELECT id, project_id, supplier_unit_price_kurus, factory_unit_price_kurus, vat_rate_percent
		FROM routes WHERE id = $1`, routeID).
		Scan(&info.ID, &info.ProjectID, &supplierPrice, &factoryPrice, &vatRate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: route %d", httpx.ErrNotFound, routeID)
		}
		return nil, err
	}
	info.Snapshot = snapshotFromColumns(supplierPrice, factoryPrice, vatRate)
	return &info, nil
}

func snapshotFromColumns(supplierPrice int64, factoryPrice pgtype.Int8, vatRate int) PriceSnapshot {
	snap := PriceSnapshot{
		SupplierUnitPrice: money.Amount(supplierPrice),
		VATRatePercent:    vatRate,
	}
	if factoryPrice.Valid {
		fp := money.Amount(factoryPrice.Int64)
		snap.FactoryUnitPrice = &fp
	}
	return snap
}

func nullableKurus(a *money.Amount) pgtype.Int8 {
	if a == nil {
		return pgtype.Int8{}
	}
	return pgtype.Int8{Int64: a.Kurus(), Valid: true}
}
