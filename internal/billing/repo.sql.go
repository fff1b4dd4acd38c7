package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sefer-erp/sefer-erp/internal/money"
	"github.com/sefer-erp/sefer-erp/internal/platform/httpx"
	"github.com/sefer-erp/sefer-erp/internal/shared"
)

// Repository provides read-only PostgreSQL access for reports.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) GetSupplier(ctx context.Context, id int64) (*SupplierInfo, error) {
	var s SupplierInfo
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, tax_office, tax_number FROM suppliers WHERE id = $1`, id).
		Scan(&s.ID, &s.Name, &s.TaxOffice, &s.TaxNumber)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: supplier %d", httpx.ErrNotFound, id)
		}
		return nil, err
	}
	return &s, nil
}

func (r *Repository) GetProject(ctx context.Context, id int64) (*ProjectInfo, error) {
	var p ProjectInfo
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, client_name FROM projects WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.ClientName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: project %d", httpx.ErrNotFound, id)
		}
		return nil, err
	}
	return &p, nil
}

func (r *Repository) ListTimesheets(ctx context.Context, scope Scope, period shared.Period) ([]TimesheetRef, error) {
	query := `
		SELECT t.id, t.project_id, t.vehicle_id, v.plate
		FROM timesheets t
		JOIN vehicles v ON v.id = t.vehicle_id
		WHERE t.project_id = $1 AND t.year = $2 AND t.month = $3
		ORDER BY v.plate ASC`
	if scope.Kind == ScopeSupplier {
		query = `
		SELECT t.id, t.project_id, t.vehicle_id, v.plate
		FROM timesheets t
		JOIN vehicles v ON v.id = t.vehicle_id
		WHERE v.supplier_id = $1 AND t.year = $2 AND t.month = $3
		ORDER BY v.plate ASC`
	}

	rows, err := r.pool.Query(ctx, query, scope.ID, period.Year, int(period.Month))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TimesheetRef
	for rows.Next() {
		var ref TimesheetRef
		if err := rows.Scan(&ref.ID, &ref.ProjectID, &ref.VehicleID, &ref.VehiclePlate); err != nil {
			return nil, err
		}
		out = append(out, ref)
	}
	return out, rows.Err()
}

func (r *Repository) ListEntries(ctx context.Context, timesheetID int64) ([]EntryRef, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT route_id, trip_count, supplier_price_kurus, factory_price_kurus, vat_rate_percent
		FROM timesheet_entries
		WHERE timesheet_id = $1
		ORDER BY entry_date ASC, route_id ASC`, timesheetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EntryRef
	for rows.Next() {
		var e EntryRef
		var supplierPrice int64
		var factoryPrice pgtype.Int8
		if err := rows.Scan(&e.RouteID, &e.TripCount, &supplierPrice, &factoryPrice, &e.VATRatePercent); err != nil {
			return nil, err
		}
		e.SupplierPrice = money.Amount(supplierPrice)
		if factoryPrice.Valid {
			fp := money.Amount(factoryPrice.Int64)
			e.FactoryPrice = &fp
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *Repository) GetRouteMeta(ctx context.Context, routeID int64) (*RouteMeta, error) {
	var meta RouteMeta
	var factoryPrice pgtype.Int8
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, factory_unit_price_kurus FROM routes WHERE id = $1`, routeID).
		Scan(&meta.ID, &meta.Name, &factoryPrice)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: route %d", httpx.ErrNotFound, routeID)
		}
		return nil, err
	}
	if factoryPrice.Valid {
		fp := money.Amount(factoryPrice.Int64)
		meta.CurrentFactoryPrice = &fp
	}
	return &meta, nil
}

func (r *Repository) ListProjectVehicles(ctx context.Context, projectID int64) ([]VehicleRef, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, plate FROM vehicles WHERE project_id = $1 ORDER BY plate ASC`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []VehicleRef
	for rows.Next() {
		var v VehicleRef
		if err := rows.Scan(&v.ID, &v.Plate); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// ListExtraWork returns approved charges only; pending charges are
// invisible to billing until approved.
func (r *Repository) ListExtraWork(ctx context.Context, scope Scope, period shared.Period) ([]ExtraWorkRef, error) {
	scopeColumn := "project_id"
	if scope.Kind == ScopeSupplier {
		scopeColumn = "supplier_id"
	}
	query := fmt.Sprintf(`
		SELECT id, work_date, description, supplier_price_kurus, factory_price_kurus
		FROM extra_work
		WHERE %s = $1 AND status = 'APPROVED' AND work_date >= $2 AND work_date < $3
		ORDER BY work_date ASC, created_at ASC`, scopeColumn)

	rows, err := r.pool.Query(ctx, query, scope.ID, period.Start(), period.End())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ExtraWorkRef
	for rows.Next() {
		var e ExtraWorkRef
		var supplierPrice int64
		var factoryPrice pgtype.Int8
		if err := rows.Scan(&e.ID, &e.WorkDate, &e.Description, &supplierPrice, &factoryPrice); err != nil {
			return nil, err
		}
		e.SupplierPrice = money.Amount(supplierPrice)
		if factoryPrice.Valid {
			fp := money.Amount(factoryPrice.Int64)
			e.FactoryPrice = &fp
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *Repository) CountTimesheets(ctx context.Context, scope Scope, year int) (int64, error) {
	query := `SELECT COUNT(*) FROM timesheets WHERE project_id = $1 AND year = $2`
	if scope.Kind == ScopeSupplier {
		query = `
		SELECT COUNT(*) FROM timesheets t
		JOIN vehicles v ON v.id = t.vehicle_id
		WHERE v.supplier_id = $1 AND t.year = $2`
	}
	var count int64
	if err := r.pool.QueryRow(ctx, query, scope.ID, year).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
