package masterdata

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sefer-erp/sefer-erp/internal/money"
	"github.com/sefer-erp/sefer-erp/internal/platform/httpx"
)

// Repository provides PostgreSQL backed persistence for master data.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// --- Suppliers ---

func (r *Repository) CreateSupplier(ctx context.Context, input SupplierInput) (*Supplier, error) {
	query := `
		INSERT INTO suppliers (name, tax_office, tax_number, phone, email, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, created_at, updated_at`

	s := Supplier{
		Name:      input.Name,
		TaxOffice: input.TaxOffice,
		TaxNumber: input.TaxNumber,
		Phone:     input.Phone,
		Email:     input.Email,
	}
	err := r.pool.QueryRow(ctx, query, input.Name, input.TaxOffice, input.TaxNumber, input.Phone, input.Email).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("masterdata: create supplier: %w", err)
	}
	return &s, nil
}

func (r *Repository) GetSupplier(ctx context.Context, id int64) (*Supplier, error) {
	query := `
		SELECT id, name, tax_office, tax_number, phone, email, created_at, updated_at
		FROM suppliers WHERE id = $1`

	var s Supplier
	err := r.pool.QueryRow(ctx, query, id).
		Scan(&s.ID, &s.Name, &s.TaxOffice, &s.TaxNumber, &s.Phone, &s.Email, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: supplier %d", httpx.ErrNotFound, id)
		}
		return nil, err
	}
	return &s, nil
}

func (r *Repository) ListSuppliers(ctx context.Context, filters ListFilters) ([]Supplier, int, error) {
	p := normalize(filters)
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM suppliers WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')`,
		p.Search).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, name, tax_office, tax_number, phone, email, created_at, updated_at
		FROM suppliers
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')
		ORDER BY name ASC
		LIMIT $2 OFFSET $3`,
		p.Search, p.PerPage, (p.Page-1)*p.PerPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Supplier
	for rows.Next() {
		var s Supplier
		if err := rows.Scan(&s.ID, &s.Name, &s.TaxOffice, &s.TaxNumber, &s.Phone, &s.Email, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	return out, total, rows.Err()
}

func (r *Repository) UpdateSupplier(ctx context.Context, id int64, input SupplierInput) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE suppliers
		SET name = $2, tax_office = $3, tax_number = $4, phone = $5, email = $6, updated_at = NOW()
		WHERE id = $1`,
		id, input.Name, input.TaxOffice, input.TaxNumber, input.Phone, input.Email)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: supplier %d", httpx.ErrNotFound, id)
	}
	return nil
}

func (r *Repository) DeleteSupplier(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM suppliers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: supplier %d", httpx.ErrNotFound, id)
	}
	return nil
}

// --- Projects ---

func (r *Repository) CreateProject(ctx context.Context, input ProjectInput) (*Project, error) {
	query := `
		INSERT INTO projects (name, client_name, active, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id, created_at, updated_at`

	p := Project{Name: input.Name, ClientName: input.ClientName, Active: input.Active}
	err := r.pool.QueryRow(ctx, query, input.Name, input.ClientName, input.Active).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("masterdata: create project: %w", err)
	}
	return &p, nil
}

func (r *Repository) GetProject(ctx context.Context, id int64) (*Project, error) {
	var p Project
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, client_name, active, created_at, updated_at
		FROM projects WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.ClientName, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: project %d", httpx.ErrNotFound, id)
		}
		return nil, err
	}
	return &p, nil
}

func (r *Repository) ListProjects(ctx context.Context, filters ListFilters) ([]Project, int, error) {
	p := normalize(filters)
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM projects WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')`,
		p.Search).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, name, client_name, active, created_at, updated_at
		FROM projects
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')
		ORDER BY name ASC
		LIMIT $2 OFFSET $3`,
		p.Search, p.PerPage, (p.Page-1)*p.PerPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Project
	for rows.Next() {
		var pr Project
		if err := rows.Scan(&pr.ID, &pr.Name, &pr.ClientName, &pr.Active, &pr.CreatedAt, &pr.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, pr)
	}
	return out, total, rows.Err()
}

func (r *Repository) UpdateProject(ctx context.Context, id int64, input ProjectInput) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE projects
		SET name = $2, client_name = $3, active = $4, updated_at = NOW()
		WHERE id = $1`,
		id, input.Name, input.ClientName, input.Active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: project %d", httpx.ErrNotFound, id)
	}
	return nil
}

// --- Vehicles ---

func (r *Repository) CreateVehicle(ctx context.Context, input VehicleInput) (*Vehicle, error) {
	query := `
		INSERT INTO vehicles (plate, supplier_id, project_id, driver_name, capacity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, created_at, updated_at`

	v := Vehicle{
		Plate:      input.Plate,
		SupplierID: input.SupplierID,
		ProjectID:  input.ProjectID,
		DriverName: input.DriverName,
		Capacity:   input.Capacity,
	}
	var projectID pgtype.Int8
	if input.ProjectID > 0 {
		projectID = pgtype.Int8{Int64: input.ProjectID, Valid: true}
	}
	err := r.pool.QueryRow(ctx, query, input.Plate, input.SupplierID, projectID, input.DriverName, input.Capacity).
		Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("masterdata: create vehicle: %w", err)
	}
	return &v, nil
}

func (r *Repository) GetVehicle(ctx context.Context, id int64) (*Vehicle, error) {
	var v Vehicle
	var projectID pgtype.Int8
	err := r.pool.QueryRow(ctx, `
		SELECT id, plate, supplier_id, project_id, driver_name, capacity, created_at, updated_at
		FROM vehicles WHERE id = $1`, id).
		Scan(&v.ID, &v.Plate, &v.SupplierID, &projectID, &v.DriverName, &v.Capacity, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: vehicle %d", httpx.ErrNotFound, id)
		}
		return nil, err
	}
	if projectID.Valid {
		v.ProjectID = projectID.Int64
	}
	return &v, nil
}

func (r *Repository) ListVehicles(ctx context.Context, filters ListFilters) ([]Vehicle, int, error) {
	p := normalize(filters)
	var total int
	if err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM vehicles
		WHERE ($1 = '' OR plate ILIKE '%' || $1 || '%')
		AND ($2 = 0 OR project_id = $2)`,
		p.Search, p.ProjectID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, plate, supplier_id, project_id, driver_name, capacity, created_at, updated_at
		FROM vehicles
		WHERE ($1 = '' OR plate ILIKE '%' || $1 || '%')
		AND ($2 = 0 OR project_id = $2)
		ORDER BY plate ASC
		LIMIT $3 OFFSET $4`,
		p.Search, p.ProjectID, p.PerPage, (p.Page-1)*p.PerPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Vehicle
	for rows.Next() {
		var v Vehicle
		var projectID pgtype.Int8
		if err := rows.Scan(&v.ID, &v.Plate, &v.SupplierID, &projectID, &v.DriverName, &v.Capacity, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, 0, err
		}
		if projectID.Valid {
			v.ProjectID = projectID.Int64
		}
		out = append(out, v)
	}
	return out, total, rows.Err()
}

func (r *Repository) UpdateVehicle(ctx context.Context, id int64, input VehicleInput) error {
	var projectID pgtype.Int8
	if input.ProjectID > 0 {
		projectID = pgtype.Int8{Int64: input.ProjectID, Valid: true}
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE vehicles
		SET plate = $2, supplier_id = $3, project_id = $4, driver_name = $5, capacity = $6, updated_at = NOW()
		WHERE id = $1`,
		id, input.Plate, input.SupplierID, projectID, input.DriverName, input.Capacity)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: vehicle %d", httpx.ErrNotFound, id)
	}
	return nil
}

func (r *Repository) CountVehiclesBySupplier(ctx context.Context, supplierID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM vehicles WHERE supplier_id = $1`, supplierID).Scan(&count)
	return count, err
}

// --- Routes ---

func (r *Repository) CreateRoute(ctx context.Context, input RouteInput) (*Route, error) {
	query := `
		INSERT INTO routes (project_id, name, supplier_unit_price_kurus, factory_unit_price_kurus, vat_rate_percent, distance_km, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id, created_at, updated_at`

	rt := Route{
		ProjectID:         input.ProjectID,
		Name:              input.Name,
		SupplierUnitPrice: input.SupplierUnitPrice,
		FactoryUnitPrice:  input.FactoryUnitPrice,
		VATRatePercent:    input.VATRatePercent,
		DistanceKm:        input.DistanceKm,
	}
	err := r.pool.QueryRow(ctx, query,
		input.ProjectID, input.Name, input.SupplierUnitPrice.Kurus(),
		nullableKurus(input.FactoryUnitPrice), input.VATRatePercent, input.DistanceKm).
		Scan(&rt.ID, &rt.CreatedAt, &rt.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("masterdata: create route: %w", err)
	}
	return &rt, nil
}

func (r *Repository) GetRoute(ctx context.Context, id int64) (*Route, error) {
	var rt Route
	var supplierPrice int64
	var factoryPrice pgtype.Int8
	err := r.pool.QueryRow(ctx, `
		SELECT id, project_id, name, supplier_unit_price_kurus, factory_unit_price_kurus, vat_rate_percent, distance_km, created_at, updated_at
		FROM routes WHERE id = $1`, id).
		Scan(&rt.ID, &rt.ProjectID, &rt.Name, &supplierPrice, &factoryPrice, &rt.VATRatePercent, &rt.DistanceKm, &rt.CreatedAt, &rt.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: route %d", httpx.ErrNotFound, id)
		}
		return nil, err
	}
	rt.SupplierUnitPrice = money.Amount(supplierPrice)
	if factoryPrice.Valid {
		fp := money.Amount(factoryPrice.Int64)
		rt.FactoryUnitPrice = &fp
	}
	return &rt, nil
}

func (r *Repository) ListRoutes(ctx context.Context, projectID int64) ([]Route, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, project_id, name, supplier_unit_price_kurus, factory_unit_price_kurus, vat_rate_percent, distance_km, created_at, updated_at
		FROM routes
		WHERE ($1 = 0 OR project_id = $1)
		ORDER BY name ASC`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Route
	for rows.Next() {
		var rt Route
		var supplierPrice int64
		var factoryPrice pgtype.Int8
		if err := rows.Scan(&rt.ID, &rt.ProjectID, &rt.Name, &supplierPrice, &factoryPrice, &rt.VATRatePercent, &rt.DistanceKm, &rt.CreatedAt, &rt.UpdatedAt); err != nil {
			return nil, err
		}
		rt.SupplierUnitPrice = money.Amount(supplierPrice)
		if factoryPrice.Valid {
			fp := money.Amount(factoryPrice.Int64)
			rt.FactoryUnitPrice = &fp
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}

func (r *Repository) UpdateRoute(ctx context.Context, id int64, input RouteInput) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE routes
		SET name = $2, supplier_unit_price_kurus = $3, factory_unit_price_kurus = $4, vat_rate_percent = $5, distance_km = $6, updated_at = NOW()
		WHERE id = $1`,
		id, input.Name, input.SupplierUnitPrice.Kurus(),
		nullableKurus(input.FactoryUnitPrice), input.VATRatePercent, input.DistanceKm)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: route %d", httpx.ErrNotFound, id)
	}
	return nil
}

func (r *Repository) DeleteRoute(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM routes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: route %d", httpx.ErrNotFound, id)
	}
	return nil
}

func normalize(f ListFilters) ListFilters {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = 20
	}
	return f
}

func nullableKurus(a *money.Amount) pgtype.Int8 {
	if a == nil {
		return pgtype.Int8{}
	}
	return pgtype.Int8{Int64: a.Kurus(), Valid: true}
}
