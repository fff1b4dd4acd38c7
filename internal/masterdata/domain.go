// Package masterdata manages the reference entities the billing core
// operates on: suppliers, projects, vehicles and routes.
package masterdata

import (
	"time"

	"github.com/sefer-erp/sefer-erp/internal/money"
)

// Supplier is a transport subcontractor paid per trip.
type Supplier struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	TaxOffice string    `json:"tax_office"`
	TaxNumber string    `json:"tax_number"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Project is a client engagement ("factory") vehicles are assigned to.
type Project struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	ClientName string    `json:"client_name"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Vehicle belongs to a supplier and is assigned to at most one project.
type Vehicle struct {
	ID         int64     `json:"id"`
	Plate      string    `json:"plate"`
	SupplierID int64     `json:"supplier_id"`
	ProjectID  int64     `json:"project_id,omitempty"`
	DriverName string    `json:"driver_name"`
	Capacity   int       `json:"capacity"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Route is a priced service line within a project. Route edits never
// touch already-recorded timesheet entries; entries freeze a snapshot
// of these prices at write time.
type Route struct {
	ID                int64         `json:"id"`
	ProjectID         int64         `json:"project_id"`
	Name              string        `json:"name"`
	SupplierUnitPrice money.Amount  `json:"supplier_unit_price"`
	FactoryUnitPrice  *money.Amount `json:"factory_unit_price,omitempty"`
	VATRatePercent    int           `json:"vat_rate_percent"`
	DistanceKm        float64       `json:"distance_km"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// RouteInput carries create/update fields for a route.
type RouteInput struct {
	ProjectID         int64
	Name              string
	SupplierUnitPrice money.Amount
	FactoryUnitPrice  *money.Amount
	VATRatePercent    int
	DistanceKm        float64
}

// SupplierInput carries create/update fields for a supplier.
type SupplierInput struct {
	Name      string
	TaxOffice string
	TaxNumber string
	Phone     string
	Email     string
}

// ProjectInput carries create/update fields for a project.
type ProjectInput struct {
	Name       string
	ClientName string
	Active     bool
}

// VehicleInput carries create/update fields for a vehicle.
type VehicleInput struct {
	Plate      string
	SupplierID int64
	ProjectID  int64
	DriverName string
	Capacity   int
}
