package billing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sefer-erp/sefer-erp/internal/money"
	"github.com/sefer-erp/sefer-erp/internal/shared"
)

// TimesheetRef locates one monthly grid and its vehicle for a report.
type TimesheetRef struct {
	ID           int64
	ProjectID    int64
	VehicleID    int64
	VehiclePlate string
}

// EntryRef is the slice of a stored entry the aggregator needs: the
// trip count and the frozen snapshot.
type EntryRef struct {
	RouteID        int64
	TripCount      int
	SupplierPrice  money.Amount
	FactoryPrice   *money.Amount
	VATRatePercent int
}

// RouteMeta carries the route's display name and its current factory
// price, the first fallback when an entry snapshot lacks one.
type RouteMeta struct {
	ID                  int64
	Name                string
	CurrentFactoryPrice *money.Amount
}

// VehicleRef identifies a fleet vehicle for factory-report filler rows.
type VehicleRef struct {
	ID    int64
	Plate string
}

// ExtraWorkRef is the slice of an extra work record a report needs.
type ExtraWorkRef struct {
	ID            uuid.UUID
	WorkDate      time.Time
	Description   string
	SupplierPrice money.Amount
	FactoryPrice  *money.Amount
}

// SupplierInfo is the supplier header block of a report.
type SupplierInfo struct {
	ID        int64
	Name      string
	TaxOffice string
	TaxNumber string
}

// ProjectInfo is the project header block of a factory report.
type ProjectInfo struct {
	ID         int64
	Name       string
	ClientName string
}

// RepositoryPort defines the read-only data access the aggregator and
// assembler need. All queries are scoped to frozen, already-written
// rows; billing never writes.
type RepositoryPort interface {
	GetSupplier(ctx context.Context, id int64) (*SupplierInfo, error)
	GetProject(ctx context.Context, id int64) (*ProjectInfo, error)

	// ListTimesheets returns the grids matching the scope and period.
	// Supplier scope follows vehicle ownership; project scope spans
	// all suppliers.
	ListTimesheets(ctx context.Context, scope Scope, period shared.Period) ([]TimesheetRef, error)
	ListEntries(ctx context.Context, timesheetID int64) ([]EntryRef, error)
	GetRouteMeta(ctx context.Context, routeID int64) (*RouteMeta, error)

	// ListProjectVehicles returns all vehicles assigned to a project,
	// used to surface idle vehicles on factory reports.
	ListProjectVehicles(ctx context.Context, projectID int64) ([]VehicleRef, error)

	ListExtraWork(ctx context.Context, scope Scope, period shared.Period) ([]ExtraWorkRef, error)

	// CountTimesheets counts grids for the scope and year. Report
	// sequence numbers derive from it; they are advisory, not
	// guaranteed gap-free.
	CountTimesheets(ctx context.Context, scope Scope, year int) (int64, error)
}
