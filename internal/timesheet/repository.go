package timesheet

import (
	"context"
	"time"

	"github.com/sefer-erp/sefer-erp/internal/shared"
)

// EntryUpsert carries the full column set for an entry write. The
// snapshot fields are only applied on insert unless refreshSnapshot
// is requested.
type EntryUpsert struct {
	TimesheetID int64
	EntryDate   time.Time
	RouteID     int64
	TripCount   int
	Snapshot    PriceSnapshot
}

// RepositoryPort defines data access methods for the grid.
type RepositoryPort interface {
	// CreateTimesheet inserts a new monthly grid. A uniqueness clash
	// on (project, vehicle, year, month) returns httpx.ErrConflict.
	CreateTimesheet(ctx context.Context, projectID, vehicleID int64, period shared.Period) (*Timesheet, error)
	FindTimesheet(ctx context.Context, projectID, vehicleID int64, period shared.Period) (*Timesheet, error)
	GetTimesheet(ctx context.Context, id int64) (*Timesheet, error)

	// UpsertEntry inserts or replaces the trip count for the
	// (timesheet, date, route) key. The stored snapshot survives an
	// update unless refreshSnapshot is true. Returns the stored row.
	UpsertEntry(ctx context.Context, input EntryUpsert, refreshSnapshot bool) (*Entry, error)
	// DeleteEntry removes the entry for the key; absent keys are not
	// an error.
	DeleteEntry(ctx context.Context, timesheetID int64, date time.Time, routeID int64) error
	ListEntries(ctx context.Context, timesheetID int64) ([]Entry, error)

	// GetRouteInfo loads the route state used to freeze a snapshot.
	GetRouteInfo(ctx context.Context, routeID int64) (*RouteInfo, error)
}
