// Package timesheet implements the monthly trip-count grid. Entries
// freeze the route's prices at first write; later route edits never
// reach back into recorded entries.
package timesheet

import (
	"time"

	"github.com/sefer-erp/sefer-erp/internal/money"
)

// PriceSnapshot captures the route prices valid at entry-write time.
// Once stored it is immutable.
type PriceSnapshot struct {
	SupplierUnitPrice money.Amount  `json:"supplier_unit_price"`
	FactoryUnitPrice  *money.Amount `json:"factory_unit_price,omitempty"`
	VATRatePercent    int           `json:"vat_rate_percent"`
}

// Timesheet is the monthly grid for one vehicle on one project.
// Unique per (project, vehicle, year, month).
type Timesheet struct {
	ID        int64      `json:"id"`
	ProjectID int64      `json:"project_id"`
	VehicleID int64      `json:"vehicle_id"`
	Year      int        `json:"year"`
	Month     time.Month `json:"month"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Entry is one grid cell: trips on a route on a day. Unique per
// (timesheet, date, route) with upsert semantics on trip count.
type Entry struct {
	ID          int64         `json:"id"`
	TimesheetID int64         `json:"timesheet_id"`
	EntryDate   time.Time     `json:"entry_date"`
	RouteID     int64         `json:"route_id"`
	TripCount   int           `json:"trip_count"`
	Snapshot    PriceSnapshot `json:"snapshot"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// EntryWrite is a single cell write request.
type EntryWrite struct {
	Date      time.Time `json:"date"`
	RouteID   int64     `json:"route_id"`
	TripCount int       `json:"trip_count"`
}

// EntryFailure reports one failed item of a bulk write.
type EntryFailure struct {
	Index   int    `json:"index"`
	Date    string `json:"date"`
	RouteID int64  `json:"route_id"`
	Reason  string `json:"reason"`
}

// BulkResult summarises a bulk write. Items fail independently;
// a failed item never blocks the rest of the batch.
type BulkResult struct {
	Applied  int            `json:"applied"`
	Deleted  int            `json:"deleted"`
	Failures []EntryFailure `json:"failures,omitempty"`
}

// RouteInfo is the slice of route state the grid needs when freezing
// a snapshot.
type RouteInfo struct {
	ID        int64
	ProjectID int64
	Snapshot  PriceSnapshot
}
