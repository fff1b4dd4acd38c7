// Package billing computes supplier and factory billing reports from
// recorded timesheet entries and extra work charges. Reports are never
// stored; they are recomputed on demand from the frozen snapshots.
package billing

import (
	"time"

	"github.com/google/uuid"

	"github.com/sefer-erp/sefer-erp/internal/money"
)

// PriceMode selects which frozen price a report is valued at.
type PriceMode string

const (
	// PriceModeSupplier values rows at the supplier unit price.
	PriceModeSupplier PriceMode = "SUPPLIER"
	// PriceModeFactory values rows at the factory price, falling back
	// to the route's current factory price and then the supplier price.
	PriceModeFactory PriceMode = "FACTORY"
)

// ScopeKind discriminates report scopes.
type ScopeKind string

const (
	// ScopeSupplier covers timesheets whose vehicle belongs to one
	// supplier.
	ScopeSupplier ScopeKind = "SUPPLIER"
	// ScopeProject covers timesheets of one project across all
	// suppliers.
	ScopeProject ScopeKind = "PROJECT"
)

// Scope is a report target: one supplier or one project.
type Scope struct {
	Kind ScopeKind
	ID   int64
}

// RouteRow is one aggregated line of a report: all trips of one
// vehicle on one route within the period.
type RouteRow struct {
	VehicleID      int64        `json:"vehicle_id"`
	VehiclePlate   string       `json:"vehicle_plate"`
	RouteID        int64        `json:"route_id,omitempty"`
	RouteName      string       `json:"route_name"`
	TripTotal      int          `json:"trip_total"`
	UnitPrice      money.Amount `json:"unit_price"`
	VATRatePercent int          `json:"vat_rate_percent"`
	LineTotal      money.Amount `json:"line_total"`
	LineVAT        money.Amount `json:"line_vat"`
	// NoEntry marks a factory-report filler row for a fleet vehicle
	// that recorded nothing in the period.
	NoEntry bool `json:"no_entry,omitempty"`
}

// ExtraWorkRow is one extra work charge on a report. Extra work
// carries no VAT.
type ExtraWorkRow struct {
	ID          uuid.UUID    `json:"id"`
	WorkDate    time.Time    `json:"work_date"`
	Description string       `json:"description"`
	Amount      money.Amount `json:"amount"`
}

// Aggregate is the raw output of folding a scope and period.
type Aggregate struct {
	Rows           []RouteRow     `json:"rows"`
	ExtraRows      []ExtraWorkRow `json:"extra_rows"`
	RouteTotal     money.Amount   `json:"route_total"`
	RouteVAT       money.Amount   `json:"route_vat"`
	ExtraWorkTotal money.Amount   `json:"extra_work_total"`
}

// Invoice holds the five headline figures of a report.
type Invoice struct {
	NetTotal      money.Amount `json:"net_total"`
	VATTotal      money.Amount `json:"vat_total"`
	Subtotal      money.Amount `json:"subtotal"`
	Withholding   money.Amount `json:"withholding"`
	InvoiceAmount money.Amount `json:"invoice_amount"`
}

// ScopeInfo is the display block of a report header.
type ScopeInfo struct {
	Kind       ScopeKind `json:"kind"`
	Name       string    `json:"name"`
	TaxOffice  string    `json:"tax_office,omitempty"`
	TaxNumber  string    `json:"tax_number,omitempty"`
	ClientName string    `json:"client_name,omitempty"`
}

// Report is the assembled payload handed to renderers. Field names
// and nesting are a compatibility contract; renderers depend on them.
type Report struct {
	Number      string         `json:"number"`
	PriceMode   PriceMode      `json:"price_mode"`
	PeriodLabel string         `json:"period_label"`
	Scope       ScopeInfo      `json:"scope"`
	Rows        []RouteRow     `json:"rows"`
	ExtraRows   []ExtraWorkRow `json:"extra_rows"`
	Totals      Invoice        `json:"totals"`
	GeneratedAt time.Time      `json:"generated_at"`
}
