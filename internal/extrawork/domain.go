// Package extrawork manages ad-hoc dated charges recorded outside the
// route grid, with a one-way approval state machine.
package extrawork

import (
	"time"

	"github.com/google/uuid"

	"github.com/sefer-erp/sefer-erp/internal/money"
)

// Status is the approval state of an extra work record.
type Status string

const (
	// StatusPendingApproval means the record awaits approval.
	StatusPendingApproval Status = "PENDING_APPROVAL"
	// StatusApproved means the record has been approved. There is no
	// reversal path.
	StatusApproved Status = "APPROVED"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusPendingApproval || s == StatusApproved
}

// ExtraWork is a dated non-route charge tied to a supplier, vehicle
// and project. The factory price is hidden from unprivileged callers.
type ExtraWork struct {
	ID            uuid.UUID     `json:"id"`
	WorkDate      time.Time     `json:"work_date"`
	Description   string        `json:"description"`
	SupplierPrice money.Amount  `json:"supplier_price"`
	FactoryPrice  *money.Amount `json:"factory_price,omitempty"`
	SupplierID    int64         `json:"supplier_id"`
	VehicleID     int64         `json:"vehicle_id"`
	ProjectID     int64         `json:"project_id"`
	Status        Status        `json:"status"`
	CreatedBy     int64         `json:"created_by"`
	ApprovedBy    *int64        `json:"approved_by,omitempty"`
	ApprovedAt    *time.Time    `json:"approved_at,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// Input carries create/update fields for an extra work record.
type Input struct {
	WorkDate      time.Time
	Description   string
	SupplierPrice money.Amount
	FactoryPrice  *money.Amount
	SupplierID    int64
	VehicleID     int64
	ProjectID     int64
	// Status applies on create only. Empty means approved on entry;
	// coordinator workflows submit as pending instead.
	Status Status
}
