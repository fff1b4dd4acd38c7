package extrawork

import (
	"context"

	"github.com/google/uuid"

	"github.com/sefer-erp/sefer-erp/internal/shared"
)

// ListFilters narrows extra work listings.
type ListFilters struct {
	Page       int
	PerPage    int
	SupplierID int64
	ProjectID  int64
	Year       int
	Month      int
}

// RepositoryPort defines data access methods for the ledger.
type RepositoryPort interface {
	Create(ctx context.Context, record *ExtraWork) error
	Get(ctx context.Context, id uuid.UUID) (*ExtraWork, error)
	Update(ctx context.Context, record *ExtraWork) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filters ListFilters) ([]ExtraWork, int64, error)
}

// ApprovalPort records approval trail entries.
type ApprovalPort interface {
	Record(ctx context.Context, log shared.ApprovalLog) error
}
