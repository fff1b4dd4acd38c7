package masterdata

import (
	"context"

	"github.com/sefer-erp/sefer-erp/internal/shared"
)

// ListFilters narrows listing queries.
type ListFilters struct {
	Page      int
	PerPage   int
	Search    string
	ProjectID int64
}

// RepositoryPort defines data access methods for master data.
type RepositoryPort interface {
	CreateSupplier(ctx context.Context, input SupplierInput) (*Supplier, error)
	GetSupplier(ctx context.Context, id int64) (*Supplier, error)
	ListSuppliers(ctx context.Context, filters ListFilters) ([]Supplier, int, error)
	UpdateSupplier(ctx context.Context, id int64, input SupplierInput) error
	DeleteSupplier(ctx context.Context, id int64) error

	CreateProject(ctx context.Context, input ProjectInput) (*Project, error)
	GetProject(ctx context.Context, id int64) (*Project, error)
	ListProjects(ctx context.Context, filters ListFilters) ([]Project, int, error)
	UpdateProject(ctx context.Context, id int64, input ProjectInput) error

	CreateVehicle(ctx context.Context, input VehicleInput) (*Vehicle, error)
	GetVehicle(ctx context.Context, id int64) (*Vehicle, error)
	ListVehicles(ctx context.Context, filters ListFilters) ([]Vehicle, int, error)
	UpdateVehicle(ctx context.Context, id int64, input VehicleInput) error
	CountVehiclesBySupplier(ctx context.Context, supplierID int64) (int, error)

	CreateRoute(ctx context.Context, input RouteInput) (*Route, error)
	GetRoute(ctx context.Context, id int64) (*Route, error)
	ListRoutes(ctx context.Context, projectID int64) ([]Route, error)
	UpdateRoute(ctx context.Context, id int64, input RouteInput) error
	DeleteRoute(ctx context.Context, id int64) error
}

// AuditPort records master data mutations.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}
