package masterdata

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sefer-erp/sefer-erp/internal/money"
	"github.com/sefer-erp/sefer-erp/internal/plans"
	"github.com/sefer-erp/sefer-erp/internal/platform/httpx"
	"github.com/sefer-erp/sefer-erp/internal/shared"
)

// Service handles master data business logic.
type Service struct {
	repo   RepositoryPort
	audit  AuditPort
	limits plans.Limits
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, audit AuditPort, limits plans.Limits) *Service {
	return &Service{repo: repo, audit: audit, limits: limits}
}

// CreateSupplier validates and stores a supplier.
func (s *Service) CreateSupplier(ctx context.Context, input SupplierInput) (*Supplier, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: supplier name required", httpx.ErrValidation)
	}
	return s.repo.CreateSupplier(ctx, input)
}

// GetSupplier returns one supplier.
func (s *Service) GetSupplier(ctx context.Context, id int64) (*Supplier, error) {
	return s.repo.GetSupplier(ctx, id)
}

// ListSuppliers returns a page of suppliers.
func (s *Service) ListSuppliers(ctx context.Context, filters ListFilters) ([]Supplier, shared.Pagination, error) {
	suppliers, total, err := s.repo.ListSuppliers(ctx, filters)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return suppliers, shared.NewPagination(filters.Page, filters.PerPage, total), nil
}

// UpdateSupplier validates and updates a supplier.
func (s *Service) UpdateSupplier(ctx context.Context, id int64, input SupplierInput) error {
	if input.Name == "" {
		return fmt.Errorf("%w: supplier name required", httpx.ErrValidation)
	}
	return s.repo.UpdateSupplier(ctx, id, input)
}

// DeleteSupplier removes a supplier with no remaining vehicles.
func (s *Service) DeleteSupplier(ctx context.Context, id int64) error {
	count, err := s.repo.CountVehiclesBySupplier(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: supplier %d still has %d vehicles", httpx.ErrValidation, id, count)
	}
	return s.repo.DeleteSupplier(ctx, id)
}

// CreateProject validates and stores a project.
func (s *Service) CreateProject(ctx context.Context, input ProjectInput) (*Project, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: project name required", httpx.ErrValidation)
	}
	if s.limits.MaxProjects > 0 {
		_, total, err := s.repo.ListProjects(ctx, ListFilters{Page: 1, PerPage: 1})
		if err != nil {
			return nil, err
		}
		if total >= s.limits.MaxProjects {
			return nil, fmt.Errorf("%w: project limit %d reached", httpx.ErrForbidden, s.limits.MaxProjects)
		}
	}
	return s.repo.CreateProject(ctx, input)
}

// GetProject returns one project.
func (s *Service) GetProject(ctx context.Context, id int64) (*Project, error) {
	return s.repo.GetProject(ctx, id)
}

// ListProjects returns a page of projects.
func (s *Service) ListProjects(ctx context.Context, filters ListFilters) ([]Project, shared.Pagination, error) {
	projects, total, err := s.repo.ListProjects(ctx, filters)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return projects, shared.NewPagination(filters.Page, filters.PerPage, total), nil
}

// UpdateProject validates and updates a project.
func (s *Service) UpdateProject(ctx context.Context, id int64, input ProjectInput) error {
	if input.Name == "" {
		return fmt.Errorf("%w: project name required", httpx.ErrValidation)
	}
	return s.repo.UpdateProject(ctx, id, input)
}

// CreateVehicle validates and stores a vehicle.
func (s *Service) CreateVehicle(ctx context.Context, input VehicleInput) (*Vehicle, error) {
	if input.Plate == "" {
		return nil, fmt.Errorf("%w: vehicle plate required", httpx.ErrValidation)
	}
	if input.SupplierID == 0 {
		return nil, fmt.Errorf("%w: vehicle supplier required", httpx.ErrValidation)
	}
	if _, err := s.repo.GetSupplier(ctx, input.SupplierID); err != nil {
		return nil, err
	}
	if s.limits.MaxVehicles > 0 {
		_, total, err := s.repo.ListVehicles(ctx, ListFilters{Page: 1, PerPage: 1})
		if err != nil {
			return nil, err
		}
		if total >= s.limits.MaxVehicles {
			return nil, fmt.Errorf("%w: vehicle limit %d reached", httpx.ErrForbidden, s.limits.MaxVehicles)
		}
	}
	return s.repo.CreateVehicle(ctx, input)
}

// GetVehicle returns one vehicle.
func (s *Service) GetVehicle(ctx context.Context, id int64) (*Vehicle, error) {
	return s.repo.GetVehicle(ctx, id)
}

// ListVehicles returns a page of vehicles.
func (s *Service) ListVehicles(ctx context.Context, filters ListFilters) ([]Vehicle, shared.Pagination, error) {
	vehicles, total, err := s.repo.ListVehicles(ctx, filters)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return vehicles, shared.NewPagination(filters.Page, filters.PerPage, total), nil
}

// UpdateVehicle validates and updates a vehicle.
func (s *Service) UpdateVehicle(ctx context.Context, id int64, input VehicleInput) error {
	if input.Plate == "" {
		return fmt.Errorf("%w: vehicle plate required", httpx.ErrValidation)
	}
	if input.SupplierID == 0 {
		return fmt.Errorf("%w: vehicle supplier required", httpx.ErrValidation)
	}
	return s.repo.UpdateVehicle(ctx, id, input)
}

// CreateRoute validates and stores a route. Setting a factory unit
// price requires the edit-factory-price capability.
func (s *Service) CreateRoute(ctx context.Context, actor shared.Actor, input RouteInput) (*Route, error) {
	if err := validateRouteInput(input); err != nil {
		return nil, err
	}
	if input.FactoryUnitPrice != nil && !actor.Role.CanEditFactoryPrice() {
		return nil, fmt.Errorf("%w: role %s may not set factory prices", httpx.ErrForbidden, actor.Role)
	}
	if _, err := s.repo.GetProject(ctx, input.ProjectID); err != nil {
		return nil, err
	}
	route, err := s.repo.CreateRoute(ctx, input)
	if err != nil {
		return nil, err
	}
	s.recordRouteAudit(ctx, actor, "route.create", route)
	return route, nil
}

// GetRoute returns one route, redacted for the actor's capabilities.
func (s *Service) GetRoute(ctx context.Context, actor shared.Actor, id int64) (*Route, error) {
	route, err := s.repo.GetRoute(ctx, id)
	if err != nil {
		return nil, err
	}
	return redactRoute(actor, route), nil
}

// ListRoutes returns the routes of a project, redacted for the actor.
func (s *Service) ListRoutes(ctx context.Context, actor shared.Actor, projectID int64) ([]Route, error) {
	routes, err := s.repo.ListRoutes(ctx, projectID)
	if err != nil {
		return nil, err
	}
	for i := range routes {
		routes[i] = *redactRoute(actor, &routes[i])
	}
	return routes, nil
}

// UpdateRoute validates and updates a route. Existing timesheet
// entries keep their frozen snapshots; only future writes see the new
// prices.
func (s *Service) UpdateRoute(ctx context.Context, actor shared.Actor, id int64, input RouteInput) error {
	if err := validateRouteInput(input); err != nil {
		return err
	}
	current, err := s.repo.GetRoute(ctx, id)
	if err != nil {
		return err
	}
	factoryChanged := !equalAmountPtr(current.FactoryUnitPrice, input.FactoryUnitPrice)
	if factoryChanged && !actor.Role.CanEditFactoryPrice() {
		return fmt.Errorf("%w: role %s may not change factory prices", httpx.ErrForbidden, actor.Role)
	}
	if err := s.repo.UpdateRoute(ctx, id, input); err != nil {
		return err
	}
	updated := *current
	updated.Name = input.Name
	updated.SupplierUnitPrice = input.SupplierUnitPrice
	updated.FactoryUnitPrice = input.FactoryUnitPrice
	updated.VATRatePercent = input.VATRatePercent
	s.recordRouteAudit(ctx, actor, "route.update", &updated)
	return nil
}

// DeleteRoute removes a route.
func (s *Service) DeleteRoute(ctx context.Context, actor shared.Actor, id int64) error {
	route, err := s.repo.GetRoute(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteRoute(ctx, id); err != nil {
		return err
	}
	s.recordRouteAudit(ctx, actor, "route.delete", route)
	return nil
}

func validateRouteInput(input RouteInput) error {
	if input.Name == "" {
		return fmt.Errorf("%w: route name required", httpx.ErrValidation)
	}
	if input.ProjectID == 0 {
		return fmt.Errorf("%w: route project required", httpx.ErrValidation)
	}
	if input.SupplierUnitPrice < 0 {
		return fmt.Errorf("%w: supplier unit price must not be negative", httpx.ErrValidation)
	}
	if input.FactoryUnitPrice != nil && *input.FactoryUnitPrice < 0 {
		return fmt.Errorf("%w: factory unit price must not be negative", httpx.ErrValidation)
	}
	if input.VATRatePercent < 0 || input.VATRatePercent > 100 {
		return fmt.Errorf("%w: vat rate %d out of range", httpx.ErrValidation, input.VATRatePercent)
	}
	return nil
}

func redactRoute(actor shared.Actor, route *Route) *Route {
	if actor.Role.CanViewFactoryPrice() {
		return route
	}
	clone := *route
	clone.FactoryUnitPrice = nil
	return &clone
}

func equalAmountPtr(a, b *money.Amount) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (s *Service) recordRouteAudit(ctx context.Context, actor shared.Actor, action string, route *Route) {
	if s.audit == nil {
		return
	}
	meta := map[string]any{
		"supplier_unit_price": route.SupplierUnitPrice.String(),
		"vat_rate_percent":    route.VATRatePercent,
	}
	if route.FactoryUnitPrice != nil {
		meta["factory_unit_price"] = route.FactoryUnitPrice.String()
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor.ID,
		Action:   action,
		Entity:   "route",
		EntityID: strconv.FormatInt(route.ID, 10),
		Meta:     meta,
	})
}
