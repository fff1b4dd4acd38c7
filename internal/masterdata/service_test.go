package masterdata

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sefer-erp/sefer-erp/internal/money"
	"github.com/sefer-erp/sefer-erp/internal/plans"
	"github.com/sefer-erp/sefer-erp/internal/platform/httpx"
	"github.com/sefer-erp/sefer-erp/internal/rbac"
	"github.com/sefer-erp/sefer-erp/internal/shared"
)

type memoryRepo struct {
	suppliers map[int64]*Supplier
	projects  map[int64]*Project
	vehicles  map[int64]*Vehicle
	routes    map[int64]*Route
	nextID    int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		suppliers: make(map[int64]*Supplier),
		projects:  make(map[int64]*Project),
		vehicles:  make(map[int64]*Vehicle),
		routes:    make(map[int64]*Route),
	}
}

func (r *memoryRepo) id() int64 {
	r.nextID++
	return r.nextID
}

func (r *memoryRepo) CreateSupplier(ctx context.Context, input SupplierInput) (*Supplier, error) {
	s := &Supplier{ID: r.id(), Name: input.Name, TaxOffice: input.TaxOffice, TaxNumber: input.TaxNumber, Phone: input.Phone, Email: input.Email, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	r.suppliers[s.ID] = s
	return s, nil
}

func (r *memoryRepo) GetSupplier(ctx context.Context, id int64) (*Supplier, error) {
	s, ok := r.suppliers[id]
	if !ok {
		return nil, fmt.Errorf("%w: supplier %d", httpx.ErrNotFound, id)
	}
	return s, nil
}

func (r *memoryRepo) ListSuppliers(ctx context.Context, filters ListFilters) ([]Supplier, int, error) {
	var out []Supplier
	for _, s := range r.suppliers {
		out = append(out, *s)
	}
	return out, len(out), nil
}

func (r *memoryRepo) UpdateSupplier(ctx context.Context, id int64, input SupplierInput) error {
	s, ok := r.suppliers[id]
	if !ok {
		return fmt.Errorf("%w: supplier %d", httpx.ErrNotFound, id)
	}
	s.Name = input.Name
	return nil
}

func (r *memoryRepo) DeleteSupplier(ctx context.Context, id int64) error {
	if _, ok := r.suppliers[id]; !ok {
		return fmt.Errorf("%w: supplier %d", httpx.ErrNotFound, id)
	}
	delete(r.suppliers, id)
	return nil
}

func (r *memoryRepo) CreateProject(ctx context.Context, input ProjectInput) (*Project, error) {
	p := &Project{ID: r.id(), Name: input.Name, ClientName: input.ClientName, Active: input.Active}
	r.projects[p.ID] = p
	return p, nil
}

func (r *memoryRepo) GetProject(ctx context.Context, id int64) (*Project, error) {
	p, ok := r.projects[id]
	if !ok {
		return nil, fmt.Errorf("%w: project %d", httpx.ErrNotFound, id)
	}
	return p, nil
}

func (r *memoryRepo) ListProjects(ctx context.Context, filters ListFilters) ([]Project, int, error) {
	var out []Project
	for _, p := range r.projects {
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (r *memoryRepo) UpdateProject(ctx context.Context, id int64, input ProjectInput) error {
	p, ok := r.projects[id]
	if !ok {
		return fmt.Errorf("%w: project %d", httpx.ErrNotFound, id)
	}
	p.Name = input.Name
	return nil
}

func (r *memoryRepo) CreateVehicle(ctx context.Context, input VehicleInput) (*Vehicle, error) {
	v := &Vehicle{ID: r.id(), Plate: input.Plate, SupplierID: input.SupplierID, ProjectID: input.ProjectID, DriverName: input.DriverName, Capacity: input.Capacity}
	r.vehicles[v.ID] = v
	return v, nil
}

func (r *memoryRepo) GetVehicle(ctx context.Context, id int64) (*Vehicle, error) {
	v, ok := r.vehicles[id]
	if !ok {
		return nil, fmt.Errorf("%w: vehicle %d", httpx.ErrNotFound, id)
	}
	return v, nil
}

func (r *memoryRepo) ListVehicles(ctx context.Context, filters ListFilters) ([]Vehicle, int, error) {
	var out []Vehicle
	for _, v := range r.vehicles {
		out = append(out, *v)
	}
	return out, len(out), nil
}

func (r *memoryRepo) UpdateVehicle(ctx context.Context, id int64, input VehicleInput) error {
	v, ok := r.vehicles[id]
	if !ok {
		return fmt.Errorf("%w: vehicle %d", httpx.ErrNotFound, id)
	}
	v.Plate = input.Plate
	return nil
}

func (r *memoryRepo) CountVehiclesBySupplier(ctx context.Context, supplierID int64) (int, error) {
	count := 0
	for _, v := range r.vehicles {
		if v.SupplierID == supplierID {
			count++
		}
	}
	return count, nil
}

func (r *memoryRepo) CreateRoute(ctx context.Context, input RouteInput) (*Route, error) {
	rt := &Route{
		ID:                r.id(),
		ProjectID:         input.ProjectID,
		Name:              input.Name,
		SupplierUnitPrice: input.SupplierUnitPrice,
		FactoryUnitPrice:  input.FactoryUnitPrice,
		VATRatePercent:    input.VATRatePercent,
		DistanceKm:        input.DistanceKm,
	}
	r.routes[rt.ID] = rt
	return rt, nil
}

func (r *memoryRepo) GetRoute(ctx context.Context, id int64) (*Route, error) {
	rt, ok := r.routes[id]
	if !ok {
		return nil, fmt.Errorf("%w: route %d", httpx.ErrNotFound, id)
	}
	return rt, nil
}

func (r *memoryRepo) ListRoutes(ctx context.Context, projectID int64) ([]Route, error) {
	var out []Route
	for _, rt := range r.routes {
		if projectID == 0 || rt.ProjectID == projectID {
			out = append(out, *rt)
		}
	}
	return out, nil
}

func (r *memoryRepo) UpdateRoute(ctx context.Context, id int64, input RouteInput) error {
	rt, ok := r.routes[id]
	if !ok {
		return fmt.Errorf("%w: route %d", httpx.ErrNotFound, id)
	}
	rt.Name = input.Name
	rt.SupplierUnitPrice = input.SupplierUnitPrice
	rt.FactoryUnitPrice = input.FactoryUnitPrice
	rt.VATRatePercent = input.VATRatePercent
	return nil
}

func (r *memoryRepo) DeleteRoute(ctx context.Context, id int64) error {
	if _, ok := r.routes[id]; !ok {
		return fmt.Errorf("%w: route %d", httpx.ErrNotFound, id)
	}
	delete(r.routes, id)
	return nil
}

func adminActor() shared.Actor {
	return shared.Actor{ID: 1, Name: "admin", Role: rbac.RoleAdmin}
}

func clerkActor() shared.Actor {
	return shared.Actor{ID: 2, Name: "clerk", Role: rbac.RoleClerk}
}

func newTestService(t *testing.T) (*Service, *memoryRepo) {
	t.Helper()
	repo := newMemoryRepo()
	return NewService(repo, nil, plans.LimitsFor(plans.PlanEnterprise)), repo
}

func seedProject(t *testing.T, repo *memoryRepo) *Project {
	t.Helper()
	p, err := repo.CreateProject(context.Background(), ProjectInput{Name: "Fabrika A", Active: true})
	require.NoError(t, err)
	return p
}

func TestCreateRouteRequiresCapabilityForFactoryPrice(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)
	project := seedProject(t, repo)

	factory := money.MustParse("200.00")
	input := RouteInput{
		ProjectID:         project.ID,
		Name:              "Organize Sanayi Hattı",
		SupplierUnitPrice: money.MustParse("150.00"),
		FactoryUnitPrice:  &factory,
		VATRatePercent:    20,
	}

	_, err := svc.CreateRoute(ctx, clerkActor(), input)
	require.Error(t, err)
	require.True(t, errors.Is(err, httpx.ErrForbidden))
	require.Empty(t, repo.routes)

	route, err := svc.CreateRoute(ctx, adminActor(), input)
	require.NoError(t, err)
	require.NotNil(t, route.FactoryUnitPrice)
	require.Equal(t, money.MustParse("200.00"), *route.FactoryUnitPrice)
}

func TestGetRouteRedactsFactoryPrice(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)
	project := seedProject(t, repo)

	factory := money.MustParse("180.00")
	route, err := svc.CreateRoute(ctx, adminActor(), RouteInput{
		ProjectID:         project.ID,
		Name:              "Merkez Hattı",
		SupplierUnitPrice: money.MustParse("120.50"),
		FactoryUnitPrice:  &factory,
		VATRatePercent:    18,
	})
	require.NoError(t, err)

	seen, err := svc.GetRoute(ctx, clerkActor(), route.ID)
	require.NoError(t, err)
	require.Nil(t, seen.FactoryUnitPrice)

	full, err := svc.GetRoute(ctx, adminActor(), route.ID)
	require.NoError(t, err)
	require.NotNil(t, full.FactoryUnitPrice)
}

func TestUpdateRouteFactoryChangeNeedsCapability(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)
	project := seedProject(t, repo)

	route, err := svc.CreateRoute(ctx, adminActor(), RouteInput{
		ProjectID:         project.ID,
		Name:              "Liman Hattı",
		SupplierUnitPrice: money.MustParse("100.00"),
		VATRatePercent:    20,
	})
	require.NoError(t, err)

	factory := money.MustParse("140.00")
	err = svc.UpdateRoute(ctx, clerkActor(), route.ID, RouteInput{
		ProjectID:         project.ID,
		Name:              "Liman Hattı",
		SupplierUnitPrice: money.MustParse("100.00"),
		FactoryUnitPrice:  &factory,
		VATRatePercent:    20,
	})
	require.Error(t, err)
	require.True(t, errors.Is(err, httpx.ErrForbidden))

	// Supplier price edits stay open to clerks.
	err = svc.UpdateRoute(ctx, clerkActor(), route.ID, RouteInput{
		ProjectID:         project.ID,
		Name:              "Liman Hattı",
		SupplierUnitPrice: money.MustParse("110.00"),
		VATRatePercent:    20,
	})
	require.NoError(t, err)
	require.Equal(t, money.MustParse("110.00"), repo.routes[route.ID].SupplierUnitPrice)
}

func TestDeleteSupplierBlockedByVehicles(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)

	supplier, err := svc.CreateSupplier(ctx, SupplierInput{Name: "Yıldız Taşımacılık"})
	require.NoError(t, err)
	_, err = repo.CreateVehicle(ctx, VehicleInput{Plate: "34 ABC 123", SupplierID: supplier.ID})
	require.NoError(t, err)

	err = svc.DeleteSupplier(ctx, supplier.ID)
	require.Error(t, err)
	require.True(t, errors.Is(err, httpx.ErrValidation))
}

func TestCreateVehicleHonorsPlanLimit(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := NewService(repo, nil, plans.Limits{MaxVehicles: 1, MaxProjects: 1})

	supplier, err := svc.CreateSupplier(ctx, SupplierInput{Name: "Yıldız Taşımacılık"})
	require.NoError(t, err)

	_, err = svc.CreateVehicle(ctx, VehicleInput{Plate: "34 ABC 123", SupplierID: supplier.ID})
	require.NoError(t, err)

	_, err = svc.CreateVehicle(ctx, VehicleInput{Plate: "34 ABC 124", SupplierID: supplier.ID})
	require.Error(t, err)
	require.True(t, errors.Is(err, httpx.ErrForbidden))

	_, err = svc.CreateProject(ctx, ProjectInput{Name: "Fabrika A", Active: true})
	require.NoError(t, err)
	_, err = svc.CreateProject(ctx, ProjectInput{Name: "Fabrika B", Active: true})
	require.Error(t, err)
	require.True(t, errors.Is(err, httpx.ErrForbidden))
}

func TestRouteValidation(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)
	project := seedProject(t, repo)

	_, err := svc.CreateRoute(ctx, adminActor(), RouteInput{ProjectID: project.ID, VATRatePercent: 18})
	require.Error(t, err)
	require.True(t, errors.Is(err, httpx.ErrValidation))

	_, err = svc.CreateRoute(ctx, adminActor(), RouteInput{
		ProjectID:         project.ID,
		Name:              "Hatalı",
		SupplierUnitPrice: money.MustParse("10.00"),
		VATRatePercent:    101,
	})
	require.Error(t, err)
	require.True(t, errors.Is(err, httpx.ErrValidation))
}
