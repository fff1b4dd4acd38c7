package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/sefer-erp/sefer-erp/internal/money"
	"github.com/sefer-erp/sefer-erp/internal/platform/httpx"
	"github.com/sefer-erp/sefer-erp/internal/shared"
)

type memoryReportRepo struct {
	suppliers map[int64]*SupplierInfo
	projects  map[int64]*ProjectInfo
	routes    map[int64]*RouteMeta

	// vehicleSupplier maps vehicle to owning supplier for scope
	// filtering; vehicleProject drives idle-vehicle rows.
	vehicleSupplier map[int64]int64
	vehicleProject  map[int64][]VehicleRef

	timesheets map[int64]TimesheetRef
	periods    map[int64]shared.Period
	entries    map[int64][]EntryRef
	extras     []extraFixture
	nextID     int64
}

type extraFixture struct {
	ref        ExtraWorkRef
	supplierID int64
	projectID  int64
	approved   bool
}

func newMemoryReportRepo() *memoryReportRepo {
	return &memoryReportRepo{
		suppliers:       map[int64]*SupplierInfo{},
		projects:        map[int64]*ProjectInfo{},
		routes:          map[int64]*RouteMeta{},
		vehicleSupplier: map[int64]int64{},
		vehicleProject:  map[int64][]VehicleRef{},
		timesheets:      map[int64]TimesheetRef{},
		periods:         map[int64]shared.Period{},
		entries:         map[int64][]EntryRef{},
	}
}

func (r *memoryReportRepo) GetSupplier(ctx context.Context, id int64) (*SupplierInfo, error) {
	s, ok := r.suppliers[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	return s, nil
}

func (r *memoryReportRepo) GetProject(ctx context.Context, id int64) (*ProjectInfo, error) {
	p, ok := r.projects[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	return p, nil
}

func (r *memoryReportRepo) ListTimesheets(ctx context.Context, scope Scope, period shared.Period) ([]TimesheetRef, error) {
	var out []TimesheetRef
	for id, ref := range r.timesheets {
		if r.periods[id] != period {
			continue
		}
		switch scope.Kind {
		case ScopeSupplier:
			if r.vehicleSupplier[ref.VehicleID] != scope.ID {
				continue
			}
		case ScopeProject:
			if ref.ProjectID != scope.ID {
				continue
			}
		}
		out = append(out, ref)
	}
	return out, nil
}

func (r *memoryReportRepo) ListEntries(ctx context.Context, timesheetID int64) ([]EntryRef, error) {
	return r.entries[timesheetID], nil
}

func (r *memoryReportRepo) GetRouteMeta(ctx context.Context, routeID int64) (*RouteMeta, error) {
	meta, ok := r.routes[routeID]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	return meta, nil
}

func (r *memoryReportRepo) ListProjectVehicles(ctx context.Context, projectID int64) ([]VehicleRef, error) {
	return r.vehicleProject[projectID], nil
}

func (r *memoryReportRepo) ListExtraWork(ctx context.Context, scope Scope, period shared.Period) ([]ExtraWorkRef, error) {
	var out []ExtraWorkRef
	for _, e := range r.extras {
		if !e.approved || !period.Contains(e.ref.WorkDate) {
			continue
		}
		if scope.Kind == ScopeSupplier && e.supplierID != scope.ID {
			continue
		}
		if scope.Kind == ScopeProject && e.projectID != scope.ID {
			continue
		}
		out = append(out, e.ref)
	}
	return out, nil
}

func (r *memoryReportRepo) CountTimesheets(ctx context.Context, scope Scope, year int) (int64, error) {
	var count int64
	for id, ref := range r.timesheets {
		if r.periods[id].Year != year {
			continue
		}
		switch scope.Kind {
		case ScopeSupplier:
			if r.vehicleSupplier[ref.VehicleID] != scope.ID {
				continue
			}
		case ScopeProject:
			if ref.ProjectID != scope.ID {
				continue
			}
		}
		count++
	}
	return count, nil
}

func (r *memoryReportRepo) addTimesheet(projectID, vehicleID int64, plate string, period shared.Period, entries []EntryRef) int64 {
	r.nextID++
	r.timesheets[r.nextID] = TimesheetRef{ID: r.nextID, ProjectID: projectID, VehicleID: vehicleID, VehiclePlate: plate}
	r.periods[r.nextID] = period
	r.entries[r.nextID] = entries
	return r.nextID
}

func amountPtr(s string) *money.Amount {
	a := money.MustParse(s)
	return &a
}

var reportPeriod = shared.Period{Year: 2026, Month: time.March}

func fixtureRepo() *memoryReportRepo {
	repo := newMemoryReportRepo()
	repo.suppliers[1] = &SupplierInfo{ID: 1, Name: "Arslan Nakliyat", TaxOffice: "Gebze", TaxNumber: "1234567890"}
	repo.projects[5] = &ProjectInfo{ID: 5, Name: "Gebze Fabrika", ClientName: "Demir Çelik A.Ş."}
	repo.routes[100] = &RouteMeta{ID: 100, Name: "Sabah Servisi", CurrentFactoryPrice: amountPtr("150.00")}
	repo.routes[101] = &RouteMeta{ID: 101, Name: "Akşam Servisi"}
	repo.vehicleSupplier[20] = 1
	repo.vehicleProject[5] = []VehicleRef{{ID: 20, Plate: "41 ABC 100"}, {ID: 21, Plate: "41 XYZ 200"}}
	return repo
}

func TestAggregateSupplierScope(t *testing.T) {
	ctx := context.Background()
	repo := fixtureRepo()
	svc := NewService(repo)

	repo.addTimesheet(5, 20, "41 ABC 100", reportPeriod, []EntryRef{
		{RouteID: 100, TripCount: 2, SupplierPrice: money.MustParse("100.00"), VATRatePercent: 20},
		{RouteID: 100, TripCount: 3, SupplierPrice: money.MustParse("100.00"), VATRatePercent: 20},
		{RouteID: 101, TripCount: 1, SupplierPrice: money.MustParse("80.00"), VATRatePercent: 10},
	})

	agg, err := svc.Aggregate(ctx, Scope{Kind: ScopeSupplier, ID: 1}, reportPeriod, PriceModeSupplier)
	require.NoError(t, err)
	require.Len(t, agg.Rows, 2)

	// Rows sort by plate then route name.
	require.Equal(t, "Akşam Servisi", agg.Rows[0].RouteName)
	require.Equal(t, 1, agg.Rows[0].TripTotal)
	require.Equal(t, money.MustParse("80.00"), agg.Rows[0].LineTotal)
	require.Equal(t, money.MustParse("8.00"), agg.Rows[0].LineVAT)

	require.Equal(t, "Sabah Servisi", agg.Rows[1].RouteName)
	require.Equal(t, 5, agg.Rows[1].TripTotal)
	require.Equal(t, money.MustParse("500.00"), agg.Rows[1].LineTotal)
	require.Equal(t, money.MustParse("100.00"), agg.Rows[1].LineVAT)

	require.Equal(t, money.MustParse("580.00"), agg.RouteTotal)
	require.Equal(t, money.MustParse("108.00"), agg.RouteVAT)
}

func TestAggregateFactoryFallbackChain(t *testing.T) {
	ctx := context.Background()
	repo := fixtureRepo()
	svc := NewService(repo)

	repo.addTimesheet(5, 20, "41 ABC 100", reportPeriod, []EntryRef{
		// Snapshot lacks a factory price; route's current one applies.
		{RouteID: 100, TripCount: 2, SupplierPrice: money.MustParse("100.00"), VATRatePercent: 20},
		// Neither snapshot nor route has one; supplier price applies.
		{RouteID: 101, TripCount: 1, SupplierPrice: money.MustParse("80.00"), VATRatePercent: 10},
	})

	agg, err := svc.Aggregate(ctx, Scope{Kind: ScopeProject, ID: 5}, reportPeriod, PriceModeFactory)
	require.NoError(t, err)

	byRoute := map[int64]RouteRow{}
	for _, row := range agg.Rows {
		if !row.NoEntry {
			byRoute[row.RouteID] = row
		}
	}
	require.Equal(t, money.MustParse("150.00"), byRoute[100].UnitPrice)
	require.Equal(t, money.MustParse("300.00"), byRoute[100].LineTotal)
	require.Equal(t, money.MustParse("80.00"), byRoute[101].UnitPrice)
}

func TestAggregateFactorySnapshotWins(t *testing.T) {
	ctx := context.Background()
	repo := fixtureRepo()
	svc := NewService(repo)

	repo.addTimesheet(5, 20, "41 ABC 100", reportPeriod, []EntryRef{
		{RouteID: 100, TripCount: 1, SupplierPrice: money.MustParse("100.00"),
			FactoryPrice: amountPtr("140.00"), VATRatePercent: 20},
	})

	agg, err := svc.Aggregate(ctx, Scope{Kind: ScopeProject, ID: 5}, reportPeriod, PriceModeFactory)
	require.NoError(t, err)
	require.Equal(t, money.MustParse("140.00"), agg.Rows[0].UnitPrice)
}

func TestAggregateFactoryReportListsIdleVehicles(t *testing.T) {
	ctx := context.Background()
	repo := fixtureRepo()
	svc := NewService(repo)

	repo.addTimesheet(5, 20, "41 ABC 100", reportPeriod, []EntryRef{
		{RouteID: 100, TripCount: 1, SupplierPrice: money.MustParse("100.00"), VATRatePercent: 20},
	})

	agg, err := svc.Aggregate(ctx, Scope{Kind: ScopeProject, ID: 5}, reportPeriod, PriceModeFactory)
	require.NoError(t, err)
	require.Len(t, agg.Rows, 2)

	idle := agg.Rows[1]
	require.True(t, idle.NoEntry)
	require.Equal(t, "41 XYZ 200", idle.VehiclePlate)
	require.Equal(t, "no entry", idle.RouteName)
	require.True(t, idle.LineTotal.IsZero())

	// Supplier reports never carry filler rows.
	supplierAgg, err := svc.Aggregate(ctx, Scope{Kind: ScopeSupplier, ID: 1}, reportPeriod, PriceModeSupplier)
	require.NoError(t, err)
	require.Len(t, supplierAgg.Rows, 1)
}

func TestAggregateExtraWorkRows(t *testing.T) {
	ctx := context.Background()
	repo := fixtureRepo()
	svc := NewService(repo)

	repo.extras = append(repo.extras,
		extraFixture{
			ref: ExtraWorkRef{ID: uuid.New(), WorkDate: reportPeriod.Day(12), Description: "ek sefer",
				SupplierPrice: money.MustParse("350.00"), FactoryPrice: amountPtr("500.00")},
			supplierID: 1, projectID: 5, approved: true,
		},
		extraFixture{
			ref: ExtraWorkRef{ID: uuid.New(), WorkDate: reportPeriod.Day(15), Description: "bekleyen",
				SupplierPrice: money.MustParse("100.00")},
			supplierID: 1, projectID: 5, approved: false,
		},
	)

	supplierAgg, err := svc.Aggregate(ctx, Scope{Kind: ScopeSupplier, ID: 1}, reportPeriod, PriceModeSupplier)
	require.NoError(t, err)
	require.Len(t, supplierAgg.ExtraRows, 1)
	require.Equal(t, money.MustParse("350.00"), supplierAgg.ExtraRows[0].Amount)
	require.Equal(t, money.MustParse("350.00"), supplierAgg.ExtraWorkTotal)
	// Extra work never contributes VAT.
	require.True(t, supplierAgg.RouteVAT.IsZero())

	factoryAgg, err := svc.Aggregate(ctx, Scope{Kind: ScopeProject, ID: 5}, reportPeriod, PriceModeFactory)
	require.NoError(t, err)
	require.Equal(t, money.MustParse("500.00"), factoryAgg.ExtraWorkTotal)
}

func TestAggregateUnknownScope(t *testing.T) {
	ctx := context.Background()
	svc := NewService(fixtureRepo())

	_, err := svc.Aggregate(ctx, Scope{Kind: ScopeSupplier, ID: 999}, reportPeriod, PriceModeSupplier)
	require.True(t, errors.Is(err, httpx.ErrNotFound))

	_, err = svc.Aggregate(ctx, Scope{Kind: "FLEET", ID: 1}, reportPeriod, PriceModeSupplier)
	require.True(t, errors.Is(err, httpx.ErrValidation))
}

func TestAggregateEmptyScopeIsZero(t *testing.T) {
	ctx := context.Background()
	svc := NewService(fixtureRepo())

	agg, err := svc.Aggregate(ctx, Scope{Kind: ScopeSupplier, ID: 1}, reportPeriod, PriceModeSupplier)
	require.NoError(t, err)
	require.Empty(t, agg.Rows)
	require.True(t, agg.RouteTotal.IsZero())
	require.True(t, agg.Invoice().InvoiceAmount.IsZero())
}
