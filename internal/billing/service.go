package billing

import (
	"context"
	"fmt"
	"sort"

	"github.com/sefer-erp/sefer-erp/internal/money"
	"github.com/sefer-erp/sefer-erp/internal/platform/httpx"
	"github.com/sefer-erp/sefer-erp/internal/shared"
)

// Service folds timesheets and extra work into report aggregates.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Aggregate computes the report body for a scope, period and price
// mode. Empty scopes produce zero rows and zero totals, not an error.
func (s *Service) Aggregate(ctx context.Context, scope Scope, period shared.Period, mode PriceMode) (*Aggregate, error) {
	if err := validateScope(scope); err != nil {
		return nil, err
	}
	if mode != PriceModeSupplier && mode != PriceModeFactory {
		return nil, fmt.Errorf("%w: unknown price mode %q", httpx.ErrValidation, mode)
	}
	if err := period.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkScopeExists(ctx, scope); err != nil {
		return nil, err
	}

	timesheets, err := s.repo.ListTimesheets(ctx, scope, period)
	if err != nil {
		return nil, err
	}

	agg := &Aggregate{}
	routeCache := map[int64]*RouteMeta{}
	seenVehicles := map[int64]bool{}

	for _, ts := range timesheets {
		seenVehicles[ts.VehicleID] = true
		entries, err := s.repo.ListEntries(ctx, ts.ID)
		if err != nil {
			return nil, err
		}
		rows, err := s.foldEntries(ctx, ts, entries, mode, routeCache)
		if err != nil {
			return nil, err
		}
		agg.Rows = append(agg.Rows, rows...)
	}

	// Factory reports list every fleet vehicle, idle ones included.
	if scope.Kind == ScopeProject {
		vehicles, err := s.repo.ListProjectVehicles(ctx, scope.ID)
		if err != nil {
			return nil, err
		}
		for _, v := range vehicles {
			if seenVehicles[v.ID] {
				continue
			}
			agg.Rows = append(agg.Rows, RouteRow{
				VehicleID:    v.ID,
				VehiclePlate: v.Plate,
				RouteName:    "no entry",
				NoEntry:      true,
			})
		}
	}

	sort.Slice(agg.Rows, func(i, j int) bool {
		a, b := agg.Rows[i], agg.Rows[j]
		if a.VehiclePlate != b.VehiclePlate {
			return a.VehiclePlate < b.VehiclePlate
		}
		return a.RouteName < b.RouteName
	})
	for _, row := range agg.Rows {
		agg.RouteTotal = agg.RouteTotal.Add(row.LineTotal)
		agg.RouteVAT = agg.RouteVAT.Add(row.LineVAT)
	}

	extras, err := s.repo.ListExtraWork(ctx, scope, period)
	if err != nil {
		return nil, err
	}
	for _, e := range extras {
		amount := e.SupplierPrice
		if mode == PriceModeFactory && e.FactoryPrice != nil {
			amount = *e.FactoryPrice
		}
		agg.ExtraRows = append(agg.ExtraRows, ExtraWorkRow{
			ID:          e.ID,
			WorkDate:    e.WorkDate,
			Description: e.Description,
			Amount:      amount,
		})
		agg.ExtraWorkTotal = agg.ExtraWorkTotal.Add(amount)
	}
	return agg, nil
}

// foldEntries groups one grid's entries by route. Totals are summed
// per entry, so a route whose snapshots differ across days is still
// valued at each entry's own frozen price.
func (s *Service) foldEntries(ctx context.Context, ts TimesheetRef, entries []EntryRef, mode PriceMode, routeCache map[int64]*RouteMeta) ([]RouteRow, error) {
	byRoute := map[int64]*RouteRow{}
	var order []int64
	for _, e := range entries {
		if e.TripCount == 0 {
			continue
		}
		meta, err := s.routeMeta(ctx, e.RouteID, routeCache)
		if err != nil {
			return nil, err
		}
		unit := resolveUnitPrice(e, meta, mode)

		row, ok := byRoute[e.RouteID]
		if !ok {
			row = &RouteRow{
				VehicleID:      ts.VehicleID,
				VehiclePlate:   ts.VehiclePlate,
				RouteID:        e.RouteID,
				RouteName:      meta.Name,
				UnitPrice:      unit,
				VATRatePercent: e.VATRatePercent,
			}
			byRoute[e.RouteID] = row
			order = append(order, e.RouteID)
		}
		lineTotal := unit.MulCount(e.TripCount)
		row.TripTotal += e.TripCount
		row.LineTotal = row.LineTotal.Add(lineTotal)
		row.LineVAT = row.LineVAT.Add(lineTotal.Percent(e.VATRatePercent))
	}

	rows := make([]RouteRow, 0, len(order))
	for _, routeID := range order {
		rows = append(rows, *byRoute[routeID])
	}
	return rows, nil
}

// resolveUnitPrice picks the price an entry is valued at. Factory mode
// falls back from the frozen factory price to the route's current
// factory price and finally to the frozen supplier price.
func resolveUnitPrice(e EntryRef, meta *RouteMeta, mode PriceMode) money.Amount {
	if mode != PriceModeFactory {
		return e.SupplierPrice
	}
	if e.FactoryPrice != nil {
		return *e.FactoryPrice
	}
	if meta.CurrentFactoryPrice != nil {
		return *meta.CurrentFactoryPrice
	}
	return e.SupplierPrice
}

func (s *Service) routeMeta(ctx context.Context, routeID int64, cache map[int64]*RouteMeta) (*RouteMeta, error) {
	if meta, ok := cache[routeID]; ok {
		return meta, nil
	}
	meta, err := s.repo.GetRouteMeta(ctx, routeID)
	if err != nil {
		return nil, err
	}
	cache[routeID] = meta
	return meta, nil
}

func (s *Service) checkScopeExists(ctx context.Context, scope Scope) error {
	switch scope.Kind {
	case ScopeSupplier:
		_, err := s.repo.GetSupplier(ctx, scope.ID)
		return err
	case ScopeProject:
		_, err := s.repo.GetProject(ctx, scope.ID)
		return err
	default:
		return fmt.Errorf("%w: unknown scope kind %q", httpx.ErrValidation, scope.Kind)
	}
}

func validateScope(scope Scope) error {
	if scope.ID == 0 {
		return fmt.Errorf("%w: scope id required", httpx.ErrValidation)
	}
	if scope.Kind != ScopeSupplier && scope.Kind != ScopeProject {
		return fmt.Errorf("%w: unknown scope kind %q", httpx.ErrValidation, scope.Kind)
	}
	return nil
}
