package timesheet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sefer-erp/sefer-erp/internal/platform/httpx"
	"github.com/sefer-erp/sefer-erp/internal/shared"
)

// Service handles grid business logic.
type Service struct {
	repo RepositoryPort

	// refreshSnapshotOnUpdate controls whether rewriting an existing
	// cell re-freezes the snapshot from the route's current prices.
	// Off by default: quantity edits keep the original price context.
	refreshSnapshotOnUpdate bool
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, refreshSnapshotOnUpdate bool) *Service {
	return &Service{repo: repo, refreshSnapshotOnUpdate: refreshSnapshotOnUpdate}
}

// GetOrCreate returns the timesheet for the key, creating it on first
// access. A concurrent create racing on the unique key is absorbed by
// refetching the winner's row.
func (s *Service) GetOrCreate(ctx context.Context, projectID, vehicleID int64, period shared.Period) (*Timesheet, error) {
	if projectID == 0 {
		return nil, fmt.Errorf("%w: project id required", httpx.ErrValidation)
	}
	if vehicleID == 0 {
		return nil, fmt.Errorf("%w: vehicle id required", httpx.ErrValidation)
	}
	if err := period.Validate(); err != nil {
		return nil, err
	}

	ts, err := s.repo.FindTimesheet(ctx, projectID, vehicleID, period)
	if err == nil {
		return ts, nil
	}
	if !errors.Is(err, httpx.ErrNotFound) {
		return nil, err
	}

	ts, err = s.repo.CreateTimesheet(ctx, projectID, vehicleID, period)
	if err == nil {
		return ts, nil
	}
	if errors.Is(err, httpx.ErrConflict) {
		return s.repo.FindTimesheet(ctx, projectID, vehicleID, period)
	}
	return nil, err
}

// WriteEntry upserts or deletes one grid cell. A trip count of zero
// deletes the cell; the returned entry is nil in that case. On first
// write the route's current prices are frozen into the entry.
func (s *Service) WriteEntry(ctx context.Context, timesheetID int64, date time.Time, routeID int64, tripCount int) (*Entry, error) {
	ts, err := s.repo.GetTimesheet(ctx, timesheetID)
	if err != nil {
		return nil, err
	}
	return s.writeEntry(ctx, ts, date, routeID, tripCount)
}

func (s *Service) writeEntry(ctx context.Context, ts *Timesheet, date time.Time, routeID int64, tripCount int) (*Entry, error) {
	if tripCount < 0 {
		return nil, fmt.Errorf("%w: trip count must not be negative", httpx.ErrValidation)
	}
	if routeID == 0 {
		return nil, fmt.Errorf("%w: route id required", httpx.ErrValidation)
	}
	period := shared.Period{Year: ts.Year, Month: ts.Month}
	if date.IsZero() || !period.Contains(date) {
		return nil, fmt.Errorf("%w: date %s outside timesheet period %s", httpx.ErrValidation, date.Format("2006-01-02"), period)
	}

	if tripCount == 0 {
		if err := s.repo.DeleteEntry(ctx, ts.ID, date, routeID); err != nil {
			return nil, err
		}
		return nil, nil
	}

	route, err := s.repo.GetRouteInfo(ctx, routeID)
	if err != nil {
		return nil, err
	}
	if route.ProjectID != ts.ProjectID {
		return nil, fmt.Errorf("%w: route %d does not belong to project %d", httpx.ErrValidation, routeID, ts.ProjectID)
	}

	return s.repo.UpsertEntry(ctx, EntryUpsert{
		TimesheetID: ts.ID,
		EntryDate:   date,
		RouteID:     routeID,
		TripCount:   tripCount,
		Snapshot:    route.Snapshot,
	}, s.refreshSnapshotOnUpdate)
}

// WriteEntriesBulk applies the single-cell rule to every item.
// Items fail independently; the result reports which ones failed.
func (s *Service) WriteEntriesBulk(ctx context.Context, timesheetID int64, writes []EntryWrite) (BulkResult, error) {
	ts, err := s.repo.GetTimesheet(ctx, timesheetID)
	if err != nil {
		return BulkResult{}, err
	}

	var result BulkResult
	for i, w := range writes {
		entry, err := s.writeEntry(ctx, ts, w.Date, w.RouteID, w.TripCount)
		if err != nil {
			result.Failures = append(result.Failures, EntryFailure{
				Index:   i,
				Date:    w.Date.Format("2006-01-02"),
				RouteID: w.RouteID,
				Reason:  err.Error(),
			})
			continue
		}
		if entry == nil {
			result.Deleted++
		} else {
			result.Applied++
		}
	}
	return result, nil
}

// ApplyRangeFill expands a day range into per-day writes on one route
// and runs them through the bulk path. Bounds may arrive swapped and
// are clipped to the month; Saturdays and Sundays are skipped unless
// includeWeekends is set.
func (s *Service) ApplyRangeFill(ctx context.Context, timesheetID, routeID int64, startDay, endDay, tripCountPerDay int, includeWeekends bool) (BulkResult, error) {
	ts, err := s.repo.GetTimesheet(ctx, timesheetID)
	if err != nil {
		return BulkResult{}, err
	}
	period := shared.Period{Year: ts.Year, Month: ts.Month}

	if startDay > endDay {
		startDay, endDay = endDay, startDay
	}
	if startDay < 1 {
		startDay = 1
	}
	if last := period.DayCount(); endDay > last {
		endDay = last
	}
	if startDay > endDay {
		return BulkResult{}, fmt.Errorf("%w: day range outside month", httpx.ErrValidation)
	}

	var writes []EntryWrite
	for day := startDay; day <= endDay; day++ {
		date := period.Day(day)
		if !includeWeekends && shared.IsWeekend(date) {
			continue
		}
		writes = append(writes, EntryWrite{Date: date, RouteID: routeID, TripCount: tripCountPerDay})
	}
	return s.WriteEntriesBulk(ctx, timesheetID, writes)
}

// Grid returns the timesheet and its entries.
func (s *Service) Grid(ctx context.Context, timesheetID int64) (*Timesheet, []Entry, error) {
	ts, err := s.repo.GetTimesheet(ctx, timesheetID)
	if err != nil {
		return nil, nil, err
	}
	entries, err := s.repo.ListEntries(ctx, timesheetID)
	if err != nil {
		return nil, nil, err
	}
	return ts, entries, nil
}
