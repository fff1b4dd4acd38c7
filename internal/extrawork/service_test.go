package extrawork

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/sefer-erp/sefer-erp/internal/money"
	"github.com/sefer-erp/sefer-erp/internal/platform/httpx"
	"github.com/sefer-erp/sefer-erp/internal/rbac"
	"github.com/sefer-erp/sefer-erp/internal/shared"
)

type memoryLedgerRepo struct {
	records map[uuid.UUID]*ExtraWork
}

func newMemoryLedgerRepo() *memoryLedgerRepo {
	return &memoryLedgerRepo{records: make(map[uuid.UUID]*ExtraWork)}
}

func (r *memoryLedgerRepo) Create(ctx context.Context, record *ExtraWork) error {
	record.CreatedAt = time.Now()
	record.UpdatedAt = time.Now()
	clone := *record
	r.records[record.ID] = &clone
	return nil
}

func (r *memoryLedgerRepo) Get(ctx context.Context, id uuid.UUID) (*ExtraWork, error) {
	record, ok := r.records[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	clone := *record
	return &clone, nil
}

func (r *memoryLedgerRepo) Update(ctx context.Context, record *ExtraWork) error {
	if _, ok := r.records[record.ID]; !ok {
		return httpx.ErrNotFound
	}
	record.UpdatedAt = time.Now()
	clone := *record
	r.records[record.ID] = &clone
	return nil
}

func (r *memoryLedgerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.records[id]; !ok {
		return httpx.ErrNotFound
	}
	delete(r.records, id)
	return nil
}

func (r *memoryLedgerRepo) List(ctx context.Context, filters ListFilters) ([]ExtraWork, int64, error) {
	var out []ExtraWork
	for _, record := range r.records {
		if filters.SupplierID != 0 && record.SupplierID != filters.SupplierID {
			continue
		}
		if filters.ProjectID != 0 && record.ProjectID != filters.ProjectID {
			continue
		}
		out = append(out, *record)
	}
	return out, int64(len(out)), nil
}

type memoryApprovalTrail struct {
	logs []shared.ApprovalLog
}

func (t *memoryApprovalTrail) Record(ctx context.Context, log shared.ApprovalLog) error {
	t.logs = append(t.logs, log)
	return nil
}

var (
	adminActor = shared.Actor{ID: 1, Name: "admin", Role: rbac.RoleAdmin}
	coordActor = shared.Actor{ID: 2, Name: "coordinator", Role: rbac.RoleCoordinator}
	clerkActor = shared.Actor{ID: 3, Name: "clerk", Role: rbac.RoleClerk}
)

func validInput() Input {
	return Input{
		WorkDate:      time.Date(2026, time.March, 12, 0, 0, 0, 0, time.UTC),
		Description:   "ek sefer",
		SupplierPrice: money.MustParse("350.00"),
		SupplierID:    10,
		VehicleID:     20,
		ProjectID:     30,
	}
}

func TestCreateFactoryPriceNeedsCapability(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryLedgerRepo()
	svc := NewService(repo, nil)

	input := validInput()
	fp := money.MustParse("500.00")
	input.FactoryPrice = &fp

	_, err := svc.Create(ctx, clerkActor, input)
	require.True(t, errors.Is(err, httpx.ErrForbidden))
	require.Empty(t, repo.records)

	record, err := svc.Create(ctx, adminActor, input)
	require.NoError(t, err)
	require.NotNil(t, record.FactoryPrice)
	require.Equal(t, fp, *record.FactoryPrice)
}

func TestCreateDefaultsToApproved(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryLedgerRepo(), nil)

	record, err := svc.Create(ctx, clerkActor, validInput())
	require.NoError(t, err)
	require.Equal(t, StatusApproved, record.Status)
	require.Equal(t, clerkActor.ID, record.CreatedBy)
}

func TestPendingCreateWritesSubmitTrail(t *testing.T) {
	ctx := context.Background()
	trail := &memoryApprovalTrail{}
	svc := NewService(newMemoryLedgerRepo(), trail)

	input := validInput()
	input.Status = StatusPendingApproval
	record, err := svc.Create(ctx, clerkActor, input)
	require.NoError(t, err)
	require.Equal(t, StatusPendingApproval, record.Status)
	require.Len(t, trail.logs, 1)
	require.Equal(t, shared.ApprovalSubmit, trail.logs[0].Action)
	require.Equal(t, record.ID, trail.logs[0].RefID)
}

func TestApproveIsOneWay(t *testing.T) {
	ctx := context.Background()
	trail := &memoryApprovalTrail{}
	svc := NewService(newMemoryLedgerRepo(), trail)

	input := validInput()
	input.Status = StatusPendingApproval
	record, err := svc.Create(ctx, clerkActor, input)
	require.NoError(t, err)

	_, err = svc.Approve(ctx, clerkActor, record.ID)
	require.True(t, errors.Is(err, httpx.ErrForbidden))

	approved, err := svc.Approve(ctx, coordActor, record.ID)
	require.NoError(t, err)
	require.Equal(t, StatusApproved, approved.Status)
	require.NotNil(t, approved.ApprovedBy)
	require.Equal(t, coordActor.ID, *approved.ApprovedBy)
	require.NotNil(t, approved.ApprovedAt)

	// Approving again is rejected, not silently repeated.
	_, err = svc.Approve(ctx, coordActor, record.ID)
	require.True(t, errors.Is(err, httpx.ErrValidation))
	require.Len(t, trail.logs, 2)
}

func TestApprovedRecordLockedForClerk(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryLedgerRepo(), nil)

	record, err := svc.Create(ctx, clerkActor, validInput())
	require.NoError(t, err)
	require.Equal(t, StatusApproved, record.Status)

	update := validInput()
	update.Description = "düzeltme"
	_, err = svc.Update(ctx, clerkActor, record.ID, update)
	require.True(t, errors.Is(err, httpx.ErrForbidden))

	updated, err := svc.Update(ctx, coordActor, record.ID, update)
	require.NoError(t, err)
	require.Equal(t, "düzeltme", updated.Description)
}

func TestUpdateFactoryPriceChangeNeedsCapability(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryLedgerRepo(), nil)

	input := validInput()
	input.Status = StatusPendingApproval
	record, err := svc.Create(ctx, clerkActor, input)
	require.NoError(t, err)

	update := validInput()
	update.Status = StatusPendingApproval
	fp := money.MustParse("600.00")
	update.FactoryPrice = &fp

	// Coordinator sees factory prices but may not set them.
	_, err = svc.Update(ctx, coordActor, record.ID, update)
	require.True(t, errors.Is(err, httpx.ErrForbidden))

	updated, err := svc.Update(ctx, adminActor, record.ID, update)
	require.NoError(t, err)
	require.NotNil(t, updated.FactoryPrice)
}

func TestFactoryPriceRedaction(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryLedgerRepo(), nil)

	input := validInput()
	fp := money.MustParse("500.00")
	input.FactoryPrice = &fp
	record, err := svc.Create(ctx, adminActor, input)
	require.NoError(t, err)

	forClerk, err := svc.Get(ctx, clerkActor, record.ID)
	require.NoError(t, err)
	require.Nil(t, forClerk.FactoryPrice)

	forCoord, err := svc.Get(ctx, coordActor, record.ID)
	require.NoError(t, err)
	require.NotNil(t, forCoord.FactoryPrice)
}

func TestDeleteRules(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryLedgerRepo()
	svc := NewService(repo, nil)

	// Submitter may delete their own pending record.
	input := validInput()
	input.Status = StatusPendingApproval
	pending, err := svc.Create(ctx, clerkActor, input)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, clerkActor, pending.ID))

	// Approved records are out of the submitter's reach.
	approved, err := svc.Create(ctx, clerkActor, validInput())
	require.NoError(t, err)
	err = svc.Delete(ctx, clerkActor, approved.ID)
	require.True(t, errors.Is(err, httpx.ErrForbidden))

	require.NoError(t, svc.Delete(ctx, coordActor, approved.ID))
	require.Empty(t, repo.records)
}
