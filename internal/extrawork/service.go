package extrawork

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sefer-erp/sefer-erp/internal/money"
	"github.com/sefer-erp/sefer-erp/internal/platform/httpx"
	"github.com/sefer-erp/sefer-erp/internal/shared"
)

// approvalModule tags approval trail rows written by this package.
const approvalModule = "extrawork"

// Service handles ledger business logic.
type Service struct {
	repo      RepositoryPort
	approvals ApprovalPort
}

// NewService builds a Service instance. approvals may be nil.
func NewService(repo RepositoryPort, approvals ApprovalPort) *Service {
	return &Service{repo: repo, approvals: approvals}
}

// Create records a new charge. Setting a factory price needs the edit
// capability. Status defaults to approved; callers that route through
// an approval workflow submit as pending instead.
func (s *Service) Create(ctx context.Context, actor shared.Actor, input Input) (*ExtraWork, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if input.FactoryPrice != nil && !actor.Role.CanEditFactoryPrice() {
		return nil, fmt.Errorf("%w: role %s may not set factory price", httpx.ErrForbidden, actor.Role)
	}
	status := input.Status
	if status == "" {
		status = StatusApproved
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", httpx.ErrValidation, input.Status)
	}

	record := &ExtraWork{
		ID:            uuid.New(),
		WorkDate:      input.WorkDate,
		Description:   input.Description,
		SupplierPrice: input.SupplierPrice,
		FactoryPrice:  input.FactoryPrice,
		SupplierID:    input.SupplierID,
		VehicleID:     input.VehicleID,
		ProjectID:     input.ProjectID,
		Status:        status,
		CreatedBy:     actor.ID,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, err
	}
	if status == StatusPendingApproval && s.approvals != nil {
		_ = s.approvals.Record(ctx, shared.ApprovalLog{
			Module:  approvalModule,
			RefID:   record.ID,
			ActorID: actor.ID,
			Action:  shared.ApprovalSubmit,
			Note:    record.Description,
		})
	}
	return s.redact(record, actor), nil
}

// Update edits a charge. Approved records are locked against everyone
// except approvers; factory price changes need the edit capability.
func (s *Service) Update(ctx context.Context, actor shared.Actor, id uuid.UUID, input Input) (*ExtraWork, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	record, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.Status == StatusApproved && !actor.Role.CanApproveExtraWork() {
		return nil, fmt.Errorf("%w: approved record may only be edited by an approver", httpx.ErrForbidden)
	}
	if !equalAmountPtr(record.FactoryPrice, input.FactoryPrice) && !actor.Role.CanEditFactoryPrice() {
		return nil, fmt.Errorf("%w: role %s may not change factory price", httpx.ErrForbidden, actor.Role)
	}

	record.WorkDate = input.WorkDate
	record.Description = input.Description
	record.SupplierPrice = input.SupplierPrice
	record.FactoryPrice = input.FactoryPrice
	record.SupplierID = input.SupplierID
	record.VehicleID = input.VehicleID
	record.ProjectID = input.ProjectID
	if err := s.repo.Update(ctx, record); err != nil {
		return nil, err
	}
	return s.redact(record, actor), nil
}

// Approve moves a pending record to approved, stamping the approver.
// The transition is one-way; approving anything else is rejected.
func (s *Service) Approve(ctx context.Context, actor shared.Actor, id uuid.UUID) (*ExtraWork, error) {
	if !actor.Role.CanApproveExtraWork() {
		return nil, fmt.Errorf("%w: role %s may not approve extra work", httpx.ErrForbidden, actor.Role)
	}
	record, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.Status != StatusPendingApproval {
		return nil, fmt.Errorf("%w: record is %s, only pending records can be approved", httpx.ErrValidation, record.Status)
	}

	now := time.Now()
	record.Status = StatusApproved
	record.ApprovedBy = &actor.ID
	record.ApprovedAt = &now
	if err := s.repo.Update(ctx, record); err != nil {
		return nil, err
	}
	if s.approvals != nil {
		_ = s.approvals.Record(ctx, shared.ApprovalLog{
			Module:  approvalModule,
			RefID:   record.ID,
			ActorID: actor.ID,
			Action:  shared.ApprovalApprove,
		})
	}
	return s.redact(record, actor), nil
}

// Delete removes a charge. Approvers may delete anything; the original
// submitter may delete their own record while it is still pending.
func (s *Service) Delete(ctx context.Context, actor shared.Actor, id uuid.UUID) error {
	record, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !actor.Role.CanApproveExtraWork() {
		if record.Status != StatusPendingApproval || record.CreatedBy != actor.ID {
			return fmt.Errorf("%w: role %s may not delete this record", httpx.ErrForbidden, actor.Role)
		}
	}
	return s.repo.Delete(ctx, id)
}

// Get returns one charge with factory price redacted per role.
func (s *Service) Get(ctx context.Context, actor shared.Actor, id uuid.UUID) (*ExtraWork, error) {
	record, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.redact(record, actor), nil
}

// List returns charges matching the filters, redacted per role.
func (s *Service) List(ctx context.Context, actor shared.Actor, filters ListFilters) ([]ExtraWork, int64, error) {
	records, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, 0, err
	}
	out := make([]ExtraWork, 0, len(records))
	for i := range records {
		out = append(out, *s.redact(&records[i], actor))
	}
	return out, total, nil
}

func (s *Service) redact(record *ExtraWork, actor shared.Actor) *ExtraWork {
	if actor.Role.CanViewFactoryPrice() {
		return record
	}
	clone := *record
	clone.FactoryPrice = nil
	return &clone
}

func equalAmountPtr(a, b *money.Amount) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func validateInput(input Input) error {
	if input.WorkDate.IsZero() {
		return fmt.Errorf("%w: work date required", httpx.ErrValidation)
	}
	if input.Description == "" {
		return fmt.Errorf("%w: description required", httpx.ErrValidation)
	}
	if input.SupplierPrice < 0 {
		return fmt.Errorf("%w: supplier price must not be negative", httpx.ErrValidation)
	}
	if input.FactoryPrice != nil && *input.FactoryPrice < 0 {
		return fmt.Errorf("%w: factory price must not be negative", httpx.ErrValidation)
	}
	if input.SupplierID == 0 || input.VehicleID == 0 || input.ProjectID == 0 {
		return fmt.Errorf("%w: supplier, vehicle and project are required", httpx.ErrValidation)
	}
	return nil
}
