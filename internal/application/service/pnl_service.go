package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/davidkiarie/opsdeck-api/internal/domain/entity"
	"github.com/davidkiarie/opsdeck-api/internal/domain/enum"
	"github.com/davidkiarie/opsdeck-api/internal/domain/repository"
	"github.com/davidkiarie/opsdeck-api/pkg/apperror"
	"github.com/davidkiarie/opsdeck-api/pkg/pagination"
	"github.com/google/uuid"
)

// EventProvisioner resolves an external event record from an approved P&L:
// update when the P&L already links one, create otherwise. The returned id
// is written back onto the aggregate before the status change is committed.
type EventProvisioner interface {
	ProvisionEvent(ctx context.Context, input *ProvisionEventInput) (uuid.UUID, error)
}

// ProvisionEventInput carries the P&L figures an event record is built from
type ProvisionEventInput struct {
	LinkedEventID *uuid.UUID
	Name          string
	Venue         string
	StartDate     *time.Time
	EndDate       *time.Time
	PlannedBudget float64
}

// PnlService handles event P&L operations: the editing workspace, line and
// meta mutations, what-if scenarios, and the approval workflow.
//
// When the primary store fails to load the workspace the service degrades
// to an in-memory repository; every subsequent operation runs against that
// local store and responses carry the local-only flag so callers can warn
// that nothing is durable.
type PnlService struct {
	pnlRepo     repository.PnlRepository
	fallback    repository.PnlRepository
	provisioner EventProvisioner

	mu        sync.RWMutex
	localOnly bool
}

// NewPnlService creates a new P&L service
func NewPnlService(pnlRepo, fallback repository.PnlRepository, provisioner EventProvisioner) *PnlService {
	return &PnlService{
		pnlRepo:     pnlRepo,
		fallback:    fallback,
		provisioner: provisioner,
	}
}

// LocalOnly reports whether the service has degraded to the in-memory store
func (s *PnlService) LocalOnly() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.localOnly
}

func (s *PnlService) enterLocalMode(cause error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.localOnly {
		log.Printf("Warning: P&L store unreachable, falling back to in-memory state: %v", cause)
		s.localOnly = true
	}
}

func (s *PnlService) store() repository.PnlRepository {
	if s.LocalOnly() {
		return s.fallback
	}
	return s.pnlRepo
}

// WorkspaceOutput is the editing surface state: the active aggregate plus
// the durability flag.
type WorkspaceOutput struct {
	Pnl       *entity.EventPnl `json:"pnl"`
	LocalOnly bool             `json:"local_only"`
}

// GetWorkspace returns the owner's latest draft, or a fresh empty aggregate
// when none exists. The empty aggregate is not persisted until the first
// save. A load failure against the primary store switches the service to
// local-only mode instead of failing the request.
func (s *PnlService) GetWorkspace(ctx context.Context, ownerID uuid.UUID) (*WorkspaceOutput, error) {
	pnl, err := s.store().GetLatestDraft(ctx, ownerID)
	if err != nil && !s.LocalOnly() {
		s.enterLocalMode(err)
		pnl, err = s.fallback.GetLatestDraft(ctx, ownerID)
	}
	if err != nil {
		return nil, err
	}
	if pnl == nil {
		pnl = entity.NewEmptyPnl(ownerID)
	}
	return &WorkspaceOutput{Pnl: pnl, LocalOnly: s.LocalOnly()}, nil
}

// SavePnl persists the aggregate. A nil ID creates a new draft; an existing
// ID updates it. Totals are recomputed server-side before the write, so a
// stale or hand-edited totals block can never be stored.
func (s *PnlService) SavePnl(ctx context.Context, ownerID uuid.UUID, pnl *entity.EventPnl) (*entity.EventPnl, error) {
	if pnl.ID != uuid.Nil {
		existing, err := s.store().GetByID(ctx, pnl.ID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			if existing.OwnerID != ownerID {
				return nil, apperror.ErrForbidden
			}
			if err := ensureEditable(existing); err != nil {
				return nil, err
			}
			pnl.Status = existing.Status
			pnl.CreatedAt = existing.CreatedAt
			pnl.LinkedEventID = existing.LinkedEventID
		}
	}

	pnl.OwnerID = ownerID
	if len(pnl.RevenueLines) == 0 || len(pnl.CostLines) == 0 {
		return nil, apperror.NewBadRequestError("A P&L needs at least one revenue line and one cost line")
	}
	pnl.Recalculate()

	return s.store().Save(ctx, pnl)
}

// GetPnl retrieves a P&L by id, scoped to its owner
func (s *PnlService) GetPnl(ctx context.Context, ownerID, id uuid.UUID, isSuperAdmin bool) (*entity.EventPnl, error) {
	return s.getOwned(ctx, ownerID, id, isSuperAdmin)
}

// ListPnlsInput represents the input for listing P&Ls
type ListPnlsInput struct {
	OwnerID      uuid.UUID
	IsSuperAdmin bool
	Pagination   *pagination.PaginationParams
	Search       string
	Status       *enum.PnlStatus
}

// ListPnls lists P&Ls with filtering
func (s *PnlService) ListPnls(ctx context.Context, input *ListPnlsInput) (*pagination.PaginatedResult[entity.EventPnl], error) {
	params := &repository.PnlFilterParams{
		Pagination: input.Pagination,
		Search:     input.Search,
		Status:     input.Status,
	}

	var ownerID uuid.UUID
	if !input.IsSuperAdmin {
		ownerID = input.OwnerID
	}

	pnls, total, err := s.store().List(ctx, ownerID, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(input.Pagination.Page, input.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(pnls, pag), nil
}

// AddRevenueLine appends a zeroed revenue line and persists the aggregate
func (s *PnlService) AddRevenueLine(ctx context.Context, ownerID, pnlID uuid.UUID) (*entity.EventPnl, error) {
	return s.mutate(ctx, ownerID, pnlID, func(pnl *entity.EventPnl) error {
		pnl.AddRevenueLine()
		return nil
	})
}

// AddCostLine appends a zeroed cost line and persists the aggregate
func (s *PnlService) AddCostLine(ctx context.Context, ownerID, pnlID uuid.UUID) (*entity.EventPnl, error) {
	return s.mutate(ctx, ownerID, pnlID, func(pnl *entity.EventPnl) error {
		pnl.AddCostLine()
		return nil
	})
}

// UpdateRevenueLine applies a partial update to a revenue line
func (s *PnlService) UpdateRevenueLine(ctx context.Context, ownerID, pnlID, lineID uuid.UUID, patch entity.RevenueLinePatch) (*entity.EventPnl, error) {
	return s.mutate(ctx, ownerID, pnlID, func(pnl *entity.EventPnl) error {
		return pnl.UpdateRevenueLine(lineID, patch)
	})
}

// UpdateCostLine applies a partial update to a cost line
func (s *PnlService) UpdateCostLine(ctx context.Context, ownerID, pnlID, lineID uuid.UUID, patch entity.CostLinePatch) (*entity.EventPnl, error) {
	return s.mutate(ctx, ownerID, pnlID, func(pnl *entity.EventPnl) error {
		return pnl.UpdateCostLine(lineID, patch)
	})
}

// RemoveRevenueLine removes a revenue line, rejecting removal of the last one
func (s *PnlService) RemoveRevenueLine(ctx context.Context, ownerID, pnlID, lineID uuid.UUID) (*entity.EventPnl, error) {
	return s.mutate(ctx, ownerID, pnlID, func(pnl *entity.EventPnl) error {
		return pnl.RemoveRevenueLine(lineID)
	})
}

// RemoveCostLine removes a cost line, rejecting removal of the last one
func (s *PnlService) RemoveCostLine(ctx context.Context, ownerID, pnlID, lineID uuid.UUID) (*entity.EventPnl, error) {
	return s.mutate(ctx, ownerID, pnlID, func(pnl *entity.EventPnl) error {
		return pnl.RemoveCostLine(lineID)
	})
}

// UpdateMeta applies a partial update to the P&L meta fields
func (s *PnlService) UpdateMeta(ctx context.Context, ownerID, pnlID uuid.UUID, patch entity.PnlMetaPatch) (*entity.EventPnl, error) {
	return s.mutate(ctx, ownerID, pnlID, func(pnl *entity.EventPnl) error {
		pnl.UpdateMeta(patch)
		return nil
	})
}

// ApplyScenario runs a what-if projection with candidate attendance and
// ticket price values
func (s *PnlService) ApplyScenario(ctx context.Context, ownerID, pnlID uuid.UUID, attendance int, ticketPrice float64) (*entity.EventPnl, error) {
	return s.mutate(ctx, ownerID, pnlID, func(pnl *entity.EventPnl) error {
		pnl.ApplyScenario(attendance, ticketPrice)
		return nil
	})
}

// Submit moves a draft P&L into review
func (s *PnlService) Submit(ctx context.Context, ownerID, pnlID uuid.UUID) (*entity.EventPnl, error) {
	return s.transition(ctx, ownerID, pnlID, enum.PnlStatusInReview)
}

// Reject marks the P&L rejected for this cycle
func (s *PnlService) Reject(ctx context.Context, ownerID, pnlID uuid.UUID) (*entity.EventPnl, error) {
	return s.transition(ctx, ownerID, pnlID, enum.PnlStatusRejected)
}

// Approve transitions the P&L to approved and provisions the linked event
// record from its figures. The provisioning call and the status write are
// one logical unit: when provisioning fails the error is surfaced and the
// P&L keeps its prior status.
func (s *PnlService) Approve(ctx context.Context, ownerID, pnlID uuid.UUID) (*entity.EventPnl, error) {
	pnl, err := s.getOwned(ctx, ownerID, pnlID, false)
	if err != nil {
		return nil, err
	}
	if !pnl.Status.CanTransition(enum.PnlStatusApproved) {
		return nil, apperror.NewBadRequestError("Cannot approve a P&L in status " + pnl.Status.String())
	}

	eventID, err := s.provisioner.ProvisionEvent(ctx, &ProvisionEventInput{
		LinkedEventID: pnl.LinkedEventID,
		Name:          pnl.Meta.EventName,
		Venue:         pnl.Meta.Location,
		StartDate:     pnl.Meta.StartDate,
		EndDate:       pnl.Meta.EndDate,
		PlannedBudget: pnl.Totals.TotalCosts,
	})
	if err != nil {
		return nil, err
	}

	pnl.LinkedEventID = &eventID
	pnl.Status = enum.PnlStatusApproved
	return s.store().Save(ctx, pnl)
}

// Archive soft-deletes the P&L: the record is marked archived and kept,
// never physically removed. Totals are untouched.
func (s *PnlService) Archive(ctx context.Context, ownerID, pnlID uuid.UUID) error {
	pnl, err := s.getOwned(ctx, ownerID, pnlID, false)
	if err != nil {
		return err
	}
	if !pnl.Status.CanTransition(enum.PnlStatusArchived) {
		return apperror.NewBadRequestError("Cannot archive a P&L in status " + pnl.Status.String())
	}
	return s.store().SoftDelete(ctx, pnlID)
}

func (s *PnlService) getOwned(ctx context.Context, ownerID, id uuid.UUID, isSuperAdmin bool) (*entity.EventPnl, error) {
	pnl, err := s.store().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if pnl == nil {
		return nil, apperror.NewNotFoundError("P&L")
	}
	if !isSuperAdmin && pnl.OwnerID != ownerID {
		return nil, apperror.ErrForbidden
	}
	return pnl, nil
}

// mutate loads the aggregate, applies the mutation, and persists the
// recomputed state. Entity-level guard errors are translated to request
// errors here.
func (s *PnlService) mutate(ctx context.Context, ownerID, pnlID uuid.UUID, fn func(*entity.EventPnl) error) (*entity.EventPnl, error) {
	pnl, err := s.getOwned(ctx, ownerID, pnlID, false)
	if err != nil {
		return nil, err
	}
	if err := ensureEditable(pnl); err != nil {
		return nil, err
	}
	if err := fn(pnl); err != nil {
		switch err {
		case entity.ErrLastRevenueLine, entity.ErrLastCostLine:
			return nil, apperror.NewBadRequestError(err.Error())
		case entity.ErrLineNotFound:
			return nil, apperror.NewNotFoundError("Line")
		default:
			return nil, err
		}
	}
	return s.store().Save(ctx, pnl)
}

func (s *PnlService) transition(ctx context.Context, ownerID, pnlID uuid.UUID, to enum.PnlStatus) (*entity.EventPnl, error) {
	pnl, err := s.getOwned(ctx, ownerID, pnlID, false)
	if err != nil {
		return nil, err
	}
	if !pnl.Status.CanTransition(to) {
		return nil, apperror.NewBadRequestError(
			"Cannot move a P&L from " + pnl.Status.String() + " to " + to.String())
	}
	if err := s.store().UpdateStatus(ctx, pnlID, to); err != nil {
		return nil, err
	}
	pnl.Status = to
	return pnl, nil
}

// ensureEditable guards content mutations. Draft is fully editable;
// in_review stays technically editable (frozen by convention only).
func ensureEditable(pnl *entity.EventPnl) error {
	if pnl.Status == enum.PnlStatusDraft || pnl.Status == enum.PnlStatusInReview {
		return nil
	}
	return apperror.NewBadRequestError("A " + pnl.Status.String() + " P&L can no longer be edited")
}
