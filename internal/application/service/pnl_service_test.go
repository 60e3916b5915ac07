package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/davidkiarie/opsdeck-api/internal/domain/entity"
	"github.com/davidkiarie/opsdeck-api/internal/domain/enum"
	"github.com/davidkiarie/opsdeck-api/internal/domain/repository"
	"github.com/google/uuid"
)

type fakePnlRepo struct {
	pnls        map[uuid.UUID]*entity.EventPnl
	getDraftErr error
	saveCalls   int
	softDeleted []uuid.UUID
}

func newFakePnlRepo() *fakePnlRepo {
	return &fakePnlRepo{pnls: make(map[uuid.UUID]*entity.EventPnl)}
}

func (r *fakePnlRepo) Create(ctx context.Context, pnl *entity.EventPnl) error {
	r.pnls[pnl.ID] = pnl
	return nil
}

func (r *fakePnlRepo) Save(ctx context.Context, pnl *entity.EventPnl) (*entity.EventPnl, error) {
	r.saveCalls++
	r.pnls[pnl.ID] = pnl
	return pnl, nil
}

func (r *fakePnlRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.EventPnl, error) {
	return r.pnls[id], nil
}

func (r *fakePnlRepo) GetLatestDraft(ctx context.Context, ownerID uuid.UUID) (*entity.EventPnl, error) {
	if r.getDraftErr != nil {
		return nil, r.getDraftErr
	}
	for _, pnl := range r.pnls {
		if pnl.OwnerID == ownerID && pnl.Status == enum.PnlStatusDraft {
			return pnl, nil
		}
	}
	return nil, nil
}

func (r *fakePnlRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status enum.PnlStatus) error {
	if pnl, ok := r.pnls[id]; ok {
		pnl.Status = status
	}
	return nil
}

func (r *fakePnlRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	r.softDeleted = append(r.softDeleted, id)
	if pnl, ok := r.pnls[id]; ok {
		pnl.Status = enum.PnlStatusArchived
	}
	return nil
}

func (r *fakePnlRepo) List(ctx context.Context, ownerID uuid.UUID, params *repository.PnlFilterParams) ([]entity.EventPnl, int64, error) {
	var result []entity.EventPnl
	for _, pnl := range r.pnls {
		if ownerID == uuid.Nil || pnl.OwnerID == ownerID {
			result = append(result, *pnl)
		}
	}
	return result, int64(len(result)), nil
}

type fakeProvisioner struct {
	calls     int
	lastInput *ProvisionEventInput
	returnID  uuid.UUID
	err       error
}

func (p *fakeProvisioner) ProvisionEvent(ctx context.Context, input *ProvisionEventInput) (uuid.UUID, error) {
	p.calls++
	p.lastInput = input
	if p.err != nil {
		return uuid.Nil, p.err
	}
	return p.returnID, nil
}

func seedPnl(repo *fakePnlRepo, ownerID uuid.UUID, status enum.PnlStatus) *entity.EventPnl {
	pnl := entity.NewEmptyPnl(ownerID)
	pnl.Status = status
	repo.pnls[pnl.ID] = pnl
	return pnl
}

func TestGetWorkspaceReturnsFreshDraftWithoutPersisting(t *testing.T) {
	repo := newFakePnlRepo()
	svc := NewPnlService(repo, newFakePnlRepo(), &fakeProvisioner{})

	out, err := svc.GetWorkspace(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Pnl == nil || out.Pnl.Status != enum.PnlStatusDraft {
		t.Fatalf("expected a fresh draft, got %+v", out.Pnl)
	}
	if out.LocalOnly {
		t.Fatal("expected durable mode while the store is healthy")
	}
	if len(repo.pnls) != 0 || repo.saveCalls != 0 {
		t.Fatal("a fresh workspace must not be persisted before the first save")
	}
}

func TestGetWorkspaceFallsBackToLocalOnLoadFailure(t *testing.T) {
	repo := newFakePnlRepo()
	repo.getDraftErr = errors.New("connection refused")
	fallback := newFakePnlRepo()
	svc := NewPnlService(repo, fallback, &fakeProvisioner{})
	ownerID := uuid.New()

	out, err := svc.GetWorkspace(context.Background(), ownerID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.LocalOnly {
		t.Fatal("expected local-only mode after a load failure")
	}
	if !svc.LocalOnly() {
		t.Fatal("service must stay in local-only mode")
	}

	// Subsequent saves land in the fallback store, not the broken primary
	saved, err := svc.SavePnl(context.Background(), ownerID, out.Pnl)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fallback.saveCalls != 1 || repo.saveCalls != 0 {
		t.Fatalf("expected the save to hit the fallback store, got primary=%d fallback=%d",
			repo.saveCalls, fallback.saveCalls)
	}
	if saved == nil {
		t.Fatal("expected the saved aggregate back")
	}
}

func TestSavePnlRecomputesTotals(t *testing.T) {
	repo := newFakePnlRepo()
	svc := NewPnlService(repo, newFakePnlRepo(), &fakeProvisioner{})
	ownerID := uuid.New()

	pnl := entity.NewEmptyPnl(ownerID)
	pnl.RevenueLines[0].Quantity = 500
	pnl.RevenueLines[0].UnitPrice = 40
	// Deliberately stale totals block
	pnl.Totals = entity.PnlTotals{TotalRevenue: 1}

	saved, err := svc.SavePnl(context.Background(), ownerID, pnl)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved.Totals.TotalRevenue != 20000 {
		t.Fatalf("expected recomputed revenue 20000, got %v", saved.Totals.TotalRevenue)
	}
}

func TestSavePnlClampsNegativeLineInputs(t *testing.T) {
	repo := newFakePnlRepo()
	svc := NewPnlService(repo, newFakePnlRepo(), &fakeProvisioner{})
	ownerID := uuid.New()

	pnl := entity.NewEmptyPnl(ownerID)
	pnl.RevenueLines[0].Quantity = -500
	pnl.RevenueLines[0].UnitPrice = 40
	pnl.CostLines[0].Quantity = 1
	pnl.CostLines[0].UnitPrice = -8000

	saved, err := svc.SavePnl(context.Background(), ownerID, pnl)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved.RevenueLines[0].Quantity != 0 {
		t.Fatalf("negative quantity must clamp to 0 on save, got %v", saved.RevenueLines[0].Quantity)
	}
	if saved.CostLines[0].UnitPrice != 0 {
		t.Fatalf("negative unit price must clamp to 0 on save, got %v", saved.CostLines[0].UnitPrice)
	}
	if saved.Totals.TotalRevenue != 0 || saved.Totals.TotalCosts != 0 {
		t.Fatalf("no negative figure may be stored, got %+v", saved.Totals)
	}
}

func TestSavePnlRejectsEmptyLineCollections(t *testing.T) {
	svc := NewPnlService(newFakePnlRepo(), newFakePnlRepo(), &fakeProvisioner{})
	ownerID := uuid.New()

	pnl := entity.NewEmptyPnl(ownerID)
	pnl.CostLines = nil

	if _, err := svc.SavePnl(context.Background(), ownerID, pnl); err == nil {
		t.Fatal("expected an error for an aggregate without cost lines")
	}
}

func TestSavePnlRejectsForeignOwner(t *testing.T) {
	repo := newFakePnlRepo()
	svc := NewPnlService(repo, newFakePnlRepo(), &fakeProvisioner{})
	existing := seedPnl(repo, uuid.New(), enum.PnlStatusDraft)

	attacker := uuid.New()
	if _, err := svc.SavePnl(context.Background(), attacker, existing); err == nil {
		t.Fatal("expected an error when saving another owner's P&L")
	}
}

func TestSavePnlPreservesStatusAndLinkedEvent(t *testing.T) {
	repo := newFakePnlRepo()
	svc := NewPnlService(repo, newFakePnlRepo(), &fakeProvisioner{})
	ownerID := uuid.New()
	existing := seedPnl(repo, ownerID, enum.PnlStatusInReview)
	linked := uuid.New()
	existing.LinkedEventID = &linked

	update := entity.NewEmptyPnl(ownerID)
	update.ID = existing.ID
	update.Status = enum.PnlStatusApproved // client cannot set status through save

	saved, err := svc.SavePnl(context.Background(), ownerID, update)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved.Status != enum.PnlStatusInReview {
		t.Fatalf("expected the stored status to win, got %v", saved.Status)
	}
	if saved.LinkedEventID == nil || *saved.LinkedEventID != linked {
		t.Fatal("expected the stored linked event id to win")
	}
}

func TestMutationRejectedForTerminalStatus(t *testing.T) {
	repo := newFakePnlRepo()
	svc := NewPnlService(repo, newFakePnlRepo(), &fakeProvisioner{})
	ownerID := uuid.New()
	pnl := seedPnl(repo, ownerID, enum.PnlStatusApproved)

	if _, err := svc.AddRevenueLine(context.Background(), ownerID, pnl.ID); err == nil {
		t.Fatal("expected an error when editing an approved P&L")
	}
}

func TestRemoveLastLineSurfacesRequestError(t *testing.T) {
	repo := newFakePnlRepo()
	svc := NewPnlService(repo, newFakePnlRepo(), &fakeProvisioner{})
	ownerID := uuid.New()
	pnl := seedPnl(repo, ownerID, enum.PnlStatusDraft)

	_, err := svc.RemoveRevenueLine(context.Background(), ownerID, pnl.ID, pnl.RevenueLines[0].ID)
	if err == nil {
		t.Fatal("expected an error when removing the last revenue line")
	}
	if len(repo.pnls[pnl.ID].RevenueLines) != 1 {
		t.Fatal("the stored aggregate must be unchanged")
	}
}

func TestApproveProvisionsEventExactlyOnce(t *testing.T) {
	repo := newFakePnlRepo()
	eventID := uuid.New()
	provisioner := &fakeProvisioner{returnID: eventID}
	svc := NewPnlService(repo, newFakePnlRepo(), provisioner)
	ownerID := uuid.New()

	pnl := seedPnl(repo, ownerID, enum.PnlStatusInReview)
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	pnl.Meta.EventName = "Launch Night"
	pnl.Meta.Location = "Warehouse 3"
	pnl.Meta.StartDate = &start
	pnl.Meta.EndDate = &start
	pnl.CostLines[0].Quantity = 1
	pnl.CostLines[0].UnitPrice = 14000
	pnl.Recalculate()

	approved, err := svc.Approve(context.Background(), ownerID, pnl.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if provisioner.calls != 1 {
		t.Fatalf("expected exactly one provisioning call, got %d", provisioner.calls)
	}
	in := provisioner.lastInput
	if in.Name != "Launch Night" || in.Venue != "Warehouse 3" {
		t.Fatalf("unexpected provisioning input: %+v", in)
	}
	if in.StartDate == nil || !in.StartDate.Equal(start) {
		t.Fatalf("expected start date %v, got %v", start, in.StartDate)
	}
	if in.PlannedBudget != 14000 {
		t.Fatalf("expected planned budget 14000, got %v", in.PlannedBudget)
	}
	if in.LinkedEventID != nil {
		t.Fatal("expected no linked event id before first approval")
	}

	if approved.Status != enum.PnlStatusApproved {
		t.Fatalf("expected approved status, got %v", approved.Status)
	}
	if approved.LinkedEventID == nil || *approved.LinkedEventID != eventID {
		t.Fatal("expected the provisioned event id on the aggregate")
	}
}

func TestApproveFailureLeavesStatusUnchanged(t *testing.T) {
	repo := newFakePnlRepo()
	provisioner := &fakeProvisioner{err: errors.New("event store down")}
	svc := NewPnlService(repo, newFakePnlRepo(), provisioner)
	ownerID := uuid.New()
	pnl := seedPnl(repo, ownerID, enum.PnlStatusInReview)

	if _, err := svc.Approve(context.Background(), ownerID, pnl.ID); err == nil {
		t.Fatal("expected the provisioning failure to surface")
	}
	if repo.pnls[pnl.ID].Status != enum.PnlStatusInReview {
		t.Fatalf("status must stay in_review, got %v", repo.pnls[pnl.ID].Status)
	}
	if repo.pnls[pnl.ID].LinkedEventID != nil {
		t.Fatal("no linked event id may be written on failure")
	}
}

func TestApproveRejectedForArchived(t *testing.T) {
	repo := newFakePnlRepo()
	provisioner := &fakeProvisioner{}
	svc := NewPnlService(repo, newFakePnlRepo(), provisioner)
	ownerID := uuid.New()
	pnl := seedPnl(repo, ownerID, enum.PnlStatusArchived)

	if _, err := svc.Approve(context.Background(), ownerID, pnl.ID); err == nil {
		t.Fatal("expected an error when approving an archived P&L")
	}
	if provisioner.calls != 0 {
		t.Fatal("no provisioning call may fire for an illegal transition")
	}
}

func TestSubmitMovesDraftToReview(t *testing.T) {
	repo := newFakePnlRepo()
	svc := NewPnlService(repo, newFakePnlRepo(), &fakeProvisioner{})
	ownerID := uuid.New()
	pnl := seedPnl(repo, ownerID, enum.PnlStatusDraft)

	out, err := svc.Submit(context.Background(), ownerID, pnl.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Status != enum.PnlStatusInReview {
		t.Fatalf("expected in_review, got %v", out.Status)
	}
}

func TestRejectThenArchive(t *testing.T) {
	repo := newFakePnlRepo()
	svc := NewPnlService(repo, newFakePnlRepo(), &fakeProvisioner{})
	ownerID := uuid.New()
	pnl := seedPnl(repo, ownerID, enum.PnlStatusInReview)

	if _, err := svc.Reject(context.Background(), ownerID, pnl.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Submit(context.Background(), ownerID, pnl.ID); err == nil {
		t.Fatal("a rejected P&L cannot return to review")
	}
	if err := svc.Archive(context.Background(), ownerID, pnl.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.softDeleted) != 1 || repo.softDeleted[0] != pnl.ID {
		t.Fatal("expected a soft delete, not a physical removal")
	}
}

func TestArchiveKeepsTotals(t *testing.T) {
	repo := newFakePnlRepo()
	svc := NewPnlService(repo, newFakePnlRepo(), &fakeProvisioner{})
	ownerID := uuid.New()
	pnl := seedPnl(repo, ownerID, enum.PnlStatusDraft)
	pnl.RevenueLines[0].Quantity = 500
	pnl.RevenueLines[0].UnitPrice = 40
	pnl.Recalculate()
	before := pnl.Totals

	if err := svc.Archive(context.Background(), ownerID, pnl.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored := repo.pnls[pnl.ID]
	if stored.Status != enum.PnlStatusArchived {
		t.Fatalf("expected archived status, got %v", stored.Status)
	}
	if stored.Totals != before {
		t.Fatalf("archiving must not alter totals: %+v vs %+v", before, stored.Totals)
	}
}
