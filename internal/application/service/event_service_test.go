package service

import (
	"context"
	"testing"
	"time"

	"github.com/davidkiarie/opsdeck-api/internal/domain/entity"
	"github.com/davidkiarie/opsdeck-api/internal/domain/enum"
	"github.com/davidkiarie/opsdeck-api/pkg/pagination"
	"github.com/google/uuid"
)

type fakeEventRepo struct {
	events      map[uuid.UUID]*entity.Event
	createCalls int
	updateCalls int
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{events: make(map[uuid.UUID]*entity.Event)}
}

func (r *fakeEventRepo) Create(ctx context.Context, event *entity.Event) error {
	r.createCalls++
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	r.events[event.ID] = event
	return nil
}

func (r *fakeEventRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Event, error) {
	return r.events[id], nil
}

func (r *fakeEventRepo) Update(ctx context.Context, event *entity.Event) error {
	r.updateCalls++
	r.events[event.ID] = event
	return nil
}

func (r *fakeEventRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.events, id)
	return nil
}

func (r *fakeEventRepo) List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Event, int64, error) {
	var result []entity.Event
	for _, event := range r.events {
		result = append(result, *event)
	}
	return result, int64(len(result)), nil
}

func TestProvisionEventCreatesPlannedEvent(t *testing.T) {
	repo := newFakeEventRepo()
	svc := NewEventService(repo)
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	id, err := svc.ProvisionEvent(context.Background(), &ProvisionEventInput{
		Name:          "Launch Night",
		Venue:         "Warehouse 3",
		StartDate:     &start,
		EndDate:       &start,
		PlannedBudget: 14000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == uuid.Nil {
		t.Fatal("expected a non-nil event id")
	}

	event := repo.events[id]
	if event == nil {
		t.Fatal("expected the event to be stored")
	}
	if event.Name != "Launch Night" || event.Venue != "Warehouse 3" {
		t.Fatalf("unexpected event fields: %+v", event)
	}
	if event.PlannedBudget != 14000 {
		t.Fatalf("expected planned budget 14000, got %v", event.PlannedBudget)
	}
	if event.Status != enum.EventStatusPlanned {
		t.Fatalf("expected planned status, got %v", event.Status)
	}
}

func TestProvisionEventUpdatesLinkedEvent(t *testing.T) {
	repo := newFakeEventRepo()
	svc := NewEventService(repo)
	existing := &entity.Event{ID: uuid.New(), Name: "Old Name", Status: enum.EventStatusConfirmed}
	repo.events[existing.ID] = existing

	id, err := svc.ProvisionEvent(context.Background(), &ProvisionEventInput{
		LinkedEventID: &existing.ID,
		Name:          "New Name",
		Venue:         "Main Hall",
		PlannedBudget: 9000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != existing.ID {
		t.Fatalf("expected the linked event id back, got %v", id)
	}
	if repo.createCalls != 0 || repo.updateCalls != 1 {
		t.Fatalf("expected one update and no create, got create=%d update=%d",
			repo.createCalls, repo.updateCalls)
	}
	if repo.events[id].Name != "New Name" || repo.events[id].PlannedBudget != 9000 {
		t.Fatalf("event was not updated: %+v", repo.events[id])
	}
	// Re-approval must not reset the operator's own status choice
	if repo.events[id].Status != enum.EventStatusConfirmed {
		t.Fatalf("expected the status to survive an update, got %v", repo.events[id].Status)
	}
}

func TestProvisionEventStaleLinkFallsBackToCreate(t *testing.T) {
	repo := newFakeEventRepo()
	svc := NewEventService(repo)
	gone := uuid.New()

	id, err := svc.ProvisionEvent(context.Background(), &ProvisionEventInput{
		LinkedEventID: &gone,
		Name:          "Launch Night",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == gone {
		t.Fatal("a stale link must not be reused")
	}
	if repo.createCalls != 1 {
		t.Fatalf("expected a fresh create, got %d", repo.createCalls)
	}
}
