package service

import (
	"context"

	"github.com/davidkiarie/opsdeck-api/internal/domain/entity"
	"github.com/davidkiarie/opsdeck-api/internal/domain/enum"
	"github.com/davidkiarie/opsdeck-api/internal/domain/repository"
	"github.com/davidkiarie/opsdeck-api/pkg/apperror"
	"github.com/davidkiarie/opsdeck-api/pkg/pagination"
	"github.com/google/uuid"
)

// EventService handles event records, including provisioning from approved P&Ls
type EventService struct {
	eventRepo repository.EventRepository
}

// NewEventService creates a new event service
func NewEventService(eventRepo repository.EventRepository) *EventService {
	return &EventService{eventRepo: eventRepo}
}

// ProvisionEvent updates the linked event record when one exists, otherwise
// creates a new one, and returns its id. Satisfies the EventProvisioner
// contract used by P&L approval.
func (s *EventService) ProvisionEvent(ctx context.Context, input *ProvisionEventInput) (uuid.UUID, error) {
	if input.LinkedEventID != nil {
		event, err := s.eventRepo.GetByID(ctx, *input.LinkedEventID)
		if err != nil {
			return uuid.Nil, err
		}
		if event != nil {
			event.Name = input.Name
			event.Venue = input.Venue
			event.StartDate = input.StartDate
			event.EndDate = input.EndDate
			event.PlannedBudget = input.PlannedBudget
			if err := s.eventRepo.Update(ctx, event); err != nil {
				return uuid.Nil, err
			}
			return event.ID, nil
		}
		// Stale link: the referenced event is gone, fall through to create.
	}

	event := &entity.Event{
		Name:          input.Name,
		Venue:         input.Venue,
		StartDate:     input.StartDate,
		EndDate:       input.EndDate,
		PlannedBudget: input.PlannedBudget,
		Status:        enum.EventStatusPlanned,
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return uuid.Nil, err
	}
	return event.ID, nil
}

// GetEvent retrieves an event by ID
func (s *EventService) GetEvent(ctx context.Context, id uuid.UUID) (*entity.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, apperror.NewNotFoundError("Event")
	}
	return event, nil
}

// ListEvents lists events with pagination and search
func (s *EventService) ListEvents(ctx context.Context, params *pagination.PaginationParams, search string) (*pagination.PaginatedResult[entity.Event], error) {
	events, total, err := s.eventRepo.List(ctx, params, search)
	if err != nil {
		return nil, err
	}
	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(events, pag), nil
}

// UpdateEventInput represents the input for updating an event
type UpdateEventInput struct {
	Name   *string
	Venue  *string
	Status *enum.EventStatus
}

// UpdateEvent updates the mutable fields of an event
func (s *EventService) UpdateEvent(ctx context.Context, id uuid.UUID, input *UpdateEventInput) (*entity.Event, error) {
	event, err := s.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		event.Name = *input.Name
	}
	if input.Venue != nil {
		event.Venue = *input.Venue
	}
	if input.Status != nil {
		event.Status = *input.Status
	}
	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// DeleteEvent soft-deletes an event
func (s *EventService) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetEvent(ctx, id); err != nil {
		return err
	}
	return s.eventRepo.Delete(ctx, id)
}
