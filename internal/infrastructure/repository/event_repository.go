package repository

import (
	"context"
	"errors"

	"github.com/davidkiarie/opsdeck-api/internal/domain/entity"
	domainRepo "github.com/davidkiarie/opsdeck-api/internal/domain/repository"
	"github.com/davidkiarie/opsdeck-api/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *gorm.DB) domainRepo.EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, event *entity.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *eventRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Event, error) {
	var event entity.Event
	err := r.db.WithContext(ctx).First(&event, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) Update(ctx context.Context, event *entity.Event) error {
	return r.db.WithContext(ctx).Save(event).Error
}

func (r *eventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.Event{}, "id = ?", id).Error
}

func (r *eventRepository) List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Event, int64, error) {
	var events []entity.Event
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Event{})

	if search != "" {
		query = query.Where("name ILIKE ? OR venue ILIKE ?",
			"%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Order("start_date ASC NULLS LAST, created_at DESC").
		Find(&events).Error

	return events, total, err
}
