package repository

import (
	"context"
	"errors"

	"github.com/davidkiarie/opsdeck-api/internal/domain/entity"
	"github.com/davidkiarie/opsdeck-api/internal/domain/enum"
	domainRepo "github.com/davidkiarie/opsdeck-api/internal/domain/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type pnlRepository struct {
	db *gorm.DB
}

// NewPnlRepository creates a new P&L repository backed by Postgres
func NewPnlRepository(db *gorm.DB) domainRepo.PnlRepository {
	return &pnlRepository{db: db}
}

func (r *pnlRepository) Create(ctx context.Context, pnl *entity.EventPnl) error {
	return r.db.WithContext(ctx).Create(pnl).Error
}

// Save upserts the aggregate and replaces its line collections so that the
// stored rows always mirror the in-memory aggregate, including removed lines.
func (r *pnlRepository) Save(ctx context.Context, pnl *entity.EventPnl) (*entity.EventPnl, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("RevenueLines", "CostLines").Save(pnl).Error; err != nil {
			return err
		}
		// Line ids survive across saves, so soft-deleted rows would collide
		// on the primary key. Replace the collections outright.
		if err := tx.Unscoped().Delete(&entity.RevenueLine{}, "pnl_id = ?", pnl.ID).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Delete(&entity.CostLine{}, "pnl_id = ?", pnl.ID).Error; err != nil {
			return err
		}
		if len(pnl.RevenueLines) > 0 {
			if err := tx.Create(&pnl.RevenueLines).Error; err != nil {
				return err
			}
		}
		if len(pnl.CostLines) > 0 {
			if err := tx.Create(&pnl.CostLines).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, pnl.ID)
}

func (r *pnlRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.EventPnl, error) {
	var pnl entity.EventPnl
	err := r.db.WithContext(ctx).
		Preload("RevenueLines", orderByPosition).
		Preload("CostLines", orderByPosition).
		Preload("LinkedEvent").
		First(&pnl, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pnl, nil
}

func (r *pnlRepository) GetLatestDraft(ctx context.Context, ownerID uuid.UUID) (*entity.EventPnl, error) {
	var pnl entity.EventPnl
	err := r.db.WithContext(ctx).
		Preload("RevenueLines", orderByPosition).
		Preload("CostLines", orderByPosition).
		Where("owner_id = ? AND status = ?", ownerID, enum.PnlStatusDraft).
		Order("created_at DESC").
		First(&pnl).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pnl, nil
}

func (r *pnlRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status enum.PnlStatus) error {
	return r.db.WithContext(ctx).Model(&entity.EventPnl{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *pnlRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entity.EventPnl{}).
			Where("id = ?", id).
			Update("status", enum.PnlStatusArchived).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.EventPnl{}, "id = ?", id).Error
	})
}

func (r *pnlRepository) List(ctx context.Context, ownerID uuid.UUID, params *domainRepo.PnlFilterParams) ([]entity.EventPnl, int64, error) {
	var pnls []entity.EventPnl
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.EventPnl{})

	if ownerID != uuid.Nil {
		query = query.Where("owner_id = ?", ownerID)
	}

	if params.Search != "" {
		query = query.Where("name ILIKE ? OR meta_event_name ILIKE ?",
			"%"+params.Search+"%", "%"+params.Search+"%")
	}

	if params.Status != nil {
		if *params.Status == enum.PnlStatusArchived {
			// Archived aggregates are soft-deleted; lift the default scope
			query = query.Unscoped()
		}
		query = query.Where("status = ?", *params.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Order("created_at DESC").
		Find(&pnls).Error

	return pnls, total, err
}

func orderByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC, created_at ASC")
}
