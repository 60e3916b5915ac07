package repository

import (
	"context"

	"github.com/davidkiarie/opsdeck-api/internal/domain/entity"
	"github.com/davidkiarie/opsdeck-api/internal/domain/enum"
	"github.com/davidkiarie/opsdeck-api/pkg/pagination"
	"github.com/google/uuid"
)

// PnlRepository defines the persistence boundary for event P&L aggregates.
// Save persists the whole aggregate including its line collections and
// returns the stored state. SoftDelete marks the record deleted without
// removing it; archived P&Ls stay queryable through Unscoped access.
type PnlRepository interface {
	Create(ctx context.Context, pnl *entity.EventPnl) error
	Save(ctx context.Context, pnl *entity.EventPnl) (*entity.EventPnl, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.EventPnl, error)
	GetLatestDraft(ctx context.Context, ownerID uuid.UUID) (*entity.EventPnl, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enum.PnlStatus) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, ownerID uuid.UUID, params *PnlFilterParams) ([]entity.EventPnl, int64, error)
}

// PnlFilterParams contains filtering parameters for P&L queries
type PnlFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	Status     *enum.PnlStatus
}
