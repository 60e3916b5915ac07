package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/davidkiarie/opsdeck-api/internal/domain/entity"
	"github.com/davidkiarie/opsdeck-api/internal/domain/enum"
	domainRepo "github.com/davidkiarie/opsdeck-api/internal/domain/repository"
	"github.com/google/uuid"
)

// memoryPnlRepository is the local fallback store used when the primary
// database is unreachable. Nothing written here is durable; the service
// layer flags this mode to the caller on every response.
type memoryPnlRepository struct {
	mu       sync.RWMutex
	pnls     map[uuid.UUID]*entity.EventPnl
	archived map[uuid.UUID]bool
}

// NewMemoryPnlRepository creates an in-memory P&L repository
func NewMemoryPnlRepository() domainRepo.PnlRepository {
	return &memoryPnlRepository{
		pnls:     make(map[uuid.UUID]*entity.EventPnl),
		archived: make(map[uuid.UUID]bool),
	}
}

func (r *memoryPnlRepository) Create(ctx context.Context, pnl *entity.EventPnl) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if pnl.ID == uuid.Nil {
		pnl.ID = uuid.New()
	}
	if pnl.CreatedAt.IsZero() {
		pnl.CreatedAt = time.Now()
	}
	pnl.UpdatedAt = time.Now()
	r.pnls[pnl.ID] = clonePnl(pnl)
	return nil
}

func (r *memoryPnlRepository) Save(ctx context.Context, pnl *entity.EventPnl) (*entity.EventPnl, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if pnl.ID == uuid.Nil {
		pnl.ID = uuid.New()
	}
	if pnl.CreatedAt.IsZero() {
		pnl.CreatedAt = time.Now()
	}
	pnl.UpdatedAt = time.Now()
	stored := clonePnl(pnl)
	r.pnls[pnl.ID] = stored
	return clonePnl(stored), nil
}

func (r *memoryPnlRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.EventPnl, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pnl, ok := r.pnls[id]
	if !ok || r.archived[id] {
		return nil, nil
	}
	return clonePnl(pnl), nil
}

func (r *memoryPnlRepository) GetLatestDraft(ctx context.Context, ownerID uuid.UUID) (*entity.EventPnl, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var latest *entity.EventPnl
	for id, pnl := range r.pnls {
		if r.archived[id] || pnl.OwnerID != ownerID || pnl.Status != enum.PnlStatusDraft {
			continue
		}
		if latest == nil || pnl.CreatedAt.After(latest.CreatedAt) {
			latest = pnl
		}
	}
	if latest == nil {
		return nil, nil
	}
	return clonePnl(latest), nil
}

func (r *memoryPnlRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status enum.PnlStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if pnl, ok := r.pnls[id]; ok {
		pnl.Status = status
		pnl.UpdatedAt = time.Now()
	}
	return nil
}

func (r *memoryPnlRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if pnl, ok := r.pnls[id]; ok {
		pnl.Status = enum.PnlStatusArchived
		r.archived[id] = true
	}
	return nil
}

func (r *memoryPnlRepository) List(ctx context.Context, ownerID uuid.UUID, params *domainRepo.PnlFilterParams) ([]entity.EventPnl, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]entity.EventPnl, 0)
	for id, pnl := range r.pnls {
		if r.archived[id] && (params.Status == nil || *params.Status != enum.PnlStatusArchived) {
			continue
		}
		if ownerID != uuid.Nil && pnl.OwnerID != ownerID {
			continue
		}
		if params.Status != nil && pnl.Status != *params.Status {
			continue
		}
		if params.Search != "" {
			search := strings.ToLower(params.Search)
			if !strings.Contains(strings.ToLower(pnl.Name), search) &&
				!strings.Contains(strings.ToLower(pnl.Meta.EventName), search) {
				continue
			}
		}
		matched = append(matched, *clonePnl(pnl))
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	params.Pagination.Validate()
	offset := params.Pagination.Offset()
	if offset >= len(matched) {
		return []entity.EventPnl{}, total, nil
	}
	end := offset + params.Pagination.PerPage
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

// clonePnl copies the aggregate and its line slices so callers cannot
// mutate stored state through aliasing.
func clonePnl(pnl *entity.EventPnl) *entity.EventPnl {
	clone := *pnl
	clone.RevenueLines = make([]entity.RevenueLine, len(pnl.RevenueLines))
	copy(clone.RevenueLines, pnl.RevenueLines)
	clone.CostLines = make([]entity.CostLine, len(pnl.CostLines))
	copy(clone.CostLines, pnl.CostLines)
	return &clone
}
