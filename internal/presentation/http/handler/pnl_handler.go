package handler

import (
	"time"

	"github.com/davidkiarie/opsdeck-api/internal/application/service"
	"github.com/davidkiarie/opsdeck-api/internal/domain/entity"
	"github.com/davidkiarie/opsdeck-api/internal/domain/enum"
	"github.com/davidkiarie/opsdeck-api/internal/presentation/http/dto/response"
	"github.com/davidkiarie/opsdeck-api/pkg/pagination"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PnlHandler handles event P&L HTTP requests
type PnlHandler struct {
	pnlService *service.PnlService
}

// NewPnlHandler creates a new P&L handler
func NewPnlHandler(pnlService *service.PnlService) *PnlHandler {
	return &PnlHandler{pnlService: pnlService}
}

// SavePnlRequest represents the save P&L request body
type SavePnlRequest struct {
	ID           *string              `json:"id"`
	Name         string               `json:"name" binding:"required"`
	Meta         PnlMetaRequest       `json:"meta"`
	RevenueLines []RevenueLineRequest `json:"revenue_lines" binding:"required,min=1"`
	CostLines    []CostLineRequest    `json:"cost_lines" binding:"required,min=1"`
}

// PnlMetaRequest represents the meta block in a save request
type PnlMetaRequest struct {
	EventName          string  `json:"event_name"`
	Location           string  `json:"location"`
	StartDate          *string `json:"start_date"`
	EndDate            *string `json:"end_date"`
	ExpectedAttendance int     `json:"expected_attendance"`
	TicketPrice        float64 `json:"ticket_price"`
	Notes              *string `json:"notes"`
}

// RevenueLineRequest represents a revenue line in a save request
type RevenueLineRequest struct {
	ID         *string        `json:"id"`
	Category   string         `json:"category"`
	Role       *enum.LineRole `json:"role"`
	Quantity   float64        `json:"quantity"`
	UnitPrice  float64        `json:"unit_price"`
	FeePercent float64        `json:"fee_percent"`
}

// CostLineRequest represents a cost line in a save request
type CostLineRequest struct {
	ID         *string `json:"id"`
	Category   string  `json:"category"`
	Quantity   float64 `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	FeePercent float64 `json:"fee_percent"`
}

// Workspace handles loading the active editing surface
// @Summary Get P&L Workspace
// @Description Get the latest draft P&L, or a fresh empty one when none exists
// @Tags pnl
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.APIResponse
// @Router /pnl/workspace [get]
func (h *PnlHandler) Workspace(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	workspace, err := h.pnlService.GetWorkspace(c.Request.Context(), *userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Workspace retrieved successfully", workspace)
}

// Save handles persisting a P&L aggregate
// @Summary Save P&L
// @Description Create or update a P&L; totals are recomputed server-side
// @Tags pnl
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body SavePnlRequest true "P&L data"
// @Success 200 {object} response.APIResponse
// @Router /pnl [post]
func (h *PnlHandler) Save(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req SavePnlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	pnl, err := h.buildAggregate(&req, *userID)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	saved, err := h.pnlService.SavePnl(c.Request.Context(), *userID, pnl)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "P&L saved successfully", &service.WorkspaceOutput{
		Pnl:       saved,
		LocalOnly: h.pnlService.LocalOnly(),
	})
}

// List handles listing P&Ls
// @Summary List P&Ls
// @Description Get all P&Ls with pagination and filtering
// @Tags pnl
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number"
// @Param per_page query int false "Items per page"
// @Param search query string false "Search term"
// @Param status query string false "Status filter"
// @Success 200 {object} response.APIResponse
// @Router /pnl [get]
func (h *PnlHandler) List(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	isSuperAdmin := IsSuperAdmin(c)

	page := 1
	perPage := 15
	if p := c.Query("page"); p != "" {
		if parsed, err := parsePositiveInt(p); err == nil {
			page = parsed
		}
	}
	if pp := c.Query("per_page"); pp != "" {
		if parsed, err := parsePositiveInt(pp); err == nil {
			perPage = parsed
		}
	}

	var status *enum.PnlStatus
	if s := c.Query("status"); s != "" {
		var parsed enum.PnlStatus
		if err := parsed.UnmarshalJSON([]byte(`"` + s + `"`)); err == nil {
			status = &parsed
		}
	}

	result, err := h.pnlService.ListPnls(c.Request.Context(), &service.ListPnlsInput{
		OwnerID:      *userID,
		IsSuperAdmin: isSuperAdmin,
		Pagination: &pagination.PaginationParams{
			Page:    page,
			PerPage: perPage,
		},
		Search: c.Query("search"),
		Status: status,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "P&Ls retrieved successfully", result)
}

// Get handles getting a single P&L
// @Summary Get P&L
// @Description Get a P&L by ID
// @Tags pnl
// @Security BearerAuth
// @Produce json
// @Param id path string true "P&L ID"
// @Success 200 {object} response.APIResponse
// @Router /pnl/{id} [get]
func (h *PnlHandler) Get(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid P&L ID")
		return
	}

	pnl, err := h.pnlService.GetPnl(c.Request.Context(), *userID, id, IsSuperAdmin(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "P&L retrieved successfully", pnl)
}

// AddRevenueLine handles appending a zeroed revenue line
// @Summary Add Revenue Line
// @Tags pnl
// @Security BearerAuth
// @Produce json
// @Param id path string true "P&L ID"
// @Success 200 {object} response.APIResponse
// @Router /pnl/{id}/revenue-lines [post]
func (h *PnlHandler) AddRevenueLine(c *gin.Context) {
	h.lineOp(c, func(userID, pnlID uuid.UUID) (*entity.EventPnl, error) {
		return h.pnlService.AddRevenueLine(c.Request.Context(), userID, pnlID)
	}, "Revenue line added")
}

// AddCostLine handles appending a zeroed cost line
func (h *PnlHandler) AddCostLine(c *gin.Context) {
	h.lineOp(c, func(userID, pnlID uuid.UUID) (*entity.EventPnl, error) {
		return h.pnlService.AddCostLine(c.Request.Context(), userID, pnlID)
	}, "Cost line added")
}

// UpdateRevenueLine handles a partial revenue line update
// @Summary Update Revenue Line
// @Tags pnl
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "P&L ID"
// @Param line_id path string true "Line ID"
// @Param request body entity.RevenueLinePatch true "Fields to update"
// @Success 200 {object} response.APIResponse
// @Router /pnl/{id}/revenue-lines/{line_id} [patch]
func (h *PnlHandler) UpdateRevenueLine(c *gin.Context) {
	var patch entity.RevenueLinePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	h.lineOpWithID(c, func(userID, pnlID, lineID uuid.UUID) (*entity.EventPnl, error) {
		return h.pnlService.UpdateRevenueLine(c.Request.Context(), userID, pnlID, lineID, patch)
	}, "Revenue line updated")
}

// UpdateCostLine handles a partial cost line update
func (h *PnlHandler) UpdateCostLine(c *gin.Context) {
	var patch entity.CostLinePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	h.lineOpWithID(c, func(userID, pnlID, lineID uuid.UUID) (*entity.EventPnl, error) {
		return h.pnlService.UpdateCostLine(c.Request.Context(), userID, pnlID, lineID, patch)
	}, "Cost line updated")
}

// RemoveRevenueLine handles removing a revenue line
func (h *PnlHandler) RemoveRevenueLine(c *gin.Context) {
	h.lineOpWithID(c, func(userID, pnlID, lineID uuid.UUID) (*entity.EventPnl, error) {
		return h.pnlService.RemoveRevenueLine(c.Request.Context(), userID, pnlID, lineID)
	}, "Revenue line removed")
}

// RemoveCostLine handles removing a cost line
func (h *PnlHandler) RemoveCostLine(c *gin.Context) {
	h.lineOpWithID(c, func(userID, pnlID, lineID uuid.UUID) (*entity.EventPnl, error) {
		return h.pnlService.RemoveCostLine(c.Request.Context(), userID, pnlID, lineID)
	}, "Cost line removed")
}

// UpdateMetaRequest represents the meta patch request body
type UpdateMetaRequest struct {
	Name               *string  `json:"name"`
	EventName          *string  `json:"event_name"`
	Location           *string  `json:"location"`
	StartDate          *string  `json:"start_date"`
	EndDate            *string  `json:"end_date"`
	ExpectedAttendance *int     `json:"expected_attendance"`
	TicketPrice        *float64 `json:"ticket_price"`
	Notes              *string  `json:"notes"`
}

// UpdateMeta handles a partial update of the P&L meta fields
// @Summary Update P&L Meta
// @Tags pnl
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "P&L ID"
// @Param request body UpdateMetaRequest true "Meta fields to update"
// @Success 200 {object} response.APIResponse
// @Router /pnl/{id}/meta [patch]
func (h *PnlHandler) UpdateMeta(c *gin.Context) {
	var req UpdateMetaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		response.BadRequest(c, "Invalid start date. Use YYYY-MM-DD")
		return
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		response.BadRequest(c, "Invalid end date. Use YYYY-MM-DD")
		return
	}

	patch := entity.PnlMetaPatch{
		Name:               req.Name,
		EventName:          req.EventName,
		Location:           req.Location,
		StartDate:          startDate,
		EndDate:            endDate,
		ExpectedAttendance: req.ExpectedAttendance,
		TicketPrice:        req.TicketPrice,
		Notes:              req.Notes,
	}

	h.lineOp(c, func(userID, pnlID uuid.UUID) (*entity.EventPnl, error) {
		return h.pnlService.UpdateMeta(c.Request.Context(), userID, pnlID, patch)
	}, "P&L updated")
}

// ScenarioRequest represents a what-if scenario request body
type ScenarioRequest struct {
	ExpectedAttendance int     `json:"expected_attendance" binding:"min=0"`
	TicketPrice        float64 `json:"ticket_price" binding:"min=0"`
}

// ApplyScenario handles running a what-if projection
// @Summary Apply Scenario
// @Description Overwrite attendance and ticket price and recompute totals
// @Tags pnl
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "P&L ID"
// @Param request body ScenarioRequest true "Scenario candidates"
// @Success 200 {object} response.APIResponse
// @Router /pnl/{id}/scenario [post]
func (h *PnlHandler) ApplyScenario(c *gin.Context) {
	var req ScenarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	h.lineOp(c, func(userID, pnlID uuid.UUID) (*entity.EventPnl, error) {
		return h.pnlService.ApplyScenario(c.Request.Context(), userID, pnlID, req.ExpectedAttendance, req.TicketPrice)
	}, "Scenario applied")
}

// Submit handles moving a draft into review
func (h *PnlHandler) Submit(c *gin.Context) {
	h.lineOp(c, func(userID, pnlID uuid.UUID) (*entity.EventPnl, error) {
		return h.pnlService.Submit(c.Request.Context(), userID, pnlID)
	}, "P&L submitted for review")
}

// Approve handles approving a P&L and provisioning its event record
// @Summary Approve P&L
// @Description Approve the P&L; creates or updates the linked event record
// @Tags pnl
// @Security BearerAuth
// @Produce json
// @Param id path string true "P&L ID"
// @Success 200 {object} response.APIResponse
// @Router /pnl/{id}/approve [post]
func (h *PnlHandler) Approve(c *gin.Context) {
	h.lineOp(c, func(userID, pnlID uuid.UUID) (*entity.EventPnl, error) {
		return h.pnlService.Approve(c.Request.Context(), userID, pnlID)
	}, "P&L approved")
}

// Reject handles rejecting a P&L
func (h *PnlHandler) Reject(c *gin.Context) {
	h.lineOp(c, func(userID, pnlID uuid.UUID) (*entity.EventPnl, error) {
		return h.pnlService.Reject(c.Request.Context(), userID, pnlID)
	}, "P&L rejected")
}

// Archive handles soft-deleting a P&L
// @Summary Archive P&L
// @Description Mark the P&L archived; the record is kept, never removed
// @Tags pnl
// @Security BearerAuth
// @Produce json
// @Param id path string true "P&L ID"
// @Success 204
// @Router /pnl/{id} [delete]
func (h *PnlHandler) Archive(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid P&L ID")
		return
	}

	if err := h.pnlService.Archive(c.Request.Context(), *userID, id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// lineOp runs an aggregate operation keyed by the path P&L id
func (h *PnlHandler) lineOp(c *gin.Context, fn func(userID, pnlID uuid.UUID) (*entity.EventPnl, error), message string) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	pnlID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid P&L ID")
		return
	}

	pnl, err := fn(*userID, pnlID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, message, &service.WorkspaceOutput{
		Pnl:       pnl,
		LocalOnly: h.pnlService.LocalOnly(),
	})
}

// lineOpWithID runs an aggregate operation keyed by P&L id and line id
func (h *PnlHandler) lineOpWithID(c *gin.Context, fn func(userID, pnlID, lineID uuid.UUID) (*entity.EventPnl, error), message string) {
	lineID, err := uuid.Parse(c.Param("line_id"))
	if err != nil {
		response.BadRequest(c, "Invalid line ID")
		return
	}
	h.lineOp(c, func(userID, pnlID uuid.UUID) (*entity.EventPnl, error) {
		return fn(userID, pnlID, lineID)
	}, message)
}

// buildAggregate assembles an EventPnl entity from a save request
func (h *PnlHandler) buildAggregate(req *SavePnlRequest, ownerID uuid.UUID) (*entity.EventPnl, error) {
	pnl := &entity.EventPnl{
		OwnerID: ownerID,
		Name:    req.Name,
	}

	if req.ID != nil && *req.ID != "" {
		id, err := uuid.Parse(*req.ID)
		if err != nil {
			return nil, err
		}
		pnl.ID = id
	} else {
		pnl.ID = uuid.New()
	}

	startDate, err := parseDate(req.Meta.StartDate)
	if err != nil {
		return nil, err
	}
	endDate, err := parseDate(req.Meta.EndDate)
	if err != nil {
		return nil, err
	}

	attendance := req.Meta.ExpectedAttendance
	if attendance < 0 {
		attendance = 0
	}
	ticketPrice := req.Meta.TicketPrice
	if ticketPrice < 0 {
		ticketPrice = 0
	}

	pnl.Meta = entity.PnlMeta{
		EventName:          req.Meta.EventName,
		Location:           req.Meta.Location,
		StartDate:          startDate,
		EndDate:            endDate,
		ExpectedAttendance: attendance,
		TicketPrice:        ticketPrice,
		Notes:              req.Meta.Notes,
	}

	for i, line := range req.RevenueLines {
		id := uuid.New()
		if line.ID != nil && *line.ID != "" {
			parsed, err := uuid.Parse(*line.ID)
			if err != nil {
				return nil, err
			}
			id = parsed
		}
		role := enum.LineRoleOther
		if line.Role != nil {
			role = *line.Role
		}
		pnl.RevenueLines = append(pnl.RevenueLines, entity.RevenueLine{
			ID:         id,
			PnlID:      pnl.ID,
			Category:   line.Category,
			Role:       role,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
			FeePercent: line.FeePercent,
			Position:   i,
		})
	}

	for i, line := range req.CostLines {
		id := uuid.New()
		if line.ID != nil && *line.ID != "" {
			parsed, err := uuid.Parse(*line.ID)
			if err != nil {
				return nil, err
			}
			id = parsed
		}
		pnl.CostLines = append(pnl.CostLines, entity.CostLine{
			ID:         id,
			PnlID:      pnl.ID,
			Category:   line.Category,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
			FeePercent: line.FeePercent,
			Position:   i,
		})
	}

	return pnl, nil
}

// parseDate parses an optional YYYY-MM-DD date string
func parseDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
