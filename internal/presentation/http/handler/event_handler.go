package handler

import (
	"github.com/davidkiarie/opsdeck-api/internal/application/service"
	"github.com/davidkiarie/opsdeck-api/internal/domain/enum"
	"github.com/davidkiarie/opsdeck-api/internal/presentation/http/dto/response"
	"github.com/davidkiarie/opsdeck-api/pkg/pagination"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// EventHandler handles event record HTTP requests
type EventHandler struct {
	eventService *service.EventService
}

// NewEventHandler creates a new event handler
func NewEventHandler(eventService *service.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

// List handles listing events
// @Summary List Events
// @Description Get all events with pagination
// @Tags events
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number"
// @Param per_page query int false "Items per page"
// @Param search query string false "Search term"
// @Success 200 {object} response.APIResponse
// @Router /events [get]
func (h *EventHandler) List(c *gin.Context) {
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

	result, err := h.eventService.ListEvents(c.Request.Context(), &pagination.PaginationParams{
		Page:    page,
		PerPage: perPage,
	}, c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Events retrieved successfully", result)
}

// Get handles getting a single event
// @Summary Get Event
// @Tags events
// @Security BearerAuth
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} response.APIResponse
// @Router /events/{id} [get]
func (h *EventHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid event ID")
		return
	}

	event, err := h.eventService.GetEvent(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Event retrieved successfully", event)
}

// UpdateEventRequest represents the update event request body
type UpdateEventRequest struct {
	Name   *string           `json:"name"`
	Venue  *string           `json:"venue"`
	Status *enum.EventStatus `json:"status"`
}

// Update handles updating an event
// @Summary Update Event
// @Tags events
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param request body UpdateEventRequest true "Fields to update"
// @Success 200 {object} response.APIResponse
// @Router /events/{id} [patch]
func (h *EventHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid event ID")
		return
	}

	var req UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	event, err := h.eventService.UpdateEvent(c.Request.Context(), id, &service.UpdateEventInput{
		Name:   req.Name,
		Venue:  req.Venue,
		Status: req.Status,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Event updated successfully", event)
}

// Delete handles deleting an event
// @Summary Delete Event
// @Tags events
// @Security BearerAuth
// @Produce json
// @Param id path string true "Event ID"
// @Success 204
// @Router /events/{id} [delete]
func (h *EventHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid event ID")
		return
	}

	if err := h.eventService.DeleteEvent(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
