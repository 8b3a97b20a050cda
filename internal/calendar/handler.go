package calendar

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ltcare/familyhub/pkg/apperror"
	"github.com/ltcare/familyhub/pkg/middleware"
	"github.com/ltcare/familyhub/pkg/response"
)

// Handler handles HTTP requests for the family calendar
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new calendar handler
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Routes returns the router for calendar endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Patch("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)

	return r
}

func (h *Handler) writeError(w http.ResponseWriter, err error, fallback string) {
	if apperror.KindOf(err) == apperror.Internal {
		h.logger.Error(fallback, zap.Error(err))
	}
	response.FromError(w, err, fallback)
}

func toResponses(events []*Event) []*EventResponse {
	out := make([]*EventResponse, len(events))
	for i, e := range events {
		out[i] = e.ToResponse()
	}
	return out
}

// parseRange reads the optional start/end query parameters
func parseRange(r *http.Request) (*Range, error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")
	if startStr == "" && endStr == "" {
		return nil, nil
	}
	if startStr == "" || endStr == "" {
		return nil, ErrInvalidRange
	}

	start, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		return nil, apperror.New(apperror.InvalidInput, "start must be an RFC 3339 timestamp")
	}
	end, err := time.Parse(time.RFC3339, endStr)
	if err != nil {
		return nil, apperror.New(apperror.InvalidInput, "end must be an RFC 3339 timestamp")
	}
	return &Range{Start: start, End: end}, nil
}

// List handles GET /family/calendar
// @Summary      Family calendar
// @Description  List the caller's family events ordered by start time. With start and end, only events overlapping [start, end) are returned.
// @Tags         calendar
// @Produce      json
// @Security     BearerAuth
// @Param        start query string false "Window start (RFC 3339)"
// @Param        end query string false "Window end, exclusive (RFC 3339)"
// @Success      200 {object} response.APIResponse{data=ListResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /family/calendar [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "User not authenticated")
		return
	}

	rng, err := parseRange(r)
	if err != nil {
		h.writeError(w, err, "Failed to list events")
		return
	}

	familyID, events, err := h.service.ListEvents(r.Context(), userID, rng)
	if err != nil {
		h.writeError(w, err, "Failed to list events")
		return
	}

	response.JSON(w, http.StatusOK, &ListResponse{FamilyID: familyID, Events: toResponses(events)})
}

// Create handles POST /family/calendar
// @Summary      Create event
// @Tags         calendar
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateEventRequest true "Event"
// @Success      201 {object} response.APIResponse{data=EventResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Router       /family/calendar [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "User not authenticated")
		return
	}

	var req CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	event, err := h.service.CreateEvent(r.Context(), userID, &req)
	if err != nil {
		h.writeError(w, err, "Failed to create event")
		return
	}

	response.JSON(w, http.StatusCreated, event.ToResponse())
}

// Update handles PATCH /family/calendar/{id}
// @Summary      Update event
// @Description  Merge-patch an event; omitted fields keep their values
// @Tags         calendar
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Event ID"
// @Param        request body UpdateEventRequest true "Fields to change"
// @Success      200 {object} response.APIResponse{data=EventResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /family/calendar/{id} [patch]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "User not authenticated")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(w, "Invalid event ID")
		return
	}

	var req UpdateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	event, err := h.service.UpdateEvent(r.Context(), userID, id, &req)
	if err != nil {
		h.writeError(w, err, "Failed to update event")
		return
	}

	response.JSON(w, http.StatusOK, event.ToResponse())
}

// Delete handles DELETE /family/calendar/{id}
// @Summary      Delete event
// @Tags         calendar
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Event ID"
// @Success      200 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /family/calendar/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "User not authenticated")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(w, "Invalid event ID")
		return
	}

	if err := h.service.DeleteEvent(r.Context(), userID, id); err != nil {
		h.writeError(w, err, "Failed to delete event")
		return
	}

	response.Message(w, http.StatusOK, "Event deleted")
}
