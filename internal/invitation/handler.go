package invitation

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ltcare/familyhub/pkg/apperror"
	"github.com/ltcare/familyhub/pkg/middleware"
	"github.com/ltcare/familyhub/pkg/response"
)

// Handler handles HTTP requests for family invitations
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new invitation handler
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Routes returns the router for invitation endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListPending)
	r.Post("/", h.Invite)
	r.Post("/{id}/accept", h.Accept)
	r.Post("/{id}/decline", h.Decline)

	return r
}

func (h *Handler) writeError(w http.ResponseWriter, err error, fallback string) {
	if apperror.KindOf(err) == apperror.Internal {
		h.logger.Error(fallback, zap.Error(err))
	}
	response.FromError(w, err, fallback)
}

// ListPending handles GET /family/invitations
// @Summary      Pending invitations
// @Description  List pending invitations addressed to the caller, newest first
// @Tags         invitations
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.APIResponse{data=[]PendingResponse}
// @Failure      401 {object} response.APIResponse
// @Router       /family/invitations [get]
func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "User not authenticated")
		return
	}

	pending, err := h.service.ListPending(r.Context(), userID)
	if err != nil {
		h.writeError(w, err, "Failed to list invitations")
		return
	}

	out := make([]*PendingResponse, len(pending))
	for i, p := range pending {
		out[i] = p.ToResponse()
	}
	response.JSON(w, http.StatusOK, out)
}

// Invite handles POST /family/invitations
// @Summary      Invite a user
// @Description  Invite a user by username; creates the caller's family if needed. invitation is null when an identical invitation is already pending.
// @Tags         invitations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body InviteRequest true "Invitee"
// @Success      201 {object} response.APIResponse{data=InviteResponse}
// @Success      200 {object} response.APIResponse{data=InviteResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /family/invitations [post]
func (h *Handler) Invite(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "User not authenticated")
		return
	}

	var req InviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	inv, err := h.service.Invite(r.Context(), userID, req.InviteeUsername)
	if err != nil {
		h.writeError(w, err, "Failed to send invitation")
		return
	}

	if inv == nil {
		response.JSON(w, http.StatusOK, &InviteResponse{Message: "Invitation sent"})
		return
	}
	response.JSON(w, http.StatusCreated, &InviteResponse{
		Message:    "Invitation sent",
		Invitation: inv.ToResponse(),
	})
}

// Accept handles POST /family/invitations/{id}/accept
// @Summary      Accept an invitation
// @Tags         invitations
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Invitation ID"
// @Success      200 {object} response.APIResponse{data=AcceptResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /family/invitations/{id}/accept [post]
func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "User not authenticated")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid invitation ID")
		return
	}

	familyID, err := h.service.Accept(r.Context(), userID, id)
	if err != nil {
		h.writeError(w, err, "Failed to accept invitation")
		return
	}

	response.JSON(w, http.StatusOK, &AcceptResponse{FamilyID: familyID})
}

// Decline handles POST /family/invitations/{id}/decline
// @Summary      Decline an invitation
// @Tags         invitations
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Invitation ID"
// @Success      200 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /family/invitations/{id}/decline [post]
func (h *Handler) Decline(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "User not authenticated")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid invitation ID")
		return
	}

	if err := h.service.Decline(r.Context(), userID, id); err != nil {
		h.writeError(w, err, "Failed to decline invitation")
		return
	}

	response.Message(w, http.StatusOK, "Invitation declined")
}
