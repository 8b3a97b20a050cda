package family

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

// Handler handles HTTP requests for family operations
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new family handler
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Routes returns the router for family endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.Get)
	r.Patch("/", h.Rename)
	r.Get("/members", h.ListMembers)
	r.Delete("/members/{userId}", h.RemoveMember)
	r.Post("/leave", h.Leave)

	return r
}

func (h *Handler) writeError(w http.ResponseWriter, err error, fallback string) {
	if apperror.KindOf(err) == apperror.Internal {
		h.logger.Error(fallback, zap.Error(err))
	}
	response.FromError(w, err, fallback)
}

// Get handles GET /family
// @Summary      Current family
// @Description  Get the caller's family and its members; family is null when the caller has none
// @Tags         family
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.APIResponse{data=OverviewResponse}
// @Failure      401 {object} response.APIResponse
// @Router       /family [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "User not authenticated")
		return
	}

	family, members, err := h.service.Current(r.Context(), userID)
	if err != nil {
		h.writeError(w, err, "Failed to get family")
		return
	}

	resp := &OverviewResponse{Members: membersToResponse(members)}
	if family != nil {
		resp.Family = family.ToResponse()
	}
	response.JSON(w, http.StatusOK, resp)
}

// Rename handles PATCH /family
// @Summary      Rename family
// @Description  Rename the caller's family (owner only)
// @Tags         family
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body RenameRequest true "New name"
// @Success      200 {object} response.APIResponse{data=FamilyResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Router       /family [patch]
func (h *Handler) Rename(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "User not authenticated")
		return
	}

	var req RenameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	family, err := h.service.Rename(r.Context(), userID, req.Name)
	if err != nil {
		h.writeError(w, err, "Failed to rename family")
		return
	}

	response.JSON(w, http.StatusOK, family.ToResponse())
}

// ListMembers handles GET /family/members
// @Summary      List family members
// @Description  List the members of the caller's family ordered by user id
// @Tags         family
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.APIResponse{data=MembersResponse}
// @Failure      401 {object} response.APIResponse
// @Router       /family/members [get]
func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "User not authenticated")
		return
	}

	familyID, members, err := h.service.MembersOf(r.Context(), userID)
	if err != nil {
		h.writeError(w, err, "Failed to list family members")
		return
	}

	response.JSON(w, http.StatusOK, &MembersResponse{
		FamilyID: familyID,
		Members:  membersToResponse(members),
	})
}

// RemoveMember handles DELETE /family/members/{userId}
// @Summary      Remove a member
// @Description  Remove a user from the caller's family (owner only)
// @Tags         family
// @Produce      json
// @Security     BearerAuth
// @Param        userId path int true "User ID"
// @Success      200 {object} response.APIResponse
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /family/members/{userId} [delete]
func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "User not authenticated")
		return
	}

	memberID, err := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
	if err != nil || memberID <= 0 {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	if err := h.service.RemoveMember(r.Context(), userID, memberID); err != nil {
		h.writeError(w, err, "Failed to remove family member")
		return
	}

	response.Message(w, http.StatusOK, "Member removed")
}

// Leave handles POST /family/leave
// @Summary      Leave family
// @Description  Remove the caller from their family
// @Tags         family
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /family/leave [post]
func (h *Handler) Leave(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "User not authenticated")
		return
	}

	if err := h.service.Leave(r.Context(), userID); err != nil {
		h.writeError(w, err, "Failed to leave family")
		return
	}

	response.Message(w, http.StatusOK, "Left family")
}
