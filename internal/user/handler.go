package user

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ltcare/familyhub/pkg/apperror"
	"github.com/ltcare/familyhub/pkg/middleware"
	"github.com/ltcare/familyhub/pkg/response"
)

// Handler handles HTTP requests for account operations
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new user handler with service dependency injected
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Routes returns the router for auth endpoints. Only /me requires a token.
func (h *Handler) Routes(authenticate func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.With(authenticate).Get("/me", h.Me)

	return r
}

func (h *Handler) writeError(w http.ResponseWriter, err error, fallback string) {
	if apperror.KindOf(err) == apperror.Internal {
		h.logger.Error(fallback, zap.Error(err))
	}
	response.FromError(w, err, fallback)
}

// Register handles POST /auth/register
// @Summary      Register a new account
// @Description  Create an account and return an access token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Registration request"
// @Success      201 {object} response.APIResponse{data=AuthResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	auth, err := h.service.Register(r.Context(), &req)
	if err != nil {
		h.writeError(w, err, "Failed to register user")
		return
	}

	response.JSON(w, http.StatusCreated, auth)
}

// Login handles POST /auth/login
// @Summary      Log in
// @Description  Exchange username or email and password for an access token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login request"
// @Success      200 {object} response.APIResponse{data=AuthResponse}
// @Failure      401 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Router       /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	auth, err := h.service.Login(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Unauthorized(w, err.Error())
			return
		}
		h.writeError(w, err, "Failed to log in")
		return
	}

	response.JSON(w, http.StatusOK, auth)
}

// Me handles GET /auth/me
// @Summary      Current user
// @Description  Get the authenticated user's profile
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.APIResponse{data=UserResponse}
// @Failure      401 {object} response.APIResponse
// @Router       /auth/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "User not authenticated")
		return
	}

	user, err := h.service.GetByID(r.Context(), userID)
	if err != nil {
		h.writeError(w, err, "Failed to get user")
		return
	}

	response.JSON(w, http.StatusOK, user.ToResponse())
}
