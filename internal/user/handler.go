package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/redmonkez12/accounts-api/internal/httputil"
	"github.com/redmonkez12/accounts-api/internal/logging"
)

const maxBodyBytes = 1 << 20

// Handler contains HTTP handlers for the users resource
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// CreateResponse represents the user creation response
type CreateResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

// Create handles full-profile user creation
// @Summary      Create a user
// @Description  Create a user together with personal, address and social profile data.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body ProfileInput true "Profile"
// @Success      201 {object} CreateResponse
// @Failure      400 {object} httputil.ErrorResponse "Validation error or duplicate username/email"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /users [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeProfile(w, r)
	if !ok {
		return
	}

	id, err := h.service.Create(r.Context(), in)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	httputil.RespondJSON(w, CreateResponse{Message: "user created successfully", ID: id}, http.StatusCreated)
}

// Get handles profile retrieval
// @Summary      Get a user
// @Description  Return the caller's own profile. The password hash is never included.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "User ID"
// @Success      200 {object} User
// @Failure      400 {object} httputil.ErrorResponse "Invalid token or user id"
// @Failure      401 {object} httputil.ErrorResponse "Missing authentication"
// @Failure      403 {object} httputil.ErrorResponse "Not the owner"
// @Failure      404 {object} httputil.ErrorResponse "User not found"
// @Router       /users/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUserID(w, r)
	if !ok {
		return
	}

	u, err := h.service.Get(r.Context(), id)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	httputil.RespondJSON(w, u, http.StatusOK)
}

// Update handles full profile replacement
// @Summary      Update a user
// @Description  Replace the caller's account and profile. The password is re-hashed.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "User ID"
// @Param        request body ProfileInput true "Profile"
// @Success      200 {object} httputil.MessageResponse
// @Failure      400 {object} httputil.ErrorResponse "Validation error, duplicate, invalid token or user id"
// @Failure      401 {object} httputil.ErrorResponse "Missing authentication"
// @Failure      403 {object} httputil.ErrorResponse "Not the owner"
// @Failure      404 {object} httputil.ErrorResponse "User not found"
// @Router       /users/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUserID(w, r)
	if !ok {
		return
	}

	in, ok := decodeProfile(w, r)
	if !ok {
		return
	}

	if err := h.service.Update(r.Context(), id, in); err != nil {
		WriteError(w, r, err)
		return
	}

	httputil.RespondMessage(w, "user updated successfully", http.StatusOK)
}

// Delete handles account removal
// @Summary      Delete a user
// @Description  Delete the caller's account and every profile row that depends on it.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "User ID"
// @Success      200 {object} httputil.MessageResponse
// @Failure      400 {object} httputil.ErrorResponse "Invalid token or user id"
// @Failure      401 {object} httputil.ErrorResponse "Missing authentication"
// @Failure      403 {object} httputil.ErrorResponse "Not the owner"
// @Failure      404 {object} httputil.ErrorResponse "User not found"
// @Router       /users/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUserID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		WriteError(w, r, err)
		return
	}

	httputil.RespondMessage(w, "user deleted successfully", http.StatusOK)
}

// decodeProfile reads a ProfileInput body, answering 400 itself on failure.
func decodeProfile(w http.ResponseWriter, r *http.Request) (ProfileInput, bool) {
	var in ProfileInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&in); err != nil {
		logging.GetLoggerFromContext(r.Context()).Warn("invalid request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return ProfileInput{}, false
	}
	return in, true
}

func parseUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httputil.RespondErrorWithCode(w, "invalid user id", httputil.CodeInvalidUserID, http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// WriteError maps user workflow errors to HTTP responses. Unrecognized
// errors are logged and answered with an opaque 500.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	logger := logging.GetLoggerFromContext(r.Context())

	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		logger.Warn("validation failed", "field", verr.Field, "error", verr.Message)
		httputil.RespondFieldError(w, verr.Message, httputil.CodeValidationFailed, verr.Field, http.StatusBadRequest)
	case errors.Is(err, ErrDuplicateUsername):
		logger.Warn("username already exists")
		httputil.RespondFieldError(w, "username already exists", httputil.CodeUsernameAlreadyExists, "username", http.StatusBadRequest)
	case errors.Is(err, ErrDuplicateEmail):
		logger.Warn("email already exists")
		httputil.RespondFieldError(w, "email already exists", httputil.CodeEmailAlreadyExists, "email", http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		httputil.RespondErrorWithCode(w, "user not found", httputil.CodeUserNotFound, http.StatusNotFound)
	default:
		logger.Error("user request failed", "error", err.Error())
		httputil.RespondErrorWithCode(w, "internal server error", httputil.CodeInternalError, http.StatusInternalServerError)
	}
}
