package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/redmonkez12/accounts-api/internal/httputil"
	"github.com/redmonkez12/accounts-api/internal/logging"
	"github.com/redmonkez12/accounts-api/internal/user"
)

const maxBodyBytes = 1 << 20

// Handler contains HTTP handlers for authentication endpoints
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// SignInRequest represents the sign-in request body. Identifier takes
// precedence, then username, then email.
type SignInRequest struct {
	Identifier string `json:"identifier,omitempty"`
	Username   string `json:"username,omitempty"`
	Email      string `json:"email,omitempty"`
	Password   string `json:"password"`
}

// SignInResponse represents a successful sign-in
type SignInResponse struct {
	Message   string `json:"message"`
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresIn int64  `json:"expires_in"`
}

func (req SignInRequest) identifier() string {
	for _, v := range []string{req.Identifier, req.Username, req.Email} {
		if v != "" {
			return v
		}
	}
	return ""
}

// Register handles user registration
// @Summary      Register a new user
// @Description  Create an account. Registration does not sign the user in.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Registration data"
// @Success      201 {object} httputil.MessageResponse
// @Failure      400 {object} httputil.ErrorResponse "Validation error or duplicate username/email"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /auth [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req RegisterRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		logger.Warn("invalid registration request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	id, err := h.service.Register(r.Context(), user.ProfileInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		user.WriteError(w, r, err)
		return
	}

	logger.Info("user registered", "user_id", id)
	httputil.RespondMessage(w, "user registered successfully", http.StatusCreated)
}

// SignIn handles authentication
// @Summary      Sign in
// @Description  Exchange a username or email and password for a bearer token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body SignInRequest true "Credentials"
// @Success      200 {object} SignInResponse
// @Failure      400 {object} httputil.ErrorResponse "Invalid request body"
// @Failure      401 {object} httputil.ErrorResponse "Invalid credentials"
// @Failure      422 {object} httputil.ErrorResponse "Missing identifier or password"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /auth/signin [post]
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req SignInRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		logger.Warn("invalid sign-in request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	result, err := h.service.SignIn(r.Context(), req.identifier(), req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrIdentifierRequired):
			httputil.RespondFieldError(w, err.Error(), httputil.CodeIdentifierRequired, "identifier", http.StatusUnprocessableEntity)
		case errors.Is(err, ErrPasswordRequired):
			httputil.RespondFieldError(w, err.Error(), httputil.CodePasswordRequired, "password", http.StatusUnprocessableEntity)
		case errors.Is(err, ErrInvalidCredentials):
			logger.Warn("sign-in failed: invalid credentials")
			httputil.RespondErrorWithCode(w, "invalid credentials", httputil.CodeInvalidCredentials, http.StatusUnauthorized)
		default:
			logger.Error("sign-in failed", "error", err.Error())
			httputil.RespondErrorWithCode(w, "internal server error", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	httputil.RespondJSON(w, SignInResponse{
		Message:   "signed in successfully",
		Token:     result.Token,
		TokenType: result.TokenType,
		ExpiresIn: result.ExpiresIn,
	}, http.StatusOK)
}
