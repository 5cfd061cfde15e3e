package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/stoicjournal/stoic/internal/ctxkeys"
	"github.com/stoicjournal/stoic/internal/model"
	"github.com/stoicjournal/stoic/internal/respond"
	"github.com/stoicjournal/stoic/internal/service"
	"github.com/stoicjournal/stoic/internal/validation"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type authResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *model.User `json:"user"`
}

type authHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *authHandler {
	return &authHandler{authService: authService}
}

func (h *authHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, respond.CodeValidation, msgInvalidInput)
		return
	}

	user, err := h.authService.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		var validationErr *validation.Error
		switch {
		case errors.As(err, &validationErr):
			respond.Error(w, http.StatusBadRequest, respond.CodeValidation, validationErr.Error())
		case errors.Is(err, service.ErrEmailAlreadyExists):
			respond.Error(w, http.StatusConflict, respond.CodeEmailTaken, "An account with this email already exists")
		default:
			slog.Error("failed to register user", "error", err)
			respond.Error(w, http.StatusInternalServerError, respond.CodeServerError, msgUnexpected)
		}
		return
	}

	h.issueToken(w, http.StatusCreated, user)
}

func (h *authHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	err := decodeJSON(w, r, &req)
	if err != nil || req.Email == "" || req.Password == "" {
		respond.Error(w, http.StatusBadRequest, respond.CodeValidation, "Email and password are required")
		return
	}

	user, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			slog.Warn("password login failed", "error", err)
			respond.Error(w, http.StatusUnauthorized, respond.CodeInvalidCredentials, "Invalid email or password")
			return
		}
		slog.Error("failed to log in", "error", err)
		respond.Error(w, http.StatusInternalServerError, respond.CodeServerError, msgUnexpected)
		return
	}

	slog.Info("user logged in with password", "user_id", user.ID)
	h.issueToken(w, http.StatusOK, user)
}

// issueToken signs a JWT, sets it as the auth cookie and returns it in the
// body for bearer clients.
func (h *authHandler) issueToken(w http.ResponseWriter, status int, user *model.User) {
	token, expiresAt, err := h.authService.GenerateJWT(user)
	if err != nil {
		slog.Error("failed to generate JWT", "error", err, "user_id", user.ID)
		respond.Error(w, http.StatusInternalServerError, respond.CodeServerError, msgUnexpected)
		return
	}

	h.authService.SetJWTCookie(w, token, expiresAt)
	respond.JSON(w, status, authResponse{Token: token, ExpiresAt: expiresAt, User: user})
}

func (h *authHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authService.ClearJWTCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *authHandler) Me(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, ctxkeys.User(r.Context()))
}

func (h *authHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, respond.CodeValidation, msgInvalidInput)
		return
	}

	err = h.authService.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		var validationErr *validation.Error
		if errors.As(err, &validationErr) {
			respond.Error(w, http.StatusBadRequest, respond.CodeValidation, validationErr.Error())
			return
		}
		// Same response as success so addresses cannot be probed.
		slog.Error("failed to process forgot password", "error", err)
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *authHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	err := decodeJSON(w, r, &req)
	if err != nil || req.Token == "" {
		respond.Error(w, http.StatusBadRequest, respond.CodeValidation, msgInvalidInput)
		return
	}

	err = h.authService.ResetPassword(r.Context(), req.Token, req.Password)
	if err != nil {
		var validationErr *validation.Error
		switch {
		case errors.As(err, &validationErr):
			respond.Error(w, http.StatusBadRequest, respond.CodeValidation, validationErr.Error())
		case errors.Is(err, service.ErrInvalidResetToken):
			respond.Error(w, http.StatusBadRequest, respond.CodeValidation, "Reset link is invalid or has expired")
		default:
			slog.Error("failed to reset password", "error", err)
			respond.Error(w, http.StatusInternalServerError, respond.CodeServerError, msgUnexpected)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
