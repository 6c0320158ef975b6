package api_http

import (
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"fooddelivery/internal/domain"
)

type RegisterRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserResponse struct {
	Email           string `json:"email"`
	DeliveryAddress string `json:"delivery_address"`
	CreatedAt       string `json:"created_at"`
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		Email:           u.Email,
		DeliveryAddress: u.DeliveryAddress,
		CreatedAt:       u.CreatedAt.Format(time.RFC3339),
	}
}

func (h *Handler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	user, err := h.services.Users.Register(r.Context(), req.Email, req.Password, req.ConfirmPassword)
	if err != nil {
		h.renderDomainError(w, r, err)
		return
	}
	h.renderJSON(w, http.StatusCreated, toUserResponse(user))
}

func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	user, err := h.services.Users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.renderDomainError(w, r, err)
		return
	}
	h.logger.Info("User logged in", zap.String("email", user.Email))
	h.renderJSON(w, http.StatusOK, toUserResponse(user))
}

// emailParam returns the {email} path segment, decoded when the client
// percent-encoded the "@".
func emailParam(r *http.Request) string {
	raw := chi.URLParam(r, "email")
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

func itemParam(r *http.Request) string {
	raw := chi.URLParam(r, "item")
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}
