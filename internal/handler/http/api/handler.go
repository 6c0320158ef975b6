package api_http

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"fooddelivery/internal/domain"
)

type Handler struct {
	services Services
	logger   *zap.Logger
}

func NewHandler(s Services, l *zap.Logger) *Handler {
	return &Handler{services: s, logger: l}
}

type errorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (h *Handler) renderJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("Failed to write JSON response", zap.Error(err))
	}
}

func (h *Handler) renderJSONError(w http.ResponseWriter, message string, statusCode int) {
	h.renderJSON(w, statusCode, errorResponse{Error: message, Code: statusCode})
}

// decodeJSON reads the request body into dst, answering 400 on failure.
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.Warn("Invalid request body", zap.String("path", r.URL.Path), zap.Error(err))
		h.renderJSONError(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

// renderDomainError maps service errors to HTTP statuses. Anything not
// recognised is logged and reported as 500 without details.
func (h *Handler) renderDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidMethod),
		errors.Is(err, domain.ErrInvalidCreditCard),
		errors.Is(err, domain.ErrInvalidGiftCard),
		errors.Is(err, domain.ErrInvalidTenderAmount),
		errors.Is(err, domain.ErrInvalidSplit),
		errors.Is(err, domain.ErrEmptyCart),
		errors.Is(err, domain.ErrMissingDeliveryAddress),
		errors.Is(err, domain.ErrItemNotOnMenu),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrMissingFields),
		errors.Is(err, domain.ErrInvalidEmail),
		errors.Is(err, domain.ErrPasswordMismatch),
		errors.Is(err, domain.ErrInvalidLocation):
		h.renderJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrInvalidCredentials):
		h.renderJSONError(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrItemNotInCart),
		errors.Is(err, domain.ErrNotInWishlist),
		errors.Is(err, domain.ErrTrackingNotFound):
		h.renderJSONError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrOrderAlreadyPaid),
		errors.Is(err, domain.ErrEmailExists):
		h.renderJSONError(w, err.Error(), http.StatusConflict)
	default:
		h.logger.Error("Request failed", zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
		h.renderJSONError(w, "Internal server error", http.StatusInternalServerError)
	}
}
