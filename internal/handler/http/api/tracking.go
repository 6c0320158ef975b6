package api_http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"fooddelivery/internal/domain"
)

func (h *Handler) StartTrackingHandler(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")
	var origin domain.Location
	if !h.decodeJSON(w, r, &origin) {
		return
	}
	if _, err := h.services.Orders.GetOrder(r.Context(), orderID); err != nil {
		h.renderDomainError(w, r, err)
		return
	}
	if err := h.services.Tracking.StartTracking(r.Context(), orderID, origin); err != nil {
		h.renderDomainError(w, r, err)
		return
	}
	h.renderTracking(w, r, orderID, http.StatusCreated)
}

func (h *Handler) RecordLocationHandler(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")
	var point domain.Location
	if !h.decodeJSON(w, r, &point) {
		return
	}
	if err := h.services.Tracking.RecordLocation(r.Context(), orderID, point); err != nil {
		h.renderDomainError(w, r, err)
		return
	}
	h.renderTracking(w, r, orderID, http.StatusOK)
}

func (h *Handler) GetTrackingHandler(w http.ResponseWriter, r *http.Request) {
	h.renderTracking(w, r, chi.URLParam(r, "orderID"), http.StatusOK)
}

func (h *Handler) renderTracking(w http.ResponseWriter, r *http.Request, orderID string, status int) {
	snapshot, err := h.services.Tracking.Tracking(r.Context(), orderID)
	if err != nil {
		h.renderDomainError(w, r, err)
		return
	}
	h.renderJSON(w, status, snapshot)
}
