package api_http

import (
	"fmt"
	"net/http"

	"fooddelivery/internal/domain"
)

type WishlistEntryResponse struct {
	Entry   domain.WishlistEntry `json:"entry"`
	Message string               `json:"message"`
}

func (h *Handler) ViewWishlistHandler(w http.ResponseWriter, r *http.Request) {
	h.renderJSON(w, http.StatusOK, h.services.Wishlist.View(emailParam(r)))
}

func (h *Handler) AddToWishlistHandler(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	entry, err := h.services.Wishlist.Add(emailParam(r), req.Item, req.Quantity)
	if err != nil {
		h.renderDomainError(w, r, err)
		return
	}
	h.renderJSON(w, http.StatusCreated, WishlistEntryResponse{
		Entry:   entry,
		Message: fmt.Sprintf("%s has been added to the wishlist for future orders.", entry.Item),
	})
}

func (h *Handler) RemoveFromWishlistHandler(w http.ResponseWriter, r *http.Request) {
	item := itemParam(r)
	if err := h.services.Wishlist.Remove(emailParam(r), item); err != nil {
		h.renderDomainError(w, r, err)
		return
	}
	h.renderJSON(w, http.StatusOK, messageResponse{Message: fmt.Sprintf("%s has been removed from the wishlist.", item)})
}

func (h *Handler) ClearWishlistHandler(w http.ResponseWriter, r *http.Request) {
	h.services.Wishlist.Clear(emailParam(r))
	w.WriteHeader(http.StatusNoContent)
}
