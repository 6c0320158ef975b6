package api_http

import (
	"net/http"
	"strconv"
	"strings"

	"fooddelivery/internal/app/restaurants"
)

const invalidSearchNumbers = "Please enter valid numeric values for rating and delivery time."

func (h *Handler) GetMenuHandler(w http.ResponseWriter, r *http.Request) {
	h.renderJSON(w, http.StatusOK, h.services.Menu.Items())
}

func (h *Handler) ListRestaurantsHandler(w http.ResponseWriter, r *http.Request) {
	all, err := h.services.Restaurants.List(r.Context())
	if err != nil {
		h.renderDomainError(w, r, err)
		return
	}
	h.renderJSON(w, http.StatusOK, all)
}

func (h *Handler) SearchRestaurantsHandler(w http.ResponseWriter, r *http.Request) {
	criteria, ok := parseCriteria(r)
	if !ok {
		h.renderJSONError(w, invalidSearchNumbers, http.StatusBadRequest)
		return
	}

	matches, err := h.services.Restaurants.Search(r.Context(), criteria)
	if err != nil {
		h.renderDomainError(w, r, err)
		return
	}
	h.renderJSON(w, http.StatusOK, matches)
}

// parseCriteria reads the search query. Omitted or blank bounds fall back to
// their defaults; anything else must parse as a number.
func parseCriteria(r *http.Request) (restaurants.Criteria, bool) {
	q := r.URL.Query()
	c := restaurants.DefaultCriteria()
	c.CuisineType = strings.TrimSpace(q.Get("cuisine"))

	if v := strings.TrimSpace(q.Get("max_rating")); v != "" {
		rating, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return c, false
		}
		c.MaxRating = rating
	}
	if v := strings.TrimSpace(q.Get("max_delivery_time")); v != "" {
		minutes, err := strconv.Atoi(v)
		if err != nil {
			return c, false
		}
		c.MaxDeliveryTime = minutes
	}
	return c, true
}
