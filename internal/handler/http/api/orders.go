package api_http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"fooddelivery/internal/domain"
)

type AddItemRequest struct {
	Item     string `json:"item"`
	Quantity int    `json:"quantity"`
}

type CartResponse struct {
	Items    []domain.CartItem `json:"items"`
	Subtotal decimal.Decimal   `json:"subtotal"`
}

type OrderResponse struct {
	ID                string            `json:"id"`
	UserEmail         string            `json:"user_email"`
	Items             []domain.CartItem `json:"items"`
	Subtotal          decimal.Decimal   `json:"subtotal"`
	Tax               decimal.Decimal   `json:"tax"`
	DeliveryFee       decimal.Decimal   `json:"delivery_fee"`
	TotalAmount       decimal.Decimal   `json:"total_amount"`
	DeliveryAddress   string            `json:"delivery_address"`
	Status            string            `json:"status"`
	EstimatedDelivery string            `json:"estimated_delivery,omitempty"`
	CreatedAt         string            `json:"created_at"`
	UpdatedAt         string            `json:"updated_at"`
}

type SplitResponse struct {
	OrderID  string          `json:"order_id"`
	People   int             `json:"people"`
	Total    decimal.Decimal `json:"total"`
	PerShare decimal.Decimal `json:"per_person"`
	Message  string          `json:"message"`
}

type SettleRequest struct {
	Tenders []domain.Tender `json:"tenders"`
}

type PaymentResponse struct {
	ID            string          `json:"id"`
	SettlementID  string          `json:"settlement_id"`
	Sequence      int             `json:"sequence"`
	Method        string          `json:"method"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"`
	TransactionID string          `json:"transaction_id,omitempty"`
	Message       string          `json:"message,omitempty"`
	CreatedAt     string          `json:"created_at"`
}

type SettlementResponse struct {
	SettlementID      string            `json:"settlement_id"`
	OrderID           string            `json:"order_id"`
	Status            string            `json:"status"`
	Message           string            `json:"message"`
	Remaining         decimal.Decimal   `json:"remaining"`
	FailedMethod      string            `json:"failed_method,omitempty"`
	OrderStatus       string            `json:"order_status"`
	EstimatedDelivery string            `json:"estimated_delivery,omitempty"`
	Payments          []PaymentResponse `json:"payments"`
}

func toOrderResponse(o *domain.Order) OrderResponse {
	resp := OrderResponse{
		ID:              o.ID,
		UserEmail:       o.UserEmail,
		Items:           o.Items,
		Subtotal:        o.Subtotal,
		Tax:             o.Tax,
		DeliveryFee:     o.DeliveryFee,
		TotalAmount:     o.TotalAmount,
		DeliveryAddress: o.DeliveryAddress,
		Status:          string(o.Status),
		CreatedAt:       o.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       o.UpdatedAt.Format(time.RFC3339),
	}
	if resp.Items == nil {
		resp.Items = []domain.CartItem{}
	}
	if o.EstimatedDelivery != nil {
		resp.EstimatedDelivery = o.EstimatedDelivery.Format(time.RFC3339)
	}
	return resp
}

func toPaymentResponses(payments []domain.Payment) []PaymentResponse {
	out := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, PaymentResponse{
			ID:            p.ID,
			SettlementID:  p.SettlementID,
			Sequence:      p.Sequence,
			Method:        string(p.Method),
			Amount:        p.Amount,
			Status:        string(p.Status),
			TransactionID: p.TransactionID,
			Message:       p.Message,
			CreatedAt:     p.CreatedAt.Format(time.RFC3339),
		})
	}
	return out
}

func (h *Handler) ViewCartHandler(w http.ResponseWriter, r *http.Request) {
	items, subtotal := h.services.Orders.ViewCart(emailParam(r))
	h.renderJSON(w, http.StatusOK, CartResponse{Items: items, Subtotal: subtotal})
}

func (h *Handler) AddToCartHandler(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	line, err := h.services.Orders.AddToCart(emailParam(r), req.Item, req.Quantity)
	if err != nil {
		h.renderDomainError(w, r, err)
		return
	}
	h.renderJSON(w, http.StatusOK, line)
}

func (h *Handler) RemoveFromCartHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.services.Orders.RemoveFromCart(emailParam(r), itemParam(r)); err != nil {
		h.renderDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CheckoutHandler(w http.ResponseWriter, r *http.Request) {
	quote, err := h.services.Orders.Checkout(r.Context(), emailParam(r))
	if err != nil {
		h.renderDomainError(w, r, err)
		return
	}
	h.renderJSON(w, http.StatusOK, quote)
}

func (h *Handler) PlaceOrderHandler(w http.ResponseWriter, r *http.Request) {
	order, err := h.services.Orders.PlaceOrder(r.Context(), emailParam(r))
	if err != nil {
		h.renderDomainError(w, r, err)
		return
	}
	h.renderJSON(w, http.StatusCreated, toOrderResponse(order))
}

func (h *Handler) ListOrdersHandler(w http.ResponseWriter, r *http.Request) {
	list, err := h.services.Orders.ListOrders(r.Context(), emailParam(r))
	if err != nil {
		h.renderDomainError(w, r, err)
		return
	}
	resp := make([]OrderResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toOrderResponse(&list[i]))
	}
	h.renderJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetOrderHandler(w http.ResponseWriter, r *http.Request) {
	order, err := h.services.Orders.GetOrder(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		h.renderDomainError(w, r, err)
		return
	}
	h.renderJSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *Handler) SplitOrderHandler(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")
	people, err := strconv.Atoi(r.URL.Query().Get("people"))
	if err != nil {
		h.renderJSONError(w, "Please enter a valid number of people.", http.StatusBadRequest)
		return
	}

	share, err := h.services.Orders.SplitOrder(r.Context(), orderID, people)
	if err != nil {
		h.renderDomainError(w, r, err)
		return
	}
	order, err := h.services.Orders.GetOrder(r.Context(), orderID)
	if err != nil {
		h.renderDomainError(w, r, err)
		return
	}
	h.renderJSON(w, http.StatusOK, SplitResponse{
		OrderID:  orderID,
		People:   people,
		Total:    order.TotalAmount,
		PerShare: share,
		Message:  fmt.Sprintf("Each person needs to pay: $%s", share.StringFixed(2)),
	})
}

func (h *Handler) ListPaymentsHandler(w http.ResponseWriter, r *http.Request) {
	list, err := h.services.Settlements.ListPayments(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		h.renderDomainError(w, r, err)
		return
	}
	h.renderJSON(w, http.StatusOK, toPaymentResponses(list))
}

// SettleOrderHandler runs a split settlement. A declined tender or an
// uncovered balance is answered with 402 and the same body shape as a
// success.
func (h *Handler) SettleOrderHandler(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")
	var req SettleRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	outcome, err := h.services.Settlements.SettleOrder(r.Context(), orderID, req.Tenders)
	if err != nil {
		if errors.Is(err, domain.ErrOrderAlreadyPaid) {
			h.logger.Warn("Payment attempted for a paid order", zap.String("order_id", orderID))
		}
		h.renderDomainError(w, r, err)
		return
	}

	resp := SettlementResponse{
		SettlementID: outcome.Settlement.ID,
		OrderID:      orderID,
		Status:       string(outcome.Settlement.Status),
		Message:      outcome.Settlement.Message,
		Remaining:    outcome.Settlement.Remaining,
		FailedMethod: string(outcome.Settlement.FailedMethod),
		OrderStatus:  string(outcome.Order.Status),
		Payments:     toPaymentResponses(outcome.Payments),
	}
	if outcome.Order.EstimatedDelivery != nil {
		resp.EstimatedDelivery = outcome.Order.EstimatedDelivery.Format(time.RFC3339)
	}

	status := http.StatusOK
	if !outcome.Succeeded() {
		status = http.StatusPaymentRequired
	}
	h.renderJSON(w, status, resp)
}

