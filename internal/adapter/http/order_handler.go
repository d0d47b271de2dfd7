package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/YelzhanWeb/theo-eats/internal/adapter/logger"
	"github.com/YelzhanWeb/theo-eats/internal/adapter/metrics"
	"github.com/YelzhanWeb/theo-eats/internal/domain"
	"github.com/YelzhanWeb/theo-eats/internal/interfaces"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// OrderHandler serves cart lines and order read models.
type OrderHandler struct {
	cart      interfaces.CartService
	lifecycle interfaces.LifecycleService
	metrics   *metrics.ServerMetrics
	logger    logger.Logger
}

func NewOrderHandler(cart interfaces.CartService, lifecycle interfaces.LifecycleService, metrics *metrics.ServerMetrics, logger logger.Logger) *OrderHandler {
	return &OrderHandler{
		cart:      cart,
		lifecycle: lifecycle,
		metrics:   metrics,
		logger:    logger,
	}
}

type AddLineRequest struct {
	ItemName string `json:"item_name"`
	Quantity int    `json:"quantity"`
	// UnitPrice overrides the catalog price when set.
	UnitPrice *string `json:"unit_price,omitempty"`
}

type RemoveLineResponse struct {
	Removed bool          `json:"removed"`
	Line    *LineResponse `json:"line,omitempty"`
}

type StatusRequest struct {
	Status    string `json:"status"`
	ChangedBy string `json:"changed_by"`
}

type StatusResponse struct {
	OrderID int64  `json:"order_id"`
	Status  string `json:"status"`
}

type TotalResponse struct {
	OrderID int64  `json:"order_id"`
	Total   string `json:"total"`
}

func orderID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_order_id", "order id must be a positive integer")
		return 0, false
	}
	return id, true
}

func (h *OrderHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}

	var req AddLineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if strings.TrimSpace(req.ItemName) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "item_name is required")
		return
	}

	var (
		line *domain.LineSnapshot
		err  error
	)
	if req.UnitPrice != nil {
		price, perr := decimal.NewFromString(*req.UnitPrice)
		if perr != nil {
			writeError(w, http.StatusBadRequest, "invalid_price", "unit_price must be a decimal string")
			return
		}
		line, err = h.cart.AddOrUpdateLineAt(r.Context(), id, req.ItemName, req.Quantity, price)
	} else {
		line, err = h.cart.AddOrUpdateLine(r.Context(), id, req.ItemName, req.Quantity)
	}
	h.observe("add_line", err)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toLineResponse(*line))
}

// RemoveLine takes ?quantity units off a line, or the whole line when the
// parameter is absent.
func (h *OrderHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}
	itemName := chi.URLParam(r, "itemName")

	raw := r.URL.Query().Get("quantity")
	if raw == "" {
		err := h.cart.DeleteLine(r.Context(), id, itemName)
		h.observe("delete_line", err)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, RemoveLineResponse{Removed: true})
		return
	}

	quantity, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be an integer")
		return
	}

	result, err := h.cart.RemoveLine(r.Context(), id, itemName, quantity)
	h.observe("remove_line", err)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := RemoveLineResponse{Removed: result.Removed}
	if result.Line != nil {
		line := toLineResponse(*result.Line)
		resp.Line = &line
	}
	writeJSON(w, http.StatusOK, resp)
}

// Clear empties the cart and cancels the order.
func (h *OrderHandler) Clear(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}

	err := h.lifecycle.Cancel(r.Context(), id)
	h.observe("clear", err)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{OrderID: id, Status: string(domain.StatusCancelled)})
}

func (h *OrderHandler) AdvanceStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}

	var req StatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_status", err.Error())
		return
	}

	err = h.lifecycle.AdvanceStatus(r.Context(), id, status, req.ChangedBy)
	h.observe("advance_status", err)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{OrderID: id, Status: string(status)})
}

func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}

	summary, err := h.cart.OrderSummary(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryResponse(*summary))
}

func (h *OrderHandler) GetItems(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}

	lines, err := h.cart.OrderDetails(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := make([]LineResponse, len(lines))
	for i, l := range lines {
		resp[i] = toLineResponse(l)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *OrderHandler) GetTotal(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}

	total, err := h.cart.ComputeOrderTotal(r.Context(), id)
	if err != nil {
		h.logger.Error("compute_total_failed", "Failed to compute order total", RequestIDFrom(r.Context()), map[string]interface{}{
			"order_id": id,
		}, err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, TotalResponse{OrderID: id, Total: total.StringFixed(domain.PricePlaces)})
}

func (h *OrderHandler) observe(operation string, err error) {
	result := "ok"
	switch {
	case err == nil:
	case domain.IsRejection(err):
		result = "rejected"
	default:
		result = "error"
	}
	h.metrics.CartOperations.WithLabelValues(operation, result).Inc()
}
