package http

import (
	"net/http"
	"strings"

	"github.com/YelzhanWeb/theo-eats/internal/adapter/logger"
	"github.com/YelzhanWeb/theo-eats/internal/domain"
	"github.com/YelzhanWeb/theo-eats/internal/interfaces"

	"github.com/go-chi/chi/v5"
)

// TrackingHandler serves session scoped operations: opening a cart,
// checking out and tracking the latest order.
type TrackingHandler struct {
	lifecycle interfaces.LifecycleService
	catalog   interfaces.CatalogService
	logger    logger.Logger
}

func NewTrackingHandler(lifecycle interfaces.LifecycleService, catalog interfaces.CatalogService, logger logger.Logger) *TrackingHandler {
	return &TrackingHandler{
		lifecycle: lifecycle,
		catalog:   catalog,
		logger:    logger,
	}
}

type OpenOrderResponse struct {
	OrderID int64 `json:"order_id"`
}

func (h *TrackingHandler) OpenOrder(w http.ResponseWriter, r *http.Request) {
	id, err := h.lifecycle.GetOrCreateOpenOrder(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, OpenOrderResponse{OrderID: id})
}

func (h *TrackingHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	summary, err := h.lifecycle.Checkout(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryResponse(*summary))
}

func (h *TrackingHandler) Track(w http.ResponseWriter, r *http.Request) {
	summary, err := h.lifecycle.Track(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryResponse(*summary))
}

func (h *TrackingHandler) Menu(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.Menu(r.Context())
	if err != nil {
		h.logger.Error("menu_failed", "Failed to load menu", RequestIDFrom(r.Context()), nil, err)
		writeServiceError(w, err)
		return
	}

	resp := make([]MenuItemResponse, len(items))
	for i, item := range items {
		resp[i] = MenuItemResponse{Name: item.Name, Price: item.Price.StringFixed(domain.PricePlaces)}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Price answers with 0.00 for unknown items.
func (h *TrackingHandler) Price(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if strings.TrimSpace(name) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "name is required")
		return
	}

	price, err := h.catalog.PriceOf(r.Context(), name)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MenuItemResponse{Name: name, Price: price.StringFixed(domain.PricePlaces)})
}
