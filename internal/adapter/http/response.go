package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/YelzhanWeb/theo-eats/internal/domain"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: message})
}

// errorStatus maps service errors to a status code and a stable error code.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidQuantity):
		return http.StatusBadRequest, "invalid_quantity"
	case errors.Is(err, domain.ErrInvalidPrice):
		return http.StatusBadRequest, "invalid_price"
	case errors.Is(err, domain.ErrInvalidSession):
		return http.StatusBadRequest, "invalid_session"
	case errors.Is(err, domain.ErrInvalidOrder):
		return http.StatusNotFound, "invalid_order"
	case errors.Is(err, domain.ErrItemNotFound):
		return http.StatusNotFound, "item_not_found"
	case errors.Is(err, domain.ErrLineNotFound):
		return http.StatusNotFound, "line_not_found"
	case errors.Is(err, domain.ErrOrderNotFound):
		return http.StatusNotFound, "order_not_found"
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict, "invalid_transition"
	case errors.Is(err, domain.ErrOrderNotOpen):
		return http.StatusConflict, "order_not_open"
	case errors.Is(err, domain.ErrEmptyOrder):
		return http.StatusConflict, "empty_order"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	status, code := errorStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}
	writeError(w, status, code, message)
}

type LineResponse struct {
	OrderID    int64  `json:"order_id"`
	ItemID     int64  `json:"item_id"`
	ItemName   string `json:"item_name"`
	Quantity   int    `json:"quantity"`
	UnitPrice  string `json:"unit_price"`
	TotalPrice string `json:"total_price"`
}

func toLineResponse(l domain.LineSnapshot) LineResponse {
	return LineResponse{
		OrderID:    l.OrderID,
		ItemID:     l.ItemID,
		ItemName:   l.ItemName,
		Quantity:   l.Quantity,
		UnitPrice:  l.UnitPrice.StringFixed(domain.PricePlaces),
		TotalPrice: l.TotalPrice.StringFixed(domain.PricePlaces),
	}
}

type SummaryResponse struct {
	OrderID       int64     `json:"order_id"`
	SessionID     string    `json:"session_id"`
	Status        string    `json:"status"`
	ItemCount     int       `json:"item_count"`
	TotalQuantity int       `json:"total_quantity"`
	TotalAmount   string    `json:"total_amount"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toSummaryResponse(s domain.OrderSummary) SummaryResponse {
	return SummaryResponse{
		OrderID:       s.OrderID,
		SessionID:     s.SessionID,
		Status:        string(s.Status),
		ItemCount:     s.ItemCount,
		TotalQuantity: s.TotalQuantity,
		TotalAmount:   s.TotalAmount.StringFixed(domain.PricePlaces),
		UpdatedAt:     s.UpdatedAt,
	}
}

type MenuItemResponse struct {
	Name  string `json:"name"`
	Price string `json:"price"`
}
