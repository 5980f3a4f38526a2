package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"warehousesvc/internal/core/domain"
)

// InventoryAPI is what the HTTP layer needs from the coordinator.
type InventoryAPI interface {
	Purchase(ctx context.Context, productID int64, quantity int) domain.PurchaseResult
	ListByCategory(ctx context.Context, category string) ([]domain.ProductSnapshot, error)
}

type HTTPHandler struct {
	inventory InventoryAPI
}

type purchaseRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type purchaseResponse struct {
	Success  bool   `json:"success"`
	NewStock *int   `json:"newStock,omitempty"`
	Message  string `json:"message"`
}

type productResponse struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stockQuantity"`
}

func NewHTTPHandler(inventory InventoryAPI) *HTTPHandler {
	return &HTTPHandler{inventory: inventory}
}

func (h *HTTPHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req purchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, purchaseResponse{
			Success: false,
			Message: "invalid request body",
		})
		return
	}

	res := h.inventory.Purchase(r.Context(), req.ProductID, req.Quantity)

	status := http.StatusOK
	var newStock *int
	if res.Success {
		v := res.NewStock
		newStock = &v
	} else {
		status = statusForFailure(res.Reason)
	}

	writeJSON(w, status, purchaseResponse{
		Success:  res.Success,
		NewStock: newStock,
		Message:  res.Message,
	})
}

func (h *HTTPHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	category := r.URL.Query().Get("category")
	if category == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "category is required"})
		return
	}

	snapshots, err := h.inventory.ListByCategory(r.Context(), category)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	out := make([]productResponse, 0, len(snapshots))
	for _, s := range snapshots {
		out = append(out, productResponse{
			ID:            s.ID,
			Name:          s.Name,
			Category:      s.Category,
			Price:         s.Price,
			StockQuantity: s.Stock,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func statusForFailure(reason domain.FailureReason) int {
	switch reason {
	case domain.FailureInvalidInput:
		return http.StatusBadRequest
	case domain.FailureNotFound:
		return http.StatusNotFound
	case domain.FailureInsufficientStock:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
