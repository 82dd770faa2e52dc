package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pagewise/bookstore/cart-service/internal/domain/entity"
	"github.com/pagewise/bookstore/cart-service/internal/platform/logger"
	"github.com/pagewise/bookstore/cart-service/internal/repository"
	"github.com/pagewise/bookstore/cart-service/internal/service"
)

type CartHandler struct {
	cartService service.CartService
	log         logger.Logger
}

func NewCartHandler(cartService service.CartService, log logger.Logger) *CartHandler {
	return &CartHandler{cartService: cartService, log: log}
}

type cartItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Format    string `json:"format"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *CartHandler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Errorf("Failed to encode response: %v", err)
	}
}

// writeError maps the service error taxonomy onto HTTP statuses. Unavailable
// backends are 503 (retryable), never a masked 404 or an empty cart.
func (h *CartHandler) writeError(w http.ResponseWriter, err error) {
	var status int
	switch {
	case errors.Is(err, entity.ErrInvalidQuantity), errors.Is(err, entity.ErrInvalidFormat):
		status = http.StatusBadRequest
	case errors.Is(err, repository.ErrConflict), errors.Is(err, repository.ErrDuplicateActiveCart):
		status = http.StatusConflict
	case errors.Is(err, repository.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, repository.ErrUnavailable):
		status = http.StatusServiceUnavailable
	default:
		status = http.StatusInternalServerError
	}
	h.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (h *CartHandler) HandleGetCart(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	view, err := h.cartService.GetCart(r.Context(), userID)
	if err != nil {
		h.log.Errorf("GetCart failed for user %s: %v", userID, err)
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, view)
}

func (h *CartHandler) HandleAddItem(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req cartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	view, err := h.cartService.AddItem(r.Context(), userID, req.ProductID, req.Quantity, entity.Format(req.Format))
	if err != nil {
		h.log.Errorf("AddItem failed for user %s: %v", userID, err)
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, view)
}

func (h *CartHandler) HandleUpdateItem(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req cartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	view, err := h.cartService.UpdateItemQuantity(r.Context(), userID, req.ProductID, entity.Format(req.Format), req.Quantity)
	if err != nil {
		h.log.Errorf("UpdateItem failed for user %s: %v", userID, err)
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, view)
}

func (h *CartHandler) HandleRemoveItem(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req cartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	view, err := h.cartService.RemoveItem(r.Context(), userID, req.ProductID, entity.Format(req.Format))
	if err != nil {
		h.log.Errorf("RemoveItem failed for user %s: %v", userID, err)
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, view)
}

func (h *CartHandler) HandleValidateStock(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	issues, err := h.cartService.ValidateStock(r.Context(), userID)
	if err != nil {
		h.log.Errorf("ValidateStock failed for user %s: %v", userID, err)
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, issues)
}

func (h *CartHandler) HandleDeactivateCart(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	if err := h.cartService.DeactivateCart(r.Context(), userID); err != nil {
		h.log.Errorf("DeactivateCart failed for user %s: %v", userID, err)
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) HandleListCarts(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	carts, err := h.cartService.ListCarts(r.Context(), userID)
	if err != nil {
		h.log.Errorf("ListCarts failed for user %s: %v", userID, err)
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, carts)
}
