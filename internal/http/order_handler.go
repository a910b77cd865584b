package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/services/catalog-service-go/internal/logging"
	"github.com/andreasstove999/ecommerce-system/services/catalog-service-go/internal/order"
)

type OrderService interface {
	CreateOrder(ctx context.Context, items []order.Item) (*order.Order, error)
	GetOrder(ctx context.Context, orderID int64) (*order.Order, error)
}

type OrderHandler struct {
	svc      OrderService
	validate *validator.Validate
	logger   *zap.Logger
}

func NewOrderHandler(svc OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{svc: svc, validate: newValidator(), logger: logger}
}

func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logging.Warn(r.Context(), h.logger, "invalid order body", zap.Error(err))
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		fields, ok := fieldErrors(err)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		writeJSON(w, http.StatusBadRequest, validationErrorResponse{Error: "validation failed", Fields: fields})
		return
	}

	o, err := h.svc.CreateOrder(r.Context(), req.toItems())
	if err != nil {
		var stockErr *order.InsufficientStockError
		switch {
		case errors.As(err, &stockErr):
			writeJSON(w, http.StatusConflict, stockErr.Errors)
		case errors.Is(err, order.ErrInvalidItems):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to create order")
		}
		return
	}

	writeJSON(w, http.StatusCreated, toOrderResponse(o))
}

func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "orderId"), 10, 64)
	if err != nil || orderID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid orderId")
		return
	}

	o, err := h.svc.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		logging.Error(r.Context(), h.logger, "load order failed", zap.Int64("order_id", orderID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load order")
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(o))
}
