package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/senyabanana/marketplace-service/internal/models"
	"github.com/senyabanana/marketplace-service/internal/services"
	"github.com/senyabanana/marketplace-service/internal/utils"

	"github.com/sirupsen/logrus"
)

// OrderHandler - обработчик HTTP-запросов для заказов.
type OrderHandler struct {
	Service *services.OrderService
	Logger  logrus.FieldLogger
	Timeout time.Duration
}

// NewOrderHandler создаёт новый экземпляр OrderHandler.
func NewOrderHandler(service *services.OrderService, logger logrus.FieldLogger, timeout time.Duration) *OrderHandler {
	return &OrderHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

// GetActiveOrders возвращает оформленные заказы пользователя.
func (h *OrderHandler) GetActiveOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	orders, err := h.Service.ListActiveOrders(ctx, r.PathValue("userId"))
	if err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, orders)
}

// GetOrderHistory возвращает доставленные заказы покупателя.
func (h *OrderHandler) GetOrderHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	orders, err := h.Service.ListOrderHistory(ctx, r.PathValue("userId"))
	if err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, orders)
}

// UpdateOrderStatus переводит заказ в delivered или cancelled.
func (h *OrderHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var actionReq models.OrderActionRequest
	if err := decodeJSON(r, &actionReq); err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}

	order, err := h.Service.UpdateOrderStatus(ctx, r.PathValue("orderId"), actionReq.UserID, actionReq.Action)
	if err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, order)
}
