package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string // Статус заказа

const (
	PlacedOrder    OrderStatus = "placed"    // Заказ оформлен
	ConfirmedOrder OrderStatus = "confirmed" // Заказ подтвержден (устаревшая отметка)
	DeliveredOrder OrderStatus = "delivered" // Заказ доставлен
	CancelledOrder OrderStatus = "cancelled" // Заказ отменен
)

// OrderTransitions - допустимые переходы статуса заказа.
var OrderTransitions = map[OrderStatus][]OrderStatus{
	PlacedOrder:    {DeliveredOrder, CancelledOrder},
	ConfirmedOrder: {},
	DeliveredOrder: {},
	CancelledOrder: {},
}

// Order представляет модель заказа.
type Order struct {
	ID          string          `json:"id"`
	RequestID   string          `json:"requestId"`
	OfferID     string          `json:"offerId"`
	CustomerID  string          `json:"customerId"`
	SupplierID  string          `json:"supplierId"`
	Status      OrderStatus     `json:"status"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
	Quantity    int             `json:"quantity"`
	CreatedAt   time.Time       `json:"createdAt"`
	ConfirmedAt *time.Time      `json:"confirmedAt,omitempty"`
}

// IsConfirmed сообщает, было ли предложение по заказу уже подтверждено.
func (o *Order) IsConfirmed() bool {
	return o.ConfirmedAt != nil || o.Status == ConfirmedOrder
}

// OrderActionRequest - тело запроса изменения статуса заказа.
type OrderActionRequest struct {
	UserID string      `json:"userId" validate:"required,uuid"`
	Action OrderStatus `json:"action" validate:"required"`
}
