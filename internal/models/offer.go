package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type (
	OfferStatus string // Статус предложения
	OfferAction string // Ответ на предложение
)

const (
	PendingOffer  OfferStatus = "pending"  // Предложение ожидает ответа
	AcceptedOffer OfferStatus = "accepted" // Предложение принято
	RejectedOffer OfferStatus = "rejected" // Предложение отклонено

	AcceptOffer  OfferAction = "accept"  // Принять предложение
	RejectOffer  OfferAction = "reject"  // Отклонить предложение
	ConfirmOffer OfferAction = "confirm" // Подтвердить принятое предложение и оформить заказ
)

// OfferTransitions - допустимые переходы статуса предложения.
var OfferTransitions = map[OfferStatus][]OfferStatus{
	PendingOffer:  {AcceptedOffer, RejectedOffer},
	AcceptedOffer: {},
	RejectedOffer: {},
}

// Offer представляет модель предложения поставщика.
type Offer struct {
	ID         string          `json:"id"`
	RequestID  string          `json:"requestId"`
	SupplierID string          `json:"supplierId"`
	Proposed   decimal.Decimal `json:"proposed"`
	Status     OfferStatus     `json:"status"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// OfferCreate представляет структуру запроса для создания предложения.
type OfferCreate struct {
	SupplierID string          `json:"supplierId" validate:"required,uuid"`
	Proposed   decimal.Decimal `json:"proposed"`
}

// OfferActionRequest - тело запроса ответа на предложение.
type OfferActionRequest struct {
	Action OfferAction `json:"action" validate:"required"`
}

// AdminOfferRequest - тело запроса административного решения по заявке.
type AdminOfferRequest struct {
	RequestID  string `json:"requestId" validate:"required,uuid"`
	SupplierID string `json:"supplierId" validate:"required,uuid"`
}

// OfferDecision - результат ответа на предложение.
type OfferDecision struct {
	Message          string `json:"msg"`
	Offer            *Offer `json:"offer"`
	Order            *Order `json:"order,omitempty"`
	AlreadyConfirmed bool   `json:"alreadyConfirmed,omitempty"`
}
