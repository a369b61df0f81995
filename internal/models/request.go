package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type RequestStatus string // Статус заявки

const (
	OpenRequest      RequestStatus = "open"      // Заявка открыта для предложений
	AcceptedRequest  RequestStatus = "accepted"  // Принято предложение по заявке
	DeclinedRequest  RequestStatus = "declined"  // Заявка отклонена
	CancelledRequest RequestStatus = "cancelled" // Заявка отменена
)

// RequestTransitions - допустимые внешние переходы статуса заявки.
// Статус accepted выставляется только при принятии предложения.
var RequestTransitions = map[RequestStatus][]RequestStatus{
	OpenRequest:      {DeclinedRequest, CancelledRequest},
	AcceptedRequest:  {},
	DeclinedRequest:  {},
	CancelledRequest: {},
}

// RequestPost представляет модель заявки покупателя.
type RequestPost struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	OfferPrice  decimal.Decimal `json:"offerPrice"`
	Quantity    int             `json:"quantity"`
	Status      RequestStatus   `json:"status"`
	CustomerID  string          `json:"customerId"`
	CreatedAt   time.Time       `json:"createdAt"`
	ImagePath   *string         `json:"imagePath,omitempty"`
}

// RequestCreate представляет структуру запроса для создания заявки.
type RequestCreate struct {
	Title       string          `json:"title" validate:"required"`
	Description string          `json:"description"`
	Category    string          `json:"category" validate:"required"`
	OfferPrice  decimal.Decimal `json:"offerPrice"`
	Quantity    int             `json:"quantity" validate:"gte=0"`
	CustomerID  string          `json:"customerId" validate:"required,uuid"`
}

// RequestUpdate содержит изменяемые поля заявки.
type RequestUpdate struct {
	Title       *string          `json:"title,omitempty"`
	Description *string          `json:"description,omitempty"`
	Category    *string          `json:"category,omitempty"`
	OfferPrice  *decimal.Decimal `json:"offerPrice,omitempty"`
	Quantity    *int             `json:"quantity,omitempty" validate:"omitempty,gt=0"`
}

// Upload - загружаемый файл изображения.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}
