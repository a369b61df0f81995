package models

import "github.com/shopspring/decimal"

// Product представляет модель товара в каталоге поставщика.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	SupplierID  string          `json:"supplierId"`
	ImagePath   *string         `json:"imagePath,omitempty"`
}

// ProductRequest представляет структуру запроса для создания или обновления товара.
type ProductRequest struct {
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description"`
	Category    string          `json:"category" validate:"required"`
	Price       decimal.Decimal `json:"price"`
	SupplierID  string          `json:"supplierId" validate:"required,uuid"`
}

// Count - ответ с количеством записей.
type Count struct {
	Count int64 `json:"count"`
}
