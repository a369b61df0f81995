package repository

import (
	"context"
	"time"

	"github.com/senyabanana/marketplace-service/internal/models"
)

// OrderRepository - интерфейс для работы с заказами.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, orderID string) (*models.Order, error)
	GetByIDForUpdate(ctx context.Context, orderID string) (*models.Order, error)
	GetByOfferIDForUpdate(ctx context.Context, offerID string) (*models.Order, error)
	MarkConfirmed(ctx context.Context, orderID string, confirmedAt time.Time) error
	UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus) error
	ListActiveForUser(ctx context.Context, userID string) ([]models.Order, error)
	ListHistoryForCustomer(ctx context.Context, customerID string) ([]models.Order, error)
}

// PostgresOrderRepository - реализация OrderRepository для базы данных.
type PostgresOrderRepository struct {
	DB DBTX
}

// NewPostgresOrderRepository создаёт новый экземпляр PostgresOrderRepository.
func NewPostgresOrderRepository(db DBTX) *PostgresOrderRepository {
	return &PostgresOrderRepository{DB: db}
}

const orderColumns = `id, request_id, offer_id, customer_id, supplier_id, status, total_price, quantity, created_at, confirmed_at`

func scanOrder(row rowScanner) (*models.Order, error) {
	var order models.Order
	if err := row.Scan(
		&order.ID,
		&order.RequestID,
		&order.OfferID,
		&order.CustomerID,
		&order.SupplierID,
		&order.Status,
		&order.TotalPrice,
		&order.Quantity,
		&order.CreatedAt,
		&order.ConfirmedAt); err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *PostgresOrderRepository) list(ctx context.Context, query string, args ...any) ([]models.Order, error) {
	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, translateError(err, "query orders")
	}
	defer rows.Close()

	orders := make([]models.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, translateError(err, "scan order")
		}
		orders = append(orders, *order)
	}
	return orders, translateError(rows.Err(), "iterate orders")
}

// Create сохраняет новый заказ.
func (r *PostgresOrderRepository) Create(ctx context.Context, order *models.Order) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		order.ID,
		order.RequestID,
		order.OfferID,
		order.CustomerID,
		order.SupplierID,
		order.Status,
		order.TotalPrice,
		order.Quantity,
		order.CreatedAt,
		order.ConfirmedAt)
	return translateError(err, "insert order")
}

// GetByID возвращает заказ по ID.
func (r *PostgresOrderRepository) GetByID(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := scanOrder(r.DB.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, orderID))
	if err != nil {
		return nil, translateError(err, "get order")
	}
	return order, nil
}

// GetByIDForUpdate возвращает заказ и блокирует строку.
func (r *PostgresOrderRepository) GetByIDForUpdate(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := scanOrder(r.DB.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, orderID))
	if err != nil {
		return nil, translateError(err, "lock order")
	}
	return order, nil
}

// GetByOfferIDForUpdate возвращает заказ по предложению и блокирует строку.
func (r *PostgresOrderRepository) GetByOfferIDForUpdate(ctx context.Context, offerID string) (*models.Order, error) {
	order, err := scanOrder(r.DB.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE offer_id = $1 FOR UPDATE`, offerID))
	if err != nil {
		return nil, translateError(err, "lock order by offer")
	}
	return order, nil
}

// MarkConfirmed проставляет отметку подтверждения заказа.
func (r *PostgresOrderRepository) MarkConfirmed(ctx context.Context, orderID string, confirmedAt time.Time) error {
	tag, err := r.DB.Exec(ctx, `UPDATE orders SET confirmed_at = $1 WHERE id = $2`, confirmedAt, orderID)
	if err != nil {
		return translateError(err, "confirm order")
	}
	return expectAffected(tag)
}

// UpdateStatus меняет статус заказа.
func (r *PostgresOrderRepository) UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus) error {
	tag, err := r.DB.Exec(ctx, `UPDATE orders SET status = $1 WHERE id = $2`, status, orderID)
	if err != nil {
		return translateError(err, "update order status")
	}
	return expectAffected(tag)
}

// ListActiveForUser возвращает оформленные заказы, где пользователь покупатель или поставщик.
func (r *PostgresOrderRepository) ListActiveForUser(ctx context.Context, userID string) ([]models.Order, error) {
	return r.list(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE (customer_id = $1 OR supplier_id = $1) AND status = $2
		ORDER BY created_at DESC, id`,
		userID, models.PlacedOrder)
}

// ListHistoryForCustomer возвращает доставленные заказы покупателя.
func (r *PostgresOrderRepository) ListHistoryForCustomer(ctx context.Context, customerID string) ([]models.Order, error) {
	return r.list(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE customer_id = $1 AND status = $2
		ORDER BY created_at DESC, id`,
		customerID, models.DeliveredOrder)
}
