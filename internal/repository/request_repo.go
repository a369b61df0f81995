package repository

import (
	"context"

	"github.com/senyabanana/marketplace-service/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"
)

// RequestRepository - интерфейс для работы с заявками.
type RequestRepository interface {
	Create(ctx context.Context, request *models.RequestPost) error
	GetByID(ctx context.Context, requestID string) (*models.RequestPost, error)
	GetByIDForUpdate(ctx context.Context, requestID string) (*models.RequestPost, error)
	List(ctx context.Context, limit, offset int) ([]models.RequestPost, error)
	ListByCategories(ctx context.Context, categories []string) ([]models.RequestPost, error)
	Update(ctx context.Context, request *models.RequestPost) error
	UpdateStatus(ctx context.Context, requestID string, status models.RequestStatus) error
	Delete(ctx context.Context, requestID string) error
}

// PostgresRequestRepository - реализация RequestRepository для базы данных.
type PostgresRequestRepository struct {
	DB DBTX
}

// NewPostgresRequestRepository создаёт новый экземпляр PostgresRequestRepository.
func NewPostgresRequestRepository(db DBTX) *PostgresRequestRepository {
	return &PostgresRequestRepository{DB: db}
}

const requestColumns = `id, title, description, category, offer_price, quantity, status, customer_id, created_at, image_path`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (*models.RequestPost, error) {
	var request models.RequestPost
	if err := row.Scan(
		&request.ID,
		&request.Title,
		&request.Description,
		&request.Category,
		&request.OfferPrice,
		&request.Quantity,
		&request.Status,
		&request.CustomerID,
		&request.CreatedAt,
		&request.ImagePath); err != nil {
		return nil, err
	}
	return &request, nil
}

func collectRequests(rows pgx.Rows, err error) ([]models.RequestPost, error) {
	if err != nil {
		return nil, translateError(err, "query requests")
	}
	defer rows.Close()

	requests := make([]models.RequestPost, 0)
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, translateError(err, "scan request")
		}
		requests = append(requests, *request)
	}
	return requests, translateError(rows.Err(), "iterate requests")
}

// Create сохраняет новую заявку.
func (r *PostgresRequestRepository) Create(ctx context.Context, request *models.RequestPost) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO request_posts (`+requestColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		request.ID,
		request.Title,
		request.Description,
		request.Category,
		request.OfferPrice,
		request.Quantity,
		request.Status,
		request.CustomerID,
		request.CreatedAt,
		request.ImagePath)
	return translateError(err, "insert request")
}

// GetByID возвращает заявку по ID.
func (r *PostgresRequestRepository) GetByID(ctx context.Context, requestID string) (*models.RequestPost, error) {
	request, err := scanRequest(r.DB.QueryRow(ctx,
		`SELECT `+requestColumns+` FROM request_posts WHERE id = $1`, requestID))
	if err != nil {
		return nil, translateError(err, "get request")
	}
	return request, nil
}

// GetByIDForUpdate возвращает заявку и блокирует строку до конца транзакции.
func (r *PostgresRequestRepository) GetByIDForUpdate(ctx context.Context, requestID string) (*models.RequestPost, error) {
	request, err := scanRequest(r.DB.QueryRow(ctx,
		`SELECT `+requestColumns+` FROM request_posts WHERE id = $1 FOR UPDATE`, requestID))
	if err != nil {
		return nil, translateError(err, "lock request")
	}
	return request, nil
}

// List возвращает страницу заявок, новые первыми.
func (r *PostgresRequestRepository) List(ctx context.Context, limit, offset int) ([]models.RequestPost, error) {
	return collectRequests(r.DB.Query(ctx,
		`SELECT `+requestColumns+` FROM request_posts ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`,
		limit, offset))
}

// ListByCategories возвращает заявки любых статусов с категорией из списка.
func (r *PostgresRequestRepository) ListByCategories(ctx context.Context, categories []string) ([]models.RequestPost, error) {
	return collectRequests(r.DB.Query(ctx,
		`SELECT `+requestColumns+` FROM request_posts WHERE category = ANY($1) ORDER BY created_at DESC, id`,
		pq.Array(categories)))
}

// Update сохраняет изменяемые поля заявки.
func (r *PostgresRequestRepository) Update(ctx context.Context, request *models.RequestPost) error {
	tag, err := r.DB.Exec(ctx, `
		UPDATE request_posts
		SET title = $1, description = $2, category = $3, offer_price = $4, quantity = $5, image_path = $6
		WHERE id = $7`,
		request.Title,
		request.Description,
		request.Category,
		request.OfferPrice,
		request.Quantity,
		request.ImagePath,
		request.ID)
	if err != nil {
		return translateError(err, "update request")
	}
	return expectAffected(tag)
}

// UpdateStatus меняет статус заявки.
func (r *PostgresRequestRepository) UpdateStatus(ctx context.Context, requestID string, status models.RequestStatus) error {
	tag, err := r.DB.Exec(ctx, `UPDATE request_posts SET status = $1 WHERE id = $2`, status, requestID)
	if err != nil {
		return translateError(err, "update request status")
	}
	return expectAffected(tag)
}

// Delete удаляет заявку вместе с предложениями по ней.
func (r *PostgresRequestRepository) Delete(ctx context.Context, requestID string) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM request_posts WHERE id = $1`, requestID)
	if err != nil {
		return translateError(err, "delete request")
	}
	return expectAffected(tag)
}
