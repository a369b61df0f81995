package repository

import (
	"context"

	"github.com/senyabanana/marketplace-service/internal/models"
)

// OfferRepository - интерфейс для работы с предложениями.
type OfferRepository interface {
	Create(ctx context.Context, offer *models.Offer) error
	GetByID(ctx context.Context, offerID string) (*models.Offer, error)
	GetByIDForUpdate(ctx context.Context, offerID string) (*models.Offer, error)
	GetByRequestAndSupplier(ctx context.Context, requestID, supplierID string) (*models.Offer, error)
	ListByRequest(ctx context.Context, requestID string) ([]models.Offer, error)
	UpdateStatus(ctx context.Context, offerID string, status models.OfferStatus) error
	RejectPendingSiblings(ctx context.Context, requestID, acceptedOfferID string) (int64, error)
}

// PostgresOfferRepository - реализация OfferRepository для базы данных.
type PostgresOfferRepository struct {
	DB DBTX
}

// NewPostgresOfferRepository создаёт новый экземпляр PostgresOfferRepository.
func NewPostgresOfferRepository(db DBTX) *PostgresOfferRepository {
	return &PostgresOfferRepository{DB: db}
}

const offerColumns = `id, request_id, supplier_id, proposed, status, created_at`

func scanOffer(row rowScanner) (*models.Offer, error) {
	var offer models.Offer
	if err := row.Scan(
		&offer.ID,
		&offer.RequestID,
		&offer.SupplierID,
		&offer.Proposed,
		&offer.Status,
		&offer.CreatedAt); err != nil {
		return nil, err
	}
	return &offer, nil
}

// Create сохраняет новое предложение.
func (r *PostgresOfferRepository) Create(ctx context.Context, offer *models.Offer) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO offers (`+offerColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		offer.ID,
		offer.RequestID,
		offer.SupplierID,
		offer.Proposed,
		offer.Status,
		offer.CreatedAt)
	return translateError(err, "insert offer")
}

// GetByID возвращает предложение по ID.
func (r *PostgresOfferRepository) GetByID(ctx context.Context, offerID string) (*models.Offer, error) {
	offer, err := scanOffer(r.DB.QueryRow(ctx, `SELECT `+offerColumns+` FROM offers WHERE id = $1`, offerID))
	if err != nil {
		return nil, translateError(err, "get offer")
	}
	return offer, nil
}

// GetByIDForUpdate возвращает предложение и блокирует строку.
func (r *PostgresOfferRepository) GetByIDForUpdate(ctx context.Context, offerID string) (*models.Offer, error) {
	offer, err := scanOffer(r.DB.QueryRow(ctx, `SELECT `+offerColumns+` FROM offers WHERE id = $1 FOR UPDATE`, offerID))
	if err != nil {
		return nil, translateError(err, "lock offer")
	}
	return offer, nil
}

// GetByRequestAndSupplier возвращает предложение поставщика по заявке.
func (r *PostgresOfferRepository) GetByRequestAndSupplier(ctx context.Context, requestID, supplierID string) (*models.Offer, error) {
	offer, err := scanOffer(r.DB.QueryRow(ctx,
		`SELECT `+offerColumns+` FROM offers WHERE request_id = $1 AND supplier_id = $2`,
		requestID, supplierID))
	if err != nil {
		return nil, translateError(err, "get offer by request and supplier")
	}
	return offer, nil
}

// ListByRequest возвращает все предложения по заявке.
func (r *PostgresOfferRepository) ListByRequest(ctx context.Context, requestID string) ([]models.Offer, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+offerColumns+` FROM offers WHERE request_id = $1 ORDER BY created_at, id`, requestID)
	if err != nil {
		return nil, translateError(err, "query offers")
	}
	defer rows.Close()

	offers := make([]models.Offer, 0)
	for rows.Next() {
		offer, err := scanOffer(rows)
		if err != nil {
			return nil, translateError(err, "scan offer")
		}
		offers = append(offers, *offer)
	}
	return offers, translateError(rows.Err(), "iterate offers")
}

// UpdateStatus меняет статус предложения.
func (r *PostgresOfferRepository) UpdateStatus(ctx context.Context, offerID string, status models.OfferStatus) error {
	tag, err := r.DB.Exec(ctx, `UPDATE offers SET status = $1 WHERE id = $2`, status, offerID)
	if err != nil {
		return translateError(err, "update offer status")
	}
	return expectAffected(tag)
}

// RejectPendingSiblings отклоняет остальные ожидающие предложения по заявке.
func (r *PostgresOfferRepository) RejectPendingSiblings(ctx context.Context, requestID, acceptedOfferID string) (int64, error) {
	tag, err := r.DB.Exec(ctx, `
		UPDATE offers SET status = $1
		WHERE request_id = $2 AND id <> $3 AND status = $4`,
		models.RejectedOffer, requestID, acceptedOfferID, models.PendingOffer)
	if err != nil {
		return 0, translateError(err, "reject sibling offers")
	}
	return tag.RowsAffected(), nil
}
