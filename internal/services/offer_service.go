package services

import (
	"context"
	"errors"
	"time"

	"github.com/senyabanana/marketplace-service/internal/metrics"
	"github.com/senyabanana/marketplace-service/internal/models"
	"github.com/senyabanana/marketplace-service/internal/repository"
	"github.com/senyabanana/marketplace-service/internal/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LifecycleRecorder учитывает ответы на предложения и изменения заказов.
type LifecycleRecorder interface {
	RecordOfferResponse(action string, err error)
	RecordOrderCreated()
	RecordOrderTransition(status string)
}

// OfferService управляет предложениями поставщиков и их переходами.
type OfferService struct {
	Store   repository.Store
	Metrics LifecycleRecorder
	now     func() time.Time
}

// NewOfferService создаёт новый экземпляр OfferService.
func NewOfferService(store repository.Store, recorder LifecycleRecorder) *OfferService {
	return &OfferService{Store: store, Metrics: recorder, now: time.Now}
}

// CreateOffer создает ожидающее предложение поставщика по открытой заявке.
func (s *OfferService) CreateOffer(ctx context.Context, requestID, supplierID string, proposed decimal.Decimal) (*models.Offer, error) {
	if err := utils.ValidateID("requestId", requestID); err != nil {
		return nil, err
	}
	if err := utils.ValidateID("supplierId", supplierID); err != nil {
		return nil, err
	}
	if !proposed.IsPositive() {
		return nil, models.NewError(models.CodeInvalidInput, "proposed price must be positive")
	}

	var offer *models.Offer
	err := s.Store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		request, err := tx.Requests().GetByIDForUpdate(ctx, requestID)
		if err != nil {
			return notFoundAs(err, models.ErrRequestNotFound)
		}
		if request.Status != models.OpenRequest {
			return models.ErrRequestNotFound
		}

		supplier, err := tx.Users().GetByID(ctx, supplierID)
		if err != nil {
			return notFoundAs(err, models.ErrSupplierNotFound)
		}

		carries, err := carriesCategory(ctx, tx, supplier.ID, request.Category)
		if err != nil {
			return err
		}
		if !carries {
			return models.ErrCategoryMismatch
		}

		if err := ensureNoOffer(ctx, tx, request.ID, supplier.ID); err != nil {
			return err
		}

		offer = &models.Offer{
			ID:         uuid.New().String(),
			RequestID:  request.ID,
			SupplierID: supplier.ID,
			Proposed:   proposed,
			Status:     models.PendingOffer,
			CreatedAt:  s.now().UTC(),
		}
		return insertOffer(ctx, tx, offer)
	})
	if err != nil {
		return nil, err
	}
	return offer, nil
}

// AdminDecide создает предложение сразу в статусе accepted или rejected по цене заявки.
// Статус заявки и остальные предложения не меняются.
func (s *OfferService) AdminDecide(ctx context.Context, requestID, supplierID string, decision models.OfferStatus) (*models.Offer, error) {
	if decision != models.AcceptedOffer && decision != models.RejectedOffer {
		return nil, models.NewError(models.CodeInvalidInput, "decision must be either 'accepted' or 'rejected'")
	}
	if err := utils.ValidateID("requestId", requestID); err != nil {
		return nil, err
	}
	if err := utils.ValidateID("supplierId", supplierID); err != nil {
		return nil, err
	}

	var offer *models.Offer
	err := s.Store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		request, err := tx.Requests().GetByIDForUpdate(ctx, requestID)
		if err != nil {
			return notFoundAs(err, models.ErrRequestNotFound)
		}
		supplier, err := tx.Users().GetByID(ctx, supplierID)
		if err != nil {
			return notFoundAs(err, models.ErrSupplierNotFound)
		}
		if err := ensureNoOffer(ctx, tx, request.ID, supplier.ID); err != nil {
			return err
		}

		offer = &models.Offer{
			ID:         uuid.New().String(),
			RequestID:  request.ID,
			SupplierID: supplier.ID,
			Proposed:   request.OfferPrice,
			Status:     decision,
			CreatedAt:  s.now().UTC(),
		}
		return insertOffer(ctx, tx, offer)
	})
	if err != nil {
		return nil, err
	}
	return offer, nil
}

// ListOffers возвращает предложения по заявке.
func (s *OfferService) ListOffers(ctx context.Context, requestID string) ([]models.Offer, error) {
	if err := utils.ValidateID("requestId", requestID); err != nil {
		return nil, err
	}
	if _, err := s.Store.Requests().GetByID(ctx, requestID); err != nil {
		return nil, notFoundAs(err, models.ErrRequestNotFound)
	}

	offers, err := s.Store.Offers().ListByRequest(ctx, requestID)
	if err != nil {
		return nil, storageErr(err)
	}
	return offers, nil
}

// RespondToOffer применяет к предложению действие accept, reject или confirm.
// Блокировки берутся в порядке: заявка, предложение, заказ.
func (s *OfferService) RespondToOffer(ctx context.Context, offerID string, action models.OfferAction) (decision *models.OfferDecision, err error) {
	switch action {
	case models.AcceptOffer, models.RejectOffer, models.ConfirmOffer:
	default:
		s.Metrics.RecordOfferResponse(metrics.InvalidAction, models.ErrInvalidAction)
		return nil, models.ErrInvalidAction
	}
	defer func() {
		s.Metrics.RecordOfferResponse(string(action), err)
	}()
	if err := utils.ValidateID("offerId", offerID); err != nil {
		return nil, err
	}

	orderCreated := false
	err = s.Store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		orderCreated = false

		offer, err := tx.Offers().GetByID(ctx, offerID)
		if err != nil {
			return notFoundAs(err, models.ErrOfferNotFound)
		}
		request, err := tx.Requests().GetByIDForUpdate(ctx, offer.RequestID)
		if err != nil {
			return notFoundAs(err, models.ErrOfferNotFound)
		}
		offer, err = tx.Offers().GetByIDForUpdate(ctx, offerID)
		if err != nil {
			return notFoundAs(err, models.ErrOfferNotFound)
		}

		switch action {
		case models.AcceptOffer:
			decision, err = s.accept(ctx, tx, request, offer)
		case models.RejectOffer:
			decision, err = s.reject(ctx, tx, offer)
		case models.ConfirmOffer:
			decision, orderCreated, err = s.confirm(ctx, tx, request, offer)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if orderCreated {
		s.Metrics.RecordOrderCreated()
	}
	return decision, nil
}

func (s *OfferService) accept(ctx context.Context, tx repository.Tx, request *models.RequestPost, offer *models.Offer) (*models.OfferDecision, error) {
	if !utils.Contains(models.OfferTransitions[offer.Status], models.AcceptedOffer) {
		return nil, models.ErrOfferAlreadyResponded
	}
	if request.Status != models.OpenRequest {
		return nil, models.ErrRequestNotOpen
	}

	if err := tx.Offers().UpdateStatus(ctx, offer.ID, models.AcceptedOffer); err != nil {
		return nil, storageErr(err)
	}
	if err := tx.Requests().UpdateStatus(ctx, request.ID, models.AcceptedRequest); err != nil {
		return nil, storageErr(err)
	}
	if _, err := tx.Offers().RejectPendingSiblings(ctx, request.ID, offer.ID); err != nil {
		return nil, storageErr(err)
	}

	offer.Status = models.AcceptedOffer
	return &models.OfferDecision{Message: "Offer accepted", Offer: offer}, nil
}

func (s *OfferService) reject(ctx context.Context, tx repository.Tx, offer *models.Offer) (*models.OfferDecision, error) {
	if !utils.Contains(models.OfferTransitions[offer.Status], models.RejectedOffer) {
		return nil, models.ErrOfferAlreadyResponded
	}
	if err := tx.Offers().UpdateStatus(ctx, offer.ID, models.RejectedOffer); err != nil {
		return nil, storageErr(err)
	}

	offer.Status = models.RejectedOffer
	return &models.OfferDecision{Message: "Offer rejected", Offer: offer}, nil
}

// confirm создает заказ по принятому предложению или отмечает существующий подтвержденным.
func (s *OfferService) confirm(ctx context.Context, tx repository.Tx, request *models.RequestPost, offer *models.Offer) (*models.OfferDecision, bool, error) {
	if offer.Status != models.AcceptedOffer {
		return nil, false, models.ErrOfferNotAccepted
	}

	now := s.now().UTC()
	order, err := tx.Orders().GetByOfferIDForUpdate(ctx, offer.ID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		order = &models.Order{
			ID:          uuid.New().String(),
			RequestID:   request.ID,
			OfferID:     offer.ID,
			CustomerID:  request.CustomerID,
			SupplierID:  offer.SupplierID,
			Status:      models.PlacedOrder,
			TotalPrice:  offer.Proposed,
			Quantity:    request.Quantity,
			CreatedAt:   now,
			ConfirmedAt: &now,
		}
		if err := tx.Orders().Create(ctx, order); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return nil, false, models.ErrOrderExists
			}
			return nil, false, storageErr(err)
		}
		return &models.OfferDecision{Message: "Order confirmed successfully", Offer: offer, Order: order}, true, nil
	case err != nil:
		return nil, false, storageErr(err)
	}

	if order.IsConfirmed() {
		return &models.OfferDecision{Message: "Order already confirmed.", Offer: offer, Order: order, AlreadyConfirmed: true}, false, nil
	}
	if err := tx.Orders().MarkConfirmed(ctx, order.ID, now); err != nil {
		return nil, false, storageErr(err)
	}
	order.ConfirmedAt = &now
	return &models.OfferDecision{Message: "Order confirmed successfully", Offer: offer, Order: order}, false, nil
}

func carriesCategory(ctx context.Context, tx repository.Tx, supplierID, category string) (bool, error) {
	products, err := tx.Products().ListBySupplier(ctx, supplierID)
	if err != nil {
		return false, storageErr(err)
	}
	for _, product := range products {
		if product.Category == category {
			return true, nil
		}
	}
	return false, nil
}

func ensureNoOffer(ctx context.Context, tx repository.Tx, requestID, supplierID string) error {
	_, err := tx.Offers().GetByRequestAndSupplier(ctx, requestID, supplierID)
	switch {
	case err == nil:
		return models.ErrOfferExists
	case errors.Is(err, repository.ErrNotFound):
		return nil
	default:
		return storageErr(err)
	}
}

func insertOffer(ctx context.Context, tx repository.Tx, offer *models.Offer) error {
	if err := tx.Offers().Create(ctx, offer); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return models.ErrOfferExists
		}
		return storageErr(err)
	}
	return nil
}
