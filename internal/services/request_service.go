package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/senyabanana/marketplace-service/internal/blob"
	"github.com/senyabanana/marketplace-service/internal/models"
	"github.com/senyabanana/marketplace-service/internal/repository"
	"github.com/senyabanana/marketplace-service/internal/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RequestService управляет заявками покупателей.
type RequestService struct {
	Store  repository.Store
	images imageUploader
	now    func() time.Time
}

// NewRequestService создаёт новый экземпляр RequestService.
func NewRequestService(store repository.Store, blobStore blob.Store, logger logrus.FieldLogger) *RequestService {
	return &RequestService{
		Store:  store,
		images: imageUploader{Blob: blobStore, Logger: logger},
		now:    time.Now,
	}
}

// CreateRequest создает заявку; изображение загружается до записи и удаляется, если запись не удалась.
func (s *RequestService) CreateRequest(ctx context.Context, requestReq models.RequestCreate, image *models.Upload) (*models.RequestPost, error) {
	if err := utils.ValidateStruct(requestReq); err != nil {
		return nil, err
	}
	if requestReq.OfferPrice.IsNegative() {
		return nil, models.NewError(models.CodeInvalidInput, "offer price must not be negative")
	}
	if requestReq.Quantity == 0 {
		requestReq.Quantity = 1
	}

	if _, err := s.Store.Users().GetByID(ctx, requestReq.CustomerID); err != nil {
		return nil, notFoundAs(err, models.ErrCustomerNotFound)
	}

	key, imageURL, err := s.images.upload(ctx, blob.RequestImagePrefix, image)
	if err != nil {
		return nil, err
	}

	request := &models.RequestPost{
		ID:          uuid.New().String(),
		Title:       requestReq.Title,
		Description: requestReq.Description,
		Category:    requestReq.Category,
		OfferPrice:  requestReq.OfferPrice,
		Quantity:    requestReq.Quantity,
		Status:      models.OpenRequest,
		CustomerID:  requestReq.CustomerID,
		CreatedAt:   s.now().UTC(),
		ImagePath:   imageURL,
	}
	if err := s.Store.Requests().Create(ctx, request); err != nil {
		s.images.discard(ctx, key)
		return nil, storageErr(err)
	}
	return request, nil
}

// GetRequest возвращает заявку по ID.
func (s *RequestService) GetRequest(ctx context.Context, requestID string) (*models.RequestPost, error) {
	if err := utils.ValidateID("requestId", requestID); err != nil {
		return nil, err
	}
	request, err := s.Store.Requests().GetByID(ctx, requestID)
	if err != nil {
		return nil, notFoundAs(err, models.ErrRequestNotFound)
	}
	return request, nil
}

// ListRequests возвращает страницу заявок.
func (s *RequestService) ListRequests(ctx context.Context, limit, offset int) ([]models.RequestPost, error) {
	requests, err := s.Store.Requests().List(ctx, limit, offset)
	if err != nil {
		return nil, storageErr(err)
	}
	return requests, nil
}

// UpdateRequest меняет переданные поля заявки.
func (s *RequestService) UpdateRequest(ctx context.Context, requestID string, update models.RequestUpdate) (*models.RequestPost, error) {
	if err := utils.ValidateID("requestId", requestID); err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(update); err != nil {
		return nil, err
	}
	if update.OfferPrice != nil && update.OfferPrice.IsNegative() {
		return nil, models.NewError(models.CodeInvalidInput, "offer price must not be negative")
	}

	var request *models.RequestPost
	err := s.Store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		request, err = tx.Requests().GetByIDForUpdate(ctx, requestID)
		if err != nil {
			return notFoundAs(err, models.ErrRequestNotFound)
		}

		if update.Title != nil {
			request.Title = *update.Title
		}
		if update.Description != nil {
			request.Description = *update.Description
		}
		if update.Category != nil {
			request.Category = *update.Category
		}
		if update.OfferPrice != nil {
			request.OfferPrice = *update.OfferPrice
		}
		if update.Quantity != nil {
			request.Quantity = *update.Quantity
		}

		if err := tx.Requests().Update(ctx, request); err != nil {
			return storageErr(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// DeleteRequest удаляет заявку вместе с предложениями.
func (s *RequestService) DeleteRequest(ctx context.Context, requestID string) error {
	if err := utils.ValidateID("requestId", requestID); err != nil {
		return err
	}
	err := s.Store.Requests().Delete(ctx, requestID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrReferenced):
		return models.ErrRequestHasOrders
	default:
		return notFoundAs(err, models.ErrRequestNotFound)
	}
}

// UpdateRequestStatus переводит открытую заявку в declined или cancelled.
func (s *RequestService) UpdateRequestStatus(ctx context.Context, requestID string, status models.RequestStatus) (*models.RequestPost, error) {
	if err := utils.ValidateID("requestId", requestID); err != nil {
		return nil, err
	}
	if _, ok := models.RequestTransitions[status]; !ok {
		return nil, models.NewError(models.CodeInvalidInput, "unknown request status")
	}

	var request *models.RequestPost
	err := s.Store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		request, err = tx.Requests().GetByIDForUpdate(ctx, requestID)
		if err != nil {
			return notFoundAs(err, models.ErrRequestNotFound)
		}
		if !utils.Contains(models.RequestTransitions[request.Status], status) {
			return models.ErrInvalidRequestStatus
		}
		if err := tx.Requests().UpdateStatus(ctx, request.ID, status); err != nil {
			return storageErr(err)
		}
		request.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// MatchForSupplier возвращает заявки любых статусов в категориях товаров поставщика.
func (s *RequestService) MatchForSupplier(ctx context.Context, supplierID string) ([]models.RequestPost, error) {
	if err := utils.ValidateID("supplierId", supplierID); err != nil {
		return nil, err
	}
	if _, err := s.Store.Users().GetByID(ctx, supplierID); err != nil {
		return nil, notFoundAs(err, models.ErrSupplierNotFound)
	}

	products, err := s.Store.Products().ListBySupplier(ctx, supplierID)
	if err != nil {
		return nil, storageErr(err)
	}
	if len(products) == 0 {
		return nil, models.ErrSupplierHasNoProducts
	}

	set := make(map[string]struct{})
	for _, product := range products {
		if product.Category != "" {
			set[product.Category] = struct{}{}
		}
	}
	if len(set) == 0 {
		return nil, models.ErrNoProductCategories
	}
	categories := make([]string, 0, len(set))
	for category := range set {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	requests, err := s.Store.Requests().ListByCategories(ctx, categories)
	if err != nil {
		return nil, storageErr(err)
	}
	return requests, nil
}
