package services

import (
	"context"

	"github.com/senyabanana/marketplace-service/internal/blob"
	"github.com/senyabanana/marketplace-service/internal/models"
	"github.com/senyabanana/marketplace-service/internal/repository"
	"github.com/senyabanana/marketplace-service/internal/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ProductService управляет каталогом товаров поставщиков.
type ProductService struct {
	Store  repository.Store
	images imageUploader
}

// NewProductService создаёт новый экземпляр ProductService.
func NewProductService(store repository.Store, blobStore blob.Store, logger logrus.FieldLogger) *ProductService {
	return &ProductService{
		Store:  store,
		images: imageUploader{Blob: blobStore, Logger: logger},
	}
}

func validateProduct(productReq models.ProductRequest) error {
	if err := utils.ValidateStruct(productReq); err != nil {
		return err
	}
	if productReq.Price.IsNegative() {
		return models.NewError(models.CodeInvalidInput, "price must not be negative")
	}
	return nil
}

// CreateProduct создает товар поставщика с необязательным изображением.
func (s *ProductService) CreateProduct(ctx context.Context, productReq models.ProductRequest, image *models.Upload) (*models.Product, error) {
	if err := validateProduct(productReq); err != nil {
		return nil, err
	}
	if _, err := s.Store.Users().GetByID(ctx, productReq.SupplierID); err != nil {
		return nil, notFoundAs(err, models.ErrSupplierNotFound)
	}

	key, imageURL, err := s.images.upload(ctx, blob.ProductImagePrefix, image)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		ID:          uuid.New().String(),
		Name:        productReq.Name,
		Description: productReq.Description,
		Category:    productReq.Category,
		Price:       productReq.Price,
		SupplierID:  productReq.SupplierID,
		ImagePath:   imageURL,
	}
	if err := s.Store.Products().Create(ctx, product); err != nil {
		s.images.discard(ctx, key)
		return nil, storageErr(err)
	}
	return product, nil
}

// GetProduct возвращает товар по ID.
func (s *ProductService) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	if err := utils.ValidateID("productId", productID); err != nil {
		return nil, err
	}
	product, err := s.Store.Products().GetByID(ctx, productID)
	if err != nil {
		return nil, notFoundAs(err, models.ErrProductNotFound)
	}
	return product, nil
}

// ListProducts возвращает страницу товаров.
func (s *ProductService) ListProducts(ctx context.Context, limit, offset int) ([]models.Product, error) {
	products, err := s.Store.Products().List(ctx, limit, offset)
	if err != nil {
		return nil, storageErr(err)
	}
	return products, nil
}

// UpdateProduct заменяет поля товара, изображение сохраняется.
func (s *ProductService) UpdateProduct(ctx context.Context, productID string, productReq models.ProductRequest) (*models.Product, error) {
	if err := utils.ValidateID("productId", productID); err != nil {
		return nil, err
	}
	if err := validateProduct(productReq); err != nil {
		return nil, err
	}

	var product *models.Product
	err := s.Store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		product, err = tx.Products().GetByID(ctx, productID)
		if err != nil {
			return notFoundAs(err, models.ErrProductNotFound)
		}
		if _, err := tx.Users().GetByID(ctx, productReq.SupplierID); err != nil {
			return notFoundAs(err, models.ErrSupplierNotFound)
		}

		product.Name = productReq.Name
		product.Description = productReq.Description
		product.Category = productReq.Category
		product.Price = productReq.Price
		product.SupplierID = productReq.SupplierID
		if err := tx.Products().Update(ctx, product); err != nil {
			return storageErr(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct удаляет товар.
func (s *ProductService) DeleteProduct(ctx context.Context, productID string) error {
	if err := utils.ValidateID("productId", productID); err != nil {
		return err
	}
	if err := s.Store.Products().Delete(ctx, productID); err != nil {
		return notFoundAs(err, models.ErrProductNotFound)
	}
	return nil
}

// ListBySupplier возвращает товары существующего поставщика.
func (s *ProductService) ListBySupplier(ctx context.Context, supplierID string) ([]models.Product, error) {
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
	return products, nil
}

// ListByCategory возвращает товары категории; пустой результат считается ошибкой NotFound.
func (s *ProductService) ListByCategory(ctx context.Context, category string) ([]models.Product, error) {
	products, err := s.Store.Products().ListByCategory(ctx, category)
	if err != nil {
		return nil, storageErr(err)
	}
	if len(products) == 0 {
		return nil, models.NewError(models.CodeNotFound, "no products found in this category")
	}
	return products, nil
}

// SearchProducts ищет товары по названию.
func (s *ProductService) SearchProducts(ctx context.Context, query string) ([]models.Product, error) {
	products, err := s.Store.Products().SearchByName(ctx, query)
	if err != nil {
		return nil, storageErr(err)
	}
	if len(products) == 0 {
		return nil, models.NewError(models.CodeNotFound, "no products found matching the query")
	}
	return products, nil
}

// CountBySupplier считает товары поставщика.
func (s *ProductService) CountBySupplier(ctx context.Context, supplierID string) (*models.Count, error) {
	if err := utils.ValidateID("supplierId", supplierID); err != nil {
		return nil, err
	}
	if _, err := s.Store.Users().GetByID(ctx, supplierID); err != nil {
		return nil, notFoundAs(err, models.ErrSupplierNotFound)
	}
	count, err := s.Store.Products().CountBySupplier(ctx, supplierID)
	if err != nil {
		return nil, storageErr(err)
	}
	return &models.Count{Count: count}, nil
}

// CountProducts считает все товары.
func (s *ProductService) CountProducts(ctx context.Context) (*models.Count, error) {
	count, err := s.Store.Products().Count(ctx)
	if err != nil {
		return nil, storageErr(err)
	}
	return &models.Count{Count: count}, nil
}
