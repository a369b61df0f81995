package repository

import (
	"context"

	"github.com/senyabanana/marketplace-service/internal/models"

	"github.com/jackc/pgx/v5"
)

// ProductRepository - интерфейс для работы с каталогом товаров.
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, productID string) (*models.Product, error)
	List(ctx context.Context, limit, offset int) ([]models.Product, error)
	ListBySupplier(ctx context.Context, supplierID string) ([]models.Product, error)
	ListByCategory(ctx context.Context, category string) ([]models.Product, error)
	SearchByName(ctx context.Context, query string) ([]models.Product, error)
	CountBySupplier(ctx context.Context, supplierID string) (int64, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, productID string) error
}

// PostgresProductRepository - реализация ProductRepository для базы данных.
type PostgresProductRepository struct {
	DB DBTX
}

// NewPostgresProductRepository создаёт новый экземпляр PostgresProductRepository.
func NewPostgresProductRepository(db DBTX) *PostgresProductRepository {
	return &PostgresProductRepository{DB: db}
}

const productColumns = `id, name, description, category, price, supplier_id, image_path`

func scanProduct(row rowScanner) (*models.Product, error) {
	var product models.Product
	if err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Category,
		&product.Price,
		&product.SupplierID,
		&product.ImagePath); err != nil {
		return nil, err
	}
	return &product, nil
}

func collectProducts(rows pgx.Rows, err error) ([]models.Product, error) {
	if err != nil {
		return nil, translateError(err, "query products")
	}
	defer rows.Close()

	products := make([]models.Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, translateError(err, "scan product")
		}
		products = append(products, *product)
	}
	return products, translateError(rows.Err(), "iterate products")
}

// Create сохраняет новый товар.
func (r *PostgresProductRepository) Create(ctx context.Context, product *models.Product) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		product.ID,
		product.Name,
		product.Description,
		product.Category,
		product.Price,
		product.SupplierID,
		product.ImagePath)
	return translateError(err, "insert product")
}

// GetByID возвращает товар по ID.
func (r *PostgresProductRepository) GetByID(ctx context.Context, productID string) (*models.Product, error) {
	product, err := scanProduct(r.DB.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, productID))
	if err != nil {
		return nil, translateError(err, "get product")
	}
	return product, nil
}

// List возвращает страницу товаров.
func (r *PostgresProductRepository) List(ctx context.Context, limit, offset int) ([]models.Product, error) {
	return collectProducts(r.DB.Query(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY name, id LIMIT $1 OFFSET $2`, limit, offset))
}

// ListBySupplier возвращает все товары поставщика.
func (r *PostgresProductRepository) ListBySupplier(ctx context.Context, supplierID string) ([]models.Product, error) {
	return collectProducts(r.DB.Query(ctx,
		`SELECT `+productColumns+` FROM products WHERE supplier_id = $1 ORDER BY name, id`, supplierID))
}

// ListByCategory возвращает товары категории.
func (r *PostgresProductRepository) ListByCategory(ctx context.Context, category string) ([]models.Product, error) {
	return collectProducts(r.DB.Query(ctx,
		`SELECT `+productColumns+` FROM products WHERE category = $1 ORDER BY name, id`, category))
}

// SearchByName ищет товары по подстроке названия без учета регистра.
func (r *PostgresProductRepository) SearchByName(ctx context.Context, query string) ([]models.Product, error) {
	return collectProducts(r.DB.Query(ctx,
		`SELECT `+productColumns+` FROM products WHERE name ILIKE '%' || $1 || '%' ORDER BY name, id`, query))
}

func (r *PostgresProductRepository) CountBySupplier(ctx context.Context, supplierID string) (int64, error) {
	var count int64
	if err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE supplier_id = $1`, supplierID).Scan(&count); err != nil {
		return 0, translateError(err, "count supplier products")
	}
	return count, nil
}

func (r *PostgresProductRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		return 0, translateError(err, "count products")
	}
	return count, nil
}

// Update сохраняет изменяемые поля товара.
func (r *PostgresProductRepository) Update(ctx context.Context, product *models.Product) error {
	tag, err := r.DB.Exec(ctx, `
		UPDATE products
		SET name = $1, description = $2, category = $3, price = $4, supplier_id = $5, image_path = $6
		WHERE id = $7`,
		product.Name,
		product.Description,
		product.Category,
		product.Price,
		product.SupplierID,
		product.ImagePath,
		product.ID)
	if err != nil {
		return translateError(err, "update product")
	}
	return expectAffected(tag)
}

// Delete удаляет товар.
func (r *PostgresProductRepository) Delete(ctx context.Context, productID string) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM products WHERE id = $1`, productID)
	if err != nil {
		return translateError(err, "delete product")
	}
	return expectAffected(tag)
}
