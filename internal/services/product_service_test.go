package services

import (
	"testing"

	"github.com/senyabanana/marketplace-service/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductCatalog(t *testing.T) {
	f := newFixture(t)
	supplier := f.user(t, models.SupplierRole)

	laptop, err := f.products.CreateProduct(f.ctx, models.ProductRequest{
		Name:       "Laptop Pro",
		Category:   "electronics",
		Price:      decimal.RequireFromString("999.90"),
		SupplierID: supplier.ID,
	}, &models.Upload{Filename: "laptop.jpg", ContentType: "image/jpeg", Data: []byte("jpg")})
	require.NoError(t, err)
	require.NotNil(t, laptop.ImagePath)
	assert.Contains(t, *laptop.ImagePath, "products/images/")
	f.product(t, supplier.ID, "books")

	t.Run("by category", func(t *testing.T) {
		products, err := f.products.ListByCategory(f.ctx, "electronics")
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, laptop.ID, products[0].ID)

		_, err = f.products.ListByCategory(f.ctx, "garden")
		requireCode(t, err, models.CodeNotFound)
	})

	t.Run("search", func(t *testing.T) {
		products, err := f.products.SearchProducts(f.ctx, "laptop")
		require.NoError(t, err)
		require.Len(t, products, 1)

		_, err = f.products.SearchProducts(f.ctx, "tractor")
		requireCode(t, err, models.CodeNotFound)
	})

	t.Run("counts", func(t *testing.T) {
		count, err := f.products.CountBySupplier(f.ctx, supplier.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 2, count.Count)

		f.product(t, f.user(t, models.SupplierRole).ID, "books")
		total, err := f.products.CountProducts(f.ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 3, total.Count)

		_, err = f.products.CountBySupplier(f.ctx, uuid.New().String())
		require.ErrorIs(t, err, models.ErrSupplierNotFound)
	})

	t.Run("update keeps image", func(t *testing.T) {
		updated, err := f.products.UpdateProduct(f.ctx, laptop.ID, models.ProductRequest{
			Name:       "Laptop Air",
			Category:   "electronics",
			Price:      decimal.NewFromInt(800),
			SupplierID: supplier.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, "Laptop Air", updated.Name)
		assert.Equal(t, laptop.ImagePath, updated.ImagePath)
	})

	t.Run("negative price", func(t *testing.T) {
		_, err := f.products.UpdateProduct(f.ctx, laptop.ID, models.ProductRequest{
			Name:       "Laptop Air",
			Category:   "electronics",
			Price:      decimal.NewFromInt(-1),
			SupplierID: supplier.ID,
		})
		requireCode(t, err, models.CodeInvalidInput)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, f.products.DeleteProduct(f.ctx, laptop.ID))
		_, err := f.products.GetProduct(f.ctx, laptop.ID)
		require.ErrorIs(t, err, models.ErrProductNotFound)
		require.ErrorIs(t, f.products.DeleteProduct(f.ctx, laptop.ID), models.ErrProductNotFound)
	})
}

func TestCreateProductUnknownSupplier(t *testing.T) {
	f := newFixture(t)

	_, err := f.products.CreateProduct(f.ctx, models.ProductRequest{
		Name:       "Desk",
		Category:   "furniture",
		SupplierID: uuid.New().String(),
	}, nil)
	require.ErrorIs(t, err, models.ErrSupplierNotFound)

	_, err = f.products.ListBySupplier(f.ctx, uuid.New().String())
	require.ErrorIs(t, err, models.ErrSupplierNotFound)
}
