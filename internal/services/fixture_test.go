package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/senyabanana/marketplace-service/internal/auth"
	"github.com/senyabanana/marketplace-service/internal/metrics"
	"github.com/senyabanana/marketplace-service/internal/models"
	"github.com/senyabanana/marketplace-service/internal/repository/inmemory"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var errBoom = errors.New("boom")

type fakeBlob struct {
	mu        sync.Mutex
	objects   map[string][]byte
	deleted   []string
	uploadErr error
}

func newFakeBlob() *fakeBlob {
	return &fakeBlob{objects: make(map[string][]byte)}
}

func (b *fakeBlob) Upload(_ context.Context, key string, data []byte, _ string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.uploadErr != nil {
		return "", b.uploadErr
	}
	b.objects[key] = data
	return "https://cdn.test/bucket/" + key, nil
}

func (b *fakeBlob) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, key)
	b.deleted = append(b.deleted, key)
	return nil
}

type fixture struct {
	ctx       context.Context
	store     *inmemory.Store
	blob      *fakeBlob
	tokens    *auth.TokenManager
	metrics   *metrics.Metrics
	requests  *RequestService
	offers    *OfferService
	orders    *OrderService
	products  *ProductService
	users     *UserService
	suppliers *SupplierService
	auth      *AuthService
	admin     *AdminService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	tokens, err := auth.NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)

	store := inmemory.New()
	blobStore := newFakeBlob()
	recorder := metrics.New()
	return &fixture{
		ctx:       context.Background(),
		store:     store,
		blob:      blobStore,
		tokens:    tokens,
		metrics:   recorder,
		requests:  NewRequestService(store, blobStore, logger),
		offers:    NewOfferService(store, recorder),
		orders:    NewOrderService(store, recorder),
		products:  NewProductService(store, blobStore, logger),
		users:     NewUserService(store, blobStore, logger),
		suppliers: NewSupplierService(store, blobStore, logger),
		auth:      NewAuthService(store, &auth.BcryptHasher{Cost: bcrypt.MinCost}, tokens, logger),
		admin:     NewAdminService(store),
	}
}

func (f *fixture) user(t *testing.T, role models.UserRole) models.User {
	t.Helper()
	id := uuid.New().String()
	user := models.User{
		ID:        id,
		Role:      role,
		Name:      string(role),
		Email:     id + "@example.com",
		Status:    models.ActiveUser,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, f.store.Users().Create(f.ctx, &user))
	return user
}

func (f *fixture) product(t *testing.T, supplierID, category string) models.Product {
	t.Helper()
	product, err := f.products.CreateProduct(f.ctx, models.ProductRequest{
		Name:       category + " item",
		Category:   category,
		Price:      decimal.NewFromInt(10),
		SupplierID: supplierID,
	}, nil)
	require.NoError(t, err)
	return *product
}

func (f *fixture) request(t *testing.T, customerID, category string) models.RequestPost {
	t.Helper()
	request, err := f.requests.CreateRequest(f.ctx, models.RequestCreate{
		Title:      "Need " + category,
		Category:   category,
		OfferPrice: decimal.RequireFromString("100.00"),
		Quantity:   2,
		CustomerID: customerID,
	}, nil)
	require.NoError(t, err)
	return *request
}

// supplierWith создает поставщика с товаром в категории.
func (f *fixture) supplierWith(t *testing.T, category string) models.User {
	t.Helper()
	supplier := f.user(t, models.SupplierRole)
	f.product(t, supplier.ID, category)
	return supplier
}

func (f *fixture) offer(t *testing.T, requestID, supplierID string, price string) models.Offer {
	t.Helper()
	offer, err := f.offers.CreateOffer(f.ctx, requestID, supplierID, decimal.RequireFromString(price))
	require.NoError(t, err)
	return *offer
}

func requireCode(t *testing.T, err error, code models.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	require.Truef(t, models.HasCode(err, code), "expected %s, got %v", code, err)
}
