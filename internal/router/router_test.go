package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/senyabanana/marketplace-service/internal/auth"
	"github.com/senyabanana/marketplace-service/internal/handlers"
	"github.com/senyabanana/marketplace-service/internal/metrics"
	"github.com/senyabanana/marketplace-service/internal/models"
	"github.com/senyabanana/marketplace-service/internal/repository/inmemory"
	"github.com/senyabanana/marketplace-service/internal/services"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memoryBlob struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (b *memoryBlob) Upload(_ context.Context, key string, data []byte, _ string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = data
	return "https://cdn.test/" + key, nil
}

func (b *memoryBlob) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, key)
	return nil
}

type testServer struct {
	handler  http.Handler
	store    *inmemory.Store
	blob     *memoryBlob
	tokens   *auth.TokenManager
	products *services.ProductService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	tokens, err := auth.NewTokenManager("router-secret", time.Hour)
	require.NoError(t, err)

	store := inmemory.New()
	images := &memoryBlob{objects: make(map[string][]byte)}
	timeout := time.Second

	products := services.NewProductService(store, images, logger)
	hasher := &auth.BcryptHasher{Cost: bcrypt.MinCost}
	recorder := metrics.New()

	handler := InitRoutes(Handlers{
		Requests: handlers.NewRequestHandler(services.NewRequestService(store, images, logger), logger, timeout),
		Offers:   handlers.NewOfferHandler(services.NewOfferService(store, recorder), logger, timeout),
		Orders:   handlers.NewOrderHandler(services.NewOrderService(store, recorder), logger, timeout),
		Products: handlers.NewProductHandler(products, logger, timeout),
		Users: handlers.NewUserHandler(
			services.NewUserService(store, images, logger),
			services.NewSupplierService(store, images, logger),
			logger, timeout),
		Auth:    handlers.NewAuthHandler(services.NewAuthService(store, hasher, tokens, logger), logger, timeout),
		Admin:   handlers.NewAdminHandler(services.NewAdminService(store), logger, timeout),
		AuthMW:  handlers.NewAuthMiddleware(tokens, store.Users()),
		Metrics: recorder,
	})

	return &testServer{
		handler:  handler,
		store:    store,
		blob:     images,
		tokens:   tokens,
		products: products,
	}
}

func (s *testServer) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) user(t *testing.T, role models.UserRole) models.User {
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
	require.NoError(t, s.store.Users().Create(context.Background(), &user))
	return user
}

func (s *testServer) token(t *testing.T, user models.User) string {
	t.Helper()
	token, err := s.tokens.Issue(user.ID, string(user.Role))
	require.NoError(t, err)
	return token
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestPing(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, httptest.NewRequest(http.MethodGet, "/api/ping", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.do(t, httptest.NewRequest(http.MethodGet, "/api/ping", nil))

	rec := s.do(t, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "marketplace_http_requests_total")
}

func TestErrorResponseBody(t *testing.T) {
	s := newTestServer(t)

	t.Run("not found", func(t *testing.T) {
		rec := s.do(t, httptest.NewRequest(http.MethodGet, "/api/requests/"+uuid.New().String(), nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		body := decodeBody[models.ErrorResponse](t, rec)
		assert.Equal(t, models.CodeNotFound, body.Code)
		assert.NotEmpty(t, body.Message)
	})

	t.Run("invalid id", func(t *testing.T) {
		rec := s.do(t, httptest.NewRequest(http.MethodGet, "/api/requests/not-a-uuid", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, models.CodeInvalidInput, decodeBody[models.ErrorResponse](t, rec).Code)
	})

	t.Run("malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader("{"))
		rec := s.do(t, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, models.CodeInvalidInput, decodeBody[models.ErrorResponse](t, rec).Code)
	})

	t.Run("bad limit", func(t *testing.T) {
		rec := s.do(t, httptest.NewRequest(http.MethodGet, "/api/requests?limit=500", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAdminRoutesRequireAdminToken(t *testing.T) {
	s := newTestServer(t)
	customer := s.user(t, models.CustomerRole)
	admin := s.user(t, models.AdminRole)

	tests := []struct {
		name   string
		header string
		status int
		code   models.ErrorCode
	}{
		{name: "no token", status: http.StatusUnauthorized, code: models.CodeUnauthorized},
		{name: "garbage token", header: "Bearer nope", status: http.StatusUnauthorized, code: models.CodeUnauthorized},
		{name: "not bearer", header: s.token(t, admin), status: http.StatusUnauthorized, code: models.CodeUnauthorized},
		{name: "customer token", header: "Bearer " + s.token(t, customer), status: http.StatusForbidden, code: models.CodeForbidden},
		{name: "admin token", header: "Bearer " + s.token(t, admin), status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := s.do(t, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.code != "" {
				assert.Equal(t, tt.code, decodeBody[models.ErrorResponse](t, rec).Code)
			}
		})
	}
}

func TestAdminRoleIsCheckedAgainstStoredUser(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	demoted := s.user(t, models.AdminRole)
	demotedToken := s.token(t, demoted)
	demoted.Role = models.CustomerRole
	require.NoError(t, s.store.Users().Update(ctx, &demoted))

	disabled := s.user(t, models.AdminRole)
	disabledToken := s.token(t, disabled)
	disabled.Status = models.DisabledUser
	require.NoError(t, s.store.Users().Update(ctx, &disabled))

	ghostToken, err := s.tokens.Issue(uuid.New().String(), string(models.AdminRole))
	require.NoError(t, err)

	promoted := s.user(t, models.CustomerRole)
	promotedToken := s.token(t, promoted)
	promoted.Role = models.AdminRole
	require.NoError(t, s.store.Users().Update(ctx, &promoted))

	tests := []struct {
		name   string
		token  string
		status int
		code   models.ErrorCode
	}{
		{name: "demoted admin", token: demotedToken, status: http.StatusForbidden, code: models.CodeForbidden},
		{name: "disabled admin", token: disabledToken, status: http.StatusForbidden, code: models.CodeForbidden},
		{name: "unknown user", token: ghostToken, status: http.StatusUnauthorized, code: models.CodeUnauthorized},
		{name: "promoted customer", token: promotedToken, status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			rec := s.do(t, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.code != "" {
				assert.Equal(t, tt.code, decodeBody[models.ErrorResponse](t, rec).Code)
			}
		})
	}

	t.Run("storage failure", func(t *testing.T) {
		s.store.FailOn("Users.GetByID", errors.New("db down"))
		defer s.store.FailOn("Users.GetByID", nil)

		req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
		req.Header.Set("Authorization", "Bearer "+promotedToken)
		rec := s.do(t, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestUserSelfServiceRoutes(t *testing.T) {
	s := newTestServer(t)

	for _, email := range []string{"anna@example.com", "anna2@example.com"} {
		rec := s.do(t, jsonRequest(t, http.MethodPost, "/api/users", models.UserCreate{Name: "Anna", Surname: "Petrova", Email: email}))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := s.do(t, httptest.NewRequest(http.MethodGet, "/api/users/exists/anna@example.com", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeBody[bool](t, rec))

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/api/users/exists/nobody@example.com", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decodeBody[bool](t, rec))

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/api/users/username/anna.petrova", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, decodeBody[[]models.User](t, rec), 2)

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/api/users/username/nobody", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, jsonRequest(t, http.MethodPut, "/api/users/anna@example.com", models.UserCreate{
		Name:        "Anna",
		Email:       "anna.new@example.com",
		PhoneNumber: "+70000000009",
	}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeBody[models.User](t, rec)
	assert.Equal(t, "anna.new@example.com", updated.Email)

	rec = s.do(t, jsonRequest(t, http.MethodPut, "/api/users/anna2@example.com", models.UserCreate{
		Name:        "Anna",
		Email:       "anna2@example.com",
		PhoneNumber: "+70000000009",
	}))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/api/users?limit=1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]models.User](t, rec), 1)

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/api/users?limit=0", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateRequestMultipart(t *testing.T) {
	s := newTestServer(t)
	customer := s.user(t, models.CustomerRole)

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	require.NoError(t, form.WriteField("title", "Need bricks"))
	require.NoError(t, form.WriteField("category", "construction"))
	require.NoError(t, form.WriteField("offerPrice", "150.50"))
	require.NoError(t, form.WriteField("quantity", "3"))
	require.NoError(t, form.WriteField("customerId", customer.ID))

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="image"; filename="bricks.png"`)
	header.Set("Content-Type", "image/png")
	part, err := form.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/requests", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	rec := s.do(t, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[models.RequestPost](t, rec)
	assert.Equal(t, "Need bricks", created.Title)
	assert.Equal(t, models.OpenRequest, created.Status)
	assert.Equal(t, 3, created.Quantity)
	assert.True(t, decimal.RequireFromString("150.50").Equal(created.OfferPrice))
	require.NotNil(t, created.ImagePath)
	assert.True(t, strings.HasPrefix(*created.ImagePath, "https://cdn.test/"))
	assert.Len(t, s.blob.objects, 1)
}

func TestOfferLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	customer := s.user(t, models.CustomerRole)
	supplier := s.user(t, models.SupplierRole)
	_, err := s.products.CreateProduct(ctx, models.ProductRequest{
		Name:       "Cement",
		Category:   "construction",
		Price:      decimal.NewFromInt(20),
		SupplierID: supplier.ID,
	}, nil)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/requests", strings.NewReader(
		"title=Cement&category=construction&offerPrice=100&customerId="+customer.ID))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := s.do(t, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	request := decodeBody[models.RequestPost](t, rec)

	rec = s.do(t, jsonRequest(t, http.MethodPost, "/api/offers/"+request.ID, models.OfferCreate{
		SupplierID: supplier.ID,
		Proposed:   decimal.NewFromInt(90),
	}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	offer := decodeBody[models.Offer](t, rec)
	assert.Equal(t, models.PendingOffer, offer.Status)

	rec = s.do(t, jsonRequest(t, http.MethodPatch, "/api/offers/"+offer.ID+"/respond",
		models.OfferActionRequest{Action: models.AcceptOffer}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	accepted := decodeBody[models.OfferDecision](t, rec)
	assert.Equal(t, models.AcceptedOffer, accepted.Offer.Status)
	assert.Nil(t, accepted.Order)

	rec = s.do(t, jsonRequest(t, http.MethodPatch, "/api/offers/"+offer.ID+"/respond",
		models.OfferActionRequest{Action: models.ConfirmOffer}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	confirmed := decodeBody[models.OfferDecision](t, rec)
	require.NotNil(t, confirmed.Order)
	assert.Equal(t, models.PlacedOrder, confirmed.Order.Status)

	rec = s.do(t, jsonRequest(t, http.MethodPatch, "/api/offers/"+offer.ID+"/respond",
		models.OfferActionRequest{Action: "cancel"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/api/orders/"+customer.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, decodeBody[[]models.Order](t, rec), 1)
}
