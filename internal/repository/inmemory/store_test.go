package inmemory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/senyabanana/marketplace-service/internal/models"
	"github.com/senyabanana/marketplace-service/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, s *Store) (models.User, models.RequestPost) {
	t.Helper()
	ctx := context.Background()

	user := models.User{ID: "u1", Name: "Ann", Email: "ann@example.com", Role: models.CustomerRole, Status: models.ActiveUser, CreatedAt: time.Now()}
	require.NoError(t, s.Users().Create(ctx, &user))

	request := models.RequestPost{
		ID:         "r1",
		Title:      "Laptops",
		Category:   "electronics",
		OfferPrice: decimal.NewFromInt(100),
		Quantity:   2,
		Status:     models.OpenRequest,
		CustomerID: user.ID,
		CreatedAt:  time.Now(),
	}
	require.NoError(t, s.Requests().Create(ctx, &request))
	return user, request
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	s := New()
	_, request := seed(t, s)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		require.NoError(t, tx.Requests().UpdateStatus(ctx, request.ID, models.AcceptedRequest))
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.Requests().GetByID(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OpenRequest, got.Status)
}

func TestWithinTxCommits(t *testing.T) {
	s := New()
	_, request := seed(t, s)
	ctx := context.Background()

	err := s.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		return tx.Requests().UpdateStatus(ctx, request.ID, models.CancelledRequest)
	})
	require.NoError(t, err)

	got, err := s.Requests().GetByID(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CancelledRequest, got.Status)
}

func TestFailOnInjectsFault(t *testing.T) {
	s := New()
	_, request := seed(t, s)
	ctx := context.Background()
	boom := errors.New("disk full")

	s.FailOn("Requests.GetByID", boom)
	_, err := s.Requests().GetByID(ctx, request.ID)
	require.ErrorIs(t, err, boom)

	s.FailOn("Requests.GetByID", nil)
	_, err = s.Requests().GetByID(ctx, request.ID)
	require.NoError(t, err)
}

func TestOfferUniquePerRequestAndSupplier(t *testing.T) {
	s := New()
	_, request := seed(t, s)
	ctx := context.Background()

	supplier := models.User{ID: "s1", Name: "Sam", Email: "sam@example.com", Role: models.SupplierRole}
	require.NoError(t, s.Users().Create(ctx, &supplier))

	first := models.Offer{ID: "o1", RequestID: request.ID, SupplierID: supplier.ID, Status: models.PendingOffer}
	require.NoError(t, s.Offers().Create(ctx, &first))

	second := models.Offer{ID: "o2", RequestID: request.ID, SupplierID: supplier.ID, Status: models.PendingOffer}
	require.ErrorIs(t, s.Offers().Create(ctx, &second), repository.ErrDuplicate)
}

func TestDeleteRequestCascadesOffers(t *testing.T) {
	s := New()
	_, request := seed(t, s)
	ctx := context.Background()

	supplier := models.User{ID: "s1", Name: "Sam", Email: "sam@example.com", Role: models.SupplierRole}
	require.NoError(t, s.Users().Create(ctx, &supplier))
	offer := models.Offer{ID: "o1", RequestID: request.ID, SupplierID: supplier.ID, Status: models.PendingOffer}
	require.NoError(t, s.Offers().Create(ctx, &offer))

	require.NoError(t, s.Requests().Delete(ctx, request.ID))

	_, err := s.Offers().GetByID(ctx, offer.ID)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDeleteRequestWithOrderIsReferenced(t *testing.T) {
	s := New()
	user, request := seed(t, s)
	ctx := context.Background()

	supplier := models.User{ID: "s1", Name: "Sam", Email: "sam@example.com", Role: models.SupplierRole}
	require.NoError(t, s.Users().Create(ctx, &supplier))
	offer := models.Offer{ID: "o1", RequestID: request.ID, SupplierID: supplier.ID, Status: models.AcceptedOffer}
	require.NoError(t, s.Offers().Create(ctx, &offer))
	order := models.Order{ID: "ord1", RequestID: request.ID, OfferID: offer.ID, CustomerID: user.ID, SupplierID: supplier.ID, Status: models.PlacedOrder}
	require.NoError(t, s.Orders().Create(ctx, &order))

	require.ErrorIs(t, s.Requests().Delete(ctx, request.ID), repository.ErrReferenced)
}

func TestUserListFilterAndPaging(t *testing.T) {
	s := New()
	ctx := context.Background()
	base := time.Now()

	for i, role := range []models.UserRole{models.CustomerRole, models.SupplierRole, models.SupplierRole} {
		user := models.User{
			ID:        string(rune('a' + i)),
			Email:     string(rune('a'+i)) + "@example.com",
			Role:      role,
			Status:    models.ActiveUser,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, s.Users().Create(ctx, &user))
	}

	suppliers, err := s.Users().List(ctx, models.UserFilter{Role: models.SupplierRole, Limit: 10})
	require.NoError(t, err)
	require.Len(t, suppliers, 2)
	assert.Equal(t, "c", suppliers[0].ID)

	paged, err := s.Users().List(ctx, models.UserFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, "b", paged[0].ID)
}
