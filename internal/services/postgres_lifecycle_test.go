package services

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/senyabanana/marketplace-service/internal/models"
	"github.com/senyabanana/marketplace-service/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Выражения для pgxmock: пробелы в запросах схлопываются до одного.
const (
	selectOffer        = `FROM offers WHERE id = \$1$`
	lockOffer          = `FROM offers WHERE id = \$1 FOR UPDATE$`
	lockRequest        = `FROM request_posts WHERE id = \$1 FOR UPDATE$`
	lockOrderByOffer   = `FROM orders WHERE offer_id = \$1 FOR UPDATE$`
	updateOfferStatus  = `^UPDATE offers SET status = \$1 WHERE id = \$2$`
	updateRequestState = `^UPDATE request_posts SET status = \$1 WHERE id = \$2$`
)

var rejectSiblings = regexp.QuoteMeta(`UPDATE offers SET status = $1 WHERE request_id = $2 AND id <> $3 AND status = $4`)

type responseRecord struct {
	action string
	failed bool
}

type recorderStub struct {
	mu          sync.Mutex
	responses   []responseRecord
	created     int
	transitions []string
}

func (r *recorderStub) RecordOfferResponse(action string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses = append(r.responses, responseRecord{action: action, failed: err != nil})
}

func (r *recorderStub) RecordOrderCreated() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created++
}

func (r *recorderStub) RecordOrderTransition(status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions = append(r.transitions, status)
}

type pgFixture struct {
	mock     pgxmock.PgxPoolIface
	recorder *recorderStub
	offers   *OfferService

	requestID  string
	offerID    string
	customerID string
	supplierID string
	price      decimal.Decimal
}

func newPgFixture(t *testing.T) *pgFixture {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	recorder := &recorderStub{}
	return &pgFixture{
		mock:       mock,
		recorder:   recorder,
		offers:     NewOfferService(repository.NewPostgresStore(mock), recorder),
		requestID:  uuid.New().String(),
		offerID:    uuid.New().String(),
		customerID: uuid.New().String(),
		supplierID: uuid.New().String(),
		price:      decimal.NewFromInt(90),
	}
}

func (f *pgFixture) requestRow(status models.RequestStatus) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "title", "description", "category", "offer_price", "quantity", "status", "customer_id", "created_at", "image_path",
	}).AddRow(f.requestID, "Cement", "", "construction", decimal.NewFromInt(100), 2, status, f.customerID, time.Now().UTC(), (*string)(nil))
}

func (f *pgFixture) offerRow(status models.OfferStatus) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "request_id", "supplier_id", "proposed", "status", "created_at"}).
		AddRow(f.offerID, f.requestID, f.supplierID, f.price, status, time.Now().UTC())
}

// expectLocks ожидает чтение предложения и блокировки заявки и предложения в этом порядке.
func (f *pgFixture) expectLocks(request models.RequestStatus, offer models.OfferStatus) {
	f.mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	f.mock.ExpectQuery(selectOffer).WithArgs(f.offerID).WillReturnRows(f.offerRow(offer))
	f.mock.ExpectQuery(lockRequest).WithArgs(f.requestID).WillReturnRows(f.requestRow(request))
	f.mock.ExpectQuery(lockOffer).WithArgs(f.offerID).WillReturnRows(f.offerRow(offer))
}

func TestPostgresAcceptLocksRequestThenOffer(t *testing.T) {
	f := newPgFixture(t)

	f.expectLocks(models.OpenRequest, models.PendingOffer)
	f.mock.ExpectExec(updateOfferStatus).
		WithArgs(models.AcceptedOffer, f.offerID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	f.mock.ExpectExec(updateRequestState).
		WithArgs(models.AcceptedRequest, f.requestID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	f.mock.ExpectExec(rejectSiblings).
		WithArgs(models.RejectedOffer, f.requestID, f.offerID, models.PendingOffer).
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))
	f.mock.ExpectCommit()

	decision, err := f.offers.RespondToOffer(context.Background(), f.offerID, models.AcceptOffer)
	require.NoError(t, err)
	assert.Equal(t, models.AcceptedOffer, decision.Offer.Status)
	assert.Nil(t, decision.Order)
	require.NoError(t, f.mock.ExpectationsWereMet())
	assert.Equal(t, []responseRecord{{action: "accept"}}, f.recorder.responses)
}

func TestPostgresAcceptRespondedOfferRollsBack(t *testing.T) {
	f := newPgFixture(t)

	f.expectLocks(models.AcceptedRequest, models.AcceptedOffer)
	f.mock.ExpectRollback()

	_, err := f.offers.RespondToOffer(context.Background(), f.offerID, models.AcceptOffer)
	require.ErrorIs(t, err, models.ErrOfferAlreadyResponded)
	require.NoError(t, f.mock.ExpectationsWereMet())
	assert.Equal(t, []responseRecord{{action: "accept", failed: true}}, f.recorder.responses)
}

func TestPostgresAcceptOnClosedRequestRollsBack(t *testing.T) {
	f := newPgFixture(t)

	f.expectLocks(models.CancelledRequest, models.PendingOffer)
	f.mock.ExpectRollback()

	_, err := f.offers.RespondToOffer(context.Background(), f.offerID, models.AcceptOffer)
	require.ErrorIs(t, err, models.ErrRequestNotOpen)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestPostgresConfirmCreatesOrder(t *testing.T) {
	f := newPgFixture(t)

	f.expectLocks(models.AcceptedRequest, models.AcceptedOffer)
	f.mock.ExpectQuery(lockOrderByOffer).WithArgs(f.offerID).WillReturnError(pgx.ErrNoRows)
	f.mock.ExpectExec(`^INSERT INTO orders `).
		WithArgs(pgxmock.AnyArg(), f.requestID, f.offerID, f.customerID, f.supplierID,
			models.PlacedOrder, f.price, 2, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	f.mock.ExpectCommit()

	decision, err := f.offers.RespondToOffer(context.Background(), f.offerID, models.ConfirmOffer)
	require.NoError(t, err)
	require.NotNil(t, decision.Order)
	assert.Equal(t, models.PlacedOrder, decision.Order.Status)
	assert.True(t, decision.Order.IsConfirmed())
	require.NoError(t, f.mock.ExpectationsWereMet())
	assert.Equal(t, 1, f.recorder.created)
}

func TestPostgresConfirmRacingInsertRollsBack(t *testing.T) {
	f := newPgFixture(t)

	f.expectLocks(models.AcceptedRequest, models.AcceptedOffer)
	f.mock.ExpectQuery(lockOrderByOffer).WithArgs(f.offerID).WillReturnError(pgx.ErrNoRows)
	f.mock.ExpectExec(`^INSERT INTO orders `).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "orders_offer_id_key"})
	f.mock.ExpectRollback()

	_, err := f.offers.RespondToOffer(context.Background(), f.offerID, models.ConfirmOffer)
	require.ErrorIs(t, err, models.ErrOrderExists)
	require.NoError(t, f.mock.ExpectationsWereMet())
	assert.Zero(t, f.recorder.created)
	assert.Equal(t, []responseRecord{{action: "confirm", failed: true}}, f.recorder.responses)
}

func TestPostgresReadFailureIsStorageError(t *testing.T) {
	f := newPgFixture(t)

	f.mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	f.mock.ExpectQuery(selectOffer).WithArgs(f.offerID).WillReturnError(errors.New("connection reset"))
	f.mock.ExpectRollback()

	_, err := f.offers.RespondToOffer(context.Background(), f.offerID, models.RejectOffer)
	requireCode(t, err, models.CodeStorageFailure)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestPostgresCreateOfferUniqueViolation(t *testing.T) {
	f := newPgFixture(t)
	now := time.Now().UTC()

	f.mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	f.mock.ExpectQuery(lockRequest).WithArgs(f.requestID).WillReturnRows(f.requestRow(models.OpenRequest))
	f.mock.ExpectQuery(`FROM users WHERE id = \$1$`).WithArgs(f.supplierID).WillReturnRows(
		pgxmock.NewRows([]string{
			"id", "username", "role", "name", "surname", "phone_number", "email", "password", "date_of_birth", "gender",
			"created_at", "status", "latitude", "longitude", "business_phone_number", "business_email", "business_name",
			"business_category", "business_description", "business_type", "personal_image_path", "business_image_path",
			"business_created_at",
		}).AddRow(f.supplierID, (*string)(nil), models.SupplierRole, "Supplier", (*string)(nil), (*string)(nil),
			"supplier@example.com", (*string)(nil), (*time.Time)(nil), (*string)(nil), now, models.ActiveUser,
			(*float64)(nil), (*float64)(nil), (*string)(nil), (*string)(nil), (*string)(nil), (*string)(nil),
			(*string)(nil), (*string)(nil), (*string)(nil), (*string)(nil), now))
	f.mock.ExpectQuery(`FROM products WHERE supplier_id = \$1`).WithArgs(f.supplierID).WillReturnRows(
		pgxmock.NewRows([]string{"id", "name", "description", "category", "price", "supplier_id", "image_path"}).
			AddRow(uuid.New().String(), "Cement", "", "construction", decimal.NewFromInt(20), f.supplierID, (*string)(nil)))
	f.mock.ExpectQuery(`FROM offers WHERE request_id = \$1 AND supplier_id = \$2$`).
		WithArgs(f.requestID, f.supplierID).
		WillReturnError(pgx.ErrNoRows)
	f.mock.ExpectExec(`^INSERT INTO offers `).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "offers_request_id_supplier_id_key"})
	f.mock.ExpectRollback()

	_, err := f.offers.CreateOffer(context.Background(), f.requestID, f.supplierID, f.price)
	require.ErrorIs(t, err, models.ErrOfferExists)
	require.NoError(t, f.mock.ExpectationsWereMet())
}
