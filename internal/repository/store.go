package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound   = errors.New("record not found")
	ErrDuplicate  = errors.New("duplicate record")
	ErrReferenced = errors.New("record is referenced by another record")
)

// DBTX - общий набор методов пула соединений и транзакции.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxBeginner - источник соединений, умеющий открывать транзакции (например, *pgxpool.Pool).
type TxBeginner interface {
	DBTX
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// Tx - набор репозиториев, работающих в рамках одной единицы работы.
type Tx interface {
	Requests() RequestRepository
	Offers() OfferRepository
	Orders() OrderRepository
	Users() UserRepository
	Products() ProductRepository
}

// Store дает доступ к репозиториям вне транзакции и открывает транзакции.
// Любая ошибка, возвращенная из fn, откатывает все изменения транзакции.
type Store interface {
	Tx
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

type postgresRepos struct {
	requests *PostgresRequestRepository
	offers   *PostgresOfferRepository
	orders   *PostgresOrderRepository
	users    *PostgresUserRepository
	products *PostgresProductRepository
}

func newPostgresRepos(db DBTX) postgresRepos {
	return postgresRepos{
		requests: NewPostgresRequestRepository(db),
		offers:   NewPostgresOfferRepository(db),
		orders:   NewPostgresOrderRepository(db),
		users:    NewPostgresUserRepository(db),
		products: NewPostgresProductRepository(db),
	}
}

func (r postgresRepos) Requests() RequestRepository { return r.requests }
func (r postgresRepos) Offers() OfferRepository     { return r.offers }
func (r postgresRepos) Orders() OrderRepository     { return r.orders }
func (r postgresRepos) Users() UserRepository       { return r.users }
func (r postgresRepos) Products() ProductRepository { return r.products }

var _ Store = (*PostgresStore)(nil)

// PostgresStore - реализация Store поверх пула pgx.
type PostgresStore struct {
	postgresRepos
	DB TxBeginner
}

// NewPostgresStore создаёт новый экземпляр PostgresStore.
func NewPostgresStore(db TxBeginner) *PostgresStore {
	return &PostgresStore{
		postgresRepos: newPostgresRepos(db),
		DB:            db,
	}
}

// WithinTx выполняет fn в транзакции read committed.
func (s *PostgresStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	pgTx, err := s.DB.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = pgTx.Rollback(ctx)
	}()

	if err := fn(ctx, newPostgresRepos(pgTx)); err != nil {
		return err
	}
	if err := pgTx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// translateError приводит ошибки драйвера к ошибкам репозитория.
func translateError(err error, action string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
		case "23503":
			return fmt.Errorf("%w: %s", ErrReferenced, pgErr.ConstraintName)
		}
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

func expectAffected(tag pgconn.CommandTag) error {
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
