// Package inmemory реализует repository.Store в памяти процесса.
//
// Транзакции сериализуются одним мьютексом и применяются копированием состояния:
// изменения видны остальным только после успешного завершения fn.
// Внутри WithinTx нельзя обращаться к методам самого Store, только к переданному Tx.
package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/senyabanana/marketplace-service/internal/models"
	"github.com/senyabanana/marketplace-service/internal/repository"
)

type state struct {
	requests map[string]models.RequestPost
	offers   map[string]models.Offer
	orders   map[string]models.Order
	users    map[string]models.User
	products map[string]models.Product
}

func newState() *state {
	return &state{
		requests: make(map[string]models.RequestPost),
		offers:   make(map[string]models.Offer),
		orders:   make(map[string]models.Order),
		users:    make(map[string]models.User),
		products: make(map[string]models.Product),
	}
}

func cloneMap[V any](src map[string]V) map[string]V {
	dst := make(map[string]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func (st *state) clone() *state {
	return &state{
		requests: cloneMap(st.requests),
		offers:   cloneMap(st.offers),
		orders:   cloneMap(st.orders),
		users:    cloneMap(st.users),
		products: cloneMap(st.products),
	}
}

var _ repository.Store = (*Store)(nil)

// Store - хранилище в памяти с поддержкой транзакций и внедрения сбоев.
type Store struct {
	mu     sync.Mutex
	st     *state
	faults map[string]error
}

// New создаёт пустое хранилище.
func New() *Store {
	return &Store{
		st:     newState(),
		faults: make(map[string]error),
	}
}

// FailOn заставляет операцию op ("Offers.RejectPendingSiblings" и т.п.) возвращать err.
// Передача nil снимает сбой.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.faults, op)
		return
	}
	s.faults[op] = err
}

// WithinTx выполняет fn над копией состояния и применяет ее при успехе.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	work := s.st.clone()
	if err := fn(ctx, &view{s: s, tx: work}); err != nil {
		return err
	}
	s.st = work
	return nil
}

func (s *Store) Requests() repository.RequestRepository { return (&view{s: s}).Requests() }
func (s *Store) Offers() repository.OfferRepository     { return (&view{s: s}).Offers() }
func (s *Store) Orders() repository.OrderRepository     { return (&view{s: s}).Orders() }
func (s *Store) Users() repository.UserRepository       { return (&view{s: s}).Users() }
func (s *Store) Products() repository.ProductRepository { return (&view{s: s}).Products() }

// view - доступ к состоянию: транзакционный (tx != nil) или с блокировкой на каждый вызов.
type view struct {
	s  *Store
	tx *state
}

func (v *view) do(op string, fn func(st *state) error) error {
	if v.tx != nil {
		if err := v.s.faults[op]; err != nil {
			return err
		}
		return fn(v.tx)
	}

	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.faults[op]; err != nil {
		return err
	}
	return fn(v.s.st)
}

func (v *view) Requests() repository.RequestRepository { return requestRepo{v} }
func (v *view) Offers() repository.OfferRepository     { return offerRepo{v} }
func (v *view) Orders() repository.OrderRepository     { return orderRepo{v} }
func (v *view) Users() repository.UserRepository       { return userRepo{v} }
func (v *view) Products() repository.ProductRepository { return productRepo{v} }

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return make([]T, 0)
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func values[V any](m map[string]V, keep func(V) bool) []V {
	out := make([]V, 0, len(m))
	for _, v := range m {
		if keep == nil || keep(v) {
			out = append(out, v)
		}
	}
	return out
}

func sortRequests(requests []models.RequestPost) {
	sort.Slice(requests, func(i, j int) bool {
		if !requests[i].CreatedAt.Equal(requests[j].CreatedAt) {
			return requests[i].CreatedAt.After(requests[j].CreatedAt)
		}
		return requests[i].ID < requests[j].ID
	})
}

func sortOrders(orders []models.Order) {
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.After(orders[j].CreatedAt)
		}
		return orders[i].ID < orders[j].ID
	})
}

func sortProducts(products []models.Product) {
	sort.Slice(products, func(i, j int) bool {
		if products[i].Name != products[j].Name {
			return products[i].Name < products[j].Name
		}
		return products[i].ID < products[j].ID
	})
}

func sortUsers(users []models.User) {
	sort.Slice(users, func(i, j int) bool {
		if !users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].CreatedAt.After(users[j].CreatedAt)
		}
		return users[i].ID < users[j].ID
	})
}
