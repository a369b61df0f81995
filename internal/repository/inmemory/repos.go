package inmemory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/senyabanana/marketplace-service/internal/models"
	"github.com/senyabanana/marketplace-service/internal/repository"
)

type requestRepo struct{ v *view }

func (r requestRepo) Create(_ context.Context, request *models.RequestPost) error {
	return r.v.do("Requests.Create", func(st *state) error {
		if _, ok := st.requests[request.ID]; ok {
			return repository.ErrDuplicate
		}
		if _, ok := st.users[request.CustomerID]; !ok {
			return repository.ErrReferenced
		}
		st.requests[request.ID] = *request
		return nil
	})
}

func (r requestRepo) GetByID(_ context.Context, requestID string) (*models.RequestPost, error) {
	var out *models.RequestPost
	err := r.v.do("Requests.GetByID", func(st *state) error {
		request, ok := st.requests[requestID]
		if !ok {
			return repository.ErrNotFound
		}
		out = &request
		return nil
	})
	return out, err
}

func (r requestRepo) GetByIDForUpdate(ctx context.Context, requestID string) (*models.RequestPost, error) {
	return r.GetByID(ctx, requestID)
}

func (r requestRepo) List(_ context.Context, limit, offset int) ([]models.RequestPost, error) {
	var out []models.RequestPost
	err := r.v.do("Requests.List", func(st *state) error {
		out = values(st.requests, nil)
		sortRequests(out)
		out = page(out, limit, offset)
		return nil
	})
	return out, err
}

func (r requestRepo) ListByCategories(_ context.Context, categories []string) ([]models.RequestPost, error) {
	set := make(map[string]struct{}, len(categories))
	for _, category := range categories {
		set[category] = struct{}{}
	}
	var out []models.RequestPost
	err := r.v.do("Requests.ListByCategories", func(st *state) error {
		out = values(st.requests, func(request models.RequestPost) bool {
			_, ok := set[request.Category]
			return ok
		})
		sortRequests(out)
		return nil
	})
	return out, err
}

func (r requestRepo) Update(_ context.Context, request *models.RequestPost) error {
	return r.v.do("Requests.Update", func(st *state) error {
		current, ok := st.requests[request.ID]
		if !ok {
			return repository.ErrNotFound
		}
		current.Title = request.Title
		current.Description = request.Description
		current.Category = request.Category
		current.OfferPrice = request.OfferPrice
		current.Quantity = request.Quantity
		current.ImagePath = request.ImagePath
		st.requests[request.ID] = current
		return nil
	})
}

func (r requestRepo) UpdateStatus(_ context.Context, requestID string, status models.RequestStatus) error {
	return r.v.do("Requests.UpdateStatus", func(st *state) error {
		request, ok := st.requests[requestID]
		if !ok {
			return repository.ErrNotFound
		}
		request.Status = status
		st.requests[requestID] = request
		return nil
	})
}

func (r requestRepo) Delete(_ context.Context, requestID string) error {
	return r.v.do("Requests.Delete", func(st *state) error {
		if _, ok := st.requests[requestID]; !ok {
			return repository.ErrNotFound
		}
		for _, order := range st.orders {
			if order.RequestID == requestID {
				return repository.ErrReferenced
			}
		}
		deleteRequest(st, requestID)
		return nil
	})
}

func deleteRequest(st *state, requestID string) {
	delete(st.requests, requestID)
	for id, offer := range st.offers {
		if offer.RequestID == requestID {
			delete(st.offers, id)
		}
	}
}

type offerRepo struct{ v *view }

func (r offerRepo) Create(_ context.Context, offer *models.Offer) error {
	return r.v.do("Offers.Create", func(st *state) error {
		if _, ok := st.offers[offer.ID]; ok {
			return repository.ErrDuplicate
		}
		for _, existing := range st.offers {
			if existing.RequestID == offer.RequestID && existing.SupplierID == offer.SupplierID {
				return repository.ErrDuplicate
			}
		}
		if _, ok := st.requests[offer.RequestID]; !ok {
			return repository.ErrReferenced
		}
		if _, ok := st.users[offer.SupplierID]; !ok {
			return repository.ErrReferenced
		}
		st.offers[offer.ID] = *offer
		return nil
	})
}

func (r offerRepo) GetByID(_ context.Context, offerID string) (*models.Offer, error) {
	var out *models.Offer
	err := r.v.do("Offers.GetByID", func(st *state) error {
		offer, ok := st.offers[offerID]
		if !ok {
			return repository.ErrNotFound
		}
		out = &offer
		return nil
	})
	return out, err
}

func (r offerRepo) GetByIDForUpdate(ctx context.Context, offerID string) (*models.Offer, error) {
	return r.GetByID(ctx, offerID)
}

func (r offerRepo) GetByRequestAndSupplier(_ context.Context, requestID, supplierID string) (*models.Offer, error) {
	var out *models.Offer
	err := r.v.do("Offers.GetByRequestAndSupplier", func(st *state) error {
		for _, offer := range st.offers {
			if offer.RequestID == requestID && offer.SupplierID == supplierID {
				found := offer
				out = &found
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return out, err
}

func (r offerRepo) ListByRequest(_ context.Context, requestID string) ([]models.Offer, error) {
	var out []models.Offer
	err := r.v.do("Offers.ListByRequest", func(st *state) error {
		out = values(st.offers, func(offer models.Offer) bool { return offer.RequestID == requestID })
		sort.Slice(out, func(i, j int) bool {
			if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
				return out[i].CreatedAt.Before(out[j].CreatedAt)
			}
			return out[i].ID < out[j].ID
		})
		return nil
	})
	return out, err
}

func (r offerRepo) UpdateStatus(_ context.Context, offerID string, status models.OfferStatus) error {
	return r.v.do("Offers.UpdateStatus", func(st *state) error {
		offer, ok := st.offers[offerID]
		if !ok {
			return repository.ErrNotFound
		}
		offer.Status = status
		st.offers[offerID] = offer
		return nil
	})
}

func (r offerRepo) RejectPendingSiblings(_ context.Context, requestID, acceptedOfferID string) (int64, error) {
	var rejected int64
	err := r.v.do("Offers.RejectPendingSiblings", func(st *state) error {
		for id, offer := range st.offers {
			if offer.RequestID == requestID && id != acceptedOfferID && offer.Status == models.PendingOffer {
				offer.Status = models.RejectedOffer
				st.offers[id] = offer
				rejected++
			}
		}
		return nil
	})
	return rejected, err
}

type orderRepo struct{ v *view }

func (r orderRepo) Create(_ context.Context, order *models.Order) error {
	return r.v.do("Orders.Create", func(st *state) error {
		if _, ok := st.orders[order.ID]; ok {
			return repository.ErrDuplicate
		}
		for _, existing := range st.orders {
			if existing.OfferID == order.OfferID {
				return repository.ErrDuplicate
			}
		}
		if _, ok := st.offers[order.OfferID]; !ok {
			return repository.ErrReferenced
		}
		if _, ok := st.requests[order.RequestID]; !ok {
			return repository.ErrReferenced
		}
		st.orders[order.ID] = *order
		return nil
	})
}

func (r orderRepo) GetByID(_ context.Context, orderID string) (*models.Order, error) {
	var out *models.Order
	err := r.v.do("Orders.GetByID", func(st *state) error {
		order, ok := st.orders[orderID]
		if !ok {
			return repository.ErrNotFound
		}
		out = &order
		return nil
	})
	return out, err
}

func (r orderRepo) GetByIDForUpdate(ctx context.Context, orderID string) (*models.Order, error) {
	return r.GetByID(ctx, orderID)
}

func (r orderRepo) GetByOfferIDForUpdate(_ context.Context, offerID string) (*models.Order, error) {
	var out *models.Order
	err := r.v.do("Orders.GetByOfferIDForUpdate", func(st *state) error {
		for _, order := range st.orders {
			if order.OfferID == offerID {
				found := order
				out = &found
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return out, err
}

func (r orderRepo) MarkConfirmed(_ context.Context, orderID string, confirmedAt time.Time) error {
	return r.v.do("Orders.MarkConfirmed", func(st *state) error {
		order, ok := st.orders[orderID]
		if !ok {
			return repository.ErrNotFound
		}
		order.ConfirmedAt = &confirmedAt
		st.orders[orderID] = order
		return nil
	})
}

func (r orderRepo) UpdateStatus(_ context.Context, orderID string, status models.OrderStatus) error {
	return r.v.do("Orders.UpdateStatus", func(st *state) error {
		order, ok := st.orders[orderID]
		if !ok {
			return repository.ErrNotFound
		}
		order.Status = status
		st.orders[orderID] = order
		return nil
	})
}

func (r orderRepo) ListActiveForUser(_ context.Context, userID string) ([]models.Order, error) {
	var out []models.Order
	err := r.v.do("Orders.ListActiveForUser", func(st *state) error {
		out = values(st.orders, func(order models.Order) bool {
			return (order.CustomerID == userID || order.SupplierID == userID) && order.Status == models.PlacedOrder
		})
		sortOrders(out)
		return nil
	})
	return out, err
}

func (r orderRepo) ListHistoryForCustomer(_ context.Context, customerID string) ([]models.Order, error) {
	var out []models.Order
	err := r.v.do("Orders.ListHistoryForCustomer", func(st *state) error {
		out = values(st.orders, func(order models.Order) bool {
			return order.CustomerID == customerID && order.Status == models.DeliveredOrder
		})
		sortOrders(out)
		return nil
	})
	return out, err
}

type userRepo struct{ v *view }

func sameValue(a, b *string) bool {
	return a != nil && b != nil && *a == *b
}

func (r userRepo) Create(_ context.Context, user *models.User) error {
	return r.v.do("Users.Create", func(st *state) error {
		if _, ok := st.users[user.ID]; ok {
			return repository.ErrDuplicate
		}
		for _, existing := range st.users {
			if existing.Email == user.Email || sameValue(existing.PhoneNumber, user.PhoneNumber) {
				return repository.ErrDuplicate
			}
		}
		st.users[user.ID] = *user
		return nil
	})
}

func (r userRepo) find(op string, match func(models.User) bool) (*models.User, error) {
	var out *models.User
	err := r.v.do(op, func(st *state) error {
		for _, user := range st.users {
			if match(user) {
				found := user
				out = &found
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return out, err
}

func (r userRepo) GetByID(_ context.Context, userID string) (*models.User, error) {
	return r.find("Users.GetByID", func(user models.User) bool { return user.ID == userID })
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find("Users.GetByEmail", func(user models.User) bool { return user.Email == email })
}

func (r userRepo) GetByPhone(_ context.Context, phone string) (*models.User, error) {
	return r.find("Users.GetByPhone", func(user models.User) bool { return sameValue(user.PhoneNumber, &phone) })
}

func (r userRepo) GetByBusinessEmail(_ context.Context, email string) (*models.User, error) {
	return r.find("Users.GetByBusinessEmail", func(user models.User) bool { return sameValue(user.BusinessEmail, &email) })
}

func (r userRepo) GetByBusinessPhone(_ context.Context, phone string) (*models.User, error) {
	return r.find("Users.GetByBusinessPhone", func(user models.User) bool {
		return sameValue(user.BusinessPhoneNumber, &phone)
	})
}

func (r userRepo) ListByUsername(_ context.Context, username string) ([]models.User, error) {
	var out []models.User
	err := r.v.do("Users.ListByUsername", func(st *state) error {
		out = values(st.users, func(user models.User) bool { return sameValue(user.Username, &username) })
		sortUsers(out)
		return nil
	})
	return out, err
}

func (r userRepo) List(_ context.Context, filter models.UserFilter) ([]models.User, error) {
	var out []models.User
	err := r.v.do("Users.List", func(st *state) error {
		out = values(st.users, func(user models.User) bool {
			return (filter.Role == "" || user.Role == filter.Role) &&
				(filter.Status == "" || user.Status == filter.Status)
		})
		sortUsers(out)
		out = page(out, filter.Limit, filter.Offset)
		return nil
	})
	return out, err
}

func (r userRepo) Stats(_ context.Context, since time.Time) (*models.UserStats, error) {
	var stats models.UserStats
	err := r.v.do("Users.Stats", func(st *state) error {
		for _, user := range st.users {
			stats.TotalUsers++
			switch user.Status {
			case models.ActiveUser:
				stats.ActiveUsers++
			case models.DisabledUser:
				stats.DisabledUsers++
			}
			if !user.CreatedAt.Before(since) {
				stats.NewUsers++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r userRepo) Update(_ context.Context, user *models.User) error {
	return r.v.do("Users.Update", func(st *state) error {
		if _, ok := st.users[user.ID]; !ok {
			return repository.ErrNotFound
		}
		for id, existing := range st.users {
			if id != user.ID && (existing.Email == user.Email || sameValue(existing.PhoneNumber, user.PhoneNumber)) {
				return repository.ErrDuplicate
			}
		}
		st.users[user.ID] = *user
		return nil
	})
}

func (r userRepo) Delete(_ context.Context, userID string) error {
	return r.v.do("Users.Delete", func(st *state) error {
		if _, ok := st.users[userID]; !ok {
			return repository.ErrNotFound
		}
		for _, order := range st.orders {
			if order.CustomerID == userID || order.SupplierID == userID {
				return repository.ErrReferenced
			}
		}
		for id, request := range st.requests {
			if request.CustomerID == userID {
				deleteRequest(st, id)
			}
		}
		for id, offer := range st.offers {
			if offer.SupplierID == userID {
				delete(st.offers, id)
			}
		}
		for id, product := range st.products {
			if product.SupplierID == userID {
				delete(st.products, id)
			}
		}
		delete(st.users, userID)
		return nil
	})
}

type productRepo struct{ v *view }

func (r productRepo) Create(_ context.Context, product *models.Product) error {
	return r.v.do("Products.Create", func(st *state) error {
		if _, ok := st.products[product.ID]; ok {
			return repository.ErrDuplicate
		}
		if _, ok := st.users[product.SupplierID]; !ok {
			return repository.ErrReferenced
		}
		st.products[product.ID] = *product
		return nil
	})
}

func (r productRepo) GetByID(_ context.Context, productID string) (*models.Product, error) {
	var out *models.Product
	err := r.v.do("Products.GetByID", func(st *state) error {
		product, ok := st.products[productID]
		if !ok {
			return repository.ErrNotFound
		}
		out = &product
		return nil
	})
	return out, err
}

func (r productRepo) list(op string, keep func(models.Product) bool) ([]models.Product, error) {
	var out []models.Product
	err := r.v.do(op, func(st *state) error {
		out = values(st.products, keep)
		sortProducts(out)
		return nil
	})
	return out, err
}

func (r productRepo) List(_ context.Context, limit, offset int) ([]models.Product, error) {
	products, err := r.list("Products.List", nil)
	if err != nil {
		return nil, err
	}
	return page(products, limit, offset), nil
}

func (r productRepo) ListBySupplier(_ context.Context, supplierID string) ([]models.Product, error) {
	return r.list("Products.ListBySupplier", func(product models.Product) bool { return product.SupplierID == supplierID })
}

func (r productRepo) ListByCategory(_ context.Context, category string) ([]models.Product, error) {
	return r.list("Products.ListByCategory", func(product models.Product) bool { return product.Category == category })
}

func (r productRepo) SearchByName(_ context.Context, query string) ([]models.Product, error) {
	query = strings.ToLower(query)
	return r.list("Products.SearchByName", func(product models.Product) bool {
		return strings.Contains(strings.ToLower(product.Name), query)
	})
}

func (r productRepo) CountBySupplier(ctx context.Context, supplierID string) (int64, error) {
	products, err := r.ListBySupplier(ctx, supplierID)
	return int64(len(products)), err
}

func (r productRepo) Count(_ context.Context) (int64, error) {
	products, err := r.list("Products.Count", nil)
	return int64(len(products)), err
}

func (r productRepo) Update(_ context.Context, product *models.Product) error {
	return r.v.do("Products.Update", func(st *state) error {
		if _, ok := st.products[product.ID]; !ok {
			return repository.ErrNotFound
		}
		st.products[product.ID] = *product
		return nil
	})
}

func (r productRepo) Delete(_ context.Context, productID string) error {
	return r.v.do("Products.Delete", func(st *state) error {
		if _, ok := st.products[productID]; !ok {
			return repository.ErrNotFound
		}
		delete(st.products, productID)
		return nil
	})
}
