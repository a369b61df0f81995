package services

import (
	"context"

	"github.com/senyabanana/marketplace-service/internal/models"
	"github.com/senyabanana/marketplace-service/internal/repository"
	"github.com/senyabanana/marketplace-service/internal/utils"
)

type orderActor struct {
	Role   models.UserRole
	Action models.OrderStatus
}

// orderActionRules - кто может перевести заказ в статус: роль и действие дают владельца заказа,
// которым должен быть пользователь.
var orderActionRules = map[orderActor]func(order *models.Order) string{
	{Role: models.CustomerRole, Action: models.CancelledOrder}: func(order *models.Order) string { return order.CustomerID },
	{Role: models.SupplierRole, Action: models.DeliveredOrder}: func(order *models.Order) string { return order.SupplierID },
}

// OrderService управляет заказами.
type OrderService struct {
	Store   repository.Store
	Metrics LifecycleRecorder
}

// NewOrderService создаёт новый экземпляр OrderService.
func NewOrderService(store repository.Store, recorder LifecycleRecorder) *OrderService {
	return &OrderService{Store: store, Metrics: recorder}
}

// UpdateOrderStatus переводит оформленный заказ в delivered или cancelled от имени пользователя.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID, userID string, action models.OrderStatus) (*models.Order, error) {
	if !utils.Contains(models.OrderTransitions[models.PlacedOrder], action) {
		return nil, models.ErrInvalidOrderAction
	}
	if err := utils.ValidateID("orderId", orderID); err != nil {
		return nil, err
	}
	if err := utils.ValidateID("userId", userID); err != nil {
		return nil, err
	}

	var order *models.Order
	err := s.Store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		order, err = tx.Orders().GetByIDForUpdate(ctx, orderID)
		if err != nil {
			return notFoundAs(err, models.ErrOrderNotFound)
		}
		user, err := tx.Users().GetByID(ctx, userID)
		if err != nil {
			return notFoundAs(err, models.ErrUserNotFound)
		}

		owner, ok := orderActionRules[orderActor{Role: user.Role, Action: action}]
		if !ok || owner(order) != user.ID {
			return models.ErrOrderForbidden
		}
		if order.Status != models.PlacedOrder {
			return models.ErrOrderNotPlaced
		}

		if err := tx.Orders().UpdateStatus(ctx, order.ID, action); err != nil {
			return storageErr(err)
		}
		order.Status = action
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Metrics.RecordOrderTransition(string(action))
	return order, nil
}

// ListActiveOrders возвращает оформленные заказы пользователя как покупателя или поставщика.
func (s *OrderService) ListActiveOrders(ctx context.Context, userID string) ([]models.Order, error) {
	if err := utils.ValidateID("userId", userID); err != nil {
		return nil, err
	}
	orders, err := s.Store.Orders().ListActiveForUser(ctx, userID)
	if err != nil {
		return nil, storageErr(err)
	}
	return orders, nil
}

// ListOrderHistory возвращает доставленные заказы покупателя.
func (s *OrderService) ListOrderHistory(ctx context.Context, userID string) ([]models.Order, error) {
	if err := utils.ValidateID("userId", userID); err != nil {
		return nil, err
	}
	orders, err := s.Store.Orders().ListHistoryForCustomer(ctx, userID)
	if err != nil {
		return nil, storageErr(err)
	}
	return orders, nil
}
