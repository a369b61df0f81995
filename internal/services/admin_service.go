package services

import (
	"context"
	"errors"
	"time"

	"github.com/senyabanana/marketplace-service/internal/models"
	"github.com/senyabanana/marketplace-service/internal/repository"
	"github.com/senyabanana/marketplace-service/internal/utils"
)

const defaultStatsPeriodDays = 30

// AdminService - операции администратора над учетными записями.
type AdminService struct {
	Store repository.Store
	now   func() time.Time
}

// NewAdminService создаёт новый экземпляр AdminService.
func NewAdminService(store repository.Store) *AdminService {
	return &AdminService{Store: store, now: time.Now}
}

// ListUsers возвращает пользователей с фильтром по роли и статусу.
func (s *AdminService) ListUsers(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	if filter.Role != "" && !utils.Contains([]models.UserRole{models.CustomerRole, models.SupplierRole, models.AdminRole}, filter.Role) {
		return nil, models.NewError(models.CodeInvalidInput, "invalid role")
	}
	if filter.Status != "" && !utils.Contains([]models.UserStatus{models.ActiveUser, models.DisabledUser, models.PendingUser}, filter.Status) {
		return nil, models.NewError(models.CodeInvalidInput, "invalid status")
	}

	users, err := s.Store.Users().List(ctx, filter)
	if err != nil {
		return nil, storageErr(err)
	}
	return users, nil
}

// GetUser возвращает пользователя по ID.
func (s *AdminService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	if err := utils.ValidateID("userId", userID); err != nil {
		return nil, err
	}
	user, err := s.Store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundAs(err, models.ErrUserNotFound)
	}
	return user, nil
}

// UpdateUser меняет роль, статус и контактные поля пользователя.
func (s *AdminService) UpdateUser(ctx context.Context, userID string, update models.UserUpdate) (*models.User, error) {
	if err := utils.ValidateID("userId", userID); err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(update); err != nil {
		return nil, err
	}

	var user *models.User
	err := s.Store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		user, err = tx.Users().GetByID(ctx, userID)
		if err != nil {
			return notFoundAs(err, models.ErrUserNotFound)
		}

		if update.Role != nil {
			user.Role = *update.Role
		}
		if update.Status != nil {
			user.Status = *update.Status
		}
		if update.Name != nil {
			user.Name = *update.Name
		}
		if update.Surname != nil {
			user.Surname = optional(*update.Surname)
		}
		if update.PhoneNumber != nil {
			user.PhoneNumber = optional(*update.PhoneNumber)
		}
		if update.Email != nil {
			user.Email = *update.Email
		}

		if err := tx.Users().Update(ctx, user); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return models.ErrContactTaken
			}
			return storageErr(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser удаляет пользователя.
func (s *AdminService) DeleteUser(ctx context.Context, userID string) error {
	if err := utils.ValidateID("userId", userID); err != nil {
		return err
	}
	return deleteUser(ctx, s.Store, userID)
}

// UserStats считает пользователей; новыми считаются зарегистрированные за periodDays дней.
func (s *AdminService) UserStats(ctx context.Context, periodDays int) (*models.UserStats, error) {
	if periodDays < 0 {
		return nil, models.NewError(models.CodeInvalidInput, "period_days must be positive")
	}
	if periodDays == 0 {
		periodDays = defaultStatsPeriodDays
	}

	since := s.now().UTC().AddDate(0, 0, -periodDays)
	stats, err := s.Store.Users().Stats(ctx, since)
	if err != nil {
		return nil, storageErr(err)
	}
	stats.PeriodDays = periodDays
	return stats, nil
}
