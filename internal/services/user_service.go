package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/senyabanana/marketplace-service/internal/blob"
	"github.com/senyabanana/marketplace-service/internal/models"
	"github.com/senyabanana/marketplace-service/internal/repository"
	"github.com/senyabanana/marketplace-service/internal/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// UserService управляет учетными записями пользователей.
type UserService struct {
	Store  repository.Store
	images imageUploader
	now    func() time.Time
}

// NewUserService создаёт новый экземпляр UserService.
func NewUserService(store repository.Store, blobStore blob.Store, logger logrus.FieldLogger) *UserService {
	return &UserService{
		Store:  store,
		images: imageUploader{Blob: blobStore, Logger: logger},
		now:    time.Now,
	}
}

// CreateUser регистрирует покупателя в статусе pending.
func (s *UserService) CreateUser(ctx context.Context, userReq models.UserCreate) (*models.User, error) {
	if err := utils.ValidateStruct(userReq); err != nil {
		return nil, err
	}

	var user *models.User
	err := s.Store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		if err := ensureUnused(ctx, tx.Users().GetByEmail, userReq.Email, "", models.ErrEmailTaken); err != nil {
			return err
		}
		if userReq.PhoneNumber != "" {
			if err := ensureUnused(ctx, tx.Users().GetByPhone, userReq.PhoneNumber, "", models.ErrPhoneTaken); err != nil {
				return err
			}
		}

		now := s.now().UTC()
		user = &models.User{
			ID:                uuid.New().String(),
			Username:          optional(username(userReq.Name, userReq.Surname)),
			Role:              models.CustomerRole,
			Name:              userReq.Name,
			Surname:           optional(userReq.Surname),
			PhoneNumber:       optional(userReq.PhoneNumber),
			Email:             userReq.Email,
			DateOfBirth:       userReq.DateOfBirth,
			Gender:            optional(userReq.Gender),
			CreatedAt:         now,
			Status:            models.PendingUser,
			BusinessCreatedAt: now,
		}
		if err := tx.Users().Create(ctx, user); err != nil {
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

// GetUser возвращает пользователя по ID.
func (s *UserService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	if err := utils.ValidateID("userId", userID); err != nil {
		return nil, err
	}
	user, err := s.Store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundAs(err, models.ErrUserNotFound)
	}
	return user, nil
}

// UpdateUser меняет личные данные пользователя, найденного по текущему email.
func (s *UserService) UpdateUser(ctx context.Context, email string, userReq models.UserCreate) (*models.User, error) {
	if err := utils.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(userReq); err != nil {
		return nil, err
	}

	var user *models.User
	err := s.Store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		user, err = tx.Users().GetByEmail(ctx, email)
		if err != nil {
			return notFoundAs(err, models.ErrUserNotFound)
		}
		if userReq.Email != user.Email {
			if err := ensureUnused(ctx, tx.Users().GetByEmail, userReq.Email, user.ID, models.ErrEmailTaken); err != nil {
				return err
			}
		}
		if userReq.PhoneNumber != "" {
			if err := ensureUnused(ctx, tx.Users().GetByPhone, userReq.PhoneNumber, user.ID, models.ErrPhoneTaken); err != nil {
				return err
			}
			user.PhoneNumber = &userReq.PhoneNumber
		}

		user.Email = userReq.Email
		user.Name = userReq.Name
		user.Surname = optional(userReq.Surname)
		if userReq.DateOfBirth != nil {
			user.DateOfBirth = userReq.DateOfBirth
		}
		if userReq.Gender != "" {
			user.Gender = &userReq.Gender
		}

		if err := tx.Users().Update(ctx, user); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return models.ErrContactTaken
			}
			return notFoundAs(err, models.ErrUserNotFound)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// FindByUsername возвращает всех пользователей с указанным username.
func (s *UserService) FindByUsername(ctx context.Context, name string) ([]models.User, error) {
	if strings.TrimSpace(name) == "" {
		return nil, models.NewError(models.CodeInvalidInput, "username is required")
	}
	users, err := s.Store.Users().ListByUsername(ctx, name)
	if err != nil {
		return nil, storageErr(err)
	}
	if len(users) == 0 {
		return nil, models.ErrUserNotFound
	}
	return users, nil
}

// ListUsers возвращает страницу пользователей, новые первыми.
func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	users, err := s.Store.Users().List(ctx, models.UserFilter{Limit: limit, Offset: offset})
	if err != nil {
		return nil, storageErr(err)
	}
	return users, nil
}

// EmailExists сообщает, зарегистрирован ли адрес.
func (s *UserService) EmailExists(ctx context.Context, email string) (bool, error) {
	if err := utils.ValidateEmail(email); err != nil {
		return false, err
	}
	_, err := s.Store.Users().GetByEmail(ctx, email)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return false, nil
	case err != nil:
		return false, storageErr(err)
	}
	return true, nil
}

// DeleteUser удаляет пользователя, если у него нет заказов.
func (s *UserService) DeleteUser(ctx context.Context, userID string) error {
	if err := utils.ValidateID("userId", userID); err != nil {
		return err
	}
	return deleteUser(ctx, s.Store, userID)
}

// UploadProfileImage загружает личное фото пользователя.
func (s *UserService) UploadProfileImage(ctx context.Context, userID string, image *models.Upload) (*models.SuccessMessage, error) {
	if err := utils.ValidateID("userId", userID); err != nil {
		return nil, err
	}
	if _, err := s.Store.Users().GetByID(ctx, userID); err != nil {
		return nil, notFoundAs(err, models.ErrUserNotFound)
	}

	imageURL, err := s.images.attach(ctx, blob.UserImagePrefix, image, func(url string) error {
		return s.Store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
			user, err := tx.Users().GetByID(ctx, userID)
			if err != nil {
				return notFoundAs(err, models.ErrUserNotFound)
			}
			user.PersonalImagePath = &url
			return storageErr(tx.Users().Update(ctx, user))
		})
	})
	if err != nil {
		return nil, err
	}
	return &models.SuccessMessage{Message: "Profile image uploaded successfully", ImageURL: imageURL}, nil
}

func username(name, surname string) string {
	if surname == "" {
		return strings.ToLower(name)
	}
	return strings.ToLower(name + "." + surname)
}

// ensureUnused проверяет, что значение не занято другим пользователем.
func ensureUnused(ctx context.Context, lookup func(context.Context, string) (*models.User, error), value, ownerID string, conflict *models.ErrorResponse) error {
	found, err := lookup(ctx, value)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil
	case err != nil:
		return storageErr(err)
	case found.ID == ownerID:
		return nil
	}
	return conflict
}
