package services

import (
	"context"

	"github.com/senyabanana/marketplace-service/internal/blob"
	"github.com/senyabanana/marketplace-service/internal/models"
	"github.com/senyabanana/marketplace-service/internal/repository"
	"github.com/senyabanana/marketplace-service/internal/utils"

	"github.com/sirupsen/logrus"
)

// SupplierService управляет бизнес-профилями поставщиков.
type SupplierService struct {
	Store  repository.Store
	images imageUploader
}

// NewSupplierService создаёт новый экземпляр SupplierService.
func NewSupplierService(store repository.Store, blobStore blob.Store, logger logrus.FieldLogger) *SupplierService {
	return &SupplierService{
		Store:  store,
		images: imageUploader{Blob: blobStore, Logger: logger},
	}
}

// UpsertBusiness создает или изменяет бизнес-профиль и назначает пользователю роль supplier.
func (s *SupplierService) UpsertBusiness(ctx context.Context, userID string, profile models.BusinessProfile) (*models.SuccessMessage, error) {
	if err := utils.ValidateID("userId", userID); err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(profile); err != nil {
		return nil, err
	}

	err := s.Store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		user, err := tx.Users().GetByID(ctx, userID)
		if err != nil {
			return notFoundAs(err, models.ErrUserNotFound)
		}
		if profile.BusinessEmail != "" {
			if err := ensureUnused(ctx, tx.Users().GetByBusinessEmail, profile.BusinessEmail, user.ID, models.ErrBusinessEmailTaken); err != nil {
				return err
			}
		}
		if profile.BusinessPhoneNumber != "" {
			if err := ensureUnused(ctx, tx.Users().GetByBusinessPhone, profile.BusinessPhoneNumber, user.ID, models.ErrBusinessPhoneTaken); err != nil {
				return err
			}
		}

		user.BusinessName = optional(profile.BusinessName)
		user.BusinessCategory = optional(profile.BusinessCategory)
		user.BusinessDescription = optional(profile.BusinessDescription)
		user.BusinessType = optional(profile.BusinessType)
		user.BusinessEmail = optional(profile.BusinessEmail)
		user.BusinessPhoneNumber = optional(profile.BusinessPhoneNumber)
		user.Latitude = profile.Latitude
		user.Longitude = profile.Longitude
		user.Role = models.SupplierRole

		return storageErr(tx.Users().Update(ctx, user))
	})
	if err != nil {
		return nil, err
	}
	return &models.SuccessMessage{Message: "Business profile edited successfully"}, nil
}

// GetBusiness возвращает бизнес-профиль пользователя.
func (s *SupplierService) GetBusiness(ctx context.Context, userID string) (*models.BusinessProfile, error) {
	if err := utils.ValidateID("userId", userID); err != nil {
		return nil, err
	}
	user, err := s.Store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundAs(err, models.ErrUserNotFound)
	}
	if user.BusinessName == nil {
		return nil, models.ErrBusinessNotFound
	}

	return &models.BusinessProfile{
		BusinessName:        deref(user.BusinessName),
		BusinessCategory:    deref(user.BusinessCategory),
		BusinessDescription: deref(user.BusinessDescription),
		BusinessType:        deref(user.BusinessType),
		BusinessEmail:       deref(user.BusinessEmail),
		BusinessPhoneNumber: deref(user.BusinessPhoneNumber),
		Latitude:            user.Latitude,
		Longitude:           user.Longitude,
		ImageURL:            user.BusinessImagePath,
	}, nil
}

// DeleteBusiness очищает бизнес-профиль и возвращает пользователю роль customer.
// Контакты и изображение профиля сохраняются.
func (s *SupplierService) DeleteBusiness(ctx context.Context, userID string) (*models.SuccessMessage, error) {
	if err := utils.ValidateID("userId", userID); err != nil {
		return nil, err
	}

	err := s.Store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		user, err := tx.Users().GetByID(ctx, userID)
		if err != nil {
			return notFoundAs(err, models.ErrUserNotFound)
		}
		user.BusinessName = nil
		user.BusinessCategory = nil
		user.BusinessDescription = nil
		user.BusinessType = nil
		user.Role = models.CustomerRole
		return storageErr(tx.Users().Update(ctx, user))
	})
	if err != nil {
		return nil, err
	}
	return &models.SuccessMessage{Message: "Business profile deleted successfully"}, nil
}

// UploadBusinessImage загружает изображение бизнес-профиля.
func (s *SupplierService) UploadBusinessImage(ctx context.Context, userID string, image *models.Upload) (*models.SuccessMessage, error) {
	if err := utils.ValidateID("userId", userID); err != nil {
		return nil, err
	}
	if _, err := s.Store.Users().GetByID(ctx, userID); err != nil {
		return nil, notFoundAs(err, models.ErrUserNotFound)
	}

	imageURL, err := s.images.attach(ctx, blob.BusinessImagePrefix, image, func(url string) error {
		return s.Store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
			user, err := tx.Users().GetByID(ctx, userID)
			if err != nil {
				return notFoundAs(err, models.ErrUserNotFound)
			}
			user.BusinessImagePath = &url
			return storageErr(tx.Users().Update(ctx, user))
		})
	})
	if err != nil {
		return nil, err
	}
	return &models.SuccessMessage{Message: "Business image uploaded successfully", ImageURL: imageURL}, nil
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
