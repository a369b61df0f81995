package services

import (
	"context"
	"errors"

	"github.com/senyabanana/marketplace-service/internal/blob"
	"github.com/senyabanana/marketplace-service/internal/models"
	"github.com/senyabanana/marketplace-service/internal/repository"

	"github.com/sirupsen/logrus"
)

// storageErr пропускает ошибки сервиса как есть, остальные считает сбоем хранилища.
func storageErr(err error) error {
	if err == nil {
		return nil
	}
	var errorResponse *models.ErrorResponse
	if errors.As(err, &errorResponse) {
		return errorResponse
	}
	return models.NewStorageError(err)
}

func notFoundAs(err error, notFound *models.ErrorResponse) error {
	if errors.Is(err, repository.ErrNotFound) {
		return notFound
	}
	return storageErr(err)
}

// imageUploader загружает изображения и убирает их, если запись в базу не удалась.
type imageUploader struct {
	Blob   blob.Store
	Logger logrus.FieldLogger
}

// upload возвращает ключ и URL загруженного изображения; для nil ничего не делает.
func (u imageUploader) upload(ctx context.Context, prefix string, image *models.Upload) (string, *string, error) {
	if image == nil {
		return "", nil, nil
	}
	if !blob.IsImage(image.ContentType) {
		return "", nil, models.ErrNotAnImage
	}

	key := blob.NewKey(prefix)
	url, err := u.Blob.Upload(ctx, key, image.Data, image.ContentType)
	if err != nil {
		return "", nil, models.NewUploadError(err)
	}
	return key, &url, nil
}

// discard удаляет загруженный объект; ошибка только логируется.
func (u imageUploader) discard(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := u.Blob.Delete(context.WithoutCancel(ctx), key); err != nil {
		u.Logger.WithError(err).WithField("key", key).Warn("failed to delete orphaned image")
	}
}

// attach загружает обязательное изображение и сохраняет его URL через save.
// Если save вернул ошибку, загруженный объект удаляется.
func (u imageUploader) attach(ctx context.Context, prefix string, image *models.Upload, save func(url string) error) (string, error) {
	if image == nil || len(image.Data) == 0 {
		return "", models.ErrImageRequired
	}
	key, url, err := u.upload(ctx, prefix, image)
	if err != nil {
		return "", err
	}
	if err := save(*url); err != nil {
		u.discard(ctx, key)
		return "", err
	}
	return *url, nil
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func deleteUser(ctx context.Context, store repository.Store, userID string) error {
	err := store.Users().Delete(ctx, userID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrReferenced):
		return models.ErrUserHasOrders
	default:
		return notFoundAs(err, models.ErrUserNotFound)
	}
}
