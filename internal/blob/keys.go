package blob

import (
	"strings"

	"github.com/google/uuid"
)

// Префиксы ключей для изображений разных сущностей.
const (
	RequestImagePrefix  = "requests/images/"
	ProductImagePrefix  = "products/images/"
	UserImagePrefix     = "users/image/"
	BusinessImagePrefix = "users/business/"
)

// NewKey возвращает уникальный ключ объекта с заданным префиксом.
func NewKey(prefix string) string {
	return prefix + uuid.New().String()
}

// IsImage проверяет, что тип содержимого относится к изображениям.
func IsImage(contentType string) bool {
	return strings.HasPrefix(contentType, "image/")
}
