package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/senyabanana/marketplace-service/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// SendErrorResponse отправляет ошибку в формате JSON
func SendErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	SendError(w, models.NewErrorResponse(statusCode, message))
}

// SendError отправляет ошибку сервиса с ее кодом и статусом.
func SendError(w http.ResponseWriter, errorResponse *models.ErrorResponse) {
	SendJSON(w, errorResponse.StatusCode, errorResponse)
}

// SendJSON отправляет ответ в формате JSON.
func SendJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logrus.WithError(err).Warn("failed to encode response")
	}
}

// AsErrorResponse приводит ошибку к ErrorResponse, неизвестные ошибки считаются сбоем хранилища.
func AsErrorResponse(err error) *models.ErrorResponse {
	var errorResponse *models.ErrorResponse
	if errors.As(err, &errorResponse) {
		return errorResponse
	}
	return models.NewStorageError(err)
}

// ParseLimitOffset обрабатывает limit и offset
func ParseLimitOffset(limitStr, offsetStr string) (int, int, error) {
	var limit, offset int
	var err error

	if limitStr != "" {
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit <= 0 || limit > 50 {
			return 0, 0, fmt.Errorf("invalid limit parameter, must be a positive integer [0:50]")
		}
	} else {
		limit = 5
	}

	if offsetStr != "" {
		offset, err = strconv.Atoi(offsetStr)
		if err != nil || offset < 0 {
			return 0, 0, fmt.Errorf("invalid offset parameter, must be a non-negative integer")
		}
	}

	return limit, offset, nil
}

// Contains проверяет, входит ли статус в список допустимых переходов.
func Contains[S ~string](validStatuses []S, newStatus S) bool {
	for _, validStatus := range validStatuses {
		if validStatus == newStatus {
			return true
		}
	}
	return false
}

// ValidateID проверяет, что идентификатор является UUID.
func ValidateID(name, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return models.NewError(models.CodeInvalidInput, fmt.Sprintf("invalid %s", name))
	}
	return nil
}

// ValidateEmail проверяет адрес, пришедший в пути запроса.
func ValidateEmail(email string) error {
	if err := validate.Var(email, "required,email"); err != nil {
		return models.NewError(models.CodeInvalidInput, "invalid email")
	}
	return nil
}

// ValidateStruct проверяет структуру по тегам validate.
func ValidateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		fields := make([]string, 0, len(validationErrors))
		for _, fieldErr := range validationErrors {
			fields = append(fields, fmt.Sprintf("%s (%s)", fieldErr.Field(), fieldErr.Tag()))
		}
		return models.NewError(models.CodeInvalidInput, "invalid fields: "+strings.Join(fields, ", "))
	}
	return models.NewError(models.CodeInvalidInput, err.Error())
}
