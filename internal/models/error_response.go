package models

import (
	"errors"
	"net/http"
)

// ErrorCode - класс ошибки, общий для всех операций сервиса.
type ErrorCode string

const (
	CodeNotFound          ErrorCode = "not_found"          // Сущность не найдена
	CodeInvalidTransition ErrorCode = "invalid_transition" // Действие недопустимо для текущего статуса
	CodeConflict          ErrorCode = "conflict"           // Дубликат
	CodeForbidden         ErrorCode = "forbidden"          // Нарушение прав или владения
	CodeInvalidInput      ErrorCode = "invalid_input"      // Некорректные входные данные
	CodeUnauthorized      ErrorCode = "unauthorized"       // Нет или неверная аутентификация
	CodeStorageFailure    ErrorCode = "storage_failure"    // Сбой хранилища
)

// ErrorResponse описывает ошибку с кодом и сообщением.
type ErrorResponse struct {
	StatusCode int       `json:"-"`
	Code       ErrorCode `json:"code,omitempty"`
	Message    string    `json:"reason"`
	Err        error     `json:"-"`
}

// NewErrorResponse создает новую ошибку с кодом и сообщением.
func NewErrorResponse(statusCode int, message string) *ErrorResponse {
	return &ErrorResponse{
		StatusCode: statusCode,
		Code:       codeForStatus(statusCode),
		Message:    message}
}

// NewError создает ошибку заданного класса.
func NewError(code ErrorCode, message string) *ErrorResponse {
	return &ErrorResponse{
		StatusCode: statusForCode(code),
		Code:       code,
		Message:    message,
	}
}

// NewStorageError оборачивает сбой хранилища.
func NewStorageError(err error) *ErrorResponse {
	return &ErrorResponse{
		StatusCode: http.StatusInternalServerError,
		Code:       CodeStorageFailure,
		Message:    "storage failure",
		Err:        err,
	}
}

// Реализация метода Error() для удовлетворения интерфейса error.
func (e *ErrorResponse) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ErrorResponse) Unwrap() error {
	return e.Err
}

// HasCode проверяет, относится ли ошибка к указанному классу.
func HasCode(err error, code ErrorCode) bool {
	var errorResponse *ErrorResponse
	if errors.As(err, &errorResponse) {
		return errorResponse.Code == code
	}
	return false
}

func statusForCode(code ErrorCode) int {
	switch code {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidTransition, CodeInvalidInput:
		return http.StatusBadRequest
	case CodeConflict:
		return http.StatusConflict
	case CodeForbidden:
		return http.StatusForbidden
	case CodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func codeForStatus(status int) ErrorCode {
	switch status {
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusBadRequest:
		return CodeInvalidInput
	case http.StatusConflict:
		return CodeConflict
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusUnauthorized:
		return CodeUnauthorized
	default:
		return CodeStorageFailure
	}
}

// Ошибки жизненного цикла заявок, предложений и заказов.
var (
	ErrRequestNotFound       = NewError(CodeNotFound, "request not found or not open")
	ErrSupplierNotFound      = NewError(CodeNotFound, "supplier not found")
	ErrCustomerNotFound      = NewError(CodeNotFound, "customer not found")
	ErrUserNotFound          = NewError(CodeNotFound, "user not found")
	ErrOfferNotFound         = NewError(CodeNotFound, "offer not found")
	ErrOrderNotFound         = NewError(CodeNotFound, "order not found")
	ErrProductNotFound       = NewError(CodeNotFound, "product not found")
	ErrCategoryMismatch      = NewError(CodeForbidden, "you don't carry that category or product for this request")
	ErrOfferExists           = NewError(CodeConflict, "an offer from this supplier for this request already exists")
	ErrOfferAlreadyResponded = NewError(CodeInvalidTransition, "offer already responded to")
	ErrOfferNotAccepted      = NewError(CodeInvalidTransition, "offer must be accepted before confirming")
	ErrInvalidAction         = NewError(CodeInvalidInput, "invalid action, must be one of 'accept', 'reject' or 'confirm'")
	ErrInvalidOrderAction    = NewError(CodeInvalidInput, "invalid action, must be either 'delivered' or 'cancelled'")
	ErrOrderForbidden        = NewError(CodeForbidden, "user not allowed to perform this action on the order")
	ErrOrderNotPlaced        = NewError(CodeInvalidTransition, "order is not in 'placed' status")
	ErrOrderExists           = NewError(CodeConflict, "an order for this offer already exists")
	ErrRequestNotOpen        = NewError(CodeInvalidTransition, "request is no longer open")
	ErrRequestHasOrders      = NewError(CodeConflict, "request has orders and cannot be deleted")
	ErrInvalidRequestStatus  = NewError(CodeInvalidTransition, "invalid request status")
	ErrSupplierHasNoProducts = NewError(CodeInvalidInput, "supplier has no products")
	ErrNoProductCategories   = NewError(CodeInvalidInput, "no product categories found")
)

// Ошибки учетных записей.
var (
	ErrEmailTaken         = NewError(CodeConflict, "email already registered")
	ErrPhoneTaken         = NewError(CodeConflict, "phone number already registered")
	ErrBusinessEmailTaken = NewError(CodeConflict, "email already in use by another account")
	ErrBusinessPhoneTaken = NewError(CodeConflict, "phone number already in use by another account")
	ErrIncorrectPassword  = NewError(CodeForbidden, "incorrect password")
	ErrAdminRequired      = NewError(CodeForbidden, "admin privileges required")
	ErrInvalidToken       = NewError(CodeUnauthorized, "invalid or missing token")
	ErrUserHasOrders      = NewError(CodeConflict, "user has orders and cannot be deleted")
	ErrContactTaken       = NewError(CodeConflict, "email or phone number already registered")
	ErrNotAnImage         = NewError(CodeInvalidInput, "file is not an image")
	ErrImageRequired      = NewError(CodeInvalidInput, "image file is required")
	ErrBusinessNotFound   = NewError(CodeNotFound, "business profile not found")
	ErrEmailNotFound      = NewError(CodeNotFound, "user with this email not found")
)

// NewUploadError оборачивает сбой загрузки в хранилище изображений.
func NewUploadError(err error) *ErrorResponse {
	return &ErrorResponse{
		StatusCode: http.StatusInternalServerError,
		Code:       CodeStorageFailure,
		Message:    "failed to upload image",
		Err:        err,
	}
}
