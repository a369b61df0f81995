package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/senyabanana/marketplace-service/internal/models"
	"github.com/senyabanana/marketplace-service/internal/services"
	"github.com/senyabanana/marketplace-service/internal/utils"

	"github.com/sirupsen/logrus"
)

// UserHandler - обработчик HTTP-запросов для пользователей и бизнес-профилей.
type UserHandler struct {
	Users     *services.UserService
	Suppliers *services.SupplierService
	Logger    logrus.FieldLogger
	Timeout   time.Duration
}

// NewUserHandler создаёт новый экземпляр UserHandler.
func NewUserHandler(users *services.UserService, suppliers *services.SupplierService, logger logrus.FieldLogger, timeout time.Duration) *UserHandler {
	return &UserHandler{
		Users:     users,
		Suppliers: suppliers,
		Logger:    logger,
		Timeout:   timeout,
	}
}

// CreateUser регистрирует пользователя.
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var userReq models.UserCreate
	if err := decodeJSON(r, &userReq); err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}

	user, err := h.Users.CreateUser(ctx, userReq)
	if err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}
	utils.SendJSON(w, http.StatusCreated, user)
}

// GetUser возвращает пользователя по ID.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	user, err := h.Users.GetUser(ctx, r.PathValue("userId"))
	if err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, user)
}

// UpdateUser меняет личные данные пользователя по email.
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var userReq models.UserCreate
	if err := decodeJSON(r, &userReq); err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}

	user, err := h.Users.UpdateUser(ctx, r.PathValue("email"), userReq)
	if err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, user)
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	limit, offset, err := utils.ParseLimitOffset(r.URL.Query().Get("limit"), r.URL.Query().Get("offset"))
	if err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	users, err := h.Users.ListUsers(ctx, limit, offset)
	if err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, users)
}

// GetUsersByUsername возвращает пользователей с указанным username.
func (h *UserHandler) GetUsersByUsername(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	users, err := h.Users.FindByUsername(ctx, r.PathValue("username"))
	if err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, users)
}

// EmailExists отвечает true или false.
func (h *UserHandler) EmailExists(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	exists, err := h.Users.EmailExists(ctx, r.PathValue("email"))
	if err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, exists)
}

// DeleteUser удаляет пользователя.
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	if err := h.Users.DeleteUser(ctx, r.PathValue("userId")); err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, models.SuccessMessage{Message: "User deleted successfully"})
}

// UploadProfileImage загружает личное фото.
func (h *UserHandler) UploadProfileImage(w http.ResponseWriter, r *http.Request) {
	h.uploadImage(w, r, h.Users.UploadProfileImage)
}

// UpsertBusiness создает или изменяет бизнес-профиль.
func (h *UserHandler) UpsertBusiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var profile models.BusinessProfile
	if err := decodeJSON(r, &profile); err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}

	msg, err := h.Suppliers.UpsertBusiness(ctx, r.PathValue("userId"), profile)
	if err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, msg)
}

// GetBusiness возвращает бизнес-профиль.
func (h *UserHandler) GetBusiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	profile, err := h.Suppliers.GetBusiness(ctx, r.PathValue("userId"))
	if err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, profile)
}

// DeleteBusiness удаляет бизнес-профиль.
func (h *UserHandler) DeleteBusiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	msg, err := h.Suppliers.DeleteBusiness(ctx, r.PathValue("userId"))
	if err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, msg)
}

// UploadBusinessImage загружает изображение бизнес-профиля.
func (h *UserHandler) UploadBusinessImage(w http.ResponseWriter, r *http.Request) {
	h.uploadImage(w, r, h.Suppliers.UploadBusinessImage)
}

type imageUpload func(ctx context.Context, userID string, image *models.Upload) (*models.SuccessMessage, error)

func (h *UserHandler) uploadImage(w http.ResponseWriter, r *http.Request, upload imageUpload) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	if err := parseMultipart(r); err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}
	image, err := readImage(r, "file")
	if err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}

	msg, err := upload(ctx, r.PathValue("userId"), image)
	if err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, msg)
}
