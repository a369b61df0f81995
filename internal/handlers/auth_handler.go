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

// AuthHandler - обработчик HTTP-запросов аутентификации.
type AuthHandler struct {
	Service *services.AuthService
	Logger  logrus.FieldLogger
	Timeout time.Duration
}

// NewAuthHandler создаёт новый экземпляр AuthHandler.
func NewAuthHandler(service *services.AuthService, logger logrus.FieldLogger, timeout time.Duration) *AuthHandler {
	return &AuthHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

// CreatePassword задает пароль и активирует учетную запись.
func (h *AuthHandler) CreatePassword(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var credentials models.Credentials
	if err := decodeJSON(r, &credentials); err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}

	resp, err := h.Service.CreatePassword(ctx, credentials)
	if err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, resp)
}

// Login выдает токен доступа.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var credentials models.Credentials
	if err := decodeJSON(r, &credentials); err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}

	resp, err := h.Service.Login(ctx, credentials)
	if err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, resp)
}

// ChangePassword меняет пароль пользователя.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var change models.PasswordChange
	if err := decodeJSON(r, &change); err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}

	resp, err := h.Service.ChangePassword(ctx, change)
	if err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, resp)
}

// ForgotPassword сбрасывает пароль.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var reset models.PasswordResetRequest
	if err := decodeJSON(r, &reset); err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}

	resp, err := h.Service.ForgotPassword(ctx, reset)
	if err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, resp)
}
