package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/senyabanana/marketplace-service/internal/models"
	"github.com/senyabanana/marketplace-service/internal/services"
	"github.com/senyabanana/marketplace-service/internal/utils"

	"github.com/sirupsen/logrus"
)

// AdminHandler - обработчик административных HTTP-запросов.
type AdminHandler struct {
	Service *services.AdminService
	Logger  logrus.FieldLogger
	Timeout time.Duration
}

// NewAdminHandler создаёт новый экземпляр AdminHandler.
func NewAdminHandler(service *services.AdminService, logger logrus.FieldLogger, timeout time.Duration) *AdminHandler {
	return &AdminHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

// ListUsers возвращает пользователей с фильтрами role и status.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	query := r.URL.Query()
	limit, offset, err := utils.ParseLimitOffset(query.Get("limit"), query.Get("offset"))
	if err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	users, err := h.Service.ListUsers(ctx, models.UserFilter{
		Role:   models.UserRole(query.Get("role")),
		Status: models.UserStatus(query.Get("status")),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, users)
}

func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	user, err := h.Service.GetUser(ctx, r.PathValue("userId"))
	if err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, user)
}

func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var update models.UserUpdate
	if err := decodeJSON(r, &update); err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}

	user, err := h.Service.UpdateUser(ctx, r.PathValue("userId"), update)
	if err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, user)
}

func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	if err := h.Service.DeleteUser(ctx, r.PathValue("userId")); err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UserStats возвращает статистику пользователей за period_days дней.
func (h *AdminHandler) UserStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var periodDays int
	if raw := r.URL.Query().Get("period_days"); raw != "" {
		var err error
		periodDays, err = strconv.Atoi(raw)
		if err != nil || periodDays <= 0 {
			utils.SendErrorResponse(w, http.StatusBadRequest, "invalid period_days parameter, must be a positive integer")
			return
		}
	}

	stats, err := h.Service.UserStats(ctx, periodDays)
	if err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, stats)
}
