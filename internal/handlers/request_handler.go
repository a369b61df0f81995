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

// RequestHandler - обработчик HTTP-запросов для заявок.
type RequestHandler struct {
	Service *services.RequestService
	Logger  logrus.FieldLogger
	Timeout time.Duration
}

// NewRequestHandler создаёт новый экземпляр RequestHandler.
func NewRequestHandler(service *services.RequestService, logger logrus.FieldLogger, timeout time.Duration) *RequestHandler {
	return &RequestHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

// CreateRequest обрабатывает создание заявки из multipart-формы.
func (h *RequestHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	if err := parseMultipart(r); err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}
	offerPrice, err := formDecimal(r, "offerPrice")
	if err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}
	quantity, err := formInt(r, "quantity")
	if err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}
	image, err := readImage(r, "image")
	if err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}

	requestReq := models.RequestCreate{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
		OfferPrice:  offerPrice,
		Quantity:    quantity,
		CustomerID:  r.FormValue("customerId"),
	}
	request, err := h.Service.CreateRequest(ctx, requestReq, image)
	if err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}
	utils.SendJSON(w, http.StatusCreated, request)
}

// GetRequests возвращает список заявок.
func (h *RequestHandler) GetRequests(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	limit, offset, err := utils.ParseLimitOffset(r.URL.Query().Get("limit"), r.URL.Query().Get("offset"))
	if err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	requests, err := h.Service.ListRequests(ctx, limit, offset)
	if err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, requests)
}

// GetRequest возвращает заявку по ID.
func (h *RequestHandler) GetRequest(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	request, err := h.Service.GetRequest(ctx, r.PathValue("requestId"))
	if err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, request)
}

// UpdateRequest обрабатывает частичное изменение заявки.
func (h *RequestHandler) UpdateRequest(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var update models.RequestUpdate
	if err := decodeJSON(r, &update); err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}

	request, err := h.Service.UpdateRequest(ctx, r.PathValue("requestId"), update)
	if err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, request)
}

// DeleteRequest удаляет заявку.
func (h *RequestHandler) DeleteRequest(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	if err := h.Service.DeleteRequest(ctx, r.PathValue("requestId")); err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, models.SuccessMessage{Message: "Request deleted successfully"})
}

// UpdateRequestStatus меняет статус заявки из query-параметра status.
func (h *RequestHandler) UpdateRequestStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	status := r.URL.Query().Get("status")
	if status == "" {
		utils.SendErrorResponse(w, http.StatusBadRequest, "missing status parameter")
		return
	}

	request, err := h.Service.UpdateRequestStatus(ctx, r.PathValue("requestId"), models.RequestStatus(status))
	if err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, request)
}

// GetMatchingRequests возвращает заявки в категориях товаров поставщика.
func (h *RequestHandler) GetMatchingRequests(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	requests, err := h.Service.MatchForSupplier(ctx, r.PathValue("supplierId"))
	if err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, requests)
}
