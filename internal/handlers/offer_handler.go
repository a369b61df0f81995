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

// OfferHandler - обработчик HTTP-запросов для предложений.
type OfferHandler struct {
	Service *services.OfferService
	Logger  logrus.FieldLogger
	Timeout time.Duration
}

// NewOfferHandler создаёт новый экземпляр OfferHandler.
func NewOfferHandler(service *services.OfferService, logger logrus.FieldLogger, timeout time.Duration) *OfferHandler {
	return &OfferHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

// CreateOffer обрабатывает предложение поставщика по заявке.
func (h *OfferHandler) CreateOffer(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var offerReq models.OfferCreate
	if err := decodeJSON(r, &offerReq); err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}

	offer, err := h.Service.CreateOffer(ctx, r.PathValue("requestId"), offerReq.SupplierID, offerReq.Proposed)
	if err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}
	utils.SendJSON(w, http.StatusCreated, offer)
}

// GetRequestOffers возвращает предложения по заявке.
func (h *OfferHandler) GetRequestOffers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	offers, err := h.Service.ListOffers(ctx, r.PathValue("requestId"))
	if err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, offers)
}

// RespondToOffer применяет действие accept, reject или confirm.
func (h *OfferHandler) RespondToOffer(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var actionReq models.OfferActionRequest
	if err := decodeJSON(r, &actionReq); err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}

	decision, err := h.Service.RespondToOffer(ctx, r.PathValue("offerId"), actionReq.Action)
	if err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, decision)
}

// AdminAcceptOffer создает сразу принятое предложение.
func (h *OfferHandler) AdminAcceptOffer(w http.ResponseWriter, r *http.Request) {
	h.adminDecide(w, r, models.AcceptedOffer)
}

// AdminRejectOffer создает сразу отклоненное предложение.
func (h *OfferHandler) AdminRejectOffer(w http.ResponseWriter, r *http.Request) {
	h.adminDecide(w, r, models.RejectedOffer)
}

func (h *OfferHandler) adminDecide(w http.ResponseWriter, r *http.Request, decision models.OfferStatus) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var adminReq models.AdminOfferRequest
	if err := decodeJSON(r, &adminReq); err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}

	offer, err := h.Service.AdminDecide(ctx, adminReq.RequestID, adminReq.SupplierID, decision)
	if err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, offer)
}
