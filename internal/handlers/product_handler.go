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

// ProductHandler - обработчик HTTP-запросов для каталога.
type ProductHandler struct {
	Service *services.ProductService
	Logger  logrus.FieldLogger
	Timeout time.Duration
}

// NewProductHandler создаёт новый экземпляр ProductHandler.
func NewProductHandler(service *services.ProductService, logger logrus.FieldLogger, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

// CreateProduct обрабатывает создание товара из multipart-формы.
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	if err := parseMultipart(r); err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}
	price, err := formDecimal(r, "price")
	if err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}
	image, err := readImage(r, "image")
	if err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}

	productReq := models.ProductRequest{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
		Price:       price,
		SupplierID:  r.FormValue("supplierId"),
	}
	product, err := h.Service.CreateProduct(ctx, productReq, image)
	if err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}
	utils.SendJSON(w, http.StatusCreated, product)
}

// GetProducts возвращает страницу товаров.
func (h *ProductHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	limit, offset, err := utils.ParseLimitOffset(r.URL.Query().Get("limit"), r.URL.Query().Get("offset"))
	if err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	products, err := h.Service.ListProducts(ctx, limit, offset)
	if err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, products)
}

// GetProduct возвращает товар по ID.
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	product, err := h.Service.GetProduct(ctx, r.PathValue("productId"))
	if err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, product)
}

// UpdateProduct заменяет поля товара.
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var productReq models.ProductRequest
	if err := decodeJSON(r, &productReq); err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}

	product, err := h.Service.UpdateProduct(ctx, r.PathValue("productId"), productReq)
	if err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, product)
}

// DeleteProduct удаляет товар.
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	if err := h.Service.DeleteProduct(ctx, r.PathValue("productId")); err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, models.SuccessMessage{Message: "Product deleted successfully"})
}

// GetSupplierProducts возвращает товары поставщика.
func (h *ProductHandler) GetSupplierProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	products, err := h.Service.ListBySupplier(ctx, r.PathValue("supplierId"))
	if err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) CountSupplierProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	count, err := h.Service.CountBySupplier(ctx, r.PathValue("supplierId"))
	if err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, count)
}

func (h *ProductHandler) CountProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	count, err := h.Service.CountProducts(ctx)
	if err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, count)
}

// GetCategoryProducts возвращает товары категории.
func (h *ProductHandler) GetCategoryProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	products, err := h.Service.ListByCategory(ctx, r.PathValue("category"))
	if err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, products)
}

// SearchProducts ищет товары по подстроке названия.
func (h *ProductHandler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	products, err := h.Service.SearchProducts(ctx, r.PathValue("query"))
	if err != nil {
		sendServiceError(w, r, h.Logger, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, products)
}
