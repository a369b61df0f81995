package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/senyabanana/marketplace-service/internal/models"
	"github.com/senyabanana/marketplace-service/internal/utils"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const maxUploadSize = 10 << 20

// sendServiceError пишет ошибку сервиса в ответ; сбои хранилища логируются как ошибки.
func sendServiceError(w http.ResponseWriter, r *http.Request, logger logrus.FieldLogger, err error) {
	errorResponse := utils.AsErrorResponse(err)
	entry := logger.WithError(err).WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
		"code":   errorResponse.Code,
	})
	if errorResponse.StatusCode >= http.StatusInternalServerError {
		entry.Error("request failed")
	} else {
		entry.Info("request rejected")
	}
	utils.SendError(w, errorResponse)
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return models.NewError(models.CodeInvalidInput, "invalid request body")
	}
	return nil
}

// readImage достает необязательный файл из multipart-формы.
func readImage(r *http.Request, field string) (*models.Upload, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, models.NewError(models.CodeInvalidInput, "invalid multipart form")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, models.NewError(models.CodeInvalidInput, "failed to read uploaded file")
	}
	return &models.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func parseMultipart(r *http.Request) error {
	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		err = r.ParseMultipartForm(maxUploadSize)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		return models.NewError(models.CodeInvalidInput, "invalid form")
	}
	return nil
}

func formDecimal(r *http.Request, field string) (decimal.Decimal, error) {
	raw := r.FormValue(field)
	if raw == "" {
		return decimal.Zero, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, models.NewError(models.CodeInvalidInput, "invalid "+field)
	}
	return value, nil
}

func formInt(r *http.Request, field string) (int, error) {
	raw := r.FormValue(field)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, models.NewError(models.CodeInvalidInput, "invalid "+field)
	}
	return value, nil
}
