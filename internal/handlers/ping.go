package handlers

import (
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
)

// PingHandler обрабатывает GET запрос к /api/ping
func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	if _, err := fmt.Fprint(w, "ok"); err != nil {
		logrus.WithError(err).Warn("failed to write ping response")
	}
}
