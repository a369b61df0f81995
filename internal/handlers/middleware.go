package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/senyabanana/marketplace-service/internal/auth"
	"github.com/senyabanana/marketplace-service/internal/models"
	"github.com/senyabanana/marketplace-service/internal/repository"
	"github.com/senyabanana/marketplace-service/internal/utils"
)

// UserLookup возвращает текущее состояние учетной записи.
type UserLookup interface {
	GetByID(ctx context.Context, userID string) (*models.User, error)
}

// AuthMiddleware проверяет токен доступа и роль пользователя.
type AuthMiddleware struct {
	Tokens *auth.TokenManager
	Users  UserLookup
}

// NewAuthMiddleware создаёт новый экземпляр AuthMiddleware.
func NewAuthMiddleware(tokens *auth.TokenManager, users UserLookup) *AuthMiddleware {
	return &AuthMiddleware{Tokens: tokens, Users: users}
}

// Authenticate проверяет Bearer-токен и кладет claims в контекст запроса.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if header == "" || token == header {
			utils.SendError(w, models.ErrInvalidToken)
			return
		}

		claims, err := m.Tokens.Parse(token)
		if err != nil {
			utils.SendError(w, models.ErrInvalidToken)
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
	})
}

// RequireRole пропускает только пользователей, у которых сейчас роль role и учетная запись не отключена.
// Роль берется из хранилища, а не из токена. Используется после Authenticate.
func (m *AuthMiddleware) RequireRole(role models.UserRole, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.ClaimsFromContext(r.Context())
		if !ok {
			utils.SendError(w, models.ErrInvalidToken)
			return
		}

		user, err := m.Users.GetByID(r.Context(), claims.UserID)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			utils.SendError(w, models.ErrInvalidToken)
			return
		case err != nil:
			utils.SendError(w, models.NewStorageError(err))
			return
		}
		if user.Role != role || user.Status == models.DisabledUser {
			utils.SendError(w, models.ErrAdminRequired)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Admin объединяет Authenticate и RequireRole(admin).
func (m *AuthMiddleware) Admin(next http.HandlerFunc) http.Handler {
	return m.Authenticate(m.RequireRole(models.AdminRole, next))
}
