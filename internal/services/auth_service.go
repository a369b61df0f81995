package services

import (
	"context"
	"errors"
	"net/http"

	"github.com/senyabanana/marketplace-service/internal/auth"
	"github.com/senyabanana/marketplace-service/internal/models"
	"github.com/senyabanana/marketplace-service/internal/repository"
	"github.com/senyabanana/marketplace-service/internal/utils"

	"github.com/sirupsen/logrus"
)

const resetPINLength = 8

// AuthService отвечает за пароли и выдачу токенов.
type AuthService struct {
	Store  repository.Store
	Hasher auth.PasswordHasher
	Tokens *auth.TokenManager
	Logger logrus.FieldLogger
}

// NewAuthService создаёт новый экземпляр AuthService.
func NewAuthService(store repository.Store, hasher auth.PasswordHasher, tokens *auth.TokenManager, logger logrus.FieldLogger) *AuthService {
	return &AuthService{
		Store:  store,
		Hasher: hasher,
		Tokens: tokens,
		Logger: logger,
	}
}

// CreatePassword задает пароль пользователю и активирует учетную запись.
func (s *AuthService) CreatePassword(ctx context.Context, credentials models.Credentials) (*models.AuthResponse, error) {
	if err := utils.ValidateStruct(credentials); err != nil {
		return nil, err
	}

	var user *models.User
	err := s.Store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		user, err = tx.Users().GetByEmail(ctx, credentials.Email)
		if err != nil {
			return notFoundAs(err, models.ErrUserNotFound)
		}
		if err := s.setPassword(user, credentials.Password); err != nil {
			return err
		}
		user.Status = models.ActiveUser
		return storageErr(tx.Users().Update(ctx, user))
	})
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{UserID: user.ID, Status: user.Status, Role: user.Role}, nil
}

// Login проверяет пароль и выдает токен доступа.
func (s *AuthService) Login(ctx context.Context, credentials models.Credentials) (*models.LoginResponse, error) {
	if err := utils.ValidateStruct(credentials); err != nil {
		return nil, err
	}

	user, err := s.Store.Users().GetByEmail(ctx, credentials.Email)
	if err != nil {
		return nil, notFoundAs(err, models.ErrEmailNotFound)
	}
	if !s.verify(user, credentials.Password) {
		return nil, models.ErrIncorrectPassword
	}

	token, err := s.Tokens.Issue(user.ID, string(user.Role))
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to issue token")
	}

	return &models.LoginResponse{
		UserID:               user.ID,
		Status:               user.Status,
		Role:                 user.Role,
		Name:                 user.Name,
		ProfileImage:         user.PersonalImagePath,
		Email:                user.Email,
		BusinessName:         user.BusinessName,
		BusinessDescription:  user.BusinessDescription,
		BusinessProfileImage: user.BusinessImagePath,
		AccessToken:          token,
	}, nil
}

// ChangePassword меняет пароль после проверки текущего.
func (s *AuthService) ChangePassword(ctx context.Context, change models.PasswordChange) (*models.SuccessMessage, error) {
	if err := utils.ValidateStruct(change); err != nil {
		return nil, err
	}

	err := s.Store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		user, err := tx.Users().GetByID(ctx, change.UserID)
		if err != nil {
			return notFoundAs(err, models.ErrUserNotFound)
		}
		if !s.verify(user, change.OldPassword) {
			return models.ErrIncorrectPassword
		}
		if err := s.setPassword(user, change.NewPassword); err != nil {
			return err
		}
		return storageErr(tx.Users().Update(ctx, user))
	})
	if err != nil {
		return nil, err
	}
	return &models.SuccessMessage{Message: "Password changed successfully"}, nil
}

// ForgotPassword сбрасывает пароль на случайный PIN.
// Ответ не зависит от того, существует ли пользователь.
func (s *AuthService) ForgotPassword(ctx context.Context, reset models.PasswordResetRequest) (*models.SuccessMessage, error) {
	if err := utils.ValidateStruct(reset); err != nil {
		return nil, err
	}
	response := &models.SuccessMessage{Message: "If the user exists, a reset token has been sent."}

	pin, err := auth.GeneratePIN(resetPINLength)
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to generate reset pin")
	}

	var userID string
	err = s.Store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		user, err := tx.Users().GetByEmail(ctx, reset.Email)
		if err != nil {
			return err
		}
		if err := s.setPassword(user, pin); err != nil {
			return err
		}
		userID = user.ID
		return storageErr(tx.Users().Update(ctx, user))
	})
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return response, nil
	case err != nil:
		return nil, storageErr(err)
	}

	s.Logger.WithFields(logrus.Fields{"user_id": userID, "pin": pin}).Debug("password reset")
	return response, nil
}

func (s *AuthService) setPassword(user *models.User, password string) error {
	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return models.NewErrorResponse(http.StatusInternalServerError, "failed to hash password")
	}
	user.PasswordHash = &hash
	return nil
}

func (s *AuthService) verify(user *models.User, password string) bool {
	return user.PasswordHash != nil && s.Hasher.Check(password, *user.PasswordHash)
}
