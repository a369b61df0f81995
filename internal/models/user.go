package models

import "time"

type (
	UserRole   string // Роль пользователя
	UserStatus string // Статус учетной записи
)

const (
	CustomerRole UserRole = "customer"
	SupplierRole UserRole = "supplier"
	AdminRole    UserRole = "admin"

	ActiveUser   UserStatus = "active"
	DisabledUser UserStatus = "disabled"
	PendingUser  UserStatus = "pending"
)

// User представляет модель учетной записи.
type User struct {
	ID                  string     `json:"id"`
	Username            *string    `json:"username,omitempty"`
	Role                UserRole   `json:"role"`
	Name                string     `json:"name"`
	Surname             *string    `json:"surname,omitempty"`
	PhoneNumber         *string    `json:"phoneNumber,omitempty"`
	Email               string     `json:"email"`
	PasswordHash        *string    `json:"-"`
	DateOfBirth         *time.Time `json:"dateOfBirth,omitempty"`
	Gender              *string    `json:"gender,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
	Status              UserStatus `json:"status"`
	Latitude            *float64   `json:"latitude,omitempty"`
	Longitude           *float64   `json:"longitude,omitempty"`
	BusinessPhoneNumber *string    `json:"businessPhoneNumber,omitempty"`
	BusinessEmail       *string    `json:"businessEmail,omitempty"`
	BusinessName        *string    `json:"businessName,omitempty"`
	BusinessCategory    *string    `json:"businessCategory,omitempty"`
	BusinessDescription *string    `json:"businessDescription,omitempty"`
	BusinessType        *string    `json:"businessType,omitempty"`
	PersonalImagePath   *string    `json:"personalImagePath,omitempty"`
	BusinessImagePath   *string    `json:"businessImagePath,omitempty"`
	BusinessCreatedAt   time.Time  `json:"businessCreatedAt"`
}

// UserCreate представляет структуру запроса для регистрации пользователя.
type UserCreate struct {
	Name        string     `json:"name" validate:"required"`
	Surname     string     `json:"surname"`
	Email       string     `json:"email" validate:"required,email"`
	PhoneNumber string     `json:"phoneNumber"`
	DateOfBirth *time.Time `json:"dateOfBirth,omitempty"`
	Gender      string     `json:"gender"`
}

// UserUpdate содержит поля, которые может менять администратор.
type UserUpdate struct {
	Role        *UserRole   `json:"role,omitempty" validate:"omitempty,oneof=customer supplier admin"`
	Status      *UserStatus `json:"status,omitempty" validate:"omitempty,oneof=active disabled pending"`
	Name        *string     `json:"name,omitempty"`
	Surname     *string     `json:"surname,omitempty"`
	PhoneNumber *string     `json:"phoneNumber,omitempty"`
	Email       *string     `json:"email,omitempty" validate:"omitempty,email"`
}

// UserFilter - фильтр списка пользователей.
type UserFilter struct {
	Role   UserRole
	Status UserStatus
	Limit  int
	Offset int
}

// UserStats - статистика по пользователям.
type UserStats struct {
	TotalUsers    int64 `json:"totalUsers"`
	ActiveUsers   int64 `json:"activeUsers"`
	DisabledUsers int64 `json:"disabledUsers"`
	NewUsers      int64 `json:"newUsers"`
	PeriodDays    int   `json:"periodDays"`
}

// BusinessProfile - бизнес-профиль поставщика.
type BusinessProfile struct {
	BusinessName        string   `json:"businessName" validate:"required"`
	BusinessCategory    string   `json:"businessCategory"`
	BusinessDescription string   `json:"businessDescription"`
	BusinessType        string   `json:"businessType"`
	BusinessEmail       string   `json:"businessEmail" validate:"omitempty,email"`
	BusinessPhoneNumber string   `json:"businessPhoneNumber"`
	Latitude            *float64 `json:"latitude,omitempty"`
	Longitude           *float64 `json:"longitude,omitempty"`
	ImageURL            *string  `json:"imageUrl,omitempty"`
}

// Credentials - пара email и пароль.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// PasswordChange - запрос смены пароля.
type PasswordChange struct {
	UserID      string `json:"userId" validate:"required,uuid"`
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

// PasswordResetRequest - запрос сброса пароля.
type PasswordResetRequest struct {
	Email string `json:"email" validate:"required"`
}

// AuthResponse - ответ после установки пароля.
type AuthResponse struct {
	UserID string     `json:"userId"`
	Status UserStatus `json:"status"`
	Role   UserRole   `json:"role"`
}

// LoginResponse - ответ после входа.
type LoginResponse struct {
	UserID               string     `json:"userId"`
	Status               UserStatus `json:"status"`
	Role                 UserRole   `json:"role"`
	Name                 string     `json:"name"`
	ProfileImage         *string    `json:"profileImage,omitempty"`
	Email                string     `json:"email"`
	BusinessName         *string    `json:"businessName,omitempty"`
	BusinessDescription  *string    `json:"businessDescription,omitempty"`
	BusinessProfileImage *string    `json:"businessProfileImage,omitempty"`
	AccessToken          string     `json:"accessToken"`
}

// SuccessMessage - ответ об успешной операции.
type SuccessMessage struct {
	Message  string `json:"message"`
	ImageURL string `json:"imageUrl,omitempty"`
}
