package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/senyabanana/marketplace-service/internal/models"

	"github.com/jackc/pgx/v5"
)

// UserRepository - интерфейс для работы с учетными записями.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, userID string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByPhone(ctx context.Context, phone string) (*models.User, error)
	GetByBusinessEmail(ctx context.Context, email string) (*models.User, error)
	GetByBusinessPhone(ctx context.Context, phone string) (*models.User, error)
	ListByUsername(ctx context.Context, username string) ([]models.User, error)
	List(ctx context.Context, filter models.UserFilter) ([]models.User, error)
	Stats(ctx context.Context, since time.Time) (*models.UserStats, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, userID string) error
}

// PostgresUserRepository - реализация UserRepository для базы данных.
type PostgresUserRepository struct {
	DB DBTX
}

// NewPostgresUserRepository создаёт новый экземпляр PostgresUserRepository.
func NewPostgresUserRepository(db DBTX) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

const userColumns = `id, username, role, name, surname, phone_number, email, password, date_of_birth, gender,
	created_at, status, latitude, longitude, business_phone_number, business_email, business_name,
	business_category, business_description, business_type, personal_image_path, business_image_path,
	business_created_at`

func scanUser(row rowScanner) (*models.User, error) {
	var user models.User
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Role,
		&user.Name,
		&user.Surname,
		&user.PhoneNumber,
		&user.Email,
		&user.PasswordHash,
		&user.DateOfBirth,
		&user.Gender,
		&user.CreatedAt,
		&user.Status,
		&user.Latitude,
		&user.Longitude,
		&user.BusinessPhoneNumber,
		&user.BusinessEmail,
		&user.BusinessName,
		&user.BusinessCategory,
		&user.BusinessDescription,
		&user.BusinessType,
		&user.PersonalImagePath,
		&user.BusinessImagePath,
		&user.BusinessCreatedAt); err != nil {
		return nil, err
	}
	return &user, nil
}

func collectUsers(rows pgx.Rows, err error) ([]models.User, error) {
	if err != nil {
		return nil, translateError(err, "query users")
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, translateError(err, "scan user")
		}
		users = append(users, *user)
	}
	return users, translateError(rows.Err(), "iterate users")
}

func (r *PostgresUserRepository) getBy(ctx context.Context, column, value string) (*models.User, error) {
	user, err := scanUser(r.DB.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+column+` = $1`, value))
	if err != nil {
		return nil, translateError(err, "get user by "+column)
	}
	return user, nil
}

// Create сохраняет новую учетную запись.
func (r *PostgresUserRepository) Create(ctx context.Context, user *models.User) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)`,
		user.ID,
		user.Username,
		user.Role,
		user.Name,
		user.Surname,
		user.PhoneNumber,
		user.Email,
		user.PasswordHash,
		user.DateOfBirth,
		user.Gender,
		user.CreatedAt,
		user.Status,
		user.Latitude,
		user.Longitude,
		user.BusinessPhoneNumber,
		user.BusinessEmail,
		user.BusinessName,
		user.BusinessCategory,
		user.BusinessDescription,
		user.BusinessType,
		user.PersonalImagePath,
		user.BusinessImagePath,
		user.BusinessCreatedAt)
	return translateError(err, "insert user")
}

// GetByID возвращает пользователя по ID.
func (r *PostgresUserRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	return r.getBy(ctx, "id", userID)
}

// GetByEmail возвращает пользователя по email.
func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getBy(ctx, "email", email)
}

// GetByPhone возвращает пользователя по номеру телефона.
func (r *PostgresUserRepository) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	return r.getBy(ctx, "phone_number", phone)
}

func (r *PostgresUserRepository) GetByBusinessEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getBy(ctx, "business_email", email)
}

func (r *PostgresUserRepository) GetByBusinessPhone(ctx context.Context, phone string) (*models.User, error) {
	return r.getBy(ctx, "business_phone_number", phone)
}

// ListByUsername возвращает пользователей с указанным username; username не уникален.
func (r *PostgresUserRepository) ListByUsername(ctx context.Context, username string) ([]models.User, error) {
	return collectUsers(r.DB.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1 ORDER BY created_at DESC, id`, username))
}

// List возвращает пользователей с фильтрацией по роли и статусу.
func (r *PostgresUserRepository) List(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users`
	var filters []string
	var args []any
	argIndex := 1

	if filter.Role != "" {
		filters = append(filters, fmt.Sprintf("role = $%d", argIndex))
		args = append(args, filter.Role)
		argIndex++
	}
	if filter.Status != "" {
		filters = append(filters, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, filter.Status)
		argIndex++
	}
	if len(filters) > 0 {
		query += " WHERE " + strings.Join(filters, " AND ")
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, filter.Limit, filter.Offset)

	return collectUsers(r.DB.Query(ctx, query, args...))
}

// Stats считает пользователей по статусам и зарегистрированных после since.
func (r *PostgresUserRepository) Stats(ctx context.Context, since time.Time) (*models.UserStats, error) {
	var stats models.UserStats
	err := r.DB.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = $1),
			COUNT(*) FILTER (WHERE status = $2),
			COUNT(*) FILTER (WHERE created_at >= $3)
		FROM users`,
		models.ActiveUser, models.DisabledUser, since).Scan(
		&stats.TotalUsers,
		&stats.ActiveUsers,
		&stats.DisabledUsers,
		&stats.NewUsers)
	if err != nil {
		return nil, translateError(err, "count users")
	}
	return &stats, nil
}

// Update сохраняет все поля учетной записи.
func (r *PostgresUserRepository) Update(ctx context.Context, user *models.User) error {
	tag, err := r.DB.Exec(ctx, `
		UPDATE users SET
			username = $1, role = $2, name = $3, surname = $4, phone_number = $5, email = $6, password = $7,
			date_of_birth = $8, gender = $9, status = $10, latitude = $11, longitude = $12,
			business_phone_number = $13, business_email = $14, business_name = $15, business_category = $16,
			business_description = $17, business_type = $18, personal_image_path = $19,
			business_image_path = $20, business_created_at = $21
		WHERE id = $22`,
		user.Username,
		user.Role,
		user.Name,
		user.Surname,
		user.PhoneNumber,
		user.Email,
		user.PasswordHash,
		user.DateOfBirth,
		user.Gender,
		user.Status,
		user.Latitude,
		user.Longitude,
		user.BusinessPhoneNumber,
		user.BusinessEmail,
		user.BusinessName,
		user.BusinessCategory,
		user.BusinessDescription,
		user.BusinessType,
		user.PersonalImagePath,
		user.BusinessImagePath,
		user.BusinessCreatedAt,
		user.ID)
	if err != nil {
		return translateError(err, "update user")
	}
	return expectAffected(tag)
}

// Delete удаляет учетную запись вместе с ее заявками, предложениями и товарами.
func (r *PostgresUserRepository) Delete(ctx context.Context, userID string) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return translateError(err, "delete user")
	}
	return expectAffected(tag)
}
