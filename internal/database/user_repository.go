package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campuscruz/rideshare-backend/internal/models"
)

// userColumns is the column list shared by user queries.
const userColumns = `
	id, name, email, password_hash, college_id, phone_number, profile_picture,
	role, status, points, average_rating,
	reset_password_token, reset_password_expires, created_at, updated_at
`

// UserRepository handles user database operations
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user record. Duplicate email or phone number is
// reported as ErrDuplicateEmail / ErrDuplicatePhone.
func (r *UserRepository) Create(user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Role == "" {
		user.Role = models.RoleStudent
	}
	if user.Status == "" {
		user.Status = models.UserStatusActive
	}

	query := `
		INSERT INTO users (
			id, name, email, password_hash, college_id, phone_number,
			profile_picture, role, status, points, average_rating,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8::user_role, $9::user_status, $10, $11, $12, $13)
	`

	_, err := r.db.Exec(
		query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.CollegeID,
		user.PhoneNumber,
		user.ProfilePicture,
		user.Role,
		user.Status,
		user.Points,
		user.AverageRating,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if mapped := mapUniqueViolation(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID fetches a user by primary key
func (r *UserRepository) GetByID(id uuid.UUID) (*models.User, error) {
	var user models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	if err := r.db.Get(&user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return &user, nil
}

// GetByEmail fetches a user by email
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	if err := r.db.Get(&user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return &user, nil
}

// FindByEmailOrPhone finds an existing account matching either identifier.
// Used by registration to distinguish which identifier is duplicated.
func (r *UserRepository) FindByEmailOrPhone(email, phone string) (*models.User, error) {
	var user models.User
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE email = $1 OR (phone_number = $2 AND phone_number <> '')
		LIMIT 1
	`

	if err := r.db.Get(&user, query, email, phone); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user by email or phone: %w", err)
	}

	return &user, nil
}

// UpdateProfile updates the mutable profile fields. Nil pointers leave the
// stored value untouched.
func (r *UserRepository) UpdateProfile(id uuid.UUID, name, phoneNumber, profilePicture *string) (*models.User, error) {
	query := `
		UPDATE users
		SET name            = COALESCE($2, name),
		    phone_number    = COALESCE($3, phone_number),
		    profile_picture = COALESCE($4, profile_picture),
		    updated_at      = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	var user models.User
	if err := r.db.Get(&user, query, id, name, phoneNumber, profilePicture); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		if mapped := mapUniqueViolation(err); mapped != err {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return &user, nil
}

// UpdatePassword replaces the stored password hash
func (r *UserRepository) UpdatePassword(id uuid.UUID, passwordHash string) error {
	result, err := r.db.Exec(
		`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`,
		id, passwordHash,
	)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// SetResetToken stores the hashed password-reset token and its expiry
func (r *UserRepository) SetResetToken(id uuid.UUID, tokenHash string, expires time.Time) error {
	result, err := r.db.Exec(
		`UPDATE users SET reset_password_token = $2, reset_password_expires = $3, updated_at = NOW() WHERE id = $1`,
		id, tokenHash, expires,
	)
	if err != nil {
		return fmt.Errorf("failed to set reset token: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// ClearResetToken removes any stored reset token
func (r *UserRepository) ClearResetToken(id uuid.UUID) error {
	_, err := r.db.Exec(
		`UPDATE users SET reset_password_token = NULL, reset_password_expires = NULL, updated_at = NOW() WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to clear reset token: %w", err)
	}
	return nil
}

// GetByResetToken fetches the user holding a non-expired reset token hash
func (r *UserRepository) GetByResetToken(tokenHash string) (*models.User, error) {
	var user models.User
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE reset_password_token = $1 AND reset_password_expires > NOW()
	`

	if err := r.db.Get(&user, query, tokenHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by reset token: %w", err)
	}

	return &user, nil
}

// AddPoints increments the user's reputation points. Runs on ext so the
// ride-completion transaction can award points atomically with the
// status change.
func (r *UserRepository) AddPoints(ext sqlx.Ext, id uuid.UUID, points int) error {
	result, err := ext.Exec(
		`UPDATE users SET points = points + $2, updated_at = NOW() WHERE id = $1`,
		id, points,
	)
	if err != nil {
		return fmt.Errorf("failed to add points: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// UpdateStatus sets the account status (admin moderation)
func (r *UserRepository) UpdateStatus(id uuid.UUID, status string) (*models.User, error) {
	query := `
		UPDATE users SET status = $2::user_status, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	var user models.User
	if err := r.db.Get(&user, query, id, status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update user status: %w", err)
	}

	return &user, nil
}

// List returns a page of users, newest first, optionally filtered by a
// case-insensitive substring match over name, email, and college ID.
func (r *UserRepository) List(search string, limit, offset int) ([]models.User, error) {
	users := []models.User{}
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE $1 = '' OR name ILIKE '%' || $1 || '%' OR email ILIKE '%' || $1 || '%' OR college_id ILIKE '%' || $1 || '%'
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	if err := r.db.Select(&users, query, search, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return users, nil
}

// Count returns the number of users matching the search filter
func (r *UserRepository) Count(search string) (int, error) {
	var count int
	query := `
		SELECT COUNT(*)
		FROM users
		WHERE $1 = '' OR name ILIKE '%' || $1 || '%' OR email ILIKE '%' || $1 || '%' OR college_id ILIKE '%' || $1 || '%'
	`

	if err := r.db.Get(&count, query, search); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}

	return count, nil
}

// CountByRole returns the number of users with the given role
func (r *UserRepository) CountByRole(role string) (int, error) {
	var count int
	if err := r.db.Get(&count, `SELECT COUNT(*) FROM users WHERE role = $1::user_role`, role); err != nil {
		return 0, fmt.Errorf("failed to count users by role: %w", err)
	}
	return count, nil
}

// Recent returns the most recently registered users
func (r *UserRepository) Recent(limit int) ([]models.User, error) {
	users := []models.User{}
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC LIMIT $1`

	if err := r.db.Select(&users, query, limit); err != nil {
		return nil, fmt.Errorf("failed to get recent users: %w", err)
	}

	return users, nil
}
