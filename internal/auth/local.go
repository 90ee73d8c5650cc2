package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/moviecatalog/moviecatalog/internal/db/models"
)

const (
	whereID = "id = ?"

	// DefaultPageSize is used by ListUsers when no valid limit is given.
	DefaultPageSize = 20
	// MaxPageSize caps the page size of ListUsers.
	MaxPageSize = 100
)

// LocalProvider is the credential store: it registers users and checks
// email/password logins against the local database.
type LocalProvider struct {
	db     *gorm.DB
	now    func() time.Time
	verify func(u *models.User, password string) bool
}

// ProfileUpdate holds the self-service profile fields; nil leaves a field unchanged.
type ProfileUpdate struct {
	Username *string
	Avatar   *string
}

var (
	dummyHash     string    //nolint:gochecknoglobals
	dummyHashOnce sync.Once //nolint:gochecknoglobals
)

// unknownUser carries a throwaway argon2id hash so a login for an unknown
// email costs the same compare as a wrong password.
func unknownUser() *models.User {
	dummyHashOnce.Do(func() {
		var err error

		if dummyHash, err = models.HashPassword("unknown-account"); err != nil {
			dummyHash = ""
		}
	})

	return &models.User{Password: dummyHash}
}

// UserListEntry is a user row joined with the display name of its role.
type UserListEntry struct {
	models.User
	RoleDisplayName *string `json:"role_display_name"`
}

// NewLocalProvider creates a new local authentication provider.
func NewLocalProvider(db *gorm.DB) *LocalProvider {
	return &LocalProvider{
		db:     db,
		now:    time.Now,
		verify: (*models.User).VerifyPassword,
	}
}

// Register creates a new account with the legacy "user" tag and no role.
func (p *LocalProvider) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	var existing models.User

	err := p.db.WithContext(ctx).
		Where("username = ? OR email = ?", username, email).
		First(&existing).Error
	if err == nil {
		return nil, ErrUserNameOrEmailExists
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hashed, err := models.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Username:   username,
		Email:      email,
		Password:   hashed,
		LegacyRole: models.LegacyRoleUser,
	}

	if err = p.db.WithContext(ctx).Create(&user).Error; err != nil {
		// lost a race against a concurrent registration
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUserNameOrEmailExists
		}

		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &user, nil
}

// Authenticate looks the user up by email and verifies the password.
func (p *LocalProvider) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User

	err := p.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		p.verify(unknownUser(), password)

		return nil, ErrInvalidCredentials
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	if !p.verify(&user, password) {
		return nil, ErrInvalidCredentials
	}

	return &user, nil
}

// RecordLogin stores the time of the last successful login.
// Callers treat a failure as non-fatal.
func (p *LocalProvider) RecordLogin(ctx context.Context, userID uint64) error {
	return p.db.WithContext(ctx).
		Model(&models.User{}).
		Where(whereID, userID).
		UpdateColumn("last_login", p.now()).Error
}

// GetUserByID retrieves a user by ID.
func (p *LocalProvider) GetUserByID(ctx context.Context, userID uint64) (*models.User, error) {
	var user models.User

	err := p.db.WithContext(ctx).First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// ChangePassword replaces the user's password after checking the current one.
// The new hash is always argon2id, which also retires legacy bcrypt hashes.
func (p *LocalProvider) ChangePassword(ctx context.Context, userID uint64, oldPassword, newPassword string) error {
	user, err := p.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if !p.verify(user, oldPassword) {
		return ErrInvalidCredentials
	}

	hashed, err := models.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	res := p.db.WithContext(ctx).Model(&models.User{}).Where(whereID, userID).Update("password", hashed)
	if res.Error != nil {
		return fmt.Errorf("failed to update password: %w", res.Error)
	}

	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// UpdateProfile changes the username and/or avatar and returns the updated user.
// An empty avatar clears it.
func (p *LocalProvider) UpdateProfile(ctx context.Context, userID uint64, in ProfileUpdate) (*models.User, error) {
	var user *models.User

	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u models.User

		err := tx.First(&u, userID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}

		if err != nil {
			return fmt.Errorf("failed to get user: %w", err)
		}

		changes := make(map[string]any, 2)

		if in.Username != nil {
			name := strings.TrimSpace(*in.Username)
			if name != u.Username {
				var taken int64
				if err = tx.Model(&models.User{}).Where("username = ? AND id <> ?", name, userID).
					Count(&taken).Error; err != nil {
					return fmt.Errorf("failed to check username: %w", err)
				}

				if taken > 0 {
					return ErrUserNameOrEmailExists
				}

				changes["username"] = name
				u.Username = name
			}
		}

		if in.Avatar != nil {
			avatar := strings.TrimSpace(*in.Avatar)
			if avatar == "" {
				changes["avatar"] = nil
				u.Avatar = nil
			} else {
				changes["avatar"] = avatar
				u.Avatar = &avatar
			}
		}

		if len(changes) > 0 {
			if err = tx.Model(&models.User{}).Where(whereID, userID).Updates(changes).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return ErrUserNameOrEmailExists
				}

				return fmt.Errorf("failed to update profile: %w", err)
			}
		}

		user = &u

		return nil
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// ListUsers returns one page of users, newest first, and the total count.
func (p *LocalProvider) ListUsers(ctx context.Context, page, limit int) ([]UserListEntry, int64, error) {
	if page < 1 {
		page = 1
	}

	if limit < 1 || limit > MaxPageSize {
		limit = DefaultPageSize
	}

	var total int64
	if err := p.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	users := make([]UserListEntry, 0, limit)

	err := p.db.WithContext(ctx).
		Model(&models.User{}).
		Select("users.*, roles.display_name AS role_display_name").
		Joins("LEFT JOIN roles ON roles.id = users.role_id").
		Order("users.id DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Scan(&users).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	return users, total, nil
}

// DeleteUser removes a user account.
func (p *LocalProvider) DeleteUser(ctx context.Context, userID uint64) error {
	res := p.db.WithContext(ctx).Delete(&models.User{}, userID)
	if res.Error != nil {
		return fmt.Errorf("failed to delete user: %w", res.Error)
	}

	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}
