package models

import (
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// LegacyRole is the coarse role tag kept on the user row and carried in bearer tokens.
// It predates the RBAC tables and is only used for backward compatibility;
// authorization decisions always go through the user's assigned Role.
type LegacyRole string

const (
	// LegacyRoleUser is the tag every self-registered account receives.
	LegacyRoleUser LegacyRole = "user"
	// LegacyRoleAdmin is the tag of accounts created as administrators before RBAC existed.
	LegacyRoleAdmin LegacyRole = "admin"
)

// bcryptPrefixes identify password hashes imported from the previous backend.
var bcryptPrefixes = []string{"$2a$", "$2b$", "$2y$"}

// User represents a catalog account.
// Users register themselves; administrators assign them a role which
// determines their permissions in the admin console.
type User struct {
	// ID is the unique identifier for the user.
	ID uint64 `gorm:"primaryKey" json:"id"`
	// Username is the unique username shown in reviews and the admin console.
	Username string `gorm:"unique;size:50;not null" json:"username"`
	// Email is the unique address used to log in.
	Email string `gorm:"unique;size:255;not null" json:"email"`
	// Password is the Argon2id hashed password. It never leaves the server.
	Password string `gorm:"size:255;not null" json:"-"`
	// Avatar is an optional reference to the user's uploaded avatar image.
	Avatar *string `gorm:"size:255" json:"avatar"`
	// LegacyRole is the coarse role tag ("user" or "admin").
	LegacyRole LegacyRole `gorm:"column:role;type:varchar(20);not null;default:'user'" json:"role"`
	// RoleID is the ID of the RBAC role assigned to this user, nil when none is assigned.
	RoleID *uint `gorm:"column:role_id;index" json:"role_id"`
	// Role is the associated role. Deleting the role clears the reference (SET NULL).
	Role *Role `gorm:"foreignKey:RoleID;references:ID;constraint:OnDelete:SET NULL,OnUpdate:CASCADE" json:"-"`
	// LastLogin is the time of the last successful login.
	LastLogin *time.Time `json:"last_login"`
	// CreatedAt is the timestamp when the user was created (managed by GORM).
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is the timestamp when the user was last updated (managed by GORM).
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the database table name for the User model.
func (User) TableName() string {
	return "users"
}

// HashPassword hashes a plaintext password using the Argon2id algorithm.
// This function should be used whenever a password is created or changed.
func HashPassword(password string) (string, error) {
	return argon2id.CreateHash(password, argon2id.DefaultParams) //nolint:wrapcheck
}

// VerifyPassword verifies a plaintext password against the user's stored hashed password.
// Argon2id hashes are compared in constant time; bcrypt hashes imported from the
// previous backend are still accepted. Returns true if the password matches.
func (u *User) VerifyPassword(password string) bool {
	if isBcryptHash(u.Password) {
		return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
	}

	match, err := argon2id.ComparePasswordAndHash(password, u.Password)
	if err != nil {
		log.Error().Err(err).Uint64("user_id", u.ID).Msg("failed to verify password")
		return false
	}

	return match
}

func isBcryptHash(hash string) bool {
	for _, prefix := range bcryptPrefixes {
		if strings.HasPrefix(hash, prefix) {
			return true
		}
	}

	return false
}
