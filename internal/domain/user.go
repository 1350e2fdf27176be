package domain

import (
	"net/mail"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// Role controls access to administrative endpoints. Resource ownership is
// never widened by a role: admins manage their own tasks like everyone else.
type Role string

// Known user roles.
const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Password policy bounds. The minimum length is configurable
// (config.AuthConfig.PasswordMinLength); this is the floor used when no
// configuration is supplied. The maximum is bcrypt's practical input limit.
const (
	DefaultPasswordMinLength = 8
	MaxPasswordLength        = 72
)

// Username length bounds, matching the users.username column.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 64
)

// User represents a registered user of the tasks service.
type User struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Role     Role      `json:"role"`

	// Password holds the plaintext only transiently during registration or
	// a password change. It is never persisted, logged, or serialized.
	Password       string `json:"-"`
	HashedPassword string `json:"-"`

	// RefreshTokenID is the jti of the most recently issued refresh token.
	// A refresh token presenting any other jti has been rotated out and is
	// rejected. uuid.Nil means no refresh token is outstanding.
	RefreshTokenID uuid.UUID `json:"-"`

	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewUser creates a User with the given identity and plaintext password.
// The caller is responsible for hashing the password before storage.
func NewUser(username, email, password string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:        uuid.New(),
		Username:  username,
		Email:     email,
		Role:      RoleUser,
		Password:  password,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Validate checks if the User has valid data.
// Returns a ValidationError wrapping the relevant sentinel on failure.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrInvalidID)
	}

	if err := ValidateUsername(u.Username); err != nil {
		return err
	}

	if err := ValidateEmail(u.Email); err != nil {
		return err
	}

	switch u.Role {
	case RoleAdmin, RoleUser:
	default:
		return NewValidationError("role", "must be admin or user", ErrInvalidRole)
	}

	// A user carries either a transient plaintext password (registration,
	// password change) or the stored hash (loaded from the database).
	if u.Password != "" {
		if err := ValidatePassword(u.Password, DefaultPasswordMinLength); err != nil {
			return err
		}
	} else if u.HashedPassword == "" {
		return NewValidationError("password", "cannot be empty", ErrInvalidPassword)
	}

	return nil
}

// ValidateUsername checks username length bounds.
func ValidateUsername(username string) error {
	if len(username) < MinUsernameLength {
		return NewValidationError("username", "is too short", ErrInvalidUsername)
	}
	if len(username) > MaxUsernameLength {
		return NewValidationError("username", "is too long", ErrInvalidUsername)
	}
	return nil
}

// ValidateEmail checks that the email parses as an RFC 5322 address.
func ValidateEmail(email string) error {
	if email == "" {
		return NewValidationError("email", "cannot be empty", ErrInvalidEmail)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return NewValidationError("email", "is not a valid address", ErrInvalidEmail)
	}
	return nil
}

// ValidatePassword enforces the password policy: at least minLength
// characters (bounded below by DefaultPasswordMinLength), at most
// MaxPasswordLength, containing at least one letter and one digit.
func ValidatePassword(password string, minLength int) error {
	if minLength < DefaultPasswordMinLength {
		minLength = DefaultPasswordMinLength
	}

	if len(password) < minLength {
		return NewValidationError("password", "is too short", ErrInvalidPassword)
	}
	if len(password) > MaxPasswordLength {
		return NewValidationError("password", "is too long", ErrInvalidPassword)
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return NewValidationError(
			"password",
			"must contain at least one letter and one digit",
			ErrInvalidPassword,
		)
	}

	return nil
}
