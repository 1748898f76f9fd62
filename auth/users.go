// Package auth manages user accounts: registration with bcrypt hashed
// passwords, login and JWT bearer tokens.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/kilianp07/evroute/core/model"
)

var (
	// ErrUserExists is returned when the username or email is taken.
	ErrUserExists = errors.New("username or email already exists")
	// ErrUserNotFound is returned by stores for an unknown username.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials hides whether the username or password was wrong.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrInvalidToken is returned for malformed, expired or forged tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrInvalidInput wraps registration validation failures.
	ErrInvalidInput = errors.New("invalid registration")
)

// UserStore persists accounts.
type UserStore interface {
	// CreateUser inserts u and sets its ID. It returns ErrUserExists when
	// the username or email is already used.
	CreateUser(ctx context.Context, u *model.User) error
	UserByUsername(ctx context.Context, username string) (model.User, error)
	UserByID(ctx context.Context, id int64) (model.User, error)
	TouchLogin(ctx context.Context, id int64, at time.Time) error
}
