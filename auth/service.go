package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/kilianp07/evroute/core/model"
)

const (
	minPasswordLen   = 8
	// bcrypt rejects longer input.
	maxPasswordBytes = 72
)

// Options configure token issuance.
type Options struct {
	Secret     []byte
	TTL        time.Duration
	Issuer     string
	BcryptCost int
}

// Service registers and authenticates users.
type Service struct {
	store UserStore
	opts  Options
	now   func() time.Time
}

// NewService returns a Service. The secret is required.
func NewService(store UserStore, opts Options) (*Service, error) {
	if store == nil {
		return nil, errors.New("auth: user store is required")
	}
	if len(opts.Secret) == 0 {
		return nil, errors.New("auth: jwt secret is required")
	}
	if opts.TTL <= 0 {
		opts.TTL = time.Hour
	}
	if opts.Issuer == "" {
		opts.Issuer = "evroute"
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	return &Service{store: store, opts: opts, now: time.Now}, nil
}

// Registration is the input of Register.
type Registration struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	FullName    string `json:"full_name"`
	VehicleType string `json:"vehicle_type"`
	DriveMode   string `json:"drive_mode"`
}

func (r Registration) validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}
	if len(r.Password) < minPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLen)
	}
	if len(r.Password) > maxPasswordBytes {
		return fmt.Errorf("%w: password must be at most %d bytes", ErrInvalidInput, maxPasswordBytes)
	}
	if _, err := model.ParseDriveMode(r.DriveMode); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

// Register creates an account.
func (s *Service) Register(ctx context.Context, r Registration) (model.User, error) {
	if err := r.validate(); err != nil {
		return model.User{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(r.Password), s.opts.BcryptCost)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}
	mode, _ := model.ParseDriveMode(r.DriveMode)
	u := model.User{
		Username:     strings.TrimSpace(r.Username),
		Email:        strings.TrimSpace(r.Email),
		PasswordHash: string(hash),
		FullName:     r.FullName,
		VehicleType:  r.VehicleType,
		DriveMode:    string(mode),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.CreateUser(ctx, &u); err != nil {
		return model.User{}, err
	}
	return u, nil
}

// Login checks the credentials, records the login time and returns a signed
// token.
func (s *Service) Login(ctx context.Context, username, password string) (string, model.User, error) {
	u, err := s.store.UserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, ErrUserNotFound) {
		return "", model.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return "", model.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", model.User{}, ErrInvalidCredentials
	}
	now := s.now().UTC()
	if err := s.store.TouchLogin(ctx, u.ID, now); err != nil {
		return "", model.User{}, err
	}
	u.LastLogin = &now
	tok, err := s.IssueToken(u)
	if err != nil {
		return "", model.User{}, err
	}
	return tok, u, nil
}

// Claims are the registered JWT claims plus the username.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 token for u.
func (s *Service) IssueToken(u model.User) (string, error) {
	now := s.now()
	claims := Claims{
		Username: u.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(u.ID, 10),
			Issuer:    s.opts.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.opts.TTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.opts.Secret)
}

// ParseToken validates tok and returns the user ID it was issued for.
func (s *Service) ParseToken(tok string) (int64, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(tok, &claims, func(*jwt.Token) (any, error) {
		return s.opts.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.opts.Issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return id, nil
}

// User returns the account with the given ID.
func (s *Service) User(ctx context.Context, id int64) (model.User, error) {
	return s.store.UserByID(ctx, id)
}
