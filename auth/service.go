package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/go-pkgz/auth/v2"
	"github.com/go-pkgz/auth/v2/token"
	"github.com/golang-jwt/jwt/v5"
	"github.com/krishkalaria12/snap-vault/config"
	"github.com/krishkalaria12/snap-vault/database"
	"github.com/krishkalaria12/snap-vault/models"
	"golang.org/x/crypto/bcrypt"
)

const (
	CookieName = "JWT"
	HeaderName = "X-JWT"

	bcryptCost = 10

	// passwordAttr carries the password hash fingerprint in session claims.
	passwordAttr = "pwh"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrInvalidEmail       = errors.New("invalid email address")
)

type UserStore interface {
	CreateWithProfile(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	UpdatePassword(ctx context.Context, id, hash string) error
}

// Service issues and validates sessions for local password accounts.
type Service struct {
	auth   *auth.Service
	users  UserStore
	mailer Mailer
	cfg    config.AuthConfig
	appURL string
	now    func() time.Time
}

func NewService(cfg config.AuthConfig, appURL string, users UserStore, mailer Mailer) *Service {
	options := auth.Opts{
		SecretReader: token.SecretFunc(func(aud string) (string, error) {
			return cfg.JWTSecret, nil
		}),
		TokenDuration:  cfg.TokenDuration,
		CookieDuration: cfg.CookieDuration,
		Issuer:         cfg.Issuer,
		URL:            appURL,
		SecureCookies:  cfg.SecureCookies,
		JWTCookieName:  CookieName,
		JWTHeaderKey:   HeaderName,
		DisableXSRF:    true,
	}

	if mailer == nil {
		mailer = LogMailer{}
	}

	return &Service{
		auth:   auth.NewService(options),
		users:  users,
		mailer: mailer,
		cfg:    cfg,
		appURL: appURL,
		now:    time.Now,
	}
}

func (s *Service) CookieDuration() time.Duration {
	return s.cfg.CookieDuration
}

func (s *Service) SecureCookies() bool {
	return s.cfg.SecureCookies
}

func (s *Service) Register(ctx context.Context, email, password string) (*models.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{Email: email, PasswordHash: hash}
	if err := s.users.CreateWithProfile(ctx, user); err != nil {
		if errors.Is(err, database.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	return user, nil
}

// Authenticate validates credentials against the users table.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !checkPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// IssueToken signs a session token for the user.
func (s *Service) IssueToken(user *models.User) (string, error) {
	now := s.now()
	tokenUser := &token.User{
		ID:    user.ID,
		Name:  user.Email,
		Email: user.Email,
	}
	tokenUser.SetStrAttr(passwordAttr, fingerprint(user.PasswordHash))

	claims := token.Claims{
		User: tokenUser,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			Audience:  []string{s.cfg.Issuer},
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Add(-time.Minute)),
		},
	}

	tokenStr, err := s.auth.TokenService().Token(claims)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenStr, nil
}

// ParseSession validates a session token and returns the identity it carries.
// Tokens issued before the account's last password change are rejected.
func (s *Service) ParseSession(ctx context.Context, tokenStr string) (models.Session, error) {
	claims, err := s.auth.TokenService().Parse(tokenStr)
	if err != nil {
		return models.Session{}, ErrInvalidToken
	}

	if claims.User == nil || claims.User.ID == "" {
		return models.Session{}, ErrInvalidToken
	}
	if claims.ExpiresAt == nil || !claims.ExpiresAt.After(s.now()) {
		return models.Session{}, ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, claims.User.ID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return models.Session{}, ErrInvalidToken
		}
		return models.Session{}, err
	}
	if claims.User.StrAttr(passwordAttr) != fingerprint(user.PasswordHash) {
		return models.Session{}, ErrInvalidToken
	}

	return models.Session{UserID: user.ID, Email: user.Email}, nil
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(hashed), err
}

func checkPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func normalizeEmail(identity string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(identity))
	if err != nil {
		return "", ErrInvalidEmail
	}
	return strings.ToLower(addr.Address), nil
}
