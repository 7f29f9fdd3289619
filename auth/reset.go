package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/krishkalaria12/snap-vault/database"
	"github.com/krishkalaria12/snap-vault/models"
)

const (
	resetAudience = "password-reset"
	resetTTL      = 30 * time.Minute
	resetPath     = "/update-password"
)

type Mailer interface {
	SendPasswordReset(ctx context.Context, email, link string) error
}

// LogMailer writes reset links to the process log instead of sending mail.
type LogMailer struct{}

func (LogMailer) SendPasswordReset(ctx context.Context, email, link string) error {
	log.Printf("password reset requested for %s: %s", email, link)
	return nil
}

type resetClaims struct {
	// Fingerprint of the password hash the token was issued against; once the
	// password changes the token no longer verifies.
	Fingerprint string `json:"pwh"`
	jwt.RegisteredClaims
}

// RequestPasswordReset mails a reset link when the account exists. Unknown
// addresses succeed silently.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil
		}
		return err
	}

	tokenStr, err := s.resetToken(user)
	if err != nil {
		return err
	}

	link := s.appURL + resetPath + "?token=" + url.QueryEscape(tokenStr)
	if err := s.mailer.SendPasswordReset(ctx, user.Email, link); err != nil {
		return fmt.Errorf("failed to send reset link: %w", err)
	}
	return nil
}

// ResetPassword sets a new password for the account named by a reset token.
func (s *Service) ResetPassword(ctx context.Context, tokenStr, password string) error {
	claims := &resetClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return []byte(s.cfg.JWTSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(resetAudience),
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return ErrInvalidToken
		}
		return err
	}

	if claims.Fingerprint != fingerprint(user.PasswordHash) {
		return ErrInvalidToken
	}

	return s.setPassword(ctx, user.ID, password)
}

// ChangePassword updates the password of the signed-in user.
func (s *Service) ChangePassword(ctx context.Context, session models.Session, password string) error {
	return s.setPassword(ctx, session.UserID, password)
}

func (s *Service) setPassword(ctx context.Context, userID, password string) error {
	hash, err := hashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.users.UpdatePassword(ctx, userID, hash)
}

func (s *Service) resetToken(user *models.User) (string, error) {
	now := s.now()
	claims := resetClaims{
		Fingerprint: fingerprint(user.PasswordHash),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    s.cfg.Issuer,
			Audience:  []string{resetAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(resetTTL)),
		},
	}

	tokenStr, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign reset token: %w", err)
	}
	return tokenStr, nil
}

func fingerprint(hash string) string {
	sum := sha256.Sum256([]byte(hash))
	return hex.EncodeToString(sum[:8])
}
