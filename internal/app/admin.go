package app

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"quiz-intake-service/internal/domain"
)

// AdminGate checks the single operator credential and issues session tokens.
type AdminGate struct {
	username     string
	passwordHash []byte
	sessions     AdminSessionStore
	ttl          time.Duration
}

// NewAdminGate builds a gate from a username and a bcrypt hash of the password.
func NewAdminGate(username string, passwordHash []byte, sessions AdminSessionStore, ttl time.Duration) *AdminGate {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &AdminGate{
		username:     username,
		passwordHash: passwordHash,
		sessions:     sessions,
		ttl:          ttl,
	}
}

// HashPassword hashes a plain operator password for NewAdminGate.
func HashPassword(password string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	return hash, nil
}

// Login verifies the credential and returns a new session token.
func (g *AdminGate) Login(ctx context.Context, username, password string) (string, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(g.username)) == 1
	passErr := bcrypt.CompareHashAndPassword(g.passwordHash, []byte(password))
	if !userOK || passErr != nil {
		return "", domain.ErrUnauthorized
	}

	token := uuid.NewString()
	if err := g.sessions.Create(ctx, token, g.ttl); err != nil {
		return "", fmt.Errorf("create admin session: %w", err)
	}
	log.Printf("operator logged in")
	return token, nil
}

// Authorize reports domain.ErrUnauthorized unless token belongs to a live session.
func (g *AdminGate) Authorize(ctx context.Context, token string) error {
	if token == "" {
		return domain.ErrUnauthorized
	}
	ok, err := g.sessions.Exists(ctx, token)
	if err != nil {
		return fmt.Errorf("check admin session: %w", err)
	}
	if !ok {
		return domain.ErrUnauthorized
	}
	return nil
}

// Logout revokes token.
func (g *AdminGate) Logout(ctx context.Context, token string) error {
	if err := g.sessions.Delete(ctx, token); err != nil {
		return fmt.Errorf("delete admin session: %w", err)
	}
	return nil
}
