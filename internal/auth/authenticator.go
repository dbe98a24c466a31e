package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/kartikfr/card-genius/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

type Authenticator struct {
	passwordHash []byte
	tokens       *TokenService
}

// NewAuthenticator accepts either a bcrypt hash or a plain password; the
// plain form is hashed once at startup. With neither set, every login fails.
func NewAuthenticator(tokens *TokenService, passwordHash, password string) (*Authenticator, error) {
	a := &Authenticator{tokens: tokens}
	switch {
	case passwordHash != "":
		if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
			return nil, fmt.Errorf("invalid admin password hash: %w", err)
		}
		a.passwordHash = []byte(passwordHash)
	case password != "":
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash admin password: %w", err)
		}
		a.passwordHash = hash
	}
	return a, nil
}

func (a *Authenticator) Login(password string) (string, time.Time, error) {
	if len(a.passwordHash) == 0 {
		return "", time.Time{}, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return "", time.Time{}, domain.ErrInvalidCredentials
		}
		return "", time.Time{}, fmt.Errorf("compare admin password: %w", err)
	}
	return a.tokens.GenerateToken()
}

func (a *Authenticator) Tokens() *TokenService {
	return a.tokens
}
