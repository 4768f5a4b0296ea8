// Package token provides the JWT access token worker.
package token

import (
	"context"
	"sync"
	"time"

	"github.com/omnihive/backend/internal/domain/ports"
	"github.com/omnihive/backend/pkg/auth"
)

// Config is the jwt worker metadata
type Config struct {
	ClientID      string
	Secret        string
	Audience      string
	ExpiresIn     time.Duration
	VerifyOn      bool
	HashAlgorithm string
}

// JWTWorker issues HS256 tokens and verifies them. The last issued token is
// reused until it expires.
type JWTWorker struct {
	issuer   *auth.Issuer
	verifyOn bool

	mu    sync.Mutex
	token string
}

// NewJWTWorker creates a token worker from its config
func NewJWTWorker(cfg Config) (*JWTWorker, error) {
	issuer, err := auth.NewIssuer(cfg.Secret, cfg.ClientID, cfg.Audience, cfg.ExpiresIn)
	if err != nil {
		return nil, err
	}
	return &JWTWorker{issuer: issuer, verifyOn: cfg.VerifyOn}, nil
}

// Get returns a valid access token, issuing a new one when needed
func (w *JWTWorker) Get(ctx context.Context) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.token != "" {
		if expired, err := w.issuer.Expired(w.token); err == nil && !expired {
			return w.token, nil
		}
	}
	tok, err := w.issuer.GenerateToken()
	if err != nil {
		return "", err
	}
	w.token = tok
	return tok, nil
}

// Verify checks a presented token. With verification off every token passes.
func (w *JWTWorker) Verify(ctx context.Context, token string) (bool, error) {
	if !w.verifyOn {
		return true, nil
	}
	if token == "" {
		return false, nil
	}
	if _, err := w.issuer.ValidateToken(token); err != nil {
		return false, err
	}
	return true, nil
}

// Expired reports whether a token is expired or belongs to another client
func (w *JWTWorker) Expired(ctx context.Context, token string) (bool, error) {
	return w.issuer.Expired(token)
}

var _ ports.TokenWorker = (*JWTWorker)(nil)
