package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/omnihive/backend/pkg/utils"
)

// Claims represents access token claims. AuthorizedParty carries the client id.
type Claims struct {
	AuthorizedParty string `json:"azp"`
	jwt.RegisteredClaims
}

// Issuer signs and validates HS256 access tokens for one client
type Issuer struct {
	secret   []byte
	clientID string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

// NewIssuer creates an issuer. ttl defaults to 24h.
func NewIssuer(secret, clientID, audience string, ttl time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, errors.New("token secret is required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Issuer{secret: []byte(secret), clientID: clientID, audience: audience, ttl: ttl, now: time.Now}, nil
}

// GenerateToken creates a signed access token
func (i *Issuer) GenerateToken() (string, error) {
	now := i.now()
	claims := &Claims{
		AuthorizedParty: i.clientID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        utils.GenerateID(),
		},
	}
	if i.audience != "" {
		claims.Audience = jwt.ClaimStrings{i.audience}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// ValidateToken validates signature, expiry, audience and client of a token
func (i *Issuer) ValidateToken(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithTimeFunc(i.now), jwt.WithExpirationRequired()}
	if i.audience != "" {
		opts = append(opts, jwt.WithAudience(i.audience))
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return i.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.AuthorizedParty != i.clientID {
		return nil, errors.New("token was issued to another client")
	}
	return claims, nil
}

// Expired reports whether a token is past its expiry or issued to another
// client. The signature is not checked.
func (i *Issuer) Expired(tokenString string) (bool, error) {
	claims, err := DecodeToken(tokenString)
	if err != nil {
		return true, err
	}
	if claims.AuthorizedParty != i.clientID || claims.ExpiresAt == nil {
		return true, nil
	}
	return i.now().After(claims.ExpiresAt.Time), nil
}

// DecodeToken decodes a token without validation
func DecodeToken(tokenString string) (*Claims, error) {
	token, _, err := new(jwt.Parser).ParseUnverified(tokenString, &Claims{})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok {
		return claims, nil
	}

	return nil, errors.New("invalid token claims")
}
