package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

var (
	ErrMalformedToken   = errors.New("token must have exactly three segments")
	ErrInvalidSignature = errors.New("token signature is invalid")
	ErrMalformedClaims  = errors.New("token claims could not be decoded")
	ErrTokenExpired     = errors.New("token has expired")
	ErrInvalidSubject   = errors.New("token subject is not a numeric user id")
)

// TokenConfig is everything the token service needs; it is never read from
// the environment directly.
type TokenConfig struct {
	Secret      string
	ExpireHours int
}

// Claims is the payload carried by every issued token.
type Claims struct {
	Subject   string `json:"sub"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	ExpiresAt int64  `json:"exp"`
	IssuedAt  int64  `json:"iat"`
}

// SigningCodec turns claims into a signed compact token and back. Parse
// checks structure and signature only; time validity is the service's job.
type SigningCodec interface {
	Sign(claims Claims) (string, error)
	Parse(token string) (Claims, error)
}

// NewSigningCodec picks the codec named in configuration.
func NewSigningCodec(kind, secret string) (SigningCodec, error) {
	switch kind {
	case "", "hmac":
		return NewHMACCodec(secret), nil
	case "jwt":
		return NewJWTCodec(secret), nil
	}
	return nil, fmt.Errorf("unknown token codec %q", kind)
}

type TokenService struct {
	codec SigningCodec
	ttl   time.Duration
	now   func() time.Time
}

// NewTokenService builds a token service. A nil codec means the built-in
// HMAC-SHA256 codec keyed with cfg.Secret.
func NewTokenService(cfg TokenConfig, codec SigningCodec) *TokenService {
	if codec == nil {
		codec = NewHMACCodec(cfg.Secret)
	}
	hours := cfg.ExpireHours
	if hours <= 0 {
		hours = 24
	}
	return &TokenService{
		codec: codec,
		ttl:   time.Duration(hours) * time.Hour,
		now:   time.Now,
	}
}

// WithClock replaces the time source, for tests.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	s.now = now
	return s
}

// ExpiresIn is the token lifetime in seconds.
func (s *TokenService) ExpiresIn() int64 {
	return int64(s.ttl / time.Second)
}

func (s *TokenService) Issue(userID int64, username, email string) (string, error) {
	issuedAt := s.now().Unix()
	return s.codec.Sign(Claims{
		Subject:   strconv.FormatInt(userID, 10),
		Username:  username,
		Email:     email,
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt + s.ExpiresIn(),
	})
}

func (s *TokenService) Verify(token string) (*Claims, error) {
	claims, err := s.codec.Parse(token)
	if err != nil {
		return nil, err
	}
	if s.now().Unix() >= claims.ExpiresAt {
		return nil, ErrTokenExpired
	}
	return &claims, nil
}

func (s *TokenService) ExtractUserID(token string) (int64, error) {
	claims, err := s.Verify(token)
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalidSubject
	}
	return id, nil
}
