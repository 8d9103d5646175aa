package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type jwtClaims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// JWTCodec signs and parses HS256 tokens with golang-jwt. Its tokens are
// interchangeable with HMACCodec tokens under the same secret.
type JWTCodec struct {
	secret []byte
	parser *jwt.Parser
}

func NewJWTCodec(secret string) *JWTCodec {
	return &JWTCodec{
		secret: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
			jwt.WithStrictDecoding(),
		),
	}
}

func (c *JWTCodec) Sign(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtClaims{
		Username: claims.Username,
		Email:    claims.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.Subject,
			ExpiresAt: jwt.NewNumericDate(time.Unix(claims.ExpiresAt, 0)),
			IssuedAt:  jwt.NewNumericDate(time.Unix(claims.IssuedAt, 0)),
		},
	})
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (c *JWTCodec) Parse(token string) (Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return Claims{}, ErrMalformedToken
	}
	if _, err := signatureEncoding.DecodeString(parts[2]); err != nil {
		return Claims{}, ErrInvalidSignature
	}

	var parsed jwtClaims
	_, err := c.parser.ParseWithClaims(token, &parsed, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return Claims{}, ErrInvalidSignature
	case errors.Is(err, jwt.ErrTokenMalformed):
		return Claims{}, ErrMalformedClaims
	default:
		return Claims{}, ErrMalformedToken
	}

	out := Claims{
		Subject:  parsed.Subject,
		Username: parsed.Username,
		Email:    parsed.Email,
	}
	if parsed.ExpiresAt != nil {
		out.ExpiresAt = parsed.ExpiresAt.Unix()
	}
	if parsed.IssuedAt != nil {
		out.IssuedAt = parsed.IssuedAt.Unix()
	}
	return out, nil
}
