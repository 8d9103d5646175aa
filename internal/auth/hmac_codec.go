package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

var segmentEncoding = base64.RawURLEncoding

// signatureEncoding refuses non-canonical encodings so that every change to
// the signature segment changes the decoded bytes.
var signatureEncoding = base64.RawURLEncoding.Strict()

type tokenHeader struct {
	Alg string `json:"alg"`
	Typ string `json:"typ"`
}

var hs256Header = tokenHeader{Alg: "HS256", Typ: "JWT"}

// HMACCodec is the built-in HS256 codec.
type HMACCodec struct {
	secret []byte
}

func NewHMACCodec(secret string) *HMACCodec {
	return &HMACCodec{secret: []byte(secret)}
}

func (c *HMACCodec) Sign(claims Claims) (string, error) {
	header, err := json.Marshal(hs256Header)
	if err != nil {
		return "", fmt.Errorf("encode token header: %w", err)
	}
	payload, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("encode token claims: %w", err)
	}

	signingInput := segmentEncoding.EncodeToString(header) + "." + segmentEncoding.EncodeToString(payload)
	return signingInput + "." + signatureEncoding.EncodeToString(c.mac(signingInput)), nil
}

func (c *HMACCodec) Parse(token string) (Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return Claims{}, ErrMalformedToken
	}

	signature, err := signatureEncoding.DecodeString(parts[2])
	if err != nil {
		return Claims{}, ErrInvalidSignature
	}
	if !hmac.Equal(signature, c.mac(parts[0]+"."+parts[1])) {
		return Claims{}, ErrInvalidSignature
	}

	var header tokenHeader
	raw, err := segmentEncoding.DecodeString(parts[0])
	if err != nil || json.Unmarshal(raw, &header) != nil || header.Alg != hs256Header.Alg {
		return Claims{}, ErrMalformedToken
	}

	var claims Claims
	raw, err = segmentEncoding.DecodeString(parts[1])
	if err != nil {
		return Claims{}, ErrMalformedClaims
	}
	if err := json.Unmarshal(raw, &claims); err != nil {
		return Claims{}, ErrMalformedClaims
	}
	return claims, nil
}

func (c *HMACCodec) mac(signingInput string) []byte {
	h := hmac.New(sha256.New, c.secret)
	h.Write([]byte(signingInput))
	return h.Sum(nil)
}
