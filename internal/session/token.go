package session

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"delrio-stay/internal/model"
)

// Claims are the identity fields read from a session token. Any of them but
// ExpiresAt may be empty.
type Claims struct {
	ID        string
	Subject   string
	Email     string
	Role      string
	FirstName string
	LastName  string
	ExpiresAt time.Time
}

// TokenDecoder reads backend issued JWTs. Without a secret the signature is
// not checked, so the claims only drive what the UI shows; the backend still
// authorizes every call on its own.
type TokenDecoder struct {
	secret []byte
	now    func() time.Time
}

func NewTokenDecoder(secret string) *TokenDecoder {
	d := &TokenDecoder{now: time.Now}
	if secret != "" {
		d.secret = []byte(secret)
	}
	return d
}

// Verifies reports whether signatures are checked.
func (d *TokenDecoder) Verifies() bool {
	return len(d.secret) > 0
}

// Decode fails with model.ErrInvalidToken for unparsable tokens, tokens
// without exp and tokens whose exp is not after now.
func (d *TokenDecoder) Decode(raw string) (Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Claims{}, model.ErrInvalidToken
	}

	claims := jwt.MapClaims{}
	if d.Verifies() {
		parser := jwt.NewParser(
			jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
			jwt.WithoutClaimsValidation(),
		)
		if _, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
			return d.secret, nil
		}); err != nil {
			return Claims{}, fmt.Errorf("%w: %w", model.ErrInvalidToken, err)
		}
	} else {
		if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
			return Claims{}, fmt.Errorf("%w: %w", model.ErrInvalidToken, err)
		}
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return Claims{}, fmt.Errorf("%w: missing exp", model.ErrInvalidToken)
	}
	if !d.now().Before(exp.Time) {
		return Claims{}, fmt.Errorf("%w: expired at %s", model.ErrInvalidToken, exp.Time.Format(time.RFC3339))
	}

	return Claims{
		ID:        claimString(claims, "id"),
		Subject:   claimString(claims, "sub"),
		Email:     claimString(claims, "email"),
		Role:      claimString(claims, "role"),
		FirstName: claimString(claims, "firstName"),
		LastName:  claimString(claims, "lastName"),
		ExpiresAt: exp.Time,
	}, nil
}

func claimString(claims jwt.MapClaims, key string) string {
	switch v := claims[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}
