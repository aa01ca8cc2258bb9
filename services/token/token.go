// Package token signs and checks the JWTs handed to clients: short-lived
// access tokens, refresh tokens and password reset links.
package token

import (
	"fmt"
	"time"

	"nextlevel/services/apperr"

	"github.com/golang-jwt/jwt/v4"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
	TypeReset   = "reset"
)

const (
	DefaultAccessTTL  = 24 * time.Hour
	DefaultRefreshTTL = 7 * 24 * time.Hour
	DefaultResetTTL   = time.Hour
)

// Claims is the decoded payload of a verified token.
type Claims struct {
	Type   string
	UserID uint
	Role   string
	// Email and Stamp are only set on reset tokens.
	Email string
	Stamp string
}

type Signer struct {
	key        []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	resetTTL   time.Duration
}

// NewSigner returns a signer using HMAC-SHA256 with key. A zero TTL selects
// the default for that token type.
func NewSigner(key string, accessTTL, refreshTTL, resetTTL time.Duration) *Signer {
	if accessTTL == 0 {
		accessTTL = DefaultAccessTTL
	}
	if refreshTTL == 0 {
		refreshTTL = DefaultRefreshTTL
	}
	if resetTTL == 0 {
		resetTTL = DefaultResetTTL
	}
	return &Signer{key: []byte(key), accessTTL: accessTTL, refreshTTL: refreshTTL, resetTTL: resetTTL}
}

func (s *Signer) Access(userID uint, role string) (string, error) {
	return s.sign(jwt.MapClaims{"userId": userID, "role": role}, TypeAccess, s.accessTTL)
}

func (s *Signer) Refresh(userID uint, role string) (string, error) {
	return s.sign(jwt.MapClaims{"userId": userID, "role": role}, TypeRefresh, s.refreshTTL)
}

// Reset signs a password reset token for email. stamp ties the token to the
// password it was issued against, so it stops working once that changes.
func (s *Signer) Reset(email, stamp string) (string, error) {
	return s.sign(jwt.MapClaims{"sub": email, "pwd": stamp}, TypeReset, s.resetTTL)
}

func (s *Signer) sign(claims jwt.MapClaims, typ string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims["type"] = typ
	claims["iat"] = now.Unix()
	claims["exp"] = now.Add(ttl).Unix()

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
}

// Parse verifies raw and checks it is a token of type typ. Any failure is
// reported as apperr.ErrInvalidToken.
func (s *Signer) Parse(raw, typ string) (Claims, error) {
	parsed, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.key, nil
	})
	if err != nil || !parsed.Valid {
		return Claims{}, apperr.Wrap(apperr.ErrInvalidToken, err)
	}

	mc, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, apperr.ErrInvalidToken
	}
	out := Claims{}
	out.Type, _ = mc["type"].(string)
	if out.Type != typ {
		return Claims{}, apperr.ErrInvalidToken
	}

	if typ == TypeReset {
		out.Email, _ = mc["sub"].(string)
		out.Stamp, _ = mc["pwd"].(string)
		if out.Email == "" {
			return Claims{}, apperr.ErrInvalidToken
		}
		return out, nil
	}

	// JWT numbers decode as float64
	id, ok := mc["userId"].(float64)
	if !ok || id <= 0 {
		return Claims{}, apperr.ErrInvalidToken
	}
	out.UserID = uint(id)
	out.Role, _ = mc["role"].(string)
	return out, nil
}
