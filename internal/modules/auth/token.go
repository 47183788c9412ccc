package auth

import (
	"errors"
	"time"

	"github.com/dgrijalva/jwt-go"

	"github.com/georgemunganga/nota-backend/internal/apperr"
	"github.com/georgemunganga/nota-backend/internal/modules/tenant"
)

// ErrTokenExpired is returned by Verify for a well-signed but expired token.
var ErrTokenExpired = errors.New("token has expired")

// Claims is the token payload.
type Claims struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.StandardClaims
}

// Tokens issues and verifies HS256 tenant tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (t *Tokens) Issue(id tenant.Identity) (string, error) {
	now := t.now()
	claims := &Claims{
		UserID:   id.TenantID,
		Username: id.Username,
		Role:     id.Role,
		StandardClaims: jwt.StandardClaims{
			Subject:   id.TenantID,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(t.ttl).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", apperr.Storage("failed to sign token", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry and returns the identity the token
// carries.
func (t *Tokens) Verify(raw string) (tenant.Identity, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return t.secret, nil
	})
	if err != nil {
		var verr *jwt.ValidationError
		if errors.As(err, &verr) && verr.Errors&jwt.ValidationErrorExpired != 0 {
			return tenant.Identity{}, ErrTokenExpired
		}
		return tenant.Identity{}, apperr.Unauthorized("invalid token")
	}
	if !tenant.ValidID(claims.UserID) {
		return tenant.Identity{}, apperr.Unauthorized("invalid token")
	}
	return tenant.Identity{TenantID: claims.UserID, Username: claims.Username, Role: claims.Role}, nil
}
