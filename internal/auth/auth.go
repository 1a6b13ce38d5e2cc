// Package auth issues and validates the signed tokens of the API.
package auth

import (
	"context"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"

	"lunch/backend/internal/entity"
)

const (
	RoleAdmin    = entity.RoleAdmin
	RoleOperator = entity.RoleOperator
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"

	accessTTL  = 12 * time.Hour
	refreshTTL = 7 * 24 * time.Hour
)

type ctxKey int

// Key is how claims are stored in and retrieved from a context.
const Key ctxKey = 1

var ErrMissingClaims = errors.New("claims missing from context")

// Claims is the token payload.
type Claims struct {
	jwt.StandardClaims
	UserId   int    `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Type     string `json:"type"`
}

// Authorized reports whether the claims hold one of roles.
func (c Claims) Authorized(roles ...string) bool {
	for _, role := range roles {
		if c.Role == role {
			return true
		}
	}
	return false
}

type Auth struct {
	key    []byte
	method jwt.SigningMethod
	now    func() time.Time
}

func New(key string) (*Auth, error) {
	if len(key) < 16 {
		return nil, errors.New("jwt key must be at least 16 characters")
	}

	return &Auth{
		key:    []byte(key),
		method: jwt.SigningMethodHS256,
		now:    time.Now,
	}, nil
}

// GenerateTokens returns an access token and a refresh token for the user.
func (a *Auth) GenerateTokens(user entity.User, role string) (access string, refresh string, err error) {
	access, err = a.sign(user, role, TypeAccess, accessTTL)
	if err != nil {
		return "", "", err
	}

	refresh, err = a.sign(user, role, TypeRefresh, refreshTTL)
	if err != nil {
		return "", "", err
	}

	return access, refresh, nil
}

func (a *Auth) sign(user entity.User, role, typ string, ttl time.Duration) (string, error) {
	now := a.now()
	claims := Claims{
		StandardClaims: jwt.StandardClaims{
			Subject:   user.Username,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
			Issuer:    "lunch",
		},
		UserId:   user.ID,
		Username: user.Username,
		Role:     role,
		Type:     typ,
	}

	token, err := jwt.NewWithClaims(a.method, claims).SignedString(a.key)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}

	return token, nil
}

// ValidateToken parses an access token and returns its claims.
func (a *Auth) ValidateToken(tokenStr string) (Claims, error) {
	return a.parse(tokenStr, TypeAccess)
}

// ValidateRefreshToken parses a refresh token and returns its claims.
func (a *Auth) ValidateRefreshToken(tokenStr string) (Claims, error) {
	return a.parse(tokenStr, TypeRefresh)
}

func (a *Auth) parse(tokenStr, typ string) (Claims, error) {
	var claims Claims

	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != a.method.Alg() {
			return nil, errors.Errorf("unexpected signing method %s", t.Method.Alg())
		}
		return a.key, nil
	})
	if err != nil {
		return Claims{}, errors.Wrap(err, "parsing token")
	}
	if !token.Valid {
		return Claims{}, errors.New("invalid token")
	}
	if claims.Type != typ {
		return Claims{}, errors.Errorf("expected %s token", typ)
	}

	return claims, nil
}

// GetClaims returns the claims the Authenticate middleware stored in ctx.
func GetClaims(ctx context.Context) (Claims, error) {
	claims, ok := ctx.Value(Key).(Claims)
	if !ok {
		return Claims{}, ErrMissingClaims
	}
	return claims, nil
}
