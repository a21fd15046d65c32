package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carry the database id of the signed-in user. Subject holds the
// identity-provider id when one is known.
type Claims struct {
	UserID string `json:"userId"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type SessionManager struct {
	secret []byte
	expiry time.Duration
	issuer string
	now    func() time.Time
}

var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
)

func NewSessionManager(secret string, expiry time.Duration, issuer string) *SessionManager {
	return &SessionManager{
		secret: []byte(secret),
		expiry: expiry,
		issuer: issuer,
		now:    time.Now,
	}
}

func (m *SessionManager) Generate(userID, clerkID, role string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", ErrInvalidToken
	}

	now := m.now()
	claims := &Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   clerkID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *SessionManager) Validate(tokenString string) (*Claims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, ErrMissingToken
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	}, jwt.WithIssuer(m.issuer), jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func TokenFromHeader(authHeader string) (string, error) {
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(parts[1]), nil
}
