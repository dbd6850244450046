package app

import (
	"fmt"
	"strconv"
	"time"

	"campus-quiz-service/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the identity a verified token proves: who the caller is and
// which role they held when the token was issued.
type Claims struct {
	UserID int64
	Role   string
}

// TokenManager issues and verifies HS256 identity tokens. The user id is
// the subject, the role travels as a claim.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	clock  func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, clock: time.Now}
}

func (m *TokenManager) Issue(userID int64, role string) (string, error) {
	now := m.clock()
	claims := jwt.MapClaims{
		"sub":  strconv.FormatInt(userID, 10),
		"role": role,
		"iat":  now.Unix(),
		"exp":  now.Add(m.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (m *TokenManager) Parse(raw string) (Claims, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.clock))
	if err != nil || !token.Valid {
		return Claims{}, domain.ErrInvalidToken
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, domain.ErrInvalidToken
	}
	sub, _ := mapClaims["sub"].(string)
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return Claims{}, domain.ErrInvalidToken
	}
	role, _ := mapClaims["role"].(string)
	if role == "" {
		return Claims{}, domain.ErrInvalidToken
	}
	return Claims{UserID: userID, Role: role}, nil
}
