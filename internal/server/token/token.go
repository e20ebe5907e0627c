// Package token выпускает и проверяет три независимых вида JWT:
// access, refresh и reset. У каждого вида свой секрет и свое время жизни,
// поэтому утечка секрета одного вида не позволяет подделать токены другого.
// Токены нигде не хранятся: валидность определяется только подписью и exp.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Ошибки проверки токена.
// ErrTokenExpired отделен от ErrTokenInvalid только для flow сброса пароля,
// остальные пути схлопывают обе ошибки в generic 401.
var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")
)

// Claims представляет JWT claims access и refresh токенов
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Config содержит секреты и время жизни для каждого вида токена
type Config struct {
	AccessSecret  []byte
	RefreshSecret []byte
	ResetSecret   []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	ResetTTL      time.Duration
}

// Service выпускает и проверяет токены всех трех видов
type Service struct {
	cfg Config
}

// NewService создает новый token service.
// Секреты должны быть заданы и различны между видами (проверяется в config).
func NewService(cfg Config) *Service {
	return &Service{cfg: cfg}
}

// IssueAccess создает короткоживущий access token с claims {user_id, email, role}
func (s *Service) IssueAccess(userID, email, role string) (string, error) {
	return s.issue(userID, email, role, s.cfg.AccessSecret, s.cfg.AccessTTL)
}

// IssueRefresh создает долгоживущий refresh token с той же формой claims
func (s *Service) IssueRefresh(userID, email, role string) (string, error) {
	return s.issue(userID, email, role, s.cfg.RefreshSecret, s.cfg.RefreshTTL)
}

// IssueReset создает токен сброса пароля. Subject = email пользователя,
// других claims нет.
func (s *Service) IssueReset(email string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   email,
		ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.ResetTTL)),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.cfg.ResetSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign reset token: %w", err)
	}
	return signed, nil
}

// VerifyAccess проверяет access token и возвращает его claims
func (s *Service) VerifyAccess(tokenString string) (*Claims, error) {
	return s.verify(tokenString, s.cfg.AccessSecret)
}

// VerifyRefresh проверяет refresh token и возвращает его claims
func (s *Service) VerifyRefresh(tokenString string) (*Claims, error) {
	return s.verify(tokenString, s.cfg.RefreshSecret)
}

// VerifyReset проверяет reset token и возвращает email из subject
func (s *Service) VerifyReset(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}

	t, err := jwt.ParseWithClaims(tokenString, claims, s.keyFunc(s.cfg.ResetSecret))
	if err != nil {
		return "", classify(err)
	}
	if !t.Valid || claims.Subject == "" {
		return "", ErrTokenInvalid
	}

	return claims.Subject, nil
}

// issue подписывает claims секретом вида и проставляет exp = now + ttl
func (s *Service) issue(userID, email, role string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "electrosoft-auth",
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

func (s *Service) verify(tokenString string, secret []byte) (*Claims, error) {
	claims := &Claims{}

	t, err := jwt.ParseWithClaims(tokenString, claims, s.keyFunc(secret))
	if err != nil {
		return nil, classify(err)
	}
	if !t.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

// keyFunc возвращает секрет вида и отклоняет любой не-HMAC алгоритм
func (s *Service) keyFunc(secret []byte) jwt.Keyfunc {
	return func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	}
}

// classify сводит ошибки библиотеки к двум видам:
// истекший exp и все остальное (битая подпись, чужой секрет, мусор)
func classify(err error) error {
	if errors.Is(err, jwt.ErrTokenExpired) {
		return ErrTokenExpired
	}
	return ErrTokenInvalid
}
