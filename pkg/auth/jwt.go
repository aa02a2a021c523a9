package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrMissingSecret = errors.New("jwt signing secret is not configured")
	ErrInvalidToken  = errors.New("invalid token")
)

const refreshTokenType = "refresh"

// TokenPair carries a freshly minted access/refresh token pair. Pairs are
// never persisted; they are reconstructed from the signing secrets on
// every login or refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AccessClaims are the claims embedded in access tokens.
type AccessClaims struct {
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role"`
	jwt.RegisteredClaims
}

// RefreshClaims are the claims embedded in refresh tokens. The token type
// marker stops an access token from being replayed against the refresh
// endpoint even if the two secrets were ever set to the same value.
type RefreshClaims struct {
	UserID    uuid.UUID `json:"user_id"`
	TokenType string    `json:"token_type"`
	jwt.RegisteredClaims
}

// JWTService mints and verifies signed token pairs.
type JWTService interface {
	IssueTokenPair(userID uuid.UUID, role string) (*TokenPair, error)
	ValidateAccessToken(token string) (*AccessClaims, error)
	ValidateRefreshToken(token string) (*RefreshClaims, error)
}

// Config holds the two independent signing secrets and lifetimes.
type Config struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

type jwtService struct {
	cfg Config
}

// NewJWTService builds the token issuer. Absent secrets are a hard error
// so a misconfigured process fails at startup, not at first use.
func NewJWTService(cfg Config) (JWTService, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, ErrMissingSecret
	}
	if cfg.AccessTTL == 0 {
		cfg.AccessTTL = 24 * time.Hour
	}
	if cfg.RefreshTTL == 0 {
		cfg.RefreshTTL = 7 * 24 * time.Hour
	}
	return &jwtService{cfg: cfg}, nil
}

func (s *jwtService) IssueTokenPair(userID uuid.UUID, role string) (*TokenPair, error) {
	now := time.Now()

	access := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.AccessTTL)),
		},
	})
	accessToken, err := access.SignedString([]byte(s.cfg.AccessSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refresh := jwt.NewWithClaims(jwt.SigningMethodHS256, RefreshClaims{
		UserID:    userID,
		TokenType: refreshTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.RefreshTTL)),
		},
	})
	refreshToken, err := refresh.SignedString([]byte(s.cfg.RefreshSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (s *jwtService) ValidateAccessToken(token string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := s.parse(token, claims, s.cfg.AccessSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

// ValidateRefreshToken collapses signature and expiry failures into the
// one ErrInvalidToken so callers cannot tell which check failed.
func (s *jwtService) ValidateRefreshToken(token string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := s.parse(token, claims, s.cfg.RefreshSecret); err != nil {
		return nil, err
	}
	if claims.TokenType != refreshTokenType {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *jwtService) parse(token string, claims jwt.Claims, secret string) error {
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		return ErrInvalidToken
	}
	return nil
}
