package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	appctx "trackiq/internal/core/context"
	"trackiq/internal/core/id"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// JWTConfig configures access token signing.
type JWTConfig struct {
	Secret         string
	Issuer         string
	AccessTokenTTL time.Duration
	// Leeway absorbs clock skew between the API replicas.
	Leeway time.Duration
}

// DefaultJWTConfig returns a 24h HS256 configuration for secret.
func DefaultJWTConfig(secret string) JWTConfig {
	return JWTConfig{
		Secret:         secret,
		Issuer:         "trackiq",
		AccessTokenTTL: 24 * time.Hour,
		Leeway:         30 * time.Second,
	}
}

// Claims is the access token payload.
type Claims struct {
	jwt.RegisteredClaims
	Email       string   `json:"email"`
	Username    string   `json:"usr"`
	Role        string   `json:"role"`
	Permissions []string `json:"perms,omitempty"`
	IsAdmin     bool     `json:"adm,omitempty"`
}

// JWTService signs and verifies access tokens.
type JWTService struct {
	config JWTConfig
	parser *jwt.Parser
	now    func() time.Time
}

func NewJWTService(config JWTConfig) *JWTService {
	s := &JWTService{config: config, now: time.Now}
	s.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(config.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(config.Leeway),
		jwt.WithTimeFunc(func() time.Time { return s.now() }),
	)
	return s
}

// GenerateAccessToken signs a token carrying the user's role and grants.
// The user id travels as the subject.
func (s *JWTService) GenerateAccessToken(u *User) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.config.AccessTokenTTL)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id.New().String(),
			Issuer:    s.config.Issuer,
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Email:       u.Email,
		Username:    u.Username,
		Role:        string(u.Role),
		Permissions: u.Grants.Strings(),
		IsAdmin:     u.IsAdmin(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ValidateToken verifies a token and returns the caller it names.
// Failures wrap ErrTokenExpired or ErrTokenInvalid.
func (s *JWTService) ValidateToken(raw string) (*appctx.UserContext, error) {
	var claims Claims
	_, err := s.parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return []byte(s.config.Secret), nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	case claims.Subject == "":
		return nil, fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}

	return &appctx.UserContext{
		UserID:      claims.Subject,
		Email:       claims.Email,
		Username:    claims.Username,
		Role:        claims.Role,
		Permissions: claims.Permissions,
		IsAdmin:     claims.IsAdmin,
	}, nil
}
