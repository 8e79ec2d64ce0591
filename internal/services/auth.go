package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mindmirror/mindmirror-backend/internal/platform/ctxutil"
	"github.com/mindmirror/mindmirror-backend/internal/platform/logger"
)

var (
	ErrMissingToken = errors.New("missing or invalid token")
	ErrInvalidToken = errors.New("invalid or expired token")
)

// JWTClaims is what the external auth module signs. Subject carries the
// caller's owner id.
type JWTClaims struct {
	jwt.RegisteredClaims
}

// AuthService verifies bearer tokens. Issuing them belongs to a separate
// service; IssueToken exists for tooling and tests.
type AuthService interface {
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	IssueToken(ownerID string, ttl time.Duration) (string, error)
}

type authService struct {
	log          *logger.Logger
	jwtSecretKey string
	leeway       time.Duration
}

func NewAuthService(log *logger.Logger, jwtSecretKey string) AuthService {
	serviceLog := log.With("service", "AuthService")
	return &authService{
		log:          serviceLog,
		jwtSecretKey: jwtSecretKey,
		leeway:       30 * time.Second,
	}
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return ctx, ErrMissingToken
	}
	if as.jwtSecretKey == "" {
		return ctx, fmt.Errorf("%w: server has no signing key", ErrInvalidToken)
	}

	parsedToken, err := jwt.ParseWithClaims(
		tokenString,
		&JWTClaims{},
		func(token *jwt.Token) (interface{}, error) {
			return []byte(as.jwtSecretKey), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(as.leeway),
	)
	if err != nil {
		as.log.Debug("token rejected", "error", err)
		return ctx, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := parsedToken.Claims.(*JWTClaims)
	if !ok || !parsedToken.Valid {
		return ctx, ErrInvalidToken
	}
	ownerID := strings.TrimSpace(claims.Subject)
	if ownerID == "" {
		return ctx, fmt.Errorf("%w: token has no subject", ErrInvalidToken)
	}

	rd := &ctxutil.RequestData{
		TokenString: tokenString,
		UserID:      ownerID,
	}
	return ctxutil.WithRequestData(ctx, rd), nil
}

func (as *authService) IssueToken(ownerID string, ttl time.Duration) (string, error) {
	if strings.TrimSpace(ownerID) == "" {
		return "", fmt.Errorf("owner id required")
	}
	if as.jwtSecretKey == "" {
		return "", fmt.Errorf("missing JWT_SECRET_KEY")
	}
	now := time.Now()
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   ownerID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}
