package service

import (
	"fmt"
	"time"

	"remitchat/internal/core/ports"
	"remitchat/pkg/apperror"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTTokenService implements ports.TokenService using HS256 JWT.
// Tokens are minted by the account subsystem; this service shares its
// secret and issuer so it can validate them locally.
type JWTTokenService struct {
	secret []byte
	issuer string
}

// NewJWTTokenService creates a new JWT token service.
func NewJWTTokenService(secret, issuer string) *JWTTokenService {
	return &JWTTokenService{secret: []byte(secret), issuer: issuer}
}

// Generate creates a signed JWT for the given user.
func (s *JWTTokenService) Generate(userID uuid.UUID, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": userID.String(),
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
		"iss": s.issuer,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return tokenString, nil
}

// Validate parses and validates a bearer token, returning the claims.
func (s *JWTTokenService) Validate(tokenString string) (*ports.TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, apperror.ErrInvalidToken(err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, apperror.ErrInvalidToken(fmt.Errorf("invalid token claims"))
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return nil, apperror.ErrInvalidToken(fmt.Errorf("missing subject claim"))
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, apperror.ErrInvalidToken(fmt.Errorf("invalid user id in token: %w", err))
	}

	return &ports.TokenClaims{UserID: userID}, nil
}
