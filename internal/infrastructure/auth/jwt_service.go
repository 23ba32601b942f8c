package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/saradorri/edrewards/internal/config"
	"github.com/saradorri/edrewards/internal/domain"
)

const issuer = "ed-rewards"

// ErrUnknownRole is returned for tokens whose role is neither user nor admin
var ErrUnknownRole = errors.New("token carries an unknown role")

// Claims is the session of an authenticated user
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// JWTService issues and verifies session tokens
type JWTService interface {
	GenerateToken(user *domain.User) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

type jwtService struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

// NewJWTService creates an HS256 token service
func NewJWTService(cfg *config.JWTConfig) JWTService {
	return &jwtService{secret: []byte(cfg.Secret), expiry: cfg.Expiry, now: time.Now}
}

// GenerateToken signs a token carrying the user's id and stored role
func (j *jwtService) GenerateToken(user *domain.User) (string, error) {
	now := j.now()
	claims := &Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(j.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   user.ID,
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
}

// ValidateToken verifies signature, issuer, expiry and role of a token
func (j *jwtService) ValidateToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return j.secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims.UserID == "" || claims.Subject != claims.UserID {
		return nil, errors.New("invalid token: subject mismatch")
	}
	switch domain.UserRole(claims.Role) {
	case domain.RoleUser, domain.RoleAdmin:
	default:
		return nil, fmt.Errorf("invalid token: %w", ErrUnknownRole)
	}

	return claims, nil
}
