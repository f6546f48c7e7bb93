package auth

import (
	"time"

	"brokerage/config"
	"brokerage/internal/domain/entity"
	domainerrors "brokerage/internal/domain/errors"
	"brokerage/internal/domain/service"
	"brokerage/internal/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// jwtService is a concrete implementation of the TokenService interface using the JWT standard.
// Access and refresh tokens are signed with different secrets.
type jwtService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// NewJWTService is the constructor for jwtService.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	if cfg.SecretKey.Access == "" || cfg.SecretKey.Refresh == "" {
		return nil, errors.New("jwt secrets must be provided")
	}

	accessTTL, refreshTTL := 30*time.Minute, 7*24*time.Hour
	if cfg.Auth != nil {
		if cfg.Auth.AccessTokenTTL > 0 {
			accessTTL = cfg.Auth.AccessTokenTTL
		}
		if cfg.Auth.RefreshTokenTTL > 0 {
			refreshTTL = cfg.Auth.RefreshTokenTTL
		}
	}

	return &jwtService{
		accessSecret:  []byte(cfg.SecretKey.Access),
		refreshSecret: []byte(cfg.SecretKey.Refresh),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}, nil
}

func (s *jwtService) IssueAccess(userID uuid.UUID, email string, role entity.Role, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = s.accessTTL
	}
	claims := s.newClaims(userID, service.TokenTypeAccess, ttl)
	claims.Email = email
	claims.Role = role

	return s.sign(claims, s.accessSecret)
}

func (s *jwtService) IssueRefresh(userID uuid.UUID, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = s.refreshTTL
	}

	return s.sign(s.newClaims(userID, service.TokenTypeRefresh, ttl), s.refreshSecret)
}

// Decode verifies a token of either type. Every failure is ErrInvalidToken.
func (s *jwtService) Decode(tokenString string) (*service.Claims, error) {
	claims := &service.Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, s.keyFor,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, domainerrors.ErrInvalidToken.WithDetails(err.Error())
	}
	if _, err := claims.UserID(); err != nil {
		return nil, domainerrors.ErrInvalidToken.WithDetails("malformed subject")
	}

	return claims, nil
}

func (s *jwtService) DecodeAccess(tokenString string) (*service.Claims, error) {
	return s.decodeType(tokenString, service.TokenTypeAccess)
}

func (s *jwtService) DecodeRefresh(tokenString string) (*service.Claims, error) {
	return s.decodeType(tokenString, service.TokenTypeRefresh)
}

func (s *jwtService) AccessTTL() time.Duration  { return s.accessTTL }
func (s *jwtService) RefreshTTL() time.Duration { return s.refreshTTL }

func (s *jwtService) decodeType(tokenString, tokenType string) (*service.Claims, error) {
	claims, err := s.Decode(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Type != tokenType {
		return nil, domainerrors.ErrInvalidToken.WithDetails("unexpected token type " + claims.Type)
	}

	return claims, nil
}

// keyFor selects the secret from the unverified type claim; a token whose
// type was tampered with then fails signature verification.
func (s *jwtService) keyFor(token *jwt.Token) (any, error) {
	claims, ok := token.Claims.(*service.Claims)
	if !ok {
		return nil, jwt.ErrTokenInvalidClaims
	}
	switch claims.Type {
	case service.TokenTypeAccess:
		return s.accessSecret, nil
	case service.TokenTypeRefresh:
		return s.refreshSecret, nil
	default:
		return nil, jwt.ErrTokenInvalidClaims
	}
}

func (s *jwtService) newClaims(userID uuid.UUID, tokenType string, ttl time.Duration) *service.Claims {
	now := s.now()

	return &service.Claims{
		Type: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
}

func (s *jwtService) sign(claims *service.Claims, secret []byte) (string, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign token")
	}

	return signed, nil
}
