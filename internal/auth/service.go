package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/frahmantamala/erp-rbac/internal"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Service is the main auth service with dependencies
type Service struct {
	userRepo       RepositoryAPI
	tokenGenerator TokenGeneratorAPI
	bcryptCost     int
	logger         *slog.Logger
}

// NewService creates a new auth service. A non-positive cost uses bcrypt's default.
func NewService(userRepo RepositoryAPI, tokenGen TokenGeneratorAPI, bcryptCost int) *Service {
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		userRepo:       userRepo,
		tokenGenerator: tokenGen,
		bcryptCost:     bcryptCost,
		logger:         slog.Default(),
	}
}

func (s *Service) WithLogger(logger *slog.Logger) *Service {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// NewJWTTokenGenerator creates a new JWT token generator
func NewJWTTokenGenerator(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *JWTTokenGenerator {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 24 * 7 * time.Hour
	}
	return &JWTTokenGenerator{
		AccessTokenSecret:  []byte(accessSecret),
		RefreshTokenSecret: []byte(refreshSecret),
		AccessTokenTTL:     accessTTL,
		RefreshTokenTTL:    refreshTTL,
	}
}

// Authenticate validates credentials and returns tokens
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	creds, err := s.userRepo.GetCredentials(ctx, dto.Email)
	if err != nil {
		s.logger.Error("failed to load credentials", "error", err)
		return AuthTokens{}, internal.NewInternalError("failed to authenticate", err)
	}
	if creds == nil {
		return AuthTokens{}, internal.ErrInvalidCredentials
	}

	if err := VerifyPassword(creds.PasswordHash, dto.Password); err != nil {
		return AuthTokens{}, internal.ErrInvalidCredentials
	}
	if !creds.Active {
		return AuthTokens{}, internal.ErrUserInactive
	}

	s.logger.Info("user authenticated", "user_id", creds.ID)
	return s.issue(&creds.User)
}

// RefreshTokens validates a refresh token and rotates both tokens. The user
// is reloaded so a changed role or a deactivation takes effect.
func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error) {
	claims, err := s.tokenGenerator.ValidateRefreshToken(refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}

	userID, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil {
		return AuthTokens{}, internal.ErrInvalidToken
	}

	u, err := s.GetUser(ctx, userID)
	if err != nil {
		return AuthTokens{}, err
	}
	return s.issue(u)
}

// ValidateAccessToken validates access token and returns claims
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGenerator.ValidateAccessToken(tokenString)
}

// GetUser loads an active user.
func (s *Service) GetUser(ctx context.Context, userID int64) (*User, error) {
	u, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		s.logger.Error("failed to load user", "user_id", userID, "error", err)
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if u == nil {
		return nil, internal.ErrUserNotFound
	}
	if !u.Active {
		return nil, internal.ErrUserInactive
	}
	return u, nil
}

// HashPassword creates a bcrypt hash of the password
func (s *Service) HashPassword(password string) (string, error) {
	return HashPassword(password, s.bcryptCost)
}

func (s *Service) issue(u *User) (AuthTokens, error) {
	accessToken, err := s.tokenGenerator.GenerateAccessToken(u)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to generate token", err)
	}

	refreshToken, err := s.tokenGenerator.GenerateRefreshToken(u)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to generate token", err)
	}

	return AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// GenerateAccessToken creates a new access token
func (j *JWTTokenGenerator) GenerateAccessToken(u *User) (string, error) {
	return j.sign(u, tokenTypeAccess, j.AccessTokenTTL, j.AccessTokenSecret)
}

// GenerateRefreshToken creates a new refresh token
func (j *JWTTokenGenerator) GenerateRefreshToken(u *User) (string, error) {
	return j.sign(u, tokenTypeRefresh, j.RefreshTokenTTL, j.RefreshTokenSecret)
}

func (j *JWTTokenGenerator) ValidateAccessToken(tokenString string) (*Claims, error) {
	return j.validate(tokenString, tokenTypeAccess, j.AccessTokenSecret)
}

func (j *JWTTokenGenerator) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return j.validate(tokenString, tokenTypeRefresh, j.RefreshTokenSecret)
}

func (j *JWTTokenGenerator) sign(u *User, tokenType string, ttl time.Duration, secret []byte) (string, error) {
	now := time.Now()
	userID := strconv.FormatInt(u.ID, 10)

	jti, err := GenerateRandomToken()
	if err != nil {
		return "", err
	}

	claims := &Claims{
		UserID:    userID,
		Email:     u.Email,
		RoleID:    u.RoleID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func (j *JWTTokenGenerator) validate(tokenString, tokenType string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired
		}
		return nil, internal.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.TokenType != tokenType {
		return nil, internal.ErrInvalidToken
	}
	return claims, nil
}

// GenerateRandomToken generates a cryptographically secure random token
func GenerateRandomToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
