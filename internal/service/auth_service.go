package service

import (
	"cardiostent/internal/config"
	"cardiostent/internal/model"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = fmt.Errorf("invalid username or password: %w", model.ErrUnauthorized)
	ErrInvalidToken       = fmt.Errorf("invalid or expired token: %w", model.ErrUnauthorized)
)

const tokenIssuer = "cardiostent"

// AuthService checks admin credentials and issues dashboard session tokens
type AuthService struct {
	username  string
	secrets   []string
	jwtSecret []byte
	ttl       time.Duration
	clock     Clock
}

// NewAuthService creates a new auth service. A random signing key is
// generated when none is configured, so tokens do not survive a restart.
func NewAuthService(cfg config.AuthConfig, clock Clock) (*AuthService, error) {
	if clock == nil {
		clock = SystemClock{}
	}
	key := []byte(cfg.JWTSecret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate signing key: %w", err)
		}
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}

	secrets := make([]string, 0, len(cfg.Secrets))
	for _, s := range cfg.Secrets {
		if s != "" {
			secrets = append(secrets, s)
		}
	}

	return &AuthService{
		username:  cfg.Username,
		secrets:   secrets,
		jwtSecret: key,
		ttl:       ttl,
		clock:     clock,
	}, nil
}

// HasSecrets returns false when no admin secret is configured and every login will fail
func (s *AuthService) HasSecrets() bool {
	return len(s.secrets) > 0
}

// CheckBasic validates a username and any of the configured secrets
func (s *AuthService) CheckBasic(username, password string) error {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1

	passOK := false
	for _, secret := range s.secrets {
		if matchSecret(secret, password) {
			passOK = true
		}
	}
	if !userOK || !passOK {
		return ErrInvalidCredentials
	}
	return nil
}

// matchSecret compares password against a plain or bcrypt-hashed secret
func matchSecret(secret, password string) bool {
	if isBcryptHash(secret) {
		return bcrypt.CompareHashAndPassword([]byte(secret), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(secret), []byte(password)) == 1
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}

// IssueToken signs a session token for an authenticated admin
func (s *AuthService) IssueToken(username string) (*model.TokenResponse, error) {
	now := s.clock.Now()
	expires := now.Add(s.ttl)
	claims := &model.AdminClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}

	return &model.TokenResponse{
		Token:     tokenString,
		ExpiresAt: expires.Unix(),
	}, nil
}

// ValidateToken validates an admin JWT and returns its claims
func (s *AuthService) ValidateToken(tokenString string) (*model.AdminClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.AdminClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("token expired: %w", ErrInvalidToken)
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.AdminClaims)
	if !ok || !token.Valid || claims.Username != s.username {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
