package model

import "github.com/golang-jwt/jwt/v5"

// AdminClaims are JWT claims for an admin dashboard session
type AdminClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenResponse is returned after a successful token request
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
}

// SubmitResponse is returned after a submission is stored
type SubmitResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}
