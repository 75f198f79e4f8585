package middleware

import (
	"cardiostent/internal/service"
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

type contextKey string

// credentialSource limits which credentials a guarded route accepts
type credentialSource int

const (
	basicOrBearer credentialSource = iota
	basicBearerOrQuery
	basicOnly
)

const AdminKey contextKey = "admin"

// AuthChallenge is the body of every 401 response on admin routes
const AuthChallenge = "Authentication required. Use PIN or Password provided."

// AuthMiddleware guards the admin routes. It accepts HTTP Basic credentials
// or a session token issued by POST /admin/token.
type AuthMiddleware struct {
	authSvc *service.AuthService
	log     *zap.Logger
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(authSvc *service.AuthService, log *zap.Logger) *AuthMiddleware {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthMiddleware{authSvc: authSvc, log: log}
}

// RequireAdmin validates Basic credentials or a Bearer token
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return m.require(next, basicOrBearer)
}

// RequireAdminWS also accepts the token as ?token= since browsers cannot set
// headers on websocket upgrades
func (m *AuthMiddleware) RequireAdminWS(next http.Handler) http.Handler {
	return m.require(next, basicBearerOrQuery)
}

// RequireBasic accepts only Basic credentials, so an issued token cannot
// be exchanged for a fresh one
func (m *AuthMiddleware) RequireBasic(next http.Handler) http.Handler {
	return m.require(next, basicOnly)
}

func (m *AuthMiddleware) require(next http.Handler, src credentialSource) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, ok := m.authenticate(r, src)
		if !ok {
			m.log.Info("admin auth rejected",
				zap.String("path", r.URL.Path),
				zap.String("remote", r.RemoteAddr),
			)
			Challenge(w)
			return
		}

		ctx := context.WithValue(r.Context(), AdminKey, username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) authenticate(r *http.Request, src credentialSource) (string, bool) {
	token := extractBearerToken(r)
	if token == "" && src == basicBearerOrQuery {
		token = r.URL.Query().Get("token")
	}
	if token != "" {
		if src == basicOnly {
			return "", false
		}
		claims, err := m.authSvc.ValidateToken(token)
		if err != nil {
			return "", false
		}
		return claims.Username, true
	}

	username, password, ok := r.BasicAuth()
	if !ok {
		return "", false
	}
	if err := m.authSvc.CheckBasic(username, password); err != nil {
		return "", false
	}
	return username, true
}

// Challenge writes the 401 response asking the browser for Basic credentials
func Challenge(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="401"`)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(AuthChallenge))
}

// GetAdmin extracts the authenticated admin username from context
func GetAdmin(ctx context.Context) string {
	if v, ok := ctx.Value(AdminKey).(string); ok {
		return v
	}
	return ""
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
