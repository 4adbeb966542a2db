package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"facturatie/internal/prefs"

	"github.com/golang-jwt/jwt/v5"
)

type authClaimsKey struct{}

// AuthClaims holds the authenticated user's identity extracted from the JWT,
// plus the raw token so it can be forwarded to the backend.
type AuthClaims struct {
	UserID    string
	CompanyID string
	Role      string
	Token     string
}

// Scope returns the preference scope of the user.
func (c *AuthClaims) Scope() prefs.Scope {
	return prefs.Scope{CompanyID: c.CompanyID, UserID: c.UserID}
}

// authFromContext returns the auth claims stored in ctx, or nil.
func authFromContext(ctx context.Context) *AuthClaims {
	v, _ := ctx.Value(authClaimsKey{}).(*AuthClaims)
	return v
}

// tokenFromContext returns the caller's bearer token, or empty string.
func tokenFromContext(ctx context.Context) string {
	if c := authFromContext(ctx); c != nil {
		return c.Token
	}
	return ""
}

// claimID accepts an identifier encoded as a JSON string or number.
type claimID string

func (id *claimID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = claimID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = claimID(n.String())
	return nil
}

// jwtClaims is the JWT payload issued by the boekhouding backend.
type jwtClaims struct {
	UserID    claimID `json:"user_id"`
	CompanyID claimID `json:"company_id"`
	Role      string  `json:"role"`
	jwt.RegisteredClaims
}

// bearerToken reads the token from the Authorization header, falling back to
// the auth_token cookie set by the web frontend.
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if cookie, err := r.Cookie("auth_token"); err == nil {
		return cookie.Value
	}
	return ""
}

// RequireAuth is chi middleware that validates the bearer token and injects
// AuthClaims into the request context. Returns 401 if the token is absent or invalid.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			writeError(w, r, "authentication required", "UNAUTHORIZED", http.StatusUnauthorized)
			return
		}

		claims := &jwtClaims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(h.jwtSecret), nil
		})
		if err != nil || !token.Valid {
			writeError(w, r, "invalid or expired token", "UNAUTHORIZED", http.StatusUnauthorized)
			return
		}

		userID := string(claims.UserID)
		if userID == "" {
			userID = claims.Subject
		}
		if userID == "" {
			writeError(w, r, "token has no user", "UNAUTHORIZED", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), authClaimsKey{}, &AuthClaims{
			UserID:    userID,
			CompanyID: string(claims.CompanyID),
			Role:      claims.Role,
			Token:     raw,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
