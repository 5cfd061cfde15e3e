package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/stoicjournal/stoic/internal/ctxkeys"
	"github.com/stoicjournal/stoic/internal/model"
	"github.com/stoicjournal/stoic/internal/respond"
	"github.com/stoicjournal/stoic/internal/service"
)

// Authenticator resolves tokens to users. *service.AuthService implements it.
type Authenticator interface {
	VerifyJWT(token string) (string, error)
	User(ctx context.Context, id string) (*model.User, error)
	ClearJWTCookie(w http.ResponseWriter)
}

// AuthMiddleware attaches the user to the context when the request carries a
// valid JWT, either as "Authorization: Bearer" or in the auth cookie.
// Requests without a valid token continue unauthenticated.
func AuthMiddleware(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, method := tokenFromRequest(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := auth.VerifyJWT(token)
			if err != nil {
				if method == ctxkeys.AuthMethodCookie {
					auth.ClearJWTCookie(w)
				}
				next.ServeHTTP(w, r)
				return
			}

			// Token may outlive the account.
			user, err := auth.User(r.Context(), userID)
			if err != nil {
				if method == ctxkeys.AuthMethodCookie {
					auth.ClearJWTCookie(w)
				}
				next.ServeHTTP(w, r)
				return
			}

			user.PasswordHash = ""

			ctx := ctxkeys.WithUser(r.Context(), user)
			ctx = ctxkeys.WithAuthMethod(ctx, method)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// tokenFromRequest prefers the Authorization header over the cookie.
func tokenFromRequest(r *http.Request) (string, string) {
	header := r.Header.Get("Authorization")
	if scheme, token, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "Bearer") {
		if token = strings.TrimSpace(token); token != "" {
			return token, ctxkeys.AuthMethodBearer
		}
	}

	cookie, err := r.Cookie(service.AuthCookieName)
	if err == nil && cookie.Value != "" {
		return cookie.Value, ctxkeys.AuthMethodCookie
	}

	return "", ""
}

// RequireAuth rejects unauthenticated requests with 401.
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctxkeys.User(r.Context()) == nil {
			respond.Error(w, http.StatusUnauthorized, respond.CodeUnauthorized, "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	}
}

// RequireGuest rejects requests that are already authenticated.
func RequireGuest(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctxkeys.User(r.Context()) != nil {
			respond.Error(w, http.StatusForbidden, respond.CodeForbidden, "Already authenticated")
			return
		}
		next.ServeHTTP(w, r)
	}
}
