package ctxkeys

import (
	"context"

	"github.com/stoicjournal/stoic/internal/config"
	"github.com/stoicjournal/stoic/internal/model"
)

type contextKey string

const (
	UserKey       contextKey = "user"
	AuthMethodKey contextKey = "auth_method"
	ConfigKey     contextKey = "config"
	CSRFTokenKey  contextKey = "csrf_token"
)

// How the request proved its identity.
const (
	AuthMethodCookie = "cookie"
	AuthMethodBearer = "bearer"
)

func User(ctx context.Context) *model.User {
	user, _ := ctx.Value(UserKey).(*model.User)
	return user
}

func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

// UserID is empty for unauthenticated requests.
func UserID(ctx context.Context) string {
	if user := User(ctx); user != nil {
		return user.ID
	}
	return ""
}

func AuthMethod(ctx context.Context) string {
	method, _ := ctx.Value(AuthMethodKey).(string)
	return method
}

func WithAuthMethod(ctx context.Context, method string) context.Context {
	return context.WithValue(ctx, AuthMethodKey, method)
}

func Config(ctx context.Context) *config.Config {
	cfg, _ := ctx.Value(ConfigKey).(*config.Config)
	return cfg
}

func WithConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, ConfigKey, cfg)
}

func CSRFToken(ctx context.Context) string {
	token, _ := ctx.Value(CSRFTokenKey).(string)
	return token
}

func WithCSRFToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, CSRFTokenKey, token)
}
