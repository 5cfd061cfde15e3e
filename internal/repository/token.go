package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stoicjournal/stoic/internal/model"
)

var (
	ErrTokenNotFound = errors.New("token not found")
)

type TokenRepository interface {
	Create(ctx context.Context, token *model.Token) error
	ConsumeToken(ctx context.Context, token, tokenType string) (*model.Token, error)
	DeleteByUserAndType(ctx context.Context, userID, tokenType string) error
}

type tokenRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewTokenRepository(db *sqlx.DB) TokenRepository {
	return &tokenRepository{db: db, now: time.Now}
}

func (r *tokenRepository) Create(ctx context.Context, token *model.Token) error {
	if token.ID == "" {
		token.ID = uuid.New().String()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = r.now().UTC()
	}

	query := `
		INSERT INTO tokens (id, user_id, type, token, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		token.ID,
		token.UserID,
		token.Type,
		token.Token,
		token.ExpiresAt.UTC(),
		token.CreatedAt,
	)
	return err
}

// ConsumeToken marks an unused, unexpired token as used in one statement
// and returns it. Concurrent callers race on the UPDATE; only one wins.
func (r *tokenRepository) ConsumeToken(ctx context.Context, token, tokenType string) (*model.Token, error) {
	var t model.Token
	now := r.now().UTC()

	query := `
		UPDATE tokens
		SET used_at = $1
		WHERE token = $2
		AND type = $3
		AND used_at IS NULL
		AND expires_at > $4
		RETURNING id, user_id, type, token, expires_at, used_at, created_at
	`

	err := r.db.GetContext(ctx, &t, query, now, token, tokenType, now)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, err
	}

	return &t, nil
}

func (r *tokenRepository) DeleteByUserAndType(ctx context.Context, userID, tokenType string) error {
	query := `DELETE FROM tokens WHERE user_id = $1 AND type = $2 AND used_at IS NULL`
	_, err := r.db.ExecContext(ctx, query, userID, tokenType)
	return err
}
