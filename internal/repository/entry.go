package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/stoicjournal/stoic/internal/model"
)

var (
	ErrEntryNotFound  = errors.New("entry not found")
	ErrDuplicateEntry = errors.New("entry already exists for this day")
)

// EntryPage selects one page of a user's entries.
type EntryPage struct {
	Limit  int
	Offset int
	Desc   bool
}

type EntryRepository interface {
	Create(ctx context.Context, entry *model.Entry) error
	ByID(ctx context.Context, userID, id string) (*model.Entry, error)
	ByDate(ctx context.Context, userID, entryDate string) (*model.Entry, error)
	List(ctx context.Context, userID string, page EntryPage) ([]*model.Entry, error)
	Count(ctx context.Context, userID string) (int, error)
	All(ctx context.Context, userID string) ([]*model.Entry, error)
	Delete(ctx context.Context, userID, id string) error
}

type entryRepository struct {
	db *sqlx.DB
}

func NewEntryRepository(db *sqlx.DB) EntryRepository {
	return &entryRepository{db: db}
}

const entryColumns = `id, user_id, what_matters_most, fears_of_loss, personal_goals,
	generated_sentence, generate_duration, entry_date, created_at`

// Create inserts the entry. A second entry for the same user and day
// returns ErrDuplicateEntry.
func (r *entryRepository) Create(ctx context.Context, entry *model.Entry) error {
	query := `INSERT INTO entries (` + entryColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.UserID,
		entry.WhatMattersMost,
		entry.FearsOfLoss,
		entry.PersonalGoals,
		entry.GeneratedSentence,
		entry.GenerateDuration,
		entry.EntryDate,
		entry.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEntry
		}
		return fmt.Errorf("failed to insert entry: %w", err)
	}

	return nil
}

func (r *entryRepository) ByID(ctx context.Context, userID, id string) (*model.Entry, error) {
	entry := &model.Entry{}
	query := `SELECT ` + entryColumns + ` FROM entries WHERE id = $1 AND user_id = $2`

	err := r.db.GetContext(ctx, entry, query, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}

	return entry, nil
}

func (r *entryRepository) ByDate(ctx context.Context, userID, entryDate string) (*model.Entry, error) {
	entry := &model.Entry{}
	query := `SELECT ` + entryColumns + ` FROM entries WHERE user_id = $1 AND entry_date = $2`

	err := r.db.GetContext(ctx, entry, query, userID, entryDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry by date: %w", err)
	}

	return entry, nil
}

func (r *entryRepository) List(ctx context.Context, userID string, page EntryPage) ([]*model.Entry, error) {
	// Only created_at is sortable; direction comes from a bool, never from input text.
	order := "ASC"
	if page.Desc {
		order = "DESC"
	}

	query := `SELECT ` + entryColumns + ` FROM entries
	          WHERE user_id = $1
	          ORDER BY created_at ` + order + `, id ` + order + `
	          LIMIT $2 OFFSET $3`

	entries := []*model.Entry{}
	err := r.db.SelectContext(ctx, &entries, query, userID, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}

	return entries, nil
}

func (r *entryRepository) Count(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM entries WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return count, nil
}

func (r *entryRepository) All(ctx context.Context, userID string) ([]*model.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE user_id = $1 ORDER BY created_at ASC`

	entries := []*model.Entry{}
	err := r.db.SelectContext(ctx, &entries, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to export entries: %w", err)
	}

	return entries, nil
}

func (r *entryRepository) Delete(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM entries WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrEntryNotFound
	}

	return nil
}
