package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/stoicjournal/stoic/internal/model"
	"github.com/stoicjournal/stoic/internal/repository"
	"github.com/stoicjournal/stoic/internal/validation"
)

// Generator produces the Stoic sentence for a set of answers.
type Generator interface {
	Generate(ctx context.Context, answers validation.CreateEntryInput) (*Reflection, error)
}

type EntryService struct {
	repo      repository.EntryRepository
	generator Generator
	now       func() time.Time
}

func NewEntryService(repo repository.EntryRepository, generator Generator) *EntryService {
	return &EntryService{
		repo:      repo,
		generator: generator,
		now:       time.Now,
	}
}

// dayRange returns [start of t's UTC day, start of the next UTC day).
func dayRange(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}

// Create validates the answers, refuses a second entry for the current UTC
// day before spending a model call, generates the sentence and stores the row.
func (s *EntryService) Create(ctx context.Context, userID string, input validation.CreateEntryInput) (*model.Entry, error) {
	answers, err := validation.ValidateEntryInput(input)
	if err != nil {
		return nil, err
	}

	// Client disconnects do not abort generation or insert. The LLM client
	// timeout still bounds the model call.
	ctx = context.WithoutCancel(ctx)

	_, err = s.Today(ctx, userID)
	if err == nil {
		return nil, repository.ErrDuplicateEntry
	}
	if !errors.Is(err, repository.ErrEntryNotFound) {
		return nil, fmt.Errorf("failed to check today's entry: %w", err)
	}

	reflection, err := s.generator.Generate(ctx, answers)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	entry := &model.Entry{
		ID:                uuid.New().String(),
		UserID:            userID,
		WhatMattersMost:   answers.WhatMattersMost,
		FearsOfLoss:       answers.FearsOfLoss,
		PersonalGoals:     answers.PersonalGoals,
		GeneratedSentence: reflection.Sentence,
		GenerateDuration:  reflection.DurationMs,
		EntryDate:         model.EntryDateOf(now),
		CreatedAt:         now,
	}

	err = s.repo.Create(ctx, entry)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			// Lost the race to a concurrent request for the same day.
			return nil, repository.ErrDuplicateEntry
		}
		return nil, fmt.Errorf("failed to create entry: %w", err)
	}

	slog.Info("entry created", "user_id", userID, "entry_id", entry.ID, "generate_duration_ms", entry.GenerateDuration)
	return entry, nil
}

func (s *EntryService) Entries(ctx context.Context, userID string, q validation.ListQuery) (*model.EntryList, error) {
	total, err := s.repo.Count(ctx, userID)
	if err != nil {
		return nil, err
	}

	entries, err := s.repo.List(ctx, userID, repository.EntryPage{
		Limit:  q.Limit,
		Offset: q.Offset(),
		Desc:   q.SortDesc,
	})
	if err != nil {
		return nil, err
	}

	return &model.EntryList{
		Data:       entries,
		Pagination: model.NewPaginationMetadata(q.Page, q.Limit, total),
	}, nil
}

func (s *EntryService) Entry(ctx context.Context, userID, id string) (*model.Entry, error) {
	return s.repo.ByID(ctx, userID, id)
}

// Today returns the entry created in the current UTC day.
func (s *EntryService) Today(ctx context.Context, userID string) (*model.Entry, error) {
	start, _ := dayRange(s.now())
	return s.repo.ByDate(ctx, userID, model.EntryDateOf(start))
}

func (s *EntryService) Delete(ctx context.Context, userID, id string) error {
	_, err := s.repo.ByID(ctx, userID, id)
	if err != nil {
		return err
	}

	err = s.repo.Delete(ctx, userID, id)
	if err != nil {
		return err
	}

	slog.Info("entry deleted", "user_id", userID, "entry_id", id)
	return nil
}

// Export collects every entry of the user, oldest first.
func (s *EntryService) Export(ctx context.Context, userID string) (*model.EntryExport, error) {
	entries, err := s.repo.All(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &model.EntryExport{
		UserID:     userID,
		ExportedAt: s.now().UTC(),
		Count:      len(entries),
		Entries:    entries,
	}, nil
}
