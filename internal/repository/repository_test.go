package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stoicjournal/stoic/internal/db"
	"github.com/stoicjournal/stoic/internal/model"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	conn, err := db.Init("sqlite", "file::memory:?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, db.RunMigrations(context.Background(), conn.DB, "sqlite"))
	return conn
}

func createTestUser(t *testing.T, conn *sqlx.DB, email string) *model.User {
	t.Helper()

	user := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: "hash",
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, NewUserRepository(conn).Create(context.Background(), user))
	return user
}

func newTestEntry(userID string, createdAt time.Time) *model.Entry {
	return &model.Entry{
		ID:                uuid.New().String(),
		UserID:            userID,
		WhatMattersMost:   "My family",
		FearsOfLoss:       "Losing my health",
		PersonalGoals:     "Run a marathon",
		GeneratedSentence: "Focus on what you control.",
		GenerateDuration:  842,
		EntryDate:         model.EntryDateOf(createdAt),
		CreatedAt:         createdAt.UTC(),
	}
}
