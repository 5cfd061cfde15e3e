package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/stoicjournal/stoic/internal/db"
	"github.com/stoicjournal/stoic/internal/llm"
	"github.com/stoicjournal/stoic/internal/middleware"
	"github.com/stoicjournal/stoic/internal/model"
	"github.com/stoicjournal/stoic/internal/repository"
	"github.com/stoicjournal/stoic/internal/service"
)

const testPassword = "correct horse battery"

type captureMailer struct {
	mu     sync.Mutex
	tokens map[string]string
}

func (m *captureMailer) SendPasswordResetEmail(_ context.Context, email, token, _ string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[email] = token
	return nil
}

func (m *captureMailer) SendWelcomeEmail(context.Context, string, string) error {
	return nil
}

func (m *captureMailer) token(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens[email]
}

// memoryStorage is an in-process object store for export uploads.
type memoryStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (s *memoryStorage) Save(_ context.Context, key, _ string, body io.Reader) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return nil
}

func (s *memoryStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *memoryStorage) PresignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://exports.example.com/" + key + "?signature=test", nil
}

type testServer struct {
	t       *testing.T
	db      *sqlx.DB
	auth    *service.AuthService
	mailer  *captureMailer
	handler http.Handler

	llmFail  atomic.Bool
	llmCalls atomic.Int32
}

type serverOption func(*serverConfig)

type serverConfig struct {
	storage *memoryStorage
}

func withStorage(s *memoryStorage) serverOption {
	return func(c *serverConfig) { c.storage = s }
}

// newTestServer wires real repositories on in-memory sqlite, the real
// reflection generator against a fake completion endpoint, and the
// middleware the production router uses (minus CSRF: tests use bearer tokens).
func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()

	var cfg serverConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	conn, err := db.Init("sqlite", "file::memory:?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, db.RunMigrations(context.Background(), conn.DB, "sqlite"))

	ts := &testServer{t: t, db: conn, mailer: &captureMailer{tokens: map[string]string{}}}

	completions := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.llmCalls.Add(1)
		if ts.llmFail.Load() {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`{"error":{"message":"upstream unavailable"}}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"gen-1","choices":[{"index":0,"message":{"role":"assistant","content":"{\"sentence\":\"Hold your family close, for fortune lends and does not give.\"}"},"finish_reason":"stop"}]}`))
	}))
	t.Cleanup(completions.Close)

	client, err := llm.NewClient("sk-test", llm.WithBaseURL(completions.URL), llm.WithTimeout(5*time.Second))
	require.NoError(t, err)

	generator := service.NewReflectionGenerator(client, service.GeneratorOptions{Temperature: 0.7})
	entryService := service.NewEntryService(repository.NewEntryRepository(conn), generator)

	ts.auth = service.NewAuthService(
		repository.NewUserRepository(conn),
		repository.NewProfileRepository(conn),
		repository.NewTokenRepository(conn),
		ts.mailer,
		"test-secret-that-is-long-enough-000",
		false,
		time.Hour,
		time.Hour,
	)

	var exportService *service.ExportService
	if cfg.storage != nil {
		exportService = service.NewExportService(cfg.storage, time.Hour)
	}

	entries := NewEntryHandler(entryService, exportService)
	auth := NewAuthHandler(ts.auth)
	health := NewHealthHandler(conn)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", health.Check)
	mux.HandleFunc("POST /auth/register", middleware.RequireGuest(auth.Register))
	mux.HandleFunc("POST /auth/login", middleware.RequireGuest(auth.Login))
	mux.HandleFunc("POST /auth/logout", auth.Logout)
	mux.HandleFunc("GET /auth/me", middleware.RequireAuth(auth.Me))
	mux.HandleFunc("POST /auth/forgot-password", auth.ForgotPassword)
	mux.HandleFunc("POST /auth/reset-password", auth.ResetPassword)
	mux.HandleFunc("POST /entries", middleware.RequireAuth(entries.Create))
	mux.HandleFunc("GET /entries", middleware.RequireAuth(entries.List))
	mux.HandleFunc("GET /entries/today", middleware.RequireAuth(entries.Today))
	mux.HandleFunc("GET /entries/export", middleware.RequireAuth(entries.Export))
	mux.HandleFunc("GET /entries/{id}", middleware.RequireAuth(entries.Show))
	mux.HandleFunc("DELETE /entries/{id}", middleware.RequireAuth(entries.Delete))

	ts.handler = middleware.Chain(mux, middleware.AuthMiddleware(ts.auth))
	return ts
}

// register creates an account and returns a bearer token for it.
func (ts *testServer) register(email string) string {
	ts.t.Helper()

	user, err := ts.auth.Register(context.Background(), email, testPassword, "")
	require.NoError(ts.t, err)
	token, _, err := ts.auth.GenerateJWT(user)
	require.NoError(ts.t, err)
	return token
}

func (ts *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	ts.t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(ts.t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func validAnswers() map[string]string {
	return map[string]string{
		"what_matters_most": "My family and my health",
		"fears_of_loss":     "Losing the people I love",
		"personal_goals":    "Be patient and run a marathon",
	}
}

// seedEntry inserts an entry directly so tests can control timestamps.
func (ts *testServer) seedEntry(token string, createdAt time.Time) *model.Entry {
	ts.t.Helper()

	userID, err := ts.auth.VerifyJWT(token)
	require.NoError(ts.t, err)

	entry := &model.Entry{
		ID:                fmt.Sprintf("00000000-0000-4000-8000-%012d", createdAt.Unix()%1_000_000_000_000),
		UserID:            userID,
		WhatMattersMost:   "Virtue",
		FearsOfLoss:       "Time",
		PersonalGoals:     "Discipline",
		GeneratedSentence: "Waste no more time arguing what a good man should be; be one.",
		GenerateDuration:  640,
		EntryDate:         model.EntryDateOf(createdAt),
		CreatedAt:         createdAt.UTC(),
	}
	require.NoError(ts.t, repository.NewEntryRepository(ts.db).Create(context.Background(), entry))
	return entry
}
