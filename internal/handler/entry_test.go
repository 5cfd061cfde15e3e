package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stoicjournal/stoic/internal/ctxkeys"
	"github.com/stoicjournal/stoic/internal/model"
	"github.com/stoicjournal/stoic/internal/repository"
	"github.com/stoicjournal/stoic/internal/respond"
	"github.com/stoicjournal/stoic/internal/service"
	"github.com/stoicjournal/stoic/internal/validation"
)

func TestEntriesRequireAuthentication(t *testing.T) {
	ts := newTestServer(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/entries"},
		{http.MethodGet, "/entries"},
		{http.MethodGet, "/entries/today"},
		{http.MethodGet, "/entries/export"},
		{http.MethodGet, "/entries/00000000-0000-4000-8000-000000000001"},
		{http.MethodDelete, "/entries/00000000-0000-4000-8000-000000000001"},
	} {
		rec := ts.do(tc.method, tc.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", tc.method, tc.path)
		assert.Equal(t, "unauthorized", decode[errorBody](t, rec).Error.Code)
	}
	assert.Zero(t, ts.llmCalls.Load())
}

func TestCreateEntry(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register("marcus@example.com")

	rec := ts.do(http.MethodPost, "/entries", token, validAnswers())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	entry := decode[map[string]any](t, rec)
	assert.Equal(t, "My family and my health", entry["what_matters_most"])
	assert.Equal(t, "Hold your family close, for fortune lends and does not give.", entry["generated_sentence"])
	assert.Contains(t, entry, "generate_duration")
	assert.Contains(t, entry, "created_at")
	assert.NotContains(t, entry, "entry_date")
	assert.NoError(t, validation.ValidateID(entry["id"].(string)))

	t.Run("second entry on the same day conflicts without calling the model", func(t *testing.T) {
		calls := ts.llmCalls.Load()

		rec := ts.do(http.MethodPost, "/entries", token, validAnswers())
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "duplicate_entry", decode[errorBody](t, rec).Error.Code)
		assert.Equal(t, calls, ts.llmCalls.Load())
	})

	t.Run("other users are unaffected", func(t *testing.T) {
		other := ts.register("seneca@example.com")
		rec := ts.do(http.MethodPost, "/entries", other, validAnswers())
		assert.Equal(t, http.StatusCreated, rec.Code)
	})
}

func TestCreateEntryTrimsAnswers(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register("marcus@example.com")

	answers := validAnswers()
	answers["personal_goals"] = "   Rise early   "

	rec := ts.do(http.MethodPost, "/entries", token, answers)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Rise early", decode[map[string]any](t, rec)["personal_goals"])
}

func TestCreateEntryRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		body    any
		message string
	}{
		{
			name:    "malformed json",
			body:    `{"what_matters_most":`,
			message: msgInvalidInput,
		},
		{
			name:    "unknown field",
			body:    `{"what_matters_most":"a","fears_of_loss":"b","personal_goals":"c","mood":"calm"}`,
			message: msgInvalidInput,
		},
		{
			name:    "trailing data",
			body:    `{"what_matters_most":"a","fears_of_loss":"b","personal_goals":"c"}{}`,
			message: msgInvalidInput,
		},
		{
			name:    "missing field",
			body:    map[string]string{"what_matters_most": "a", "fears_of_loss": "b"},
			message: "personal_goals: must not be empty",
		},
		{
			name:    "whitespace only",
			body:    map[string]string{"what_matters_most": "  \t ", "fears_of_loss": "b", "personal_goals": "c"},
			message: "what_matters_most: must not be empty",
		},
		{
			name: "too long",
			body: map[string]string{
				"what_matters_most": "a",
				"fears_of_loss":     strings.Repeat("x", validation.MaxAnswerLength+1),
				"personal_goals":    "c",
			},
			message: "fears_of_loss: must be at most 500 characters",
		},
	}

	ts := newTestServer(t)
	token := ts.register("marcus@example.com")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(http.MethodPost, "/entries", token, tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			body := decode[errorBody](t, rec)
			assert.Equal(t, "validation_error", body.Error.Code)
			assert.Equal(t, tt.message, body.Error.Message)
		})
	}
	assert.Zero(t, ts.llmCalls.Load())
}

func TestCreateEntryAcceptsMaxLengthAnswers(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register("marcus@example.com")

	answers := validAnswers()
	answers["what_matters_most"] = strings.Repeat("é", validation.MaxAnswerLength)

	rec := ts.do(http.MethodPost, "/entries", token, answers)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestCreateEntryGenerationFailure(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register("marcus@example.com")
	ts.llmFail.Store(true)

	rec := ts.do(http.MethodPost, "/entries", token, validAnswers())
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	body := decode[errorBody](t, rec)
	assert.Equal(t, "server_error", body.Error.Code)
	assert.Equal(t, msgGeneration, body.Error.Message)

	// Nothing stored, so the user can try again once the model is back.
	rec = ts.do(http.MethodGet, "/entries/today", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	ts.llmFail.Store(false)
	rec = ts.do(http.MethodPost, "/entries", token, validAnswers())
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestListEntries(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register("marcus@example.com")

	base := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	for i := range 12 {
		ts.seedEntry(token, base.AddDate(0, 0, i))
	}

	// Another user's entries never show up.
	other := ts.register("seneca@example.com")
	ts.seedEntry(other, base.Add(time.Hour))

	rec := ts.do(http.MethodGet, "/entries", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	list := decode[model.EntryList](t, rec)
	assert.Len(t, list.Data, 10)
	assert.Equal(t, model.PaginationMetadata{CurrentPage: 1, TotalPages: 2, TotalItems: 12, HasNext: true}, list.Pagination)
	assert.True(t, list.Data[0].CreatedAt.Equal(base.AddDate(0, 0, 11)), "newest first by default")

	rec = ts.do(http.MethodGet, "/entries?page=2&limit=5&sort=created_at:asc", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	list = decode[model.EntryList](t, rec)
	require.Len(t, list.Data, 5)
	assert.True(t, list.Data[0].CreatedAt.Equal(base.AddDate(0, 0, 5)))
	assert.Equal(t, 3, list.Pagination.TotalPages)
	assert.True(t, list.Pagination.HasNext)

	rec = ts.do(http.MethodGet, "/entries?page=9", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list = decode[model.EntryList](t, rec)
	assert.Empty(t, list.Data)
	assert.NotNil(t, list.Data, "empty pages encode as []")
}

func TestListEntriesEmpty(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register("marcus@example.com")

	rec := ts.do(http.MethodGet, "/entries", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[],"pagination":{"current_page":1,"total_pages":1,"total_items":0,"has_next":false}}`, rec.Body.String())
}

func TestListEntriesRejectsBadQuery(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register("marcus@example.com")

	for query, message := range map[string]string{
		"page=0":                   "page: must be positive",
		"page=abc":                 "page: must be an integer",
		"page=9223372036854775807": "page: must be at most " + strconv.Itoa(validation.MaxPage),
		"limit=26":                 "limit: must be at most 25",
		"limit=-1":                 "limit: must be positive",
		"sort=title:asc":           "sort: must match field:direction with direction asc or desc",
		"sort=created_at:up":       "sort: must match field:direction with direction asc or desc",
		"filter=today":             "filter: unknown query parameter",
	} {
		rec := ts.do(http.MethodGet, "/entries?"+query, token, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, query)
		body := decode[errorBody](t, rec)
		assert.Equal(t, respond.CodeValidation, body.Error.Code, query)
		assert.Equal(t, message, body.Error.Message, query)
	}
}

func TestTodayEntry(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register("marcus@example.com")

	ts.seedEntry(token, time.Now().UTC().AddDate(0, 0, -1))

	rec := ts.do(http.MethodGet, "/entries/today", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decode[errorBody](t, rec).Error.Code)

	rec = ts.do(http.MethodPost, "/entries", token, validAnswers())
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[model.Entry](t, rec)

	rec = ts.do(http.MethodGet, "/entries/today", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created.ID, decode[model.Entry](t, rec).ID)
}

func TestShowAndDeleteEntry(t *testing.T) {
	ts := newTestServer(t)
	owner := ts.register("marcus@example.com")
	stranger := ts.register("seneca@example.com")

	entry := ts.seedEntry(owner, time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC))
	path := "/entries/" + entry.ID

	rec := ts.do(http.MethodGet, path, owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[model.Entry](t, rec)
	assert.Equal(t, entry.GeneratedSentence, got.GeneratedSentence)
	assert.Equal(t, entry.GenerateDuration, got.GenerateDuration)

	t.Run("other users see not found", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, path, stranger, nil).Code)
		assert.Equal(t, http.StatusNotFound, ts.do(http.MethodDelete, path, stranger, nil).Code)
	})

	t.Run("invalid ids are rejected", func(t *testing.T) {
		for _, id := range []string{"abc", "00000000000040008000000000000001", "00000000-0000-4000-8000-00000000000g"} {
			rec := ts.do(http.MethodGet, "/entries/"+id, owner, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code, id)
			assert.Equal(t, msgInvalidID, decode[errorBody](t, rec).Error.Message)

			rec = ts.do(http.MethodDelete, "/entries/"+id, owner, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code, id)
		}
	})

	rec = ts.do(http.MethodDelete, path, owner, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, path, owner, nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodDelete, path, owner, nil).Code)
}

func TestExportStreamsAttachment(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register("marcus@example.com")

	first := ts.seedEntry(token, time.Date(2026, 2, 1, 7, 0, 0, 0, time.UTC))
	ts.seedEntry(token, time.Date(2026, 2, 2, 7, 0, 0, 0, time.UTC))

	rec := ts.do(http.MethodGet, "/entries/export", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")

	export := decode[model.EntryExport](t, rec)
	assert.Equal(t, 2, export.Count)
	require.Len(t, export.Entries, 2)
	assert.Equal(t, first.ID, export.Entries[0].ID, "oldest first")
}

func TestExportUploadsToStorage(t *testing.T) {
	store := &memoryStorage{objects: map[string][]byte{}}
	ts := newTestServer(t, withStorage(store))
	token := ts.register("marcus@example.com")
	ts.seedEntry(token, time.Date(2026, 2, 1, 7, 0, 0, 0, time.UTC))

	rec := ts.do(http.MethodGet, "/entries/export", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	link := decode[service.ExportLink](t, rec)
	assert.Contains(t, link.URL, "https://exports.example.com/exports/")
	assert.False(t, link.ExpiresAt.IsZero())
	assert.Len(t, store.objects, 1)
}

func TestEntryStoreFailuresAreNotLeaked(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	conn := sqlx.NewDb(mockDB, "sqlmock")
	mock.ExpectQuery("SELECT COUNT").WillReturnError(assert.AnError)

	h := NewEntryHandler(service.NewEntryService(repository.NewEntryRepository(conn), nil), nil)

	req := httptest.NewRequest(http.MethodGet, "/entries", nil)
	req = req.WithContext(ctxkeys.WithUser(context.Background(), &model.User{ID: "user-1"}))
	rec := httptest.NewRecorder()
	h.List(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode[errorBody](t, rec)
	assert.Equal(t, "server_error", body.Error.Code)
	assert.Equal(t, msgUnexpected, body.Error.Message)
	assert.NotContains(t, rec.Body.String(), assert.AnError.Error())
	assert.NoError(t, mock.ExpectationsWereMet())
}
