package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/stoicjournal/stoic/internal/llm"
	"github.com/stoicjournal/stoic/internal/model"
	"github.com/stoicjournal/stoic/internal/repository"
	"github.com/stoicjournal/stoic/internal/validation"
)

type fakeEntryRepo struct {
	mu      sync.Mutex
	entries map[string]*model.Entry

	createErr error
	byDateErr error
	creates   int
}

func newFakeEntryRepo() *fakeEntryRepo {
	return &fakeEntryRepo{entries: map[string]*model.Entry{}}
}

func (r *fakeEntryRepo) Create(ctx context.Context, entry *model.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	if r.createErr != nil {
		return r.createErr
	}
	for _, e := range r.entries {
		if e.UserID == entry.UserID && e.EntryDate == entry.EntryDate {
			return repository.ErrDuplicateEntry
		}
	}
	r.entries[entry.ID] = entry
	return nil
}

func (r *fakeEntryRepo) ByID(ctx context.Context, userID, id string) (*model.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok || e.UserID != userID {
		return nil, repository.ErrEntryNotFound
	}
	return e, nil
}

func (r *fakeEntryRepo) ByDate(ctx context.Context, userID, entryDate string) (*model.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.byDateErr != nil {
		return nil, r.byDateErr
	}
	for _, e := range r.entries {
		if e.UserID == userID && e.EntryDate == entryDate {
			return e, nil
		}
	}
	return nil, repository.ErrEntryNotFound
}

func (r *fakeEntryRepo) sorted(userID string, desc bool) []*model.Entry {
	var out []*model.Entry
	for _, e := range r.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if desc {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (r *fakeEntryRepo) List(ctx context.Context, userID string, page repository.EntryPage) ([]*model.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.sorted(userID, page.Desc)
	out := []*model.Entry{}
	for i := page.Offset; i < len(all) && i < page.Offset+page.Limit; i++ {
		out = append(out, all[i])
	}
	return out, nil
}

func (r *fakeEntryRepo) Count(ctx context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sorted(userID, false)), nil
}

func (r *fakeEntryRepo) All(ctx context.Context, userID string) ([]*model.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted(userID, false), nil
}

func (r *fakeEntryRepo) Delete(ctx context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok || e.UserID != userID {
		return repository.ErrEntryNotFound
	}
	delete(r.entries, id)
	return nil
}

type fakeGenerator struct {
	mu       sync.Mutex
	calls    int
	sentence string
	err      error
	onCall   func()
}

func (g *fakeGenerator) Generate(ctx context.Context, answers validation.CreateEntryInput) (*Reflection, error) {
	g.mu.Lock()
	g.calls++
	onCall := g.onCall
	g.mu.Unlock()

	if onCall != nil {
		onCall()
	}
	if g.err != nil {
		return nil, g.err
	}
	return &Reflection{Sentence: g.sentence, DurationMs: 321}, nil
}

type fakeCompleter struct {
	req      llm.CompletionRequest
	content  string
	err      error
	duration time.Duration
	clock    *fakeClock
}

func (c *fakeCompleter) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.Completion, error) {
	c.req = req
	if c.clock != nil {
		c.clock.advance(c.duration)
	}
	if c.err != nil {
		return nil, c.err
	}
	return &llm.Completion{
		Model: "openai/gpt-4o-mini",
		Choices: []llm.Choice{
			{Message: llm.Message{Role: "assistant", Content: c.content}},
		},
	}, nil
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type sentEmail struct {
	kind  string
	to    string
	token string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentEmail
	err  error
}

func (m *fakeMailer) SendPasswordResetEmail(ctx context.Context, email, token, name string, expiry time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentEmail{kind: "password_reset", to: email, token: token})
	return nil
}

func (m *fakeMailer) SendWelcomeEmail(ctx context.Context, email, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentEmail{kind: "welcome", to: email})
	return nil
}
