package service

import (
	"context"
	"sort"

	"llm-chat-be/internal/entity"
	"llm-chat-be/internal/repository/contract"
	"llm-chat-be/internal/repository/specification"
	"llm-chat-be/internal/repository/unitofwork"
	"llm-chat-be/pkg/llm"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory store shared by the fake repositories. Spec structs are matched
// by type since the real ones apply themselves to a gorm query.
type memStore struct {
	users    map[uuid.UUID]*entity.User
	sessions map[uuid.UUID]*entity.ChatSession
	messages []*entity.ChatMessage

	sessionCreateErr error // one-shot error injected into session Create

	// raceWinner simulates losing a create race: the next session Create
	// installs this row and fails with a duplicate key error.
	raceWinner *entity.ChatSession
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[uuid.UUID]*entity.User),
		sessions: make(map[uuid.UUID]*entity.ChatSession),
	}
}

type memFactory struct {
	store *memStore
}

func (f *memFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &memUow{store: f.store}
}

type memUow struct {
	store *memStore
}

func (u *memUow) Begin(ctx context.Context) error { return nil }
func (u *memUow) Commit() error                   { return nil }
func (u *memUow) Rollback() error                 { return nil }

func (u *memUow) UserRepository() contract.UserRepository {
	return &memUserRepo{store: u.store}
}

func (u *memUow) ChatSessionRepository() contract.ChatSessionRepository {
	return &memSessionRepo{store: u.store}
}

func (u *memUow) ChatMessageRepository() contract.ChatMessageRepository {
	return &memMessageRepo{store: u.store}
}

// Session repository

type memSessionRepo struct {
	store *memStore
}

func (r *memSessionRepo) Create(ctx context.Context, session *entity.ChatSession) error {
	if err := r.store.sessionCreateErr; err != nil {
		r.store.sessionCreateErr = nil
		return err
	}
	if w := r.store.raceWinner; w != nil {
		r.store.raceWinner = nil
		cp := *w
		r.store.sessions[w.Id] = &cp
		return gorm.ErrDuplicatedKey
	}
	cp := *session
	r.store.sessions[session.Id] = &cp
	return nil
}

func (r *memSessionRepo) Update(ctx context.Context, session *entity.ChatSession) error {
	cp := *session
	r.store.sessions[session.Id] = &cp
	return nil
}

func (r *memSessionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.store.sessions, id)
	return nil
}

func (r *memSessionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error) {
	for _, s := range r.sessionsMatching(specs...) {
		return s, nil
	}
	return nil, nil
}

func (r *memSessionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error) {
	return r.sessionsMatching(specs...), nil
}

func (r *memSessionRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(r.sessionsMatching(specs...))), nil
}

func (r *memSessionRepo) sessionsMatching(specs ...specification.Specification) []*entity.ChatSession {
	var out []*entity.ChatSession
	for _, s := range r.store.sessions {
		cp := *s
		out = append(out, &cp)
	}

	desc := false
	for _, spec := range specs {
		switch sp := spec.(type) {
		case specification.ByID:
			out = filterSessions(out, func(s *entity.ChatSession) bool { return s.Id == sp.ID })
		case specification.UserOwnedBy:
			out = filterSessions(out, func(s *entity.ChatSession) bool { return s.UserId == sp.UserID })
		case specification.OrderBy:
			desc = sp.Desc
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		ti, tj := out[i].CreatedAt, out[j].CreatedAt
		if out[i].UpdatedAt != nil {
			ti = *out[i].UpdatedAt
		}
		if out[j].UpdatedAt != nil {
			tj = *out[j].UpdatedAt
		}
		if desc {
			return ti.After(tj)
		}
		return ti.Before(tj)
	})
	return out
}

func filterSessions(in []*entity.ChatSession, keep func(*entity.ChatSession) bool) []*entity.ChatSession {
	var out []*entity.ChatSession
	for _, s := range in {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}

// Message repository

type memMessageRepo struct {
	store *memStore
}

func (r *memMessageRepo) Create(ctx context.Context, message *entity.ChatMessage) error {
	cp := *message
	r.store.messages = append(r.store.messages, &cp)
	return nil
}

func (r *memMessageRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.messages = filterMessages(r.store.messages, func(m *entity.ChatMessage) bool { return m.Id != id })
	return nil
}

func (r *memMessageRepo) DeleteByChatSessionId(ctx context.Context, sessionId uuid.UUID) error {
	r.store.messages = filterMessages(r.store.messages, func(m *entity.ChatMessage) bool { return m.ChatSessionId != sessionId })
	return nil
}

func (r *memMessageRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatMessage, error) {
	for _, m := range r.messagesMatching(specs...) {
		return m, nil
	}
	return nil, nil
}

func (r *memMessageRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error) {
	return r.messagesMatching(specs...), nil
}

func (r *memMessageRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(r.messagesMatching(specs...))), nil
}

func (r *memMessageRepo) messagesMatching(specs ...specification.Specification) []*entity.ChatMessage {
	out := make([]*entity.ChatMessage, 0, len(r.store.messages))
	for _, m := range r.store.messages {
		cp := *m
		out = append(out, &cp)
	}

	desc := false
	for _, spec := range specs {
		switch sp := spec.(type) {
		case specification.ByChatSessionID:
			out = filterMessages(out, func(m *entity.ChatMessage) bool { return m.ChatSessionId == sp.ChatSessionID })
		case specification.OrderBy:
			desc = sp.Desc
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func filterMessages(in []*entity.ChatMessage, keep func(*entity.ChatMessage) bool) []*entity.ChatMessage {
	var out []*entity.ChatMessage
	for _, m := range in {
		if keep(m) {
			out = append(out, m)
		}
	}
	return out
}

// User repository

type memUserRepo struct {
	store *memStore
}

func (r *memUserRepo) Create(ctx context.Context, user *entity.User) error {
	cp := *user
	r.store.users[user.Id] = &cp
	return nil
}

func (r *memUserRepo) Update(ctx context.Context, user *entity.User) error {
	cp := *user
	r.store.users[user.Id] = &cp
	return nil
}

func (r *memUserRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	for _, u := range r.store.users {
		match := true
		for _, spec := range specs {
			switch sp := spec.(type) {
			case specification.ByID:
				if u.Id != sp.ID {
					match = false
				}
			case specification.ByEmail:
				if u.Email != sp.Email {
					match = false
				}
			}
		}
		if match {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(r.store.users)), nil
}

func (r *memUserRepo) SaveUserProvider(ctx context.Context, provider *entity.UserProvider) error {
	return nil
}

// Fake LLM provider: answers are consumed in call order.

type llmCall struct {
	Prompt string
	Model  string
}

type genResult struct {
	Text string
	Err  error
}

type fakeLLM struct {
	calls     []llmCall
	responses []genResult
	models    []llm.ModelInfo
	listErr   error
	listCalls int
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	options := &llm.Options{}
	for _, opt := range opts {
		opt(options)
	}
	f.calls = append(f.calls, llmCall{Prompt: prompt, Model: options.Model})

	if len(f.responses) == 0 {
		return "", nil
	}
	res := f.responses[0]
	f.responses = f.responses[1:]
	return res.Text, res.Err
}

func (f *fakeLLM) ListModels(ctx context.Context) ([]llm.ModelInfo, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.models, nil
}

// No-op logger

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }
