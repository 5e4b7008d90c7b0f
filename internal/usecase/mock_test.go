//go:build !integration

package usecase_test

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"telegram-giveaway-bot/internal/domain"
	"telegram-giveaway-bot/internal/domain/ports/adapter"
	"telegram-giveaway-bot/internal/domain/ports/repository"
	"telegram-giveaway-bot/internal/infra/records"
	"telegram-giveaway-bot/internal/usecase"
)

const testAdminID int64 = 1000

func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// ---- Mock DocumentStore ----

type MockDocumentStore struct {
	mu    sync.Mutex
	Docs  map[string][]byte
	Saves []string

	SaveFunc func(ctx context.Context, name string, body []byte) error
}

var _ repository.DocumentStore = (*MockDocumentStore)(nil)

func NewMockDocumentStore() *MockDocumentStore {
	return &MockDocumentStore{Docs: map[string][]byte{}}
}

func (m *MockDocumentStore) Load(_ context.Context, name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	body, ok := m.Docs[name]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	return append([]byte(nil), body...), nil
}

func (m *MockDocumentStore) Save(ctx context.Context, name string, body []byte) error {
	if m.SaveFunc != nil {
		if err := m.SaveFunc(ctx, name, body); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Docs[name] = append([]byte(nil), body...)
	m.Saves = append(m.Saves, name)
	return nil
}

func (m *MockDocumentStore) SavedNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Saves...)
}

// ---- Mock TelegramBotAdapter ----

type SentMessage struct {
	ChatID int64
	Text   string
}

type MockTelegramBot struct {
	mu   sync.Mutex
	Sent []SentMessage

	SendMessageFunc func(ctx context.Context, chatID int64, text string) error
}

var _ adapter.TelegramBotAdapter = (*MockTelegramBot)(nil)

func (m *MockTelegramBot) SendMessage(ctx context.Context, chatID int64, text string) error {
	if m.SendMessageFunc != nil {
		if err := m.SendMessageFunc(ctx, chatID, text); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, SentMessage{ChatID: chatID, Text: text})
	return nil
}

func (m *MockTelegramBot) SendButtons(ctx context.Context, chatID int64, text string, _ [][]adapter.InlineButton) error {
	return m.SendMessage(ctx, chatID, text)
}

func (m *MockTelegramBot) Messages() []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentMessage(nil), m.Sent...)
}

// ---- Mock NotificationUseCase ----

type MockNotifier struct {
	mu     sync.Mutex
	Events []usecase.RedemptionEvent

	NotifyRedemptionFunc func(ctx context.Context, ev usecase.RedemptionEvent) error
}

var _ usecase.NotificationUseCase = (*MockNotifier)(nil)

func (m *MockNotifier) NotifyRedemption(ctx context.Context, ev usecase.RedemptionEvent) error {
	m.mu.Lock()
	m.Events = append(m.Events, ev)
	m.mu.Unlock()
	if m.NotifyRedemptionFunc != nil {
		return m.NotifyRedemptionFunc(ctx, ev)
	}
	return nil
}

func (m *MockNotifier) NotifyShutdown(context.Context) error { return nil }

// ---- Mock Translator ----

type MockTranslator struct{}

func (MockTranslator) T(key string, args ...any) string {
	if len(args) == 0 {
		return key
	}
	return key + ":" + fmt.Sprint(args...)
}

// ---- helpers ----

// stepClock advances one second on every read so join order is deterministic.
type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func newStepClock() *stepClock {
	return &stepClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

func newTestRepo(t *testing.T, store *MockDocumentStore) *records.Repository {
	t.Helper()
	if store == nil {
		store = NewMockDocumentStore()
	}
	return records.New(context.Background(), store, testAdminID, newTestLogger(), records.WithClock(newStepClock().Now))
}
