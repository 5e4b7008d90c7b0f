//go:build !integration

package records

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telegram-giveaway-bot/internal/domain"
	"telegram-giveaway-bot/internal/domain/model"
	"telegram-giveaway-bot/internal/domain/ports/repository"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

type memStore struct {
	mu      sync.Mutex
	docs    map[string][]byte
	saves   []string
	loadErr error
	saveErr error
}

func newMemStore() *memStore { return &memStore{docs: map[string][]byte{}} }

func (m *memStore) Load(_ context.Context, name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	b, ok := m.docs[name]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	return b, nil
}

func (m *memStore) Save(_ context.Context, name string, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves = append(m.saves, name)
	if m.saveErr != nil {
		return m.saveErr
	}
	m.docs[name] = append([]byte(nil), body...)
	return nil
}

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestNew_EmptyStore(t *testing.T) {
	r := New(context.Background(), newMemStore(), 1, newTestLogger())
	r.View(func(s *State) {
		assert.Empty(t, s.Users)
		assert.Empty(t, s.Codes)
		assert.Empty(t, s.Banned)
	})
	assert.True(t, r.IsAdmin(1))
	assert.Equal(t, int64(1), r.AdminID())
}

func TestNew_LoadsLegacyDocuments(t *testing.T) {
	store := newMemStore()
	store.docs[repository.DocUsers] = []byte(`{"42": {"username": "ann", "first_name": "Ann", "last_name": "N/A",
		"join_date": "2024-01-01T10:00:00.123456", "redeemed_codes": [{"code": "XMAS", "prize": "Mug", "date": "2024-01-02T10:00:00"}]}}`)
	store.docs[repository.DocCodes] = []byte(`{"xmas": {"prize": "Mug", "redeemed": true,
		"redeemer": {"user_id": "42", "username": "ann", "first_name": "Ann", "last_name": "N/A", "date": "2024-01-02T10:00:00"},
		"created_date": "2024-01-01T09:00:00"}, "NEW": {"prize": "", "redeemed": true, "redeemer": null, "created_date": "2024-01-01T09:00:00"}}`)
	store.docs[repository.DocBanned] = []byte(`["7"]`)

	r := New(context.Background(), store, 1, newTestLogger())
	r.View(func(s *State) {
		require.Contains(t, s.Users, int64(42))
		assert.Equal(t, int64(42), s.Users[42].ID)
		assert.Equal(t, 1, s.Users[42].RedemptionCount())

		c, ok := s.Code("xmas")
		require.True(t, ok)
		assert.Equal(t, "XMAS", c.Key)
		assert.Equal(t, int64(42), c.Redeemer.UserID)

		fresh, ok := s.Code("new")
		require.True(t, ok)
		assert.False(t, fresh.Redeemed, "redeemed flag without a redeemer is cleared")
		assert.Equal(t, model.UnsetPrize, fresh.Prize)
	})
	assert.True(t, r.IsBanned(7))
}

func TestNew_CorruptAndFailingDocumentsStartEmpty(t *testing.T) {
	store := newMemStore()
	store.docs[repository.DocCodes] = []byte(`{not json`)
	r := New(context.Background(), store, 1, newTestLogger())
	r.View(func(s *State) { assert.Empty(t, s.Codes) })

	store = newMemStore()
	store.loadErr = errors.New("disk on fire")
	r = New(context.Background(), store, 1, newTestLogger())
	r.View(func(s *State) { assert.Empty(t, s.Users) })
}

func TestUpdate_FlushesTouchedDocumentsInOrder(t *testing.T) {
	store := newMemStore()
	r := New(context.Background(), store, 1, newTestLogger())

	err := r.Update(context.Background(), func(s *State) error {
		s.Banned[9] = struct{}{}
		s.Codes["A"] = model.NewCode("A", time.Now())
		s.RegisterUser(model.Identity{ID: 5}, time.Now())
		s.Touch(Banned | Codes)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{repository.DocCodes, repository.DocUsers, repository.DocBanned}, store.saves)
	assert.JSONEq(t, `["9"]`, string(store.docs[repository.DocBanned]))
}

func TestUpdate_FlushesEvenWhenCallbackFails(t *testing.T) {
	store := newMemStore()
	r := New(context.Background(), store, 1, newTestLogger())

	sentinel := errors.New("nope")
	err := r.Update(context.Background(), func(s *State) error {
		s.RegisterUser(model.Identity{ID: 5}, time.Now())
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, []string{repository.DocUsers}, store.saves)
}

func TestUpdate_UntouchedSavesNothing(t *testing.T) {
	store := newMemStore()
	r := New(context.Background(), store, 1, newTestLogger())
	require.NoError(t, r.Update(context.Background(), func(*State) error { return nil }))
	assert.Empty(t, store.saves)
}

func TestUpdate_SaveFailureKeepsMemoryState(t *testing.T) {
	store := newMemStore()
	store.saveErr = errors.New("read-only fs")
	r := New(context.Background(), store, 1, newTestLogger())

	err := r.Update(context.Background(), func(s *State) error {
		s.Codes["A"] = model.NewCode("A", time.Now())
		s.Touch(Codes)
		return nil
	})
	require.NoError(t, err)
	r.View(func(s *State) { assert.Contains(t, s.Codes, "A") })
}

func TestRegisterUser_Idempotent(t *testing.T) {
	store := newMemStore()
	joined := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	r := New(context.Background(), store, 1, newTestLogger(), WithClock(fixedClock(joined)))

	u, created := r.RegisterUser(context.Background(), model.Identity{ID: 5, FirstName: "Ann"})
	assert.True(t, created)
	assert.True(t, u.JoinedAt.Equal(joined))

	_, created = r.RegisterUser(context.Background(), model.Identity{ID: 5, FirstName: "Changed"})
	assert.False(t, created)
	r.View(func(s *State) { assert.Equal(t, "Ann", s.Users[5].FirstName) })
	assert.Equal(t, []string{repository.DocUsers}, store.saves)
}

func TestOrderedUsersAndCodes(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := newState(1)
	s.RegisterUser(model.Identity{ID: 3}, base.Add(time.Hour))
	s.RegisterUser(model.Identity{ID: 2}, base)
	s.RegisterUser(model.Identity{ID: 1}, base)
	s.Codes["B"] = model.NewCode("B", base)
	s.Codes["A"] = model.NewCode("A", base)
	s.Codes["C"] = model.NewCode("C", base.Add(-time.Hour))

	var ids []int64
	for _, u := range s.OrderedUsers() {
		ids = append(ids, u.ID)
	}
	assert.Equal(t, []int64{1, 2, 3}, ids)

	var keys []string
	for _, c := range s.OrderedCodes() {
		keys = append(keys, c.Key)
	}
	assert.Equal(t, []string{"C", "A", "B"}, keys)
}

func TestUpdate_ConcurrentMutationsAreSerialized(t *testing.T) {
	r := New(context.Background(), newMemStore(), 1, newTestLogger())
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			r.RegisterUser(context.Background(), model.Identity{ID: id})
		}(int64(i + 1))
	}
	wg.Wait()
	r.View(func(s *State) { assert.Len(t, s.Users, 50) })
}
