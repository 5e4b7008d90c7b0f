package records

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"telegram-giveaway-bot/internal/domain"
	"telegram-giveaway-bot/internal/domain/model"
	"telegram-giveaway-bot/internal/domain/ports/repository"
	"telegram-giveaway-bot/internal/infra/metrics"
)

// Repository owns the users, codes and banned documents. Every mutation runs under
// one mutex and flushes the documents it touched before returning, so handlers
// served by several update workers never observe a half-applied change.
type Repository struct {
	mu    sync.RWMutex
	state *State
	store repository.DocumentStore
	log   *zerolog.Logger
	now   func() time.Time
}

// saveTimeout bounds the flush of one Update.
const saveTimeout = 10 * time.Second

type Option func(*Repository)

// WithClock overrides time.Now for registration timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// New loads the three documents from store. Missing or corrupt documents start empty
// and are logged; loading never fails startup.
func New(ctx context.Context, store repository.DocumentStore, adminID int64, logger *zerolog.Logger, opts ...Option) *Repository {
	r := &Repository{
		state: newState(adminID),
		store: store,
		log:   logger,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}

	users := map[int64]*model.User{}
	if r.load(ctx, repository.DocUsers, &users) {
		for id, u := range users {
			if u == nil {
				continue
			}
			u.ID = id
			if u.RedeemedCodes == nil {
				u.RedeemedCodes = []model.RedemptionRecord{}
			}
			r.state.Users[id] = u
		}
	}

	codes := map[string]*model.Code{}
	if r.load(ctx, repository.DocCodes, &codes) {
		for key, c := range codes {
			if c == nil {
				continue
			}
			c.Key = model.NormalizeCode(key)
			if c.Key == "" {
				continue
			}
			if c.Prize == "" {
				c.Prize = model.UnsetPrize
			}
			if c.Redeemed != (c.Redeemer != nil) {
				r.log.Warn().Str("code", c.Key).Bool("redeemed", c.Redeemed).Msg("code has inconsistent redeemer; trusting the snapshot")
				c.Redeemed = c.Redeemer != nil
			}
			r.state.Codes[c.Key] = c
		}
	}

	banned := model.BanList{}
	if r.load(ctx, repository.DocBanned, &banned) {
		r.state.Banned = banned
	}

	r.log.Info().
		Int("users", len(r.state.Users)).
		Int("codes", len(r.state.Codes)).
		Int("banned", len(r.state.Banned)).
		Msg("giveaway records loaded")
	return r
}

func (r *Repository) load(ctx context.Context, name string, dst any) bool {
	body, err := r.store.Load(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrDocumentNotFound) {
			r.log.Info().Str("document", name).Msg("document not found; starting empty")
		} else {
			r.log.Error().Err(err).Str("document", name).Msg("failed to load document; starting empty")
		}
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		r.log.Error().Err(err).Str("document", name).Msg("corrupt document; starting empty")
		return false
	}
	return true
}

// View runs fn with shared read access. fn must not mutate the state.
func (r *Repository) View(fn func(s *State)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn(r.state)
}

// Update runs fn with exclusive access and then saves every document fn touched,
// codes before users before banned. Documents are flushed even when fn returns an
// error, since a failed redemption may still have registered its user.
func (r *Repository) Update(ctx context.Context, fn func(s *State) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.state.dirty = 0
	err := fn(r.state)
	dirty := r.state.dirty
	r.state.dirty = 0

	if dirty == 0 {
		return err
	}

	// The change is already applied in memory; a caller cancelled mid-request
	// (shutdown, /stopbot) must not leave it unsaved.
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
	defer cancel()
	if dirty&Codes != 0 {
		r.save(saveCtx, repository.DocCodes, r.state.Codes)
	}
	if dirty&Users != 0 {
		r.save(saveCtx, repository.DocUsers, r.state.Users)
	}
	if dirty&Banned != 0 {
		r.save(saveCtx, repository.DocBanned, r.state.Banned)
	}
	return err
}

// save fails soft: in-memory state stays authoritative until the next successful save.
func (r *Repository) save(ctx context.Context, name string, doc any) {
	body, err := json.MarshalIndent(doc, "", "  ")
	if err == nil {
		err = r.store.Save(ctx, name, body)
	}
	if err != nil {
		metrics.IncDocumentSave(name, "error")
		r.log.Error().Err(errors.Join(domain.ErrPersistence, err)).Str("document", name).Msg("failed to save document")
		return
	}
	metrics.IncDocumentSave(name, "ok")
}

// RegisterUser inserts a user on first contact; repeated calls leave the record untouched.
func (r *Repository) RegisterUser(ctx context.Context, id model.Identity) (model.User, bool) {
	var (
		user    model.User
		created bool
	)
	_ = r.Update(ctx, func(s *State) error {
		u, ok := s.RegisterUser(id, r.now())
		user, created = *u, ok
		return nil
	})
	if created {
		metrics.IncUsersRegistered()
	}
	return user, created
}

func (r *Repository) IsBanned(id int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.IsBanned(id)
}

func (r *Repository) IsAdmin(id int64) bool { return id == r.state.adminID }

func (r *Repository) AdminID() int64 { return r.state.adminID }

// Now is the repository clock, shared with the use cases built on it.
func (r *Repository) Now() time.Time { return r.now() }
