package records

import (
	"sort"
	"time"

	"telegram-giveaway-bot/internal/domain/model"
)

// Document is a bit set naming the persisted documents a mutation touched.
type Document uint8

const (
	Users Document = 1 << iota
	Codes
	Banned
)

// State is the in-memory aggregate of users, codes and the ban list.
// Callbacks handed a *State by Repository.Update must Touch every document they mutate.
type State struct {
	Users  map[int64]*model.User
	Codes  map[string]*model.Code
	Banned model.BanList

	adminID int64
	dirty   Document
}

func newState(adminID int64) *State {
	return &State{
		Users:   map[int64]*model.User{},
		Codes:   map[string]*model.Code{},
		Banned:  model.BanList{},
		adminID: adminID,
	}
}

// Touch marks documents for flushing when the surrounding Update returns.
func (s *State) Touch(d Document) { s.dirty |= d }

func (s *State) IsBanned(id int64) bool { return s.Banned.Contains(id) }

func (s *State) IsAdmin(id int64) bool { return id == s.adminID }

func (s *State) AdminID() int64 { return s.adminID }

// RegisterUser inserts the user when absent. The returned flag reports whether an insert happened.
func (s *State) RegisterUser(id model.Identity, now time.Time) (*model.User, bool) {
	if u, ok := s.Users[id.ID]; ok {
		return u, false
	}
	u := model.NewUser(id, now)
	s.Users[id.ID] = u
	s.Touch(Users)
	return u, true
}

// Code looks a code up after normalising the key.
func (s *State) Code(raw string) (*model.Code, bool) {
	c, ok := s.Codes[model.NormalizeCode(raw)]
	return c, ok
}

// OrderedUsers returns users in registration order (join date, then id).
func (s *State) OrderedUsers() []*model.User {
	out := make([]*model.User, 0, len(s.Users))
	for _, u := range s.Users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].JoinedAt.Equal(out[j].JoinedAt.Time) {
			return out[i].JoinedAt.Before(out[j].JoinedAt.Time)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// OrderedCodes returns codes in creation order (created date, then key).
func (s *State) OrderedCodes() []*model.Code {
	out := make([]*model.Code, 0, len(s.Codes))
	for _, c := range s.Codes {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt.Time) {
			return out[i].CreatedAt.Before(out[j].CreatedAt.Time)
		}
		return out[i].Key < out[j].Key
	})
	return out
}
