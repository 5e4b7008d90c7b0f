package model

import "time"

// User is a chat participant known to the giveaway. Users are never deleted.
type User struct {
	ID            int64              `json:"-"`
	Username      string             `json:"username"`
	FirstName     string             `json:"first_name"`
	LastName      string             `json:"last_name"`
	JoinedAt      Timestamp          `json:"join_date"`
	RedeemedCodes []RedemptionRecord `json:"redeemed_codes"`
}

// RedemptionRecord is the user-side log entry of one successful redemption.
type RedemptionRecord struct {
	Code       string    `json:"code"`
	Prize      string    `json:"prize"`
	RedeemedAt Timestamp `json:"date"`
}

// NewUser builds a user from a transport identity, defaulting missing fields to "N/A".
func NewUser(id Identity, now time.Time) *User {
	return &User{
		ID:            id.ID,
		Username:      orNA(id.Username),
		FirstName:     orNA(id.FirstName),
		LastName:      orNA(id.LastName),
		JoinedAt:      NewTimestamp(now),
		RedeemedCodes: []RedemptionRecord{},
	}
}

func (u *User) RedemptionCount() int { return len(u.RedeemedCodes) }

func (u *User) AppendRedemption(code, prize string, at time.Time) {
	u.RedeemedCodes = append(u.RedeemedCodes, RedemptionRecord{Code: code, Prize: prize, RedeemedAt: NewTimestamp(at)})
}

func (u *User) ClearRedemptions() { u.RedeemedCodes = []RedemptionRecord{} }
