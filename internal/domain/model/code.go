package model

import (
	"strings"
	"time"
)

// UnsetPrize is the prize text of a code nobody has assigned a prize to yet.
const UnsetPrize = "No prize set"

// Code is a single-use redeemable token. Redeemed and Redeemer are always set or cleared together.
type Code struct {
	Key       string    `json:"-"`
	Prize     string    `json:"prize"`
	Redeemed  bool      `json:"redeemed"`
	Redeemer  *Redeemer `json:"redeemer"`
	CreatedAt Timestamp `json:"created_date"`
}

// Redeemer is the identity snapshot captured when a code is claimed.
type Redeemer struct {
	UserID     int64     `json:"user_id,string"`
	Username   string    `json:"username"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	RedeemedAt Timestamp `json:"date"`
}

// NormalizeCode is the single case-normalisation used for every code lookup and insert.
func NormalizeCode(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

func NewCode(key string, now time.Time) *Code {
	return &Code{
		Key:       NormalizeCode(key),
		Prize:     UnsetPrize,
		CreatedAt: NewTimestamp(now),
	}
}

// MarkRedeemed attaches a snapshot of id. Callers must check Redeemed first.
func (c *Code) MarkRedeemed(id Identity, at time.Time) Redeemer {
	r := Redeemer{
		UserID:     id.ID,
		Username:   orNA(id.Username),
		FirstName:  orNA(id.FirstName),
		LastName:   orNA(id.LastName),
		RedeemedAt: NewTimestamp(at),
	}
	c.Redeemed = true
	c.Redeemer = &r
	return r
}

func (c *Code) Reset() {
	c.Redeemed = false
	c.Redeemer = nil
}

// RedeemerName is the display name of the redeemer, or "" when unredeemed.
func (c *Code) RedeemerName() string {
	if !c.Redeemed || c.Redeemer == nil {
		return ""
	}
	return c.Redeemer.FirstName
}
