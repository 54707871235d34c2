package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is a participant known to the ledger. Users are created on first contact
// and live for the lifetime of the process.
type User struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Balance    decimal.Decimal `json:"balance"`
	ReferrerID string          `json:"ref_by,omitempty"` // lookup only, never ownership
	RefCount   int             `json:"ref_count"`
	RefPending decimal.Decimal `json:"ref_pending"`
	RefTotal   decimal.Decimal `json:"ref_total"`
	CreatedAt  time.Time       `json:"created_at"`
}

// HasReferrer reports whether the user was referred by someone else
func (u User) HasReferrer() bool {
	return u.ReferrerID != ""
}
