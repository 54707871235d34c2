// Package ledger holds user balances and referral commission. Every mutation
// goes through Debit, Credit, AccrueReferral or Claim so conservation is
// enforced in one place.
package ledger

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/osse101/JackpotArena_Go/internal/domain"
)

// Config holds ledger policy
type Config struct {
	StartingBalance decimal.Decimal
	ReferralEnabled bool
	ReferralRate    decimal.Decimal // share of a stake that feeds referral commission, e.g. 0.05
	ReferralShare   decimal.Decimal // share of that amount paid to the referrer, e.g. 0.10
}

// ReferralFactor is the fraction of a stake accrued to the bettor's referrer
func (c Config) ReferralFactor() decimal.Decimal {
	if !c.ReferralEnabled {
		return decimal.Zero
	}
	return c.ReferralRate.Mul(c.ReferralShare)
}

// Ledger is the process-wide balance store. It is safe for concurrent use.
type Ledger struct {
	mu      sync.RWMutex
	users   map[string]*domain.User
	cfg     Config
	revenue decimal.Decimal
	now     func() time.Time
}

// New creates an empty ledger
func New(cfg Config) *Ledger {
	return &Ledger{
		users: make(map[string]*domain.User),
		cfg:   cfg,
		now:   time.Now,
	}
}

// Register creates a user on first contact and returns it. A second call for the
// same id returns the existing user unchanged and created=false. Unknown or self
// referrers are dropped.
func (l *Ledger) Register(id, name, referrerID string) (domain.User, bool, error) {
	if id == "" {
		return domain.User{}, false, fmt.Errorf("%w: %s", domain.ErrInvalidInput, ErrMsgEmptyUserID)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if existing, ok := l.users[id]; ok {
		return *existing, false, nil
	}

	u := &domain.User{
		ID:         id,
		Name:       name,
		Balance:    l.cfg.StartingBalance,
		RefPending: decimal.Zero,
		RefTotal:   decimal.Zero,
		CreatedAt:  l.now(),
	}
	if referrer, ok := l.users[referrerID]; ok && referrerID != id {
		u.ReferrerID = referrerID
		referrer.RefCount++
	}
	l.users[id] = u

	return *u, true, nil
}

// Get returns a copy of the user
func (l *Ledger) Get(id string) (domain.User, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	u, ok := l.users[id]
	if !ok {
		return domain.User{}, fmt.Errorf("%w: %s", domain.ErrUserNotFound, id)
	}
	return *u, nil
}

// Debit removes a bet from the user's balance and returns the amount taken.
// An all-in bet resolves to the full balance at this instant.
func (l *Ledger) Debit(id string, bet domain.Bet) (decimal.Decimal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	u, ok := l.users[id]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", domain.ErrUserNotFound, id)
	}

	amount := bet.Amount
	if bet.Kind == domain.BetAllIn {
		if !u.Balance.IsPositive() {
			return decimal.Zero, fmt.Errorf("%w: %s has nothing to stake", domain.ErrInsufficientBalance, id)
		}
		amount = u.Balance
	}
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s", domain.ErrInvalidAmount, amount)
	}
	if amount.GreaterThan(u.Balance) {
		return decimal.Zero, fmt.Errorf("%w: need %s, have %s", domain.ErrInsufficientBalance, amount, u.Balance)
	}

	u.Balance = u.Balance.Sub(amount)
	l.checkUser(u)
	return amount, nil
}

// Credit adds amount to the user's balance. Zero is a no-op.
func (l *Ledger) Credit(id string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("%w: cannot credit %s", domain.ErrInvalidAmount, amount)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	u, ok := l.users[id]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUserNotFound, id)
	}
	u.Balance = u.Balance.Add(amount)
	return nil
}

// AccrueReferral adds the referral cut of stake to the pending commission of the
// contributor's referrer. It returns the referrer and the accrued amount; both
// are empty when referrals are disabled or the contributor has no live referrer.
func (l *Ledger) AccrueReferral(contributorID string, stake decimal.Decimal) (string, decimal.Decimal, error) {
	factor := l.cfg.ReferralFactor()
	if factor.IsZero() || !stake.IsPositive() {
		return "", decimal.Zero, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	contributor, ok := l.users[contributorID]
	if !ok {
		return "", decimal.Zero, fmt.Errorf("%w: %s", domain.ErrUserNotFound, contributorID)
	}
	if !contributor.HasReferrer() {
		return "", decimal.Zero, nil
	}
	referrer, ok := l.users[contributor.ReferrerID]
	if !ok {
		return "", decimal.Zero, nil
	}

	accrued := stake.Mul(factor)
	referrer.RefPending = referrer.RefPending.Add(accrued)
	return referrer.ID, accrued, nil
}

// Claim moves pending referral commission into the balance and the lifetime
// total. Claiming with nothing pending returns zero and changes nothing.
func (l *Ledger) Claim(id string) (decimal.Decimal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	u, ok := l.users[id]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", domain.ErrUserNotFound, id)
	}
	if !u.RefPending.IsPositive() {
		return decimal.Zero, nil
	}

	claimed := u.RefPending
	u.Balance = u.Balance.Add(claimed)
	u.RefTotal = u.RefTotal.Add(claimed)
	u.RefPending = decimal.Zero
	return claimed, nil
}

// RecordRevenue books commission retained by the house
func (l *Ledger) RecordRevenue(amount decimal.Decimal) {
	if amount.IsNegative() {
		panic(fmt.Sprintf("%s: %s", PanicMsgNegativeRevenue, amount))
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.revenue = l.revenue.Add(amount)
}

// Revenue returns the commission retained so far
func (l *Ledger) Revenue() decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.revenue
}

// Snapshot returns copies of the requested users, sorted by id. Unknown ids are
// skipped. With no ids every user is returned.
func (l *Ledger) Snapshot(ids ...string) []domain.User {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]domain.User, 0, len(ids))
	if len(ids) == 0 {
		for _, u := range l.users {
			out = append(out, *u)
		}
	} else {
		seen := make(map[string]bool, len(ids))
		for _, id := range ids {
			if seen[id] {
				continue
			}
			seen[id] = true
			if u, ok := l.users[id]; ok {
				out = append(out, *u)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Holdings returns the sum of all balances plus all pending referral commission
func (l *Ledger) Holdings() decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()

	total := decimal.Zero
	for _, u := range l.users {
		total = total.Add(u.Balance).Add(u.RefPending)
	}
	return total
}

// checkUser panics on a negative balance; only a ledger bug can produce one
func (l *Ledger) checkUser(u *domain.User) {
	if u.Balance.IsNegative() {
		panic(fmt.Sprintf("%s: user %s balance %s", PanicMsgNegativeBalance, u.ID, u.Balance))
	}
}
