package pool

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/osse101/JackpotArena_Go/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// Pool is the ordered set of contributions of one round. It is not safe for
// concurrent use; the round engine serializes access.
type Pool struct {
	contributions []domain.Contribution
	index         map[string]int
	total         decimal.Decimal
}

// New creates an empty pool
func New() *Pool {
	return &Pool{index: make(map[string]int)}
}

// Add accumulates amount into the participant's contribution, creating it on the
// first bet. It reports whether a new participant joined.
func (p *Pool) Add(userID, username string, amount decimal.Decimal) (domain.Contribution, bool, error) {
	if !amount.IsPositive() {
		return domain.Contribution{}, false, fmt.Errorf("%w: %s", domain.ErrInvalidAmount, amount)
	}

	i, exists := p.index[userID]
	if exists {
		p.contributions[i].Amount = p.contributions[i].Amount.Add(amount)
	} else {
		i = len(p.contributions)
		p.index[userID] = i
		p.contributions = append(p.contributions, domain.Contribution{
			UserID:   userID,
			Username: username,
			Amount:   amount,
			Color:    Palette[i%len(Palette)],
		})
	}
	p.total = p.total.Add(amount)
	p.recompute()

	return p.contributions[i], !exists, nil
}

// Len returns the number of distinct participants
func (p *Pool) Len() int {
	return len(p.contributions)
}

// Total returns the sum of all contributions
func (p *Pool) Total() decimal.Decimal {
	return p.total
}

// Get returns the participant's contribution, if any
func (p *Pool) Get(userID string) (domain.Contribution, bool) {
	i, ok := p.index[userID]
	if !ok {
		return domain.Contribution{}, false
	}
	return p.contributions[i], true
}

// Snapshot returns a copy of the contributions in insertion order
func (p *Pool) Snapshot() []domain.Contribution {
	out := make([]domain.Contribution, len(p.contributions))
	copy(out, p.contributions)
	return out
}

// Reset empties the pool
func (p *Pool) Reset() {
	p.contributions = nil
	p.index = make(map[string]int)
	p.total = decimal.Zero
}

// recompute refreshes derived probabilities and checks the pool invariants
func (p *Pool) recompute() {
	if p.total.IsNegative() {
		panic(PanicMsgNegativePool)
	}
	if len(p.contributions) == 0 {
		return
	}

	sum := decimal.Zero
	probSum := 0.0
	for i := range p.contributions {
		c := &p.contributions[i]
		if !c.Amount.IsPositive() {
			panic(PanicMsgAmountNotPositive)
		}
		sum = sum.Add(c.Amount)
		share := c.Amount.Div(p.total)
		c.Probability = share.InexactFloat64()
		c.ChancePercent = share.Mul(hundred).StringFixed(ChanceDecimalPlaces)
		probSum += c.Probability
	}

	if !sum.Equal(p.total) {
		panic(PanicMsgTotalMismatch)
	}
	if math.Abs(probSum-1) > ProbabilityTolerance {
		panic(fmt.Sprintf("%s (sum=%v)", PanicMsgProbabilitySum, probSum))
	}
}
