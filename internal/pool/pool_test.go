package pool

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/JackpotArena_Go/internal/domain"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func probabilitySum(cs []domain.Contribution) float64 {
	sum := 0.0
	for _, c := range cs {
		sum += c.Probability
	}
	return sum
}

func TestAdd_NewAndRepeatedBets(t *testing.T) {
	p := New()

	c, joined, err := p.Add("a", "alice", d("10"))
	require.NoError(t, err)
	assert.True(t, joined)
	assert.Equal(t, Palette[0], c.Color)
	assert.Equal(t, 1.0, c.Probability)

	_, joined, err = p.Add("b", "bob", d("30"))
	require.NoError(t, err)
	assert.True(t, joined)

	a, ok := p.Get("a")
	require.True(t, ok)
	assert.InDelta(t, 0.25, a.Probability, 1e-12)
	assert.Equal(t, "25.0", a.ChancePercent)

	b, _ := p.Get("b")
	assert.InDelta(t, 0.75, b.Probability, 1e-12)
	assert.Equal(t, Palette[1], b.Color)
	assert.True(t, p.Total().Equal(d("40")))

	// Repeated bets accumulate into the same slot
	c, joined, err = p.Add("a", "alice", d("20"))
	require.NoError(t, err)
	assert.False(t, joined)
	assert.True(t, c.Amount.Equal(d("30")))
	assert.Equal(t, Palette[0], c.Color)
	assert.Equal(t, 2, p.Len())
	assert.InDelta(t, 0.5, c.Probability, 1e-12)
}

func TestAdd_RejectsNonPositive(t *testing.T) {
	p := New()

	_, _, err := p.Add("a", "alice", decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, _, err = p.Add("a", "alice", d("-1"))
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	assert.Equal(t, 0, p.Len())
	assert.True(t, p.Total().IsZero())
}

func TestInvariants_HoldAcrossManyBets(t *testing.T) {
	p := New()
	amounts := []string{"1", "3.33", "0.01", "7", "12.5", "0.99", "100", "2", "3.33", "45.67"}
	users := []string{"a", "b", "c", "a", "d", "e", "f", "g", "c", "h"}

	for i, amt := range amounts {
		_, _, err := p.Add(users[i], users[i], d(amt))
		require.NoError(t, err)

		snap := p.Snapshot()
		sum := decimal.Zero
		for _, c := range snap {
			sum = sum.Add(c.Amount)
		}
		assert.True(t, sum.Equal(p.Total()), "total must equal sum of contributions after bet %d", i)
		assert.LessOrEqual(t, math.Abs(probabilitySum(snap)-1), ProbabilityTolerance)
	}
}

func TestColorsCycle(t *testing.T) {
	p := New()
	for i := 0; i < len(Palette)+2; i++ {
		_, _, err := p.Add(string(rune('a'+i)), "", d("1"))
		require.NoError(t, err)
	}
	snap := p.Snapshot()
	assert.Equal(t, Palette[0], snap[len(Palette)].Color)
	assert.Equal(t, Palette[1], snap[len(Palette)+1].Color)
}

func TestSnapshot_IsACopy(t *testing.T) {
	p := New()
	_, _, _ = p.Add("a", "alice", d("5"))

	snap := p.Snapshot()
	snap[0].Amount = d("999")

	a, _ := p.Get("a")
	assert.True(t, a.Amount.Equal(d("5")))
}

func TestReset(t *testing.T) {
	p := New()
	_, _, _ = p.Add("a", "alice", d("5"))
	_, _, _ = p.Add("b", "bob", d("5"))

	p.Reset()

	assert.Equal(t, 0, p.Len())
	assert.True(t, p.Total().IsZero())
	_, ok := p.Get("a")
	assert.False(t, ok)

	c, joined, err := p.Add("b", "bob", d("1"))
	require.NoError(t, err)
	assert.True(t, joined)
	assert.Equal(t, Palette[0], c.Color)
}
