// Package draw selects the winner of a round by roulette-wheel selection over
// the pool's cumulative probability mass.
package draw

import (
	"errors"
	"fmt"
	"math"

	"github.com/osse101/JackpotArena_Go/internal/domain"
)

// ErrEmptyPool is returned when a draw is attempted without contributions
var ErrEmptyPool = fmt.Errorf("%w: pool is empty", domain.ErrNoActiveRound)

// Source produces uniform samples in [0, 1)
type Source func() float64

// Outcome is the result of a draw
type Outcome struct {
	Index     int
	Winner    domain.Contribution
	Sample    float64
	RangeLow  float64
	RangeHigh float64
}

// ValidateSample checks that sample lies in [0, 1)
func ValidateSample(sample float64) error {
	if math.IsNaN(sample) || sample < 0 || sample >= 1 {
		return fmt.Errorf("%w: got %v", domain.ErrInvalidCoordinate, sample)
	}
	return nil
}

// Pick walks the contributions in order and returns the first whose cumulative
// probability mass reaches sample. The last contribution always closes the
// wheel at 1.0 so rounding can never leave it unreachable.
func Pick(contributions []domain.Contribution, sample float64) (Outcome, error) {
	if len(contributions) == 0 {
		return Outcome{}, ErrEmptyPool
	}
	if err := ValidateSample(sample); err != nil {
		return Outcome{}, err
	}

	last := len(contributions) - 1
	low := 0.0
	for i, c := range contributions {
		high := low + c.Probability
		if i == last {
			high = 1.0
		}
		// a zero-width range owns no mass and never wins
		if high >= sample && (c.Probability > 0 || i == last) {
			return Outcome{Index: i, Winner: c, Sample: sample, RangeLow: low, RangeHigh: high}, nil
		}
		low = high
	}

	// Unreachable while the last range is clamped to 1.0
	return Outcome{}, errors.New("draw: sample fell outside the wheel")
}

// Run draws a sample from source and picks the winner
func Run(contributions []domain.Contribution, source Source) (Outcome, error) {
	if len(contributions) == 0 {
		return Outcome{}, ErrEmptyPool
	}
	return Pick(contributions, source())
}

// Ranges returns the [low, high) cumulative range of every contribution, in order
func Ranges(contributions []domain.Contribution) [][2]float64 {
	out := make([][2]float64, len(contributions))
	low := 0.0
	for i, c := range contributions {
		high := low + c.Probability
		if i == len(contributions)-1 {
			high = 1.0
		}
		out[i] = [2]float64{low, high}
		low = high
	}
	return out
}
