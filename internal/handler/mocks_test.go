package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/osse101/JackpotArena_Go/internal/domain"
)

// MockRoundService mocks round.Service
type MockRoundService struct {
	mock.Mock
}

func (m *MockRoundService) PlaceBet(ctx context.Context, userID string, bet domain.Bet) (*domain.BetReceipt, error) {
	args := m.Called(ctx, userID, bet)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BetReceipt), args.Error(1)
}

func (m *MockRoundService) Settle(ctx context.Context) (*domain.SettlementResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SettlementResult), args.Error(1)
}

func (m *MockRoundService) SettleAt(ctx context.Context, coordinate float64) (*domain.SettlementResult, error) {
	args := m.Called(ctx, coordinate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SettlementResult), args.Error(1)
}

func (m *MockRoundService) Reset(ctx context.Context) (*domain.RoundReset, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RoundReset), args.Error(1)
}

func (m *MockRoundService) ClaimReferral(ctx context.Context, userID string) (*domain.ReferralClaim, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReferralClaim), args.Error(1)
}

func (m *MockRoundService) Snapshot(ctx context.Context) domain.RoundSnapshot {
	args := m.Called(ctx)
	return args.Get(0).(domain.RoundSnapshot)
}

func (m *MockRoundService) Shutdown(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockHistory mocks HistoryReader
type MockHistory struct {
	mock.Mock
}

func (m *MockHistory) Get(roundID uuid.UUID) (domain.SettlementResult, bool) {
	args := m.Called(roundID)
	return args.Get(0).(domain.SettlementResult), args.Bool(1)
}

func (m *MockHistory) Recent(n int) []domain.SettlementResult {
	args := m.Called(n)
	return args.Get(0).([]domain.SettlementResult)
}

// denyThrottle rejects every key
type denyThrottle struct{}

func (denyThrottle) Allow(context.Context, string) bool { return false }
