package settlement

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"cashflow/pkg/domain"
	"cashflow/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mocks

type MockPlanCache struct {
	mock.Mock
}

func (m *MockPlanCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockPlanCache) Get(ctx context.Context, key string, dest interface{}) error {
	args := m.Called(ctx, key, dest)
	if fn, ok := args.Get(0).(func(interface{})); ok {
		fn(dest)
		return nil
	}
	return args.Error(1)
}

type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Info(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) Error(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) Warn(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) Debug(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) Fatal(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

// Tests

func worldBankRequest() *Request {
	parties, debts := worldBankScenario()
	return &Request{Parties: parties, Debts: debts, Intermediary: domain.DefaultIntermediary}
}

func TestServiceSettleCachesPlan(t *testing.T) {
	mockCache := new(MockPlanCache)
	mockLog := new(MockLogger)

	service := NewService(mockCache, mockLog, time.Hour)
	fixed := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return fixed }

	mockCache.On("Set", mock.Anything, mock.MatchedBy(func(key string) bool {
		return len(key) > len("settlement:plan:")
	}), mock.AnythingOfType("*domain.Plan"), time.Hour).Return(nil)
	mockLog.On("Warn", "Deficit routed through intermediary", mock.Anything).Return().Twice()
	mockLog.On("Info", "Settlement computed", mock.MatchedBy(func(fields map[string]interface{}) bool {
		return fields["transfers"] == 4 && fields["intermediary_hops"] == 2 && fields["volume"] == int64(2400)
	})).Return()

	plan, err := service.Settle(context.Background(), worldBankRequest())
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, plan.ID)
	assert.Equal(t, fixed, plan.CreatedAt)
	assert.Equal(t, 2, plan.IntermediaryHops)
	assert.Len(t, plan.Transfers, 4)
	assert.Equal(t, domain.Balance{Party: "World_Bank", Amount: 1000}, plan.Balances[0])

	mockCache.AssertExpectations(t)
	mockLog.AssertExpectations(t)
}

func TestServiceSettleWithoutCache(t *testing.T) {
	mockLog := new(MockLogger)
	service := NewService(nil, mockLog, time.Hour)

	mockLog.On("Warn", mock.Anything, mock.Anything).Return()
	mockLog.On("Info", "Settlement computed", mock.Anything).Return()

	plan, err := service.Settle(context.Background(), worldBankRequest())
	require.NoError(t, err)
	assert.Len(t, plan.Transfers, 4)

	_, err = service.GetPlan(context.Background(), plan.ID)
	assert.ErrorIs(t, err, errors.ErrPlanNotFound)
}

func TestServiceSettleCacheFailureIsNotFatal(t *testing.T) {
	mockCache := new(MockPlanCache)
	mockLog := new(MockLogger)
	service := NewService(mockCache, mockLog, time.Minute)

	mockCache.On("Set", mock.Anything, mock.Anything, mock.Anything, time.Minute).Return(stderrors.New("connection refused"))
	mockLog.On("Warn", "Deficit routed through intermediary", mock.Anything).Return()
	mockLog.On("Warn", "Failed to cache settlement plan", mock.Anything).Return().Once()
	mockLog.On("Info", "Settlement computed", mock.Anything).Return()

	plan, err := service.Settle(context.Background(), worldBankRequest())
	require.NoError(t, err)
	assert.NotNil(t, plan)

	mockLog.AssertExpectations(t)
}

func TestServiceSettleConfigurationError(t *testing.T) {
	mockLog := new(MockLogger)
	service := NewService(nil, mockLog, time.Hour)

	req := &Request{
		Parties:      []domain.Party{party("Alpha", "Cash"), party("Beta", "UPI")},
		Debts:        domain.DebtMatrix{{0, 100}, {0, 0}},
		Intermediary: domain.NoIntermediary,
	}
	mockLog.On("Error", "Settlement failed", mock.MatchedBy(func(fields map[string]interface{}) bool {
		return fields["parties"] == 2 && fields["intermediary"] == domain.NoIntermediary
	})).Return()

	plan, err := service.Settle(context.Background(), req)
	assert.Nil(t, plan)
	assert.ErrorIs(t, err, errors.ErrNoIntermediary)
	assert.Equal(t, "configuration_error", resultLabel(err))

	mockLog.AssertExpectations(t)
}

func TestServiceBalances(t *testing.T) {
	service := NewService(nil, new(MockLogger), time.Hour)

	balances, err := service.Balances(context.Background(), worldBankRequest())
	require.NoError(t, err)
	assert.Equal(t, []domain.Balance{
		{Party: "World_Bank", Amount: 1000},
		{Party: "Bank_B", Amount: 700},
		{Party: "Bank_C", Amount: -700},
		{Party: "Bank_D", Amount: -500},
		{Party: "Bank_E", Amount: -500},
	}, balances)

	_, err = service.Balances(context.Background(), &Request{
		Parties: []domain.Party{party("A", "UPI")},
		Debts:   domain.NewDebtMatrix(2),
	})
	assert.ErrorIs(t, err, errors.ErrInvalidDebtMatrix)
}

func TestServiceGetPlan(t *testing.T) {
	mockCache := new(MockPlanCache)
	service := NewService(mockCache, new(MockLogger), time.Hour)

	id := uuid.New()
	stored := domain.Plan{ID: id, IntermediaryHops: 1}

	mockCache.On("Get", mock.Anything, planKey(id), mock.Anything).Return(func(dest interface{}) {
		*dest.(*domain.Plan) = stored
	}, nil)

	plan, err := service.GetPlan(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, plan.ID)
	assert.Equal(t, 1, plan.IntermediaryHops)
}

func TestServiceGetPlanMiss(t *testing.T) {
	mockCache := new(MockPlanCache)
	service := NewService(mockCache, new(MockLogger), time.Hour)

	id := uuid.New()
	mockCache.On("Get", mock.Anything, planKey(id), mock.Anything).Return(nil, errors.ErrCacheMiss)

	_, err := service.GetPlan(context.Background(), id)
	assert.ErrorIs(t, err, errors.ErrPlanNotFound)

	other := uuid.New()
	mockCache.On("Get", mock.Anything, planKey(other), mock.Anything).Return(nil, stderrors.New("timeout"))
	_, err = service.GetPlan(context.Background(), other)
	require.Error(t, err)
	assert.NotErrorIs(t, err, errors.ErrPlanNotFound)
}

func TestResultLabel(t *testing.T) {
	assert.Equal(t, "invalid_input", resultLabel(errors.Wrap(errors.ErrInvalidDebtMatrix, "x")))
	assert.Equal(t, "configuration_error", resultLabel(errors.ErrIntermediaryMisconfigured))
	assert.Equal(t, "error", resultLabel(errors.ErrAmountOverflow))
}
