// ==============================================================================
// SETTLEMENT SERVICE - internal/settlement/service.go
// ==============================================================================
package settlement

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"cashflow/pkg/domain"
	"cashflow/pkg/errors"
	"cashflow/pkg/logger"

	"github.com/google/uuid"
)

// Request is the input of a settlement run.
type Request struct {
	Parties      []domain.Party
	Debts        domain.DebtMatrix
	Intermediary int
}

type Service struct {
	cache    PlanCache
	logger   logger.Logger
	cacheTTL time.Duration
	now      func() time.Time
}

// NewService builds a settlement service. cache may be nil, in which case
// plans are not retained after they are returned.
func NewService(cache PlanCache, log logger.Logger, cacheTTL time.Duration) *Service {
	return &Service{
		cache:    cache,
		logger:   log,
		cacheTTL: cacheTTL,
		now:      time.Now,
	}
}

// Settle runs the settlement engine, verifies that the transfers clear every
// balance and, when a cache is configured, retains the plan for later lookup.
func (s *Service) Settle(ctx context.Context, req *Request) (*domain.Plan, error) {
	start := time.Now()

	res, err := Run(req.Parties, req.Debts, req.Intermediary)
	if err != nil {
		settlementRuns.WithLabelValues(resultLabel(err)).Inc()
		s.logger.Error("Settlement failed", map[string]interface{}{
			"parties":      len(req.Parties),
			"intermediary": req.Intermediary,
			"error":        err.Error(),
		})
		return nil, err
	}

	if err := Verify(res.Balances, res.Transfers); err != nil {
		settlementRuns.WithLabelValues("error").Inc()
		s.logger.Error("Settlement verification failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}

	for _, fb := range res.Fallbacks {
		s.logger.Warn("Deficit routed through intermediary", map[string]interface{}{
			"debtor":       req.Parties[fb.Debtor].Name,
			"creditor":     req.Parties[fb.Creditor].Name,
			"intermediary": req.Parties[req.Intermediary].Name,
			"amount":       fb.Amount,
			"in_channel":   fb.InChannel,
			"out_channel":  fb.OutChannel,
		})
	}

	plan := &domain.Plan{
		ID:               uuid.New(),
		Parties:          req.Parties,
		Intermediary:     req.Intermediary,
		Balances:         namedBalances(req.Parties, res.Balances),
		Transfers:        res.Transfers,
		IntermediaryHops: len(res.Fallbacks),
		CreatedAt:        s.now().UTC(),
	}

	settlementRuns.WithLabelValues("success").Inc()
	settlementDuration.Observe(time.Since(start).Seconds())
	settlementTransfers.Observe(float64(len(plan.Transfers)))
	intermediaryHops.Add(float64(plan.IntermediaryHops))

	if s.cache != nil {
		if err := s.cache.Set(ctx, planKey(plan.ID), plan, s.cacheTTL); err != nil {
			planCacheOps.WithLabelValues("store_error").Inc()
			s.logger.Warn("Failed to cache settlement plan", map[string]interface{}{
				"plan_id": plan.ID,
				"error":   err.Error(),
			})
		} else {
			planCacheOps.WithLabelValues("stored").Inc()
		}
	}

	s.logger.Info("Settlement computed", map[string]interface{}{
		"plan_id":           plan.ID,
		"parties":           len(plan.Parties),
		"transfers":         len(plan.Transfers),
		"intermediary_hops": plan.IntermediaryHops,
		"volume":            plan.TotalVolume(),
	})

	return plan, nil
}

// Balances returns the net balance of every party without settling.
func (s *Service) Balances(ctx context.Context, req *Request) ([]domain.Balance, error) {
	if req.Debts.Size() != len(req.Parties) {
		return nil, errors.Wrap(errors.ErrInvalidDebtMatrix,
			fmt.Sprintf("matrix has %d rows for %d parties", req.Debts.Size(), len(req.Parties)))
	}

	balances, err := NetBalances(req.Debts)
	if err != nil {
		return nil, err
	}
	return namedBalances(req.Parties, balances), nil
}

// GetPlan fetches a previously computed plan from the cache.
func (s *Service) GetPlan(ctx context.Context, id uuid.UUID) (*domain.Plan, error) {
	if s.cache == nil {
		return nil, errors.ErrPlanNotFound
	}

	var plan domain.Plan
	if err := s.cache.Get(ctx, planKey(id), &plan); err != nil {
		if stderrors.Is(err, errors.ErrCacheMiss) {
			planCacheOps.WithLabelValues("miss").Inc()
			return nil, errors.ErrPlanNotFound
		}
		planCacheOps.WithLabelValues("load_error").Inc()
		return nil, errors.Wrap(err, "failed to load settlement plan")
	}

	planCacheOps.WithLabelValues("hit").Inc()
	return &plan, nil
}

func namedBalances(parties []domain.Party, balances []int64) []domain.Balance {
	out := make([]domain.Balance, len(balances))
	for i, b := range balances {
		out[i] = domain.Balance{Party: parties[i].Name, Amount: b}
	}
	return out
}

func planKey(id uuid.UUID) string {
	return fmt.Sprintf("settlement:plan:%s", id)
}

func resultLabel(err error) string {
	switch {
	case errors.IsConfiguration(err):
		return "configuration_error"
	case errors.IsValidation(err):
		return "invalid_input"
	default:
		return "error"
	}
}

// Interfaces
type PlanCache interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
}
