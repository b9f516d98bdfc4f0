package recalc

import (
	"context"

	"tradejournal/src/repository"

	logger "github.com/sirupsen/logrus"
)

type recalculator interface {
	RecalculateAll(ctx context.Context) (repository.RecalculateResult, error)
}

// Recalculate recomputes the derived metrics of every trade and rebuilds
// account balances from scratch.
type Recalculate struct {
	Log    *logger.Entry
	Trades recalculator
}

func (r *Recalculate) Start(ctx context.Context) (repository.RecalculateResult, error) {
	r.Log.Info("Recalculating trade metrics and account balances")

	result, err := r.Trades.RecalculateAll(ctx)
	if err != nil {
		r.Log.WithError(err).Error("Recalculation failed")
		return result, err
	}

	r.Log.WithFields(map[string]interface{}{
		"trades":   result.Trades,
		"accounts": result.Accounts,
	}).Info("Recalculation finished")
	return result, nil
}
