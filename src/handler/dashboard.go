package handler

import (
	"context"
	"net/http"

	"tradejournal/src/analytics"
	"tradejournal/src/model"
	"tradejournal/src/repository"

	"github.com/google/uuid"
)

type tradeLister interface {
	ListForAnalytics(ctx context.Context, opts repository.TradeSearchOptions) ([]model.Trade, error)
}

// DashboardHandlers serves the analytics endpoints. Every endpoint accepts
// the trade filter set and aggregates the matching trades in exit order.
type DashboardHandlers struct {
	trades     tradeLister
	strategies strategyResolver
	accounts   accountResolver
}

func NewDashboardHandlers(trades tradeLister, strategies strategyResolver, accounts accountResolver) *DashboardHandlers {
	return &DashboardHandlers{trades: trades, strategies: strategies, accounts: accounts}
}

func (h *DashboardHandlers) load(w http.ResponseWriter, r *http.Request, op string) ([]model.Trade, bool) {
	opts, err := parseTradeFilters(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	trades, err := h.trades.ListForAnalytics(r.Context(), opts)
	if err != nil {
		writeRepoError(w, err, op)
		return nil, false
	}
	return trades, true
}

func (h *DashboardHandlers) KPIs(w http.ResponseWriter, r *http.Request) {
	trades, ok := h.load(w, r, "KPIs")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, analytics.KPIs(trades))
}

func (h *DashboardHandlers) EquityCurve(w http.ResponseWriter, r *http.Request) {
	trades, ok := h.load(w, r, "EquityCurve")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, analytics.EquityCurve(trades))
}

func (h *DashboardHandlers) PerformanceByTag(w http.ResponseWriter, r *http.Request) {
	trades, ok := h.load(w, r, "PerformanceByTag")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, analytics.PerformanceByTag(trades))
}

func (h *DashboardHandlers) Strategies(w http.ResponseWriter, r *http.Request) {
	trades, ok := h.load(w, r, "StrategySummaries")
	if !ok {
		return
	}
	ids := make([]uuid.UUID, 0, len(trades))
	for _, t := range trades {
		ids = append(ids, t.StrategyID)
	}
	strategies, err := h.strategies.FindByIDs(r.Context(), uniqueIDs(ids))
	if err != nil {
		writeRepoError(w, err, "StrategySummaries")
		return
	}
	writeJSON(w, http.StatusOK, analytics.StrategySummaries(trades, strategies))
}

func (h *DashboardHandlers) Accounts(w http.ResponseWriter, r *http.Request) {
	trades, ok := h.load(w, r, "AccountSummaries")
	if !ok {
		return
	}
	ids := make([]uuid.UUID, 0, len(trades))
	for _, t := range trades {
		ids = append(ids, t.AccountID)
	}
	accounts, err := h.accounts.FindByIDs(r.Context(), uniqueIDs(ids))
	if err != nil {
		writeRepoError(w, err, "AccountSummaries")
		return
	}
	writeJSON(w, http.StatusOK, analytics.AccountSummaries(trades, accounts))
}
