package analytics

import (
	"math"
	"sort"

	"tradejournal/src/model"
	"tradejournal/src/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// KPISummary is the headline performance of a set of trades.
type KPISummary struct {
	TotalPnl      decimal.Decimal `json:"total_pnl"`
	WinRate       float64         `json:"win_rate"`
	TotalTrades   int             `json:"total_trades"`
	WinningTrades int             `json:"winning_trades"`
	LosingTrades  int             `json:"losing_trades"`
	AverageWin    decimal.Decimal `json:"average_win"`
	AverageLoss   decimal.Decimal `json:"average_loss"`
	ProfitFactor  Ratio           `json:"profit_factor"`
}

type EquityPoint struct {
	Date          string          `json:"date"`
	CumulativePnl decimal.Decimal `json:"cumulative_pnl"`
}

type TagPerformance struct {
	TagName    string          `json:"tag_name"`
	TotalPnl   decimal.Decimal `json:"total_pnl"`
	WinRate    float64         `json:"win_rate"`
	TradeCount int             `json:"trade_count"`
}

// GroupSummary holds the statistics shared by the strategy and account
// dashboards.
type GroupSummary struct {
	Trades       int             `json:"trades"`
	WinRate      float64         `json:"win_rate"`
	ExpectancyR  float64         `json:"expectancy_r"`
	ProfitFactor Ratio           `json:"profit_factor"`
	TotalR       float64         `json:"total_r"`
	AverageR     float64         `json:"average_r"`
	TotalPnl     decimal.Decimal `json:"total_pnl"`
}

type StrategySummary struct {
	StrategyID   uuid.UUID `json:"strategy_id"`
	StrategyName string    `json:"strategy_name"`
	GroupSummary
}

type AccountSummary struct {
	AccountID      uuid.UUID       `json:"account_id"`
	AccountName    string          `json:"account_name"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	GroupSummary
}

// pnlTotals is one pass over trades splitting pnl into winners and losers.
// Zero pnl trades count toward the total only.
type pnlTotals struct {
	count       int
	wins        int
	losses      int
	total       decimal.Decimal
	grossProfit decimal.Decimal
	grossLoss   decimal.Decimal
}

func sumPnl(trades []model.Trade) pnlTotals {
	var s pnlTotals
	for i := range trades {
		pnl := trades[i].Pnl.Decimal
		s.count++
		s.total = s.total.Add(pnl)
		switch {
		case pnl.IsPositive():
			s.wins++
			s.grossProfit = s.grossProfit.Add(pnl)
		case pnl.IsNegative():
			s.losses++
			s.grossLoss = s.grossLoss.Add(pnl)
		}
	}
	return s
}

func (s pnlTotals) winRate() float64 {
	if s.count == 0 {
		return 0
	}
	return float64(s.wins) / float64(s.count)
}

// profitFactor is gross profit over |gross loss|. No losses at all, including
// a set of scratch trades, gives +Inf. The empty set gives 0.
func (s pnlTotals) profitFactor() Ratio {
	if s.count == 0 {
		return 0
	}
	if s.grossLoss.IsZero() {
		return Ratio(math.Inf(1))
	}
	return Ratio(s.grossProfit.Div(s.grossLoss.Abs()).InexactFloat64())
}

// KPIs summarizes trades. An empty slice yields the zero summary.
func KPIs(trades []model.Trade) KPISummary {
	s := sumPnl(trades)
	out := KPISummary{
		TotalPnl:      s.total,
		WinRate:       s.winRate(),
		TotalTrades:   s.count,
		WinningTrades: s.wins,
		LosingTrades:  s.losses,
		AverageWin:    decimal.Zero,
		AverageLoss:   decimal.Zero,
		ProfitFactor:  s.profitFactor(),
	}
	if s.wins > 0 {
		out.AverageWin = s.grossProfit.Div(decimal.NewFromInt(int64(s.wins)))
	}
	if s.losses > 0 {
		out.AverageLoss = s.grossLoss.Div(decimal.NewFromInt(int64(s.losses)))
	}
	return out
}

// EquityCurve returns the running pnl ordered by exit time, one point per trade.
// Trades closing at the same instant keep their input order.
func EquityCurve(trades []model.Trade) []EquityPoint {
	ordered := make([]model.Trade, len(trades))
	copy(ordered, trades)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].ExitTimestamp.Before(ordered[j].ExitTimestamp)
	})

	curve := make([]EquityPoint, 0, len(ordered))
	cumulative := decimal.Zero
	for i := range ordered {
		cumulative = cumulative.Add(ordered[i].Pnl.Decimal)
		curve = append(curve, EquityPoint{
			Date:          utils.DayKey(ordered[i].ExitTimestamp),
			CumulativePnl: cumulative,
		})
	}
	return curve
}

// PerformanceByTag fans every trade out to each of its tags. Tags are listed
// in the order they are first seen.
func PerformanceByTag(trades []model.Trade) []TagPerformance {
	var order []string
	byTag := make(map[string][]model.Trade)
	for i := range trades {
		for _, tag := range trades[i].Tags {
			if _, ok := byTag[tag.Name]; !ok {
				order = append(order, tag.Name)
			}
			byTag[tag.Name] = append(byTag[tag.Name], trades[i])
		}
	}

	out := make([]TagPerformance, 0, len(order))
	for _, name := range order {
		s := sumPnl(byTag[name])
		out = append(out, TagPerformance{
			TagName:    name,
			TotalPnl:   s.total,
			WinRate:    s.winRate(),
			TradeCount: s.count,
		})
	}
	return out
}

// Summarize computes the dashboard statistics of one group of trades.
//
// expectancy_r weights R averages taken over trades that have an r_multiple
// by a win rate taken over every trade of the group.
func Summarize(trades []model.Trade) GroupSummary {
	s := sumPnl(trades)
	out := GroupSummary{
		Trades:       s.count,
		WinRate:      s.winRate(),
		ProfitFactor: s.profitFactor(),
		TotalPnl:     s.total,
	}

	var (
		rCount, winRCount, lossRCount int
		totalR, winR, lossR           decimal.Decimal
	)
	for i := range trades {
		r := trades[i].RMultiple
		if !r.Valid {
			continue
		}
		rCount++
		totalR = totalR.Add(r.Decimal)
		switch {
		case r.Decimal.IsPositive():
			winRCount++
			winR = winR.Add(r.Decimal)
		case r.Decimal.IsNegative():
			lossRCount++
			lossR = lossR.Add(r.Decimal)
		}
	}
	if rCount == 0 {
		return out
	}

	avgWinR := mean(winR, winRCount)
	avgLossR := mean(lossR, lossRCount)
	winRate := decimal.NewFromInt(int64(s.wins)).Div(decimal.NewFromInt(int64(s.count)))
	expectancy := winRate.Mul(avgWinR).Sub(decimal.NewFromInt(1).Sub(winRate).Mul(avgLossR.Abs()))

	out.TotalR = totalR.InexactFloat64()
	out.AverageR = mean(totalR, rCount).InexactFloat64()
	out.ExpectancyR = expectancy.InexactFloat64()
	return out
}

func mean(sum decimal.Decimal, n int) decimal.Decimal {
	if n == 0 {
		return decimal.Zero
	}
	return sum.Div(decimal.NewFromInt(int64(n)))
}

// groupBy splits trades by key keeping first appearance order.
func groupBy(trades []model.Trade, key func(*model.Trade) uuid.UUID) ([]uuid.UUID, map[uuid.UUID][]model.Trade) {
	var order []uuid.UUID
	groups := make(map[uuid.UUID][]model.Trade)
	for i := range trades {
		k := key(&trades[i])
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], trades[i])
	}
	return order, groups
}

// StrategySummaries groups trades per strategy. strategies resolves names;
// an unknown id is reported with an empty name.
func StrategySummaries(trades []model.Trade, strategies map[uuid.UUID]model.Strategy) []StrategySummary {
	order, groups := groupBy(trades, func(t *model.Trade) uuid.UUID { return t.StrategyID })
	out := make([]StrategySummary, 0, len(order))
	for _, id := range order {
		out = append(out, StrategySummary{
			StrategyID:   id,
			StrategyName: strategies[id].Name,
			GroupSummary: Summarize(groups[id]),
		})
	}
	return out
}

// AccountSummaries groups trades per account and reports each account's
// current balance alongside.
func AccountSummaries(trades []model.Trade, accounts map[uuid.UUID]model.Account) []AccountSummary {
	order, groups := groupBy(trades, func(t *model.Trade) uuid.UUID { return t.AccountID })
	out := make([]AccountSummary, 0, len(order))
	for _, id := range order {
		acc := accounts[id]
		out = append(out, AccountSummary{
			AccountID:      id,
			AccountName:    acc.Name,
			CurrentBalance: acc.CurrentBalance.Decimal,
			GroupSummary:   Summarize(groups[id]),
		})
	}
	return out
}
