package calculations

import (
	"tradejournal/src/model"

	"github.com/shopspring/decimal"
)

// TradeInputs are the raw trade fields every derived metric is computed from.
// Callers are expected to have validated them (positive prices and quantity,
// non negative commissions, entry != exit).
type TradeInputs struct {
	Direction   model.Direction
	EntryPrice  decimal.Decimal
	ExitPrice   decimal.Decimal
	Quantity    decimal.Decimal
	Commissions decimal.Decimal
	StopLoss    decimal.NullDecimal
	TakeProfit  decimal.NullDecimal
}

// Metrics holds the derived fields of a trade. Absent values have Valid=false.
type Metrics struct {
	Pnl          decimal.Decimal
	RiskPerTrade decimal.NullDecimal
	RRPlanned    decimal.NullDecimal
	RMultiple    decimal.NullDecimal
}

// CalculatePnL returns the realized profit net of commissions.
//
//	Long:  (exit - entry) * qty - commissions
//	Short: (entry - exit) * qty - commissions
func CalculatePnL(direction model.Direction, entry, exit, quantity, commissions decimal.Decimal) decimal.Decimal {
	move := exit.Sub(entry)
	if direction == model.DirectionShort {
		move = entry.Sub(exit)
	}
	return move.Mul(quantity).Sub(commissions)
}

// CalculateRiskPerTrade returns |entry - stop| * qty. A zero risk is reported
// as absent so nothing downstream divides by it.
func CalculateRiskPerTrade(entry decimal.Decimal, stopLoss decimal.NullDecimal, quantity decimal.Decimal) decimal.NullDecimal {
	if !stopLoss.Valid {
		return decimal.NullDecimal{}
	}
	risk := entry.Sub(stopLoss.Decimal).Abs().Mul(quantity)
	if risk.IsZero() {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(risk)
}

// CalculateRRPlanned returns the planned reward to risk ratio, or absent when
// either level is missing or the ratio would be meaningless.
func CalculateRRPlanned(entry decimal.Decimal, stopLoss, takeProfit decimal.NullDecimal, quantity decimal.Decimal) decimal.NullDecimal {
	if !stopLoss.Valid || !takeProfit.Valid {
		return decimal.NullDecimal{}
	}
	risk := entry.Sub(stopLoss.Decimal).Abs().Mul(quantity)
	if !risk.IsPositive() {
		return decimal.NullDecimal{}
	}
	reward := takeProfit.Decimal.Sub(entry).Abs().Mul(quantity)
	if !reward.IsPositive() {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(reward.Div(risk))
}

// CalculateRMultiple divides realized pnl by the planned risk.
func CalculateRMultiple(pnl decimal.Decimal, risk decimal.NullDecimal) decimal.NullDecimal {
	if !risk.Valid || risk.Decimal.IsZero() {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(pnl.Div(risk.Decimal))
}

// CalculateTradeMetrics derives all four metrics. r_multiple uses the pnl and
// risk computed in the same call.
func CalculateTradeMetrics(in TradeInputs) Metrics {
	pnl := CalculatePnL(in.Direction, in.EntryPrice, in.ExitPrice, in.Quantity, in.Commissions)
	risk := CalculateRiskPerTrade(in.EntryPrice, in.StopLoss, in.Quantity)
	rr := CalculateRRPlanned(in.EntryPrice, in.StopLoss, in.TakeProfit, in.Quantity)
	return Metrics{
		Pnl:          pnl,
		RiskPerTrade: risk,
		RRPlanned:    rr,
		RMultiple:    CalculateRMultiple(pnl, risk),
	}
}

// InputsFromTrade collects the calculator inputs of a stored trade.
func InputsFromTrade(t *model.Trade) TradeInputs {
	return TradeInputs{
		Direction:   t.Direction,
		EntryPrice:  t.EntryPrice.Decimal,
		ExitPrice:   t.ExitPrice.Decimal,
		Quantity:    t.Quantity.Decimal,
		Commissions: t.Commissions.Decimal,
		StopLoss:    t.StopLossPlanned.NullDecimal,
		TakeProfit:  t.TakeProfitPlanned.NullDecimal,
	}
}

// ApplyMetrics recomputes every derived field of t in place and returns the
// metrics written. This is the only writer of those fields.
//
// Inputs and outputs are rounded to model.NumericScale first, so the pnl used
// as a balance delta is exactly the pnl stored on the row.
func ApplyMetrics(t *model.Trade) Metrics {
	t.Quantity = t.Quantity.Rounded()
	t.EntryPrice = t.EntryPrice.Rounded()
	t.ExitPrice = t.ExitPrice.Rounded()
	t.Commissions = t.Commissions.Rounded()
	t.StopLossPlanned = t.StopLossPlanned.Rounded()
	t.TakeProfitPlanned = t.TakeProfitPlanned.Rounded()

	m := roundMetrics(CalculateTradeMetrics(InputsFromTrade(t)))
	t.Pnl = model.NewNumeric(m.Pnl)
	t.RiskPerTrade = model.NullNumericFrom(m.RiskPerTrade)
	t.RRPlanned = model.NullNumericFrom(m.RRPlanned)
	t.RMultiple = model.NullNumericFrom(m.RMultiple)
	t.ConfirmationsCount = len(t.Confirmations)
	return m
}

func roundMetrics(m Metrics) Metrics {
	m.Pnl = m.Pnl.Round(model.NumericScale)
	m.RiskPerTrade = roundNull(m.RiskPerTrade)
	m.RRPlanned = roundNull(m.RRPlanned)
	m.RMultiple = roundNull(m.RMultiple)
	return m
}

func roundNull(d decimal.NullDecimal) decimal.NullDecimal {
	if !d.Valid {
		return d
	}
	return decimal.NewNullDecimal(d.Decimal.Round(model.NumericScale))
}
