package report

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"tradejournal/src/analytics"

	logger "github.com/sirupsen/logrus"
)

type Report struct {
	Log     *logger.Entry
	Client  *Client
	Filters Filters
	Out     io.Writer
}

func (r *Report) Start(ctx context.Context) error {
	kpis, err := r.Client.KPIs(ctx, r.Filters)
	if err != nil {
		return err
	}
	strategies, err := r.Client.StrategySummaries(ctx, r.Filters)
	if err != nil {
		return err
	}
	accounts, err := r.Client.AccountSummaries(ctx, r.Filters)
	if err != nil {
		return err
	}

	r.Log.WithFields(map[string]interface{}{
		"trades":     kpis.TotalTrades,
		"strategies": len(strategies),
		"accounts":   len(accounts),
	}).Debug("Report data fetched")

	return Render(r.Out, kpis, strategies, accounts)
}

// Render prints the KPI block followed by one table per grouping.
func Render(w io.Writer, kpis *analytics.KPISummary, strategies []analytics.StrategySummary, accounts []analytics.AccountSummary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "Trades\t%d\n", kpis.TotalTrades)
	fmt.Fprintf(tw, "Total P&L\t%s\n", kpis.TotalPnl.StringFixed(2))
	fmt.Fprintf(tw, "Win rate\t%.1f%%\n", kpis.WinRate*100)
	fmt.Fprintf(tw, "Profit factor\t%s\n", kpis.ProfitFactor)
	fmt.Fprintf(tw, "Avg win / loss\t%s / %s\n", kpis.AverageWin.StringFixed(2), kpis.AverageLoss.StringFixed(2))

	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "STRATEGY\tTRADES\tWIN RATE\tPF\tEXP R\tTOTAL R\tP&L")
	for _, s := range strategies {
		fmt.Fprintf(tw, "%s\t%d\t%.1f%%\t%s\t%.2f\t%.2f\t%s\n",
			s.StrategyName, s.Trades, s.WinRate*100, s.ProfitFactor, s.ExpectancyR, s.TotalR, s.TotalPnl.StringFixed(2))
	}

	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "ACCOUNT\tTRADES\tWIN RATE\tPF\tEXP R\tP&L\tBALANCE")
	for _, a := range accounts {
		fmt.Fprintf(tw, "%s\t%d\t%.1f%%\t%s\t%.2f\t%s\t%s\n",
			a.AccountName, a.Trades, a.WinRate*100, a.ProfitFactor, a.ExpectancyR, a.TotalPnl.StringFixed(2), a.CurrentBalance.StringFixed(2))
	}

	return tw.Flush()
}
