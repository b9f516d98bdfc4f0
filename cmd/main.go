package main

import (
	"context"
	"fmt"
	"os"

	"tradejournal/cmd/importcsv"
	"tradejournal/cmd/recalc"
	"tradejournal/cmd/report"
	"tradejournal/src/csvimport"
	"tradejournal/src/database"
	"tradejournal/src/handler"
	"tradejournal/src/repository"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

var Version string

func main() {
	_ = godotenv.Load()

	app := cli.NewApp()
	app.Name = "Trade Journal CMD"
	app.Usage = "The trade journal command line interface"
	app.Version = Version

	app.Commands = []cli.Command{
		importCSVCMD,
		recalculateCMD,
		reportCMD,
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var filterFlags = []cli.Flag{
	cli.StringFlag{Name: "symbol", Usage: "only trades on this symbol"},
	cli.StringFlag{Name: "strategy-id", Usage: "only trades of this strategy"},
	cli.StringFlag{Name: "account-id", Usage: "only trades of this account"},
	cli.StringFlag{Name: "session", Usage: "NY, London or Asia"},
	cli.StringFlag{Name: "direction", Usage: "Long or Short"},
	cli.StringFlag{Name: "start-date", Usage: "earliest entry, YYYY-MM-DD or ISO timestamp"},
	cli.StringFlag{Name: "end-date", Usage: "latest exit, YYYY-MM-DD or ISO timestamp"},
}

var (
	importCSVCMD = cli.Command{
		Name:      "import_csv",
		Usage:     "import a CSV trade export",
		Action:    importCSVAction,
		ArgsUsage: "",
		Flags: []cli.Flag{
			cli.StringFlag{Name: "file", Usage: "path of the CSV file (overrides CSV_FILE)"},
			cli.StringFlag{Name: "strategy-id", Usage: "strategy for rows without one (overrides DEFAULT_STRATEGY_ID)"},
			cli.StringFlag{Name: "account-id", Usage: "account for rows without one (overrides DEFAULT_ACCOUNT_ID)"},
		},
		Description: `Import trades from a CSV file. Invalid rows are skipped and reported.`,
	}
	recalculateCMD = cli.Command{
		Name:        "recalculate",
		Usage:       "recompute trade metrics and account balances",
		Action:      recalculateAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Recompute pnl, risk, R multiples of every trade and rebuild account balances`,
	}
	reportCMD = cli.Command{
		Name:        "report",
		Usage:       "print dashboard KPIs from a running server",
		Action:      reportAction,
		ArgsUsage:   "",
		Flags:       append([]cli.Flag{cli.StringFlag{Name: "base-url", Usage: "API base URL (overrides API_BASE_URL)"}}, filterFlags...),
		Description: `Fetch KPIs, strategy and account summaries and print them as tables`,
	}
)

func importCSVAction(c *cli.Context) error {
	logrus.Info("Starting import_csv CMD")

	config := importcsv.GetConfig()
	if v := c.String("file"); v != "" {
		config.File = v
	}
	if v := c.String("strategy-id"); v != "" {
		config.DefaultStrategyID = v
	}
	if v := c.String("account-id"); v != "" {
		config.DefaultAccountID = v
	}

	if err := database.InitMainDB(); err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}

	cmd := &importcsv.ImportCSV{
		Log:      logrus.WithField("cmd", "import_csv"),
		Config:   config,
		Importer: csvimport.NewImporter(repository.NewTradeRepository(), handler.GetConfig().AutoDetectSession),
	}
	if _, err := cmd.Start(context.Background()); err != nil {
		logrus.WithError(err).Error("Starting import_csv cmd")
		return err
	}
	return nil
}

func recalculateAction(_ *cli.Context) error {
	logrus.Info("Starting recalculate CMD")

	if err := database.InitMainDB(); err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}

	cmd := &recalc.Recalculate{
		Log:    logrus.WithField("cmd", "recalculate"),
		Trades: repository.NewTradeRepository(),
	}
	if _, err := cmd.Start(context.Background()); err != nil {
		return err
	}
	return nil
}

func reportAction(c *cli.Context) error {
	config := report.GetConfig()
	if v := c.String("base-url"); v != "" {
		config.BaseURL = v
	}

	cmd := &report.Report{
		Log:    logrus.WithField("cmd", "report"),
		Client: report.NewClient(config),
		Filters: report.Filters{
			"symbol":      c.String("symbol"),
			"strategy_id": c.String("strategy-id"),
			"account_id":  c.String("account-id"),
			"session":     c.String("session"),
			"direction":   c.String("direction"),
			"start_date":  c.String("start-date"),
			"end_date":    c.String("end-date"),
		},
		Out: os.Stdout,
	}
	return cmd.Start(context.Background())
}
