package csvimport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"tradejournal/src/model"
	"tradejournal/src/session"
	"tradejournal/src/utils"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"
)

const listSeparator = ";"

// Row is one line of a trade export. Every column is read as text so that a
// malformed value fails its own row instead of the whole file.
type Row struct {
	Symbol         string `csv:"symbol"`
	Direction      string `csv:"direction"`
	EntryTimestamp string `csv:"entry_timestamp"`
	ExitTimestamp  string `csv:"exit_timestamp"`
	EntryPrice     string `csv:"entry_price"`
	ExitPrice      string `csv:"exit_price"`
	Quantity       string `csv:"quantity"`
	Commissions    string `csv:"commissions"`
	StopLoss       string `csv:"stop_loss"`
	TakeProfit     string `csv:"take_profit"`
	Session        string `csv:"session"`
	StrategyID     string `csv:"strategy_id"`
	AccountID      string `csv:"account_id"`
	Tags           string `csv:"tags"`
	Confirmations  string `csv:"confirmations"`
	Notes          string `csv:"notes"`
}

// Defaults fill the references of rows that leave them blank.
type Defaults struct {
	StrategyID uuid.UUID
	AccountID  uuid.UUID
}

type RowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

type Result struct {
	Imported int         `json:"imported"`
	TradeIDs []uuid.UUID `json:"trade_ids"`
	Errors   []RowError  `json:"errors"`
}

// TradeCreator is the part of the trade repository the importer needs.
type TradeCreator interface {
	Create(ctx context.Context, trade *model.Trade, tagNames []string) error
}

type Importer struct {
	trades     TradeCreator
	autoDetect bool
}

func NewImporter(trades TradeCreator, autoDetectSession bool) *Importer {
	return &Importer{trades: trades, autoDetect: autoDetectSession}
}

// Parse reads every row of a headed CSV document.
func Parse(r io.Reader) ([]Row, error) {
	var rows []Row
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return rows, nil
}

// Import creates one trade per row. Rows that fail to parse, validate or
// persist are skipped and reported with their line number (the header is
// line 1); the others stay committed.
func (i *Importer) Import(ctx context.Context, r io.Reader, defaults Defaults) (*Result, error) {
	rows, err := Parse(r)
	if err != nil {
		return nil, err
	}

	result := &Result{TradeIDs: []uuid.UUID{}, Errors: []RowError{}}
	for idx, row := range rows {
		line := idx + 2
		id, err := i.importRow(ctx, row, defaults)
		if err != nil {
			logger.WithFields(map[string]interface{}{
				"component": "csvimport",
				"row":       line,
			}).WithError(err).Warn("Skipping CSV row")
			result.Errors = append(result.Errors, RowError{Row: line, Error: err.Error()})
			continue
		}
		result.Imported++
		result.TradeIDs = append(result.TradeIDs, id)
	}

	logger.WithFields(map[string]interface{}{
		"component": "csvimport",
		"imported":  result.Imported,
		"skipped":   len(result.Errors),
	}).Info("CSV import finished")

	return result, nil
}

func (i *Importer) importRow(ctx context.Context, row Row, defaults Defaults) (uuid.UUID, error) {
	payload, err := row.ToPayload(defaults)
	if err != nil {
		return uuid.Nil, err
	}
	if err := payload.Validate(); err != nil {
		return uuid.Nil, err
	}

	trade := payload.ToTrade()
	if i.autoDetect {
		session.Fill(trade)
	}
	if err := i.trades.Create(ctx, trade, payload.TagNames); err != nil {
		return uuid.Nil, err
	}
	return trade.ID, nil
}

// ToPayload converts the textual row into a trade create payload. Direction
// defaults to Long and commissions to zero.
func (row Row) ToPayload(defaults Defaults) (*model.TradeCreatePayload, error) {
	var errs []error

	p := &model.TradeCreatePayload{
		Symbol:        row.Symbol,
		Direction:     model.DirectionLong,
		Confirmations: utils.SplitList(row.Confirmations, listSeparator),
		TagNames:      utils.SplitList(row.Tags, listSeparator),
		ImportMethod:  model.ImportMethodCSV,
		StrategyID:    defaults.StrategyID,
		AccountID:     defaults.AccountID,
	}

	if v := strings.TrimSpace(row.Direction); v != "" {
		p.Direction = parseDirection(v)
	}
	if v := strings.TrimSpace(row.Session); v != "" {
		s := model.TradeSession(v)
		p.Session = &s
	}
	if v := strings.TrimSpace(row.Notes); v != "" {
		p.Notes = &v
	}

	var err error
	if p.EntryDateTime.Time, err = model.ParseTimestamp(row.EntryTimestamp); err != nil {
		errs = append(errs, fmt.Errorf("entry_timestamp: %w", err))
	}
	if p.ExitDateTime.Time, err = model.ParseTimestamp(row.ExitTimestamp); err != nil {
		errs = append(errs, fmt.Errorf("exit_timestamp: %w", err))
	}

	required := []struct {
		column string
		raw    string
		dst    *decimal.Decimal
	}{
		{"entry_price", row.EntryPrice, &p.EntryPrice},
		{"exit_price", row.ExitPrice, &p.ExitPrice},
		{"quantity", row.Quantity, &p.Quantity},
	}
	for _, f := range required {
		v, err := decimal.NewFromString(strings.TrimSpace(f.raw))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: invalid number %q", f.column, f.raw))
			continue
		}
		*f.dst = v
	}

	if p.Commissions, err = optionalDecimal("commissions", row.Commissions, decimal.Zero); err != nil {
		errs = append(errs, err)
	}
	if p.StopLossPlanned, err = nullDecimal("stop_loss", row.StopLoss); err != nil {
		errs = append(errs, err)
	}
	if p.TakeProfitPlanned, err = nullDecimal("take_profit", row.TakeProfit); err != nil {
		errs = append(errs, err)
	}

	if p.StrategyID, err = optionalUUID("strategy_id", row.StrategyID, defaults.StrategyID); err != nil {
		errs = append(errs, err)
	}
	if p.AccountID, err = optionalUUID("account_id", row.AccountID, defaults.AccountID); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return p, nil
}

// parseDirection accepts the usual broker spellings.
func parseDirection(v string) model.Direction {
	switch strings.ToLower(v) {
	case "long", "buy", "b":
		return model.DirectionLong
	case "short", "sell", "s":
		return model.DirectionShort
	}
	return model.Direction(v)
}

func optionalDecimal(column, raw string, fallback decimal.Decimal) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return fallback, fmt.Errorf("%s: invalid number %q", column, raw)
	}
	return v, nil
}

func nullDecimal(column, raw string) (decimal.NullDecimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.NullDecimal{}, nil
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("%s: invalid number %q", column, raw)
	}
	return decimal.NewNullDecimal(v), nil
}

func optionalUUID(column, raw string, fallback uuid.UUID) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return fallback, fmt.Errorf("%s: invalid id %q", column, raw)
	}
	return id, nil
}
