package handler

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"tradejournal/src/csvimport"
	"tradejournal/src/model"
	"tradejournal/src/repository"
	"tradejournal/src/session"

	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"
)

type tradeStore interface {
	Create(ctx context.Context, trade *model.Trade, tagNames []string) error
	Update(ctx context.Context, id uuid.UUID, apply func(*model.Trade) error, tagNames *[]string) (*model.Trade, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Trade, error)
	Search(ctx context.Context, opts repository.TradeSearchOptions) ([]model.Trade, error)
	Count(ctx context.Context, opts repository.TradeSearchOptions) (int64, error)
}

type strategyResolver interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.Strategy, error)
}

type accountResolver interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.Account, error)
}

type csvImporter interface {
	Import(ctx context.Context, r io.Reader, defaults csvimport.Defaults) (*csvimport.Result, error)
}

// TradeHandlers serves the trade endpoints. Responses embed the strategy and
// account each trade points at.
type TradeHandlers struct {
	cfg        Config
	trades     tradeStore
	strategies strategyResolver
	accounts   accountResolver
	importer   csvImporter
}

func NewTradeHandlers(cfg Config, trades tradeStore, strategies strategyResolver, accounts accountResolver, importer csvImporter) *TradeHandlers {
	return &TradeHandlers{
		cfg:        cfg,
		trades:     trades,
		strategies: strategies,
		accounts:   accounts,
		importer:   importer,
	}
}

func (h *TradeHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var payload model.TradeCreatePayload
	if err := decodeJSON(r, &payload); err != nil {
		logger.WithError(err).Warn("invalid trade payload")
		writeError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if err := payload.Validate(); err != nil {
		writeRepoError(w, err, "CreateTrade")
		return
	}

	trade := payload.ToTrade()
	if h.cfg.AutoDetectSession {
		session.Fill(trade)
	}
	if err := h.trades.Create(r.Context(), trade, payload.TagNames); err != nil {
		writeRepoError(w, err, "CreateTrade")
		return
	}

	out, err := h.render(r.Context(), []model.Trade{*trade})
	if err != nil {
		writeRepoError(w, err, "CreateTrade")
		return
	}
	writeJSON(w, http.StatusCreated, out[0])
}

func (h *TradeHandlers) List(w http.ResponseWriter, r *http.Request) {
	opts, err := parseTradeFilters(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	page, perPage, err := parsePagination(r, h.cfg)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	total, err := h.trades.Count(r.Context(), opts)
	if err != nil {
		writeRepoError(w, err, "CountTrades")
		return
	}

	opts.Limit = perPage
	opts.Offset = (page - 1) * perPage
	trades, err := h.trades.Search(r.Context(), opts)
	if err != nil {
		writeRepoError(w, err, "SearchTrades")
		return
	}

	out, err := h.render(r.Context(), trades)
	if err != nil {
		writeRepoError(w, err, "SearchTrades")
		return
	}
	writeJSON(w, http.StatusOK, model.TradeListResponse{
		Trades:  out,
		Total:   total,
		Page:    page,
		PerPage: perPage,
	})
}

func (h *TradeHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	trade, err := h.trades.FindByID(r.Context(), id)
	if err != nil {
		writeRepoError(w, err, "GetTrade")
		return
	}
	if trade == nil {
		writeError(w, http.StatusNotFound, "Trade not found")
		return
	}

	out, err := h.render(r.Context(), []model.Trade{*trade})
	if err != nil {
		writeRepoError(w, err, "GetTrade")
		return
	}
	writeJSON(w, http.StatusOK, out[0])
}

// Update merges the present fields into the stored trade and validates the
// merged result before anything is written.
func (h *TradeHandlers) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var payload model.TradeUpdatePayload
	if err := decodeJSON(r, &payload); err != nil {
		logger.WithError(err).Warn("invalid trade update payload")
		writeError(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	trade, err := h.trades.Update(r.Context(), id, func(t *model.Trade) error {
		payload.Apply(t)
		if h.cfg.AutoDetectSession && !payload.Session.Set {
			session.Fill(t)
		}
		return model.ValidateTrade(t)
	}, payload.TagNames)
	if err != nil {
		writeRepoError(w, err, "UpdateTrade")
		return
	}

	out, err := h.render(r.Context(), []model.Trade{*trade})
	if err != nil {
		writeRepoError(w, err, "UpdateTrade")
		return
	}
	writeJSON(w, http.StatusOK, out[0])
}

type importResponse struct {
	Message string `json:"message"`
	*csvimport.Result
}

// ImportCSV accepts a multipart upload in the "file" field. Optional
// strategy_id and account_id form values fill rows that leave them blank.
func (h *TradeHandlers) ImportCSV(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.cfg.MaxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing file")
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".csv") {
		writeError(w, http.StatusBadRequest, "Only CSV files are supported")
		return
	}

	var defaults csvimport.Defaults
	for _, f := range []struct {
		name string
		dst  *uuid.UUID
	}{
		{"strategy_id", &defaults.StrategyID},
		{"account_id", &defaults.AccountID},
	} {
		if v := strings.TrimSpace(r.FormValue(f.name)); v != "" {
			id, err := uuid.Parse(v)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid "+f.name)
				return
			}
			*f.dst = id
		}
	}

	result, err := h.importer.Import(r.Context(), file, defaults)
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"handler": "ImportCSV",
			"file":    header.Filename,
		}).WithError(err).Warn("CSV upload rejected")
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, importResponse{
		Message: "CSV import completed",
		Result:  result,
	})
}

func (h *TradeHandlers) render(ctx context.Context, trades []model.Trade) ([]model.TradeResponse, error) {
	strategyIDs := make([]uuid.UUID, 0, len(trades))
	accountIDs := make([]uuid.UUID, 0, len(trades))
	for _, t := range trades {
		strategyIDs = append(strategyIDs, t.StrategyID)
		accountIDs = append(accountIDs, t.AccountID)
	}

	strategies, err := h.strategies.FindByIDs(ctx, uniqueIDs(strategyIDs))
	if err != nil {
		return nil, err
	}
	accounts, err := h.accounts.FindByIDs(ctx, uniqueIDs(accountIDs))
	if err != nil {
		return nil, err
	}

	out := make([]model.TradeResponse, 0, len(trades))
	for _, t := range trades {
		resp := model.TradeResponse{Trade: t}
		if t.Tags == nil {
			resp.Tags = []model.Tag{}
		}
		if s, ok := strategies[t.StrategyID]; ok {
			resp.Strategy = &s
		}
		if a, ok := accounts[t.AccountID]; ok {
			resp.Account = &a
		}
		out = append(out, resp)
	}
	return out, nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
