package handler

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tradejournal/src/csvimport"
	"tradejournal/src/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tradeFixture struct {
	strategy model.Strategy
	account  model.Account
	trades   *mockTradeStore
	importer *mockImporter
	h        *TradeHandlers
}

func newTradeFixture() *tradeFixture {
	f := &tradeFixture{
		strategy: model.Strategy{ID: uuid.New(), Name: "Silver Bullet"},
		account:  model.Account{ID: uuid.New(), Name: "Apex 50k", CurrentBalance: model.NewNumeric(d("50000"))},
		importer: &mockImporter{result: &csvimport.Result{Imported: 1, TradeIDs: []uuid.UUID{uuid.New()}, Errors: []csvimport.RowError{}}},
	}
	f.trades = newMockTradeStore(f.strategy.ID, f.account.ID)
	f.h = NewTradeHandlers(testConfig(), f.trades, newMockStrategyStore(f.strategy), newMockAccountStore(f.account), f.importer)
	return f
}

func (f *tradeFixture) body(overrides string) string {
	return fmt.Sprintf(`{
		"symbol": "es",
		"direction": "Long",
		"quantity": 2,
		"strategy_id": %q,
		"account_id": %q,
		"entryDateTime": "2024-05-01T14:30:00Z",
		"exitDateTime": "2024-05-01T15:00:00Z",
		"entry_price": 100,
		"stopLossPlanned": 95,
		"takeProfitPlanned": 115,
		"exit_price": 110,
		"commissions": 1.5,
		"confirmations": ["BOS", "FVG", "BOS"],
		"tag_names": ["ICT"]%s
	}`, f.strategy.ID, f.account.ID, overrides)
}

func TestTradeHandlers_Create(t *testing.T) {
	f := newTradeFixture()

	rr := httptest.NewRecorder()
	f.h.Create(rr, jsonRequest(http.MethodPost, "/api/trades", f.body("")))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var body model.TradeResponse
	decodeBody(t, rr, &body)
	assert.Equal(t, "ES", body.Symbol)
	assert.True(t, body.Pnl.Equal(d("18.5")))
	require.True(t, body.RMultiple.Valid)
	assert.True(t, body.RMultiple.Decimal.Equal(d("1.85")))
	assert.Equal(t, 2, body.ConfirmationsCount)
	require.NotNil(t, body.Session, "10:30 in New York is the NY session")
	assert.Equal(t, model.SessionNY, *body.Session)
	require.NotNil(t, body.Strategy)
	assert.Equal(t, "Silver Bullet", body.Strategy.Name)
	require.NotNil(t, body.Account)
	assert.Equal(t, f.account.ID, body.Account.ID)
	require.Len(t, body.Tags, 1)
	assert.Equal(t, "ICT", body.Tags[0].Name)
}

func TestTradeHandlers_CreateExplicitSessionWins(t *testing.T) {
	f := newTradeFixture()

	rr := httptest.NewRecorder()
	f.h.Create(rr, jsonRequest(http.MethodPost, "/api/trades", f.body(`, "session": "Asia"`)))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var body model.TradeResponse
	decodeBody(t, rr, &body)
	require.NotNil(t, body.Session)
	assert.Equal(t, model.SessionAsia, *body.Session)
}

func TestTradeHandlers_CreateRejections(t *testing.T) {
	f := newTradeFixture()

	cases := []struct {
		name   string
		body   string
		status int
	}{
		{"equal prices", f.body(`, "exit_price": 100`), http.StatusUnprocessableEntity},
		{"unknown strategy", fmt.Sprintf(`{"symbol":"ES","direction":"Long","quantity":1,"strategy_id":%q,"account_id":%q,
			"entryDateTime":"2024-05-01T14:30:00Z","exitDateTime":"2024-05-01T15:00:00Z","entry_price":100,"exit_price":101}`,
			uuid.New(), f.account.ID), http.StatusUnprocessableEntity},
		{"exit before entry", fmt.Sprintf(`{"symbol":"ES","direction":"Long","quantity":1,"strategy_id":%q,"account_id":%q,
			"entryDateTime":"2024-05-01T14:30:00Z","exitDateTime":"2024-05-01T14:00:00Z","entry_price":100,"exit_price":101}`,
			f.strategy.ID, f.account.ID), http.StatusUnprocessableEntity},
		{"zero quantity", fmt.Sprintf(`{"symbol":"ES","direction":"Long","quantity":0,"strategy_id":%q,"account_id":%q,
			"entryDateTime":"2024-05-01T14:30:00Z","exitDateTime":"2024-05-01T15:00:00Z","entry_price":100,"exit_price":101}`,
			f.strategy.ID, f.account.ID), http.StatusUnprocessableEntity},
		{"bad direction", fmt.Sprintf(`{"symbol":"ES","direction":"Up","quantity":1,"strategy_id":%q,"account_id":%q,
			"entryDateTime":"2024-05-01T14:30:00Z","exitDateTime":"2024-05-01T15:00:00Z","entry_price":100,"exit_price":101}`,
			f.strategy.ID, f.account.ID), http.StatusUnprocessableEntity},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			f.h.Create(rr, jsonRequest(http.MethodPost, "/api/trades", tc.body))
			assert.Equal(t, tc.status, rr.Code, rr.Body.String())
		})
	}
	assert.Empty(t, f.trades.trades)
}

func TestTradeHandlers_ListPaginationAndFilters(t *testing.T) {
	f := newTradeFixture()
	f.trades.total = 120

	req := httptest.NewRequest(http.MethodGet,
		"/api/trades?page=3&per_page=500&symbol=nq&direction=Short&session=London&end_date=2024-05-31", nil)
	rr := httptest.NewRecorder()
	f.h.List(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	opts := f.trades.lastOpts
	assert.Equal(t, 50, opts.Limit)
	assert.Equal(t, 100, opts.Offset)
	require.NotNil(t, opts.Symbol)
	assert.Equal(t, "NQ", *opts.Symbol)
	require.NotNil(t, opts.Direction)
	assert.Equal(t, model.DirectionShort, *opts.Direction)
	require.NotNil(t, opts.EndDate)
	assert.Equal(t, time.Date(2024, 5, 31, 23, 59, 59, 999999999, time.UTC), *opts.EndDate)

	var body model.TradeListResponse
	decodeBody(t, rr, &body)
	assert.Equal(t, int64(120), body.Total)
	assert.Equal(t, 3, body.Page)
	assert.Equal(t, 50, body.PerPage)
	assert.NotNil(t, body.Trades)
}

func TestTradeHandlers_ListBadQuery(t *testing.T) {
	f := newTradeFixture()

	for _, q := range []string{"page=0", "per_page=x", "strategy_id=abc", "session=Tokyo", "start_date=yesterday"} {
		rr := httptest.NewRecorder()
		f.h.List(rr, httptest.NewRequest(http.MethodGet, "/api/trades?"+q, nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code, q)
	}
}

func TestTradeHandlers_GetAndUpdate(t *testing.T) {
	f := newTradeFixture()

	rr := httptest.NewRecorder()
	f.h.Create(rr, jsonRequest(http.MethodPost, "/api/trades", f.body("")))
	require.Equal(t, http.StatusCreated, rr.Code)
	var created model.TradeResponse
	decodeBody(t, rr, &created)

	rr = httptest.NewRecorder()
	f.h.Get(rr, withID(httptest.NewRequest(http.MethodGet, "/", nil), created.ID.String()))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	f.h.Get(rr, withID(httptest.NewRequest(http.MethodGet, "/", nil), uuid.NewString()))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	// the merged trade is validated, not just the patch
	rr = httptest.NewRecorder()
	f.h.Update(rr, withID(jsonRequest(http.MethodPut, "/", `{"exit_price": 100}`), created.ID.String()))
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code, rr.Body.String())

	rr = httptest.NewRecorder()
	f.h.Update(rr, withID(jsonRequest(http.MethodPut, "/", `{"exit_price": 125, "stopLossPlanned": null, "tag_names": ["A+"]}`), created.ID.String()))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var updated model.TradeResponse
	decodeBody(t, rr, &updated)
	assert.True(t, updated.Pnl.Equal(d("48.5")))
	assert.False(t, updated.StopLossPlanned.Valid)
	assert.False(t, updated.RMultiple.Valid, "no stop means no R")
	assert.Equal(t, []string{"A+"}, f.trades.lastTags)

	rr = httptest.NewRecorder()
	f.h.Update(rr, withID(jsonRequest(http.MethodPut, "/", `{"exit_price": 125}`), uuid.NewString()))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func multipartUpload(t *testing.T, filename, content string, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/trades/csv", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestTradeHandlers_ImportCSV(t *testing.T) {
	f := newTradeFixture()
	csv := "symbol,direction\nES,Long\n"

	rr := httptest.NewRecorder()
	f.h.ImportCSV(rr, multipartUpload(t, "trades.CSV", csv, map[string]string{
		"strategy_id": f.strategy.ID.String(),
		"account_id":  f.account.ID.String(),
	}))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, csv, f.importer.body)
	assert.Equal(t, f.strategy.ID, f.importer.defaults.StrategyID)
	assert.Equal(t, f.account.ID, f.importer.defaults.AccountID)

	var body struct {
		Message  string              `json:"message"`
		Imported int                 `json:"imported"`
		Errors   []csvimport.RowError `json:"errors"`
	}
	decodeBody(t, rr, &body)
	assert.Equal(t, "CSV import completed", body.Message)
	assert.Equal(t, 1, body.Imported)
	assert.NotNil(t, body.Errors)
}

func TestTradeHandlers_ImportCSVRejections(t *testing.T) {
	f := newTradeFixture()

	rr := httptest.NewRecorder()
	f.h.ImportCSV(rr, multipartUpload(t, "trades.xlsx", "x", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	f.h.ImportCSV(rr, multipartUpload(t, "trades.csv", "x", map[string]string{"account_id": "nope"}))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	f.h.ImportCSV(rr, httptest.NewRequest(http.MethodPost, "/api/trades/csv", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	assert.Zero(t, f.importer.called)

	f.importer.err = assert.AnError
	rr = httptest.NewRecorder()
	f.h.ImportCSV(rr, multipartUpload(t, "trades.csv", "x", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
