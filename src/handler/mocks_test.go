package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tradejournal/src/calculations"
	"tradejournal/src/csvimport"
	"tradejournal/src/model"
	"tradejournal/src/repository"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testConfig() Config {
	return Config{
		DefaultPageSize:   20,
		MaxPageSize:       50,
		MaxUploadBytes:    1 << 20,
		AutoDetectSession: true,
	}
}

// withID attaches a chi route context carrying the {id} parameter.
func withID(req *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), dst); err != nil {
		t.Fatalf("failed to decode response %q: %v", rr.Body.String(), err)
	}
}

type mockStrategyStore struct {
	strategies map[uuid.UUID]*model.Strategy
	createErr  error
	deleteErr  error
	created    *model.Strategy
	updated    *model.Strategy
}

func newMockStrategyStore(list ...model.Strategy) *mockStrategyStore {
	m := &mockStrategyStore{strategies: map[uuid.UUID]*model.Strategy{}}
	for i := range list {
		s := list[i]
		m.strategies[s.ID] = &s
	}
	return m
}

func (m *mockStrategyStore) Create(_ context.Context, s *model.Strategy) error {
	if m.createErr != nil {
		return m.createErr
	}
	s.ID = uuid.New()
	m.created = s
	m.strategies[s.ID] = s
	return nil
}

func (m *mockStrategyStore) List(context.Context) ([]model.Strategy, error) {
	out := []model.Strategy{}
	for _, s := range m.strategies {
		out = append(out, *s)
	}
	return out, nil
}

func (m *mockStrategyStore) FindByID(_ context.Context, id uuid.UUID) (*model.Strategy, error) {
	s, ok := m.strategies[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *mockStrategyStore) FindByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]model.Strategy, error) {
	out := map[uuid.UUID]model.Strategy{}
	for _, id := range ids {
		if s, ok := m.strategies[id]; ok {
			out[id] = *s
		}
	}
	return out, nil
}

func (m *mockStrategyStore) Update(_ context.Context, s *model.Strategy) error {
	m.updated = s
	return nil
}

func (m *mockStrategyStore) Delete(context.Context, uuid.UUID) error {
	return m.deleteErr
}

type mockAccountStore struct {
	accounts map[uuid.UUID]*model.Account
	created  *model.Account
	updated  *model.Account
}

func newMockAccountStore(list ...model.Account) *mockAccountStore {
	m := &mockAccountStore{accounts: map[uuid.UUID]*model.Account{}}
	for i := range list {
		a := list[i]
		m.accounts[a.ID] = &a
	}
	return m
}

func (m *mockAccountStore) Create(_ context.Context, a *model.Account) error {
	a.ID = uuid.New()
	m.created = a
	m.accounts[a.ID] = a
	return nil
}

func (m *mockAccountStore) List(context.Context) ([]model.Account, error) {
	out := []model.Account{}
	for _, a := range m.accounts {
		out = append(out, *a)
	}
	return out, nil
}

func (m *mockAccountStore) FindByID(_ context.Context, id uuid.UUID) (*model.Account, error) {
	a, ok := m.accounts[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (m *mockAccountStore) FindByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]model.Account, error) {
	out := map[uuid.UUID]model.Account{}
	for _, id := range ids {
		if a, ok := m.accounts[id]; ok {
			out[id] = *a
		}
	}
	return out, nil
}

func (m *mockAccountStore) Update(_ context.Context, a *model.Account) error {
	m.updated = a
	return nil
}

func (m *mockAccountStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.accounts[id]; !ok {
		return repository.ErrAccountNotFound
	}
	return repository.ErrAccountInUse
}

// mockTradeStore keeps trades in memory and mimics the repository contract:
// unknown references are rejected and metrics are derived on every write.
type mockTradeStore struct {
	trades   map[uuid.UUID]*model.Trade
	known    map[uuid.UUID]bool
	err      error
	lastOpts repository.TradeSearchOptions
	lastTags []string
	total    int64
}

func newMockTradeStore(known ...uuid.UUID) *mockTradeStore {
	m := &mockTradeStore{trades: map[uuid.UUID]*model.Trade{}, known: map[uuid.UUID]bool{}}
	for _, id := range known {
		m.known[id] = true
	}
	return m
}

func (m *mockTradeStore) Create(_ context.Context, t *model.Trade, tags []string) error {
	if m.err != nil {
		return m.err
	}
	if !m.known[t.StrategyID] {
		return repository.ErrStrategyNotFound
	}
	if !m.known[t.AccountID] {
		return repository.ErrAccountNotFound
	}
	calculations.ApplyMetrics(t)
	t.ID = uuid.New()
	m.lastTags = tags
	for _, name := range tags {
		t.Tags = append(t.Tags, model.Tag{ID: uuid.New(), Name: name, Type: "custom"})
	}
	m.trades[t.ID] = t
	return nil
}

func (m *mockTradeStore) Update(_ context.Context, id uuid.UUID, apply func(*model.Trade) error, tags *[]string) (*model.Trade, error) {
	stored, ok := m.trades[id]
	if !ok {
		return nil, repository.ErrTradeNotFound
	}
	cp := *stored
	if err := apply(&cp); err != nil {
		return nil, err
	}
	calculations.ApplyMetrics(&cp)
	if tags != nil {
		m.lastTags = *tags
	}
	m.trades[id] = &cp
	return &cp, nil
}

func (m *mockTradeStore) FindByID(_ context.Context, id uuid.UUID) (*model.Trade, error) {
	t, ok := m.trades[id]
	if !ok {
		return nil, m.err
	}
	return t, nil
}

func (m *mockTradeStore) Search(_ context.Context, opts repository.TradeSearchOptions) ([]model.Trade, error) {
	m.lastOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	out := []model.Trade{}
	for _, t := range m.trades {
		out = append(out, *t)
	}
	return out, nil
}

func (m *mockTradeStore) Count(_ context.Context, opts repository.TradeSearchOptions) (int64, error) {
	m.lastOpts = opts
	return m.total, m.err
}

func (m *mockTradeStore) ListForAnalytics(_ context.Context, opts repository.TradeSearchOptions) ([]model.Trade, error) {
	m.lastOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	out := []model.Trade{}
	for _, t := range m.trades {
		out = append(out, *t)
	}
	return out, nil
}

type mockImporter struct {
	body     string
	defaults csvimport.Defaults
	result   *csvimport.Result
	err      error
	called   int
}

func (m *mockImporter) Import(_ context.Context, r io.Reader, defaults csvimport.Defaults) (*csvimport.Result, error) {
	m.called++
	b, _ := io.ReadAll(r)
	m.body = string(b)
	m.defaults = defaults
	return m.result, m.err
}
