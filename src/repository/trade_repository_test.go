package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"tradejournal/src/database"
	"tradejournal/src/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(database.Config{
		Driver:          database.DriverSQLite,
		SQLitePath:      ":memory:",
		GormLogLevel:    1,
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

type fixture struct {
	ctx        context.Context
	db         *gorm.DB
	trades     *TradeRepository
	accounts   *AccountRepository
	strategies *StrategyRepository
	strategy   *model.Strategy
	accountA   *model.Account
	accountB   *model.Account
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newSQLiteDB(t)
	f := &fixture{
		ctx:        context.Background(),
		db:         db,
		trades:     NewTradeRepositoryWithDB(db),
		accounts:   NewAccountRepositoryWithDB(db),
		strategies: NewStrategyRepositoryWithDB(db),
	}

	f.strategy = (&model.StrategyPayload{Name: "Silver Bullet", Timeframes: []string{"1m", "5m", "1m"}}).ToStrategy()
	require.NoError(t, f.strategies.Create(f.ctx, f.strategy))

	f.accountA = (&model.AccountPayload{Name: "Funded A", Type: model.AccountTypeFunded, InitialBalance: d("10000")}).ToAccount()
	require.NoError(t, f.accounts.Create(f.ctx, f.accountA))
	f.accountB = (&model.AccountPayload{Name: "Eval B", Type: model.AccountTypeEvaluation, InitialBalance: d("5000")}).ToAccount()
	require.NoError(t, f.accounts.Create(f.ctx, f.accountB))

	return f
}

func (f *fixture) newTrade(accountID uuid.UUID, exit string) *model.Trade {
	entry := time.Date(2024, 5, 1, 14, 0, 0, 0, time.UTC)
	return &model.Trade{
		Symbol:            "ES",
		Direction:         model.DirectionLong,
		Quantity:          model.NewNumeric(d("1")),
		StrategyID:        f.strategy.ID,
		AccountID:         accountID,
		EntryTimestamp:    entry,
		ExitTimestamp:     entry.Add(time.Hour),
		EntryPrice:        model.NewNumeric(d("100")),
		ExitPrice:         model.NewNumeric(d(exit)),
		StopLossPlanned:   model.NewNullNumeric(d("95")),
		TakeProfitPlanned: model.NewNullNumeric(d("115")),
		Confirmations:     []string{"BOS"},
		ImportMethod:      model.ImportMethodManual,
	}
}

func (f *fixture) balance(t *testing.T, id uuid.UUID) decimal.Decimal {
	t.Helper()
	acc, err := f.accounts.FindByID(f.ctx, id)
	require.NoError(t, err)
	require.NotNil(t, acc)
	return acc.CurrentBalance.Decimal
}

func setExit(price string) func(*model.Trade) error {
	return func(tr *model.Trade) error {
		tr.ExitPrice = model.NewNumeric(d(price))
		return nil
	}
}

func TestTradeRepository_BalanceFollowsTrades(t *testing.T) {
	f := newFixture(t)

	trade := f.newTrade(f.accountA.ID, "110")
	require.NoError(t, f.trades.Create(f.ctx, trade, []string{"ICT", "ict", " London Open "}))

	assert.True(t, trade.Pnl.Equal(d("10")))
	require.True(t, trade.RMultiple.Valid)
	assert.True(t, trade.RMultiple.Decimal.Equal(d("2")))
	assert.Len(t, trade.Tags, 2)
	assert.True(t, f.balance(t, f.accountA.ID).Equal(d("10010")))

	// pnl 10 -> 25 moves the balance by the difference only
	updated, err := f.trades.Update(f.ctx, trade.ID, setExit("125"), nil)
	require.NoError(t, err)
	assert.True(t, updated.Pnl.Equal(d("25")))
	assert.Len(t, updated.Tags, 2, "tags untouched when not provided")
	assert.True(t, f.balance(t, f.accountA.ID).Equal(d("10025")))

	// reattribution with a new pnl of 20
	_, err = f.trades.Update(f.ctx, trade.ID, func(tr *model.Trade) error {
		tr.AccountID = f.accountB.ID
		tr.ExitPrice = model.NewNumeric(d("120"))
		return nil
	}, nil)
	require.NoError(t, err)
	assert.True(t, f.balance(t, f.accountA.ID).Equal(d("10000")))
	assert.True(t, f.balance(t, f.accountB.ID).Equal(d("5020")))

	stored, err := f.trades.FindByID(f.ctx, trade.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, f.accountB.ID, stored.AccountID)
	assert.True(t, stored.Pnl.Equal(d("20")))
}

func TestTradeRepository_NotesOnlyUpdateRecomputes(t *testing.T) {
	f := newFixture(t)

	trade := f.newTrade(f.accountA.ID, "110")
	require.NoError(t, f.trades.Create(f.ctx, trade, nil))

	// corrupt a derived field behind the repository's back
	require.NoError(t, f.db.Model(&model.Trade{}).Where("id = ?", trade.ID).UpdateColumn("rr_planned", nil).Error)

	updated, err := f.trades.Update(f.ctx, trade.ID, func(tr *model.Trade) error {
		notes := "held through news"
		tr.Notes = &notes
		return nil
	}, nil)
	require.NoError(t, err)
	require.True(t, updated.RRPlanned.Valid)
	assert.True(t, updated.RRPlanned.Decimal.Equal(d("3")))
	assert.True(t, f.balance(t, f.accountA.ID).Equal(d("10010")))
}

func TestTradeRepository_ReplaceTags(t *testing.T) {
	f := newFixture(t)

	trade := f.newTrade(f.accountA.ID, "90")
	require.NoError(t, f.trades.Create(f.ctx, trade, []string{"FOMC", "Revenge"}))

	tags := []string{"fomc", "A+ setup"}
	updated, err := f.trades.Update(f.ctx, trade.ID, func(*model.Trade) error { return nil }, &tags)
	require.NoError(t, err)

	names := []string{}
	for _, tag := range updated.Tags {
		names = append(names, tag.Name)
	}
	assert.ElementsMatch(t, []string{"FOMC", "A+ setup"}, names)

	// the dropped tag still exists on its own
	all, err := NewTagRepositoryWithDB(f.db).List(f.ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestTradeRepository_FailedUpdateChangesNothing(t *testing.T) {
	f := newFixture(t)

	trade := f.newTrade(f.accountA.ID, "110")
	require.NoError(t, f.trades.Create(f.ctx, trade, nil))

	boom := errors.New("invalid")
	_, err := f.trades.Update(f.ctx, trade.ID, func(tr *model.Trade) error {
		tr.ExitPrice = model.NewNumeric(d("200"))
		return boom
	}, nil)
	assert.ErrorIs(t, err, boom)

	_, err = f.trades.Update(f.ctx, trade.ID, func(tr *model.Trade) error {
		tr.AccountID = uuid.New()
		return nil
	}, nil)
	assert.ErrorIs(t, err, ErrAccountNotFound)

	assert.True(t, f.balance(t, f.accountA.ID).Equal(d("10010")))

	_, err = f.trades.Update(f.ctx, uuid.New(), setExit("120"), nil)
	assert.ErrorIs(t, err, ErrTradeNotFound)
}

func TestTradeRepository_CreateRejectsUnknownReferences(t *testing.T) {
	f := newFixture(t)

	trade := f.newTrade(f.accountA.ID, "110")
	trade.StrategyID = uuid.New()
	assert.ErrorIs(t, f.trades.Create(f.ctx, trade, []string{"orphan"}), ErrStrategyNotFound)

	trade = f.newTrade(uuid.New(), "110")
	assert.ErrorIs(t, f.trades.Create(f.ctx, trade, nil), ErrAccountNotFound)

	total, err := f.trades.Count(f.ctx, TradeSearchOptions{})
	require.NoError(t, err)
	assert.Zero(t, total)

	tags, err := NewTagRepositoryWithDB(f.db).List(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, tags, "tag creation rolled back with the trade")
}

func TestTradeRepository_DeleteBlockedByTrades(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.trades.Create(f.ctx, f.newTrade(f.accountA.ID, "110"), nil))

	assert.ErrorIs(t, f.strategies.Delete(f.ctx, f.strategy.ID), ErrStrategyInUse)
	assert.ErrorIs(t, f.accounts.Delete(f.ctx, f.accountA.ID), ErrAccountInUse)
	assert.NoError(t, f.accounts.Delete(f.ctx, f.accountB.ID))
	assert.ErrorIs(t, f.accounts.Delete(f.ctx, f.accountB.ID), ErrAccountNotFound)
}

func TestTradeRepository_SearchAndAnalyticsOrder(t *testing.T) {
	f := newFixture(t)

	first := f.newTrade(f.accountA.ID, "110")
	second := f.newTrade(f.accountB.ID, "90")
	second.EntryTimestamp = second.EntryTimestamp.AddDate(0, 0, 1)
	second.ExitTimestamp = second.ExitTimestamp.AddDate(0, 0, 1)
	require.NoError(t, f.trades.Create(f.ctx, first, []string{"A"}))
	require.NoError(t, f.trades.Create(f.ctx, second, []string{"B"}))

	recent, err := f.trades.Search(f.ctx, TradeSearchOptions{Limit: 1})
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, second.ID, recent[0].ID)

	ordered, err := f.trades.ListForAnalytics(f.ctx, TradeSearchOptions{})
	require.NoError(t, err)
	require.Len(t, ordered, 2)
	assert.Equal(t, first.ID, ordered[0].ID)
	require.Len(t, ordered[0].Tags, 1)
	assert.Equal(t, "A", ordered[0].Tags[0].Name)

	byAccount, err := f.trades.Count(f.ctx, TradeSearchOptions{AccountID: &f.accountB.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), byAccount)
}

func TestTradeRepository_RecalculateAll(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.trades.Create(f.ctx, f.newTrade(f.accountA.ID, "110"), nil))
	require.NoError(t, f.trades.Create(f.ctx, f.newTrade(f.accountA.ID, "97"), nil))

	require.NoError(t, f.db.Model(&model.Account{}).Where("id = ?", f.accountA.ID).UpdateColumn("current_balance", d("1")).Error)
	require.NoError(t, f.db.Model(&model.Trade{}).Where("1 = 1").UpdateColumn("pnl", d("0")).Error)

	result, err := f.trades.RecalculateAll(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Trades)
	assert.Equal(t, 2, result.Accounts)

	assert.True(t, f.balance(t, f.accountA.ID).Equal(d("10007")))
	assert.True(t, f.balance(t, f.accountB.ID).Equal(d("5000")))
}

func (f *fixture) assertLedger(t *testing.T, accountID uuid.UUID, initial decimal.Decimal) {
	t.Helper()
	trades, err := f.trades.ListForAnalytics(f.ctx, TradeSearchOptions{AccountID: &accountID})
	require.NoError(t, err)

	want := initial
	for _, tr := range trades {
		want = want.Add(tr.Pnl.Decimal)
	}
	got := f.balance(t, accountID)
	assert.True(t, got.Equal(want), "balance %s != initial + sum(pnl) %s", got, want)
}

func TestTradeRepository_BalanceExactWithHighScaleValues(t *testing.T) {
	f := newFixture(t)

	// more significant digits than a float64 carries
	initial := d("1234567890.12345678")
	account := (&model.AccountPayload{Name: "Crypto", Type: model.AccountTypeFunded, InitialBalance: initial}).ToAccount()
	require.NoError(t, f.accounts.Create(f.ctx, account))

	created := make([]*model.Trade, 0, 12)
	for i := 0; i < 12; i++ {
		tr := f.newTrade(account.ID, "1")
		tr.Symbol = "BTCUSD"
		tr.Quantity = model.NewNumeric(d("0.01234567"))
		tr.EntryPrice = model.NewNumeric(d("65432.12345678").Add(decimal.New(int64(i), -4)))
		tr.ExitPrice = model.NewNumeric(d("65500.87654321").Sub(decimal.New(int64(7*i), -3)))
		tr.Commissions = model.NewNumeric(d("0.00000003"))
		tr.StopLossPlanned = model.NewNullNumeric(d("65400.11111111"))
		tr.TakeProfitPlanned = model.NullNumeric{}
		require.NoError(t, f.trades.Create(f.ctx, tr, nil))
		created = append(created, tr)
	}
	f.assertLedger(t, account.ID, initial)

	_, err := f.trades.Update(f.ctx, created[3].ID, setExit("65301.99999999"), nil)
	require.NoError(t, err)
	f.assertLedger(t, account.ID, initial)

	_, err = f.trades.Update(f.ctx, created[7].ID, func(tr *model.Trade) error {
		tr.AccountID = f.accountA.ID
		tr.Quantity = model.NewNumeric(d("0.00987654"))
		return nil
	}, nil)
	require.NoError(t, err)
	f.assertLedger(t, account.ID, initial)
	f.assertLedger(t, f.accountA.ID, d("10000"))

	var storage string
	require.NoError(t, f.db.Raw("SELECT typeof(current_balance) FROM accounts WHERE id = ?", account.ID).Scan(&storage).Error)
	assert.Equal(t, "text", storage)
}
