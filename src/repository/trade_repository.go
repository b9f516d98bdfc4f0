package repository

import (
	"context"
	"errors"
	"sort"
	"time"

	"tradejournal/src/calculations"
	"tradejournal/src/database"
	"tradejournal/src/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TradeSearchOptions filters trade queries. Nil fields are ignored.
// StartDate bounds the entry timestamp, EndDate bounds the exit timestamp.
type TradeSearchOptions struct {
	Symbol     *string
	StrategyID *uuid.UUID
	AccountID  *uuid.UUID
	Session    *model.TradeSession
	Direction  *model.Direction
	StartDate  *time.Time
	EndDate    *time.Time

	Limit  int
	Offset int
}

// RecalculateResult reports what RecalculateAll touched.
type RecalculateResult struct {
	Trades   int `json:"trades"`
	Accounts int `json:"accounts"`
}

// TradeRepository persists trades. Every write recomputes the derived metrics
// and moves account balances in the same transaction.
type TradeRepository struct {
	db   *gorm.DB
	tags *TagRepository
}

func NewTradeRepository() *TradeRepository {
	return NewTradeRepositoryWithDB(database.MainDB)
}

func NewTradeRepositoryWithDB(db *gorm.DB) *TradeRepository {
	return &TradeRepository{db: db, tags: NewTagRepositoryWithDB(db)}
}

func (r *TradeRepository) WithDB(db *gorm.DB) *TradeRepository {
	return NewTradeRepositoryWithDB(db)
}

// Create inserts trade with its tags and credits its pnl to the account.
// ErrStrategyNotFound or ErrAccountNotFound is returned for unknown references.
func (r *TradeRepository) Create(ctx context.Context, trade *model.Trade, tagNames []string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureReferences(tx, trade.StrategyID, trade.AccountID); err != nil {
			return err
		}

		calculations.ApplyMetrics(trade)

		tags, err := r.tags.GetOrCreate(tx, tagNames)
		if err != nil {
			return err
		}
		trade.Tags = tags

		if err := tx.Omit("Tags.*").Create(trade).Error; err != nil {
			return err
		}

		return adjustBalance(tx, trade.AccountID, trade.Pnl.Decimal)
	})
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":   "TradeRepository",
			"op":     "Create",
			"symbol": trade.Symbol,
		}).WithError(err).Error("Failed to create trade")
		return err
	}

	logger.WithFields(map[string]interface{}{
		"repo":       "TradeRepository",
		"op":         "Create",
		"trade_id":   trade.ID,
		"account_id": trade.AccountID,
		"pnl":        trade.Pnl.String(),
	}).Info("Trade created")

	return nil
}

// Update loads the trade, lets apply mutate it, recomputes every derived
// field and settles the balance difference. A non nil tagNames replaces the
// tag set. apply errors abort the transaction untouched.
func (r *TradeRepository) Update(
	ctx context.Context,
	id uuid.UUID,
	apply func(*model.Trade) error,
	tagNames *[]string,
) (*model.Trade, error) {

	var trade model.Trade

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&trade, "id = ?", id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTradeNotFound
			}
			return err
		}
		if err := tx.Model(&trade).Association("Tags").Find(&trade.Tags); err != nil {
			return err
		}

		oldAccountID, oldPnl := trade.AccountID, trade.Pnl.Decimal
		oldStrategyID := trade.StrategyID

		if err := apply(&trade); err != nil {
			return err
		}
		trade.ID = id

		if trade.StrategyID != oldStrategyID {
			if err := ensureStrategy(tx, trade.StrategyID); err != nil {
				return err
			}
		}
		if trade.AccountID != oldAccountID {
			if err := ensureAccount(tx, trade.AccountID); err != nil {
				return err
			}
		}

		calculations.ApplyMetrics(&trade)

		if err := tx.Model(&trade).
			Select("*").
			Omit("id", "created_at", clause.Associations).
			Updates(&trade).Error; err != nil {
			return err
		}

		if tagNames != nil {
			tags, err := r.tags.GetOrCreate(tx, *tagNames)
			if err != nil {
				return err
			}
			if err := tx.Model(&trade).Association("Tags").Replace(tags); err != nil {
				return err
			}
			trade.Tags = tags
		}

		deltas := map[uuid.UUID]decimal.Decimal{}
		if trade.AccountID == oldAccountID {
			deltas[trade.AccountID] = trade.Pnl.Sub(oldPnl)
		} else {
			deltas[oldAccountID] = oldPnl.Neg()
			deltas[trade.AccountID] = trade.Pnl.Decimal
		}
		return applyDeltas(tx, deltas)
	})
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":     "TradeRepository",
			"op":       "Update",
			"trade_id": id,
		}).WithError(err).Warn("Trade update aborted")
		return nil, err
	}

	logger.WithFields(map[string]interface{}{
		"repo":       "TradeRepository",
		"op":         "Update",
		"trade_id":   id,
		"account_id": trade.AccountID,
		"pnl":        trade.Pnl.String(),
	}).Info("Trade updated")

	return &trade, nil
}

// FindByID returns (nil, nil) if the trade is not found.
func (r *TradeRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Trade, error) {
	var trade model.Trade
	err := r.db.WithContext(ctx).
		Preload("Tags").
		First(&trade, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.WithFields(map[string]interface{}{
			"repo":     "TradeRepository",
			"op":       "FindByID",
			"trade_id": id,
		}).WithError(err).Error("Failed to fetch trade")
		return nil, err
	}
	return &trade, nil
}

// Search returns trades matching opts, most recent exit first.
func (r *TradeRepository) Search(ctx context.Context, opts TradeSearchOptions) ([]model.Trade, error) {
	q := applyTradeFilters(r.db.WithContext(ctx).Model(&model.Trade{}), opts).
		Preload("Tags").
		Order("exit_timestamp DESC, id DESC")

	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}

	var trades []model.Trade
	if err := q.Find(&trades).Error; err != nil {
		return nil, err
	}
	return trades, nil
}

// Count returns how many trades match opts, ignoring pagination.
func (r *TradeRepository) Count(ctx context.Context, opts TradeSearchOptions) (int64, error) {
	var total int64
	err := applyTradeFilters(r.db.WithContext(ctx).Model(&model.Trade{}), opts).
		Count(&total).Error
	return total, err
}

// ListForAnalytics returns every trade matching opts in exit order with
// tags loaded. Pagination fields are ignored.
func (r *TradeRepository) ListForAnalytics(ctx context.Context, opts TradeSearchOptions) ([]model.Trade, error) {
	var trades []model.Trade
	err := applyTradeFilters(r.db.WithContext(ctx).Model(&model.Trade{}), opts).
		Preload("Tags").
		Order("exit_timestamp ASC, id ASC").
		Find(&trades).Error
	return trades, err
}

// RecalculateAll recomputes the metrics of every trade and rebuilds every
// account balance as initial_balance plus the pnl of its trades.
func (r *TradeRepository) RecalculateAll(ctx context.Context) (RecalculateResult, error) {
	var result RecalculateResult

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pnlByAccount := map[uuid.UUID]decimal.Decimal{}

		var batch []model.Trade
		err := tx.Model(&model.Trade{}).FindInBatches(&batch, 200, func(_ *gorm.DB, _ int) error {
			for i := range batch {
				t := &batch[i]
				calculations.ApplyMetrics(t)
				pnlByAccount[t.AccountID] = pnlByAccount[t.AccountID].Add(t.Pnl.Decimal)

				if err := tx.Model(&model.Trade{}).
					Where("id = ?", t.ID).
					UpdateColumns(map[string]interface{}{
						"quantity":            t.Quantity,
						"entry_price":         t.EntryPrice,
						"exit_price":          t.ExitPrice,
						"commissions":         t.Commissions,
						"stop_loss_planned":   t.StopLossPlanned,
						"take_profit_planned": t.TakeProfitPlanned,
						"pnl":                 t.Pnl,
						"risk_per_trade":      t.RiskPerTrade,
						"rr_planned":          t.RRPlanned,
						"r_multiple":          t.RMultiple,
						"confirmations_count": t.ConfirmationsCount,
					}).Error; err != nil {
					return err
				}
				result.Trades++
			}
			return nil
		}).Error
		if err != nil {
			return err
		}

		var accounts []model.Account
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "initial_balance").
			Find(&accounts).Error; err != nil {
			return err
		}
		for _, a := range accounts {
			balance := model.NewNumeric(a.InitialBalance.Add(pnlByAccount[a.ID]))
			if err := tx.Model(&model.Account{}).
				Where("id = ?", a.ID).
				UpdateColumn("current_balance", balance).Error; err != nil {
				return err
			}
			result.Accounts++
		}
		return nil
	})
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "TradeRepository",
			"op":   "RecalculateAll",
		}).WithError(err).Error("Recalculation failed")
		return RecalculateResult{}, err
	}

	logger.WithFields(map[string]interface{}{
		"repo":     "TradeRepository",
		"op":       "RecalculateAll",
		"trades":   result.Trades,
		"accounts": result.Accounts,
	}).Info("Recalculation completed")

	return result, nil
}

func applyTradeFilters(q *gorm.DB, opts TradeSearchOptions) *gorm.DB {
	if opts.Symbol != nil {
		q = q.Where("symbol = ?", *opts.Symbol)
	}
	if opts.StrategyID != nil {
		q = q.Where("strategy_id = ?", *opts.StrategyID)
	}
	if opts.AccountID != nil {
		q = q.Where("account_id = ?", *opts.AccountID)
	}
	if opts.Session != nil {
		q = q.Where("session = ?", *opts.Session)
	}
	if opts.Direction != nil {
		q = q.Where("direction = ?", *opts.Direction)
	}
	if opts.StartDate != nil {
		q = q.Where("entry_timestamp >= ?", *opts.StartDate)
	}
	if opts.EndDate != nil {
		q = q.Where("exit_timestamp <= ?", *opts.EndDate)
	}
	return q
}

func ensureReferences(tx *gorm.DB, strategyID, accountID uuid.UUID) error {
	if err := ensureStrategy(tx, strategyID); err != nil {
		return err
	}
	return ensureAccount(tx, accountID)
}

func ensureStrategy(tx *gorm.DB, id uuid.UUID) error {
	var count int64
	if err := tx.Model(&model.Strategy{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrStrategyNotFound
	}
	return nil
}

func ensureAccount(tx *gorm.DB, id uuid.UUID) error {
	var count int64
	if err := tx.Model(&model.Account{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// applyDeltas adjusts balances in a stable id order so concurrent
// reattributions lock accounts in the same sequence.
func applyDeltas(tx *gorm.DB, deltas map[uuid.UUID]decimal.Decimal) error {
	ids := make([]uuid.UUID, 0, len(deltas))
	for id := range deltas {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	for _, id := range ids {
		if err := adjustBalance(tx, id, deltas[id]); err != nil {
			return err
		}
	}
	return nil
}
