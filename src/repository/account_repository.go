package repository

import (
	"context"
	"errors"

	"tradejournal/src/database"
	"tradejournal/src/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AccountRepository handles read/write operations for accounts.
// Balances are only moved by TradeRepository.
type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{
		db: database.MainDB,
	}
}

func NewAccountRepositoryWithDB(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) WithDB(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, account *model.Account) error {
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "AccountRepository",
			"op":   "Create",
			"name": account.Name,
		}).WithError(err).Error("Failed to create account")
		return err
	}

	logger.WithFields(map[string]interface{}{
		"repo":       "AccountRepository",
		"op":         "Create",
		"account_id": account.ID,
		"balance":    account.CurrentBalance.String(),
	}).Info("Account created")

	return nil
}

// List returns every account ordered by name.
func (r *AccountRepository) List(ctx context.Context) ([]model.Account, error) {
	var accounts []model.Account
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&accounts).Error
	return accounts, err
}

// FindByID returns (nil, nil) when the account does not exist.
func (r *AccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	var account model.Account
	err := r.db.WithContext(ctx).First(&account, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.Account, error) {
	out := make(map[uuid.UUID]model.Account, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var accounts []model.Account
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&accounts).Error; err != nil {
		return nil, err
	}
	for _, a := range accounts {
		out[a.ID] = a
	}
	return out, nil
}

// Update saves the editable fields of an account. initial_balance and
// current_balance are never written here.
func (r *AccountRepository) Update(ctx context.Context, account *model.Account) error {
	logger.WithFields(map[string]interface{}{
		"repo":       "AccountRepository",
		"op":         "Update",
		"account_id": account.ID,
	}).Debug("Updating account")

	return r.db.WithContext(ctx).
		Model(account).
		Select("*").
		Omit("id", "initial_balance", "current_balance", "created_at").
		Updates(account).Error
}

// Delete removes an account unless trades are attributed to it.
func (r *AccountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Trade{}).Where("account_id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			logger.WithFields(map[string]interface{}{
				"repo":       "AccountRepository",
				"op":         "Delete",
				"account_id": id,
				"trades":     count,
			}).Warn("Refusing to delete account with trades")
			return ErrAccountInUse
		}

		res := tx.Delete(&model.Account{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAccountNotFound
		}
		return nil
	})
}

// adjustBalance adds delta to the account's current balance inside tx. The
// row is locked for the rest of the transaction and the sum is computed in
// decimal rather than SQL arithmetic.
func adjustBalance(tx *gorm.DB, accountID uuid.UUID, delta decimal.Decimal) error {
	if delta.IsZero() {
		return nil
	}

	var account model.Account
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", "current_balance").
		First(&account, "id = ?", accountID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAccountNotFound
		}
		return err
	}

	balance := model.NewNumeric(account.CurrentBalance.Add(delta))

	logger.WithFields(map[string]interface{}{
		"repo":       "AccountRepository",
		"op":         "adjustBalance",
		"account_id": accountID,
		"delta":      delta.String(),
		"balance":    balance.String(),
	}).Debug("Adjusting account balance")

	return tx.Model(&model.Account{}).
		Where("id = ?", accountID).
		UpdateColumn("current_balance", balance).Error
}
