package repository

import (
	"context"
	"errors"

	"tradejournal/src/database"
	"tradejournal/src/model"

	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// StrategyRepository handles read/write operations for strategies.
type StrategyRepository struct {
	db *gorm.DB
}

// NewStrategyRepository creates a new repository instance using the main database.
func NewStrategyRepository() *StrategyRepository {
	return &StrategyRepository{
		db: database.MainDB,
	}
}

func NewStrategyRepositoryWithDB(db *gorm.DB) *StrategyRepository {
	return &StrategyRepository{db: db}
}

// WithDB allows overriding the underlying *gorm.DB instance.
func (r *StrategyRepository) WithDB(db *gorm.DB) *StrategyRepository {
	return &StrategyRepository{db: db}
}

func (r *StrategyRepository) Create(ctx context.Context, strategy *model.Strategy) error {
	logger.WithFields(map[string]interface{}{
		"repo": "StrategyRepository",
		"op":   "Create",
		"name": strategy.Name,
	}).Debug("Creating strategy")

	if err := r.db.WithContext(ctx).Create(strategy).Error; err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "StrategyRepository",
			"op":   "Create",
		}).WithError(err).Error("Failed to create strategy")
		return err
	}

	logger.WithFields(map[string]interface{}{
		"repo":        "StrategyRepository",
		"op":          "Create",
		"strategy_id": strategy.ID,
	}).Info("Strategy created")

	return nil
}

// List returns every strategy ordered by name.
func (r *StrategyRepository) List(ctx context.Context) ([]model.Strategy, error) {
	var strategies []model.Strategy
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&strategies).Error
	return strategies, err
}

// FindByID returns (nil, nil) when the strategy does not exist.
func (r *StrategyRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Strategy, error) {
	var strategy model.Strategy
	err := r.db.WithContext(ctx).First(&strategy, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.WithFields(map[string]interface{}{
			"repo": "StrategyRepository",
			"op":   "FindByID",
			"id":   id,
		}).WithError(err).Error("Failed to fetch strategy")
		return nil, err
	}
	return &strategy, nil
}

// FindByIDs resolves many strategies at once, keyed by id. Missing ids are
// simply absent from the map.
func (r *StrategyRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.Strategy, error) {
	out := make(map[uuid.UUID]model.Strategy, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var strategies []model.Strategy
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&strategies).Error; err != nil {
		return nil, err
	}
	for _, s := range strategies {
		out[s.ID] = s
	}
	return out, nil
}

// Update saves every editable field of an existing strategy.
func (r *StrategyRepository) Update(ctx context.Context, strategy *model.Strategy) error {
	logger.WithFields(map[string]interface{}{
		"repo":        "StrategyRepository",
		"op":          "Update",
		"strategy_id": strategy.ID,
	}).Debug("Updating strategy")

	return r.db.WithContext(ctx).
		Model(strategy).
		Select("*").
		Omit("id", "created_at").
		Updates(strategy).Error
}

// Delete removes a strategy. It fails with ErrStrategyInUse while trades
// reference it and ErrStrategyNotFound when nothing was deleted.
func (r *StrategyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Trade{}).Where("strategy_id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			logger.WithFields(map[string]interface{}{
				"repo":        "StrategyRepository",
				"op":          "Delete",
				"strategy_id": id,
				"trades":      count,
			}).Warn("Refusing to delete strategy with trades")
			return ErrStrategyInUse
		}

		res := tx.Delete(&model.Strategy{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStrategyNotFound
		}
		return nil
	})
}
