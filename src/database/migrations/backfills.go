package migrations

import (
	"tradejournal/src/model"

	"gorm.io/gorm"
)

// backfillAccountCurrentBalance seeds current_balance for accounts created
// before the column existed.
func backfillAccountCurrentBalance(db *gorm.DB) error {
	return db.Model(&model.Account{}).
		Where("current_balance IS NULL").
		Update("current_balance", gorm.Expr("initial_balance")).Error
}

// backfillTradeConfirmationsCount recomputes confirmations_count from the
// stored confirmation list.
func backfillTradeConfirmationsCount(db *gorm.DB) error {
	var trades []model.Trade
	return db.Select("id", "confirmations", "confirmations_count").
		FindInBatches(&trades, 200, func(tx *gorm.DB, _ int) error {
			for i := range trades {
				n := len(trades[i].Confirmations)
				if n == trades[i].ConfirmationsCount {
					continue
				}
				if err := db.Model(&model.Trade{}).
					Where("id = ?", trades[i].ID).
					UpdateColumn("confirmations_count", n).Error; err != nil {
					return err
				}
			}
			return nil
		}).Error
}

// backfillTagNameKey fills the folded lookup key of tags created before the
// column existed.
func backfillTagNameKey(db *gorm.DB) error {
	var tags []model.Tag
	if err := db.Select("id", "name").
		Where("name_key IS NULL OR name_key = ''").
		Find(&tags).Error; err != nil {
		return err
	}
	for i := range tags {
		if err := db.Model(&model.Tag{}).
			Where("id = ?", tags[i].ID).
			UpdateColumn("name_key", model.TagKey(tags[i].Name)).Error; err != nil {
			return err
		}
	}
	return nil
}
