package migrations

import (
	"errors"
	"fmt"
	"time"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// DataMigration is one applied backfill.
type DataMigration struct {
	ID        string    `gorm:"primaryKey;size:200;column:id"`
	AppliedAt time.Time `gorm:"not null;column:applied_at"`
}

func (DataMigration) TableName() string { return "data_migrations" }

type backfill struct {
	id string
	fn func(*gorm.DB) error
}

// backfills run in order. Ids are stored, never rename one.
var backfills = []backfill{
	{"00001_backfill_account_current_balance", backfillAccountCurrentBalance},
	{"00002_backfill_trade_confirmations_count", backfillTradeConfirmationsCount},
	{"00003_backfill_tag_name_key", backfillTagNameKey},
}

// RunOnce applies fn and records id in one transaction, unless id is
// already recorded.
func RunOnce(db *gorm.DB, id string, fn func(*gorm.DB) error) error {
	if db == nil {
		return nil
	}
	if id == "" {
		return errors.New("data migration id is empty")
	}
	if fn == nil {
		return fmt.Errorf("data migration %q has no function", id)
	}

	if !db.Migrator().HasTable(&DataMigration{}) {
		if err := db.AutoMigrate(&DataMigration{}); err != nil {
			return fmt.Errorf("create data_migrations: %w", err)
		}
	}

	applied := false
	err := db.Transaction(func(tx *gorm.DB) error {
		var seen int64
		if err := tx.Model(&DataMigration{}).Where("id = ?", id).Count(&seen).Error; err != nil {
			return fmt.Errorf("lookup data migration %q: %w", id, err)
		}
		if seen > 0 {
			return nil
		}

		if err := fn(tx); err != nil {
			return fmt.Errorf("data migration %q: %w", id, err)
		}
		if err := tx.Create(&DataMigration{ID: id, AppliedAt: time.Now().UTC()}).Error; err != nil {
			return fmt.Errorf("record data migration %q: %w", id, err)
		}
		applied = true
		return nil
	})
	if err != nil {
		return err
	}

	if applied {
		logger.WithFields(map[string]interface{}{
			"migration": id,
		}).Info("[database] Data migration applied")
	}
	return nil
}

// Run applies every pending backfill.
func Run(db *gorm.DB) error {
	for _, b := range backfills {
		if err := RunOnce(db, b.id, b.fn); err != nil {
			return err
		}
	}
	return nil
}
