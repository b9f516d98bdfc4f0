package repository

import (
	"context"
	"errors"

	"tradejournal/src/database"
	"tradejournal/src/model"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type TagRepository struct {
	db *gorm.DB
}

func NewTagRepository() *TagRepository {
	return &TagRepository{
		db: database.MainDB,
	}
}

func NewTagRepositoryWithDB(db *gorm.DB) *TagRepository {
	return &TagRepository{db: db}
}

// List returns every tag ordered by name.
func (r *TagRepository) List(ctx context.Context) ([]model.Tag, error) {
	var tags []model.Tag
	err := r.db.WithContext(ctx).Order("name ASC").Find(&tags).Error
	return tags, err
}

// GetOrCreate resolves tag names to tags inside tx, creating the missing
// ones with type custom. Names are trimmed and cut to 50 characters; blanks
// and case-insensitive duplicates are dropped. The result follows the order
// of names.
func (r *TagRepository) GetOrCreate(tx *gorm.DB, names []string) ([]model.Tag, error) {
	tags := make([]model.Tag, 0, len(names))
	seen := make(map[string]struct{}, len(names))

	for _, raw := range names {
		name := model.NormalizeTagName(raw)
		if name == "" {
			continue
		}
		key := model.TagKey(name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		var tag model.Tag
		err := tx.Where("name_key = ?", key).First(&tag).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			tag = model.Tag{Name: name, Type: model.TagTypeCustom}
			if err := tx.Create(&tag).Error; err != nil {
				return nil, err
			}
			logger.WithFields(map[string]interface{}{
				"repo":   "TagRepository",
				"op":     "GetOrCreate",
				"tag":    name,
				"tag_id": tag.ID,
			}).Info("Tag created")
		}
		tags = append(tags, tag)
	}

	return tags, nil
}
