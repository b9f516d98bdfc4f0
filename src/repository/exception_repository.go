package repository

import (
	"context"

	"tradejournal/src/database"
	"tradejournal/src/model"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ExceptionRepository handles persistence of unexpected failures.
type ExceptionRepository struct {
	db *gorm.DB
}

func NewExceptionRepository() *ExceptionRepository {
	return &ExceptionRepository{
		db: database.MainDB,
	}
}

func NewExceptionRepositoryWithDB(db *gorm.DB) *ExceptionRepository {
	return &ExceptionRepository{db: db}
}

// Create persists a new exception.
func (r *ExceptionRepository) Create(
	ctx context.Context,
	exc *model.Exception,
) error {

	logger.WithFields(map[string]interface{}{
		"service":    exc.Service,
		"module":     exc.Module,
		"method":     exc.Method,
		"level":      exc.Level,
		"request_id": exc.RequestID,
	}).Error("Persisting system exception")

	return r.db.WithContext(ctx).Create(exc).Error
}
