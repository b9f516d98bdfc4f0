package model

import (
	"time"

	"gorm.io/datatypes"
)

// Exception is an unexpected failure (typically a recovered panic) kept
// for later inspection.
type Exception struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Service string `gorm:"size:100;index" json:"service"` // e.g. "tradejournal"
	Module  string `gorm:"size:100;index" json:"module"`  // e.g. "http"
	Method  string `gorm:"size:200" json:"method"`        // e.g. "PUT /api/trades/{id}"

	RequestID string `gorm:"size:100;index" json:"request_id,omitempty"`
	Message   string `gorm:"type:text" json:"message"`
	Stack     string `gorm:"type:text" json:"stack"`
	Level     string `gorm:"size:20;index" json:"level"` // error | fatal

	Context datatypes.JSONMap `json:"context,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (Exception) TableName() string {
	return "exceptions"
}
