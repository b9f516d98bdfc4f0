package model

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const MaxTagNameLength = 50

// Tag is a free-text label shared by many trades. NameKey is the folded name
// used for case-insensitive lookups; SQL LOWER only folds ASCII on SQLite.
type Tag struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:50;not null;uniqueIndex" json:"name"`
	NameKey   string    `gorm:"size:100;index" json:"-"`
	Type      string    `gorm:"size:20;not null" json:"type"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Tag) TableName() string {
	return "tags"
}

func (t *Tag) BeforeCreate(_ *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.NameKey = TagKey(t.Name)
	return nil
}

// NormalizeTagName trims raw and cuts it to MaxTagNameLength characters.
func NormalizeTagName(raw string) string {
	name := strings.TrimSpace(raw)
	if utf8.RuneCountInString(name) > MaxTagNameLength {
		name = strings.TrimSpace(string([]rune(name)[:MaxTagNameLength]))
	}
	return name
}

// TagKey folds a tag name for comparison.
func TagKey(name string) string {
	return strings.ToLower(name)
}
