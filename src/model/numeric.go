package model

import (
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// NumericScale is the number of fractional digits kept for every stored
// decimal column.
const NumericScale = 8

// Numeric is a decimal.Decimal column. SQLite would give a numeric declared
// type REAL affinity and round trip the value through float64, so there the
// column is text and the exact decimal string is stored.
type Numeric struct {
	decimal.Decimal
}

// NullNumeric is the nullable form of Numeric.
type NullNumeric struct {
	decimal.NullDecimal
}

func NewNumeric(d decimal.Decimal) Numeric {
	return Numeric{Decimal: d}
}

func NewNullNumeric(d decimal.Decimal) NullNumeric {
	return NullNumeric{NullDecimal: decimal.NewNullDecimal(d)}
}

// NullNumericFrom wraps an already nullable decimal.
func NullNumericFrom(d decimal.NullDecimal) NullNumeric {
	return NullNumeric{NullDecimal: d}
}

// Rounded returns n rounded to NumericScale.
func (n Numeric) Rounded() Numeric {
	return Numeric{Decimal: n.Decimal.Round(NumericScale)}
}

func (n NullNumeric) Rounded() NullNumeric {
	if !n.Valid {
		return n
	}
	return NewNullNumeric(n.Decimal.Round(NumericScale))
}

func (Numeric) GormDataType() string { return "numeric" }

func (Numeric) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	return numericColumnType(db, field)
}

func (NullNumeric) GormDataType() string { return "numeric" }

func (NullNumeric) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	return numericColumnType(db, field)
}

func numericColumnType(db *gorm.DB, field *schema.Field) string {
	switch db.Dialector.Name() {
	case "sqlite":
		return "text"
	}
	if field.Precision > 0 {
		return fmt.Sprintf("numeric(%d,%d)", field.Precision, field.Scale)
	}
	return "numeric"
}
