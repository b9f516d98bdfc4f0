package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Trade is one closed round trip. Strategy and account are referenced by id
// only; handlers resolve them through their repositories when rendering.
//
// Pnl, RiskPerTrade, RRPlanned, RMultiple and ConfirmationsCount are derived
// and must only be written from calculations.CalculateTradeMetrics output.
type Trade struct {
	ID                 uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	Symbol             string                      `gorm:"size:20;not null;index" json:"symbol"`
	Direction          Direction                   `gorm:"size:10;not null;index" json:"direction"`
	Quantity           Numeric                     `gorm:"precision:20;scale:8;not null" json:"quantity"`
	Session            *TradeSession               `gorm:"size:10;index" json:"session"`
	StrategyID         uuid.UUID                   `gorm:"type:uuid;not null;index" json:"strategy_id"`
	AccountID          uuid.UUID                   `gorm:"type:uuid;not null;index" json:"account_id"`
	EntryTimestamp     time.Time                   `gorm:"not null;index" json:"entryDateTime"`
	ExitTimestamp      time.Time                   `gorm:"not null;index" json:"exitDateTime"`
	EntryPrice         Numeric                     `gorm:"precision:20;scale:8;not null" json:"entry_price"`
	StopLossPlanned    NullNumeric                 `gorm:"precision:20;scale:8" json:"stopLossPlanned"`
	TakeProfitPlanned  NullNumeric                 `gorm:"precision:20;scale:8" json:"takeProfitPlanned"`
	ExitPrice          Numeric                     `gorm:"precision:20;scale:8;not null" json:"exit_price"`
	Commissions        Numeric                     `gorm:"precision:20;scale:8;not null;default:0" json:"commissions"`
	Confirmations      datatypes.JSONSlice[string] `json:"confirmations"`
	ConfirmationsCount int                         `gorm:"not null;default:0" json:"confirmations_count"`
	Notes              *string                     `gorm:"type:text" json:"notes"`
	ImportMethod       string                      `gorm:"size:16;not null;default:manual" json:"import_method"`
	Pnl                Numeric                     `gorm:"precision:20;scale:8;not null" json:"pnl"`
	RiskPerTrade       NullNumeric                 `gorm:"precision:20;scale:8" json:"risk_per_trade"`
	RRPlanned          NullNumeric                 `gorm:"precision:20;scale:8" json:"rr_planned"`
	RMultiple          NullNumeric                 `gorm:"precision:20;scale:8" json:"r_multiple"`
	CreatedAt          time.Time                   `json:"created_at"`
	UpdatedAt          time.Time                   `json:"updated_at"`

	Tags []Tag `gorm:"many2many:trade_tags;" json:"tags"`
}

func (Trade) TableName() string {
	return "trades"
}

func (t *Trade) BeforeCreate(_ *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TradeCreatePayload is the body of a trade create request and the row shape
// produced by the CSV importer.
type TradeCreatePayload struct {
	Symbol            string              `json:"symbol"`
	Direction         Direction           `json:"direction"`
	Quantity          decimal.Decimal     `json:"quantity"`
	Session           *TradeSession       `json:"session"`
	StrategyID        uuid.UUID           `json:"strategy_id"`
	AccountID         uuid.UUID           `json:"account_id"`
	EntryDateTime     Timestamp           `json:"entryDateTime"`
	ExitDateTime      Timestamp           `json:"exitDateTime"`
	EntryPrice        decimal.Decimal     `json:"entry_price"`
	StopLossPlanned   decimal.NullDecimal `json:"stopLossPlanned"`
	TakeProfitPlanned decimal.NullDecimal `json:"takeProfitPlanned"`
	ExitPrice         decimal.Decimal     `json:"exit_price"`
	Commissions       decimal.Decimal     `json:"commissions"`
	Confirmations     []string            `json:"confirmations"`
	Notes             *string             `json:"notes"`
	ImportMethod      string              `json:"import_method"`
	TagNames          []string            `json:"tag_names"`
}

// TradeUpdatePayload carries only the fields a client wants to change.
// TagNames replaces the full tag set when present.
type TradeUpdatePayload struct {
	Symbol            *string                   `json:"symbol"`
	Direction         *Direction                `json:"direction"`
	Quantity          *decimal.Decimal          `json:"quantity"`
	Session           Optional[TradeSession]    `json:"session"`
	StrategyID        *uuid.UUID                `json:"strategy_id"`
	AccountID         *uuid.UUID                `json:"account_id"`
	EntryDateTime     *Timestamp                `json:"entryDateTime"`
	ExitDateTime      *Timestamp                `json:"exitDateTime"`
	EntryPrice        *decimal.Decimal          `json:"entry_price"`
	StopLossPlanned   Optional[decimal.Decimal] `json:"stopLossPlanned"`
	TakeProfitPlanned Optional[decimal.Decimal] `json:"takeProfitPlanned"`
	ExitPrice         *decimal.Decimal          `json:"exit_price"`
	Commissions       *decimal.Decimal          `json:"commissions"`
	Confirmations     *[]string                 `json:"confirmations"`
	Notes             Optional[string]          `json:"notes"`
	TagNames          *[]string                 `json:"tag_names"`
}

// TradeResponse is a trade rendered with its resolved references.
type TradeResponse struct {
	Trade
	Strategy *Strategy `json:"strategy"`
	Account  *Account  `json:"account"`
}

// TradeListResponse is one page of trades.
type TradeListResponse struct {
	Trades  []TradeResponse `json:"trades"`
	Total   int64           `json:"total"`
	Page    int             `json:"page"`
	PerPage int             `json:"per_page"`
}
