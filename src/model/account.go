package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Account is a funded or evaluation trading account whose balance follows
// the P&L of the trades attributed to it.
type Account struct {
	ID                     uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	Name                   string      `gorm:"size:120;not null;uniqueIndex" json:"name"`
	Type                   AccountType `gorm:"size:20;not null" json:"type"`
	BrokerPlatform         *string     `gorm:"size:120" json:"broker_platform"`
	InitialBalance         Numeric     `gorm:"precision:20;scale:8;not null" json:"initial_balance"`
	CurrentBalance         Numeric     `gorm:"precision:20;scale:8" json:"current_balance"`
	CommissionSplitPercent NullNumeric `gorm:"precision:5;scale:2" json:"commission_split_percent"`
	MaxDailyDrawdown       NullNumeric `gorm:"precision:20;scale:8" json:"max_daily_drawdown"`
	MaxOverallDrawdown     NullNumeric `gorm:"precision:20;scale:8" json:"max_overall_drawdown"`
	ProfitTarget           NullNumeric `gorm:"precision:20;scale:8" json:"profit_target"`
	AllowedInstruments     *string     `gorm:"type:text" json:"allowed_instruments"`
	ViolationTriggers      *string     `gorm:"type:text" json:"violation_triggers"`
	StartDate              *Date       `gorm:"type:date" json:"start_date"`
	ExpirationDate         *Date       `gorm:"type:date" json:"expiration_date"`
	Notes                  *string     `gorm:"type:text" json:"notes"`
	CreatedAt              time.Time   `json:"created_at"`
	UpdatedAt              time.Time   `json:"updated_at"`
}

func (Account) TableName() string {
	return "accounts"
}

func (a *Account) BeforeCreate(_ *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// AccountPayload is the body of an account create request.
type AccountPayload struct {
	Name                   string               `json:"name"`
	Type                   AccountType          `json:"type"`
	BrokerPlatform         *string              `json:"broker_platform"`
	InitialBalance         decimal.Decimal      `json:"initial_balance"`
	CurrentBalance         decimal.NullDecimal  `json:"current_balance"`
	CommissionSplitPercent decimal.NullDecimal  `json:"commission_split_percent"`
	MaxDailyDrawdown       decimal.NullDecimal  `json:"max_daily_drawdown"`
	MaxOverallDrawdown     decimal.NullDecimal  `json:"max_overall_drawdown"`
	ProfitTarget           decimal.NullDecimal  `json:"profit_target"`
	AllowedInstruments     *string              `json:"allowed_instruments"`
	ViolationTriggers      *string              `json:"violation_triggers"`
	StartDate              *Date                `json:"start_date"`
	ExpirationDate         *Date                `json:"expiration_date"`
	Notes                  *string              `json:"notes"`
}

// AccountUpdatePayload carries only the fields a client wants to change.
// Balances are not editable here: they move only with trades.
type AccountUpdatePayload struct {
	Name                   *string                   `json:"name"`
	Type                   *AccountType              `json:"type"`
	BrokerPlatform         Optional[string]          `json:"broker_platform"`
	CommissionSplitPercent Optional[decimal.Decimal] `json:"commission_split_percent"`
	MaxDailyDrawdown       Optional[decimal.Decimal] `json:"max_daily_drawdown"`
	MaxOverallDrawdown     Optional[decimal.Decimal] `json:"max_overall_drawdown"`
	ProfitTarget           Optional[decimal.Decimal] `json:"profit_target"`
	AllowedInstruments     Optional[string]          `json:"allowed_instruments"`
	ViolationTriggers      Optional[string]          `json:"violation_triggers"`
	StartDate              Optional[Date]            `json:"start_date"`
	ExpirationDate         Optional[Date]            `json:"expiration_date"`
	Notes                  Optional[string]          `json:"notes"`
}

// ToAccount maps the payload onto a new account. The current balance starts
// at the initial balance unless given.
func (p *AccountPayload) ToAccount() *Account {
	initial := NewNumeric(p.InitialBalance).Rounded()
	current := initial
	if p.CurrentBalance.Valid {
		current = NewNumeric(p.CurrentBalance.Decimal).Rounded()
	}
	return &Account{
		Name:                   strings.TrimSpace(p.Name),
		Type:                   p.Type,
		BrokerPlatform:         p.BrokerPlatform,
		InitialBalance:         initial,
		CurrentBalance:         current,
		CommissionSplitPercent: NullNumericFrom(p.CommissionSplitPercent),
		MaxDailyDrawdown:       NullNumericFrom(p.MaxDailyDrawdown),
		MaxOverallDrawdown:     NullNumericFrom(p.MaxOverallDrawdown),
		ProfitTarget:           NullNumericFrom(p.ProfitTarget),
		AllowedInstruments:     p.AllowedInstruments,
		ViolationTriggers:      p.ViolationTriggers,
		StartDate:              p.StartDate,
		ExpirationDate:         p.ExpirationDate,
		Notes:                  p.Notes,
	}
}

// Apply writes the present fields of the payload onto a.
func (p *AccountUpdatePayload) Apply(a *Account) {
	if p.Name != nil {
		a.Name = strings.TrimSpace(*p.Name)
	}
	if p.Type != nil {
		a.Type = *p.Type
	}
	p.BrokerPlatform.Apply(&a.BrokerPlatform)
	if p.CommissionSplitPercent.Set {
		a.CommissionSplitPercent = nullNumeric(p.CommissionSplitPercent.Value)
	}
	if p.MaxDailyDrawdown.Set {
		a.MaxDailyDrawdown = nullNumeric(p.MaxDailyDrawdown.Value)
	}
	if p.MaxOverallDrawdown.Set {
		a.MaxOverallDrawdown = nullNumeric(p.MaxOverallDrawdown.Value)
	}
	if p.ProfitTarget.Set {
		a.ProfitTarget = nullNumeric(p.ProfitTarget.Value)
	}
	p.AllowedInstruments.Apply(&a.AllowedInstruments)
	p.ViolationTriggers.Apply(&a.ViolationTriggers)
	p.StartDate.Apply(&a.StartDate)
	p.ExpirationDate.Apply(&a.ExpirationDate)
	p.Notes.Apply(&a.Notes)
}
