package model

import (
	"fmt"
	"strings"
	"tradejournal/src/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	maxSymbolLength   = 20
	maxNameLength     = 120
	maxCategoryLength = 32
	maxImageURLLength = 512
)

var hundred = decimal.NewFromInt(100)

// ValidationError describes one rejected field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is returned when a payload cannot be accepted as a whole.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, e := range v {
		parts = append(parts, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (v *ValidationErrors) add(field, format string, args ...interface{}) {
	*v = append(*v, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (v ValidationErrors) errOrNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// Validate checks a strategy create payload.
func (p *StrategyPayload) Validate() error {
	var errs ValidationErrors
	name := strings.TrimSpace(p.Name)
	if name == "" {
		errs.add("name", "is required")
	} else if len(name) > maxNameLength {
		errs.add("name", "must be at most %d characters", maxNameLength)
	}
	if p.Category != nil && len(*p.Category) > maxCategoryLength {
		errs.add("category", "must be at most %d characters", maxCategoryLength)
	}
	if p.PreferredDirection != "" && !p.PreferredDirection.Valid() {
		errs.add("preferred_direction", "must be one of Long, Short, Both")
	}
	if p.ExampleImageURL != nil && len(*p.ExampleImageURL) > maxImageURLLength {
		errs.add("example_image_url", "must be at most %d characters", maxImageURLLength)
	}
	return errs.errOrNil()
}

// Validate checks a strategy update payload.
func (p *StrategyUpdatePayload) Validate() error {
	var errs ValidationErrors
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			errs.add("name", "must not be empty")
		} else if len(name) > maxNameLength {
			errs.add("name", "must be at most %d characters", maxNameLength)
		}
	}
	if p.Category.Value != nil && len(*p.Category.Value) > maxCategoryLength {
		errs.add("category", "must be at most %d characters", maxCategoryLength)
	}
	if p.PreferredDirection != nil && !p.PreferredDirection.Valid() {
		errs.add("preferred_direction", "must be one of Long, Short, Both")
	}
	if p.ExampleImageURL.Value != nil && len(*p.ExampleImageURL.Value) > maxImageURLLength {
		errs.add("example_image_url", "must be at most %d characters", maxImageURLLength)
	}
	return errs.errOrNil()
}

// Validate checks an account create payload.
func (p *AccountPayload) Validate() error {
	var errs ValidationErrors
	name := strings.TrimSpace(p.Name)
	if name == "" {
		errs.add("name", "is required")
	} else if len(name) > maxNameLength {
		errs.add("name", "must be at most %d characters", maxNameLength)
	}
	if !p.Type.Valid() {
		errs.add("type", "must be one of Funded, Evaluation")
	}
	if !p.InitialBalance.IsPositive() {
		errs.add("initial_balance", "must be greater than zero")
	}
	if p.CommissionSplitPercent.Valid {
		validatePercent(&errs, "commission_split_percent", p.CommissionSplitPercent.Decimal)
	}
	return errs.errOrNil()
}

// Validate checks an account update payload.
func (p *AccountUpdatePayload) Validate() error {
	var errs ValidationErrors
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		errs.add("name", "must not be empty")
	}
	if p.Type != nil && !p.Type.Valid() {
		errs.add("type", "must be one of Funded, Evaluation")
	}
	if p.CommissionSplitPercent.Value != nil {
		validatePercent(&errs, "commission_split_percent", *p.CommissionSplitPercent.Value)
	}
	return errs.errOrNil()
}

func validatePercent(errs *ValidationErrors, field string, v decimal.Decimal) {
	if v.IsNegative() || v.GreaterThan(hundred) {
		errs.add(field, "must be between 0 and 100")
	}
}

// Validate checks the shape of a trade create payload. The trade built from
// it is validated again by ValidateTrade.
func (p *TradeCreatePayload) Validate() error {
	var errs ValidationErrors
	if p.StrategyID == uuid.Nil {
		errs.add("strategy_id", "is required")
	}
	if p.AccountID == uuid.Nil {
		errs.add("account_id", "is required")
	}
	if p.EntryDateTime.IsZero() {
		errs.add("entryDateTime", "is required")
	}
	if p.ExitDateTime.IsZero() {
		errs.add("exitDateTime", "is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return ValidateTrade(p.ToTrade())
}

// ToTrade maps the payload onto a new trade. Derived fields are left zero.
func (p *TradeCreatePayload) ToTrade() *Trade {
	importMethod := p.ImportMethod
	if importMethod == "" {
		importMethod = ImportMethodManual
	}
	return &Trade{
		Symbol:            utils.NormalizeSymbol(p.Symbol),
		Direction:         p.Direction,
		Quantity:          NewNumeric(p.Quantity),
		Session:           p.Session,
		StrategyID:        p.StrategyID,
		AccountID:         p.AccountID,
		EntryTimestamp:    p.EntryDateTime.Time,
		ExitTimestamp:     p.ExitDateTime.Time,
		EntryPrice:        NewNumeric(p.EntryPrice),
		StopLossPlanned:   NullNumericFrom(p.StopLossPlanned),
		TakeProfitPlanned: NullNumericFrom(p.TakeProfitPlanned),
		ExitPrice:         NewNumeric(p.ExitPrice),
		Commissions:       NewNumeric(p.Commissions),
		Confirmations:     utils.UniqueStrings(p.Confirmations),
		Notes:             p.Notes,
		ImportMethod:      importMethod,
	}
}

// Apply writes the present fields of the payload onto t. Reference changes
// (strategy, account) and tags are handled by the repository.
func (p *TradeUpdatePayload) Apply(t *Trade) {
	if p.Symbol != nil {
		t.Symbol = utils.NormalizeSymbol(*p.Symbol)
	}
	if p.Direction != nil {
		t.Direction = *p.Direction
	}
	if p.Quantity != nil {
		t.Quantity = NewNumeric(*p.Quantity)
	}
	p.Session.Apply(&t.Session)
	if p.StrategyID != nil {
		t.StrategyID = *p.StrategyID
	}
	if p.AccountID != nil {
		t.AccountID = *p.AccountID
	}
	if p.EntryDateTime != nil {
		t.EntryTimestamp = p.EntryDateTime.Time
	}
	if p.ExitDateTime != nil {
		t.ExitTimestamp = p.ExitDateTime.Time
	}
	if p.EntryPrice != nil {
		t.EntryPrice = NewNumeric(*p.EntryPrice)
	}
	if p.StopLossPlanned.Set {
		t.StopLossPlanned = nullNumeric(p.StopLossPlanned.Value)
	}
	if p.TakeProfitPlanned.Set {
		t.TakeProfitPlanned = nullNumeric(p.TakeProfitPlanned.Value)
	}
	if p.ExitPrice != nil {
		t.ExitPrice = NewNumeric(*p.ExitPrice)
	}
	if p.Commissions != nil {
		t.Commissions = NewNumeric(*p.Commissions)
	}
	if p.Confirmations != nil {
		t.Confirmations = utils.UniqueStrings(*p.Confirmations)
	}
	p.Notes.Apply(&t.Notes)
}

func nullNumeric(v *decimal.Decimal) NullNumeric {
	if v == nil {
		return NullNumeric{}
	}
	return NewNullNumeric(*v)
}

// ValidateTrade enforces the input contract of the metrics calculator on a
// fully populated trade.
func ValidateTrade(t *Trade) error {
	var errs ValidationErrors
	if t.Symbol == "" {
		errs.add("symbol", "is required")
	} else if len(t.Symbol) > maxSymbolLength {
		errs.add("symbol", "must be at most %d characters", maxSymbolLength)
	}
	if !t.Direction.Valid() {
		errs.add("direction", "must be one of Long, Short")
	}
	if t.Session != nil && !t.Session.Valid() {
		errs.add("session", "must be one of NY, London, Asia")
	}
	if !t.Quantity.IsPositive() {
		errs.add("quantity", "must be greater than zero")
	}
	if !t.EntryPrice.IsPositive() {
		errs.add("entry_price", "must be greater than zero")
	}
	if !t.ExitPrice.IsPositive() {
		errs.add("exit_price", "must be greater than zero")
	}
	if t.StopLossPlanned.Valid && !t.StopLossPlanned.Decimal.IsPositive() {
		errs.add("stopLossPlanned", "must be greater than zero")
	}
	if t.TakeProfitPlanned.Valid && !t.TakeProfitPlanned.Decimal.IsPositive() {
		errs.add("takeProfitPlanned", "must be greater than zero")
	}
	if t.Commissions.IsNegative() {
		errs.add("commissions", "must be greater than or equal to zero")
	}
	if t.EntryPrice.Equal(t.ExitPrice.Decimal) {
		errs.add("exit_price", "entryPrice and exitPrice cannot be equal")
	}
	if t.ExitTimestamp.Before(t.EntryTimestamp) {
		errs.add("exitDateTime", "exitDateTime must be greater than or equal to entryDateTime")
	}
	return errs.errOrNil()
}
