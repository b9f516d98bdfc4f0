package model

import (
	"strings"
	"time"

	"tradejournal/src/utils"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Strategy is a named playbook trades are attributed to.
type Strategy struct {
	ID                 uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	Name               string                      `gorm:"size:120;not null;uniqueIndex" json:"name"`
	Category           *string                     `gorm:"size:32" json:"category"`
	Timeframes         datatypes.JSONSlice[string] `json:"timeframes"`
	PreferredDirection PreferredDirection          `gorm:"size:10;not null;default:Both" json:"preferred_direction"`
	EntryCriteria      *string                     `gorm:"type:text" json:"entry_criteria"`
	ExitCriteria       *string                     `gorm:"type:text" json:"exit_criteria"`
	InvalidConditions  *string                     `gorm:"type:text" json:"invalid_conditions"`
	StateOfMind        *string                     `gorm:"type:text" json:"state_of_mind"`
	CommonBias         *string                     `gorm:"type:text" json:"common_bias"`
	ExampleImageURL    *string                     `gorm:"size:512" json:"example_image_url"`
	CreatedAt          time.Time                   `json:"created_at"`
	UpdatedAt          time.Time                   `json:"updated_at"`
}

func (Strategy) TableName() string {
	return "strategies"
}

func (s *Strategy) BeforeCreate(_ *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// StrategyPayload is the body of a strategy create request.
type StrategyPayload struct {
	Name               string             `json:"name"`
	Category           *string            `json:"category"`
	Timeframes         []string           `json:"timeframes"`
	PreferredDirection PreferredDirection `json:"preferred_direction"`
	EntryCriteria      *string            `json:"entry_criteria"`
	ExitCriteria       *string            `json:"exit_criteria"`
	InvalidConditions  *string            `json:"invalid_conditions"`
	StateOfMind        *string            `json:"state_of_mind"`
	CommonBias         *string            `json:"common_bias"`
	ExampleImageURL    *string            `json:"example_image_url"`
}

// StrategyUpdatePayload carries only the fields a client wants to change.
type StrategyUpdatePayload struct {
	Name               *string             `json:"name"`
	Category           Optional[string]    `json:"category"`
	Timeframes         *[]string           `json:"timeframes"`
	PreferredDirection *PreferredDirection `json:"preferred_direction"`
	EntryCriteria      Optional[string]    `json:"entry_criteria"`
	ExitCriteria       Optional[string]    `json:"exit_criteria"`
	InvalidConditions  Optional[string]    `json:"invalid_conditions"`
	StateOfMind        Optional[string]    `json:"state_of_mind"`
	CommonBias         Optional[string]    `json:"common_bias"`
	ExampleImageURL    Optional[string]    `json:"example_image_url"`
}

// ToStrategy maps the payload onto a new strategy.
func (p *StrategyPayload) ToStrategy() *Strategy {
	direction := p.PreferredDirection
	if direction == "" {
		direction = PreferredBoth
	}
	return &Strategy{
		Name:               strings.TrimSpace(p.Name),
		Category:           p.Category,
		Timeframes:         utils.UniqueStrings(p.Timeframes),
		PreferredDirection: direction,
		EntryCriteria:      p.EntryCriteria,
		ExitCriteria:       p.ExitCriteria,
		InvalidConditions:  p.InvalidConditions,
		StateOfMind:        p.StateOfMind,
		CommonBias:         p.CommonBias,
		ExampleImageURL:    p.ExampleImageURL,
	}
}

// Apply writes the present fields of the payload onto s.
func (p *StrategyUpdatePayload) Apply(s *Strategy) {
	if p.Name != nil {
		s.Name = strings.TrimSpace(*p.Name)
	}
	p.Category.Apply(&s.Category)
	if p.Timeframes != nil {
		s.Timeframes = utils.UniqueStrings(*p.Timeframes)
	}
	if p.PreferredDirection != nil {
		s.PreferredDirection = *p.PreferredDirection
	}
	p.EntryCriteria.Apply(&s.EntryCriteria)
	p.ExitCriteria.Apply(&s.ExitCriteria)
	p.InvalidConditions.Apply(&s.InvalidConditions)
	p.StateOfMind.Apply(&s.StateOfMind)
	p.CommonBias.Apply(&s.CommonBias)
	p.ExampleImageURL.Apply(&s.ExampleImageURL)
}
