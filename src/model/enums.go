package model

// Direction is the side a trade was taken on.
type Direction string

const (
	DirectionLong  Direction = "Long"
	DirectionShort Direction = "Short"
)

func (d Direction) Valid() bool {
	return d == DirectionLong || d == DirectionShort
}

// PreferredDirection is the side a strategy is meant to be traded on.
type PreferredDirection string

const (
	PreferredLong  PreferredDirection = "Long"
	PreferredShort PreferredDirection = "Short"
	PreferredBoth  PreferredDirection = "Both"
)

func (p PreferredDirection) Valid() bool {
	switch p {
	case PreferredLong, PreferredShort, PreferredBoth:
		return true
	}
	return false
}

// TradeSession labels the market session a trade was opened in.
type TradeSession string

const (
	SessionNY     TradeSession = "NY"
	SessionLondon TradeSession = "London"
	SessionAsia   TradeSession = "Asia"
)

func (s TradeSession) Valid() bool {
	switch s {
	case SessionNY, SessionLondon, SessionAsia:
		return true
	}
	return false
}

// AccountType classifies a funded-trading account.
type AccountType string

const (
	AccountTypeFunded     AccountType = "Funded"
	AccountTypeEvaluation AccountType = "Evaluation"
)

func (a AccountType) Valid() bool {
	return a == AccountTypeFunded || a == AccountTypeEvaluation
}

const (
	ImportMethodManual = "manual"
	ImportMethodCSV    = "csv"

	// TagTypeCustom is assigned to tags created implicitly from a trade.
	TagTypeCustom = "custom"
)
