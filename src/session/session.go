package session

import (
	"time"
	_ "time/tzdata"

	"tradejournal/src/model"
)

// Clock labels for an hour of the New York trading day.
type Clock string

const (
	ClockAsia     Clock = "asia_session"
	ClockLondon   Clock = "london_session"
	ClockUS       Clock = "us_session"
	ClockDeadZone Clock = "dead_zone"
)

var nyLocation = loadNewYork()

func loadNewYork() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.UTC
	}
	return loc
}

// Classify returns the clock label of t, read in New York time.
//
//	Asia      20:00 - 03:00
//	London    03:00 - 09:00
//	US        09:00 - 17:00
//	dead zone 17:00 - 20:00
func Classify(t time.Time) Clock {
	et := t.In(nyLocation)
	switch {
	case isDeadZone(et):
		return ClockDeadZone
	case isAsiaSession(et):
		return ClockAsia
	case isLondonSession(et):
		return ClockLondon
	default:
		return ClockUS
	}
}

// Detect maps the entry time of a trade onto a trade session. Entries in the
// dead zone have no session.
func Detect(entry time.Time) *model.TradeSession {
	var s model.TradeSession
	switch Classify(entry) {
	case ClockAsia:
		s = model.SessionAsia
	case ClockLondon:
		s = model.SessionLondon
	case ClockUS:
		s = model.SessionNY
	default:
		return nil
	}
	return &s
}

// Fill sets the session of t from its entry time when none was given.
func Fill(t *model.Trade) {
	if t.Session == nil && !t.EntryTimestamp.IsZero() {
		t.Session = Detect(t.EntryTimestamp)
	}
}

func isDeadZone(t time.Time) bool {
	return t.Hour() >= 17 && t.Hour() < 20
}

func isAsiaSession(t time.Time) bool {
	return t.Hour() >= 20 || t.Hour() < 3
}

func isLondonSession(t time.Time) bool {
	return t.Hour() >= 3 && t.Hour() < 9
}
