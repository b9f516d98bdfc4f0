package analytics

import (
	"encoding/json"
	"math"
	"strconv"
)

const infinityLiteral = `"Infinity"`

// Ratio is a float64 that survives a JSON round trip when it is +Inf.
// A profit factor with no losing trades is infinite and encoding/json refuses
// to encode IEEE infinities, so it is rendered as the string "Infinity".
type Ratio float64

func (r Ratio) IsInf() bool {
	return math.IsInf(float64(r), 1)
}

func (r Ratio) MarshalJSON() ([]byte, error) {
	if r.IsInf() {
		return []byte(infinityLiteral), nil
	}
	return json.Marshal(float64(r))
}

func (r *Ratio) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == infinityLiteral {
		*r = Ratio(math.Inf(1))
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*r = Ratio(f)
	return nil
}

func (r Ratio) String() string {
	if r.IsInf() {
		return "Infinity"
	}
	return strconv.FormatFloat(float64(r), 'f', 2, 64)
}
