package evidence

import (
	"encoding/json"
	"math"
	"strconv"
)

// MarshalJSON writes non-finite values as strings ("+Inf", "NaN"), which plain
// JSON numbers cannot carry
func (lr LikelihoodRatio) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Value       interface{} `json:"value"`
		Log10       interface{} `json:"log10"`
		Numerator   float64     `json:"numerator"`
		Denominator float64     `json:"denominator"`
	}{
		Value:       jsonFloat(lr.Value),
		Log10:       jsonFloat(lr.Log10),
		Numerator:   lr.Numerator,
		Denominator: lr.Denominator,
	})
}

// UnmarshalJSON accepts both numbers and the string forms written by MarshalJSON
func (lr *LikelihoodRatio) UnmarshalJSON(data []byte) error {
	var raw struct {
		Value       json.RawMessage `json:"value"`
		Log10       json.RawMessage `json:"log10"`
		Numerator   float64         `json:"numerator"`
		Denominator float64         `json:"denominator"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var err error
	if lr.Value, err = parseJSONFloat(raw.Value); err != nil {
		return err
	}
	if lr.Log10, err = parseJSONFloat(raw.Log10); err != nil {
		return err
	}
	lr.Numerator, lr.Denominator = raw.Numerator, raw.Denominator
	return nil
}

func jsonFloat(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return v
}

func parseJSONFloat(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 {
		return 0, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strconv.ParseFloat(s, 64)
	}
	var f float64
	err := json.Unmarshal(raw, &f)
	return f, err
}
