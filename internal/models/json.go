package models

import (
	"encoding/json"
	"fmt"
	"math"
)

// encoding/json rejects non-finite numbers, but liquidity and debt ratio are
// +Inf whenever the denominator is zero. Indicators therefore round-trips
// infinities through the string "Infinity".

type indicatorsJSON struct {
	Liquidity    jsonFloat `json:"liquidity"`
	ProfitMargin jsonFloat `json:"profit_margin"`
	DebtRatio    jsonFloat `json:"debt_ratio"`
	Productivity jsonFloat `json:"productivity"`
}

// MarshalJSON implements json.Marshaler.
func (i Indicators) MarshalJSON() ([]byte, error) {
	return json.Marshal(indicatorsJSON{
		Liquidity:    jsonFloat(i.Liquidity),
		ProfitMargin: jsonFloat(i.ProfitMargin),
		DebtRatio:    jsonFloat(i.DebtRatio),
		Productivity: jsonFloat(i.Productivity),
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (i *Indicators) UnmarshalJSON(data []byte) error {
	var aux indicatorsJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	i.Liquidity = float64(aux.Liquidity)
	i.ProfitMargin = float64(aux.ProfitMargin)
	i.DebtRatio = float64(aux.DebtRatio)
	i.Productivity = float64(aux.Productivity)
	return nil
}

type jsonFloat float64

func (f jsonFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsInf(v, 1) {
		return []byte(`"Infinity"`), nil
	}
	if math.IsInf(v, -1) {
		return []byte(`"-Infinity"`), nil
	}
	return json.Marshal(v)
}

func (f *jsonFloat) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"Infinity"`:
		*f = jsonFloat(math.Inf(1))
		return nil
	case `"-Infinity"`:
		*f = jsonFloat(math.Inf(-1))
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("invalid indicator value %s: %w", data, err)
	}
	*f = jsonFloat(v)
	return nil
}
