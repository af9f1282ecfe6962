package models

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
)

func TestIndicatorsInfinityRoundTrip(t *testing.T) {
	in := Indicators{
		Liquidity:    math.Inf(1),
		ProfitMargin: 12.5,
		DebtRatio:    math.Inf(1),
		Productivity: 0,
	}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"Infinity"`) {
		t.Fatalf("marshaled form %s missing Infinity encoding", data)
	}

	var out Indicators
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !math.IsInf(out.Liquidity, 1) || !math.IsInf(out.DebtRatio, 1) {
		t.Errorf("infinities lost in round trip: %+v", out)
	}
	if out.ProfitMargin != 12.5 || out.Productivity != 0 {
		t.Errorf("finite values changed in round trip: %+v", out)
	}
}

func TestCompanyValidate(t *testing.T) {
	c := Company{Name: "Acme"}
	if err := c.Validate(); err != nil {
		t.Errorf("valid company rejected: %v", err)
	}

	if err := (&Company{}).Validate(); err != ErrEmptyName {
		t.Errorf("empty name error = %v, want ErrEmptyName", err)
	}

	c = Company{Name: "Acme", Profit: -1}
	if err := c.Validate(); err != ErrNegativeValue {
		t.Errorf("negative profit error = %v, want ErrNegativeValue", err)
	}
}
