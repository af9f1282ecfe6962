package analysis

import (
	"math"
	"testing"

	"github.com/finsalud/finbot/internal/models"
)

func TestAnalyzeComputesIndicators(t *testing.T) {
	in := Input{
		Name:        "Acme",
		Sector:      "Tecnología",
		AnnualValue: 1_000_000,
		Profit:      100_000,
		Employees:   10,
		Assets:      1_000_000,
		Receivables: 50_000,
		Debt:        100_000,
	}
	result := Analyze(in)

	ind := result.Indicators
	if ind.Liquidity != 10 {
		t.Errorf("liquidity = %v, want 10", ind.Liquidity)
	}
	if ind.ProfitMargin != 10 {
		t.Errorf("profit margin = %v, want 10", ind.ProfitMargin)
	}
	if ind.DebtRatio != 10 {
		t.Errorf("debt ratio = %v, want 10", ind.DebtRatio)
	}
	if ind.Productivity != 100_000 {
		t.Errorf("productivity = %v, want 100000", ind.Productivity)
	}

	// liquidity 25 + margin 15 + debt 25 + productivity 5
	if result.Evaluation.Score != 70 {
		t.Errorf("score = %d, want 70", result.Evaluation.Score)
	}
	if result.Evaluation.Category != models.CategoryVeryGood {
		t.Errorf("category = %q, want %q", result.Evaluation.Category, models.CategoryVeryGood)
	}
	if result.Evaluation.MaxScore != MaxScore {
		t.Errorf("max score = %d, want %d", result.Evaluation.MaxScore, MaxScore)
	}
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	in := Input{AnnualValue: 5_000_000, Profit: 900_000, Employees: 3, Assets: 2_000_000, Receivables: 100_000, Debt: 700_000}
	first := Analyze(in)
	for i := 0; i < 10; i++ {
		if got := Analyze(in); got.Evaluation != first.Evaluation {
			t.Fatalf("run %d: evaluation %+v differs from first %+v", i, got.Evaluation, first.Evaluation)
		}
	}
}

func TestAnalyzeScoreBounds(t *testing.T) {
	inputs := []Input{
		{},
		{AnnualValue: 1, Profit: 1, Employees: 1, Assets: 1, Debt: 1},
		{AnnualValue: 1e12, Profit: 5e11, Employees: 1, Assets: 1e12, Debt: 1},
		{AnnualValue: 100, Profit: 0, Employees: 1000, Assets: 1, Debt: 1e9},
	}
	for _, in := range inputs {
		score := Analyze(in).Evaluation.Score
		if score < 20 || score > 100 {
			t.Errorf("Analyze(%+v) score = %d, want within [20, 100]", in, score)
		}
	}
}

func TestAnalyzeZeroDenominators(t *testing.T) {
	result := Analyze(Input{AnnualValue: 0, Profit: 100, Employees: 0, Assets: 100, Receivables: 0, Debt: 0})
	ind := result.Indicators
	if !math.IsInf(ind.Liquidity, 1) {
		t.Errorf("liquidity with zero debt = %v, want +Inf", ind.Liquidity)
	}
	if ind.ProfitMargin != 0 {
		t.Errorf("margin with zero annual value = %v, want 0", ind.ProfitMargin)
	}
	if ind.Productivity != 0 {
		t.Errorf("productivity with zero employees = %v, want 0", ind.Productivity)
	}

	result = Analyze(Input{Assets: 0, Debt: 100})
	if !math.IsInf(result.Indicators.DebtRatio, 1) {
		t.Errorf("debt ratio with zero assets = %v, want +Inf", result.Indicators.DebtRatio)
	}
	// +Inf liquidity lands in the top bucket, +Inf debt ratio in the bottom one.
	if got := scoreLiquidity(math.Inf(1)); got != 25 {
		t.Errorf("scoreLiquidity(+Inf) = %d, want 25", got)
	}
	if got := scoreDebtRatio(math.Inf(1)); got != 5 {
		t.Errorf("scoreDebtRatio(+Inf) = %d, want 5", got)
	}
}

func TestCategorizeThresholds(t *testing.T) {
	cases := []struct {
		score int
		want  models.Category
	}{
		{100, models.CategoryExcellent},
		{85, models.CategoryExcellent},
		{84, models.CategoryVeryGood},
		{70, models.CategoryVeryGood},
		{69, models.CategoryGood},
		{55, models.CategoryGood},
		{54, models.CategoryFair},
		{40, models.CategoryFair},
		{39, models.CategoryPoor},
		{25, models.CategoryPoor},
		{24, models.CategoryCritical},
		{20, models.CategoryCritical},
	}
	for _, c := range cases {
		got, desc := Categorize(c.score)
		if got != c.want {
			t.Errorf("Categorize(%d) = %q, want %q", c.score, got, c.want)
		}
		if desc == "" {
			t.Errorf("Categorize(%d) returned empty description", c.score)
		}
	}
}

func TestRecommendations(t *testing.T) {
	healthy := models.Indicators{Liquidity: 2, ProfitMargin: 20, DebtRatio: 30, Productivity: 200_000_000}
	recs := Recommendations(healthy)
	if len(recs) != 1 {
		t.Fatalf("healthy indicators got %d recommendations, want 1", len(recs))
	}

	struggling := models.Indicators{Liquidity: 0.5, ProfitMargin: 5, DebtRatio: 80, Productivity: 1_000_000}
	recs = Recommendations(struggling)
	if len(recs) != 4 {
		t.Fatalf("struggling indicators got %d recommendations, want 4", len(recs))
	}

	// Boundary values do not trigger advisories.
	boundary := models.Indicators{Liquidity: 1, ProfitMargin: 10, DebtRatio: 50, Productivity: 100_000_000}
	recs = Recommendations(boundary)
	if len(recs) != 1 {
		t.Fatalf("boundary indicators got %d recommendations, want the single healthy line", len(recs))
	}
}
