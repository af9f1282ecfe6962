// Package analysis computes financial-health indicators and scores.
//
// Analyze is a pure function: given the same seven inputs it always produces
// the same indicators, score and category.
package analysis

import (
	"math"

	"github.com/finsalud/finbot/internal/models"
)

// MaxScore is the ceiling of the total evaluation score.
const MaxScore = 100

// Input holds the seven collected fields for one company.
type Input struct {
	Name        string
	Sector      string
	AnnualValue float64
	Profit      float64
	Employees   int
	Assets      float64
	Receivables float64
	Debt        float64
}

// Analyze computes the four indicators and the bucketed evaluation.
// Edge rules: liquidity is +Inf when debt is zero, debt ratio is +Inf when
// assets are zero, margin and productivity are zero when their denominator is.
func Analyze(in Input) models.Analysis {
	ind := models.Indicators{
		Liquidity:    ratioOrInf(in.Assets, in.Debt),
		ProfitMargin: percentOrZero(in.Profit, in.AnnualValue),
		DebtRatio:    percentOrInf(in.Debt, in.Assets),
		Productivity: ratioOrZero(in.AnnualValue, float64(in.Employees)),
	}

	score := scoreLiquidity(ind.Liquidity) +
		scoreProfitMargin(ind.ProfitMargin) +
		scoreDebtRatio(ind.DebtRatio) +
		scoreProductivity(ind.Productivity)

	category, description := Categorize(score)

	return models.Analysis{
		Indicators: ind,
		Evaluation: models.Evaluation{
			Score:       score,
			MaxScore:    MaxScore,
			Category:    category,
			Description: description,
		},
	}
}

// Categorize maps a total score to its ordinal category and fixed description.
func Categorize(score int) (models.Category, string) {
	switch {
	case score >= 85:
		return models.CategoryExcellent, "La empresa muestra una salud financiera excepcional."
	case score >= 70:
		return models.CategoryVeryGood, "La empresa tiene una posición financiera sólida."
	case score >= 55:
		return models.CategoryGood, "La empresa presenta indicadores financieros estables."
	case score >= 40:
		return models.CategoryFair, "La empresa tiene áreas que necesitan mejoras."
	case score >= 25:
		return models.CategoryPoor, "La empresa presenta problemas financieros significativos."
	default:
		return models.CategoryCritical, "La empresa requiere atención urgente en su gestión financiera."
	}
}

// Secondary thresholds used for advisory recommendations.
const (
	recommendLiquidityBelow    = 1.0
	recommendMarginBelow       = 10.0
	recommendDebtRatioAbove    = 50.0
	recommendProductivityBelow = 100_000_000
)

// Recommendations returns one advisory line per indicator on the
// needs-improvement side of its secondary threshold, or a single healthy line
// when none trigger.
func Recommendations(ind models.Indicators) []string {
	var recs []string
	if ind.Liquidity < recommendLiquidityBelow {
		recs = append(recs, "Mejorar la posición de liquidez para cubrir obligaciones a corto plazo.")
	}
	if ind.ProfitMargin < recommendMarginBelow {
		recs = append(recs, "Implementar estrategias para aumentar el margen de ganancia.")
	}
	if ind.DebtRatio > recommendDebtRatioAbove {
		recs = append(recs, "Reducir el nivel de endeudamiento para mejorar la estabilidad financiera.")
	}
	if ind.Productivity < recommendProductivityBelow {
		recs = append(recs, "Revisar la productividad por empleado para optimizar recursos.")
	}
	if len(recs) == 0 {
		recs = append(recs, "La empresa muestra indicadores saludables. Se recomienda mantener las estrategias actuales.")
	}
	return recs
}

func ratioOrInf(num, den float64) float64 {
	if den == 0 {
		return math.Inf(1)
	}
	return num / den
}

func ratioOrZero(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func percentOrZero(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den * 100
}

func percentOrInf(num, den float64) float64 {
	if den == 0 {
		return math.Inf(1)
	}
	return num / den * 100
}

// Each sub-score is bucketed into five non-overlapping thresholds worth
// 25/20/15/10/5 points, highest bucket best (lowest best for debt ratio).

func scoreLiquidity(v float64) int {
	switch {
	case v >= 2:
		return 25
	case v >= 1.5:
		return 20
	case v >= 1:
		return 15
	case v >= 0.5:
		return 10
	default:
		return 5
	}
}

func scoreProfitMargin(v float64) int {
	switch {
	case v >= 20:
		return 25
	case v >= 15:
		return 20
	case v >= 10:
		return 15
	case v >= 5:
		return 10
	default:
		return 5
	}
}

func scoreDebtRatio(v float64) int {
	switch {
	case v <= 30:
		return 25
	case v <= 40:
		return 20
	case v <= 50:
		return 15
	case v <= 60:
		return 10
	default:
		return 5
	}
}

func scoreProductivity(v float64) int {
	switch {
	case v >= 200_000_000:
		return 25
	case v >= 150_000_000:
		return 20
	case v >= 100_000_000:
		return 15
	case v >= 50_000_000:
		return 10
	default:
		return 5
	}
}
