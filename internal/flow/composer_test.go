package flow

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/finsalud/finbot/internal/models"
)

func TestFormatCOP(t *testing.T) {
	cases := []struct {
		value float64
		want  string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1.000"},
		{1234567, "1.234.567"},
		{1234567.6, "1.234.568"},
		{-1234567, "-1.234.567"},
		{math.Inf(1), "∞"},
	}
	for _, c := range cases {
		if got := formatCOP(c.value); got != c.want {
			t.Errorf("formatCOP(%v) = %q, want %q", c.value, got, c.want)
		}
	}
}

func TestFormatRatio(t *testing.T) {
	if got := formatRatio(1.005); got != "1.00" && got != "1.01" {
		t.Errorf("formatRatio(1.005) = %q", got)
	}
	if got := formatRatio(10); got != "10.00" {
		t.Errorf("formatRatio(10) = %q, want 10.00", got)
	}
	if got := formatRatio(math.Inf(1)); got != "∞" {
		t.Errorf("formatRatio(+Inf) = %q, want ∞", got)
	}
}

func analysisFixture() models.Company {
	return models.Company{
		Name:         "Acme",
		Sector:       "Tecnología",
		AnnualValue:  1_000_000,
		Profit:       100_000,
		Employees:    10,
		Assets:       1_000_000,
		Receivables:  50_000,
		Debt:         100_000,
		RegisteredAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Analysis: models.Analysis{
			Indicators: models.Indicators{Liquidity: 10, ProfitMargin: 10, DebtRatio: 10, Productivity: 100_000},
			Evaluation: models.Evaluation{Score: 70, MaxScore: 100, Category: models.CategoryVeryGood, Description: "La empresa tiene una posición financiera sólida."},
		},
	}
}

func TestAnalysisMessage(t *testing.T) {
	msg := AnalysisMessage(analysisFixture())

	for _, want := range []string{
		"🏢 *ANÁLISIS FINANCIERO DE ACME* 🏢",
		"perteneciente al sector *Tecnología*",
		"• Valor anual: $1.000.000 COP",
		"• Número de empleados: 10",
		"• Ratio de liquidez: 10.00",
		"• Margen de ganancia: 10.00%",
		"• Productividad por empleado: $100.000 COP",
		"• Categoría: *Muy Buena*",
		"• Puntuación: 70/100",
		"🔍 *RECOMENDACIONES:*",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("analysis message missing %q\n%s", want, msg)
		}
	}
}

func TestAnalysisMessageRendersInfinity(t *testing.T) {
	c := analysisFixture()
	c.Debt = 0
	c.Analysis.Indicators.Liquidity = math.Inf(1)
	msg := AnalysisMessage(c)
	if !strings.Contains(msg, "• Ratio de liquidez: ∞") {
		t.Errorf("infinite liquidity not rendered as ∞:\n%s", msg)
	}
}

func TestListVoiceSummaryCapsAtFive(t *testing.T) {
	var companies []models.Company
	for _, name := range []string{"A", "B", "C", "D", "E", "F", "G"} {
		c := analysisFixture()
		c.Name = name
		companies = append(companies, c)
	}
	summary := ListVoiceSummary(companies)
	if !strings.Contains(summary, "y otras más") {
		t.Errorf("summary lacks overflow marker: %q", summary)
	}
	if strings.Contains(summary, "F en el sector") {
		t.Errorf("summary names more than five companies: %q", summary)
	}
}

func TestSearchVoiceSummaryCapsAtThree(t *testing.T) {
	var companies []models.Company
	for _, name := range []string{"A", "B", "C", "D"} {
		c := analysisFixture()
		c.Name = name
		companies = append(companies, c)
	}
	summary := SearchVoiceSummary("tec", companies)
	if !strings.Contains(summary, "Encontré 4 empresas") {
		t.Errorf("summary lacks total count: %q", summary)
	}
	if strings.Contains(summary, "D en el sector") || !strings.Contains(summary, "y otras más") {
		t.Errorf("summary = %q, want three names plus overflow marker", summary)
	}
}

func TestNotFoundMessageSuggestions(t *testing.T) {
	msg := NotFoundMessage("Acmi", []string{"Acme", "Acme Norte"})
	if !strings.Contains(msg, "No se encontró la empresa *Acmi*") {
		t.Errorf("message = %q", msg)
	}
	if !strings.Contains(msg, "¿Quizás quisiste decir?") || !strings.Contains(msg, "• *Acme Norte*") {
		t.Errorf("suggestions missing: %q", msg)
	}

	bare := NotFoundMessage("Acmi", nil)
	if strings.Contains(bare, "Quizás") {
		t.Errorf("suggestion block present without suggestions: %q", bare)
	}
}

func TestSectorsMessagePluralizes(t *testing.T) {
	msg := SectorsMessage([]SectorCount{
		{Sector: "Tecnología", Count: 1},
		{Sector: "Alimentos", Count: 3},
	})
	if !strings.Contains(msg, "*Tecnología*: 1 empresa\n") {
		t.Errorf("singular form wrong: %q", msg)
	}
	if !strings.Contains(msg, "*Alimentos*: 3 empresas\n") {
		t.Errorf("plural form wrong: %q", msg)
	}
}

func TestRecommendationsMessageUppercasesName(t *testing.T) {
	c := analysisFixture()
	c.Name = "Débil"
	msg := RecommendationsMessage(c)
	if !strings.Contains(msg, "RECOMENDACIONES PARA DÉBIL") {
		t.Errorf("message = %q", msg)
	}
}
