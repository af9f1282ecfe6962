package flow

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/finsalud/finbot/internal/analysis"
	"github.com/finsalud/finbot/internal/models"
)

// Fixed reply texts used across states.
const (
	msgRegistrationHeader = "📋 *REGISTRO DE NUEVA EMPRESA* 📋\n\nPor favor, escribe el nombre de la empresa:"
	msgAskAnnualValue     = "¿Cuál es el valor anual de la empresa en COP? (ingresa solo números, sin puntos ni comas)"
	msgAskProfit          = "¿Cuáles son las ganancias de la empresa en COP? (ingresa solo números, sin puntos ni comas)"
	msgAskSector          = "¿A qué sector pertenece la empresa?"
	msgAskEmployees       = "¿Cuántos empleados tiene la empresa? (ingresa solo el número)"
	msgAskAssets          = "¿Cuál es el valor en activos de la empresa en COP? (ingresa solo números, sin puntos ni comas)"
	msgAskReceivables     = "¿Cuál es el valor de la cartera de la empresa en COP? (ingresa solo números, sin puntos ni comas)"
	msgAskDebt            = "¿Cuál es el valor de las deudas de la empresa en COP? (ingresa solo números, sin puntos ni comas)"
	msgInvalidAmount      = "⚠️ Por favor ingresa un valor numérico válido (solo números, sin puntos ni comas)."
	msgInvalidInteger     = "⚠️ Por favor ingresa un número entero válido."
	msgGenerating         = "⏳ Estoy generando el análisis de la empresa..."
	msgRegistrationError  = "❌ Ocurrió un error al procesar los datos. Por favor intenta nuevamente."
	msgCancelled          = "Operación cancelada. ¿En qué más puedo ayudarte?"
	msgNotUnderstood      = "No entiendo esa petición. Escribe *ayuda* para ver los comandos disponibles."
	msgEmptyDatabase      = "📭 No hay empresas registradas en el sistema."
	msgSearchTermMissing  = "Por favor, especifica qué término quieres buscar.\nEjemplo: 'buscar tecnología'"
	msgAnalyzeNameMissing = "Por favor, especifica qué empresa quieres analizar.\nEjemplo: 'analizar Empresa ABC'"
	msgUnsupportedKind    = "Por ahora solo puedo procesar mensajes de texto y de voz. ¿En qué puedo ayudarte?"
)

func msgOverwritePrompt(name string) string {
	return fmt.Sprintf("⚠️ La empresa *%s* ya existe. ¿Deseas actualizarla?\n\nResponde *sí* o *no*", name)
}

// formatCOP renders a monetary amount with dot thousands separators and no
// decimals, Colombian style: 1234567.0 -> "1.234.567".
func formatCOP(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return "∞"
	}
	s := strconv.FormatFloat(math.Round(v), 'f', 0, 64)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, digit := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(digit)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// formatRatio renders an indicator with two decimals, infinities as "∞".
func formatRatio(v float64) string {
	if math.IsInf(v, 0) {
		return "∞"
	}
	return fmt.Sprintf("%.2f", v)
}

// AnalysisMessage builds the full financial-analysis reply for a company.
func AnalysisMessage(c models.Company) string {
	ind := c.Analysis.Indicators
	eval := c.Analysis.Evaluation

	var b strings.Builder
	fmt.Fprintf(&b, "\n🏢 *ANÁLISIS FINANCIERO DE %s* 🏢\n\n", strings.ToUpper(c.Name))
	fmt.Fprintf(&b, "El análisis de la empresa *%s*, perteneciente al sector *%s*, ha sido completado.\n\n", c.Name, c.Sector)
	b.WriteString("📊 *DATOS FINANCIEROS:*\n")
	fmt.Fprintf(&b, "• Valor anual: $%s COP\n", formatCOP(c.AnnualValue))
	fmt.Fprintf(&b, "• Ganancias: $%s COP\n", formatCOP(c.Profit))
	fmt.Fprintf(&b, "• Activos: $%s COP\n", formatCOP(c.Assets))
	fmt.Fprintf(&b, "• Cartera: $%s COP\n", formatCOP(c.Receivables))
	fmt.Fprintf(&b, "• Deudas: $%s COP\n", formatCOP(c.Debt))
	fmt.Fprintf(&b, "• Número de empleados: %d\n\n", c.Employees)
	b.WriteString("📈 *INDICADORES CALCULADOS:*\n")
	fmt.Fprintf(&b, "• Ratio de liquidez: %s\n", formatRatio(ind.Liquidity))
	fmt.Fprintf(&b, "• Margen de ganancia: %s%%\n", formatRatio(ind.ProfitMargin))
	fmt.Fprintf(&b, "• Ratio de endeudamiento: %s%%\n", formatRatio(ind.DebtRatio))
	fmt.Fprintf(&b, "• Productividad por empleado: $%s COP\n\n", formatCOP(ind.Productivity))
	b.WriteString("🌟 *EVALUACIÓN GLOBAL:*\n")
	fmt.Fprintf(&b, "• Categoría: *%s*\n", eval.Category)
	fmt.Fprintf(&b, "• Puntuación: %d/100\n\n", eval.Score)
	fmt.Fprintf(&b, "📝 *DESCRIPCIÓN:*\n%s\n\n", eval.Description)
	b.WriteString("🔍 *RECOMENDACIONES:*")
	for _, rec := range analysis.Recommendations(ind) {
		fmt.Fprintf(&b, "\n• %s", rec)
	}
	return b.String()
}

// RegistrationVoiceSummary is the voice-note text sent after a registration.
func RegistrationVoiceSummary(c models.Company) string {
	eval := c.Analysis.Evaluation
	return fmt.Sprintf("El análisis de la empresa %s ha sido completado. La salud financiera se clasifica como %s con una puntuación de %d sobre 100.",
		c.Name, eval.Category, eval.Score)
}

// AnalysisVoiceSummary is the voice-note text for an on-demand analysis reply.
func AnalysisVoiceSummary(c models.Company) string {
	eval := c.Analysis.Evaluation
	return fmt.Sprintf("Aquí está el análisis de %s. La salud financiera se clasifica como %s con una puntuación de %d sobre 100.",
		c.Name, eval.Category, eval.Score)
}

// HelpMessage lists the available commands and natural-language examples.
func HelpMessage() string {
	return `
🤖 *COMANDOS DISPONIBLES* 🤖

• *ayuda* - Muestra esta información
• *nueva empresa* - Registra una nueva empresa
• *listar* - Muestra las empresas registradas
• *analizar [nombre]* - Analiza una empresa específica
• *buscar [término]* - Busca empresas por nombre o sector

También puedes hacer preguntas naturales como:
• "¿Cuál es la mejor empresa?"
• "¿Cuáles son los indicadores de [empresa]?"
• "¿Qué recomendaciones hay para [empresa]?"
• "¿Cuántas empresas hay en el sistema?"
• "¿Qué sectores hay registrados?"

Puedes enviar mensajes de texto o de voz para interactuar con el sistema.
`
}

// HelpVoiceSummary is the condensed help text used for the voice note.
func HelpVoiceSummary() string {
	return "Estos son los comandos disponibles: ayuda para mostrar información, nueva empresa para registrar, listar para ver empresas, analizar nombre para ver análisis y buscar término para encontrar empresas. También puedes hacer preguntas naturales sobre empresas."
}

func companyTable(header string, companies []models.Company) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("*NOMBRE* | *SECTOR* | *SALUD FINANCIERA*\n")
	b.WriteString("—————————————————————\n")
	for _, c := range companies {
		fmt.Fprintf(&b, "• *%s* | %s | %s\n", c.Name, c.Sector, c.Analysis.Evaluation.Category)
	}
	b.WriteString("\nPara ver detalles de una empresa específica, escribe:\n*analizar [nombre de la empresa]*")
	return b.String()
}

// ListMessage builds the registered-companies table.
func ListMessage(companies []models.Company) string {
	return companyTable("📋 *EMPRESAS REGISTRADAS* 📋\n\n", companies)
}

// ListVoiceSummary names up to five companies for the voice note.
func ListVoiceSummary(companies []models.Company) string {
	var entries []string
	for _, c := range companies {
		entries = append(entries, fmt.Sprintf("%s en el sector %s", c.Name, c.Sector))
	}
	limit := len(entries)
	if limit > 5 {
		limit = 5
	}
	summary := "Empresas registradas: " + strings.Join(entries[:limit], ", ")
	if len(entries) > 5 {
		summary += " y otras más"
	}
	return summary
}

// SearchResultsMessage builds the matched-companies table for a search term.
func SearchResultsMessage(term string, results []models.Company) string {
	header := fmt.Sprintf("🔍 *RESULTADOS DE BÚSQUEDA PARA '%s'* 🔍\n\n", term)
	return companyTable(header, results)
}

// SearchVoiceSummary names up to three matches for the voice note.
func SearchVoiceSummary(term string, results []models.Company) string {
	var entries []string
	limit := len(results)
	if limit > 3 {
		limit = 3
	}
	for _, c := range results[:limit] {
		entries = append(entries, fmt.Sprintf("%s en el sector %s", c.Name, c.Sector))
	}
	summary := fmt.Sprintf("Encontré %d empresas que coinciden con %s: %s", len(results), term, strings.Join(entries, ", "))
	if len(results) > 3 {
		summary += " y otras más"
	}
	return summary
}

// NoSearchResultsMessage reports an empty search.
func NoSearchResultsMessage(term string) string {
	return fmt.Sprintf("🔍 No se encontraron empresas con el término *%s*.", term)
}

// NotFoundMessage reports a missing company, with did-you-mean suggestions.
func NotFoundMessage(name string, suggestions []string) string {
	msg := fmt.Sprintf("❌ No se encontró la empresa *%s*.", name)
	if len(suggestions) > 0 {
		msg += "\n\n¿Quizás quisiste decir?\n"
		for _, s := range suggestions {
			msg += fmt.Sprintf("• *%s*\n", s)
		}
	}
	return msg
}

// NotFoundVoiceSummary is the voice variant, naming up to two suggestions.
func NotFoundVoiceSummary(name string, suggestions []string) string {
	summary := fmt.Sprintf("No se encontró la empresa %s.", name)
	if len(suggestions) > 0 {
		limit := len(suggestions)
		if limit > 2 {
			limit = 2
		}
		summary += fmt.Sprintf(" ¿Quizás quisiste decir %s?", strings.Join(suggestions[:limit], ", "))
	}
	return summary
}

// BestCompanyMessage highlights the highest-scoring company.
func BestCompanyMessage(c models.Company) string {
	var b strings.Builder
	b.WriteString("🏆 *EMPRESA CON MEJOR SALUD FINANCIERA* 🏆\n\n")
	fmt.Fprintf(&b, "• Nombre: *%s*\n", c.Name)
	fmt.Fprintf(&b, "• Sector: %s\n", c.Sector)
	fmt.Fprintf(&b, "• Puntuación: %d/100\n", c.Analysis.Evaluation.Score)
	fmt.Fprintf(&b, "• Categoría: *%s*\n\n", c.Analysis.Evaluation.Category)
	fmt.Fprintf(&b, "Para ver el análisis completo, escribe:\n*analizar %s*", c.Name)
	return b.String()
}

// BestCompanyVoiceSummary is the voice variant.
func BestCompanyVoiceSummary(c models.Company) string {
	return fmt.Sprintf("La empresa con mejor salud financiera es %s del sector %s con una puntuación de %d sobre 100.",
		c.Name, c.Sector, c.Analysis.Evaluation.Score)
}

// WorstCompanyMessage highlights the lowest-scoring company.
func WorstCompanyMessage(c models.Company) string {
	var b strings.Builder
	b.WriteString("⚠️ *EMPRESA CON SALUD FINANCIERA MÁS BAJA* ⚠️\n\n")
	fmt.Fprintf(&b, "• Nombre: *%s*\n", c.Name)
	fmt.Fprintf(&b, "• Sector: %s\n", c.Sector)
	fmt.Fprintf(&b, "• Puntuación: %d/100\n", c.Analysis.Evaluation.Score)
	fmt.Fprintf(&b, "• Categoría: *%s*\n\n", c.Analysis.Evaluation.Category)
	fmt.Fprintf(&b, "Para ver el análisis completo, escribe:\n*analizar %s*", c.Name)
	return b.String()
}

// WorstCompanyVoiceSummary is the voice variant.
func WorstCompanyVoiceSummary(c models.Company) string {
	return fmt.Sprintf("La empresa con peor salud financiera es %s del sector %s con una puntuación de %d sobre 100.",
		c.Name, c.Sector, c.Analysis.Evaluation.Score)
}

// SectorCount pairs a sector with the number of companies registered in it.
type SectorCount struct {
	Sector string
	Count  int
}

// SectorsMessage lists the registered sectors with company counts.
func SectorsMessage(sectors []SectorCount) string {
	var b strings.Builder
	b.WriteString("🏭 *SECTORES REGISTRADOS* 🏭\n\n")
	for _, sc := range sectors {
		fmt.Fprintf(&b, "• *%s*: %d empresa", sc.Sector, sc.Count)
		if sc.Count != 1 {
			b.WriteString("s")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// SectorsVoiceSummary names up to five sectors for the voice note.
func SectorsVoiceSummary(sectors []SectorCount) string {
	var entries []string
	limit := len(sectors)
	if limit > 5 {
		limit = 5
	}
	for _, sc := range sectors[:limit] {
		entries = append(entries, fmt.Sprintf("%s con %d empresas", sc.Sector, sc.Count))
	}
	summary := "Los sectores registrados son: " + strings.Join(entries, ", ")
	if len(sectors) > 5 {
		summary += " y otros más"
	}
	return summary
}

// CountMessage reports how many companies are registered.
func CountMessage(n int) string {
	return fmt.Sprintf("📊 Hay *%d* empresas registradas en el sistema.", n)
}

// CountVoiceSummary is the voice variant.
func CountVoiceSummary(n int) string {
	return fmt.Sprintf("Hay %d empresas registradas en el sistema.", n)
}

// IndicatorsMessage reports the three headline indicators for a company.
func IndicatorsMessage(c models.Company) string {
	ind := c.Analysis.Indicators
	var b strings.Builder
	fmt.Fprintf(&b, "📊 *INDICADORES FINANCIEROS DE %s* 📊\n\n", c.Name)
	fmt.Fprintf(&b, "• Liquidez: %s\n", formatRatio(ind.Liquidity))
	fmt.Fprintf(&b, "• Margen de ganancia: %s%%\n", formatRatio(ind.ProfitMargin))
	fmt.Fprintf(&b, "• Ratio de endeudamiento: %s%%\n", formatRatio(ind.DebtRatio))
	return b.String()
}

// IndicatorsVoiceSummary is the voice variant.
func IndicatorsVoiceSummary(c models.Company) string {
	ind := c.Analysis.Indicators
	return fmt.Sprintf("Indicadores financieros de %s: Liquidez %s, Margen de ganancia %s por ciento, y Ratio de endeudamiento %s por ciento.",
		c.Name, formatRatio(ind.Liquidity), formatRatio(ind.ProfitMargin), formatRatio(ind.DebtRatio))
}

// RecommendationsMessage lists advisory recommendations for a company.
func RecommendationsMessage(c models.Company) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔍 *RECOMENDACIONES PARA %s* 🔍\n\n", strings.ToUpper(c.Name))
	for _, rec := range analysis.Recommendations(c.Analysis.Indicators) {
		fmt.Fprintf(&b, "• %s\n", rec)
	}
	return b.String()
}

// RecommendationsVoiceSummary is the voice variant.
func RecommendationsVoiceSummary(c models.Company) string {
	recs := analysis.Recommendations(c.Analysis.Indicators)
	return fmt.Sprintf("Recomendaciones para %s: %s", c.Name, strings.Join(recs, ", "))
}
