package flow

import (
	"context"
	"strings"

	"github.com/finsalud/finbot/internal/models"
)

// answerQuestion tries to interpret an idle-state message as a natural-language
// question. It returns true when a reply was sent. Company-name mentions win
// over general questions; within a mention, indicators and recommendations win
// over the full analysis.
func (e *Engine) answerQuestion(ctx context.Context, from, question, messageID string) bool {
	companies, err := e.listSorted()
	if err != nil {
		return false
	}

	for _, c := range companies {
		if !strings.Contains(question, strings.ToLower(c.Name)) {
			continue
		}
		switch {
		case strings.Contains(question, "indicadores") || strings.Contains(question, "financi"):
			e.sendText(ctx, from, IndicatorsMessage(c), messageID)
			e.maybeVoice(ctx, from, IndicatorsVoiceSummary(c))
		case strings.Contains(question, "recomend"):
			e.sendText(ctx, from, RecommendationsMessage(c), messageID)
			e.maybeVoice(ctx, from, RecommendationsVoiceSummary(c))
		default:
			e.analyzeCompany(ctx, from, c.Name, messageID)
		}
		return true
	}

	switch {
	case strings.Contains(question, "mejor empresa") || strings.Contains(question, "empresa con mejor"):
		e.sendExtreme(ctx, from, companies, messageID, true)
		return true
	case strings.Contains(question, "peor empresa") || strings.Contains(question, "empresa con peor"):
		e.sendExtreme(ctx, from, companies, messageID, false)
		return true
	case strings.Contains(question, "cuántas empresas") || strings.Contains(question, "cuantas empresas") || strings.Contains(question, "número de empresas"):
		e.sendText(ctx, from, CountMessage(len(companies)), messageID)
		e.maybeVoice(ctx, from, CountVoiceSummary(len(companies)))
		return true
	case strings.Contains(question, "sectores"):
		e.sendSectors(ctx, from, companies, messageID)
		return true
	}
	return false
}

// sendExtreme reports the best (highest score) or worst (lowest score) company.
// Ties resolve to the alphabetically first name because the list is sorted.
func (e *Engine) sendExtreme(ctx context.Context, from string, companies []models.Company, messageID string, best bool) {
	if len(companies) == 0 {
		e.sendText(ctx, from, msgEmptyDatabase, messageID)
		return
	}
	pick := companies[0]
	for _, c := range companies[1:] {
		score := c.Analysis.Evaluation.Score
		if (best && score > pick.Analysis.Evaluation.Score) || (!best && score < pick.Analysis.Evaluation.Score) {
			pick = c
		}
	}
	if best {
		e.sendText(ctx, from, BestCompanyMessage(pick), messageID)
		e.maybeVoice(ctx, from, BestCompanyVoiceSummary(pick))
		return
	}
	e.sendText(ctx, from, WorstCompanyMessage(pick), messageID)
	e.maybeVoice(ctx, from, WorstCompanyVoiceSummary(pick))
}

func (e *Engine) sendSectors(ctx context.Context, from string, companies []models.Company, messageID string) {
	if len(companies) == 0 {
		e.sendText(ctx, from, msgEmptyDatabase, messageID)
		return
	}

	counts := make(map[string]int)
	var order []string
	for _, c := range companies {
		if _, seen := counts[c.Sector]; !seen {
			order = append(order, c.Sector)
		}
		counts[c.Sector]++
	}

	sectors := make([]SectorCount, 0, len(order))
	for _, sector := range order {
		sectors = append(sectors, SectorCount{Sector: sector, Count: counts[sector]})
	}
	e.sendText(ctx, from, SectorsMessage(sectors), messageID)
	e.maybeVoice(ctx, from, SectorsVoiceSummary(sectors))
}
