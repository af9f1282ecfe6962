package flow

import (
	"strconv"
	"strings"

	"github.com/finsalud/finbot/internal/models"
)

// Synonym lists per command. Variants with stray spacing, capitalization or a
// trailing period come from real transcriptions of voice commands, which is why
// matching normalizes before comparing.
var commandSynonyms = []struct {
	command  models.Command
	variants []string
}{
	{models.CommandHelp, []string{"ayuda", "help", "comando", "comandos", "instrucciones", "?", "¿qué puedes hacer?", "¿qué haces?"}},
	{models.CommandNewCompany, []string{"nueva empresa", " nueva empresa.", "nueva compañía", "registrar empresa", "crear empresa", "agregar empresa", "añadir empresa"}},
	{models.CommandList, []string{"listar", "lista.", "listar.", "empresas", "lista", "listado", "mostrar empresas", "ver empresas", "listar empresas"}},
	{models.CommandSearch, []string{"buscar", "busca", "encuentra", "encontrar", "localizar", "buscame"}},
	{models.CommandAnalyze, []string{"analizar", "análisis", "analiza"}},
}

// DetectCommand matches lowercased text against the synonym table. A variant
// matches on equality or as a prefix followed by a space (so "buscar café"
// routes to buscar). First match in table order wins.
func DetectCommand(textLower string) (models.Command, bool) {
	for _, entry := range commandSynonyms {
		for _, variant := range entry.variants {
			v := strings.TrimSpace(variant)
			if textLower == v || strings.HasPrefix(textLower, v+" ") {
				return entry.command, true
			}
		}
	}
	return "", false
}

// CommandArgument strips the matched command word from the text and returns the
// remainder, e.g. "buscar tecnología" yields "tecnología".
func CommandArgument(text string) string {
	trimmed := strings.TrimSpace(text)
	if i := strings.IndexByte(trimmed, ' '); i >= 0 {
		return strings.TrimSpace(trimmed[i+1:])
	}
	return ""
}

// Affirmative answers accepted in the overwrite confirmation state. Anything
// else cancels.
var affirmatives = map[string]bool{
	"si": true, "sí": true, "s": true, "yes": true, "y": true,
	"claro": true, "por supuesto": true, "vale": true,
}

// IsAffirmative reports whether lowercased text confirms the overwrite.
func IsAffirmative(textLower string) bool {
	return affirmatives[textLower]
}

// ParseAmount parses a monetary amount the way users type them: thousands
// separators (commas and periods) are stripped first, then the remainder must
// be all digits. Decimals are intentionally rejected because amounts are in
// whole COP.
func ParseAmount(text string) (float64, error) {
	cleaned := strings.ReplaceAll(text, ",", "")
	cleaned = strings.ReplaceAll(cleaned, ".", "")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" || !isAllDigits(cleaned) {
		return 0, models.ErrInvalidNumber
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, models.ErrInvalidNumber
	}
	return v, nil
}

// ParseCount parses a plain non-negative integer, with no separator stripping.
func ParseCount(text string) (int, error) {
	cleaned := strings.TrimSpace(text)
	if cleaned == "" || !isAllDigits(cleaned) {
		return 0, models.ErrInvalidInteger
	}
	v, err := strconv.Atoi(cleaned)
	if err != nil {
		return 0, models.ErrInvalidInteger
	}
	return v, nil
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
