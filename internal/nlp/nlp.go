// Package nlp provides optional linguistic enrichment of company metadata.
//
// Enrichment is decorative: it is stored alongside the analysis for potential
// future use and never influences the financial score. The Enricher interface
// has a rich implementation and a no-op implementation so callers depend only
// on the capability, never on library availability.
package nlp

import (
	"hash/fnv"
	"strings"
	"unicode"

	"github.com/finsalud/finbot/internal/models"
)

// VectorDim is the dimensionality of the hashed embedding vectors.
const VectorDim = 10

// Enricher produces linguistic decoration for a company name and sector.
type Enricher interface {
	Enrich(name, sector string) models.Enrichment
}

// Noop is an Enricher that attaches nothing.
type Noop struct{}

// NewNoop returns an Enricher that produces empty enrichment.
func NewNoop() *Noop { return &Noop{} }

// Enrich returns an empty enrichment.
func (*Noop) Enrich(name, sector string) models.Enrichment {
	return models.Enrichment{}
}

// Rich is an Enricher performing tokenization, suffix-based lemmatization,
// noun-default POS tagging and deterministic hashed embeddings.
type Rich struct{}

// NewRich returns the full enricher.
func NewRich() *Rich { return &Rich{} }

// Enrich tokenizes and decorates the name and sector.
func (*Rich) Enrich(name, sector string) models.Enrichment {
	nameTokens := Tokenize(name)
	sectorTokens := Tokenize(sector)
	return models.Enrichment{
		NameTokens:   nameTokens,
		SectorTokens: sectorTokens,
		NameLemmas:   lemmatizeAll(nameTokens),
		SectorLemmas: lemmatizeAll(sectorTokens),
		NameTags:     tagAll(nameTokens),
		SectorTags:   tagAll(sectorTokens),
		NameVector:   embed(nameTokens),
		SectorVector: embed(sectorTokens),
	}
}

// Tokenize lowercases the text, strips punctuation and splits on whitespace.
func Tokenize(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, text)
	return strings.Fields(cleaned)
}

// Spanish inflection suffixes stripped for a crude lemma, longest first.
var lemmaSuffixes = []string{"ciones", "mente", "ación", "idad", "ados", "idas", "ción", "eros", "eras", "es", "os", "as", "s"}

func lemmatize(token string) string {
	for _, suffix := range lemmaSuffixes {
		if len(token) > len(suffix)+2 && strings.HasSuffix(token, suffix) {
			return strings.TrimSuffix(token, suffix)
		}
	}
	return token
}

func lemmatizeAll(tokens []string) []string {
	lemmas := make([]string, len(tokens))
	for i, t := range tokens {
		lemmas[i] = lemmatize(t)
	}
	return lemmas
}

// tagAll assigns every token the noun tag. Without a trained tagger the noun
// default matches the behavior of the simplified tagging path.
func tagAll(tokens []string) []models.TokenTag {
	tags := make([]models.TokenTag, len(tokens))
	for i, t := range tokens {
		tags[i] = models.TokenTag{Token: t, Tag: "NN"}
	}
	return tags
}

// embed produces a deterministic VectorDim-dimensional bag-of-hashes vector.
func embed(tokens []string) []float64 {
	vec := make([]float64, VectorDim)
	for _, t := range tokens {
		h := fnv.New32a()
		h.Write([]byte(t))
		vec[h.Sum32()%VectorDim]++
	}
	return vec
}
