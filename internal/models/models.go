// Package models defines the core data structures for finbot.
//
// It includes the normalized inbound event shape, company records with their
// financial analysis, and shared error values used across modules.
package models

import (
	"errors"
	"time"
)

// MessageKind classifies an inbound WhatsApp message.
type MessageKind string

const (
	// MessageKindText is a plain text message.
	MessageKindText MessageKind = "text"
	// MessageKindAudio is a voice note or audio message.
	MessageKindAudio MessageKind = "audio"
	// MessageKindOther is any unsupported message type (image, document, sticker, ...).
	MessageKindOther MessageKind = "other"
)

// Error variables for better error handling and testability
var (
	ErrNoMessages      = errors.New("webhook payload contains no messages")
	ErrCompanyNotFound = errors.New("company not found")
	ErrInvalidNumber   = errors.New("value is not a valid non-negative number")
	ErrInvalidInteger  = errors.New("value is not a valid non-negative integer")
	ErrEmptyTranscript = errors.New("transcription returned empty text")
	ErrEmptyRecipient  = errors.New("recipient cannot be empty")
	ErrEmptyBody       = errors.New("message body cannot be empty")
	ErrEmptyName       = errors.New("company name cannot be empty")
	ErrNegativeValue   = errors.New("financial values cannot be negative")
)

// Event is the normalized inbound webhook event handed to the dispatcher.
// Exactly one of Text or MediaID is meaningful depending on Kind.
type Event struct {
	MessageID string      `json:"message_id"`
	From      string      `json:"from"` // sender phone number
	Kind      MessageKind `json:"kind"`
	Text      string      `json:"text,omitempty"`     // body for text messages
	MediaID   string      `json:"media_id,omitempty"` // media identifier for audio messages
	Timestamp int64       `json:"timestamp,omitempty"`
}

// Company is a registered company record. It is keyed by Name (case-sensitive
// as entered) and replaced wholesale on re-registration.
type Company struct {
	Name         string    `json:"name"`
	Sector       string    `json:"sector"`
	AnnualValue  float64   `json:"annual_value"`
	Profit       float64   `json:"profit"`
	Employees    int       `json:"employees"`
	Assets       float64   `json:"assets"`
	Receivables  float64   `json:"receivables"`
	Debt         float64   `json:"debt"`
	RegisteredAt time.Time `json:"registered_at"`
	Analysis     Analysis  `json:"analysis"`
}

// Validate checks the structural invariants of a company record.
func (c *Company) Validate() error {
	if c.Name == "" {
		return ErrEmptyName
	}
	if c.AnnualValue < 0 || c.Profit < 0 || c.Assets < 0 || c.Receivables < 0 || c.Debt < 0 || c.Employees < 0 {
		return ErrNegativeValue
	}
	return nil
}

// Indicators holds the four computed financial ratios. Liquidity and DebtRatio
// may be +Inf when the respective denominator is zero.
type Indicators struct {
	Liquidity    float64 `json:"liquidity"`     // assets / debt
	ProfitMargin float64 `json:"profit_margin"` // 100 * profit / annual_value, percent
	DebtRatio    float64 `json:"debt_ratio"`    // 100 * debt / assets, percent
	Productivity float64 `json:"productivity"`  // annual_value / employees
}

// Category is the six-level ordinal financial-health label.
type Category string

const (
	CategoryExcellent Category = "Excelente"
	CategoryVeryGood  Category = "Muy Buena"
	CategoryGood      Category = "Buena"
	CategoryFair      Category = "Regular"
	CategoryPoor      Category = "Deficiente"
	CategoryCritical  Category = "Crítica"
)

// Evaluation is the scored outcome derived from the indicators.
type Evaluation struct {
	Score       int      `json:"score"` // sum of four bucketed sub-scores, 20..100
	MaxScore    int      `json:"max_score"`
	Category    Category `json:"category"`
	Description string   `json:"description"`
}

// TokenTag pairs a token with its part-of-speech tag.
type TokenTag struct {
	Token string `json:"token"`
	Tag   string `json:"tag"`
}

// Enrichment carries optional NLP decoration of the company name and sector.
// It never influences the evaluation and may be empty when produced by the
// no-op enricher.
type Enrichment struct {
	NameTokens   []string   `json:"name_tokens,omitempty"`
	SectorTokens []string   `json:"sector_tokens,omitempty"`
	NameLemmas   []string   `json:"name_lemmas,omitempty"`
	SectorLemmas []string   `json:"sector_lemmas,omitempty"`
	NameTags     []TokenTag `json:"name_tags,omitempty"`
	SectorTags   []TokenTag `json:"sector_tags,omitempty"`
	NameVector   []float64  `json:"name_vector,omitempty"`
	SectorVector []float64  `json:"sector_vector,omitempty"`
}

// Analysis is the immutable result of analyzing a company's seven inputs.
// Recomputing from the same inputs must reproduce the same score and category.
type Analysis struct {
	Indicators Indicators `json:"indicators"`
	Evaluation Evaluation `json:"evaluation"`
	Enrichment Enrichment `json:"enrichment,omitempty"`
}
