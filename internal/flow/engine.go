// Package flow implements the conversational state machine for company
// registration and analysis over WhatsApp.
//
// Engine.HandleText is the single entry point for inbound text (including
// transcribed voice). Each phone number gets an independent session; the
// registration flow walks the session through the awaiting states and always
// returns it to idle, even on error.
package flow

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/finsalud/finbot/internal/analysis"
	"github.com/finsalud/finbot/internal/messaging"
	"github.com/finsalud/finbot/internal/models"
	"github.com/finsalud/finbot/internal/nlp"
	"github.com/finsalud/finbot/internal/store"
)

// Synthesizer converts reply text to voice-note audio bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Opts holds engine configuration.
type Opts struct {
	VoicePolicy *messaging.VoicePolicy
	Synthesizer Synthesizer
	Enricher    nlp.Enricher
	Now         func() time.Time
}

// Option configures the engine.
type Option func(*Opts)

// WithVoicePolicy overrides the voice-note attachment policy.
func WithVoicePolicy(p *messaging.VoicePolicy) Option {
	return func(o *Opts) {
		o.VoicePolicy = p
	}
}

// WithSynthesizer enables voice-note replies through the given synthesizer.
// Without one the engine replies with text only.
func WithSynthesizer(s Synthesizer) Option {
	return func(o *Opts) {
		o.Synthesizer = s
	}
}

// WithEnricher overrides the NLP enricher applied at registration time.
func WithEnricher(e nlp.Enricher) Option {
	return func(o *Opts) {
		o.Enricher = e
	}
}

// WithClock injects the clock used for registration timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *Opts) {
		o.Now = now
	}
}

// Engine drives the conversation state machine.
type Engine struct {
	store    store.CompanyStore
	sender   messaging.Sender
	voice    *messaging.VoicePolicy
	synth    Synthesizer
	enricher nlp.Enricher
	sessions *SessionRegistry
	now      func() time.Time
}

// NewEngine creates an engine over the given store and sender.
func NewEngine(st store.CompanyStore, sender messaging.Sender, opts ...Option) *Engine {
	cfg := Opts{
		VoicePolicy: messaging.NewVoicePolicy(),
		Enricher:    nlp.NewRich(),
		Now:         time.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Engine{
		store:    st,
		sender:   sender,
		voice:    cfg.VoicePolicy,
		synth:    cfg.Synthesizer,
		enricher: cfg.Enricher,
		sessions: NewSessionRegistry(),
		now:      cfg.Now,
	}
}

// UnsupportedKindMessage is the reply for message types the bot cannot handle.
func UnsupportedKindMessage() string {
	return msgUnsupportedKind
}

// HandleText routes one inbound text message through the sender's session.
// messageID threads replies back to the inbound message when the transport
// supports it.
func (e *Engine) HandleText(ctx context.Context, from, text, messageID string) {
	session := e.sessions.Get(from)
	session.mu.Lock()
	defer session.mu.Unlock()

	trimmed := strings.TrimSpace(text)
	lower := strings.ToLower(trimmed)
	slog.Debug("Handling text message", "from", from, "state", session.State)

	switch session.State {
	case models.StateIdle:
		e.handleIdle(ctx, session, from, trimmed, lower, messageID)
	case models.StateAwaitingName:
		e.handleName(ctx, session, from, trimmed, messageID)
	case models.StateConfirmOverwrite:
		e.handleConfirmOverwrite(ctx, session, from, lower, messageID)
	case models.StateAwaitingAnnualValue:
		e.handleAmount(ctx, session, from, trimmed, messageID, func(v float64) {
			session.Draft.AnnualValue = v
			session.State = models.StateAwaitingProfit
			e.sendText(ctx, from, msgAskProfit, messageID)
		})
	case models.StateAwaitingProfit:
		e.handleAmount(ctx, session, from, trimmed, messageID, func(v float64) {
			session.Draft.Profit = v
			session.State = models.StateAwaitingSector
			e.sendText(ctx, from, msgAskSector, messageID)
		})
	case models.StateAwaitingSector:
		session.Draft.Sector = trimmed
		session.State = models.StateAwaitingEmployees
		e.sendText(ctx, from, msgAskEmployees, messageID)
	case models.StateAwaitingEmployees:
		count, err := ParseCount(trimmed)
		if err != nil {
			e.sendText(ctx, from, msgInvalidInteger, messageID)
			return
		}
		session.Draft.Employees = count
		session.State = models.StateAwaitingAssets
		e.sendText(ctx, from, msgAskAssets, messageID)
	case models.StateAwaitingAssets:
		e.handleAmount(ctx, session, from, trimmed, messageID, func(v float64) {
			session.Draft.Assets = v
			session.State = models.StateAwaitingReceivables
			e.sendText(ctx, from, msgAskReceivables, messageID)
		})
	case models.StateAwaitingReceivables:
		e.handleAmount(ctx, session, from, trimmed, messageID, func(v float64) {
			session.Draft.Receivables = v
			session.State = models.StateAwaitingDebt
			e.sendText(ctx, from, msgAskDebt, messageID)
		})
	case models.StateAwaitingDebt:
		e.handleAmount(ctx, session, from, trimmed, messageID, func(v float64) {
			e.finalizeRegistration(ctx, session, from, v, messageID)
		})
	default:
		slog.Warn("Session in unknown state, resetting", "from", from, "state", session.State)
		session.Reset()
		e.sendText(ctx, from, msgNotUnderstood, messageID)
	}
}

func (e *Engine) handleIdle(ctx context.Context, session *Session, from, trimmed, lower, messageID string) {
	command, ok := DetectCommand(lower)
	if !ok {
		if e.answerQuestion(ctx, from, lower, messageID) {
			return
		}
		e.sendText(ctx, from, msgNotUnderstood, messageID)
		return
	}

	switch command {
	case models.CommandHelp:
		e.sendText(ctx, from, HelpMessage(), messageID)
		e.maybeVoice(ctx, from, HelpVoiceSummary())
	case models.CommandNewCompany:
		session.State = models.StateAwaitingName
		session.Draft = Draft{}
		e.sendText(ctx, from, msgRegistrationHeader, messageID)
	case models.CommandList:
		e.sendCompanyList(ctx, from, messageID)
	case models.CommandSearch:
		term := CommandArgument(trimmed)
		if term == "" {
			e.sendText(ctx, from, msgSearchTermMissing, messageID)
			return
		}
		e.searchCompanies(ctx, from, term, messageID)
	case models.CommandAnalyze:
		name := CommandArgument(trimmed)
		if name == "" {
			e.sendText(ctx, from, msgAnalyzeNameMissing, messageID)
			return
		}
		e.analyzeCompany(ctx, from, name, messageID)
	}
}

func (e *Engine) handleName(ctx context.Context, session *Session, from, name, messageID string) {
	session.Draft.Name = name

	_, err := e.store.Get(name)
	switch {
	case err == nil:
		session.State = models.StateConfirmOverwrite
		e.sendText(ctx, from, msgOverwritePrompt(name), messageID)
	case errors.Is(err, models.ErrCompanyNotFound):
		session.State = models.StateAwaitingAnnualValue
		e.sendText(ctx, from, msgAskAnnualValue, messageID)
	default:
		slog.Error("Company lookup failed during registration", "error", err, "name", name)
		session.Reset()
		e.sendText(ctx, from, msgRegistrationError, messageID)
	}
}

func (e *Engine) handleConfirmOverwrite(ctx context.Context, session *Session, from, lower, messageID string) {
	if IsAffirmative(lower) {
		session.State = models.StateAwaitingAnnualValue
		e.sendText(ctx, from, msgAskAnnualValue, messageID)
		return
	}
	session.Reset()
	e.sendText(ctx, from, msgCancelled, messageID)
}

// handleAmount parses a monetary answer and advances via accept, or re-prompts
// leaving the state unchanged.
func (e *Engine) handleAmount(ctx context.Context, session *Session, from, text, messageID string, accept func(float64)) {
	v, err := ParseAmount(text)
	if err != nil {
		e.sendText(ctx, from, msgInvalidAmount, messageID)
		return
	}
	accept(v)
}

func (e *Engine) finalizeRegistration(ctx context.Context, session *Session, from string, debt float64, messageID string) {
	draft := session.Draft
	e.sendText(ctx, from, msgGenerating, messageID)

	result := analysis.Analyze(analysis.Input{
		Name:        draft.Name,
		Sector:      draft.Sector,
		AnnualValue: draft.AnnualValue,
		Profit:      draft.Profit,
		Employees:   draft.Employees,
		Assets:      draft.Assets,
		Receivables: draft.Receivables,
		Debt:        debt,
	})
	result.Enrichment = e.enricher.Enrich(draft.Name, draft.Sector)

	company := models.Company{
		Name:         draft.Name,
		Sector:       draft.Sector,
		AnnualValue:  draft.AnnualValue,
		Profit:       draft.Profit,
		Employees:    draft.Employees,
		Assets:       draft.Assets,
		Receivables:  draft.Receivables,
		Debt:         debt,
		RegisteredAt: e.now(),
		Analysis:     result,
	}

	if err := e.store.Save(company); err != nil {
		slog.Error("Failed to save company registration", "error", err, "name", company.Name)
		session.Reset()
		e.sendText(ctx, from, msgRegistrationError, messageID)
		return
	}
	slog.Info("Company registered", "name", company.Name, "sector", company.Sector,
		"score", company.Analysis.Evaluation.Score, "category", company.Analysis.Evaluation.Category)

	e.sendText(ctx, from, AnalysisMessage(company), messageID)
	e.maybeVoice(ctx, from, RegistrationVoiceSummary(company))
	session.Reset()
}

func (e *Engine) sendCompanyList(ctx context.Context, from, messageID string) {
	companies, err := e.listSorted()
	if err != nil {
		e.sendText(ctx, from, msgRegistrationError, messageID)
		return
	}
	if len(companies) == 0 {
		e.sendText(ctx, from, msgEmptyDatabase, messageID)
		e.maybeVoice(ctx, from, CountVoiceSummary(0))
		return
	}
	e.sendText(ctx, from, ListMessage(companies), messageID)
	e.maybeVoice(ctx, from, ListVoiceSummary(companies))
}

func (e *Engine) searchCompanies(ctx context.Context, from, term, messageID string) {
	companies, err := e.listSorted()
	if err != nil {
		e.sendText(ctx, from, msgRegistrationError, messageID)
		return
	}
	if len(companies) == 0 {
		e.sendText(ctx, from, msgEmptyDatabase, messageID)
		return
	}

	needle := strings.ToLower(term)
	var results []models.Company
	for _, c := range companies {
		if strings.Contains(strings.ToLower(c.Name), needle) || strings.Contains(strings.ToLower(c.Sector), needle) {
			results = append(results, c)
		}
	}

	if len(results) == 0 {
		e.sendText(ctx, from, NoSearchResultsMessage(needle), messageID)
		e.maybeVoice(ctx, from, "No se encontraron empresas con el término "+needle+".")
		return
	}
	e.sendText(ctx, from, SearchResultsMessage(needle, results), messageID)
	e.maybeVoice(ctx, from, SearchVoiceSummary(needle, results))
}

func (e *Engine) analyzeCompany(ctx context.Context, from, name, messageID string) {
	company, err := e.store.Get(name)
	if errors.Is(err, models.ErrCompanyNotFound) {
		suggestions := e.suggestNames(name)
		e.sendText(ctx, from, NotFoundMessage(name, suggestions), messageID)
		e.maybeVoice(ctx, from, NotFoundVoiceSummary(name, suggestions))
		return
	}
	if err != nil {
		slog.Error("Company lookup failed", "error", err, "name", name)
		e.sendText(ctx, from, msgRegistrationError, messageID)
		return
	}
	e.sendText(ctx, from, AnalysisMessage(company), messageID)
	e.maybeVoice(ctx, from, AnalysisVoiceSummary(company))
}

// suggestNames returns registered names containing the queried name,
// case-insensitively.
func (e *Engine) suggestNames(name string) []string {
	companies, err := e.listSorted()
	if err != nil {
		return nil
	}
	needle := strings.ToLower(name)
	var suggestions []string
	for _, c := range companies {
		if strings.Contains(strings.ToLower(c.Name), needle) {
			suggestions = append(suggestions, c.Name)
		}
	}
	return suggestions
}

func (e *Engine) listSorted() ([]models.Company, error) {
	companies, err := e.store.List()
	if err != nil {
		slog.Error("Failed to list companies", "error", err)
		return nil, err
	}
	sort.Slice(companies, func(i, j int) bool { return companies[i].Name < companies[j].Name })
	return companies, nil
}

func (e *Engine) sendText(ctx context.Context, to, body, replyTo string) {
	if err := e.sender.SendText(ctx, to, body, replyTo); err != nil {
		slog.Error("Failed to send text message", "error", err, "to", to)
	}
}

// maybeVoice samples the voice policy and, when it fires and a synthesizer is
// configured, sends the summary as a voice note. Failures degrade to the text
// reply that was already sent.
func (e *Engine) maybeVoice(ctx context.Context, to, summary string) {
	if e.synth == nil || !e.voice.ShouldAttachVoice() {
		return
	}
	audio, err := e.synth.Synthesize(ctx, summary)
	if err != nil {
		slog.Warn("Voice synthesis failed, sending text only", "error", err, "to", to)
		return
	}
	if len(audio) == 0 {
		return
	}
	if err := e.sender.SendVoice(ctx, to, audio, ""); err != nil {
		slog.Warn("Failed to send voice note", "error", err, "to", to)
	}
}
