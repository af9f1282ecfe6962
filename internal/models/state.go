package models

// SessionState identifies where a user is in the conversation state machine.
type SessionState string

// Conversation states. StateIdle is the initial state; the registration flow
// advances through the awaiting_* states in order and always returns to idle.
const (
	StateIdle                SessionState = "idle"
	StateAwaitingName        SessionState = "awaiting_name"
	StateConfirmOverwrite    SessionState = "confirm_overwrite"
	StateAwaitingAnnualValue SessionState = "awaiting_annual_value"
	StateAwaitingProfit      SessionState = "awaiting_profit"
	StateAwaitingSector      SessionState = "awaiting_sector"
	StateAwaitingEmployees   SessionState = "awaiting_employees"
	StateAwaitingAssets      SessionState = "awaiting_assets"
	StateAwaitingReceivables SessionState = "awaiting_receivables"
	StateAwaitingDebt        SessionState = "awaiting_debt"
)

// Command identifies a recognized top-level command in the idle state.
type Command string

const (
	CommandHelp       Command = "ayuda"
	CommandNewCompany Command = "nueva_empresa"
	CommandList       Command = "listar"
	CommandSearch     Command = "buscar"
	CommandAnalyze    Command = "analizar"
)
