package nakama

const (
	// RpcQuickMatch is the Nakama RPC id clients call to find or create an open match.
	RpcQuickMatch = "onecard_quick_match"

	// RpcSimulate runs a whole bot game server-side and returns its transcript.
	RpcSimulate = "onecard_simulate"

	// MatchNameOneCard is the authoritative match handler name registered with Nakama.
	MatchNameOneCard = "onecard_match"
)

// Match label keys.
const (
	MatchLabelKeyOpen      = "open"
	MatchLabelKeyPhase     = "phase"
	MatchLabelKeyMode      = "mode"
	MatchLabelKeyCards     = "cards"
	MatchLabelKeyProbeSize = "probe_size"
	MatchLabelKeyStrategy  = "strategy"
)

const (
	matchModeHuman = "human"
	matchModeBot   = "bot"
	matchPhaseIdle = "idle"
)

// Error codes sent with OpCodeError.
const (
	errCodeBadRequest = 400
	errCodeForbidden  = 403
	errCodeConflict   = 409
)

const (
	matchTickRate      = 5
	identitiesPath     = "data/bot_identities.json"
	gameConfigPath     = "data/game.yaml"
	resultTokenIssuer  = "onecard"
	quickMatchMaxScans = 10
)
