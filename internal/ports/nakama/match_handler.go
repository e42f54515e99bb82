package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"onecard/internal/app"
	"onecard/internal/bot"
	"onecard/internal/config"
	"onecard/internal/domain"
	"onecard/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// MatchState holds the authoritative runtime state for the Nakama match handler.
type MatchState struct {
	Mode         string                      `json:"mode"`           // human or bot
	PlayerID     string                      `json:"player_id"`      // User playing against the engine, empty for bot matches
	Tick         int64                       `json:"tick"`           // Current tick of the match
	Rules        domain.Rules                `json:"rules"`          // Shape of every game in this match
	BotKind      bot.Kind                    `json:"bot_kind"`       // Strategy playing in bot matches
	BotMoveDelay int                         `json:"bot_move_delay"` // Ticks a bot waits before each move
	BotWaitUntil int64                       `json:"bot_wait_until"` // Tick when the bot should act
	RewardGold   int64                       `json:"reward_gold"`    // Gold paid for a deduced win
	Presences    map[string]runtime.Presence `json:"-"`              // Map UserId -> Presence for targeted messaging
	App          *app.Service                `json:"-"`              // Game use-cases
	Game         *domain.Game                `json:"-"`              // Current game (nil before the first one)
	Agent        *bot.Agent                  `json:"-"`              // Bot playing the current game
	Signer       *app.ResultSigner           `json:"-"`              // Signs verdicts, nil when no secret is configured
	Economy      ports.EconomyPort           `json:"-"`              // Interface to Nakama wallet

	rng *rand.Rand
}

func (ms *MatchState) isBotMatch() bool {
	return ms.Mode == matchModeBot
}

// isOpen reports whether a human can still take the player seat.
func (ms *MatchState) isOpen() bool {
	return !ms.isBotMatch() && ms.PlayerID == ""
}

func (ms *MatchState) phase() string {
	if ms.Game == nil {
		return matchPhaseIdle
	}
	return string(ms.Game.Phase)
}

// admit decides whether a user may join: bot matches take spectators, human
// matches take their single player back but nobody else.
func (ms *MatchState) admit(userID string) (bool, string) {
	if ms.isBotMatch() || ms.PlayerID == "" || ms.PlayerID == userID {
		return true, ""
	}
	return false, "Match full"
}

// authorizeMove checks that userID may probe or guess.
func (ms *MatchState) authorizeMove(userID string) error {
	if ms.isBotMatch() {
		return fmt.Errorf("the %s bot is playing this match", ms.BotKind)
	}
	if userID != ms.PlayerID {
		return fmt.Errorf("user %s is not the player of this match", userID)
	}
	return nil
}

// newMatchState builds the state of a match from the game config and the
// match creation params (strategy, cards, probe_size).
func newMatchState(cfg *config.GameConfig, params map[string]interface{}, logger runtime.Logger) (*MatchState, error) {
	rules := cfg.Rules()
	if cards, ok := paramInt(params, MatchLabelKeyCards); ok {
		rules.Cards = cards
	}
	if size, ok := paramInt(params, MatchLabelKeyProbeSize); ok {
		rules.ProbeSize = size
	}
	if err := rules.Validate(); err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	state := &MatchState{
		Mode:         matchModeHuman,
		Rules:        rules,
		BotMoveDelay: cfg.BotMoveDelayTicks,
		RewardGold:   cfg.RewardGold,
		Presences:    make(map[string]runtime.Presence),
		App:          app.NewService(rng, logger),
		rng:          rng,
	}
	if cfg.ResultSecret != "" {
		state.Signer = app.NewResultSigner(cfg.ResultSecret, resultTokenIssuer, cfg.ResultTTL)
	}

	if name, ok := params[MatchLabelKeyStrategy].(string); ok && name != "" {
		kind, err := bot.ParseKind(name)
		if err != nil {
			return nil, err
		}
		if err := bot.CheckBudget(kind, rules); err != nil {
			return nil, err
		}
		state.Mode = matchModeBot
		state.BotKind = kind
	}
	return state, nil
}

func paramInt(params map[string]interface{}, key string) (int, bool) {
	switch v := params[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case string:
		n, err := strconv.Atoi(v)
		return n, err == nil
	default:
		return 0, false
	}
}

func (ms *MatchState) label() (string, error) {
	label, err := structpb.NewStruct(map[string]interface{}{
		MatchLabelKeyOpen:      ms.isOpen(),
		MatchLabelKeyPhase:     ms.phase(),
		MatchLabelKeyMode:      ms.Mode,
		MatchLabelKeyCards:     ms.Rules.Cards,
		MatchLabelKeyProbeSize: ms.Rules.ProbeSize,
		MatchLabelKeyStrategy:  string(ms.BotKind),
	})
	if err != nil {
		return "", err
	}
	labelBytes, err := (&protojson.MarshalOptions{EmitUnpopulated: true}).Marshal(label)
	if err != nil {
		return "", err
	}
	return string(labelBytes), nil
}

// NewMatch is the factory function registered with Nakama.
func NewMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	return &matchHandler{}, nil
}

type matchHandler struct{}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing match handler.")

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	cfg, err := config.GetGameConfig().WithEnv(env)
	if err != nil {
		logger.Warn("MatchInit: Ignoring env overrides: %v", err)
	}

	state, err := newMatchState(cfg, params, logger)
	if err != nil {
		logger.Error("MatchInit: Invalid match params %v: %v", params, err)
		return nil, 0, ""
	}
	if nk != nil {
		state.Economy = NewNakamaEconomyAdapter(nk)
	}

	label, err := state.label()
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}
	logger.Info("MatchInit: %s match with %d cards, %d per probe", state.Mode, state.Rules.Cards, state.Rules.ProbeSize)
	return state, matchTickRate, label
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}
	accepted, reason := matchState.admit(presence.GetUserId())
	return state, accepted, reason
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		matchState.Presences[p.GetUserId()] = p
		if !matchState.isBotMatch() && matchState.PlayerID == "" {
			matchState.PlayerID = p.GetUserId()
			logger.Debug("MatchJoin: %s plays against the engine.", p.GetUserId())
		}
	}

	if matchState.Game == nil && (matchState.isBotMatch() || matchState.PlayerID != "") {
		if err := mh.startGame(ctx, matchState, dispatcher, logger); err != nil {
			logger.Error("MatchJoin: Failed to start game: %v", err)
		}
	} else {
		mh.updateLabel(matchState, dispatcher, logger)
	}

	// Late joiners catch up on the clues given so far.
	mh.sendMatchState(matchState, dispatcher, logger, presences)

	return matchState
}

// MatchLeave is called when one or more players leave the match.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		delete(matchState.Presences, p.GetUserId())
		if p.GetUserId() == matchState.PlayerID {
			logger.Info("MatchLeave: Player %s left, terminating match.", p.GetUserId())
			return nil
		}
	}

	if len(matchState.Presences) == 0 {
		logger.Info("MatchLeave: Terminating match with nobody watching.")
		return nil
	}
	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	for _, msg := range messages {
		senderID := msg.GetUserId()
		var err error
		switch msg.GetOpCode() {
		case domain.OpCodeProbe:
			err = mh.handleProbe(ctx, matchState, dispatcher, logger, senderID, msg.GetData())
		case domain.OpCodeGuess:
			err = mh.handleGuess(ctx, matchState, dispatcher, logger, senderID, msg.GetData())
		case domain.OpCodeNewGame:
			err = mh.handleNewGame(ctx, matchState, dispatcher, logger, senderID)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
		if err != nil {
			logger.Warn("MatchLoop: Rejected opcode %d from %s: %v", msg.GetOpCode(), senderID, err)
		}
	}

	mh.processBot(ctx, matchState, dispatcher, logger)

	return matchState
}

// processBot lets the bot of a bot match make one move once its delay elapsed.
func (mh *matchHandler) processBot(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if !state.isBotMatch() || state.Agent == nil || state.Game == nil || state.Game.Ended() {
		return
	}

	if state.BotWaitUntil == 0 {
		state.BotWaitUntil = state.Tick + int64(state.BotMoveDelay)
		logger.Debug("processBot: %s will act at tick %d (current %d)", state.Agent.Name, state.BotWaitUntil, state.Tick)
	}
	if state.Tick < state.BotWaitUntil {
		return
	}
	state.BotWaitUntil = 0

	move, err := state.Agent.Play()
	if err != nil {
		logger.Error("processBot: Bot %s failed to calculate move: %v", state.Agent.ID, err)
		return
	}

	if move.Guess != nil {
		_, events, err := state.App.SubmitGuess(state.Game, *move.Guess)
		if err != nil {
			logger.Error("processBot: Guess rejected: %v", err)
			return
		}
		mh.finishGame(ctx, state, dispatcher, logger, state.Agent.ID, state.Agent.Kind, state.Agent.Strategy, events)
		return
	}

	clue, events, err := state.App.Probe(state.Game, move.Probe)
	if err != nil {
		logger.Error("processBot: Probe %v rejected: %v", move.Probe, err)
		return
	}
	mh.broadcastEvents(state, dispatcher, logger, events, nil)
	if err := state.Agent.OnClue(clue); err != nil {
		logger.Error("processBot: Bot %s rejected clue %s: %v", state.Agent.ID, clue, err)
	}
}

// startGame seeds a new engine, and a new agent in bot matches.
func (mh *matchHandler) startGame(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) error {
	var agent *bot.Agent
	if state.isBotMatch() {
		identity := bot.IdentityFor(state.BotKind)
		var err error
		agent, err = bot.NewAgent(identity.UserID, identity.DisplayName, state.BotKind, state.Rules, state.rng)
		if err != nil {
			return err
		}
	}

	game, events, err := state.App.StartGame(state.Rules)
	if err != nil {
		return err
	}
	state.Game = game
	state.Agent = agent
	state.BotWaitUntil = 0

	mh.updateLabel(state, dispatcher, logger)
	mh.broadcastEvents(state, dispatcher, logger, events, nil)
	logger.Info("StartGame: Game %s started in %s match.", game.ID, state.Mode)
	return nil
}

func (mh *matchHandler) handleProbe(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, senderID string, data []byte) error {
	if err := state.authorizeMove(senderID); err != nil {
		mh.sendError(state, dispatcher, logger, senderID, errCodeForbidden, err.Error())
		return err
	}
	if state.Game == nil {
		err := errors.New("no game in progress")
		mh.sendError(state, dispatcher, logger, senderID, errCodeConflict, err.Error())
		return err
	}

	request, err := decodeStruct(data)
	if err != nil {
		mh.sendError(state, dispatcher, logger, senderID, errCodeBadRequest, err.Error())
		return err
	}
	probe, err := probeFromStruct(request)
	if err != nil {
		mh.sendError(state, dispatcher, logger, senderID, errCodeBadRequest, err.Error())
		return err
	}

	_, events, err := state.App.Probe(state.Game, probe)
	if err != nil {
		mh.sendError(state, dispatcher, logger, senderID, errorCode(err), err.Error())
		return err
	}
	mh.broadcastEvents(state, dispatcher, logger, events, nil)
	return nil
}

func (mh *matchHandler) handleGuess(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, senderID string, data []byte) error {
	if err := state.authorizeMove(senderID); err != nil {
		mh.sendError(state, dispatcher, logger, senderID, errCodeForbidden, err.Error())
		return err
	}
	if state.Game == nil {
		err := errors.New("no game in progress")
		mh.sendError(state, dispatcher, logger, senderID, errCodeConflict, err.Error())
		return err
	}

	request, err := decodeStruct(data)
	if err != nil {
		mh.sendError(state, dispatcher, logger, senderID, errCodeBadRequest, err.Error())
		return err
	}
	guess, err := guessFromStruct(request)
	if err != nil {
		mh.sendError(state, dispatcher, logger, senderID, errCodeBadRequest, err.Error())
		return err
	}
	guess.Deduced = app.ProvenByClues(state.Rules, state.Game.Clues, guess.Card, guess.Value)

	_, events, err := state.App.SubmitGuess(state.Game, guess)
	if err != nil {
		mh.sendError(state, dispatcher, logger, senderID, errorCode(err), err.Error())
		return err
	}
	mh.finishGame(ctx, state, dispatcher, logger, senderID, bot.KindHuman, nil, events)
	return nil
}

func (mh *matchHandler) handleNewGame(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, senderID string) error {
	if !state.isBotMatch() && senderID != state.PlayerID {
		err := fmt.Errorf("user %s is not the player of this match", senderID)
		mh.sendError(state, dispatcher, logger, senderID, errCodeForbidden, err.Error())
		return err
	}
	if state.Game != nil && !state.Game.Ended() {
		err := errors.New("game in progress")
		mh.sendError(state, dispatcher, logger, senderID, errCodeConflict, err.Error())
		return err
	}
	if err := mh.startGame(ctx, state, dispatcher, logger); err != nil {
		mh.sendError(state, dispatcher, logger, senderID, errCodeBadRequest, err.Error())
		return err
	}
	return nil
}

// finishGame records the result of a verified game, pays the reward and
// broadcasts the verdict.
func (mh *matchHandler) finishGame(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, kind bot.Kind, strategy bot.Strategy, events []app.Event) {
	result, err := state.App.Finish(state.Game, kind, strategy)
	if err != nil {
		logger.Error("finishGame: %v", err)
		mh.broadcastEvents(state, dispatcher, logger, events, nil)
		return
	}

	extra := map[string]interface{}{
		"outcome": result.Outcome(),
	}
	if len(result.Possibilities) > 0 {
		possibilities := make([]interface{}, len(result.Possibilities))
		for i, p := range result.Possibilities {
			possibilities[i] = p
		}
		extra["possibilities"] = possibilities
	}
	if state.Signer != nil {
		token, err := state.Signer.Sign(userID, result)
		if err != nil {
			logger.Warn("finishGame: Failed to sign result: %v", err)
		} else {
			extra["token"] = token
		}
	}

	if result.Outcome() == app.OutcomeDeducedWin && !state.isBotMatch() && !bot.IsBot(userID) && state.Economy != nil && state.RewardGold > 0 {
		update := ports.WalletUpdate{
			UserID: userID,
			Amount: state.RewardGold,
			Metadata: map[string]interface{}{
				"match_id": ctx.Value(runtime.RUNTIME_CTX_MATCH_ID),
				"game_id":  result.GameID,
				"reason":   "deduced_win",
			},
		}
		if err := state.Economy.UpdateBalances(ctx, []ports.WalletUpdate{update}); err != nil {
			logger.Error("Failed to pay reward to %s: %v", userID, err)
		} else {
			extra["reward"] = state.RewardGold
			if balance, err := state.Economy.GetBalance(ctx, userID); err == nil {
				extra["balance"] = balance
			} else {
				logger.Warn("Failed to read balance of %s: %v", userID, err)
			}
		}
	}

	mh.broadcastEvents(state, dispatcher, logger, events, extra)
	mh.updateLabel(state, dispatcher, logger)
}

func errorCode(err error) int {
	if errors.Is(err, domain.ErrWrongPhase) || errors.Is(err, app.ErrGameEnded) {
		return errCodeConflict
	}
	return errCodeBadRequest
}

// broadcastEvents converts app events to match messages. verdictExtra is
// merged into the verdict message.
func (mh *matchHandler) broadcastEvents(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, events []app.Event, verdictExtra map[string]interface{}) {
	for _, ev := range events {
		opCode, fields, ok := eventMessage(ev)
		if !ok {
			continue
		}
		if ev.Kind == app.EventGuessVerified {
			for k, v := range verdictExtra {
				fields[k] = v
			}
		}

		var recipients []runtime.Presence
		if len(ev.Recipients) > 0 {
			for _, uid := range ev.Recipients {
				if p, ok := state.Presences[uid]; ok {
					recipients = append(recipients, p)
				}
			}
			// Intended recipients that are not connected must not turn into a broadcast.
			if len(recipients) == 0 {
				continue
			}
		}
		mh.send(dispatcher, logger, opCode, fields, recipients)
	}
}

func (mh *matchHandler) send(dispatcher runtime.MatchDispatcher, logger runtime.Logger, opCode int64, fields map[string]interface{}, recipients []runtime.Presence) {
	bytes, err := encodeStruct(fields)
	if err != nil {
		logger.Error("Failed to marshal message %d: %v", opCode, err)
		return
	}
	if err := dispatcher.BroadcastMessage(opCode, bytes, recipients, nil, true); err != nil {
		logger.Error("Failed to send message %d: %v", opCode, err)
	}
}

// sendMatchState sends a snapshot of the match to the given presences, or to
// everyone when presences is empty.
func (mh *matchHandler) sendMatchState(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, presences []runtime.Presence) {
	mh.send(dispatcher, logger, domain.OpCodeState, snapshot(state), presences)
}

func snapshot(state *MatchState) map[string]interface{} {
	fields := map[string]interface{}{
		"mode":       state.Mode,
		"phase":      state.phase(),
		"player_id":  state.PlayerID,
		"strategy":   string(state.BotKind),
		"cards":      state.Rules.Cards,
		"probe_size": state.Rules.ProbeSize,
		"tick":       state.Tick,
	}
	if state.Game != nil {
		clues := make([]interface{}, len(state.Game.Clues))
		for i, c := range state.Game.Clues {
			clues[i] = clueToMap(c)
		}
		fields["game_id"] = state.Game.ID
		fields["clues"] = clues
	}
	return fields
}

// sendError sends an error message to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, code int, message string) {
	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("Cannot send error to %s: Presence not found", userID)
		return
	}
	mh.send(dispatcher, logger, domain.OpCodeError, map[string]interface{}{
		"code":    code,
		"message": message,
	}, []runtime.Presence{presence})
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	label, err := state.label()
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(label); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	logger.Debug("MatchTerminate: Match terminated with %d seconds of grace", graceSeconds)
	return state
}

// MatchSignal answers any signal with the JSON encoded match state.
func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, ""
	}
	out, err := json.Marshal(matchState)
	if err != nil {
		logger.Error("MatchSignal: Failed to marshal state: %v", err)
		return state, ""
	}
	return state, string(out)
}
