package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/heroiclabs/nakama-common/runtime"

	"onecard/internal/bot"
	"onecard/internal/config"
)

// QuickMatchResponse is the payload returned to clients when requesting an open match.
type QuickMatchResponse struct {
	MatchID string `json:"match_id"`
	IsNew   bool   `json:"is_new"`
}

// QuickMatchRequest optionally narrows the match search; zero values take the configured rules.
// A non-empty Strategy asks for a bot match to spectate instead of a seat.
type QuickMatchRequest struct {
	Cards     int    `json:"cards"`
	ProbeSize int    `json:"probe_size"`
	Strategy  string `json:"strategy"`
}

// validate checks the request against the configured rules and returns the
// bot kind, or "" for a human match.
func (req QuickMatchRequest) validate(cfg *config.GameConfig) (bot.Kind, error) {
	rules := cfg.Rules()
	if req.Cards > 0 {
		rules.Cards = req.Cards
	}
	if req.ProbeSize > 0 {
		rules.ProbeSize = req.ProbeSize
	}
	if err := rules.Validate(); err != nil {
		return "", err
	}
	if req.Strategy == "" {
		return "", nil
	}
	kind, err := bot.ParseKind(req.Strategy)
	if err != nil {
		return "", err
	}
	if err := bot.CheckBudget(kind, rules); err != nil {
		return "", err
	}
	return kind, nil
}

// quickMatchQuery builds the label query for an open human match, or for a
// bot match of the given kind.
func quickMatchQuery(req QuickMatchRequest, kind bot.Kind) string {
	var query string
	if kind != "" {
		query = fmt.Sprintf("+label.%s:%s +label.%s:%s", MatchLabelKeyMode, matchModeBot, MatchLabelKeyStrategy, kind)
	} else {
		query = fmt.Sprintf("+label.%s:T +label.%s:%s", MatchLabelKeyOpen, MatchLabelKeyMode, matchModeHuman)
	}
	if req.Cards > 0 {
		query += fmt.Sprintf(" +label.%s:%d", MatchLabelKeyCards, req.Cards)
	}
	if req.ProbeSize > 0 {
		query += fmt.Sprintf(" +label.%s:%d", MatchLabelKeyProbeSize, req.ProbeSize)
	}
	return query
}

// quickMatchParams builds the MatchCreate params for a new match.
func quickMatchParams(req QuickMatchRequest, kind bot.Kind) map[string]interface{} {
	params := map[string]interface{}{}
	if req.Cards > 0 {
		params[MatchLabelKeyCards] = req.Cards
	}
	if req.ProbeSize > 0 {
		params[MatchLabelKeyProbeSize] = req.ProbeSize
	}
	if kind != "" {
		params[MatchLabelKeyStrategy] = string(kind)
	}
	return params
}

func rpcQuickMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var req QuickMatchRequest
	if payload != "" {
		if err := json.Unmarshal([]byte(payload), &req); err != nil {
			return "", runtime.NewError(fmt.Sprintf("invalid quick match request: %v", err), 3)
		}
	}

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	cfg, err := config.GetGameConfig().WithEnv(env)
	if err != nil {
		logger.Warn("rpcQuickMatch: Ignoring env overrides: %v", err)
	}
	kind, err := req.validate(cfg)
	if err != nil {
		return "", runtime.NewError(err.Error(), 3)
	}

	minSize := 0
	maxSize := 0 // an open match has nobody in it yet
	maxSizePtr := &maxSize
	if kind != "" {
		maxSizePtr = nil // bot matches take any number of spectators
	}
	matches, err := nk.MatchList(ctx, quickMatchMaxScans, true, "", &minSize, maxSizePtr, quickMatchQuery(req, kind))
	if err != nil {
		logger.Error("MatchList error: %v", err)
		return "", err
	}

	if len(matches) > 0 {
		resp := QuickMatchResponse{MatchID: matches[0].MatchId, IsNew: false}
		b, _ := json.Marshal(resp)
		return string(b), nil
	}

	// The player seat is assigned in MatchJoin (server-authoritative).
	matchID, err := nk.MatchCreate(ctx, MatchNameOneCard, quickMatchParams(req, kind))
	if err != nil {
		logger.Error("MatchCreate error: %v", err)
		return "", err
	}

	resp := QuickMatchResponse{MatchID: matchID, IsNew: true}
	b, _ := json.Marshal(resp)
	return string(b), nil
}
