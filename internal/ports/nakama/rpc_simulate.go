package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/heroiclabs/nakama-common/runtime"

	"onecard/internal/app"
	"onecard/internal/bot"
	"onecard/internal/config"
	"onecard/internal/domain"
)

// SimulateRequest selects the game a bot plays server-side. Zero values take
// the configured defaults.
type SimulateRequest struct {
	Cards     int    `json:"cards"`
	ProbeSize int    `json:"probe_size"`
	Strategy  string `json:"strategy"`
	Seed      int64  `json:"seed"`
}

// SimulateResponse carries the full transcript of a simulated game.
type SimulateResponse struct {
	Result *app.Result `json:"result"`
	Token  string      `json:"token,omitempty"`
}

func (req SimulateRequest) resolve(cfg *config.GameConfig) (domain.Rules, bot.Kind, int64, error) {
	rules := cfg.Rules()
	if req.Cards > 0 {
		rules.Cards = req.Cards
	}
	if req.ProbeSize > 0 {
		rules.ProbeSize = req.ProbeSize
	}
	if err := rules.Validate(); err != nil {
		return domain.Rules{}, "", 0, err
	}

	name := req.Strategy
	if name == "" {
		name = cfg.Strategy
	}
	kind, err := bot.ParseKind(name)
	if err != nil {
		return domain.Rules{}, "", 0, err
	}
	if err := bot.CheckBudget(kind, rules); err != nil {
		return domain.Rules{}, "", 0, err
	}

	seed := req.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rules, kind, seed, nil
}

// simulate plays one bot game; the returned token is empty when no signer is given.
func simulate(ctx context.Context, logger runtime.Logger, signer *app.ResultSigner, userID string, rules domain.Rules, kind bot.Kind, seed int64) (*SimulateResponse, error) {
	identity := bot.IdentityFor(kind)
	agent, err := bot.NewAgent(identity.UserID, identity.DisplayName, kind, rules, rand.New(rand.NewSource(seed^0x5eed)))
	if err != nil {
		return nil, err
	}
	svc := app.NewService(rand.New(rand.NewSource(seed)), logger)
	result, err := svc.Play(ctx, rules, agent)
	if err != nil {
		return nil, err
	}

	resp := &SimulateResponse{Result: result}
	if signer != nil {
		token, err := signer.Sign(userID, result)
		if err != nil {
			return nil, fmt.Errorf("failed to sign result: %w", err)
		}
		resp.Token = token
	}
	return resp, nil
}

func rpcSimulate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var req SimulateRequest
	if payload != "" {
		if err := json.Unmarshal([]byte(payload), &req); err != nil {
			return "", runtime.NewError("Invalid payload", 3) // INVALID_ARGUMENT
		}
	}

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	cfg, err := config.GetGameConfig().WithEnv(env)
	if err != nil {
		logger.Warn("rpcSimulate: Ignoring env overrides: %v", err)
	}
	rules, kind, seed, err := req.resolve(cfg)
	if err != nil {
		return "", runtime.NewError(err.Error(), 3)
	}

	var signer *app.ResultSigner
	if cfg.ResultSecret != "" {
		signer = app.NewResultSigner(cfg.ResultSecret, resultTokenIssuer, cfg.ResultTTL)
	}
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)

	resp, err := simulate(ctx, logger, signer, userID, rules, kind, seed)
	if err != nil {
		logger.Error("rpcSimulate: %s game failed: %v", kind, err)
		return "", runtime.NewError(err.Error(), 3)
	}
	logger.Info("rpcSimulate: %s %s after %d probes", kind, resp.Result.Outcome(), len(resp.Result.Clues))

	b, err := json.Marshal(resp)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
