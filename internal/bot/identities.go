package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/heroiclabs/nakama-common/runtime"
)

// BotIdentity is the public profile a strategy plays under.
type BotIdentity struct {
	DeviceID    string `json:"device_id"`
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Strategy    Kind   `json:"strategy"`
}

var (
	botIdentities []BotIdentity
	botByID       map[string]BotIdentity
	loadOnce      sync.Once
	provisionOnce sync.Once
	loadErr       error
)

// LoadIdentities loads the bot profiles from the given path.
func LoadIdentities(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read bot identities: %w", err)
			return
		}
		identities, err := ParseIdentities(data)
		if err != nil {
			loadErr = err
			return
		}
		botIdentities = identities
		botByID = make(map[string]BotIdentity)
		for _, identity := range botIdentities {
			if identity.UserID != "" {
				botByID[identity.UserID] = identity
			}
		}
	})
	return loadErr
}

// ParseIdentities decodes a JSON identity list and checks every strategy name.
func ParseIdentities(data []byte) ([]BotIdentity, error) {
	var identities []BotIdentity
	if err := json.Unmarshal(data, &identities); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bot identities: %w", err)
	}
	for i, identity := range identities {
		kind, err := ParseKind(string(identity.Strategy))
		if err != nil {
			return nil, fmt.Errorf("bot identity %q: %w", identity.Username, err)
		}
		identities[i].Strategy = kind
	}
	return identities, nil
}

// ProvisionBots ensures that bot accounts exist in the Nakama database and carry the is_bot metadata.
func ProvisionBots(ctx context.Context, nk runtime.NakamaModule, logger runtime.Logger) {
	provisionOnce.Do(func() {
		for i := range botIdentities {
			identity := &botIdentities[i]
			if identity.DeviceID == "" {
				continue
			}

			userID, username, _, err := nk.AuthenticateDevice(ctx, identity.DeviceID, identity.Username, true)
			if err != nil {
				logger.Error("ProvisionBots: Failed to authenticate bot %s: %v", identity.Username, err)
				continue
			}
			identity.UserID = userID
			identity.Username = username

			metadata := map[string]interface{}{
				"is_bot":   true,
				"strategy": string(identity.Strategy),
			}
			if err := nk.AccountUpdateId(ctx, userID, identity.Username, metadata, identity.DisplayName, "", "", "", ""); err != nil {
				logger.Warn("ProvisionBots: Failed to update bot account %s: %v", userID, err)
			}

			if botByID == nil {
				botByID = make(map[string]BotIdentity)
			}
			botByID[userID] = *identity
			logger.Info("ProvisionBots: Bot %s (%s) is ready. Strategy: %s", identity.DisplayName, userID, identity.Strategy)
		}
	})
}

// IdentityFor returns the first loaded identity playing kind, or a generated one.
func IdentityFor(kind Kind) BotIdentity {
	for _, identity := range botIdentities {
		if identity.Strategy == kind {
			return identity
		}
	}
	return BotIdentity{
		UserID:      fmt.Sprintf("bot-%s", kind),
		Username:    string(kind),
		DisplayName: fmt.Sprintf("%s bot", kind),
		Strategy:    kind,
	}
}

// IsBot reports whether the given user ID belongs to the bot pool.
func IsBot(userID string) bool {
	_, ok := botByID[userID]
	return ok
}
