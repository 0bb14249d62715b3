package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// GameConfig holds the tunables loaded from the data directory at startup.
type GameConfig struct {
	// BaseAward is the gold stake settled per game at the final standings.
	BaseAward int64 `json:"base_award"`
	// BuyWindowSeconds is how long a discard stays open to buy requests.
	BuyWindowSeconds int `json:"buy_window_seconds"`
	// BotsEnabled controls whether empty seats may be filled with bots.
	BotsEnabled bool `json:"bots_enabled"`
	// DefaultBotDifficulty is used for identities without an explicit tier.
	DefaultBotDifficulty string `json:"default_bot_difficulty"`
	// BotAutoFillDelaySeconds is how long a solo human lobby waits before
	// bots take the empty seats.
	BotAutoFillDelaySeconds int `json:"bot_auto_fill_delay_seconds"`
	// BotMinActDelayMs / BotMaxActDelayMs, when positive, override every
	// difficulty tier's thinking-delay range.
	BotMinActDelayMs int `json:"bot_min_act_delay_ms"`
	BotMaxActDelayMs int `json:"bot_max_act_delay_ms"`
	// WelcomeBonusGold is the one-time gold grant for new accounts.
	WelcomeBonusGold int64 `json:"welcome_bonus_gold"`
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}

		var c GameConfig
		if err := json.Unmarshal(data, &c); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal game config: %w", err)
			return
		}
		cfg = &c
	})
	return loadErr
}

// GetGameConfig returns the global game configuration, or nil when no config
// file was loaded.
func GetGameConfig() *GameConfig {
	return cfg
}

// GetBaseAward returns the configured gold stake, with a safe default.
func GetBaseAward() int64 {
	if cfg == nil || cfg.BaseAward <= 0 {
		return 100
	}
	return cfg.BaseAward
}

// GetBuyWindowSeconds returns the configured buy window, with a safe default.
func GetBuyWindowSeconds() int {
	if cfg == nil || cfg.BuyWindowSeconds <= 0 {
		return 3
	}
	return cfg.BuyWindowSeconds
}

// GetBotAutoFillDelaySeconds returns the lobby auto-fill delay, with a safe default.
func GetBotAutoFillDelaySeconds() int {
	if cfg == nil || cfg.BotAutoFillDelaySeconds <= 0 {
		return 5
	}
	return cfg.BotAutoFillDelaySeconds
}

// GetBotActDelayOverrideMs returns the configured act-delay range override.
// Zero values mean the difficulty tier's own range applies.
func GetBotActDelayOverrideMs() (min, max int) {
	if cfg == nil {
		return 0, 0
	}
	return cfg.BotMinActDelayMs, cfg.BotMaxActDelayMs
}

// GetWelcomeBonusGold returns the new-account gold grant, with a safe default.
func GetWelcomeBonusGold() int64 {
	if cfg == nil || cfg.WelcomeBonusGold <= 0 {
		return 10000
	}
	return cfg.WelcomeBonusGold
}
