package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// UserConfig holds factoryctl preferences stored in ~/.factory-economy/config.json
type UserConfig struct {
	// Player the CLI acts as when --player is not given
	DefaultPlayerID string `json:"default_player_id,omitempty"`

	// Config file the CLI loads when --config is not given
	ConfigFile string `json:"config_file,omitempty"`
}

// UserConfigHandler manages loading and saving user configuration
type UserConfigHandler struct {
	configPath string
}

// NewUserConfigHandler creates a handler rooted at the user's home directory
func NewUserConfigHandler() (*UserConfigHandler, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return NewUserConfigHandlerAt(filepath.Join(homeDir, ".factory-economy", "config.json"))
}

// NewUserConfigHandlerAt creates a handler for an explicit file path
func NewUserConfigHandlerAt(path string) (*UserConfigHandler, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}
	return &UserConfigHandler{configPath: path}, nil
}

// Load reads the user config from disk; a missing file yields an empty config
func (h *UserConfigHandler) Load() (*UserConfig, error) {
	data, err := os.ReadFile(h.configPath)
	if os.IsNotExist(err) {
		return &UserConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read user config: %w", err)
	}

	var cfg UserConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse user config: %w", err)
	}
	return &cfg, nil
}

// Save writes the user config to disk
func (h *UserConfigHandler) Save(cfg *UserConfig) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal user config: %w", err)
	}
	if err := os.WriteFile(h.configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write user config: %w", err)
	}
	return nil
}

// SetDefaultPlayer stores the player the CLI acts as by default
func (h *UserConfigHandler) SetDefaultPlayer(playerID string) error {
	cfg, err := h.Load()
	if err != nil {
		return err
	}
	cfg.DefaultPlayerID = playerID
	return h.Save(cfg)
}

// ClearDefaultPlayer removes the default player setting
func (h *UserConfigHandler) ClearDefaultPlayer() error {
	cfg, err := h.Load()
	if err != nil {
		return err
	}
	cfg.DefaultPlayerID = ""
	return h.Save(cfg)
}

// SetConfigFile stores the config file the CLI loads by default; empty clears it
func (h *UserConfigHandler) SetConfigFile(path string) error {
	cfg, err := h.Load()
	if err != nil {
		return err
	}
	cfg.ConfigFile = path
	return h.Save(cfg)
}

// GetConfigPath returns the path to the user config file
func (h *UserConfigHandler) GetConfigPath() string {
	return h.configPath
}
