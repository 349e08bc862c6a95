package config

import (
	_ "embed"
	"encoding/json"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
)

// Config carries the tunable engine settings shared by the interactive and
// enforcement processes.
type Config struct {
	Aggregator struct {
		CacheTimeoutSeconds int `json:"cache_timeout_seconds"`
	} `json:"aggregator"`

	Enforcement struct {
		TimeSavedCreditSeconds int    `json:"time_saved_credit_seconds"`
		DenyFilePath           string `json:"deny_file_path"`
	} `json:"enforcement"`

	DefaultList struct {
		Name         string        `json:"name"`
		Description  string        `json:"description"`
		StarterRules []StarterRule `json:"starter_rules"`
	} `json:"default_list"`

	// CategoryMappings maps an app-category system id to the rule category
	// used when translating appCategory items. Unmapped ids fall back to
	// "custom".
	CategoryMappings map[string]string `json:"category_mappings"`

	// DefaultRules are always enforced while a blocking profile is active,
	// regardless of which profile it is.
	DefaultRules []StarterRule `json:"default_rules"`
}

// StarterRule is the serialized form of a seed rule in the settings file.
type StarterRule struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Pattern  string `json:"pattern"`
	Category string `json:"category"`
}

const settingsFilePath = "data/settings.json"

var (
	//go:embed default_settings.json
	defaultConfig []byte

	configValue atomic.Value
	configMu    sync.Mutex
)

func init() {
	configValue.Store(Config{})
}

// ReadSettings loads the settings file, creating it from the embedded
// defaults when missing.
func ReadSettings() {
	data, err := os.ReadFile(settingsFilePath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn("Settings file not found, creating with default configuration")

			if err := os.MkdirAll("data", os.ModePerm); err != nil {
				log.Error("Error creating directory for settings file:", err)
				return
			}
			if err := os.WriteFile(settingsFilePath, defaultConfig, os.ModePerm); err != nil {
				log.Error("Error writing default settings file:", err)
				return
			}

			data = defaultConfig
		} else {
			log.Error("Error reading settings file:", err)
			return
		}
	}

	var newConfig Config
	if err := json.Unmarshal(data, &newConfig); err != nil {
		log.Error("Error unmarshalling settings file:", err)
		return
	}

	if err := applyConfigUpdate(newConfig, configUpdateOptions{source: "file"}); err != nil {
		log.Error("Error applying configuration from settings file:", err)
		return
	}

	log.Debug("Settings file loaded successfully")
}

// SetConfig applies, persists, and broadcasts a new configuration.
func SetConfig(newConfig Config) {
	if err := applyConfigUpdate(newConfig, configUpdateOptions{persistToFile: true, broadcast: true, source: "local"}); err != nil {
		log.Error("Error applying configuration update:", err)
		return
	}

	log.Debug("Configuration updated and written to file successfully")
}

type configUpdateOptions struct {
	persistToFile bool
	broadcast     bool
	source        string
}

func applyConfigUpdate(newConfig Config, opts configUpdateOptions) error {
	configMu.Lock()
	defer configMu.Unlock()

	configValue.Store(newConfig)

	if opts.persistToFile {
		data, err := json.MarshalIndent(newConfig, "", "  ")
		if err != nil {
			log.Error("Error marshalling new configuration:", err)
			return err
		}
		if err := os.WriteFile(settingsFilePath, data, os.ModePerm); err != nil {
			log.Error("Error writing new configuration to file:", err)
			return err
		}
	}

	if opts.broadcast {
		payload, err := json.Marshal(newConfig)
		if err != nil {
			log.Error("Error serializing configuration for broadcast:", err)
			return err
		}
		if err := broadcastConfigUpdate(payload); err != nil {
			log.Error("Error broadcasting configuration update:", err)
			return err
		}
	}

	if opts.source != "" {
		log.Debug("Configuration applied", "source", opts.source)
	}

	return nil
}

// GetConfig returns the current configuration atomically.
func GetConfig() Config {
	return configValue.Load().(Config)
}

// CacheTimeout returns the aggregator snapshot lifetime.
func CacheTimeout() time.Duration {
	seconds := GetConfig().Aggregator.CacheTimeoutSeconds
	if seconds <= 0 {
		seconds = 120
	}
	return time.Duration(seconds) * time.Second
}

// TimeSavedCredit returns the fixed per-block time credit.
func TimeSavedCredit() time.Duration {
	seconds := GetConfig().Enforcement.TimeSavedCreditSeconds
	if seconds <= 0 {
		seconds = 30
	}
	return time.Duration(seconds) * time.Second
}

// DenyFilePath returns the path the hosts-style deny file is written to.
func DenyFilePath() string {
	path := GetConfig().Enforcement.DenyFilePath
	if path == "" {
		path = "data/warden.deny"
	}
	return path
}

// CategoryFor resolves an app-category system id to the rule category it maps
// to, or "" when no mapping exists.
func CategoryFor(systemID string) string {
	return GetConfig().CategoryMappings[systemID]
}
