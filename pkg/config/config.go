package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "/etc/flagkeep"
	ConfigFileName    = "flagkeep.yml"
)

// Editions the server can report to the console.
var ValidEditions = []string{"open-source", "enterprise"}

// ValidLogLevels are accepted values for log_level.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// ValidLogFormats are accepted values for log_format.
var ValidLogFormats = []string{"json", "console"}

// Well known feature flags.
const (
	FlagDoraMetrics    = "doraMetrics"
	FlagUnleashCloud   = "UNLEASH_CLOUD"
	FlagChangeRequests = "changeRequests"
)

// FlagkeepConfig holds all flagkeep configuration settings
type FlagkeepConfig struct {
	// Edition is reported to the console through ui-config
	Edition string `yaml:"edition" json:"edition"`

	// Flags toggles optional functionality, keyed by flag name
	Flags map[string]bool `yaml:"flags" json:"flags"`

	// SessionTTL is the lifetime of session tokens in seconds
	SessionTTL int `yaml:"session_ttl" json:"session_ttl"`

	// SegmentValuesLimit caps the number of constraint values in one segment
	SegmentValuesLimit int `yaml:"segment_values_limit" json:"segment_values_limit"`

	// AuditEnabled turns the audit trail on or off
	AuditEnabled bool `yaml:"audit_enabled" json:"audit_enabled"`

	// LogLevel is one of debug, info, warn, error
	LogLevel string `yaml:"log_level" json:"log_level"`

	// LogFormat is json or console
	LogFormat string `yaml:"log_format" json:"log_format"`

	// CORSOrigins lists origins allowed to call the API from a browser
	CORSOrigins []string `yaml:"cors_origins" json:"cors_origins"`

	// sources tracks where each value came from
	sources map[string]string

	// configFilePath is the path to the config file
	configFilePath string
}

// fileConfig mirrors FlagkeepConfig with pointers so that explicit zero
// values in the file are distinguishable from absent keys.
type fileConfig struct {
	Edition            *string         `yaml:"edition"`
	Flags              map[string]bool `yaml:"flags"`
	SessionTTL         *int            `yaml:"session_ttl"`
	SegmentValuesLimit *int            `yaml:"segment_values_limit"`
	AuditEnabled       *bool           `yaml:"audit_enabled"`
	LogLevel           *string         `yaml:"log_level"`
	LogFormat          *string         `yaml:"log_format"`
	CORSOrigins        []string        `yaml:"cors_origins"`
}

// Attribute represents a configuration attribute with its value and source
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

// Global singleton config
var (
	globalConfig *FlagkeepConfig
	configMu     sync.RWMutex
)

// Get returns the global configuration, loading it if necessary
func Get() *FlagkeepConfig {
	configMu.RLock()
	if globalConfig != nil {
		configMu.RUnlock()
		return globalConfig
	}
	configMu.RUnlock()

	configMu.Lock()
	defer configMu.Unlock()

	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			globalConfig = newDefault()
		} else {
			globalConfig = cfg
		}
	}
	return globalConfig
}

// Reload reloads the configuration from file and environment
func Reload() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	configMu.Lock()
	globalConfig = cfg
	configMu.Unlock()
	return nil
}

// Set replaces the global configuration.
func Set(cfg *FlagkeepConfig) {
	configMu.Lock()
	globalConfig = cfg
	configMu.Unlock()
}

// newDefault returns a config with default values
func newDefault() *FlagkeepConfig {
	return &FlagkeepConfig{
		Edition:            "open-source",
		Flags:              map[string]bool{},
		SessionTTL:         48 * 60 * 60,
		SegmentValuesLimit: 1000,
		AuditEnabled:       true,
		LogLevel:           "info",
		LogFormat:          "json",
		CORSOrigins:        []string{},
		sources:            make(map[string]string),
	}
}

// Default returns a configuration holding only default values.
func Default() *FlagkeepConfig {
	cfg := newDefault()
	for _, name := range attributeNames() {
		cfg.sources[name] = "default"
	}
	return cfg
}

// Load loads configuration from file and environment variables
// Environment variables take precedence over file values
func Load() (*FlagkeepConfig, error) {
	config := Default()

	configPath := os.Getenv("FLAGKEEP_CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	config.configFilePath = filepath.Join(configPath, ConfigFileName)

	if data, err := os.ReadFile(config.configFilePath); err == nil {
		var file fileConfig
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", config.configFilePath, err)
		}
		config.applyFileConfig(&file)
	}

	config.applyEnvConfig()

	return config, nil
}

func attributeNames() []string {
	return []string{
		"edition", "flags", "session_ttl", "segment_values_limit",
		"audit_enabled", "log_level", "log_format", "cors_origins",
	}
}

func (c *FlagkeepConfig) applyFileConfig(file *fileConfig) {
	if file.Edition != nil {
		c.Edition = *file.Edition
		c.sources["edition"] = "file"
	}
	if len(file.Flags) > 0 {
		for name, enabled := range file.Flags {
			c.Flags[name] = enabled
		}
		c.sources["flags"] = "file"
	}
	if file.SessionTTL != nil {
		c.SessionTTL = *file.SessionTTL
		c.sources["session_ttl"] = "file"
	}
	if file.SegmentValuesLimit != nil {
		c.SegmentValuesLimit = *file.SegmentValuesLimit
		c.sources["segment_values_limit"] = "file"
	}
	if file.AuditEnabled != nil {
		c.AuditEnabled = *file.AuditEnabled
		c.sources["audit_enabled"] = "file"
	}
	if file.LogLevel != nil {
		c.LogLevel = *file.LogLevel
		c.sources["log_level"] = "file"
	}
	if file.LogFormat != nil {
		c.LogFormat = *file.LogFormat
		c.sources["log_format"] = "file"
	}
	if len(file.CORSOrigins) > 0 {
		c.CORSOrigins = file.CORSOrigins
		c.sources["cors_origins"] = "file"
	}
}

func (c *FlagkeepConfig) applyEnvConfig() {
	if val := os.Getenv("FLAGKEEP_EDITION"); val != "" {
		c.Edition = val
		c.sources["edition"] = "environment"
	}
	// FLAGKEEP_FLAGS=doraMetrics,UNLEASH_CLOUD=false
	if val := os.Getenv("FLAGKEEP_FLAGS"); val != "" {
		for _, entry := range splitAndTrim(val) {
			name, value, found := strings.Cut(entry, "=")
			c.Flags[strings.TrimSpace(name)] = !found || parseBool(value)
		}
		c.sources["flags"] = "environment"
	}
	if val := os.Getenv("FLAGKEEP_SESSION_TTL"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.SessionTTL = i
			c.sources["session_ttl"] = "environment"
		}
	}
	if val := os.Getenv("FLAGKEEP_SEGMENT_VALUES_LIMIT"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.SegmentValuesLimit = i
			c.sources["segment_values_limit"] = "environment"
		}
	}
	if val := os.Getenv("FLAGKEEP_AUDIT_ENABLED"); val != "" {
		c.AuditEnabled = parseBool(val)
		c.sources["audit_enabled"] = "environment"
	}
	if val := os.Getenv("FLAGKEEP_LOG_LEVEL"); val != "" {
		c.LogLevel = val
		c.sources["log_level"] = "environment"
	}
	if val := os.Getenv("FLAGKEEP_LOG_FORMAT"); val != "" {
		c.LogFormat = val
		c.sources["log_format"] = "environment"
	}
	if val := os.Getenv("FLAGKEEP_CORS_ORIGINS"); val != "" {
		c.CORSOrigins = splitAndTrim(val)
		c.sources["cors_origins"] = "environment"
	}
}

// ConfigFilePath returns the path to the config file
func (c *FlagkeepConfig) ConfigFilePath() string {
	return c.configFilePath
}

// Source returns the source of a configuration attribute
func (c *FlagkeepConfig) Source(name string) string {
	if c.sources == nil {
		return "default"
	}
	if s, ok := c.sources[name]; ok {
		return s
	}
	return "default"
}

// SessionDuration returns the session TTL as a duration
func (c *FlagkeepConfig) SessionDuration() time.Duration {
	return time.Duration(c.SessionTTL) * time.Second
}

// IsEnabled reports whether a feature flag is on. Unknown flags are off.
func (c *FlagkeepConfig) IsEnabled(flag string) bool {
	return c.Flags[flag]
}

// EnabledFlags returns a copy of the flag map.
func (c *FlagkeepConfig) EnabledFlags() map[string]bool {
	flags := make(map[string]bool, len(c.Flags))
	for name, enabled := range c.Flags {
		flags[name] = enabled
	}
	return flags
}

// Validate validates the configuration
func (c *FlagkeepConfig) Validate() error {
	if !contains(ValidEditions, c.Edition) {
		return fmt.Errorf("invalid edition: %s", c.Edition)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session_ttl must be positive, got %d", c.SessionTTL)
	}
	if c.SegmentValuesLimit <= 0 {
		return fmt.Errorf("segment_values_limit must be positive, got %d", c.SegmentValuesLimit)
	}
	if !contains(ValidLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log_level: %s", c.LogLevel)
	}
	if !contains(ValidLogFormats, c.LogFormat) {
		return fmt.Errorf("invalid log_format: %s", c.LogFormat)
	}
	for _, origin := range c.CORSOrigins {
		if origin != "*" && !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("invalid cors_origins value: %s", origin)
		}
	}
	return nil
}

// Attributes returns all configuration attributes with their values and sources
func (c *FlagkeepConfig) Attributes() []Attribute {
	return []Attribute{
		{Name: "edition", Value: c.Edition, Source: c.Source("edition")},
		{Name: "flags", Value: formatFlags(c.Flags), Source: c.Source("flags")},
		{Name: "session_ttl", Value: strconv.Itoa(c.SessionTTL), Source: c.Source("session_ttl")},
		{Name: "segment_values_limit", Value: strconv.Itoa(c.SegmentValuesLimit), Source: c.Source("segment_values_limit")},
		{Name: "audit_enabled", Value: strconv.FormatBool(c.AuditEnabled), Source: c.Source("audit_enabled")},
		{Name: "log_level", Value: c.LogLevel, Source: c.Source("log_level")},
		{Name: "log_format", Value: c.LogFormat, Source: c.Source("log_format")},
		{Name: "cors_origins", Value: strings.Join(c.CORSOrigins, ","), Source: c.Source("cors_origins")},
	}
}

// FormatText returns a text representation of the configuration
func (c *FlagkeepConfig) FormatText() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Config file: %s\n\n", c.configFilePath))
	sb.WriteString(fmt.Sprintf("%-30s %-40s %s\n", "NAME", "VALUE", "SOURCE"))
	sb.WriteString(fmt.Sprintf("%-30s %-40s %s\n", "----", "-----", "------"))

	for _, attr := range c.Attributes() {
		value := attr.Value
		if value == "" {
			value = "(not set)"
		}
		sb.WriteString(fmt.Sprintf("%-30s %-40s %s\n", attr.Name, value, attr.Source))
	}
	return sb.String()
}

// FormatJSON returns a JSON representation of the configuration
func (c *FlagkeepConfig) FormatJSON() (string, error) {
	result := map[string]interface{}{
		"config_file": c.configFilePath,
		"attributes":  c.Attributes(),
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func formatFlags(flags map[string]bool) string {
	names := make([]string, 0, len(flags))
	for name := range flags {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%t", name, flags[name]))
	}
	return strings.Join(parts, ",")
}

func parseBool(s string) bool {
	s = strings.TrimSpace(s)
	return s == "true" || s == "1"
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
