package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "/etc/ctrack"
	ConfigFileName    = "ctrack.yml"
)

// ValidAdvisorProviders is the list of supported text-generation backends
var ValidAdvisorProviders = []string{"ollama", "genai"}

// ValidLogLevels is the list of accepted log_level values
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// Config holds all ctrack configuration settings
type Config struct {
	// DatabaseURL is a postgres:// URL or a SQLite file path (optionally sqlite://)
	DatabaseURL string `yaml:"database_url" json:"database_url"`

	// SeedFile is the CSV catalog loaded into an empty reference library
	SeedFile string `yaml:"seed_file" json:"seed_file"`

	// Framework is stamped on every new assessment
	Framework string `yaml:"framework" json:"framework"`

	// DefaultCategory is used when a submission omits category
	DefaultCategory string `yaml:"default_category" json:"default_category"`

	// DefaultAuditYear is used by analyze-compliance when no year is given
	DefaultAuditYear int `yaml:"default_audit_year" json:"default_audit_year"`

	// AdvisorProvider selects the text-generation backend (ollama or genai)
	AdvisorProvider string `yaml:"advisor_provider" json:"advisor_provider"`

	// AdvisorEndpoint is the base URL of the Ollama server
	AdvisorEndpoint string `yaml:"advisor_endpoint" json:"advisor_endpoint"`

	// AdvisorModel is the model name passed to the backend
	AdvisorModel string `yaml:"advisor_model" json:"advisor_model"`

	// AdvisorTimeout bounds one advisory call in seconds, 0 disables
	AdvisorTimeout int `yaml:"advisor_timeout" json:"advisor_timeout"`

	// LogLevel is one of debug, info, warn, error
	LogLevel string `yaml:"log_level" json:"log_level"`

	// CORSAllowedOrigins lists the origins allowed by the CORS middleware
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins" json:"cors_allowed_origins"`

	// GenAIAPIKey is only read from the environment
	GenAIAPIKey string `yaml:"-" json:"-"`

	// sources tracks where each value came from
	sources map[string]string

	// configFilePath is the path to the config file
	configFilePath string
}

// Attribute represents a configuration attribute with its value and source
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

// Global singleton config
var (
	globalConfig *Config
	configMu     sync.RWMutex
)

// Get returns the global configuration, loading it if necessary
func Get() *Config {
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
			// Return defaults on error
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

// newDefault returns a config with default values
func newDefault() *Config {
	return &Config{
		DatabaseURL:        "../data/compliance.db",
		SeedFile:           "NIST_SP-800-53_rev5_catalog_load.csv",
		Framework:          "NIST",
		DefaultCategory:    "General",
		DefaultAuditYear:   2026,
		AdvisorProvider:    "ollama",
		AdvisorEndpoint:    "http://localhost:11434",
		AdvisorModel:       "mistral-nemo",
		AdvisorTimeout:     120,
		LogLevel:           "info",
		CORSAllowedOrigins: []string{"*"},
		sources:            make(map[string]string),
	}
}

// Load loads configuration from file and environment variables
// Environment variables take precedence over file values
func Load() (*Config, error) {
	config := newDefault()

	for _, name := range attributeNames() {
		config.sources[name] = "default"
	}

	configPath := os.Getenv("CTRACK_CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	config.configFilePath = filepath.Join(configPath, ConfigFileName)

	if data, err := os.ReadFile(config.configFilePath); err == nil {
		var fileConfig Config
		if err := yaml.Unmarshal(data, &fileConfig); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", config.configFilePath, err)
		}
		config.applyFileConfig(&fileConfig)
	}

	config.applyEnvConfig()

	return config, nil
}

func attributeNames() []string {
	return []string{
		"database_url", "seed_file", "framework", "default_category",
		"default_audit_year", "advisor_provider", "advisor_endpoint",
		"advisor_model", "advisor_timeout", "log_level",
		"cors_allowed_origins", "genai_api_key",
	}
}

func (c *Config) applyFileConfig(file *Config) {
	if file.DatabaseURL != "" {
		c.DatabaseURL = file.DatabaseURL
		c.sources["database_url"] = "file"
	}
	if file.SeedFile != "" {
		c.SeedFile = file.SeedFile
		c.sources["seed_file"] = "file"
	}
	if file.Framework != "" {
		c.Framework = file.Framework
		c.sources["framework"] = "file"
	}
	if file.DefaultCategory != "" {
		c.DefaultCategory = file.DefaultCategory
		c.sources["default_category"] = "file"
	}
	if file.DefaultAuditYear != 0 {
		c.DefaultAuditYear = file.DefaultAuditYear
		c.sources["default_audit_year"] = "file"
	}
	if file.AdvisorProvider != "" {
		c.AdvisorProvider = file.AdvisorProvider
		c.sources["advisor_provider"] = "file"
	}
	if file.AdvisorEndpoint != "" {
		c.AdvisorEndpoint = file.AdvisorEndpoint
		c.sources["advisor_endpoint"] = "file"
	}
	if file.AdvisorModel != "" {
		c.AdvisorModel = file.AdvisorModel
		c.sources["advisor_model"] = "file"
	}
	if file.AdvisorTimeout != 0 {
		c.AdvisorTimeout = file.AdvisorTimeout
		c.sources["advisor_timeout"] = "file"
	}
	if file.LogLevel != "" {
		c.LogLevel = file.LogLevel
		c.sources["log_level"] = "file"
	}
	if len(file.CORSAllowedOrigins) > 0 {
		c.CORSAllowedOrigins = file.CORSAllowedOrigins
		c.sources["cors_allowed_origins"] = "file"
	}
}

func (c *Config) applyEnvConfig() {
	if val := os.Getenv("DATABASE_URL"); val != "" {
		c.DatabaseURL = val
		c.sources["database_url"] = "environment"
	}
	if val := os.Getenv("CTRACK_DATABASE_URL"); val != "" {
		c.DatabaseURL = val
		c.sources["database_url"] = "environment"
	}
	if val := os.Getenv("CTRACK_SEED_FILE"); val != "" {
		c.SeedFile = val
		c.sources["seed_file"] = "environment"
	}
	if val := os.Getenv("CTRACK_FRAMEWORK"); val != "" {
		c.Framework = val
		c.sources["framework"] = "environment"
	}
	if val := os.Getenv("CTRACK_DEFAULT_CATEGORY"); val != "" {
		c.DefaultCategory = val
		c.sources["default_category"] = "environment"
	}
	if val := os.Getenv("CTRACK_DEFAULT_AUDIT_YEAR"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.DefaultAuditYear = i
			c.sources["default_audit_year"] = "environment"
		}
	}
	if val := os.Getenv("CTRACK_ADVISOR_PROVIDER"); val != "" {
		c.AdvisorProvider = strings.ToLower(val)
		c.sources["advisor_provider"] = "environment"
	}
	// OLLAMA_HOST is what the ollama CLI and client libraries read
	if val := os.Getenv("OLLAMA_HOST"); val != "" {
		c.AdvisorEndpoint = normalizeEndpoint(val)
		c.sources["advisor_endpoint"] = "environment"
	}
	if val := os.Getenv("CTRACK_ADVISOR_ENDPOINT"); val != "" {
		c.AdvisorEndpoint = normalizeEndpoint(val)
		c.sources["advisor_endpoint"] = "environment"
	}
	if val := os.Getenv("CTRACK_ADVISOR_MODEL"); val != "" {
		c.AdvisorModel = val
		c.sources["advisor_model"] = "environment"
	}
	if val := os.Getenv("CTRACK_ADVISOR_TIMEOUT"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.AdvisorTimeout = i
			c.sources["advisor_timeout"] = "environment"
		}
	}
	if val := os.Getenv("CTRACK_LOG_LEVEL"); val != "" {
		c.LogLevel = strings.ToLower(val)
		c.sources["log_level"] = "environment"
	}
	if val := os.Getenv("CTRACK_CORS_ALLOWED_ORIGINS"); val != "" {
		c.CORSAllowedOrigins = splitAndTrim(val)
		c.sources["cors_allowed_origins"] = "environment"
	}
	if val := os.Getenv("GEMINI_API_KEY"); val != "" {
		c.GenAIAPIKey = val
		c.sources["genai_api_key"] = "environment"
	}
}

// ConfigFilePath returns the path to the config file
func (c *Config) ConfigFilePath() string {
	return c.configFilePath
}

// Source returns the source of a configuration attribute
func (c *Config) Source(name string) string {
	if c.sources == nil {
		return "default"
	}
	if s, ok := c.sources[name]; ok {
		return s
	}
	return "default"
}

// AdvisorTimeoutDuration returns the advisory call timeout, zero meaning none
func (c *Config) AdvisorTimeoutDuration() time.Duration {
	return time.Duration(c.AdvisorTimeout) * time.Second
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("database_url must not be empty")
	}
	if c.Framework == "" {
		return fmt.Errorf("framework must not be empty")
	}
	if c.AdvisorTimeout < 0 {
		return fmt.Errorf("invalid advisor_timeout value: %d", c.AdvisorTimeout)
	}
	if !contains(ValidAdvisorProviders, c.AdvisorProvider) {
		return fmt.Errorf("invalid advisor_provider: %s", c.AdvisorProvider)
	}
	if c.AdvisorProvider == "genai" && c.GenAIAPIKey == "" {
		return fmt.Errorf("advisor_provider genai requires GEMINI_API_KEY")
	}
	if !contains(ValidLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log_level: %s", c.LogLevel)
	}
	return nil
}

// Attributes returns all configuration attributes with their values and sources
func (c *Config) Attributes() []Attribute {
	apiKey := ""
	if c.GenAIAPIKey != "" {
		apiKey = "(set)"
	}
	return []Attribute{
		{Name: "database_url", Value: c.DatabaseURL, Source: c.Source("database_url")},
		{Name: "seed_file", Value: c.SeedFile, Source: c.Source("seed_file")},
		{Name: "framework", Value: c.Framework, Source: c.Source("framework")},
		{Name: "default_category", Value: c.DefaultCategory, Source: c.Source("default_category")},
		{Name: "default_audit_year", Value: strconv.Itoa(c.DefaultAuditYear), Source: c.Source("default_audit_year")},
		{Name: "advisor_provider", Value: c.AdvisorProvider, Source: c.Source("advisor_provider")},
		{Name: "advisor_endpoint", Value: c.AdvisorEndpoint, Source: c.Source("advisor_endpoint")},
		{Name: "advisor_model", Value: c.AdvisorModel, Source: c.Source("advisor_model")},
		{Name: "advisor_timeout", Value: strconv.Itoa(c.AdvisorTimeout), Source: c.Source("advisor_timeout")},
		{Name: "log_level", Value: c.LogLevel, Source: c.Source("log_level")},
		{Name: "cors_allowed_origins", Value: strings.Join(c.CORSAllowedOrigins, ","), Source: c.Source("cors_allowed_origins")},
		{Name: "genai_api_key", Value: apiKey, Source: c.Source("genai_api_key")},
	}
}

// FormatText returns a text representation of the configuration
func (c *Config) FormatText() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Config file: %s\n\n", c.configFilePath))
	sb.WriteString(fmt.Sprintf("%-24s %-40s %s\n", "NAME", "VALUE", "SOURCE"))
	sb.WriteString(fmt.Sprintf("%-24s %-40s %s\n", "----", "-----", "------"))

	for _, attr := range c.Attributes() {
		value := attr.Value
		if value == "" {
			value = "(not set)"
		}
		sb.WriteString(fmt.Sprintf("%-24s %-40s %s\n", attr.Name, value, attr.Source))
	}
	return sb.String()
}

// FormatJSON returns a JSON representation of the configuration
func (c *Config) FormatJSON() (string, error) {
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

// normalizeEndpoint accepts OLLAMA_HOST style values such as "127.0.0.1:11434"
func normalizeEndpoint(s string) string {
	s = strings.TrimRight(strings.TrimSpace(s), "/")
	if !strings.Contains(s, "://") {
		s = "http://" + s
	}
	return s
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
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
