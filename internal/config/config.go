package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/quantfeed/ohlcv-ingest/internal/types"
	"github.com/quantfeed/ohlcv-ingest/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds the ingestion configuration.
type Config struct {
	// DataDir is the directory scanned for CSV exports.
	DataDir string `yaml:"data_dir" json:"data_dir" jsonschema:"title=Data Directory,description=Directory scanned for CSV market data exports,required" validate:"required"`
	// DatabasePath is where the DuckDB database file lives. Empty means in-memory.
	DatabasePath string `yaml:"database_path" json:"database_path" jsonschema:"title=Database Path,description=DuckDB database file path; empty for in-memory"`
	// Symbol overrides the per-file symbol derived from the file stem.
	Symbol string `yaml:"symbol" json:"symbol" jsonschema:"title=Symbol,description=Symbol stamped on every record instead of the file stem"`
	// Strict restricts timestamp parsing to the canonical layouts.
	Strict bool `yaml:"strict" json:"strict" jsonschema:"title=Strict,description=Reject non-canonical timestamp layouts"`
	// Timezone localizes naive timestamps, e.g. America/New_York. Empty means UTC.
	Timezone string `yaml:"timezone" json:"timezone" jsonschema:"title=Timezone,description=IANA timezone for naive timestamps"`
	// SessionStart/SessionEnd bound the optional trading-session filter (HH:MM:SS).
	SessionStart string `yaml:"session_start" json:"session_start" jsonschema:"title=Session Start,description=Session window start as HH:MM:SS" validate:"omitempty,datetime=15:04:05"`
	SessionEnd   string `yaml:"session_end" json:"session_end" jsonschema:"title=Session End,description=Session window end as HH:MM:SS" validate:"omitempty,datetime=15:04:05,required_with=SessionStart"`
}

// DefaultConfig returns a configuration with the conventional data layout.
func DefaultConfig() Config {
	return Config{
		DataDir: "data",
	}
}

// LoadConfig reads and validates a YAML configuration file.
func LoadConfig(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config %s", path)
	}

	return ParseConfig(raw)
}

// ParseConfig parses and validates YAML configuration bytes.
func ParseConfig(raw []byte) (Config, error) {
	config := DefaultConfig()
	if err := yaml.Unmarshal(raw, &config); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse config", err)
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

// Validate checks the configuration against its constraints.
func (c Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid configuration", err)
	}

	if c.Timezone != "" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "unknown timezone %q", c.Timezone)
		}
	}

	return nil
}

// Location resolves the configured timezone. Validate must have passed.
func (c Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}

	return loc
}

// SessionWindow resolves the configured session bounds. When no bounds are
// set, the second return value is false and callers should skip filtering.
func (c Config) SessionWindow() (types.SessionWindow, bool) {
	if c.SessionStart == "" || c.SessionEnd == "" {
		return types.SessionWindow{}, false
	}

	start, err := time.Parse("15:04:05", c.SessionStart)
	if err != nil {
		return types.SessionWindow{}, false
	}

	end, err := time.Parse("15:04:05", c.SessionEnd)
	if err != nil {
		return types.SessionWindow{}, false
	}

	return types.SessionWindow{
		Start: time.Duration(start.Hour())*time.Hour + time.Duration(start.Minute())*time.Minute + time.Duration(start.Second())*time.Second,
		End:   time.Duration(end.Hour())*time.Hour + time.Duration(end.Minute())*time.Minute + time.Duration(end.Second())*time.Second,
	}, true
}

// GenerateSchema generates a JSON schema for the configuration, used by
// editor tooling to validate config files.
func GenerateSchema() (string, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
	}

	schema := reflector.Reflect(&Config{})
	schema.Title = "ohlcv-ingest-config"
	schema.Description = "Configuration schema for the OHLCV CSV ingestion tool"

	raw, err := json.Marshal(schema)
	if err != nil {
		return "", err
	}

	return string(raw), nil
}
