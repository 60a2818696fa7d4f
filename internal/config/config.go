package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"trainingload/internal/analysis"
)

const (
	dirName        = ".trainingload"
	configFileName = "config.json"
	dbFileName     = "data.db"
	logFileName    = "trainingload.log"
)

// Config represents the application configuration
type Config struct {
	Athlete AthleteConfig `json:"athlete"`
	Display DisplayConfig `json:"display"`
	Storage StorageConfig `json:"storage"`
}

// AthleteConfig holds athlete-specific settings
type AthleteConfig struct {
	FTP           float64 `json:"ftp"`                // watts, 0 disables power-based TSS
	RestingHR     float64 `json:"resting_hr"`         // bpm
	MaxHR         float64 `json:"max_hr"`             // bpm
	ThresholdPace float64 `json:"threshold_pace_sec"` // sec/km, 0 disables pace zones
	Gender        string  `json:"gender"`             // "male" or "female"
}

// DisplayConfig holds display preferences
type DisplayConfig struct {
	DistanceUnit string `json:"distance_unit"`
	PaceUnit     string `json:"pace_unit"`
}

// StorageConfig controls where data lives
type StorageConfig struct {
	DataDir string `json:"data_dir"` // defaults to ~/.trainingload
}

// ErrNoConfig is returned when the config file doesn't exist
var ErrNoConfig = errors.New("config file not found")

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	profile := analysis.DefaultProfile()
	return Config{
		Athlete: AthleteConfig{
			RestingHR: profile.RestingHR,
			MaxHR:     profile.MaxHR,
			Gender:    string(profile.Gender),
		},
		Display: DisplayConfig{
			DistanceUnit: "km",
			PaceUnit:     "min/km",
		},
	}
}

// Load reads the configuration from ~/.trainingload/config.json
func Load() (*Config, error) {
	path, err := getConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the configuration from path, filling missing values with defaults
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNoConfig
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply defaults for missing values
	defaults := DefaultConfig()
	if cfg.Athlete.RestingHR == 0 {
		cfg.Athlete.RestingHR = defaults.Athlete.RestingHR
	}
	if cfg.Athlete.MaxHR == 0 {
		cfg.Athlete.MaxHR = defaults.Athlete.MaxHR
	}
	if cfg.Athlete.Gender == "" {
		cfg.Athlete.Gender = defaults.Athlete.Gender
	}
	if cfg.Display.DistanceUnit == "" {
		cfg.Display.DistanceUnit = defaults.Display.DistanceUnit
	}
	if cfg.Display.PaceUnit == "" {
		cfg.Display.PaceUnit = defaults.Display.PaceUnit
	}

	return &cfg, nil
}

// Save writes the configuration to ~/.trainingload/config.json
func Save(cfg *Config) error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(path, cfg)
}

// SaveTo writes the configuration to path, creating its directory
func SaveTo(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// CreateExample creates an example config file if none exists
func CreateExample() error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	// Check if config already exists
	if _, err := os.Stat(path); err == nil {
		return nil // Config exists, don't overwrite
	}

	example := DefaultConfig()
	example.Athlete.FTP = 250
	example.Athlete.ThresholdPace = 270

	return SaveTo(path, &example)
}

// Validate checks that the athlete thresholds are usable
func (c *Config) Validate() error {
	if c.Athlete.MaxHR <= c.Athlete.RestingHR {
		return fmt.Errorf("athlete.max_hr (%v) must be greater than athlete.resting_hr (%v)", c.Athlete.MaxHR, c.Athlete.RestingHR)
	}
	if c.Athlete.FTP < 0 {
		return fmt.Errorf("athlete.ftp must not be negative, got %v", c.Athlete.FTP)
	}
	if c.Athlete.ThresholdPace < 0 {
		return fmt.Errorf("athlete.threshold_pace_sec must not be negative, got %v", c.Athlete.ThresholdPace)
	}
	if g := c.Athlete.Gender; g != "" && g != string(analysis.GenderMale) && g != string(analysis.GenderFemale) {
		return fmt.Errorf("athlete.gender must be \"male\" or \"female\", got %q", g)
	}

	// Validate display units
	if c.Display.DistanceUnit != "" && c.Display.DistanceUnit != "km" && c.Display.DistanceUnit != "mi" {
		return fmt.Errorf("display.distance_unit must be \"km\" or \"mi\", got %q", c.Display.DistanceUnit)
	}
	if c.Display.PaceUnit != "" && c.Display.PaceUnit != "min/km" && c.Display.PaceUnit != "min/mi" {
		return fmt.Errorf("display.pace_unit must be \"min/km\" or \"min/mi\", got %q", c.Display.PaceUnit)
	}

	return nil
}

// Profile converts the athlete settings into the engine's profile
func (a AthleteConfig) Profile() analysis.AthleteProfile {
	gender := analysis.GenderMale
	if a.Gender == string(analysis.GenderFemale) {
		gender = analysis.GenderFemale
	}
	return analysis.AthleteProfile{
		FTP:           a.FTP,
		MaxHR:         a.MaxHR,
		RestingHR:     a.RestingHR,
		ThresholdPace: a.ThresholdPace,
		Gender:        gender,
	}
}

// DataDir returns the configured data directory, or the config directory
func (c *Config) DataDir() (string, error) {
	if c.Storage.DataDir != "" {
		return c.Storage.DataDir, nil
	}
	return GetConfigDir()
}

// DBPath returns the SQLite database path
func (c *Config) DBPath() (string, error) {
	dir, err := c.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, dbFileName), nil
}

// LogPath returns the log file path
func (c *Config) LogPath() (string, error) {
	dir, err := c.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, logFileName), nil
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// GetConfigDir returns the path to the config directory
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, dirName), nil
}
