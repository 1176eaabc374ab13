// Package config provides configuration management for safety-net.
// Configuration is loaded from (highest to lowest priority):
// 1. Command-line flags
// 2. Environment variables (SAFETY_NET_*)
// 3. Project config (.safety-net/config.yaml in cwd, or SAFETY_NET_CONFIG)
// 4. Home config (~/.safety-net/config.yaml)
// 5. Defaults
//
// This is tool configuration (output format, analysis tuning). The git
// policy itself lives in package policy.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all safety-net configuration.
type Config struct {
	// Output controls the default output format (table, json, yaml).
	Output string `yaml:"output" json:"output"`

	// Verbose enables debug logging on stderr.
	Verbose bool `yaml:"verbose" json:"verbose"`

	// NoColor disables styled terminal output.
	NoColor bool `yaml:"no_color" json:"no_color"`

	// Analysis settings
	Analysis AnalysisConfig `yaml:"analysis" json:"analysis"`

	// Redact settings
	Redact RedactConfig `yaml:"redact" json:"redact"`

	// Batch settings
	Batch BatchConfig `yaml:"batch" json:"batch"`
}

// AnalysisConfig tunes command analysis.
type AnalysisConfig struct {
	// MaxDepth is how many nested `bash -c` levels are unwrapped.
	// Default: 3
	MaxDepth int `yaml:"max_depth" json:"max_depth"`

	// DepthLimit is what happens past MaxDepth.
	// Values: "literal" (default, analyze the tokens as-is), "block".
	DepthLimit string `yaml:"depth_limit" json:"depth_limit"`

	// ForceClusters controls short-flag cluster interpretation.
	// Values: "any" (default, -xf counts as -f), "documented".
	ForceClusters string `yaml:"force_clusters" json:"force_clusters"`
}

// RedactConfig holds message sanitizing settings.
type RedactConfig struct {
	// MaxLength is the maximum message length in runes.
	// Default: 200
	MaxLength int `yaml:"max_length" json:"max_length"`
}

// BatchConfig holds `check` command settings.
type BatchConfig struct {
	// Concurrency is the number of commands evaluated in parallel (0 = NumCPU).
	Concurrency int `yaml:"concurrency" json:"concurrency"`
}

// Default config values (used in resolution and validation).
const (
	defaultOutput        = "table"
	defaultMaxDepth      = 3
	defaultDepthLimit    = "literal"
	defaultForceClusters = "any"
	defaultMaxLength     = 200

	// maxAllowedDepth caps analysis.max_depth.
	maxAllowedDepth = 10
)

// Environment variable names.
const (
	EnvConfig           = "SAFETY_NET_CONFIG"
	EnvOutput           = "SAFETY_NET_OUTPUT"
	EnvVerbose          = "SAFETY_NET_VERBOSE"
	EnvNoColor          = "SAFETY_NET_NO_COLOR"
	EnvMaxDepth         = "SAFETY_NET_MAX_DEPTH"
	EnvDepthLimit       = "SAFETY_NET_DEPTH_LIMIT"
	EnvForceClusters    = "SAFETY_NET_FORCE_CLUSTERS"
	EnvMaxMessageLength = "SAFETY_NET_MAX_MESSAGE_LENGTH"
	EnvConcurrency      = "SAFETY_NET_CONCURRENCY"
)

// Sentinel errors for configuration validation.
var (
	// ErrInvalidOutput is returned for an unknown output format.
	ErrInvalidOutput = errors.New("invalid output format")

	// ErrInvalidDepth is returned when analysis.max_depth is out of range.
	ErrInvalidDepth = fmt.Errorf("analysis.max_depth must be between 1 and %d", maxAllowedDepth)

	// ErrInvalidDepthLimit is returned for an unknown analysis.depth_limit.
	ErrInvalidDepthLimit = errors.New("analysis.depth_limit must be literal or block")

	// ErrInvalidForceClusters is returned for an unknown analysis.force_clusters.
	ErrInvalidForceClusters = errors.New("analysis.force_clusters must be any or documented")
)

// validOutputs lists the accepted output formats.
var validOutputs = map[string]bool{
	"table":    true,
	"json":     true,
	"yaml":     true,
	"jsonl":    true,
	"markdown": true,
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Output:  defaultOutput,
		Verbose: false,
		Analysis: AnalysisConfig{
			MaxDepth:      defaultMaxDepth,
			DepthLimit:    defaultDepthLimit,
			ForceClusters: defaultForceClusters,
		},
		Redact: RedactConfig{
			MaxLength: defaultMaxLength,
		},
		Batch: BatchConfig{
			Concurrency: 0,
		},
	}
}

// Load loads configuration with proper precedence.
// Priority: flags > env > project > home > defaults
// Unreadable files are skipped; the returned error reports invalid values
// in the merged result, which is still returned.
func Load(flagOverrides *Config) (*Config, error) {
	cfg := Default()

	// Load home config
	homeConfig, _ := loadFromPath(homeConfigPath())
	if homeConfig != nil {
		cfg = merge(cfg, homeConfig)
	}

	// Load project config
	projectConfig, _ := loadFromPath(projectConfigPath())
	if projectConfig != nil {
		cfg = merge(cfg, projectConfig)
	}

	// Apply environment variables
	cfg = applyEnv(cfg)

	// Apply flag overrides
	if flagOverrides != nil {
		cfg = merge(cfg, flagOverrides)
	}

	return cfg, cfg.Validate()
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if !validOutputs[c.Output] {
		return fmt.Errorf("%w: %q", ErrInvalidOutput, c.Output)
	}
	if c.Analysis.MaxDepth < 1 || c.Analysis.MaxDepth > maxAllowedDepth {
		return fmt.Errorf("%w: %d", ErrInvalidDepth, c.Analysis.MaxDepth)
	}
	switch c.Analysis.DepthLimit {
	case "literal", "block":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidDepthLimit, c.Analysis.DepthLimit)
	}
	switch c.Analysis.ForceClusters {
	case "any", "documented":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidForceClusters, c.Analysis.ForceClusters)
	}
	return nil
}

// homeConfigPath returns the home config path.
func homeConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".safety-net", "config.yaml")
}

// projectConfigPath returns the project config path.
func projectConfigPath() string {
	if override := strings.TrimSpace(os.Getenv(EnvConfig)); override != "" {
		return override
	}
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return filepath.Join(cwd, ".safety-net", "config.yaml")
}

// loadFromPath loads config from a YAML file.
func loadFromPath(path string) (*Config, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyEnv applies environment variable overrides.
func applyEnv(cfg *Config) *Config {
	if v, ok := getEnvString(EnvOutput); ok {
		cfg.Output = v
	}
	if v, _ := getEnvBool(EnvVerbose); v {
		cfg.Verbose = true
	}
	if v, _ := getEnvBool(EnvNoColor); v || os.Getenv("NO_COLOR") != "" {
		cfg.NoColor = true
	}
	if v, ok := getEnvInt(EnvMaxDepth); ok {
		cfg.Analysis.MaxDepth = v
	}
	if v, ok := getEnvString(EnvDepthLimit); ok {
		cfg.Analysis.DepthLimit = v
	}
	if v, ok := getEnvString(EnvForceClusters); ok {
		cfg.Analysis.ForceClusters = v
	}
	if v, ok := getEnvInt(EnvMaxMessageLength); ok {
		cfg.Redact.MaxLength = v
	}
	if v, ok := getEnvInt(EnvConcurrency); ok {
		cfg.Batch.Concurrency = v
	}
	return cfg
}

// mergeStr overwrites dst with src when src is non-empty.
func mergeStr(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

// mergeInt overwrites dst with src when src is non-zero.
func mergeInt(dst *int, src int) {
	if src != 0 {
		*dst = src
	}
}

// merge merges src into dst, with src values taking precedence.
// Booleans only ever turn on.
func merge(dst, src *Config) *Config {
	mergeStr(&dst.Output, src.Output)
	if src.Verbose {
		dst.Verbose = true
	}
	if src.NoColor {
		dst.NoColor = true
	}

	mergeAnalysis(&dst.Analysis, &src.Analysis)
	mergeInt(&dst.Redact.MaxLength, src.Redact.MaxLength)
	mergeInt(&dst.Batch.Concurrency, src.Batch.Concurrency)

	return dst
}

// mergeAnalysis merges analysis-specific config fields.
func mergeAnalysis(dst, src *AnalysisConfig) {
	mergeInt(&dst.MaxDepth, src.MaxDepth)
	mergeStr(&dst.DepthLimit, src.DepthLimit)
	mergeStr(&dst.ForceClusters, src.ForceClusters)
}

// Source represents where a config value came from.
type Source string

const (
	SourceDefault Source = "default"
	SourceHome    Source = "~/.safety-net/config.yaml"
	SourceProject Source = ".safety-net/config.yaml"
	SourceEnv     Source = "environment"
	SourceFlag    Source = "flag"
)

// getEnvString returns the value and whether the env var was set.
func getEnvString(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

// getEnvBool returns the boolean value and whether it was truthy.
func getEnvBool(key string) (bool, bool) {
	v := os.Getenv(key)
	if v == "true" || v == "1" {
		return true, true
	}
	return false, false
}

// getEnvInt returns the integer value and whether it parsed.
func getEnvInt(key string) (int, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// resolveStringField resolves a string through the precedence chain.
// Returns the resolved value and its source.
func resolveStringField(home, project, env, flag, def string) resolved {
	result := resolved{Value: def, Source: SourceDefault}
	if home != "" {
		result = resolved{Value: home, Source: SourceHome}
	}
	if project != "" {
		result = resolved{Value: project, Source: SourceProject}
	}
	if env != "" {
		result = resolved{Value: env, Source: SourceEnv}
	}
	if flag != "" {
		result = resolved{Value: flag, Source: SourceFlag}
	}
	return result
}

// resolveIntField resolves an int through the precedence chain. Zero means
// unset at every level.
func resolveIntField(home, project, env, def int) resolved {
	result := resolved{Value: def, Source: SourceDefault}
	if home != 0 {
		result = resolved{Value: home, Source: SourceHome}
	}
	if project != 0 {
		result = resolved{Value: project, Source: SourceProject}
	}
	if env != 0 {
		result = resolved{Value: env, Source: SourceEnv}
	}
	return result
}

// ResolvedConfig shows config values with their sources.
type ResolvedConfig struct {
	Output           resolved `json:"output" yaml:"output"`
	Verbose          resolved `json:"verbose" yaml:"verbose"`
	MaxDepth         resolved `json:"max_depth" yaml:"max_depth"`
	DepthLimit       resolved `json:"depth_limit" yaml:"depth_limit"`
	ForceClusters    resolved `json:"force_clusters" yaml:"force_clusters"`
	MaxMessageLength resolved `json:"max_message_length" yaml:"max_message_length"`
	Concurrency      resolved `json:"concurrency" yaml:"concurrency"`
}

type resolved struct {
	Value  interface{} `json:"value" yaml:"value"`
	Source Source      `json:"source" yaml:"source"`
}

// Resolve returns configuration with source tracking.
// Uses precedence chain: flags > env > project > home > defaults.
func Resolve(flagOutput string, flagVerbose bool) *ResolvedConfig {
	home, _ := loadFromPath(homeConfigPath())
	project, _ := loadFromPath(projectConfigPath())
	if home == nil {
		home = &Config{}
	}
	if project == nil {
		project = &Config{}
	}

	envOutput, _ := getEnvString(EnvOutput)
	envVerbose, envVerboseSet := getEnvBool(EnvVerbose)
	envDepthLimit, _ := getEnvString(EnvDepthLimit)
	envForceClusters, _ := getEnvString(EnvForceClusters)
	envMaxDepth, _ := getEnvInt(EnvMaxDepth)
	envMaxLength, _ := getEnvInt(EnvMaxMessageLength)
	envConcurrency, _ := getEnvInt(EnvConcurrency)

	rc := &ResolvedConfig{
		Output:           resolveStringField(home.Output, project.Output, envOutput, flagOutput, defaultOutput),
		Verbose:          resolved{Value: false, Source: SourceDefault},
		MaxDepth:         resolveIntField(home.Analysis.MaxDepth, project.Analysis.MaxDepth, envMaxDepth, defaultMaxDepth),
		DepthLimit:       resolveStringField(home.Analysis.DepthLimit, project.Analysis.DepthLimit, envDepthLimit, "", defaultDepthLimit),
		ForceClusters:    resolveStringField(home.Analysis.ForceClusters, project.Analysis.ForceClusters, envForceClusters, "", defaultForceClusters),
		MaxMessageLength: resolveIntField(home.Redact.MaxLength, project.Redact.MaxLength, envMaxLength, defaultMaxLength),
		Concurrency:      resolveIntField(home.Batch.Concurrency, project.Batch.Concurrency, envConcurrency, 0),
	}

	// Resolve verbose (boolean with OR semantics through chain)
	if home.Verbose {
		rc.Verbose = resolved{Value: true, Source: SourceHome}
	}
	if project.Verbose {
		rc.Verbose = resolved{Value: true, Source: SourceProject}
	}
	if envVerboseSet && envVerbose {
		rc.Verbose = resolved{Value: true, Source: SourceEnv}
	}
	if flagVerbose {
		rc.Verbose = resolved{Value: true, Source: SourceFlag}
	}

	return rc
}
