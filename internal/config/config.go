// Package config loads the SIP dialog core's static configuration using
// viper. It covers exactly the options the core's Init contract takes
// (capture, match, sort) plus the ambient logging section; the packet
// capture frontend and UI panels (out of scope for this module) are
// expected to layer their own config on top.
package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

// GlobalConfig is the top-level static configuration. It maps to the
// `sip-core:` root key in YAML.
type GlobalConfig struct {
	Capture CaptureConfig `mapstructure:"capture"`
	Match   MatchConfig   `mapstructure:"match"`
	Sort    SortConfig    `mapstructure:"sort"`
	Log     LogConfig     `mapstructure:"log"`
}

// CaptureConfig mirrors the core's capture_opts.
type CaptureConfig struct {
	Limit   uint32 `mapstructure:"limit"`   // max calls retained in `all`
	Rotate  bool   `mapstructure:"rotate"`  // evict oldest non-locked call at capacity instead of dropping
	RTP     bool   `mapstructure:"rtp"`     // track RTP streams from SDP
	OutFile string `mapstructure:"outfile"` // optional raw packet trace path, written by the capture frontend

	// IdleTimeout bounds how long a call may go without a new message or
	// RTP packet before it leaves the `active` set. Empty means "use the
	// package default" (30s).
	IdleTimeout string `mapstructure:"idle_timeout"`
}

// MatchConfig mirrors the core's match_opts (admission policy).
type MatchConfig struct {
	Invite   bool   `mapstructure:"invite"`   // admit only calls whose first message is INVITE
	Complete bool   `mapstructure:"complete"` // drop calls already in progress (To-tag present) at first sight
	MExpr    string `mapstructure:"mexpr"`    // optional payload admission regex
	MInvert  bool   `mapstructure:"minvert"`  // invert the mexpr match
	MICase   bool   `mapstructure:"micase"`   // case-insensitive mexpr match
}

// SortConfig mirrors the core's sort_opts.
type SortConfig struct {
	By  string `mapstructure:"by"`  // attribute id, e.g. "CALLID", "CSEQ"
	Asc bool   `mapstructure:"asc"` // ascending order
}

// LogConfig configures the ambient logger (internal/log).
type LogConfig struct {
	Level   string        `mapstructure:"level"`
	Pattern string        `mapstructure:"pattern"`
	Time    string        `mapstructure:"time"`
	File    FileLogConfig `mapstructure:"file"`
}

// FileLogConfig configures the optional rotating file sink.
type FileLogConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Filename   string `mapstructure:"filename"` // required when Enabled
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	MaxBackups int    `mapstructure:"max_backups"`
	Compress   bool   `mapstructure:"compress"`
}

type configRoot struct {
	SIPCore GlobalConfig `mapstructure:"sip-core"`
}

// Load reads configuration from a YAML file at path, applies defaults,
// validates it, and returns the result. Environment variables override
// file values via the SIP_CORE_ prefix (e.g. SIP_CORE_CAPTURE_LIMIT).
func Load(path string) (*GlobalConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	var root configRoot
	if err := v.Unmarshal(&root); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	cfg := root.SIPCore

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	return &cfg, nil
}

// Default returns the GlobalConfig setDefaults would produce with no
// config file at all, for callers (e.g. the CLI) that allow running
// without --config.
func Default() *GlobalConfig {
	v := viper.New()
	setDefaults(v)
	var root configRoot
	_ = v.Unmarshal(&root)
	return &root.SIPCore
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("sip-core.capture.limit", 1000)
	v.SetDefault("sip-core.capture.rotate", false)
	v.SetDefault("sip-core.capture.rtp", false)
	v.SetDefault("sip-core.capture.idle_timeout", "30s")

	v.SetDefault("sip-core.sort.by", "CALLID")
	v.SetDefault("sip-core.sort.asc", true)

	v.SetDefault("sip-core.log.level", "info")
	v.SetDefault("sip-core.log.pattern", "%time [%level] %field %msg")
	v.SetDefault("sip-core.log.time", "2006-01-02T15:04:05.000Z07:00")
	v.SetDefault("sip-core.log.file.max_size_mb", 100)
	v.SetDefault("sip-core.log.file.max_age_days", 30)
	v.SetDefault("sip-core.log.file.max_backups", 5)
	v.SetDefault("sip-core.log.file.compress", true)
}

// Validate checks the options that can be validated without the regex
// engine the core uses internally (InvalidPattern is re-surfaced by the
// core's own Init/SetFilter; this is a cheap fail-fast check so a bad
// config file is rejected before the core is even built).
func (cfg *GlobalConfig) Validate() error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(cfg.Log.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug/info/warn/error)", cfg.Log.Level)
	}
	if cfg.Log.File.Enabled && cfg.Log.File.Filename == "" {
		return fmt.Errorf("log.file.filename is required when log.file.enabled=true")
	}
	if cfg.Capture.Limit == 0 {
		return fmt.Errorf("capture.limit must be > 0")
	}
	if cfg.Match.MExpr != "" {
		pattern := cfg.Match.MExpr
		if cfg.Match.MICase {
			pattern = "(?i)" + pattern
		}
		if _, err := regexp.Compile(pattern); err != nil {
			return fmt.Errorf("match.mexpr: %w", err)
		}
	}
	return nil
}
