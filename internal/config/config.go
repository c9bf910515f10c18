// Package config loads matchengine's run configuration with viper,
// grounded on the config command in the teacher's cmd/vibe-vep/config.go:
// a ~/.matchengine.yaml file, MATCHENGINE_* environment variable
// overrides, and viper.Get-style settings rather than hand-rolled flag
// parsing.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// MatchMethod selects whether the annotation-service variant matcher is
// active, per spec.md §6.
type MatchMethod string

const (
	MethodGeneral   MatchMethod = "general"
	MethodAnnotated MatchMethod = "annotated"
)

// Config is the recognized settings set from spec.md §6.
type Config struct {
	StoreURI           string      `mapstructure:"store_uri"`
	WorkerCount        int         `mapstructure:"worker_count"`
	AnnotationEndpoint string      `mapstructure:"annotation_endpoint"`
	AnnotationToken    string      `mapstructure:"annotation_token"`
	TumorTreePath      string      `mapstructure:"tumor_tree_path"`
	MatchMethod        MatchMethod `mapstructure:"match_method"`
}

// Load reads configuration from (in ascending priority) defaults,
// ~/.matchengine.yaml, and MATCHENGINE_* environment variables.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("store_uri", "")
	v.SetDefault("worker_count", 0) // 0 => engine picks min(8, NumCPU)
	v.SetDefault("match_method", string(MethodGeneral))
	v.SetDefault("tumor_tree_path", "")

	home, err := os.UserHomeDir()
	if err == nil {
		v.AddConfigPath(home)
	}
	v.SetConfigName(".matchengine")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("MATCHENGINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.MatchMethod == MethodAnnotated && cfg.AnnotationToken == "" {
		return nil, fmt.Errorf("match_method=annotated requires annotation_token")
	}

	return &cfg, nil
}

// DefaultPath returns the config file path Load looks for, used by the
// `config` subcommand to report where settings are written.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".matchengine.yaml"
	}
	return filepath.Join(home, ".matchengine.yaml")
}
