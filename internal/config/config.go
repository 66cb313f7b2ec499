// Package config assembles the thin ambient configuration layer spec
// §1 leaves to an external collaborator ("configuration loading
// (TOML/JSON)... treated as a black-box fetcher") beyond what the
// core needs to be invoked: merging an optional TOML file, the
// SOLX_* environment variables of spec §6, and cobra flags into the
// optimizer.Settings and EVM-version values the rest of the program
// consumes. It does not reimplement a flag parser — cmd/solx owns
// flag definitions; this package only owns precedence.
package config

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/r3e-network/solx-go/internal/catalog"
	"github.com/r3e-network/solx-go/internal/optimizer"
)

// EnvPrefix is the SOLX_ prefix every recognized environment variable
// in spec §6 shares.
const EnvPrefix = "SOLX"

// Loader merges flag > env > file > default, grounded on
// magnaopus1-SYNN's cli/config wiring of cobra with a sibling config
// package, generalized here to go through viper's own precedence
// stack rather than hand-rolled merge logic.
type Loader struct {
	v *viper.Viper
}

// NewLoader constructs a Loader pre-bound to SOLX_* environment
// variables with this driver's defaults: optimization level 3, size
// fallback off, no debug output directory (spec §6's default
// optimization when SOLX_OPTIMIZATION is unset).
func NewLoader() *Loader {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetDefault("optimization", "3")
	v.SetDefault("optimization_size_fallback", false)
	v.SetDefault("debug_output_dir", "")
	return &Loader{v: v}
}

// ReadConfigFile loads an optional TOML config file. A missing path
// is a no-op: the CLI flag that names it is itself optional.
func (l *Loader) ReadConfigFile(path string) error {
	if path == "" {
		return nil
	}
	l.v.SetConfigFile(path)
	l.v.SetConfigType("toml")
	if err := l.v.ReadInConfig(); err != nil {
		return fmt.Errorf("config: reading %s: %w", path, err)
	}
	return nil
}

// BindFlag gives flag precedence over the environment and the config
// file for key: once bound, Loader.String/Bool/Int prefers the flag's
// value whenever it was explicitly set on the command line.
func (l *Loader) BindFlag(key string, flag *pflag.Flag) error {
	return l.v.BindPFlag(key, flag)
}

func (l *Loader) String(key string) string { return l.v.GetString(key) }
func (l *Loader) Bool(key string) bool     { return l.v.GetBool(key) }
func (l *Loader) Int(key string) int       { return l.v.GetInt(key) }

// OptimizerSettings resolves the merged optimization level and
// size-fallback flag into an initial, pre-recovery-loop
// optimizer.Settings (spec §4.3), honoring SOLX_OPTIMIZATION and
// SOLX_OPTIMIZATION_SIZE_FALLBACK when no flag overrides them.
func (l *Loader) OptimizerSettings(verifyEach, debugLogging bool) (optimizer.Settings, error) {
	level, err := catalog.ParseOptimizationLevel(l.String("optimization"))
	if err != nil {
		return optimizer.Settings{}, err
	}
	settings := optimizer.New(level, l.Bool("optimization_size_fallback"), verifyEach, debugLogging)
	return settings, nil
}

// DebugOutputDir resolves SOLX_DEBUG_OUTPUT_DIR (or its flag/file
// override) to the directory debug artifacts should be written under,
// empty when unset.
func (l *Loader) DebugOutputDir() string {
	return l.String("debug_output_dir")
}
