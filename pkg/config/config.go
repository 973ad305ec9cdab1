// Package config loads the CLI's runtime configuration: the KV
// adapter's backend directory and the split planner's session knobs.
// Cobra flags are bound through viper so every option is also settable
// by environment variable (pattern follows influxdata-influxdb's
// kit/cli.Program/Opt helper).
package config

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/etmarx/presto-accumulo/pkg/planner"
)

// EnvPrefix is the environment-variable prefix every bound option is
// reachable under, e.g. PRESTOACCUMULO_BASE_DIR.
const EnvPrefix = "PRESTOACCUMULO"

// Config is the CLI's resolved runtime configuration.
type Config struct {
	BaseDir         string
	ScanConcurrency int
	Session         planner.Session
	LogLevel        string
	LogFormat       string
}

// Opt is one bindable option: a destination, a flag name, a default,
// and its help text.
type Opt struct {
	DestP   interface{}
	Flag    string
	Default interface{}
	Desc    string
}

// Default returns the configuration a fresh CLI invocation starts
// from before flags/env overrides apply.
func Default() Config {
	return Config{
		BaseDir:         "./data",
		ScanConcurrency: 10,
		Session:         planner.DefaultSession(),
		LogLevel:        "INFO",
		LogFormat:       "text",
	}
}

// Opts returns cfg's fields as bindable Opts, in the same Program/Opt
// shape influxdata-influxdb's CLI helper uses.
func (cfg *Config) Opts() []Opt {
	return []Opt{
		{DestP: &cfg.BaseDir, Flag: "base-dir", Default: cfg.BaseDir, Desc: "directory holding the pebble-backed tables"},
		{DestP: &cfg.ScanConcurrency, Flag: "scan-concurrency", Default: cfg.ScanConcurrency, Desc: "parallel workers for batch scans"},
		{DestP: &cfg.Session.OptimizeRangePredicatePushdown, Flag: "optimize-range-predicate-pushdown", Default: cfg.Session.OptimizeRangePredicatePushdown, Desc: "translate row-ID predicates into storage ranges"},
		{DestP: &cfg.Session.SecondaryIndexEnabled, Flag: "secondary-index-enabled", Default: cfg.Session.SecondaryIndexEnabled, Desc: "consult the secondary index during planning"},
		{DestP: &cfg.Session.OptimizeRangeSplits, Flag: "optimize-range-splits", Default: cfg.Session.OptimizeRangeSplits, Desc: "align candidate ranges to tablet boundaries"},
		{DestP: &cfg.Session.LowestCardinalityThreshold, Flag: "lowest-cardinality-threshold", Default: cfg.Session.LowestCardinalityThreshold, Desc: "cardinality/N ratio above which intersection mode is used"},
		{DestP: &cfg.Session.IndexRatio, Flag: "index-ratio", Default: cfg.Session.IndexRatio, Desc: "surviving-set/N ratio at or above which planning falls back to pushdown ranges"},
		{DestP: &cfg.Session.NumArtificialSplits, Flag: "num-artificial-splits", Default: cfg.Session.NumArtificialSplits, Desc: "levels of artificial range bisection"},
		{DestP: &cfg.Session.RangesPerSplit, Flag: "ranges-per-split", Default: cfg.Session.RangesPerSplit, Desc: "ranges binned into each split"},
		{DestP: &cfg.LogLevel, Flag: "log-level", Default: cfg.LogLevel, Desc: "DEBUG, INFO, WARN, or ERROR"},
		{DestP: &cfg.LogFormat, Flag: "log-format", Default: cfg.LogFormat, Desc: "text or json"},
	}
}

// BindTo registers cfg's options as flags on cmd and binds each one
// through viper so PRESTOACCUMULO_<FLAG> overrides it.
func (cfg *Config) BindTo(cmd *cobra.Command) {
	viper.SetEnvPrefix(EnvPrefix)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	for _, o := range cfg.Opts() {
		bindOpt(cmd, o)
	}
}

func bindOpt(cmd *cobra.Command, o Opt) {
	switch dest := o.DestP.(type) {
	case *string:
		cmd.Flags().StringVar(dest, o.Flag, o.Default.(string), o.Desc)
	case *int:
		cmd.Flags().IntVar(dest, o.Flag, o.Default.(int), o.Desc)
	case *bool:
		cmd.Flags().BoolVar(dest, o.Flag, o.Default.(bool), o.Desc)
	case *float64:
		cmd.Flags().Float64Var(dest, o.Flag, o.Default.(float64), o.Desc)
	default:
		panic("config: unsupported option destination type")
	}
	if err := viper.BindPFlag(o.Flag, cmd.Flags().Lookup(o.Flag)); err != nil {
		panic(err)
	}
}

// ApplyEnv overwrites any field whose flag was left at its default
// with the value bound from the environment, if present.
func (cfg *Config) ApplyEnv() {
	for _, o := range cfg.Opts() {
		if !viper.IsSet(o.Flag) {
			continue
		}
		switch dest := o.DestP.(type) {
		case *string:
			*dest = viper.GetString(o.Flag)
		case *int:
			*dest = viper.GetInt(o.Flag)
		case *bool:
			*dest = viper.GetBool(o.Flag)
		case *float64:
			*dest = viper.GetFloat64(o.Flag)
		}
	}
}
