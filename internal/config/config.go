// Package config loads the settings of the schedule-transformer command.
//
// Settings come from, in increasing precedence: defaults, a YAML config
// file, TRANSFORMER_* environment variables and command line flags.
//
//	log:
//	  level: debug
//	  development: true
//	rules: [rules/cleanup.txt, rules/rename.txt.gz]
//	schema: schema-overrides.yaml
//	input: feeds/in
//	output: feeds/out
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"schedule-transformer/pkg/logger"
)

// EnvPrefix prefixes every environment override, as in TRANSFORMER_LOG_LEVEL.
const EnvPrefix = "TRANSFORMER"

// Config holds the command settings.
type Config struct {
	Log    logger.Config
	Rules  []string
	Schema string
	Input  string
	Output string
	DryRun bool

	// File is the config file that was read, empty when none was found.
	File string
}

// Default returns the settings used when nothing overrides them.
func Default() Config {
	return Config{
		Log: logger.Config{Level: "info"},
	}
}

// key binds a viper key to its command line flag.
type key struct {
	name string
	flag string
}

var keys = []key{
	{name: "log.level", flag: "log-level"},
	{name: "log.development", flag: "log-dev"},
	{name: "rules", flag: "rules"},
	{name: "schema", flag: "schema"},
	{name: "input", flag: "input"},
	{name: "output", flag: "output"},
	{name: "dry_run", flag: "dry-run"},
}

// Flags returns the command line flags understood by Load.
func Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("schedule-transformer", pflag.ContinueOnError)

	fs.String("config", "", "config file (default ./transformer.yaml when present)")
	fs.String("log-level", "info", "log level: debug, info, warn, error")
	fs.Bool("log-dev", false, "human readable log output")
	fs.StringSlice("rules", nil, "rule files applied in order")
	fs.String("schema", "", "YAML schema override file")
	fs.String("input", "", "directory holding the input records")
	fs.String("output", "", "directory receiving the output records")
	fs.Bool("dry-run", false, "load and transform without writing")

	return fs
}

// Load reads the settings. configFile may be empty, in which case
// transformer.yaml is looked up in the working directory and skipped when
// absent. flags may be nil.
func Load(configFile string, flags *pflag.FlagSet) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, k := range keys {
		if err := v.BindEnv(k.name); err != nil {
			return cfg, fmt.Errorf("bind env %s: %w", k.name, err)
		}

		if flags == nil {
			continue
		}

		if f := flags.Lookup(k.flag); f != nil {
			if err := v.BindPFlag(k.name, f); err != nil {
				return cfg, fmt.Errorf("bind flag %s: %w", k.flag, err)
			}
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("transformer")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg.File = v.ConfigFileUsed()

	if v.IsSet("log.level") {
		cfg.Log.Level = v.GetString("log.level")
	}
	if v.IsSet("log.development") {
		cfg.Log.Development = v.GetBool("log.development")
	}
	if v.IsSet("rules") {
		cfg.Rules = v.GetStringSlice("rules")
	}
	if v.IsSet("schema") {
		cfg.Schema = v.GetString("schema")
	}
	if v.IsSet("input") {
		cfg.Input = v.GetString("input")
	}
	if v.IsSet("output") {
		cfg.Output = v.GetString("output")
	}
	if v.IsSet("dry_run") {
		cfg.DryRun = v.GetBool("dry_run")
	}

	return cfg, nil
}

// Validate reports settings the command cannot run with.
func (c Config) Validate() error {
	if c.Input == "" {
		return errors.New("config: input directory is required")
	}

	if c.Output == "" && !c.DryRun {
		return errors.New("config: output directory is required unless dry_run is set")
	}

	return nil
}
