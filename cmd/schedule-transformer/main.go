// Command schedule-transformer loads a directory of schedule records, runs
// rule files over them and writes the result to another directory.
//
//	schedule-transformer --input feed --output out --rules cleanup.txt,rename.txt
//
// Settings may also come from transformer.yaml or TRANSFORMER_* variables,
// see internal/config.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"schedule-transformer/internal/config"
	"schedule-transformer/pkg/logger"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run returns the process exit code: 0 on success, 1 when the transform
// fails and 2 for usage or configuration errors.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags := config.Flags()
	flags.SetOutput(stderr)

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}

		return 2
	}

	configFile, _ := flags.GetString("config")

	cfg, err := config.Load(configFile, flags)
	if err == nil {
		err = cfg.Validate()
	}

	if err != nil {
		fmt.Fprintln(stderr, err)

		return 2
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintln(stderr, "logger:", err)

		return 2
	}
	defer func() { _ = log.Sync() }()

	ctx = logger.WithLogger(ctx, log)

	if cfg.File != "" {
		log.Debugw("config loaded", "file", cfg.File)
	}

	if err := transformFeed(ctx, cfg, stdout); err != nil {
		log.Errorw("transform failed", "error", err)

		return 1
	}

	return 0
}
