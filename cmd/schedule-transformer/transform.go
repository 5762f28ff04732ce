package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"schedule-transformer/internal/config"
	"schedule-transformer/internal/diagnostic"
	"schedule-transformer/internal/transform"
	"schedule-transformer/internal/transit"
	"schedule-transformer/pkg/logger"
)

// transformFeed compiles every rule file, loads the input, runs the
// pipelines in order and writes or summarizes the result.
func transformFeed(ctx context.Context, cfg config.Config, stdout io.Writer) error {
	log := logger.FromContext(ctx)

	env, err := transit.NewEnvironment()
	if err != nil {
		return err
	}

	if cfg.Schema != "" {
		if err := env.Schemas.ConfigureFile(cfg.Schema); err != nil {
			return fmt.Errorf("schema overrides: %w", err)
		}
	}

	pipelines := make([]*transform.Pipeline, 0, len(cfg.Rules))

	for _, path := range cfg.Rules {
		compiler := env.Compiler()

		p, err := compiler.CompileFile(ctx, path)
		if err != nil {
			return fmt.Errorf("compile %s: %w", path, err)
		}

		report(log.With("rules", path), compiler.Diagnostics())
		pipelines = append(pipelines, p)
	}

	reader := env.Reader()
	if err := reader.ReadAll(ctx, csvDir(cfg.Input), transit.LoadOrder()...); err != nil {
		return fmt.Errorf("load %s: %w", cfg.Input, err)
	}

	report(log.With("input", cfg.Input), reader.Diagnostics())

	for i, p := range pipelines {
		runID, err := p.Run(ctx, env.Env())
		if err != nil {
			return fmt.Errorf("run %s: %w", cfg.Rules[i], err)
		}

		log.Infow("rules applied", "rules", cfg.Rules[i], "run_id", runID, "stages", p.Len())
	}

	if cfg.DryRun {
		return summarize(env, stdout)
	}

	return writeFeed(ctx, env, csvDir(cfg.Output))
}

func report(log *logger.Logger, diags diagnostic.Diagnostics) {
	for _, d := range diags.Errors {
		log.Warnw("row dropped", "diagnostic", d.String())
	}

	for _, d := range diags.Warnings {
		log.Warnw(d.Message, "diagnostic", d.String())
	}

	for _, d := range diags.Infos {
		log.Debugw(d.Message, "diagnostic", d.String())
	}
}

// summarize prints one "record<TAB>count" line per loaded record.
func summarize(env *transit.Environment, w io.Writer) error {
	writer := env.Writer()

	for _, t := range transit.LoadOrder() {
		n := env.Store.Count(t)
		if n == 0 {
			continue
		}

		name, err := writer.Record(t)
		if err != nil {
			return err
		}

		if _, err := fmt.Fprintf(w, "%s\t%d\n", name, n); err != nil {
			return err
		}
	}

	return nil
}

// writeFeed writes every non-empty record to dir.
func writeFeed(ctx context.Context, env *transit.Environment, dir csvDir) error {
	log := logger.FromContext(ctx)

	if err := os.MkdirAll(string(dir), 0o755); err != nil {
		return fmt.Errorf("create output: %w", err)
	}

	writer := env.Writer()

	for _, t := range transit.LoadOrder() {
		if env.Store.Count(t) == 0 {
			continue
		}

		name, err := writer.Record(t)
		if err != nil {
			return err
		}

		header, rows, err := writer.Write(t)
		if err != nil {
			return err
		}

		if err := dir.write(name, header, rows); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}

		log.Debugw("record written", "record", name, "rows", len(rows))
	}

	return nil
}
