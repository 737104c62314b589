package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	enhance "github.com/alnah/go-enhance"
	"github.com/alnah/go-enhance/internal/config"
)

// runRunCmd executes the run command and returns an exit code.
func runRunCmd(args []string, env *Environment) int {
	flags, positional, err := parseRunFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		fmt.Fprintln(env.Stderr, err)
		return ExitUsage
	}

	log := newLogger(env.Stderr, flags.common.quiet, flags.common.verbose)
	defer func() { _ = log.Sync() }()
	setMaxProcs(log)
	warnUnknownEnvVars(env.Stderr, env.Environ())

	ctx, stop := notifyContext(context.Background())
	defer stop()

	if err := runEnhance(ctx, positional, flags, env, log); err != nil {
		fmt.Fprintln(env.Stderr, formatError(err, flags.common.config))
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// runEnhance orchestrates a batch run.
func runEnhance(ctx context.Context, positionalArgs []string, flags *runFlags, env *Environment, log *zap.Logger) error {
	cfg, err := loadConfig(flags.common.config, env)
	if err != nil {
		return err
	}
	if err := mergeRunFlags(flags, cfg); err != nil {
		return err
	}

	if len(positionalArgs) == 0 {
		return ErrNoInput
	}
	inputPath := positionalArgs[0]

	pages, err := discoverPages(inputPath, cfg.Output.DefaultDir)
	if err != nil {
		return fmt.Errorf("discovering pages: %w", err)
	}
	if len(pages) == 0 {
		return fmt.Errorf("%w in %s", ErrNoPages, inputPath)
	}

	opts, err := buildOptions(cfg, log)
	if err != nil {
		return err
	}

	poolSize := min(enhance.ResolvePoolSize(cfg.Workers), len(pages))
	log.Debug("starting run",
		zap.Int("pages", len(pages)),
		zap.Int("workers", poolSize),
		zap.Strings("passes", enabledPasses(cfg)))

	pool := env.NewPool(poolSize, opts...)
	defer func() {
		if err := pool.Close(); err != nil {
			log.Warn("closing enhancers", zap.Error(err))
		}
	}()

	start := env.Now()
	results := enhanceBatch(ctx, pool, pages, batchParamsFor(cfg), log)
	summary := printResults(results, flags.common.quiet, flags.common.verbose, env, log)
	log.Debug("run finished", zap.Duration("elapsed", env.Now().Sub(start)))

	return batchError(results, summary)
}

// batchParamsFor extracts the per-page parameters of a run.
func batchParamsFor(cfg *config.Config) *batchParams {
	return &batchParams{
		pdf:        cfg.PDF.Enabled,
		waitImages: cfg.Output.WaitImages,
		timeout:    time.Duration(cfg.Timeout),
		baseDir:    cfg.Images.BaseDir,
	}
}
