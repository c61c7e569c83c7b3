package worldrun

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"worldmanager/internal/config"
	"worldmanager/internal/ledger"
	"worldmanager/internal/logging"
	"worldmanager/internal/preflight"
	"worldmanager/internal/repair"
	"worldmanager/internal/transcode"
	"worldmanager/internal/world"
)

// Options configures Compress.
type Options struct {
	Logger *slog.Logger
	// Transcoder overrides the ffmpeg transcoder built from the config.
	Transcoder transcode.Transcoder
	Progress   repair.ProgressFunc
}

// Result describes a finished compress run.
type Result struct {
	RunID   string
	Stats   world.Stats
	Summary repair.Summary
	Trash   world.TrashResult
	Purged  bool
	Elapsed time.Duration
}

// Compress validates the inputs, repairs every image reference of the
// configured world, writes the records back, moves replaced files into
// _trash and, when cfg.Trash.Purge is set, deletes the trash folder.
//
// A cancelled run still writes the records so renamed files stay
// referenced; queued files are then left in place. A run that fails for any
// other reason leaves the records untouched.
func Compress(ctx context.Context, cfg *config.Config, opts Options) (*Result, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if err := preflight.Err(preflight.RunAll(ctx, cfg)); err != nil {
		return nil, err
	}

	lock, err := acquireLock(cfg)
	if err != nil {
		return nil, err
	}
	defer func() { _ = lock.Unlock() }()

	signalCtx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	led, err := ledger.Open(cfg.LedgerPath())
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	defer led.Close()

	run, err := led.StartRun(signalCtx, cfg.Paths.WorldDir)
	if err != nil {
		return nil, err
	}
	runCtx := logging.WithRunID(signalCtx, run.ID)
	logger := logging.WithContext(runCtx, logging.NewComponentLogger(opts.Logger, "worldrun"))
	logger.Info("compress started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String(logging.FieldWorld, cfg.Paths.WorldDir),
		logging.String("ffmpeg", cfg.Transcoder.FFmpegPath),
		logging.Bool("purge", cfg.Trash.Purge),
	)

	started := time.Now()
	result := &Result{RunID: run.ID}
	runErr := compress(runCtx, cfg, opts, led, run.ID, logger, result)
	result.Elapsed = time.Since(started)

	status := ledger.StatusCompleted
	switch {
	case errors.Is(runErr, context.Canceled):
		status = ledger.StatusCancelled
	case runErr != nil:
		status = ledger.StatusFailed
	}
	// The parent context may be cancelled already; the ledger row must still close.
	if err := led.FinishRun(context.WithoutCancel(runCtx), run.ID, status, &result.Summary, runErr); err != nil {
		logger.Error("failed to finish run in ledger", logging.Error(err))
	}

	if runErr != nil {
		logger.Error("compress failed",
			logging.String(logging.FieldEventType, "run_failure"),
			logging.String("status", string(status)),
			logging.Error(runErr),
		)
		return result, runErr
	}
	logger.Info("compress completed",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.Int("moved_to_trash", len(result.Trash.Moved)),
		logging.Bool("purged", result.Purged),
		logging.Duration("elapsed", result.Elapsed),
	)
	return result, nil
}

func compress(ctx context.Context, cfg *config.Config, opts Options, led *ledger.Ledger, runID string, logger *slog.Logger, result *Result) error {
	transcoder := opts.Transcoder
	if transcoder == nil {
		transcoder = transcode.NewFFmpeg(
			transcode.WithBinary(cfg.Transcoder.FFmpegPath),
			transcode.WithCodec(cfg.Transcoder.Codec),
		)
	}
	storeOpts := world.Options{
		DataRoot:     cfg.Paths.UserDataDir,
		WorldDir:     cfg.Paths.WorldDir,
		CoreRoot:     cfg.Paths.CoreDataDir,
		SettingsFile: cfg.Repair.SettingsFile,
		Transcoder:   transcoder,
		Logger:       logger,
	}
	if cfg.Repair.HashCache {
		storeOpts.HashCache = led
	}
	store, err := world.Open(storeOpts)
	if err != nil {
		return err
	}
	result.Stats = store.Stats()

	pipeline := repair.New(store,
		repair.WithLogger(logger),
		repair.WithSegments(cfg.Repair.LegacySegment, cfg.Repair.WorldSegment),
		repair.WithRecorder(led.Recorder(runID)),
		repair.WithProgress(opts.Progress),
	)
	summary, pipeErr := pipeline.Run(ctx)
	result.Summary = summary

	// A cancelled run keeps the renames and transcodes it finished, so the
	// records follow them. Any other failure may leave a record half
	// rewritten and nothing is written back.
	if pipeErr != nil && !errors.Is(pipeErr, context.Canceled) {
		return pipeErr
	}
	if err := store.Persist(); err != nil {
		return errors.Join(pipeErr, fmt.Errorf("write records: %w", err))
	}
	if pipeErr != nil {
		return pipeErr
	}

	result.Trash = store.CommitTrash()
	if cfg.Trash.Purge {
		purged, err := store.PurgeTrash(true, logger)
		if err != nil {
			return fmt.Errorf("purge trash: %w", err)
		}
		result.Purged = purged
	}
	result.Stats = store.Stats()
	return nil
}
