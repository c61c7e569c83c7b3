package repair

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"worldmanager/internal/logging"
	"worldmanager/internal/world"
)

// Pass names used in logs, summaries and the run ledger.
const (
	PassBroken     = "broken"
	PassExtensions = "extensions"
	PassDuplicates = "duplicates"
	PassNormalize  = "normalize"
	PassUnused     = "unused"
)

// Action is one change made by a pass.
type Action struct {
	Pass   string
	Kind   string
	From   string
	To     string
	Refs   int
	Detail string
}

// Action kinds.
const (
	ActionRewrite   = "rewrite"
	ActionRename    = "rename"
	ActionTranscode = "transcode"
	ActionQueue     = "queue_trash"
	ActionFailed    = "failed"
)

// Recorder receives every action as it happens.
type Recorder interface {
	RecordAction(ctx context.Context, a Action) error
}

// ProgressFunc is called after each path group a long pass handles.
type ProgressFunc func(pass string, done, total int)

// PassResult counts what one pass did.
type PassResult struct {
	Pass      string
	Examined  int
	Repaired  int
	Rewritten int
	Queued    int
	Skipped   int
	Failed    int
	Elapsed   time.Duration
}

// Summary is the outcome of Pipeline.Run, one entry per executed pass.
type Summary struct {
	Passes []PassResult
}

// Total adds up every pass.
func (s Summary) Total() PassResult {
	var t PassResult
	t.Pass = "total"
	for _, p := range s.Passes {
		t.Examined += p.Examined
		t.Repaired += p.Repaired
		t.Rewritten += p.Rewritten
		t.Queued += p.Queued
		t.Skipped += p.Skipped
		t.Failed += p.Failed
		t.Elapsed += p.Elapsed
	}
	return t
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithSegments overrides the legacy and replacement path segments used to
// heal broken references.
func WithSegments(legacy, replacement string) Option {
	return func(p *Pipeline) {
		if legacy != "" {
			p.legacySegment = legacy
		}
		if replacement != "" {
			p.worldSegment = replacement
		}
	}
}

// WithRecorder stores every action, typically in the run ledger.
func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) { p.recorder = r }
}

// WithProgress reports per-group progress of the normalize pass.
func WithProgress(fn ProgressFunc) Option {
	return func(p *Pipeline) { p.progress = fn }
}

// Pipeline runs the repair passes against one store.
type Pipeline struct {
	store         *world.Store
	logger        *slog.Logger
	recorder      Recorder
	progress      ProgressFunc
	sampler       *logging.ProgressSampler
	legacySegment string
	worldSegment  string
}

// New builds a pipeline over store.
func New(store *world.Store, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:         store,
		legacySegment: "modules",
		worldSegment:  "worlds",
		sampler:       logging.NewProgressSampler(10),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = logging.NewComponentLogger(p.logger, "repair")
	return p
}

type step struct {
	name string
	run  func(context.Context) (PassResult, error)
}

// Run executes every pass in order. It stops early only when ctx is
// cancelled or a record rewrite fails; the summary covers the passes that
// ran.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	steps := []step{
		{PassBroken, p.FixBroken},
		{PassExtensions, p.FixExtensions},
		{PassDuplicates, p.ConsolidateDuplicates},
		{PassNormalize, p.Normalize},
		{PassDuplicates, p.ConsolidateDuplicates},
		{PassUnused, p.CollectUnused},
	}
	var summary Summary
	for _, st := range steps {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		logger := p.logger.With(logging.String(logging.FieldPass, st.name))
		logger.Info("pass started", logging.String(logging.FieldEventType, "pass_start"))

		started := time.Now()
		result, err := st.run(ctx)
		result.Pass = st.name
		result.Elapsed = time.Since(started)
		summary.Passes = append(summary.Passes, result)
		if err != nil {
			logger.Error("pass failed",
				logging.String(logging.FieldEventType, "pass_failure"),
				logging.Error(err),
			)
			return summary, fmt.Errorf("%s pass: %w", st.name, err)
		}
		logger.Info("pass completed",
			logging.String(logging.FieldEventType, "pass_complete"),
			logging.Int("examined", result.Examined),
			logging.Int("repaired", result.Repaired),
			logging.Int("rewritten", result.Rewritten),
			logging.Int("queued", result.Queued),
			logging.Int("failed", result.Failed),
			logging.Duration("elapsed", result.Elapsed),
		)
	}
	return summary, nil
}

func (p *Pipeline) record(ctx context.Context, a Action) {
	if p.recorder == nil {
		return
	}
	if err := p.recorder.RecordAction(ctx, a); err != nil {
		logging.WarnWithContext(p.logger, "failed to record repair action", "ledger_write_failed",
			logging.String(logging.FieldPass, a.Pass),
			logging.String(logging.FieldPath, a.From),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the state folder"),
			logging.String(logging.FieldImpact, "run history incomplete"),
		)
	}
}

// rewritable checks that every reference of g can be pointed at newPath.
// Passes call it before touching the disk so that a group is either fully
// rewritten or left alone.
func (p *Pipeline) rewritable(g world.PathGroup, newPath string) error {
	for _, ref := range g.Refs {
		if _, err := ref.Rewritten(newPath); err != nil {
			return err
		}
	}
	return nil
}

// rewriteGroup points every reference of g at newPath. A group that cannot
// be rewritten in full is left untouched and the error wraps
// world.ErrPathNotFound.
func (p *Pipeline) rewriteGroup(g world.PathGroup, newPath string) (int, error) {
	if err := p.rewritable(g, newPath); err != nil {
		return 0, err
	}
	for i, ref := range g.Refs {
		if err := ref.Rewrite(newPath); err != nil {
			return i, err
		}
	}
	return len(g.Refs), nil
}

// skipGroup handles a rewrite refusal. It reports false for any other error,
// which the pass must return.
func (p *Pipeline) skipGroup(ctx context.Context, pass string, g world.PathGroup, newPath string, err error, result *PassResult) bool {
	if !errors.Is(err, world.ErrPathNotFound) {
		return false
	}
	result.Skipped++
	logging.WarnWithContext(p.logger, "reference left unchanged", "rewrite_refused",
		logging.String(logging.FieldPass, pass),
		logging.String(logging.FieldPath, g.Path),
		logging.String("target", newPath),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "edit the record by hand; the image path is not a plain img src"),
		logging.String(logging.FieldImpact, "file kept and not queued for trash"),
	)
	p.record(ctx, Action{Pass: pass, Kind: ActionFailed, From: g.Path, To: newPath, Detail: err.Error()})
	return true
}

func (p *Pipeline) queue(ctx context.Context, pass, diskPath string) bool {
	if diskPath == "" || p.store.IsQueued(diskPath) {
		return false
	}
	p.store.QueueTrash(diskPath)
	p.record(ctx, Action{Pass: pass, Kind: ActionQueue, From: diskPath})
	return true
}
