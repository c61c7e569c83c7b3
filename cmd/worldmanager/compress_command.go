package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"worldmanager/internal/preflight"
	"worldmanager/internal/repair"
	"worldmanager/internal/worldrun"
)

type compressView struct {
	RunID        string       `json:"run_id" yaml:"run_id"`
	World        string       `json:"world" yaml:"world"`
	References   int          `json:"references" yaml:"references"`
	Passes       []passView   `json:"passes" yaml:"passes"`
	Trashed      int          `json:"trashed" yaml:"trashed"`
	TrashedBytes int64        `json:"trashed_bytes" yaml:"trashed_bytes"`
	TrashSkipped int          `json:"trash_skipped" yaml:"trash_skipped"`
	TrashErrors  []trashError `json:"trash_errors,omitempty" yaml:"trash_errors,omitempty"`
	Purged       bool         `json:"purged" yaml:"purged"`
	ElapsedMS    int64        `json:"elapsed_ms" yaml:"elapsed_ms"`
}

type passView struct {
	Pass      string `json:"pass" yaml:"pass"`
	Examined  int    `json:"examined" yaml:"examined"`
	Repaired  int    `json:"repaired" yaml:"repaired"`
	Rewritten int    `json:"rewritten" yaml:"rewritten"`
	Queued    int    `json:"queued" yaml:"queued"`
	Skipped   int    `json:"skipped" yaml:"skipped"`
	Failed    int    `json:"failed" yaml:"failed"`
}

type trashError struct {
	Path  string `json:"path" yaml:"path"`
	Error string `json:"error" yaml:"error"`
}

func newCompressCommand(ctx *commandContext) *cobra.Command {
	var deleteFlag string

	cmd := &cobra.Command{
		Use:   "compress",
		Short: "Repair image references and convert world images to webp",
		Long: `Repair every image reference of the world: heal legacy module paths,
fix wrong extensions, merge duplicate files, convert images to webp and queue
unused images. Records are rewritten with a .bak copy of the previous version
and replaced images are moved into the world's _trash folder.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			purge, err := preflight.ParseConfirm(deleteFlag)
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("delete") {
				cfg.Trash.Purge = purge
			}

			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}

			opts := worldrun.Options{Logger: logger}
			var bar *passBar
			if ctx.outputFormat() == outputTable && isTerminal(cmd.ErrOrStderr()) {
				bar = newPassBar(cmd.ErrOrStderr())
				opts.Progress = bar.update
			}

			result, err := worldrun.Compress(cmd.Context(), cfg, opts)
			bar.finish()
			if err != nil {
				return err
			}

			view := newCompressView(cfg.Paths.WorldDir, result)
			if ok, err := writeStructured(cmd, ctx.outputFormat(), view); ok {
				return err
			}
			renderCompress(cmd.OutOrStdout(), view, time.Duration(view.ElapsedMS)*time.Millisecond)
			return nil
		},
	}

	cmd.Flags().StringVarP(&ctx.flags.ffmpeg, "ffmpeg", "f", "", "Path to the ffmpeg executable")
	cmd.Flags().StringVarP(&deleteFlag, "delete", "d", "n", "Delete the _trash folder after the run (y or n); overrides trash.purge")
	return cmd
}

func newCompressView(world string, result *worldrun.Result) compressView {
	view := compressView{
		RunID:        result.RunID,
		World:        world,
		References:   result.Stats.References,
		Trashed:      len(result.Trash.Moved),
		TrashedBytes: result.Trash.Bytes,
		TrashSkipped: len(result.Trash.Skipped),
		Purged:       result.Purged,
		ElapsedMS:    result.Elapsed.Milliseconds(),
	}
	for _, p := range append(result.Summary.Passes, result.Summary.Total()) {
		view.Passes = append(view.Passes, newPassView(p))
	}
	for _, e := range result.Trash.Errors {
		view.TrashErrors = append(view.TrashErrors, trashError{Path: e.Path, Error: e.Error.Error()})
	}
	return view
}

func newPassView(p repair.PassResult) passView {
	return passView{
		Pass:      p.Pass,
		Examined:  p.Examined,
		Repaired:  p.Repaired,
		Rewritten: p.Rewritten,
		Queued:    p.Queued,
		Skipped:   p.Skipped,
		Failed:    p.Failed,
	}
}

func renderCompress(out io.Writer, view compressView, elapsed time.Duration) {
	rows := make([][]string, 0, len(view.Passes))
	for _, p := range view.Passes {
		rows = append(rows, []string{
			p.Pass,
			formatCount(p.Examined),
			formatCount(p.Repaired),
			formatCount(p.Rewritten),
			formatCount(p.Queued),
			formatCount(p.Skipped),
			formatCount(p.Failed),
		})
	}
	fmt.Fprintf(out, "World %s (%s references)\n", view.World, formatCount(view.References))
	fmt.Fprintln(out, renderTable([]column{
		textCol("Pass"), numCol("Examined"), numCol("Repaired"), numCol("Rewritten"),
		numCol("Queued"), numCol("Skipped"), numCol("Failed"),
	}, rows))

	trash := fmt.Sprintf("Moved %s files (%s) to _trash", formatCount(view.Trashed), humanize.Bytes(uint64(view.TrashedBytes)))
	if view.Purged {
		trash += ", trash purged"
	}
	fmt.Fprintln(out, trash)
	for _, e := range view.TrashErrors {
		fmt.Fprintf(out, "  could not trash %s: %s\n", e.Path, e.Error)
	}
	fmt.Fprintf(out, "Run %s finished in %s\n", view.RunID, elapsed.Round(time.Millisecond))
}

// passBar shows one progress bar per long pass on an interactive terminal.
type passBar struct {
	out  io.Writer
	pass string
	bar  *progressbar.ProgressBar
}

func newPassBar(out io.Writer) *passBar {
	return &passBar{out: out}
}

func (b *passBar) update(pass string, done, total int) {
	if b.bar == nil || b.pass != pass {
		b.finish()
		b.pass = pass
		b.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(b.out),
			progressbar.OptionSetDescription(strings.ToLower(pass)),
			progressbar.OptionShowCount(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)
	}
	_ = b.bar.Set(done)
}

func (b *passBar) finish() {
	if b == nil || b.bar == nil {
		return
	}
	_ = b.bar.Finish()
	b.bar = nil
}
