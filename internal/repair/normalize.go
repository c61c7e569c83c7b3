package repair

import (
	"context"
	"errors"
	"os"

	"worldmanager/internal/logging"
	"worldmanager/internal/world"
)

// Normalize converts world-local images to webp. When the webp sibling
// exists afterwards (converted now or already present) every reference in
// the group is rewritten to it and the original is queued for trash. A
// failed conversion leaves the group and the file alone.
func (p *Pipeline) Normalize(ctx context.Context) (PassResult, error) {
	var result PassResult
	var pending []world.PathGroup
	for _, group := range p.store.ByPath() {
		rep := group.Representative()
		st := rep.State()
		if st.IsNormalized || !st.Exists || st.External || !rep.WorldLocal() {
			continue
		}
		pending = append(pending, group)
	}

	p.sampler.Reset()
	total := len(pending)
	for i, group := range pending {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.Examined++
		if err := p.normalizeGroup(ctx, group, &result); err != nil {
			return result, err
		}
		p.reportProgress(i+1, total)
	}
	return result, nil
}

func (p *Pipeline) normalizeGroup(ctx context.Context, group world.PathGroup, result *PassResult) error {
	rep := group.Representative()
	st := rep.State()
	target := p.store.DataPath(st.NormalizedPath)

	if err := p.rewritable(group, st.NormalizedPath); err != nil {
		if p.skipGroup(ctx, PassNormalize, group, st.NormalizedPath, err, result) {
			return nil
		}
		return err
	}

	// Another group may have produced the same sibling earlier in this pass.
	if _, err := os.Stat(target); err != nil {
		if err := rep.Transcode(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			result.Failed++
			logging.WarnWithContext(p.logger, "image conversion failed", "transcode_failed",
				logging.String(logging.FieldPass, PassNormalize),
				logging.String(logging.FieldPath, group.Path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "run ffmpeg manually on the file to see the cause"),
			)
			p.record(ctx, Action{Pass: PassNormalize, Kind: ActionFailed, From: group.Path, To: st.NormalizedPath, Detail: err.Error()})
			return nil
		}
		p.record(ctx, Action{Pass: PassNormalize, Kind: ActionTranscode, From: st.DiskPath, To: target})
	}

	if info, err := os.Stat(target); err != nil || !info.Mode().IsRegular() {
		result.Failed++
		if err == nil {
			err = errors.New("not a regular file")
		}
		logging.WarnWithContext(p.logger, "converted image missing", "transcode_output_missing",
			logging.String(logging.FieldPass, PassNormalize),
			logging.String(logging.FieldPath, st.NormalizedPath),
			logging.Error(err),
		)
		return nil
	}

	n, err := p.rewriteGroup(group, st.NormalizedPath)
	result.Rewritten += n
	if err != nil {
		if p.skipGroup(ctx, PassNormalize, group, st.NormalizedPath, err, result) {
			return nil
		}
		return err
	}
	result.Repaired++
	p.record(ctx, Action{Pass: PassNormalize, Kind: ActionRewrite, From: group.Path, To: st.NormalizedPath, Refs: n})
	if p.queue(ctx, PassNormalize, st.DiskPath) {
		result.Queued++
	}
	return nil
}

func (p *Pipeline) reportProgress(done, total int) {
	if p.progress != nil {
		p.progress(PassNormalize, done, total)
	}
	if total == 0 {
		return
	}
	percent := float64(done) * 100 / float64(total)
	if p.sampler.ShouldLog(percent, PassNormalize) {
		p.logger.Info("normalize progress",
			logging.String(logging.FieldPass, PassNormalize),
			logging.Int("done", done),
			logging.Int("total", total),
			logging.Int(logging.FieldProgressPercent, int(percent)),
		)
	}
}
