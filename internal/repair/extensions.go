package repair

import (
	"context"
	"os"

	"worldmanager/internal/fileutil"
	"worldmanager/internal/imageinfo"
	"worldmanager/internal/logging"
)

// FixExtensions renames world-local images whose extension disagrees with
// their content and rewrites every reference to the new name. A rename that
// would overwrite an existing file is skipped.
func (p *Pipeline) FixExtensions(ctx context.Context) (PassResult, error) {
	var result PassResult
	for _, group := range p.store.ByPath() {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		rep := group.Representative()
		st := rep.State()
		if st.Encoding == "" || !st.Exists || st.External || !rep.WorldLocal() || st.Extension != imageinfo.ExtensionMismatch {
			continue
		}
		result.Examined++

		newPath := imageinfo.WithExtension(group.Path, st.Encoding)
		target := p.store.DataPath(newPath)
		if _, err := os.Stat(target); err == nil {
			result.Skipped++
			logging.WarnWithContext(p.logger, "rename target already exists", "extension_conflict",
				logging.String(logging.FieldPass, PassExtensions),
				logging.String(logging.FieldPath, group.Path),
				logging.String("target", newPath),
				logging.String(logging.FieldErrorHint, "remove or rename the conflicting file"),
			)
			continue
		}
		if err := p.rewritable(group, newPath); err != nil {
			if p.skipGroup(ctx, PassExtensions, group, newPath, err, &result) {
				continue
			}
			return result, err
		}
		if err := fileutil.MoveFile(st.DiskPath, target); err != nil {
			result.Failed++
			logging.WarnWithContext(p.logger, "image rename failed", "extension_rename_failed",
				logging.String(logging.FieldPass, PassExtensions),
				logging.String(logging.FieldPath, group.Path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check world folder permissions"),
			)
			p.record(ctx, Action{Pass: PassExtensions, Kind: ActionFailed, From: group.Path, To: newPath, Detail: err.Error()})
			continue
		}
		p.record(ctx, Action{Pass: PassExtensions, Kind: ActionRename, From: st.DiskPath, To: target})

		n, err := p.rewriteGroup(group, newPath)
		result.Rewritten += n
		if err != nil {
			return result, err
		}
		result.Repaired++
		p.record(ctx, Action{Pass: PassExtensions, Kind: ActionRewrite, From: group.Path, To: newPath, Refs: n})
		p.logger.Info("extension corrected",
			logging.String(logging.FieldPass, PassExtensions),
			logging.String(logging.FieldPath, group.Path),
			logging.String("target", newPath),
			logging.Int("references", n),
		)
	}
	return result, nil
}
