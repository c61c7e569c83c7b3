package repair

import (
	"context"
	"os"
	"strings"

	"worldmanager/internal/logging"
	"worldmanager/internal/world"
)

// FixBroken heals references that resolve nowhere, or whose file is queued
// for trash, by swapping a leading legacy segment ("modules") for the world
// segment ("worlds") when the resulting file exists under the data folder.
func (p *Pipeline) FixBroken(ctx context.Context) (PassResult, error) {
	var result PassResult
	for _, ref := range p.store.BrokenReferences() {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.Examined++
		oldPath := ref.Path()
		candidate, ok := p.healedPath(oldPath)
		if !ok {
			result.Skipped++
			p.logger.Debug("broken reference left as is",
				logging.String(logging.FieldPass, PassBroken),
				logging.String(logging.FieldPath, oldPath),
			)
			continue
		}
		if err := ref.Rewrite(candidate); err != nil {
			single := world.PathGroup{Path: oldPath, Refs: []*world.Reference{ref}}
			if p.skipGroup(ctx, PassBroken, single, candidate, err, &result) {
				continue
			}
			return result, err
		}
		result.Repaired++
		result.Rewritten++
		p.record(ctx, Action{Pass: PassBroken, Kind: ActionRewrite, From: oldPath, To: candidate, Refs: 1})
	}
	return result, nil
}

func (p *Pipeline) healedPath(refPath string) (string, bool) {
	first, rest, found := strings.Cut(refPath, "/")
	if !found || first != p.legacySegment {
		return "", false
	}
	candidate := p.worldSegment + "/" + rest
	info, err := os.Stat(p.store.DataPath(candidate))
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	if p.store.IsQueued(p.store.DataPath(candidate)) {
		return "", false
	}
	return candidate, true
}
