package repair

import (
	"context"

	"worldmanager/internal/logging"
)

// ConsolidateDuplicates points every reference of a content-identical image
// at the first path seen for that content and queues the other files for
// trash. Running it twice changes nothing the second time.
func (p *Pipeline) ConsolidateDuplicates(ctx context.Context) (PassResult, error) {
	var result PassResult
	for _, hg := range p.store.Duplicates() {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		canonical := hg.Paths[0].Path
		for _, group := range hg.Paths[1:] {
			result.Examined++
			oldDisk := group.Representative().DiskPath()
			n, err := p.rewriteGroup(group, canonical)
			result.Rewritten += n
			if err != nil {
				if p.skipGroup(ctx, PassDuplicates, group, canonical, err, &result) {
					continue
				}
				return result, err
			}
			result.Repaired++
			p.record(ctx, Action{Pass: PassDuplicates, Kind: ActionRewrite, From: group.Path, To: canonical, Refs: n})
			if p.queue(ctx, PassDuplicates, oldDisk) {
				result.Queued++
			}
			p.logger.Debug("duplicate consolidated",
				logging.String(logging.FieldPass, PassDuplicates),
				logging.String(logging.FieldPath, group.Path),
				logging.String("canonical", canonical),
				logging.Int("references", n),
			)
		}
	}
	return result, nil
}
