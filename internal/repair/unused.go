package repair

import "context"

// CollectUnused queues every image under the world folder that no
// reference points to.
func (p *Pipeline) CollectUnused(ctx context.Context) (PassResult, error) {
	var result PassResult
	unused, err := p.store.FindUnusedAssets()
	if err != nil {
		return result, err
	}
	for _, path := range unused {
		result.Examined++
		if p.queue(ctx, PassUnused, path) {
			result.Queued++
		}
	}
	return result, nil
}
