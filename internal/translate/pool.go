package translate

import (
	"context"
	"fmt"
	"sync"
)

// one provider request for a batch of captions
type batchFunc func(ctx context.Context, batch []Caption) ([]Caption, error)

func splitBatches(captions []Caption, batchSize int) [][]Caption {
	var batches [][]Caption
	for i := 0; i < len(captions); i += batchSize {
		end := min(i+batchSize, len(captions))
		batches = append(batches, captions[i:end])
	}
	return batches
}

// runBatches calls fn for every batch with at most concurrency calls in
// flight. Results are concatenated in batch order. The first failure cancels
// the calls still running and no new ones start.
func runBatches(
	ctx context.Context,
	batches [][]Caption,
	concurrency int,
	fn batchFunc,
) ([]Caption, error) {
	if concurrency <= 0 {
		concurrency = 1
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	results := make([][]Caption, len(batches))
	slots := make(chan struct{}, concurrency)

	for i, batch := range batches {
		select {
		case slots <- struct{}{}:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-slots }()

			out, err := fn(ctx, batch)
			if err != nil {
				once.Do(func() {
					firstErr = fmt.Errorf("batch %d failed: %w", i, err)
					cancel()
				})
				return
			}
			results[i] = out
		}()
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var all []Caption
	for _, out := range results {
		all = append(all, out...)
	}
	return all, nil
}
