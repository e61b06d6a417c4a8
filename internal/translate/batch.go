package translate

import (
	"context"
	"fmt"
	"sync"
)

// batchFunc translates one batch of items against a provider API.
type batchFunc func(ctx context.Context, items []TranslationItem) ([]TranslationResult, error)

// splitBatches cuts items into batches of at most size entries.
func splitBatches(items []TranslationItem, size int) [][]TranslationItem {
	if size <= 0 {
		size = DefaultBatchSize
	}
	var batches [][]TranslationItem
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		batches = append(batches, items[start:end])
	}
	return batches
}

// runBatch invokes translate and enforces that the provider answered
// every item. A short batch means the model dropped entries, and a
// silently missing translation would leave source text in the dub.
func runBatch(ctx context.Context, translate batchFunc, batch []TranslationItem) ([]TranslationResult, error) {
	results, err := translate(ctx, batch)
	if err != nil {
		return nil, err
	}
	if len(results) != len(batch) {
		return nil, fmt.Errorf("got %d translations for %d items", len(results), len(batch))
	}
	return results, nil
}

// translateSequential runs batches one at a time in item order.
func translateSequential(ctx context.Context, translate batchFunc, items []TranslationItem, size int) ([]TranslationResult, error) {
	if len(items) == 0 {
		return nil, nil
	}

	batches := splitBatches(items, size)
	results := make([]TranslationResult, 0, len(items))
	for i, batch := range batches {
		batchResults, err := runBatch(ctx, translate, batch)
		if err != nil {
			return nil, fmt.Errorf("batch %d failed: %w", i, err)
		}
		results = append(results, batchResults...)
	}
	return results, nil
}

// translateConcurrent runs batches through a bounded worker pool and
// reassembles results in batch order. The first failure cancels the
// remaining work.
func translateConcurrent(ctx context.Context, translate batchFunc, items []TranslationItem, size, concurrency int) ([]TranslationResult, error) {
	if len(items) == 0 {
		return nil, nil
	}
	if concurrency <= 0 {
		concurrency = 3
	}

	batches := splitBatches(items, size)
	if len(batches) == 1 {
		results, err := runBatch(ctx, translate, batches[0])
		if err != nil {
			return nil, fmt.Errorf("batch 0 failed: %w", err)
		}
		return results, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type batchResult struct {
		index   int
		results []TranslationResult
		err     error
	}

	workChan := make(chan int)
	resultChan := make(chan batchResult, len(batches))

	workers := concurrency
	if workers > len(batches) {
		workers = len(batches)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Go(func() {
			for {
				select {
				case <-ctx.Done():
					return
				case index, ok := <-workChan:
					if !ok {
						return
					}
					if ctx.Err() != nil {
						return
					}
					results, err := runBatch(ctx, translate, batches[index])
					if err != nil {
						cancel()
						resultChan <- batchResult{index: index, err: err}
						continue
					}
					resultChan <- batchResult{index: index, results: results}
				}
			}
		})
	}

	go func() {
		defer close(workChan)
		for i := range batches {
			select {
			case <-ctx.Done():
				return
			case workChan <- i:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	ordered := make([][]TranslationResult, len(batches))
	var firstErr error
	for res := range resultChan {
		if res.err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("batch %d failed: %w", res.index, res.err)
			}
			continue
		}
		ordered[res.index] = res.results
	}
	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := make([]TranslationResult, 0, len(items))
	for _, batch := range ordered {
		results = append(results, batch...)
	}
	return results, nil
}
