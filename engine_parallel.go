package pith

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/pcallahan/pith/internal/resolve"
	"github.com/pcallahan/pith/internal/store"
)

// indexFilesParallel indexes files using a three-phase pipeline:
//
//	Phase A (serial):  Hash check, old-fact capture and cleanup, file records.
//	Phase B (parallel): Parse, convert, resolve via worker pool into per-file batches.
//	Phase C (serial):  Commit batches to SQLite, accumulate the blast radius.
//
// SQLite takes all writes on the Phase C goroutine; workers touch only their
// own BatchedStore, so no database locking is involved in Phase B.
func (e *Engine) indexFilesParallel(ctx context.Context, paths []string) error {
	// ---- Phase A: Serial file preparation ----
	var items []workItem
	for _, path := range paths {
		item, skip, err := e.prepareFile(path)
		if err != nil {
			return fmt.Errorf("prepare %s: %w", path, err)
		}
		if skip {
			continue
		}
		items = append(items, item)
	}

	if len(items) == 0 {
		e.storeConfigHash()
		return nil
	}

	// ---- Phase B: Parallel derivation ----
	numWorkers := e.cfg.Workers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	numWorkers = min(numWorkers, len(items))

	workCh := make(chan workItem, len(items))
	for _, item := range items {
		workCh <- item
	}
	close(workCh)

	type result struct {
		item  workItem
		batch *store.BatchedStore
		facts *resolve.FileFacts
		err   error
	}
	resultCh := make(chan result, len(items))

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Each call to deriveFacts creates its own parser; tree-sitter
			// parsers are not goroutine-safe to share.
			for item := range workCh {
				res := result{item: item}
				res.facts, res.err = e.deriveFacts(ctx, item)
				if res.err == nil {
					res.batch = store.NewBatchedStore()
					res.err = emitFacts(res.batch, item.fileID, res.facts)
				}
				resultCh <- res
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	// ---- Phase C: Serial commit ----
	var errs []error
	for res := range resultCh {
		if res.err != nil {
			errs = append(errs, fmt.Errorf("index %s: %w", res.item.path, res.err))
			continue
		}

		if err := e.store.CommitBatch(res.batch); err != nil {
			errs = append(errs, fmt.Errorf("commit %s: %w", res.item.path, err))
			continue
		}

		e.accumulateBlast(res.item, res.facts)
	}

	e.storeConfigHash()
	if len(errs) > 0 {
		return fmt.Errorf("parallel indexing had %d error(s): %w", len(errs), errs[0])
	}
	return nil
}
