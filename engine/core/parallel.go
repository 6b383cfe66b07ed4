package core

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Batching controls how per-unit work is partitioned across goroutines.
type Batching struct {
	BatchSize int // units per batch
	Workers   int // concurrent batches; <= 0 means GOMAXPROCS
}

// Chunk splits ids into consecutive batches of at most size entries.
func Chunk(ids []EntityID, size int) [][]EntityID {
	if size <= 0 {
		size = len(ids)
	}
	var out [][]EntityID
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		out = append(out, ids[start:end])
	}
	return out
}

// ForEachBatch runs fn once per batch, batches in parallel. Batches must be
// data-disjoint: fn may only write state owned by the units in its batch.
// It returns after every batch has finished.
func ForEachBatch(ids []EntityID, b Batching, fn func(batch []EntityID) error) error {
	batches := Chunk(ids, b.BatchSize)
	if len(batches) == 0 {
		return nil
	}
	if len(batches) == 1 {
		return fn(batches[0])
	}
	workers := b.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	var g errgroup.Group
	g.SetLimit(workers)
	for _, batch := range batches {
		g.Go(func() error {
			return fn(batch)
		})
	}
	return g.Wait()
}
