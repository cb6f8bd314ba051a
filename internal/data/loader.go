package data

import (
	"fmt"
	"iter"
	"math/rand"

	"github.com/kiln-ml/kiln/internal/tensor"
)

// Batch is a collated group of samples, batch dimension first.
type Batch struct {
	Data   *tensor.Tensor
	Target *tensor.Tensor
}

// Collate merges per-sample tensors into batch tensors.
type Collate func(inputs, targets []*tensor.Tensor) Batch

// DefaultCollate stacks samples along a new leading batch axis.
func DefaultCollate(inputs, targets []*tensor.Tensor) Batch {
	return Batch{
		Data:   tensor.Stack(inputs),
		Target: tensor.Stack(targets),
	}
}

// LoaderConfig configures batch assembly.
type LoaderConfig struct {
	BatchSize int
	Shuffle   bool
	// Workers sets how many goroutines prefetch and collate batches.
	// Values <= 1 collate inline on the consuming goroutine.
	Workers int
	// Collate overrides DefaultCollate.
	Collate Collate
	// Seed fixes the shuffling order across passes. Zero seeds randomly.
	Seed int64
}

// Loader produces batches from a dataset. Every call to Batches starts a
// fresh pass, so a loader can be re-iterated any number of times.
type Loader struct {
	dataset Dataset
	cfg     LoaderConfig
	rng     *rand.Rand
}

// NewLoader creates a loader over dataset.
func NewLoader(dataset Dataset, cfg LoaderConfig) (*Loader, error) {
	if cfg.BatchSize < 1 {
		return nil, fmt.Errorf("loader: batch size must be >= 1, got %d", cfg.BatchSize)
	}
	if cfg.Collate == nil {
		cfg.Collate = DefaultCollate
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	return &Loader{
		dataset: dataset,
		cfg:     cfg,
		rng:     rand.New(rand.NewSource(seed)),
	}, nil
}

// Len returns the number of batches in one pass.
func (l *Loader) Len() int {
	return (l.dataset.Len() + l.cfg.BatchSize - 1) / l.cfg.BatchSize
}

// Batches returns one full pass over the dataset. An empty dataset yields
// nothing. Abandoning the sequence mid-pass is the cooperative early exit;
// the next Batches call restarts from the beginning.
func (l *Loader) Batches() iter.Seq[Batch] {
	return func(yield func(Batch) bool) {
		n := l.dataset.Len()
		if n == 0 {
			return
		}

		indices := make([]int, n)
		for i := range indices {
			indices[i] = i
		}
		if l.cfg.Shuffle {
			l.rng.Shuffle(n, func(i, j int) {
				indices[i], indices[j] = indices[j], indices[i]
			})
		}

		numBatches := l.Len()
		if l.cfg.Workers <= 1 {
			for b := 0; b < numBatches; b++ {
				if !yield(l.collate(indices, b)) {
					return
				}
			}
			return
		}

		// Prefetch pipeline: workers collate batches submitted on jobs and
		// park them in single-slot futures; delivery stays in order. The
		// submission window bounds how many batches are in flight.
		jobs := make(chan int, numBatches)
		futures := make([]chan Batch, numBatches)
		for b := range futures {
			futures[b] = make(chan Batch, 1)
		}
		for w := 0; w < l.cfg.Workers; w++ {
			go func() {
				for b := range jobs {
					futures[b] <- l.collate(indices, b)
				}
			}()
		}
		defer close(jobs)

		window := l.cfg.Workers * 2
		submitted := 0
		for b := 0; b < numBatches; b++ {
			for submitted < numBatches && submitted < b+window {
				jobs <- submitted
				submitted++
			}
			if !yield(<-futures[b]) {
				return
			}
		}
	}
}

func (l *Loader) collate(indices []int, b int) Batch {
	lo := b * l.cfg.BatchSize
	hi := min(lo+l.cfg.BatchSize, len(indices))

	inputs := make([]*tensor.Tensor, 0, hi-lo)
	targets := make([]*tensor.Tensor, 0, hi-lo)
	for _, idx := range indices[lo:hi] {
		x, y := l.dataset.At(idx)
		inputs = append(inputs, x)
		targets = append(targets, y)
	}
	return l.cfg.Collate(inputs, targets)
}
