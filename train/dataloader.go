package train

import (
	"math/rand"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gofit/core/model"
	"github.com/YuminosukeSato/gofit/core/parallel"
	"github.com/YuminosukeSato/gofit/pkg/errors"
)

// DataLoader is the minimal batch-stream contract the Trainer consumes.
// gofit does not implement a data-loading subsystem; callers bring their
// own implementation, or wrap in-memory matrices with NewMatrixLoader.
//
// The trainer drives a loader strictly sequentially: Reset once per epoch,
// then Next until ErrNoMoreBatches. Implementations only need to be safe
// for that access pattern.
type DataLoader interface {
	// Len returns the number of batches per epoch.
	Len() int

	// Reset rewinds the loader to the start of a new epoch.
	Reset()

	// Next returns the next batch, or pkg/errors.ErrNoMoreBatches once the
	// epoch is exhausted.
	Next() (model.Batch, error)
}

// batch assembly is parallelized above this many rows
const copyParallelThreshold = 4096

// MatrixLoader is an in-memory DataLoader over a feature matrix and a
// target matrix, with optional seeded shuffling per epoch.
type MatrixLoader struct {
	x, y      *mat.Dense
	batchSize int
	shuffle   bool
	rng       *rand.Rand
	indices   []int
	pos       int
	mu        sync.Mutex
}

// NewMatrixLoader wraps X and y into a DataLoader yielding batches of
// batchSize rows. When shuffle is true, row order is reshuffled on every
// Reset using the given seed.
func NewMatrixLoader(X, y mat.Matrix, batchSize int, shuffle bool, seed int64) (*MatrixLoader, error) {
	xr, xc := X.Dims()
	yr, _ := y.Dims()
	if xr == 0 || xc == 0 {
		return nil, errors.NewModelError("NewMatrixLoader", "empty data", errors.ErrEmptyData)
	}
	if xr != yr {
		return nil, errors.NewDimensionError("NewMatrixLoader", xr, yr, 0)
	}
	if batchSize < 1 {
		return nil, errors.NewValidationError("batch_size", "must be at least 1", batchSize)
	}

	indices := make([]int, xr)
	for i := range indices {
		indices[i] = i
	}

	l := &MatrixLoader{
		x:         mat.DenseCopyOf(X),
		y:         mat.DenseCopyOf(y),
		batchSize: batchSize,
		shuffle:   shuffle,
		rng:       rand.New(rand.NewSource(seed)),
		indices:   indices,
	}
	return l, nil
}

// Len returns the number of batches per epoch (ceiling division).
func (l *MatrixLoader) Len() int {
	rows, _ := l.x.Dims()
	return (rows + l.batchSize - 1) / l.batchSize
}

// NumSamples returns the total number of rows.
func (l *MatrixLoader) NumSamples() int {
	rows, _ := l.x.Dims()
	return rows
}

// Reset rewinds the loader and reshuffles when shuffling is enabled.
func (l *MatrixLoader) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.pos = 0
	if l.shuffle {
		l.rng.Shuffle(len(l.indices), func(i, j int) {
			l.indices[i], l.indices[j] = l.indices[j], l.indices[i]
		})
	}
}

// Next assembles and returns the next batch.
func (l *MatrixLoader) Next() (model.Batch, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rows, xc := l.x.Dims()
	_, yc := l.y.Dims()

	if l.pos >= rows {
		return model.Batch{}, errors.ErrNoMoreBatches
	}

	end := l.pos + l.batchSize
	if end > rows {
		end = rows
	}
	n := end - l.pos

	bx := mat.NewDense(n, xc, nil)
	by := mat.NewDense(n, yc, nil)
	batchIdx := l.indices[l.pos:end]
	parallel.ParallelizeWithThreshold(n, copyParallelThreshold, func(start, stop int) {
		for i := start; i < stop; i++ {
			src := batchIdx[i]
			for j := 0; j < xc; j++ {
				bx.Set(i, j, l.x.At(src, j))
			}
			for j := 0; j < yc; j++ {
				by.Set(i, j, l.y.At(src, j))
			}
		}
	})

	l.pos = end
	return model.Batch{X: bx, Y: by}, nil
}

var _ DataLoader = (*MatrixLoader)(nil)
