package model

import (
	"gonum.org/v1/gonum/mat"
)

// Batch represents one mini-batch of training or validation data.
type Batch struct {
	X mat.Matrix // Feature matrix
	Y mat.Matrix // Target matrix
}

// NumSamples returns the number of rows in the batch, 0 for an empty batch.
func (b Batch) NumSamples() int {
	if b.X == nil {
		return 0
	}
	r, _ := b.X.Dims()
	return r
}

// NumFeatures returns the number of feature columns, 0 for an empty batch.
func (b Batch) NumFeatures() int {
	if b.X == nil {
		return 0
	}
	_, c := b.X.Dims()
	return c
}
