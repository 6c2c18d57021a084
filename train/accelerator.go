package train

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gofit/core/model"
)

// Accelerator abstracts device placement, distributed execution and the
// backward dispatch. The trainer never computes gradients itself; it hands
// the prepared model and criterion to the accelerator, which may scale or
// synchronize gradients before they reach the optimizer.
//
// gofit ships only the CPU pass-through implementation. GPU or distributed
// accelerators are external concerns that plug in through this interface.
type Accelerator interface {
	// Device identifies the placement target for logging ("cpu", "cuda:0").
	Device() string

	// Prepare gives the accelerator a chance to wrap or relocate the model
	// before training starts.
	Prepare(m model.Module) model.Module

	// PrepareLoader gives the accelerator a chance to wrap a data loader
	// (for sharding or prefetching). May return the loader unchanged.
	PrepareLoader(dl DataLoader) DataLoader

	// Backward seeds the model's backward pass from the criterion gradient.
	Backward(m model.Module, c Criterion, pred mat.Matrix, target mat.Matrix) error
}

// CPUAccelerator is the default single-process accelerator: prepare is a
// pass-through and backward simply chains criterion gradient into the
// module's backward pass.
type CPUAccelerator struct{}

// NewCPUAccelerator creates the default accelerator.
func NewCPUAccelerator() *CPUAccelerator {
	return &CPUAccelerator{}
}

// Device implements Accelerator.Device.
func (a *CPUAccelerator) Device() string { return "cpu" }

// Prepare implements Accelerator.Prepare.
func (a *CPUAccelerator) Prepare(m model.Module) model.Module { return m }

// PrepareLoader implements Accelerator.PrepareLoader.
func (a *CPUAccelerator) PrepareLoader(dl DataLoader) DataLoader { return dl }

// Backward implements Accelerator.Backward.
func (a *CPUAccelerator) Backward(m model.Module, c Criterion, pred, target mat.Matrix) error {
	grad, err := c.Grad(pred, target)
	if err != nil {
		return err
	}
	return m.Backward(grad)
}

var _ Accelerator = (*CPUAccelerator)(nil)
