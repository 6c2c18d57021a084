package train

import (
	"context"

	"github.com/YuminosukeSato/gofit/core/model"
	"github.com/YuminosukeSato/gofit/pkg/errors"
)

// The lifecycle stages a caller may override. Any other name passed to
// RegisterCallback is rejected.
const (
	HookPreprocess    = "preprocess"
	HookAugmentations = "augmentations"
	HookEvaluate      = "evaluate"
	HookFit           = "fit"
	HookCheckpoint    = "checkpoint"
	HookTerminate     = "terminate"
)

// callbacksWhitelist is the closed set of overridable stages.
var callbacksWhitelist = []string{
	HookPreprocess, HookAugmentations, HookEvaluate, HookFit, HookCheckpoint, HookTerminate,
}

// BatchFunc transforms a batch in place in the training pass. Used for the
// preprocess and augmentations stages; the default is identity.
type BatchFunc func(batch model.Batch) (model.Batch, error)

// EvaluateFunc runs the validation pass for one epoch and returns named
// stats. The default implementation computes the running-average criterion
// loss over the validation loader under the key "loss".
type EvaluateFunc func(ctx context.Context, t *Trainer, epoch int) (map[string]float64, error)

// FitEpochFunc runs the training pass for one epoch. The default
// implementation iterates the train loader through
// preprocess → augmentations → forward → loss → backward → optimizer step.
type FitEpochFunc func(ctx context.Context, t *Trainer, epoch int) error

// CheckpointFunc observes the model after evaluation. The default is a
// no-op; callers plug in model saving, history recording or progress
// reporting here.
type CheckpointFunc func(t *Trainer, epoch int, stats map[string]float64) error

// TerminateFunc decides whether training continues. The default never
// terminates.
type TerminateFunc func(t *Trainer, epoch int, stats map[string]float64) State

// hooks binds one implementation to every lifecycle stage. Zero fields are
// filled with the defaults when the trainer is constructed.
type hooks struct {
	preprocess    BatchFunc
	augmentations BatchFunc
	evaluate      EvaluateFunc
	fit           FitEpochFunc
	checkpoint    CheckpointFunc
	terminate     TerminateFunc
}

func defaultHooks() hooks {
	identity := func(b model.Batch) (model.Batch, error) { return b, nil }
	return hooks{
		preprocess:    identity,
		augmentations: identity,
		evaluate: func(ctx context.Context, t *Trainer, epoch int) (map[string]float64, error) {
			return t.evaluateEpoch(ctx, epoch)
		},
		fit: func(ctx context.Context, t *Trainer, epoch int) error {
			return t.fitEpoch(ctx, epoch)
		},
		checkpoint: func(t *Trainer, epoch int, stats map[string]float64) error { return nil },
		terminate: func(t *Trainer, epoch int, stats map[string]float64) State {
			return StateContinue
		},
	}
}

// bind installs fn as the implementation of the named stage. The name must
// be in the whitelist and fn must match the stage's function type.
func (h *hooks) bind(name string, fn any) error {
	switch name {
	case HookPreprocess, HookAugmentations:
		f, ok := fn.(func(model.Batch) (model.Batch, error))
		if !ok {
			if typed, okTyped := fn.(BatchFunc); okTyped {
				f, ok = typed, true
			}
		}
		if !ok {
			return errors.NewValidationError(name, "callback must be a BatchFunc", fn)
		}
		if name == HookPreprocess {
			h.preprocess = f
		} else {
			h.augmentations = f
		}
	case HookEvaluate:
		f, ok := fn.(func(context.Context, *Trainer, int) (map[string]float64, error))
		if !ok {
			if typed, okTyped := fn.(EvaluateFunc); okTyped {
				f, ok = typed, true
			}
		}
		if !ok {
			return errors.NewValidationError(name, "callback must be an EvaluateFunc", fn)
		}
		h.evaluate = f
	case HookFit:
		f, ok := fn.(func(context.Context, *Trainer, int) error)
		if !ok {
			if typed, okTyped := fn.(FitEpochFunc); okTyped {
				f, ok = typed, true
			}
		}
		if !ok {
			return errors.NewValidationError(name, "callback must be a FitEpochFunc", fn)
		}
		h.fit = f
	case HookCheckpoint:
		f, ok := fn.(func(*Trainer, int, map[string]float64) error)
		if !ok {
			if typed, okTyped := fn.(CheckpointFunc); okTyped {
				f, ok = typed, true
			}
		}
		if !ok {
			return errors.NewValidationError(name, "callback must be a CheckpointFunc", fn)
		}
		h.checkpoint = f
	case HookTerminate:
		f, ok := fn.(func(*Trainer, int, map[string]float64) State)
		if !ok {
			if typed, okTyped := fn.(TerminateFunc); okTyped {
				f, ok = typed, true
			}
		}
		if !ok {
			return errors.NewValidationError(name, "callback must be a TerminateFunc", fn)
		}
		h.terminate = f
	default:
		return errors.NewValidationError(name, "not a supported callback", callbacksWhitelist)
	}
	return nil
}
