// Package train implements the epoch-level training loop: a Trainer owns a
// model, data loaders, a criterion, an optimizer and a learning-rate
// scheduler, and drives a fixed sequence of lifecycle stages
// (preprocess → augmentations → forward → loss → backward → optimizer step
// per batch; fit → evaluate → checkpoint → terminate → scheduler step per
// epoch). Each stage has a default implementation that callers replace
// through the whitelisted callback mechanism without touching the loop.
package train

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/YuminosukeSato/gofit/core/model"
	"github.com/YuminosukeSato/gofit/metrics"
	"github.com/YuminosukeSato/gofit/pkg/errors"
	"github.com/YuminosukeSato/gofit/pkg/log"
)

// Trainer dispatches the fixed epoch sequence over a model. Construct one
// with NewTrainer; the zero value is not usable.
//
// The Trainer itself is single-goroutine: Fit must not be called
// concurrently with itself or with RegisterCallback.
type Trainer struct {
	model       model.Module
	trainLoader DataLoader
	validLoader DataLoader
	criterion   Criterion
	optimizer   Optimizer
	scheduler   LRScheduler
	accelerator Accelerator
	config      Config

	hooks  hooks
	logger log.Logger
	runID  string

	baseLR           float64
	processedSamples int64
	lastStats        map[string]float64
}

// Option configures a Trainer at construction time.
type Option func(*Trainer) error

// WithAccelerator replaces the default CPU accelerator.
func WithAccelerator(a Accelerator) Option {
	return func(t *Trainer) error {
		if a == nil {
			return errors.NewValueError("WithAccelerator", "accelerator must not be nil")
		}
		t.accelerator = a
		return nil
	}
}

// WithLogger replaces the default package logger.
func WithLogger(logger log.Logger) Option {
	return func(t *Trainer) error {
		if logger == nil {
			return errors.NewValueError("WithLogger", "logger must not be nil")
		}
		t.logger = logger
		return nil
	}
}

// WithCallback overrides the named lifecycle stage at construction time.
// Equivalent to calling RegisterCallback afterwards.
func WithCallback(name string, fn any) Option {
	return func(t *Trainer) error {
		return t.hooks.bind(name, fn)
	}
}

// NewTrainer wires a model, loaders, criterion, optimizer and scheduler
// into a Trainer. validLoader and scheduler may be nil: a nil validLoader
// disables the default evaluation pass, a nil scheduler means a constant
// learning rate.
func NewTrainer(
	m model.Module,
	trainLoader DataLoader,
	validLoader DataLoader,
	criterion Criterion,
	optimizer Optimizer,
	scheduler LRScheduler,
	config Config,
	opts ...Option,
) (*Trainer, error) {
	if m == nil {
		return nil, errors.NewValueError("NewTrainer", "model must not be nil")
	}
	if trainLoader == nil {
		return nil, errors.NewValueError("NewTrainer", "train loader must not be nil")
	}
	if criterion == nil {
		return nil, errors.NewValueError("NewTrainer", "criterion must not be nil")
	}
	if optimizer == nil {
		return nil, errors.NewValueError("NewTrainer", "optimizer must not be nil")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if scheduler == nil {
		scheduler = &ConstantLR{}
	}

	t := &Trainer{
		model:       m,
		trainLoader: trainLoader,
		validLoader: validLoader,
		criterion:   criterion,
		optimizer:   optimizer,
		scheduler:   scheduler,
		accelerator: NewCPUAccelerator(),
		config:      config,
		hooks:       defaultHooks(),
		runID:       uuid.NewString(),
	}
	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, err
		}
	}
	if t.logger == nil {
		t.logger = log.GetLoggerWithName("train")
	}
	t.logger = t.logger.With(log.RunIDKey, t.runID, log.DeviceKey, t.accelerator.Device())

	// Hand the model and loaders to the accelerator before anything else
	// touches them (mirrors preparing for device placement).
	t.model = t.accelerator.Prepare(t.model)
	t.trainLoader = t.accelerator.PrepareLoader(t.trainLoader)
	if t.validLoader != nil {
		t.validLoader = t.accelerator.PrepareLoader(t.validLoader)
	}

	t.baseLR = t.optimizer.LR()
	return t, nil
}

// RegisterCallback overrides one of the whitelisted lifecycle stages:
// "preprocess", "augmentations", "evaluate", "fit", "checkpoint" or
// "terminate". Unknown names and mismatched function signatures return a
// ValidationError. Must not be called while Fit is running.
func (t *Trainer) RegisterCallback(name string, fn any) error {
	return t.hooks.bind(name, fn)
}

// Model returns the (accelerator-prepared) model under training.
func (t *Trainer) Model() model.Module { return t.model }

// Optimizer returns the optimizer.
func (t *Trainer) Optimizer() Optimizer { return t.optimizer }

// Criterion returns the loss criterion.
func (t *Trainer) Criterion() Criterion { return t.criterion }

// Config returns the trainer configuration.
func (t *Trainer) Config() Config { return t.config }

// ValidLoader returns the validation loader, which may be nil.
func (t *Trainer) ValidLoader() DataLoader { return t.validLoader }

// Logger returns the trainer's contextual logger.
func (t *Trainer) Logger() log.Logger { return t.logger }

// RunID returns the unique identifier of this training run.
func (t *Trainer) RunID() string { return t.runID }

// ProcessedSamples returns the total number of training samples consumed
// so far across all epochs.
func (t *Trainer) ProcessedSamples() int64 { return t.processedSamples }

// LastStats returns the stats produced by the most recent evaluate stage.
func (t *Trainer) LastStats() map[string]float64 { return t.lastStats }

// Fit executes the main loop.
// NOTE: Do not change and keep this structure clear for readability.
func (t *Trainer) Fit(ctx context.Context) error {
	t.logger.Info("Training started",
		log.OperationKey, log.OperationFit,
		log.EpochsKey, t.config.Epochs,
		log.SchedulerKey, t.scheduler.Name(),
		log.LearningRateKey, t.optimizer.LR(),
	)
	start := time.Now()

	for epoch := 0; epoch < t.config.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, "training canceled")
		}

		// training pass
		// NOTE: override the "fit" callback to customize the whole pass
		if err := t.runFit(ctx, epoch); err != nil {
			return err
		}

		// validation pass
		// NOTE: override the "evaluate" callback to customize evaluation
		stats, err := t.runEvaluate(ctx, epoch)
		if err != nil {
			return err
		}
		t.lastStats = stats

		if err := t.runCheckpoint(epoch, stats); err != nil {
			return err
		}

		state := t.runTerminate(epoch, stats)
		if state == StateTerminate {
			t.logger.Info("Training terminated by hook",
				log.OperationKey, log.OperationTerminate,
				log.EpochKey, epoch+1,
			)
			break
		}

		// END OF THE EPOCH: scheduler step
		t.schedulerStep(epoch, stats)
	}

	t.logger.Info("Training finished",
		log.OperationKey, log.OperationFit,
		log.DurationMsKey, time.Since(start).Milliseconds(),
		log.SamplesKey, t.processedSamples,
	)
	return nil
}

func (t *Trainer) runFit(ctx context.Context, epoch int) error {
	return errors.SafeExecute("hook fit", func() error {
		return t.hooks.fit(ctx, t, epoch)
	})
}

func (t *Trainer) runEvaluate(ctx context.Context, epoch int) (map[string]float64, error) {
	if (epoch+1)%t.config.ValidateEvery != 0 {
		return map[string]float64{}, nil
	}
	var stats map[string]float64
	err := errors.SafeExecute("hook evaluate", func() error {
		var hookErr error
		stats, hookErr = t.hooks.evaluate(ctx, t, epoch)
		return hookErr
	})
	if err != nil {
		return nil, err
	}
	if stats == nil {
		stats = map[string]float64{}
	}
	return stats, nil
}

func (t *Trainer) runCheckpoint(epoch int, stats map[string]float64) error {
	return errors.SafeExecute("hook checkpoint", func() error {
		return t.hooks.checkpoint(t, epoch, stats)
	})
}

func (t *Trainer) runTerminate(epoch int, stats map[string]float64) State {
	state := StateContinue
	err := errors.SafeExecute("hook terminate", func() error {
		state = t.hooks.terminate(t, epoch, stats)
		return nil
	})
	if err != nil {
		// A panicking terminate hook must not keep training alive.
		t.logger.Error("Terminate hook failed, stopping", log.ErrAttrKey, err)
		return StateTerminate
	}
	return state
}

func (t *Trainer) schedulerStep(epoch int, stats map[string]float64) {
	if obs, ok := t.scheduler.(metricObserver); ok {
		if loss, found := stats["loss"]; found {
			obs.Observe(loss)
		}
	}
	newLR := t.scheduler.LRAt(epoch+1, t.baseLR)
	if newLR != t.optimizer.LR() {
		t.logger.Debug("Learning rate updated",
			log.EpochKey, epoch+1,
			log.SchedulerKey, t.scheduler.Name(),
			log.LearningRateKey, newLR,
		)
	}
	t.optimizer.SetLR(newLR)
}

// fitEpoch is the default "fit" stage: one pass over the training loader.
func (t *Trainer) fitEpoch(ctx context.Context, epoch int) error {
	t.model.TrainMode()
	losses := metrics.NewAverageMeter()

	t.trainLoader.Reset()
	numBatches := t.trainLoader.Len()
	if numBatches == 0 {
		errors.Warn(errors.NewEmptyDataWarning(log.PhaseTraining, epoch))
		return nil
	}

	for batchID := 0; ; batchID++ {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, "training canceled")
		}

		batch, err := t.trainLoader.Next()
		if errors.Is(err, errors.ErrNoMoreBatches) {
			break
		}
		if err != nil {
			return errors.Wrapf(err, "train loader failed at epoch %d batch %d", epoch, batchID)
		}

		t.optimizer.ZeroGrad()

		// perform the preprocess and augmentations in batch
		batch, err = t.hooks.preprocess(batch)
		if err != nil {
			return errors.Wrapf(err, "preprocess failed at epoch %d batch %d", epoch, batchID)
		}
		batch, err = t.hooks.augmentations(batch)
		if err != nil {
			return errors.Wrapf(err, "augmentations failed at epoch %d batch %d", epoch, batchID)
		}

		// make the actual inference
		pred, err := t.model.Forward(batch.X)
		if err != nil {
			return errors.Wrapf(err, "forward failed at epoch %d batch %d", epoch, batchID)
		}

		lossVal, err := t.criterion.Loss(pred, batch.Y)
		if err != nil {
			return errors.Wrapf(err, "loss failed at epoch %d batch %d", epoch, batchID)
		}
		if err := errors.CheckScalar("loss", lossVal, epoch, batchID); err != nil {
			return err
		}

		if err := t.accelerator.Backward(t.model, t.criterion, pred, batch.Y); err != nil {
			return errors.Wrapf(err, "backward failed at epoch %d batch %d", epoch, batchID)
		}

		if err := t.optimizer.Step(); err != nil {
			return errors.Wrapf(err, "optimizer step failed at epoch %d batch %d", epoch, batchID)
		}

		n := batch.NumSamples()
		losses.Update(lossVal, n)
		t.processedSamples += int64(n)

		if batchID%t.config.LogEvery == 0 {
			t.logger.Info("Train",
				log.PhaseKey, log.PhaseTraining,
				log.EpochKey, epoch+1,
				log.EpochsKey, t.config.Epochs,
				log.BatchKey, batchID+1,
				log.BatchesKey, numBatches,
				log.LossKey, losses.Val(),
				log.AvgLossKey, losses.Avg(),
				log.LearningRateKey, t.optimizer.LR(),
			)
		}
	}
	return nil
}

// evaluateEpoch is the default "evaluate" stage: running-average criterion
// loss over the validation loader. Preprocess applies, augmentations do not.
func (t *Trainer) evaluateEpoch(ctx context.Context, epoch int) (map[string]float64, error) {
	if t.validLoader == nil {
		return map[string]float64{}, nil
	}

	t.model.EvalMode()
	losses := metrics.NewAverageMeter()

	t.validLoader.Reset()
	if t.validLoader.Len() == 0 {
		errors.Warn(errors.NewEmptyDataWarning(log.PhaseValidation, epoch))
		return map[string]float64{}, nil
	}

	for batchID := 0; ; batchID++ {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "evaluation canceled")
		}

		batch, err := t.validLoader.Next()
		if errors.Is(err, errors.ErrNoMoreBatches) {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "valid loader failed at epoch %d batch %d", epoch, batchID)
		}

		batch, err = t.hooks.preprocess(batch)
		if err != nil {
			return nil, errors.Wrapf(err, "preprocess failed at epoch %d batch %d", epoch, batchID)
		}

		pred, err := t.model.Forward(batch.X)
		if err != nil {
			return nil, errors.Wrapf(err, "forward failed at epoch %d batch %d", epoch, batchID)
		}

		lossVal, err := t.criterion.Loss(pred, batch.Y)
		if err != nil {
			return nil, errors.Wrapf(err, "loss failed at epoch %d batch %d", epoch, batchID)
		}

		losses.Update(lossVal, batch.NumSamples())
	}

	stats := map[string]float64{"loss": losses.Avg()}
	t.logger.Info("Validation",
		log.PhaseKey, log.PhaseValidation,
		log.OperationKey, log.OperationEvaluate,
		log.EpochKey, epoch+1,
		log.AvgLossKey, losses.Avg(),
		log.SamplesKey, losses.Count(),
	)
	return stats, nil
}
