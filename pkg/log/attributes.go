// Package log defines standard attribute keys for training-loop operations.
//
// This file contains predefined attribute keys that provide consistency across
// all logging operations in gofit. Using these standard keys enables better
// log analysis, monitoring, and debugging of training runs.
//
// The keys follow a hierarchical naming convention (e.g., "training.epoch",
// "data.samples") to enable structured log analysis and filtering.
package log

// Model and Operation Context
// These attributes identify the model type, run, and operation being performed.
const (
	// ModelNameKey identifies the type of model being trained.
	// Examples: "Linear", "MLP"
	ModelNameKey = "model.name"

	// RunIDKey provides a unique identifier for a training run.
	// The trainer assigns a fresh UUID per run.
	RunIDKey = "run.id"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "evaluate", "checkpoint", "terminate"
	OperationKey = "ml.operation"

	// ComponentKey identifies which component or package is performing the operation.
	// Examples: "train", "preprocessing", "metrics"
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of the epoch lifecycle.
	// Examples: "training", "validation"
	PhaseKey = "ml.phase"

	// HookKey names the lifecycle hook being invoked.
	// One of: "preprocess", "augmentations", "evaluate", "fit",
	// "checkpoint", "terminate"
	HookKey = "ml.hook"
)

// Data Shape and Characteristics
const (
	// SamplesKey indicates the number of samples (rows) processed.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of features (columns) in the data.
	FeaturesKey = "data.features"

	// BatchKey indicates the current batch index within an epoch.
	BatchKey = "data.batch"

	// BatchesKey indicates the total number of batches per epoch.
	BatchesKey = "data.batches"

	// BatchSizeKey indicates the size of processing batches.
	BatchSizeKey = "data.batch_size"
)

// Training Progress and Metrics
const (
	// EpochKey records the current epoch number (1-based in log output).
	EpochKey = "training.epoch"

	// EpochsKey records the configured total number of epochs.
	EpochsKey = "training.epochs"

	// LossKey records the current loss value.
	LossKey = "metrics.loss"

	// AvgLossKey records the running-average loss over the epoch.
	AvgLossKey = "metrics.loss_avg"

	// LearningRateKey records the learning rate in effect.
	LearningRateKey = "hyperparams.learning_rate"

	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// ThroughputKey records processed samples per second.
	ThroughputKey = "perf.samples_per_second"
)

// Infrastructure and Environment
const (
	// DeviceKey identifies the accelerator device in use.
	// Examples: "cpu", "cuda:0"
	DeviceKey = "infra.device"

	// SchedulerKey names the learning-rate scheduler in use.
	SchedulerKey = "training.scheduler"
)

// Standard attribute value constants for common operations.
const (
	OperationFit        = "fit"
	OperationEvaluate   = "evaluate"
	OperationCheckpoint = "checkpoint"
	OperationTerminate  = "terminate"

	PhaseTraining   = "training"
	PhaseValidation = "validation"
)
