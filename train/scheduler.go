package train

import (
	"math"
)

// LRScheduler maps an epoch index to a learning rate. The trainer calls
// LRAt once at the end of every epoch (after the terminate check) and
// pushes the result into the optimizer via SetLR.
type LRScheduler interface {
	// LRAt returns the learning rate for the given epoch. epoch counts
	// completed epochs, so the first call receives 1.
	LRAt(epoch int, baseLR float64) float64

	// Name returns the scheduler name for logging.
	Name() string
}

// metricObserver is implemented by schedulers that react to validation
// metrics (ReduceLROnPlateau). The trainer feeds the validation loss to
// it before the scheduler step.
type metricObserver interface {
	Observe(metric float64)
}

// ConstantLR keeps the learning rate fixed (default behavior).
type ConstantLR struct{}

func (s *ConstantLR) LRAt(epoch int, baseLR float64) float64 { return baseLR }

func (s *ConstantLR) Name() string { return "ConstantLR" }

// StepLR reduces the learning rate by a factor every StepSize epochs.
type StepLR struct {
	StepSize int     // Epochs between LR reductions
	Gamma    float64 // Multiplicative factor of LR decay
}

// NewStepLR creates a step learning rate scheduler.
func NewStepLR(stepSize int, gamma float64) *StepLR {
	if stepSize <= 0 {
		stepSize = 30
	}
	if gamma <= 0 || gamma >= 1 {
		gamma = 0.1
	}
	return &StepLR{StepSize: stepSize, Gamma: gamma}
}

func (s *StepLR) LRAt(epoch int, baseLR float64) float64 {
	times := epoch / s.StepSize
	return baseLR * math.Pow(s.Gamma, float64(times))
}

func (s *StepLR) Name() string { return "StepLR" }

// ExponentialLR decays the learning rate exponentially per epoch.
type ExponentialLR struct {
	Gamma float64 // Multiplicative factor of LR decay per epoch
}

// NewExponentialLR creates an exponential learning rate scheduler.
func NewExponentialLR(gamma float64) *ExponentialLR {
	if gamma <= 0 || gamma >= 1 {
		gamma = 0.95
	}
	return &ExponentialLR{Gamma: gamma}
}

func (s *ExponentialLR) LRAt(epoch int, baseLR float64) float64 {
	return baseLR * math.Pow(s.Gamma, float64(epoch))
}

func (s *ExponentialLR) Name() string { return "ExponentialLR" }

// CosineAnnealingLR anneals the learning rate along a half cosine from
// baseLR down to EtaMin over TMax epochs.
type CosineAnnealingLR struct {
	TMax   int     // Number of epochs over which to anneal
	EtaMin float64 // Minimum learning rate
}

// NewCosineAnnealingLR creates a cosine annealing scheduler.
func NewCosineAnnealingLR(tMax int, etaMin float64) *CosineAnnealingLR {
	if tMax <= 0 {
		tMax = 100
	}
	if etaMin < 0 {
		etaMin = 0
	}
	return &CosineAnnealingLR{TMax: tMax, EtaMin: etaMin}
}

func (s *CosineAnnealingLR) LRAt(epoch int, baseLR float64) float64 {
	if epoch >= s.TMax {
		return s.EtaMin
	}
	return s.EtaMin + (baseLR-s.EtaMin)*(1+math.Cos(math.Pi*float64(epoch)/float64(s.TMax)))/2
}

func (s *CosineAnnealingLR) Name() string { return "CosineAnnealingLR" }

// ReduceLROnPlateau reduces the learning rate when the observed validation
// metric has stopped improving. Unlike the other schedulers it is stateful:
// the trainer feeds it the validation loss via Observe before each
// scheduler step.
type ReduceLROnPlateau struct {
	Factor    float64 // Factor by which the learning rate will be reduced
	Patience  int     // Epochs with no improvement before LR is reduced
	Threshold float64 // Threshold for measuring the new optimum
	Mode      string  // One of "min" or "max"

	bestMetric  float64
	badEpochs   int
	currentLR   float64
	initialized bool
	pendingDrop bool
}

// NewReduceLROnPlateau creates a plateau-based scheduler.
func NewReduceLROnPlateau(factor float64, patience int, threshold float64, mode string) *ReduceLROnPlateau {
	if factor <= 0 || factor >= 1 {
		factor = 0.1
	}
	if patience <= 0 {
		patience = 10
	}
	if threshold < 0 {
		threshold = 1e-4
	}
	if mode != "min" && mode != "max" {
		mode = "min"
	}
	return &ReduceLROnPlateau{
		Factor:    factor,
		Patience:  patience,
		Threshold: threshold,
		Mode:      mode,
	}
}

// Observe records the epoch's validation metric and schedules an LR drop
// after Patience epochs without improvement.
func (s *ReduceLROnPlateau) Observe(metric float64) {
	if !s.initialized {
		s.bestMetric = metric
		s.initialized = true
		return
	}

	improved := false
	if s.Mode == "min" {
		improved = metric < s.bestMetric-s.Threshold
	} else {
		improved = metric > s.bestMetric+s.Threshold
	}

	if improved {
		s.bestMetric = metric
		s.badEpochs = 0
	} else {
		s.badEpochs++
		if s.badEpochs >= s.Patience {
			s.pendingDrop = true
			s.badEpochs = 0
		}
	}
}

func (s *ReduceLROnPlateau) LRAt(epoch int, baseLR float64) float64 {
	if s.currentLR == 0 {
		s.currentLR = baseLR
	}
	if s.pendingDrop {
		s.currentLR *= s.Factor
		s.pendingDrop = false
	}
	return s.currentLR
}

func (s *ReduceLROnPlateau) Name() string { return "ReduceLROnPlateau" }

var (
	_ LRScheduler    = (*ConstantLR)(nil)
	_ LRScheduler    = (*StepLR)(nil)
	_ LRScheduler    = (*ExponentialLR)(nil)
	_ LRScheduler    = (*CosineAnnealingLR)(nil)
	_ LRScheduler    = (*ReduceLROnPlateau)(nil)
	_ metricObserver = (*ReduceLROnPlateau)(nil)
)
