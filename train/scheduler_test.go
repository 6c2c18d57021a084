package train

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstantLR(t *testing.T) {
	s := &ConstantLR{}
	assert.Equal(t, 0.1, s.LRAt(1, 0.1))
	assert.Equal(t, 0.1, s.LRAt(100, 0.1))
}

func TestStepLR(t *testing.T) {
	s := NewStepLR(10, 0.5)

	tests := []struct {
		epoch int
		want  float64
	}{
		{1, 1.0},
		{9, 1.0},
		{10, 0.5},
		{19, 0.5},
		{20, 0.25},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, s.LRAt(tt.epoch, 1.0), 1e-12, "epoch %d", tt.epoch)
	}
}

func TestStepLR_Defaults(t *testing.T) {
	s := NewStepLR(0, 2.0) // 不正な値はデフォルトに置き換わる
	assert.Equal(t, 30, s.StepSize)
	assert.Equal(t, 0.1, s.Gamma)
}

func TestExponentialLR(t *testing.T) {
	s := NewExponentialLR(0.9)

	assert.InDelta(t, 0.9, s.LRAt(1, 1.0), 1e-12)
	assert.InDelta(t, math.Pow(0.9, 10), s.LRAt(10, 1.0), 1e-12)
}

func TestCosineAnnealingLR(t *testing.T) {
	s := NewCosineAnnealingLR(10, 0.0)

	assert.InDelta(t, 1.0, s.LRAt(0, 1.0), 1e-12, "starts at base LR")
	assert.InDelta(t, 0.5, s.LRAt(5, 1.0), 1e-12, "halfway point")
	assert.InDelta(t, 0.0, s.LRAt(10, 1.0), 1e-12, "reaches eta_min at T_max")
	assert.InDelta(t, 0.0, s.LRAt(15, 1.0), 1e-12, "stays at eta_min past T_max")
}

func TestCosineAnnealingLR_EtaMin(t *testing.T) {
	s := NewCosineAnnealingLR(10, 0.01)
	got := s.LRAt(10, 1.0)
	assert.InDelta(t, 0.01, got, 1e-12)
}

func TestReduceLROnPlateau(t *testing.T) {
	s := NewReduceLROnPlateau(0.5, 2, 1e-4, "min")

	// 初回の観測はベースラインになる
	s.Observe(1.0)
	assert.InDelta(t, 0.1, s.LRAt(1, 0.1), 1e-12)

	// 改善なし1回目
	s.Observe(1.0)
	assert.InDelta(t, 0.1, s.LRAt(2, 0.1), 1e-12)

	// 改善なし2回目 → patience到達、次のステップで半減
	s.Observe(1.0)
	assert.InDelta(t, 0.05, s.LRAt(3, 0.1), 1e-12)

	// 改善すればLRは維持される
	s.Observe(0.5)
	assert.InDelta(t, 0.05, s.LRAt(4, 0.1), 1e-12)
}

func TestReduceLROnPlateau_MaxMode(t *testing.T) {
	s := NewReduceLROnPlateau(0.1, 1, 1e-4, "max")

	s.Observe(0.8) // baseline
	s.Observe(0.9) // improvement in max mode
	assert.InDelta(t, 0.1, s.LRAt(2, 0.1), 1e-12)

	s.Observe(0.85) // no improvement → patience=1で即ドロップ
	assert.InDelta(t, 0.01, s.LRAt(3, 0.1), 1e-12)
}

func TestSchedulerNames(t *testing.T) {
	schedulers := []LRScheduler{
		&ConstantLR{},
		NewStepLR(10, 0.5),
		NewExponentialLR(0.9),
		NewCosineAnnealingLR(10, 0),
		NewReduceLROnPlateau(0.5, 2, 1e-4, "min"),
	}
	seen := map[string]bool{}
	for _, s := range schedulers {
		name := s.Name()
		assert.NotEmpty(t, name)
		assert.False(t, seen[name], "duplicate scheduler name %q", name)
		seen[name] = true
	}
}
