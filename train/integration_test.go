package train_test

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gofit/metrics"
	"github.com/YuminosukeSato/gofit/models"
	"github.com/YuminosukeSato/gofit/pkg/log"
	"github.com/YuminosukeSato/gofit/train"
)

func makeRegressionData(t *testing.T, n int, seed int64) (*mat.Dense, *mat.Dense) {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	X := mat.NewDense(n, 2, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		x1 := rng.NormFloat64()
		x2 := rng.NormFloat64()
		X.Set(i, 0, x1)
		X.Set(i, 1, x2)
		// y = 2*x1 - x2 + 0.5
		y.Set(i, 0, 2*x1-x2+0.5)
	}
	return X, y
}

func TestTraining_LinearRegressionConverges(t *testing.T) {
	XTrain, yTrain := makeRegressionData(t, 200, 1)
	XValid, yValid := makeRegressionData(t, 50, 2)

	trainLoader, err := train.NewMatrixLoader(XTrain, yTrain, 16, true, 1)
	require.NoError(t, err)
	validLoader, err := train.NewMatrixLoader(XValid, yValid, 50, false, 1)
	require.NoError(t, err)

	model, err := models.NewLinear(2, 1, 42)
	require.NoError(t, err)
	opt, err := train.NewSGD(model.Parameters(), 0.1)
	require.NoError(t, err)

	logger, _ := log.NewTestLogger(log.LevelError)
	trainer, err := train.NewTrainer(model, trainLoader, validLoader,
		train.NewMSELoss(), opt, nil, train.Config{Epochs: 60, LogEvery: 1000},
		train.WithLogger(logger))
	require.NoError(t, err)

	history := metrics.NewHistory()
	require.NoError(t, trainer.RegisterCallback(train.HookCheckpoint,
		train.RecordEvaluation(history)))

	require.NoError(t, trainer.Fit(context.Background()))

	// ノイズなしの線形データなので重みは真値付近に収束する
	assert.InDelta(t, 2.0, model.Weight().Value.At(0, 0), 0.05)
	assert.InDelta(t, -1.0, model.Weight().Value.At(1, 0), 0.05)
	assert.InDelta(t, 0.5, model.Bias().Value.At(0, 0), 0.05)

	// 検証損失は単調ではないにせよ大きく下がる
	series := history.Series("loss")
	require.NotEmpty(t, series)
	assert.Less(t, series[len(series)-1], series[0]/10)
}

func TestTraining_EarlyStoppingEndsRun(t *testing.T) {
	XTrain, yTrain := makeRegressionData(t, 100, 3)

	trainLoader, err := train.NewMatrixLoader(XTrain, yTrain, 16, true, 3)
	require.NoError(t, err)
	validLoader, err := train.NewMatrixLoader(XTrain, yTrain, 100, false, 3)
	require.NoError(t, err)

	model, err := models.NewLinear(2, 1, 7)
	require.NoError(t, err)
	opt, err := train.NewSGD(model.Parameters(), 0.1)
	require.NoError(t, err)

	logger, _ := log.NewTestLogger(log.LevelError)
	trainer, err := train.NewTrainer(model, trainLoader, validLoader,
		train.NewMSELoss(), opt, nil, train.Config{Epochs: 1000, LogEvery: 1000},
		train.WithLogger(logger))
	require.NoError(t, err)

	epochs := 0
	require.NoError(t, trainer.RegisterCallback(train.HookCheckpoint,
		func(tr *train.Trainer, epoch int, stats map[string]float64) error {
			epochs = epoch + 1
			return nil
		}))
	require.NoError(t, trainer.RegisterCallback(train.HookTerminate,
		train.EarlyStopping(5, 1e-7, "loss")))

	require.NoError(t, trainer.Fit(context.Background()))

	// 収束後に改善が止まり、1000エポックより十分前に打ち切られる
	assert.Less(t, epochs, 1000)
	assert.Greater(t, epochs, 5)
}
