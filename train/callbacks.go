package train

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"

	"github.com/YuminosukeSato/gofit/core/model"
	"github.com/YuminosukeSato/gofit/metrics"
	"github.com/YuminosukeSato/gofit/pkg/errors"
	"github.com/YuminosukeSato/gofit/pkg/log"
)

// このファイルはチェックポイント・終了ステージ用のコールバックファクトリを提供する。
// すべて状態をクロージャに閉じ込めた関数を返すので、1つのコールバック値を
// 複数のTrainerで共有してはいけない。

// ChainCheckpoints combines several checkpoint callbacks into one that runs
// them in order, stopping at the first error.
func ChainCheckpoints(fns ...CheckpointFunc) CheckpointFunc {
	return func(t *Trainer, epoch int, stats map[string]float64) error {
		for _, fn := range fns {
			if fn == nil {
				continue
			}
			if err := fn(t, epoch, stats); err != nil {
				return err
			}
		}
		return nil
	}
}

// PrintEvaluation returns a checkpoint callback that logs the evaluation
// stats every period epochs. period<=1 logs every epoch.
func PrintEvaluation(period int) CheckpointFunc {
	if period < 1 {
		period = 1
	}
	return func(t *Trainer, epoch int, stats map[string]float64) error {
		if (epoch+1)%period != 0 || len(stats) == 0 {
			return nil
		}
		fields := make([]any, 0, 2*len(stats)+4)
		fields = append(fields, log.OperationKey, log.OperationCheckpoint, log.EpochKey, epoch+1)
		names := make([]string, 0, len(stats))
		for name := range stats {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fields = append(fields, name, stats[name])
		}
		t.Logger().Info("Evaluation", fields...)
		return nil
	}
}

// RecordEvaluation returns a checkpoint callback that appends every epoch's
// stats to the given history.
func RecordEvaluation(history *metrics.History) CheckpointFunc {
	return func(t *Trainer, epoch int, stats map[string]float64) error {
		history.Record(stats)
		return nil
	}
}

// ModelCheckpoint returns a checkpoint callback that saves the model under
// dir every `every` epochs. The model must implement model.Persistable;
// otherwise the callback fails on its first invocation.
func ModelCheckpoint(dir string, every int) CheckpointFunc {
	if every < 1 {
		every = 1
	}
	return func(t *Trainer, epoch int, stats map[string]float64) error {
		if (epoch+1)%every != 0 {
			return nil
		}
		p, ok := t.Model().(model.Persistable)
		if !ok {
			return errors.NewModelError("ModelCheckpoint", "model does not support saving", nil)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, "gofit: failed to create checkpoint directory")
		}
		path := filepath.Join(dir, fmt.Sprintf("epoch_%04d.ckpt", epoch+1))
		if err := p.Save(path); err != nil {
			return errors.Wrapf(err, "gofit: failed to save checkpoint at epoch %d", epoch+1)
		}
		t.Logger().Info("Checkpoint saved",
			log.OperationKey, log.OperationCheckpoint,
			log.EpochKey, epoch+1,
			"path", path,
		)
		return nil
	}
}

// ProgressBar returns a checkpoint callback that renders an epoch-level
// terminal progress bar annotated with the latest validation loss and the
// total number of processed samples.
func ProgressBar(epochs int) CheckpointFunc {
	bar := progressbar.NewOptions(epochs,
		progressbar.OptionSetDescription("training"),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("epochs"),
		progressbar.OptionSetTheme(progressbar.ThemeASCII),
	)
	return func(t *Trainer, epoch int, stats map[string]float64) error {
		desc := fmt.Sprintf("training (%s samples", humanize.Comma(t.ProcessedSamples()))
		if loss, ok := stats["loss"]; ok {
			desc += fmt.Sprintf(", loss %.4f", loss)
		}
		bar.Describe(desc + ")")
		return bar.Add(1)
	}
}

// EarlyStopping returns a terminate callback that stops training when the
// named stat has not improved by at least minDelta for patience consecutive
// evaluated epochs. Lower values count as improvement. Epochs without the
// stat (skipped evaluations) are ignored.
func EarlyStopping(patience int, minDelta float64, metric string) TerminateFunc {
	if patience < 1 {
		patience = 1
	}
	if minDelta < 0 {
		minDelta = 0
	}
	if metric == "" {
		metric = "loss"
	}

	best := 0.0
	initialized := false
	badEpochs := 0

	return func(t *Trainer, epoch int, stats map[string]float64) State {
		value, ok := stats[metric]
		if !ok {
			return StateContinue
		}

		if !initialized || value < best-minDelta {
			best = value
			initialized = true
			badEpochs = 0
			return StateContinue
		}

		badEpochs++
		if badEpochs >= patience {
			t.Logger().Info("Early stopping triggered",
				log.OperationKey, log.OperationTerminate,
				log.EpochKey, epoch+1,
				"metric", metric,
				"best", best,
				"patience", patience,
			)
			return StateTerminate
		}
		return StateContinue
	}
}

// TimeLimit returns a terminate callback that stops training once the
// given wall-clock duration has elapsed since the callback's first call.
func TimeLimit(limit time.Duration) TerminateFunc {
	var deadline time.Time
	return func(t *Trainer, epoch int, stats map[string]float64) State {
		now := time.Now()
		if deadline.IsZero() {
			deadline = now.Add(limit)
		}
		if now.Before(deadline) {
			return StateContinue
		}
		t.Logger().Info("Time limit reached",
			log.OperationKey, log.OperationTerminate,
			log.EpochKey, epoch+1,
			log.DurationMsKey, limit.Milliseconds(),
		)
		return StateTerminate
	}
}
