package train

import (
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/gofit/metrics"
	"github.com/YuminosukeSato/gofit/pkg/errors"
)

// SaveLearningCurve renders every series of the history as a line over the
// epoch axis and writes the plot to path. The image format follows the file
// extension (".png", ".svg", ".pdf").
func SaveLearningCurve(history *metrics.History, title, path string) error {
	if history == nil || len(history.Names()) == 0 {
		return errors.NewValueError("SaveLearningCurve", "history has no recorded epochs")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "epoch"
	p.Y.Label.Text = "value"
	p.Legend.Top = true

	for _, name := range history.Names() {
		series := history.Series(name)
		xys := make(plotter.XYs, len(series))
		for i, v := range series {
			xys[i].X = float64(i + 1)
			xys[i].Y = v
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return errors.Wrapf(err, "gofit: failed to build line for series %q", name)
		}
		p.Add(line)
		p.Legend.Add(name, line)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, "gofit: failed to create plot directory")
		}
	}
	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "gofit: failed to save learning curve to %s", path)
	}
	return nil
}
