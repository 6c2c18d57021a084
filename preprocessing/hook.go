package preprocessing

import (
	"github.com/YuminosukeSato/gofit/core/model"
)

// BatchTransform は学習済みTransformerをpreprocessフック関数に変換する
// 特徴量行列のみを変換し、ターゲットはそのまま通す
//
// 使用例:
//
//	scaler := preprocessing.NewStandardScalerDefault()
//	_ = scaler.Fit(XTrain)
//	trainer.RegisterCallback("preprocess", preprocessing.BatchTransform(scaler))
func BatchTransform(t model.Transformer) func(model.Batch) (model.Batch, error) {
	return func(b model.Batch) (model.Batch, error) {
		transformed, err := t.Transform(b.X)
		if err != nil {
			return model.Batch{}, err
		}
		return model.Batch{X: transformed, Y: b.Y}, nil
	}
}
