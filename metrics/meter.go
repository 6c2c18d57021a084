// Package metrics はバッチストリーム上でスカラー指標を集計するための
// 軽量なメーターを提供する
package metrics

// AverageMeter はスカラー値（損失など）の現在値と移動平均を保持する
// カウントはバッチ数ではなくサンプル数で重み付けする
//
// 使用例:
//
//	losses := metrics.NewAverageMeter()
//	losses.Update(lossValue, batchRows)
//	fmt.Printf("Loss: %.3f %.3f\n", losses.Val(), losses.Avg())
type AverageMeter struct {
	val   float64
	sum   float64
	count int
}

// NewAverageMeter は新しいAverageMeterを作成する
// ゼロ値もそのまま使用できる
func NewAverageMeter() *AverageMeter {
	return &AverageMeter{}
}

// Update は値valをn個分のサンプルの代表値として集計に加える
// nが0以下の場合は1として扱う
func (m *AverageMeter) Update(val float64, n int) {
	if n <= 0 {
		n = 1
	}
	m.val = val
	m.sum += val * float64(n)
	m.count += n
}

// Val は直近にUpdateされた値を返す
func (m *AverageMeter) Val() float64 {
	return m.val
}

// Avg はサンプル重み付き平均を返す。未更新の場合は0を返す
func (m *AverageMeter) Avg() float64 {
	if m.count == 0 {
		return 0
	}
	return m.sum / float64(m.count)
}

// Sum は重み付き合計を返す
func (m *AverageMeter) Sum() float64 {
	return m.sum
}

// Count は集計済みサンプル数を返す
func (m *AverageMeter) Count() int {
	return m.count
}

// Reset はメーターを初期状態に戻す
func (m *AverageMeter) Reset() {
	m.val = 0
	m.sum = 0
	m.count = 0
}
