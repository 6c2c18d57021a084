// Package parallel は行列演算の列・行単位の処理をCPUコア数で分割する
// 小さなヘルパーを提供する
package parallel

import (
	"runtime"
	"sync"
)

// Parallelize は [0, items) を連続した区間に分割し、各区間を別々の
// goroutineで fn(start, end) として実行する。全区間の完了まで待つ。
// fn は自分の区間以外に書き込んではいけない。
func Parallelize(items int, fn func(start, end int)) {
	if items <= 0 {
		return
	}

	workers := min(runtime.NumCPU(), items)
	// 切り上げ除算で区間幅を決める
	span := (items + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < items; start += span {
		end := min(start+span, items)

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}

// ParallelizeWithThreshold は items が threshold を超える場合のみ並列化し、
// それ以外は fn(0, items) を呼び出し元のgoroutineで一度だけ実行する。
// goroutine起動コストが見合わない小さな入力のためのガード。
func ParallelizeWithThreshold(items, threshold int, fn func(start, end int)) {
	if items <= threshold {
		if items > 0 {
			fn(0, items)
		}
		return
	}
	Parallelize(items, fn)
}
