package dashboard

import (
	"context"
	"sync"
	"time"
)

// Every запускает fn сразу, а затем каждые interval до вызова stop или отмены ctx.
// Вызовы fn строго последовательны: следующий тик ждет завершения предыдущего.
// stop отменяет контекст текущего вызова и дожидается выхода горутины.
// При interval <= 0 fn выполняется один раз, без повторов.
func Every(ctx context.Context, interval time.Duration, fn func(ctx context.Context)) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)

		fn(ctx)
		if interval <= 0 {
			return
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fn(ctx)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}
}
