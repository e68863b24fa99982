package gosync

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/sirupsen/logrus"
)

// Go 封装的go协程工具，会兜住panic，但是目前只能传递ctx
func Go(ctx context.Context, task func(ctx context.Context)) {
	GoWithRecover(ctx, task, nil)
}

// GoWithRecover 与 Go 相同，发生panic时会调用 recovered
func GoWithRecover(ctx context.Context, task func(ctx context.Context), recovered func(err error)) {
	go func(ctx context.Context, f func(ctx context.Context)) {
		defer func() {
			// 在每个协程内部接收该协程自身抛出来的 panic
			if r := recover(); r != nil {
				err := fmt.Errorf("panic: %v", r)
				logrus.Errorf("[gosync] recovered, err = %v\n%s", err, debug.Stack())
				if recovered != nil {
					recovered(err)
				}
			}
		}()

		f(ctx)

	}(ctx, task)
}
