package translator

import (
	"context"
	"sync"

	"github.com/emirpasic/gods/queues/linkedlistqueue"
)

type task func(ctx context.Context)

// mailbox 无界的任务队列，post 永远不会阻塞
// 适配器的接收协程在 actor 等待适配器响应的时候也可以继续投递事件
type mailbox struct {
	mu    sync.Mutex
	queue *linkedlistqueue.Queue
	wake  chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{
		queue: linkedlistqueue.New(),
		wake:  make(chan struct{}, 1),
	}
}

func (m *mailbox) post(t task) {
	m.mu.Lock()
	m.queue.Enqueue(t)
	m.mu.Unlock()
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

// take 取出下一个任务，ctx 结束时返回 false
func (m *mailbox) take(ctx context.Context) (task, bool) {
	for {
		m.mu.Lock()
		value, ok := m.queue.Dequeue()
		m.mu.Unlock()
		if ok {
			return value.(task), true
		}
		select {
		case <-m.wake:
		case <-ctx.Done():
			return nil, false
		}
	}
}

func (m *mailbox) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queue.Size()
}
