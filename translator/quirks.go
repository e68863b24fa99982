package translator

import (
	"github.com/fansqz/go-debug-translator/constants"
	"github.com/google/go-dap"
)

// Quirks 不同适配器的兼容处理
type Quirks interface {
	// AfterStopped 线程状态更新以后调用
	AfterStopped(threads *ThreadTracker, body dap.StoppedEventBody)
	// ForwardTerminated 是否把这次 terminated 事件转发给客户端
	ForwardTerminated() bool
}

// NewQuirks 根据适配器类型选择兼容处理
func NewQuirks(variant constants.AdapterVariant) Quirks {
	switch variant {
	case constants.AdapterHHVM:
		return &stampStopReason{reason: "pause"}
	case constants.AdapterPython:
		return &dedupTerminated{}
	default:
		return defaultQuirks{}
	}
}

type defaultQuirks struct{}

func (defaultQuirks) AfterStopped(*ThreadTracker, dap.StoppedEventBody) {}

func (defaultQuirks) ForwardTerminated() bool {
	return true
}

// stampStopReason hhvm 暂停时会停止所有线程，但是只会标记其中一个
type stampStopReason struct {
	defaultQuirks
	reason string
}

func (s *stampStopReason) AfterStopped(threads *ThreadTracker, body dap.StoppedEventBody) {
	if body.Reason == s.reason {
		threads.StampStopReason(body.Reason)
	}
}

// dedupTerminated python 适配器可能发送多次 terminated，只转发第一次
type dedupTerminated struct {
	defaultQuirks
	forwarded bool
}

func (d *dedupTerminated) ForwardTerminated() bool {
	if d.forwarded {
		return false
	}
	d.forwarded = true
	return true
}
