package protocol

import "github.com/fansqz/go-debug-translator/constants"

// Event 发送给客户端的事件
type Event struct {
	Method constants.EventMethod `json:"method"`
	Params interface{}           `json:"params,omitempty"`
}

func NewEvent(method constants.EventMethod, params interface{}) *Event {
	return &Event{Method: method, Params: params}
}

// PausedEvent
// 被调试程序暂停，callFrames 为 stopThreadId 对应线程的栈帧
type PausedEvent struct {
	CallFrames   []CallFrame `json:"callFrames"`
	Reason       string      `json:"reason"`
	StopThreadID int         `json:"stopThreadId,omitempty"`
}

// ResumedEvent 被调试程序继续执行
type ResumedEvent struct{}

// ThreadsUpdatedEvent 线程列表发生变化
type ThreadsUpdatedEvent struct {
	OwningProcessID int                `json:"owningProcessId"`
	StopThreadID    int                `json:"stopThreadId"`
	Threads         []ThreadDescriptor `json:"threads"`
}

// ThreadDescriptor 线程信息
type ThreadDescriptor struct {
	ID         int       `json:"id"`
	Name       string    `json:"name"`
	Address    string    `json:"address"`
	Location   *Location `json:"location,omitempty"`
	StopReason string    `json:"stopReason"`
	HasSource  bool      `json:"hasSource"`
}

// BreakpointResolvedEvent 断点被适配器确认
type BreakpointResolvedEvent struct {
	BreakpointID string   `json:"breakpointId"`
	Location     Location `json:"location"`
}

// BreakpointHitCountChangedEvent 断点命中次数变化
type BreakpointHitCountChangedEvent struct {
	BreakpointID string `json:"breakpointId"`
	HitCount     int    `json:"hitCount"`
}

// ScriptParsedEvent 一个新的文件可以读取了
type ScriptParsedEvent struct {
	ScriptID string `json:"scriptId"`
	URL      string `json:"url"`
}

// MessageAddedEvent 用户程序输出
type MessageAddedEvent struct {
	Message ConsoleMessage `json:"message"`
}

type ConsoleMessage struct {
	Source string `json:"source"`
	Level  string `json:"level"`
	Text   string `json:"text"`
}

// DetachedEvent 调试会话结束
type DetachedEvent struct {
	Reason string `json:"reason"`
}
