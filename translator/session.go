package translator

import (
	"context"
	"encoding/json"

	"github.com/google/go-dap"
)

// AdapterSession 调试适配器会话
// 会话的生命周期由外部管理，translator 只持有它的引用
type AdapterSession interface {
	// Capabilities initialize 时适配器返回的能力
	Capabilities() *dap.Capabilities
	Launch(ctx context.Context, args json.RawMessage) error
	Attach(ctx context.Context, args json.RawMessage) error
	// SetBreakpoints 设置某个文件的全部断点，返回结果与请求一一对应
	SetBreakpoints(ctx context.Context, args dap.SetBreakpointsArguments) ([]dap.Breakpoint, error)
	SetExceptionBreakpoints(ctx context.Context, filters []string) error
	ConfigurationDone(ctx context.Context) error
	Threads(ctx context.Context) ([]dap.Thread, error)
	Pause(ctx context.Context, threadID int) error
	// Continue 返回是否所有线程都继续执行了
	Continue(ctx context.Context, threadID int) (bool, error)
	Next(ctx context.Context, threadID int) error
	StepIn(ctx context.Context, threadID int) error
	StepOut(ctx context.Context, threadID int) error
	// ContinueToLocation 适配器的扩展请求，line 和 column 从1开始
	ContinueToLocation(ctx context.Context, threadID int, source dap.Source, line int, column int) error
	StackTrace(ctx context.Context, threadID int) ([]dap.StackFrame, error)
	Scopes(ctx context.Context, frameID int) ([]dap.Scope, error)
	Variables(ctx context.Context, reference int) ([]dap.Variable, error)
	Evaluate(ctx context.Context, args dap.EvaluateArguments) (*dap.EvaluateResponseBody, error)
}

// FileRegistry 文件注册，注册以后客户端可以通过 scriptId 读取文件内容
type FileRegistry interface {
	RegisterFile(ctx context.Context, path string) (string, error)
	GetFileSource(ctx context.Context, scriptID string) (string, error)
}

// AdapterEvent 适配器发送的事件，Raw 保留原始的 json，用于读取扩展字段
type AdapterEvent struct {
	Message dap.EventMessage
	Raw     []byte
}

// Sender 把应答和事件发送给客户端，需要保证并发安全
type Sender func(message interface{})
