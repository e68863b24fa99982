package translator

import (
	"context"
	"encoding/json"
	"sync"

	e "github.com/fansqz/go-debug-translator/error"
	"github.com/google/go-dap"
)

// fakeSession 记录请求的适配器会话
type fakeSession struct {
	mu           sync.Mutex
	capabilities *dap.Capabilities
	calls        []string

	setBreakpoints   []dap.SetBreakpointsArguments
	exceptionFilters [][]string
	launchArgs       []json.RawMessage
	threadIDs        []int
	evaluateArgs     []dap.EvaluateArguments
	nextAdapterID    int

	// 为空时每个断点都返回 verified
	breakpointsFunc func(args dap.SetBreakpointsArguments) ([]dap.Breakpoint, error)
	evaluateFunc    func(args dap.EvaluateArguments) (*dap.EvaluateResponseBody, error)
	threads         []dap.Thread
	frames          map[int][]dap.StackFrame
	scopes          map[int][]dap.Scope
	variables       map[int][]dap.Variable
	launchErr       error
	allContinued    bool
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		capabilities: &dap.Capabilities{SupportsConfigurationDoneRequest: true},
		frames:       make(map[int][]dap.StackFrame),
		scopes:       make(map[int][]dap.Scope),
		variables:    make(map[int][]dap.Variable),
	}
}

func (f *fakeSession) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeSession) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeSession) SetBreakpointsCalls() []dap.SetBreakpointsArguments {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]dap.SetBreakpointsArguments(nil), f.setBreakpoints...)
}

func (f *fakeSession) Capabilities() *dap.Capabilities {
	return f.capabilities
}

func (f *fakeSession) Launch(_ context.Context, args json.RawMessage) error {
	f.record("launch")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.launchArgs = append(f.launchArgs, args)
	return f.launchErr
}

func (f *fakeSession) Attach(_ context.Context, _ json.RawMessage) error {
	f.record("attach")
	return nil
}

func (f *fakeSession) SetBreakpoints(_ context.Context, args dap.SetBreakpointsArguments) ([]dap.Breakpoint, error) {
	f.record("setBreakpoints")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setBreakpoints = append(f.setBreakpoints, args)
	if f.breakpointsFunc != nil {
		return f.breakpointsFunc(args)
	}
	answer := make([]dap.Breakpoint, len(args.Breakpoints))
	for i, bp := range args.Breakpoints {
		f.nextAdapterID++
		answer[i] = dap.Breakpoint{Id: f.nextAdapterID, Verified: true, Line: bp.Line}
	}
	return answer, nil
}

func (f *fakeSession) SetExceptionBreakpoints(_ context.Context, filters []string) error {
	f.record("setExceptionBreakpoints")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exceptionFilters = append(f.exceptionFilters, filters)
	return nil
}

func (f *fakeSession) ConfigurationDone(_ context.Context) error {
	f.record("configurationDone")
	return nil
}

func (f *fakeSession) Threads(_ context.Context) ([]dap.Thread, error) {
	f.record("threads")
	return f.threads, nil
}

func (f *fakeSession) Pause(_ context.Context, threadID int) error {
	f.record("pause")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.threadIDs = append(f.threadIDs, threadID)
	return nil
}

func (f *fakeSession) Continue(_ context.Context, threadID int) (bool, error) {
	f.record("continue")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.threadIDs = append(f.threadIDs, threadID)
	return f.allContinued, nil
}

func (f *fakeSession) Next(_ context.Context, threadID int) error {
	f.record("next")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.threadIDs = append(f.threadIDs, threadID)
	return nil
}

func (f *fakeSession) StepIn(_ context.Context, _ int) error {
	f.record("stepIn")
	return nil
}

func (f *fakeSession) StepOut(_ context.Context, _ int) error {
	f.record("stepOut")
	return nil
}

func (f *fakeSession) ContinueToLocation(_ context.Context, _ int, _ dap.Source, _ int, _ int) error {
	f.record("continueToLocation")
	return nil
}

func (f *fakeSession) StackTrace(_ context.Context, threadID int) ([]dap.StackFrame, error) {
	f.record("stackTrace")
	return f.frames[threadID], nil
}

func (f *fakeSession) Scopes(_ context.Context, frameID int) ([]dap.Scope, error) {
	f.record("scopes")
	return f.scopes[frameID], nil
}

func (f *fakeSession) Variables(_ context.Context, reference int) ([]dap.Variable, error) {
	f.record("variables")
	return f.variables[reference], nil
}

func (f *fakeSession) Evaluate(_ context.Context, args dap.EvaluateArguments) (*dap.EvaluateResponseBody, error) {
	f.record("evaluate")
	f.mu.Lock()
	f.evaluateArgs = append(f.evaluateArgs, args)
	evaluateFunc := f.evaluateFunc
	f.mu.Unlock()
	if evaluateFunc != nil {
		return evaluateFunc(args)
	}
	return &dap.EvaluateResponseBody{Result: args.Expression}, nil
}

// fakeRegistry scriptId 就是文件路径
type fakeRegistry struct {
	mu      sync.Mutex
	files   map[string]string
	counter map[string]int
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{files: make(map[string]string), counter: make(map[string]int)}
}

func (f *fakeRegistry) RegisterFile(_ context.Context, path string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counter[path]++
	return path, nil
}

func (f *fakeRegistry) GetFileSource(_ context.Context, scriptID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	source, ok := f.files[scriptID]
	if !ok {
		return "", e.ErrScriptNotFound
	}
	return source, nil
}
