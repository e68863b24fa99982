package translator

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/fansqz/go-debug-translator/constants"
	e "github.com/fansqz/go-debug-translator/error"
	"github.com/fansqz/go-debug-translator/protocol"
	"github.com/google/go-dap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testHelper 测试辅助结构体，运行一个 translator 并收集它发送的消息
type testHelper struct {
	t          *testing.T
	session    *fakeSession
	files      *fakeRegistry
	translator *Translator
	messages   chan interface{}
	cancel     context.CancelFunc
	lastID     int
}

func newTestHelper(t *testing.T, config Config) *testHelper {
	h := &testHelper{
		t:        t,
		session:  newFakeSession(),
		files:    newFakeRegistry(),
		messages: make(chan interface{}, 100),
	}
	h.translator = NewTranslator(h.session, h.files, func(message interface{}) {
		h.messages <- message
	}, config)
	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go h.translator.Run(ctx)
	return h
}

func (h *testHelper) cleanup() {
	h.cancel()
}

// command 发送命令，返回命令id
func (h *testHelper) command(method constants.CommandMethod, params interface{}) int {
	h.lastID++
	cmd := &protocol.Command{ID: h.lastID, Method: string(method)}
	if params != nil {
		raw, err := json.Marshal(params)
		require.Nil(h.t, err)
		cmd.Params = raw
	}
	h.translator.Dispatch(cmd)
	return h.lastID
}

func (h *testHelper) adapterEvent(message dap.EventMessage) {
	raw, err := json.Marshal(message)
	require.Nil(h.t, err)
	h.translator.HandleAdapterEvent(AdapterEvent{Message: message, Raw: raw})
}

func (h *testHelper) next() interface{} {
	select {
	case message := <-h.messages:
		return message
	case <-time.After(2 * time.Second):
		h.t.Fatal("timeout waiting for message")
	}
	return nil
}

// waitResponse 等待命令的应答
func (h *testHelper) waitResponse(id int) *protocol.Response {
	message := h.next()
	response, ok := message.(*protocol.Response)
	require.True(h.t, ok, "expected response, got %#v", message)
	assert.Equal(h.t, id, response.ID)
	return response
}

func (h *testHelper) waitOK(id int) *protocol.Response {
	response := h.waitResponse(id)
	assert.Nil(h.t, response.Error)
	return response
}

func (h *testHelper) waitError(id int) string {
	response := h.waitResponse(id)
	body, ok := response.Error.(*protocol.ErrorBody)
	require.True(h.t, ok, "expected error body, got %#v", response.Error)
	return body.Message
}

// waitEvent 等待事件
func (h *testHelper) waitEvent(method constants.EventMethod) *protocol.Event {
	message := h.next()
	event, ok := message.(*protocol.Event)
	require.True(h.t, ok, "expected event %s, got %#v", method, message)
	assert.Equal(h.t, method, event.Method)
	return event
}

// sync 等待 actor 处理完之前投递的消息
func (h *testHelper) sync() {
	h.waitOK(h.command(constants.RuntimeEnable, nil))
}

func (h *testHelper) noMessage() {
	select {
	case message := <-h.messages:
		h.t.Fatalf("unexpected message %#v", message)
	default:
	}
}

// start enable + resume 启动会话
func (h *testHelper) start() {
	h.waitOK(h.command(constants.DebuggerEnable, nil))
	h.waitEvent(constants.PausedEvent)
	h.waitOK(h.command(constants.DebuggerResume, nil))
}

// stop 模拟线程1停在 /src/a.py 第5行
func (h *testHelper) stop() *protocol.PausedEvent {
	h.session.frames[1] = []dap.StackFrame{
		{Id: 1000, Name: "main", Source: &dap.Source{Path: "/src/a.py"}, Line: 5, Column: 1},
	}
	h.session.scopes[1000] = []dap.Scope{{Name: "Locals", VariablesReference: 7}}
	h.adapterEvent(&dap.ThreadEvent{Event: dap.Event{Event: "thread"}, Body: dap.ThreadEventBody{Reason: "started", ThreadId: 1}})
	h.adapterEvent(&dap.StoppedEvent{Event: dap.Event{Event: "stopped"}, Body: dap.StoppedEventBody{Reason: "breakpoint", ThreadId: 1}})
	h.waitEvent(constants.ScriptParsedEvent)
	h.waitEvent(constants.ThreadsUpdatedEvent)
	return h.waitEvent(constants.PausedEvent).Params.(*protocol.PausedEvent)
}

func TestEnable(t *testing.T) {
	h := newTestHelper(t, Config{})
	defer h.cleanup()

	response := h.waitOK(h.command(constants.DebuggerEnable, nil))
	assert.Equal(t, protocol.Empty{}, response.Result)
	paused := h.waitEvent(constants.PausedEvent).Params.(*protocol.PausedEvent)
	assert.Equal(t, constants.InitialBreakReason, paused.Reason)
	assert.Empty(t, paused.CallFrames)
	assert.Equal(t, constants.AwaitingFirstConfig, h.translator.State())

	// 再次 enable 只应答
	h.waitOK(h.command(constants.DebuggerEnable, nil))
	h.sync()
	h.noMessage()
}

func TestUnknownCommand(t *testing.T) {
	h := newTestHelper(t, Config{})
	defer h.cleanup()

	response := h.waitResponse(h.command("Debugger.foo", nil))
	assert.Equal(t, "Unknown command: Debugger.foo", response.Error)
	assert.Nil(t, response.Result)
}

func TestStartupSequence(t *testing.T) {
	h := newTestHelper(t, Config{StartArguments: json.RawMessage(`{"program":"a.py"}`)})
	defer h.cleanup()

	h.waitOK(h.command(constants.DebuggerEnable, nil))
	h.waitEvent(constants.PausedEvent)

	bpID := h.command(constants.DebuggerSetBreakpointByURL, &protocol.SetBreakpointByURLParams{URL: "file:///src/a.py", LineNumber: 4})
	h.waitOK(h.command(constants.DebuggerSetPauseOnExceptions, &protocol.SetPauseOnExceptionsParams{State: constants.PauseOnUncaughtExceptions}))
	// 启动之前断点命令被缓存，没有请求适配器
	assert.Empty(t, h.session.Calls())

	resumeID := h.command(constants.DebuggerResume, nil)
	parsed := h.waitEvent(constants.ScriptParsedEvent).Params.(*protocol.ScriptParsedEvent)
	assert.Equal(t, "/src/a.py", parsed.ScriptID)
	assert.Equal(t, "file:///src/a.py", parsed.URL)

	result := h.waitOK(bpID).Result.(*protocol.SetBreakpointByURLResult)
	assert.Equal(t, "1", result.BreakpointID)
	assert.True(t, result.Resolved)
	assert.Equal(t, []protocol.Location{{ScriptID: "/src/a.py", LineNumber: 4}}, result.Locations)

	h.waitOK(resumeID)
	assert.Equal(t, []string{"setBreakpoints", "setExceptionBreakpoints", "configurationDone", "launch"}, h.session.Calls())
	assert.Equal(t, [][]string{{"uncaught"}}, h.session.exceptionFilters)
	assert.JSONEq(t, `{"program":"a.py"}`, string(h.session.launchArgs[0]))
	assert.Equal(t, constants.Running, h.translator.State())

	// 启动之后的断点直接设置，并且和已有的断点合并
	result = h.waitOK(h.command(constants.DebuggerSetBreakpointByURL, &protocol.SetBreakpointByURLParams{URL: "file:///src/a.py", LineNumber: 9})).Result.(*protocol.SetBreakpointByURLResult)
	assert.NotEqual(t, "1", result.BreakpointID)
	calls := h.session.SetBreakpointsCalls()
	assert.Len(t, calls, 2)
	assert.Equal(t, []int{5, 10}, sentLines(calls[1]))
}

func TestStartupAttachWithoutConfigurationDone(t *testing.T) {
	h := newTestHelper(t, Config{StartRequest: constants.AttachRequest})
	defer h.cleanup()
	h.session.capabilities = &dap.Capabilities{}

	h.start()
	assert.Equal(t, []string{"setExceptionBreakpoints", "attach"}, h.session.Calls())
	assert.Equal(t, [][]string{{}}, h.session.exceptionFilters)
}

func TestStartupBreakpointCountMismatch(t *testing.T) {
	h := newTestHelper(t, Config{})
	defer h.cleanup()
	h.session.breakpointsFunc = func(args dap.SetBreakpointsArguments) ([]dap.Breakpoint, error) {
		if args.Source.Path == "/src/a.py" {
			return []dap.Breakpoint{{Id: 1, Verified: true, Line: 1}}, nil
		}
		return []dap.Breakpoint{{Id: 5, Verified: true, Line: 3}}, nil
	}

	h.waitOK(h.command(constants.DebuggerEnable, nil))
	h.waitEvent(constants.PausedEvent)
	first := h.command(constants.DebuggerSetBreakpointByURL, &protocol.SetBreakpointByURLParams{URL: "file:///src/a.py", LineNumber: 0})
	second := h.command(constants.DebuggerSetBreakpointByURL, &protocol.SetBreakpointByURLParams{URL: "file:///src/a.py", LineNumber: 1})
	other := h.command(constants.DebuggerSetBreakpointByURL, &protocol.SetBreakpointByURLParams{URL: "file:///src/b.py", LineNumber: 2})
	resumeID := h.command(constants.DebuggerResume, nil)

	h.waitEvent(constants.ScriptParsedEvent)
	firstMessage := h.waitError(first)
	secondMessage := h.waitError(second)
	assert.Equal(t, e.ErrBreakpointCountMismatch.Error(), firstMessage)
	assert.Equal(t, firstMessage, secondMessage)

	// 其他文件不受影响，启动继续
	h.waitEvent(constants.ScriptParsedEvent)
	h.waitOK(other)
	h.waitOK(resumeID)
	assert.Equal(t, 1, h.translator.breakpoints.Size())
}

func TestStartupLaunchFailure(t *testing.T) {
	h := newTestHelper(t, Config{})
	defer h.cleanup()
	h.session.launchErr = &e.AdapterError{Command: "launch", Message: "no such file"}

	h.waitOK(h.command(constants.DebuggerEnable, nil))
	h.waitEvent(constants.PausedEvent)
	message := h.waitError(h.command(constants.DebuggerResume, nil))
	assert.Equal(t, "launch failed: no such file", message)
	assert.Equal(t, constants.Terminated, h.translator.State())

	assert.Equal(t, e.ErrSessionTerminated.Error(), h.waitError(h.command(constants.DebuggerPause, nil)))
}

func TestFlowControlWithoutPausedThread(t *testing.T) {
	h := newTestHelper(t, Config{})
	defer h.cleanup()
	h.start()

	for _, method := range []constants.CommandMethod{
		constants.DebuggerResume, constants.DebuggerStepOver, constants.DebuggerStepInto, constants.DebuggerStepOut,
	} {
		assert.Equal(t, e.ErrNoPausedThread.Error(), h.waitError(h.command(method, nil)))
	}
	message := h.waitError(h.command(constants.DebuggerContinueToLocation, &protocol.ContinueToLocationParams{
		Location: protocol.Location{ScriptID: "/src/a.py", LineNumber: 3},
	}))
	assert.Equal(t, e.ErrNoPausedThread.Error(), message)
	assert.Equal(t, []string{"setExceptionBreakpoints", "configurationDone", "launch"}, h.session.Calls())
}

func TestStoppedAndResume(t *testing.T) {
	h := newTestHelper(t, Config{OwningProcessID: 42})
	defer h.cleanup()
	h.start()

	paused := h.stop()
	assert.Equal(t, "breakpoint", paused.Reason)
	assert.Equal(t, 1, paused.StopThreadID)
	require.Len(t, paused.CallFrames, 1)
	frame := paused.CallFrames[0]
	assert.Equal(t, encodeHandle(frameHandle, 1000), frame.CallFrameID)
	assert.Equal(t, "main", frame.FunctionName)
	assert.Equal(t, protocol.Location{ScriptID: "/src/a.py", LineNumber: 4, ColumnNumber: 0}, frame.Location)
	assert.Equal(t, "file:///src/a.py", frame.URL)
	assert.True(t, frame.HasSource)
	require.Len(t, frame.ScopeChain, 1)
	assert.Equal(t, "local", frame.ScopeChain[0].Type)
	assert.Equal(t, encodeHandle(variablesHandle, 7), frame.ScopeChain[0].Object.ObjectID)

	// 缓存的栈帧
	result := h.waitOK(h.command(constants.DebuggerGetThreadStack, &protocol.GetThreadStackParams{ThreadID: 1})).Result.(*protocol.GetThreadStackResult)
	assert.Equal(t, paused.CallFrames, result.CallFrames)
	calls := h.session.Calls()
	assert.Equal(t, 1, countCalls(calls, "stackTrace"))

	h.waitOK(h.command(constants.DebuggerResume, nil))
	h.waitEvent(constants.ResumedEvent)
	assert.Equal(t, []int{1}, h.session.threadIDs)
	_, ok := h.translator.threads.PausedThread()
	assert.False(t, ok)
}

func TestThreadsUpdated(t *testing.T) {
	h := newTestHelper(t, Config{OwningProcessID: 42})
	defer h.cleanup()
	h.start()

	h.session.threads = []dap.Thread{{Id: 1, Name: "MainThread"}, {Id: 2, Name: "worker"}}
	h.session.frames[2] = []dap.StackFrame{{Id: 2000, Name: "work", Line: 3}}
	h.adapterEvent(&dap.StoppedEvent{Event: dap.Event{Event: "stopped"}, Body: dap.StoppedEventBody{Reason: "pause", AllThreadsStopped: true, ThreadId: 2}})

	updated := h.waitEvent(constants.ThreadsUpdatedEvent).Params.(*protocol.ThreadsUpdatedEvent)
	assert.Equal(t, 42, updated.OwningProcessID)
	assert.Equal(t, 2, updated.StopThreadID)
	require.Len(t, updated.Threads, 2)
	assert.Equal(t, "MainThread", updated.Threads[0].Name)
	assert.Nil(t, updated.Threads[0].Location)
	// 暂停原因只在暂停线程上
	assert.Equal(t, "", updated.Threads[0].StopReason)
	assert.Equal(t, "pause", updated.Threads[1].StopReason)
	assert.Equal(t, "work", updated.Threads[1].Address)
	assert.Equal(t, &protocol.Location{LineNumber: 2}, updated.Threads[1].Location)
	assert.False(t, updated.Threads[1].HasSource)

	paused := h.waitEvent(constants.PausedEvent).Params.(*protocol.PausedEvent)
	assert.Equal(t, 2, paused.StopThreadID)

	// 适配器的 continued 事件
	h.adapterEvent(&dap.ContinuedEvent{Event: dap.Event{Event: "continued"}, Body: dap.ContinuedEventBody{ThreadId: 2, AllThreadsContinued: true}})
	h.waitEvent(constants.ResumedEvent)
}

func TestStepAndPause(t *testing.T) {
	h := newTestHelper(t, Config{})
	defer h.cleanup()
	h.start()
	h.stop()

	h.waitOK(h.command(constants.DebuggerStepOver, nil))
	h.waitEvent(constants.ResumedEvent)
	assert.Equal(t, e.ErrNoPausedThread.Error(), h.waitError(h.command(constants.DebuggerStepOver, nil)))

	h.waitOK(h.command(constants.DebuggerPause, nil))
	// next 和 pause 都作用在主线程
	assert.Equal(t, []int{1, 1}, h.session.threadIDs)
}

func TestPauseWithoutThread(t *testing.T) {
	h := newTestHelper(t, Config{})
	defer h.cleanup()

	// 会话启动之前不能暂停
	h.waitOK(h.command(constants.DebuggerEnable, nil))
	h.waitEvent(constants.PausedEvent)
	assert.Equal(t, e.ErrSessionNotStarted.Error(), h.waitError(h.command(constants.DebuggerPause, nil)))

	// 没有线程时不能暂停
	h.waitOK(h.command(constants.DebuggerResume, nil))
	assert.Equal(t, e.ErrNoThread.Error(), h.waitError(h.command(constants.DebuggerPause, nil)))
	assert.Equal(t, 0, countCalls(h.session.Calls(), "pause"))
}

func TestResumeAllThreads(t *testing.T) {
	h := newTestHelper(t, Config{})
	defer h.cleanup()
	h.start()

	h.session.allContinued = true
	h.session.threads = []dap.Thread{{Id: 1, Name: "main"}, {Id: 2, Name: "worker"}}
	h.adapterEvent(&dap.StoppedEvent{Event: dap.Event{Event: "stopped"}, Body: dap.StoppedEventBody{Reason: "pause", AllThreadsStopped: true}})
	h.waitEvent(constants.ThreadsUpdatedEvent)
	paused := h.waitEvent(constants.PausedEvent).Params.(*protocol.PausedEvent)
	assert.Equal(t, 1, paused.StopThreadID)

	h.waitOK(h.command(constants.DebuggerResume, nil))
	h.waitEvent(constants.ResumedEvent)
	h.sync()
	for _, info := range h.translator.threads.Threads() {
		assert.Equal(t, constants.ThreadRunning, info.State)
		assert.Equal(t, "", info.StopReason)
	}
}

func TestContinueToLocation(t *testing.T) {
	h := newTestHelper(t, Config{})
	defer h.cleanup()
	h.start()
	h.stop()

	h.waitOK(h.command(constants.DebuggerContinueToLocation, &protocol.ContinueToLocationParams{
		Location: protocol.Location{ScriptID: "/src/a.py", LineNumber: 8},
	}))
	h.waitEvent(constants.ResumedEvent)
	assert.Equal(t, 1, countCalls(h.session.Calls(), "continueToLocation"))
}

func TestBreakpointEvents(t *testing.T) {
	h := newTestHelper(t, Config{})
	defer h.cleanup()
	h.session.breakpointsFunc = func(args dap.SetBreakpointsArguments) ([]dap.Breakpoint, error) {
		return []dap.Breakpoint{{Id: 11, Verified: false}}, nil
	}
	h.start()

	id := h.command(constants.DebuggerSetBreakpointByURL, &protocol.SetBreakpointByURLParams{URL: "/src/a.py", LineNumber: 3})
	// 新文件先发送 scriptParsed
	h.waitEvent(constants.ScriptParsedEvent)
	result := h.waitOK(id).Result.(*protocol.SetBreakpointByURLResult)
	assert.Equal(t, "11", result.BreakpointID)
	assert.False(t, result.Resolved)
	assert.Equal(t, 3, result.Locations[0].LineNumber)

	h.translator.HandleAdapterEvent(AdapterEvent{
		Message: &dap.BreakpointEvent{
			Event: dap.Event{Event: "breakpoint"},
			Body:  dap.BreakpointEventBody{Reason: "changed", Breakpoint: dap.Breakpoint{Id: 11, Verified: true, Line: 6}},
		},
		Raw: []byte(`{"seq":9,"type":"event","event":"breakpoint","body":{"reason":"changed","breakpoint":{"id":11,"verified":true,"line":6,"hitCount":3}}}`),
	})

	resolved := h.waitEvent(constants.BreakpointResolvedEvent).Params.(*protocol.BreakpointResolvedEvent)
	assert.Equal(t, "11", resolved.BreakpointID)
	assert.Equal(t, protocol.Location{ScriptID: "/src/a.py", LineNumber: 5}, resolved.Location)
	hit := h.waitEvent(constants.BreakpointHitCountChangedEvent).Params.(*protocol.BreakpointHitCountChangedEvent)
	assert.Equal(t, "11", hit.BreakpointID)
	assert.Equal(t, 3, hit.HitCount)

	// 无效的命中次数被忽略
	h.translator.HandleAdapterEvent(AdapterEvent{
		Message: &dap.BreakpointEvent{
			Event: dap.Event{Event: "breakpoint"},
			Body:  dap.BreakpointEventBody{Reason: "changed", Breakpoint: dap.Breakpoint{Id: 11, Verified: true, Line: 6}},
		},
		Raw: []byte(`{"body":{"reason":"changed","breakpoint":{"id":11,"verified":true,"line":6,"hitCount":"many"}}}`),
	})
	h.sync()
	h.noMessage()
}

func TestRemoveBreakpointCommand(t *testing.T) {
	h := newTestHelper(t, Config{})
	defer h.cleanup()
	h.start()

	id := h.command(constants.DebuggerSetBreakpointByURL, &protocol.SetBreakpointByURLParams{URL: "/src/a.py", LineNumber: 3})
	h.waitEvent(constants.ScriptParsedEvent)
	h.waitOK(id)
	h.waitOK(h.command(constants.DebuggerRemoveBreakpoint, &protocol.RemoveBreakpointParams{BreakpointID: "1"}))
	calls := h.session.SetBreakpointsCalls()
	require.Len(t, calls, 2)
	assert.Empty(t, calls[1].Breakpoints)

	// 未知的断点
	h.waitOK(h.command(constants.DebuggerRemoveBreakpoint, &protocol.RemoveBreakpointParams{BreakpointID: "5"}))
	assert.Contains(t, h.waitError(h.command(constants.DebuggerRemoveBreakpoint, &protocol.RemoveBreakpointParams{BreakpointID: "abc"})), e.ErrInvalidBreakpointID.Error())
}

func TestSetPauseOnExceptionsAfterStart(t *testing.T) {
	h := newTestHelper(t, Config{})
	defer h.cleanup()
	h.session.capabilities.ExceptionBreakpointFilters = []dap.ExceptionBreakpointsFilter{
		{Filter: "raised", Label: "Raised Exceptions"},
		{Filter: "uncaught", Label: "Uncaught Exceptions"},
	}
	h.start()

	h.waitOK(h.command(constants.DebuggerSetPauseOnExceptions, &protocol.SetPauseOnExceptionsParams{State: constants.PauseOnAllExceptions}))
	h.waitOK(h.command(constants.DebuggerSetPauseOnExceptions, &protocol.SetPauseOnExceptionsParams{State: constants.PauseOnNoExceptions}))
	assert.Equal(t, [][]string{{}, {"raised", "uncaught"}, {}}, h.session.exceptionFilters)

	message := h.waitError(h.command(constants.DebuggerSetPauseOnExceptions, &protocol.SetPauseOnExceptionsParams{State: "sometimes"}))
	assert.Contains(t, message, e.ErrUnsupportedPauseState.Error())
}

func TestRestartReplay(t *testing.T) {
	h := newTestHelper(t, Config{})
	defer h.cleanup()

	h.waitOK(h.command(constants.DebuggerEnable, nil))
	h.waitEvent(constants.PausedEvent)
	bpID := h.command(constants.DebuggerSetBreakpointByURL, &protocol.SetBreakpointByURLParams{URL: "/src/a.py", LineNumber: 3})
	h.adapterEvent(&dap.InitializedEvent{Event: dap.Event{Event: "initialized"}})
	resumeID := h.command(constants.DebuggerResume, nil)
	h.waitEvent(constants.ScriptParsedEvent)
	h.waitOK(bpID)
	h.waitOK(resumeID)
	before := len(h.session.Calls())

	// 第二次 initialized 表示适配器重启
	h.adapterEvent(&dap.InitializedEvent{Event: dap.Event{Event: "initialized"}})
	h.sync()
	calls := h.session.Calls()[before:]
	assert.Equal(t, []string{"setBreakpoints", "setExceptionBreakpoints", "configurationDone"}, calls)
	replayed := h.session.SetBreakpointsCalls()[1]
	assert.Equal(t, []int{4}, sentLines(replayed))
	bp, ok := h.translator.breakpoints.Get(1)
	assert.True(t, ok)
	assert.Equal(t, 2, bp.AdapterID)
}

func TestEvaluate(t *testing.T) {
	h := newTestHelper(t, Config{})
	defer h.cleanup()
	h.session.evaluateFunc = func(args dap.EvaluateArguments) (*dap.EvaluateResponseBody, error) {
		switch args.Expression {
		case "p":
			return &dap.EvaluateResponseBody{Result: "Point{1, 2}", Type: "Point", VariablesReference: 9}, nil
		case "bad":
			return nil, &e.AdapterError{Command: "evaluate", Message: "name 'bad' is not defined"}
		case "lost":
			return nil, e.ErrAdapterClosed
		case "boom":
			panic("boom")
		}
		return &dap.EvaluateResponseBody{Result: "2"}, nil
	}
	h.start()

	result := h.waitOK(h.command(constants.RuntimeEvaluate, &protocol.EvaluateParams{Expression: "1+1"})).Result.(*protocol.EvaluateResult)
	assert.False(t, result.WasThrown)
	assert.Equal(t, protocol.RemoteObject{Type: "number", Value: "2", Description: "2"}, result.Result)
	assert.Equal(t, evaluateContextRepl, h.session.evaluateArgs[0].Context)
	assert.Equal(t, 0, h.session.evaluateArgs[0].FrameId)

	result = h.waitOK(h.command(constants.DebuggerEvaluateOnCallFrame, &protocol.EvaluateOnCallFrameParams{
		CallFrameID: encodeHandle(frameHandle, 1000),
		Expression:  "p",
	})).Result.(*protocol.EvaluateResult)
	assert.Equal(t, "object", result.Result.Type)
	assert.Equal(t, "Point", result.Result.ClassName)
	assert.Equal(t, encodeHandle(variablesHandle, 9), result.Result.ObjectID)
	assert.Equal(t, evaluateContextWatch, h.session.evaluateArgs[1].Context)
	assert.Equal(t, 1000, h.session.evaluateArgs[1].FrameId)

	// 适配器拒绝计算
	result = h.waitOK(h.command(constants.RuntimeEvaluate, &protocol.EvaluateParams{Expression: "bad"})).Result.(*protocol.EvaluateResult)
	assert.True(t, result.WasThrown)
	assert.Equal(t, "error", result.Result.Subtype)
	assert.Equal(t, "name 'bad' is not defined", result.Result.Description)

	assert.Equal(t, e.ErrAdapterClosed.Error(), h.waitError(h.command(constants.RuntimeEvaluate, &protocol.EvaluateParams{Expression: "lost"})))
	assert.Equal(t, "panic: boom", h.waitError(h.command(constants.RuntimeEvaluate, &protocol.EvaluateParams{Expression: "boom"})))

	message := h.waitError(h.command(constants.DebuggerEvaluateOnCallFrame, &protocol.EvaluateOnCallFrameParams{
		CallFrameID: encodeHandle(variablesHandle, 1000),
		Expression:  "p",
	}))
	assert.Contains(t, message, e.ErrInvalidHandle.Error())
}

func TestGetProperties(t *testing.T) {
	h := newTestHelper(t, Config{})
	defer h.cleanup()
	h.session.variables[9] = []dap.Variable{
		{Name: "x", Value: "1", Type: "int"},
		{Name: "child", Value: "Child{}", Type: "Child", VariablesReference: 10},
		{Name: "name", Value: "'abc'", Type: "str"},
	}

	result := h.waitOK(h.command(constants.RuntimeGetProperties, &protocol.GetPropertiesParams{
		ObjectID: encodeHandle(variablesHandle, 9),
	})).Result.(*protocol.GetPropertiesResult)
	require.Len(t, result.Result, 3)
	assert.Equal(t, protocol.PropertyDescriptor{
		Name:       "x",
		Value:      protocol.RemoteObject{Type: "number", Value: "1", Description: "1"},
		Enumerable: true,
	}, result.Result[0])
	assert.Equal(t, encodeHandle(variablesHandle, 10), result.Result[1].Value.ObjectID)
	assert.False(t, result.Result[1].Configurable)
	assert.False(t, result.Result[1].Writable)
	assert.Equal(t, "string", result.Result[2].Value.Type)
}

func TestGetScriptSource(t *testing.T) {
	h := newTestHelper(t, Config{})
	defer h.cleanup()
	h.files.files["/src/a.py"] = "print(1)\n"

	result := h.waitOK(h.command(constants.DebuggerGetScriptSource, &protocol.GetScriptSourceParams{ScriptID: "/src/a.py"})).Result.(*protocol.GetScriptSourceResult)
	assert.Equal(t, "print(1)\n", result.ScriptSource)
	assert.Equal(t, e.ErrScriptNotFound.Error(), h.waitError(h.command(constants.DebuggerGetScriptSource, &protocol.GetScriptSourceParams{ScriptID: "/src/b.py"})))
}

func TestAckOnlyCommands(t *testing.T) {
	h := newTestHelper(t, Config{})
	defer h.cleanup()

	h.waitOK(h.command(constants.RuntimeEnable, nil))
	h.waitOK(h.command(constants.DebuggerSetAsyncCallStackDepth, map[string]int{"maxDepth": 32}))
	assert.Empty(t, h.session.Calls())
}

func TestInvalidParams(t *testing.T) {
	h := newTestHelper(t, Config{})
	defer h.cleanup()

	id := h.lastID + 1
	h.lastID = id
	h.translator.Dispatch(&protocol.Command{ID: id, Method: string(constants.DebuggerGetThreadStack), Params: json.RawMessage(`{"threadId":"x"}`)})
	assert.Contains(t, h.waitError(id), e.ErrInvalidParams.Error())
}

func TestHandlerPanic(t *testing.T) {
	h := newTestHelper(t, Config{})
	defer h.cleanup()
	h.session.breakpointsFunc = func(dap.SetBreakpointsArguments) ([]dap.Breakpoint, error) {
		panic("adapter exploded")
	}
	h.start()

	id := h.command(constants.DebuggerSetBreakpointByURL, &protocol.SetBreakpointByURLParams{URL: "/src/a.py", LineNumber: 3})
	h.waitEvent(constants.ScriptParsedEvent)
	assert.Equal(t, "panic: adapter exploded", h.waitError(id))
	// actor 继续工作
	h.sync()
}

func TestOutput(t *testing.T) {
	h := newTestHelper(t, Config{})
	defer h.cleanup()

	h.adapterEvent(&dap.OutputEvent{Event: dap.Event{Event: "output"}, Body: dap.OutputEventBody{Category: "stdout", Output: "hello\n"}})
	h.adapterEvent(&dap.OutputEvent{Event: dap.Event{Event: "output"}, Body: dap.OutputEventBody{Category: "telemetry", Output: "{}"}})
	h.adapterEvent(&dap.OutputEvent{Event: dap.Event{Event: "output"}, Body: dap.OutputEventBody{Category: "stderr", Output: "oops"}})

	message := h.waitEvent(constants.MessageAddedEvent).Params.(*protocol.MessageAddedEvent)
	assert.Equal(t, protocol.ConsoleMessage{Source: "console-api", Level: "log", Text: "hello"}, message.Message)
	message = h.waitEvent(constants.MessageAddedEvent).Params.(*protocol.MessageAddedEvent)
	assert.Equal(t, "error", message.Message.Level)
	assert.Equal(t, "oops", message.Message.Text)
}

func TestTerminatedDedup(t *testing.T) {
	h := newTestHelper(t, Config{Variant: constants.AdapterPython})
	defer h.cleanup()
	h.start()

	h.adapterEvent(&dap.TerminatedEvent{Event: dap.Event{Event: "terminated"}})
	h.adapterEvent(&dap.TerminatedEvent{Event: dap.Event{Event: "terminated"}})
	detached := h.waitEvent(constants.DetachedEvent).Params.(*protocol.DetachedEvent)
	assert.Equal(t, constants.DetachTargetClosed, detached.Reason)
	h.sync()
	h.noMessage()
	assert.Equal(t, constants.Terminated, h.translator.State())

	assert.Equal(t, e.ErrSessionTerminated.Error(), h.waitError(h.command(constants.DebuggerPause, nil)))
	h.waitOK(h.command(constants.DebuggerSetAsyncCallStackDepth, nil))
}

func TestAdapterExit(t *testing.T) {
	h := newTestHelper(t, Config{})
	defer h.cleanup()
	h.start()

	h.translator.HandleAdapterExit(errors.New("EOF"))
	detached := h.waitEvent(constants.DetachedEvent).Params.(*protocol.DetachedEvent)
	assert.Equal(t, constants.DetachAdapterExited, detached.Reason)
	assert.Equal(t, constants.Terminated, h.translator.State())

	// 已经结束的会话不会重复发送
	h.translator.HandleAdapterExit(errors.New("EOF"))
	h.sync()
	h.noMessage()
}

func TestPendingBreakpointsOnAdapterExit(t *testing.T) {
	h := newTestHelper(t, Config{})
	defer h.cleanup()

	h.waitOK(h.command(constants.DebuggerEnable, nil))
	h.waitEvent(constants.PausedEvent)
	id := h.command(constants.DebuggerSetBreakpointByURL, &protocol.SetBreakpointByURLParams{URL: "/src/a.py", LineNumber: 3})
	h.sync()

	// 缓存的断点命令在会话结束时应答
	h.translator.HandleAdapterExit(errors.New("EOF"))
	assert.Equal(t, e.ErrSessionTerminated.Error(), h.waitError(id))
	h.waitEvent(constants.DetachedEvent)
	assert.Equal(t, e.ErrSessionTerminated.Error(), h.waitError(h.command(constants.DebuggerResume, nil)))
	h.sync()
	h.noMessage()
	assert.Empty(t, h.session.SetBreakpointsCalls())
}

func countCalls(calls []string, name string) int {
	count := 0
	for _, call := range calls {
		if call == name {
			count++
		}
	}
	return count
}
