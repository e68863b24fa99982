package translator

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/fansqz/go-debug-translator/constants"
	e "github.com/fansqz/go-debug-translator/error"
	"github.com/fansqz/go-debug-translator/protocol"
	"github.com/fansqz/go-debug-translator/utils"
	"github.com/google/go-dap"
)

func (t *Translator) handleAck(_ context.Context, _ *protocol.Command, r reply) {
	r(nil, nil)
}

// handleEnable 应答以后发送一个假的 paused 事件，客户端收到以后开始发送断点等配置
func (t *Translator) handleEnable(_ context.Context, _ *protocol.Command, r reply) {
	r(nil, nil)
	if !t.status.Is(constants.Uninitialized) {
		return
	}
	t.status.Set(constants.AwaitingFirstConfig)
	t.emit(constants.PausedEvent, &protocol.PausedEvent{
		CallFrames: []protocol.CallFrame{},
		Reason:     constants.InitialBreakReason,
	})
}

// handlePause 会话启动以后才能暂停，需要知道至少一个线程
func (t *Translator) handlePause(ctx context.Context, _ *protocol.Command, r reply) {
	if !t.started() {
		r(nil, e.ErrSessionNotStarted)
		return
	}
	threadID, ok := t.threads.PauseTarget()
	if !ok {
		r(nil, e.ErrNoThread)
		return
	}
	r(nil, t.session.Pause(ctx, threadID))
}

// handleResume 第一次 resume 启动调试会话，之后的 resume 发送 continue
func (t *Translator) handleResume(ctx context.Context, _ *protocol.Command, r reply) {
	if !t.started() {
		t.startSession(ctx, r)
		return
	}
	threadID, ok := t.threads.PausedThread()
	if !ok {
		r(nil, e.ErrNoPausedThread)
		return
	}
	all, err := t.session.Continue(ctx, threadID)
	if err != nil {
		r(nil, err)
		return
	}
	r(nil, nil)
	t.applyContinued(threadID, all)
}

func (t *Translator) handleStepOver(ctx context.Context, _ *protocol.Command, r reply) {
	t.step(ctx, r, t.session.Next)
}

func (t *Translator) handleStepInto(ctx context.Context, _ *protocol.Command, r reply) {
	t.step(ctx, r, t.session.StepIn)
}

func (t *Translator) handleStepOut(ctx context.Context, _ *protocol.Command, r reply) {
	t.step(ctx, r, t.session.StepOut)
}

// step 单步执行需要有暂停的线程
func (t *Translator) step(ctx context.Context, r reply, fn func(ctx context.Context, threadID int) error) {
	threadID, ok := t.threads.PausedThread()
	if !ok {
		r(nil, e.ErrNoPausedThread)
		return
	}
	if err := fn(ctx, threadID); err != nil {
		r(nil, err)
		return
	}
	r(nil, nil)
	t.applyContinued(threadID, false)
}

func (t *Translator) handleContinueToLocation(ctx context.Context, cmd *protocol.Command, r reply) {
	var params protocol.ContinueToLocationParams
	if err := parseParams(cmd, &params); err != nil {
		r(nil, err)
		return
	}
	threadID, ok := t.threads.PausedThread()
	if !ok {
		r(nil, e.ErrNoPausedThread)
		return
	}
	path, err := t.scriptPath(params.Location.ScriptID)
	if err != nil {
		r(nil, err)
		return
	}
	source := dap.Source{Path: path}
	location := params.Location
	if err = t.session.ContinueToLocation(ctx, threadID, source, location.LineNumber+1, location.ColumnNumber+1); err != nil {
		r(nil, err)
		return
	}
	r(nil, nil)
	t.applyContinued(threadID, false)
}

func (t *Translator) handleGetScriptSource(ctx context.Context, cmd *protocol.Command, r reply) {
	var params protocol.GetScriptSourceParams
	if err := parseParams(cmd, &params); err != nil {
		r(nil, err)
		return
	}
	t.async(ctx, r, func(ctx context.Context) (interface{}, error) {
		source, err := t.files.GetFileSource(ctx, params.ScriptID)
		if err != nil {
			return nil, err
		}
		return &protocol.GetScriptSourceResult{ScriptSource: source}, nil
	})
}

func (t *Translator) handleSetPauseOnExceptions(ctx context.Context, cmd *protocol.Command, r reply) {
	var params protocol.SetPauseOnExceptionsParams
	if err := parseParams(cmd, &params); err != nil {
		r(nil, err)
		return
	}
	filters, err := t.exceptionFiltersFor(params.State)
	if err != nil {
		r(nil, err)
		return
	}
	t.exceptionFilters = utils.List2set(filters)
	if !t.started() {
		r(nil, nil)
		return
	}
	r(nil, t.sendExceptionFilters(ctx))
}

// exceptionFiltersFor 把异常断点状态转换成适配器的过滤器
func (t *Translator) exceptionFiltersFor(state constants.PauseOnExceptionsState) ([]string, error) {
	var advertised []dap.ExceptionBreakpointsFilter
	if capabilities := t.session.Capabilities(); capabilities != nil {
		advertised = capabilities.ExceptionBreakpointFilters
	}
	switch state {
	case constants.PauseOnNoExceptions:
		return []string{}, nil
	case constants.PauseOnUncaughtExceptions:
		filters := make([]string, 0)
		for _, filter := range advertised {
			if strings.Contains(strings.ToLower(filter.Filter), "uncaught") {
				filters = append(filters, filter.Filter)
			}
		}
		if len(filters) == 0 {
			filters = append(filters, "uncaught")
		}
		return filters, nil
	case constants.PauseOnAllExceptions:
		filters := make([]string, 0, len(advertised))
		for _, filter := range advertised {
			filters = append(filters, filter.Filter)
		}
		if len(filters) == 0 {
			filters = append(filters, "raised", "uncaught")
		}
		return filters, nil
	default:
		return nil, fmt.Errorf("%w: %q", e.ErrUnsupportedPauseState, state)
	}
}

func (t *Translator) sendExceptionFilters(ctx context.Context) error {
	return t.session.SetExceptionBreakpoints(ctx, utils.Set2StringList(t.exceptionFilters))
}

// handleSetBreakpointByURL 会话启动之前缓存断点，启动之后直接设置
func (t *Translator) handleSetBreakpointByURL(ctx context.Context, cmd *protocol.Command, r reply) {
	var params protocol.SetBreakpointByURLParams
	if err := parseParams(cmd, &params); err != nil {
		r(nil, err)
		return
	}
	path, err := urlToPath(params.URL)
	if err != nil {
		r(nil, err)
		return
	}
	descriptor := BreakpointDescriptor{
		Line:      params.LineNumber + 1,
		Condition: params.Condition,
	}
	if params.ColumnNumber > 0 {
		descriptor.Column = params.ColumnNumber + 1
	}
	if !t.started() {
		t.pendingBreakpoints = append(t.pendingBreakpoints, &pendingBreakpoint{
			path:       path,
			descriptor: descriptor,
			reply:      r,
		})
		return
	}
	bps, err := t.breakpoints.SetFileBreakpoints(ctx, path, []BreakpointDescriptor{descriptor})
	if err != nil {
		r(nil, err)
		return
	}
	r(breakpointResult(bps[0]), nil)
}

func (t *Translator) handleRemoveBreakpoint(ctx context.Context, cmd *protocol.Command, r reply) {
	var params protocol.RemoveBreakpointParams
	if err := parseParams(cmd, &params); err != nil {
		r(nil, err)
		return
	}
	id, err := strconv.Atoi(params.BreakpointID)
	if err != nil {
		r(nil, fmt.Errorf("%w: %q", e.ErrInvalidBreakpointID, params.BreakpointID))
		return
	}
	r(nil, t.breakpoints.Remove(ctx, id))
}

// handleGetThreadStack 暂停线程优先返回缓存的栈帧
func (t *Translator) handleGetThreadStack(ctx context.Context, cmd *protocol.Command, r reply) {
	var params protocol.GetThreadStackParams
	if err := parseParams(cmd, &params); err != nil {
		r(nil, err)
		return
	}
	if info, ok := t.threads.Thread(params.ThreadID); ok && info.CallFrames != nil {
		r(&protocol.GetThreadStackResult{CallFrames: info.CallFrames}, nil)
		return
	}
	frames, err := t.loadCallFrames(ctx, params.ThreadID)
	if err != nil {
		r(nil, err)
		return
	}
	t.threads.SetCallFrames(params.ThreadID, frames)
	r(&protocol.GetThreadStackResult{CallFrames: frames}, nil)
}

func (t *Translator) handleEvaluateOnCallFrame(ctx context.Context, cmd *protocol.Command, r reply) {
	var params protocol.EvaluateOnCallFrameParams
	if err := parseParams(cmd, &params); err != nil {
		r(nil, err)
		return
	}
	frameID, err := decodeHandle(params.CallFrameID, frameHandle)
	if err != nil {
		r(nil, err)
		return
	}
	t.async(ctx, r, func(ctx context.Context) (interface{}, error) {
		return t.evaluate(ctx, params.Expression, frameID)
	})
}

func (t *Translator) handleRuntimeEvaluate(ctx context.Context, cmd *protocol.Command, r reply) {
	var params protocol.EvaluateParams
	if err := parseParams(cmd, &params); err != nil {
		r(nil, err)
		return
	}
	t.async(ctx, r, func(ctx context.Context) (interface{}, error) {
		return t.evaluate(ctx, params.Expression, 0)
	})
}

func (t *Translator) handleGetProperties(ctx context.Context, cmd *protocol.Command, r reply) {
	var params protocol.GetPropertiesParams
	if err := parseParams(cmd, &params); err != nil {
		r(nil, err)
		return
	}
	t.async(ctx, r, func(ctx context.Context) (interface{}, error) {
		return t.getProperties(ctx, params.ObjectID)
	})
}

func (t *Translator) started() bool {
	return !t.status.Is(constants.Uninitialized, constants.AwaitingFirstConfig)
}

func breakpointResult(bp *Breakpoint) *protocol.SetBreakpointByURLResult {
	return &protocol.SetBreakpointByURLResult{
		BreakpointID: strconv.Itoa(bp.ID),
		Locations:    []protocol.Location{breakpointLocation(bp)},
		Resolved:     bp.Resolved,
	}
}
