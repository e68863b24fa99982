package translator

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/fansqz/go-debug-translator/constants"
	e "github.com/fansqz/go-debug-translator/error"
	"github.com/fansqz/go-debug-translator/protocol"
	"github.com/fansqz/go-debug-translator/utils/gosync"
	"github.com/sirupsen/logrus"
)

// reply 应答命令，只有第一次调用生效
type reply func(result interface{}, err error)

type handler func(ctx context.Context, cmd *protocol.Command, r reply)

// routes 命令和处理函数的映射
func (t *Translator) routes() map[constants.CommandMethod]handler {
	return map[constants.CommandMethod]handler{
		constants.DebuggerEnable:                 t.handleEnable,
		constants.DebuggerPause:                  t.handlePause,
		constants.DebuggerResume:                 t.handleResume,
		constants.DebuggerStepOver:               t.handleStepOver,
		constants.DebuggerStepInto:               t.handleStepInto,
		constants.DebuggerStepOut:                t.handleStepOut,
		constants.DebuggerGetScriptSource:        t.handleGetScriptSource,
		constants.DebuggerSetPauseOnExceptions:   t.handleSetPauseOnExceptions,
		constants.DebuggerContinueToLocation:     t.handleContinueToLocation,
		constants.DebuggerSetBreakpointByURL:     t.handleSetBreakpointByURL,
		constants.DebuggerRemoveBreakpoint:       t.handleRemoveBreakpoint,
		constants.DebuggerGetThreadStack:         t.handleGetThreadStack,
		constants.DebuggerEvaluateOnCallFrame:    t.handleEvaluateOnCallFrame,
		constants.DebuggerSetAsyncCallStackDepth: t.handleAck,
		constants.RuntimeEnable:                  t.handleAck,
		constants.RuntimeEvaluate:                t.handleRuntimeEvaluate,
		constants.RuntimeGetProperties:           t.handleGetProperties,
	}
}

// offlineMethods 会话结束以后仍然可以处理的命令
var offlineMethods = map[constants.CommandMethod]bool{
	constants.DebuggerEnable:                 true,
	constants.DebuggerGetScriptSource:        true,
	constants.DebuggerSetAsyncCallStackDepth: true,
	constants.RuntimeEnable:                  true,
}

func (t *Translator) dispatch(ctx context.Context, cmd *protocol.Command) {
	method := constants.CommandMethod(cmd.Method)
	h, ok := t.handlers[method]
	if !ok {
		logrus.Warnf("[Translator] unknown command %s", cmd.Method)
		t.send(protocol.NewUnknownCommandResponse(cmd.ID, cmd.Method))
		return
	}
	r := t.newReply(cmd)
	if t.status.Is(constants.Terminated) && !offlineMethods[method] {
		r(nil, e.ErrSessionTerminated)
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			logrus.Errorf("[Translator] handle %s panic, err = %v\n%s", cmd.Method, rec, debug.Stack())
			r(nil, fmt.Errorf("panic: %v", rec))
		}
	}()
	h(ctx, cmd, r)
}

func (t *Translator) newReply(cmd *protocol.Command) reply {
	var once sync.Once
	return func(result interface{}, err error) {
		once.Do(func() {
			if err != nil {
				logrus.Warnf("[Translator] %s fail, id = %d, err = %v", cmd.Method, cmd.ID, err)
				t.send(protocol.NewErrorResponse(cmd.ID, err.Error()))
				return
			}
			t.send(protocol.NewResponse(cmd.ID, result))
		})
	}
}

// async 在其他协程中执行不读写会话状态的命令
func (t *Translator) async(ctx context.Context, r reply, fn func(ctx context.Context) (interface{}, error)) {
	gosync.GoWithRecover(ctx, func(ctx context.Context) {
		r(fn(ctx))
	}, func(err error) {
		r(nil, err)
	})
}

// parseParams 解析命令参数
func parseParams(cmd *protocol.Command, v interface{}) error {
	if err := cmd.ParseParams(v); err != nil {
		logrus.Warnf("parse request error, err = %v", err)
		return fmt.Errorf("%w: %v", e.ErrInvalidParams, err)
	}
	return nil
}
