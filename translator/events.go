package translator

import (
	"context"
	"strconv"
	"strings"

	"github.com/fansqz/go-debug-translator/constants"
	e "github.com/fansqz/go-debug-translator/error"
	"github.com/fansqz/go-debug-translator/protocol"
	"github.com/google/go-dap"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// onAdapterEvent 把适配器事件转换成客户端事件，在 actor 中执行
func (t *Translator) onAdapterEvent(ctx context.Context, event AdapterEvent) {
	switch message := event.Message.(type) {
	case *dap.InitializedEvent:
		t.onInitialized(ctx)
	case *dap.StoppedEvent:
		t.onStopped(ctx, message.Body)
	case *dap.ContinuedEvent:
		t.applyContinued(message.Body.ThreadId, message.Body.AllThreadsContinued)
	case *dap.ThreadEvent:
		t.onThread(message.Body)
	case *dap.BreakpointEvent:
		t.onBreakpoint(message.Body, event.Raw)
	case *dap.OutputEvent:
		t.onOutput(message.Body)
	case *dap.TerminatedEvent:
		t.onTerminated()
	case *dap.ExitedEvent:
		logrus.Infof("[Translator] debuggee exited, exit code = %d", message.Body.ExitCode)
	default:
		logrus.Debugf("[Translator] ignore adapter event %s", event.Message.GetEvent().Event)
	}
}

func (t *Translator) onThread(body dap.ThreadEventBody) {
	switch body.Reason {
	case "started":
		t.threads.Started(body.ThreadId, "")
	case "exited":
		t.threads.Exited(body.ThreadId)
	}
}

func (t *Translator) onStopped(ctx context.Context, body dap.StoppedEventBody) {
	t.refreshThreads(ctx)
	threadID, ok := t.threads.Stopped(body)
	t.quirks.AfterStopped(t.threads, body)

	frames := []protocol.CallFrame{}
	if ok {
		loaded, err := t.loadCallFrames(ctx, threadID)
		if err == nil {
			frames = loaded
			t.threads.SetCallFrames(threadID, frames)
		}
	}
	t.emitThreadsUpdated()
	t.emit(constants.PausedEvent, &protocol.PausedEvent{
		CallFrames:   frames,
		Reason:       body.Reason,
		StopThreadID: threadID,
	})
}

// refreshThreads 获取适配器的线程列表，记录名称和未知的线程
func (t *Translator) refreshThreads(ctx context.Context) {
	threads, err := t.session.Threads(ctx)
	if err != nil {
		logrus.Warnf("[Translator] threads fail, err = %v", err)
		return
	}
	for _, thread := range threads {
		t.threads.Ensure(thread.Id, thread.Name)
	}
}

// applyContinued 线程继续执行，暂停线程被清除时发送 resumed 事件
func (t *Translator) applyContinued(threadID int, allThreadsContinued bool) {
	if t.threads.Continued(threadID, allThreadsContinued) {
		t.emit(constants.ResumedEvent, &protocol.ResumedEvent{})
	}
}

func (t *Translator) emitThreadsUpdated() {
	pausedID, _ := t.threads.PausedThread()
	event := &protocol.ThreadsUpdatedEvent{
		OwningProcessID: t.config.OwningProcessID,
		StopThreadID:    pausedID,
		Threads:         make([]protocol.ThreadDescriptor, 0),
	}
	for _, info := range t.threads.Threads() {
		descriptor := protocol.ThreadDescriptor{
			ID:         info.ID,
			Name:       info.Name,
			StopReason: info.StopReason,
		}
		if len(info.CallFrames) > 0 {
			top := info.CallFrames[0]
			location := top.Location
			descriptor.Address = top.FunctionName
			descriptor.Location = &location
			descriptor.HasSource = top.HasSource
		}
		event.Threads = append(event.Threads, descriptor)
	}
	t.emit(constants.ThreadsUpdatedEvent, event)
}

func (t *Translator) onBreakpoint(body dap.BreakpointEventBody, raw []byte) {
	bp, resolved := t.breakpoints.OnAdapterBreakpoint(body.Reason, body.Breakpoint)
	if bp == nil {
		logrus.Debugf("[Translator] breakpoint event for unknown breakpoint %d", body.Breakpoint.Id)
		return
	}
	if resolved {
		t.emit(constants.BreakpointResolvedEvent, &protocol.BreakpointResolvedEvent{
			BreakpointID: strconv.Itoa(bp.ID),
			Location:     breakpointLocation(bp),
		})
	}
	// 命中次数是适配器的扩展字段
	result := gjson.GetBytes(raw, constants.HitCountPath)
	if !result.Exists() {
		return
	}
	hitCount, err := strconv.Atoi(result.String())
	if err != nil {
		return
	}
	t.emit(constants.BreakpointHitCountChangedEvent, &protocol.BreakpointHitCountChangedEvent{
		BreakpointID: strconv.Itoa(bp.ID),
		HitCount:     hitCount,
	})
}

func (t *Translator) onOutput(body dap.OutputEventBody) {
	level := "log"
	switch body.Category {
	case "telemetry":
		return
	case "stderr":
		level = "error"
	}
	t.emit(constants.MessageAddedEvent, &protocol.MessageAddedEvent{
		Message: protocol.ConsoleMessage{
			Source: "console-api",
			Level:  level,
			Text:   strings.TrimSuffix(body.Output, "\n"),
		},
	})
}

func (t *Translator) onTerminated() {
	if !t.quirks.ForwardTerminated() {
		logrus.Infof("[Translator] duplicate terminated event dropped")
		return
	}
	t.terminate(constants.DetachTargetClosed)
}

// onAdapterExit 适配器连接断开
func (t *Translator) onAdapterExit(err error) {
	logrus.Warnf("[Translator] adapter exited, err = %v", err)
	if t.status.Is(constants.Terminated) {
		return
	}
	t.terminate(constants.DetachAdapterExited)
}

func (t *Translator) terminate(reason string) {
	t.status.Set(constants.Terminated)
	// 还没有发送给适配器的断点命令直接应答失败
	for _, pending := range t.pendingBreakpoints {
		pending.reply(nil, e.ErrSessionTerminated)
	}
	t.pendingBreakpoints = nil
	t.threads.Continued(0, true)
	t.emit(constants.DetachedEvent, &protocol.DetachedEvent{Reason: reason})
}

func breakpointLocation(bp *Breakpoint) protocol.Location {
	return protocol.Location{
		ScriptID:     bp.ScriptID,
		LineNumber:   zeroBased(bp.Line),
		ColumnNumber: zeroBased(bp.Column),
	}
}
