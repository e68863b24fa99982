package translator

import (
	"context"
	"encoding/json"

	"github.com/fansqz/go-debug-translator/constants"
	"github.com/sirupsen/logrus"
)

// pendingBreakpoint 会话启动之前收到的断点命令
type pendingBreakpoint struct {
	path       string
	descriptor BreakpointDescriptor
	reply      reply
}

// startSession 第一次 resume 时启动调试会话
// 顺序：设置缓存的断点，设置异常断点，configurationDone，launch/attach，最后应答 resume
func (t *Translator) startSession(ctx context.Context, r reply) {
	logrus.Infof("[Translator] start session, request = %s", t.config.StartRequest)
	t.status.Set(constants.Starting)

	pending := t.pendingBreakpoints
	t.pendingBreakpoints = nil
	t.flushBreakpoints(ctx, pending)

	if err := t.sendExceptionFilters(ctx); err != nil {
		logrus.Warnf("[Translator] set exception breakpoints fail, err = %v", err)
	}
	if err := t.configurationDone(ctx); err != nil {
		t.failStart(r, err)
		return
	}
	if err := t.startDebuggee(ctx); err != nil {
		t.failStart(r, err)
		return
	}
	t.status.Set(constants.Running)
	r(nil, nil)
}

func (t *Translator) failStart(r reply, err error) {
	logrus.Errorf("[Translator] start session fail, err = %v", err)
	t.status.Set(constants.Terminated)
	r(nil, err)
}

// flushBreakpoints 按文件分组设置缓存的断点，每个文件只请求一次适配器
// 一个文件失败时，该文件的所有命令都返回相同的错误
func (t *Translator) flushBreakpoints(ctx context.Context, pending []*pendingBreakpoint) {
	order := make([]string, 0)
	groups := make(map[string][]*pendingBreakpoint)
	for _, p := range pending {
		if _, ok := groups[p.path]; !ok {
			order = append(order, p.path)
		}
		groups[p.path] = append(groups[p.path], p)
	}
	for _, path := range order {
		group := groups[path]
		descriptors := make([]BreakpointDescriptor, len(group))
		for i, p := range group {
			descriptors[i] = p.descriptor
		}
		bps, err := t.breakpoints.SetFileBreakpoints(ctx, path, descriptors)
		for i, p := range group {
			if err != nil {
				p.reply(nil, err)
				continue
			}
			p.reply(breakpointResult(bps[i]), nil)
		}
	}
}

func (t *Translator) configurationDone(ctx context.Context) error {
	capabilities := t.session.Capabilities()
	if capabilities == nil || !capabilities.SupportsConfigurationDoneRequest {
		return nil
	}
	return t.session.ConfigurationDone(ctx)
}

func (t *Translator) startDebuggee(ctx context.Context) error {
	args := t.config.StartArguments
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	if t.config.StartRequest == constants.AttachRequest {
		return t.session.Attach(ctx, args)
	}
	return t.session.Launch(ctx, args)
}

// onInitialized 第一次 initialized 事件在启动流程中消费
// 之后的 initialized 表示适配器重启了，需要重新发送断点和配置
func (t *Translator) onInitialized(ctx context.Context) {
	t.initializedCount++
	if t.initializedCount < 2 || !t.started() || t.status.Is(constants.Terminated) {
		return
	}
	logrus.Infof("[Translator] adapter restarted, resync session")
	if err := t.breakpoints.ResendAll(ctx); err != nil {
		logrus.Errorf("[Translator] resend breakpoints fail, err = %v", err)
	}
	if err := t.sendExceptionFilters(ctx); err != nil {
		logrus.Errorf("[Translator] resend exception breakpoints fail, err = %v", err)
	}
	if err := t.configurationDone(ctx); err != nil {
		logrus.Errorf("[Translator] resend configurationDone fail, err = %v", err)
	}
}
