package translator

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"

	"github.com/emirpasic/gods/sets/hashset"
	"github.com/fansqz/go-debug-translator/constants"
	"github.com/fansqz/go-debug-translator/protocol"
	"github.com/fansqz/go-debug-translator/utils"
	"github.com/sirupsen/logrus"
)

// Config translator 的配置
type Config struct {
	Variant constants.AdapterVariant
	// StartRequest 第一次 resume 时发送 launch 还是 attach
	StartRequest   constants.StartRequest
	StartArguments json.RawMessage
	// OwningProcessID threadsUpdated 事件中的进程id
	OwningProcessID int
}

// Translator 把客户端的命令转换成适配器的请求，把适配器的事件转换成客户端的事件
// 所有的状态都只在 Run 所在的协程中修改
type Translator struct {
	config  Config
	session AdapterSession
	files   FileRegistry
	send    Sender
	quirks  Quirks

	status   *utils.StatusManager
	mailbox  *mailbox
	handlers map[constants.CommandMethod]handler

	breakpoints *BreakpointManager
	threads     *ThreadTracker
	// 适配器的异常断点过滤器
	exceptionFilters *hashset.Set
	// 第一次 resume 之前缓存的断点命令
	pendingBreakpoints []*pendingBreakpoint
	initializedCount   int
	// path -> scriptId
	scripts map[string]string
	// scriptId -> path
	scriptPaths map[string]string
}

func NewTranslator(session AdapterSession, files FileRegistry, send Sender, config Config) *Translator {
	t := &Translator{
		config:           config,
		session:          session,
		files:            files,
		send:             send,
		quirks:           NewQuirks(config.Variant),
		status:           utils.NewStatusManager(),
		mailbox:          newMailbox(),
		threads:          NewThreadTracker(),
		exceptionFilters: hashset.New(),
		scripts:          make(map[string]string),
		scriptPaths:      make(map[string]string),
	}
	t.breakpoints = NewBreakpointManager(session, t.registerFile)
	t.handlers = t.routes()
	return t
}

// Run 处理命令和适配器事件，直到 ctx 结束
func (t *Translator) Run(ctx context.Context) error {
	logrus.Infof("[Translator] run, variant = %s", t.config.Variant)
	for {
		task, ok := t.mailbox.take(ctx)
		if !ok {
			return ctx.Err()
		}
		t.runTask(ctx, task)
	}
}

func (t *Translator) runTask(ctx context.Context, task task) {
	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("[Translator] task panic, err = %v\n%s", r, debug.Stack())
		}
	}()
	task(ctx)
}

// Dispatch 投递客户端命令，不会阻塞
func (t *Translator) Dispatch(cmd *protocol.Command) {
	t.mailbox.post(func(ctx context.Context) {
		t.dispatch(ctx, cmd)
	})
}

// HandleAdapterEvent 投递适配器事件，不会阻塞
func (t *Translator) HandleAdapterEvent(event AdapterEvent) {
	t.mailbox.post(func(ctx context.Context) {
		t.onAdapterEvent(ctx, event)
	})
}

// HandleAdapterExit 适配器连接断开
func (t *Translator) HandleAdapterExit(err error) {
	t.mailbox.post(func(ctx context.Context) {
		t.onAdapterExit(err)
	})
}

// State 会话状态，可以在任意协程读取
func (t *Translator) State() constants.SessionState {
	return t.status.Get()
}

func (t *Translator) emit(method constants.EventMethod, params interface{}) {
	t.send(protocol.NewEvent(method, params))
}

func (t *Translator) String() string {
	return fmt.Sprintf("Translator(%s, %s)", t.config.Variant, t.status.Get())
}
