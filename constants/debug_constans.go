package constants

// CommandMethod 客户端命令的方法名
type CommandMethod string

const (
	// DebuggerEnable 开启调试，立即应答并合成一个 "initial break" 的 paused 事件
	DebuggerEnable CommandMethod = "Debugger.enable"
	// DebuggerPause 暂停正在运行的线程
	DebuggerPause CommandMethod = "Debugger.pause"
	// DebuggerResume 第一次 resume 触发启动流程，之后作为 continue 转发
	DebuggerResume CommandMethod = "Debugger.resume"
	// DebuggerStepOver 单步，不会进入函数内部
	DebuggerStepOver CommandMethod = "Debugger.stepOver"
	// DebuggerStepInto 单步，会进入函数内部
	DebuggerStepInto CommandMethod = "Debugger.stepInto"
	// DebuggerStepOut 单步跳出
	DebuggerStepOut CommandMethod = "Debugger.stepOut"
	// DebuggerGetScriptSource 读取文件内容
	DebuggerGetScriptSource CommandMethod = "Debugger.getScriptSource"
	// DebuggerSetPauseOnExceptions 设置异常断点
	DebuggerSetPauseOnExceptions CommandMethod = "Debugger.setPauseOnExceptions"
	// DebuggerContinueToLocation 运行到指定位置
	DebuggerContinueToLocation CommandMethod = "Debugger.continueToLocation"
	// DebuggerSetBreakpointByURL 添加断点
	DebuggerSetBreakpointByURL CommandMethod = "Debugger.setBreakpointByUrl"
	// DebuggerRemoveBreakpoint 移除断点
	DebuggerRemoveBreakpoint CommandMethod = "Debugger.removeBreakpoint"
	// DebuggerGetThreadStack 获取某个线程的栈帧
	DebuggerGetThreadStack CommandMethod = "Debugger.getThreadStack"
	// DebuggerEvaluateOnCallFrame 在栈帧上计算表达式
	DebuggerEvaluateOnCallFrame CommandMethod = "Debugger.evaluateOnCallFrame"
	// DebuggerSetAsyncCallStackDepth 只应答
	DebuggerSetAsyncCallStackDepth CommandMethod = "Debugger.setAsyncCallStackDepth"
	// RuntimeEnable 只应答
	RuntimeEnable CommandMethod = "Runtime.enable"
	// RuntimeEvaluate 全局作用域计算表达式
	RuntimeEvaluate CommandMethod = "Runtime.evaluate"
	// RuntimeGetProperties 展开对象
	RuntimeGetProperties CommandMethod = "Runtime.getProperties"
)

// EventMethod 发送给客户端的事件名
type EventMethod string

const (
	PausedEvent                    EventMethod = "Debugger.paused"
	ResumedEvent                   EventMethod = "Debugger.resumed"
	ThreadsUpdatedEvent            EventMethod = "Debugger.threadsUpdated"
	BreakpointResolvedEvent        EventMethod = "Debugger.breakpointResolved"
	BreakpointHitCountChangedEvent EventMethod = "Debugger.breakpointHitCountChanged"
	ScriptParsedEvent              EventMethod = "Debugger.scriptParsed"
	MessageAddedEvent              EventMethod = "Console.messageAdded"
	DetachedEvent                  EventMethod = "Inspector.detached"
)

// SessionState 调试会话握手状态
type SessionState string

const (
	// Uninitialized 还没有收到 enable
	Uninitialized SessionState = "uninitialized"
	// AwaitingFirstConfig 客户端可以提交断点、异常过滤等配置
	AwaitingFirstConfig SessionState = "awaitingFirstConfig"
	// Starting 正在执行启动流程
	Starting SessionState = "starting"
	// Running 启动流程已完成
	Running SessionState = "running"
	// Terminated 调试结束
	Terminated SessionState = "terminated"
)

// ThreadState 线程状态
type ThreadState string

const (
	ThreadRunning ThreadState = "running"
	ThreadPaused  ThreadState = "paused"
)

// PauseOnExceptionsState 异常暂停的类型
type PauseOnExceptionsState string

const (
	PauseOnNoExceptions       PauseOnExceptionsState = "none"
	PauseOnUncaughtExceptions PauseOnExceptionsState = "uncaught"
	PauseOnAllExceptions      PauseOnExceptionsState = "all"
)

// StopReason
const (
	// InitialBreakReason enable 之后合成的 paused 事件的原因
	InitialBreakReason = "initial break"
)

// StartRequest 启动被调试程序的方式
type StartRequest string

const (
	LaunchRequest StartRequest = "launch"
	AttachRequest StartRequest = "attach"
)

// ScopeType 作用域类型
type ScopeType string

const (
	ScopeLocal   ScopeType = "local"
	ScopeGlobal  ScopeType = "global"
	ScopeClosure ScopeType = "closure"
)

// HitCountPath 断点事件中命中次数扩展字段的路径
const HitCountPath = "body.breakpoint.hitCount"

// DetachReason
const (
	DetachTargetClosed  = "target_closed"
	DetachAdapterExited = "adapter_exited"
)
