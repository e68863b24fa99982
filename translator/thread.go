package translator

import (
	"github.com/emirpasic/gods/maps/treemap"
	"github.com/fansqz/go-debug-translator/constants"
	"github.com/fansqz/go-debug-translator/protocol"
	"github.com/google/go-dap"
)

// ThreadInfo 线程信息
type ThreadInfo struct {
	ID         int
	Name       string
	State      constants.ThreadState
	CallFrames []protocol.CallFrame
	StopReason string
}

func (t *ThreadInfo) resume() {
	t.State = constants.ThreadRunning
	t.CallFrames = nil
	t.StopReason = ""
}

// ThreadTracker 记录线程的运行状态
// 线程按照id排序，所有线程都停止且没有指定线程时，选择id最小的线程作为暂停线程
type ThreadTracker struct {
	threads *treemap.Map // int -> *ThreadInfo

	mainThreadID   int
	hasMainThread  bool
	pausedThreadID int
	hasPaused      bool
}

func NewThreadTracker() *ThreadTracker {
	return &ThreadTracker{
		threads: treemap.NewWithIntComparator(),
	}
}

// Started 线程启动，第一个启动的线程是主线程
// 已经记录的线程只更新名称，不改变运行状态
func (t *ThreadTracker) Started(id int, name string) {
	t.ensure(id, name)
	if !t.hasMainThread {
		t.mainThreadID = id
		t.hasMainThread = true
	}
}

// Exited 线程退出，同时清理主线程和暂停线程的引用
func (t *ThreadTracker) Exited(id int) {
	t.threads.Remove(id)
	if t.hasMainThread && t.mainThreadID == id {
		t.mainThreadID = 0
		t.hasMainThread = false
	}
	if t.hasPaused && t.pausedThreadID == id {
		t.pausedThreadID = 0
		t.hasPaused = false
	}
}

// Ensure 记录适配器 threads 请求返回的线程，已有的线程只更新名称
func (t *ThreadTracker) Ensure(id int, name string) {
	t.ensure(id, name)
}

func (t *ThreadTracker) ensure(id int, name string) *ThreadInfo {
	if value, ok := t.threads.Get(id); ok {
		info := value.(*ThreadInfo)
		if name != "" {
			info.Name = name
		}
		return info
	}
	info := &ThreadInfo{ID: id, Name: name, State: constants.ThreadRunning}
	t.threads.Put(id, info)
	return info
}

// Stopped 处理 stopped 事件，返回暂停的线程
// 暂停原因只记录在暂停线程上
func (t *ThreadTracker) Stopped(body dap.StoppedEventBody) (int, bool) {
	if body.AllThreadsStopped {
		for _, value := range t.threads.Values() {
			info := value.(*ThreadInfo)
			info.State = constants.ThreadPaused
		}
		if key, value := t.threads.Min(); key != nil && body.ThreadId == 0 {
			t.pausedThreadID = key.(int)
			t.hasPaused = true
			value.(*ThreadInfo).StopReason = body.Reason
		}
	}
	if body.ThreadId != 0 {
		info := t.ensure(body.ThreadId, "")
		info.State = constants.ThreadPaused
		info.StopReason = body.Reason
		t.pausedThreadID = body.ThreadId
		t.hasPaused = true
	}
	return t.pausedThreadID, t.hasPaused
}

// StampStopReason 把暂停原因写到所有线程上
// 某些适配器会暂停所有线程，但是只标记其中一个线程
func (t *ThreadTracker) StampStopReason(reason string) {
	for _, value := range t.threads.Values() {
		info := value.(*ThreadInfo)
		info.State = constants.ThreadPaused
		info.StopReason = reason
	}
}

// Continued 处理线程继续执行，返回暂停线程是否被清除
func (t *ThreadTracker) Continued(threadID int, allThreadsContinued bool) bool {
	if allThreadsContinued {
		for _, value := range t.threads.Values() {
			value.(*ThreadInfo).resume()
		}
	} else if value, ok := t.threads.Get(threadID); ok {
		value.(*ThreadInfo).resume()
	}
	if t.hasPaused && (allThreadsContinued || t.pausedThreadID == threadID) {
		t.pausedThreadID = 0
		t.hasPaused = false
		return true
	}
	return false
}

// PausedThread 当前暂停的线程
func (t *ThreadTracker) PausedThread() (int, bool) {
	return t.pausedThreadID, t.hasPaused
}

// MainThread 主线程
func (t *ThreadTracker) MainThread() (int, bool) {
	return t.mainThreadID, t.hasMainThread
}

// PauseTarget pause 命令作用的线程：主线程，没有主线程时选择id最小的线程
func (t *ThreadTracker) PauseTarget() (int, bool) {
	if t.hasMainThread {
		return t.mainThreadID, true
	}
	if key, _ := t.threads.Min(); key != nil {
		return key.(int), true
	}
	return 0, false
}

func (t *ThreadTracker) Thread(id int) (*ThreadInfo, bool) {
	value, ok := t.threads.Get(id)
	if !ok {
		return nil, false
	}
	return value.(*ThreadInfo), true
}

// SetCallFrames 缓存暂停线程的栈帧，线程继续执行时清除
func (t *ThreadTracker) SetCallFrames(id int, frames []protocol.CallFrame) {
	if info, ok := t.Thread(id); ok && info.State == constants.ThreadPaused {
		info.CallFrames = frames
	}
}

// Threads 按照id排序的线程列表
func (t *ThreadTracker) Threads() []*ThreadInfo {
	answer := make([]*ThreadInfo, 0, t.threads.Size())
	for _, value := range t.threads.Values() {
		answer = append(answer, value.(*ThreadInfo))
	}
	return answer
}
