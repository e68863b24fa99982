package translator

import (
	"testing"

	"github.com/fansqz/go-debug-translator/constants"
	"github.com/google/go-dap"
	"github.com/stretchr/testify/assert"
)

func TestStampStopReason(t *testing.T) {
	quirks := NewQuirks(constants.AdapterHHVM)
	tracker := NewThreadTracker()
	tracker.Started(1, "")
	tracker.Started(2, "")

	body := dap.StoppedEventBody{Reason: "pause", ThreadId: 1}
	tracker.Stopped(body)
	quirks.AfterStopped(tracker, body)
	for _, info := range tracker.Threads() {
		assert.Equal(t, constants.ThreadPaused, info.State)
		assert.Equal(t, "pause", info.StopReason)
	}
	assert.True(t, quirks.ForwardTerminated())
	assert.True(t, quirks.ForwardTerminated())
}

func TestStampStopReasonOtherReason(t *testing.T) {
	quirks := NewQuirks(constants.AdapterHHVM)
	tracker := NewThreadTracker()
	tracker.Started(1, "")
	tracker.Started(2, "")

	body := dap.StoppedEventBody{Reason: "breakpoint", ThreadId: 1}
	tracker.Stopped(body)
	quirks.AfterStopped(tracker, body)
	info, _ := tracker.Thread(2)
	assert.Equal(t, constants.ThreadRunning, info.State)
	assert.Equal(t, "", info.StopReason)
}

func TestStampStopReasonAllThreadsStopped(t *testing.T) {
	body := dap.StoppedEventBody{Reason: "pause", AllThreadsStopped: true}

	tracker := NewThreadTracker()
	tracker.Started(1, "")
	tracker.Started(2, "")
	tracker.Stopped(body)
	NewQuirks(constants.AdapterHHVM).AfterStopped(tracker, body)
	for _, info := range tracker.Threads() {
		assert.Equal(t, "pause", info.StopReason)
	}

	// 其他适配器只有暂停线程有暂停原因
	tracker = NewThreadTracker()
	tracker.Started(1, "")
	tracker.Started(2, "")
	tracker.Stopped(body)
	NewQuirks(constants.AdapterGeneric).AfterStopped(tracker, body)
	info, _ := tracker.Thread(1)
	assert.Equal(t, "pause", info.StopReason)
	info, _ = tracker.Thread(2)
	assert.Equal(t, constants.ThreadPaused, info.State)
	assert.Equal(t, "", info.StopReason)
}

func TestDedupTerminated(t *testing.T) {
	quirks := NewQuirks(constants.AdapterPython)
	assert.True(t, quirks.ForwardTerminated())
	assert.False(t, quirks.ForwardTerminated())
	assert.False(t, quirks.ForwardTerminated())
}

func TestDefaultQuirks(t *testing.T) {
	for _, variant := range []constants.AdapterVariant{constants.AdapterGeneric, constants.AdapterDelve, constants.AdapterNode} {
		quirks := NewQuirks(variant)
		tracker := NewThreadTracker()
		tracker.Started(1, "")
		tracker.Started(2, "")
		body := dap.StoppedEventBody{Reason: "pause", ThreadId: 1}
		tracker.Stopped(body)
		quirks.AfterStopped(tracker, body)
		info, _ := tracker.Thread(2)
		assert.Equal(t, constants.ThreadRunning, info.State)
		assert.True(t, quirks.ForwardTerminated())
		assert.True(t, quirks.ForwardTerminated())
	}
}
