package error

import (
	"errors"
	"fmt"
)

var (
	ErrNoPausedThread          = errors.New("no paused thread")
	ErrNoThread                = errors.New("no thread to pause")
	ErrSessionNotStarted       = errors.New("debug session not started")
	ErrSessionTerminated       = errors.New("debug session terminated")
	ErrBreakpointCountMismatch = errors.New("adapter returned a different number of breakpoints than requested")
	ErrInvalidHandle           = errors.New("invalid handle")
	ErrInvalidBreakpointID     = errors.New("invalid breakpoint id")
	ErrInvalidParams           = errors.New("invalid params")
	ErrAdapterClosed           = errors.New("adapter connection closed")
	ErrScriptNotFound          = errors.New("script not found")
	ErrUnsupportedPauseState   = errors.New("unsupported pause on exceptions state")
)

// AdapterError 适配器返回了 success=false 的响应
type AdapterError struct {
	Command string
	Message string
}

func (a *AdapterError) Error() string {
	return fmt.Sprintf("%s failed: %s", a.Command, a.Message)
}
