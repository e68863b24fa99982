package utils

import (
	"sync"

	"github.com/fansqz/go-debug-translator/constants"
)

// StatusManager 记录调试会话的握手状态
// 状态只会被 translator 的 actor 修改，但是可以被 server 等其他协程读取
type StatusManager struct {
	lock   sync.RWMutex
	status constants.SessionState
}

func NewStatusManager() *StatusManager {
	return &StatusManager{
		status: constants.Uninitialized,
	}
}

func (s *StatusManager) Set(status constants.SessionState) {
	defer s.lock.Unlock()
	s.lock.Lock()
	s.status = status
}

func (s *StatusManager) Get() constants.SessionState {
	defer s.lock.RUnlock()
	s.lock.RLock()
	return s.status
}

func (s *StatusManager) Is(statusList ...constants.SessionState) bool {
	defer s.lock.RUnlock()
	s.lock.RLock()
	for _, status := range statusList {
		if s.status == status {
			return true
		}
	}
	return false
}
