package filecache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	e "github.com/fansqz/go-debug-translator/error"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Registry 记录可以被客户端读取的文件，scriptId 就是清理以后的文件路径
// 文件内容在第一次读取以后缓存
type Registry struct {
	lock    sync.RWMutex
	files   map[string]bool
	sources map[string]string
	group   singleflight.Group
}

func NewRegistry() *Registry {
	return &Registry{
		files:   make(map[string]bool),
		sources: make(map[string]string),
	}
}

// RegisterFile 注册文件，重复注册返回相同的 scriptId
func (r *Registry) RegisterFile(_ context.Context, path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: empty path", e.ErrInvalidParams)
	}
	scriptID := filepath.Clean(path)
	r.lock.Lock()
	defer r.lock.Unlock()
	if !r.files[scriptID] {
		logrus.Debugf("[FileRegistry] register %s", scriptID)
		r.files[scriptID] = true
	}
	return scriptID, nil
}

// GetFileSource 读取已注册文件的内容
func (r *Registry) GetFileSource(_ context.Context, scriptID string) (string, error) {
	r.lock.RLock()
	registered := r.files[scriptID]
	source, cached := r.sources[scriptID]
	r.lock.RUnlock()
	if !registered {
		return "", fmt.Errorf("%w: %s", e.ErrScriptNotFound, scriptID)
	}
	if cached {
		return source, nil
	}
	// 同一个文件同时只读取一次
	value, err, _ := r.group.Do(scriptID, func() (interface{}, error) {
		data, err := os.ReadFile(scriptID)
		if err != nil {
			logrus.Warnf("[FileRegistry] read %s fail, err = %v", scriptID, err)
			return nil, err
		}
		r.lock.Lock()
		r.sources[scriptID] = string(data)
		r.lock.Unlock()
		return string(data), nil
	})
	if err != nil {
		return "", err
	}
	return value.(string), nil
}

// Files 已注册的文件
func (r *Registry) Files() []string {
	r.lock.RLock()
	defer r.lock.RUnlock()
	answer := make([]string, 0, len(r.files))
	for scriptID := range r.files {
		answer = append(answer, scriptID)
	}
	return answer
}
