package translator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/emirpasic/gods/maps/treemap"
	e "github.com/fansqz/go-debug-translator/error"
	"github.com/google/go-dap"
	"github.com/sirupsen/logrus"
)

// Breakpoint 缓存的断点，ID 是返回给客户端的断点id
type Breakpoint struct {
	ID        int
	AdapterID int
	Path      string
	ScriptID  string
	// RequestedLine 客户端请求的行号，重发断点时使用，从1开始
	RequestedLine int
	// Line 适配器调整以后的行号，从1开始
	Line      int
	Column    int
	Condition string
	Resolved  bool
}

func (b *Breakpoint) descriptor() BreakpointDescriptor {
	return BreakpointDescriptor{
		ID:        b.ID,
		Line:      b.RequestedLine,
		Column:    b.Column,
		Condition: b.Condition,
	}
}

// BreakpointDescriptor 设置断点的描述，ID 为0表示没有指定id
type BreakpointDescriptor struct {
	ID        int
	Line      int
	Column    int
	Condition string
}

// registerFunc 注册文件，返回 scriptId
type registerFunc func(ctx context.Context, path string) string

// BreakpointManager 断点管理
// 适配器没有单独删除断点的请求，每次都需要把文件的全部断点发送给适配器
type BreakpointManager struct {
	session  AdapterSession
	register registerFunc
	// int -> *Breakpoint
	breakpoints *treemap.Map
	lastID      int
}

func NewBreakpointManager(session AdapterSession, register registerFunc) *BreakpointManager {
	return &BreakpointManager{
		session:     session,
		register:    register,
		breakpoints: treemap.NewWithIntComparator(),
	}
}

// SetFileBreakpoints 给文件添加断点，返回的断点与 requested 一一对应
// 发送给适配器的是文件已有的断点加上新请求的断点
func (m *BreakpointManager) SetFileBreakpoints(ctx context.Context, path string, requested []BreakpointDescriptor) ([]*Breakpoint, error) {
	scriptID := m.register(ctx, path)
	cached := m.FileBreakpoints(path)

	// 没有指定id的断点，如果同一行已经有断点，沿用原来的id
	fresh := make([]BreakpointDescriptor, 0, len(requested))
	slots := make([]int, len(requested))
	seen := make(map[string]int, len(requested))
	replaced := make(map[int]bool, len(requested))
	for i, d := range requested {
		if d.ID == 0 {
			if bp := findByLine(cached, d.Line); bp != nil {
				d.ID = bp.ID
			}
		}
		key := fmt.Sprintf("line:%d", d.Line)
		if d.ID != 0 {
			key = fmt.Sprintf("id:%d", d.ID)
			replaced[d.ID] = true
		}
		if j, ok := seen[key]; ok {
			fresh[j] = d
			slots[i] = j
			continue
		}
		seen[key] = len(fresh)
		slots[i] = len(fresh)
		fresh = append(fresh, d)
	}
	list := make([]BreakpointDescriptor, 0, len(cached)+len(fresh))
	for _, bp := range cached {
		if !replaced[bp.ID] {
			list = append(list, bp.descriptor())
		}
	}
	offset := len(list)
	list = append(list, fresh...)

	results, err := m.assert(ctx, path, list)
	if err != nil {
		return nil, err
	}
	stored := make([]*Breakpoint, len(list))
	for i, d := range list {
		result := results[i]
		bp := &Breakpoint{
			ID:            m.assignID(d.ID, result.Id),
			Path:          path,
			ScriptID:      scriptID,
			RequestedLine: d.Line,
			Line:          d.Line,
			Column:        d.Column,
			Condition:     d.Condition,
		}
		bp.apply(result)
		m.breakpoints.Put(bp.ID, bp)
		stored[i] = bp
	}
	answer := make([]*Breakpoint, len(requested))
	for i := range requested {
		answer[i] = stored[offset+slots[i]]
	}
	return answer, nil
}

// Remove 移除断点，断点不存在时什么也不做
// 只有适配器接受了移除以后的断点列表，才会从缓存中删除
func (m *BreakpointManager) Remove(ctx context.Context, id int) error {
	value, ok := m.breakpoints.Get(id)
	if !ok {
		logrus.Infof("[BreakpointManager] remove unknown breakpoint %d, ignored", id)
		return nil
	}
	target := value.(*Breakpoint)
	remaining := make([]*Breakpoint, 0)
	list := make([]BreakpointDescriptor, 0)
	for _, bp := range m.FileBreakpoints(target.Path) {
		if bp.ID != id {
			remaining = append(remaining, bp)
			list = append(list, bp.descriptor())
		}
	}
	results, err := m.assert(ctx, target.Path, list)
	if err != nil {
		return err
	}
	m.breakpoints.Remove(id)
	for i, bp := range remaining {
		bp.apply(results[i])
	}
	return nil
}

// ResendAll 适配器重启以后，重新发送所有文件的断点
func (m *BreakpointManager) ResendAll(ctx context.Context) error {
	var errs []error
	for _, path := range m.Paths() {
		cached := m.FileBreakpoints(path)
		list := make([]BreakpointDescriptor, len(cached))
		for i, bp := range cached {
			list[i] = bp.descriptor()
		}
		results, err := m.assert(ctx, path, list)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		for i, bp := range cached {
			bp.apply(results[i])
		}
	}
	return errors.Join(errs...)
}

// OnAdapterBreakpoint 处理适配器的 breakpoint 事件
// 返回对应的断点，以及断点是否刚刚被确认
func (m *BreakpointManager) OnAdapterBreakpoint(reason string, result dap.Breakpoint) (*Breakpoint, bool) {
	bp := m.findByAdapter(result)
	if bp == nil {
		return nil, false
	}
	if reason == "removed" {
		m.breakpoints.Remove(bp.ID)
		return bp, false
	}
	wasResolved := bp.Resolved
	bp.apply(result)
	return bp, !wasResolved && bp.Resolved
}

// FindByAdapterID 根据适配器的断点id查找断点
func (m *BreakpointManager) FindByAdapterID(adapterID int) *Breakpoint {
	if adapterID == 0 {
		return nil
	}
	for _, value := range m.breakpoints.Values() {
		if bp := value.(*Breakpoint); bp.AdapterID == adapterID {
			return bp
		}
	}
	return nil
}

func (m *BreakpointManager) Get(id int) (*Breakpoint, bool) {
	value, ok := m.breakpoints.Get(id)
	if !ok {
		return nil, false
	}
	return value.(*Breakpoint), true
}

// FileBreakpoints 文件的所有断点，按照id排序
func (m *BreakpointManager) FileBreakpoints(path string) []*Breakpoint {
	answer := make([]*Breakpoint, 0)
	for _, value := range m.breakpoints.Values() {
		if bp := value.(*Breakpoint); bp.Path == path {
			answer = append(answer, bp)
		}
	}
	return answer
}

// Paths 有断点的文件
func (m *BreakpointManager) Paths() []string {
	answer := make([]string, 0)
	seen := make(map[string]bool)
	for _, value := range m.breakpoints.Values() {
		bp := value.(*Breakpoint)
		if !seen[bp.Path] {
			seen[bp.Path] = true
			answer = append(answer, bp.Path)
		}
	}
	return answer
}

func (m *BreakpointManager) Size() int {
	return m.breakpoints.Size()
}

// assert 把文件的断点列表发送给适配器，并校验返回的数量
func (m *BreakpointManager) assert(ctx context.Context, path string, list []BreakpointDescriptor) ([]dap.Breakpoint, error) {
	args := dap.SetBreakpointsArguments{
		Source:      dap.Source{Name: filepath.Base(path), Path: path},
		Breakpoints: sourceBreakpoints(list),
	}
	results, err := m.session.SetBreakpoints(ctx, args)
	if err != nil {
		logrus.Errorf("[BreakpointManager] set breakpoints fail, path = %s, err = %v", path, err)
		return nil, err
	}
	if len(results) != len(list) {
		request, _ := json.Marshal(args)
		response, _ := json.Marshal(results)
		logrus.WithFields(logrus.Fields{
			"path":     path,
			"request":  string(request),
			"response": string(response),
		}).Errorf("[BreakpointManager] breakpoint count mismatch, expected %d, got %d", len(list), len(results))
		return nil, e.ErrBreakpointCountMismatch
	}
	return results, nil
}

// assignID 优先使用调用方指定的id，其次是适配器的id，最后使用自增id
func (m *BreakpointManager) assignID(requested int, adapterID int) int {
	if requested != 0 {
		m.observe(requested)
		return requested
	}
	if adapterID > 0 {
		if _, ok := m.breakpoints.Get(adapterID); !ok {
			m.observe(adapterID)
			return adapterID
		}
	}
	for {
		m.lastID++
		if _, ok := m.breakpoints.Get(m.lastID); !ok {
			return m.lastID
		}
	}
}

func (m *BreakpointManager) observe(id int) {
	if id > m.lastID {
		m.lastID = id
	}
}

func (m *BreakpointManager) findByAdapter(result dap.Breakpoint) *Breakpoint {
	if bp := m.FindByAdapterID(result.Id); bp != nil {
		return bp
	}
	if result.Source == nil || result.Source.Path == "" || result.Line == 0 {
		return nil
	}
	for _, bp := range m.FileBreakpoints(result.Source.Path) {
		if bp.Line == result.Line || bp.RequestedLine == result.Line {
			return bp
		}
	}
	return nil
}

func (b *Breakpoint) apply(result dap.Breakpoint) {
	if result.Id != 0 {
		b.AdapterID = result.Id
	}
	if result.Line > 0 {
		b.Line = result.Line
	}
	if result.Column > 0 {
		b.Column = result.Column
	}
	b.Resolved = result.Verified
}

func findByLine(list []*Breakpoint, line int) *Breakpoint {
	for _, bp := range list {
		if bp.RequestedLine == line {
			return bp
		}
	}
	return nil
}

func sourceBreakpoints(list []BreakpointDescriptor) []dap.SourceBreakpoint {
	answer := make([]dap.SourceBreakpoint, len(list))
	for i, d := range list {
		answer[i] = dap.SourceBreakpoint{Line: d.Line, Column: d.Column, Condition: d.Condition}
	}
	return answer
}
