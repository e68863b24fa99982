package translator

import (
	"context"
	"strings"

	"github.com/fansqz/go-debug-translator/constants"
	"github.com/fansqz/go-debug-translator/protocol"
	"github.com/google/go-dap"
	"github.com/sirupsen/logrus"
)

// loadCallFrames 获取线程的栈帧，每个栈帧单独请求一次作用域
func (t *Translator) loadCallFrames(ctx context.Context, threadID int) ([]protocol.CallFrame, error) {
	frames, err := t.session.StackTrace(ctx, threadID)
	if err != nil {
		logrus.Errorf("[Translator] stack trace fail, threadID = %d, err = %v", threadID, err)
		return nil, err
	}
	answer := make([]protocol.CallFrame, 0, len(frames))
	for _, frame := range frames {
		answer = append(answer, t.convertFrame(ctx, frame))
	}
	return answer, nil
}

func (t *Translator) convertFrame(ctx context.Context, frame dap.StackFrame) protocol.CallFrame {
	callFrame := protocol.CallFrame{
		CallFrameID:  encodeHandle(frameHandle, frame.Id),
		FunctionName: frame.Name,
		Location: protocol.Location{
			LineNumber:   zeroBased(frame.Line),
			ColumnNumber: zeroBased(frame.Column),
		},
		ScopeChain: []protocol.Scope{},
		This:       protocol.RemoteObject{Type: "undefined"},
	}
	if frame.Source != nil && frame.Source.Path != "" {
		callFrame.Location.ScriptID = t.registerFile(ctx, frame.Source.Path)
		callFrame.URL = pathToURL(frame.Source.Path)
		callFrame.HasSource = callFrame.Location.ScriptID != ""
	}
	scopes, err := t.session.Scopes(ctx, frame.Id)
	if err != nil {
		logrus.Warnf("[Translator] scopes fail, frameID = %d, err = %v", frame.Id, err)
		return callFrame
	}
	for _, scope := range scopes {
		callFrame.ScopeChain = append(callFrame.ScopeChain, convertScope(scope))
	}
	return callFrame
}

func convertScope(scope dap.Scope) protocol.Scope {
	return protocol.Scope{
		Type: string(scopeType(scope)),
		Name: scope.Name,
		Object: protocol.RemoteObject{
			Type:        "object",
			ClassName:   "Object",
			Description: scope.Name,
			ObjectID:    encodeHandle(variablesHandle, scope.VariablesReference),
		},
	}
}

func scopeType(scope dap.Scope) constants.ScopeType {
	hint := strings.ToLower(scope.PresentationHint + " " + scope.Name)
	switch {
	case strings.Contains(hint, "global"):
		return constants.ScopeGlobal
	case strings.Contains(hint, "closure"):
		return constants.ScopeClosure
	default:
		return constants.ScopeLocal
	}
}

// registerFile 注册文件，新注册的文件会发送 scriptParsed 事件
func (t *Translator) registerFile(ctx context.Context, path string) string {
	if scriptID, ok := t.scripts[path]; ok {
		return scriptID
	}
	scriptID, err := t.files.RegisterFile(ctx, path)
	if err != nil {
		logrus.Warnf("[Translator] register file fail, path = %s, err = %v", path, err)
		return ""
	}
	t.scripts[path] = scriptID
	t.scriptPaths[scriptID] = path
	t.emit(constants.ScriptParsedEvent, &protocol.ScriptParsedEvent{ScriptID: scriptID, URL: pathToURL(path)})
	return scriptID
}

// scriptPath 根据 scriptId 找到文件路径，未知的 scriptId 当作url处理
func (t *Translator) scriptPath(scriptID string) (string, error) {
	if path, ok := t.scriptPaths[scriptID]; ok {
		return path, nil
	}
	return urlToPath(scriptID)
}

func zeroBased(n int) int {
	if n > 0 {
		return n - 1
	}
	return 0
}
