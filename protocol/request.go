package protocol

import (
	"encoding/json"

	"github.com/fansqz/go-debug-translator/constants"
)

// Command 客户端发送的一条命令
type Command struct {
	// 请求序列号
	ID     int             `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// ParseParams 解析命令参数，没有参数时保持零值
func (c *Command) ParseParams(v interface{}) error {
	if len(c.Params) == 0 {
		return nil
	}
	return json.Unmarshal(c.Params, v)
}

// SetBreakpointByURLParams 添加断点，lineNumber 从0开始
type SetBreakpointByURLParams struct {
	URL          string `json:"url"`
	LineNumber   int    `json:"lineNumber"`
	ColumnNumber int    `json:"columnNumber,omitempty"`
	Condition    string `json:"condition,omitempty"`
}

// RemoveBreakpointParams 移除断点
type RemoveBreakpointParams struct {
	BreakpointID string `json:"breakpointId"`
}

// SetPauseOnExceptionsParams 异常断点
type SetPauseOnExceptionsParams struct {
	State constants.PauseOnExceptionsState `json:"state"`
}

// ContinueToLocationParams 运行到某个位置
type ContinueToLocationParams struct {
	Location Location `json:"location"`
}

// GetScriptSourceParams 读取文件内容
type GetScriptSourceParams struct {
	ScriptID string `json:"scriptId"`
}

// GetThreadStackParams 获取线程栈帧
type GetThreadStackParams struct {
	ThreadID int `json:"threadId"`
}

// EvaluateOnCallFrameParams 在某个栈帧上计算表达式
type EvaluateOnCallFrameParams struct {
	CallFrameID string `json:"callFrameId"`
	Expression  string `json:"expression"`
}

// EvaluateParams 全局计算表达式
type EvaluateParams struct {
	Expression string `json:"expression"`
}

// GetPropertiesParams 展开对象
type GetPropertiesParams struct {
	ObjectID      string `json:"objectId"`
	OwnProperties bool   `json:"ownProperties,omitempty"`
}
