package protocol

import "fmt"

// Response 命令的应答，Result 和 Error 只会有一个
type Response struct {
	ID     int         `json:"id"`
	Result interface{} `json:"result,omitempty"`
	Error  interface{} `json:"error,omitempty"`
}

// ErrorBody 命令执行失败时的 error
type ErrorBody struct {
	Message string `json:"message"`
}

// Empty 只需要应答的命令的 result
type Empty struct{}

func NewResponse(id int, result interface{}) *Response {
	if result == nil {
		result = Empty{}
	}
	return &Response{ID: id, Result: result}
}

func NewErrorResponse(id int, message string) *Response {
	return &Response{ID: id, Error: &ErrorBody{Message: message}}
}

// NewUnknownCommandResponse 未知命令的 error 是一个字符串
func NewUnknownCommandResponse(id int, method string) *Response {
	return &Response{ID: id, Error: fmt.Sprintf("Unknown command: %s", method)}
}

// SetBreakpointByURLResult 添加断点的结果
type SetBreakpointByURLResult struct {
	BreakpointID string     `json:"breakpointId"`
	Locations    []Location `json:"locations"`
	Resolved     bool       `json:"resolved"`
}

type GetScriptSourceResult struct {
	ScriptSource string `json:"scriptSource"`
}

type GetThreadStackResult struct {
	CallFrames []CallFrame `json:"callFrames"`
}

// EvaluateResult 表达式计算结果
type EvaluateResult struct {
	Result    RemoteObject `json:"result"`
	WasThrown bool         `json:"wasThrown"`
}

type GetPropertiesResult struct {
	Result []PropertyDescriptor `json:"result"`
}
