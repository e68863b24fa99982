package adapter

import "github.com/google/go-dap"

// reverseRequestErrorID 拒绝适配器反向请求时的错误码
const reverseRequestErrorID = 12345

func newRequest(command string) dap.Request {
	return dap.Request{
		ProtocolMessage: dap.ProtocolMessage{
			Seq:  0,
			Type: "request",
		},
		Command: command,
	}
}

func newResponse(requestSeq int, command string) dap.Response {
	return dap.Response{
		ProtocolMessage: dap.ProtocolMessage{
			Seq:  0,
			Type: "response",
		},
		Command:    command,
		RequestSeq: requestSeq,
		Success:    true,
	}
}

func newErrorResponse(requestSeq int, command string, message string) *dap.ErrorResponse {
	er := &dap.ErrorResponse{}
	er.Response = newResponse(requestSeq, command)
	er.Success = false
	er.Message = message
	er.Body.Error = &dap.ErrorMessage{}
	er.Body.Error.Format = message
	er.Body.Error.Id = reverseRequestErrorID
	return er
}

// continueToLocationRequest 运行到指定位置，适配器的扩展请求
type continueToLocationRequest struct {
	dap.Request

	Arguments continueToLocationArguments `json:"arguments"`
}

type continueToLocationArguments struct {
	ThreadId int        `json:"threadId"`
	Source   dap.Source `json:"source"`
	Line     int        `json:"line"`
	Column   int        `json:"column,omitempty"`
}
