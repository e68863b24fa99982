package adapter

import (
	"context"
	"encoding/json"

	"github.com/google/go-dap"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// Initialize 协商适配器的能力，返回的能力会被保存
func (c *Client) Initialize(ctx context.Context, clientID string, adapterID string) (*dap.Capabilities, error) {
	request := &dap.InitializeRequest{
		Request: newRequest("initialize"),
		Arguments: dap.InitializeRequestArguments{
			ClientID:             clientID,
			ClientName:           clientID,
			AdapterID:            adapterID,
			Locale:               "en-US",
			LinesStartAt1:        true,
			ColumnsStartAt1:      true,
			PathFormat:           "path",
			SupportsVariableType: true,
		},
	}
	response := &dap.InitializeResponse{}
	if err := c.call(ctx, request, response); err != nil {
		return nil, err
	}
	capabilities := response.Body
	c.capabilitiesLock.Lock()
	c.capabilities = &capabilities
	c.capabilitiesLock.Unlock()
	logrus.Infof("[AdapterClient] initialized, supportsConfigurationDone = %v", capabilities.SupportsConfigurationDoneRequest)
	return &capabilities, nil
}

// Capabilities initialize 之前返回nil
func (c *Client) Capabilities() *dap.Capabilities {
	c.capabilitiesLock.RLock()
	defer c.capabilitiesLock.RUnlock()
	return c.capabilities
}

func (c *Client) Launch(ctx context.Context, args json.RawMessage) error {
	return c.call(ctx, &dap.LaunchRequest{Request: newRequest("launch"), Arguments: args}, nil)
}

func (c *Client) Attach(ctx context.Context, args json.RawMessage) error {
	return c.call(ctx, &dap.AttachRequest{Request: newRequest("attach"), Arguments: args}, nil)
}

func (c *Client) SetBreakpoints(ctx context.Context, args dap.SetBreakpointsArguments) ([]dap.Breakpoint, error) {
	response := &dap.SetBreakpointsResponse{}
	err := c.call(ctx, &dap.SetBreakpointsRequest{Request: newRequest("setBreakpoints"), Arguments: args}, response)
	if err != nil {
		return nil, err
	}
	return response.Body.Breakpoints, nil
}

func (c *Client) SetExceptionBreakpoints(ctx context.Context, filters []string) error {
	request := &dap.SetExceptionBreakpointsRequest{
		Request:   newRequest("setExceptionBreakpoints"),
		Arguments: dap.SetExceptionBreakpointsArguments{Filters: filters},
	}
	return c.call(ctx, request, nil)
}

func (c *Client) ConfigurationDone(ctx context.Context) error {
	return c.call(ctx, &dap.ConfigurationDoneRequest{Request: newRequest("configurationDone")}, nil)
}

func (c *Client) Threads(ctx context.Context) ([]dap.Thread, error) {
	response := &dap.ThreadsResponse{}
	if err := c.call(ctx, &dap.ThreadsRequest{Request: newRequest("threads")}, response); err != nil {
		return nil, err
	}
	return response.Body.Threads, nil
}

func (c *Client) Pause(ctx context.Context, threadID int) error {
	request := &dap.PauseRequest{Request: newRequest("pause"), Arguments: dap.PauseArguments{ThreadId: threadID}}
	return c.call(ctx, request, nil)
}

// Continue 返回是否所有线程都继续执行了，响应中没有 allThreadsContinued 时表示全部继续执行
func (c *Client) Continue(ctx context.Context, threadID int) (bool, error) {
	request := &dap.ContinueRequest{Request: newRequest("continue"), Arguments: dap.ContinueArguments{ThreadId: threadID}}
	raw, err := c.callRaw(ctx, request)
	if err != nil {
		return false, err
	}
	allThreadsContinued := gjson.GetBytes(raw, "body.allThreadsContinued")
	if !allThreadsContinued.Exists() {
		return true, nil
	}
	return allThreadsContinued.Bool(), nil
}

func (c *Client) Next(ctx context.Context, threadID int) error {
	request := &dap.NextRequest{Request: newRequest("next"), Arguments: dap.NextArguments{ThreadId: threadID}}
	return c.call(ctx, request, nil)
}

func (c *Client) StepIn(ctx context.Context, threadID int) error {
	request := &dap.StepInRequest{Request: newRequest("stepIn"), Arguments: dap.StepInArguments{ThreadId: threadID}}
	return c.call(ctx, request, nil)
}

func (c *Client) StepOut(ctx context.Context, threadID int) error {
	request := &dap.StepOutRequest{Request: newRequest("stepOut"), Arguments: dap.StepOutArguments{ThreadId: threadID}}
	return c.call(ctx, request, nil)
}

func (c *Client) ContinueToLocation(ctx context.Context, threadID int, source dap.Source, line int, column int) error {
	request := &continueToLocationRequest{
		Request: newRequest("continueToLocation"),
		Arguments: continueToLocationArguments{
			ThreadId: threadID,
			Source:   source,
			Line:     line,
			Column:   column,
		},
	}
	return c.call(ctx, request, nil)
}

func (c *Client) StackTrace(ctx context.Context, threadID int) ([]dap.StackFrame, error) {
	request := &dap.StackTraceRequest{Request: newRequest("stackTrace"), Arguments: dap.StackTraceArguments{ThreadId: threadID}}
	response := &dap.StackTraceResponse{}
	if err := c.call(ctx, request, response); err != nil {
		return nil, err
	}
	return response.Body.StackFrames, nil
}

func (c *Client) Scopes(ctx context.Context, frameID int) ([]dap.Scope, error) {
	request := &dap.ScopesRequest{Request: newRequest("scopes"), Arguments: dap.ScopesArguments{FrameId: frameID}}
	response := &dap.ScopesResponse{}
	if err := c.call(ctx, request, response); err != nil {
		return nil, err
	}
	return response.Body.Scopes, nil
}

func (c *Client) Variables(ctx context.Context, reference int) ([]dap.Variable, error) {
	request := &dap.VariablesRequest{Request: newRequest("variables"), Arguments: dap.VariablesArguments{VariablesReference: reference}}
	response := &dap.VariablesResponse{}
	if err := c.call(ctx, request, response); err != nil {
		return nil, err
	}
	return response.Body.Variables, nil
}

func (c *Client) Evaluate(ctx context.Context, args dap.EvaluateArguments) (*dap.EvaluateResponseBody, error) {
	response := &dap.EvaluateResponse{}
	if err := c.call(ctx, &dap.EvaluateRequest{Request: newRequest("evaluate"), Arguments: args}, response); err != nil {
		return nil, err
	}
	return &response.Body, nil
}
