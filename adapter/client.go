package adapter

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"

	e "github.com/fansqz/go-debug-translator/error"
	"github.com/google/go-dap"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// EventHandler 适配器事件回调，raw 是事件的原始json
type EventHandler func(event dap.EventMessage, raw []byte)

// ExitHandler 适配器连接断开时回调
type ExitHandler func(err error)

// Client 调试适配器客户端
// 每个请求都会等待对应的响应，接收协程不会因为回调阻塞
type Client struct {
	conn   io.ReadWriteCloser
	reader *bufio.Reader

	seq       int64
	writeLock sync.Mutex

	pendingLock sync.Mutex
	pending     map[int]chan *response
	closed      bool

	capabilitiesLock sync.RWMutex
	capabilities     *dap.Capabilities

	onEvent EventHandler
	onExit  ExitHandler

	closeOnce sync.Once
	done      chan struct{}
	err       error
}

// response 适配器的响应
type response struct {
	raw     []byte
	success bool
	message string
	err     error
}

// Dial 通过tcp连接适配器
func Dial(ctx context.Context, address string) (*Client, error) {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("dial adapter %s: %w", address, err)
	}
	logrus.Infof("[AdapterClient] connected to %s", address)
	return NewClient(conn), nil
}

func NewClient(conn io.ReadWriteCloser) *Client {
	return &Client{
		conn:    conn,
		reader:  bufio.NewReader(conn),
		pending: make(map[int]chan *response),
		done:    make(chan struct{}),
	}
}

// Start 启动接收协程，需要在发送请求之前调用
func (c *Client) Start(onEvent EventHandler, onExit ExitHandler) {
	c.onEvent = onEvent
	c.onExit = onExit
	go c.receiveLoop()
}

// Done 连接断开以后关闭
func (c *Client) Done() <-chan struct{} {
	return c.done
}

func (c *Client) Close() error {
	err := c.conn.Close()
	c.shutdown(e.ErrAdapterClosed)
	return err
}

func (c *Client) receiveLoop() {
	for {
		raw, err := dap.ReadBaseMessage(c.reader)
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = e.ErrAdapterClosed
			}
			c.shutdown(err)
			return
		}
		c.handleMessage(raw)
	}
}

// shutdown 结束所有等待中的请求
func (c *Client) shutdown(err error) {
	c.closeOnce.Do(func() {
		logrus.Infof("[AdapterClient] shutdown, err = %v", err)
		c.pendingLock.Lock()
		c.closed = true
		c.err = err
		for seq, ch := range c.pending {
			ch <- &response{err: fmt.Errorf("%w: %v", e.ErrAdapterClosed, err)}
			delete(c.pending, seq)
		}
		c.pendingLock.Unlock()
		close(c.done)
		if c.onExit != nil {
			c.onExit(err)
		}
	})
}

func (c *Client) handleMessage(raw []byte) {
	var base struct {
		Seq        int    `json:"seq"`
		Type       string `json:"type"`
		Command    string `json:"command"`
		RequestSeq int    `json:"request_seq"`
		Success    bool   `json:"success"`
		Message    string `json:"message"`
	}
	if err := json.Unmarshal(raw, &base); err != nil {
		logrus.Warnf("[AdapterClient] parse message error, err = %v", err)
		return
	}
	switch base.Type {
	case "response":
		message := base.Message
		if format := gjson.GetBytes(raw, "body.error.format"); format.Exists() && format.String() != "" {
			message = format.String()
		}
		c.handleResponse(base.RequestSeq, &response{raw: raw, success: base.Success, message: message})
	case "event":
		c.handleEvent(raw)
	case "request":
		c.handleReverseRequest(base.Seq, base.Command)
	default:
		logrus.Warnf("[AdapterClient] unknown message type %q", base.Type)
	}
}

func (c *Client) handleResponse(requestSeq int, resp *response) {
	c.pendingLock.Lock()
	ch, ok := c.pending[requestSeq]
	delete(c.pending, requestSeq)
	c.pendingLock.Unlock()
	if !ok {
		logrus.Warnf("[AdapterClient] response for unknown request %d", requestSeq)
		return
	}
	ch <- resp
}

func (c *Client) handleEvent(raw []byte) {
	message, err := dap.DecodeProtocolMessage(raw)
	var fieldErr *dap.DecodeProtocolMessageFieldError
	if errors.As(err, &fieldErr) {
		// 未知的事件按照通用事件处理
		event := &dap.Event{}
		if err = json.Unmarshal(raw, event); err == nil {
			message = event
		}
	}
	if err != nil {
		logrus.Warnf("[AdapterClient] decode event error, err = %v", err)
		return
	}
	event, ok := message.(dap.EventMessage)
	if !ok || c.onEvent == nil {
		return
	}
	c.onEvent(event, raw)
}

// handleReverseRequest 不支持适配器的反向请求，例如 runInTerminal
func (c *Client) handleReverseRequest(seq int, command string) {
	logrus.Warnf("[AdapterClient] reverse request %s is not supported", command)
	if err := c.write(newErrorResponse(seq, command, fmt.Sprintf("%s is not supported", command))); err != nil {
		logrus.Errorf("[AdapterClient] send error response fail, err = %v", err)
	}
}

func (c *Client) write(message dap.Message) error {
	c.writeLock.Lock()
	defer c.writeLock.Unlock()
	return dap.WriteProtocolMessage(c.conn, message)
}

// call 发送请求并等待响应，result 不为空时把响应解析到 result
func (c *Client) call(ctx context.Context, request dap.RequestMessage, result dap.ResponseMessage) error {
	raw, err := c.callRaw(ctx, request)
	if err != nil || result == nil {
		return err
	}
	if err = json.Unmarshal(raw, result); err != nil {
		return fmt.Errorf("decode %s response: %w", request.GetRequest().Command, err)
	}
	return nil
}

// callRaw 发送请求并返回成功响应的原始json
func (c *Client) callRaw(ctx context.Context, request dap.RequestMessage) ([]byte, error) {
	req := request.GetRequest()
	req.Seq = int(atomic.AddInt64(&c.seq, 1))

	ch := make(chan *response, 1)
	c.pendingLock.Lock()
	if c.closed {
		err := c.err
		c.pendingLock.Unlock()
		return nil, fmt.Errorf("%w: %v", e.ErrAdapterClosed, err)
	}
	c.pending[req.Seq] = ch
	c.pendingLock.Unlock()

	if err := c.write(request); err != nil {
		c.cancel(req.Seq)
		return nil, fmt.Errorf("send %s request: %w", req.Command, err)
	}

	select {
	case resp := <-ch:
		if resp.err != nil {
			return nil, resp.err
		}
		if !resp.success {
			return nil, &e.AdapterError{Command: req.Command, Message: resp.message}
		}
		return resp.raw, nil
	case <-ctx.Done():
		c.cancel(req.Seq)
		return nil, ctx.Err()
	}
}

func (c *Client) cancel(seq int) {
	c.pendingLock.Lock()
	delete(c.pending, seq)
	c.pendingLock.Unlock()
}
