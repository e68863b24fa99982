package main

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/fansqz/go-debug-translator/protocol"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	// 写消息的超时时间
	writeWait = 10 * time.Second

	// 等待 pong 的时间
	pongWait = 60 * time.Second

	// 发送 ping 的周期，必须小于 pongWait
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 4 * 1024 * 1024

	sendBufferSize = 256
)

// clientSession 一个调试前端的websocket连接
type clientSession struct {
	id   string
	conn *websocket.Conn
	send chan []byte

	closeOnce sync.Once
	done      chan struct{}
}

func newClientSession(id string, conn *websocket.Conn) *clientSession {
	return &clientSession{
		id:   id,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		done: make(chan struct{}),
	}
}

// readPump 读取客户端的命令，连接断开时返回
func (c *clientSession) readPump(dispatch func(cmd *protocol.Command)) {
	defer c.close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logrus.Warnf("[Server] client %s read error, err = %v", c.id, err)
			}
			return
		}
		cmd, err := decodeCommand(message)
		if err != nil {
			logrus.Warnf("parse request error, err = %v", err)
			continue
		}
		logrus.Debugf("[Server] client %s command %d %s", c.id, cmd.ID, cmd.Method)
		dispatch(cmd)
	}
}

// writePump 把消息写到连接，同一时间只有这一个协程写
func (c *clientSession) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logrus.Warnf("[Server] client %s write error, err = %v", c.id, err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// sendMessage 发送一条消息，连接断开以后返回 false
func (c *clientSession) sendMessage(data []byte) bool {
	select {
	case c.send <- data:
		return true
	case <-c.done:
		return false
	}
}

func (c *clientSession) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

func decodeCommand(data []byte) (*protocol.Command, error) {
	cmd := &protocol.Command{}
	if err := json.Unmarshal(data, cmd); err != nil {
		return nil, err
	}
	return cmd, nil
}

func encodeMessage(message interface{}) ([]byte, error) {
	return json.Marshal(message)
}
