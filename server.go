package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/fansqz/go-debug-translator/protocol"
	"github.com/fansqz/go-debug-translator/utils"
	"github.com/fansqz/go-debug-translator/utils/gosync"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	protocolVersion = "1.3"
	pagePathPrefix  = "/devtools/page/"
)

// Target /json/list 返回的调试目标
type Target struct {
	Description          string `json:"description"`
	DevtoolsFrontendURL  string `json:"devtoolsFrontendUrl"`
	ID                   string `json:"id"`
	Title                string `json:"title"`
	Type                 string `json:"type"`
	URL                  string `json:"url"`
	WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
}

// Server 调试前端通过websocket连接，同一时间只允许一个前端
type Server struct {
	targetID string
	title    string
	dispatch func(cmd *protocol.Command)
	upgrader websocket.Upgrader

	lock    sync.Mutex
	session *clientSession
}

func NewServer(targetID string, title string, dispatch func(cmd *protocol.Command)) *Server {
	return &Server{
		targetID: targetID,
		title:    title,
		dispatch: dispatch,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/json/version", s.handleVersion)
	mux.HandleFunc("/json/list", s.handleList)
	mux.HandleFunc("/json", s.handleList)
	mux.HandleFunc(pagePathPrefix, s.handleWebSocket)
	return mux
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{
		"Browser":          fmt.Sprintf("go-debug-translator/%s", Version),
		"Protocol-Version": protocolVersion,
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	address := r.Host + pagePathPrefix + s.targetID
	writeJSON(w, []Target{{
		Description:          "go-debug-translator instance",
		DevtoolsFrontendURL:  "devtools://devtools/bundled/js_app.html?experiments=true&v8only=true&ws=" + address,
		ID:                   s.targetID,
		Title:                s.title,
		Type:                 "node",
		URL:                  "file://",
		WebSocketDebuggerURL: "ws://" + address,
	}})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if strings.TrimPrefix(r.URL.Path, pagePathPrefix) != s.targetID {
		http.NotFound(w, r)
		return
	}
	s.lock.Lock()
	busy := s.session != nil
	s.lock.Unlock()
	if busy {
		http.Error(w, "target already has a client attached", http.StatusConflict)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.Warnf("[Server] upgrade fail, err = %v", err)
		return
	}
	session := newClientSession(utils.GetUUID(), conn)
	s.lock.Lock()
	if s.session != nil {
		s.lock.Unlock()
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "busy"))
		_ = conn.Close()
		return
	}
	s.session = session
	s.lock.Unlock()
	logrus.Infof("[Server] client %s connected from %s", session.id, r.RemoteAddr)

	gosync.Go(r.Context(), func(context.Context) {
		session.writePump()
	})
	session.readPump(s.dispatch)

	s.lock.Lock()
	if s.session == session {
		s.session = nil
	}
	s.lock.Unlock()
	logrus.Infof("[Server] client %s disconnected", session.id)
}

// Send 把应答或者事件发送给当前连接的前端，没有前端时丢弃
func (s *Server) Send(message interface{}) {
	data, err := encodeMessage(message)
	if err != nil {
		logrus.Errorf("marshal message fail, err = %v", err)
		return
	}
	s.lock.Lock()
	session := s.session
	s.lock.Unlock()
	if session == nil || !session.sendMessage(data) {
		logrus.Debugf("[Server] no client attached, drop message %s", data)
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.Warnf("[Server] write response fail, err = %v", err)
	}
}
