package app

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/manjeet0006/fullstack-chat/internal/model"
	"github.com/manjeet0006/fullstack-chat/internal/utils/log"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type (
	// Socket is the realtime transport handle: one websocket connection
	// with one handler slot per event name. Handlers run on the read
	// loop goroutine, one event at a time.
	Socket struct {
		conn *websocket.Conn

		mu       sync.Mutex
		handlers map[string]func(data json.RawMessage)
	}
)

// DialSocket connects to the ws endpoint using the session cookies held
// by the API client and starts the read loop.
func DialSocket(wsURL string, jar http.CookieJar) (*Socket, error) {
	dialer := websocket.Dialer{Jar: jar}
	conn, _, err := dialer.Dial(wsURL, nil)
	if err != nil {
		return nil, err
	}

	s := &Socket{
		conn:     conn,
		handlers: make(map[string]func(data json.RawMessage)),
	}
	go s.readLoop()
	return s, nil
}

// Subscribe installs the handler for an event name, replacing any
// previous one.
func (s *Socket) Subscribe(event string, handler func(data json.RawMessage)) {
	s.mu.Lock()
	s.handlers[event] = handler
	s.mu.Unlock()
}

// Unsubscribe removes the handler for an event name. A no-op when none
// is installed.
func (s *Socket) Unsubscribe(event string) {
	s.mu.Lock()
	delete(s.handlers, event)
	s.mu.Unlock()
}

func (s *Socket) Close() error {
	return s.conn.Close()
}

func (s *Socket) readLoop() {
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			log.Debug("socket closed", zap.Error(err))
			s.conn.Close()
			return
		}

		var event model.Event
		if err := json.Unmarshal(data, &event); err != nil {
			log.Error("decode event failed", zap.Error(err))
			continue
		}

		s.mu.Lock()
		handler := s.handlers[event.Event]
		s.mu.Unlock()

		if handler != nil {
			handler(event.Data)
		}
	}
}
