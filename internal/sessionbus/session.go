package sessionbus

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/decred/slog"
)

const (
	writeTimeout = 10 * time.Second
	pingInterval = 30 * time.Second
	pongWait     = 60 * time.Second
)

// Session is one authenticated-or-anonymous WebSocket connection, spec
// §4.8. Each Session owns a bounded outbound queue and a dedicated writer
// goroutine so inbound dispatch never blocks on a slow client; a client
// that falls far enough behind to fill the queue is disconnected rather
// than allowed to back up publishers (spec §9, backpressure by eviction).
type Session struct {
	ID string

	conn *websocket.Conn
	out  *outboundQueue

	mu            sync.Mutex
	authenticated bool
	accountID     int64

	log slog.Logger

	writerDone chan struct{}
}

func newSession(id string, conn *websocket.Conn, log slog.Logger) *Session {
	return &Session{
		ID:         id,
		conn:       conn,
		out:        newOutboundQueue(defaultQueueCapacity),
		log:        log,
		writerDone: make(chan struct{}),
	}
}

// authenticate binds accountID to the session once its token has been
// validated, per spec §4.8 step 2.
func (s *Session) authenticate(accountID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authenticated = true
	s.accountID = accountID
}

// Authenticated reports whether the session carried a valid bearer token.
func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

// AccountID returns the account bound to this session, or 0 if anonymous.
func (s *Session) AccountID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accountID
}

// send enqueues a message for delivery without blocking the caller. If
// the session's outbound queue is full, the session is too slow to keep
// up and is disconnected instead (spec §9, backpressure by eviction).
func (s *Session) send(msg []byte) {
	if !s.out.push(msg) {
		s.log.Warnf("session %s outbound queue full, disconnecting", s.ID)
		s.conn.Close()
	}
}

// writerLoop forwards queued outbound frames to the socket until the
// queue is closed or a write fails, satisfying spec §4.8 step 3.
func (s *Session) writerLoop() {
	defer close(s.writerDone)

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	msgCh := make(chan []byte)
	stopPump := make(chan struct{})
	go func() {
		for {
			msg, ok := s.out.pop()
			if !ok {
				close(msgCh)
				return
			}
			select {
			case msgCh <- msg:
			case <-stopPump:
				return
			}
		}
	}()
	defer close(stopPump)

	for {
		select {
		case msg, ok := <-msgCh:
			if !ok {
				return
			}
			s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// close tears down the outbound queue and underlying socket, then waits
// for the writer goroutine to exit.
func (s *Session) close() {
	s.out.close()
	s.conn.Close()
	<-s.writerDone
}
