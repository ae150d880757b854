package ws

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

type tConn struct {
	in        chan []byte
	closeOnce sync.Once
	closed    chan struct{}

	mtx     sync.Mutex
	written [][]byte
	pings   int
}

func newTConn() *tConn {
	return &tConn{
		in:     make(chan []byte, 8),
		closed: make(chan struct{}),
	}
}

func (c *tConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *tConn) SetReadDeadline(time.Time) error  { return nil }
func (c *tConn) SetWriteDeadline(time.Time) error { return nil }

func (c *tConn) ReadMessage() (int, []byte, error) {
	select {
	case b := <-c.in:
		return websocket.TextMessage, b, nil
	case <-c.closed:
		return 0, nil, &websocket.CloseError{Code: websocket.CloseNormalClosure}
	}
}

func (c *tConn) WriteMessage(_ int, b []byte) error {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.written = append(c.written, b)
	return nil
}

func (c *tConn) WriteControl(int, []byte, time.Time) error {
	c.mtx.Lock()
	c.pings++
	c.mtx.Unlock()
	return nil
}

func (c *tConn) messages(t *testing.T) []*Message {
	t.Helper()
	c.mtx.Lock()
	defer c.mtx.Unlock()
	msgs := make([]*Message, 0, len(c.written))
	for _, b := range c.written {
		msg := new(Message)
		if err := json.Unmarshal(b, msg); err != nil {
			t.Fatalf("error decoding written message: %v", err)
		}
		msgs = append(msgs, msg)
	}
	return msgs
}

func waitFor(t *testing.T, what string, f func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !f() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestWSLink(t *testing.T) {
	conn := newTConn()
	handled := make(chan *Message, 1)
	link := NewWSLink("127.0.0.1", conn, time.Hour, func(msg *Message) error {
		handled <- msg
		if msg.Route == "bad" {
			return errors.New("bad route")
		}
		return nil
	}, nil)

	if err := link.Send(&Message{Route: "x"}); !errors.Is(err, ErrPeerDisconnected) {
		t.Fatalf("expected ErrPeerDisconnected before Connect, got %v", err)
	}

	wg, err := link.Connect(t.Context())
	if err != nil {
		t.Fatalf("Connect error: %v", err)
	}
	if _, err := link.Connect(t.Context()); err == nil {
		t.Fatal("no error for second Connect")
	}

	conn.in <- []byte(`{"route":"subscribe","id":1,"payload":{"a":1}}`)
	msg := <-handled
	if msg.Route != "subscribe" || msg.ID != 1 || string(msg.Payload) != `{"a":1}` {
		t.Fatalf("wrong message %+v", msg)
	}

	conn.in <- []byte(`{"route":"bad","id":2}`)
	<-handled
	conn.in <- []byte(`not json`)

	note, err := NewNotification("event", map[string]int{"n": 5})
	if err != nil {
		t.Fatalf("NewNotification error: %v", err)
	}
	if err := link.Send(note); err != nil {
		t.Fatalf("Send error: %v", err)
	}

	waitFor(t, "writes", func() bool {
		conn.mtx.Lock()
		defer conn.mtx.Unlock()
		return len(conn.written) == 3
	})
	var sawBad, sawParse, sawNote bool
	for _, m := range conn.messages(t) {
		switch {
		case m.Route == "bad" && m.ID == 2 && m.Error == "bad route":
			sawBad = true
		case m.Route == "" && m.Error != "":
			sawParse = true
		case m.Route == "event" && string(m.Payload) == `{"n":5}`:
			sawNote = true
		}
	}
	if !sawBad || !sawParse || !sawNote {
		t.Fatalf("missing messages: bad %t, parse %t, note %t", sawBad, sawParse, sawNote)
	}

	link.Disconnect()
	wg.Wait()
	if !link.Off() {
		t.Fatal("link not off after Disconnect")
	}
	select {
	case <-conn.closed:
	default:
		t.Fatal("connection not closed")
	}
	if err := link.Send(note); !errors.Is(err, ErrPeerDisconnected) {
		t.Fatalf("expected ErrPeerDisconnected, got %v", err)
	}
}

func TestTrySend(t *testing.T) {
	link := NewWSLink("", newTConn(), time.Hour, func(*Message) error { return nil }, nil)
	link.on.Store(true)
	msg := &Message{Route: "event"}
	for i := 0; i < outBufferSize; i++ {
		if err := link.TrySend(msg); err != nil {
			t.Fatalf("TrySend %d error: %v", i, err)
		}
	}
	if err := link.TrySend(msg); !errors.Is(err, ErrSlowPeer) {
		t.Fatalf("expected ErrSlowPeer, got %v", err)
	}
}

func TestNewResponse(t *testing.T) {
	msg, err := NewResponse("r", 3, []int{1}, nil)
	if err != nil || msg.ID != 3 || string(msg.Payload) != "[1]" || msg.Error != "" {
		t.Fatalf("wrong response %+v, %v", msg, err)
	}
	msg, _ = NewResponse("r", 3, nil, errors.New("boom"))
	if msg.Error != "boom" || msg.Payload != nil {
		t.Fatalf("wrong error response %+v", msg)
	}
}
