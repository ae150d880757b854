// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

// Package ws carries JSON messages over gorilla websocket connections.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/boostxyz/boost-protocol-sub000/boost"
	"github.com/gorilla/websocket"
)

// outBufferSize is the size of the WSLink's buffered channel for outgoing
// messages.
const outBufferSize = 128

const writeWait = 5 * time.Second

const (
	// ErrPeerDisconnected is returned if Send is called on a disconnected
	// link.
	ErrPeerDisconnected = boost.ErrorKind("peer disconnected")
	// ErrSlowPeer is returned from TrySend when the outgoing buffer is full.
	ErrSlowPeer = boost.ErrorKind("peer outgoing buffer full")
)

// Message is the websocket message envelope. Requests and responses share an
// ID. Notifications have no ID.
type Message struct {
	Route   string          `json:"route"`
	ID      uint64          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// NewNotification encodes payload into a notification for the route.
func NewNotification(route string, payload any) (*Message, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{Route: route, Payload: b}, nil
}

// NewResponse encodes the response to the request with the given ID. A non-nil
// err is sent instead of a payload.
func NewResponse(route string, id uint64, payload any, err error) (*Message, error) {
	msg := &Message{Route: route, ID: id}
	if err != nil {
		msg.Error = err.Error()
		return msg, nil
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	msg.Payload = b
	return msg, nil
}

// Connection is a websocket connection. In practice it is satisfied by
// *websocket.Conn. For testing, a stub can be used.
type Connection interface {
	Close() error

	SetReadDeadline(t time.Time) error
	ReadMessage() (int, []byte, error)

	SetWriteDeadline(t time.Time) error
	WriteMessage(int, []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
}

// WSLink is the local, per-connection representation of a websocket peer.
type WSLink struct {
	ip         string
	conn       Connection
	log        boost.Logger
	on         atomic.Bool
	quit       context.CancelFunc
	stopped    chan struct{}
	outChan    chan []byte
	wg         sync.WaitGroup
	handler    func(*Message) error
	pingPeriod time.Duration
}

// NewWSLink is a constructor for a new WSLink. handler is called for every
// message received. A handler error is sent back to the peer as the response
// to the message.
func NewWSLink(ip string, conn Connection, pingPeriod time.Duration, handler func(*Message) error, log boost.Logger) *WSLink {
	if log == nil {
		log = boost.Disabled
	}
	return &WSLink{
		ip:         ip,
		conn:       conn,
		log:        log,
		outChan:    make(chan []byte, outBufferSize),
		stopped:    make(chan struct{}),
		pingPeriod: pingPeriod,
		handler:    handler,
	}
}

// Send queues the message for the peer. A nil error only indicates that the
// link is believed to be up and the message was marshaled.
func (c *WSLink) Send(msg *Message) error {
	b, err := c.encode(msg)
	if err != nil {
		return err
	}
	select {
	case c.outChan <- b:
		return nil
	case <-c.stopped:
		return ErrPeerDisconnected
	}
}

// TrySend is like Send, but returns ErrSlowPeer instead of blocking when the
// outgoing buffer is full.
func (c *WSLink) TrySend(msg *Message) error {
	b, err := c.encode(msg)
	if err != nil {
		return err
	}
	select {
	case c.outChan <- b:
		return nil
	case <-c.stopped:
		return ErrPeerDisconnected
	default:
		return ErrSlowPeer
	}
}

func (c *WSLink) encode(msg *Message) ([]byte, error) {
	if c.Off() {
		return nil, ErrPeerDisconnected
	}
	return json.Marshal(msg)
}

// Connect begins processing input and output messages. The WaitGroup is Done
// when the connection is closed.
func (c *WSLink) Connect(ctx context.Context) (*sync.WaitGroup, error) {
	if !c.on.CompareAndSwap(false, true) {
		return nil, errors.New("attempted to start a running WSLink")
	}
	linkCtx, quit := context.WithCancel(ctx)
	c.quit = quit
	// The pong handler set by NewConnection extends the deadline from here.
	if err := c.conn.SetReadDeadline(time.Now().Add(c.pingPeriod * 2)); err != nil {
		c.stop()
		return nil, fmt.Errorf("failed to set initial read deadline for %v: %w", c.ip, err)
	}
	c.log.Tracef("Starting websocket messaging with peer %s", c.ip)
	c.wg.Add(3)
	go c.inHandler(linkCtx)
	go c.outHandler(linkCtx)
	go c.pingHandler(linkCtx)
	return &c.wg, nil
}

func (c *WSLink) stop() bool {
	if !c.on.CompareAndSwap(true, false) {
		return false
	}
	close(c.stopped)
	c.quit()
	return true
}

// Disconnect begins shutdown of the WSLink. Queued messages are written
// before the connection is closed.
func (c *WSLink) Disconnect() {
	if !c.stop() {
		c.log.Debugf("Disconnect attempted on stopped WSLink.")
	}
}

func (c *WSLink) inHandler(ctx context.Context) {
	defer c.wg.Done()
	defer c.stop()
	for ctx.Err() == nil {
		_, b, err := c.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseGoingAway,
				websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) && ctx.Err() == nil {
				c.log.Debugf("Websocket receive error from peer %s: %v", c.ip, err)
			}
			return
		}
		msg := new(Message)
		if err := json.Unmarshal(b, msg); err != nil {
			c.sendError(&Message{}, fmt.Errorf("failed to parse message: %w", err))
			continue
		}
		if err := c.handler(msg); err != nil {
			c.sendError(msg, err)
		}
	}
}

func (c *WSLink) sendError(req *Message, err error) {
	resp, _ := NewResponse(req.Route, req.ID, nil, err)
	if err := c.Send(resp); err != nil {
		c.log.Debugf("Failed to send error to peer %s: %v", c.ip, err)
	}
}

func (c *WSLink) write(b []byte) error {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, b)
}

func (c *WSLink) outHandler(ctx context.Context) {
	defer c.wg.Done()
	defer c.conn.Close()
	defer c.stop()
	for {
		select {
		case b := <-c.outChan:
			if err := c.write(b); err != nil {
				c.log.Debugf("Write error for peer %s: %v", c.ip, err)
				return
			}
		case <-ctx.Done():
			// Flush what was queued before the stop.
			for {
				select {
				case b := <-c.outChan:
					if err := c.write(b); err != nil {
						return
					}
				default:
					return
				}
			}
		}
	}
}

func (c *WSLink) pingHandler(ctx context.Context) {
	defer c.wg.Done()
	ticker := time.NewTicker(c.pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeWait)); err != nil {
				c.log.Debugf("Ping error for peer %s: %v", c.ip, err)
				c.stop()
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// Off will return true if the link has disconnected.
func (c *WSLink) Off() bool {
	return !c.on.Load()
}

// IP is the peer address passed to the constructor.
func (c *WSLink) IP() string {
	return c.ip
}

var upgrader = websocket.Upgrader{}

// NewConnection upgrades the http request to a websocket. Each pong extends
// the read deadline by readTimeout.
func NewConnection(w http.ResponseWriter, r *http.Request, readTimeout time.Duration) (Connection, error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		return nil, err
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})
	return conn, nil
}
