// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"

	"github.com/boostxyz/boost-protocol-sub000/boost"
	"github.com/boostxyz/boost-protocol-sub000/boost/ws"
	"github.com/boostxyz/boost-protocol-sub000/server/eventdb"
	"github.com/ethereum/go-ethereum/common"
)

// Websocket routes.
const (
	// SubscribeRoute sets the client's event subscription. The payload is a
	// Subscription.
	SubscribeRoute = "subscribe"
	// UnsubscribeRoute stops event notifications.
	UnsubscribeRoute = "unsubscribe"
	// EventRoute is the notification route of new events.
	EventRoute = "event"
)

// Subscription selects the events pushed to a websocket client. Empty lists
// match anything. The lists are ANDed.
type Subscription struct {
	Names     []string         `json:"names,omitempty"`
	Addresses []common.Address `json:"addresses,omitempty"`
	// BoostIDs are decimal boost IDs.
	BoostIDs []string `json:"boostIDs,omitempty"`
}

type subscription struct {
	names     map[string]bool
	addresses map[common.Address]bool
	boostIDs  map[string]bool
}

func newSubscription(sub *Subscription) (*subscription, error) {
	s := &subscription{
		names:     make(map[string]bool, len(sub.Names)),
		addresses: make(map[common.Address]bool, len(sub.Addresses)),
		boostIDs:  make(map[string]bool, len(sub.BoostIDs)),
	}
	for _, n := range sub.Names {
		s.names[n] = true
	}
	for _, a := range sub.Addresses {
		s.addresses[a] = true
	}
	for _, id := range sub.BoostIDs {
		// Normalize, so that "007" matches the stored "7".
		bi, ok := new(big.Int).SetString(strings.TrimSpace(id), 10)
		if !ok || bi.Sign() < 0 {
			return nil, fmt.Errorf("invalid boost ID %q", id)
		}
		s.boostIDs[bi.String()] = true
	}
	return s, nil
}

func (s *subscription) match(ev *eventdb.Event) bool {
	if len(s.names) > 0 && !s.names[ev.Name] {
		return false
	}
	if len(s.addresses) > 0 && !s.addresses[ev.Address] {
		return false
	}
	if len(s.boostIDs) > 0 && !s.boostIDs[ev.BoostID] {
		return false
	}
	return true
}

type wsClient struct {
	*ws.WSLink
	id  uint64
	mtx sync.RWMutex
	sub *subscription // nil until subscribed
}

func (c *wsClient) subscription() *subscription {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	return c.sub
}

func (c *wsClient) handleMessage(msg *ws.Message) error {
	switch msg.Route {
	case SubscribeRoute:
		sub := new(Subscription)
		if len(msg.Payload) > 0 {
			if err := json.Unmarshal(msg.Payload, sub); err != nil {
				return fmt.Errorf("invalid subscription: %w", err)
			}
		}
		s, err := newSubscription(sub)
		if err != nil {
			return err
		}
		c.mtx.Lock()
		c.sub = s
		c.mtx.Unlock()
	case UnsubscribeRoute:
		c.mtx.Lock()
		c.sub = nil
		c.mtx.Unlock()
	default:
		return fmt.Errorf("unknown route %q", msg.Route)
	}
	resp, err := ws.NewResponse(msg.Route, msg.ID, true, nil)
	if err != nil {
		return err
	}
	return c.Send(resp)
}

// hub tracks websocket clients and fans out events to subscribers.
type hub struct {
	log        boost.Logger
	maxClients int
	ctx        context.Context
	quit       context.CancelFunc
	wg         sync.WaitGroup

	mtx     sync.RWMutex
	clients map[uint64]*wsClient
	counter uint64
}

func newHub(maxClients int, log boost.Logger) *hub {
	ctx, quit := context.WithCancel(context.Background())
	return &hub{
		log:        log,
		maxClients: maxClients,
		ctx:        ctx,
		quit:       quit,
		clients:    make(map[uint64]*wsClient),
	}
}

func (h *hub) clientCount() int {
	h.mtx.RLock()
	defer h.mtx.RUnlock()
	return len(h.clients)
}

var errMaxClients = errors.New("server at maximum capacity")

func (h *hub) addClient(c *wsClient) error {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	if len(h.clients) >= h.maxClients {
		return errMaxClients
	}
	h.counter++
	c.id = h.counter
	h.clients[c.id] = c
	return nil
}

func (h *hub) removeClient(id uint64) {
	h.mtx.Lock()
	delete(h.clients, id)
	h.mtx.Unlock()
}

// run connects the client and blocks until it disconnects.
func (h *hub) run(c *wsClient, conn ws.Connection) {
	if err := h.addClient(c); err != nil {
		h.log.Warnf("Rejecting websocket client %s: %v", c.IP(), err)
		conn.Close()
		return
	}
	defer h.removeClient(c.id)
	wg, err := c.Connect(h.ctx)
	if err != nil {
		h.log.Errorf("Failed to connect websocket client %s: %v", c.IP(), err)
		conn.Close()
		return
	}
	wg.Wait()
	h.log.Tracef("Disconnected websocket client %s", c.IP())
}

// broadcast sends the event to every matching subscriber. Clients that
// cannot keep up are disconnected.
func (h *hub) broadcast(ev *eventdb.Event) {
	var note *ws.Message
	h.mtx.RLock()
	defer h.mtx.RUnlock()
	for id, c := range h.clients {
		sub := c.subscription()
		if sub == nil || !sub.match(ev) {
			continue
		}
		if note == nil {
			var err error
			if note, err = ws.NewNotification(EventRoute, ev); err != nil {
				h.log.Errorf("Error encoding event notification: %v", err)
				return
			}
		}
		if err := c.TrySend(note); err != nil {
			h.log.Debugf("Send to client %d at %s failed: %v", id, c.IP(), err)
			c.Disconnect() // run returns and removes the client
		}
	}
}

func (h *hub) disconnectAll() {
	h.quit()
	h.mtx.RLock()
	for _, c := range h.clients {
		c.Disconnect()
	}
	h.mtx.RUnlock()
}

func (h *hub) wait() {
	h.wg.Wait()
}

// handleWS upgrades the connection and runs a websocket client.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	if s.hub.clientCount() >= s.hub.maxClients {
		http.Error(w, errMaxClients.Error(), http.StatusServiceUnavailable)
		return
	}
	if s.hub.ctx.Err() != nil {
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	}
	conn, err := ws.NewConnection(w, r, pongWait)
	if err != nil {
		s.log.Errorf("ws connection error: %v", err)
		return
	}
	ip := ipKey(r.RemoteAddr)
	c := new(wsClient)
	c.WSLink = ws.NewWSLink(ip, conn, pingPeriod, c.handleMessage, s.log)
	s.log.Debugf("Starting websocket client for %s", r.RemoteAddr)
	s.hub.wg.Add(1)
	go func() {
		defer s.hub.wg.Done()
		s.hub.run(c, conn)
	}()
}
