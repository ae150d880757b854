// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

// Package api serves indexed protocol events, live boost reads and contract
// ABIs over HTTP, and pushes new events to websocket subscribers.
package api

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"math/big"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/boostxyz/boost-protocol-sub000/boost"
	"github.com/boostxyz/boost-protocol-sub000/boost/contracts"
	"github.com/boostxyz/boost-protocol-sub000/server/eventdb"
	"github.com/boostxyz/boost-protocol-sub000/server/indexer"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"
)

const (
	// rpcTimeoutSeconds is the number of seconds an HTTP request may take.
	rpcTimeoutSeconds = 10

	// Per-ip rate limits for HTTP routes.
	ipMaxRatePerSec = 5
	ipMaxBurstSize  = 20

	// defaultMaxClients is the default websocket client limit.
	defaultMaxClients = 1000
)

var (
	// Time allowed to read the next pong message from the peer. A var for
	// testing.
	pongWait = 20 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
)

// EventStore is the indexed event source. *eventdb.DB satisfies it.
type EventStore interface {
	Events(*eventdb.Filter) ([]*eventdb.Event, error)
}

// StatusReporter reports indexer progress. *indexer.Indexer satisfies it.
type StatusReporter interface {
	Status() *indexer.Status
}

// BoostReader reads boosts from chain. *contracts.BoostCore satisfies it.
type BoostReader interface {
	GetBoost(ctx context.Context, index *big.Int) (*contracts.Boost, error)
	GetBoostCount(ctx context.Context) (*big.Int, error)
}

// Config is the Server configuration.
type Config struct {
	Addr    string
	Store   EventStore
	Indexer StatusReporter
	// Core may be nil, in which case the live boost routes are unavailable.
	Core       BoostReader
	MaxClients int
	// RatePerSec and Burst are the per-IP HTTP request limits. Zero uses
	// the defaults.
	RatePerSec float64
	Burst      int
	// TLSCert and TLSKey are the keypair files. The API is served over
	// plain HTTP when TLSCert is empty. A missing pair is generated with
	// AltDNSNames as extra hosts.
	TLSCert     string
	TLSKey      string
	AltDNSNames []string
	Log         boost.Logger
}

// ipRateLimiter is used to track an IPs HTTP request rate.
type ipRateLimiter struct {
	*rate.Limiter
	lastHit time.Time
}

// Server is the HTTP and websocket API server.
type Server struct {
	cfg  *Config
	log  boost.Logger
	mux  *chi.Mux
	hub  *hub
	addr string

	rateMtx    sync.Mutex
	ipLimiters map[string]*ipRateLimiter
	ratePerSec rate.Limit
	burst      int
}

// New is the constructor for a Server.
func New(cfg *Config) (*Server, error) {
	if cfg.Store == nil || cfg.Indexer == nil {
		return nil, errors.New("event store and indexer are required")
	}
	log := cfg.Log
	if log == nil {
		log = boost.Disabled
	}
	maxClients := cfg.MaxClients
	if maxClients <= 0 {
		maxClients = defaultMaxClients
	}
	s := &Server{
		cfg:        cfg,
		log:        log,
		addr:       cfg.Addr,
		hub:        newHub(maxClients, log),
		ipLimiters: make(map[string]*ipRateLimiter),
		ratePerSec: ipMaxRatePerSec,
		burst:      ipMaxBurstSize,
	}
	if cfg.RatePerSec > 0 {
		s.ratePerSec = rate.Limit(cfg.RatePerSec)
	}
	if cfg.Burst > 0 {
		s.burst = cfg.Burst
	}

	mux := chi.NewRouter()
	mux.Use(middleware.RealIP)
	mux.Use(middleware.Recoverer)

	mux.Get("/ws", s.handleWS)

	mux.Route("/api", func(r chi.Router) {
		r.Use(s.limitRate)
		r.Get("/status", s.apiStatus)
		r.Get("/events", s.apiEvents)
		r.Route("/boosts", func(r chi.Router) {
			r.Get("/count", s.apiBoostCount)
			r.Get("/{id}", s.apiBoost)
			r.Get("/{id}/events", s.apiBoostEvents)
		})
		r.Get("/abis", s.apiABIs)
		r.Get("/abis/{name}", s.apiABI)
	})
	s.mux = mux
	return s, nil
}

// Handler is the server's router.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Notify pushes a new event to websocket subscribers. It is the indexer's
// Notify callback.
func (s *Server) Notify(ev *eventdb.Event) {
	s.hub.broadcast(ev)
}

// ipKey strips the port from a remote address.
func ipKey(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}

// getIPLimiter gets the ipRateLimiter for the IP, creating it if it doesn't
// exist.
func (s *Server) getIPLimiter(ip string) *ipRateLimiter {
	s.rateMtx.Lock()
	defer s.rateMtx.Unlock()
	limiter := s.ipLimiters[ip]
	if limiter != nil {
		limiter.lastHit = time.Now()
		return limiter
	}
	limiter = &ipRateLimiter{
		Limiter: rate.NewLimiter(s.ratePerSec, s.burst),
		lastHit: time.Now(),
	}
	s.ipLimiters[ip] = limiter
	return limiter
}

// limitRate is middleware that rejects requests from IPs over their limit.
func (s *Server) limitRate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.getIPLimiter(ipKey(r.RemoteAddr)).Allow() {
			http.Error(w, "too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) pruneLimiters() {
	s.rateMtx.Lock()
	defer s.rateMtx.Unlock()
	for ip, limiter := range s.ipLimiters {
		if time.Since(limiter.lastHit) > time.Minute {
			delete(s.ipLimiters, ip)
		}
	}
}

// Run listens on the configured address and serves until the context is
// canceled.
func (s *Server) Run(ctx context.Context) error {
	var tlsConfig *tls.Config
	if s.cfg.TLSCert != "" {
		keypair, err := loadKeyPair(s.cfg.TLSCert, s.cfg.TLSKey, s.cfg.AltDNSNames, s.log)
		if err != nil {
			return err
		}
		tlsConfig = &tls.Config{
			Certificates: []tls.Certificate{keypair},
			MinVersion:   tls.VersionTLS12,
		}
	}
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("can't listen on %s: %w", s.addr, err)
	}
	if tlsConfig != nil {
		listener = tls.NewListener(listener, tlsConfig)
	}
	return s.Serve(ctx, listener)
}

// Serve serves on the listener until the context is canceled.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	httpServer := &http.Server{
		Handler:      s.mux,
		ReadTimeout:  rpcTimeoutSeconds * time.Second,
		WriteTimeout: rpcTimeoutSeconds * time.Second,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(time.Minute * 5)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.pruneLimiters()
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		s.log.Infof("API server shutting down...")
		ctxTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctxTimeout); err != nil {
			s.log.Warnf("http.Server.Shutdown: %v", err)
		}
		// Shutdown does not wait for upgraded websocket connections.
		s.hub.disconnectAll()
	}()

	s.log.Infof("API server listening on %s", listener.Addr())
	err := httpServer.Serve(listener)
	if errors.Is(err, http.ErrServerClosed) {
		err = nil
	}
	cancel()
	wg.Wait()
	s.hub.wait()
	s.log.Infof("API server shutdown complete")
	return err
}
