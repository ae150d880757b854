// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strconv"
	"strings"

	"github.com/boostxyz/boost-protocol-sub000/boost"
	"github.com/boostxyz/boost-protocol-sub000/boost/abis"
	"github.com/boostxyz/boost-protocol-sub000/boost/contracts"
	"github.com/boostxyz/boost-protocol-sub000/server/eventdb"
	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
)

// writeJSON marshals the provided interface and writes the bytes to the
// ResponseWriter. The response code is assumed to be StatusOK.
func (s *Server) writeJSON(w http.ResponseWriter, thing any) {
	s.writeJSONWithStatus(w, thing, http.StatusOK)
}

// writeJSONWithStatus marshals the provided interface and writes the bytes to
// the ResponseWriter with the specified response code.
func (s *Server) writeJSONWithStatus(w http.ResponseWriter, thing any, code int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "    ")
	if err := encoder.Encode(thing); err != nil {
		s.log.Errorf("JSON encode error: %v", err)
	}
}

// errorResponse is the body of a failed request.
type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, err error, code int) {
	s.writeJSONWithStatus(w, &errorResponse{Error: err.Error()}, code)
}

// apiStatus is the handler for the '/status' API request.
func (s *Server) apiStatus(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, s.cfg.Indexer.Status())
}

func parseBoostID(str string) (*big.Int, error) {
	id, ok := new(big.Int).SetString(str, 10)
	if !ok || id.Sign() < 0 || id.BitLen() > 256 {
		return nil, fmt.Errorf("invalid boost ID %q", str)
	}
	return id, nil
}

func parseBool(str string) (bool, error) {
	if str == "" {
		return false, nil
	}
	return strconv.ParseBool(str)
}

// parseFilter reads an eventdb.Filter from the query parameters name,
// address, boostID, from, limit, newest and removed.
func parseFilter(r *http.Request) (*eventdb.Filter, error) {
	q := r.URL.Query()
	f := &eventdb.Filter{Name: q.Get("name")}
	if a := q.Get("address"); a != "" {
		if !common.IsHexAddress(a) {
			return nil, fmt.Errorf("invalid address %q", a)
		}
		addr := common.HexToAddress(a)
		f.Address = &addr
	}
	if id := q.Get("boostID"); id != "" {
		bi, err := parseBoostID(id)
		if err != nil {
			return nil, err
		}
		f.BoostID = bi
	}
	if from := q.Get("from"); from != "" {
		block, err := strconv.ParseUint(from, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid from block %q", from)
		}
		f.FromBlock = block
	}
	if limit := q.Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid limit %q", limit)
		}
		f.Limit = n
	}
	var err error
	if f.Newest, err = parseBool(q.Get("newest")); err != nil {
		return nil, fmt.Errorf("invalid newest flag: %w", err)
	}
	if f.IncludeRemoved, err = parseBool(q.Get("removed")); err != nil {
		return nil, fmt.Errorf("invalid removed flag: %w", err)
	}
	return f, nil
}

// apiEvents is the handler for the '/events' API request.
func (s *Server) apiEvents(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		s.writeError(w, err, http.StatusBadRequest)
		return
	}
	s.serveEvents(w, f)
}

func (s *Server) serveEvents(w http.ResponseWriter, f *eventdb.Filter) {
	evs, err := s.cfg.Store.Events(f)
	if err != nil {
		s.log.Errorf("Error retrieving events: %v", err)
		s.writeError(w, errors.New("error retrieving events"), http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, evs)
}

// apiBoostEvents is the handler for the '/boosts/{id}/events' API request.
func (s *Server) apiBoostEvents(w http.ResponseWriter, r *http.Request) {
	id, err := parseBoostID(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err, http.StatusBadRequest)
		return
	}
	f, err := parseFilter(r)
	if err != nil {
		s.writeError(w, err, http.StatusBadRequest)
		return
	}
	f.BoostID = id
	s.serveEvents(w, f)
}

// BoostResult is the JSON form of a boost.
type BoostResult struct {
	ID              string           `json:"id"`
	Action          common.Address   `json:"action"`
	Validator       common.Address   `json:"validator"`
	AllowList       common.Address   `json:"allowList"`
	Budget          common.Address   `json:"budget"`
	Incentives      []common.Address `json:"incentives"`
	ProtocolFee     uint64           `json:"protocolFee"`
	ReferralFee     uint64           `json:"referralFee"`
	MaxParticipants string           `json:"maxParticipants"`
	Owner           common.Address   `json:"owner"`
}

func newBoostResult(id *big.Int, b *contracts.Boost) *BoostResult {
	res := &BoostResult{
		ID:          id.String(),
		Action:      b.Action,
		Validator:   b.Validator,
		AllowList:   b.AllowList,
		Budget:      b.Budget,
		Incentives:  b.Incentives,
		ProtocolFee: b.ProtocolFee,
		ReferralFee: b.ReferralFee,
		Owner:       b.Owner,
	}
	if res.Incentives == nil {
		res.Incentives = []common.Address{}
	}
	if b.MaxParticipants != nil {
		res.MaxParticipants = b.MaxParticipants.String()
	}
	return res
}

// readError maps an on-chain read error to a response code.
func readError(err error) int {
	var revert *contracts.RevertError
	if errors.As(err, &revert) || errors.Is(err, boost.ErrReverted) {
		return http.StatusNotFound
	}
	return http.StatusBadGateway
}

// apiBoost is the handler for the '/boosts/{id}' API request.
func (s *Server) apiBoost(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Core == nil {
		s.writeError(w, errors.New("no chain connection"), http.StatusServiceUnavailable)
		return
	}
	id, err := parseBoostID(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err, http.StatusBadRequest)
		return
	}
	b, err := s.cfg.Core.GetBoost(r.Context(), id)
	if err != nil {
		code := readError(err)
		if code == http.StatusNotFound {
			s.writeError(w, fmt.Errorf("boost %s not found", id), code)
			return
		}
		s.log.Errorf("Error reading boost %s: %v", id, err)
		s.writeError(w, errors.New("error reading boost"), code)
		return
	}
	s.writeJSON(w, newBoostResult(id, b))
}

// apiBoostCount is the handler for the '/boosts/count' API request.
func (s *Server) apiBoostCount(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Core == nil {
		s.writeError(w, errors.New("no chain connection"), http.StatusServiceUnavailable)
		return
	}
	n, err := s.cfg.Core.GetBoostCount(r.Context())
	if err != nil {
		s.log.Errorf("Error reading boost count: %v", err)
		s.writeError(w, errors.New("error reading boost count"), readError(err))
		return
	}
	s.writeJSON(w, map[string]string{"count": n.String()})
}

// apiABIs is the handler for the '/abis' API request.
func (s *Server) apiABIs(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, abis.Names())
}

// apiABI is the handler for the '/abis/{name}' API request. The name match
// is case-insensitive.
func (s *Server) apiABI(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	for _, n := range abis.Names() {
		if !strings.EqualFold(n, name) {
			continue
		}
		raw, err := abis.Raw(n)
		if err != nil {
			s.writeError(w, err, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Write(raw)
		return
	}
	s.writeError(w, fmt.Errorf("unknown contract %q", name), http.StatusNotFound)
}
