// Package rpctest serves canned Solana JSON-RPC responses for tests.
package rpctest

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gagliardetto/solana-go"
)

// HandlerFunc answers one JSON-RPC method. A non-nil *Error becomes the error member.
type HandlerFunc func(params json.RawMessage) (any, *Error)

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type request struct {
	ID     json.RawMessage `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

type Server struct {
	server *httptest.Server

	mu       sync.Mutex
	handlers map[string]HandlerFunc
	calls    map[string][]json.RawMessage
}

// NewServer starts a server that is closed when the test ends
func NewServer(t testing.TB) *Server {
	s := &Server{
		handlers: map[string]HandlerFunc{},
		calls:    map[string][]json.RawMessage{},
	}
	s.server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.server.Close)
	return s
}

func (s *Server) URL() string {
	return s.server.URL
}

func (s *Server) Handle(method string, fn HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[method] = fn
}

// Result answers method with a fixed result
func (s *Server) Result(method string, result any) {
	s.Handle(method, func(json.RawMessage) (any, *Error) {
		return result, nil
	})
}

// Calls returns the params of every request made for method
func (s *Server) Calls(method string) []json.RawMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]json.RawMessage(nil), s.calls[method]...)
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.calls[req.Method] = append(s.calls[req.Method], req.Params)
	fn, ok := s.handlers[req.Method]
	s.mu.Unlock()

	resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
	if !ok {
		resp["error"] = &Error{Code: -32601, Message: "Method not found: " + req.Method}
	} else if result, rpcErr := fn(req.Params); rpcErr != nil {
		resp["error"] = rpcErr
	} else {
		resp["result"] = result
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// WithContext wraps a value in the {context, value} envelope
func WithContext(slot uint64, value any) map[string]any {
	return map[string]any{
		"context": map[string]any{"slot": slot},
		"value":   value,
	}
}

func LatestBlockhash(hash solana.Hash) map[string]any {
	return WithContext(1, map[string]any{
		"blockhash":            hash.String(),
		"lastValidBlockHeight": 150,
	})
}

// Account renders a getAccountInfo value with base64 data
func Account(owner solana.PublicKey, data []byte, executable bool) map[string]any {
	return WithContext(1, map[string]any{
		"data":       []string{base64.StdEncoding.EncodeToString(data), "base64"},
		"executable": executable,
		"lamports":   1_000_000,
		"owner":      owner.String(),
		"rentEpoch":  0,
		"space":      len(data),
	})
}

// SignatureStatus renders a single getSignatureStatuses entry, nil for unknown
func SignatureStatus(confirmationStatus string, txErr any) map[string]any {
	if confirmationStatus == "" {
		return WithContext(1, []any{nil})
	}
	return WithContext(1, []any{map[string]any{
		"slot":               10,
		"confirmations":      nil,
		"err":                txErr,
		"confirmationStatus": confirmationStatus,
	}})
}

// Transaction renders a getTransaction result carrying the given logs
func Transaction(tx []byte, slot uint64, logs []string, txErr any) map[string]any {
	return map[string]any{
		"slot":      slot,
		"blockTime": 1_700_000_000,
		"meta": map[string]any{
			"err":               txErr,
			"fee":               5000,
			"preBalances":       []uint64{},
			"postBalances":      []uint64{},
			"innerInstructions": []any{},
			"logMessages":       logs,
		},
		"transaction": []string{base64.StdEncoding.EncodeToString(tx), "base64"},
		"version":     0,
	}
}
