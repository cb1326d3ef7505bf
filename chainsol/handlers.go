package chainsol

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
)

// HandleSendTransaction - POST /api/v1/transaction/send
func (p *SolChain) HandleSendTransaction(w http.ResponseWriter, r *http.Request) {
	var req SignedTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.SignedTransaction == "" {
		respondError(w, "Missing required fields", http.StatusBadRequest)
		return
	}
	result, err := p.SendSignedTransaction(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrNotSigned) || result == nil {
			respondError(w, err.Error(), http.StatusBadRequest)
			return
		}
		respondJSON(w, result, http.StatusBadGateway)
		return
	}
	respondJSON(w, result, http.StatusOK)
}

// HandleGetTransactionStatus - GET /api/v1/transaction/status?signature=xxx
func (p *SolChain) HandleGetTransactionStatus(w http.ResponseWriter, r *http.Request) {
	signature := r.URL.Query().Get("signature")
	if signature == "" {
		respondError(w, "signature parameter required", http.StatusBadRequest)
		return
	}
	result, err := p.GetTransactionStatus(r.Context(), signature)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, ErrInvalidSignature) {
			status = http.StatusBadRequest
		}
		respondError(w, err.Error(), status)
		return
	}
	respondJSON(w, result, http.StatusOK)
}

// HandleGetTransactionHistory - GET /api/v1/transaction/history?address=xxx&limit=10
func (p *SolChain) HandleGetTransactionHistory(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("address")
	if address == "" {
		respondError(w, "address parameter required", http.StatusBadRequest)
		return
	}
	limit := 10
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n <= 0 {
			respondError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}
	if limit > 100 {
		limit = 100
	}
	histories, err := p.GetTransactionHistory(r.Context(), address, limit)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrNoDatabase) {
			status = http.StatusServiceUnavailable
		}
		respondError(w, err.Error(), status)
		return
	}
	respondJSON(w, histories, http.StatusOK)
}

// Helper functions
func respondJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	}, status)
}
