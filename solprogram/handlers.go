package solprogram

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gagliardetto/solana-go"
	"github.com/go-chi/chi/v5"
)

type CreateTreeRequest struct {
	Payer         string  `json:"payer"`
	MaxDepth      uint32  `json:"max_depth"`
	MaxBufferSize uint32  `json:"max_buffer_size"`
	CanopyDepth   *uint32 `json:"canopy_depth,omitempty"` // defaults to max_depth - 5
}

type MintRequest struct {
	Payer          string `json:"payer"`
	MerkleTree     string `json:"merkle_tree"`
	CollectionMint string `json:"collection_mint"`
}

type CreateCollectionRequest struct {
	Payer                string `json:"payer"`
	Name                 string `json:"name"`
	Symbol               string `json:"symbol"`
	URI                  string `json:"uri"`
	SellerFeeBasisPoints uint16 `json:"seller_fee_basis_points"`
}

// Response type
type Response struct {
	Success     bool        `json:"success"`
	Message     string      `json:"message,omitempty"`
	Data        interface{} `json:"data,omitempty"`
	ErrorCode   *int        `json:"error_code,omitempty"`
	ProgramLogs []string    `json:"program_logs,omitempty"`
}

// Routes mounts the program endpoints
func (c *Client) Routes(r chi.Router) {
	r.Post("/tree", c.HandleCreateTree)
	r.Get("/tree/{address}", c.HandleGetTreeInfo)
	r.Post("/mint", c.HandleMint)
	r.Post("/collection", c.HandleCreateCollection)
	r.Get("/collection/{mint}", c.HandleGetCollection)
	r.Get("/events/{signature}", c.HandleGetTransactionEvents)
}

// HandleCreateTree - POST /tree, returns the unsigned create tree transaction
func (c *Client) HandleCreateTree(w http.ResponseWriter, r *http.Request) {
	var req CreateTreeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
		return
	}
	payer, err := solana.PublicKeyFromBase58(req.Payer)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, fmt.Sprintf("Invalid payer: %v", err))
		return
	}

	params := NewCreateTreeParams(req.MaxDepth, req.MaxBufferSize, req.CanopyDepth)
	if err := ValidateDepthSizePair(params.MaxDepth, params.MaxBufferSize); err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}
	if params.CanopyDepth > params.MaxDepth {
		writeFailure(w, http.StatusBadRequest, "canopy_depth must not exceed max_depth")
		return
	}

	resp, err := c.CreateUnsignedTree(r.Context(), payer, params)
	if err != nil {
		writeSolanaError(w, http.StatusBadGateway, err)
		return
	}
	writeResponse(w, http.StatusOK, Response{Success: true, Message: resp.Message, Data: resp})
}

// HandleMint - POST /mint, returns the unsigned mint transaction
func (c *Client) HandleMint(w http.ResponseWriter, r *http.Request) {
	var req MintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	keys := make([]solana.PublicKey, 3)
	for i, field := range []struct{ name, value string }{
		{"payer", req.Payer},
		{"merkle_tree", req.MerkleTree},
		{"collection_mint", req.CollectionMint},
	} {
		key, err := solana.PublicKeyFromBase58(field.value)
		if err != nil {
			writeFailure(w, http.StatusBadRequest, fmt.Sprintf("Invalid %s: %v", field.name, err))
			return
		}
		keys[i] = key
	}

	resp, err := c.CreateUnsignedMint(r.Context(), keys[0], keys[1], keys[2])
	if err != nil {
		writeSolanaError(w, lookupStatus(err), err)
		return
	}
	writeResponse(w, http.StatusOK, Response{Success: true, Message: resp.Message, Data: resp})
}

// HandleCreateCollection - POST /collection, returns the unsigned create collection transaction
func (c *Client) HandleCreateCollection(w http.ResponseWriter, r *http.Request) {
	var req CreateCollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
		return
	}
	payer, err := solana.PublicKeyFromBase58(req.Payer)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, fmt.Sprintf("Invalid payer: %v", err))
		return
	}

	params := CreateCollectionParams{
		Name:                 req.Name,
		Symbol:               req.Symbol,
		URI:                  req.URI,
		SellerFeeBasisPoints: req.SellerFeeBasisPoints,
	}
	if err := params.Validate(); err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := c.CreateUnsignedCollection(r.Context(), payer, params)
	if err != nil {
		writeSolanaError(w, http.StatusBadGateway, err)
		return
	}
	writeResponse(w, http.StatusOK, Response{Success: true, Message: resp.Message, Data: resp})
}

// HandleGetTreeInfo - GET /tree/{address}
func (c *Client) HandleGetTreeInfo(w http.ResponseWriter, r *http.Request) {
	address, err := solana.PublicKeyFromBase58(chi.URLParam(r, "address"))
	if err != nil {
		writeFailure(w, http.StatusBadRequest, fmt.Sprintf("Invalid address: %v", err))
		return
	}
	info, err := c.GetTreeInfo(r.Context(), address)
	if err != nil {
		writeFailure(w, lookupStatus(err), err.Error())
		return
	}
	writeResponse(w, http.StatusOK, Response{Success: true, Data: info})
}

// HandleGetCollection - GET /collection/{mint}
func (c *Client) HandleGetCollection(w http.ResponseWriter, r *http.Request) {
	mint, err := solana.PublicKeyFromBase58(chi.URLParam(r, "mint"))
	if err != nil {
		writeFailure(w, http.StatusBadRequest, fmt.Sprintf("Invalid mint: %v", err))
		return
	}
	preview, err := c.GetCollectionMetadata(r.Context(), mint)
	if err != nil {
		writeFailure(w, lookupStatus(err), err.Error())
		return
	}
	writeResponse(w, http.StatusOK, Response{Success: true, Data: preview})
}

// HandleGetTransactionEvents - GET /events/{signature}
func (c *Client) HandleGetTransactionEvents(w http.ResponseWriter, r *http.Request) {
	events, err := c.GetTransactionEvents(r.Context(), chi.URLParam(r, "signature"))
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}
	writeResponse(w, http.StatusOK, Response{Success: true, Data: events})
}

func lookupStatus(err error) int {
	switch {
	case errors.Is(err, ErrTreeNotFound), errors.Is(err, ErrCollectionNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrTreeNotInitialized), errors.Is(err, ErrCollectionAuthority):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}

func writeSolanaError(w http.ResponseWriter, status int, err error) {
	writeResponse(w, status, Response{
		Success:     false,
		Message:     ParseSolanaError(err),
		ErrorCode:   ExtractErrorCode(err),
		ProgramLogs: ExtractLogMessages(err),
	})
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	writeResponse(w, status, Response{Success: false, Message: message})
}

func writeResponse(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}
