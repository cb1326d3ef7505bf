package chainsol

import "time"

// Transaction statuses
const (
	StatusCreated   = "created"
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusFailed    = "failed"
	StatusNotFound  = "not_found"
)

// CreateTransactionResponse - unsigned transaction handed to the client for signing
type CreateTransactionResponse struct {
	TransactionID       string `json:"transaction_id"`
	UnsignedTransaction string `json:"unsigned_transaction"` // Base64, partially signed when the server holds a co-signer
	RecentBlockhash     string `json:"recent_blockhash"`
}

// SignedTransactionRequest - Request signed transaction from client
type SignedTransactionRequest struct {
	TransactionID     string `json:"transaction_id"`
	SignedTransaction string `json:"signed_transaction"` // Base64 encoded signed tx
}

// TransactionResult - Response after sending to the cluster
type TransactionResult struct {
	TransactionID string `json:"transaction_id"`
	Signature     string `json:"signature"`
	Success       bool   `json:"success"`
	Status        string `json:"status"` // pending, confirmed, failed
	Message       string `json:"message"`
	ExplorerURL   string `json:"explorer_url,omitempty"`
}

// TransactionStatusResponse - Response status transaction
type TransactionStatusResponse struct {
	Signature     string  `json:"signature"`
	Status        string  `json:"status"` // confirmed, failed, not_found
	Confirmations uint64  `json:"confirmations"`
	Slot          uint64  `json:"slot"`
	BlockTime     *int64  `json:"block_time,omitempty"`
	Fee           uint64  `json:"fee"`
	Error         *string `json:"error,omitempty"`
	ExplorerURL   string  `json:"explorer_url"`
}

// ErrorResponse - Standard error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// TransactionHistory - one create_tree or mint transaction
type TransactionHistory struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	TransactionID string     `gorm:"uniqueIndex;size:64" json:"transaction_id"`
	Action        string     `gorm:"index;size:32" json:"action"`
	Payer         string     `gorm:"index;size:44" json:"payer"`
	MerkleTree    string     `gorm:"index;size:44" json:"merkle_tree"`
	TreeAuthority string     `gorm:"size:44" json:"tree_authority"`
	Collection    string     `gorm:"size:44" json:"collection,omitempty"`
	Signature     string     `gorm:"index;size:88" json:"signature"`
	Status        string     `gorm:"index;size:20" json:"status"`
	ErrorMessage  string     `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	ConfirmedAt   *time.Time `json:"confirmed_at,omitempty"`
}

func (TransactionHistory) TableName() string {
	return "cnft_transaction_histories"
}
