package chainsol

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/ws"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type SolChain struct {
	http    *rpc.Client
	ws      *ws.Client
	db      *gorm.DB
	network string // mainnet, devnet, testnet, localnet
	logger  *zap.Logger
	poll    time.Duration
}

type Config struct {
	RPCURL  string
	WSURL   string // optional, enables sendAndConfirm over websocket
	Network string
	DB      *gorm.DB // optional, enables transaction history
	Logger  *zap.Logger

	// PollInterval is the first confirmation poll delay, 500ms when zero
	PollInterval time.Duration
}

// NewSolChain - Initialize Solana
func NewSolChain(ctx context.Context, config Config) (*SolChain, error) {
	if config.RPCURL == "" {
		return nil, fmt.Errorf("rpc url is required")
	}
	if config.Network == "" {
		config.Network = "mainnet"
	}
	if config.Logger == nil {
		config.Logger = zap.L()
	}

	p := &SolChain{
		http:    rpc.New(config.RPCURL),
		db:      config.DB,
		network: config.Network,
		logger:  config.Logger.Named("chainsol"),
		poll:    config.PollInterval,
	}
	if config.WSURL != "" {
		wss, err := ws.Connect(ctx, config.WSURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect websocket: %w", err)
		}
		p.ws = wss
	}
	if p.db != nil {
		if err := p.db.WithContext(ctx).AutoMigrate(&TransactionHistory{}); err != nil {
			return nil, fmt.Errorf("failed to migrate transaction history: %w", err)
		}
	}
	return p, nil
}

// RPC exposes the underlying HTTP client for account reads
func (p *SolChain) RPC() *rpc.Client {
	return p.http
}

func (p *SolChain) Network() string {
	return p.network
}

func (p *SolChain) Close() {
	if p.ws != nil {
		p.ws.Close()
	}
}

// GetExplorerURL - Generate explorer URL
func (p *SolChain) GetExplorerURL(signature string) string {
	baseURL := "https://explorer.solana.com/tx/"
	switch p.network {
	case "devnet":
		return baseURL + signature + "?cluster=devnet"
	case "testnet":
		return baseURL + signature + "?cluster=testnet"
	case "localnet":
		return baseURL + signature + "?cluster=custom&customUrl=http%3A%2F%2Flocalhost%3A8899"
	default:
		return baseURL + signature
	}
}

// Health check
func (p *SolChain) HealthCheck(ctx context.Context) error {
	_, err := p.http.GetHealth(ctx)
	return err
}
