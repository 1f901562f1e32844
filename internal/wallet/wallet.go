package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/kelsos/solmint/internal/config"
)

var (
	// ErrNotInstalled means no wallet could be found to talk to.
	ErrNotInstalled = errors.New("wallet is not installed")
	// ErrRejected means the wallet refused the request.
	ErrRejected = errors.New("request rejected by wallet")
	// ErrNotConnected is returned when signing before a successful Connect.
	ErrNotConnected = errors.New("wallet is not connected")
	// ErrMessageMismatch means the wallet signed a different transaction.
	ErrMessageMismatch = errors.New("wallet signed a different transaction")
)

// Provider is the capability a wallet exposes to the page. Keys never leave
// the provider; the page only sees the public key and signed transactions.
type Provider interface {
	// Detect returns ErrNotInstalled when the wallet is not reachable.
	Detect(ctx context.Context) error
	Connect(ctx context.Context) (solana.PublicKey, error)
	Disconnect(ctx context.Context) error
	SignTransaction(ctx context.Context, tx *solana.Transaction) (*solana.Transaction, error)
}

// New returns the provider selected in cfg.
func New(cfg *config.Config) (Provider, error) {
	switch cfg.Wallet {
	case config.WalletBridge:
		return NewBridge(cfg.WalletBridgeURL, cfg.HTTPTimeout), nil
	case config.WalletKeypair:
		return NewKeypair(cfg.KeypairPath), nil
	default:
		return nil, fmt.Errorf("unknown wallet provider %q", cfg.Wallet)
	}
}
