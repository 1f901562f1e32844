package wallet

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/gagliardetto/solana-go"
)

// Keypair signs with a Solana CLI keygen file owned by the user. The file is
// read on Connect and the key is dropped on Disconnect.
type Keypair struct {
	path string

	mu  sync.Mutex
	key solana.PrivateKey
}

// NewKeypair returns a provider backed by the keygen file at path.
func NewKeypair(path string) *Keypair {
	return &Keypair{path: path}
}

func (k *Keypair) Detect(_ context.Context) error {
	if _, err := os.Stat(k.path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: no keypair at %s", ErrNotInstalled, k.path)
		}
		return fmt.Errorf("failed to stat keypair: %w", err)
	}
	return nil
}

func (k *Keypair) Connect(_ context.Context) (solana.PublicKey, error) {
	key, err := solana.PrivateKeyFromSolanaKeygenFile(k.path)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to read keypair %s: %w", k.path, err)
	}

	k.mu.Lock()
	k.key = key
	k.mu.Unlock()

	return key.PublicKey(), nil
}

func (k *Keypair) Disconnect(_ context.Context) error {
	k.mu.Lock()
	k.key = nil
	k.mu.Unlock()
	return nil
}

func (k *Keypair) SignTransaction(_ context.Context, tx *solana.Transaction) (*solana.Transaction, error) {
	k.mu.Lock()
	key := k.key
	k.mu.Unlock()

	if key == nil {
		return nil, ErrNotConnected
	}

	signer := key.PublicKey()
	_, err := tx.Sign(func(pub solana.PublicKey) *solana.PrivateKey {
		if pub.Equals(signer) {
			return &key
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	return tx, nil
}
