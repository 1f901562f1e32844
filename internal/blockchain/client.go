package blockchain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/kelsos/solmint/internal/logger"
)

var (
	// ErrTransactionFailed is returned when the cluster reports an execution error.
	ErrTransactionFailed = errors.New("transaction failed on chain")
	// ErrConfirmTimeout is returned when the commitment was not reached in time.
	ErrConfirmTimeout = errors.New("transaction was not confirmed in time")
)

var commitmentRank = map[string]int{
	"processed": 1,
	"confirmed": 2,
	"finalized": 3,
}

// Client talks to a single Solana JSON-RPC endpoint.
type Client struct {
	rpc            *rpc.Client
	commitment     rpc.CommitmentType
	pollInterval   time.Duration
	confirmTimeout time.Duration
}

// NewClient creates a client for endpoint. Reads and confirmation use commitment.
func NewClient(endpoint, commitment string, pollInterval, confirmTimeout time.Duration) *Client {
	return &Client{
		rpc:            rpc.New(endpoint),
		commitment:     rpc.CommitmentType(commitment),
		pollInterval:   pollInterval,
		confirmTimeout: confirmTimeout,
	}
}

// Commitment returns the commitment level used for reads and confirmation.
func (c *Client) Commitment() string {
	return string(c.commitment)
}

// GetBalance returns the spendable balance of owner in lamports.
func (c *Client) GetBalance(ctx context.Context, owner solana.PublicKey) (uint64, error) {
	out, err := c.rpc.GetBalance(ctx, owner, c.commitment)
	if err != nil {
		return 0, fmt.Errorf("failed to get balance for %s: %w", owner, err)
	}

	logger.Debug("Balance of %s: %d lamports", owner, out.Value)
	return out.Value, nil
}

// LatestBlockhash returns the most recent blockhash for transaction building.
func (c *Client) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	out, err := c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return solana.Hash{}, fmt.Errorf("failed to get latest blockhash: %w", err)
	}
	if out == nil || out.Value == nil {
		return solana.Hash{}, fmt.Errorf("failed to get latest blockhash: empty response")
	}

	return out.Value.Blockhash, nil
}

// SendRawTransaction submits a signed wire transaction.
func (c *Client) SendRawTransaction(ctx context.Context, raw []byte) (solana.Signature, error) {
	sig, err := c.rpc.SendRawTransaction(ctx, raw)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to send transaction: %w", err)
	}

	logger.Info("Transaction with id %s sent", sig)
	return sig, nil
}

// ConfirmTransaction polls the signature status until it reaches the client
// commitment, fails on chain, or the confirm timeout elapses. It returns the
// slot the transaction landed in.
func (c *Client) ConfirmTransaction(ctx context.Context, sig solana.Signature) (uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.confirmTimeout)
	defer cancel()

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		slot, done, err := c.checkSignature(ctx, sig)
		if err != nil {
			return 0, err
		}
		if done {
			logger.Info("Transaction with id %s confirmed in slot %d", sig, slot)
			return slot, nil
		}

		select {
		case <-ctx.Done():
			return 0, fmt.Errorf("%w: %s: %v", ErrConfirmTimeout, sig, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (c *Client) checkSignature(ctx context.Context, sig solana.Signature) (uint64, bool, error) {
	out, err := c.rpc.GetSignatureStatuses(ctx, false, sig)
	if err != nil {
		if ctx.Err() != nil {
			return 0, false, fmt.Errorf("%w: %s: %v", ErrConfirmTimeout, sig, ctx.Err())
		}
		return 0, false, fmt.Errorf("failed to get signature status: %w", err)
	}

	if out == nil || len(out.Value) == 0 || out.Value[0] == nil {
		logger.Debug("Signature %s not seen yet", sig)
		return 0, false, nil
	}

	status := out.Value[0]
	if status.Err != nil {
		return status.Slot, false, fmt.Errorf("%w: %s: %v", ErrTransactionFailed, sig, status.Err)
	}

	reached := commitmentRank[string(status.ConfirmationStatus)] >= commitmentRank[string(c.commitment)]
	logger.Debug("Signature %s status %q (want %q)", sig, status.ConfirmationStatus, c.commitment)

	return status.Slot, reached, nil
}
