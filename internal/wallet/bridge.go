package wallet

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/kelsos/solmint/internal/client"
	"github.com/kelsos/solmint/internal/logger"
	"github.com/kelsos/solmint/internal/models"
)

// Bridge talks to a wallet agent listening on loopback, the terminal
// counterpart of an injected browser extension.
type Bridge struct {
	client *client.APIClient
}

// NewBridge creates a bridge to the agent at baseURL.
func NewBridge(baseURL string, timeout time.Duration) *Bridge {
	return &Bridge{
		client: client.NewAPIClient(baseURL, timeout),
	}
}

// Detect checks that a Phantom-compatible agent answers.
func (b *Bridge) Detect(ctx context.Context) error {
	var info models.ProviderInfo
	if err := b.client.Get(ctx, "/v1/provider", &info); err != nil {
		logger.Debug("Wallet agent not reachable: %v", err)
		return fmt.Errorf("%w: %v", ErrNotInstalled, err)
	}

	if !info.IsPhantom {
		return fmt.Errorf("%w: agent %q is not Phantom compatible", ErrNotInstalled, info.Name)
	}

	logger.Debug("Found wallet agent %s %s", info.Name, info.Version)
	return nil
}

// Connect asks the agent to expose an account.
func (b *Bridge) Connect(ctx context.Context) (solana.PublicKey, error) {
	var response models.ConnectResponse
	if err := b.client.Post(ctx, "/v1/connect", struct{}{}, &response); err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to connect wallet: %w", classify(err))
	}

	key, err := solana.PublicKeyFromBase58(response.PublicKey)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("wallet returned invalid public key %q: %w", response.PublicKey, err)
	}

	return key, nil
}

// Disconnect tells the agent the page no longer uses the account.
func (b *Bridge) Disconnect(ctx context.Context) error {
	if err := b.client.Post(ctx, "/v1/disconnect", struct{}{}, nil); err != nil {
		return fmt.Errorf("failed to disconnect wallet: %w", classify(err))
	}
	return nil
}

// SignTransaction sends tx to the agent and returns the signed copy.
func (b *Bridge) SignTransaction(ctx context.Context, tx *solana.Transaction) (*solana.Transaction, error) {
	raw, err := tx.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize transaction: %w", err)
	}

	request := models.SignTransactionRequest{
		Transaction: base64.StdEncoding.EncodeToString(raw),
	}

	var response models.SignTransactionResponse
	if err := b.client.Post(ctx, "/v1/sign-transaction", request, &response); err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", classify(err))
	}

	signedRaw, err := base64.StdEncoding.DecodeString(response.Transaction)
	if err != nil {
		return nil, fmt.Errorf("wallet returned malformed transaction: %w", err)
	}

	signed, err := solana.TransactionFromDecoder(bin.NewBinDecoder(signedRaw))
	if err != nil {
		return nil, fmt.Errorf("wallet returned undecodable transaction: %w", err)
	}

	if err := signed.VerifySignatures(); err != nil {
		return nil, fmt.Errorf("wallet returned badly signed transaction: %w", err)
	}

	if err := sameMessage(tx, signed); err != nil {
		return nil, err
	}

	return signed, nil
}

// sameMessage ensures the agent signed the message it was given.
func sameMessage(sent, signed *solana.Transaction) error {
	want, err := sent.Message.MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to serialize message: %w", err)
	}
	got, err := signed.Message.MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to serialize signed message: %w", err)
	}
	if !bytes.Equal(want, got) {
		return ErrMessageMismatch
	}
	return nil
}

// userRejectedCode is the provider error code for a request the user declined.
const userRejectedCode = 4001

// classify maps agent refusals to ErrRejected.
func classify(err error) error {
	var httpErr *client.HTTPError
	if errors.As(err, &httpErr) {
		var body models.ErrorResponse
		if json.Unmarshal([]byte(httpErr.Body), &body) == nil && body.Code == userRejectedCode {
			return fmt.Errorf("%w: %s", ErrRejected, body.Message)
		}
		switch httpErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %v", ErrRejected, err)
		}
	}
	return err
}
