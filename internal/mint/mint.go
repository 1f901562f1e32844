package mint

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"

	"github.com/kelsos/solmint/internal/blockchain"
	"github.com/kelsos/solmint/internal/client"
	"github.com/kelsos/solmint/internal/logger"
	"github.com/kelsos/solmint/internal/models"
)

// Result of a delegated mint.
type Result struct {
	Signature   string
	ExplorerURL string
	RequestID   string
}

// Delegator forwards mint requests to the server-side mint endpoint, which
// owns the mint authority and pays for the transaction.
type Delegator struct {
	client      *client.APIClient
	endpoint    string
	explorerURL string
	cluster     string
}

// NewDelegator creates a delegator for endpoint. Links point at explorerURL
// for cluster.
func NewDelegator(endpoint, explorerURL, cluster string, timeout time.Duration) *Delegator {
	return &Delegator{
		client:      client.NewAPIClient("", timeout),
		endpoint:    endpoint,
		explorerURL: explorerURL,
		cluster:     cluster,
	}
}

// Mint asks the endpoint to mint an NFT named name with image imageURL to owner.
func (d *Delegator) Mint(ctx context.Context, name, imageURL, owner string) (*Result, error) {
	requestID := uuid.NewString()
	request := models.MintRequest{
		Name:      name,
		ImageURL:  imageURL,
		PublicKey: owner,
	}

	logger.Info("Requesting mint %s of %q for %s", requestID, name, owner)

	var response models.MintResponse
	headers := map[string]string{"X-Request-ID": requestID}
	if err := d.client.PostWithHeaders(ctx, d.endpoint, headers, request, &response); err != nil {
		return nil, fmt.Errorf("mint request %s failed: %w", requestID, err)
	}

	if _, err := solana.SignatureFromBase58(response.Signature); err != nil {
		return nil, fmt.Errorf("mint request %s returned invalid signature %q: %w", requestID, response.Signature, err)
	}

	result := &Result{
		Signature:   response.Signature,
		ExplorerURL: blockchain.TxURL(d.explorerURL, response.Signature, d.cluster),
		RequestID:   requestID,
	}

	logger.Info("Mint %s done: %s", requestID, result.ExplorerURL)
	return result, nil
}
