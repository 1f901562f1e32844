package mint

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/kelsos/solmint/internal/models"
)

func TestMint(t *testing.T) {
	var sig solana.Signature
	sig[0] = 42
	owner := solana.NewWallet().PublicKey().String()

	var gotRequestID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/mintnft", r.URL.Path)
		gotRequestID = r.Header.Get("X-Request-ID")

		var request models.MintRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&request))
		require.Equal(t, "My NFT", request.Name)
		require.Equal(t, "https://ipfs.io/ipfs/QmCid", request.ImageURL)
		require.Equal(t, owner, request.PublicKey)

		_ = json.NewEncoder(w).Encode(models.MintResponse{Signature: sig.String()})
	}))
	defer server.Close()

	delegator := NewDelegator(server.URL+"/api/mintnft", "https://solscan.io", "devnet", time.Second)
	result, err := delegator.Mint(context.Background(), "My NFT", "https://ipfs.io/ipfs/QmCid", owner)
	require.NoError(t, err)

	require.Equal(t, sig.String(), result.Signature)
	require.Equal(t, "https://solscan.io/tx/"+sig.String()+"?cluster=devnet", result.ExplorerURL)
	require.Equal(t, gotRequestID, result.RequestID)
	_, err = uuid.Parse(result.RequestID)
	require.NoError(t, err)
}

func TestMintRequestBodyKeys(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		require.Contains(t, raw, "name")
		require.Contains(t, raw, "imageUrl")
		require.Contains(t, raw, "publicKey")
		_ = json.NewEncoder(w).Encode(models.MintResponse{Signature: solana.Signature{1}.String()})
	}))
	defer server.Close()

	_, err := NewDelegator(server.URL, "https://solscan.io", "devnet", time.Second).
		Mint(context.Background(), "n", "u", "p")
	require.NoError(t, err)
}

func TestMintServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"mint failed"}`, http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := NewDelegator(server.URL, "https://solscan.io", "devnet", time.Second).
		Mint(context.Background(), "n", "u", "p")
	require.Error(t, err)
}

func TestMintInvalidSignature(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(models.MintResponse{Signature: "not-a-signature"})
	}))
	defer server.Close()

	_, err := NewDelegator(server.URL, "https://solscan.io", "devnet", time.Second).
		Mint(context.Background(), "n", "u", "p")
	require.Error(t, err)
}
