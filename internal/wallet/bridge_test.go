package wallet

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/kelsos/solmint/internal/blockchain"
	"github.com/kelsos/solmint/internal/models"
)

// fakeAgent is a wallet agent holding key.
type fakeAgent struct {
	key       solana.PrivateKey
	isPhantom bool
	reject    bool
	// tamper makes the agent return a transaction signed by another key.
	tamper bool
	// swap makes the agent sign a larger transfer to another receiver.
	swap         bool
	disconnected bool
}

func (a *fakeAgent) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/v1/provider", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(models.ProviderInfo{Name: "fake", IsPhantom: a.isPhantom, Version: "1.0"})
	})

	mux.HandleFunc("/v1/connect", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		if a.reject {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(models.ErrorResponse{Code: 4001, Message: "User rejected the request."})
			return
		}
		_ = json.NewEncoder(w).Encode(models.ConnectResponse{PublicKey: a.key.PublicKey().String()})
	})

	mux.HandleFunc("/v1/disconnect", func(w http.ResponseWriter, r *http.Request) {
		a.disconnected = true
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("/v1/sign-transaction", func(w http.ResponseWriter, r *http.Request) {
		if a.reject {
			w.WriteHeader(http.StatusForbidden)
			return
		}

		var request models.SignTransactionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&request))
		raw, err := base64.StdEncoding.DecodeString(request.Transaction)
		require.NoError(t, err)

		tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
		require.NoError(t, err)

		signer := a.key
		if a.swap {
			tx, err = blockchain.BuildTransfer(a.key.PublicKey(), solana.NewWallet().PublicKey(), 999*solana.LAMPORTS_PER_SOL, tx.Message.RecentBlockhash)
			require.NoError(t, err)
		}
		if a.tamper {
			signer = solana.NewWallet().PrivateKey
		}
		tx.Signatures = nil
		messageContent, err := tx.Message.MarshalBinary()
		require.NoError(t, err)
		sig, err := signer.Sign(messageContent)
		require.NoError(t, err)
		tx.Signatures = []solana.Signature{sig}

		signed, err := tx.MarshalBinary()
		require.NoError(t, err)
		_ = json.NewEncoder(w).Encode(models.SignTransactionResponse{Transaction: base64.StdEncoding.EncodeToString(signed)})
	})

	return mux
}

func newAgent(t *testing.T, agent *fakeAgent) *Bridge {
	t.Helper()
	server := httptest.NewServer(agent.handler(t))
	t.Cleanup(server.Close)
	return NewBridge(server.URL, time.Second)
}

func transferFrom(t *testing.T, from solana.PublicKey) *solana.Transaction {
	t.Helper()
	tx, err := blockchain.BuildTransfer(from, solana.NewWallet().PublicKey(), 1000, solana.Hash{7})
	require.NoError(t, err)
	return tx
}

func TestBridgeConnectAndSign(t *testing.T) {
	agent := &fakeAgent{key: solana.NewWallet().PrivateKey, isPhantom: true}
	bridge := newAgent(t, agent)
	ctx := context.Background()

	require.NoError(t, bridge.Detect(ctx))

	key, err := bridge.Connect(ctx)
	require.NoError(t, err)
	require.Equal(t, agent.key.PublicKey(), key)

	signed, err := bridge.SignTransaction(ctx, transferFrom(t, key))
	require.NoError(t, err)
	require.Len(t, signed.Signatures, 1)
	require.NoError(t, signed.VerifySignatures())

	require.NoError(t, bridge.Disconnect(ctx))
	require.True(t, agent.disconnected)
}

func TestBridgeNotInstalled(t *testing.T) {
	// nothing listens on this port once the server is closed
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	bridge := NewBridge(server.URL, time.Second)
	require.ErrorIs(t, bridge.Detect(context.Background()), ErrNotInstalled)
}

func TestBridgeNotPhantom(t *testing.T) {
	bridge := newAgent(t, &fakeAgent{key: solana.NewWallet().PrivateKey})
	require.ErrorIs(t, bridge.Detect(context.Background()), ErrNotInstalled)
}

func TestBridgeRejected(t *testing.T) {
	agent := &fakeAgent{key: solana.NewWallet().PrivateKey, isPhantom: true, reject: true}
	bridge := newAgent(t, agent)

	_, err := bridge.Connect(context.Background())
	require.ErrorIs(t, err, ErrRejected)

	_, err = bridge.SignTransaction(context.Background(), transferFrom(t, agent.key.PublicKey()))
	require.ErrorIs(t, err, ErrRejected)
}

func TestBridgeRejectsBadSignature(t *testing.T) {
	agent := &fakeAgent{key: solana.NewWallet().PrivateKey, isPhantom: true, tamper: true}
	bridge := newAgent(t, agent)

	_, err := bridge.SignTransaction(context.Background(), transferFrom(t, agent.key.PublicKey()))
	require.Error(t, err)
}

func TestBridgeRejectsSwappedTransaction(t *testing.T) {
	agent := &fakeAgent{key: solana.NewWallet().PrivateKey, isPhantom: true, swap: true}
	bridge := newAgent(t, agent)

	_, err := bridge.SignTransaction(context.Background(), transferFrom(t, agent.key.PublicKey()))
	require.ErrorIs(t, err, ErrMessageMismatch)
}
