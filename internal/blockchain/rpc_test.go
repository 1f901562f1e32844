package blockchain

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type rpcRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcHandler func(method string, params []json.RawMessage) (interface{}, *rpcError)

// fakeRPC is a JSON-RPC node answering with handler and recording the
// methods it was called with.
type fakeRPC struct {
	*httptest.Server

	mu      sync.Mutex
	methods []string
}

func newFakeRPC(t *testing.T, handler rpcHandler) *fakeRPC {
	t.Helper()

	f := &fakeRPC{}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		f.mu.Lock()
		f.methods = append(f.methods, req.Method)
		f.mu.Unlock()

		result, rpcErr := handler(req.Method, req.Params)
		response := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
		}
		if rpcErr != nil {
			response["error"] = rpcErr
		} else {
			response["result"] = result
		}

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(response))
	}))
	t.Cleanup(f.Close)

	return f
}

func (f *fakeRPC) calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, m := range f.methods {
		if m == method {
			n++
		}
	}
	return n
}

func withContext(value interface{}) map[string]interface{} {
	return map[string]interface{}{
		"context": map[string]interface{}{"slot": 100},
		"value":   value,
	}
}
