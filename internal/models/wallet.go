package models

// ProviderInfo is what the wallet agent reports about itself.
type ProviderInfo struct {
	Name      string `json:"name"`
	IsPhantom bool   `json:"isPhantom"`
	Version   string `json:"version,omitempty"`
}

// ConnectResponse carries the account the wallet agreed to expose.
type ConnectResponse struct {
	PublicKey string `json:"publicKey" validate:"required"`
}

// SignTransactionRequest holds a base64 wire transaction to be signed.
type SignTransactionRequest struct {
	Transaction string `json:"transaction" validate:"required"`
}

// SignTransactionResponse holds the signed base64 wire transaction.
type SignTransactionResponse struct {
	Transaction string `json:"transaction" validate:"required"`
}

// ErrorResponse is the body the wallet agent sends with non-2xx statuses.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
