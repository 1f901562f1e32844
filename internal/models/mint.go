package models

// MintRequest is sent to the server-side mint endpoint.
type MintRequest struct {
	Name      string `json:"name" validate:"required"`
	ImageURL  string `json:"imageUrl" validate:"required"`
	PublicKey string `json:"publicKey" validate:"required"`
}

// MintResponse carries the mint transaction signature.
type MintResponse struct {
	Signature string `json:"signature" validate:"required"`
}
