package models

// UploadResponse is returned by the IPFS pinning gateway.
type UploadResponse struct {
	IpfsHash  string `json:"IpfsHash" validate:"required"`
	PinSize   int64  `json:"PinSize,omitempty"`
	Timestamp string `json:"Timestamp,omitempty"`
}

// PinOptions mirrors the gateway's pinataOptions form field.
type PinOptions struct {
	WrapWithDirectory bool `json:"wrapWithDirectory"`
}
