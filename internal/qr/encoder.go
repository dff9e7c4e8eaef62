package qr

import "encoding/base64"

// Encoder maps an access token to a displayable image payload. The output
// format is opaque to the rest of the service.
type Encoder interface {
	Encode(token string) (string, error)
}

// PassthroughEncoder base64-encodes the token so clients receive a stable,
// displayable payload without a rendering dependency. Replace with a real QR
// renderer when a display pipeline exists.
type PassthroughEncoder struct{}

// NewPassthroughEncoder constructs the encoder.
func NewPassthroughEncoder() *PassthroughEncoder {
	return &PassthroughEncoder{}
}

// Encode returns the base64 form of the token.
func (e *PassthroughEncoder) Encode(token string) (string, error) {
	return base64.StdEncoding.EncodeToString([]byte(token)), nil
}
