// Package media implements the view-time media signing port.
package media

import (
	"context"

	"castfeed-backend/domain/content"
)

// PassthroughSigner returns payloads unchanged. It stands in for the CDN
// signer in deployments that serve public media URLs.
type PassthroughSigner struct{}

// NewPassthroughSigner creates the signer
func NewPassthroughSigner() *PassthroughSigner {
	return &PassthroughSigner{}
}

// SignPayload implements ports.MediaSigner
func (s *PassthroughSigner) SignPayload(ctx context.Context, p content.Payload) content.Payload {
	return p
}
