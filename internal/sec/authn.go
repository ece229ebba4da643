package sec

import (
	"context"

	"connectrpc.com/authn"
)

// GetIdentity returns the identity resolved for the request. Returns
// [Anonymous] if the context has no identity or if the stored value is not an
// Identity (should only happen if middleware is misconfigured).
func GetIdentity(ctx context.Context) Identity {
	if id, ok := authn.GetInfo(ctx).(Identity); ok {
		return id
	}
	return Anonymous
}

// SetIdentity attaches the resolved identity to ctx.
func SetIdentity(ctx context.Context, id Identity) context.Context {
	return authn.SetInfo(ctx, id)
}
