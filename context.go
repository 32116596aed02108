package datagrid

import "context"

type contextKey int

const ctxKeyIdentity contextKey = iota

// WithIdentity returns a context carrying the requesting identity.
// The API and middleware layers put it there; handlers read it back.
func WithIdentity(ctx context.Context, ident Identity) context.Context {
	return context.WithValue(ctx, ctxKeyIdentity, ident)
}

// IdentityFromContext returns the identity stored by WithIdentity.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	v, ok := ctx.Value(ctxKeyIdentity).(Identity)
	return v, ok
}
