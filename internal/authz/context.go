package authz

import "context"

type grantContextKey struct{}

// ContextWithGrant attaches the authorization result to the context.
func ContextWithGrant(ctx context.Context, grant Grant) context.Context {
	return context.WithValue(ctx, grantContextKey{}, &grant)
}

// GrantFromContext extracts the authorization result from the context.
func GrantFromContext(ctx context.Context) (Grant, bool) {
	if ctx == nil {
		return Grant{}, false
	}
	v, ok := ctx.Value(grantContextKey{}).(*Grant)
	if !ok || v == nil {
		return Grant{}, false
	}
	return *v, true
}
