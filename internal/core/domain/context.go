package domain

import "context"

type tenantCtxKey struct{}
type browserCtxKey struct{}

// WithTenantContext injects the resolved TenantContext into ctx. The
// dispatcher reads it back per request, so a navigation that changes the
// tenant changes every subsequent dispatch with no rebuild.
func WithTenantContext(ctx context.Context, tc TenantContext) context.Context {
	return context.WithValue(ctx, tenantCtxKey{}, tc)
}

// TenantFromContext reads the TenantContext from ctx. The zero value has
// Source == "" and is distinguishable from an explicit unresolved context.
func TenantFromContext(ctx context.Context) (TenantContext, bool) {
	tc, ok := ctx.Value(tenantCtxKey{}).(TenantContext)
	return tc, ok
}

// WithBrowserID injects the browser identity cookie value into ctx.
func WithBrowserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, browserCtxKey{}, id)
}

// BrowserIDFromContext reads the browser identity from ctx.
func BrowserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(browserCtxKey{}).(string)
	return id, ok
}
