package authz

import (
	"context"
	"errors"
	"time"
)

const defaultStoreTimeout = 5 * time.Second

// Authenticator turns a raw credential into a live principal.
// Implementations must return ErrAuthFailed-compatible errors for bad
// credentials and wrap transient backend failures in ErrStore so the gate can
// distinguish a 401 from a 500.
type Authenticator interface {
	Authenticate(ctx context.Context, credential string) (Principal, error)
}

// Requirement narrows an authorization check beyond tenant membership.
type Requirement struct {
	// Role, when set, is the minimum role the membership must hold.
	Role Role
	// Permission, when set, must be granted to the membership's role,
	// optionally narrowed to Resource.
	Permission Permission
	Resource   Resource
}

// Grant is the successful outcome of the gate: who is asking and which
// tenant they act within. Context.ID is the only tenant filter handlers may
// use for subsequent data access.
type Grant struct {
	Principal Principal
	Context   OrganizationContext
}

// Gate composes authentication, tenant resolution and role/permission
// evaluation into the single entry point every protected operation calls.
type Gate struct {
	authenticator Authenticator
	resolver      *ContextResolver
	storeTimeout  time.Duration
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithStoreTimeout bounds identity and membership lookups so a slow store
// cannot hang the request.
func WithStoreTimeout(d time.Duration) GateOption {
	return func(g *Gate) {
		if d > 0 {
			g.storeTimeout = d
		}
	}
}

// NewGate constructs the gate.
func NewGate(authenticator Authenticator, resolver *ContextResolver, opts ...GateOption) (*Gate, error) {
	if authenticator == nil {
		return nil, errors.New("authz: authenticator is required")
	}
	if resolver == nil {
		return nil, errors.New("authz: context resolver is required")
	}
	g := &Gate{
		authenticator: authenticator,
		resolver:      resolver,
		storeTimeout:  defaultStoreTimeout,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Authorize runs the fixed pipeline: authenticate, resolve tenant, minimum
// role, permission. The first failure short-circuits and is returned as a
// typed *Error. explicitOrgID selects a tenant when the principal belongs to
// more than one; it is never trusted without membership validation.
func (g *Gate) Authorize(ctx context.Context, credential, explicitOrgID string, req Requirement) (Grant, error) {
	ctx, cancel := context.WithTimeout(ctx, g.storeTimeout)
	defer cancel()

	principal, err := g.authenticator.Authenticate(ctx, credential)
	if err != nil {
		return Grant{}, asAuthError(err)
	}

	orgCtx, err := g.resolver.Resolve(ctx, principal.ID, explicitOrgID)
	if err != nil {
		return Grant{}, err
	}

	if req.Role != "" && !orgCtx.Role.AtLeast(req.Role) {
		return Grant{}, ErrRoleInsufficient(req.Role)
	}
	if req.Permission != "" && !HasPermission(orgCtx.Role, req.Permission, req.Resource) {
		return Grant{}, ErrPermissionDenied(req.Permission)
	}

	return Grant{Principal: principal, Context: orgCtx}, nil
}

// asAuthError keeps store failures as 500s and folds everything else into the
// 401 variant so credential probing learns nothing.
func asAuthError(err error) *Error {
	typed := AsError(err)
	if typed.Code == CodeAuthFailed || typed.Code == CodeStoreError {
		return typed
	}
	return ErrAuthFailed("")
}
