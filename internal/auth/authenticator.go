package auth

import (
	"context"
	"errors"

	"yardimpanel.org/internal/authz"
)

// Authenticator verifies bearer tokens and resolves them to live principals.
// It implements authz.Authenticator.
type Authenticator struct {
	principals authz.PrincipalStore
}

// NewAuthenticator constructs the token-backed authenticator.
func NewAuthenticator(principals authz.PrincipalStore) (*Authenticator, error) {
	if principals == nil {
		return nil, errors.New("auth: principal store is required")
	}
	return &Authenticator{principals: principals}, nil
}

// Authenticate validates the token and loads the principal. Deactivated or
// unknown principals fail closed with an authentication error; transient
// store failures surface as store errors so the gate can answer 500 rather
// than 401.
func (a *Authenticator) Authenticate(ctx context.Context, credential string) (authz.Principal, error) {
	claims, err := ParseAndValidate(credential)
	if err != nil {
		return authz.Principal{}, authz.ErrAuthFailed("invalid or missing credential")
	}

	principal, err := a.principals.Find(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, authz.ErrNotFound) {
			return authz.Principal{}, authz.ErrAuthFailed("invalid or missing credential")
		}
		return authz.Principal{}, authz.ErrStore(err)
	}
	if !principal.Active {
		return authz.Principal{}, authz.ErrAuthFailed("account deactivated")
	}
	return *principal, nil
}
