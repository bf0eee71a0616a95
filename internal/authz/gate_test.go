package authz

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubAuthenticator struct {
	fn func(context.Context, string) (Principal, error)
}

func (s *stubAuthenticator) Authenticate(ctx context.Context, credential string) (Principal, error) {
	if s.fn != nil {
		return s.fn(ctx, credential)
	}
	return Principal{}, ErrAuthFailed("")
}

func singleMembership(role Role, status SubscriptionStatus) *stubMembershipStore {
	return &stubMembershipStore{
		activeFn: func(context.Context, string) ([]Membership, error) {
			org := activeOrg("org-a", time.Now())
			org.SubscriptionStatus = status
			return []Membership{{PrincipalID: "p1", Organization: org, Role: role, Active: true}}, nil
		},
	}
}

func newGate(t *testing.T, authn Authenticator, memberships MembershipStore) *Gate {
	t.Helper()
	resolver := newResolver(t, memberships)
	gate, err := NewGate(authn, resolver)
	if err != nil {
		t.Fatalf("NewGate: %v", err)
	}
	return gate
}

func okAuthenticator() *stubAuthenticator {
	return &stubAuthenticator{fn: func(_ context.Context, credential string) (Principal, error) {
		if credential != "good-token" {
			return Principal{}, ErrAuthFailed("")
		}
		return Principal{ID: "p1", Email: "p1@example.org", Active: true}, nil
	}}
}

func TestAuthorizeHappyPath(t *testing.T) {
	gate := newGate(t, okAuthenticator(), singleMembership(RoleModerator, SubscriptionActive))

	grant, err := gate.Authorize(context.Background(), "good-token", "", Requirement{
		Role:       RoleUser,
		Permission: PermDataUpdate,
		Resource:   ResourceDonations,
	})
	if err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	if grant.Principal.ID != "p1" {
		t.Fatalf("unexpected principal: %+v", grant.Principal)
	}
	if grant.Context.ID != "org-a" || grant.Context.Role != RoleModerator {
		t.Fatalf("unexpected context: %+v", grant.Context)
	}
}

func TestAuthorizeRejectsBadCredentialBeforeTenantLookup(t *testing.T) {
	storeTouched := false
	memberships := &stubMembershipStore{
		activeFn: func(context.Context, string) ([]Membership, error) {
			storeTouched = true
			return nil, nil
		},
	}
	gate := newGate(t, okAuthenticator(), memberships)

	_, err := gate.Authorize(context.Background(), "bad-token", "", Requirement{})
	typed := AsError(err)
	if typed.Code != CodeAuthFailed || typed.Status != 401 {
		t.Fatalf("expected AUTH_FAILED 401, got %v", err)
	}
	if storeTouched {
		t.Fatal("membership store must not be consulted for unauthenticated callers")
	}
}

func TestAuthorizeRoleInsufficient(t *testing.T) {
	gate := newGate(t, okAuthenticator(), singleMembership(RoleUser, SubscriptionActive))

	_, err := gate.Authorize(context.Background(), "good-token", "", Requirement{Role: RoleAdmin})
	if typed := AsError(err); typed.Code != CodeRoleInsufficient || typed.Status != 403 {
		t.Fatalf("expected ROLE_INSUFFICIENT 403, got %v", err)
	}
}

func TestAuthorizePermissionDenied(t *testing.T) {
	gate := newGate(t, okAuthenticator(), singleMembership(RoleViewer, SubscriptionActive))

	_, err := gate.Authorize(context.Background(), "good-token", "", Requirement{Permission: PermDataDelete})
	if typed := AsError(err); typed.Code != CodePermissionDenied {
		t.Fatalf("expected PERMISSION_DENIED, got %v", err)
	}
}

// Subscription gating precedes role and permission checks; even an owner of a
// suspended organization is rejected with the subscription reason.
func TestAuthorizeSubscriptionGatingBeatsRole(t *testing.T) {
	gate := newGate(t, okAuthenticator(), singleMembership(RoleOwner, SubscriptionSuspended))

	_, err := gate.Authorize(context.Background(), "good-token", "", Requirement{Role: RoleOwner})
	if typed := AsError(err); typed.Code != CodeSubscriptionSuspended {
		t.Fatalf("expected SUBSCRIPTION_SUSPENDED, got %v", err)
	}
}

func TestAuthorizeTenantIsolation(t *testing.T) {
	gate := newGate(t, okAuthenticator(), singleMembership(RoleOwner, SubscriptionActive))

	// Membership only in org-a; selecting org-b must never leak its context.
	grant, err := gate.Authorize(context.Background(), "good-token", "org-b", Requirement{})
	if typed := AsError(err); typed.Code != CodeOrgMismatch {
		t.Fatalf("expected ORG_MISMATCH, got %v", err)
	}
	if grant.Context.ID != "" {
		t.Fatalf("context must be empty on denial, got %+v", grant.Context)
	}
}

func TestAuthorizeAuthenticatorStoreFailureIs500(t *testing.T) {
	boom := errors.New("identity store down")
	authn := &stubAuthenticator{fn: func(context.Context, string) (Principal, error) {
		return Principal{}, ErrStore(boom)
	}}
	gate := newGate(t, authn, singleMembership(RoleUser, SubscriptionActive))

	_, err := gate.Authorize(context.Background(), "good-token", "", Requirement{})
	typed := AsError(err)
	if typed.Code != CodeStoreError || typed.Status != 500 {
		t.Fatalf("expected STORE_ERROR 500, got %v", err)
	}
}

func TestAuthorizePropagatesCancellation(t *testing.T) {
	authn := &stubAuthenticator{fn: func(ctx context.Context, _ string) (Principal, error) {
		<-ctx.Done()
		return Principal{}, ErrStore(ctx.Err())
	}}
	gate := newGate(t, authn, singleMembership(RoleUser, SubscriptionActive))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := gate.Authorize(ctx, "good-token", "", Requirement{})
	if typed := AsError(err); typed.Code != CodeStoreError {
		t.Fatalf("expected STORE_ERROR after cancellation, got %v", err)
	}
}

func TestGrantContextRoundTrip(t *testing.T) {
	grant := Grant{
		Principal: Principal{ID: "p1"},
		Context:   OrganizationContext{ID: "org-a", Role: RoleAdmin},
	}
	ctx := ContextWithGrant(context.Background(), grant)
	got, ok := GrantFromContext(ctx)
	if !ok || got.Principal.ID != "p1" || got.Context.ID != "org-a" {
		t.Fatalf("unexpected grant: %+v ok=%v", got, ok)
	}
	if _, ok := GrantFromContext(context.Background()); ok {
		t.Fatal("expected no grant on empty context")
	}
}
