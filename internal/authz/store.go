package authz

import (
	"context"
	"time"
)

// PrincipalStore looks up authenticated callers.
type PrincipalStore interface {
	// Find returns the principal or ErrNotFound.
	Find(ctx context.Context, id string) (*Principal, error)
}

// MembershipStore loads tenant memberships for a principal.
type MembershipStore interface {
	// ActiveMemberships returns all active memberships with their
	// organizations embedded, ordered by (created_at, organization_id)
	// ascending so the default-tenant rule is deterministic.
	ActiveMemberships(ctx context.Context, principalID string) ([]Membership, error)
}

// Member is a directory view of one membership inside a tenant.
type Member struct {
	PrincipalID string    `json:"principal_id"`
	Email       string    `json:"email"`
	Name        string    `json:"name,omitempty"`
	Role        Role      `json:"role"`
	JoinedAt    time.Time `json:"joined_at"`
}

// MemberDirectory lists the active members of one organization. Callers must
// pass the organization id from a resolved context, never a client-supplied
// value.
type MemberDirectory interface {
	ListMembers(ctx context.Context, organizationID string) ([]Member, error)
}
