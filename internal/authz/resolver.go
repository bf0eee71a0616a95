package authz

import (
	"context"
	"errors"
	"strings"
)

// ContextResolver selects and validates the active tenant for a request.
type ContextResolver struct {
	memberships MembershipStore
}

// NewContextResolver constructs a resolver over the membership store.
func NewContextResolver(memberships MembershipStore) (*ContextResolver, error) {
	if memberships == nil {
		return nil, errors.New("authz: membership store is required")
	}
	return &ContextResolver{memberships: memberships}, nil
}

// Resolve loads the principal's active memberships and picks the active
// tenant. When explicitOrgID is empty the earliest-created membership wins;
// the store's (created_at, organization_id) ordering makes that
// deterministic. Tenant health is validated before any context is returned.
func (r *ContextResolver) Resolve(ctx context.Context, principalID, explicitOrgID string) (OrganizationContext, error) {
	principalID = strings.TrimSpace(principalID)
	if principalID == "" {
		return OrganizationContext{}, ErrAuthFailed("")
	}

	memberships, err := r.memberships.ActiveMemberships(ctx, principalID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return OrganizationContext{}, ErrNotAMember()
		}
		return OrganizationContext{}, ErrStore(err)
	}
	if len(memberships) == 0 {
		return OrganizationContext{}, ErrNotAMember()
	}

	active := memberships[0]
	if explicitOrgID = strings.TrimSpace(explicitOrgID); explicitOrgID != "" {
		found := false
		for _, m := range memberships {
			if m.Organization.ID == explicitOrgID {
				active = m
				found = true
				break
			}
		}
		if !found {
			return OrganizationContext{}, ErrOrgMismatch()
		}
	}

	org := active.Organization
	if !org.Active {
		return OrganizationContext{}, ErrOrgInactive()
	}
	switch org.SubscriptionStatus {
	case SubscriptionSuspended:
		return OrganizationContext{}, ErrSubscriptionSuspended()
	case SubscriptionCancelled:
		return OrganizationContext{}, ErrSubscriptionCancelled()
	}

	return OrganizationContext{
		ID:       org.ID,
		Name:     org.Name,
		Slug:     org.Slug,
		PlanTier: org.PlanTier,
		Role:     active.Role,
		Settings: MergeSettings(org.Settings),
	}, nil
}
