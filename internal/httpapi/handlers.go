package httpapi

import (
	"net/http"

	"yardimpanel.org/internal/audit"
	"yardimpanel.org/internal/authz"
)

// handleMe returns the caller's principal and resolved tenant context.
func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	grant, ok := a.require(w, r, authz.Requirement{})
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"principal":    grant.Principal,
		"organization": grant.Context,
	})
}

// handleOrganization returns the active tenant context, including merged
// settings. Any member may read it.
func (a *API) handleOrganization(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	grant, ok := a.require(w, r, authz.Requirement{Permission: authz.PermOrgView})
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, grant.Context)
}

// handleMembers lists the active members of the caller's tenant. The tenant
// filter is always the resolved context id, never a client-supplied value.
func (a *API) handleMembers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	grant, ok := a.require(w, r, authz.Requirement{
		Permission: authz.PermMembersView,
		Resource:   authz.ResourceMembers,
	})
	if !ok {
		return
	}
	if a.members == nil {
		writeErrorCode(w, r, http.StatusServiceUnavailable, "", "member directory unavailable")
		return
	}

	members, err := a.members.ListMembers(r.Context(), grant.Context.ID)
	if err != nil {
		a.denyAuthz(w, r, authz.ErrStore(err))
		return
	}
	_ = audit.LogEvent(r.Context(), "members.listed", map[string]any{
		"count": len(members),
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"organization_id": grant.Context.ID,
		"members":         members,
	})
}
