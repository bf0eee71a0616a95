package authz

import "strings"

// Permission is a fine-grained capability in resource:action form.
type Permission string

const (
	PermOrgManage  Permission = "org:manage"
	PermOrgDelete  Permission = "org:delete"
	PermOrgBilling Permission = "org:billing"
	PermOrgView    Permission = "org:view"

	PermMembersManage Permission = "members:manage"
	PermMembersInvite Permission = "members:invite"
	PermMembersView   Permission = "members:view"

	PermDataCreate Permission = "data:create"
	PermDataRead   Permission = "data:read"
	PermDataUpdate Permission = "data:update"
	PermDataDelete Permission = "data:delete"

	PermReportsView   Permission = "reports:view"
	PermReportsExport Permission = "reports:export"
	PermReportsCreate Permission = "reports:create"

	PermSettingsManage Permission = "settings:manage"
	PermSettingsView   Permission = "settings:view"
)

// Resource names tenant-scoped data a permission may be narrowed to.
type Resource string

const (
	ResourceBeneficiaries Resource = "beneficiaries"
	ResourceDonations     Resource = "donations"
	ResourceApplications  Resource = "applications"
	ResourceReports       Resource = "reports"
	ResourceSettings      Resource = "settings"
	ResourceMembers       Resource = "members"
	ResourceTasks         Resource = "tasks"
	ResourceActivityLogs  Resource = "activity_logs"
)

// generalGrants returns the base permission set for a role. The switch is
// exhaustive over the closed role set; unknown roles get nothing.
func generalGrants(role Role) []Permission {
	switch role {
	case RoleOwner:
		return []Permission{
			PermOrgManage, PermOrgDelete, PermOrgBilling, PermOrgView,
			PermMembersManage, PermMembersInvite, PermMembersView,
			PermDataCreate, PermDataRead, PermDataUpdate, PermDataDelete,
			PermReportsView, PermReportsExport, PermReportsCreate,
			PermSettingsManage, PermSettingsView,
		}
	case RoleAdmin:
		return []Permission{
			PermOrgManage, PermOrgView,
			PermMembersManage, PermMembersInvite, PermMembersView,
			PermDataCreate, PermDataRead, PermDataUpdate, PermDataDelete,
			PermReportsView, PermReportsExport, PermReportsCreate,
			PermSettingsManage, PermSettingsView,
		}
	case RoleModerator:
		return []Permission{
			PermOrgView,
			PermMembersInvite, PermMembersView,
			PermDataCreate, PermDataRead, PermDataUpdate,
			PermReportsView, PermReportsExport, PermReportsCreate,
			PermSettingsView,
		}
	case RoleUser:
		return []Permission{
			PermOrgView,
			PermMembersView,
			PermDataCreate, PermDataRead, PermDataUpdate,
			PermReportsView,
			PermSettingsView,
		}
	case RoleViewer:
		return []Permission{
			PermOrgView,
			PermMembersView,
			PermDataRead,
			PermReportsView,
			PermSettingsView,
		}
	default:
		return nil
	}
}

// resourceGrants returns additional permissions a role holds on a specific
// resource. Overrides only widen access; they never revoke a general grant.
func resourceGrants(resource Resource, role Role) []Permission {
	switch resource {
	case ResourceDonations:
		switch role {
		case RoleModerator:
			return []Permission{PermDataCreate, PermDataRead, PermDataUpdate}
		case RoleUser:
			return []Permission{PermDataCreate, PermDataRead}
		case RoleViewer:
			return []Permission{PermDataRead}
		}
	case ResourceApplications:
		switch role {
		case RoleModerator:
			return []Permission{PermDataCreate, PermDataRead, PermDataUpdate}
		case RoleUser:
			return []Permission{PermDataCreate, PermDataRead, PermDataUpdate}
		case RoleViewer:
			return []Permission{PermDataRead}
		}
	case ResourceBeneficiaries:
		switch role {
		case RoleModerator, RoleUser:
			return []Permission{PermDataCreate, PermDataRead, PermDataUpdate}
		case RoleViewer:
			return []Permission{PermDataRead}
		}
	case ResourceReports:
		switch role {
		case RoleModerator:
			return []Permission{PermReportsView, PermReportsExport, PermReportsCreate}
		case RoleUser, RoleViewer:
			return []Permission{PermReportsView}
		}
	case ResourceTasks:
		switch role {
		case RoleModerator:
			return []Permission{PermDataCreate, PermDataRead, PermDataUpdate}
		case RoleUser:
			return []Permission{PermDataRead, PermDataUpdate}
		case RoleViewer:
			return []Permission{PermDataRead}
		}
	case ResourceActivityLogs:
		switch role {
		case RoleModerator, RoleUser:
			return []Permission{PermDataRead}
		}
	case ResourceMembers:
		switch role {
		case RoleModerator, RoleUser, RoleViewer:
			return []Permission{PermMembersView}
		}
	case ResourceSettings:
		switch role {
		case RoleModerator:
			return []Permission{PermSettingsView}
		}
	}
	return nil
}

// HasPermission reports whether a role may exercise a permission, optionally
// narrowed to a resource. Admin and owner are granted unconditionally.
// Absence of a grant yields false; there is no error path.
func HasPermission(role Role, perm Permission, resource Resource) bool {
	if role == RoleAdmin || role == RoleOwner {
		return true
	}
	for _, granted := range generalGrants(role) {
		if granted == perm {
			return true
		}
	}
	if resource != "" {
		for _, granted := range resourceGrants(resource, role) {
			if granted == perm {
				return true
			}
		}
	}
	return false
}

// RolePermissions returns the full general grant set for a role.
func RolePermissions(role Role) []Permission {
	return generalGrants(role)
}

// ParsePermission validates raw input against the resource:action shape and
// the known permission set.
func ParsePermission(raw string) (Permission, bool) {
	perm := Permission(strings.TrimSpace(strings.ToLower(raw)))
	// Owner carries every known permission, so its grant set doubles as the
	// catalog.
	for _, granted := range generalGrants(RoleOwner) {
		if granted == perm {
			return perm, true
		}
	}
	return "", false
}
