package authz

import "time"

// SubscriptionStatus reflects the billing state of an organization.
type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionTrial     SubscriptionStatus = "trial"
	SubscriptionSuspended SubscriptionStatus = "suspended"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
)

// PlanTier is the subscription plan of an organization.
type PlanTier string

const (
	PlanFree         PlanTier = "free"
	PlanProfessional PlanTier = "professional"
	PlanEnterprise   PlanTier = "enterprise"
)

// Principal is an authenticated caller, independent of any tenant.
// Principals are deactivated rather than deleted.
type Principal struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name,omitempty"`
	Active bool   `json:"active"`
}

// Features toggles optional capabilities per organization.
type Features struct {
	SMSEnabled            bool `json:"sms_enabled"`
	EmailEnabled          bool `json:"email_enabled"`
	IDVerificationEnabled bool `json:"id_verification_enabled"`
	ReportsEnabled        bool `json:"reports_enabled"`
}

// OrganizationSettings holds per-tenant display and capacity options.
// Zero-valued fields fall back to defaults during merge.
type OrganizationSettings struct {
	Currency   string    `json:"currency"`
	Language   string    `json:"language"`
	Timezone   string    `json:"timezone"`
	DateFormat string    `json:"date_format"`
	MaxUsers   int       `json:"max_users"`
	Features   *Features `json:"features,omitempty"`
}

// DefaultSettings returns the documented default configuration applied under
// organization-provided values.
func DefaultSettings() OrganizationSettings {
	return OrganizationSettings{
		Currency:   "TRY",
		Language:   "tr",
		Timezone:   "Europe/Istanbul",
		DateFormat: "DD.MM.YYYY",
		MaxUsers:   10,
		Features: &Features{
			SMSEnabled:            true,
			EmailEnabled:          true,
			IDVerificationEnabled: true,
			ReportsEnabled:        true,
		},
	}
}

// MergeSettings overlays organization-provided values onto the defaults,
// field by field. Unspecified fields keep defaults; feature flags are only
// overridden when the organization supplies a features block.
func MergeSettings(overrides OrganizationSettings) OrganizationSettings {
	merged := DefaultSettings()
	if overrides.Currency != "" {
		merged.Currency = overrides.Currency
	}
	if overrides.Language != "" {
		merged.Language = overrides.Language
	}
	if overrides.Timezone != "" {
		merged.Timezone = overrides.Timezone
	}
	if overrides.DateFormat != "" {
		merged.DateFormat = overrides.DateFormat
	}
	if overrides.MaxUsers > 0 {
		merged.MaxUsers = overrides.MaxUsers
	}
	if overrides.Features != nil {
		features := *overrides.Features
		merged.Features = &features
	}
	return merged
}

// Organization is a tenant. All business data is scoped to exactly one.
type Organization struct {
	ID                 string               `json:"id"`
	Name               string               `json:"name"`
	Slug               string               `json:"slug"`
	PlanTier           PlanTier             `json:"plan_tier"`
	SubscriptionStatus SubscriptionStatus   `json:"subscription_status"`
	Settings           OrganizationSettings `json:"settings"`
	Active             bool                 `json:"is_active"`
	CreatedAt          time.Time            `json:"created_at"`
}

// Membership links a principal to an organization with a role. At most one
// active membership exists per (principal, organization) pair.
type Membership struct {
	PrincipalID  string       `json:"principal_id"`
	Organization Organization `json:"organization"`
	Role         Role         `json:"role"`
	Active       bool         `json:"is_active"`
	CreatedAt    time.Time    `json:"created_at"`
}

// OrganizationContext is the resolved active tenant for a request. Every
// subsequent data access must filter by its ID.
type OrganizationContext struct {
	ID       string               `json:"id"`
	Name     string               `json:"name"`
	Slug     string               `json:"slug"`
	PlanTier PlanTier             `json:"plan_tier"`
	Role     Role                 `json:"role"`
	Settings OrganizationSettings `json:"settings"`
}
