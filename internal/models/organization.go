package models

// Organization is a partner organization that owns turfs.
// Backed by table `main_organization`
type Organization struct {
	ID   int    `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
	Slug string `json:"slug" db:"slug"`
}

// Membership links a user to an organization.
// Backed by table `main_membership`; is_org_admin is the sole
// authorization source for org-scoped turf operations.
type Membership struct {
	OrganizationID int  `json:"organization_id" db:"organization_id"`
	MemberID       int  `json:"member_id" db:"member_id"`
	IsOrgAdmin     bool `json:"is_org_admin" db:"is_org_admin"`
}

// GuestOrgID is the sentinel scope for callers with no organization.
// Guest-scoped turfs are stored with a NULL organization_id.
const GuestOrgID = 0
