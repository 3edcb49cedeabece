package reports

import "github.com/openews/report-server/internal/models"

// Visibility is the per-row outcome of the cross-organization anonymization
// rule.
type Visibility int

const (
	Full Visibility = iota
	AnonymizedToSupervisor
	AnonymizedToOrganization
)

// ResolveVisibility decides how much of a report row a viewer may see.
// Administrators always see full detail, and so do viewers whose organization
// owns the row. Everyone else gets an anonymized row: attributed to the
// supervisor when the row's organization name still matches the viewer's
// (membership may have shifted between resolving the id and the name),
// otherwise attributed to the owning organization.
func ResolveVisibility(viewerRole models.UserRole, viewerOrg models.OrganizationLink, rowOrg models.OrganizationLink) Visibility {
	if viewerRole == models.RoleAdministrator {
		return Full
	}
	if viewerOrg.OrganizationId == rowOrg.OrganizationId {
		return Full
	}
	if rowOrg.OrganizationName != "" && rowOrg.OrganizationName == viewerOrg.OrganizationName {
		return AnonymizedToSupervisor
	}
	return AnonymizedToOrganization
}
