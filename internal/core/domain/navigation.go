package domain

// SectionID identifies one sidebar section of the dashboard.
type SectionID string

const (
	SectionAdministrators   SectionID = "administrators"
	SectionResponsibles     SectionID = "responsibles"
	SectionTechSupport      SectionID = "techSupport"
	SectionRecords          SectionID = "records"
	SectionUsers            SectionID = "users"
	SectionTransactions     SectionID = "transactions"
	SectionCurrency         SectionID = "currency"
	SectionMainContent      SectionID = "mainContent"
	SectionContentSeparator SectionID = "contentSeparator"
)

// AllSections lists every known sidebar section in display order.
var AllSections = []SectionID{
	SectionMainContent,
	SectionContentSeparator,
	SectionUsers,
	SectionTransactions,
	SectionCurrency,
	SectionRecords,
	SectionTechSupport,
	SectionResponsibles,
	SectionAdministrators,
}

// CanSeeSection reports whether a role may see the given sidebar section.
// Pure and deterministic; rules apply in order, first match wins. An unknown
// role always lands in the least-privilege fallback rather than erroring.
func CanSeeSection(role Role, section SectionID) bool {
	if role == RoleFounder {
		return true
	}
	// Only founders ever see the administrators section.
	if section == SectionAdministrators {
		return false
	}
	if section == SectionResponsibles {
		return role == RoleGeneralManager || role == RoleManager
	}
	switch role {
	case RoleSupport:
		return section == SectionTechSupport || section == SectionMainContent || section == SectionContentSeparator
	case RoleSupervisor:
		return section == SectionTechSupport || section == SectionRecords ||
			section == SectionMainContent || section == SectionContentSeparator
	case RoleGeneralManager, RoleManager:
		return true
	default:
		return section == SectionMainContent || section == SectionContentSeparator
	}
}

// VisibleSections filters AllSections down to what the role may see,
// preserving display order.
func VisibleSections(role Role) []SectionID {
	visible := make([]SectionID, 0, len(AllSections))
	for _, section := range AllSections {
		if CanSeeSection(role, section) {
			visible = append(visible, section)
		}
	}
	return visible
}
