package domain

import "testing"

func TestCanSeeSectionFounderSeesEverything(t *testing.T) {
	for _, section := range AllSections {
		if !CanSeeSection(RoleFounder, section) {
			t.Fatalf("founder should see section %q", section)
		}
	}
}

func TestCanSeeSectionAdministratorsFounderOnly(t *testing.T) {
	others := []Role{RoleGeneralManager, RoleManager, RoleSupervisor, RoleSupport, RoleUnknown}
	for _, role := range others {
		if CanSeeSection(role, SectionAdministrators) {
			t.Fatalf("role %q should not see administrators", role)
		}
	}
}

func TestCanSeeSectionResponsibles(t *testing.T) {
	cases := []struct {
		role Role
		want bool
	}{
		{RoleFounder, true},
		{RoleGeneralManager, true},
		{RoleManager, true},
		{RoleSupervisor, false},
		{RoleSupport, false},
		{RoleUnknown, false},
	}

	for _, tc := range cases {
		if got := CanSeeSection(tc.role, SectionResponsibles); got != tc.want {
			t.Errorf("CanSeeSection(%q, responsibles) = %v, want %v", tc.role, got, tc.want)
		}
	}
}

func TestCanSeeSectionSupportSubset(t *testing.T) {
	visible := map[SectionID]bool{
		SectionTechSupport:      true,
		SectionMainContent:      true,
		SectionContentSeparator: true,
	}

	for _, section := range AllSections {
		if got := CanSeeSection(RoleSupport, section); got != visible[section] {
			t.Errorf("CanSeeSection(support, %q) = %v, want %v", section, got, visible[section])
		}
	}
}

func TestCanSeeSectionSupervisorSubset(t *testing.T) {
	visible := map[SectionID]bool{
		SectionTechSupport:      true,
		SectionRecords:          true,
		SectionMainContent:      true,
		SectionContentSeparator: true,
	}

	for _, section := range AllSections {
		if got := CanSeeSection(RoleSupervisor, section); got != visible[section] {
			t.Errorf("CanSeeSection(supervisor, %q) = %v, want %v", section, got, visible[section])
		}
	}
}

func TestCanSeeSectionManagersSeeAllButAdministrators(t *testing.T) {
	for _, role := range []Role{RoleGeneralManager, RoleManager} {
		for _, section := range AllSections {
			want := section != SectionAdministrators
			if got := CanSeeSection(role, section); got != want {
				t.Errorf("CanSeeSection(%q, %q) = %v, want %v", role, section, got, want)
			}
		}
	}
}

func TestCanSeeSectionUnknownRoleFallback(t *testing.T) {
	for _, raw := range []string{"", "admin", "owner", "FOUNDER", "moderator"} {
		role := ParseRole(raw)
		if role != RoleUnknown {
			t.Fatalf("ParseRole(%q) = %q, want unknown", raw, role)
		}
		if !CanSeeSection(role, SectionMainContent) {
			t.Errorf("unknown role %q should see mainContent", raw)
		}
		if !CanSeeSection(role, SectionContentSeparator) {
			t.Errorf("unknown role %q should see contentSeparator", raw)
		}
		if CanSeeSection(role, SectionAdministrators) {
			t.Errorf("unknown role %q should not see administrators", raw)
		}
		if CanSeeSection(role, SectionUsers) {
			t.Errorf("unknown role %q should not see users", raw)
		}
	}
}

func TestVisibleSectionsPreservesOrder(t *testing.T) {
	sections := VisibleSections(RoleSupport)
	want := []SectionID{SectionMainContent, SectionContentSeparator, SectionTechSupport}

	if len(sections) != len(want) {
		t.Fatalf("VisibleSections(support) = %v, want %v", sections, want)
	}
	for i := range want {
		if sections[i] != want[i] {
			t.Fatalf("VisibleSections(support) = %v, want %v", sections, want)
		}
	}
}

func TestMayUseDashboard(t *testing.T) {
	founder := AuthUser{Role: RoleFounder, CanLogin: false}
	if !founder.MayUseDashboard() {
		t.Error("founder should bypass the can_login gate")
	}

	support := AuthUser{Role: RoleSupport, CanLogin: false}
	if support.MayUseDashboard() {
		t.Error("support without can_login should be rejected")
	}

	manager := AuthUser{Role: RoleManager, CanLogin: true}
	if !manager.MayUseDashboard() {
		t.Error("manager with can_login should be allowed")
	}
}
