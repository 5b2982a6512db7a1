package permissions

import "testing"

func TestGrantedFailClosed(t *testing.T) {
	if Granted(nil, ResourceDeposits, ActionView) {
		t.Fatalf("nil matrix must deny")
	}
	m := Empty()
	if Granted(m, ResourceDeposits, ActionView) {
		t.Fatalf("empty preset must deny")
	}
	if Granted(m, "unknown", ActionView) {
		t.Fatalf("unknown resource must deny")
	}
	if Granted(m, ResourceDeposits, "unknown") {
		t.Fatalf("unknown action must deny")
	}
}

func TestFullGrantsEverything(t *testing.T) {
	m := Full()
	for _, resource := range CoreResources {
		for _, action := range CoreActions {
			if !Granted(m, resource, action) {
				t.Fatalf("full preset denies %s.%s", resource, action)
			}
		}
	}
}

func TestBasicPreset(t *testing.T) {
	m := Basic()
	allowed := [][2]string{
		{ResourceDashboard, ActionView},
		{ResourceDeposits, ActionView},
		{ResourceDeposits, ActionAdd},
		{ResourceBankDeposits, ActionView},
		{ResourceBankDeposits, ActionAdd},
	}
	for _, pair := range allowed {
		if !Granted(m, pair[0], pair[1]) {
			t.Fatalf("basic preset denies %s.%s", pair[0], pair[1])
		}
	}
	if Granted(m, ResourceStaffManagement, ActionView) {
		t.Fatalf("basic preset must not grant staff management")
	}
	if Granted(m, ResourceDeposits, ActionDelete) {
		t.Fatalf("basic preset must not grant deposit deletion")
	}
}

func TestIsEmpty(t *testing.T) {
	if !IsEmpty(nil) {
		t.Fatalf("nil matrix is empty")
	}
	if !IsEmpty(Matrix{}) {
		t.Fatalf("empty map is empty")
	}
	if !IsEmpty(Matrix{ResourceDeposits: {}}) {
		t.Fatalf("resource with no actions is empty")
	}
	if IsEmpty(Empty()) {
		t.Fatalf("explicit all-false preset is not empty")
	}
	if IsEmpty(Full()) {
		t.Fatalf("full preset is not empty")
	}
}

func TestDefaultsForRole(t *testing.T) {
	cases := []struct {
		role string
		full bool
	}{
		{RoleSuperAdmin, true},
		{RoleAdmin, true},
		{"Staff", false},
		{"admin", false}, // matching is exact
		{"", false},
	}
	for _, tc := range cases {
		m := DefaultsForRole(tc.role)
		got := Granted(m, ResourceStaffManagement, ActionDelete)
		if got != tc.full {
			t.Fatalf("role %q: staffManagement.delete = %v, want %v", tc.role, got, tc.full)
		}
	}
}

func TestSignupDefaults(t *testing.T) {
	if !Granted(SignupDefaults(true), ResourceStaffManagement, ActionEdit) {
		t.Fatalf("first account must receive full grants")
	}
	later := SignupDefaults(false)
	if IsEmpty(later) {
		t.Fatalf("later accounts get an explicit empty preset, not a missing record")
	}
	if Granted(later, ResourceDashboard, ActionView) {
		t.Fatalf("later accounts must start with everything denied")
	}
}
