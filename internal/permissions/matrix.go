package permissions

// Matrix is the per-account capability grant: resource -> action -> allowed.
// A missing resource or action is equivalent to false (fail-closed).
type Matrix = map[string]map[string]bool

// Resources gated by the matrix.
const (
	ResourceDashboard       = "dashboard"
	ResourceDeposits        = "deposits"
	ResourceBankDeposits    = "bankDeposits"
	ResourceStaffManagement = "staffManagement"

	// Legacy resources kept for records written by earlier versions.
	ResourceActivityLogs = "activityLogs"
	ResourceSettings     = "settings"
)

// Actions within a resource.
const (
	ActionView     = "view"
	ActionAdd      = "add"
	ActionEdit     = "edit"
	ActionDelete   = "delete"
	ActionActivity = "activity"

	// Legacy actions.
	ActionViewAll = "viewAll"
	ActionArchive = "archive"
	ActionRestore = "restore"
)

// CoreResources are the four resources every preset covers.
var CoreResources = []string{
	ResourceDashboard,
	ResourceDeposits,
	ResourceBankDeposits,
	ResourceStaffManagement,
}

// CoreActions are the actions every preset covers per resource.
var CoreActions = []string{
	ActionView,
	ActionAdd,
	ActionEdit,
	ActionDelete,
	ActionActivity,
}

// Granted reports whether the matrix allows action on resource.
// Absent entries are denied.
func Granted(m Matrix, resource, action string) bool {
	if m == nil {
		return false
	}
	actions, ok := m[resource]
	if !ok {
		return false
	}
	return actions[action]
}

// Empty returns a preset with every core action denied.
func Empty() Matrix {
	return preset(false)
}

// Full returns a preset with every core action granted.
func Full() Matrix {
	return preset(true)
}

// Basic is the hardcoded grant assigned to non-admin accounts during
// self-healing: dashboard viewing plus read/create on both deposit ledgers.
func Basic() Matrix {
	m := preset(false)
	m[ResourceDashboard][ActionView] = true
	m[ResourceDeposits][ActionView] = true
	m[ResourceDeposits][ActionAdd] = true
	m[ResourceBankDeposits][ActionView] = true
	m[ResourceBankDeposits][ActionAdd] = true
	return m
}

// IsEmpty reports whether the matrix holds no entries at all. An explicit
// all-false preset is NOT empty: it is a deliberate deny-everything grant
// and must not trigger self-healing.
func IsEmpty(m Matrix) bool {
	for _, actions := range m {
		if len(actions) > 0 {
			return false
		}
	}
	return true
}

func preset(allowed bool) Matrix {
	m := make(Matrix, len(CoreResources))
	for _, resource := range CoreResources {
		actions := make(map[string]bool, len(CoreActions))
		for _, action := range CoreActions {
			actions[action] = allowed
		}
		m[resource] = actions
	}
	return m
}
