package domain

import "time"

type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleTechnician Role = "TECHNICIAN"
	RoleLandlord   Role = "LANDLORD"
)

// Valid reports whether r is one of the closed set of roles the backend
// issues. Unknown role strings coming off the wire must never widen the set.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTechnician, RoleLandlord:
		return true
	}
	return false
}

type User struct {
	ID          string    `json:"id"`
	PhoneNumber string    `json:"phoneNumber"`
	Role        Role      `json:"role"`
	Name        string    `json:"name,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Action identifies a role-gated operation or route. The capability table
// below is the single place role checks are defined; callers must not
// compare role strings directly.
type Action string

const (
	ActionViewDashboard  Action = "view_dashboard"
	ActionManageUsers    Action = "manage_users"
	ActionManageMeters   Action = "manage_meters"
	ActionViewReadings   Action = "view_readings"
	ActionRecordReading  Action = "record_reading"
	ActionViewBills      Action = "view_bills"
	ActionMarkBillPaid   Action = "mark_bill_paid"
	ActionUpdateOverdue  Action = "update_overdue"
	ActionViewKwhRate    Action = "view_kwh_rate"
	ActionUpdateKwhRate  Action = "update_kwh_rate"
)

// capabilities maps each action to the roles allowed to perform it.
// Mirrors the backend's route guards; the client gate is a UX convenience,
// never a security boundary.
var capabilities = map[Action][]Role{
	ActionViewDashboard: {RoleAdmin, RoleTechnician, RoleLandlord},
	ActionManageUsers:   {RoleAdmin},
	ActionManageMeters:  {RoleAdmin},
	ActionViewReadings:  {RoleAdmin, RoleTechnician},
	ActionRecordReading: {RoleAdmin, RoleTechnician},
	ActionViewBills:     {RoleAdmin, RoleLandlord},
	ActionMarkBillPaid:  {RoleAdmin},
	ActionUpdateOverdue: {RoleAdmin},
	ActionViewKwhRate:   {RoleAdmin, RoleTechnician, RoleLandlord},
	ActionUpdateKwhRate: {RoleAdmin},
}

// Can reports whether the role is permitted to perform the action.
// Unknown actions and unknown roles are both denied.
func (r Role) Can(action Action) bool {
	for _, allowed := range capabilities[action] {
		if r == allowed {
			return true
		}
	}
	return false
}

// HasRole reports whether the user holds one of the allowed roles.
// A nil user (no session) holds no role.
func HasRole(u *User, allowed ...Role) bool {
	if u == nil {
		return false
	}
	for _, role := range allowed {
		if u.Role == role {
			return true
		}
	}
	return false
}
