package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleAdmin.Valid())
	assert.True(t, RoleTechnician.Valid())
	assert.True(t, RoleLandlord.Valid())
	assert.False(t, Role("SUPERUSER").Valid())
	assert.False(t, Role("").Valid())
}

func TestRoleCan(t *testing.T) {
	t.Run("Admin-only actions", func(t *testing.T) {
		for _, action := range []Action{ActionManageUsers, ActionManageMeters, ActionMarkBillPaid, ActionUpdateOverdue, ActionUpdateKwhRate} {
			assert.True(t, RoleAdmin.Can(action), string(action))
			assert.False(t, RoleTechnician.Can(action), string(action))
			assert.False(t, RoleLandlord.Can(action), string(action))
		}
	})

	t.Run("Technician can record readings, landlord cannot", func(t *testing.T) {
		assert.True(t, RoleTechnician.Can(ActionRecordReading))
		assert.False(t, RoleLandlord.Can(ActionRecordReading))
	})

	t.Run("Landlord can view bills, technician cannot", func(t *testing.T) {
		assert.True(t, RoleLandlord.Can(ActionViewBills))
		assert.False(t, RoleTechnician.Can(ActionViewBills))
	})

	t.Run("Everyone authenticated sees the dashboard and the rate", func(t *testing.T) {
		for _, role := range []Role{RoleAdmin, RoleTechnician, RoleLandlord} {
			assert.True(t, role.Can(ActionViewDashboard))
			assert.True(t, role.Can(ActionViewKwhRate))
		}
	})

	t.Run("Unknown role is denied everything", func(t *testing.T) {
		assert.False(t, Role("GUEST").Can(ActionViewDashboard))
	})

	t.Run("Unknown action is denied", func(t *testing.T) {
		assert.False(t, RoleAdmin.Can(Action("format_disk")))
	})
}

func TestHasRole(t *testing.T) {
	admin := &User{ID: "u1", Role: RoleAdmin}

	assert.True(t, HasRole(admin, RoleAdmin))
	assert.True(t, HasRole(admin, RoleTechnician, RoleAdmin))
	assert.False(t, HasRole(admin, RoleLandlord))
	assert.False(t, HasRole(nil, RoleAdmin, RoleTechnician, RoleLandlord))
}
