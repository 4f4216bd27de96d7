package permission

import (
	"testing"

	"pharmacy-backend/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestAllowed(t *testing.T) {
	cases := []struct {
		role    string
		action  Action
		allowed bool
	}{
		// Every role can see inventory and the dashboard.
		{model.RoleAdmin, ViewInventory, true},
		{model.RoleManager, ViewInventory, true},
		{model.RoleDistributor, ViewInventory, true},
		{model.RoleCFO, ViewInventory, true},
		{model.RoleDistributor, ViewDashboard, true},

		// Only admins edit the catalog.
		{model.RoleAdmin, EditInventory, true},
		{model.RoleManager, EditInventory, false},
		{model.RoleDistributor, EditInventory, false},
		{model.RoleCFO, EditInventory, false},

		// Managers create requests; the CFO decides them.
		{model.RoleManager, CreateRequest, true},
		{model.RoleAdmin, CreateRequest, false},
		{model.RoleCFO, CreateRequest, false},
		{model.RoleCFO, ApproveRequest, true},
		{model.RoleAdmin, ApproveRequest, false},
		{model.RoleManager, ApproveRequest, false},

		// Request visibility excludes distributors.
		{model.RoleAdmin, ViewRequests, true},
		{model.RoleManager, ViewRequests, true},
		{model.RoleCFO, ViewRequests, true},
		{model.RoleDistributor, ViewRequests, false},

		// Money is CFO and admin territory.
		{model.RoleCFO, RecordPayment, true},
		{model.RoleAdmin, RecordPayment, true},
		{model.RoleManager, RecordPayment, false},
		{model.RoleDistributor, ViewTransactions, false},

		{model.RoleAdmin, ManageUsers, true},
		{model.RoleManager, ManageUsers, false},
		{model.RoleAdmin, ViewAuditLogs, true},
		{model.RoleCFO, ViewAuditLogs, false},
	}

	for _, tc := range cases {
		got := Allowed(tc.role, tc.action)
		assert.Equal(t, tc.allowed, got, "role %s action %s", tc.role, tc.action)
	}
}

func TestAllowedUnknownInputs(t *testing.T) {
	// Unknown role or action always denies, never errors.
	assert.False(t, Allowed("INTERN", ViewInventory))
	assert.False(t, Allowed("", ApproveRequest))
	assert.False(t, Allowed(model.RoleAdmin, Action("inventory.explode")))
}

func TestAllowedIsDeterministic(t *testing.T) {
	for i := 0; i < 100; i++ {
		assert.True(t, Allowed(model.RoleCFO, ApproveRequest))
		assert.False(t, Allowed(model.RoleManager, ApproveRequest))
	}
}

func TestActionsForRole(t *testing.T) {
	assert.ElementsMatch(t, []Action{
		ViewInventory, EditInventory, ViewRequests, ViewTransactions,
		RecordPayment, ViewDashboard, ManageUsers, ViewAuditLogs,
	}, ActionsForRole(model.RoleAdmin))

	assert.ElementsMatch(t, []Action{
		ViewInventory, ViewRequests, CreateRequest, ViewDashboard,
	}, ActionsForRole(model.RoleManager))

	assert.ElementsMatch(t, []Action{
		ViewInventory, ViewDashboard,
	}, ActionsForRole(model.RoleDistributor))

	assert.ElementsMatch(t, []Action{
		ViewInventory, ViewRequests, ApproveRequest, ViewTransactions,
		RecordPayment, ViewDashboard,
	}, ActionsForRole(model.RoleCFO))

	assert.Empty(t, ActionsForRole("INTERN"))
}
