// Package permission implements the role-to-action authorization policy.
// The policy is a pure, static lookup: the same (role, action) pair always
// yields the same answer, and an unknown role holds no permissions at all.
package permission

import "pharmacy-backend/internal/model"

// Action identifies a guarded operation on the API surface.
type Action string

const (
	ViewInventory Action = "inventory.view"
	EditInventory Action = "inventory.edit"

	ViewRequests   Action = "request.view"
	CreateRequest  Action = "request.create"
	ApproveRequest Action = "request.approve"

	ViewTransactions Action = "transaction.view"
	RecordPayment    Action = "transaction.record"

	ViewDashboard Action = "dashboard.view"

	ManageUsers   Action = "user.manage"
	ViewAuditLogs Action = "audit.view"
)

var policy = map[Action][]string{
	ViewInventory: {model.RoleAdmin, model.RoleManager, model.RoleDistributor, model.RoleCFO},
	EditInventory: {model.RoleAdmin},

	ViewRequests:   {model.RoleAdmin, model.RoleManager, model.RoleCFO},
	CreateRequest:  {model.RoleManager},
	ApproveRequest: {model.RoleCFO},

	ViewTransactions: {model.RoleCFO, model.RoleAdmin},
	RecordPayment:    {model.RoleCFO, model.RoleAdmin},

	ViewDashboard: {model.RoleAdmin, model.RoleManager, model.RoleDistributor, model.RoleCFO},

	ManageUsers:   {model.RoleAdmin},
	ViewAuditLogs: {model.RoleAdmin},
}

// Allowed reports whether the given role may perform the given action.
func Allowed(role string, action Action) bool {
	for _, allowed := range policy[action] {
		if role == allowed {
			return true
		}
	}
	return false
}

// ActionsForRole returns every action the role is permitted to perform.
// Used by the /me endpoint so the frontend can hide gated views.
func ActionsForRole(role string) []Action {
	actions := make([]Action, 0, len(policy))
	for action, roles := range policy {
		for _, allowed := range roles {
			if role == allowed {
				actions = append(actions, action)
				break
			}
		}
	}
	return actions
}
