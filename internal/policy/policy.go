// Package policy holds the pure authorization rules governing cross-role
// booking cancellation and task assignment. The functions perform no I/O and
// never panic; unknown roles always deny.
package policy

// Actor identifies the user attempting an operation.
type Actor struct {
	ID   string
	Role Role
}

// CanCancelBooking reports whether the actor may cancel a booking owned by
// owner. Rules, first match wins:
//
//  1. Employees cancel only their own bookings.
//  2. Admins cancel their own bookings and Employee-owned bookings, never a
//     SuperAdmin's and never a peer Admin's.
//  3. SuperAdmins cancel anything.
func CanCancelBooking(actor Actor, owner Actor) bool {
	switch actor.Role {
	case RoleEmployee:
		return actor.ID != "" && actor.ID == owner.ID
	case RoleAdmin:
		if actor.ID != "" && actor.ID == owner.ID {
			return true
		}
		return owner.Role == RoleEmployee
	case RoleSuperAdmin:
		return true
	default:
		return false
	}
}

// CanAssignTask reports whether the assigner may create a task for the
// assignee. Employees never assign; Admins assign only to Employees;
// SuperAdmins assign to anyone below the SuperAdmin tier. Denying all
// SuperAdmin assignees subsumes the self-assignment rule.
func CanAssignTask(assigner Actor, assignee Actor) bool {
	if assigner.ID != "" && assigner.ID == assignee.ID {
		return false
	}
	switch assigner.Role {
	case RoleAdmin:
		return assignee.Role == RoleEmployee
	case RoleSuperAdmin:
		return assignee.Role == RoleEmployee || assignee.Role == RoleAdmin
	default:
		return false
	}
}

// CanCancelTask reports whether the actor may cancel a task created by
// assigner. SuperAdmins cancel tasks assigned by Admins or SuperAdmins;
// Admins cancel only their own assignments; Employees never cancel.
func CanCancelTask(actor Actor, assigner Actor) bool {
	switch actor.Role {
	case RoleAdmin:
		return actor.ID != "" && actor.ID == assigner.ID
	case RoleSuperAdmin:
		return assigner.Role == RoleAdmin || assigner.Role == RoleSuperAdmin
	default:
		return false
	}
}
